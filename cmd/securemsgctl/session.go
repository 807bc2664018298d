package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaycore/securemsg/internal/ledger"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session [sessionID]",
		Short: "Inspect a handshake record in the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("--dsn is required")
			}
			store, err := ledger.NewPostgres(dsn)
			if err != nil {
				return err
			}
			rec, err := store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("session_id:   %s\n", rec.SessionID)
			fmt.Printf("initiator:    %s\n", rec.InitiatorID)
			fmt.Printf("responder:    %s\n", rec.ResponderID)
			fmt.Printf("status:       %s\n", rec.Status)
			fmt.Printf("created_at:   %s\n", rec.CreatedAt)
			fmt.Printf("expires_at:   %s\n", rec.ExpiresAt)
			fmt.Printf("version:      %d\n", rec.Version)
			fmt.Printf("init_seq:     %d\n", rec.InitiatorLastSequence)
			fmt.Printf("resp_seq:     %d\n", rec.ResponderLastSequence)
			return nil
		},
	}
	return cmd
}
