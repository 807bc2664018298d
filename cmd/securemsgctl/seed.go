package main

import (
	"context"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaycore/securemsg/internal/crypto"
	"github.com/relaycore/securemsg/internal/directory"
)

func seedCmd() *cobra.Command {
	var pubPath string
	cmd := &cobra.Command{
		Use:   "seed [userID]",
		Short: "Register a user's public signing key with the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			if dsn == "" {
				return fmt.Errorf("--dsn is required")
			}
			raw, err := os.ReadFile(pubPath)
			if err != nil {
				return err
			}
			block, _ := pem.Decode(raw)
			if block == nil {
				return fmt.Errorf("no PEM block found in %s", pubPath)
			}
			pub, err := crypto.ParseRSAPublicKeyDER(block.Bytes)
			if err != nil {
				return err
			}

			dir, err := directory.NewPostgresDirectory(dsn)
			if err != nil {
				return err
			}
			if err := dir.RegisterSigningKey(context.Background(), userID, pub); err != nil {
				return err
			}
			fmt.Printf("registered signing key for %s\n", userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&pubPath, "pub", "", "path to the user's public key PEM")
	cmd.MarkFlagRequired("pub")
	return cmd
}
