// securemsgctl is the relay operator CLI: seed identities, inspect
// ledger records, and generate long-term key material, grounded on the
// pack's cobra command-tree style (wbd2023-UNSW-COMP6841-Ciphera's
// cmd/ciphera).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var dsn string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "securemsgctl",
		Short: "Operator tool for the secure messaging relay",
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "postgres DSN")
	root.AddCommand(keygenCmd(), seedCmd(), sessionCmd())
	return root
}
