package main

import (
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaycore/securemsg/internal/crypto"
)

func keygenCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "keygen [userID]",
		Short: "Generate a long-term RSA-PSS signing key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			priv, err := crypto.GenerateSigningKey()
			if err != nil {
				return err
			}
			der, err := crypto.MarshalRSAPublicKeyDER(&priv.PublicKey)
			if err != nil {
				return err
			}
			pubPath := out + "/" + userID + ".pub.pem"
			if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o644); err != nil {
				return err
			}

			privDER, err := x509MarshalPKCS1PrivateKey(priv)
			if err != nil {
				return err
			}
			privPath := out + "/" + userID + ".priv.pem"
			if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: privDER}), 0o600); err != nil {
				return err
			}

			fp, err := fingerprintOf(&priv.PublicKey)
			if err != nil {
				return err
			}
			fmt.Printf("generated %s (fingerprint %x)\n  public:  %s\n  private: %s\n", userID, fp, pubPath, privPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", ".", "output directory for PEM files")
	return cmd
}
