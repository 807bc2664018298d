package main

import (
	"crypto/rsa"
	"crypto/x509"

	"github.com/relaycore/securemsg/internal/crypto"
)

func x509MarshalPKCS1PrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	return x509.MarshalPKCS1PrivateKey(priv), nil
}

func fingerprintOf(pub *rsa.PublicKey) ([]byte, error) {
	der, err := crypto.MarshalRSAPublicKeyDER(pub)
	if err != nil {
		return nil, err
	}
	return crypto.Fingerprint(der), nil
}
