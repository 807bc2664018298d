package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestECDHSharedSecretAgreement(t *testing.T) {
	a, err := GenerateEphemeral()
	require.NoError(t, err)
	b, err := GenerateEphemeral()
	require.NoError(t, err)

	zA, err := DeriveShared(a.Private, b.Public)
	require.NoError(t, err)
	zB, err := DeriveShared(b.Private, a.Public)
	require.NoError(t, err)

	require.Equal(t, zA, zB)
}

func TestDeriveSessionKeyIsOrderSensitive(t *testing.T) {
	z := []byte("shared-secret-material-32-bytes")
	nonceA := []byte("nonce-a")
	nonceB := []byte("nonce-b")

	k1, err := DeriveSessionKey(z, nonceA, nonceB)
	require.NoError(t, err)
	k2, err := DeriveSessionKey(z, nonceB, nonceA)
	require.NoError(t, err)

	require.NotEqual(t, k1, k2)
}
