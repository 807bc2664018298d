package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenGCMRoundTrip(t *testing.T) {
	key, err := RandomBytes(32)
	require.NoError(t, err)
	iv, err := RandomBytes(GCMNonceSize)
	require.NoError(t, err)

	ct, err := SealGCM(key, iv, []byte("hello relay"))
	require.NoError(t, err)

	pt, err := OpenGCM(key, iv, ct)
	require.NoError(t, err)
	require.Equal(t, "hello relay", string(pt))
}

func TestOpenGCMRejectsTamperedCiphertext(t *testing.T) {
	key, _ := RandomBytes(32)
	iv, _ := RandomBytes(GCMNonceSize)
	ct, err := SealGCM(key, iv, []byte("payload"))
	require.NoError(t, err)

	ct[0] ^= 0xFF
	_, err = OpenGCM(key, iv, ct)
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestSignVerifyPSS(t *testing.T) {
	priv, err := GenerateSigningKey()
	require.NoError(t, err)

	msg := []byte("canonical payload bytes")
	sig, err := SignPSS(priv, msg)
	require.NoError(t, err)
	require.True(t, VerifyPSS(&priv.PublicKey, msg, sig))
}

func TestVerifyPSSRejectsTamperedMessage(t *testing.T) {
	priv, err := GenerateSigningKey()
	require.NoError(t, err)

	sig, err := SignPSS(priv, []byte("original"))
	require.NoError(t, err)
	require.False(t, VerifyPSS(&priv.PublicKey, []byte("tampered"), sig))
}

func TestVerifyPSSNeverPanicsOnMalformedInput(t *testing.T) {
	require.NotPanics(t, func() {
		require.False(t, VerifyPSS(nil, []byte("x"), []byte("y")))
		require.False(t, VerifyPSS(nil, []byte("x"), nil))
	})
}

func TestEqualConstantTime(t *testing.T) {
	require.True(t, EqualConstantTime([]byte("abc"), []byte("abc")))
	require.False(t, EqualConstantTime([]byte("abc"), []byte("abd")))
}
