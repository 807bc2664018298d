package channel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaycore/securemsg/internal/crypto"
)

func newTestChannel(t *testing.T) *Channel {
	key, err := crypto.RandomBytes(32)
	require.NoError(t, err)
	return New("sess-1", key)
}

func TestSealOpenRoundTrip(t *testing.T) {
	a := newTestChannel(t)
	b := &Channel{SessionID: a.SessionID, Key: a.Key}

	sealed, err := a.Seal([]byte("first message"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), sealed.SequenceNumber)

	pt, err := b.Open(sealed.SequenceNumber, sealed.IV, sealed.Ciphertext)
	require.NoError(t, err)
	require.Equal(t, "first message", string(pt))
}

func TestOpenRejectsOutOfOrderSequence(t *testing.T) {
	a := newTestChannel(t)
	b := &Channel{SessionID: a.SessionID, Key: a.Key}

	sealed, err := a.Seal([]byte("one"))
	require.NoError(t, err)
	_, err = a.Seal([]byte("two"))
	require.NoError(t, err)

	// Deliver sequence 2 before 1 has ever been opened.
	_, err = b.Open(2, sealed.IV, sealed.Ciphertext)
	require.Error(t, err)
}

func TestOpenDoesNotAdvanceCounterOnAuthFailure(t *testing.T) {
	a := newTestChannel(t)
	b := &Channel{SessionID: a.SessionID, Key: a.Key}

	sealed, err := a.Seal([]byte("payload"))
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed.Ciphertext...)
	tampered[0] ^= 0xFF
	_, err = b.Open(sealed.SequenceNumber, sealed.IV, tampered)
	require.Error(t, err)
	require.Equal(t, uint64(0), b.IncomingSequence())

	pt, err := b.Open(sealed.SequenceNumber, sealed.IV, sealed.Ciphertext)
	require.NoError(t, err)
	require.Equal(t, "payload", string(pt))
}

func TestSealRejectsOversizedPlaintext(t *testing.T) {
	a := newTestChannel(t)
	_, err := a.Seal(make([]byte, MaxPlaintextSize+1))
	require.Error(t, err)
}
