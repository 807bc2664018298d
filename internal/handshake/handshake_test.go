package handshake

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaycore/securemsg/internal/identity"
)

func decodeForTest(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestThreeMessageHandshakeAgreesOnSessionKey(t *testing.T) {
	alice, err := identity.New("alice")
	require.NoError(t, err)
	bob, err := identity.New("bob")
	require.NoError(t, err)

	aliceClient := NewClient(alice)
	bobClient := NewClient(bob)

	now := int64(1_700_000_000_000)
	aPending, initReq, err := aliceClient.BeginInit("bob", now)
	require.NoError(t, err)

	sessionID := MintSessionID("alice", "bob", now)
	aPending.SessionID = sessionID

	bPending, respReq, err := bobClient.BeginRespond(sessionID, now+10)
	require.NoError(t, err)

	initEph := decodeForTest(t, initReq.EphemeralPublic)
	respEph := decodeForTest(t, respReq.EphemeralPublic)
	initNonce := decodeForTest(t, initReq.Nonce)
	respNonce := decodeForTest(t, respReq.Nonce)

	require.NoError(t, aPending.CompleteKeySchedule(respEph, initNonce, respNonce))
	require.NoError(t, bPending.CompleteKeySchedule(initEph, initNonce, respNonce))
	require.Equal(t, aPending.SessionKey, bPending.SessionKey)

	aConfirm := aPending.BuildConfirm()
	bConfirm := bPending.BuildConfirm()

	tagForAlice := decodeForTest(t, bConfirm.Confirmation)
	tagForBob := decodeForTest(t, aConfirm.Confirmation)

	require.NoError(t, aPending.VerifyPeerConfirmation(tagForAlice))
	require.NoError(t, bPending.VerifyPeerConfirmation(tagForBob))
	require.True(t, aPending.Ready())
	require.True(t, bPending.Ready())
}

// TestVerifyPeerConfirmationDetectsMismatch exercises the client-side
// MITM detection directly: a confirmation tag computed under a
// different shared secret than the one this party derived must be
// rejected (P8).
func TestVerifyPeerConfirmationDetectsMismatch(t *testing.T) {
	sessionID := "alice|bob|1700000000000"
	realZ := []byte("the-real-shared-secret-32-bytes!")
	forgedZ := []byte("an-attacker-controlled-secret!!!")

	pending := &Pending{SessionID: sessionID, Role: RoleInitiator, SharedSecret: realZ}

	forgedTag := ComputeConfirmation(forgedZ, sessionID, RoleResponder)
	err := pending.VerifyPeerConfirmation(forgedTag)
	require.Error(t, err)
	require.False(t, pending.PeerConfirmed)

	genuineTag := ComputeConfirmation(realZ, sessionID, RoleResponder)
	require.NoError(t, pending.VerifyPeerConfirmation(genuineTag))
	require.True(t, pending.PeerConfirmed)
}
