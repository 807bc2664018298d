// Package channel implements the secure channel of §4.3: per-direction
// monotonic sequence numbers, per-message IVs, and AES-256-GCM seal/open
// over a completed handshake's session key. The relay never calls into
// this package — it only ever sees ciphertext, IV, nonce, timestamp, and
// sequence_number. Only the two clients hold a Channel.
package channel

import (
	"github.com/relaycore/securemsg/internal/crypto"
	"github.com/relaycore/securemsg/internal/domain"
	"sync"
)

// MaxPlaintextSize bounds a single message or chunk at 256 KiB (§4.3,
// §7 MessageTooLarge).
const MaxPlaintextSize = 256 * 1024

// Channel is one party's view of a completed session: the derived key
// plus the two independent sequence counters (own outgoing, peer
// incoming) that must never be shared across processes (§5).
type Channel struct {
	mu             sync.Mutex
	SessionID      string
	Key            []byte
	outgoingSeq    uint64
	incomingSeq    uint64
}

// New builds a Channel for a just-completed handshake. Both counters
// start at zero; the first message either direction sends carries
// sequence_number 1.
func New(sessionID string, key []byte) *Channel {
	return &Channel{SessionID: sessionID, Key: key}
}

// Sealed is the wire shape of one outgoing message's cryptographic
// fields, independent of whether it carries text or a file chunk.
type Sealed struct {
	Ciphertext     []byte
	IV             []byte
	SequenceNumber uint64
	Nonce          []byte
}

// Seal encrypts plaintext under a fresh IV and the next sequence number
// in this channel's outgoing direction.
func (c *Channel) Seal(plaintext []byte) (*Sealed, error) {
	if len(plaintext) > MaxPlaintextSize {
		return nil, domain.ErrMessageTooLarge
	}
	iv, err := crypto.RandomBytes(crypto.GCMNonceSize)
	if err != nil {
		return nil, domain.NewError(domain.CodeSealFailed, "channel.seal", err)
	}
	nonce, err := crypto.RandomBytes(32)
	if err != nil {
		return nil, domain.NewError(domain.CodeSealFailed, "channel.seal", err)
	}
	ct, err := crypto.SealGCM(c.Key, iv, plaintext)
	if err != nil {
		return nil, domain.NewError(domain.CodeSealFailed, "channel.seal", err)
	}

	c.mu.Lock()
	c.outgoingSeq++
	seq := c.outgoingSeq
	c.mu.Unlock()

	return &Sealed{Ciphertext: ct, IV: iv, SequenceNumber: seq, Nonce: nonce}, nil
}

// Open decrypts an incoming message. It enforces strict monotonicity on
// seq (§4.4 item 7, P5): the first accepted incoming sequence must be
// exactly the current counter plus one, and it is only advanced on a
// successful open so a forged ciphertext at the right sequence number
// cannot desynchronize the counter (it simply fails AEAD auth and the
// counter stays put, ready to retry the same sequence).
func (c *Channel) Open(seq uint64, iv, ciphertext []byte) ([]byte, error) {
	c.mu.Lock()
	expected := c.incomingSeq + 1
	c.mu.Unlock()
	if seq != expected {
		return nil, domain.ErrReplayDetected
	}

	pt, err := crypto.OpenGCM(c.Key, iv, ciphertext)
	if err != nil {
		return nil, domain.NewError(domain.CodeAuthFailed, "channel.open", err)
	}

	c.mu.Lock()
	if seq == c.incomingSeq+1 {
		c.incomingSeq = seq
	}
	c.mu.Unlock()
	return pt, nil
}

// OutgoingSequence returns the last sequence number this channel has
// sent, for persistence into a client store session blob.
func (c *Channel) OutgoingSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outgoingSeq
}

// IncomingSequence returns the last sequence number this channel has
// accepted from the peer.
func (c *Channel) IncomingSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.incomingSeq
}

// Restore rehydrates counters after a process restart (resume, §9).
func (c *Channel) Restore(outgoing, incoming uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outgoingSeq = outgoing
	c.incomingSeq = incoming
}
