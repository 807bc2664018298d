// Package directory defines the identity directory collaborator
// interface (§1, §9): lookup of long-term verification keys by user id.
// Registration, fingerprinting UI, and the encryption keypair are out of
// scope for the core; only the signing public key matters here.
package directory

import (
	"context"
	"crypto/rsa"
)

// Lookup is the minimal capability set the handshake validator needs: a
// duck-typed interface, not an inheritance hierarchy (§9).
type Lookup interface {
	// SigningKey returns the long-term RSA-PSS verification key for
	// userID, or (nil, ErrNotFound) if the identity is unknown or has no
	// registered signing key.
	SigningKey(ctx context.Context, userID string) (*rsa.PublicKey, error)
}

// ErrNotFound is returned by implementations when userID has no
// registered identity.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "directory: identity not found" }
