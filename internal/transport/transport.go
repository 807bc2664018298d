// Package transport defines the Transport collaborator interface (§1,
// §9): authenticated delivery of opaque JSON bodies between parties via
// the relay. Bearer-token authentication of the transport itself, and
// the HTTP/TLS stack it rides on, are explicitly out of scope (§1) —
// this file describes the shape the core depends on; http.go holds
// HTTPTransport, a plain net/http implementation of it.
package transport

import "context"

// Transport delivers an opaque JSON-encoded body to the relay endpoint
// named by path, sending callerToken as the bearer token, returning the
// HTTP status and the relay's JSON response body or an error.
type Transport interface {
	Post(ctx context.Context, path string, callerToken string, body []byte) (status int, respBody []byte, err error)
	Get(ctx context.Context, path string, callerToken string) (status int, respBody []byte, err error)
}
