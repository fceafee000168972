// Package rpc defines the call contract the map/reduce core consumes to
// dispatch work to a peer node and collect its result. The transport
// itself — credentials, wire framing, retries at the network layer — is
// an external collaborator; this package only names what the core needs
// from it. Package cluster/local ships an in-process implementation
// standing in for a real transport, used by tests, the CLI harness, and
// single-binary deployments.
package rpc

import "context"

// Call represents one outstanding remote invocation. Get blocks for the
// reply; Cancel requests the remote side abandon the call. Both must be
// safe to call from any goroutine, and Cancel must be idempotent and
// safe to call after Get has returned.
type Call[Resp any] interface {
	// Get blocks until the remote call completes, returning the remote's
	// reply or the error it raised (or the local cancellation error, if
	// Cancel was called first).
	Get(ctx context.Context) (Resp, error)
	// Cancel requests the remote node abandon the call. A cancelled
	// call's Get returns promptly rather than blocking forever.
	Cancel()
}

// Dispatcher issues an RPC carrying payload to the node at index peer
// and returns a Call handle for it. The core never blocks a pool worker
// on Get directly; see task.postLocal for where the blocking happens.
type Dispatcher[Req, Resp any] interface {
	Dispatch(ctx context.Context, peer int, payload Req) Call[Resp]
}
