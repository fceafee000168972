// Package kv defines the key/value store contract the map/reduce core
// consumes for chunk-data publication and compare-and-swap races (spec.md
// §6: "To the key/value store (consumed)"). The cluster-wide, concurrent
// key/value store itself is an external collaborator — out of scope per
// spec.md §1 — so this package ships two concrete, small implementations:
// an in-memory store for tests and single-node deployments
// (kv/memstore), and a DynamoDB-backed store for durable multi-node
// deployments (kv/ddbstore), whose conditional PutItem is a natural fit
// for the PutIfMatch compare-and-swap contract.
package kv

import "context"

// Store is the contract the map/reduce core needs from the cluster's
// key/value store.
type Store interface {
	// Put unconditionally publishes value under key.
	Put(ctx context.Context, key string, value []byte) error

	// Get retrieves the value published under key. ok is false if no value
	// has been published yet.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// PutIfMatch publishes newValue under key iff the currently published
	// value equals oldValue byte-for-byte (oldValue == nil means "key must
	// not currently exist"). It reports whether the swap won, and in
	// either case returns the value now published under key — the
	// winner's value on a race. This is the compare-and-swap primitive
	// chunk materialization (vector.FileVec) relies on: losers discard
	// their own computed value and adopt the winner's.
	PutIfMatch(ctx context.Context, key string, newValue, oldValue []byte) (won bool, current []byte, err error)
}
