// Package testutil provides testing utilities for the map/reduce
// execution core.
//
// ChunkCoverageRecorder tracks which chunk indices have been mapped
// during a task invocation, so a test can assert the "every chunk
// mapped exactly once" invariant (spec.md §8 invariant 1) cheaply even
// at large chunk counts, backed by a roaring bitmap rather than a
// map[int]bool.
package testutil
