package testutil

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// ChunkCoverageRecorder tracks, across however many goroutines a
// fork/join tree or a distributed fan-out spreads work over, which
// chunk indices of a vector have been mapped. Record reports whether
// cidx had already been recorded, so a test's map() stub can fail fast
// on the first double-map rather than only noticing at the end.
type ChunkCoverageRecorder struct {
	mu   sync.Mutex
	seen *roaring.Bitmap
}

// NewChunkCoverageRecorder creates an empty recorder.
func NewChunkCoverageRecorder() *ChunkCoverageRecorder {
	return &ChunkCoverageRecorder{seen: roaring.New()}
}

// Record marks cidx as mapped. It returns false if cidx was already
// marked — a map()-exactly-once violation.
func (r *ChunkCoverageRecorder) Record(cidx int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen.CheckedAdd(uint32(cidx))
}

// Count returns how many distinct chunk indices have been recorded.
func (r *ChunkCoverageRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.seen.GetCardinality())
}

// Missing returns the indices in [0, nChunks) that were never
// recorded, for a test failure message that names exactly what was
// skipped.
func (r *ChunkCoverageRecorder) Missing(nChunks int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []int
	for i := 0; i < nChunks; i++ {
		if !r.seen.Contains(uint32(i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// VerifyComplete returns an error naming every chunk in [0, nChunks)
// that was never recorded, or nil if coverage is exact.
func (r *ChunkCoverageRecorder) VerifyComplete(nChunks int) error {
	missing := r.Missing(nChunks)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("testutil: %d/%d chunks never mapped: %v", len(missing), nChunks, missing)
}
