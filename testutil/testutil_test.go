package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkCoverageRecorderDetectsDoubleMap(t *testing.T) {
	r := NewChunkCoverageRecorder()

	assert.True(t, r.Record(3))
	assert.False(t, r.Record(3))
	assert.Equal(t, 1, r.Count())
}

func TestChunkCoverageRecorderConcurrent(t *testing.T) {
	r := NewChunkCoverageRecorder()

	const n = 500
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(cidx int) {
			defer wg.Done()
			r.Record(cidx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, r.Count())
	assert.NoError(t, r.VerifyComplete(n))
}

func TestChunkCoverageRecorderMissing(t *testing.T) {
	r := NewChunkCoverageRecorder()
	r.Record(0)
	r.Record(2)

	assert.Equal(t, []int{1}, r.Missing(3))
	assert.Error(t, r.VerifyComplete(3))
}
