package main

import (
	"context"
	"encoding/binary"

	"github.com/distcol/mrengine/codec"
	"github.com/distcol/mrengine/task"
	"github.com/distcol/mrengine/vector"
)

type sumJob struct {
	Total int64
}

func (j *sumJob) Clone() task.Task { return &sumJob{} }

func (j *sumJob) Map(_ context.Context, _ int64, _ int, a vector.ChunkView) error {
	for _, v := range a.Int32s() {
		j.Total += int64(v)
	}
	return nil
}

func (j *sumJob) Reduce(other task.Task) error {
	j.Total += other.(*sumJob).Total
	return nil
}

type dotJob struct {
	Total int64
}

func (j *dotJob) Clone() task.Task { return &dotJob{} }

func (j *dotJob) Map2(_ context.Context, _ int64, _ int, a, b vector.ChunkView) error {
	av, bv := a.Int32s(), b.Int32s()
	n := min(len(av), len(bv))
	for i := 0; i < n; i++ {
		j.Total += int64(av[i]) * int64(bv[i])
	}
	return nil
}

func (j *dotJob) Reduce(other task.Task) error {
	j.Total += other.(*dotJob).Total
	return nil
}

// scaleJob doubles every row of its input column into a new output
// column, one chunk at a time (spec.md's "new/materialized vector"
// produced inside a single map call). Its output is written through
// an AppendableVec configured with codec.LZ4, so the bytes that land in
// kv.Store are the compressed form of the raw int32s the map() loop
// below produced. Total is summed from the doubled values inside Map
// itself; the job does not read its output column back.
type scaleJob struct {
	produced vector.NewChunk
	hasChunk bool
	Total    int64
}

func (j *scaleJob) Clone() task.Task { return &scaleJob{} }

func (j *scaleJob) Map(_ context.Context, _ int64, _ int, a vector.ChunkView) error {
	in := a.Int32s()
	out := make([]byte, len(in)*4)
	for i, v := range in {
		scaled := v * 2
		binary.LittleEndian.PutUint32(out[4*i:], uint32(scaled))
		j.Total += int64(scaled)
	}
	j.produced = vector.NewChunk{Data: out, Codec: codec.Raw}
	j.hasChunk = true
	return nil
}

func (j *scaleJob) Produced() (vector.NewChunk, bool) { return j.produced, j.hasChunk }

func (j *scaleJob) Reduce(other task.Task) error {
	j.Total += other.(*scaleJob).Total
	return nil
}
