package objectstore

import (
	"context"
	"testing"
)

func TestReadChunkedAssemblesAllParts(t *testing.T) {
	want := make([]byte, 97)
	for i := range want {
		want[i] = byte(i)
	}
	store := newMemStore("bucket")
	if err := store.Put(context.Background(), "big", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	blob, err := store.Open(context.Background(), "big")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer blob.Close()

	lim := NewRangeLimiter(1000, 4)
	out := make([]byte, len(want))
	if err := ReadChunked(context.Background(), lim, blob, int64(len(want)), 5, out); err != nil {
		t.Fatalf("ReadChunked: %v", err)
	}
	if string(out) != string(want) {
		t.Errorf("assembled bytes do not match")
	}
}

func TestReadChunkedSinglePart(t *testing.T) {
	want := []byte("small blob")
	store := newMemStore("bucket")
	store.Put(context.Background(), "small", want)
	blob, _ := store.Open(context.Background(), "small")
	defer blob.Close()

	lim := NewRangeLimiter(1000, 2)
	out := make([]byte, len(want))
	if err := ReadChunked(context.Background(), lim, blob, int64(len(want)), 1, out); err != nil {
		t.Fatalf("ReadChunked: %v", err)
	}
	if string(out) != string(want) {
		t.Errorf("got %q, want %q", out, want)
	}
}
