package objectstore

import (
	"context"
	"io"
	"testing"
)

func TestWrapCachedServesRepeatedReadsFromCache(t *testing.T) {
	store := newMemStore("bucket")
	ctx := context.Background()
	data := []byte("the quick brown fox jumps over the lazy dog")
	if err := store.Put(ctx, "chunk-0", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cached := WrapCached(store, 1<<20, 8)

	for i := 0; i < 3; i++ {
		blob, err := cached.Open(ctx, "chunk-0")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		buf := make([]byte, len(data))
		if _, err := blob.ReadAt(ctx, buf, 0); err != nil && err != io.EOF {
			t.Fatalf("ReadAt: %v", err)
		}
		if string(buf) != string(data) {
			t.Errorf("read %d: got %q, want %q", i, buf, data)
		}
		blob.Close()
	}
}
