package objectstore

import (
	"bytes"
	"context"

	"github.com/distcol/mrengine/blobstore"
	"github.com/distcol/mrengine/internal/cache"
	"github.com/distcol/mrengine/internal/resource"
)

// Adapter makes a Store usable wherever a blobstore.BlobStore is
// expected, so vector.FileVec and vector.AppendableVec can be backed
// by S3 or MinIO without knowing the difference between local and
// object-store-backed storage.
type Adapter struct {
	store Store
}

// Wrap returns a blobstore.BlobStore backed by store.
func Wrap(store Store) *Adapter {
	return &Adapter{store: store}
}

var _ blobstore.BlobStore = (*Adapter)(nil)

// WrapCached returns store as a blobstore.BlobStore fronted by a
// sharded block cache, for object-store-backed vectors where the
// same chunk range is read repeatedly across sibling local fork/join
// leaves (each leaf opens the blob independently) and every cache hit
// avoids a ranged GET. cacheBytes bounds the cache's total size;
// blockSize is the unit it caches in (0 defaults to 4KiB, matching
// blobstore.NewCachingStore).
func WrapCached(store Store, cacheBytes, blockSize int64) blobstore.BlobStore {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: cacheBytes})
	blockCache := cache.NewShardedLRUBlockCache(cacheBytes, rc)
	return blobstore.NewCachingStore(Wrap(store), blockCache, blockSize)
}

func (a *Adapter) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := a.store.Open(ctx, name)
	if err != nil {
		if err == ErrNotFound {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Create buffers writes in memory and Puts the whole blob on Close,
// since object stores address blobs as whole objects rather than
// streams opened for incremental append.
func (a *Adapter) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return &bufferedBlob{ctx: ctx, store: a.store, name: name}, nil
}

func (a *Adapter) Put(ctx context.Context, name string, data []byte) error {
	if IsHexName(name) {
		return PutHex(ctx, a.store, name, nil, data)
	}
	return a.store.Put(ctx, name, data)
}

func (a *Adapter) Delete(ctx context.Context, name string) error {
	return a.store.Delete(ctx, name)
}

func (a *Adapter) List(ctx context.Context, prefix string) ([]string, error) {
	return a.store.List(ctx, prefix)
}

type bufferedBlob struct {
	ctx   context.Context
	store Store
	name  string
	buf   bytes.Buffer
}

func (b *bufferedBlob) Write(p []byte) (int, error) { return b.buf.Write(p) }

func (b *bufferedBlob) Sync() error { return nil }

func (b *bufferedBlob) Close() error {
	if IsHexName(b.name) {
		return PutHex(b.ctx, b.store, b.name, nil, b.buf.Bytes())
	}
	return b.store.Put(b.ctx, b.name, b.buf.Bytes())
}
