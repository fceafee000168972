package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
)

// Kind tags the first byte of a Key, distinguishing chunk keys from legacy
// arraylet-chunk keys. Both kinds cross the wire, so the layout is
// bit-exact and the tag values are part of the wire contract.
type Kind byte

const (
	// KindDVec tags a chunk key for a map/reduce-addressable vector.
	KindDVec Kind = 1
	// KindArrayletChunk tags a legacy array-chunk key, kept for
	// interoperability with stores that still hold data under the older
	// layout.
	KindArrayletChunk Kind = 2
)

// keyLen is len(kind) + len(uuid) + len(chunk index).
const keyLen = 1 + 16 + 4

// Key is an opaque byte identifier for a chunk. A Key is comparable as a
// string (via String) and safe to use as a map key or to send over RPC.
type Key []byte

// NewChunkKey builds a KindDVec key for chunk cidx of the vector identified
// by vecID.
func NewChunkKey(vecID uuid.UUID, cidx int) Key {
	k := make(Key, keyLen)
	k[0] = byte(KindDVec)
	copy(k[1:17], vecID[:])
	binary.BigEndian.PutUint32(k[17:21], uint32(cidx))
	return k
}

// NewArrayletChunkKey builds a KindArrayletChunk key, for compatibility
// with stores addressing legacy array chunks the same way.
func NewArrayletChunkKey(vecID uuid.UUID, cidx int) Key {
	k := NewChunkKey(vecID, cidx)
	k[0] = byte(KindArrayletChunk)
	return k
}

// Kind reports the key's kind tag.
func (k Key) Kind() Kind {
	if len(k) == 0 {
		return 0
	}
	return Kind(k[0])
}

// VectorID returns the vector identifier embedded in the key.
func (k Key) VectorID() (uuid.UUID, error) {
	if len(k) < keyLen {
		return uuid.UUID{}, fmt.Errorf("chunk: malformed key: length %d, want %d", len(k), keyLen)
	}
	var id uuid.UUID
	copy(id[:], k[1:17])
	return id, nil
}

// ChunkIdx returns the chunk index embedded in the key.
func (k Key) ChunkIdx() (int, error) {
	if len(k) < keyLen {
		return 0, fmt.Errorf("chunk: malformed key: length %d, want %d", len(k), keyLen)
	}
	return int(binary.BigEndian.Uint32(k[17:21])), nil
}

// String renders the key as a stable, comparable string suitable for use
// as a map key.
func (k Key) String() string {
	return string(k)
}

// Cloud is the minimal cluster-membership contract Key.Home needs: how many
// nodes there are. It is satisfied by cluster.Cloud.
type Cloud interface {
	Size() int
}

// Home reports whether the chunk addressed by k is homed on the node at
// index self, given the cluster's current size. The home node is the
// deterministic hash of the key's bytes modulo cluster size — every node
// computes the same answer from the key alone, with no side-table.
func (k Key) Home(cloud Cloud, self int) bool {
	return k.HomeIndex(cloud.Size()) == self
}

// HomeIndex returns the index of the node that homes k in a cluster of the
// given size.
func (k Key) HomeIndex(cloudSize int) int {
	if cloudSize <= 0 {
		return 0
	}
	h := murmur3.Sum32(k)
	return int(h % uint32(cloudSize))
}
