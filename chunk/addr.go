package chunk

// LogChunkSize is the base-2 log of the default chunk size in rows.
// CHUNK_SZ = 1 << LogChunkSize.
const LogChunkSize = 20 // 1Mi rows per chunk

// ChunkSize is the uniform size, in rows, of every chunk except the last.
const ChunkSize = int64(1) << LogChunkSize

// Elem2ChunkIdx maps a row index to its chunk index given a total chunk
// count. The clamp to nChunks-1 is what realizes the fat-tail rule: rows
// that would start a chunk past the last one are folded into the last
// chunk instead.
func Elem2ChunkIdx(row int64, nChunks int) int {
	cidx := int(row >> LogChunkSize)
	if cidx >= nChunks {
		cidx = nChunks - 1
	}
	if cidx < 0 {
		cidx = 0
	}
	return cidx
}

// Chunk2StartElem maps a chunk index to the row at which it starts.
func Chunk2StartElem(cidx int) int64 {
	return int64(cidx) << LogChunkSize
}

// NChunksForLength returns the number of chunks a vector of the given
// length (in rows) is partitioned into. Always at least 1, even for a
// zero-length vector, matching the file-backed vector's NFSFileVec lineage
// (max(1, L >> LOG_CHK)).
func NChunksForLength(length int64) int {
	n := int(length >> LogChunkSize)
	if n < 1 {
		n = 1
	}
	return n
}

// ChunkLen returns the length, in rows, of chunk cidx out of nChunks total,
// for a vector of the given total length. The last chunk absorbs the
// remainder (fat tail).
func ChunkLen(cidx, nChunks int, length int64) int64 {
	if cidx < nChunks-1 {
		return ChunkSize
	}
	return length - Chunk2StartElem(cidx)
}
