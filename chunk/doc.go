// Package chunk implements chunk addressing for the map/reduce core: mapping
// between a row index, a chunk index, and the opaque key that identifies a
// chunk's bytes on the wire and in the key/value store.
//
// Chunks are uniformly sized (CHUNK_SZ = 1 << LOG_CHK rows) except the final
// chunk of a vector, which absorbs the remainder and may be up to
// 2*CHUNK_SZ-1 rows (the fat-tail rule). A chunk's home node is a
// deterministic function of its key, so the addressing scheme never needs a
// side-table: any node can compute where a chunk lives from the key alone.
package chunk
