// Package cache provides LRU caching for chunk blob data, fronting
// object-store-backed vectors so repeat ranged reads of the same chunk
// (one per local fork/join leaf that opens the blob independently) hit
// RAM instead of a fresh GET.
//
// # Block Cache (RAM)
//
// ShardedLRUBlockCache caches fixed-size byte blocks keyed by blob path
// and block offset. It uses 64-way sharding for high concurrency
// (~18ns access under parallel load).
//
// Key features:
//   - Lock-free shard selection using a hash/maphash hash
//   - Per-shard mutex for minimal contention
//   - Integrated with ResourceController for memory limits
//
// # Disk Cache (L2)
//
// For object-store backends, DiskBlockCache provides a persistent L2 cache:
//   - Async writes to avoid blocking the read path
//   - LRU eviction with configurable size limits
//   - Rebuilds index from disk on startup
package cache
