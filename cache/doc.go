// Package cache defines the key/value + document store contract the engine
// uses as a read-through cache for expensive full-table reads.
//
// # Overview
//
// Store is deliberately minimal: existence check, whole-document get/set, and
// delete. There is no TTL semantics at this level; invalidation is
// event-driven by the coordinators that own each cached document (see the
// category package for the cache-aside read path and invalidate-on-write
// rules).
//
// The default implementation (constructed by NewStore) keeps documents
// in-process in a sharded sturdyc cache with msgpack-encoded values. Any
// backend can be substituted by implementing Store; transport failures must
// wrap ErrUnavailable so callers can fall through to the source of truth.
//
// # Failure semantics
//
//   - A missing key is never an error: Exists returns false, GetDocument
//     returns found=false, Delete is a no-op.
//   - A stored nil document is present: GetDocument returns found=true and
//     leaves dest zero-valued. "Cache says empty" and "cache miss" stay
//     distinguishable.
//   - Everything else wraps ErrUnavailable.
package cache
