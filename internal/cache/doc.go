// Package cache memoizes pipeline results in memory.
//
// LRU is a bounded, mutex-guarded least-recently-used map. Memo combines an
// LRU with a singleflight group so that concurrent requests for the same key
// compute the value once. Keys carry a Kind, which separates key spaces, and
// a Digest, an xxhash fingerprint of every input the value depends on.
// A changed input produces a different digest, so entries never need
// explicit invalidation.
package cache
