// Package cache provides the content cache consulted before a network
// transfer: a Gateway interface over a named, keyed byte-blob store.
//
// Entries map a resource identifier verbatim to an immutable blob. The
// package manages no expiry or eviction; entries are durable across
// invocations.
//
// Three implementations are provided:
//
//   - RedisStore: durable Redis-backed store with a configurable key
//     namespace, for sharing a cache across processes.
//   - Memory: in-process map, for single-process use without an external
//     backend and for tests.
//   - Nop(): the null object used when caching is disabled. Lookup always
//     misses and Store is a no-op, so callers never branch on "is there
//     a cache".
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create gateway with a key namespace
//	gw := cache.NewRedisStore(redisClient, "partfetch")
//
//	// Lookup before transferring
//	if data, ok := gw.Lookup(ctx, identifier); ok {
//		return data, nil
//	}
//
//	// Best-effort store after a successful transfer
//	if err := gw.Store(ctx, identifier, data); err != nil {
//		// log and continue; a store failure must not fail the fetch
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - partfetch_cache_hits_total{backend} - Cache hits
//   - partfetch_cache_misses_total - Cache misses
//   - partfetch_cache_stored_bytes_total - Bytes written into the cache
//   - partfetch_cache_errors_total{operation} - Backend operation errors
package cache
