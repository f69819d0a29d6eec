// Package fetcher retrieves a logical resource split across multiple
// remote parts, with bounded concurrency, a content cache, and combined
// progress reporting.
//
// A Pool runs up to maxParallel download workers over a shared TaskSet.
// Each worker claims the first unstarted task in input order (a
// compare-and-swap, so a task is claimed exactly once), fetches it
// through the single-part Fetcher (cache lookup first, network transfer
// on a miss, best-effort store back), and exits when no unstarted task
// remains. Progress from all in-flight tasks is summed on every tick and
// delivered to the caller as one (loaded, total) pair, where total is the
// sum of up-front size probes.
//
//	pool := fetcher.NewPool(transport.NewClient(transport.DefaultOptions()), gw)
//	results, err := pool.FetchResources(ctx, urls, 4, func(loaded, total int64) {
//		fmt.Printf("\r%d / %d bytes", loaded, total)
//	})
//
// Failure semantics: a probe failure (ErrSizeUnavailable) aborts the
// operation before any transfer starts. A transfer failure
// (ErrTransferFailed) stops only the owning worker; the operation runs to
// completion and returns the first error alongside partial results.
// There is no retry and no cancellation propagation between workers.
package fetcher
