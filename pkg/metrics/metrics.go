// Package metrics provides the centralized Prometheus metrics registry
// reference for partfetch. All metrics are defined in their respective
// packages (transport, cache, fetcher) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by partfetch.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Transport Metrics (pkg/transport):
//   - partfetch_transfers_total{outcome} (Counter): Transfers by outcome (ok, error)
//   - partfetch_transfer_duration_seconds (Histogram): Transfer duration
//   - partfetch_transfer_bytes_total (Counter): Bytes transferred from origins
//   - partfetch_probes_total{outcome} (Counter): Size probes by outcome (ok, no_length, error)
//
// Cache Metrics (pkg/cache):
//   - partfetch_cache_hits_total{backend} (Counter): Cache hits by backend (redis, memory)
//   - partfetch_cache_misses_total (Counter): Cache misses
//   - partfetch_cache_stored_bytes_total (Counter): Bytes written into the cache
//   - partfetch_cache_errors_total{operation} (Counter): Backend errors by operation
//
// Pool Metrics (pkg/fetcher):
//   - partfetch_tasks_total{outcome} (Counter): Tasks by outcome (completed, failed)
//   - partfetch_operation_duration_seconds (Histogram): Full operation duration
//   - partfetch_workers_per_operation (Histogram): Workers spawned per operation
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(partfetch_cache_hits_total[5m])) /
//   (sum(rate(partfetch_cache_hits_total[5m])) + sum(rate(partfetch_cache_misses_total[5m])))
//
//   # Task Failure Rate
//   rate(partfetch_tasks_total{outcome="failed"}[5m])
//
//   # P95 Transfer Latency
//   histogram_quantile(0.95, rate(partfetch_transfer_duration_seconds_bucket[5m]))
//
//   # Origin Throughput
//   rate(partfetch_transfer_bytes_total[5m])
