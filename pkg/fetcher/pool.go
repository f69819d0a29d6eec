package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/partfetch/partfetch/pkg/cache"
)

// Prometheus metrics for pool operations.
var (
	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partfetch_tasks_total",
		Help: "Total tasks by outcome",
	}, []string{"outcome"})

	operationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "partfetch_operation_duration_seconds",
		Help:    "Duration of a full multi-part fetch operation in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	workersSpawned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "partfetch_workers_per_operation",
		Help:    "Number of workers spawned per operation",
		Buckets: []float64{1, 2, 4, 8, 16, 32},
	})
)

// Pool fetches the parts of a logical resource with a bounded number of
// concurrent download workers.
type Pool struct {
	transport Transport
	fetcher   *Fetcher
	logger    zerolog.Logger
}

// NewPool creates a worker pool over the given transport and cache
// gateway. A nil gateway disables caching.
func NewPool(tr Transport, gw cache.Gateway) *Pool {
	if gw == nil {
		gw = cache.Nop()
	}
	return &Pool{
		transport: tr,
		fetcher:   New(tr, gw),
		logger:    log.With().Str("component", "pool").Logger(),
	}
}

// aggregator recomputes the combined progress of an operation on every
// per-task tick. Emission is serialized so the caller observes a
// monotonically non-decreasing loaded count.
type aggregator struct {
	set        *TaskSet
	total      int64
	onProgress ProgressFunc
	mu         sync.Mutex
}

// tick returns the per-task progress closure handed to the single-part
// fetcher, or nil when the caller did not request progress.
func (a *aggregator) tick(task *Task) ProgressFunc {
	if a.onProgress == nil {
		return nil
	}
	return func(loaded, transferTotal int64) {
		// transferTotal is the transport's own declaration for this one
		// transfer and may disagree with the probed aggregate total; it
		// is recorded per task but the aggregate reports the probe sum.
		task.UpdateProgress(loaded, transferTotal)

		a.mu.Lock()
		a.onProgress(a.set.LoadedBytes(), a.total)
		a.mu.Unlock()
	}
}

// FetchResources retrieves every identifier and returns the byte buffers
// in input order.
//
// At most maxParallel workers run concurrently (clamped to at least 1 and
// never more than there are identifiers). When onProgress is non-nil the
// byte length of every identifier is probed up front, failing fast with
// ErrSizeUnavailable before any transfer starts, and onProgress receives
// (sum of bytes loaded, sum of probed sizes) on every progress tick from
// any worker. With a nil onProgress no probe is issued.
//
// A failed task stops only its owning worker; the others keep draining
// the queue. After all workers have exited the first error encountered is
// returned alongside the partial results, so a non-nil error means the
// result set may be incomplete.
func (p *Pool) FetchResources(ctx context.Context, identifiers []string, maxParallel int, onProgress ProgressFunc) ([][]byte, error) {
	if len(identifiers) == 0 {
		return [][]byte{}, nil
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	start := time.Now()
	defer func() {
		operationDuration.Observe(time.Since(start).Seconds())
	}()

	// The aggregate total is computed once, up front, and never revised.
	total := TotalUnknown
	if onProgress != nil {
		var sum int64
		for _, id := range identifiers {
			size, err := p.transport.Probe(ctx, id)
			if err != nil {
				p.logger.Error().Err(err).Str("identifier", id).Msg("Size probe failed")
				return nil, err
			}
			sum += size
		}
		total = sum
	}

	set := NewTaskSet(identifiers)
	agg := &aggregator{set: set, total: total, onProgress: onProgress}

	workers := maxParallel
	if n := set.Len(); workers > n {
		workers = n
	}
	workersSpawned.Observe(float64(workers))

	p.logger.Debug().
		Int("identifiers", set.Len()).
		Int("workers", workers).
		Int64("total_bytes", total).
		Msg("Starting fetch operation")

	var (
		errMu    sync.Mutex
		firstErr error
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for {
				task, ok := set.ClaimNext()
				if !ok {
					return
				}

				data, err := p.fetcher.Fetch(ctx, task.Identifier(), agg.tick(task))
				if err != nil {
					tasksTotal.WithLabelValues("failed").Inc()
					p.logger.Error().
						Err(err).
						Int("worker_id", workerID).
						Str("identifier", task.Identifier()).
						Msg("Task failed, worker stopping")

					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()

					// The failure is fatal to this worker only; siblings
					// keep draining the queue.
					return
				}

				task.setResult(data)
				tasksTotal.WithLabelValues("completed").Inc()
			}
		}(i)
	}

	wg.Wait()

	results := set.FinalResults()
	if firstErr != nil {
		p.logger.Warn().
			Err(firstErr).
			Int("identifiers", set.Len()).
			Msg("Fetch operation finished with failures")
		return results, firstErr
	}

	p.logger.Debug().
		Int("identifiers", set.Len()).
		Dur("duration", time.Since(start)).
		Msg("Fetch operation complete")

	return results, nil
}

// FetchResource retrieves a single identifier and returns its bytes as an
// unwrapped buffer.
func (p *Pool) FetchResource(ctx context.Context, identifier string, onProgress ProgressFunc) ([]byte, error) {
	results, err := p.FetchResources(ctx, []string{identifier}, 1, onProgress)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}
