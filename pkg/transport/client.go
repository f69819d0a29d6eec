// Package transport provides the HTTP transfer capability used by the
// fetcher: a header-only size probe and a full-body GET with streaming
// progress notification.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for transport operations.
var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partfetch_transfers_total",
		Help: "Total transfers by outcome",
	}, []string{"outcome"})

	transferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "partfetch_transfer_duration_seconds",
		Help:    "Transfer duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	transferBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partfetch_transfer_bytes_total",
		Help: "Total bytes transferred from origins",
	})

	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partfetch_probes_total",
		Help: "Total size probes by outcome",
	}, []string{"outcome"})
)

// TotalUnknown is the sentinel total reported when the byte length of a
// transfer (or of the whole operation) is not known.
const TotalUnknown int64 = -1

// ProgressFunc receives progress notifications as (bytes loaded, bytes total).
// Total may be TotalUnknown when the origin did not declare a length.
type ProgressFunc func(loaded, total int64)

// readChunkSize is the buffer size for streaming body reads.
const readChunkSize = 32 * 1024

// Options holds the transport configuration.
type Options struct {
	// Timeout for a full request including body transfer.
	Timeout time.Duration

	// UserAgent sent with every request.
	UserAgent string

	// MaxIdleConnsPerHost sets the idle connection pool size per host.
	MaxIdleConnsPerHost int
}

// DefaultOptions returns a safe default configuration.
func DefaultOptions() Options {
	return Options{
		Timeout:             5 * time.Minute,
		UserAgent:           "partfetch/0.1.0",
		MaxIdleConnsPerHost: 16,
	}
}

// Client performs HTTP transfers for resource identifiers (URLs).
// It is safe for concurrent use by multiple workers.
type Client struct {
	httpClient *http.Client
	opts       Options
	logger     zerolog.Logger
}

// NewClient creates a new transport client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = DefaultOptions().MaxIdleConnsPerHost
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts:   opts,
		logger: log.With().Str("component", "transport").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Probe issues a metadata-only request for the identifier and returns the
// declared content length. The underlying request is aborted as soon as
// the headers have been read; the body is never transferred.
// Returns ErrSizeUnavailable when the length is absent or not declared.
func (c *Client) Probe(ctx context.Context, identifier string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identifier, nil)
	if err != nil {
		probesTotal.WithLabelValues("error").Inc()
		return 0, &ProbeError{Identifier: identifier, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("identifier", identifier).Msg("Probe request failed")
		probesTotal.WithLabelValues("error").Inc()
		return 0, &ProbeError{Identifier: identifier, Err: err}
	}
	// Abort the body immediately; only the headers are needed.
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("identifier", identifier).
			Int("status", resp.StatusCode).
			Msg("Probe got non-OK status")
		probesTotal.WithLabelValues("error").Inc()
		return 0, &ProbeError{Identifier: identifier, StatusCode: resp.StatusCode}
	}

	if resp.ContentLength < 0 {
		probesTotal.WithLabelValues("no_length").Inc()
		return 0, &ProbeError{
			Identifier: identifier,
			Err:        fmt.Errorf("no content length declared"),
		}
	}

	c.logger.Debug().
		Str("identifier", identifier).
		Int64("size", resp.ContentLength).
		Msg("Probed resource size")
	probesTotal.WithLabelValues("ok").Inc()

	return resp.ContentLength, nil
}

// Get performs a full-body transfer of the identifier. While the body
// streams in, onProgress (if non-nil) is invoked with the bytes read so
// far and the total declared by the origin for this transfer.
// Any network or HTTP failure surfaces as ErrTransferFailed.
func (c *Client) Get(ctx context.Context, identifier string, onProgress ProgressFunc) ([]byte, error) {
	start := time.Now()
	defer func() {
		transferDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identifier, nil)
	if err != nil {
		transfersTotal.WithLabelValues("error").Inc()
		return nil, &TransferError{Identifier: identifier, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("identifier", identifier).Msg("Transfer request failed")
		transfersTotal.WithLabelValues("error").Inc()
		return nil, &TransferError{Identifier: identifier, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("identifier", identifier).
			Int("status", resp.StatusCode).
			Msg("Transfer got non-OK status")
		transfersTotal.WithLabelValues("error").Inc()
		return nil, &TransferError{Identifier: identifier, StatusCode: resp.StatusCode}
	}

	// The total passed to onProgress is the origin's own declaration for
	// this transfer. It may differ from a probe result obtained earlier.
	total := resp.ContentLength
	if total < 0 {
		total = TotalUnknown
	}

	data, err := c.readAll(resp.Body, total, onProgress)
	if err != nil {
		c.logger.Error().Err(err).Str("identifier", identifier).Msg("Transfer aborted mid-stream")
		transfersTotal.WithLabelValues("error").Inc()
		return nil, &TransferError{Identifier: identifier, Err: err}
	}

	c.logger.Debug().
		Str("identifier", identifier).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Transfer complete")
	transfersTotal.WithLabelValues("ok").Inc()
	transferBytesTotal.Add(float64(len(data)))

	return data, nil
}

// readAll streams the body in chunks, notifying onProgress after each read.
func (c *Client) readAll(body io.Reader, total int64, onProgress ProgressFunc) ([]byte, error) {
	var data []byte
	if total > 0 {
		data = make([]byte, 0, total)
	}

	buf := make([]byte, readChunkSize)
	var loaded int64

	for {
		n, err := body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			loaded += int64(n)
			if onProgress != nil {
				onProgress(loaded, total)
			}
		}
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
}
