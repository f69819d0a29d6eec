package fetcher

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/partfetch/partfetch/pkg/cache"
	"github.com/partfetch/partfetch/pkg/transport"
)

// ProgressFunc receives progress notifications as (bytes loaded, bytes total).
type ProgressFunc = transport.ProgressFunc

// TotalUnknown is the sentinel total used when progress reporting was not
// requested or the origin did not declare a length.
const TotalUnknown = transport.TotalUnknown

// Error kinds surfaced by fetch operations, re-exported for callers that
// only import this package.
var (
	ErrSizeUnavailable = transport.ErrSizeUnavailable
	ErrTransferFailed  = transport.ErrTransferFailed
)

// Transport is the transfer capability the fetcher depends on.
// *transport.Client implements it; tests substitute counting fakes.
type Transport interface {
	// Probe returns the declared byte length of the identifier without
	// transferring the body.
	Probe(ctx context.Context, identifier string) (int64, error)

	// Get transfers the full body, notifying onProgress (if non-nil)
	// with the transport's own notion of total for this transfer.
	Get(ctx context.Context, identifier string, onProgress ProgressFunc) ([]byte, error)
}

// Fetcher retrieves the bytes of a single resource part, preferring the
// cache and falling back to a network transfer.
type Fetcher struct {
	transport Transport
	cache     cache.Gateway
	logger    zerolog.Logger
}

// New creates a single-part fetcher. A nil gateway disables caching.
func New(tr Transport, gw cache.Gateway) *Fetcher {
	if gw == nil {
		gw = cache.Nop()
	}
	return &Fetcher{
		transport: tr,
		cache:     gw,
		logger:    log.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch returns the bytes for one identifier.
//
// A cache hit returns immediately and never invokes onProgress. On a miss
// the body is transferred with progress notification, then stored back
// into the cache best-effort: a store failure is logged and swallowed,
// the fetch has already succeeded once the bytes are in hand.
func (f *Fetcher) Fetch(ctx context.Context, identifier string, onProgress ProgressFunc) ([]byte, error) {
	if data, ok := f.cache.Lookup(ctx, identifier); ok {
		f.logger.Debug().
			Str("identifier", identifier).
			Int("bytes", len(data)).
			Msg("Serving resource from cache")
		return data, nil
	}

	data, err := f.transport.Get(ctx, identifier, onProgress)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Store(ctx, identifier, data); err != nil {
		f.logger.Warn().Err(err).Str("identifier", identifier).Msg("Cache store failed")
	}

	return data, nil
}
