package cache

import "context"

// Gateway is a named, keyed byte-blob store consulted before a network
// transfer. Implementations must be safe for concurrent use by multiple
// workers.
//
// A missing cache backend is a valid configuration: use Nop().
type Gateway interface {
	// Lookup returns the cached bytes for the identifier, if present.
	// Backend failures are reported as a miss; a lookup must never fail
	// the surrounding fetch.
	Lookup(ctx context.Context, identifier string) ([]byte, bool)

	// Store writes the bytes for the identifier. Stores are best-effort:
	// the caller has already succeeded from its own point of view and
	// must not fail on a store error.
	Store(ctx context.Context, identifier string, data []byte) error
}

// nop is the null-object gateway used when no cache backend is configured.
type nop struct{}

// Nop returns a Gateway with no backing store: Lookup always misses and
// Store is a no-op.
func Nop() Gateway {
	return nop{}
}

func (nop) Lookup(context.Context, string) ([]byte, bool) { return nil, false }

func (nop) Store(context.Context, string, []byte) error { return nil }
