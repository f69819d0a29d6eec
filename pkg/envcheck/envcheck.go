// Package envcheck provides the startup environment compatibility probe.
// It is evaluated once before any fetch is attempted; the fetch path
// itself assumes it has passed and never re-checks.
package envcheck

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// Check verifies that the process environment can support fetch
// operations: any configured HTTP proxy must be well-formed, and the
// cache backend (when one is configured) must be reachable. A nil
// redisClient means caching is disabled and only the transport
// environment is checked.
func Check(ctx context.Context, redisClient *redis.Client) error {
	if err := checkProxyEnv(); err != nil {
		return err
	}

	if redisClient != nil {
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("cache backend unreachable: %w", err)
		}
	}

	return nil
}

// checkProxyEnv validates the proxy configuration the transport will pick
// up from the environment.
func checkProxyEnv() error {
	probe, err := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	if err != nil {
		return err
	}

	if _, err := http.ProxyFromEnvironment(probe); err != nil {
		return fmt.Errorf("invalid proxy configuration: %w", err)
	}

	return nil
}
