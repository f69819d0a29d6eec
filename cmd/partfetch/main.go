package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/partfetch/partfetch/pkg/cache"
	"github.com/partfetch/partfetch/pkg/envcheck"
	"github.com/partfetch/partfetch/pkg/fetcher"
	"github.com/partfetch/partfetch/pkg/logging"
	"github.com/partfetch/partfetch/pkg/transport"
)

type cliOptions struct {
	Parallel   int
	RedisAddr  string
	Namespace  string
	OutputDir  string
	Progress   bool
	LogLevel   string
	PrettyLogs bool
	UserAgent  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts cliOptions

	cmd := &cobra.Command{
		Use:   "partfetch [url...]",
		Short: "Fetch the parts of a resource in parallel, preferring a local content cache",
		Long: `partfetch retrieves one logical resource split across multiple URLs.
Each part is served from the content cache when present, and transferred
from the origin otherwise. Transfers run on a bounded pool of download
workers and report one combined progress figure across all parts.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&opts.Parallel, "parallel", "p", 4, "maximum concurrent download workers")
	fl.StringVar(&opts.RedisAddr, "redis", envOr("PARTFETCH_REDIS", ""), "Redis address for the content cache (empty disables caching)")
	fl.StringVar(&opts.Namespace, "namespace", "partfetch", "cache key namespace")
	fl.StringVarP(&opts.OutputDir, "output", "o", "", "directory to write fetched parts to (single URL defaults to stdout)")
	fl.BoolVar(&opts.Progress, "progress", false, "report combined progress on stderr")
	fl.StringVar(&opts.LogLevel, "log-level", envOr("PARTFETCH_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fl.BoolVar(&opts.PrettyLogs, "pretty", false, "human-readable log output")
	fl.StringVar(&opts.UserAgent, "user-agent", "", "override the User-Agent header")

	return cmd
}

func run(ctx context.Context, opts cliOptions, urls []string, stderr io.Writer) error {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(opts.LogLevel),
		Pretty: opts.PrettyLogs,
		Output: stderr,
	})

	gw := cache.Nop()
	var redisClient *redis.Client
	if opts.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		defer redisClient.Close()
		gw = cache.NewRedisStore(redisClient, opts.Namespace)
	}

	if err := envcheck.Check(ctx, redisClient); err != nil {
		return fmt.Errorf("environment check: %w", err)
	}

	trOpts := transport.DefaultOptions()
	if opts.UserAgent != "" {
		trOpts.UserAgent = opts.UserAgent
	}
	pool := fetcher.NewPool(transport.NewClient(trOpts), gw)

	var onProgress fetcher.ProgressFunc
	if opts.Progress {
		onProgress = progressPrinter(stderr)
	}

	results, err := pool.FetchResources(ctx, urls, opts.Parallel, onProgress)
	if opts.Progress {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return err
	}

	logger.Info().
		Int("parts", len(results)).
		Msg("Fetch complete")

	return writeResults(urls, results, opts.OutputDir)
}

// progressPrinter renders the combined (loaded, total) pair as a single
// carriage-return updated line.
func progressPrinter(w io.Writer) fetcher.ProgressFunc {
	return func(loaded, total int64) {
		if total == fetcher.TotalUnknown {
			fmt.Fprintf(w, "\r%d bytes", loaded)
			return
		}
		pct := float64(loaded) / float64(total) * 100
		fmt.Fprintf(w, "\r%d / %d bytes (%.1f%%)", loaded, total, pct)
	}
}

// writeResults writes each part buffer to a file in dir. A single part
// with no output directory goes to stdout.
func writeResults(urls []string, results [][]byte, dir string) error {
	if dir == "" && len(results) == 1 {
		_, err := os.Stdout.Write(results[0])
		return err
	}
	if dir == "" {
		dir = "."
	}

	for i, data := range results {
		name := outputName(urls[i], i)
		dest := filepath.Join(dir, name)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
	}
	return nil
}

// outputName derives a local filename from a part URL, falling back to a
// positional name when the URL has no usable path component.
func outputName(rawURL string, index int) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	return fmt.Sprintf("part-%d", index)
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
