// Package timeouts provides centralized timeout values for handler operations.
//
// Handlers pick a class by what the request does, not by route:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "folders.list")
//	defer cancel()
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultRead     = 5 * time.Second
	DefaultWrite    = 10 * time.Second
	DefaultTransfer = 2 * time.Minute
	DefaultSweep    = 10 * time.Minute
)

// EnvPrefix is prepended to each class name when reading the environment,
// e.g. STRATAFOLDERS_TIMEOUT_TRANSFER=5m.
const EnvPrefix = "STRATAFOLDERS_TIMEOUT_"

// Config holds timeout configuration values. Zero fields are ignored by
// Configure.
type Config struct {
	Ping     time.Duration // health checks
	Read     time.Duration // single lookups, listings, stats
	Write    time.Duration // creates, updates, cascades
	Transfer time.Duration // blob upload and download
	Sweep    time.Duration // orphan blob sweep
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:     DefaultPing,
		Read:     DefaultRead,
		Write:    DefaultWrite,
		Transfer: DefaultTransfer,
		Sweep:    DefaultSweep,
	}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Read returns the timeout for read-only operations.
func Read() time.Duration { return get(func(c Config) time.Duration { return c.Read }) }

// Write returns the timeout for metadata writes.
func Write() time.Duration { return get(func(c Config) time.Duration { return c.Write }) }

// Transfer returns the timeout for moving blob content.
func Transfer() time.Duration { return get(func(c Config) time.Duration { return c.Transfer }) }

// Sweep returns the timeout for a full orphan sweep.
func Sweep() time.Duration { return get(func(c Config) time.Duration { return c.Sweep }) }

// fields pairs each Config field with its environment suffix.
func fields(c *Config) []struct {
	env string
	ptr *time.Duration
} {
	return []struct {
		env string
		ptr *time.Duration
	}{
		{"PING", &c.Ping},
		{"READ", &c.Read},
		{"WRITE", &c.Write},
		{"TRANSFER", &c.Transfer},
		{"SWEEP", &c.Sweep},
	}
}

// Configure sets custom timeout values.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	src := fields(&cfg)
	dst := fields(&cur)
	for i := range src {
		if *src[i].ptr > 0 {
			*dst[i].ptr = *src[i].ptr
		}
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads STRATAFOLDERS_TIMEOUT_* variables and returns how
// many were applied. Unparseable or non-positive values are skipped.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, f := range fields(&cfg) {
		v := os.Getenv(EnvPrefix + f.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*f.ptr = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// WithTimeout creates a context with timeout and logs when the deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
