// Package redis backs the embedding cache with rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/quoterag/internal/db"
)

var _ db.Store = (*Store)(nil)

// readyPollInterval spaces PINGs while waiting for the cache to come up.
const readyPollInterval = 100 * time.Millisecond

// Config is the subset of connection settings the cache section exposes.
type Config struct {
	Addrs    []string
	Password string
}

// Store keeps cached query and document vectors in Redis.
type Store struct {
	client rueidis.Client
}

// NewStore dials the cache. Client-side caching stays off: every vector is
// read once per question, so tracking invalidations would only cost memory.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("cache addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("dial cache %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping reports whether the cache answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings right away and then every readyPollInterval until the
// cache answers. On timeout the last ping failure is included in the error.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("cache not ready after %s: %w", timeout, errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}
