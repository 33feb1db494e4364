// Package bootstrap assembles the pieces shared by the service and the
// preload command: the cache store and the embedder decorator chains.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/config"
	"github.com/kailas-cloud/quoterag/internal/db"
	dbRedis "github.com/kailas-cloud/quoterag/internal/db/redis"
	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/metrics"
	"github.com/kailas-cloud/quoterag/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/quoterag/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/quoterag/internal/usecase/embedding"
)

// OpenCache connects to the embedding cache and waits until it answers.
// It returns a nil store when the cache is disabled.
func OpenCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}

	if err := store.WaitForReady(ctx, config.Seconds(cfg.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("wait for cache: %w", err)
	}
	logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Addrs))
	return store, nil
}

// Embedders builds the document and query embedder chains. They share the
// provider client and the cache; only the instruction prefix differs.
func Embedders(cfg config.Config, store db.Store, logger *zap.Logger) (doc, query domain.Embedder) {
	emb := cfg.Embedding

	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     emb.APIKey,
		BaseURL:    emb.BaseURL,
		Model:      emb.Model,
		Dimensions: emb.Dimensions,
		Provider:   emb.Provider,
		Logger:     logger,
	})

	// Cached
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Options{
			Namespace:  emb.Model,
			TTL:        config.Seconds(cfg.Cache.TTLSec),
			CacheTotal: metrics.EmbeddingCacheTotal,
		}, logger)
	}

	// Instrumented (timeout + metrics)
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, emb.Provider, emb.Model, config.Seconds(emb.TimeoutSec), logger,
	)

	// Instruction prefix (outermost, so the cache key includes the instruction)
	return withInstruction(embedder, emb.DocumentInstruction), withInstruction(embedder, emb.QueryInstruction)
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// EmbeddingHealth adapts an embedder chain to a readiness check.
type EmbeddingHealth struct {
	Embedder domain.Embedder
}

// HealthCheck pings the provider when the chain supports it.
func (h EmbeddingHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.Embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
