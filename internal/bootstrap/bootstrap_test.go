package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/quoterag/internal/config"
	"github.com/kailas-cloud/quoterag/internal/domain"
	embeddinguc "github.com/kailas-cloud/quoterag/internal/usecase/embedding"
)

func TestOpenCache_Disabled(t *testing.T) {
	store, err := OpenCache(context.Background(), config.CacheConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store != nil {
		t.Fatal("expected nil store when cache is disabled")
	}
}

func TestEmbedders_InstructionPrefixes(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()
	cfg.Embedding.QueryInstruction = "query: "

	doc, query := Embedders(cfg, nil, nil)

	if _, ok := doc.(*embeddinguc.InstrumentedEmbedder); !ok {
		t.Errorf("document chain without instruction must end at the instrumented embedder, got %T", doc)
	}
	if _, ok := query.(*domain.InstructionEmbedder); !ok {
		t.Errorf("query chain must be wrapped with the instruction, got %T", query)
	}
}

type stubEmbedder struct {
	healthErr error
}

func (s stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func (s stubEmbedder) BatchEmbed(context.Context, []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, nil
}

func (s stubEmbedder) HealthCheck(context.Context) error { return s.healthErr }

func TestEmbeddingHealth(t *testing.T) {
	ctx := context.Background()

	if err := (EmbeddingHealth{Embedder: stubEmbedder{}}).HealthCheck(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	down := errors.New("provider down")
	err := (EmbeddingHealth{Embedder: stubEmbedder{healthErr: down}}).HealthCheck(ctx)
	if !errors.Is(err, down) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
