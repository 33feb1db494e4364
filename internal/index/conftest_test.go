package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// mapEmbedder returns fixed vectors per text and counts calls.
type mapEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]bool
	calls   int
}

func (m *mapEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.failOn[text] {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}
	v, ok := m.vectors[text]
	if !ok {
		return domain.EmbeddingResult{}, fmt.Errorf("no vector for %q", text)
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
}

func newTestIndex(t *testing.T, vectors map[string][]float32) (*Index, *mapEmbedder) {
	t.Helper()
	emb := &mapEmbedder{vectors: vectors, failOn: map[string]bool{}}
	return New(emb), emb
}

func docs(texts ...string) []domain.Document {
	out := make([]domain.Document, len(texts))
	for i, t := range texts {
		out[i] = domain.Document{ID: fmt.Sprintf("doc-%d", i), Text: t}
	}
	return out
}
