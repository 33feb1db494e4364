// Package index implements the in-memory embedding index: an append-only
// collection of documents with one vector each, searched by brute-force cosine
// similarity and persisted as a single binary snapshot.
package index

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/metrics"
)

// Index holds documents and their embeddings in two parallel slices.
// vectors[i] is always the embedding of docs[i]; both slices are swapped or
// appended under the write lock only, so readers never see them out of step.
type Index struct {
	mu      sync.RWMutex
	docs    []domain.Document
	vectors [][]float32
	dim     int

	docEmbedder   domain.Embedder
	queryEmbedder domain.Embedder
	logger        *zap.Logger
}

// New creates an empty index. embedder vectorizes both documents and queries
// unless WithQueryEmbedder sets a separate query embedder.
func New(embedder domain.Embedder) *Index {
	return &Index{
		docEmbedder:   embedder,
		queryEmbedder: embedder,
		logger:        zap.NewNop(),
	}
}

// WithQueryEmbedder sets the embedder used for query texts.
func (ix *Index) WithQueryEmbedder(e domain.Embedder) *Index {
	if e != nil {
		ix.queryEmbedder = e
	}
	return ix
}

// WithLogger sets the logger.
func (ix *Index) WithLogger(l *zap.Logger) *Index {
	if l != nil {
		ix.logger = l
	}
	return ix
}

// Len returns the number of stored documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Dimensions returns the embedding dimension, or 0 for an empty index.
func (ix *Index) Dimensions() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

// Documents returns copies of all documents in insertion order.
func (ix *Index) Documents() []domain.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]domain.Document, len(ix.docs))
	for i, d := range ix.docs {
		out[i] = d.Clone()
	}
	return out
}

// AddDocuments embeds docs and appends them in order.
// The call is all-or-nothing: on any embedding failure nothing is appended
// and the returned error wraps domain.ErrEmbedding.
func (ix *Index) AddDocuments(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	res, err := domain.EmbedAll(ctx, ix.docEmbedder, texts)
	if err != nil {
		return fmt.Errorf("embed %d documents: %w: %w", len(docs), domain.ErrEmbedding, err)
	}

	batchDim := len(res.Embeddings[0])
	vectors := make([][]float32, len(res.Embeddings))
	for i, v := range res.Embeddings {
		if len(v) == 0 || len(v) != batchDim {
			return fmt.Errorf("document %q: got %d-dim vector, batch is %d-dim: %w",
				docs[i].ID, len(v), batchDim, domain.ErrEmbedding)
		}
		vectors[i] = slices.Clone(v)
	}

	copies := make([]domain.Document, len(docs))
	for i, d := range docs {
		copies[i] = d.Clone()
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim != 0 && ix.dim != batchDim {
		return fmt.Errorf("got %d-dim vectors, index is %d-dim: %w", batchDim, ix.dim, domain.ErrEmbedding)
	}

	ix.docs = append(ix.docs, copies...)
	ix.vectors = append(ix.vectors, vectors...)
	ix.dim = batchDim
	metrics.IndexDocuments.Set(float64(len(ix.docs)))

	ix.logger.Debug("Documents added to index",
		zap.Int("added", len(copies)),
		zap.Int("total", len(ix.docs)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return nil
}

type scored struct {
	pos   int
	score float64
}

// Query returns up to k documents most similar to text, best first.
// Exact score ties keep insertion order. An empty index or k <= 0 yields an
// empty result without calling the embedder.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]domain.QueryResult, error) {
	if k <= 0 || ix.Len() == 0 {
		return []domain.QueryResult{}, nil
	}

	res, err := ix.queryEmbedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbedding, err)
	}
	q := res.Embedding

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.docs) == 0 {
		return []domain.QueryResult{}, nil
	}
	if len(q) != ix.dim {
		return nil, fmt.Errorf("query vector is %d-dim, index is %d-dim: %w", len(q), ix.dim, domain.ErrEmbedding)
	}

	hits := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = scored{pos: i, score: CosineSimilarity(q, v)}
	}
	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]domain.QueryResult, k)
	for i := range out {
		h := hits[i]
		out[i] = domain.QueryResult{Score: h.score, Doc: ix.docs[h.pos].Clone()}
	}
	return out, nil
}

// replace swaps in a freshly decoded state. Used by Load.
func (ix *Index) replace(docs []domain.Document, vectors [][]float32, dim int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.docs = docs
	ix.vectors = vectors
	ix.dim = dim
	metrics.IndexDocuments.Set(float64(len(docs)))
}
