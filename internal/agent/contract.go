package agent

import (
	"context"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/tools"
)

// Tools is the typed view of the tool registry the orchestrator needs.
type Tools interface {
	LiveQuote(ctx context.Context, currency string) (domain.QuoteSnapshot, bool)
	Analyze(ctx context.Context, in tools.AnalysisInput) (string, error)
}

// Retriever returns the k documents most similar to text.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.QueryResult, error)
}
