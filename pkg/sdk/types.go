package quoterag

import (
	"context"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// Document is a historical quote document. A literal YYYY-MM-DD in Text
// (or a "date" metadata field) dates it for nearest-date matching.
type Document = domain.Document

// Quote is a live bid/ask snapshot against the guaraní.
type Quote = domain.QuoteSnapshot

// QuoteSource fetches live quotes. Absence (false) covers both "unknown
// currency" and upstream failures.
type QuoteSource interface {
	LiveQuote(ctx context.Context, currency string) (Quote, bool)
}

// Generator turns an analysis prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answer is the outcome of one question.
type Answer struct {
	RunID    string
	Currency string
	Branch   string // today, exact, approximate, recent or analysis
	Report   string
}
