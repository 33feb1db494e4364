package tools

import (
	"context"
	"errors"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

type stubSource struct {
	quotes map[string]domain.QuoteSnapshot
	calls  []string
}

func (s *stubSource) LiveQuote(_ context.Context, currency string) (domain.QuoteSnapshot, bool) {
	s.calls = append(s.calls, currency)
	q, ok := s.quotes[currency]
	return q, ok
}

type stubGenerator struct {
	out     string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.out, g.err
}

var errProvider = errors.New("provider exploded")

func usdSnapshot(source string) domain.QuoteSnapshot {
	return domain.QuoteSnapshot{
		Currency: "USD",
		Bid:      domain.Float(7263.48),
		Ask:      domain.Float(7270.00),
		Source:   source,
	}
}
