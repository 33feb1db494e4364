package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/tools"
)

type stubTools struct {
	quote    *domain.QuoteSnapshot
	analysis string
	err      error

	quoteCalls []string
	inputs     []tools.AnalysisInput
	deadlines  []bool
}

func (s *stubTools) LiveQuote(_ context.Context, currency string) (domain.QuoteSnapshot, bool) {
	s.quoteCalls = append(s.quoteCalls, currency)
	if s.quote == nil {
		return domain.QuoteSnapshot{}, false
	}
	return *s.quote, true
}

func (s *stubTools) Analyze(ctx context.Context, in tools.AnalysisInput) (string, error) {
	s.inputs = append(s.inputs, in)
	_, ok := ctx.Deadline()
	s.deadlines = append(s.deadlines, ok)
	return s.analysis, s.err
}

type stubRetriever struct {
	results []domain.QueryResult
	err     error
	queries []string
	ks      []int
}

func (r *stubRetriever) Query(_ context.Context, text string, k int) ([]domain.QueryResult, error) {
	r.queries = append(r.queries, text)
	r.ks = append(r.ks, k)
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}

var errGenerator = errors.New("generator unavailable")

// 2025-08-11 afternoon in Asunción
var testClock = domain.FixedClock(time.Date(2025, 8, 11, 14, 0, 0, 0, time.FixedZone("PYT", -3*60*60)))

func date(s string) *time.Time {
	t, err := domain.ParseISODate(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func bcpDoc(day string, value float64) domain.QueryResult {
	return domain.QueryResult{
		Score: 0.9,
		Doc: domain.Document{
			ID:   day + "_USD",
			Text: fmt.Sprintf("El %s la cotización de USD fue %.2f guaraníes por unidad, según el Banco Central del Paraguay.", day, value),
		},
	}
}

func chacoQuote() *domain.QuoteSnapshot {
	return &domain.QuoteSnapshot{
		Currency: "USD",
		Bid:      domain.Float(7263.48),
		Ask:      domain.Float(7270.00),
		Source:   "Cambios Chaco",
	}
}
