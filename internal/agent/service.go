// Package agent answers currency questions by running a fixed pipeline:
// fetch a live quote, normalize it, retrieve historical documents and pick
// the first decision branch that applies.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/extract"
	"github.com/kailas-cloud/quoterag/internal/logger"
	"github.com/kailas-cloud/quoterag/internal/metrics"
	"github.com/kailas-cloud/quoterag/internal/tools"
)

// Defaults for Options fields left zero.
const (
	DefaultTopK              = 5
	DefaultGenerationTimeout = 30 * time.Second
)

// Options tunes the orchestrator.
type Options struct {
	TopK              int
	GenerationTimeout time.Duration
}

// Service is the retrieval orchestrator.
type Service struct {
	tools     Tools
	retriever Retriever
	clock     domain.Clock
	opts      Options
	logger    *zap.Logger
}

// New creates an orchestrator. retriever may be nil, in which case every
// retrieval comes back empty.
func New(t Tools, retriever Retriever, clock domain.Clock, opts Options, l *zap.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = DefaultGenerationTimeout
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{tools: t, retriever: retriever, clock: clock, opts: opts, logger: l}
}

// Ask extracts the currency and date from question and runs the pipeline.
func (s *Service) Ask(ctx context.Context, question string) (*RequestContext, error) {
	req := Request{Question: question, Currency: extract.Currency(question)}
	if d, ok := extract.Date(question, s.clock); ok {
		req.TargetDate = &d
	}
	return s.Run(ctx, req)
}

// Answer is Ask reduced to the report text.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	rc, err := s.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return rc.Report, nil
}

// Run executes FETCH, PROCESS, RETRIEVE and DECIDE for one request.
// Only a failure of the analysis branch is returned as an error; quote and
// retrieval failures degrade to absent data.
func (s *Service) Run(ctx context.Context, req Request) (*RequestContext, error) {
	rc := &RequestContext{
		RunID:      uuid.NewString(),
		Question:   req.Question,
		Currency:   req.Currency,
		TargetDate: req.TargetDate,
	}
	if rc.Currency == "" {
		rc.Currency = extract.DefaultCurrency
	}
	if rc.TargetDate != nil {
		d := domain.DateOf(*rc.TargetDate)
		rc.TargetDate = &d
	}

	log := s.runLogger(ctx, rc)

	s.fetch(ctx, rc, log)
	s.process(rc)

	today := domain.Today(s.clock)
	if rc.TargetDate != nil && rc.TargetDate.Equal(today) && rc.Snapshot != nil {
		// today's quote comes from the live snapshot alone
		rc.Stage = StageDecide
		s.finish(rc, BranchToday, liveReport(rc.Quote), log)
		return rc, nil
	}

	s.retrieve(ctx, rc, log)

	if err := s.decide(ctx, rc, today, log); err != nil {
		return rc, err
	}
	return rc, nil
}

func (s *Service) runLogger(ctx context.Context, rc *RequestContext) *zap.Logger {
	base := logger.FromContextOr(ctx, s.logger)
	fields := []zap.Field{zap.String("run_id", rc.RunID), zap.String("currency", rc.Currency)}
	if rc.TargetDate != nil {
		fields = append(fields, zap.String("target_date", domain.FormatISODate(*rc.TargetDate)))
	}
	return base.With(fields...)
}

func (s *Service) fetch(ctx context.Context, rc *RequestContext, log *zap.Logger) {
	rc.Stage = StageFetch
	snap, ok := s.tools.LiveQuote(ctx, rc.Currency)
	if ok {
		rc.Snapshot = &snap
	}
	log.Debug("Live quote fetched", zap.Bool("found", ok))
}

func (s *Service) process(rc *RequestContext) {
	rc.Stage = StageProcess
	rc.Quote = normalize(rc.Snapshot, rc.Currency)
}

func (s *Service) retrieve(ctx context.Context, rc *RequestContext, log *zap.Logger) {
	rc.Stage = StageRetrieve
	rc.Retrieval = true
	if s.retriever == nil {
		return
	}

	query := fmt.Sprintf("historical quotes of %s", rc.Currency)
	if rc.TargetDate != nil {
		query = fmt.Sprintf("quote of %s on %s", rc.Currency, domain.FormatISODate(*rc.TargetDate))
	}

	results, err := s.retriever.Query(ctx, query, s.opts.TopK)
	if err != nil {
		log.Warn("Retrieval failed, continuing without history", zap.String("query", query), zap.Error(err))
		return
	}
	rc.Retrieved = results
	log.Debug("Documents retrieved", zap.String("query", query), zap.Int("count", len(results)))
}

func (s *Service) decide(ctx context.Context, rc *RequestContext, today time.Time, log *zap.Logger) error {
	rc.Stage = StageDecide

	if rc.TargetDate != nil && len(rc.Retrieved) > 0 {
		if best, found, ok := nearest(rc.Retrieved, *rc.TargetDate); ok {
			if found.Equal(*rc.TargetDate) {
				s.finish(rc, BranchExact, exactReport(rc.Currency, found, best.Doc.Text), log)
			} else {
				s.finish(rc, BranchApproximate, approximateReport(*rc.TargetDate, found, best.Doc.Text), log)
			}
			return nil
		}
	}

	if rc.TargetDate == nil && len(rc.Retrieved) > 0 {
		if texts := recent(rc.Retrieved, today); len(texts) > 0 {
			s.finish(rc, BranchRecent, recentReport(rc.Currency, texts), log)
			return nil
		}
	}

	return s.analyze(ctx, rc, log)
}

func (s *Service) analyze(ctx context.Context, rc *RequestContext, log *zap.Logger) error {
	in := tools.AnalysisInput{
		Currency: rc.Currency,
		Bid:      rc.Quote.Compra,
		Ask:      rc.Quote.Venta,
		Source:   rc.Quote.Source,
		Context:  joinTexts(rc.Retrieved),
	}

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	report, err := s.tools.Analyze(genCtx, in)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error("Analysis timed out", zap.Duration("timeout", s.opts.GenerationTimeout))
		}
		metrics.DecisionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("analysis: %w", err)
	}
	s.finish(rc, BranchAnalysis, report, log)
	return nil
}

func (s *Service) finish(rc *RequestContext, b Branch, report string, log *zap.Logger) {
	rc.Branch = b
	rc.Report = report
	metrics.DecisionsTotal.WithLabelValues(string(b)).Inc()
	log.Info("Question answered",
		zap.String("branch", string(b)),
		zap.Bool("live_quote", rc.Snapshot != nil),
		zap.Int("retrieved", len(rc.Retrieved)),
	)
}

// nearest scans results in similarity order and returns the first result whose
// date is strictly closer to target than any before it.
func nearest(results []domain.QueryResult, target time.Time) (domain.QueryResult, time.Time, bool) {
	var (
		best     domain.QueryResult
		bestDate time.Time
		bestDiff = -1
	)
	for _, r := range results {
		d, ok := r.Doc.Date()
		if !ok {
			continue
		}
		diff := domain.DaysBetween(d, target)
		if bestDiff < 0 || diff < bestDiff {
			best, bestDate, bestDiff = r, d, diff
		}
	}
	return best, bestDate, bestDiff >= 0
}

// recent keeps the texts of results dated today or yesterday, in similarity order.
func recent(results []domain.QueryResult, today time.Time) []string {
	yesterday := today.AddDate(0, 0, -1)
	var texts []string
	for _, r := range results {
		d, ok := r.Doc.Date()
		if !ok {
			continue
		}
		if d.Equal(today) || d.Equal(yesterday) {
			texts = append(texts, r.Doc.Text)
		}
	}
	return texts
}
