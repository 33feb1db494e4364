package quoterag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/agent"
	"github.com/kailas-cloud/quoterag/internal/corpus"
	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/index"
	"github.com/kailas-cloud/quoterag/internal/tools"
	"github.com/kailas-cloud/quoterag/internal/transport/chaco"
	healthuc "github.com/kailas-cloud/quoterag/internal/usecase/health"
)

const (
	defaultTimezone = "America/Asuncion"
	analysisTool    = "llm.analyze"
)

// Client is the quoterag SDK entry point.
type Client struct {
	index    *index.Index
	registry *tools.Registry
	agent    *agent.Service
	health   *healthuc.Service
	snapshot string
	obs      *observer
}

// New creates a Client. The embedder is required; the snapshot configured
// with WithSnapshot is loaded when the file exists.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{topK: agent.DefaultTopK}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("quoterag: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	logger := internalLogger(cfg.logger)

	idx := index.New(adaptEmbedder(cfg.embedder)).WithLogger(logger)
	if cfg.snapshotPath != "" {
		if err := idx.Load(cfg.snapshotPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("quoterag: %w", err)
		}
	}

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := agent.New(registry, idx, clockFor(cfg), agent.Options{TopK: cfg.topK}, logger)

	return &Client{
		index:    idx,
		registry: registry,
		agent:    svc,
		health:   healthuc.New(idx, nil, nil),
		snapshot: cfg.snapshotPath,
		obs:      obs,
	}, nil
}

func buildRegistry(cfg *clientConfig, logger *zap.Logger) (*tools.Registry, error) {
	sources := cfg.sources
	if len(sources) == 0 {
		client := chaco.New(chaco.Config{}, logger)
		sources = []namedSource{
			{name: "quotes.api", source: chaco.NewAPISource(client)},
			{name: "quotes.pdf", source: chaco.NewPDFSource(client)},
		}
	}

	registry := tools.NewRegistry(logger)
	for _, s := range sources {
		if err := registry.Register(tools.NewQuoteTool(s.name, "Live quote source "+s.name, s.source)); err != nil {
			return nil, fmt.Errorf("quoterag: %w", err)
		}
	}
	if cfg.generator != nil {
		t := tools.NewAnalysisTool(analysisTool, "Analysis from a live quote and historical context", cfg.generator)
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("quoterag: %w", err)
		}
	}
	return registry, nil
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

func clockFor(cfg *clientConfig) domain.Clock {
	if cfg.now != nil {
		return clockFunc(cfg.now)
	}
	loc := cfg.location
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation(defaultTimezone); err != nil {
			loc = time.UTC
		}
	}
	return domain.SystemClock{Location: loc}
}

// Ask answers a question about live or historical quotes.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opAsk, start, err, "branch", ans.Branch) }()

	rc, err := c.agent.Ask(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return Answer{
		RunID:    rc.RunID,
		Currency: rc.Currency,
		Branch:   string(rc.Branch),
		Report:   rc.Report,
	}, nil
}

// AddDocuments embeds docs and appends them to the index. All or nothing.
func (c *Client) AddDocuments(ctx context.Context, docs ...Document) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opAddDocuments, start, err, "count", len(docs)) }()

	if err = c.index.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Preload indexes the Banco Central del Paraguay seed quotes that are not
// indexed yet and saves the snapshot when one is configured.
// It returns the number of documents added.
func (c *Client) Preload(ctx context.Context) (added int, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opPreload, start, err, "added", added) }()

	seed, err := corpus.Documents(corpus.BCP())
	if err != nil {
		return 0, fmt.Errorf("preload: %w", err)
	}

	have := make(map[string]struct{}, c.index.Len())
	for _, d := range c.index.Documents() {
		have[d.ID] = struct{}{}
	}
	var docs []Document
	for _, d := range seed {
		if _, ok := have[d.ID]; !ok {
			docs = append(docs, d)
		}
	}

	if err = c.index.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("preload: %w", err)
	}
	if c.snapshot != "" && len(docs) > 0 {
		if err = c.index.Save(c.snapshot); err != nil {
			return 0, fmt.Errorf("preload: %w", err)
		}
	}
	return len(docs), nil
}

// Save writes the index snapshot to path, or to the WithSnapshot path when path is empty.
func (c *Client) Save(path string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSave, start, err) }()

	if path == "" {
		path = c.snapshot
	}
	if path == "" {
		return errors.New("quoterag: no snapshot path (pass one or use WithSnapshot)")
	}
	if err = c.index.Save(path); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Len returns the number of indexed documents.
func (c *Client) Len() int {
	return c.index.Len()
}

// ToolInfo describes a registered tool.
type ToolInfo = tools.Info

// Tools lists the registered tools in registration order.
func (c *Client) Tools() []ToolInfo {
	return c.registry.List()
}

// CallTool invokes a tool by name with JSON-like arguments.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (result any, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opCallTool, start, err, "tool", name) }()

	return c.registry.Call(ctx, name, args)
}
