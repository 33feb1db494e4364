package quoterag

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type namedSource struct {
	name   string
	source QuoteSource
}

type clientConfig struct {
	embedder  Embedder
	generator Generator
	sources   []namedSource

	snapshotPath string
	topK         int
	location     *time.Location
	now          func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the text generator used for analysis answers.
// Without it, questions that need analysis fail with ErrToolNotFound.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithQuoteSource adds a live quote source under name. Sources are asked in
// the order they were added. Adding any source disables the Cambios Chaco default.
func WithQuoteSource(name string, s QuoteSource) Option {
	return optionFunc(func(c *clientConfig) {
		c.sources = append(c.sources, namedSource{name: name, source: s})
	})
}

// WithSnapshot loads the index snapshot at path when it exists and makes
// Save and Preload write there.
func WithSnapshot(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotPath = path
	})
}

// WithTopK sets how many historical documents a question retrieves. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithLocation sets the timezone that decides what "today" is.
// Default: America/Asuncion.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithLogger enables structured logging for SDK operations and for the
// index, tool registry, quote sources and orchestrator behind them.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// WithClock overrides the wall clock that decides what "today" is.
// Useful to replay questions against a fixed day.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.now = now
	})
}
