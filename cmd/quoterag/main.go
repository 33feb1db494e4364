package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/agent"
	"github.com/kailas-cloud/quoterag/internal/bootstrap"
	"github.com/kailas-cloud/quoterag/internal/config"
	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/index"
	logpkg "github.com/kailas-cloud/quoterag/internal/logger"
	"github.com/kailas-cloud/quoterag/internal/metrics"
	"github.com/kailas-cloud/quoterag/internal/tools"
	"github.com/kailas-cloud/quoterag/internal/transport/chaco"
	chiTransport "github.com/kailas-cloud/quoterag/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/quoterag/internal/transport/mcp"
	openaiTransport "github.com/kailas-cloud/quoterag/internal/transport/openai"
	healthuc "github.com/kailas-cloud/quoterag/internal/usecase/health"
	"github.com/kailas-cloud/quoterag/internal/version"
)

// Tool names registered at startup. Live quote tools are consulted in this order.
const (
	toolQuotesAPI = "quotes.api"
	toolQuotesPDF = "quotes.pdf"
	toolAnalyze   = "llm.analyze"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting quoterag API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("snapshot", cfg.Index.SnapshotPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	store, err := bootstrap.OpenCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Embedding cache unavailable", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	docEmbedder, queryEmbedder := bootstrap.Embedders(cfg, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	idx := index.New(docEmbedder).WithQueryEmbedder(queryEmbedder).WithLogger(logger)
	loadSnapshot(idx, cfg.Index.SnapshotPath, logger)
	if cfg.Index.Watch {
		if err := idx.Watch(ctx, cfg.Index.SnapshotPath, index.DefaultReloadDebounce); err != nil {
			logger.Warn("Snapshot watcher not started", zap.Error(err))
		}
	}

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to register tools", zap.Error(err))
	}

	clock := domain.SystemClock{Location: cfg.Location()}
	agentSvc := agent.New(registry, idx, clock, agent.Options{
		TopK:              cfg.Index.TopK,
		GenerationTimeout: config.Seconds(cfg.Generation.TimeoutSec),
	}, logger)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(idx, cachePinger, bootstrap.EmbeddingHealth{Embedder: queryEmbedder})

	mcpServer, err := mcpTransport.NewServer(&mcpTransport.Ports{Agent: agentSvc, Tools: registry}, logger)
	if err != nil {
		logger.Fatal("Failed to create MCP server", zap.Error(err))
	}

	server := chiTransport.NewServer(agentSvc, registry, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.HTTP.CORSOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)
	r.Handle("/mcp", mcpServer.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(cfg.HTTP.WriteTimeoutSec),
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// loadSnapshot restores the index from path when the file exists.
// A broken snapshot is logged and the service starts empty.
func loadSnapshot(idx *index.Index, path string, logger *zap.Logger) {
	if _, err := os.Stat(path); err != nil {
		logger.Warn("No index snapshot, starting with an empty index", zap.String("path", path))
		return
	}
	if err := idx.Load(path); err != nil {
		logger.Error("Failed to load index snapshot, starting with an empty index",
			zap.String("path", path), zap.Error(err))
	}
}

// buildRegistry registers the live quote tools (JSON API first, PDF fallback)
// and the analysis tool.
func buildRegistry(cfg config.Config, logger *zap.Logger) (*tools.Registry, error) {
	client := chaco.New(chaco.Config{
		APIURL:        cfg.Quotes.APIURL,
		PDFURL:        cfg.Quotes.PDFURL,
		Timeout:       config.Seconds(cfg.Quotes.TimeoutSec),
		UserAgent:     cfg.Quotes.UserAgent,
		RatePerSecond: cfg.Quotes.RatePerSec,
		Burst:         cfg.Quotes.Burst,
	}, logger)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      logger,
	})

	toolset := []tools.Tool{
		tools.NewQuoteTool(toolQuotesAPI,
			"Live bid/ask quote against the guaraní from the Cambios Chaco JSON API",
			chaco.NewAPISource(client)),
	}
	if !cfg.Quotes.DisablePDF {
		toolset = append(toolset, tools.NewQuoteTool(toolQuotesPDF,
			"Live bid/ask quote parsed from the Cambios Chaco PDF rate board",
			chaco.NewPDFSource(client)))
	}
	toolset = append(toolset, tools.NewAnalysisTool(toolAnalyze,
		"Analyst-style commentary from a live quote and historical context",
		generator))

	registry := tools.NewRegistry(logger)
	for _, t := range toolset {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("register %s: %w", t.Name(), err)
		}
	}
	return registry, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"code":"internal_error","message":"internal error"}` + "\n"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
