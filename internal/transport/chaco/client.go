// Package chaco fetches live exchange quotes from Cambios Chaco: the JSON
// branch office API first, the published PDF board as a fallback.
package chaco

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// Source names reported in quote snapshots.
const (
	SourceName    = "Cambios Chaco"
	SourceNamePDF = "Cambios Chaco (PDF)"
)

// Defaults for Config fields left zero.
const (
	DefaultAPIURL    = "https://www.cambioschaco.com.py/api/branch_office/1/exchange"
	DefaultTimeout   = 8 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; quoterag/1.0)"

	maxBodyBytes = 10 << 20
)

// Config holds the upstream settings.
type Config struct {
	APIURL string
	// PDFURL defaults to APIURL + "/pdf".
	PDFURL    string
	Timeout   time.Duration
	UserAgent string
	// RatePerSecond throttles upstream requests; 0 disables throttling.
	RatePerSecond float64
	Burst         int
}

// Client performs throttled GET requests against the Cambios Chaco endpoints.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a client. The HTTP timeout bounds every fetch.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PDFURL == "" {
		cfg.PDFURL = cfg.APIURL + "/pdf"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: limiter,
		now:     time.Now,
		logger:  logger,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrQuoteFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrQuoteFetch, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQuoteFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d", domain.ErrQuoteFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrQuoteFetch, err)
	}
	return body, nil
}
