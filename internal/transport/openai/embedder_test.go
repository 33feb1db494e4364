package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// embeddingsAPI fakes POST /embeddings. Each input text maps to a fixed
// vector so tests can tell which vector belongs to which text.
type embeddingsAPI struct {
	t       *testing.T
	vectors map[string][]float32
	reverse bool // list data entries back to front
	drop    int  // omit this many entries from the response

	mu       sync.Mutex
	requests []openai.EmbeddingRequest
}

func (a *embeddingsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/embeddings" {
		a.t.Errorf("unexpected path: %s", r.URL.Path)
	}
	if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
		a.t.Errorf("unexpected auth header: %s", got)
	}

	var req struct {
		openai.EmbeddingRequest
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.t.Errorf("decode request: %v", err)
	}
	a.mu.Lock()
	a.requests = append(a.requests, req.EmbeddingRequest)
	a.mu.Unlock()

	resp := openai.EmbeddingResponse{Object: "list", Model: req.Model}
	for i, text := range req.Input {
		resp.Data = append(resp.Data, openai.Embedding{Object: "embedding", Embedding: a.vectors[text], Index: i})
	}
	if a.reverse {
		slices.Reverse(resp.Data)
	}
	resp.Data = resp.Data[:len(resp.Data)-a.drop]
	resp.Usage.PromptTokens = 3 * len(req.Input)
	resp.Usage.TotalTokens = 3 * len(req.Input)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (a *embeddingsAPI) calls() []openai.EmbeddingRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.requests)
}

func newTestEmbedder(t *testing.T, h http.Handler, dims int) *Embedder {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "test-model",
		Dimensions: dims,
		User:       "quoterag-test",
		Provider:   "test",
		Logger:     zap.NewNop(),
	})
}

var quoteVectors = map[string][]float32{
	"Fecha: 2025-08-11 | Moneda: USD": {1, 0, 0},
	"Fecha: 2025-08-11 | Moneda: EUR": {0, 1, 0},
	"Fecha: 2025-08-11 | Moneda: BRL": {0, 0, 1},
}

func TestEmbedder_EmbedSendsRequestSettings(t *testing.T) {
	api := &embeddingsAPI{t: t, vectors: quoteVectors}
	emb := newTestEmbedder(t, api, 3)

	res, err := emb.Embed(context.Background(), "Fecha: 2025-08-11 | Moneda: EUR")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !slices.Equal(res.Embedding, []float32{0, 1, 0}) {
		t.Errorf("embedding = %v", res.Embedding)
	}
	if res.PromptTokens != 3 || res.TotalTokens != 3 {
		t.Errorf("usage = %d/%d, want 3/3", res.PromptTokens, res.TotalTokens)
	}

	calls := api.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 request, got %d", len(calls))
	}
	req := calls[0]
	if req.Model != "test-model" || req.Dimensions != 3 || req.User != "quoterag-test" ||
		req.EncodingFormat != openai.EmbeddingEncodingFormatFloat {
		t.Errorf("unexpected request settings %+v", req)
	}
}

func TestEmbedder_BatchEmbedRestoresInputOrder(t *testing.T) {
	api := &embeddingsAPI{t: t, vectors: quoteVectors, reverse: true}
	emb := newTestEmbedder(t, api, 0)

	texts := []string{
		"Fecha: 2025-08-11 | Moneda: BRL",
		"Fecha: 2025-08-11 | Moneda: USD",
		"Fecha: 2025-08-11 | Moneda: EUR",
	}
	res, err := emb.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(res.Embeddings) != len(texts) {
		t.Fatalf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}
	for i, text := range texts {
		if !slices.Equal(res.Embeddings[i], quoteVectors[text]) {
			t.Errorf("embedding %d for %q = %v, want %v", i, text, res.Embeddings[i], quoteVectors[text])
		}
	}
	calls := api.calls()
	if len(calls) != 1 {
		t.Fatalf("batch should be one request, got %d", len(calls))
	}
	if calls[0].Dimensions != 0 {
		t.Errorf("dimensions must be omitted when unset, got %d", calls[0].Dimensions)
	}
}

func TestEmbedder_BatchEmbedEmptyInputSkipsAPI(t *testing.T) {
	api := &embeddingsAPI{t: t, vectors: quoteVectors}
	emb := newTestEmbedder(t, api, 0)

	res, err := emb.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil || len(api.calls()) != 0 {
		t.Errorf("empty input must not call the API: %v, %d requests", res.Embeddings, len(api.calls()))
	}
}

func TestEmbedder_BatchEmbedCountMismatch(t *testing.T) {
	api := &embeddingsAPI{t: t, vectors: quoteVectors, drop: 1}
	emb := newTestEmbedder(t, api, 0)

	mismatches := metrics.EmbeddingErrorsTotal.WithLabelValues("test", "test-model", "count_mismatch")
	before := testutil.ToFloat64(mismatches)

	_, err := emb.BatchEmbed(context.Background(), []string{
		"Fecha: 2025-08-11 | Moneda: USD",
		"Fecha: 2025-08-11 | Moneda: EUR",
	})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if got := testutil.ToFloat64(mismatches) - before; got != 1 {
		t.Errorf("count_mismatch errors grew by %v, want 1", got)
	}
}

func TestEmbedder_SuccessRecordsTokens(t *testing.T) {
	api := &embeddingsAPI{t: t, vectors: quoteVectors}
	emb := newTestEmbedder(t, api, 0)

	ok := metrics.EmbeddingRequestsTotal.WithLabelValues("test", "test-model", "success")
	tokens := metrics.EmbeddingTokensTotal.WithLabelValues("test", "test-model", "total")
	okBefore, tokBefore := testutil.ToFloat64(ok), testutil.ToFloat64(tokens)

	if _, err := emb.BatchEmbed(context.Background(), []string{
		"Fecha: 2025-08-11 | Moneda: USD",
		"Fecha: 2025-08-11 | Moneda: BRL",
	}); err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("success requests grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(tokens) - tokBefore; got != 6 {
		t.Errorf("total tokens grew by %v, want 6", got)
	}
}

func TestEmbedder_ProviderErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   any
		want   string
	}{
		{
			name:   "openai error object",
			status: http.StatusTooManyRequests,
			body:   map[string]any{"error": map[string]any{"message": "rate limit exceeded", "type": "rate_limit_error"}},
			want:   "API error 429: rate limit exceeded",
		},
		{
			name:   "detail body",
			status: http.StatusBadRequest,
			body:   map[string]any{"detail": "input exceeds context window"},
			want:   "API error 400: input exceeds context window",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emb := newTestEmbedder(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(tc.body)
			}), 0)

			_, err := emb.Embed(context.Background(), "¿Cuánto está el dólar hoy?")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestEmbedder_CanceledContext(t *testing.T) {
	api := &embeddingsAPI{t: t, vectors: quoteVectors}
	emb := newTestEmbedder(t, api, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emb.Embed(ctx, "Fecha: 2025-08-11 | Moneda: USD")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected provider error wrapping context.Canceled, got %v", err)
	}
}
