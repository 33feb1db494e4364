package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/quoterag/internal/domain"
	"github.com/kailas-cloud/quoterag/internal/metrics"
)

func TestGenerator_Generate(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-chat",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "  El dólar se mantiene estable.\n"},
			}},
			"usage": map[string]any{"prompt_tokens": 50, "completion_tokens": 8, "total_tokens": 58},
		})
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "test-chat",
		Temperature: 0.2,
		MaxTokens:   400,
	})

	before := testutil.ToFloat64(metrics.GenerationRequestsTotal.WithLabelValues("test-chat", "success"))

	out, err := gen.Generate(context.Background(), "Analiza la cotización de USD.")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "  El dólar se mantiene estable.\n" {
		t.Errorf("completion must be returned verbatim, got %q", out)
	}
	if got.Model != "test-chat" || got.MaxTokens != 400 {
		t.Errorf("unexpected request %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "Analiza la cotización de USD." {
		t.Errorf("unexpected messages %+v", got.Messages)
	}

	after := testutil.ToFloat64(metrics.GenerationRequestsTotal.WithLabelValues("test-chat", "success"))
	if after-before != 1 {
		t.Errorf("expected success counter to grow by 1, got %v", after-before)
	}
}

func TestGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{BaseURL: server.URL, Model: "test-chat"})
	if _, err := gen.Generate(context.Background(), "hola"); !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{BaseURL: server.URL, Model: "test-chat"})
	_, err := gen.Generate(context.Background(), "hola")
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Error("generation errors must not be reported as embedding errors")
	}
}
