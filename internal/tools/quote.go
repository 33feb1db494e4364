package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// QuoteSource returns a live snapshot for a currency, or false when none is available.
// Implementations absorb their own transport and parse failures.
type QuoteSource interface {
	LiveQuote(ctx context.Context, currency string) (domain.QuoteSnapshot, bool)
}

// QuoteResult is what a live quote tool returns through Registry.Call.
type QuoteResult struct {
	Found bool                  `json:"found"`
	Quote *domain.QuoteSnapshot `json:"quote,omitempty"`
}

// QuoteTool exposes a QuoteSource as a registry capability.
type QuoteTool struct {
	name        string
	description string
	source      QuoteSource
	schema      *jsonschema.Schema
}

var _ Tool = (*QuoteTool)(nil)

// NewQuoteTool creates a live quote capability with the default argument schema.
func NewQuoteTool(name, description string, source QuoteSource) *QuoteTool {
	return &QuoteTool{
		name:        name,
		description: description,
		source:      source,
		schema:      QuoteInputSchema(),
	}
}

// WithSchema replaces the argument schema. nil disables validation.
func (t *QuoteTool) WithSchema(s *jsonschema.Schema) *QuoteTool {
	t.schema = s
	return t
}

// QuoteInputSchema is the default schema: {"currency": non-empty string}.
func QuoteInputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"currency": {
				Type:        "string",
				MinLength:   intPtr(1),
				Description: "ISO currency code or common name, e.g. USD or dólar",
			},
		},
		Required:             []string{"currency"},
		AdditionalProperties: boolFalse(),
	}
}

func (t *QuoteTool) Name() string                    { return t.name }
func (t *QuoteTool) Description() string             { return t.description }
func (t *QuoteTool) Kind() Kind                      { return KindLiveQuote }
func (t *QuoteTool) InputSchema() *jsonschema.Schema { return t.schema }

// Fetch returns the live snapshot for currency.
func (t *QuoteTool) Fetch(ctx context.Context, currency string) (domain.QuoteSnapshot, bool) {
	return t.source.LiveQuote(ctx, strings.TrimSpace(currency))
}

func (t *QuoteTool) invoke(ctx context.Context, args map[string]any) (any, error) {
	currency, ok := args["currency"].(string)
	if !ok {
		return nil, fmt.Errorf("tool %s: currency argument must be a string", t.name)
	}
	snap, found := t.Fetch(ctx, currency)
	if !found {
		return QuoteResult{}, nil
	}
	return QuoteResult{Found: true, Quote: &snap}, nil
}
