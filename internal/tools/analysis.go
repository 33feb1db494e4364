package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Generator turns a prompt into text. The OpenAI transport implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnalysisInput is the structured input of an analysis request.
// Bid and Ask are nil when no live quote was obtained.
type AnalysisInput struct {
	Currency string
	Bid      *float64
	Ask      *float64
	Source   string
	Context  string
}

// AnalysisTool asks a Generator for a short analyst report.
type AnalysisTool struct {
	name        string
	description string
	generator   Generator
	schema      *jsonschema.Schema
}

var _ Tool = (*AnalysisTool)(nil)

// NewAnalysisTool creates an analysis capability with the default argument schema.
func NewAnalysisTool(name, description string, generator Generator) *AnalysisTool {
	return &AnalysisTool{
		name:        name,
		description: description,
		generator:   generator,
		schema:      AnalysisInputSchema(),
	}
}

// WithSchema replaces the argument schema. nil disables validation.
func (t *AnalysisTool) WithSchema(s *jsonschema.Schema) *AnalysisTool {
	t.schema = s
	return t
}

// AnalysisInputSchema requires currency and context; bid, ask and source may be null or absent.
func AnalysisInputSchema() *jsonschema.Schema {
	nullableNumber := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Types: []string{"number", "null"}, Description: desc}
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"currency": {Type: "string", MinLength: intPtr(1), Description: "ISO currency code"},
			"bid":      nullableNumber("live buying price (compra)"),
			"ask":      nullableNumber("live selling price (venta)"),
			"source":   {Types: []string{"string", "null"}, Description: "live quote source"},
			"context":  {Type: "string", Description: "historical quote documents, one per paragraph"},
		},
		Required:             []string{"currency", "context"},
		AdditionalProperties: boolFalse(),
	}
}

func (t *AnalysisTool) Name() string                    { return t.name }
func (t *AnalysisTool) Description() string             { return t.description }
func (t *AnalysisTool) Kind() Kind                      { return KindAnalysis }
func (t *AnalysisTool) InputSchema() *jsonschema.Schema { return t.schema }

// Analyze builds the analyst prompt from in and returns the generator output verbatim.
func (t *AnalysisTool) Analyze(ctx context.Context, in AnalysisInput) (string, error) {
	return t.generator.Generate(ctx, BuildAnalysisPrompt(in)) //nolint:wrapcheck // handler errors propagate unchanged
}

func (t *AnalysisTool) invoke(ctx context.Context, args map[string]any) (any, error) {
	in := AnalysisInput{}
	var ok bool
	if in.Currency, ok = args["currency"].(string); !ok {
		return nil, fmt.Errorf("tool %s: currency argument must be a string", t.name)
	}
	in.Context, _ = args["context"].(string)
	in.Source, _ = args["source"].(string)
	in.Bid = numberArg(args["bid"])
	in.Ask = numberArg(args["ask"])
	return t.Analyze(ctx, in)
}

func numberArg(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}
	return nil
}

// BuildAnalysisPrompt renders the financial analyst prompt. Missing prices
// and sources render as MissingValue so the model never sees Go zero values.
func BuildAnalysisPrompt(in AnalysisInput) string {
	var b strings.Builder
	b.WriteString("Eres un analista financiero.\n")
	fmt.Fprintf(&b, "Analiza la cotización de %s.\n", in.Currency)
	fmt.Fprintf(&b, "Compra: %s | Venta: %s\n", FormatPrice(in.Bid), FormatPrice(in.Ask))
	fmt.Fprintf(&b, "Fuente: %s\n", OrMissing(in.Source))
	b.WriteString("Contexto histórico de datos que se tienen de fechas pasadas:\n")
	b.WriteString(OrMissing(strings.TrimSpace(in.Context)))
	b.WriteString("\nLos datos de compra y venta son los actuales a día de hoy, obtenidos de la fuente indicada.\n")
	b.WriteString("Responde en español, breve y con fuentes.")
	return b.String()
}

// MissingValue stands in for an absent price, source or context in prompts and reports.
const MissingValue = "sin dato"

// FormatPrice renders a price with two decimals, or MissingValue when p is nil.
func FormatPrice(p *float64) string {
	if p == nil {
		return MissingValue
	}
	return fmt.Sprintf("%.2f", *p)
}

// OrMissing returns s, or MissingValue when s is empty.
func OrMissing(s string) string {
	if s == "" {
		return MissingValue
	}
	return s
}
