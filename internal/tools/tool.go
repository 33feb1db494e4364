// Package tools holds the capability registry the orchestrator and the
// outer surfaces (HTTP, MCP) call through. The set of capabilities is
// closed: a Tool is either a *QuoteTool or an *AnalysisTool.
package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Kind tells the capability variants apart at the boundary.
type Kind string

const (
	// KindLiveQuote fetches a live bid/ask snapshot.
	KindLiveQuote Kind = "live_quote"
	// KindAnalysis generates analysis text from a quote and historical context.
	KindAnalysis Kind = "analysis"
)

// Tool is a registered capability. The unexported invoke method seals the
// interface to the variants defined in this package.
type Tool interface {
	Name() string
	Description() string
	Kind() Kind
	// InputSchema returns the argument schema, or nil when arguments are passed through unchecked.
	InputSchema() *jsonschema.Schema

	invoke(ctx context.Context, args map[string]any) (any, error)
}

// Info describes a registered tool for listings.
type Info struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Kind        Kind               `json:"kind"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`
}

func intPtr(v int) *int { return &v }

func boolFalse() *jsonschema.Schema { return &jsonschema.Schema{Not: &jsonschema.Schema{}} }
