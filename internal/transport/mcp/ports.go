package mcp

import (
	"context"

	"github.com/kailas-cloud/quoterag/internal/tools"
)

// Asker answers a free-form question with a report.
type Asker interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ToolRegistry lists and dispatches tools by name.
type ToolRegistry interface {
	List() []tools.Info
	Call(ctx context.Context, name string, args map[string]any) (any, error)
}

// Ports aggregates the services the MCP server drives.
type Ports struct {
	Agent Asker
	Tools ToolRegistry
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Agent == nil {
		return ErrMissingAgent
	}
	if p.Tools == nil {
		return ErrMissingTools
	}
	return nil
}
