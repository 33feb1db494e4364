package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/tools"
)

// AskToolName is the MCP name of the question-answering tool.
const AskToolName = "ask"

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"question about a currency quote, in Spanish or with an ISO code"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Report string `json:"reporte"`
}

// registerTools registers the ask tool and one MCP tool per registry entry.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        AskToolName,
		Description: "Answer a question about live or historical currency quotes against the guaraní",
	}, s.handleAsk)

	for _, info := range s.ports.Tools.List() {
		if info.Name == AskToolName {
			s.logger.Warn("Registry tool shadowed by ask tool", zap.String("tool", info.Name))
			continue
		}
		tool := &mcp.Tool{
			Name:        info.Name,
			Description: info.Description,
		}
		// Left unset, the SDK infers an open object schema from the handler's input type.
		if info.InputSchema != nil {
			tool.InputSchema = info.InputSchema
		}
		mcp.AddTool(s.server, tool, s.registryHandler(info.Name))
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	report, err := s.ports.Agent.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Report: report}, nil
}

// registryHandler dispatches an MCP tool call to the registry tool of the same name.
// Validation happens in the registry so HTTP and MCP callers see the same rules.
func (s *Server) registryHandler(
	name string,
) func(context.Context, *mcp.CallToolRequest, map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := s.ports.Tools.Call(ctx, name, args)
		if err != nil {
			s.logger.Debug("MCP tool call failed", zap.String("tool", name), zap.Error(err))
			return nil, nil, err
		}
		return nil, toolOutput(result), nil
	}
}

// toolOutput wraps non-object results so structured content is always a JSON object.
func toolOutput(result any) any {
	switch r := result.(type) {
	case tools.QuoteResult, *tools.QuoteResult, map[string]any:
		return r
	default:
		return map[string]any{"result": r}
	}
}
