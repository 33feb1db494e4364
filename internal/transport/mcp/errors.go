// Package mcp exposes the question-answering agent and the tool registry
// over the Model Context Protocol.
package mcp

import "errors"

var (
	// ErrMissingAgent is returned when the agent is not provided.
	ErrMissingAgent = errors.New("mcp: agent is required")
	// ErrMissingTools is returned when the tool registry is not provided.
	ErrMissingTools = errors.New("mcp: tool registry is required")
)
