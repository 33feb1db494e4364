package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
)

// Registry maps tool names to capabilities. Registrations are permanent.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	logger  *zap.Logger
}

type entry struct {
	tool       Tool
	schema     *jsonschema.Resolved
	properties map[string]*jsonschema.Resolved
	required   []string
	closed     bool // additionalProperties: false
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Register adds tool under its name. A taken name fails with domain.ErrAlreadyRegistered;
// a schema that does not resolve fails with domain.ErrValidation.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return errors.New("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return errors.New("tool name cannot be empty")
	}

	e := &entry{tool: tool}
	if s := tool.InputSchema(); s != nil {
		if err := e.resolve(s); err != nil {
			return fmt.Errorf("tool %q schema: %w: %w", name, domain.ErrValidation, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", domain.ErrAlreadyRegistered, name)
	}
	r.entries[name] = e
	r.order = append(r.order, name)

	r.logger.Debug("Tool registered", zap.String("tool", name), zap.String("kind", string(tool.Kind())))
	return nil
}

// Call validates args against the tool's schema (when it has one) and invokes it.
// Unknown names fail with domain.ErrToolNotFound, schema violations with
// *ValidationError. Errors from the tool itself are returned unchanged.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrToolNotFound, name)
	}

	if args == nil {
		args = map[string]any{}
	}
	if e.schema != nil {
		if err := e.validate(name, args); err != nil {
			return nil, err
		}
	}
	return e.tool.invoke(ctx, args)
}

// LiveQuote asks every registered live quote tool in registration order and
// returns the first snapshot found. Absence from all of them yields false.
func (r *Registry) LiveQuote(ctx context.Context, currency string) (domain.QuoteSnapshot, bool) {
	for _, t := range r.quoteTools() {
		start := time.Now()
		snap, ok := t.Fetch(ctx, currency)
		r.logger.Debug("Live quote lookup",
			zap.String("tool", t.Name()),
			zap.String("currency", currency),
			zap.Bool("found", ok),
			zap.Duration("duration", time.Since(start)),
		)
		if ok {
			return snap, true
		}
	}
	return domain.QuoteSnapshot{}, false
}

// Analyze runs the first registered analysis tool.
func (r *Registry) Analyze(ctx context.Context, in AnalysisInput) (string, error) {
	r.mu.RLock()
	var tool *AnalysisTool
	for _, name := range r.order {
		if t, ok := r.entries[name].tool.(*AnalysisTool); ok {
			tool = t
			break
		}
	}
	r.mu.RUnlock()

	if tool == nil {
		return "", fmt.Errorf("%w: no %s tool registered", domain.ErrToolNotFound, KindAnalysis)
	}
	return tool.Analyze(ctx, in)
}

// List describes the registered tools in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		t := r.entries[name].tool
		out = append(out, Info{
			Name:        name,
			Description: t.Description(),
			Kind:        t.Kind(),
			InputSchema: t.InputSchema(),
		})
	}
	return out
}

func (r *Registry) quoteTools() []*QuoteTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*QuoteTool
	for _, name := range r.order {
		if t, ok := r.entries[name].tool.(*QuoteTool); ok {
			out = append(out, t)
		}
	}
	return out
}

func (e *entry) resolve(s *jsonschema.Schema) error {
	resolved, err := s.Resolve(nil)
	if err != nil {
		return err //nolint:wrapcheck // wrapped by Register
	}
	e.schema = resolved
	e.required = s.Required
	e.closed = s.AdditionalProperties != nil && s.AdditionalProperties.Not != nil
	e.properties = make(map[string]*jsonschema.Resolved, len(s.Properties))
	for prop, ps := range s.Properties {
		rp, err := ps.Resolve(nil)
		if err != nil {
			return fmt.Errorf("property %s: %w", prop, err)
		}
		e.properties[prop] = rp
	}
	return nil
}

// validate checks args against the whole schema, then narrows a failure
// down to the argument names responsible for it.
func (e *entry) validate(tool string, args map[string]any) error {
	err := e.schema.Validate(args)
	if err == nil {
		return nil
	}

	seen := make(map[string]bool)
	var fields []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}

	for _, req := range e.required {
		if _, ok := args[req]; !ok {
			add(req)
		}
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ps, known := e.properties[k]
		switch {
		case !known && e.closed:
			add(k)
		case known && ps.Validate(args[k]) != nil:
			add(k)
		}
	}
	if len(fields) == 0 {
		add("$")
	}

	return &ValidationError{Tool: tool, Fields: fields, Cause: err}
}
