package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/quoterag/internal/domain"
	logpkg "github.com/kailas-cloud/quoterag/internal/logger"
	"github.com/kailas-cloud/quoterag/internal/tools"
	healthuc "github.com/kailas-cloud/quoterag/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeToolNotFound      ErrorCode = "tool_not_found"
	ErrorCodeAlreadyRegistered ErrorCode = "tool_already_registered"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Report string `json:"reporte"`
}

// ToolCallResponse is the body returned by POST /tools/{name}.
type ToolCallResponse struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

// Asker answers a free-form question with a report.
type Asker interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ToolRegistry lists and dispatches tools by name.
type ToolRegistry interface {
	List() []tools.Info
	Call(ctx context.Context, name string, args map[string]any) (any, error)
}

// HealthReporter produces the readiness report.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the question-answering API.
type Server struct {
	agent         Asker
	tools         ToolRegistry
	health        HealthReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. health may be nil, in which case
// /ready only reflects that the process is up.
func NewServer(agent Asker, registry ToolRegistry, health HealthReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		agent:  agent,
		tools:  registry,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrToolNotFound, http.StatusNotFound, ErrorCodeToolNotFound),
		sentinelHandler(domain.ErrAlreadyRegistered, http.StatusConflict, ErrorCodeAlreadyRegistered),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r gochi.Router) {
	r.Post("/ask", s.Ask)
	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Get("/metrics", s.Metrics)
	r.Get("/tools", s.ListTools)
	r.Post("/tools/{name}", s.CallTool)
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "question is required")
		return
	}

	report, err := s.agent.Answer(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Report: report})
}

// Health handles GET /health (liveness).
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, healthuc.Report{Status: healthuc.Healthy})
		return
	}

	report := s.health.Check(r.Context())
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListTools handles GET /tools.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]tools.Info{"tools": s.tools.List()})
}

// CallTool handles POST /tools/{name}. An empty body calls the tool without arguments.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "name")

	var args map[string]any
	if err := decodeBody(w, r, &args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.tools.Call(r.Context(), name, args)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ToolCallResponse{Tool: name, Result: result})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrToolNotFound,
		domain.ErrAlreadyRegistered,
		domain.ErrValidation,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports the offending argument names of a *tools.ValidationError.
func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *tools.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    ErrorCodeValidationFailed,
			"message": msg,
			"fields":  ve.Fields,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
