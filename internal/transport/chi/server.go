package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/provquery/internal/domain/query/plan"
	logpkg "github.com/kailas-cloud/provquery/internal/logger"
	compileuc "github.com/kailas-cloud/provquery/internal/usecase/compile"
)

// ErrorCode is a machine-readable error code in API responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeInvalidPlan   ErrorCode = "invalid_plan"
	ErrorCodeUnknownVector ErrorCode = "unknown_vector"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CompileResponse is the JSON body of a compiled query.
type CompileResponse struct {
	Query        string   `json:"query"`
	FilterFields []string `json:"filter_fields"`
	Vector       string   `json:"vector,omitempty"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Compiler turns a plan into a query string.
type Compiler interface {
	Compile(ctx context.Context, p plan.Plan) (compileuc.Result, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the query compilation API.
type Server struct {
	compiler      Compiler
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(compiler Compiler, maxBodyBytes int64, logger *zap.Logger) *Server {
	s := &Server{
		compiler:     compiler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(plan.ErrUnknownVector, http.StatusBadRequest, ErrorCodeUnknownVector),
		sentinelHandler(plan.ErrInvalidPlan, http.StatusBadRequest, ErrorCodeInvalidPlan),
	}
	return s
}

// CompileQuery handles POST /api/v1/queries.
func (s *Server) CompileQuery(w http.ResponseWriter, r *http.Request) {
	if s.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}

	var p plan.Plan
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx := logpkg.WithFields(r.Context(), zap.Int("ops", len(p.Ops)))
	res, err := s.compiler.Compile(ctx, p)
	if err != nil {
		s.handleDomainError(ctx, w, err)
		return
	}

	fields := res.FilterFields
	if fields == nil {
		fields = []string{}
	}
	writeJSON(w, http.StatusOK, CompileResponse{
		Query:        res.Query,
		FilterFields: fields,
		Vector:       res.Vector,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
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

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(ctx)
	for _, h := range s.errorHandlers {
		// Plan errors only contain caller input.
		if h(w, err, err.Error()) {
			log.Debug("plan rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
