package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchinto/internal/domain"
	dombatch "github.com/kailas-cloud/searchinto/internal/domain/batch"
	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
	healthuc "github.com/kailas-cloud/searchinto/internal/usecase/health"
)

// maxBodyBytes bounds an export request body.
const maxBodyBytes = 1 << 20

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeExportAborted    = "export_aborted"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Summary *dombatch.Summary `json:"summary,omitempty"`
}

// Exporter runs and previews export jobs.
type Exporter interface {
	Run(ctx context.Context, job domexport.Job) (*dombatch.Summary, error)
	Plan(job domexport.Job) (*projection.Plan, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string, summary *dombatch.Summary) bool

// Server serves the export HTTP API.
type Server struct {
	exports       Exporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(exports Exporter, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		exports: exports,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrParse, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidJob, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownLanguage, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrPathConflict, http.StatusUnprocessableEntity, CodeExportAborted),
		sentinelHandler(domain.ErrTypeCoercion, http.StatusUnprocessableEntity, CodeExportAborted),
		sentinelHandler(domain.ErrScriptEvaluation, http.StatusUnprocessableEntity, CodeExportAborted),
		sentinelHandler(domain.ErrVersionConflict, http.StatusUnprocessableEntity, CodeExportAborted),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/exports", s.RunExport)
	r.Post("/exports/plan", s.PlanExport)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// RunExport handles POST /exports.
func (s *Server) RunExport(w http.ResponseWriter, r *http.Request) {
	job, ok := decodeJob(w, r)
	if !ok {
		return
	}

	summary, err := s.exports.Run(r.Context(), job)
	if err != nil {
		s.handleDomainError(w, err, summary)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// PlanExport handles POST /exports/plan.
func (s *Server) PlanExport(w http.ResponseWriter, r *http.Request) {
	job, ok := decodeJob(w, r)
	if !ok {
		return
	}

	plan, err := s.exports.Plan(job)
	if err != nil {
		s.handleDomainError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, NewPlanResponse(plan))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeJob(w http.ResponseWriter, r *http.Request) (domexport.Job, bool) {
	var job domexport.Job
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return domexport.Job{}, false
	}
	return job, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns the client-facing message of a domain error.
// Mapping and job errors carry user input only, so their full text is returned.
func safeDomainMessage(err error) string {
	exposed := []error{
		domain.ErrParse,
		domain.ErrInvalidJob,
		domain.ErrUnknownLanguage,
		domain.ErrNotFound,
		domain.ErrPathConflict,
		domain.ErrTypeCoercion,
		domain.ErrScriptEvaluation,
		domain.ErrVersionConflict,
	}
	for _, s := range exposed {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string, summary *dombatch.Summary) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, ErrorResponse{Code: code, Message: msg, Summary: summary})
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error, summary *dombatch.Summary) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg, summary) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code:    CodeInternalError,
		Message: fmt.Sprintf("internal error after %d documents", readCount(summary)),
		Summary: summary,
	})
}

func readCount(s *dombatch.Summary) int {
	if s == nil {
		return 0
	}
	return s.Read
}
