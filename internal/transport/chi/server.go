package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atrium-labs/contractsearch/internal/domain"
	"github.com/atrium-labs/contractsearch/internal/domain/search/filter"
	"github.com/atrium-labs/contractsearch/internal/domain/search/request"
	"github.com/atrium-labs/contractsearch/internal/domain/search/result"
	"github.com/atrium-labs/contractsearch/internal/repository/saved"
	"github.com/atrium-labs/contractsearch/internal/usecase/analytics"
	exportuc "github.com/atrium-labs/contractsearch/internal/usecase/export"
	healthuc "github.com/atrium-labs/contractsearch/internal/usecase/health"
	searchuc "github.com/atrium-labs/contractsearch/internal/usecase/search"
)

// Engine is the live search surface the HTTP layer consumes.
type Engine interface {
	Search(ctx context.Context, req request.Request) (searchuc.Response, error)
	Suggestions(prefix string) []string
	History() []string
	Analytics() analytics.Stats
	Reindex(ctx context.Context) error
}

// SavedStore persists named queries.
type SavedStore interface {
	Save(ctx context.Context, name, query string) (saved.Search, error)
	List(ctx context.Context) ([]saved.Search, error)
	Delete(ctx context.Context, id string) error
}

// Exporter serializes a result page.
type Exporter interface {
	Export(format string, results []result.Result) ([]byte, error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server is the HTTP API over the live search engine.
type Server struct {
	engine        Engine
	savedStore    SavedStore
	exporter      Exporter
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. savedStore and exporter may be
// nil; the matching routes then answer 501.
func NewServer(
	engine Engine,
	savedStore SavedStore,
	exporter Exporter,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:     engine,
		savedStore: savedStore,
		exporter:   exporter,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyName, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrSnapshotUnavailable, http.StatusServiceUnavailable, "snapshot_unavailable"),
	}
	return s
}

// Routes mounts all handlers on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.SearchContracts)
		r.Get("/suggestions", s.Suggest)
		r.Get("/history", s.GetHistory)
		r.Get("/analytics", s.GetAnalytics)
		r.Get("/export", s.ExportContracts)
		r.Post("/reindex", s.Reindex)
		r.Route("/saved", func(r chi.Router) {
			r.Get("/", s.ListSaved)
			r.Post("/", s.CreateSaved)
			r.Delete("/{id}", s.DeleteSaved)
		})
	})
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// SearchContracts handles GET /v1/search.
func (s *Server) SearchContracts(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	resp, err := s.engine.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToDTO(resp))
}

// Suggest handles GET /v1/suggestions.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, suggestionsResponse{
		Suggestions: s.engine.Suggestions(prefix),
	})
}

// GetHistory handles GET /v1/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{Entries: s.engine.History()})
}

// GetAnalytics handles GET /v1/analytics.
func (s *Server) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Analytics()
	writeJSON(w, http.StatusOK, analyticsResponse{
		TotalSearches:     stats.TotalSearches,
		AvgResponseTimeMs: float64(stats.AvgResponseTime) / float64(time.Millisecond),
		SuccessRate:       stats.SuccessRate,
		PopularQueries:    stats.PopularQueries,
	})
}

// ExportContracts handles GET /v1/export. It executes the query from the
// same parameters as /v1/search and streams the page in the requested
// format.
func (s *Server) ExportContracts(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "export is not configured")
		return
	}

	format := r.URL.Query().Get("format")
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	resp, err := s.engine.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	data, err := s.exporter.Export(format, resp.Results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", exportuc.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="contracts.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Reindex handles POST /v1/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reindex(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSaved handles POST /v1/saved.
func (s *Server) CreateSaved(w http.ResponseWriter, r *http.Request) {
	if s.savedStore == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "saved searches are not configured")
		return
	}

	var req createSavedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	entry, err := s.savedStore.Save(r.Context(), req.Name, req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, savedToDTO(entry))
}

// ListSaved handles GET /v1/saved.
func (s *Server) ListSaved(w http.ResponseWriter, r *http.Request) {
	if s.savedStore == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "saved searches are not configured")
		return
	}

	entries, err := s.savedStore.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]savedDTO, len(entries))
	for i, e := range entries {
		items[i] = savedToDTO(e)
	}
	writeJSON(w, http.StatusOK, savedListResponse{Items: items})
}

// DeleteSaved handles DELETE /v1/saved/{id}.
func (s *Server) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	if s.savedStore == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "saved searches are not configured")
		return
	}

	if err := s.savedStore.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// requestFromQuery builds a search request from URL parameters. Malformed
// numeric or date values are rejected; unknown sort keys fall back to the
// domain defaults.
func requestFromQuery(r *http.Request) (request.Request, error) {
	q := r.URL.Query()

	var (
		dateFrom, dateTo   *time.Time
		valueMin, valueMax *float64
	)
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return request.Request{}, errors.New("date_from must be YYYY-MM-DD")
		}
		dateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return request.Request{}, errors.New("date_to must be YYYY-MM-DD")
		}
		dateTo = &t
	}
	if v := q.Get("value_min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return request.Request{}, errors.New("value_min must be a number")
		}
		valueMin = &f
	}
	if v := q.Get("value_max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return request.Request{}, errors.New("value_max must be a number")
		}
		valueMax = &f
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return request.Request{}, errors.New("limit must be an integer")
		}
		limit = n
	}

	f := filter.New(
		splitList(q.Get("category")),
		splitList(q.Get("branch")),
		dateFrom, dateTo,
		valueMin, valueMax,
		q.Get("party"),
	)
	return request.New(
		q.Get("q"),
		f,
		sortKeyFromQuery(q.Get("sort")),
		directionFromQuery(q.Get("direction")),
		limit,
	), nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
