// Package server exposes the decisions of a Vault over HTTP.
//
//	GET  /decisions                 ids and names of all decisions
//	GET  /decisions/{id}            definition of one decision
//	POST /decisions/{id}/evaluate   evaluate with {"variables": {...}}
//	GET  /healthz                   liveness
//	GET  /metrics                   Prometheus metrics
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tablekit/dmn"
)

// Server routes HTTP requests to the Evaluator.
type Server struct {
	vault     *dmn.Vault
	evaluator *dmn.Evaluator
	log       zerolog.Logger
	gatherer  prometheus.Gatherer
	timeout   time.Duration
	router    chi.Router
}

// Option configures a Server.
type Option func(s *Server)

// WithLogger sets the request logger. Default: no logging.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithGatherer serves the metrics of g on /metrics. Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithTimeout limits the duration of a request. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// New returns a Server evaluating the decisions of v with ev.
func New(v *dmn.Vault, ev *dmn.Evaluator, opts ...Option) *Server {
	s := &Server{
		vault:     v,
		evaluator: ev,
		log:       zerolog.Nop(),
		gatherer:  prometheus.DefaultGatherer,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/decisions", func(r chi.Router) {
		r.Get("/", s.handleListDecisions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDecision)
			r.Post("/evaluate", s.handleEvaluate)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"decisions": s.vault.Len(),
	})
}

type decisionSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HitPolicy string `json:"hit_policy"`
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	list := []decisionSummary{}
	for _, id := range s.vault.IDs() {
		if d, ok := s.vault.Get(id); ok {
			list = append(list, decisionSummary{ID: d.ID(), Name: d.Name(), HitPolicy: d.HitPolicy().String()})
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"decisions": list})
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	d, ok := s.vault.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "decision not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, newDecisionView(d))
}

type evaluateRequest struct {
	Variables map[string]any `json:"variables"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := s.vault.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "decision not found", nil)
		return
	}

	var req evaluateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := s.evaluator.Evaluate(r.Context(), d, dmn.NewVariables(numbers(req.Variables)))
	if err != nil {
		s.log.Warn().Err(err).Str("decision", id).Msg("evaluation request failed")
		respondError(w, statusOf(err), "evaluation failed", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// statusOf maps evaluation errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, dmn.ErrInvalidArgument), errors.Is(err, dmn.ErrInvalidVariables):
		return http.StatusBadRequest
	case errors.Is(err, dmn.ErrDecisionNotFound):
		return http.StatusNotFound
	case errors.Is(err, dmn.ErrNotUnique):
		return http.StatusConflict
	case errors.Is(err, dmn.ErrUnsupportedHitPolicy), errors.Is(err, dmn.ErrEvaluation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// numbers replaces json.Number values with int64 where exact, else float64.
func numbers(v map[string]any) map[string]any {
	if v == nil {
		return nil
	}
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = number(val)
	}
	return out
}

func number(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = number(e)
		}
		return out
	case map[string]any:
		return numbers(t)
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
