// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/merit/internal/adapters/repository"
	service "github.com/okian/merit/internal/app"
	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/rules"
	"github.com/okian/merit/internal/domain/types"
	"github.com/okian/merit/pkg/logger"
)

const (
	defaultMaxLimit = 100
	maxBodyBytes    = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EvaluateDependencies
	ApplicationDependencies
	RankingDependencies
	RankDependencies
	RulesetDependencies
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluateHandler    *EvaluateHandler
	applicationHandler *ApplicationHandler
	rankingHandler     *RankingHandler
	rankHandler        *RankHandler
	rulesetHandler     *RulesetHandler
	logger             logger.Logger
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers. maxLimit bounds the
// ranking page size; values below 1 select the default.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, opts ...ServerOption) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		evaluateHandler:    NewEvaluateHandler(deps),
		applicationHandler: NewApplicationHandler(deps),
		rankingHandler:     NewRankingHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		rulesetHandler:     NewRulesetHandler(deps),
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
	mux.HandleFunc("POST /applications", MetricsMiddleware(s.applicationHandler.HandleSubmit, "applications"))
	mux.HandleFunc("GET /applications/{id}", MetricsMiddleware(s.applicationHandler.HandleGet, "application"))
	mux.HandleFunc("GET /ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("GET /rank/{id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("GET /rulesets", MetricsMiddleware(s.rulesetHandler.HandleList, "rulesets"))
	mux.HandleFunc("GET /rulesets/{version}", MetricsMiddleware(s.rulesetHandler.HandleGet, "ruleset"))
}

// Handler wraps mux with request id propagation and access logging.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return RequestIDMiddleware(mux, s.logger)
}

type ackResponse struct {
	Status        string `json:"status"`
	ApplicationID string `json:"application_id"`
	Duplicate     bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates upstream sentinel errors into a status code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, rules.ErrUnknownRuleset):
		return http.StatusBadRequest, "unknown_ruleset"
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound), errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeApplication reads one application from the request body. Unknown
// fields are rejected so misspelled keys do not silently score zero.
func decodeApplication(w http.ResponseWriter, r *http.Request) (model.Application, error) {
	var app model.Application
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&app); err != nil {
		return model.Application{}, err
	}
	if err := validateApplication(&app); err != nil {
		return model.Application{}, err
	}
	return app, nil
}
