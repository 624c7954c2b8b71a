// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/classify"
	"github.com/okian/podium/internal/domain/insight"
	"github.com/okian/podium/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	RankDependencies
	AnalyticsDependencies
}

// AnalyticsDependencies exposes the precomputed aggregates.
type AnalyticsDependencies interface {
	Summary(ctx context.Context) (aggregate.Summary, error)
	Countries(ctx context.Context, limit int) ([]aggregate.CountryStats, error)
	Athletes(ctx context.Context, limit int) ([]aggregate.AthleteStats, error)
	Sports(ctx context.Context) ([]aggregate.SportStats, error)
	Gender(ctx context.Context) (aggregate.GenderBreakdown, error)
	Trends(ctx context.Context) ([]aggregate.YearTrend, error)
	CountryTrend(ctx context.Context, country string) ([]aggregate.YearCount, error)
	Records(ctx context.Context, q types.RecordQuery) (types.RecordPage, error)
	Insights(ctx context.Context) ([]insight.Insight, error)
	Predict(ctx context.Context, country, sport, gender string, year int) (classify.Prediction, error)
}

// Entry mirrors the read shape returned by standings queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	analyticsHandler   *AnalyticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		analyticsHandler:   NewAnalyticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	route("/rank/", "rank", s.rankHandler.HandleGetRank)

	a := s.analyticsHandler
	route("/api/summary", "summary", a.HandleSummary)
	route("/api/countries", "countries", a.HandleCountries)
	route("/api/athletes", "athletes", a.HandleAthletes)
	route("/api/sports", "sports", a.HandleSports)
	route("/api/gender", "gender", a.HandleGender)
	route("/api/trends", "trends", a.HandleTrends)
	route("/api/country-trends", "country_trends", a.HandleCountryTrends)
	route("/api/records", "records", a.HandleRecords)
	route("/api/insights", "insights", a.HandleInsights)
	route("/api/predict", "predict", a.HandlePredict)
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

// queryInt reads a non-negative integer query parameter. Missing values
// yield def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrBadRequest
	}
	return n, nil
}
