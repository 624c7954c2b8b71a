package api

import (
	"net/http"
	"strings"

	"github.com/okian/podium/internal/domain/types"
)

// Page size bounds for GET /api/records.
const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

// AnalyticsHandler serves the aggregate views under /api.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// respond writes v on success and maps err otherwise.
func respond[T any](w http.ResponseWriter, op string, v T, err error) {
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return false
	}
	return true
}

// HandleSummary handles GET /api/summary.
func (h *AnalyticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	v, err := h.deps.Summary(r.Context())
	respond(w, "api.get_summary", v, err)
}

// HandleCountries handles GET /api/countries?limit=N. No limit returns
// the whole table.
func (h *AnalyticsHandler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_countries"
	if !allowGet(w, r) {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	v, err := h.deps.Countries(r.Context(), limit)
	respond(w, op, v, err)
}

// HandleAthletes handles GET /api/athletes?limit=N.
func (h *AnalyticsHandler) HandleAthletes(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_athletes"
	if !allowGet(w, r) {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	v, err := h.deps.Athletes(r.Context(), limit)
	respond(w, op, v, err)
}

// HandleSports handles GET /api/sports.
func (h *AnalyticsHandler) HandleSports(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	v, err := h.deps.Sports(r.Context())
	respond(w, "api.get_sports", v, err)
}

// HandleGender handles GET /api/gender.
func (h *AnalyticsHandler) HandleGender(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	v, err := h.deps.Gender(r.Context())
	respond(w, "api.get_gender", v, err)
}

// HandleTrends handles GET /api/trends.
func (h *AnalyticsHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	v, err := h.deps.Trends(r.Context())
	respond(w, "api.get_trends", v, err)
}

// HandleCountryTrends handles GET /api/country-trends?country=NAME.
func (h *AnalyticsHandler) HandleCountryTrends(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_country_trends"
	if !allowGet(w, r) {
		return
	}
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissingCountry))
		return
	}
	v, err := h.deps.CountryTrend(r.Context(), country)
	respond(w, op, v, err)
}

// HandleRecords handles GET /api/records?limit=N&offset=M with optional
// search, year, country and sport filters.
func (h *AnalyticsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_records"
	if !allowGet(w, r) {
		return
	}
	limit, err := queryInt(r, "limit", defaultRecordLimit)
	if err != nil || limit < 1 || limit > maxRecordLimit {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	q := r.URL.Query()
	v, err := h.deps.Records(r.Context(), types.RecordQuery{
		Search:  strings.TrimSpace(q.Get("search")),
		Year:    year,
		Country: strings.TrimSpace(q.Get("country")),
		Sport:   strings.TrimSpace(q.Get("sport")),
		Limit:   limit,
		Offset:  offset,
	})
	respond(w, op, v, err)
}

// HandlePredict handles GET /api/predict?country=&sport=&gender=&year=.
// Year is optional.
func (h *AnalyticsHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if !allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	country := strings.TrimSpace(q.Get("country"))
	sport := strings.TrimSpace(q.Get("sport"))
	gender := strings.TrimSpace(q.Get("gender"))
	if country == "" || sport == "" || gender == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissingFeatures))
		return
	}
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	v, err := h.deps.Predict(r.Context(), country, sport, gender, year)
	respond(w, op, v, err)
}

// HandleInsights handles GET /api/insights.
func (h *AnalyticsHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	v, err := h.deps.Insights(r.Context())
	respond(w, "api.get_insights", v, err)
}
