package api

import (
	"errors"
	"net/http"
	"strings"
)

var errUnknownStat = errors.New("unknown stat")

// StatsProvider reports service state: load counts, configuration and
// uptime once started.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service snapshot under /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats and GET /stats?key=NAME, which narrows
// the snapshot to one entry.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	stats := h.provider.GetStats()
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeJSON(w, http.StatusOK, stats)
		return
	}
	v, ok := stats[key]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, errUnknownStat))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{key: v})
}
