// Package types contains common types used across the application
package types

import (
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Entry represents a row of the medal standings.
type Entry struct {
	Rank    int    `json:"rank"`
	Country string `json:"country"`
	Gold    int    `json:"gold"`
	Silver  int    `json:"silver"`
	Bronze  int    `json:"bronze"`
	Total   int    `json:"total"`
}

// Less reports whether e ranks ahead of o: total, then gold, then silver
// descending, ties broken by country name.
func (e Entry) Less(o Entry) bool {
	if e.Total != o.Total {
		return e.Total > o.Total
	}
	if e.Gold != o.Gold {
		return e.Gold > o.Gold
	}
	if e.Silver != o.Silver {
		return e.Silver > o.Silver
	}
	return e.Country < o.Country
}

// RecordPage is a window over the cleaned medal records.
type RecordPage struct {
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Records []model.Record `json:"records"`
}

// RecordQuery filters and pages the cleaned records. Zero values match
// everything.
type RecordQuery struct {
	// Search is a case-insensitive substring of athlete, country, sport or event.
	Search  string
	Year    int
	Country string
	Sport   string
	Limit   int
	Offset  int
}

// Filtered reports whether q sets any filter besides paging.
func (q RecordQuery) Filtered() bool {
	return q.Search != "" || q.Year != 0 || q.Country != "" || q.Sport != ""
}

// Matches reports whether r passes every filter of q.
func (q RecordQuery) Matches(r model.Record) bool {
	if q.Year != 0 && r.Year != q.Year {
		return false
	}
	if q.Country != "" && !strings.EqualFold(r.Country, q.Country) {
		return false
	}
	if q.Sport != "" && !strings.EqualFold(r.Sport, q.Sport) {
		return false
	}
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	for _, field := range []string{r.Athlete, r.Country, r.Sport, r.Event} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
