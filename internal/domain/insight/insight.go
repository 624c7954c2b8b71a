// Package insight derives short textual findings from the aggregate views.
package insight

import (
	"fmt"
	"math"

	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/model"
)

// Kind identifies an insight.
type Kind string

// Insight kinds, in the order Generate returns them.
const (
	TopCountry          Kind = "top_country"
	TopAthlete          Kind = "top_athlete"
	DominantSport       Kind = "dominant_sport"
	GenderParticipation Kind = "gender_participation"
	PeakYear            Kind = "peak_year"
	GrowthTrend         Kind = "growth_trend"
)

// Insight is one derived finding.
type Insight struct {
	Kind    Kind    `json:"kind"`
	Title   string  `json:"title"`
	Subject string  `json:"subject"`
	Value   float64 `json:"value"`
	Text    string  `json:"text"`
}

// String renders the insight as "TITLE: text".
func (i Insight) String() string {
	return i.Title + ": " + i.Text
}

const noData = "no data"

// Generate returns the six insights in a fixed order. Views with no data
// still yield an entry whose text says so.
func Generate(v aggregate.Views) []Insight {
	return []Insight{
		leader(TopCountry, "TOP PERFORMING COUNTRY", v.ByCountry, "%s with %d medals"),
		leader(TopAthlete, "MOST SUCCESSFUL ATHLETE", v.ByAthlete, "%s with %d medals"),
		leader(DominantSport, "DOMINANT SPORT", v.BySport, "%s with %d medals awarded"),
		gender(v.ByGender),
		peak(v.ByYear),
		growth(v.ByYear),
	}
}

func leader(kind Kind, title string, c aggregate.Counts, format string) Insight {
	in := Insight{Kind: kind, Title: title, Text: noData}
	top, ok := c.First()
	if !ok {
		return in
	}
	in.Subject = top.Key
	in.Value = float64(top.Value)
	in.Text = fmt.Sprintf(format, top.Key, top.Value)
	return in
}

func gender(c aggregate.Counts) Insight {
	men, women := c.Get(model.Men), c.Get(model.Women)
	male := aggregate.Percent(men, men+women)
	female := aggregate.Percent(women, men+women)
	return Insight{
		Kind:    GenderParticipation,
		Title:   "GENDER PARTICIPATION",
		Subject: model.Men,
		Value:   male,
		Text:    fmt.Sprintf("%.1f%% Male, %.1f%% Female", male, female),
	}
}

func peak(byYear aggregate.Counts) Insight {
	in := Insight{Kind: PeakYear, Title: "PEAK OLYMPIC YEAR", Text: noData}
	top, ok := byYear.Max()
	if !ok {
		return in
	}
	in.Subject = top.Key
	in.Value = float64(top.Value)
	in.Text = fmt.Sprintf("%s with %d medals awarded", top.Key, top.Value)
	return in
}

// growth compares the first and last years present.
func growth(byYear aggregate.Counts) Insight {
	in := Insight{Kind: GrowthTrend, Title: "GROWTH TREND", Text: noData}
	first, ok := byYear.First()
	if !ok {
		return in
	}
	last, _ := byYear.Last()
	rate := GrowthRate(first.Value, last.Value)
	direction := "increase"
	if rate < 0 {
		direction = "decrease"
	}
	in.Subject = first.Key + "-" + last.Key
	in.Value = rate
	in.Text = fmt.Sprintf("%.1f%% %s in medals from %s to %s", math.Abs(rate), direction, first.Key, last.Key)
	return in
}

// GrowthRate returns the percentage change from first to last, or 0 when
// first is 0.
func GrowthRate(first, last int) float64 {
	if first == 0 {
		return 0
	}
	return float64(last-first) / float64(first) * 100
}
