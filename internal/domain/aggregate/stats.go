package aggregate

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/podium/internal/domain/model"
)

// MedalTally splits a total by medal type.
type MedalTally struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
	Total  int `json:"total"`
}

func (t *MedalTally) add(medal string) {
	t.Total++
	switch medal {
	case model.Gold:
		t.Gold++
	case model.Silver:
		t.Silver++
	case model.Bronze:
		t.Bronze++
	}
}

// CountryStats is one row of the country medal table.
type CountryStats struct {
	Country string `json:"country"`
	MedalTally
}

func tally(df dataframe.DataFrame) MedalTally {
	var t MedalTally
	for _, m := range df.Col(model.ColMedal).Records() {
		t.add(m)
	}
	return t
}

// CountryTable tallies medals per country, sorted by total descending,
// ties broken by country name.
func CountryTable(df dataframe.DataFrame) ([]CountryStats, error) {
	totals, err := CountBy(df, model.ColCountry, Descending)
	if err != nil {
		return nil, err
	}
	medals, err := crossCount(df, model.ColCountry, model.ColMedal)
	if err != nil {
		return nil, err
	}
	out := make([]CountryStats, len(totals))
	for i, c := range totals {
		m := medals[c.Key]
		out[i] = CountryStats{
			Country: c.Key,
			MedalTally: MedalTally{
				Gold:   m[model.Gold],
				Silver: m[model.Silver],
				Bronze: m[model.Bronze],
				Total:  c.Value,
			},
		}
	}
	return out, nil
}

// AthleteStats summarises the medals of one athlete for one country.
type AthleteStats struct {
	Athlete string   `json:"athlete"`
	Country string   `json:"country"`
	Sports  []string `json:"sports"`
	Years   []int    `json:"years"`
	Events  []string `json:"events"`
	MedalTally
}

// Athletes groups records by athlete and country.
func Athletes(df dataframe.DataFrame) ([]AthleteStats, error) {
	parts, err := partition(df, model.ColAthlete, model.ColCountry)
	if err != nil {
		return nil, err
	}
	out := make([]AthleteStats, 0, len(parts))
	for _, p := range parts {
		years, err := sortedYears(p)
		if err != nil {
			return nil, err
		}
		out = append(out, AthleteStats{
			Athlete:    first(p, model.ColAthlete),
			Country:    first(p, model.ColCountry),
			Sports:     sortedUnique(p, model.ColSport),
			Years:      years,
			Events:     sortedUnique(p, model.ColEvent),
			MedalTally: tally(p),
		})
	}
	slices.SortStableFunc(out, func(a, b AthleteStats) int {
		if a.Total != b.Total {
			return cmp.Compare(b.Total, a.Total)
		}
		if c := cmp.Compare(a.Athlete, b.Athlete); c != 0 {
			return c
		}
		return cmp.Compare(a.Country, b.Country)
	})
	return out, nil
}

// YearRange is an inclusive span of years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SportStats describes participation in one sport.
type SportStats struct {
	Sport               string    `json:"sport"`
	TotalMedals         int       `json:"total_medals"`
	UniqueEvents        int       `json:"unique_events"`
	UniqueAthletes      int       `json:"unique_athletes"`
	UniqueCountries     int       `json:"unique_countries"`
	MaleParticipation   int       `json:"male_participation"`
	FemaleParticipation int       `json:"female_participation"`
	Years               YearRange `json:"year_range"`
	TopCountries        Counts    `json:"top_countries"`
}

// Sports computes per-sport statistics, most medals first.
func Sports(df dataframe.DataFrame) ([]SportStats, error) {
	parts, err := partition(df, model.ColSport)
	if err != nil {
		return nil, err
	}
	out := make([]SportStats, 0, len(parts))
	for _, p := range parts {
		top, err := CountBy(p, model.ColCountry, Descending)
		if err != nil {
			return nil, err
		}
		s := SportStats{
			Sport:           first(p, model.ColSport),
			TotalMedals:     p.Nrow(),
			UniqueEvents:    distinct(p, model.ColEvent),
			UniqueAthletes:  distinct(p, model.ColAthlete),
			UniqueCountries: distinct(p, model.ColCountry),
			Years:           yearRange(p),
			TopCountries:    top,
		}
		s.MaleParticipation, s.FemaleParticipation = genderSplit(p)
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b SportStats) int {
		if a.TotalMedals != b.TotalMedals {
			return cmp.Compare(b.TotalMedals, a.TotalMedals)
		}
		return cmp.Compare(a.Sport, b.Sport)
	})
	return out, nil
}

// YearTrend describes one edition of the games.
type YearTrend struct {
	Year                int `json:"year"`
	TotalMedals         int `json:"total_medals"`
	UniqueCountries     int `json:"unique_countries"`
	UniqueAthletes      int `json:"unique_athletes"`
	UniqueSports        int `json:"unique_sports"`
	MaleParticipation   int `json:"male_participation"`
	FemaleParticipation int `json:"female_participation"`
}

// YearTrends computes per-year statistics in year order.
func YearTrends(df dataframe.DataFrame) ([]YearTrend, error) {
	parts, err := partition(df, model.ColYear)
	if err != nil {
		return nil, err
	}
	out := make([]YearTrend, 0, len(parts))
	for _, p := range parts {
		t := YearTrend{
			Year:            yearRange(p).Start,
			TotalMedals:     p.Nrow(),
			UniqueCountries: distinct(p, model.ColCountry),
			UniqueAthletes:  distinct(p, model.ColAthlete),
			UniqueSports:    distinct(p, model.ColSport),
		}
		t.MaleParticipation, t.FemaleParticipation = genderSplit(p)
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b YearTrend) int { return cmp.Compare(a.Year, b.Year) })
	return out, nil
}

// YearCount is the number of medals won in one year.
type YearCount struct {
	Year   int `json:"year"`
	Medals int `json:"medals"`
}

// CountryTrend returns the medals per year for a single country, in year
// order. Unknown countries yield an empty slice.
func CountryTrend(df dataframe.DataFrame, country string) ([]YearCount, error) {
	out := []YearCount{}
	if df.Nrow() == 0 {
		return out, nil
	}
	sub := df.Filter(dataframe.F{Colname: model.ColCountry, Comparator: series.Eq, Comparando: country})
	if sub.Err != nil {
		return nil, fmt.Errorf("filter %s: %w", country, sub.Err)
	}
	counts, err := CountBy(sub, model.ColYear, ByKey)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		year, err := strconv.Atoi(c.Key)
		if err != nil {
			return nil, fmt.Errorf("year %q: %w", c.Key, err)
		}
		out = append(out, YearCount{Year: year, Medals: c.Value})
	}
	return out, nil
}

// Summary holds headline numbers for the whole dataset.
type Summary struct {
	TotalMedals     int       `json:"total_medals"`
	UniqueAthletes  int       `json:"unique_athletes"`
	UniqueCountries int       `json:"unique_countries"`
	UniqueSports    int       `json:"unique_sports"`
	UniqueEvents    int       `json:"unique_events"`
	Years           YearRange `json:"year_range"`
}

// Summarize computes the dataset summary.
func Summarize(df dataframe.DataFrame) Summary {
	if df.Nrow() == 0 {
		return Summary{}
	}
	return Summary{
		TotalMedals:     df.Nrow(),
		UniqueAthletes:  distinct(df, model.ColAthlete),
		UniqueCountries: distinct(df, model.ColCountry),
		UniqueSports:    distinct(df, model.ColSport),
		UniqueEvents:    distinct(df, model.ColSport, model.ColEvent),
		Years:           yearRange(df),
	}
}
