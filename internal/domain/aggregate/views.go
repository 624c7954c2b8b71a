package aggregate

import (
	"github.com/go-gota/gota/dataframe"

	"github.com/okian/podium/internal/domain/model"
)

// Views are the grouped counts every later stage reads from.
type Views struct {
	ByCountry Counts `json:"by_country"`
	ByYear    Counts `json:"by_year"`
	ByGender  Counts `json:"by_gender"`
	ByAthlete Counts `json:"by_athlete"`
	BySport   Counts `json:"by_sport"`
	ByMedal   Counts `json:"by_medal"`
}

// Build computes all views from a cleaned frame. Every view totals the
// frame's row count.
func Build(df dataframe.DataFrame) (Views, error) {
	var v Views
	for _, view := range []struct {
		dst    *Counts
		column string
		order  Order
	}{
		{&v.ByCountry, model.ColCountry, Descending},
		{&v.ByYear, model.ColYear, ByKey},
		{&v.ByGender, model.ColGender, Descending},
		{&v.ByAthlete, model.ColAthlete, Descending},
		{&v.BySport, model.ColSport, Descending},
		{&v.ByMedal, model.ColMedal, Descending},
	} {
		c, err := CountBy(df, view.column, view.order)
		if err != nil {
			return Views{}, err
		}
		*view.dst = c
	}
	return v, nil
}

// MedalDistribution returns gold, silver and bronze counts in that order,
// including medal types with no records.
func (v Views) MedalDistribution() Counts {
	out := make(Counts, len(model.Medals))
	for i, m := range model.Medals {
		out[i] = Count{Key: m, Value: v.ByMedal.Get(m)}
	}
	return out
}
