package aggregate

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"github.com/okian/podium/internal/domain/model"
)

// GenderSplit counts male and female medals and their share of the two.
type GenderSplit struct {
	Male             int     `json:"male"`
	Female           int     `json:"female"`
	MalePercentage   float64 `json:"male_percentage"`
	FemalePercentage float64 `json:"female_percentage"`
}

func newGenderSplit(male, female int) GenderSplit {
	return GenderSplit{
		Male:             male,
		Female:           female,
		MalePercentage:   Percent(male, male+female),
		FemalePercentage: Percent(female, male+female),
	}
}

// SportGender is the gender split within one sport.
type SportGender struct {
	Sport string `json:"sport"`
	GenderSplit
}

// YearGender is the gender split within one year.
type YearGender struct {
	Year int `json:"year"`
	GenderSplit
}

// CountryGender is the gender split within one country.
type CountryGender struct {
	Country     string `json:"country"`
	TotalMedals int    `json:"total_medals"`
	GenderSplit
}

// GenderBreakdown splits medals by gender overall and per sport, year and
// country.
type GenderBreakdown struct {
	Overall   GenderSplit     `json:"overall"`
	BySport   []SportGender   `json:"by_sport"`
	ByYear    []YearGender    `json:"by_year"`
	ByCountry []CountryGender `json:"by_country"`
}

// Gender computes the gender breakdown. Sport and country rows are sorted
// by volume, year rows by year.
func Gender(df dataframe.DataFrame) (GenderBreakdown, error) {
	var b GenderBreakdown
	b.Overall = newGenderSplit(genderSplit(df))

	bySport, err := crossCount(df, model.ColSport, model.ColGender)
	if err != nil {
		return GenderBreakdown{}, err
	}
	for sport, g := range bySport {
		b.BySport = append(b.BySport, SportGender{Sport: sport, GenderSplit: newGenderSplit(g[model.Men], g[model.Women])})
	}
	slices.SortStableFunc(b.BySport, func(x, y SportGender) int {
		if c := cmp.Compare(y.Male+y.Female, x.Male+x.Female); c != 0 {
			return c
		}
		return cmp.Compare(x.Sport, y.Sport)
	})

	byYear, err := crossCount(df, model.ColYear, model.ColGender)
	if err != nil {
		return GenderBreakdown{}, err
	}
	for key, g := range byYear {
		year, err := strconv.Atoi(key)
		if err != nil {
			return GenderBreakdown{}, fmt.Errorf("year %q: %w", key, err)
		}
		b.ByYear = append(b.ByYear, YearGender{Year: year, GenderSplit: newGenderSplit(g[model.Men], g[model.Women])})
	}
	slices.SortFunc(b.ByYear, func(x, y YearGender) int { return cmp.Compare(x.Year, y.Year) })

	byCountry, err := crossCount(df, model.ColCountry, model.ColGender)
	if err != nil {
		return GenderBreakdown{}, err
	}
	for country, g := range byCountry {
		total := 0
		for _, n := range g {
			total += n
		}
		b.ByCountry = append(b.ByCountry, CountryGender{
			Country:     country,
			TotalMedals: total,
			GenderSplit: newGenderSplit(g[model.Men], g[model.Women]),
		})
	}
	slices.SortStableFunc(b.ByCountry, func(x, y CountryGender) int {
		if x.TotalMedals != y.TotalMedals {
			return cmp.Compare(y.TotalMedals, x.TotalMedals)
		}
		return cmp.Compare(x.Country, y.Country)
	})
	return b, nil
}

// Percent returns part as a percentage of whole, or 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
