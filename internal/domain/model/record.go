// Package model contains domain models passed between layers.
package model

import "strconv"

// Column names as they appear in the header of the medals file.
const (
	ColCity        = "City"
	ColYear        = "Year"
	ColSport       = "Sport"
	ColDiscipline  = "Discipline"
	ColEvent       = "Event"
	ColAthlete     = "Athlete"
	ColGender      = "Gender"
	ColCountryCode = "Country_Code"
	ColCountry     = "Country"
	ColEventGender = "Event_gender"
	ColMedal       = "Medal"
)

// Columns lists every required column in file order.
var Columns = []string{
	ColCity, ColYear, ColSport, ColDiscipline, ColEvent, ColAthlete,
	ColGender, ColCountryCode, ColCountry, ColEventGender, ColMedal,
}

// Medal values.
const (
	Gold   = "Gold"
	Silver = "Silver"
	Bronze = "Bronze"
)

// Gender values.
const (
	Men   = "Men"
	Women = "Women"
)

// Medals lists medal types from most to least valuable.
var Medals = []string{Gold, Silver, Bronze}

// Record is one medal award: an athlete of a country winning a medal in
// an event of a given year.
type Record struct {
	City        string `json:"city"`
	Year        int    `json:"year"`
	Sport       string `json:"sport"`
	Discipline  string `json:"discipline"`
	Event       string `json:"event"`
	Athlete     string `json:"athlete"`
	Gender      string `json:"gender"`
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	EventGender string `json:"event_gender"`
	Medal       string `json:"medal"`
}

// Field returns the value of the named column, or "" for unknown columns.
func (r Record) Field(column string) string {
	switch column {
	case ColCity:
		return r.City
	case ColYear:
		return strconv.Itoa(r.Year)
	case ColSport:
		return r.Sport
	case ColDiscipline:
		return r.Discipline
	case ColEvent:
		return r.Event
	case ColAthlete:
		return r.Athlete
	case ColGender:
		return r.Gender
	case ColCountryCode:
		return r.CountryCode
	case ColCountry:
		return r.Country
	case ColEventGender:
		return r.EventGender
	case ColMedal:
		return r.Medal
	default:
		return ""
	}
}
