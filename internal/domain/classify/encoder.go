package classify

import (
	"fmt"
	"slices"

	"github.com/okian/podium/internal/domain/model"
)

// LabelEncoder maps categorical values onto the index of the value in the
// sorted list of distinct values.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// Fit learns the distinct values.
func (e *LabelEncoder) Fit(values []string) *LabelEncoder {
	classes := slices.Clone(values)
	slices.Sort(classes)
	e.classes = slices.Compact(classes)
	e.index = make(map[string]int, len(e.classes))
	for i, c := range e.classes {
		e.index[c] = i
	}
	return e
}

// Transform encodes values learned by Fit.
func (e *LabelEncoder) Transform(values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		code, ok := e.index[v]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, v)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform fits on values and encodes them.
func (e *LabelEncoder) FitTransform(values []string) []int {
	codes, _ := e.Fit(values).Transform(values)
	return codes
}

// Classes returns the learned values in code order.
func (e *LabelEncoder) Classes() []string {
	return slices.Clone(e.classes)
}

// Encoder holds one LabelEncoder per categorical feature, fitted on the
// full record set so every known value has a code.
type Encoder struct {
	country LabelEncoder
	sport   LabelEncoder
	gender  LabelEncoder
}

// NewEncoder fits the feature encoders on records.
func NewEncoder(records []model.Record) *Encoder {
	e := &Encoder{}
	e.country.Fit(column(records, func(r model.Record) string { return r.Country }))
	e.sport.Fit(column(records, func(r model.Record) string { return r.Sport }))
	e.gender.Fit(column(records, func(r model.Record) string { return r.Gender }))
	return e
}

// Matrix encodes records into rows laid out as Features.
func (e *Encoder) Matrix(records []model.Record) ([][]float64, error) {
	x := make([][]float64, len(records))
	for i, r := range records {
		row, err := e.Row(r.Country, r.Sport, r.Gender, r.Year)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		x[i] = row
	}
	return x, nil
}

// Row encodes a single feature row. Values the encoder never saw yield
// ErrUnknownLabel.
func (e *Encoder) Row(country, sport, gender string, year int) ([]float64, error) {
	row := make([]float64, 0, len(Features))
	for _, f := range []struct {
		enc   *LabelEncoder
		name  string
		value string
	}{
		{&e.country, "country", country},
		{&e.sport, "sport", sport},
		{&e.gender, "gender", gender},
	} {
		code, err := f.enc.Transform([]string{f.value})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		row = append(row, float64(code[0]))
	}
	return append(row, float64(year)), nil
}

// Countries returns the known country values in code order.
func (e *Encoder) Countries() []string { return e.country.Classes() }

// Sports returns the known sport values in code order.
func (e *Encoder) Sports() []string { return e.sport.Classes() }

// Genders returns the known gender values in code order.
func (e *Encoder) Genders() []string { return e.gender.Classes() }

func column(records []model.Record, f func(model.Record) string) []string {
	values := make([]string, len(records))
	for i, r := range records {
		values[i] = f(r)
	}
	return values
}
