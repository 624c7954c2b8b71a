// Package dataset loads the medals file into cleaned, typed records.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/podium/internal/domain/model"
)

// ColumnMissing is the number of missing values found in one column.
type ColumnMissing struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Table holds the cleaned records along with statistics about the load.
type Table struct {
	Records []model.Record
	// Frame holds the cleaned rows with Year as an int column. It has no
	// rows when every row was dropped.
	Frame   dataframe.DataFrame
	Headers []string
	// RawRows is the number of data rows read, header excluded.
	RawRows int
	// Dropped is the number of rows removed for having a missing value.
	Dropped int
	// Missing is reported in header order, before any row is dropped.
	Missing []ColumnMissing
	Preview [][]string
}

// Len returns the number of cleaned records.
func (t *Table) Len() int { return len(t.Records) }

// MissingTotal returns the number of missing cells across all columns.
func (t *Table) MissingTotal() int {
	n := 0
	for _, m := range t.Missing {
		n += m.Count
	}
	return n
}

// Load reads the CSV file at path.
func Load(ctx context.Context, path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = f.Close() }()
	return Read(ctx, f, opts...)
}

// Read parses CSV from r, drops rows with any missing value and converts
// Year to an integer. Rows shorter than the header are padded with empty
// cells and so dropped; longer rows fail with ErrParse.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*Table, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	src, err := decode(r, cfg.encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(src)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header", ErrParse)
	}
	headers := normalizeHeaders(rows[0])
	rows[0] = headers
	if err := requireColumns(headers); err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		return nil, ErrEmpty
	}
	if err := padRows(rows); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(cfg.nanValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, df.Err)
	}

	table := &Table{
		Headers: headers,
		RawRows: df.Nrow(),
		Preview: preview(rows[1:], cfg.previewRows),
	}

	missing := make([]bool, df.Nrow())
	for _, name := range headers {
		count := 0
		for i, isNaN := range df.Col(name).IsNaN() {
			if isNaN {
				missing[i] = true
				count++
			}
		}
		table.Missing = append(table.Missing, ColumnMissing{Column: name, Count: count})
	}

	keep := make([]int, 0, len(missing))
	for i, m := range missing {
		if !m {
			keep = append(keep, i)
		}
	}
	table.Dropped = table.RawRows - len(keep)
	if len(keep) == 0 {
		return table, nil
	}

	clean := df.Subset(keep)
	if clean.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, clean.Err)
	}
	records, err := toRecords(clean)
	if err != nil {
		return nil, err
	}
	years := make([]int, len(records))
	for i := range records {
		years[i] = records[i].Year
	}
	frame := clean.Mutate(series.New(years, series.Int, model.ColYear))
	if frame.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, frame.Err)
	}
	table.Records = records
	table.Frame = frame
	return table, nil
}

func toRecords(df dataframe.DataFrame) ([]model.Record, error) {
	cols := make(map[string][]string, len(model.Columns))
	for _, name := range model.Columns {
		cols[name] = df.Col(name).Records()
	}
	out := make([]model.Record, df.Nrow())
	for i := range out {
		field := func(name string) string { return cols[name][i] }
		year, err := ParseYear(field(model.ColYear))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = model.Record{
			City:        field(model.ColCity),
			Year:        year,
			Sport:       field(model.ColSport),
			Discipline:  field(model.ColDiscipline),
			Event:       field(model.ColEvent),
			Athlete:     field(model.ColAthlete),
			Gender:      field(model.ColGender),
			CountryCode: field(model.ColCountryCode),
			Country:     field(model.ColCountry),
			EventGender: field(model.ColEventGender),
			Medal:       field(model.ColMedal),
		}
	}
	return out, nil
}

// ParseYear accepts integer years as well as floats with no fractional
// part, e.g. "1976" and "1976.0".
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}
	return int(f), nil
}

// padRows extends short data rows to the header width with empty cells.
func padRows(rows [][]string) error {
	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		switch n := len(rows[i]); {
		case n > width:
			return fmt.Errorf("%w: record on line %d: %d fields, header has %d", ErrParse, i+1, n, width)
		case n < width:
			rows[i] = append(rows[i], make([]string, width-n)...)
		}
	}
	return nil
}

func normalizeHeaders(h []string) []string {
	out := make([]string, len(h))
	for i, name := range h {
		out[i] = strings.TrimSpace(name)
	}
	return out
}

func requireColumns(headers []string) error {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}
	var missing []string
	for _, c := range model.Columns {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func preview(rows [][]string, n int) [][]string {
	if n > len(rows) {
		n = len(rows)
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = append([]string(nil), rows[i]...)
	}
	return out
}
