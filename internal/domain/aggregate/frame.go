package aggregate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/podium/internal/domain/model"
)

// countCol is the column Aggregation_COUNT adds when counting rows per group.
var countCol = model.ColMedal + "_" + dataframe.Aggregation_COUNT.String()

// Frame builds a typed frame from cleaned records. Year is an int column,
// every other column holds strings.
func Frame(records []model.Record) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(model.Columns))
	for _, name := range model.Columns {
		if name == model.ColYear {
			years := make([]int, len(records))
			for i := range records {
				years[i] = records[i].Year
			}
			cols = append(cols, series.New(years, series.Int, name))
			continue
		}
		values := make([]string, len(records))
		for i := range records {
			values[i] = records[i].Field(name)
		}
		cols = append(cols, series.New(values, series.String, name))
	}
	return dataframe.New(cols...)
}

// countGroups groups a non-empty df by cols and counts the rows of each
// group into countCol. Group order is unspecified.
func countGroups(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	g := df.GroupBy(cols...)
	if g.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("group by %v: %w", cols, g.Err)
	}
	agg := g.Aggregation([]dataframe.AggregationType{dataframe.Aggregation_COUNT}, []string{model.ColMedal})
	if agg.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("count by %v: %w", cols, agg.Err)
	}
	return agg, nil
}

// partition splits df into one frame per distinct combination of cols,
// ordered by gota's group key.
func partition(df dataframe.DataFrame, cols ...string) ([]dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return nil, nil
	}
	g := df.GroupBy(cols...)
	if g.Err != nil {
		return nil, fmt.Errorf("group by %v: %w", cols, g.Err)
	}
	groups := g.GetGroups()
	out := make([]dataframe.DataFrame, 0, len(groups))
	for _, key := range slices.Sorted(maps.Keys(groups)) {
		part := groups[key]
		if part.Err != nil {
			return nil, fmt.Errorf("group %q: %w", key, part.Err)
		}
		out = append(out, part)
	}
	return out, nil
}

// crossCount counts rows per (rowCol, colCol) pair.
func crossCount(df dataframe.DataFrame, rowCol, colCol string) (map[string]map[string]int, error) {
	out := make(map[string]map[string]int)
	if df.Nrow() == 0 {
		return out, nil
	}
	agg, err := countGroups(df, rowCol, colCol)
	if err != nil {
		return nil, err
	}
	rows := agg.Col(rowCol).Records()
	cols := agg.Col(colCol).Records()
	counts := agg.Col(countCol).Float()
	for i := range rows {
		if out[rows[i]] == nil {
			out[rows[i]] = make(map[string]int)
		}
		out[rows[i]][cols[i]] += int(counts[i])
	}
	return out, nil
}

// first returns the value of col in the first row of a non-empty df.
func first(df dataframe.DataFrame, col string) string {
	return df.Col(col).Records()[0]
}

func distinct(df dataframe.DataFrame, cols ...string) int {
	seen := make(map[string]struct{})
	values := make([][]string, len(cols))
	for i, c := range cols {
		values[i] = df.Col(c).Records()
	}
	for row := 0; row < df.Nrow(); row++ {
		key := ""
		for i := range cols {
			key += values[i][row] + "\x00"
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}

func sortedUnique(df dataframe.DataFrame, col string) []string {
	seen := make(map[string]struct{})
	for _, v := range df.Col(col).Records() {
		seen[v] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func sortedYears(df dataframe.DataFrame) ([]int, error) {
	years, err := df.Col(model.ColYear).Int()
	if err != nil {
		return nil, fmt.Errorf("year column: %w", err)
	}
	slices.Sort(years)
	return slices.Compact(years), nil
}

func genderSplit(df dataframe.DataFrame) (male, female int) {
	if df.Nrow() == 0 {
		return 0, 0
	}
	for _, g := range df.Col(model.ColGender).Records() {
		switch g {
		case model.Men:
			male++
		case model.Women:
			female++
		}
	}
	return male, female
}

func yearRange(df dataframe.DataFrame) YearRange {
	if df.Nrow() == 0 {
		return YearRange{}
	}
	col := df.Col(model.ColYear)
	return YearRange{Start: int(col.Min()), End: int(col.Max())}
}
