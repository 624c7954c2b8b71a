// Package aggregate computes grouped counts and derived statistics over
// cleaned medal records.
package aggregate

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Order selects how grouped counts are sorted.
type Order int

const (
	// Descending sorts by count, highest first, ties broken by key.
	Descending Order = iota
	// ByKey sorts by key ascending, numerically for int columns such as Year.
	ByKey
)

// Count is the number of records sharing one key.
type Count struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// Counts is an ordered list of grouped counts.
type Counts []Count

// CountBy groups df by column and counts each group.
func CountBy(df dataframe.DataFrame, column string, order Order) (Counts, error) {
	if df.Nrow() == 0 {
		return Counts{}, nil
	}
	agg, err := countGroups(df, column)
	if err != nil {
		return nil, err
	}
	sorted := agg.Arrange(arrangement(column, order)...)
	if sorted.Err != nil {
		return nil, fmt.Errorf("arrange %s: %w", column, sorted.Err)
	}
	keys := sorted.Col(column).Records()
	values := sorted.Col(countCol).Float()
	out := make(Counts, len(keys))
	for i := range keys {
		out[i] = Count{Key: keys[i], Value: int(values[i])}
	}
	return out, nil
}

// arrangement maps an Order onto gota sort keys. Arrange is stable, so the
// key sort applied last breaks count ties.
func arrangement(column string, order Order) []dataframe.Order {
	if order == ByKey {
		return []dataframe.Order{dataframe.Sort(column)}
	}
	return []dataframe.Order{dataframe.RevSort(countCol), dataframe.Sort(column)}
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, e := range c {
		n += e.Value
	}
	return n
}

// Top returns at most n leading entries. A non-positive n returns all.
func (c Counts) Top(n int) Counts {
	if n <= 0 || n >= len(c) {
		return c
	}
	return c[:n]
}

// Get returns the count for key, or zero.
func (c Counts) Get(key string) int {
	for _, e := range c {
		if e.Key == key {
			return e.Value
		}
	}
	return 0
}

// Max returns the entry with the highest value; the earliest wins ties.
func (c Counts) Max() (Count, bool) {
	if len(c) == 0 {
		return Count{}, false
	}
	best := c[0]
	for _, e := range c[1:] {
		if e.Value > best.Value {
			best = e
		}
	}
	return best, true
}

// First returns the first entry.
func (c Counts) First() (Count, bool) {
	if len(c) == 0 {
		return Count{}, false
	}
	return c[0], true
}

// Last returns the last entry.
func (c Counts) Last() (Count, bool) {
	if len(c) == 0 {
		return Count{}, false
	}
	return c[len(c)-1], true
}

// Keys returns the keys in order.
func (c Counts) Keys() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Key
	}
	return out
}

// Values returns the counts in order.
func (c Counts) Values() []float64 {
	out := make([]float64, len(c))
	for i, e := range c {
		out[i] = float64(e.Value)
	}
	return out
}
