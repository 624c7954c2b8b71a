package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/metrics"
)

// Snapshot is an immutable view of the standings.
type Snapshot struct {
	Entries []types.Entry
	// byCountry maps a lower-cased country name to its index in Entries.
	byCountry map[string]int
}

// StandingsStore serves ranked country standings from an atomically
// swapped snapshot. Readers never block.
type StandingsStore struct {
	maxLimit int
	snapshot atomic.Pointer[Snapshot]
}

var _ Store = (*StandingsStore)(nil)

// NewStandingsStore constructs an empty store.
func NewStandingsStore(opts ...Option) *StandingsStore {
	s := &StandingsStore{maxLimit: 0}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{byCountry: map[string]int{}})
	return s
}

// Replace implements Store.Replace.
func (s *StandingsStore) Replace(ctx context.Context, table []aggregate.CountryStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries := make([]types.Entry, len(table))
	for i, row := range table {
		entries[i] = types.Entry{
			Country: row.Country,
			Gold:    row.Gold,
			Silver:  row.Silver,
			Bronze:  row.Bronze,
			Total:   row.Total,
		}
	}
	slices.SortStableFunc(entries, func(a, b types.Entry) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	assignRanksWithTies(entries)

	snap := &Snapshot{Entries: entries, byCountry: make(map[string]int, len(entries))}
	for i, e := range entries {
		snap.byCountry[strings.ToLower(e.Country)] = i
	}
	s.snapshot.Store(snap)
	metrics.UpdateCountries(len(entries))
	return nil
}

// Rank implements Store.Rank.
func (s *StandingsStore) Rank(ctx context.Context, country string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	snap := s.snapshot.Load()
	i, ok := snap.byCountry[strings.ToLower(strings.TrimSpace(country))]
	if !ok {
		return types.Entry{}, fmt.Errorf("%w: %q", ErrNotFound, country)
	}
	return snap.Entries[i], nil
}

// TopN implements Store.TopN.
func (s *StandingsStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 || (s.maxLimit > 0 && n > s.maxLimit) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	entries := s.snapshot.Load().Entries
	if n > len(entries) {
		n = len(entries)
	}
	return slices.Clone(entries[:n]), nil
}

// Count implements Store.Count.
func (s *StandingsStore) Count(ctx context.Context) int {
	return len(s.snapshot.Load().Entries)
}

// assignRanksWithTies gives entries with identical medal counts the same
// rank; the next distinct entry takes the following rank.
func assignRanksWithTies(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || !sameMedals(entries[i-1], entries[i]) {
			rank++
		}
		entries[i].Rank = rank
	}
}

func sameMedals(a, b types.Entry) bool {
	return a.Gold == b.Gold && a.Silver == b.Silver && a.Bronze == b.Bronze && a.Total == b.Total
}
