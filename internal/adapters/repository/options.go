package repository

// Option applies a configuration option to the StandingsStore.
type Option func(*StandingsStore)

// WithMaxLimit caps the number of entries TopN may return. Larger
// requests fail with ErrInvalidLimit.
func WithMaxLimit(n int) Option {
	return func(s *StandingsStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
