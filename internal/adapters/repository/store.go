// Package repository defines the standings store interface and errors.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/types"
)

// Store provides read access to the medal standings.
type Store interface {
	// Replace publishes a new set of standings built from the country table.
	Replace(ctx context.Context, table []aggregate.CountryStats) error

	// Rank returns the standing of a country, matched case-insensitively.
	// Returns ErrNotFound if the country is unknown.
	Rank(ctx context.Context, country string) (types.Entry, error)

	// TopN returns the top-N entries in standings order.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of countries in the standings.
	Count(ctx context.Context) int
}
