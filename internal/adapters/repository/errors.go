package repository

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrNotFound     = errors.New("country not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
