// Package verify fetches the served aggregates and checks that they agree
// with each other.
package verify

import (
	"errors"
	"time"
)

// Sentinel errors.
var (
	ErrRequest      = errors.New("request failed")
	ErrStatus       = errors.New("unexpected status")
	ErrDecode       = errors.New("decode response")
	ErrInconsistent = errors.New("aggregates inconsistent")
)

// Config holds configuration for a verification run.
type Config struct {
	BaseURL string        // Base URL of the service
	TopN    int           // Leaderboard entries to fetch
	Timeout time.Duration // Per-request timeout
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:9080"
	}
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// Check is the outcome of one consistency rule.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report collects the checks of one run.
type Report struct {
	Checks      []Check       `json:"checks"`
	TotalMedals int           `json:"total_medals"`
	Countries   int           `json:"countries"`
	Duration    time.Duration `json:"duration"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}
