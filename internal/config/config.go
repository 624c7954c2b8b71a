// Package config defines process configuration and its layered loader.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and PODIUM_ env vars on top.
// - All loaders accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address used by `serve`, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath points at the medal CSV.
	DataPath string `koanf:"data_path"`

	// Encoding of the CSV file: latin1 or utf-8.
	Encoding string `koanf:"encoding"`

	// ChartPath is where the chart grid PNG is written.
	ChartPath string `koanf:"chart_path"`

	// ChartDPI sets the raster resolution of the chart image.
	ChartDPI int `koanf:"chart_dpi"`

	// TopN bounds the ranked tables and bar charts.
	TopN int `koanf:"top_n"`

	// TestFraction is the share of rows held out for evaluating the classifier.
	TestFraction float64 `koanf:"test_fraction"`

	// Seed drives the train/test shuffle.
	Seed int64 `koanf:"seed"`

	// Target selects the classifier label: gold or silver_or_better.
	Target string `koanf:"target"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Metrics configures the Prometheus exporter.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics holds the exporter settings. Env overrides use a double
// underscore for nesting, e.g. PODIUM_METRICS__NAMESPACE.
type Metrics struct {
	Enabled   bool              `koanf:"enabled"`
	Namespace string            `koanf:"namespace"`
	Subsystem string            `koanf:"subsystem"`
	Buckets   []float64         `koanf:"buckets"`
	Labels    map[string]string `koanf:"labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DataPath:            "data/Summer-Olympic-medals-1976-to-2008.csv",
		Encoding:            "latin1",
		ChartPath:           "olympics_analysis.png",
		ChartDPI:            300,
		TopN:                10,
		TestFraction:        0.3,
		Seed:                42,
		Target:              "gold",
		MaxLeaderboardLimit: 100,
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "podium",
			Subsystem: "analysis",
		},
	}
}
