// Package service runs the medal analysis pipeline and serves the
// precomputed read model behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/chart"
	"github.com/okian/podium/internal/adapters/dataset"
	"github.com/okian/podium/internal/adapters/report"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/classify"
	"github.com/okian/podium/internal/domain/insight"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// readModel holds everything derived from the cleaned table. It is built
// once by Start and never mutated afterwards.
type readModel struct {
	table     *dataset.Table
	views     aggregate.Views
	countries []aggregate.CountryStats
	athletes  []aggregate.AthleteStats
	sports    []aggregate.SportStats
	trends    []aggregate.YearTrend
	gender    aggregate.GenderBreakdown
	summary   aggregate.Summary
	insights  []insight.Insight

	// result is the fitted classifier; modelErr is set instead when the
	// data cannot support a fit.
	result   classify.Result
	modelErr error
}

// Service implements the API dependencies for the medal analysis.
type Service struct {
	mu sync.RWMutex

	// Configuration
	dataPath     string
	encoding     string
	chartPath    string
	chartDPI     int
	chartWidth   float64
	chartHeight  float64
	topN         int
	testFraction float64
	seed         int64
	target       classify.Target
	maxLimit     int
	modelOpts    []classify.ModelOption

	// Core components
	standings repository.Store
	rm        *readModel

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDataPath sets the medal CSV location.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithEncoding sets the CSV text encoding.
func WithEncoding(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.encoding = name
		}
	}
}

// WithChartPath sets where Analyze writes the chart grid.
func WithChartPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.chartPath = path
		}
	}
}

// WithChartDPI sets the chart resolution.
func WithChartDPI(dpi int) Option {
	return func(s *Service) {
		if dpi > 0 {
			s.chartDPI = dpi
		}
	}
}

// WithChartSize sets the chart canvas size in inches.
func WithChartSize(widthIn, heightIn float64) Option {
	return func(s *Service) {
		if widthIn > 0 && heightIn > 0 {
			s.chartWidth = widthIn
			s.chartHeight = heightIn
		}
	}
}

// WithTopN sets the length of ranked tables and bar charts.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithTestFraction sets the held-out share for the classifier.
func WithTestFraction(f float64) Option {
	return func(s *Service) {
		if f > 0 && f < 1 {
			s.testFraction = f
		}
	}
}

// WithSeed sets the train/test shuffle seed.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithTarget sets the classifier label.
func WithTarget(t classify.Target) Option {
	return func(s *Service) {
		if t != "" {
			s.target = t
		}
	}
}

// WithMaxLeaderboardLimit caps TopN requests.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithModelOptions passes options to the classifier.
func WithModelOptions(opts ...classify.ModelOption) Option {
	return func(s *Service) {
		s.modelOpts = append(s.modelOpts, opts...)
	}
}

// WithStore replaces the standings store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.standings = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:     "data/Summer-Olympic-medals-1976-to-2008.csv",
		encoding:     "latin1",
		chartPath:    "olympics_analysis.png",
		chartDPI:     300,
		chartWidth:   20,
		chartHeight:  12,
		topN:         10,
		testFraction: 0.3,
		seed:         42,
		target:       classify.TargetGold,
		maxLimit:     100,
		logger:       nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.standings == nil {
		s.standings = repository.NewStandingsStore(repository.WithMaxLimit(s.maxLimit))
	}
	return s
}

// Start loads the dataset and precomputes the read model.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting medal service...", logger.String("dataPath", s.dataPath))

	var table *dataset.Table
	err := s.stage(ctx, metrics.StageLoad, func() error {
		var err error
		table, err = dataset.Load(ctx, s.dataPath, dataset.WithEncoding(s.encoding))
		return err
	})
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	metrics.UpdateDataset(table.RawRows, table.Len(), table.Dropped)

	rm := &readModel{table: table}
	err = s.stage(ctx, metrics.StageAggregate, func() error {
		df := table.Frame
		var err error
		if rm.views, err = aggregate.Build(df); err != nil {
			return err
		}
		if rm.countries, err = aggregate.CountryTable(df); err != nil {
			return err
		}
		if rm.athletes, err = aggregate.Athletes(df); err != nil {
			return err
		}
		if rm.sports, err = aggregate.Sports(df); err != nil {
			return err
		}
		if rm.trends, err = aggregate.YearTrends(df); err != nil {
			return err
		}
		if rm.gender, err = aggregate.Gender(df); err != nil {
			return err
		}
		rm.summary = aggregate.Summarize(df)
		return s.standings.Replace(ctx, rm.countries)
	})
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	err = s.stage(ctx, metrics.StageModel, func() error {
		var err error
		rm.result, err = classify.Analyze(table.Records,
			classify.WithTarget(s.target),
			classify.WithTestFraction(s.testFraction),
			classify.WithSeed(s.seed),
			classify.WithModelOptions(s.modelOpts...),
		)
		return err
	})
	switch {
	case err == nil:
		metrics.UpdateModelAccuracy(rm.result.Accuracy)
		if w := rm.result.Warning; w != nil {
			s.logger.Warn(ctx, "model did not converge", logger.Error(w))
		}
	case errors.Is(err, classify.ErrSingleClass), errors.Is(err, classify.ErrEmptyDataset):
		s.logger.Warn(ctx, "model skipped", logger.Error(err))
		rm.modelErr = err
	default:
		return fmt.Errorf("fit model: %w", err)
	}

	_ = s.stage(ctx, metrics.StageInsight, func() error {
		rm.insights = insight.Generate(rm.views)
		return nil
	})

	s.rm = rm
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "medal service started",
		logger.Int("rawRows", table.RawRows),
		logger.Int("records", table.Len()),
		logger.Int("dropped", table.Dropped),
		logger.Int("countries", len(rm.countries)),
	)

	return nil
}

// Stop releases the read model.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.rm = nil
	s.started = false
	s.logger.Info(context.Background(), "medal service stopped")
}

// Analyze runs the full pipeline and writes the report to w: dataset
// overview, grouped counts, chart image, classifier and insights.
func (s *Service) Analyze(ctx context.Context, w io.Writer, opts ...report.Option) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	rm, err := s.model()
	if err != nil {
		return err
	}

	rep := report.New(w, append([]report.Option{report.WithTopN(s.topN)}, opts...)...)
	rep.Banner("OLYMPICS DATA ANALYSIS")
	rep.Dataset(rm.table)
	rep.Views(rm.views)

	var size int64
	err = s.stage(ctx, metrics.StageChart, func() error {
		var err error
		size, err = chart.Render(ctx, rm.views, s.chartPath,
			chart.WithSize(s.chartWidth, s.chartHeight),
			chart.WithDPI(s.chartDPI),
			chart.WithTopN(s.topN),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	metrics.UpdateChartBytes(size)
	rep.Chart(s.chartPath, size)

	if rm.modelErr != nil {
		rep.ModelSkipped(rm.modelErr)
	} else {
		rep.Model(rm.result)
	}

	rep.Insights(rm.insights)
	rep.Done()
	metrics.RecordPipelineRun()
	return nil
}

// stage times fn and records it under the given pipeline stage.
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	durationMs := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordStageDuration(name, durationMs)
	if err != nil {
		metrics.RecordStageError(name)
		s.logger.Error(ctx, "stage failed", logger.String("stage", name), logger.Error(err))
		return err
	}
	s.logger.Debug(ctx, "stage done", logger.String("stage", name), logger.Float64("ms", durationMs))
	return nil
}

func (s *Service) model() (*readModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.rm == nil {
		return nil, ErrNotStarted
	}
	return s.rm, nil
}

// Summary returns the dataset headline numbers.
func (s *Service) Summary(ctx context.Context) (aggregate.Summary, error) {
	rm, err := s.model()
	if err != nil {
		return aggregate.Summary{}, err
	}
	return rm.summary, nil
}

// Countries returns the country medal table; limit <= 0 returns all rows.
func (s *Service) Countries(ctx context.Context, limit int) ([]aggregate.CountryStats, error) {
	rm, err := s.model()
	if err != nil {
		return nil, err
	}
	return head(rm.countries, limit), nil
}

// Athletes returns athlete statistics; limit <= 0 returns all rows.
func (s *Service) Athletes(ctx context.Context, limit int) ([]aggregate.AthleteStats, error) {
	rm, err := s.model()
	if err != nil {
		return nil, err
	}
	return head(rm.athletes, limit), nil
}

// Sports returns per-sport statistics.
func (s *Service) Sports(ctx context.Context) ([]aggregate.SportStats, error) {
	rm, err := s.model()
	if err != nil {
		return nil, err
	}
	return rm.sports, nil
}

// Gender returns the gender breakdown.
func (s *Service) Gender(ctx context.Context) (aggregate.GenderBreakdown, error) {
	rm, err := s.model()
	if err != nil {
		return aggregate.GenderBreakdown{}, err
	}
	return rm.gender, nil
}

// Trends returns per-year statistics.
func (s *Service) Trends(ctx context.Context) ([]aggregate.YearTrend, error) {
	rm, err := s.model()
	if err != nil {
		return nil, err
	}
	return rm.trends, nil
}

// CountryTrend returns medals per year for one country. The name is
// matched case-insensitively; unknown countries yield an empty slice.
func (s *Service) CountryTrend(ctx context.Context, country string) ([]aggregate.YearCount, error) {
	rm, err := s.model()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(country)
	for _, c := range rm.countries {
		if strings.EqualFold(c.Country, name) {
			name = c.Country
			break
		}
	}
	return aggregate.CountryTrend(rm.table.Frame, name)
}

// Records returns a page of the cleaned records passing q's filters.
// Total counts every matching record; a limit <= 0 returns all of them
// from offset on.
func (s *Service) Records(ctx context.Context, q types.RecordQuery) (types.RecordPage, error) {
	rm, err := s.model()
	if err != nil {
		return types.RecordPage{}, err
	}
	all := rm.table.Records
	if q.Filtered() {
		all = make([]model.Record, 0)
		for _, r := range rm.table.Records {
			if q.Matches(r) {
				all = append(all, r)
			}
		}
	}
	offset := min(max(q.Offset, 0), len(all))
	end := len(all)
	if q.Limit > 0 {
		end = min(offset+q.Limit, len(all))
	}
	return types.RecordPage{
		Total:   len(all),
		Limit:   q.Limit,
		Offset:  offset,
		Records: all[offset:end],
	}, nil
}

// Predict scores a country, sport and gender combination with the fitted
// classifier. Names are matched case-insensitively and a zero year means
// the latest games in the data.
func (s *Service) Predict(ctx context.Context, country, sport, gender string, year int) (classify.Prediction, error) {
	rm, err := s.model()
	if err != nil {
		return classify.Prediction{}, err
	}
	if rm.modelErr != nil {
		return classify.Prediction{}, rm.modelErr
	}
	p := rm.result.Predictor
	if p == nil {
		return classify.Prediction{}, classify.ErrNotFitted
	}
	if year == 0 {
		year = rm.summary.Years.End
	}
	enc := p.Encoder()
	return p.Predict(
		canonical(enc.Countries(), country),
		canonical(enc.Sports(), sport),
		canonical(enc.Genders(), gender),
		year,
	)
}

// Insights returns the derived insights.
func (s *Service) Insights(ctx context.Context) ([]insight.Insight, error) {
	rm, err := s.model()
	if err != nil {
		return nil, err
	}
	return rm.insights, nil
}

// TopN returns the top N standings entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if _, err := s.model(); err != nil {
		return nil, err
	}
	return s.standings.TopN(ctx, n)
}

// Rank returns the standing of a country.
func (s *Service) Rank(ctx context.Context, country string) (types.Entry, error) {
	if _, err := s.model(); err != nil {
		return types.Entry{}, err
	}
	return s.standings.Rank(ctx, country)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"dataPath":  s.dataPath,
		"encoding":  s.encoding,
		"target":    string(s.target),
		"topN":      s.topN,
		"maxLimit":  s.maxLimit,
		"chartPath": s.chartPath,
	}

	if s.started && s.rm != nil {
		countries := s.standings.Count(context.Background())
		stats["rawRows"] = s.rm.table.RawRows
		stats["records"] = s.rm.table.Len()
		stats["dropped"] = s.rm.table.Dropped
		stats["countries"] = countries
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())

		metrics.UpdateCountries(countries)
	}

	return stats
}

// canonical returns the known value equal to v ignoring case and
// surrounding space, or v itself.
func canonical(known []string, v string) string {
	v = strings.TrimSpace(v)
	for _, k := range known {
		if strings.EqualFold(k, v) {
			return k
		}
	}
	return v
}

func head[T any](rows []T, n int) []T {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
