package verify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

// Check names.
const (
	CheckCountryTotals     = "country_totals"
	CheckYearlyTotals      = "yearly_totals"
	CheckLeaderboardSorted = "leaderboard_sorted"
	CheckLeaderboardTop    = "leaderboard_top"
	CheckRankTop           = "rank_top"
)

// snapshot is everything fetched from the service.
type snapshot struct {
	summary     aggregate.Summary
	countries   []aggregate.CountryStats
	trends      []aggregate.YearTrend
	leaderboard []types.Entry
}

// Run fetches the summary, country table, yearly trends and leaderboard
// concurrently and checks them against each other. Transport and decode
// failures are returned as errors; rule violations are recorded in the
// report.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	log := logger.Get().Named("verify")
	start := time.Now()

	c := newClient(cfg)
	snap, err := fetch(ctx, c, cfg.TopN)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "fetched aggregates",
		logger.Int("countries", len(snap.countries)),
		logger.Int("years", len(snap.trends)),
		logger.Int("leaderboard", len(snap.leaderboard)),
	)

	report := &Report{
		TotalMedals: snap.summary.TotalMedals,
		Countries:   len(snap.countries),
	}
	report.Checks = append(report.Checks,
		checkCountryTotals(snap),
		checkYearlyTotals(snap),
		checkLeaderboardSorted(snap.leaderboard),
		checkLeaderboardTop(snap),
	)

	if len(snap.leaderboard) > 0 {
		var top types.Entry
		if err := c.getJSON(ctx, rankPath(snap.leaderboard[0].Country), &top); err != nil {
			return nil, err
		}
		report.Checks = append(report.Checks, checkRankTop(snap.leaderboard[0], top))
	}

	report.Duration = time.Since(start)
	for _, ch := range report.Failed() {
		log.Warn(ctx, "check failed", logger.String("check", ch.Name), logger.String("detail", ch.Detail))
	}
	log.Info(ctx, "verification completed",
		logger.Int("checks", len(report.Checks)),
		logger.Int("failed", len(report.Failed())),
	)
	return report, nil
}

func fetch(ctx context.Context, c *client, topN int) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, "/api/summary", &snap.summary) })
	g.Go(func() error { return c.getJSON(gctx, "/api/countries", &snap.countries) })
	g.Go(func() error { return c.getJSON(gctx, "/api/trends", &snap.trends) })
	g.Go(func() error {
		return c.getJSON(gctx, "/leaderboard?limit="+strconv.Itoa(topN), &snap.leaderboard)
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func checkCountryTotals(s snapshot) Check {
	sum := 0
	for _, c := range s.countries {
		sum += c.Total
	}
	return Check{
		Name:   CheckCountryTotals,
		Passed: sum == s.summary.TotalMedals,
		Detail: fmt.Sprintf("countries sum %d, summary %d", sum, s.summary.TotalMedals),
	}
}

func checkYearlyTotals(s snapshot) Check {
	sum := 0
	for _, t := range s.trends {
		sum += t.TotalMedals
	}
	return Check{
		Name:   CheckYearlyTotals,
		Passed: sum == s.summary.TotalMedals,
		Detail: fmt.Sprintf("years sum %d, summary %d", sum, s.summary.TotalMedals),
	}
}

func checkLeaderboardSorted(entries []types.Entry) Check {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Less(prev) || cur.Rank < prev.Rank {
			return Check{
				Name:   CheckLeaderboardSorted,
				Detail: fmt.Sprintf("entry %d (%s) ranks ahead of entry %d (%s)", i, cur.Country, i-1, prev.Country),
			}
		}
	}
	return Check{
		Name:   CheckLeaderboardSorted,
		Passed: true,
		Detail: fmt.Sprintf("%d entries in order", len(entries)),
	}
}

// checkLeaderboardTop compares totals rather than names: the country table
// breaks total ties by name while the standings consult golds first.
func checkLeaderboardTop(s snapshot) Check {
	ch := Check{Name: CheckLeaderboardTop}
	switch {
	case len(s.leaderboard) == 0 && len(s.countries) == 0:
		ch.Passed = true
		ch.Detail = "both empty"
	case len(s.leaderboard) == 0 || len(s.countries) == 0:
		ch.Detail = fmt.Sprintf("leaderboard %d rows, countries %d rows", len(s.leaderboard), len(s.countries))
	default:
		lb, top := s.leaderboard[0], s.countries[0]
		ch.Passed = lb.Total == top.Total
		ch.Detail = fmt.Sprintf("leaderboard top %s (%d), countries top %s (%d)", lb.Country, lb.Total, top.Country, top.Total)
	}
	return ch
}

func checkRankTop(leader, ranked types.Entry) Check {
	return Check{
		Name:   CheckRankTop,
		Passed: ranked.Rank == 1 && ranked.Country == leader.Country,
		Detail: fmt.Sprintf("rank of %s is %d", leader.Country, ranked.Rank),
	}
}
