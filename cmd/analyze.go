package main

import (
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/classify"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run the analysis pipeline and print the report",
		Long: `Runs the five stages in order:
  1. Load the CSV and drop rows with missing values
  2. Count medals by country, year, gender, athlete and sport
  3. Render the six-chart grid to chart_path
  4. Fit the logistic-regression classifier and report accuracy
  5. Print the derived insights`,
		Args: cobra.NoArgs,
		RunE: c.runAnalyze,
	}
}

func (c *cli) runAnalyze(cmd *cobra.Command, _ []string) error {
	svc, err := newService(c.cfg, c)
	if err != nil {
		return err
	}
	defer svc.Stop()
	return svc.Analyze(cmd.Context(), cmd.OutOrStdout())
}

// newService builds the service from configuration.
func newService(cfg *config.Config, c *cli) (*app.Service, error) {
	target, err := classify.ParseTarget(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return app.New(
		app.WithLogger(c.log),
		app.WithDataPath(cfg.DataPath),
		app.WithEncoding(cfg.Encoding),
		app.WithChartPath(cfg.ChartPath),
		app.WithChartDPI(cfg.ChartDPI),
		app.WithTopN(cfg.TopN),
		app.WithTestFraction(cfg.TestFraction),
		app.WithSeed(cfg.Seed),
		app.WithTarget(target),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	), nil
}
