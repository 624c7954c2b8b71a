package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/podium/internal/verify"
)

func newVerifyCmd(c *cli) *cobra.Command {
	var (
		baseURL string
		topN    int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a running server's aggregates for consistency",
		Long: `Fetches /api/summary, /api/countries, /api/trends and /leaderboard
concurrently and checks that country and yearly totals match the summary,
the leaderboard is ordered, and its leader ranks first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseURL == "" {
				baseURL = defaultURL(c.cfg.Addr)
			}
			report, err := verify.Run(cmd.Context(), verify.Config{
				BaseURL: baseURL,
				TopN:    topN,
				Timeout: timeout,
			})
			if err != nil {
				return err
			}
			printChecks(cmd, report)
			if !report.OK() {
				return fmt.Errorf("%w: %d of %d checks failed", verify.ErrInconsistent, len(report.Failed()), len(report.Checks))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "server base URL (default derived from config addr)")
	cmd.Flags().IntVar(&topN, "top", 10, "leaderboard entries to fetch")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	return cmd
}

// defaultURL turns a listen address like ":9080" into a client URL.
func defaultURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func printChecks(cmd *cobra.Command, report *verify.Report) {
	w := cmd.OutOrStdout()
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Check", "Result", "Detail"})
	t.SetAutoWrapText(false)
	for _, ch := range report.Checks {
		result := "PASS"
		if !ch.Passed {
			result = "FAIL"
		}
		t.Append([]string{ch.Name, result, ch.Detail})
	}
	t.Render()

	status := color.New(color.FgGreen)
	summary := "all checks passed"
	if !report.OK() {
		status = color.New(color.FgRed)
		summary = fmt.Sprintf("%d checks failed", len(report.Failed()))
	}
	_, _ = status.Fprintf(w, "%s (%d medals, %d countries, %s)\n",
		summary, report.TotalMedals, report.Countries, report.Duration.Round(time.Millisecond))
}
