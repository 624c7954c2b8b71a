// Package report prints the pipeline results as colored headings and
// tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/podium/internal/adapters/dataset"
	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/classify"
	"github.com/okian/podium/internal/domain/insight"
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithTopN sets how many rows ranked tables show.
func WithTopN(n int) Option {
	return func(r *Reporter) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithColor forces colored output on or off. By default color follows
// whether stdout is a terminal.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		for _, c := range []*color.Color{r.banner, r.heading, r.good, r.warn} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// Reporter writes report sections to w.
type Reporter struct {
	w    io.Writer
	topN int

	banner  *color.Color
	heading *color.Color
	good    *color.Color
	warn    *color.Color
}

// New creates a Reporter.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		w:       w,
		topN:    10,
		banner:  color.New(color.FgCyan, color.Bold),
		heading: color.New(color.FgYellow),
		good:    color.New(color.FgGreen),
		warn:    color.New(color.FgRed),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Banner prints a title framed by rules.
func (r *Reporter) Banner(title string) {
	rule := strings.Repeat("=", 60)
	_, _ = r.banner.Fprintln(r.w, rule)
	_, _ = r.banner.Fprintln(r.w, title)
	_, _ = r.banner.Fprintln(r.w, rule)
}

func (r *Reporter) section(title string) {
	_, _ = r.heading.Fprintf(r.w, "\n=== %s ===\n", title)
}

func (r *Reporter) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(r.w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.AppendBulk(rows)
	t.Render()
}

// Dataset prints the table shape, a preview and missing-value counts.
func (r *Reporter) Dataset(t *dataset.Table) {
	r.section("DATASET")
	fmt.Fprintf(r.w, "Dataset shape: (%d, %d)\n", t.RawRows, len(t.Headers))
	fmt.Fprintf(r.w, "Rows after dropping missing values: %d (dropped %d)\n", t.Len(), t.Dropped)

	if len(t.Preview) > 0 {
		fmt.Fprintln(r.w, "\nFirst few rows:")
		r.table(t.Headers, t.Preview)
	}

	fmt.Fprintln(r.w, "\nMissing values:")
	rows := make([][]string, len(t.Missing))
	for i, m := range t.Missing {
		rows[i] = []string{m.Column, strconv.Itoa(m.Count)}
	}
	r.table([]string{"Column", "Missing"}, rows)
}

// Views prints the grouped counts.
func (r *Reporter) Views(v aggregate.Views) {
	r.counts(fmt.Sprintf("TOP %d COUNTRIES BY MEDAL COUNT", r.topN), "Country", v.ByCountry.Top(r.topN))
	r.counts("MEDALS BY YEAR", "Year", v.ByYear)
	r.counts("GENDER DISTRIBUTION", "Gender", v.ByGender)
	r.counts(fmt.Sprintf("TOP %d ATHLETES BY MEDAL COUNT", r.topN), "Athlete", v.ByAthlete.Top(r.topN))
	r.counts("MEDALS BY SPORT", "Sport", v.BySport.Top(r.topN))
}

func (r *Reporter) counts(title, key string, c aggregate.Counts) {
	r.section(title)
	rows := make([][]string, len(c))
	for i, e := range c {
		rows[i] = []string{e.Key, strconv.Itoa(e.Value)}
	}
	r.table([]string{key, "Medals"}, rows)
}

// Chart reports where the image was written.
func (r *Reporter) Chart(path string, size int64) {
	r.section("VISUALIZATIONS")
	_, _ = r.good.Fprintf(r.w, "Saved charts to %s (%d bytes)\n", path, size)
}

// Model prints accuracy and feature importance.
func (r *Reporter) Model(res classify.Result) {
	r.section("MACHINE LEARNING ANALYSIS")
	fmt.Fprintf(r.w, "Target: %s (positive %d, negative %d)\n", res.Target, res.Positives, res.Negatives)
	fmt.Fprintf(r.w, "Train/test rows: %d/%d\n", res.TrainSize, res.TestSize)
	_, _ = r.good.Fprintf(r.w, "Model Accuracy: %.4f\n", res.Accuracy)

	fmt.Fprintln(r.w, "\nFeature Importance:")
	rows := make([][]string, len(res.Importance))
	for i, f := range res.Importance {
		rows[i] = []string{f.Feature, strconv.FormatFloat(f.Importance, 'f', 4, 64)}
	}
	r.table([]string{"Feature", "Importance"}, rows)
}

// ModelSkipped explains why no model was fitted.
func (r *Reporter) ModelSkipped(reason error) {
	r.section("MACHINE LEARNING ANALYSIS")
	_, _ = r.warn.Fprintf(r.w, "Model skipped: %v\n", reason)
}

// Insights prints the numbered insights.
func (r *Reporter) Insights(ins []insight.Insight) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(r.w)
	_, _ = r.banner.Fprintln(r.w, rule)
	_, _ = r.banner.Fprintln(r.w, "KEY INSIGHTS FROM OLYMPICS DATA ANALYSIS")
	_, _ = r.banner.Fprintln(r.w, rule)
	for i, in := range ins {
		fmt.Fprintf(r.w, "%d. %s\n", i+1, in)
	}
}

// Done prints the closing banner.
func (r *Reporter) Done() {
	fmt.Fprintln(r.w)
	r.Banner("ANALYSIS COMPLETE!")
}
