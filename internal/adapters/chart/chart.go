// Package chart renders the aggregate views as a 2x3 grid of plots into a
// single PNG image.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/okian/podium/internal/domain/aggregate"
	"github.com/okian/podium/internal/domain/model"
)

var (
	gold   = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}
	silver = color.RGBA{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF}
	bronze = color.RGBA{R: 0xCD, G: 0x7F, B: 0x32, A: 0xFF}
	blue   = color.RGBA{B: 0xFF, A: 0xFF}
	pink   = color.RGBA{R: 0xFF, G: 0x99, B: 0x99, A: 0xFF}
	sky    = color.RGBA{R: 0x66, G: 0xB3, B: 0xFF, A: 0xFF}
)

const (
	rows = 2
	cols = 3
)

// Render draws the views and writes the PNG to path. It returns the number
// of bytes written.
func Render(ctx context.Context, v aggregate.Views, path string, opts ...Option) (int64, error) {
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	n, err := Draw(ctx, v, f, opts...)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", ErrWrite, cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

// Draw renders the views as PNG into w.
func Draw(ctx context.Context, v aggregate.Views, w io.Writer, opts ...Option) (int64, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	panels, err := buildPanels(v, cfg)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	img := vgimg.NewWith(vgimg.UseWH(cfg.width, cfg.height), vgimg.UseDPI(cfg.dpi))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Centimeter,
		PadY:      vg.Centimeter,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}
	canvases := plot.Align(panels, tiles, dc)
	for j := range panels {
		for i := range panels[j] {
			panels[j][i].Draw(canvases[j][i])
		}
	}

	n, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return n, nil
}

func buildPanels(v aggregate.Views, cfg config) ([][]*plot.Plot, error) {
	build := []func() (*plot.Plot, error){
		func() (*plot.Plot, error) {
			return bars(fmt.Sprintf("Top %d Countries by Medal Count", cfg.topN), "Country", "Total Medals",
				v.ByCountry.Top(cfg.topN), []color.Color{gold}, cfg, false)
		},
		func() (*plot.Plot, error) { return yearly(v.ByYear) },
		func() (*plot.Plot, error) { return genderShare(v.ByGender, cfg) },
		func() (*plot.Plot, error) {
			return bars(fmt.Sprintf("Top %d Athletes by Medal Count", cfg.topN), "Athlete", "Total Medals",
				v.ByAthlete.Top(cfg.topN), []color.Color{silver}, cfg, false)
		},
		func() (*plot.Plot, error) {
			return bars(fmt.Sprintf("Top %d Sports by Medal Count", cfg.topN), "Sport", "Total Medals",
				v.BySport.Top(cfg.topN), []color.Color{bronze}, cfg, false)
		},
		func() (*plot.Plot, error) {
			return bars("Distribution of Medal Types", "Medal Type", "Count",
				v.MedalDistribution(), []color.Color{gold, silver, bronze}, cfg, true)
		},
	}

	panels := make([][]*plot.Plot, rows)
	for k, fn := range build {
		p, err := fn()
		if err != nil {
			return nil, fmt.Errorf("%w: panel %d: %w", ErrRender, k+1, err)
		}
		j := k / cols
		panels[j] = append(panels[j], p)
	}
	return panels, nil
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Y.Min = 0
	return p
}

// bars draws one bar per count. Colors cycle over the entries. Rotated
// tick labels are used unless the labels are short.
func bars(title, x, y string, counts aggregate.Counts, colors []color.Color, cfg config, short bool) (*plot.Plot, error) {
	p := newPlot(title, x, y)
	for i, c := range counts {
		b, err := plotter.NewBarChart(plotter.Values{float64(c.Value)}, cfg.barWidth)
		if err != nil {
			return nil, err
		}
		b.XMin = float64(i)
		b.Color = colors[i%len(colors)]
		b.LineStyle.Width = 0
		p.Add(b)
	}
	nominalX(p, counts.Keys())
	if !short {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p, nil
}

func yearly(byYear aggregate.Counts) (*plot.Plot, error) {
	p := newPlot("Total Medals Won Over the Years", "Year", "Total Medals")
	p.Add(plotter.NewGrid())
	if len(byYear) == 0 {
		return p, nil
	}
	pts := make(plotter.XYs, 0, len(byYear))
	for _, c := range byYear {
		var year float64
		if _, err := fmt.Sscan(c.Key, &year); err != nil {
			return nil, fmt.Errorf("year %q: %w", c.Key, err)
		}
		pts = append(pts, plotter.XY{X: year, Y: float64(c.Value)})
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = blue
	line.Width = vg.Points(2)
	points.Color = blue
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	return p, nil
}

// genderShare stands in for a pie chart: one bar per gender showing its
// percentage of all medals, labelled with the value.
func genderShare(byGender aggregate.Counts, cfg config) (*plot.Plot, error) {
	p := newPlot("Gender Distribution in Olympics Events", "Gender", "Share of Medals (%)")
	p.Y.Max = 100
	nominalX(p, byGender.Keys())
	total := byGender.Total()
	if total == 0 {
		return p, nil
	}

	labels := plotter.XYLabels{}
	for i, c := range byGender {
		pct := aggregate.Percent(c.Value, total)
		b, err := plotter.NewBarChart(plotter.Values{pct}, cfg.barWidth*2)
		if err != nil {
			return nil, err
		}
		b.XMin = float64(i)
		b.Color = genderColor(c.Key, i)
		b.LineStyle.Width = 0
		p.Add(b)
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: pct})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.1f%%", pct))
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(l)
	return p, nil
}

// nominalX labels the X axis with names; plot.NominalX needs at least one.
func nominalX(p *plot.Plot, names []string) {
	if len(names) > 0 {
		p.NominalX(names...)
	}
}

func genderColor(g string, i int) color.Color {
	switch g {
	case model.Men:
		return sky
	case model.Women:
		return pink
	}
	if i%2 == 0 {
		return sky
	}
	return pink
}
