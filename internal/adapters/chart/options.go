package chart

import "gonum.org/v1/plot/vg"

// Option configures chart rendering.
type Option func(*config)

type config struct {
	width, height vg.Length
	dpi           int
	topN          int
	barWidth      vg.Length
}

func defaultConfig() config {
	return config{
		width:    20 * vg.Inch,
		height:   12 * vg.Inch,
		dpi:      300,
		topN:     10,
		barWidth: vg.Points(28),
	}
}

// WithSize sets the figure size in inches.
func WithSize(widthIn, heightIn float64) Option {
	return func(c *config) {
		if widthIn > 0 && heightIn > 0 {
			c.width = vg.Length(widthIn) * vg.Inch
			c.height = vg.Length(heightIn) * vg.Inch
		}
	}
}

// WithDPI sets the image resolution.
func WithDPI(dpi int) Option {
	return func(c *config) {
		if dpi > 0 {
			c.dpi = dpi
		}
	}
}

// WithTopN sets how many entries the ranked panels show.
func WithTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.topN = n
		}
	}
}
