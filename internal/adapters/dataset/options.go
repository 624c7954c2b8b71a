package dataset

// Option configures how a dataset is read.
type Option func(*config)

type config struct {
	encoding    string
	previewRows int
	nanValues   []string
}

func defaultConfig() config {
	return config{
		encoding:    EncodingLatin1,
		previewRows: 5,
		nanValues:   []string{"", "NA", "NaN", "nan", "<nil>"},
	}
}

// WithEncoding sets the text encoding of the source (latin1 or utf-8).
func WithEncoding(name string) Option {
	return func(c *config) {
		c.encoding = name
	}
}

// WithPreviewRows sets how many raw rows are kept for display.
func WithPreviewRows(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.previewRows = n
		}
	}
}

// WithNaNValues replaces the set of literals treated as missing.
func WithNaNValues(values []string) Option {
	return func(c *config) {
		c.nanValues = append([]string(nil), values...)
	}
}
