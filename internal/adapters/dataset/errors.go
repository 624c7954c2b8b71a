package dataset

import "errors"

var (
	// ErrOpen is returned when the source file cannot be opened.
	ErrOpen = errors.New("open dataset")
	// ErrParse is returned when the source cannot be parsed as CSV.
	ErrParse = errors.New("parse dataset")
	// ErrEmpty is returned when the source has a header but no rows.
	ErrEmpty = errors.New("dataset has no rows")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidYear is returned when a Year value is not an integer.
	ErrInvalidYear = errors.New("invalid year")
	// ErrUnsupportedEncoding is returned for unknown text encodings.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)
