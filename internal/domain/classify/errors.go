package classify

import "errors"

var (
	// ErrEmptyDataset is returned when there are too few rows to split or fit.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrSingleClass is returned when the training labels hold only one class.
	ErrSingleClass = errors.New("training labels contain a single class")
	// ErrDimensionMismatch is returned when rows, labels or weights disagree in size.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNotFitted is returned when predicting with a model that was never fitted.
	ErrNotFitted = errors.New("model not fitted")
	// ErrUnknownLabel is returned when transforming a value the encoder never saw.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrInvalidLabel is returned for targets other than 0 and 1.
	ErrInvalidLabel = errors.New("labels must be 0 or 1")
	// ErrInvalidFraction is returned for test fractions outside (0, 1).
	ErrInvalidFraction = errors.New("test fraction must be in (0, 1)")
	// ErrUnknownTarget is returned for unsupported target names.
	ErrUnknownTarget = errors.New("unknown target")
)
