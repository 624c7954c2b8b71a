package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrUnknownStage = errors.New("unknown pipeline stage")
)
