package chart

import "errors"

var (
	// ErrRender is returned when a panel cannot be built or drawn.
	ErrRender = errors.New("render chart")
	// ErrWrite is returned when the image cannot be written.
	ErrWrite = errors.New("write chart")
)
