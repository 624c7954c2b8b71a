package service

import "errors"

// ErrNotStarted is returned by read methods before Start has succeeded.
var ErrNotStarted = errors.New("service not started")
