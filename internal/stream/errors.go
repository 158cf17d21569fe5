package stream

import "errors"

var (
	// ErrInvalidConfig indicates a Loop configuration problem.
	ErrInvalidConfig = errors.New("stream: invalid configuration")

	// ErrAlreadyRunning indicates Run was called on a running loop.
	ErrAlreadyRunning = errors.New("stream: loop already running")
)
