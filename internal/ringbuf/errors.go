package ringbuf

import "errors"

// Domain errors for the ring buffer package.
var (
	// ErrAllocation is returned when the backing storage cannot be obtained,
	// including non-positive or overflowing sizes.
	ErrAllocation = errors.New("ringbuf: allocation failed")

	// ErrNeverWritten is returned by Read when the buffer has not been
	// written since it was created or last cleared.
	ErrNeverWritten = errors.New("ringbuf: buffer never written")
)
