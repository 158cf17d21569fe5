package capture

import "errors"

var (
	// ErrDeviceNotFound indicates the named capture device does not exist.
	ErrDeviceNotFound = errors.New("capture: device not found")

	// ErrInvalidFormat indicates a channel count or block size below one.
	ErrInvalidFormat = errors.New("capture: invalid sample format")
)
