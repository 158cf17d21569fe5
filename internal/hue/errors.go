package hue

import "errors"

// Frame decoding errors.
var (
	// ErrFrameTooShort indicates the frame is smaller than the header.
	ErrFrameTooShort = errors.New("hue: frame too short")

	// ErrInvalidMagic indicates the frame does not start with "HueStream".
	ErrInvalidMagic = errors.New("hue: invalid protocol magic")

	// ErrUnsupportedVersion indicates a protocol version other than 1.0.
	ErrUnsupportedVersion = errors.New("hue: unsupported protocol version")

	// ErrUnsupportedColorSpace indicates a colour space other than CIE xy.
	ErrUnsupportedColorSpace = errors.New("hue: unsupported colour space")

	// ErrInvalidLength indicates the record section is not a whole number
	// of records or holds more than MaxLights records.
	ErrInvalidLength = errors.New("hue: invalid frame length")

	// ErrUnsupportedDevice indicates a record whose device type is not a light.
	ErrUnsupportedDevice = errors.New("hue: unsupported device type")

	// ErrInvalidElement indicates a colour element of the wrong size.
	ErrInvalidElement = errors.New("hue: invalid colour element")
)
