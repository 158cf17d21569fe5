package hue

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Frame layout constants.
const (
	// HeaderSize is the size of the frame header in bytes.
	HeaderSize = 16

	// RecordSize is the size of one light record in bytes.
	RecordSize = 9

	// MaxLights is the maximum number of light records in one frame.
	MaxLights = 10

	// MaxFrameSize is the size of a frame carrying MaxLights records.
	MaxFrameSize = HeaderSize + MaxLights*RecordSize
)

// Header field values.
const (
	// VersionMajor is the protocol major version.
	VersionMajor byte = 0x01

	// VersionMinor is the protocol minor version.
	VersionMinor byte = 0x00

	// ColorSpaceRGB selects 16-bit RGB records. Not produced by the Encoder.
	ColorSpaceRGB byte = 0x00

	// ColorSpaceXY selects CIE xy + brightness records.
	ColorSpaceXY byte = 0x01

	// DeviceTypeLight is the device type of a light record.
	DeviceTypeLight byte = 0x00
)

// header offsets
const (
	offsetVersionMajor = 9
	offsetVersionMinor = 10
	offsetSequence     = 11
	offsetColorSpace   = 14
)

// Magic is the protocol literal every frame starts with.
var Magic = [9]byte{'H', 'u', 'e', 'S', 't', 'r', 'e', 'a', 'm'}

// LightColor is one light record.
type LightColor struct {
	// ID is the light id within the entertainment area.
	ID uint16

	// Color is the chromaticity and brightness to show.
	Color Color
}

// ColorCommand is the content of one frame.
type ColorCommand struct {
	// Sequence is the frame sequence number. Set by Encoder.Encode; filled
	// in by Decode.
	Sequence uint8

	// Lights holds at most MaxLights records. Extra entries are dropped.
	Lights []LightColor
}

// Uniform builds a command that shows the same colour on every light.
func Uniform(ids []uint16, c Color) ColorCommand {
	lights := make([]LightColor, len(ids))
	for i, id := range ids {
		lights[i] = LightColor{ID: id, Color: c}
	}
	return ColorCommand{Lights: lights}
}

// Encoder builds frames and owns the sequence counter.
//
// Thread Safety:
//   - Encode may be called from multiple goroutines; each call takes the
//     next sequence number.
type Encoder struct {
	sequence atomic.Uint32
}

// NewEncoder creates an encoder whose first frame has sequence number 0.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode builds a frame for cmd, ignoring cmd.Sequence.
//
// Lights beyond MaxLights are dropped.
//
// Parameters:
//   - cmd: Lights to encode
//
// Returns:
//   - []byte: Complete frame (HeaderSize + n*RecordSize bytes)
func (e *Encoder) Encode(cmd ColorCommand) []byte {
	return e.AppendFrame(nil, cmd)
}

// AppendFrame appends a frame for cmd to dst and returns the extended slice.
// It avoids an allocation per frame when dst has enough capacity.
func (e *Encoder) AppendFrame(dst []byte, cmd ColorCommand) []byte {
	seq := uint8(e.sequence.Add(1) - 1)
	return appendFrame(dst, seq, cmd.Lights)
}

// Sequence returns the sequence number the next frame will carry.
func (e *Encoder) Sequence() uint8 {
	return uint8(e.sequence.Load())
}

// appendFrame is the pure encoding transform.
func appendFrame(dst []byte, seq uint8, lights []LightColor) []byte {
	if len(lights) > MaxLights {
		lights = lights[:MaxLights]
	}

	var header [HeaderSize]byte
	copy(header[:], Magic[:])
	header[offsetVersionMajor] = VersionMajor
	header[offsetVersionMinor] = VersionMinor
	header[offsetSequence] = seq
	header[offsetColorSpace] = ColorSpaceXY
	dst = append(dst, header[:]...)

	for _, l := range lights {
		dst = append(dst, DeviceTypeLight)
		dst = binary.BigEndian.AppendUint16(dst, l.ID)
		dst = binary.BigEndian.AppendUint16(dst, l.Color.X)
		dst = binary.BigEndian.AppendUint16(dst, l.Color.Y)
		dst = binary.BigEndian.AppendUint16(dst, l.Color.Brightness)
	}
	return dst
}

// Decode parses a frame produced by Encode.
//
// Parameters:
//   - data: Raw frame bytes
//
// Returns:
//   - ColorCommand: Sequence number and light records
//   - error: ErrFrameTooShort, ErrInvalidMagic, ErrUnsupportedVersion,
//     ErrUnsupportedColorSpace, ErrInvalidLength or ErrUnsupportedDevice
func Decode(data []byte) (ColorCommand, error) {
	if len(data) < HeaderSize {
		return ColorCommand{}, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(data))
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return ColorCommand{}, ErrInvalidMagic
	}
	if data[offsetVersionMajor] != VersionMajor || data[offsetVersionMinor] != VersionMinor {
		return ColorCommand{}, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion,
			data[offsetVersionMajor], data[offsetVersionMinor])
	}
	if data[offsetColorSpace] != ColorSpaceXY {
		return ColorCommand{}, fmt.Errorf("%w: 0x%02x", ErrUnsupportedColorSpace, data[offsetColorSpace])
	}

	body := data[HeaderSize:]
	if len(body)%RecordSize != 0 || len(body)/RecordSize > MaxLights {
		return ColorCommand{}, fmt.Errorf("%w: %d record bytes", ErrInvalidLength, len(body))
	}

	cmd := ColorCommand{
		Sequence: data[offsetSequence],
		Lights:   make([]LightColor, 0, len(body)/RecordSize),
	}
	for off := 0; off < len(body); off += RecordSize {
		r := body[off : off+RecordSize]
		if r[0] != DeviceTypeLight {
			return ColorCommand{}, fmt.Errorf("%w: 0x%02x at record %d",
				ErrUnsupportedDevice, r[0], off/RecordSize)
		}
		cmd.Lights = append(cmd.Lights, LightColor{
			ID: binary.BigEndian.Uint16(r[1:3]),
			Color: Color{
				X:          binary.BigEndian.Uint16(r[3:5]),
				Y:          binary.BigEndian.Uint16(r[5:7]),
				Brightness: binary.BigEndian.Uint16(r[7:9]),
			},
		})
	}
	return cmd, nil
}
