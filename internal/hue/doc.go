// Package hue implements the entertainment streaming frame format used by
// Philips Hue bridges.
//
// A frame is a fixed 16-byte header followed by one 9-byte record per light:
//
//	Byte 0-8:   "HueStream" protocol magic
//	Byte 9:     major version (0x01)
//	Byte 10:    minor version (0x00)
//	Byte 11:    sequence number (wraps at 256, advisory only)
//	Byte 12-13: reserved, zero
//	Byte 14:    colour space (0x00 RGB, 0x01 CIE xy + brightness)
//	Byte 15:    reserved, zero
//
//	Per light (9 bytes):
//	Byte 0:     device type (0x00 light)
//	Byte 1-2:   light id (big-endian)
//	Byte 3-4:   x chromaticity (big-endian)
//	Byte 5-6:   y chromaticity (big-endian)
//	Byte 7-8:   brightness (big-endian)
//
// Frames always use the CIE xy colour space. At most MaxLights records are
// encoded; additional lights are silently dropped since the bridge rejects
// larger frames.
//
// # Colours
//
// Color carries chromaticity and brightness as 16-bit fixed point values,
// the representation the wire format uses. FromRGB, FromHSV and FromXYFloat
// convert from the usual floating point forms via go-colorful.
//
// Colors also have a fixed 6-byte element encoding (AppendElement /
// ParseElement) used to pass them through a ring buffer between producer and
// consumer goroutines.
//
// # Sequence Numbers
//
// The Encoder owns its sequence counter. Two encoders never interfere with
// each other. The bridge does not require ordering, so the counter is simply
// incremented on each Encode call.
//
// # Usage
//
//	enc := hue.NewEncoder()
//	frame := enc.Encode(hue.ColorCommand{
//	    Lights: []hue.LightColor{
//	        {ID: 1, Color: hue.FromRGB(255, 0, 0)},
//	    },
//	})
//	err := channel.Send(frame)
package hue
