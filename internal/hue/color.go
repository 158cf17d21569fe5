package hue

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ElementSize is the size of a Color in its ring buffer element encoding.
const ElementSize = 6

// D65 white point chromaticity, used for greys.
const (
	WhiteX = 0.31271
	WhiteY = 0.32902
)

// Color is a CIE xy chromaticity plus brightness in 16-bit fixed point.
//
// X and Y map [0, 1] onto [0, 65535]. Brightness 65535 is full output.
type Color struct {
	X          uint16
	Y          uint16
	Brightness uint16
}

// Fallback sequence colours.
var (
	Red         = Color{X: 42597, Y: 19660, Brightness: 0xFFFF}
	Green       = Color{X: 6553, Y: 45874, Brightness: 0xFFFF}
	PurpleBlue  = Color{X: 9830, Y: 4915, Brightness: 0xFFFF}
	Orange      = Color{X: 35388, Y: 28180, Brightness: 0xFFFF}
	White       = FromXYFloat(WhiteX, WhiteY, 1)
	FallbackSet = []Color{Red, Green, PurpleBlue, Orange}
)

// FromXYFloat converts floating point chromaticity and brightness in [0, 1]
// to fixed point. Values outside the range are clamped.
func FromXYFloat(x, y, brightness float64) Color {
	return Color{
		X:          toFixed(x),
		Y:          toFixed(y),
		Brightness: toFixed(brightness),
	}
}

// FromRGB converts an 8-bit sRGB colour.
//
// Chromaticity comes from the sRGB to CIE XYZ transform and brightness from
// the luminance Y. Greys, including black, map to the D65 white point with
// brightness r/255 so they stay neutral on the light.
func FromRGB(r, g, b uint8) Color {
	if r == g && g == b {
		return FromXYFloat(WhiteX, WhiteY, float64(r)/255)
	}
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	x, y, lum := c.Xyy()
	return FromXYFloat(x, y, lum)
}

// FromHSV converts hue (degrees), saturation and value (both [0, 1]).
//
// Unlike FromRGB the brightness is the HSV value, not the luminance, so a
// rotating hue at constant value keeps a constant output level.
func FromHSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if s <= 0 {
		return FromXYFloat(WhiteX, WhiteY, v)
	}
	x, y, _ := colorful.Hsv(h, clamp01(s), 1).Clamped().Xyy()
	return FromXYFloat(x, y, v)
}

// XYFloat returns the colour as floating point chromaticity and brightness.
func (c Color) XYFloat() (x, y, brightness float64) {
	return fromFixed(c.X), fromFixed(c.Y), fromFixed(c.Brightness)
}

// WithBrightness returns c at brightness b in [0, 1].
func (c Color) WithBrightness(b float64) Color {
	c.Brightness = toFixed(b)
	return c
}

// Lerp interpolates linearly between a and b in xy space. t is clamped to
// [0, 1]; t=0 yields a and t=1 yields b.
func Lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	mix := func(p, q uint16) uint16 {
		return uint16(math.Round(float64(p) + (float64(q)-float64(p))*t))
	}
	return Color{
		X:          mix(a.X, b.X),
		Y:          mix(a.Y, b.Y),
		Brightness: mix(a.Brightness, b.Brightness),
	}
}

// AppendElement appends the 6-byte element encoding of c to dst.
// The element encoding is little-endian X, Y, Brightness.
func (c Color) AppendElement(dst []byte) []byte {
	return append(dst,
		byte(c.X), byte(c.X>>8),
		byte(c.Y), byte(c.Y>>8),
		byte(c.Brightness), byte(c.Brightness>>8),
	)
}

// ParseElement decodes a 6-byte element produced by AppendElement.
func ParseElement(p []byte) (Color, error) {
	if len(p) != ElementSize {
		return Color{}, fmt.Errorf("%w: %d bytes", ErrInvalidElement, len(p))
	}
	return Color{
		X:          uint16(p[0]) | uint16(p[1])<<8,
		Y:          uint16(p[2]) | uint16(p[3])<<8,
		Brightness: uint16(p[4]) | uint16(p[5])<<8,
	}, nil
}

// String formats the colour as floating point xy and brightness.
func (c Color) String() string {
	x, y, b := c.XYFloat()
	return fmt.Sprintf("xy(%.4f, %.4f) bri %.3f", x, y, b)
}

func toFixed(v float64) uint16 {
	return uint16(math.Round(clamp01(v) * math.MaxUint16))
}

func fromFixed(v uint16) float64 {
	return float64(v) / math.MaxUint16
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
