package pixel

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a packed 0x00RRGGBB pixel. The top byte is always zero.
type Color uint32

const (
	RedOffset   = 16
	GreenOffset = 8
	BlueOffset  = 0

	rgbMask = 0x00FFFFFF
)

func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<RedOffset | uint32(g)<<GreenOffset | uint32(b)<<BlueOffset)
}

func channel(c Color, off uint) uint8 { return uint8((uint32(c) >> off) & 0xFF) }

func (c Color) R() uint8 { return channel(c, RedOffset) }
func (c Color) G() uint8 { return channel(c, GreenOffset) }
func (c Color) B() uint8 { return channel(c, BlueOffset) }

// Hex formats the colour as "#rrggbb".
func (c Color) Hex() string { return fmt.Sprintf("#%06x", uint32(c)&rgbMask) }

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: 0xFF}
}

// RGBA implements color.Color so a Color can be handed to image APIs directly.
func (c Color) RGBA() (r, g, b, a uint32) { return c.NRGBA().RGBA() }

// FromColor converts any image colour, dropping alpha.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB(n.R, n.G, n.B)
}

// Model converts arbitrary colours into Color.
var Model = color.ModelFunc(func(c color.Color) color.Color { return FromColor(c) })

// ParseColor accepts "#rrggbb", "rrggbb" and "0xrrggbb".
func ParseColor(s string) (Color, error) {
	switch {
	case len(s) == 8 && (s[:2] == "0x" || s[:2] == "0X"):
		s = "#" + s[2:]
	case len(s) == 6:
		s = "#" + s
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return RGB(r, g, b), nil
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func lerpChannel(a, b uint8, w float32) uint32 {
	v := float32(a) + (float32(b)-float32(a))*w + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint32(v)
}

// Lerp interpolates each channel from a (w = 0) to b (w = 1), rounding to
// the nearest integer. w outside [0,1] is clamped; NaN is treated as 0.
func Lerp(a, b Color, w float32) Color {
	if !(w > 0) {
		return a
	}
	if w >= 1 {
		return b
	}
	r := lerpChannel(a.R(), b.R(), w)
	g := lerpChannel(a.G(), b.G(), w)
	bl := lerpChannel(a.B(), b.B(), w)
	return Color(r<<RedOffset | g<<GreenOffset | bl<<BlueOffset)
}
