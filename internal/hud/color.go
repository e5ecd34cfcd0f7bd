package hud

import (
	"fmt"
	"math"
)

// Color is a packed 0xAARRGGBB value.
type Color uint32

const (
	// ColorIntensity is the channel value used for red/green readouts.
	ColorIntensity = 0xF0

	// BarBlendCutoff is the |delta diff| below which the bar fades to white.
	BarBlendCutoff = 0.02

	colorAlpha Color = 0xE0000000

	// ShadowColor is drawn beneath every text line.
	ShadowColor Color = 0xC0585858
	// BackgroundColor tints the background box behind the text block.
	BackgroundColor Color = 0xFF505050
)

// RGBA packs channels into a Color.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// A returns the alpha channel.
func (c Color) A() uint8 { return uint8(c >> 24) }

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }

// Hex formats the RGB part as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// TextColor picks green for a negative delta and red otherwise.
func TextColor(delta float64) Color {
	if delta < 0 {
		return colorAlpha | ColorIntensity<<8
	}
	return colorAlpha | ColorIntensity<<16
}

// BarColor colors the bar marker using the default blend cutoff. Only the
// sign and size of deltaDiff matter.
func BarColor(delta, deltaDiff float64) Color {
	return BarColorCutoff(deltaDiff, BarBlendCutoff)
}

// BarColorCutoff is red when deltaDiff is positive and green otherwise. Within
// cutoff of zero both other channels are raised towards the dominant one, so
// a zero diff renders white.
func BarColorCutoff(deltaDiff, cutoff float64) Color {
	gaining := deltaDiff > 0
	c := colorAlpha
	if gaining {
		c |= ColorIntensity << 16
	} else {
		c |= ColorIntensity << 8
	}

	abs := math.Abs(deltaDiff)
	if cutoff <= 0 || abs > cutoff {
		return c
	}
	v := Color(int(ColorIntensity * (1 / cutoff) * (cutoff - abs)))
	if gaining {
		c |= v<<8 + v
	} else {
		c |= v<<16 + v
	}
	return c
}
