// Package palette provides the viewer's colours: the page behind the inline
// thumbnail, the fullscreen backdrop, and the close glyph, with blending for
// the backdrop fade.
package palette

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Scheme holds the colours used by the renderer.
type Scheme struct {
	Page     colorful.Color // behind the thumbnail
	Backdrop colorful.Color // fullscreen backdrop at full opacity
	Glyph    colorful.Color // close button
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// hsb converts from 0-100 hue/saturation/brightness ranges.
func hsb(h, s, b float64) colorful.Color {
	return colorful.Hsv(h*3.6, clamp(s/100.0, 0, 1), clamp(b/100.0, 0, 1))
}

// Default returns the stock scheme: a near-white page, a black backdrop and a
// white glyph.
func Default() Scheme {
	return Scheme{
		Page:     hsb(0, 0, 97),
		Backdrop: hsb(0, 0, 0),
		Glyph:    hsb(0, 0, 100),
	}
}

// BackdropAt returns what the backdrop looks like drawn over the page at the
// given opacity. Blending happens in linear RGB so mid-fade greys don't look
// muddy.
func (s Scheme) BackdropAt(alpha float64) color.RGBA {
	c := s.Page.BlendLinearRgb(s.Backdrop, clamp(alpha, 0, 1)).Clamped()
	return toRGBA(c, 255)
}

// GlyphAt returns the glyph colour with the given opacity.
func (s Scheme) GlyphAt(alpha float64) color.RGBA {
	return toRGBA(s.Glyph, uint8(clamp(alpha, 0, 1)*255+0.5))
}

// PageRGBA returns the page colour.
func (s Scheme) PageRGBA() color.RGBA {
	return toRGBA(s.Page, 255)
}

func toRGBA(c colorful.Color, a uint8) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Floats returns c as normalized RGBA components.
func Floats(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255.0,
		float32(c.G) / 255.0,
		float32(c.B) / 255.0,
		float32(c.A) / 255.0,
	}
}
