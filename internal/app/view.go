package app

import (
	"math"

	"github.com/irfansharif/lightbox/internal/config"
	"github.com/irfansharif/lightbox/internal/geom"
)

const (
	glyphSide   = 28.0 // close glyph edge, in pixels
	glyphMargin = 20.0 // distance from the window's left and bottom edges
)

// View is the window layout: where the inline thumbnail sits, where the
// fullscreen image is fitted, and where the close glyph goes. All boxes are in
// framebuffer pixels, y down.
type View struct {
	Width, Height  int
	ThumbnailWidth float64   // fraction of the window width
	ImageSize      geom.Size // source pixels of the displayed image
}

// NewView creates a layout for the given framebuffer size.
func NewView(width, height int, window config.Window) *View {
	return &View{
		Width:          width,
		Height:         height,
		ThumbnailWidth: window.ThumbnailWidth,
	}
}

// SetViewport updates the viewport dimensions.
func (v *View) SetViewport(width, height int) {
	v.Width = width
	v.Height = height
}

// SetImageSize records the displayed image's pixel dimensions.
func (v *View) SetImageSize(w, h int) {
	v.ImageSize = geom.MakeSize(float64(w), float64(h))
}

// Bounds is the whole window.
func (v *View) Bounds() geom.Box {
	return geom.MakeBox(0, 0, float64(v.Width), float64(v.Height))
}

// ThumbnailBox is the inline thumbnail: ThumbnailWidth of the window wide (or
// less, if that would make it taller than the same fraction of the window
// height), keeping the image's aspect ratio, centered.
func (v *View) ThumbnailBox() geom.Box {
	if v.ImageSize.Empty() || v.Width <= 0 || v.Height <= 0 {
		return geom.Box{}
	}
	maxW := v.ThumbnailWidth * float64(v.Width)
	maxH := v.ThumbnailWidth * float64(v.Height)
	sc := math.Min(maxW/v.ImageSize.W, maxH/v.ImageSize.H)
	w, h := v.ImageSize.W*sc, v.ImageSize.H*sc
	return geom.MakeBox((float64(v.Width)-w)/2, (float64(v.Height)-h)/2, w, h)
}

// ContentBox is the fullscreen image, aspect-fit into the window. Its size is
// what the gesture controller clamps against.
func (v *View) ContentBox() (geom.Box, error) {
	return geom.FitBox(geom.MakeBox(0, 0, v.ImageSize.W, v.ImageSize.H), v.Bounds())
}

// GlyphBox is the close glyph's resting box in the bottom-left corner. The
// host offsets it by the session's vertical shift.
func (v *View) GlyphBox() geom.Box {
	return geom.MakeBox(glyphMargin, float64(v.Height)-glyphMargin-glyphSide, glyphSide, glyphSide)
}

// placement maps content-local points of the untransformed fullscreen image
// into the window, given the current vertical shift.
func (v *View) placement(verticalShift float64) (geom.Affine, error) {
	box, err := v.ContentBox()
	if err != nil {
		return geom.Affine{}, err
	}
	return geom.Translate(box.X, box.Y-verticalShift), nil
}

// WindowToContent maps a window point into the fullscreen image's
// content-local coordinates. ok is false when the point falls outside the
// image, or when no image layout exists.
func (v *View) WindowToContent(p geom.Point, verticalShift float64) (local geom.Point, ok bool) {
	place, err := v.placement(verticalShift)
	if err != nil {
		return geom.Point{}, false
	}
	inv, err := place.Inv()
	if err != nil {
		return geom.Point{}, false
	}
	local = inv.MulPoint(p)
	box, _ := v.ContentBox()
	return local, geom.MakeBox(0, 0, box.W, box.H).Contains(local)
}

// ImageContains reports whether a window point lands on the fullscreen image
// as drawn under the live transform, so taps on a zoomed image register even
// outside its resting box.
func (v *View) ImageContains(p geom.Point, verticalShift float64, live geom.Affine) bool {
	place, err := v.placement(verticalShift)
	if err != nil {
		return false
	}
	inv, err := place.Mul(live).Inv()
	if err != nil {
		return false
	}
	box, _ := v.ContentBox()
	return geom.MakeBox(0, 0, box.W, box.H).Contains(inv.MulPoint(p))
}

// WindowToUnit maps a window point into unit coordinates of the fullscreen
// image, clamped to [0,1].
func (v *View) WindowToUnit(p geom.Point, verticalShift float64) geom.Point {
	box, err := v.ContentBox()
	if err != nil {
		return geom.MakePoint(0.5, 0.5)
	}
	local, _ := v.WindowToContent(p, verticalShift)
	clamp01 := func(x float64) float64 { return math.Max(0, math.Min(1, x)) }
	return geom.MakePoint(clamp01(local.X/box.W), clamp01(local.Y/box.H))
}
