// Package media decodes images for display and prepares them for texture
// upload.
package media

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp" // register decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Image is a decoded image ready for upload: tightly packed, non-premultiplied
// RGBA with its top row first.
type Image struct {
	Pixels *image.NRGBA
	Format string // decoder name, e.g. "png"
	// SourceW and SourceH are the dimensions before any downscaling.
	SourceW, SourceH int
}

// Width returns the pixel width.
func (im *Image) Width() int { return im.Pixels.Bounds().Dx() }

// Height returns the pixel height.
func (im *Image) Height() int { return im.Pixels.Bounds().Dy() }

// Load decodes the image at path, downscaling it so neither side exceeds
// maxSide.
func Load(path string, maxSide int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	im, err := Decode(f, maxSide)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return im, nil
}

// Decode reads an image from r, downscaling it so neither side exceeds
// maxSide.
func Decode(r io.Reader, maxSide int) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}

	w, h := FitWithin(b.Dx(), b.Dy(), maxSide)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}

	return &Image{
		Pixels:  dst,
		Format:  format,
		SourceW: b.Dx(),
		SourceH: b.Dy(),
	}, nil
}

// FitWithin scales (w, h) down, preserving aspect ratio, so that neither side
// exceeds maxSide. Sizes already within bounds are returned unchanged, and
// neither side is ever rounded down to zero.
func FitWithin(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
