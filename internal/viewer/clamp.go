package viewer

import (
	"math"

	"github.com/irfansharif/lightbox/internal/geom"
)

// Clamp keeps a finished gesture's transform inside the content box.
// Transforms zoomed out past minZoom on either axis snap back to identity.
// Otherwise the translation is limited so the scaled image never exposes
// space past its own edges: tx in [-W(sx-1), 0], ty in [-H(sy-1), 0]. With no
// known content size the transform is returned as is.
func Clamp(t geom.Affine, content geom.Size, minZoom float64) geom.Affine {
	sx, sy := t.ScaleX(), t.ScaleY()
	if sx < minZoom || sy < minZoom {
		return geom.Identity()
	}
	if content.Empty() {
		return t
	}

	maxX := content.W * (sx - 1)
	maxY := content.H * (sy - 1)
	tx := math.Min(math.Max(t.TX(), -maxX), 0)
	ty := math.Min(math.Max(t.TY(), -maxY), 0)
	return t.WithTranslation(tx, ty)
}
