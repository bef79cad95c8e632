package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/irfansharif/lightbox/internal/media"
)

// Texture is an uploaded 2D RGBA texture.
type Texture struct {
	id   uint32
	w, h int
}

// NewTexture uploads a decoded image.
func NewTexture(im *media.Image) (*Texture, error) {
	w, h := im.Width(), im.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cannot upload empty %dx%d texture", w, h)
	}

	t := &Texture{w: w, h: h}
	gl.GenTextures(1, &t.id)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(im.Pixels.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		t.Delete()
		return nil, fmt.Errorf("uploading %dx%d texture: GL error 0x%x", w, h, glErr)
	}
	return t, nil
}

// Bind binds the texture to unit 0.
func (t *Texture) Bind() {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

// Delete releases the texture.
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}
