// Package render draws the viewer.
//
// It takes a Scene (what is visible, where, and how opaque) and:
// 1. Maps each quad's content-local corners through its transform into window
// coordinates.
// 2. Triangulates quads and the close glyph, packing the vertices into the
// memory controller's slots.
// 3. Renders the slots using OpenGL, texturing the image quads.
package render

import (
	"fmt"
	"image/color"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/irfansharif/lightbox/internal/geom"
	"github.com/irfansharif/lightbox/internal/media"
	"github.com/irfansharif/lightbox/internal/memory"
	"github.com/irfansharif/lightbox/internal/palette"
)

// glyphThickness is the half-width of each stroke of the close glyph, as a
// fraction of its box.
const glyphThickness = 0.09

// Quad is a textured image drawn in window coordinates as
// Origin + Offset + Transform(local), for local points in [0,W]x[0,H].
type Quad struct {
	Box       geom.Box    // untransformed placement in the window
	Transform geom.Affine // content-local transform, anchored at the box's top-left
	Offset    geom.Point  // extra translation applied after the transform
	Alpha     float64
}

// Glyph is the close button.
type Glyph struct {
	Box   geom.Box
	Color color.RGBA
}

// Scene is everything visible in one frame. Nil members are not drawn.
type Scene struct {
	Background color.RGBA
	Thumbnail  *Quad
	Image      *Quad
	Glyph      *Glyph
}

// Stats tracks rendering performance metrics.
type Stats struct {
	LastPrepareTimeMs float64 // time spent in last Prepare() call in milliseconds
	LastDrawTimeUs    float64 // time spent in last Draw() call in microseconds
}

type Renderer struct {
	w, h       int
	background color.RGBA

	memController *memory.MemoryController
	shaderManager *ShaderManager
	texture       *Texture
	stats         Stats
}

// NewRenderer compiles the shaders. A current GL context is required.
func NewRenderer(memController *memory.MemoryController) (*Renderer, error) {
	shaderManager, err := NewShaderManager()
	if err != nil {
		return nil, err
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return &Renderer{
		shaderManager: shaderManager,
		memController: memController,
	}, nil
}

// SetViewport records the framebuffer size.
func (r *Renderer) SetViewport(w, h int) {
	r.w, r.h = w, h
}

// SetImage replaces the texture used for image quads.
func (r *Renderer) SetImage(im *media.Image) error {
	tex, err := NewTexture(im)
	if err != nil {
		return err
	}
	if r.texture != nil {
		r.texture.Delete()
	}
	r.texture = tex
	return nil
}

// Prepare generates the scene's geometry and hands it to the memory
// controller.
func (r *Renderer) Prepare(scene Scene) error {
	startTime := time.Now()
	r.background = scene.Background

	slots := [memory.NumSlots]struct {
		quad  *Quad
		glyph *Glyph
	}{}
	slots[memory.SlotThumbnail].quad = scene.Thumbnail
	slots[memory.SlotImage].quad = scene.Image
	slots[memory.SlotGlyph].glyph = scene.Glyph

	for id, s := range slots {
		var vertices []float32
		var err error
		switch {
		case s.quad != nil:
			vertices, err = quadVertices(*s.quad)
		case s.glyph != nil:
			vertices, err = glyphVertices(*s.glyph)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", memory.SlotID(id), err)
		}
		if err := r.memController.EnsureSlot(memory.SlotID(id), vertices); err != nil {
			return err
		}
	}

	r.stats.LastPrepareTimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0
	return nil
}

// Draw renders the last prepared scene.
func (r *Renderer) Draw() error {
	startTime := time.Now()

	bg := palette.Floats(r.background)
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.w <= 0 || r.h <= 0 {
		return nil // minimized
	}

	r.shaderManager.SetTransform(affineToMatrix4(screenToNDC(r.w, r.h)))
	err := r.memController.Draw(func(id memory.SlotID) {
		textured := id != memory.SlotGlyph && r.texture != nil
		if textured {
			r.texture.Bind()
		}
		r.shaderManager.SetTextured(textured)
	})
	if err != nil {
		return fmt.Errorf("memory controller draw failed: %w", err)
	}

	r.stats.LastDrawTimeUs = float64(time.Since(startTime).Microseconds())
	return nil
}

// Stats returns the current performance statistics
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Cleanup releases GL resources owned by the renderer.
func (r *Renderer) Cleanup() {
	if r.texture != nil {
		r.texture.Delete()
	}
	r.shaderManager.Cleanup()
}

// quadVertices maps a quad's corners into window coordinates and triangulates
// them, carrying texture coordinates along.
func quadVertices(q Quad) ([]float32, error) {
	local := [4]geom.Point{
		{X: 0, Y: 0},
		{X: q.Box.W, Y: 0},
		{X: q.Box.W, Y: q.Box.H},
		{X: 0, Y: q.Box.H},
	}
	uv := [4]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	origin := q.Box.Origin().Add(q.Offset)
	corners := make([]geom.Point, len(local))
	for i, p := range local {
		corners[i] = q.Transform.MulPoint(p).Add(origin)
	}

	triangles, err := earClip(corners)
	if err != nil {
		return nil, err
	}
	tint := [4]float32{1, 1, 1, float32(q.Alpha)}
	vertices := make([]float32, 0, len(triangles)*3*memory.FloatsPerVertex)
	for _, tri := range triangles {
		for _, idx := range tri {
			vertices = appendVertex(vertices, corners[idx], uv[idx], tint)
		}
	}
	return vertices, nil
}

// glyphOutline is an "x" mark in the unit square, traced as one simple
// polygon.
func glyphOutline() []geom.Point {
	t := glyphThickness
	return []geom.Point{
		{X: t, Y: 0}, {X: 0.5, Y: 0.5 - t}, {X: 1 - t, Y: 0},
		{X: 1, Y: t}, {X: 0.5 + t, Y: 0.5}, {X: 1, Y: 1 - t},
		{X: 1 - t, Y: 1}, {X: 0.5, Y: 0.5 + t}, {X: t, Y: 1},
		{X: 0, Y: 1 - t}, {X: 0.5 - t, Y: 0.5}, {X: 0, Y: t},
	}
}

func glyphVertices(g Glyph) ([]float32, error) {
	place := geom.Translate(g.Box.X, g.Box.Y).Mul(geom.Scale(g.Box.W, g.Box.H))
	outline := glyphOutline()
	for i, p := range outline {
		outline[i] = place.MulPoint(p)
	}

	triangles, err := earClip(outline)
	if err != nil {
		return nil, err
	}
	col := palette.Floats(g.Color)
	vertices := make([]float32, 0, len(triangles)*3*memory.FloatsPerVertex)
	for _, tri := range triangles {
		for _, idx := range tri {
			vertices = appendVertex(vertices, outline[idx], geom.Point{}, col)
		}
	}
	return vertices, nil
}

func appendVertex(vertices []float32, p, uv geom.Point, col [4]float32) []float32 {
	return append(vertices,
		float32(p.X), float32(p.Y),     // position
		float32(uv.X), float32(uv.Y),   // texture coordinate
		col[0], col[1], col[2], col[3], // color
	)
}

// screenToNDC converts window pixel coordinates (y down) to OpenGL NDC.
func screenToNDC(w, h int) geom.Affine {
	return geom.MakeAffine(
		2.0/float64(w), 0, -1,
		0, -2.0/float64(h), 1,
	)
}

// affineToMatrix4 converts an affine transform to OpenGL 4x4 matrix format.
func affineToMatrix4(transform geom.Affine) [16]float32 {
	return [16]float32{
		float32(transform.A), float32(transform.D), 0, 0,
		float32(transform.B), float32(transform.E), 0, 0,
		0, 0, 1, 0,
		float32(transform.C), float32(transform.F), 0, 1,
	}
}
