package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/lightbox/internal/config"
	"github.com/irfansharif/lightbox/internal/frame"
	"github.com/irfansharif/lightbox/internal/geom"
	"github.com/irfansharif/lightbox/internal/palette"
	"github.com/irfansharif/lightbox/internal/viewer"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock               { return &fakeClock{t: time.Unix(1700000000, 0)} }
func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func session(live geom.Affine, shown bool, fade, shift float64) viewer.Session {
	return viewer.Session{
		Committed:      live,
		Live:           live,
		BackgroundFade: fade,
		BackdropShown:  shown,
		VerticalShift:  shift,
		Presented:      true,
	}
}

func TestDisplayDisabledSnaps(t *testing.T) {
	clock := newFakeClock()
	d := NewDisplay(clock.now)
	assert.False(t, d.At(clock.now()).Presented)

	d.Observe(viewer.Change{
		Session:   session(geom.Identity(), false, 1, -34),
		Animation: viewer.Animation{Disabled: true},
	})
	f := d.At(clock.now())
	assert.True(t, f.Presented)
	assert.Equal(t, -34.0, f.VerticalShift)
	assert.Equal(t, 0.0, f.BackdropAlpha)
	assert.False(t, d.Animating(clock.now()))
}

func TestDisplayTweens(t *testing.T) {
	clock := newFakeClock()
	d := NewDisplay(clock.now)
	d.Observe(viewer.Change{
		Session:   session(geom.Identity(), false, 1, -34),
		Animation: viewer.Animation{Disabled: true},
	})
	d.Observe(viewer.Change{
		Session:   session(geom.Identity(), true, 1, 34),
		Animation: viewer.Animation{Duration: 200 * time.Millisecond},
	})

	assert.True(t, d.Animating(clock.now()))
	clock.advance(100 * time.Millisecond)
	mid := d.At(clock.now())
	assert.InDelta(t, 0.5, mid.BackdropAlpha, 1e-9) // smoothstep(0.5) = 0.5
	assert.InDelta(t, 0, mid.VerticalShift, 1e-9)

	clock.advance(100 * time.Millisecond)
	end := d.At(clock.now())
	assert.False(t, d.Animating(clock.now()))
	assert.Equal(t, 1.0, end.BackdropAlpha)
	assert.Equal(t, 34.0, end.VerticalShift)
}

func TestDisplayRetargetsFromScreen(t *testing.T) {
	clock := newFakeClock()
	d := NewDisplay(clock.now)
	d.Observe(viewer.Change{
		Session:   session(geom.Identity(), true, 1, 0),
		Animation: viewer.Animation{Disabled: true},
	})
	zoomed := geom.AnchoredScale(3, geom.MakePoint(100, 100))
	d.Observe(viewer.Change{Session: session(zoomed, true, 1, 0)}) // default tween

	clock.advance(DefaultTween / 2)
	mid := d.At(clock.now()).Live
	assert.InDelta(t, 2, mid.A, 1e-9)

	// Retarget back to identity; the animation starts from the midpoint.
	d.Observe(viewer.Change{Session: session(geom.Identity(), true, 1, 0)})
	assert.InDelta(t, 2, d.At(clock.now()).Live.A, 1e-9)

	clock.advance(DefaultTween)
	assert.True(t, d.At(clock.now()).Live.IsIdentity())
}

// TestDismissThroughDisplay drives the controller on a frame loop, the way the
// main loop does, and checks what ends up on screen.
func TestDismissThroughDisplay(t *testing.T) {
	clock := newFakeClock()
	loop := frame.NewLoop(clock.now)
	d := NewDisplay(clock.now)
	cfg := config.Default()
	c := viewer.NewController(cfg.Gesture, loop, d)

	c.Present(34)
	clock.advance(cfg.Gesture.AppearDuration)
	loop.Poll()
	f := d.At(clock.now())
	require.True(t, f.Presented)
	assert.Equal(t, 1.0, f.BackdropAlpha)
	assert.Equal(t, 34.0, f.VerticalShift)

	c.Dismiss()
	clock.advance(cfg.Gesture.ShiftDuration)
	loop.Poll()
	f = d.At(clock.now())
	assert.True(t, f.Presented)
	assert.Equal(t, -34.0, f.VerticalShift)
	assert.Equal(t, 1.0, f.BackdropAlpha, "fade has only just started")

	clock.advance(cfg.Gesture.FadeDuration)
	loop.Poll()
	f = d.At(clock.now())
	assert.False(t, f.Presented)
	assert.Equal(t, 0.0, f.BackdropAlpha)

	_, ok := c.Session()
	assert.False(t, ok)
	assert.Zero(t, loop.Pending())
}

func TestBuildScene(t *testing.T) {
	v := testView(t)
	scheme := palette.Default()

	t.Run("inline", func(t *testing.T) {
		scene := BuildScene(v, Frame{Live: geom.Identity()}, scheme)
		assert.Equal(t, scheme.PageRGBA(), scene.Background)
		require.NotNil(t, scene.Thumbnail)
		assert.Equal(t, 1.0, scene.Thumbnail.Alpha)
		assert.Nil(t, scene.Image)
		assert.Nil(t, scene.Glyph)
	})

	t.Run("mid-fade", func(t *testing.T) {
		f := Frame{Presented: true, Live: geom.Identity(), BackdropAlpha: 0.25, VerticalShift: 10}
		scene := BuildScene(v, f, scheme)
		assert.Equal(t, scheme.BackdropAt(0.25), scene.Background)
		require.NotNil(t, scene.Thumbnail)
		assert.Equal(t, 0.75, scene.Thumbnail.Alpha)
		require.NotNil(t, scene.Image)
		assert.Equal(t, geom.MakePoint(0, -10), scene.Image.Offset)
		require.NotNil(t, scene.Glyph)
		assert.Equal(t, v.GlyphBox().Y-10, scene.Glyph.Box.Y)
	})

	t.Run("fullscreen", func(t *testing.T) {
		live := geom.AnchoredScale(3, geom.MakePoint(250, 500))
		scene := BuildScene(v, Frame{Presented: true, Live: live, BackdropAlpha: 1}, scheme)
		assert.Nil(t, scene.Thumbnail)
		require.NotNil(t, scene.Image)
		assert.Equal(t, live, scene.Image.Transform)
		assert.Equal(t, scheme.GlyphAt(1), scene.Glyph.Color)
	})
}
