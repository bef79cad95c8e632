package app

import (
	"time"

	"github.com/irfansharif/lightbox/internal/geom"
	"github.com/irfansharif/lightbox/internal/viewer"
)

// DefaultTween is used for Changes that don't name a duration. Live gesture
// updates arrive every frame, so this only smooths between samples.
const DefaultTween = 120 * time.Millisecond

// Frame is what the host draws for one presentation at one instant.
type Frame struct {
	Presented     bool
	Live          geom.Affine
	BackdropAlpha float64
	VerticalShift float64
}

func frameOf(s viewer.Session) Frame {
	return Frame{
		Presented:     s.Presented,
		Live:          s.Live,
		BackdropAlpha: s.BackdropAlpha(),
		VerticalShift: s.VerticalShift,
	}
}

// Display turns the controller's Changes into smoothly animated frames. Each
// Change retargets the animation from whatever is on screen at that moment.
type Display struct {
	now func() time.Time

	from, to Frame
	start    time.Time
	duration time.Duration
}

var _ viewer.Observer = (*Display)(nil)

// NewDisplay creates a display showing nothing presented.
func NewDisplay(now func() time.Time) *Display {
	idle := Frame{Live: geom.Identity()}
	return &Display{now: now, from: idle, to: idle}
}

// Observe implements viewer.Observer.
func (d *Display) Observe(c viewer.Change) {
	now := d.now()
	target := frameOf(c.Session)
	if c.Animation.Disabled {
		d.from, d.to = target, target
		d.start, d.duration = now, 0
		return
	}

	d.from = d.At(now)
	d.from.Presented = target.Presented
	d.to = target
	d.start = now
	d.duration = c.Animation.Duration
	if d.duration <= 0 {
		d.duration = DefaultTween
	}
}

// At returns the frame to draw at the given time.
func (d *Display) At(now time.Time) Frame {
	t := d.progress(now)
	if t >= 1 {
		return d.to
	}
	return Frame{
		Presented:     d.to.Presented,
		Live:          lerpAffine(d.from.Live, d.to.Live, t),
		BackdropAlpha: lerp(d.from.BackdropAlpha, d.to.BackdropAlpha, t),
		VerticalShift: lerp(d.from.VerticalShift, d.to.VerticalShift, t),
	}
}

// Animating reports whether the display is still moving toward its target.
func (d *Display) Animating(now time.Time) bool {
	return d.progress(now) < 1
}

// progress is the eased fraction of the current animation that has elapsed.
func (d *Display) progress(now time.Time) float64 {
	if d.duration <= 0 {
		return 1
	}
	t := float64(now.Sub(d.start)) / float64(d.duration)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return t * t * (3 - 2*t) // ease in-out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpAffine(a, b geom.Affine, t float64) geom.Affine {
	return geom.MakeAffine(
		lerp(a.A, b.A, t), lerp(a.B, b.B, t), lerp(a.C, b.C, t),
		lerp(a.D, b.D, t), lerp(a.E, b.E, t), lerp(a.F, b.F, t),
	)
}
