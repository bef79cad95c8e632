package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfansharif/lightbox/internal/frame"
	"github.com/irfansharif/lightbox/internal/geom"
)

const eps = 1e-9

// harness wires a controller to a manually advanced frame loop and records
// every emitted change.
type harness struct {
	t       *testing.T
	now     time.Time
	loop    *frame.Loop
	changes []Change
	c       *Controller
}

func newHarness(t *testing.T, content geom.Size) *harness {
	h := &harness{t: t, now: time.Unix(1700000000, 0)}
	h.loop = frame.NewLoop(func() time.Time { return h.now })
	h.c = NewController(DefaultConfig(), h.loop, ObserverFunc(func(c Change) {
		h.changes = append(h.changes, c)
	}))
	h.c.Present(34)
	h.c.SetContentSize(content)
	h.changes = nil
	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
	h.loop.Poll()
}

func (h *harness) session() Session {
	s, ok := h.c.Session()
	require.True(h.t, ok, "expected a live session")
	return s
}

func (h *harness) last() Change {
	require.NotEmpty(h.t, h.changes)
	return h.changes[len(h.changes)-1]
}

func TestPresent(t *testing.T) {
	loop := frame.NewLoop(nil)
	var changes []Change
	c := NewController(DefaultConfig(), loop, ObserverFunc(func(ch Change) {
		changes = append(changes, ch)
	}))

	c.Present(34)
	require.Len(t, changes, 2)

	first := changes[0]
	assert.True(t, first.Session.Presented)
	assert.True(t, first.Animation.Disabled, "presented flag flips without animation")
	assert.False(t, first.Session.BackdropShown)
	assert.Equal(t, -34.0, first.Session.VerticalShift)

	second := changes[1]
	assert.False(t, second.Animation.Disabled)
	assert.Equal(t, 200*time.Millisecond, second.Animation.Duration)
	assert.True(t, second.Session.BackdropShown)
	assert.Equal(t, 34.0, second.Session.VerticalShift)
	assert.Equal(t, 1.0, second.Session.BackdropAlpha())
	assert.True(t, second.Session.Live.IsIdentity())
	assert.Equal(t, StateDefault, c.State())
}

func TestTapRoundTrip(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))

	h.c.Tap(geom.MakePoint(100, 200))
	require.Equal(t, StateZoomed, h.c.State())
	s := h.session()
	assert.InDelta(t, 3, s.Committed.ScaleX(), eps)
	assert.InDelta(t, 3, s.Live.ScaleY(), eps)
	p := s.Live.MulPoint(geom.MakePoint(100, 200))
	assert.InDelta(t, 100, p.X, eps)
	assert.InDelta(t, 200, p.Y, eps)

	h.c.Tap(geom.MakePoint(5, 5))
	require.Equal(t, StateDefault, h.c.State())
	s = h.session()
	assert.Equal(t, geom.Identity(), s.Committed)
	assert.Equal(t, geom.Identity(), s.Live)
}

func TestPinch(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))

	h.c.PinchChanged(PinchSample{Magnification: 2, Anchor: geom.MakePoint(0.5, 0.5)})
	s := h.session()
	assert.InDelta(t, 2, s.Live.ScaleX(), eps)
	assert.True(t, s.Committed.IsIdentity(), "pinch updates leave the committed transform alone")
	center := s.Live.MulPoint(geom.MakePoint(150, 300))
	assert.InDelta(t, 150, center.X, eps)
	assert.InDelta(t, 300, center.Y, eps)

	h.c.PinchEnded()
	require.Equal(t, StateZoomed, h.c.State())
	s = h.session()
	assert.Equal(t, s.Committed, s.Live)
	assert.InDelta(t, -150, s.Committed.TX(), eps)
	assert.InDelta(t, -300, s.Committed.TY(), eps)

	// A second pinch composes on top of the first.
	h.c.PinchChanged(PinchSample{Magnification: 1.5, Anchor: geom.MakePoint(0, 0)})
	assert.InDelta(t, 3, h.session().Live.ScaleX(), eps)
}

func TestPinchOutSnapsBack(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))

	h.c.PinchChanged(PinchSample{Magnification: 0.5, Anchor: geom.MakePoint(0.3, 0.7)})
	assert.InDelta(t, 0.5, h.session().Live.ScaleX(), eps)

	h.c.PinchEnded()
	assert.Equal(t, StateDefault, h.c.State())
	assert.Equal(t, geom.Identity(), h.session().Live)
}

func TestPinchMalformedMagnification(t *testing.T) {
	for _, m := range []float64{0, -2} {
		h := newHarness(t, geom.MakeSize(300, 600))
		h.c.PinchChanged(PinchSample{Magnification: m, Anchor: geom.MakePoint(0.5, 0.5)})

		live := h.session().Live
		assert.InDelta(t, DefaultConfig().MinMagnification, live.ScaleX(), eps)
		_, err := live.Inv()
		assert.NoError(t, err, "transform must stay invertible")
	}
}

func TestZeroContentSizeHolds(t *testing.T) {
	h := newHarness(t, geom.Size{})

	h.c.DragChanged(DragSample{Translation: geom.MakePoint(0, -300)})
	h.c.PinchChanged(PinchSample{Magnification: 2, Anchor: geom.MakePoint(0.5, 0.5)})
	assert.Empty(t, h.changes)
	assert.True(t, h.session().Live.IsIdentity())

	h.c.DragEnded(DragSample{Translation: geom.MakePoint(0, -300)})
	assert.NotEqual(t, StateDismissing, h.c.State())
	assert.True(t, h.session().Live.IsIdentity())
}

func TestDragAtDefaultShrinksAndFades(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))

	h.c.DragChanged(DragSample{Translation: geom.MakePoint(0, -200)})
	s := h.session()

	// Damped dy = -160; offset = 160/600.
	offset := 160.0 / 600.0
	wantScale := 1 - 0.7*offset
	assert.InDelta(t, 0.8133, wantScale, 1e-4)
	assert.InDelta(t, wantScale, s.Live.ScaleX(), eps)
	assert.InDelta(t, wantScale, s.Live.ScaleY(), eps)
	assert.InDelta(t, -160, s.Live.TY(), eps)
	assert.InDelta(t, 0, s.Live.TX(), eps)
	assert.InDelta(t, 1-offset, s.BackgroundFade, eps)
	assert.InDelta(t, 0.7333, s.BackgroundFade, 1e-4)
	assert.True(t, s.Committed.IsIdentity())
}

func TestDragAtDefaultScaleFloor(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))

	h.c.DragChanged(DragSample{Translation: geom.MakePoint(0, 2000)})
	s := h.session()
	assert.InDelta(t, 0.8, s.Live.ScaleX(), eps)
	assert.Equal(t, 0.0, s.BackgroundFade)
}

func TestDragWhileZoomedPans(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))
	h.c.Tap(geom.MakePoint(150, 300))
	committed := h.session().Committed
	fade := h.session().BackgroundFade

	h.c.DragChanged(DragSample{Translation: geom.MakePoint(50, 0)})
	s := h.session()
	assert.InDelta(t, committed.TX()+50.0/3.0, s.Live.TX(), eps)
	assert.InDelta(t, committed.TY(), s.Live.TY(), eps)
	assert.InDelta(t, 3, s.Live.ScaleX(), eps)
	assert.Equal(t, fade, s.BackgroundFade)

	// Panning far past the edge is allowed until release.
	h.c.DragChanged(DragSample{Translation: geom.MakePoint(3000, 3000)})
	assert.Greater(t, h.session().Live.TX(), 0.0)

	h.c.DragEnded(DragSample{Translation: geom.MakePoint(3000, 3000)})
	s = h.session()
	assert.Equal(t, StateZoomed, h.c.State())
	assert.InDelta(t, 0, s.Committed.TX(), eps)
	assert.InDelta(t, 0, s.Committed.TY(), eps)
	assert.Equal(t, s.Committed, s.Live)

	h.c.DragChanged(DragSample{Translation: geom.MakePoint(-30000, -30000)})
	h.c.DragEnded(DragSample{Translation: geom.MakePoint(-30000, -30000)})
	s = h.session()
	assert.InDelta(t, -600, s.Committed.TX(), eps)
	assert.InDelta(t, -1200, s.Committed.TY(), eps)
}

func TestDragEndThreshold(t *testing.T) {
	tests := []struct {
		name    string
		dy      float64 // release offset is the undamped |dy|/1000
		dismiss bool
	}{
		{name: "short swipe springs back", dy: 100, dismiss: false},
		{name: "exactly at threshold", dy: 300, dismiss: false},
		{name: "just past threshold", dy: 310, dismiss: true},
		{name: "past threshold undamped, short of it damped", dy: 350, dismiss: true},
		{name: "upward swipe past threshold", dy: -310, dismiss: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, geom.MakeSize(500, 1000))
			sample := DragSample{Translation: geom.MakePoint(10, tt.dy)}
			h.c.DragChanged(sample)
			h.c.DragEnded(sample)

			if tt.dismiss {
				assert.Equal(t, StateDismissing, h.c.State())
				return
			}
			assert.Equal(t, StateDefault, h.c.State())
			s := h.session()
			assert.Equal(t, geom.Identity(), s.Live)
			assert.Equal(t, 1.0, s.BackgroundFade)
		})
	}
}

func TestDismissSequence(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))

	h.c.Dismiss()
	require.Equal(t, StateDismissing, h.c.State())

	// (a) the vertical shift animates back immediately.
	require.Len(t, h.changes, 1)
	shift := h.last()
	assert.Equal(t, -34.0, shift.Session.VerticalShift)
	assert.Equal(t, 200*time.Millisecond, shift.Animation.Duration)
	assert.True(t, shift.Session.BackdropShown)

	h.advance(199 * time.Millisecond)
	require.Len(t, h.changes, 1, "fade waits for the shift to complete")

	// (b) the backdrop fades.
	h.advance(time.Millisecond)
	require.Len(t, h.changes, 2)
	fade := h.last()
	assert.False(t, fade.Session.BackdropShown)
	assert.Equal(t, 0.0, fade.Session.BackdropAlpha())
	assert.Equal(t, 100*time.Millisecond, fade.Animation.Duration)
	assert.True(t, fade.Session.Presented)

	h.advance(99 * time.Millisecond)
	require.Len(t, h.changes, 2)

	// (c) the presented flag flips without animation and the session goes.
	h.advance(time.Millisecond)
	require.Len(t, h.changes, 3)
	hide := h.last()
	assert.False(t, hide.Session.Presented)
	assert.True(t, hide.Animation.Disabled)

	_, ok := h.c.Session()
	assert.False(t, ok)
	assert.Equal(t, StateDefault, h.c.State())
	assert.Equal(t, 0, h.loop.Pending())
}

func TestInputIgnoredWhileDismissing(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))
	h.c.Dismiss()
	n := len(h.changes)

	h.c.Tap(geom.MakePoint(10, 10))
	h.c.DragChanged(DragSample{Translation: geom.MakePoint(0, 50)})
	h.c.DragEnded(DragSample{Translation: geom.MakePoint(0, 50)})
	h.c.PinchChanged(PinchSample{Magnification: 2})
	h.c.PinchEnded()
	h.c.Dismiss()

	assert.Len(t, h.changes, n)
	assert.Equal(t, StateDismissing, h.c.State())
	assert.True(t, h.session().Live.IsIdentity())
}

func TestRepresentDuringDismiss(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))
	h.c.Dismiss()
	h.advance(250 * time.Millisecond) // past the shift, mid fade

	h.c.Present(34)
	h.c.SetContentSize(geom.MakeSize(300, 600))
	n := len(h.changes)

	h.advance(time.Second)
	assert.Len(t, h.changes, n, "stale stages must not touch the new session")
	s := h.session()
	assert.True(t, s.Presented)
	assert.True(t, s.BackdropShown)
	assert.Equal(t, StateDefault, h.c.State())
	assert.Equal(t, 0, h.loop.Pending())
}

func TestTeardownMidSequence(t *testing.T) {
	h := newHarness(t, geom.MakeSize(300, 600))
	h.c.Dismiss()
	h.c.Teardown()
	h.c.Teardown()
	n := len(h.changes)

	h.advance(time.Second)
	assert.Len(t, h.changes, n)
	_, ok := h.c.Session()
	assert.False(t, ok)

	// Gestures without a session are no-ops.
	h.c.Tap(geom.MakePoint(1, 1))
	h.c.Dismiss()
	assert.Len(t, h.changes, n)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "default", StateDefault.String())
	assert.Equal(t, "zoomed", StateZoomed.String())
	assert.Equal(t, "dismissing", StateDismissing.String())
	assert.Equal(t, "unknown", State(42).String())
}
