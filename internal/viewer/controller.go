package viewer

import (
	"context"
	"io"
	"log"
	"math"
	"os"

	"github.com/irfansharif/lightbox/internal/frame"
	"github.com/irfansharif/lightbox/internal/geom"
)

var gestureLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("LIGHTBOX_DEBUG_GESTURES") == "1" {
		gestureLogger = log.New(os.Stdout, "[gesture] ", log.Ltime|log.Lmsgprefix)
	}
}

// DragSample is the cumulative translation of a drag since it began, in
// content points.
type DragSample struct {
	Translation geom.Point
}

// PinchSample is one update of a pinch gesture.
type PinchSample struct {
	Magnification float64    // cumulative since the pinch began
	Anchor        geom.Point // unit coordinates within the content box
}

// Controller owns the session of the current presentation and turns gesture
// samples into transforms. All methods must be called from the goroutine that
// polls the Scheduler.
//
// Gesture input is ignored while no session exists and while the dismiss
// sequence is running.
type Controller struct {
	cfg       Config
	scheduler frame.Scheduler
	observer  Observer

	session    *Session
	dismissing bool
	cancel     func() // cancels the in-flight dismiss sequence, if any
}

// NewController creates a controller. The observer may be nil.
func NewController(cfg Config, scheduler frame.Scheduler, observer Observer) *Controller {
	return &Controller{
		cfg:       cfg,
		scheduler: scheduler,
		observer:  observer,
	}
}

// Session returns a copy of the current session, if one exists.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// State returns the current gesture state.
func (c *Controller) State() State {
	switch {
	case c.dismissing:
		return StateDismissing
	case c.session == nil || c.session.Committed.IsIdentity():
		return StateDefault
	default:
		return StateZoomed
	}
}

// Present starts a new presentation, discarding any previous session and
// cancelling a dismiss sequence still in flight. The presented flag flips
// without animation; the backdrop and vertical shift then animate in.
func (c *Controller) Present(bottomInset float64) {
	c.stopSequence()
	c.dismissing = false
	c.session = newSession(bottomInset)
	gestureLogger.Printf("present: inset=%.1f", bottomInset)
	c.emit(Animation{Disabled: true})

	c.session.BackdropShown = true
	c.session.VerticalShift = bottomInset
	c.emit(Animation{Duration: c.cfg.AppearDuration})
}

// SetContentSize records the displayed image's layout box.
func (c *Controller) SetContentSize(size geom.Size) {
	if c.session == nil {
		return
	}
	c.session.ContentSize = size
	gestureLogger.Printf("content size: %.1fx%.1f", size.W, size.H)
}

// Tap zooms into the tapped point (content coordinates) at default zoom, and
// resets to identity when zoomed.
func (c *Controller) Tap(location geom.Point) {
	s := c.active()
	if s == nil {
		return
	}

	next := geom.Identity()
	if c.State() == StateDefault {
		next = geom.AnchoredScale(c.cfg.TapZoomScale, location)
	}
	s.Committed, s.Live = next, next
	gestureLogger.Printf("tap at (%.1f,%.1f): %s", location.X, location.Y, c.State())
	c.emit(Animation{})
}

// PinchChanged applies an in-progress pinch on top of the committed transform.
func (c *Controller) PinchChanged(sample PinchSample) {
	s := c.active()
	if s == nil || s.ContentSize.Empty() {
		return
	}

	m := sample.Magnification
	if !(m >= c.cfg.MinMagnification) { // also catches NaN
		m = c.cfg.MinMagnification
	}
	anchor := geom.MakePoint(
		sample.Anchor.X*s.ContentSize.W,
		sample.Anchor.Y*s.ContentSize.H,
	)
	s.Live = geom.Compose(s.Committed, geom.AnchoredScale(m, anchor))
	c.emit(Animation{})
}

// PinchEnded clamps and commits the pinch.
func (c *Controller) PinchEnded() {
	s := c.active()
	if s == nil {
		return
	}
	c.commitClamped(s)
}

// DragChanged applies an in-progress drag. At default zoom a vertical swipe
// shrinks the image and fades the backdrop; when zoomed the drag pans. Pans
// are not clamped until the drag ends.
func (c *Controller) DragChanged(sample DragSample) {
	s := c.active()
	if s == nil {
		return
	}

	if c.State() == StateZoomed {
		sx, sy := s.Committed.ScaleX(), s.Committed.ScaleY()
		s.Live = s.Committed.WithTranslation(
			s.Committed.TX()+sample.Translation.X/sx,
			s.Committed.TY()+sample.Translation.Y/sy,
		)
		c.emit(Animation{})
		return
	}

	d := sample.Translation.Scale(c.cfg.DragDamping)
	offset, ok := c.verticalOffset(s, d.Y)
	if !ok {
		return // hold the current transform until layout is known
	}
	// Committed is the identity in this state, so the damped travel is
	// already in content points.
	scale := math.Max(c.cfg.DragMinScale, 1-offset*c.cfg.DragShrinkRate)
	s.Live = s.Committed.
		Mul(geom.Translate(d.X, d.Y)).
		Mul(geom.Scale(scale, scale))
	s.BackgroundFade = math.Max(0, 1-offset)
	c.emit(Animation{})
}

// DragEnded finishes a drag: a long enough vertical swipe at default zoom
// dismisses, a short one springs back, and a pan while zoomed is clamped.
func (c *Controller) DragEnded(sample DragSample) {
	s := c.active()
	if s == nil {
		return
	}

	if c.State() == StateZoomed {
		c.commitClamped(s)
		return
	}

	// The release decision uses the raw travel; damping only shapes the
	// live preview.
	offset, ok := c.verticalOffset(s, sample.Translation.Y)
	if !ok {
		s.Live = s.Committed
		c.emit(Animation{})
		return
	}
	if offset > c.cfg.DismissThreshold {
		gestureLogger.Printf("drag end: offset %.3f past threshold, dismissing", offset)
		c.Dismiss()
		return
	}

	s.Committed, s.Live = geom.Identity(), geom.Identity()
	s.BackgroundFade = 1
	c.emit(Animation{})
}

// Dismiss runs the dismiss sequence: shift the image back over ShiftDuration,
// then fade out the backdrop over FadeDuration, then flip the presented flag
// without animation and discard the session. Calls while a sequence is
// already running are ignored.
func (c *Controller) Dismiss() {
	s := c.session
	if s == nil || c.dismissing {
		return
	}
	c.dismissing = true

	// Stages re-check that their session is still current; Present and
	// Teardown also cancel the pipeline outright.
	current := func() bool { return c.session == s }
	c.cancel = frame.Pipeline{
		Stages: []frame.Stage{
			{
				Name: "shift",
				Run: func() {
					s.VerticalShift = -s.bottomInset
					c.emit(Animation{Duration: c.cfg.ShiftDuration})
				},
				Hold: c.cfg.ShiftDuration,
			},
			{
				Name: "fade",
				Run: func() {
					if !current() {
						return
					}
					s.BackdropShown = false
					c.emit(Animation{Duration: c.cfg.FadeDuration})
				},
				Hold: c.cfg.FadeDuration,
			},
			{
				Name: "hide",
				Run: func() {
					if !current() {
						return
					}
					s.Presented = false
					s.Committed, s.Live = geom.Identity(), geom.Identity()
					c.emit(Animation{Disabled: true})
				},
			},
		},
		Done: func() {
			if current() {
				gestureLogger.Printf("dismiss: done")
				c.Teardown()
			}
		},
	}.Start(context.Background(), c.scheduler)
}

// Teardown discards the session and cancels anything still scheduled. It is
// safe to call at any point, any number of times.
func (c *Controller) Teardown() {
	c.stopSequence()
	c.session = nil
	c.dismissing = false
}

func (c *Controller) stopSequence() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// active returns the session if it accepts gesture input.
func (c *Controller) active() *Session {
	if c.session == nil || c.dismissing || !c.session.Presented {
		return nil
	}
	return c.session
}

// verticalOffset is a vertical drag distance as a fraction of the content
// height. It is unavailable while the content height is unknown.
func (c *Controller) verticalOffset(s *Session, dy float64) (float64, bool) {
	if s.ContentSize.Empty() {
		return 0, false
	}
	return math.Abs(dy) / s.ContentSize.H, true
}

func (c *Controller) commitClamped(s *Session) {
	s.Committed = Clamp(s.Live, s.ContentSize, c.cfg.MinZoomScale)
	s.Live = s.Committed
	gestureLogger.Printf("commit: scale=(%.3f,%.3f) t=(%.1f,%.1f) %s",
		s.Committed.ScaleX(), s.Committed.ScaleY(), s.Committed.TX(), s.Committed.TY(), c.State())
	c.emit(Animation{})
}

func (c *Controller) emit(a Animation) {
	if c.observer == nil || c.session == nil {
		return
	}
	c.observer.Observe(Change{Session: *c.session, Animation: a})
}
