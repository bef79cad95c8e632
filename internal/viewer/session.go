// Package viewer implements the fullscreen image viewer's gesture handling:
// tap-to-zoom, pinch-zoom, pan, swipe-to-dismiss, and the timed appear and
// dismiss sequences. It knows nothing about windows or rendering; a host feeds
// it gesture samples and renders the Changes it emits.
package viewer

import (
	"time"

	"github.com/irfansharif/lightbox/internal/geom"
)

// State is the controller's coarse gesture state.
type State int

const (
	StateDefault    State = iota // committed transform is identity
	StateZoomed                  // committed transform is scaled
	StateDismissing              // dismiss sequence in flight
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateZoomed:
		return "zoomed"
	case StateDismissing:
		return "dismissing"
	default:
		return "unknown"
	}
}

// Session is the state of one fullscreen presentation.
type Session struct {
	Committed      geom.Affine // transform in effect before the current gesture
	Live           geom.Affine // transform reflecting the in-progress gesture
	ContentSize    geom.Size   // displayed image's box, zero until layout is known
	BackgroundFade float64     // 1 is opaque, 0 fully faded
	BackdropShown  bool
	VerticalShift  float64 // cosmetic offset from the bottom safe-area inset
	Presented      bool

	bottomInset float64
}

func newSession(bottomInset float64) *Session {
	return &Session{
		Committed:      geom.Identity(),
		Live:           geom.Identity(),
		BackgroundFade: 1,
		VerticalShift:  -bottomInset,
		Presented:      true,
		bottomInset:    bottomInset,
	}
}

// BackdropAlpha is the opacity the host should draw the backdrop with.
func (s Session) BackdropAlpha() float64 {
	if !s.BackdropShown {
		return 0
	}
	return s.BackgroundFade
}

// Animation describes how observers should apply a Change.
type Animation struct {
	// Duration of the transition; zero means the host's default.
	Duration time.Duration
	// Disabled changes must be applied immediately, without interpolation.
	Disabled bool
}

// Change is emitted to observers whenever the session changes.
type Change struct {
	Session   Session
	Animation Animation
}

// Observer receives Changes on the controller's (main) goroutine.
type Observer interface {
	Observe(Change)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Change)

// Observe implements Observer.
func (f ObserverFunc) Observe(c Change) { f(c) }
