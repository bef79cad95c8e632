package main

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/lightbox/internal/app"
	"github.com/irfansharif/lightbox/internal/geom"
	"github.com/irfansharif/lightbox/internal/viewer"
)

const scrollZoomRate = 0.15 // magnification per scroll notch

// EventHandlers maps window input onto viewer gestures.
type EventHandlers struct {
	application *app.App

	// Left-button press state. A press that travels further than TapSlop
	// becomes a drag; otherwise its release is a tap.
	pressed    bool
	dragging   bool
	pressStart geom.Point // framebuffer pixels

	// Scroll wheel pinch state. Notches accumulate into one pinch until the
	// wheel has been idle for PinchIdle.
	pinching      bool
	magnification float64
	pinchAnchor   geom.Point // unit content coordinates, fixed per pinch
	lastScroll    time.Time
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(application *app.App) *EventHandlers {
	eh := &EventHandlers{application: application}
	eh.SetupCallbacks(application.Window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action)
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // for taps and drags
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.handleCursorPos(xpos, ypos) // for drags
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, delta float64) {
		eh.handleScroll(delta) // for pinches
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.application.Resize(newW, newH) // for window resize
	})
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		eh.application.Dismiss()
	case glfw.KeyR:
		eh.resetGestures()
		eh.application.Reset()
	case glfw.KeyQ:
		eh.application.Window.SetShouldClose(true)
	}
}

// handleMouseButton handles left-button presses and releases.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	switch action {
	case glfw.Press:
		eh.pressed = true
		eh.dragging = false
		eh.pressStart = eh.cursor()
	case glfw.Release:
		if !eh.pressed {
			return
		}
		eh.pressed = false
		if eh.dragging {
			eh.dragging = false
			eh.application.Controller.DragEnded(eh.dragSample())
			return
		}
		eh.handleTap(eh.pressStart)
	}
}

// handleCursorPos promotes a press to a drag once it leaves the tap slop, and
// feeds the drag to the controller.
func (eh *EventHandlers) handleCursorPos(xpos, ypos float64) {
	if !eh.pressed || !eh.presented() {
		return
	}
	p := eh.toFramebuffer(xpos, ypos)
	if !eh.dragging && geom.Dist(p, eh.pressStart) < eh.application.Config.Window.TapSlop {
		return // still a tap
	}
	eh.dragging = true
	eh.application.Controller.DragChanged(viewer.DragSample{Translation: p.Sub(eh.pressStart)})
}

// handleTap routes a tap: the thumbnail presents, the close glyph dismisses,
// and the fullscreen image gets tap-to-zoom.
func (eh *EventHandlers) handleTap(p geom.Point) {
	view := eh.application.View
	if !eh.presented() {
		if view.ThumbnailBox().Contains(p) {
			eh.application.Present()
		}
		return
	}

	f := eh.application.Display.At(time.Now())
	glyph := view.GlyphBox()
	glyph.Y -= f.VerticalShift
	if glyph.Contains(p) {
		eh.application.Dismiss()
		return
	}
	if !view.ImageContains(p, f.VerticalShift, f.Live) {
		return // backdrop
	}
	// Tap locations are in the resting image's coordinates; a zoomed image
	// resets wherever it is tapped.
	local, _ := view.WindowToContent(p, f.VerticalShift)
	eh.application.Controller.Tap(local)
}

// handleScroll turns wheel notches into a pinch anchored at the cursor.
func (eh *EventHandlers) handleScroll(delta float64) {
	if !eh.presented() {
		return
	}
	if !eh.pinching {
		f := eh.application.Display.At(time.Now())
		eh.pinching = true
		eh.magnification = 1
		eh.pinchAnchor = eh.application.View.WindowToUnit(eh.cursor(), f.VerticalShift)
	}
	eh.magnification *= 1 + delta*scrollZoomRate
	eh.lastScroll = time.Now()
	eh.application.Controller.PinchChanged(viewer.PinchSample{
		Magnification: eh.magnification,
		Anchor:        eh.pinchAnchor,
	})
}

// handleContinuousPinch ends a wheel pinch once scrolling has gone quiet.
func (eh *EventHandlers) handleContinuousPinch() {
	if !eh.pinching {
		return // nothing to do
	}
	if time.Since(eh.lastScroll) < eh.application.Config.Window.PinchIdle {
		return // still scrolling
	}
	eh.pinching = false
	eh.application.Controller.PinchEnded()
}

func (eh *EventHandlers) resetGestures() {
	eh.pressed, eh.dragging, eh.pinching = false, false, false
}

func (eh *EventHandlers) presented() bool {
	s, ok := eh.application.Controller.Session()
	return ok && s.Presented
}

func (eh *EventHandlers) dragSample() viewer.DragSample {
	return viewer.DragSample{Translation: eh.cursor().Sub(eh.pressStart)}
}

// cursor returns the cursor position in framebuffer pixels.
func (eh *EventHandlers) cursor() geom.Point {
	return eh.toFramebuffer(eh.application.Window.GetCursorPos())
}

func (eh *EventHandlers) toFramebuffer(x, y float64) geom.Point {
	scaleX, scaleY := eh.application.Window.GetContentScale()
	return geom.MakePoint(x*float64(scaleX), y*float64(scaleY))
}
