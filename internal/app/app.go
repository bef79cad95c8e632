// Package app ties the gesture controller to a window: it owns the layout,
// the loaded image, the animated display state and the renderer, and turns
// them into a render.Scene every frame.
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/lightbox/internal/config"
	"github.com/irfansharif/lightbox/internal/frame"
	"github.com/irfansharif/lightbox/internal/geom"
	"github.com/irfansharif/lightbox/internal/media"
	"github.com/irfansharif/lightbox/internal/memory"
	"github.com/irfansharif/lightbox/internal/palette"
	"github.com/irfansharif/lightbox/internal/render"
	"github.com/irfansharif/lightbox/internal/viewer"
	"github.com/irfansharif/lightbox/internal/watch"
)

// App encapsulates the main application state and logic.
type App struct {
	Config           config.Config
	Window           *glfw.Window
	Renderer         *render.Renderer
	MemoryController *memory.MemoryController
	Loop             *frame.Loop
	Controller       *viewer.Controller
	Display          *Display
	View             *View
	Scheme           palette.Scheme
	Image            *media.Image
	Watcher          *watch.Watcher // nil unless watching
}

// NewApp loads the configured image and sets up rendering. The window's GL
// context must be current.
func NewApp(window *glfw.Window, cfg config.Config) (*App, error) {
	im, err := media.Load(cfg.Image, cfg.Window.MaxTextureSide)
	if err != nil {
		return nil, err
	}

	memController := memory.NewMemoryController()
	renderer, err := render.NewRenderer(memController)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	if err := renderer.SetImage(im); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", cfg.Image, err)
	}

	cw, ch := window.GetFramebufferSize()
	view := NewView(cw, ch, cfg.Window)
	view.SetImageSize(im.SourceW, im.SourceH)
	renderer.SetViewport(cw, ch)

	loop := frame.NewLoop(time.Now)
	display := NewDisplay(time.Now)
	app := &App{
		Config:           cfg,
		Window:           window,
		Renderer:         renderer,
		MemoryController: memController,
		Loop:             loop,
		Controller:       viewer.NewController(cfg.Gesture, loop, display),
		Display:          display,
		View:             view,
		Scheme:           palette.Default(),
		Image:            im,
	}

	if cfg.Watch {
		w, err := watch.New(cfg.Image)
		if err != nil {
			app.Cleanup()
			return nil, err
		}
		app.Watcher = w
	}
	return app, nil
}

// Present opens the fullscreen viewer.
func (app *App) Present() {
	app.Controller.Present(app.Config.Window.BottomInset)
	app.syncContentSize()
}

// Dismiss starts the dismiss sequence.
func (app *App) Dismiss() {
	app.Controller.Dismiss()
}

// Reset drops any presentation and returns to the inline thumbnail.
func (app *App) Reset() {
	app.Controller.Teardown()
	app.Display.Observe(viewer.Change{
		Session:   viewer.Session{Live: geom.Identity()},
		Animation: viewer.Animation{Disabled: true},
	})
}

// Resize updates the layout after the framebuffer changes size.
func (app *App) Resize(w, h int) {
	app.View.SetViewport(w, h)
	app.Renderer.SetViewport(w, h)
	app.syncContentSize()
}

// ReloadImage re-reads the image from disk, keeping the current one if that
// fails.
func (app *App) ReloadImage() error {
	im, err := media.Load(app.Config.Image, app.Config.Window.MaxTextureSide)
	if err != nil {
		return err
	}
	if err := app.Renderer.SetImage(im); err != nil {
		return fmt.Errorf("uploading %s: %w", app.Config.Image, err)
	}
	app.Image = im
	app.View.SetImageSize(im.SourceW, im.SourceH)
	app.syncContentSize()
	log.Printf("Reloaded %s (%dx%d %s)", app.Config.Image, im.SourceW, im.SourceH, im.Format)
	return nil
}

// PrepareRenderer hands the scene for the given instant to the renderer.
func (app *App) PrepareRenderer(now time.Time) error {
	return app.Renderer.Prepare(BuildScene(app.View, app.Display.At(now), app.Scheme))
}

// Cleanup releases GL resources and stops the watcher.
func (app *App) Cleanup() {
	if app.Watcher != nil {
		if err := app.Watcher.Close(); err != nil {
			log.Printf("Closing watcher: %v", err)
		}
	}
	app.Renderer.Cleanup()
	app.MemoryController.Cleanup()
}

func (app *App) syncContentSize() {
	box, err := app.View.ContentBox()
	if err != nil {
		return // nothing laid out yet (minimized)
	}
	app.Controller.SetContentSize(box.Size())
}

// BuildScene lays out one frame. The thumbnail fades out as the backdrop
// fades in; the fullscreen image and close glyph are drawn only while
// presented.
func BuildScene(view *View, f Frame, scheme palette.Scheme) render.Scene {
	scene := render.Scene{Background: scheme.PageRGBA()}

	alpha := 0.0
	if f.Presented {
		alpha = f.BackdropAlpha
		scene.Background = scheme.BackdropAt(alpha)
	}
	if thumb := view.ThumbnailBox(); !thumb.Size().Empty() && alpha < 1 {
		scene.Thumbnail = &render.Quad{
			Box:       thumb,
			Transform: geom.Identity(),
			Alpha:     1 - alpha,
		}
	}
	if !f.Presented {
		return scene
	}

	if box, err := view.ContentBox(); err == nil {
		scene.Image = &render.Quad{
			Box:       box,
			Transform: f.Live,
			Offset:    geom.MakePoint(0, -f.VerticalShift),
			Alpha:     1,
		}
	}
	glyph := view.GlyphBox()
	glyph.Y -= f.VerticalShift
	scene.Glyph = &render.Glyph{Box: glyph, Color: scheme.GlyphAt(alpha)}
	return scene
}
