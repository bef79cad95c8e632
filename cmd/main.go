package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/lightbox/internal/app"
	"github.com/irfansharif/lightbox/internal/config"
	"github.com/irfansharif/lightbox/internal/memory"
	"github.com/irfansharif/lightbox/internal/render"
)

const logFlags = log.Ltime | log.Lshortfile

var runtimeLogger *log.Logger = log.New(io.Discard, "", 0)

var (
	configPath = flag.String("config", "", "path to a YAML configuration file")
	imagePath  = flag.String("image", "", "image to show (overrides configuration)")
	watchImage = flag.Bool("watch", false, "reload the image when it changes on disk")
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
	log.SetFlags(logFlags)

	if os.Getenv("LIGHTBOX_DEBUG_RUNTIME") == "1" {
		runtimeLogger = log.New(os.Stdout, "[runtime] ", log.Ltime|log.Lmsgprefix)
	}
}

func makeTitle(fps float64, avgFrameTime float64, state string, renderStats render.Stats, memStats memory.Stats) string {
	return fmt.Sprintf("Lightbox (%.1f FPS, %.2fms/frame, %s, %d vertices, %d draw calls/frame, %.2fµs/draw, %.2fms/prepare, %.1fKiB GPU)",
		fps,
		avgFrameTime,
		state,
		memStats.TotalVertices,
		memStats.DrawCallsPerFrame,
		renderStats.LastDrawTimeUs,
		renderStats.LastPrepareTimeMs,
		float64(memStats.TotalGPUBytes)/1024.0,
	)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	if *imagePath != "" {
		cfg.Image = *imagePath
	}
	if *watchImage {
		cfg.Watch = true
	}
	return cfg, cfg.RequireImage()
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, "Lightbox", nil, nil)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		log.Fatalf("Failed to initialize OpenGL: %v", err)
	}

	application, err := app.NewApp(window, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Cleanup()

	// Initialize event handlers.
	eventHandlers := NewEventHandlers(application)

	frameCount, frameTimeSum := 0, 0.0
	lastFPSUpdate := time.Now()

	// Main loop.
	for !application.Window.ShouldClose() {
		frameStart := time.Now()

		eventHandlers.handleContinuousPinch()
		application.Loop.Poll() // appear/dismiss stages

		if application.Watcher != nil && application.Watcher.Poll() {
			if err := application.ReloadImage(); err != nil {
				log.Printf("Reload failed, keeping the current image: %v", err)
			}
		}

		w, h := application.Window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		if err := application.PrepareRenderer(frameStart); err != nil {
			log.Fatalf("Failed to prepare renderer: %v", err)
		}
		if err := application.Renderer.Draw(); err != nil {
			log.Fatalf("Failed to draw: %v", err)
		}
		application.Window.SwapBuffers()
		glfw.PollEvents()

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			frameCount, frameTimeSum = 0, 0.0
			lastFPSUpdate = now

			memStats := application.MemoryController.Stats()
			renderStats := application.Renderer.Stats()
			state := application.Controller.State().String()

			application.Window.SetTitle(
				makeTitle(fps, avgFrameTime, state, renderStats, memStats),
			)

			runtimeLogger.Println("=== Performance statistics ===")
			runtimeLogger.Printf("Frame rate:     %.1f FPS (%.2f ms/frame, %d draw calls/frame)", fps, avgFrameTime, memStats.DrawCallsPerFrame)
			runtimeLogger.Printf("Geometry:       %d vertices, %d uploads", memStats.TotalVertices, memStats.Uploads)
			runtimeLogger.Printf("GPU memory:     %.2f KiB", float64(memStats.TotalGPUBytes)/1024.0)
			runtimeLogger.Printf("Render time:    %.2f µs (last draw), %.2f ms (last prepare)", renderStats.LastDrawTimeUs, renderStats.LastPrepareTimeMs)
			runtimeLogger.Printf("Viewer:         %s, %d timers pending", state, application.Loop.Pending())
			runtimeLogger.Println("==============================")
		}
	}
}
