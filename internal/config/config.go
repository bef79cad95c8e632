// Package config loads lightbox settings: built-in defaults, then an optional
// YAML file, then LIGHTBOX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/irfansharif/lightbox/internal/viewer"
)

const envPrefix = "LIGHTBOX_"

// Config is the complete application configuration.
type Config struct {
	Image   string        `yaml:"image" env:"IMAGE"` // path of the image to show
	Watch   bool          `yaml:"watch" env:"WATCH"` // reload the image when it changes on disk
	Window  Window        `yaml:"window" envPrefix:"WINDOW_"`
	Gesture viewer.Config `yaml:"gesture" envPrefix:"GESTURE_"`
}

// Window holds host window and input settings.
type Window struct {
	Width          int           `yaml:"width" env:"WIDTH"`
	Height         int           `yaml:"height" env:"HEIGHT"`
	BottomInset    float64       `yaml:"bottom_inset" env:"BOTTOM_INSET"`       // simulated safe-area inset, in pixels
	ThumbnailWidth float64       `yaml:"thumbnail_width" env:"THUMBNAIL_WIDTH"` // fraction of the window width
	TapSlop        float64       `yaml:"tap_slop" env:"TAP_SLOP"`               // max travel, in pixels, for a press to count as a tap
	PinchIdle      time.Duration `yaml:"pinch_idle" env:"PINCH_IDLE"`           // scroll silence that ends a wheel pinch
	MaxTextureSide int           `yaml:"max_texture_side" env:"MAX_TEXTURE_SIDE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{
			Width:          720,
			Height:         960,
			BottomInset:    34,
			ThumbnailWidth: 0.9,
			TapSlop:        4,
			PinchIdle:      150 * time.Millisecond,
			MaxTextureSide: 4096,
		},
		Gesture: viewer.DefaultConfig(),
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	w := c.Window
	switch {
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", w.Width, w.Height)
	case w.BottomInset < 0:
		return fmt.Errorf("bottom inset must not be negative, got %v", w.BottomInset)
	case !(w.ThumbnailWidth > 0 && w.ThumbnailWidth <= 1):
		return fmt.Errorf("thumbnail width must be in (0, 1], got %v", w.ThumbnailWidth)
	case w.TapSlop < 0:
		return fmt.Errorf("tap slop must not be negative, got %v", w.TapSlop)
	case w.PinchIdle <= 0:
		return fmt.Errorf("pinch idle must be positive, got %v", w.PinchIdle)
	case w.MaxTextureSide < 16:
		return fmt.Errorf("max texture side must be at least 16, got %d", w.MaxTextureSide)
	}
	if err := c.Gesture.Validate(); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}
	return nil
}

// ErrNoImage is returned by RequireImage when no image path was configured.
var ErrNoImage = errors.New("no image configured (use -image or LIGHTBOX_IMAGE)")

// RequireImage checks that an image path is set and readable.
func (c Config) RequireImage() error {
	if c.Image == "" {
		return ErrNoImage
	}
	if _, err := os.Stat(c.Image); err != nil {
		return fmt.Errorf("image %s: %w", c.Image, err)
	}
	return nil
}
