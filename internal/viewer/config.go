package viewer

import (
	"fmt"
	"time"
)

// Config holds the gesture tunables. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	TapZoomScale     float64       `yaml:"tap_zoom_scale" env:"TAP_ZOOM_SCALE"`       // scale applied by a tap at default zoom
	MinZoomScale     float64       `yaml:"min_zoom_scale" env:"MIN_ZOOM_SCALE"`       // below this, a gesture snaps back to identity
	MinMagnification float64       `yaml:"min_magnification" env:"MIN_MAGNIFICATION"` // floor for malformed pinch samples
	DragDamping      float64       `yaml:"drag_damping" env:"DRAG_DAMPING"`           // multiplier on finger travel at default zoom
	DragMinScale     float64       `yaml:"drag_min_scale" env:"DRAG_MIN_SCALE"`       // smallest scale a swipe shrinks the image to
	DragShrinkRate   float64       `yaml:"drag_shrink_rate" env:"DRAG_SHRINK_RATE"`   // scale lost per unit of vertical offset
	DismissThreshold float64       `yaml:"dismiss_threshold" env:"DISMISS_THRESHOLD"` // vertical offset past which a swipe dismisses
	AppearDuration   time.Duration `yaml:"appear_duration" env:"APPEAR_DURATION"`
	ShiftDuration    time.Duration `yaml:"shift_duration" env:"SHIFT_DURATION"`
	FadeDuration     time.Duration `yaml:"fade_duration" env:"FADE_DURATION"`
}

// DefaultConfig returns the stock gesture tuning.
func DefaultConfig() Config {
	return Config{
		TapZoomScale:     3,
		MinZoomScale:     1,
		MinMagnification: 0.01,
		DragDamping:      0.8,
		DragMinScale:     0.8,
		DragShrinkRate:   0.7,
		DismissThreshold: 0.3,
		AppearDuration:   200 * time.Millisecond,
		ShiftDuration:    200 * time.Millisecond,
		FadeDuration:     100 * time.Millisecond,
	}
}

// Validate reports the first field holding an unusable value.
func (c Config) Validate() error {
	switch {
	case !(c.TapZoomScale > 1):
		return fmt.Errorf("tap zoom scale must be greater than 1, got %v", c.TapZoomScale)
	case !(c.MinZoomScale >= 1):
		return fmt.Errorf("min zoom scale must be at least 1, got %v", c.MinZoomScale)
	case !(c.MinMagnification > 0):
		return fmt.Errorf("min magnification must be positive, got %v", c.MinMagnification)
	case !(c.DragDamping > 0):
		return fmt.Errorf("drag damping must be positive, got %v", c.DragDamping)
	case !(c.DragMinScale > 0 && c.DragMinScale <= 1):
		return fmt.Errorf("drag min scale must be in (0, 1], got %v", c.DragMinScale)
	case c.DragShrinkRate < 0:
		return fmt.Errorf("drag shrink rate must not be negative, got %v", c.DragShrinkRate)
	case !(c.DismissThreshold > 0):
		return fmt.Errorf("dismiss threshold must be positive, got %v", c.DismissThreshold)
	case c.AppearDuration < 0 || c.ShiftDuration < 0 || c.FadeDuration < 0:
		return fmt.Errorf("durations must not be negative (appear=%v shift=%v fade=%v)",
			c.AppearDuration, c.ShiftDuration, c.FadeDuration)
	}
	return nil
}
