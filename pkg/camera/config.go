// Package camera captures frames from a V4L2/UVC camera through OpenCV.
//
// The OpenCV-backed capture is compiled only with the "opencv" build tag.
// Without it Open returns ErrUnsupported and callers fall back to the
// sources in pkg/frame.
package camera

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by Open in builds without OpenCV.
var ErrUnsupported = errors.New("camera: built without opencv support (rebuild with -tags opencv)")

// Config holds camera capture parameters.
type Config struct {
	// Device is a camera index ("0") or a device path or pipeline string.
	Device string `yaml:"device" json:"device"`

	// Preset names the preset the resolution was taken from, if any.
	Preset string `yaml:"preset" json:"preset,omitempty"`

	Width     int `yaml:"width" json:"width"`         // Requested frame width in pixels
	Height    int `yaml:"height" json:"height"`       // Requested frame height in pixels
	Framerate int `yaml:"framerate" json:"framerate"` // Target FPS

	// ReadRetries is how many consecutive empty reads are tolerated before
	// Frame reports ErrNoFrame. Cameras often drop the first frames after
	// opening.
	ReadRetries int `yaml:"read_retries" json:"read_retries"`
}

// Limits accepted by Validate.
const (
	MinWidth     = 160
	MaxWidth     = 4096
	MinHeight    = 120
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns the reference camera setup: device 0 at 640x480.
func DefaultConfig() Config {
	return LegacyConfig()
}

// LegacyConfig returns 640x480 at 30 FPS on the first camera.
func LegacyConfig() Config {
	return Config{
		Device:      "0",
		Width:       640,
		Height:      480,
		Framerate:   30,
		ReadRetries: 5,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Device == "" {
		errs = append(errs, "device must not be empty")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errs = append(errs, fmt.Sprintf("framerate must be between 1 and %d", MaxFramerate))
	}
	if c.ReadRetries < 0 {
		errs = append(errs, "read_retries must not be negative")
	}
	if c.Preset != "" && GetPreset(c.Preset) == nil {
		errs = append(errs, fmt.Sprintf("unknown preset %q", c.Preset))
	}

	return errs
}

// Err returns the validation problems as a single error, or nil.
func (c *Config) Err() error {
	problems := c.Validate()
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = errors.New(p)
	}
	return errors.Join(errs...)
}
