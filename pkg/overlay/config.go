// Package overlay draws detection markers over live frames for debugging.
//
// Drawing never changes what is sent to the controller. The window itself
// needs OpenCV (build tag "opencv"); marker geometry and colours are plain Go.
package overlay

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnsupported is returned by NewWindow in builds without OpenCV.
var ErrUnsupported = errors.New("overlay: built without opencv support (rebuild with -tags opencv)")

// Config controls the debug window.
type Config struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	WindowName string `yaml:"window_name" json:"window_name"`

	MarkerOffset int `yaml:"marker_offset" json:"marker_offset"` // Side markers at x±offset
	MarkerRadius int `yaml:"marker_radius" json:"marker_radius"`

	// Colours as hex strings, e.g. "#ff0000".
	CentreColor string `yaml:"centre_color" json:"centre_color"`
	RightColor  string `yaml:"right_color" json:"right_color"`
	LeftColor   string `yaml:"left_color" json:"left_color"`
	BoundsColor string `yaml:"bounds_color" json:"bounds_color"`

	// QuitKey closes the window and stops the run.
	QuitKey string `yaml:"quit_key" json:"quit_key"`
}

// DefaultConfig returns a disabled overlay with the reference markers:
// red at the centroid, green to the right, blue to the left.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		WindowName:   "Line Follower Debug",
		MarkerOffset: 20,
		MarkerRadius: 5,
		CentreColor:  "#ff0000",
		RightColor:   "#00ff00",
		LeftColor:    "#0000ff",
		BoundsColor:  "#ffff00",
		QuitKey:      "q",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.MarkerRadius <= 0 {
		errs = append(errs, errors.New("marker_radius must be positive"))
	}
	if c.MarkerOffset < 0 {
		errs = append(errs, errors.New("marker_offset must not be negative"))
	}
	if len(c.QuitKey) != 1 {
		errs = append(errs, errors.New("quit_key must be a single character"))
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Palette holds the parsed marker colours.
type Palette struct {
	Centre, Right, Left, Bounds color.RGBA
}

// Palette parses the configured colours.
func (c Config) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"centre_color", c.CentreColor, &p.Centre},
		{"right_color", c.RightColor, &p.Right},
		{"left_color", c.LeftColor, &p.Left},
		{"bounds_color", c.BoundsColor, &p.Bounds},
	}

	var errs []error
	for _, f := range fields {
		rgba, err := ParseColor(f.hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		*f.dst = rgba
	}
	return p, errors.Join(errs...)
}

// ParseColor parses "#rrggbb" into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
