// Package vision turns a camera frame into a lateral line offset.
//
// A fixed band of the frame (the ROI) is sampled at a few evenly spaced
// horizontal strips. Each strip is binarized, its largest dark region is
// located, and the region centroids are averaged into a signed offset from
// the vertical centre line of the frame.
package vision

import (
	"errors"
	"fmt"
)

// Binarization modes.
const (
	// ModeGray marks pixels whose luminance is below Threshold.
	ModeGray = "gray"
	// ModeRange marks pixels whose RGB channels all lie inside [DarkLower, DarkUpper].
	ModeRange = "range"
)

// Config holds the detection parameters. It is fixed at startup.
type Config struct {
	// Frame geometry
	Width  int `yaml:"width" json:"width"`   // Frame width in pixels
	Height int `yaml:"height" json:"height"` // Frame height in pixels

	// Detection rows
	Rows          int     `yaml:"rows" json:"rows"`                     // Number of detection rows (N)
	RowSpacing    int     `yaml:"row_spacing" json:"row_spacing"`       // Vertical distance between rows (S)
	StripHeight   int     `yaml:"strip_height" json:"strip_height"`     // Height of each sampled strip
	StartFraction float64 `yaml:"start_fraction" json:"start_fraction"` // ROI top as a fraction of Height

	// Binarization
	Mode      string   `yaml:"mode" json:"mode"`             // "gray" or "range"
	Threshold uint8    `yaml:"threshold" json:"threshold"`   // Gray values below this are line
	DarkLower [3]uint8 `yaml:"dark_lower" json:"dark_lower"` // Inclusive RGB lower bound (range mode)
	DarkUpper [3]uint8 `yaml:"dark_upper" json:"dark_upper"` // Inclusive RGB upper bound (range mode)

	// Regions smaller than this many pixels are ignored
	MinArea int `yaml:"min_area" json:"min_area"`
}

// DefaultConfig returns the reference configuration: 640x480 frames, five
// rows 30px apart starting halfway down, 5px strips, threshold 80.
func DefaultConfig() Config {
	return Config{
		Width:  640,
		Height: 480,

		Rows:          5,
		RowSpacing:    30,
		StripHeight:   5,
		StartFraction: 0.5,

		Mode:      ModeGray,
		Threshold: 80,
		DarkLower: [3]uint8{0, 0, 0},
		DarkUpper: [3]uint8{50, 50, 50},

		MinArea: 1,
	}
}

// Validate checks that the configuration can produce a usable geometry.
func (c *Config) Validate() error {
	var errs []error

	if c.Width <= 0 {
		errs = append(errs, fmt.Errorf("width must be positive, got %d", c.Width))
	}
	if c.Height <= 0 {
		errs = append(errs, fmt.Errorf("height must be positive, got %d", c.Height))
	}
	if c.Rows <= 0 {
		errs = append(errs, fmt.Errorf("rows must be positive, got %d", c.Rows))
	}
	if c.RowSpacing <= 0 {
		errs = append(errs, fmt.Errorf("row_spacing must be positive, got %d", c.RowSpacing))
	}
	if c.StripHeight <= 0 {
		errs = append(errs, fmt.Errorf("strip_height must be positive, got %d", c.StripHeight))
	}
	if c.StartFraction < 0 || c.StartFraction >= 1 {
		errs = append(errs, fmt.Errorf("start_fraction must be in [0, 1), got %v", c.StartFraction))
	}
	if c.MinArea < 1 {
		errs = append(errs, fmt.Errorf("min_area must be at least 1, got %d", c.MinArea))
	}

	switch c.Mode {
	case ModeGray, "":
	case ModeRange:
		for i := range c.DarkLower {
			if c.DarkLower[i] > c.DarkUpper[i] {
				errs = append(errs, fmt.Errorf("dark_lower[%d]=%d exceeds dark_upper[%d]=%d",
					i, c.DarkLower[i], i, c.DarkUpper[i]))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeGray, ModeRange, c.Mode))
	}

	return errors.Join(errs...)
}
