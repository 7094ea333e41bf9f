//go:build !opencv

package camera

import (
	"context"
	"image"
	"log/slog"
)

// Capture is unavailable without OpenCV.
type Capture struct{}

// Open returns ErrUnsupported in builds without OpenCV.
func Open(cfg Config, logger *slog.Logger) (*Capture, error) {
	return nil, ErrUnsupported
}

// Frame returns ErrUnsupported.
func (c *Capture) Frame(ctx context.Context) (image.Image, error) {
	return nil, ErrUnsupported
}

// Close does nothing.
func (c *Capture) Close() error { return nil }
