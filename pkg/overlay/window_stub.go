//go:build !opencv

package overlay

import (
	"image"
	"log/slog"

	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Window is unavailable without OpenCV.
type Window struct{}

// NewWindow returns ErrUnsupported in builds without OpenCV.
func NewWindow(cfg Config, roi vision.ROI, logger *slog.Logger) (*Window, error) {
	return nil, ErrUnsupported
}

// Show does nothing.
func (w *Window) Show(img image.Image, res vision.Result) (bool, error) {
	return false, ErrUnsupported
}

// Close does nothing.
func (w *Window) Close() error { return nil }
