// Package frame provides camera-independent frame sources: synthetic frames
// for dry runs and tests, image files for offline runs, and a normalizing
// wrapper that keeps every frame at the configured resolution.
package frame

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrNoFrame is returned when a source could not produce a frame.
	ErrNoFrame = errors.New("frame: no frame")

	// ErrClosed is returned by Frame after Close.
	ErrClosed = errors.New("frame: source closed")
)

// Source produces frames. Frame blocks until a frame is available or ctx is
// done. A source returns io.EOF when it has no more frames.
type Source interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}
