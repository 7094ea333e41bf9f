package frame

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// Normalize wraps a source and resizes every frame that is not exactly
// width x height. Frames already at that size pass through untouched, so
// detection geometry computed once at startup stays valid.
type Normalize struct {
	src           Source
	width, height int
	resized       uint64
}

// NewNormalize returns src constrained to width x height.
func NewNormalize(src Source, width, height int) *Normalize {
	return &Normalize{src: src, width: width, height: height}
}

// Frame returns the next frame at the configured size.
func (n *Normalize) Frame(ctx context.Context) (image.Image, error) {
	img, err := n.src.Frame(ctx)
	if err != nil {
		return nil, err
	}
	out, changed := Fit(img, n.width, n.height)
	if changed {
		n.resized++
	}
	return out, nil
}

// Resized returns how many frames had to be resized.
func (n *Normalize) Resized() uint64 { return n.resized }

// Close closes the wrapped source.
func (n *Normalize) Close() error { return n.src.Close() }

// Fit resizes img to width x height unless it already has that size.
// Resized frames start at the origin.
func Fit(img image.Image, width, height int) (image.Image, bool) {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img, false
	}
	return imaging.Resize(img, width, height, imaging.Linear), true
}
