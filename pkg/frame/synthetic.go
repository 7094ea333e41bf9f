package frame

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// Bar is a dark vertical band covering columns [X, X+Width) and rows
// [Y0, Y1). A zero Y1 extends the bar to the bottom of the frame.
type Bar struct {
	X, Width int
	Y0, Y1   int
}

// Synthetic produces white frames with dark vertical bars.
type Synthetic struct {
	width, height int
	bars          []Bar
	drift         int // pixels per frame

	mu     sync.Mutex
	closed bool
	frames uint64
}

// SyntheticOption configures a Synthetic source.
type SyntheticOption func(*Synthetic)

// WithDrift shifts the bars by dx pixels each frame.
func WithDrift(dx int) SyntheticOption {
	return func(s *Synthetic) { s.drift = dx }
}

// NewSynthetic returns a source of width x height frames with the given bars.
func NewSynthetic(width, height int, bars []Bar, opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{width: width, height: height, bars: append([]Bar(nil), bars...)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frame renders the next frame.
func (s *Synthetic) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	shift := int(s.frames) * s.drift
	s.frames++
	return Render(s.width, s.height, shiftBars(s.bars, shift)...), nil
}

// Close stops the source.
func (s *Synthetic) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func shiftBars(bars []Bar, dx int) []Bar {
	if dx == 0 {
		return bars
	}
	out := make([]Bar, len(bars))
	for i, b := range bars {
		b.X += dx
		out[i] = b
	}
	return out
}

// Render draws bars on a white RGBA frame. Bars are clipped to the frame.
func Render(width, height int, bars ...Bar) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	black := color.RGBA{A: 0xff}
	for _, b := range bars {
		y1 := b.Y1
		if y1 == 0 {
			y1 = height
		}
		r := image.Rect(b.X, b.Y0, b.X+b.Width, y1).Intersect(img.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetRGBA(x, y, black)
			}
		}
	}
	return img
}
