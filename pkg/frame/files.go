package frame

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/disintegration/imaging"
)

// Files replays images from disk in order.
type Files struct {
	paths []string
	loop  bool

	mu     sync.Mutex
	next   int
	closed bool
	cache  map[string]image.Image
}

// NewFiles returns a source over paths. With loop set the sequence repeats
// forever; otherwise Frame returns io.EOF after the last image.
func NewFiles(paths []string, loop bool) *Files {
	return &Files{
		paths: append([]string(nil), paths...),
		loop:  loop,
		cache: make(map[string]image.Image),
	}
}

// Frame decodes the next image.
func (f *Files) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	if len(f.paths) == 0 {
		return nil, io.EOF
	}
	if f.next >= len(f.paths) {
		if !f.loop {
			return nil, io.EOF
		}
		f.next = 0
	}

	path := f.paths[f.next]
	f.next++

	if img, ok := f.cache[path]; ok {
		return img, nil
	}
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	if f.loop {
		f.cache[path] = img
	}
	return img, nil
}

// Close releases decoded images.
func (f *Files) Close() error {
	f.mu.Lock()
	f.closed = true
	f.cache = nil
	f.mu.Unlock()
	return nil
}

// Load decodes one image file, honouring EXIF orientation.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoFrame, path, err)
	}
	return img, nil
}
