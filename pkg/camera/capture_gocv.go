//go:build opencv

package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/frame"
)

// Capture is a frame.Source reading from an OpenCV VideoCapture.
type Capture struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	vc     *gocv.VideoCapture
	buf    gocv.Mat
	rgba   gocv.Mat
	closed bool
}

// Open opens the configured camera and requests its resolution and rate.
func Open(cfg Config, logger *slog.Logger) (*Capture, error) {
	if err := cfg.Err(); err != nil {
		return nil, fmt.Errorf("invalid camera config: %w", err)
	}
	logger = log.Or(logger, "camera")

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %s: %w", cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %s: %w", cfg.Device, frame.ErrNoFrame)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	logger.Info("camera opened",
		"device", cfg.Device,
		"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
		"fps", vc.Get(gocv.VideoCaptureFPS),
	)

	return &Capture{
		cfg:    cfg,
		logger: logger,
		vc:     vc,
		buf:    gocv.NewMat(),
		rgba:   gocv.NewMat(),
	}, nil
}

// Frame reads the next frame. Empty reads are retried up to ReadRetries
// times before ErrNoFrame is returned.
func (c *Capture) Frame(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, frame.ErrClosed
	}

	for attempt := 0; attempt <= c.cfg.ReadRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok := c.vc.Read(&c.buf); !ok || c.buf.Empty() {
			c.logger.Debug("empty camera read", "attempt", attempt+1)
			continue
		}
		return c.toImage()
	}

	return nil, fmt.Errorf("camera %s: %w", c.cfg.Device, frame.ErrNoFrame)
}

// toImage converts the BGR capture buffer into a freshly allocated RGBA
// image so the frame outlives the next Read.
func (c *Capture) toImage() (image.Image, error) {
	gocv.CvtColor(c.buf, &c.rgba, gocv.ColorBGRToRGBA)

	w, h := c.rgba.Cols(), c.rgba.Rows()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	data, err := c.rgba.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("camera frame: %w", err)
	}
	copy(img.Pix, data)
	return img, nil
}

// Close releases the camera. Subsequent calls return nil.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.buf.Close()
	c.rgba.Close()
	if err := c.vc.Close(); err != nil {
		return fmt.Errorf("close camera %s: %w", c.cfg.Device, err)
	}
	c.logger.Info("camera closed", "device", c.cfg.Device)
	return nil
}
