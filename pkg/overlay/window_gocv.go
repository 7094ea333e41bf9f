//go:build opencv

package overlay

import (
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Window shows annotated frames in a HighGUI window.
type Window struct {
	cfg    Config
	pal    Palette
	roi    vision.ROI
	logger *slog.Logger

	win  *gocv.Window
	quit int
}

// NewWindow opens the debug window.
func NewWindow(cfg Config, roi vision.ROI, logger *slog.Logger) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overlay config: %w", err)
	}
	pal, _ := cfg.Palette()

	w := &Window{
		cfg:    cfg,
		pal:    pal,
		roi:    roi,
		logger: log.Or(logger, "overlay"),
		win:    gocv.NewWindow(cfg.WindowName),
		quit:   int(cfg.QuitKey[0]),
	}
	w.logger.Info("debug window opened", "name", cfg.WindowName, "quit_key", cfg.QuitKey)
	return w, nil
}

// Show draws the scene over img and reports whether the quit key was pressed.
func (w *Window) Show(img image.Image, res vision.Result) (bool, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return false, fmt.Errorf("overlay frame: %w", err)
	}
	defer mat.Close()

	scene := Layout(res, w.roi, img.Bounds().Dx(), w.cfg, w.pal)
	for _, s := range scene.Segments {
		gocv.Line(&mat, s.From, s.To, s.Color, 1)
	}
	for _, m := range scene.Markers {
		gocv.Circle(&mat, m.Center, m.Radius, m.Color, -1)
	}

	w.win.IMShow(mat)
	key := w.win.WaitKey(1)
	return key == w.quit, nil
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
