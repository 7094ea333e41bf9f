package vision

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Luminance weights (ITU-R BT.601), the same weights OpenCV uses for RGB to gray.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Result is everything one frame produced.
type Result struct {
	Rows   []RowResult `json:"rows"`
	Offset Offset      `json:"offset"`
}

// Pipeline runs the per-frame detection: strip extraction, binarization,
// largest-region centroid per row, and aggregation into an offset.
//
// The ROI geometry is computed once in NewPipeline. A Pipeline reuses its
// detector scratch space and is not safe for concurrent use.
type Pipeline struct {
	cfg Config
	roi ROI
	det *Detector
}

// NewPipeline validates cfg and computes the ROI geometry.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeGray
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("vision config: %w", err)
	}

	return &Pipeline{
		cfg: cfg,
		roi: ComputeROIAt(cfg.Height, cfg.Rows, cfg.RowSpacing, cfg.StartFraction),
		det: NewDetector(cfg),
	}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// ROI returns the static band geometry.
func (p *Pipeline) ROI() ROI {
	return p.roi
}

// Process analyses one frame. Rows are independent of each other and the
// pipeline carries no state between frames, so identical frames always give
// identical results.
func (p *Pipeline) Process(img image.Image) Result {
	bounds := img.Bounds()
	width := bounds.Dx()
	rows := make([]RowResult, p.roi.Rows)

	var gray *image.Gray
	if p.cfg.Mode != ModeRange {
		gray = grayBand(img, p.roi.Rect(width).Add(bounds.Min).Intersect(bounds))
	}

	for i := range rows {
		strip := p.roi.StripRect(i, p.cfg.StripHeight, width).Add(bounds.Min)

		var (
			reg Region
			ok  bool
		)
		if gray != nil {
			reg, ok = p.det.DetectGray(gray, strip)
		} else {
			reg, ok = p.det.DetectRange(img, strip)
		}

		rows[i] = RowResult{Index: i, Y: p.roi.RowY(i)}
		if ok {
			rows[i].X = reg.X - bounds.Min.X
			rows[i].Area = reg.Area
			rows[i].Found = true
		}
	}

	return Result{
		Rows:   rows,
		Offset: Aggregate(rows, width),
	}
}

// grayBand returns a grayscale view of band in the coordinates of img.
// Gray frames are used as-is; anything else is converted band-only.
func grayBand(img image.Image, band image.Rectangle) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	if band.Empty() {
		return &image.Gray{}
	}

	src := img
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		src = s.SubImage(band)
	}

	rgba := effect.GrayscaleWithWeights(src, lumaR, lumaG, lumaB)

	// The weighted luminance lands in R, G and B alike; keep R.
	gray := image.NewGray(rgba.Rect)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	for y := 0; y < h; y++ {
		srow := rgba.Pix[y*rgba.Stride:]
		drow := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			drow[x] = srow[x*4]
		}
	}
	return gray
}
