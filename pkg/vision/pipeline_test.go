package vision

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

// rgbaFrame returns a white RGBA frame with dark vertical bars covering
// columns [x0, x1) over the full height.
func rgbaFrame(w, h int, bars ...[2]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 255, 255, 255
	}
	for _, b := range bars {
		for y := 0; y < h; y++ {
			for x := b[0]; x < b[1]; x++ {
				img.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}
	return img
}

func newPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipeline_EndToEndReferenceScenario(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	res := p.Process(rgbaFrame(640, 480, [2]int{341, 360}))

	wantY := []int{240, 270, 300, 330, 360}
	if len(res.Rows) != len(wantY) {
		t.Fatalf("got %d rows, want %d", len(res.Rows), len(wantY))
	}
	for i, r := range res.Rows {
		if r.Y != wantY[i] || !r.Found || r.X != 350 {
			t.Errorf("row %d = %+v, want y=%d x=350 found", i, r, wantY[i])
		}
	}
	if !res.Offset.Found || res.Offset.Mean != 350 || res.Offset.Error != 30 {
		t.Errorf("offset = %+v, want mean=350 error=30", res.Offset)
	}
}

func TestPipeline_NoLine(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	res := p.Process(rgbaFrame(640, 480))

	if res.Offset.Found {
		t.Errorf("expected no line, got %+v", res.Offset)
	}
	for _, r := range res.Rows {
		if r.Found {
			t.Errorf("row %d should be absent", r.Index)
		}
	}
}

func TestPipeline_DarkOutsideROIIgnored(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	img := rgbaFrame(640, 480)
	// Dark block in the top half and below the band.
	for y := 0; y < 200; y++ {
		for x := 0; x < 640; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	for y := 400; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}

	if res := p.Process(img); res.Offset.Found {
		t.Errorf("dark pixels outside the ROI must not count, got %+v", res.Offset)
	}
}

func TestPipeline_GrayFrame(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	g := whiteGray(640, 480)
	paintGray(g, 291, 310, 0, 480, 0) // centred on 300

	res := p.Process(g)
	if !res.Offset.Found || res.Offset.Error != -20 {
		t.Errorf("offset = %+v, want error=-20", res.Offset)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	img := rgbaFrame(640, 480, [2]int{100, 130}, [2]int{500, 505})

	first := p.Process(img)
	for i := 0; i < 3; i++ {
		if got := p.Process(img); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestPipeline_PartialRows(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	img := rgbaFrame(640, 480)
	// Line only through rows 0 and 2 (y 240..245 and 300..305).
	for _, y0 := range []int{240, 300} {
		for y := y0; y < y0+5; y++ {
			for x := 391; x < 410; x++ {
				img.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}

	res := p.Process(img)
	if res.Offset.Detected != 2 || res.Offset.Error != 80 {
		t.Errorf("offset = %+v, want 2 rows error=80", res.Offset)
	}
	if res.Rows[1].Found || res.Rows[3].Found || res.Rows[4].Found {
		t.Error("rows 1, 3 and 4 should be absent")
	}
}

func TestPipeline_SmallFrameNeverReadsOutOfBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Height = 480
	p := newPipeline(t, cfg)

	// A frame much shorter than configured: strips are clipped away.
	res := p.Process(rgbaFrame(640, 120, [2]int{10, 20}))
	if res.Offset.Found {
		t.Errorf("expected no detection on a short frame, got %+v", res.Offset)
	}
}

func TestPipeline_ClampedRowsConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Height = 100
	cfg.Width = 160
	p := newPipeline(t, cfg)

	if p.ROI().Rows != 3 {
		t.Fatalf("rows = %d, want 3", p.ROI().Rows)
	}
	res := p.Process(rgbaFrame(160, 100, [2]int{90, 101}))
	if len(res.Rows) != 3 || res.Offset.Error != 15 {
		t.Errorf("got %d rows offset %+v, want 3 rows error=15", len(res.Rows), res.Offset)
	}
}

func TestPipeline_NonZeroOrigin(t *testing.T) {
	p := newPipeline(t, DefaultConfig())
	big := rgbaFrame(700, 500, [2]int{391, 410})
	frame := big.SubImage(image.Rect(50, 10, 690, 490)) // 640x480, origin (50,10)

	res := p.Process(frame)
	// bar 391..409 in big is 341..359 in the frame
	if !res.Offset.Found || res.Offset.Mean != 350 {
		t.Errorf("offset = %+v, want mean=350", res.Offset)
	}
}

func TestNewPipeline_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RowSpacing = 0
	cfg.Mode = "hsv"

	if _, err := NewPipeline(cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestPipeline_ColorFrameThresholdBoundary(t *testing.T) {
	tests := []struct {
		name  string
		level uint8
		found bool
	}{
		{"just below threshold", 79, true},
		{"at threshold", 80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, DefaultConfig())
			img := rgbaFrame(640, 480)
			c := color.RGBA{R: tt.level, G: tt.level, B: tt.level, A: 255}
			for y := 0; y < 480; y++ {
				for x := 341; x < 360; x++ {
					img.SetRGBA(x, y, c)
				}
			}

			res := p.Process(img)
			if res.Offset.Found != tt.found {
				t.Fatalf("found = %v, want %v (offset %+v)", res.Offset.Found, tt.found, res.Offset)
			}
			if tt.found && res.Offset.Error != 30 {
				t.Errorf("error = %d, want 30", res.Offset.Error)
			}
		})
	}
}

func TestGrayBand_KeepsFrameCoordinates(t *testing.T) {
	img := rgbaFrame(100, 60, [2]int{40, 45})
	band := image.Rect(0, 30, 100, 40)

	g := grayBand(img, band)
	if g.Rect != band {
		t.Fatalf("rect = %v, want %v", g.Rect, band)
	}
	if got := g.GrayAt(42, 35).Y; got != 0 {
		t.Errorf("bar pixel = %d, want 0", got)
	}
	if got := g.GrayAt(10, 35).Y; got != 255 {
		t.Errorf("background pixel = %d, want 255", got)
	}
}
