package frame

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestRender(t *testing.T) {
	img := Render(100, 50, Bar{X: 10, Width: 5, Y0: 20})

	tests := []struct {
		x, y int
		dark bool
	}{
		{10, 20, true},
		{14, 49, true},
		{15, 20, false},
		{10, 19, false},
		{9, 30, false},
	}
	for _, tt := range tests {
		got := img.RGBAAt(tt.x, tt.y).R == 0
		if got != tt.dark {
			t.Errorf("pixel (%d,%d) dark = %v, want %v", tt.x, tt.y, got, tt.dark)
		}
	}
}

func TestRender_ClipsBars(t *testing.T) {
	img := Render(20, 10, Bar{X: -5, Width: 8}, Bar{X: 18, Width: 10, Y0: 5, Y1: 50})
	if img.RGBAAt(0, 0).R != 0 || img.RGBAAt(2, 9).R != 0 {
		t.Error("left bar should cover columns 0..2")
	}
	if img.RGBAAt(3, 0).R == 0 {
		t.Error("column 3 should be white")
	}
	if img.RGBAAt(19, 9).R != 0 || img.RGBAAt(19, 4).R == 0 {
		t.Error("right bar should cover rows 5..9 of column 19")
	}
}

func TestSynthetic(t *testing.T) {
	src := NewSynthetic(64, 48, []Bar{{X: 30, Width: 4}}, WithDrift(2))
	ctx := context.Background()

	first, err := src.Frame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := src.Frame(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if first.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Errorf("bounds = %v", first.Bounds())
	}
	if r, _, _, _ := first.At(30, 0).RGBA(); r != 0 {
		t.Error("first frame should have the bar at x=30")
	}
	if r, _, _, _ := second.At(32, 0).RGBA(); r != 0 {
		t.Error("second frame should have the bar at x=32")
	}
	if r, _, _, _ := second.At(30, 0).RGBA(); r == 0 {
		t.Error("second frame should be white at x=30")
	}

	src.Close()
	if _, err := src.Frame(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame after Close = %v, want ErrClosed", err)
	}
}

func TestSynthetic_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSynthetic(8, 8, nil).Frame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func writeImage(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFiles(t *testing.T) {
	a := writeImage(t, "a.png", Render(16, 8, Bar{X: 2, Width: 1}))
	b := writeImage(t, "b.png", Render(16, 8, Bar{X: 9, Width: 1}))

	tests := []struct {
		name  string
		loop  bool
		reads int
		want  []int // bar column per read, -1 for io.EOF
	}{
		{"stops at end", false, 3, []int{2, 9, -1}},
		{"loops", true, 4, []int{2, 9, 2, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewFiles([]string{a, b}, tt.loop)
			defer src.Close()

			for i := 0; i < tt.reads; i++ {
				img, err := src.Frame(context.Background())
				if tt.want[i] < 0 {
					if err != io.EOF {
						t.Fatalf("read %d: error = %v, want io.EOF", i, err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("read %d: %v", i, err)
				}
				if r, _, _, _ := img.At(tt.want[i], 4).RGBA(); r != 0 {
					t.Errorf("read %d: expected bar at x=%d", i, tt.want[i])
				}
			}
		})
	}
}

func TestFiles_Missing(t *testing.T) {
	src := NewFiles([]string{filepath.Join(t.TempDir(), "missing.png")}, false)
	if _, err := src.Frame(context.Background()); !errors.Is(err, ErrNoFrame) {
		t.Errorf("error = %v, want ErrNoFrame", err)
	}
}

func TestFiles_Empty(t *testing.T) {
	if _, err := NewFiles(nil, true).Frame(context.Background()); err != io.EOF {
		t.Errorf("error = %v, want io.EOF", err)
	}
}

func TestFit(t *testing.T) {
	exact := Render(64, 48)
	if out, changed := Fit(exact, 64, 48); changed || out != image.Image(exact) {
		t.Error("frame at target size should pass through")
	}

	big := image.NewGray(image.Rect(0, 0, 128, 96))
	out, changed := Fit(big, 64, 48)
	if !changed {
		t.Fatal("expected resize")
	}
	if out.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Errorf("bounds = %v, want 64x48", out.Bounds())
	}
}

func TestNormalize(t *testing.T) {
	src := NewNormalize(NewSynthetic(128, 96, []Bar{{X: 60, Width: 8}}), 64, 48)
	defer src.Close()

	img, err := src.Frame(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	// The 8 px bar at x=60 maps to about x=30..34.
	if c := color.GrayModel.Convert(img.At(32, 24)).(color.Gray); c.Y > 80 {
		t.Errorf("pixel (32,24) = %d, want dark", c.Y)
	}
	if src.Resized() != 1 {
		t.Errorf("Resized() = %d, want 1", src.Resized())
	}
}
