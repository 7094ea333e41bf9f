package vision

import "testing"

func TestComputeROI(t *testing.T) {
	tests := []struct {
		name      string
		height    int
		rows      int
		spacing   int
		wantStart int
		wantEnd   int
		wantRows  int
	}{
		{
			name:   "reference geometry",
			height: 480, rows: 5, spacing: 30,
			wantStart: 240, wantEnd: 390, wantRows: 5,
		},
		{
			name:   "exactly fills lower half",
			height: 300, rows: 5, spacing: 30,
			wantStart: 150, wantEnd: 300, wantRows: 5,
		},
		{
			name:   "pushed up to fit",
			height: 250, rows: 5, spacing: 30,
			wantStart: 100, wantEnd: 250, wantRows: 5,
		},
		{
			name:   "rows reduced when band exceeds frame",
			height: 100, rows: 5, spacing: 30,
			wantStart: 0, wantEnd: 100, wantRows: 3,
		},
		{
			name:   "frame shorter than spacing keeps one row",
			height: 10, rows: 5, spacing: 30,
			wantStart: 0, wantEnd: 10, wantRows: 1,
		},
		{
			name:   "zero rows treated as one",
			height: 480, rows: 0, spacing: 30,
			wantStart: 240, wantEnd: 270, wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roi := ComputeROI(tt.height, tt.rows, tt.spacing)
			if roi.YStart != tt.wantStart || roi.YEnd != tt.wantEnd || roi.Rows != tt.wantRows {
				t.Errorf("got start=%d end=%d rows=%d, want start=%d end=%d rows=%d",
					roi.YStart, roi.YEnd, roi.Rows, tt.wantStart, tt.wantEnd, tt.wantRows)
			}
		})
	}
}

func TestComputeROI_ReferenceRowPositions(t *testing.T) {
	roi := ComputeROI(480, 5, 30)
	want := []int{240, 270, 300, 330, 360}

	for i, y := range want {
		if got := roi.RowY(i); got != y {
			t.Errorf("RowY(%d) = %d, want %d", i, got, y)
		}
	}
}

func TestComputeROI_InvariantHoldsEverywhere(t *testing.T) {
	for h := 1; h <= 720; h += 7 {
		for n := -1; n <= 12; n++ {
			for s := 0; s <= 90; s += 3 {
				for _, f := range []float64{0, 0.25, 0.5, 0.9} {
					roi := ComputeROIAt(h, n, s, f)

					if roi.YStart < 0 || roi.YStart >= roi.YEnd || roi.YEnd > h {
						t.Fatalf("h=%d n=%d s=%d f=%v: bad band [%d,%d)", h, n, s, f, roi.YStart, roi.YEnd)
					}
					if roi.Rows < 1 {
						t.Fatalf("h=%d n=%d s=%d f=%v: rows=%d", h, n, s, f, roi.Rows)
					}

					for i := 0; i < roi.Rows; i++ {
						y0, y1 := roi.Strip(i, 5)
						if y0 < 0 || y1 > h || y0 > y1 {
							t.Fatalf("h=%d n=%d s=%d f=%v: strip %d out of frame [%d,%d)", h, n, s, f, i, y0, y1)
						}
					}
				}
			}
		}
	}
}

func TestROI_StripClampsToBand(t *testing.T) {
	roi := ROI{YStart: 100, YEnd: 162, Rows: 3, Spacing: 30}

	y0, y1 := roi.Strip(2, 5)
	if y0 != 160 || y1 != 162 {
		t.Errorf("Strip(2) = [%d,%d), want [160,162)", y0, y1)
	}

	r := roi.StripRect(0, 5, 640)
	if r.Min.X != 0 || r.Max.X != 640 || r.Min.Y != 100 || r.Max.Y != 105 {
		t.Errorf("StripRect(0) = %v", r)
	}
}
