package vision

import "testing"

func present(xs ...int) []RowResult {
	rows := make([]RowResult, len(xs))
	for i, x := range xs {
		rows[i] = RowResult{Index: i, X: x, Found: true}
	}
	return rows
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		rows      []RowResult
		width     int
		wantFound bool
		wantMean  int
		wantError int
	}{
		{
			name:      "no rows",
			rows:      nil,
			width:     640,
			wantFound: false,
		},
		{
			name:      "all rows absent",
			rows:      make([]RowResult, 5),
			width:     640,
			wantFound: false,
		},
		{
			name:      "left of centre",
			rows:      present(300, 300, 300),
			width:     640,
			wantFound: true, wantMean: 300, wantError: -20,
		},
		{
			name:      "exactly centred is zero, not no-line",
			rows:      present(320),
			width:     640,
			wantFound: true, wantMean: 320, wantError: 0,
		},
		{
			name:      "right of centre",
			rows:      present(350, 350, 350, 350, 350),
			width:     640,
			wantFound: true, wantMean: 350, wantError: 30,
		},
		{
			name:      "fractional mean floors",
			rows:      present(301, 302),
			width:     640,
			wantFound: true, wantMean: 301, wantError: -19,
		},
		{
			name:      "fractional mean just left of centre floors away from zero",
			rows:      present(319, 320),
			width:     640,
			wantFound: true, wantMean: 319, wantError: -1,
		},
		{
			name:      "odd width floors the centre",
			rows:      present(2),
			width:     5,
			wantFound: true, wantMean: 2, wantError: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.rows, tt.width)
			if got.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", got.Found, tt.wantFound)
			}
			if !tt.wantFound {
				return
			}
			if got.Mean != tt.wantMean || got.Error != tt.wantError {
				t.Errorf("got mean=%d error=%d, want mean=%d error=%d",
					got.Mean, got.Error, tt.wantMean, tt.wantError)
			}
		})
	}
}

func TestAggregate_RowIndependence(t *testing.T) {
	// The same centroids spread across different rows, with gaps elsewhere.
	layouts := [][]RowResult{
		{{X: 310, Found: true}, {X: 330, Found: true}, {}, {}, {X: 361, Found: true}},
		{{}, {X: 361, Found: true}, {X: 310, Found: true}, {X: 330, Found: true}, {}},
		{{}, {}, {X: 330, Found: true}, {X: 361, Found: true}, {X: 310, Found: true}},
	}

	want := Aggregate(layouts[0], 640)
	for i, rows := range layouts[1:] {
		if got := Aggregate(rows, 640); got != want {
			t.Errorf("layout %d: got %+v, want %+v", i+1, got, want)
		}
	}
	if want.Detected != 3 || want.Mean != 333 || want.Error != 13 {
		t.Errorf("unexpected aggregate %+v", want)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 2, 3},
		{6, 2, 3},
		{-7, 2, -4},
		{-6, 2, -3},
		{-1, 3, -1},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
