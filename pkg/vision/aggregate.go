package vision

// RowResult is the outcome of one detection row.
type RowResult struct {
	Index int  `json:"index"` // Row number within the ROI
	Y     int  `json:"y"`     // Frame row where the strip starts
	X     int  `json:"x"`     // Centroid x in frame coordinates, valid only if Found
	Area  int  `json:"area"`  // Region size in pixels, valid only if Found
	Found bool `json:"found"`
}

// Offset is the aggregated line position for one frame.
type Offset struct {
	Error    int  `json:"error"`    // Mean centroid minus half the frame width
	Mean     int  `json:"mean"`     // Mean centroid x
	Detected int  `json:"detected"` // Rows that contributed
	Found    bool `json:"found"`    // False means no row saw the line
}

// Aggregate averages the centroids of the rows that found the line and
// measures them against the frame centre. Both the mean and the half width
// use floor division. Rows without a detection are skipped, so only the set
// of present centroids matters, not which rows produced them.
func Aggregate(rows []RowResult, width int) Offset {
	sum, n := 0, 0
	for _, r := range rows {
		if !r.Found {
			continue
		}
		sum += r.X
		n++
	}

	if n == 0 {
		return Offset{}
	}

	mean := floorDiv(sum, n)
	return Offset{
		Error:    mean - floorDiv(width, 2),
		Mean:     mean,
		Detected: n,
		Found:    true,
	}
}

// floorDiv divides rounding toward negative infinity. b must be positive.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
