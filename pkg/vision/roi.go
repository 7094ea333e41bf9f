package vision

import (
	"image"
	"math"
)

// ROI is the horizontal band of the frame that is sampled for the line.
// It is computed once at startup and shared read-only by every cycle.
type ROI struct {
	YStart  int `json:"y_start"` // First frame row of the band (inclusive)
	YEnd    int `json:"y_end"`   // Last frame row of the band (exclusive)
	Rows    int `json:"rows"`    // Effective number of detection rows
	Spacing int `json:"spacing"` // Distance between consecutive rows
}

// ComputeROI places the band halfway down a frame of the given height.
func ComputeROI(height, rows, spacing int) ROI {
	return ComputeROIAt(height, rows, spacing, 0.5)
}

// ComputeROIAt places the band at floor(height*startFraction) and clamps it
// to the frame. When the requested rows do not fit, the band is pushed up;
// when it would start above the frame, the row count is reduced instead.
//
// The result always satisfies 0 <= YStart < YEnd <= height and Rows >= 1
// for height >= 1. Non-positive rows or spacing are treated as 1.
func ComputeROIAt(height, rows, spacing int, startFraction float64) ROI {
	if height < 1 {
		height = 1
	}
	if rows < 1 {
		rows = 1
	}
	if spacing < 1 {
		spacing = 1
	}
	if startFraction < 0 || startFraction >= 1 {
		startFraction = 0.5
	}

	start := int(math.Floor(float64(height) * startFraction))
	end := start + rows*spacing

	if end > height {
		end = height
		start = end - rows*spacing
		if start < 0 {
			start = 0
			rows = (end - start) / spacing
		}
	}

	// A frame shorter than one spacing still gets a single row.
	if rows < 1 {
		rows = 1
	}

	return ROI{
		YStart:  start,
		YEnd:    end,
		Rows:    rows,
		Spacing: spacing,
	}
}

// Height returns the band height in pixels.
func (r ROI) Height() int {
	return r.YEnd - r.YStart
}

// RowY returns the frame row where detection row i starts.
func (r ROI) RowY(i int) int {
	return r.YStart + i*r.Spacing
}

// Strip returns the frame rows [y0, y1) sampled for detection row i.
// The strip never extends past the end of the band.
func (r ROI) Strip(i, stripHeight int) (y0, y1 int) {
	y0 = r.RowY(i)
	y1 = y0 + stripHeight
	if y1 > r.YEnd {
		y1 = r.YEnd
	}
	if y0 > y1 {
		y0 = y1
	}
	return y0, y1
}

// StripRect returns detection row i as a rectangle spanning the full width.
func (r ROI) StripRect(i, stripHeight, width int) image.Rectangle {
	y0, y1 := r.Strip(i, stripHeight)
	return image.Rect(0, y0, width, y1)
}

// Rect returns the whole band as a rectangle spanning the full width.
func (r ROI) Rect(width int) image.Rectangle {
	return image.Rect(0, r.YStart, width, r.YEnd)
}
