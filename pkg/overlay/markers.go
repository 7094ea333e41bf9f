package overlay

import (
	"image"
	"image/color"

	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Marker is a filled circle.
type Marker struct {
	Center image.Point
	Radius int
	Color  color.RGBA
}

// Segment is a straight line.
type Segment struct {
	From, To image.Point
	Color    color.RGBA
}

// Scene is everything drawn for one frame.
type Scene struct {
	Markers  []Marker
	Segments []Segment
}

// Layout computes the overlay for one cycle: the ROI bounds, and for every
// detected row a centre marker with one marker either side.
func Layout(res vision.Result, roi vision.ROI, width int, cfg Config, pal Palette) Scene {
	var s Scene

	s.Segments = []Segment{
		{From: image.Pt(0, roi.YStart), To: image.Pt(width-1, roi.YStart), Color: pal.Bounds},
		{From: image.Pt(0, roi.YEnd-1), To: image.Pt(width-1, roi.YEnd-1), Color: pal.Bounds},
	}

	for _, row := range res.Rows {
		if !row.Found {
			continue
		}
		y := roi.RowY(row.Index)
		s.Markers = append(s.Markers,
			Marker{Center: image.Pt(row.X, y), Radius: cfg.MarkerRadius, Color: pal.Centre},
			Marker{Center: image.Pt(row.X+cfg.MarkerOffset, y), Radius: cfg.MarkerRadius, Color: pal.Right},
			Marker{Center: image.Pt(row.X-cfg.MarkerOffset, y), Radius: cfg.MarkerRadius, Color: pal.Left},
		)
	}

	return s
}
