package protocol

import (
	"time"

	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// NewCycleData flattens a pipeline result and the command it produced.
func NewCycleData(seq uint64, res vision.Result, cmd Command, latency time.Duration) CycleData {
	rows := make([]RowData, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = RowData{
			Index: r.Index,
			Y:     r.Y,
			X:     r.X,
			Area:  r.Area,
			Found: r.Found,
		}
	}

	return CycleData{
		Seq:       seq,
		Rows:      rows,
		Found:     res.Offset.Found,
		Error:     res.Offset.Error,
		Mean:      res.Offset.Mean,
		Detected:  res.Offset.Detected,
		Message:   cmd.String(),
		LatencyMS: float64(latency.Microseconds()) / 1000,
	}
}

// NewGeometryData describes the strips a pipeline samples.
func NewGeometryData(cfg vision.Config, roi vision.ROI) GeometryData {
	strips := make([]StripData, roi.Rows)
	for i := range strips {
		y0, y1 := roi.Strip(i, cfg.StripHeight)
		strips[i] = StripData{Index: i, Y0: y0, Y1: y1}
	}

	return GeometryData{
		Width:   cfg.Width,
		Height:  cfg.Height,
		YStart:  roi.YStart,
		YEnd:    roi.YEnd,
		Rows:    roi.Rows,
		Spacing: roi.Spacing,
		Strips:  strips,
	}
}

// NewCycleMessage wraps a cycle in a telemetry envelope.
func NewCycleMessage(data CycleData) (*Message, error) {
	return NewMessage(TypeCycle, data)
}

// NewStatusMessage wraps a status snapshot in a telemetry envelope.
func NewStatusMessage(data StatusData) (*Message, error) {
	return NewMessage(TypeStatus, data)
}
