package telemetry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/teslashibe/go-linefollow/pkg/protocol"
)

// window keeps the most recent offsets in a ring.
type window struct {
	buf  []float64
	next int
	full bool
}

func newWindow(size int) *window {
	if size < 1 {
		size = 1
	}
	return &window{buf: make([]float64, size)}
}

func (w *window) add(v float64) {
	w.buf[w.next] = v
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		w.full = true
	}
}

func (w *window) values() []float64 {
	if w.full {
		return w.buf
	}
	return w.buf[:w.next]
}

// summary returns the mean and sample standard deviation of the window.
// Both are zero until there are enough samples to define them.
func (w *window) summary() protocol.StatsData {
	vals := w.values()
	s := protocol.StatsData{Window: len(vals)}
	switch len(vals) {
	case 0:
	case 1:
		s.Mean = vals[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	}
	return s
}
