// Package follower runs the capture, detect and send loop and owns every
// resource it uses.
//
// A cycle moves through the phases Captured, Detecting, Aggregating,
// Encoded and Sent. Nothing of a cycle reaches the transport before the
// message is fully encoded, and a cycle that fails leaves no partial state
// behind for the next one.
package follower

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/frame"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/transport"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Display shows annotated frames. Show reports whether the user asked to stop.
type Display interface {
	Show(img image.Image, res vision.Result) (quit bool, err error)
	Close() error
}

// Publisher receives a report of every cycle. Implementations must not block.
type Publisher interface {
	Publish(c protocol.CycleData)
	FrameError()
}

// Phase is how far a cycle got.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCaptured
	PhaseDetecting
	PhaseAggregating
	PhaseEncoded
	PhaseSent
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCaptured:
		return "captured"
	case PhaseDetecting:
		return "detecting"
	case PhaseAggregating:
		return "aggregating"
	case PhaseEncoded:
		return "encoded"
	case PhaseSent:
		return "sent"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Cycle is the outcome of one Step.
type Cycle struct {
	Seq     uint64
	Phase   Phase
	Frame   image.Image
	Result  vision.Result
	Command protocol.Command
	Latency time.Duration
}

// Stats counts what the loop has done so far.
type Stats struct {
	Cycles      uint64
	Stops       uint64
	FrameErrors uint64
	LastMessage string
}

// Follower drives one controller.
type Follower struct {
	cfg      Config
	pipeline *vision.Pipeline
	source   frame.Source
	tx       transport.Transport
	display  Display
	pub      Publisher
	logger   *slog.Logger

	seq     uint64
	stats   Stats
	statsMu sync.Mutex
	buf     []byte

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Follower.
type Option func(*Follower)

// WithDisplay shows every cycle in d.
func WithDisplay(d Display) Option {
	return func(f *Follower) { f.display = d }
}

// WithPublisher reports every cycle to p.
func WithPublisher(p Publisher) Option {
	return func(f *Follower) { f.pub = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Follower) { f.logger = l }
}

// New assembles a follower. It takes ownership of source and tx (and of
// the display, if any): Close releases them.
func New(cfg Config, p *vision.Pipeline, source frame.Source, tx transport.Transport, opts ...Option) (*Follower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid follower config: %w", err)
	}
	if p == nil || source == nil || tx == nil {
		return nil, errors.New("follower: pipeline, source and transport are required")
	}

	f := &Follower{
		cfg:      cfg,
		pipeline: p,
		source:   source,
		tx:       tx,
		buf:      make([]byte, 0, 16),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = log.Or(f.logger, "follower")
	return f, nil
}

// Run loops until ctx is done, the source is exhausted, the display asks to
// quit, or a fatal error occurs. Cancellation, exhaustion and quitting
// return nil. Run does not release resources; call Close.
func (f *Follower) Run(ctx context.Context) error {
	roi := f.pipeline.ROI()
	f.logger.Info("follower started",
		"rows", roi.Rows,
		"y_start", roi.YStart,
		"y_end", roi.YEnd,
		"max_frame_errors", f.cfg.MaxFrameErrors,
	)

	var (
		consecutive int
		started     = time.Now()
		pace        *time.Ticker
	)
	if f.cfg.Interval > 0 {
		pace = time.NewTicker(f.cfg.Interval)
		defer pace.Stop()
	}

	for {
		if ctx.Err() != nil {
			f.logger.Info("follower stopping", "reason", ctx.Err())
			return nil
		}

		cycle, err := f.Step(ctx)
		switch {
		case err == nil:
			consecutive = 0

		case ctx.Err() != nil:
			f.logger.Info("follower stopping", "reason", ctx.Err())
			return nil

		case cycle.Phase == PhaseIdle && errors.Is(err, io.EOF):
			f.logger.Info("frame source exhausted", "cycles", f.Stats().Cycles)
			return nil

		case cycle.Phase == PhaseIdle:
			consecutive++
			f.countFrameError()
			if consecutive > f.cfg.MaxFrameErrors {
				return fmt.Errorf("capture failed %d time(s) in a row: %w", consecutive, err)
			}
			f.logger.Warn("capture failed", "error", err, "consecutive", consecutive)
			continue

		default:
			return err
		}

		if f.display != nil {
			quit, err := f.display.Show(cycle.Frame, cycle.Result)
			if err != nil {
				f.logger.Warn("display failed, disabling it", "error", err)
				if err := release("display", f.display); err != nil {
					f.logger.Warn("display release failed", "error", err)
				}
				f.display = nil
			} else if quit {
				f.logger.Info("quit requested from display")
				return nil
			}
		}

		if n := f.cfg.HeartbeatEvery; n > 0 && cycle.Seq%uint64(n) == 0 {
			st := f.Stats()
			f.logger.Info("heartbeat",
				"cycles", st.Cycles,
				"stops", st.Stops,
				"frame_errors", st.FrameErrors,
				"last", st.LastMessage,
				"fps", float64(st.Cycles)/time.Since(started).Seconds(),
			)
		}

		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace.C:
			}
		}
	}
}

// Step runs one cycle: capture, detect, aggregate, encode and send. The
// returned Cycle records the phase reached, also on error.
func (f *Follower) Step(ctx context.Context) (Cycle, error) {
	var c Cycle

	img, err := f.source.Frame(ctx)
	if err != nil {
		return c, err
	}
	start := time.Now()
	c.Phase = PhaseCaptured
	c.Frame = img

	c.Phase = PhaseDetecting
	c.Result = f.pipeline.Process(img)

	c.Phase = PhaseAggregating
	c.Command = protocol.FromOffset(c.Result.Offset)

	f.buf = c.Command.AppendTo(f.buf[:0])
	c.Phase = PhaseEncoded

	if err := f.tx.Send(ctx, f.buf); err != nil {
		return c, fmt.Errorf("send %s: %w", c.Command, err)
	}
	c.Phase = PhaseSent
	c.Latency = time.Since(start)

	f.seq++
	c.Seq = f.seq
	f.record(c)

	f.logger.Debug("cycle",
		"seq", c.Seq,
		"message", c.Command.String(),
		"rows", c.Result.Offset.Detected,
		"latency", c.Latency,
	)

	if f.pub != nil {
		f.pub.Publish(protocol.NewCycleData(c.Seq, c.Result, c.Command, c.Latency))
	}
	return c, nil
}

func (f *Follower) record(c Cycle) {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	f.stats.Cycles++
	if c.Command.Stop {
		f.stats.Stops++
	}
	f.stats.LastMessage = c.Command.String()
}

func (f *Follower) countFrameError() {
	f.statsMu.Lock()
	f.stats.FrameErrors++
	f.statsMu.Unlock()
	if f.pub != nil {
		f.pub.FrameError()
	}
}

// Stats returns a snapshot of the counters.
func (f *Follower) Stats() Stats {
	f.statsMu.Lock()
	defer f.statsMu.Unlock()
	return f.stats
}

// Close releases the transport, the display and the frame source, in that
// order, exactly once. Every closer runs even if an earlier one fails or
// panics; the failures are joined.
func (f *Follower) Close() error {
	f.closeOnce.Do(func() {
		errs := []error{release("transport", f.tx)}
		if f.display != nil {
			errs = append(errs, release("display", f.display))
		}
		errs = append(errs, release("frame source", f.source))

		f.closeErr = errors.Join(errs...)
		if f.closeErr != nil {
			f.logger.Error("release failed", "error", f.closeErr)
		} else {
			f.logger.Info("resources released", "cycles", f.Stats().Cycles)
		}
	})
	return f.closeErr
}

// release closes c. A panicking closer is reported as an error.
func release(name string, c io.Closer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("close %s: panic: %v", name, r)
		}
	}()
	if cerr := c.Close(); cerr != nil {
		return fmt.Errorf("close %s: %w", name, cerr)
	}
	return nil
}
