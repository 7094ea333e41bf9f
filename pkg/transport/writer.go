package transport

import (
	"context"
	"io"
	"sync"
)

// Writer is a Transport over any io.Writer, e.g. stdout for dry runs or a
// pipe to a simulated controller. Close does not close the underlying writer.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewWriter returns a Transport writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send writes msg in a single call.
func (t *Writer) Send(_ context.Context, msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	n, err := t.w.Write(msg)
	if err = checkWrite(n, len(msg), err); err != nil {
		return &WriteError{Attempts: 1, Err: err}
	}
	return nil
}

// Close marks the transport closed.
func (t *Writer) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

// Recorder is an in-memory Transport for tests.
type Recorder struct {
	mu       sync.Mutex
	messages [][]byte
	closes   int

	// FailAfter makes Send fail once this many messages have been
	// recorded. Zero disables failures.
	FailAfter int
	// Err is the error returned by failing sends.
	Err error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records a copy of msg.
func (r *Recorder) Send(_ context.Context, msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closes > 0 {
		return ErrClosed
	}
	if r.FailAfter > 0 && len(r.messages) >= r.FailAfter {
		err := r.Err
		if err == nil {
			err = ErrWriteTimeout
		}
		return &WriteError{Attempts: 1, Err: err}
	}
	r.messages = append(r.messages, append([]byte(nil), msg...))
	return nil
}

// Close records the call.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closes++
	r.mu.Unlock()
	return nil
}

// Messages returns the recorded messages as strings.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = string(m)
	}
	return out
}

// Closes returns how many times Close was called.
func (r *Recorder) Closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}
