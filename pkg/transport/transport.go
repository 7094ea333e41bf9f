// Package transport delivers encoded control messages to the motor
// controller.
//
// Every implementation writes a message as a single unit: a message is
// either handed to the device completely or the send fails. Callers never
// see a message interleaved with another.
package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("transport: closed")

	// ErrWriteTimeout is returned when the device did not accept a message
	// within the configured write timeout. The link state is unknown after
	// a timeout, so the transport refuses further sends.
	ErrWriteTimeout = errors.New("transport: write timeout")

	// ErrShortWrite is returned when the device accepted only part of a message.
	ErrShortWrite = errors.New("transport: short write")
)

// Transport sends control messages.
type Transport interface {
	// Send writes msg in full or returns an error.
	Send(ctx context.Context, msg []byte) error

	// Close releases the link. It is safe to call more than once.
	Close() error
}

// WriteError reports a message that could not be delivered.
type WriteError struct {
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("transport: write failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Ensure implementations satisfy Transport
var (
	_ Transport = (*Serial)(nil)
	_ Transport = (*Writer)(nil)
	_ Transport = (*Recorder)(nil)
)
