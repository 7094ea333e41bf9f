package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/teslashibe/go-linefollow/internal/log"
)

// port is the subset of serial.Port the transport uses.
type port interface {
	io.Writer
	Close() error
}

// openPort opens the device 8N1. Replaced in tests.
var openPort = func(name string, baud int) (port, error) {
	return serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// Serial is a Transport over a serial port.
type Serial struct {
	cfg    SerialConfig
	logger *slog.Logger

	mu     sync.Mutex
	port   port
	closed bool
	broken error // set after a timeout; the port may still hold a partial write
	sent   uint64
}

// OpenSerial opens the configured port and waits out the settle delay.
// Cancelling ctx during the delay closes the port and returns ctx.Err().
func OpenSerial(ctx context.Context, cfg SerialConfig, logger *slog.Logger) (*Serial, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid serial config: %w", err)
	}
	logger = log.Or(logger, "transport")

	p, err := openPort(cfg.Port, cfg.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}

	logger.Info("serial port opened",
		"port", cfg.Port,
		"baud", cfg.BaudRate,
		"settle", cfg.SettleDelay,
	)

	if cfg.SettleDelay > 0 {
		timer := time.NewTimer(cfg.SettleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.Close()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &Serial{cfg: cfg, logger: logger, port: p}, nil
}

// Send writes msg, retrying failed writes up to WriteRetries times.
func (s *Serial) Send(ctx context.Context, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.broken != nil {
		return &WriteError{Attempts: 0, Err: s.broken}
	}

	var err error
	attempts := 0
	for attempts <= s.cfg.WriteRetries {
		attempts++
		if err = s.write(msg); err == nil {
			s.sent++
			return nil
		}
		if errors.Is(err, ErrWriteTimeout) {
			s.broken = err
			break
		}
		if attempts <= s.cfg.WriteRetries {
			if ctx.Err() != nil {
				break
			}
			s.logger.Warn("serial write failed, retrying",
				"attempt", attempts,
				"error", err,
			)
		}
	}

	return &WriteError{Attempts: attempts, Err: err}
}

// write performs one bounded write.
func (s *Serial) write(msg []byte) error {
	if s.cfg.WriteTimeout <= 0 {
		n, err := s.port.Write(msg)
		return checkWrite(n, len(msg), err)
	}

	done := make(chan error, 1)
	go func() {
		n, err := s.port.Write(msg)
		done <- checkWrite(n, len(msg), err)
	}()

	timer := time.NewTimer(s.cfg.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrWriteTimeout, s.cfg.WriteTimeout)
	}
}

func checkWrite(n, want int, err error) error {
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, want)
	}
	return nil
}

// Sent returns the number of messages written successfully.
func (s *Serial) Sent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Close closes the port. Subsequent calls return nil.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("close serial port %s: %w", s.cfg.Port, err)
	}
	s.logger.Info("serial port closed", "port", s.cfg.Port, "sent", s.sent)
	return nil
}
