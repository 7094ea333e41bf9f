package follower

import (
	"errors"
	"time"
)

// Config tunes the run loop.
type Config struct {
	// MaxFrameErrors is how many consecutive failed captures are tolerated.
	// Zero makes the first failure fatal.
	MaxFrameErrors int `yaml:"max_frame_errors" json:"max_frame_errors"`

	// HeartbeatEvery logs a summary every this many cycles. Zero disables it.
	HeartbeatEvery int `yaml:"heartbeat_every" json:"heartbeat_every"`

	// Interval is the minimum time between cycle starts. Zero runs as fast
	// as frames arrive.
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// DefaultConfig returns the reference loop: no tolerance, no pacing.
func DefaultConfig() Config {
	return Config{
		MaxFrameErrors: 0,
		HeartbeatEvery: 100,
		Interval:       0,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.MaxFrameErrors < 0 {
		errs = append(errs, errors.New("max_frame_errors must not be negative"))
	}
	if c.HeartbeatEvery < 0 {
		errs = append(errs, errors.New("heartbeat_every must not be negative"))
	}
	if c.Interval < 0 {
		errs = append(errs, errors.New("interval must not be negative"))
	}
	return errors.Join(errs...)
}
