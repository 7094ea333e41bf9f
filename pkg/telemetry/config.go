// Package telemetry serves controller status over HTTP and streams every
// control cycle to websocket subscribers. Publishing never blocks the
// control loop: a slow or absent audience only loses messages.
package telemetry

import "errors"

// Config configures the telemetry server.
type Config struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`

	// StatsWindow is how many recent offsets the rolling statistics cover.
	StatsWindow int `yaml:"stats_window" json:"stats_window"`
}

// DefaultConfig returns a disabled server on :8090.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Addr:        ":8090",
		StatsWindow: 100,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Enabled && c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.StatsWindow < 1 {
		errs = append(errs, errors.New("stats_window must be at least 1"))
	}
	return errors.Join(errs...)
}
