package transport

import (
	"errors"
	"time"
)

// SerialConfig configures the serial link to the motor controller.
type SerialConfig struct {
	Port     string `yaml:"port" json:"port"`
	BaudRate int    `yaml:"baud_rate" json:"baud_rate"`

	// WriteTimeout bounds a single write. Zero disables the bound.
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`

	// SettleDelay is waited after opening the port. Arduino-class boards
	// reset when the port opens and drop bytes until they boot.
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay"`

	// WriteRetries is how many times a failed write is retried. Timeouts
	// are never retried.
	WriteRetries int `yaml:"write_retries" json:"write_retries"`
}

// DefaultSerialConfig returns the settings of the reference controller.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Port:         "/dev/ttyACM0",
		BaudRate:     9600,
		WriteTimeout: time.Second,
		SettleDelay:  2 * time.Second,
		WriteRetries: 0,
	}
}

// Validate checks the configuration.
func (c SerialConfig) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.BaudRate <= 0 {
		errs = append(errs, errors.New("baud_rate must be positive"))
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, errors.New("write_timeout must not be negative"))
	}
	if c.SettleDelay < 0 {
		errs = append(errs, errors.New("settle_delay must not be negative"))
	}
	if c.WriteRetries < 0 {
		errs = append(errs, errors.New("write_retries must not be negative"))
	}
	return errors.Join(errs...)
}
