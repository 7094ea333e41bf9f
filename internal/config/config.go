// Package config assembles the startup configuration of the linefollow
// commands: defaults, then an optional YAML file, then environment
// overrides. Command-line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-linefollow/pkg/camera"
	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/overlay"
	"github.com/teslashibe/go-linefollow/pkg/telemetry"
	"github.com/teslashibe/go-linefollow/pkg/transport"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Frame source kinds.
const (
	SourceCamera    = "camera"
	SourceFiles     = "files"
	SourceSynthetic = "synthetic"
)

// SourceConfig selects where frames come from.
type SourceConfig struct {
	Kind string `yaml:"kind" json:"kind"`

	// Files and Loop configure the files source.
	Files []string `yaml:"files" json:"files,omitempty"`
	Loop  bool     `yaml:"loop" json:"loop"`

	// BarX and BarWidth configure the synthetic source's single line.
	BarX     int `yaml:"bar_x" json:"bar_x"`
	BarWidth int `yaml:"bar_width" json:"bar_width"`
	Drift    int `yaml:"drift" json:"drift"`
}

// Config is the complete controller configuration.
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DryRun writes control messages to stdout instead of the serial port.
	DryRun bool `yaml:"dry_run" json:"dry_run"`

	Vision    vision.Config          `yaml:"vision" json:"vision"`
	Source    SourceConfig           `yaml:"source" json:"source"`
	Camera    camera.Config          `yaml:"camera" json:"camera"`
	Serial    transport.SerialConfig `yaml:"serial" json:"serial"`
	Display   overlay.Config         `yaml:"display" json:"display"`
	Telemetry telemetry.Config       `yaml:"telemetry" json:"telemetry"`
	Follower  follower.Config        `yaml:"follower" json:"follower"`
}

// Default returns the reference configuration: camera 0 at 640x480, five
// rows 30 px apart from mid-frame, gray threshold 80, /dev/ttyACM0 at 9600.
func Default() Config {
	return Config{
		LogLevel: "info",
		Vision:   vision.DefaultConfig(),
		Source: SourceConfig{
			Kind:     SourceCamera,
			BarX:     320,
			BarWidth: 20,
		},
		Camera:    camera.DefaultConfig(),
		Serial:    transport.DefaultSerialConfig(),
		Display:   overlay.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
		Follower:  follower.DefaultConfig(),
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// not empty) and the environment. The result is not validated: callers
// apply their flags first and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// Parse overlays YAML from data onto the defaults without applying the
// environment or validating.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode applies camera.preset first, so keys set explicitly in the same
// document still win over the preset.
func (c *Config) decode(data []byte) error {
	var head struct {
		Camera struct {
			Preset string `yaml:"preset"`
		} `yaml:"camera"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Camera.Preset != "" {
		if err := c.ApplyCameraPreset(head.Camera.Preset); err != nil {
			return err
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyCameraPreset switches the camera to a named preset and makes the
// detection frame size follow it.
func (c *Config) ApplyCameraPreset(name string) error {
	if err := c.Camera.ApplyPreset(name); err != nil {
		return err
	}
	c.Vision.Width = c.Camera.Width
	c.Vision.Height = c.Camera.Height
	return nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	c.Serial.Port = SerialPort(c.Serial.Port)
	c.Camera.Device = CameraDevice(c.Camera.Device)
	c.Telemetry.Addr = TelemetryAddr(c.Telemetry.Addr)
	c.LogLevel = LogLevel(c.LogLevel)
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}

	add("vision", c.Vision.Validate())
	add("serial", c.Serial.Validate())
	add("display", c.Display.Validate())
	add("telemetry", c.Telemetry.Validate())
	add("follower", c.Follower.Validate())

	switch c.Source.Kind {
	case SourceCamera:
		add("camera", c.Camera.Err())
	case SourceFiles:
		if len(c.Source.Files) == 0 {
			add("source", errors.New("files source needs at least one file"))
		}
	case SourceSynthetic:
		if c.Source.BarWidth < 0 {
			add("source", errors.New("bar_width must not be negative"))
		}
	default:
		add("source", fmt.Errorf("unknown kind %q (want %s, %s or %s)",
			c.Source.Kind, SourceCamera, SourceFiles, SourceSynthetic))
	}

	return errors.Join(errs...)
}
