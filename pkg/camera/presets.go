package camera

import (
	"fmt"
	"strings"
)

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetLegacy  = "legacy"
	PresetQVGA    = "qvga"
	Preset720p    = "720p"
	PresetFast    = "fast"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetLegacy:  LegacyConfig(),
		PresetQVGA:    QVGAConfig(),
		Preset720p:    HD720Config(),
		PresetFast:    FastConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		PresetLegacy,
		PresetQVGA,
		Preset720p,
		PresetFast,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// ApplyPreset copies the resolution and frame rate of the named preset.
// Device and read retries are kept.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown camera preset %q (want one of %s)", name, strings.Join(PresetNames(), ", "))
	}
	c.Width, c.Height, c.Framerate = p.Width, p.Height, p.Framerate
	c.Preset = name
	return nil
}

// QVGAConfig returns 320x240 at 30 FPS.
func QVGAConfig() Config {
	cfg := LegacyConfig()
	cfg.Width = 320
	cfg.Height = 240
	return cfg
}

// HD720Config returns 720p HD configuration.
func HD720Config() Config {
	cfg := LegacyConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// FastConfig returns 640x480 at 60 FPS for cameras that support it.
func FastConfig() Config {
	cfg := LegacyConfig()
	cfg.Framerate = 60
	return cfg
}
