package config

import "os"

// Environment variables that override the configuration file.
const (
	EnvSerialPort    = "LINEFOLLOW_SERIAL_PORT"
	EnvCameraDevice  = "LINEFOLLOW_CAMERA_DEVICE"
	EnvTelemetryAddr = "LINEFOLLOW_TELEMETRY_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
)

// SerialPort returns the serial device from LINEFOLLOW_SERIAL_PORT.
// Falls back to the provided default if not set.
func SerialPort(def string) string {
	return envOr(EnvSerialPort, def)
}

// CameraDevice returns the camera from LINEFOLLOW_CAMERA_DEVICE.
// Falls back to the provided default if not set.
func CameraDevice(def string) string {
	return envOr(EnvCameraDevice, def)
}

// TelemetryAddr returns the listen address from LINEFOLLOW_TELEMETRY_ADDR.
// Falls back to the provided default if not set.
func TelemetryAddr(def string) string {
	return envOr(EnvTelemetryAddr, def)
}

// LogLevel returns the level from LOG_LEVEL.
// Falls back to the provided default if not set.
func LogLevel(def string) string {
	return envOr(EnvLogLevel, def)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
