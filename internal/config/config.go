// Package config provides environment configuration helpers for go-vigil commands.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the monitoring daemon.
const (
	DefaultDashboardPort = "8090"
	DefaultCameraDevice  = 0
	DefaultModelPath     = "models/face_detection_yunet.onnx"
)

// LoadDotenv loads a .env file from the working directory if present.
// Missing files are not an error; explicit env vars always win.
func LoadDotenv() {
	_ = godotenv.Load()
}

// DashboardPort returns the dashboard port from VIGIL_PORT or the default.
func DashboardPort() string {
	if p := os.Getenv("VIGIL_PORT"); p != "" {
		return p
	}
	return DefaultDashboardPort
}

// CameraDevice returns the capture device index from VIGIL_CAMERA.
func CameraDevice() int {
	if v := os.Getenv("VIGIL_CAMERA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultCameraDevice
}

// ModelPath returns the face detection model path from VIGIL_MODEL.
func ModelPath() string {
	if p := os.Getenv("VIGIL_MODEL"); p != "" {
		return p
	}
	return DefaultModelPath
}

// AudioDevice returns the audio capture device from VIGIL_AUDIO_DEVICE.
// Empty means the platform default.
func AudioDevice() string {
	return os.Getenv("VIGIL_AUDIO_DEVICE")
}

// AudioDisabled reports whether audio monitoring is disabled via
// VIGIL_NO_AUDIO. The daemon then runs video-only from the start.
func AudioDisabled() bool {
	v := os.Getenv("VIGIL_NO_AUDIO")
	return v == "1" || v == "true"
}

// LogLevel returns the log level from VIGIL_LOG_LEVEL or "info".
func LogLevel() string {
	if l := os.Getenv("VIGIL_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}
