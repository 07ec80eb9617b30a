// Package camera provides the capture-side frame source for monitoring.
// This follows the same pattern as pkg/analysis for tunable parameters.
package camera

// Config holds the camera configuration parameters.
type Config struct {
	// === Resolution ===
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Target FPS
	Quality   int `json:"quality"`   // JPEG quality 1-100

	// Device is the capture device index (v4l2 /dev/videoN).
	Device int `json:"device"`
}

// DefaultConfig returns the reference 640x480 configuration the
// movement thresholds are calibrated against.
func DefaultConfig() Config {
	return Config{
		Width:     640,
		Height:    480,
		Framerate: 15,
		Quality:   85,
		Device:    0,
	}
}

// HighResConfig returns a 720p configuration. Movement thresholds are
// rescaled by the analysis config when the width departs from 640.
func HighResConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.Device < 0 {
		errors = append(errors, "device index must not be negative")
	}

	return errors
}
