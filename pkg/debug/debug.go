// Package debug provides global debug logging flags
package debug

import "fmt"

// Tracking controls whether verbose detection logs are shown (per-frame
// face boxes, landmark positions). Use --debug-tracking to enable.
var Tracking bool

// TrackLog prints a message only if tracking debug mode is enabled
func TrackLog(format string, args ...interface{}) {
	if Tracking {
		fmt.Printf(format, args...)
	}
}
