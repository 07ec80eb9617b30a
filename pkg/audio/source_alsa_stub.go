//go:build !linux

package audio

import (
	"fmt"
	"log/slog"
)

// newALSASource is unavailable off Linux.
func newALSASource(_ Config, _ *slog.Logger) (Source, error) {
	return nil, fmt.Errorf("ALSA capture is only available on linux")
}
