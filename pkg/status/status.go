// Package status derives the overall monitoring status from the video
// and audio signals via a fixed precedence lattice.
package status

import (
	"fmt"

	"github.com/proctorlabs/go-vigil/pkg/audio"
)

// Level is the overall severity of the subject's current behavior.
type Level string

const (
	// Safe means normal behavior.
	Safe Level = "safe"
	// Warning means behavior worth a reviewer's glance.
	Warning Level = "warning"
	// Danger means behavior demanding attention.
	Danger Level = "danger"
)

// Severity orders levels for comparisons: safe < warning < danger.
func (l Level) Severity() int {
	switch l {
	case Danger:
		return 2
	case Warning:
		return 1
	default:
		return 0
	}
}

// DetectionResult is the video-side outcome of one tick.
type DetectionResult struct {
	FaceCount          int  `json:"face_count"`
	FacePresent        bool `json:"face_present"`
	LookingAway        bool `json:"looking_away"`
	EstimatedAttention int  `json:"estimated_attention"`
}

// Result is the aggregated status of one tick.
type Result struct {
	Status  Level  `json:"status"`
	Message string `json:"message"`
}

// Status messages. Alert deduplication keys on the exact message
// string, so these are produced only here.
const (
	MsgNoFace        = "No face detected in frame"
	MsgLookingAway   = "Looking away from screen frequently"
	MsgFaceTransient = "Face temporarily not visible"
	MsgSafe          = "Normal exam behavior"
	MsgNoise         = "Suspicious audio detected"
)

// MsgMultipleFaces formats the multi-face message for a face count.
func MsgMultipleFaces(count int) string {
	return fmt.Sprintf("Multiple faces detected (%d)", count)
}

// FaceDisappearanceThreshold is the number of consecutive faceless
// ticks after which absence stops being transient.
const FaceDisappearanceThreshold = 3

// Aggregate resolves the overall status for one tick.
//
// missedTicks is the count of consecutive ticks without a face. The
// rules apply in strict precedence; the first match wins:
//
//  1. absent for >= FaceDisappearanceThreshold ticks -> danger
//  2. more than one face                             -> danger
//  3. looking away                                   -> warning
//  4. absent for 1..2 ticks                          -> warning
//  5. otherwise                                      -> safe
//
// A noise flag from active audio monitoring upgrades safe to warning;
// audio never escalates beyond warning and never overrides a worse
// video-derived status.
func Aggregate(det DetectionResult, missedTicks int, aud audio.Result, audioActive bool) Result {
	switch {
	case !det.FacePresent && missedTicks >= FaceDisappearanceThreshold:
		return Result{Status: Danger, Message: MsgNoFace}
	case det.FaceCount > 1:
		return Result{Status: Danger, Message: MsgMultipleFaces(det.FaceCount)}
	case det.LookingAway:
		return Result{Status: Warning, Message: MsgLookingAway}
	case !det.FacePresent && missedTicks > 0:
		return Result{Status: Warning, Message: MsgFaceTransient}
	}

	if audioActive && aud.NoiseDetected {
		return Result{Status: Warning, Message: MsgNoise}
	}

	return Result{Status: Safe, Message: MsgSafe}
}
