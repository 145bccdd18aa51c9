// Package session drives the per-frame rep counting pipeline: it pulls
// timestamped frames from a capture source, runs pose detection, measures
// the tracked joint angle, and feeds the repetition counter. It supports a
// live camera mode (Tracker) and a finite video mode (AnalyzeVideo).
package session

import (
	"time"

	"github.com/Abhijeet1520/healthy-world/internal/exercise"
)

// Status describes the lifecycle of a live tracking session. A camera or
// permission failure is reported as its own status so callers can tell
// "cannot track" apart from "tracking, zero reps so far".
type Status string

const (
	// StatusIdle means the session has not been started.
	StatusIdle Status = "idle"
	// StatusRunning means the pipeline is processing frames.
	StatusRunning Status = "running"
	// StatusStopped means the session ran and was stopped.
	StatusStopped Status = "stopped"
	// StatusCameraUnavailable means the capture device could not be
	// acquired: missing, busy, or permission denied.
	StatusCameraUnavailable Status = "camera-unavailable"
	// StatusDetectorFailed means the pose detector could not be created
	// or initialized. Fatal for the session; the caller may retry Start.
	StatusDetectorFailed Status = "detector-failed"
)

// Update is one pipeline observation published to the session's consumer.
type Update struct {
	Exercise    string         `json:"exercise"`
	Reps        int            `json:"reps"`
	Phase       exercise.Phase `json:"phase"`
	Angle       float64        `json:"angle"`
	TimestampMs int64          `json:"timestampMs"`
}

// UpdateFunc receives updates whenever the rep count changes. It is called
// from the pipeline goroutine; implementations must not block for long.
type UpdateFunc func(Update)

// Result is the final outcome of a completed session.
type Result struct {
	Exercise string        `json:"exercise"`
	Reps     int           `json:"reps"`
	Frames   int           `json:"framesProcessed"`
	Duration time.Duration `json:"-"`
}
