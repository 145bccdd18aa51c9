package detector

import "gocv.io/x/gocv"

// Detector defines the interface for body pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame taken at the given timestamp (milliseconds,
	// monotonically increasing within a session) and returns the detected pose.
	// Returns (nil, nil) when no person is detected in the frame.
	Detect(frame *gocv.Mat, timestampMs int64) (*PoseLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the pose service script location. Empty means
	// search the usual locations.
	ScriptPath string

	// PythonPath overrides the Python interpreter. Empty means search for a
	// virtualenv interpreter, falling back to python3 on PATH.
	PythonPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
