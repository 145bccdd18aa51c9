// Package capture provides timestamped video frame sources using GoCV
// (OpenCV): live cameras, finite video files, and a scripted source for tests.
package capture

import (
	"errors"

	"gocv.io/x/gocv"
)

// Errors reported by frame sources.
var (
	// ErrNotOpen is returned when reading from a source that is not open.
	ErrNotOpen = errors.New("capture source is not open")

	// ErrCameraUnavailable wraps camera open failures: the device is absent,
	// busy, or access was denied. Callers surface this distinctly from
	// "tracking not started".
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrEndOfStream is returned by finite sources when the last frame has
	// been delivered.
	ErrEndOfStream = errors.New("end of stream")
)

// Source is a stream of timestamped video frames. Timestamps are in
// milliseconds and increase monotonically within one open stream; a repeated
// timestamp means the underlying medium has not produced a new frame yet.
type Source interface {
	// Open acquires the underlying device or file.
	Open() error

	// ReadFrame returns the next frame and its timestamp. The caller owns
	// the returned Mat and must Close it.
	ReadFrame() (*gocv.Mat, int64, error)

	// Close releases the underlying device or file.
	Close() error

	// IsOpen reports whether the source is currently open.
	IsOpen() bool
}
