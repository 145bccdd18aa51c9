package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// VideoFile reads frames from a finite video file. Timestamps come from the
// container's decode position, so they reflect the video's own clock rather
// than wall time.
type VideoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewVideoFile creates a Source for the video at the given path.
func NewVideoFile(path string) *VideoFile {
	return &VideoFile{path: path}
}

// Open opens the video file for decoding.
func (v *VideoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}

	v.capture = capture
	v.running = true

	return nil
}

// Close releases the decoder.
func (v *VideoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		v.running = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.running = false

	return err
}

// ReadFrame decodes the next frame. When the video is exhausted it returns
// ErrEndOfStream. The caller owns the returned Mat.
func (v *VideoFile) ReadFrame() (*gocv.Mat, int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return nil, 0, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok {
		mat.Close()
		return nil, 0, ErrEndOfStream
	}

	if mat.Empty() {
		mat.Close()
		return nil, 0, ErrEndOfStream
	}

	ts := int64(v.capture.Get(gocv.VideoCapturePosMsec))
	return &mat, ts, nil
}

// IsOpen reports whether the file is currently open.
func (v *VideoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// FPS returns the container's declared frame rate, or 0 when not open.
func (v *VideoFile) FPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return 0
	}
	return v.capture.Get(gocv.VideoCaptureFPS)
}

// FrameSize returns the frame dimensions, or zeros when not open.
func (v *VideoFile) FrameSize() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return 0, 0
	}
	return int(v.capture.Get(gocv.VideoCaptureFrameWidth)),
		int(v.capture.Get(gocv.VideoCaptureFrameHeight))
}
