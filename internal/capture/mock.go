package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockFrame is one scripted frame with its timestamp.
type MockFrame struct {
	Mat       *gocv.Mat
	Timestamp int64
}

// MockSource plays back a scripted sequence of timestamped frames for
// testing. Repeated timestamps let tests exercise the driver's
// already-processed-frame skip.
type MockSource struct {
	frames  []MockFrame
	index   int
	loop    bool
	mu      sync.Mutex
	running bool
	openErr error
}

// NewMockSource creates a MockSource over the given frames. With loop set,
// the sequence repeats forever (live-camera style); otherwise the source
// reports ErrEndOfStream when exhausted (video-file style).
func NewMockSource(frames []MockFrame, loop bool) *MockSource {
	return &MockSource{
		frames: frames,
		loop:   loop,
	}
}

// FailOpenWith makes the next Open call return the given error, simulating
// a missing or permission-denied device.
func (s *MockSource) FailOpenWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

func (s *MockSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openErr != nil {
		return s.openErr
	}

	s.running = true
	s.index = 0
	return nil
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *MockSource) ReadFrame() (*gocv.Mat, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, 0, ErrNotOpen
	}

	if len(s.frames) == 0 {
		return nil, 0, ErrEndOfStream
	}

	if s.index >= len(s.frames) {
		if !s.loop {
			return nil, 0, ErrEndOfStream
		}
		s.index = 0
	}

	f := s.frames[s.index]
	s.index++

	if f.Mat == nil {
		// Tests that only care about timestamps script nil mats; hand out
		// an empty placeholder the caller can still Close.
		mat := gocv.NewMat()
		return &mat, f.Timestamp, nil
	}

	// Clone so the caller's Close does not destroy the script.
	clone := f.Mat.Clone()
	return &clone, f.Timestamp, nil
}

func (s *MockSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Reset restarts playback from the beginning.
func (s *MockSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = 0
}
