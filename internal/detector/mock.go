package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to script the per-frame detection results.
type MockDetector struct {
	mu         sync.Mutex
	fixed      *PoseLandmarks
	sequence   []*PoseLandmarks
	idx        int
	err        error
	timestamps []int64
	closed     bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets a single pose returned for every frame. Pass nil to simulate
// "no person detected".
func (m *MockDetector) SetPose(pose *PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed = pose
	m.sequence = nil
	m.idx = 0
}

// SetSequence scripts one result per Detect call, in order. A nil entry
// simulates a frame with no person detected. After the sequence is
// exhausted, Detect reports no detection.
func (m *MockDetector) SetSequence(poses []*PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = poses
	m.idx = 0
	m.fixed = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Timestamps returns the timestamps passed to Detect, in call order.
func (m *MockDetector) Timestamps() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.timestamps))
	copy(out, m.timestamps)
	return out
}

// Detect returns the next scripted result.
func (m *MockDetector) Detect(frame *gocv.Mat, timestampMs int64) (*PoseLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timestamps = append(m.timestamps, timestampMs)

	if m.err != nil {
		return nil, m.err
	}

	if m.sequence != nil {
		if m.idx >= len(m.sequence) {
			return nil, nil
		}
		pose := m.sequence[m.idx]
		m.idx++
		return pose, nil
	}

	return m.fixed, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PoseWithJointAngle returns a full-body pose where the middle joint of the
// given triple sits at the requested angle, in degrees. All other landmarks
// hold the StandingPose positions. Useful for driving the rep counter with
// known geometry.
func PoseWithJointAngle(joints [3]int, angleDeg float64) PoseLandmarks {
	pose := StandingPose()

	// Keep the proximal->vertex segment fixed and swing the distal point
	// around the vertex by the requested angle.
	proximal := pose.Points[joints[0]]
	vertex := pose.Points[joints[1]]

	base := math.Atan2(proximal.Y-vertex.Y, proximal.X-vertex.X)
	theta := base + angleDeg*math.Pi/180

	const reach = 0.18
	pose.Points[joints[2]] = Point3D{
		X: vertex.X + reach*math.Cos(theta),
		Y: vertex.Y + reach*math.Sin(theta),
		Z: vertex.Z,
	}

	return pose
}

// StandingPose returns a preset PoseLandmarks for a person standing upright,
// facing the camera, arms at the sides. Coordinates are frame-normalized.
func StandingPose() PoseLandmarks {
	pose := PoseLandmarks{Score: 0.95}

	pose.Points[Nose] = Point3D{X: 0.50, Y: 0.10, Z: -0.05}
	pose.Points[LeftEyeInner] = Point3D{X: 0.51, Y: 0.09, Z: -0.05}
	pose.Points[LeftEye] = Point3D{X: 0.52, Y: 0.09, Z: -0.05}
	pose.Points[LeftEyeOuter] = Point3D{X: 0.53, Y: 0.09, Z: -0.05}
	pose.Points[RightEyeInner] = Point3D{X: 0.49, Y: 0.09, Z: -0.05}
	pose.Points[RightEye] = Point3D{X: 0.48, Y: 0.09, Z: -0.05}
	pose.Points[RightEyeOuter] = Point3D{X: 0.47, Y: 0.09, Z: -0.05}
	pose.Points[LeftEar] = Point3D{X: 0.55, Y: 0.10, Z: -0.02}
	pose.Points[RightEar] = Point3D{X: 0.45, Y: 0.10, Z: -0.02}
	pose.Points[MouthLeft] = Point3D{X: 0.51, Y: 0.12, Z: -0.04}
	pose.Points[MouthRight] = Point3D{X: 0.49, Y: 0.12, Z: -0.04}

	pose.Points[LeftShoulder] = Point3D{X: 0.58, Y: 0.22, Z: 0.0}
	pose.Points[RightShoulder] = Point3D{X: 0.42, Y: 0.22, Z: 0.0}
	pose.Points[LeftElbow] = Point3D{X: 0.60, Y: 0.38, Z: 0.0}
	pose.Points[RightElbow] = Point3D{X: 0.40, Y: 0.38, Z: 0.0}
	pose.Points[LeftWrist] = Point3D{X: 0.61, Y: 0.52, Z: 0.0}
	pose.Points[RightWrist] = Point3D{X: 0.39, Y: 0.52, Z: 0.0}
	pose.Points[LeftPinky] = Point3D{X: 0.62, Y: 0.56, Z: 0.0}
	pose.Points[RightPinky] = Point3D{X: 0.38, Y: 0.56, Z: 0.0}
	pose.Points[LeftIndex] = Point3D{X: 0.62, Y: 0.55, Z: 0.0}
	pose.Points[RightIndex] = Point3D{X: 0.38, Y: 0.55, Z: 0.0}
	pose.Points[LeftThumb] = Point3D{X: 0.61, Y: 0.55, Z: 0.0}
	pose.Points[RightThumb] = Point3D{X: 0.39, Y: 0.55, Z: 0.0}

	pose.Points[LeftHip] = Point3D{X: 0.55, Y: 0.52, Z: 0.0}
	pose.Points[RightHip] = Point3D{X: 0.45, Y: 0.52, Z: 0.0}
	pose.Points[LeftKnee] = Point3D{X: 0.55, Y: 0.72, Z: 0.0}
	pose.Points[RightKnee] = Point3D{X: 0.45, Y: 0.72, Z: 0.0}
	pose.Points[LeftAnkle] = Point3D{X: 0.55, Y: 0.90, Z: 0.0}
	pose.Points[RightAnkle] = Point3D{X: 0.45, Y: 0.90, Z: 0.0}
	pose.Points[LeftHeel] = Point3D{X: 0.55, Y: 0.93, Z: 0.0}
	pose.Points[RightHeel] = Point3D{X: 0.45, Y: 0.93, Z: 0.0}
	pose.Points[LeftFootIndex] = Point3D{X: 0.57, Y: 0.95, Z: -0.02}
	pose.Points[RightFootIndex] = Point3D{X: 0.43, Y: 0.95, Z: -0.02}

	return pose
}
