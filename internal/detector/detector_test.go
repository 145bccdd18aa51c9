package detector

import (
	"errors"
	"testing"
)

func TestMockDetector_FixedPose(t *testing.T) {
	mock := NewMockDetector()
	pose := StandingPose()
	mock.SetPose(&pose)

	for i := 0; i < 3; i++ {
		got, err := mock.Detect(nil, int64(i*33))
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if got == nil {
			t.Fatal("expected a pose, got nil")
		}
		if got.Score != 0.95 {
			t.Errorf("score = %f, want 0.95", got.Score)
		}
	}
}

func TestMockDetector_Sequence(t *testing.T) {
	mock := NewMockDetector()
	first := StandingPose()
	third := StandingPose()
	mock.SetSequence([]*PoseLandmarks{&first, nil, &third})

	got, _ := mock.Detect(nil, 0)
	if got == nil {
		t.Error("frame 0: expected a pose")
	}

	got, _ = mock.Detect(nil, 33)
	if got != nil {
		t.Error("frame 1: expected no detection")
	}

	got, _ = mock.Detect(nil, 66)
	if got == nil {
		t.Error("frame 2: expected a pose")
	}

	// Past the end of the sequence, the mock reports no detection.
	got, _ = mock.Detect(nil, 99)
	if got != nil {
		t.Error("frame 3: expected no detection after sequence end")
	}
}

func TestMockDetector_Error(t *testing.T) {
	mock := NewMockDetector()
	wantErr := errors.New("inference stalled")
	mock.SetError(wantErr)

	_, err := mock.Detect(nil, 0)
	if !errors.Is(err, wantErr) {
		t.Errorf("Detect() error = %v, want %v", err, wantErr)
	}
}

func TestMockDetector_RecordsTimestamps(t *testing.T) {
	mock := NewMockDetector()

	want := []int64{0, 33, 66, 100}
	for _, ts := range want {
		mock.Detect(nil, ts)
	}

	got := mock.Timestamps()
	if len(got) != len(want) {
		t.Fatalf("recorded %d timestamps, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("timestamp[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestStandingPose_NormalizedCoordinates(t *testing.T) {
	pose := StandingPose()

	for i, p := range pose.Points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Errorf("landmark %d = (%f, %f) outside [0,1]", i, p.X, p.Y)
		}
	}
}

func TestPoseLandmarks_Joints(t *testing.T) {
	pose := StandingPose()

	p1, p2, p3 := pose.Joints([3]int{LeftShoulder, LeftElbow, LeftWrist})

	if p1 != pose.Points[LeftShoulder] {
		t.Errorf("proximal = %v, want left shoulder %v", p1, pose.Points[LeftShoulder])
	}
	if p2 != pose.Points[LeftElbow] {
		t.Errorf("vertex = %v, want left elbow %v", p2, pose.Points[LeftElbow])
	}
	if p3 != pose.Points[LeftWrist] {
		t.Errorf("distal = %v, want left wrist %v", p3, pose.Points[LeftWrist])
	}
}

func TestJSONPose_Truncation(t *testing.T) {
	// A service response with more points than the fixed topology keeps
	// only the first NumLandmarks entries.
	raw := jsonPose{Score: 0.9}
	for i := 0; i < NumLandmarks+5; i++ {
		raw.Points = append(raw.Points, jsonPoint{X: float64(i), Y: 0, Z: 0})
	}

	lm := raw.toPoseLandmarks()
	if lm.Points[NumLandmarks-1].X != float64(NumLandmarks-1) {
		t.Errorf("last landmark X = %f, want %d", lm.Points[NumLandmarks-1].X, NumLandmarks-1)
	}
}

func TestJSONPose_ShortResponse(t *testing.T) {
	// A partial response leaves the remaining landmarks zeroed rather
	// than panicking.
	raw := jsonPose{Score: 0.9, Points: []jsonPoint{{X: 0.5, Y: 0.5}}}

	lm := raw.toPoseLandmarks()
	if lm.Points[0].X != 0.5 {
		t.Errorf("landmark 0 X = %f, want 0.5", lm.Points[0].X)
	}
	if lm.Points[1] != (Point3D{}) {
		t.Errorf("landmark 1 = %v, want zero value", lm.Points[1])
	}
}
