package exercise

import (
	"math"
	"testing"

	"github.com/Abhijeet1520/healthy-world/internal/detector"
)

func TestAngle_RightAngle(t *testing.T) {
	p1 := detector.Point3D{X: 0, Y: 1}
	p2 := detector.Point3D{X: 0, Y: 0}
	p3 := detector.Point3D{X: 1, Y: 0}

	got := Angle(p1, p2, p3)
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("Angle() = %f, want 90", got)
	}
}

func TestAngle_OuterPointOrderIrrelevant(t *testing.T) {
	cases := []struct {
		name       string
		p1, p2, p3 detector.Point3D
	}{
		{"right angle", detector.Point3D{X: 0, Y: 1}, detector.Point3D{}, detector.Point3D{X: 1, Y: 0}},
		{"acute", detector.Point3D{X: 1, Y: 0.2}, detector.Point3D{}, detector.Point3D{X: 1, Y: -0.2}},
		{"obtuse", detector.Point3D{X: -1, Y: 0.3}, detector.Point3D{}, detector.Point3D{X: 1, Y: 0.3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forward := Angle(tc.p1, tc.p2, tc.p3)
			swapped := Angle(tc.p3, tc.p2, tc.p1)
			if math.Abs(forward-swapped) > 1e-9 {
				t.Errorf("Angle(p1,p2,p3) = %f but Angle(p3,p2,p1) = %f", forward, swapped)
			}
		})
	}
}

func TestAngle_StraightLine(t *testing.T) {
	p1 := detector.Point3D{X: -1, Y: 0}
	p2 := detector.Point3D{X: 0, Y: 0}
	p3 := detector.Point3D{X: 1, Y: 0}

	got := Angle(p1, p2, p3)
	if math.Abs(got-180) > 1e-9 {
		t.Errorf("Angle() = %f, want 180", got)
	}
}

func TestAngle_ReflexFoldsBelow180(t *testing.T) {
	// Rays at atan2 values whose raw difference exceeds 180 degrees must
	// fold back into [0, 180].
	p1 := detector.Point3D{X: -1, Y: -0.1}
	p2 := detector.Point3D{X: 0, Y: 0}
	p3 := detector.Point3D{X: -1, Y: 0.1}

	got := Angle(p1, p2, p3)
	if got < 0 || got > 180 {
		t.Fatalf("Angle() = %f, outside [0, 180]", got)
	}
	// The geometric angle between these near-antiparallel rays is small.
	if got > 15 {
		t.Errorf("Angle() = %f, want a small angle", got)
	}
}

func TestAngle_RangeSweep(t *testing.T) {
	// For every placement of the distal ray, the result stays in [0, 180].
	p1 := detector.Point3D{X: 1, Y: 0}
	p2 := detector.Point3D{X: 0, Y: 0}

	for deg := 0; deg < 360; deg += 7 {
		rad := float64(deg) * math.Pi / 180
		p3 := detector.Point3D{X: math.Cos(rad), Y: math.Sin(rad)}

		got := Angle(p1, p2, p3)
		if got < 0 || got > 180 {
			t.Fatalf("Angle() at %d deg = %f, outside [0, 180]", deg, got)
		}

		want := float64(deg)
		if want > 180 {
			want = 360 - want
		}
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("Angle() at %d deg = %f, want %f", deg, got, want)
		}
	}
}

func TestAngle_CoincidentPointsNaN(t *testing.T) {
	vertex := detector.Point3D{X: 0.5, Y: 0.5}
	other := detector.Point3D{X: 0.7, Y: 0.7}

	if got := Angle(vertex, vertex, other); !math.IsNaN(got) {
		t.Errorf("Angle() with coincident p1 = %f, want NaN", got)
	}
	if got := Angle(other, vertex, vertex); !math.IsNaN(got) {
		t.Errorf("Angle() with coincident p3 = %f, want NaN", got)
	}
}

func TestAngle_IgnoresDepth(t *testing.T) {
	p1 := detector.Point3D{X: 0, Y: 1, Z: 0.9}
	p2 := detector.Point3D{X: 0, Y: 0, Z: -0.4}
	p3 := detector.Point3D{X: 1, Y: 0, Z: 0.2}

	got := Angle(p1, p2, p3)
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("Angle() = %f, want 90 regardless of z", got)
	}
}
