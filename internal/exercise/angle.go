package exercise

import (
	"math"

	"github.com/Abhijeet1520/healthy-world/internal/detector"
)

// Angle computes the planar angle in degrees at vertex p2 between the rays
// p2->p1 and p2->p3, in the range [0, 180]. Only the x/y coordinates
// participate; z carries depth emphasis for rendering and is ignored here.
//
// A coincident outer point makes the angle undefined and returns NaN.
// Callers treat NaN as "no measurement this frame".
func Angle(p1, p2, p3 detector.Point3D) float64 {
	if (p1.X == p2.X && p1.Y == p2.Y) || (p3.X == p2.X && p3.Y == p2.Y) {
		return math.NaN()
	}

	r1 := math.Atan2(p1.Y-p2.Y, p1.X-p2.X)
	r2 := math.Atan2(p3.Y-p2.Y, p3.X-p2.X)

	deg := math.Abs((r2 - r1) * 180 / math.Pi)

	// Fold reflex results back into [0, 180]: the joint angle between two
	// rays is direction-free.
	if deg > 180 {
		deg = 360 - deg
	}

	return deg
}
