// Package detector provides body pose detection interfaces and types for
// exercise repetition tracking.
package detector

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Point3D is a body landmark position. X and Y are normalized to [0,1]
// relative to the frame; Z is a depth-like value used only for rendering
// emphasis, never for angle math.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PoseLandmarks is one detected body pose: the 33 MediaPipe Pose landmarks
// plus the detector's confidence for the whole pose.
type PoseLandmarks struct {
	Points [NumLandmarks]Point3D `json:"points"`
	Score  float64               `json:"score"`
}

// Joints returns the positions for the given landmark indices, in order.
func (p *PoseLandmarks) Joints(indices [3]int) (Point3D, Point3D, Point3D) {
	return p.Points[indices[0]], p.Points[indices[1]], p.Points[indices[2]]
}
