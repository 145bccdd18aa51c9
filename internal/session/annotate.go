package session

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/Abhijeet1520/healthy-world/internal/detector"
)

var (
	jointColor   = color.RGBA{R: 66, G: 197, B: 245, A: 0}
	limbColor    = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	overlayColor = color.RGBA{R: 50, G: 220, B: 120, A: 0}
)

// annotator writes an overlay copy of the analyzed video: the tracked joint
// triple, the limb segments, and the live angle and rep count. The writer is
// created lazily from the first frame's dimensions; any write error is
// sticky and surfaced when the analysis finishes.
type annotator struct {
	path   string
	fps    float64
	writer *gocv.VideoWriter
	err    error
}

func newAnnotator(path string, fps float64) *annotator {
	return &annotator{path: path, fps: fps}
}

func (a *annotator) write(frame *gocv.Mat, pose *detector.PoseLandmarks, joints [3]int, angle float64, reps int) {
	if a.err != nil {
		return
	}

	if a.writer == nil {
		writer, err := gocv.VideoWriterFile(a.path, "avc1", a.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			a.err = err
			return
		}
		a.writer = writer
	}

	if pose != nil {
		a.overlayPose(frame, pose, joints, angle)
	}
	gocv.PutText(frame, fmt.Sprintf("reps: %d", reps),
		image.Point{X: 20, Y: 40}, gocv.FontHersheySimplex, 1.0, overlayColor, 2)

	if err := a.writer.Write(*frame); err != nil {
		a.err = err
	}
}

func (a *annotator) overlayPose(frame *gocv.Mat, pose *detector.PoseLandmarks, joints [3]int, angle float64) {
	w := float64(frame.Cols())
	h := float64(frame.Rows())

	pts := make([]image.Point, 3)
	for i, j := range joints {
		lm := pose.Points[j]
		pts[i] = image.Point{X: int(lm.X * w), Y: int(lm.Y * h)}
	}

	gocv.Line(frame, pts[0], pts[1], limbColor, 2)
	gocv.Line(frame, pts[1], pts[2], limbColor, 2)

	for i, j := range joints {
		// The landmark's depth value only affects rendering: nearer
		// joints get a larger marker.
		radius := 6 + int(math.Min(math.Abs(pose.Points[j].Z)*20, 6))
		gocv.Circle(frame, pts[i], radius, jointColor, -1)
	}

	if !math.IsNaN(angle) {
		gocv.PutText(frame, fmt.Sprintf("%.0f", angle),
			image.Point{X: pts[1].X + 12, Y: pts[1].Y - 12},
			gocv.FontHersheySimplex, 0.7, overlayColor, 2)
	}
}

func (a *annotator) close() {
	if a.writer != nil {
		a.writer.Close()
		a.writer = nil
	}
}
