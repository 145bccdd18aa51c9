package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion gate constants.
const (
	// gaussianBlurSize is the kernel size for Gaussian blur (21x21).
	gaussianBlurSize = 21
	// diffThreshold is the binary threshold for frame differencing.
	diffThreshold = 25
	// DefaultIdleAfter is how long without motion before the gate reports idle.
	DefaultIdleAfter = 2 * time.Second
)

// MotionGate decides whether a live tracking session should run pose
// inference for the current frame. It detects inter-frame motion by
// differencing blurred grayscale frames and holds the gate open for a grace
// period after the last movement, so a subject pausing between reps does not
// drop the session into idle mid-set.
type MotionGate struct {
	threshold  float64
	idleAfter  time.Duration
	prevGray   gocv.Mat
	primed     bool
	lastMotion time.Time
	mu         sync.Mutex
}

// NewMotionGate creates a MotionGate. threshold is the percentage of pixels
// that must change between frames to register motion (e.g. 1.0 means 1%);
// idleAfter is how long the gate stays open after the last registered motion.
func NewMotionGate(threshold float64, idleAfter time.Duration) *MotionGate {
	if threshold <= 0 {
		threshold = 1.0
	}
	if idleAfter <= 0 {
		idleAfter = DefaultIdleAfter
	}
	return &MotionGate{
		threshold: threshold,
		idleAfter: idleAfter,
		prevGray:  gocv.NewMat(),
	}
}

// Observe feeds one frame and reports whether the session should be active:
// true when this frame contains motion or any frame within the idleAfter
// window did. The very first frame primes the baseline and reports active,
// so sessions never start blind.
func (g *MotionGate) Observe(frame *gocv.Mat, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return now.Sub(g.lastMotion) <= g.idleAfter
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: gaussianBlurSize, Y: gaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prevGray)
		g.primed = true
		g.lastMotion = now
		return true
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&g.prevGray)

	if changePercent > g.threshold {
		g.lastMotion = now
	}

	return now.Sub(g.lastMotion) <= g.idleAfter
}

// Reset clears the baseline so the next frame primes a fresh one.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.primed = false
	g.lastMotion = time.Time{}
}

// Close releases resources held by the gate.
func (g *MotionGate) Close() {
	g.Reset()
}
