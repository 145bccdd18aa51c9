package exercise

import (
	"math"
	"time"
)

// Phase is the limb position the counter currently judges the subject to be in.
type Phase string

const (
	// PhaseExtended means the tracked angle last crossed the start threshold.
	PhaseExtended Phase = "extended"
	// PhaseContracted means the tracked angle last crossed the end threshold.
	PhaseContracted Phase = "contracted"
)

// Counter converts a stream of joint-angle measurements into a repetition
// count using hysteresis between the exercise's two thresholds. One rep is
// one full contracted-to-extended transition.
//
// Counter is not safe for concurrent use; the session driver serializes
// access (one frame in flight at a time).
type Counter struct {
	def       Definition
	cooldown  time.Duration
	phase     Phase
	reps      int
	lastRepAt time.Time
}

// NewCounter creates a Counter for the given exercise. A cooldown of zero
// disables rep-rate suppression; a positive cooldown drops reps completed
// sooner than that duration after the previously counted rep.
func NewCounter(def Definition, cooldown time.Duration) *Counter {
	return &Counter{
		def:      def,
		cooldown: cooldown,
		phase:    PhaseExtended,
	}
}

// Update feeds one angle measurement taken at the given instant. It returns
// the current rep count and whether this frame completed a counted rep.
// NaN angles (no landmarks, degenerate joints) leave all state untouched.
func (c *Counter) Update(angle float64, now time.Time) (reps int, counted bool) {
	if math.IsNaN(angle) {
		return c.reps, false
	}

	switch c.phase {
	case PhaseExtended:
		if angle <= c.def.EndAngle {
			c.phase = PhaseContracted
		}
	case PhaseContracted:
		if angle >= c.def.StartAngle {
			c.phase = PhaseExtended
			// Cooldown guards against frame noise oscillating across both
			// thresholds: the phase still flips, the rep is not counted.
			if c.cooldown <= 0 || c.lastRepAt.IsZero() || now.Sub(c.lastRepAt) >= c.cooldown {
				c.reps++
				c.lastRepAt = now
				counted = true
			}
		}
	}

	return c.reps, counted
}

// Reset restores the counter to its initial state: extended phase, zero
// reps, no previous rep timestamp.
func (c *Counter) Reset() {
	c.phase = PhaseExtended
	c.reps = 0
	c.lastRepAt = time.Time{}
}

// SetExercise switches the counter to a new exercise definition. Stale phase
// or count never carries across exercises, so this always resets.
func (c *Counter) SetExercise(def Definition) {
	c.def = def
	c.Reset()
}

// Exercise returns the active exercise definition.
func (c *Counter) Exercise() Definition {
	return c.def
}

// Reps returns the current repetition count.
func (c *Counter) Reps() int {
	return c.reps
}

// Phase returns the current phase.
func (c *Counter) Phase() Phase {
	return c.phase
}
