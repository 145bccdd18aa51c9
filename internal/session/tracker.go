package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Abhijeet1520/healthy-world/internal/capture"
	"github.com/Abhijeet1520/healthy-world/internal/detector"
	"github.com/Abhijeet1520/healthy-world/internal/exercise"
)

// Live pipeline timing constants.
const (
	// IdleFPS is the frame rate while the motion gate reports no subject
	// movement.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active tracking.
	ActiveFPS = 15
)

// TrackerConfig holds the dependencies and tuning for a live session.
// The detector is injected as a factory: a fresh detector is created on
// every Start and closed on Stop, so no subprocess state leaks across
// sessions.
type TrackerConfig struct {
	Source      capture.Source
	NewDetector func() (detector.Detector, error)
	Exercise    exercise.Definition
	Cooldown    time.Duration
	// MotionThreshold is the percent of changed pixels that counts as
	// movement; zero means the capture default.
	MotionThreshold float64
	// MotionIdleAfter is how long the pipeline keeps running inference
	// after the last detected movement; zero means the capture default.
	MotionIdleAfter time.Duration
	OnUpdate        UpdateFunc
	Logger          *slog.Logger
}

// Tracker runs the live rep counting session against a camera. Exactly one
// frame is in flight at a time: the loop reads, detects, and updates the
// counter before the next tick is serviced.
type Tracker struct {
	cfg     TrackerConfig
	log     *slog.Logger
	mu      sync.Mutex
	counter *exercise.Counter
	det     detector.Detector
	gate    *capture.MotionGate
	status  Status
	lastErr error
	frames  int
	started time.Time
	stopCh  chan struct{}
	done    chan struct{}
}

// NewTracker creates a Tracker. Start must be called before frames flow.
func NewTracker(cfg TrackerConfig) *Tracker {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		cfg:     cfg,
		log:     log.With("component", "tracker"),
		counter: exercise.NewCounter(cfg.Exercise, cfg.Cooldown),
		status:  StatusIdle,
	}
}

// Start acquires the camera and the detector and launches the pipeline.
// Detector construction failure is fatal and surfaced; camera acquisition
// failure is surfaced as StatusCameraUnavailable. Start on a running
// tracker is a no-op.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != nil {
		return nil
	}

	det, err := t.cfg.NewDetector()
	if err != nil {
		t.status = StatusDetectorFailed
		t.lastErr = err
		return fmt.Errorf("create detector: %w", err)
	}

	if err := t.cfg.Source.Open(); err != nil {
		det.Close()
		t.status = StatusCameraUnavailable
		t.lastErr = err
		return fmt.Errorf("open capture source: %w", err)
	}

	t.det = det
	idleAfter := t.cfg.MotionIdleAfter
	if idleAfter <= 0 {
		idleAfter = capture.DefaultIdleAfter
	}
	t.gate = capture.NewMotionGate(t.cfg.MotionThreshold, idleAfter)
	t.counter.Reset()
	t.frames = 0
	t.started = time.Now()
	t.status = StatusRunning
	t.lastErr = nil

	if cam, ok := t.cfg.Source.(capture.Camera); ok {
		cam.SetFPS(ActiveFPS)
	}

	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stopCh, t.done)

	t.log.Info("live session started", "exercise", t.counter.Exercise().ID)
	return nil
}

// Stop halts the pipeline and releases the camera and the detector. The
// boolean reports whether this call stopped a running session; with two
// concurrent Stops exactly one returns true, and teardown belongs to that
// call alone. The pipeline goroutine has fully exited before any resource
// is released, so its lock-free reads of the detector and the motion gate
// never race with teardown.
func (t *Tracker) Stop() (Result, bool) {
	t.mu.Lock()
	stopCh := t.stopCh
	done := t.done
	t.stopCh = nil
	t.done = nil
	t.mu.Unlock()

	if stopCh == nil {
		t.mu.Lock()
		res := t.resultLocked()
		t.mu.Unlock()
		return res, false
	}

	close(stopCh)
	<-done

	t.mu.Lock()
	if t.status == StatusRunning {
		t.status = StatusStopped
	}

	if err := t.cfg.Source.Close(); err != nil {
		t.log.Warn("closing capture source", "error", err)
	}
	if t.det != nil {
		if err := t.det.Close(); err != nil {
			t.log.Warn("closing detector", "error", err)
		}
		t.det = nil
	}
	if t.gate != nil {
		t.gate.Close()
		t.gate = nil
	}

	res := t.resultLocked()
	t.mu.Unlock()

	t.log.Info("live session stopped", "exercise", res.Exercise, "reps", res.Reps)
	return res, true
}

func (t *Tracker) resultLocked() Result {
	res := Result{
		Exercise: t.counter.Exercise().ID,
		Reps:     t.counter.Reps(),
		Frames:   t.frames,
	}
	if !t.started.IsZero() {
		res.Duration = time.Since(t.started)
	}
	return res
}

// SetExercise switches the tracked exercise mid-session. This resets the
// counter (phase, count, rep timestamp) but keeps the camera open.
func (t *Tracker) SetExercise(def exercise.Definition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter.SetExercise(def)
	t.log.Info("exercise switched", "exercise", def.ID)
}

// Status returns the session status and, for failure statuses, the error
// that caused it.
func (t *Tracker) Status() (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.lastErr
}

// Snapshot returns the current counter state.
func (t *Tracker) Snapshot() Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Update{
		Exercise: t.counter.Exercise().ID,
		Reps:     t.counter.Reps(),
		Phase:    t.counter.Phase(),
	}
}

// run is the live pipeline loop. Each tick processes at most one frame
// through the full read -> detect -> angle -> count chain; a detector call
// always completes before the next frame is read, so counter updates are
// applied in frame order.
func (t *Tracker) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Second / ActiveFPS
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	active := true
	var lastTS int64 = -1

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, ts, err := t.cfg.Source.ReadFrame()
			if err == capture.ErrEndOfStream {
				// A finite source driving a live session just stops
				// producing updates; the owner still calls Stop.
				return
			}
			if err != nil {
				t.log.Warn("reading frame", "error", err)
				continue
			}

			// Skip frames the medium has already delivered.
			if ts == lastTS {
				frame.Close()
				continue
			}
			lastTS = ts

			now := time.Now()
			inMotion := t.gate.Observe(frame, now)

			if inMotion != active {
				active = inMotion
				fps := IdleFPS
				if active {
					fps = ActiveFPS
				}
				if cam, ok := t.cfg.Source.(capture.Camera); ok {
					cam.SetFPS(fps)
				}
				interval = time.Second / time.Duration(fps)
				ticker.Reset(interval)
				t.log.Debug("motion gate switched", "active", active)
			}

			if !active {
				frame.Close()
				continue
			}

			pose, err := t.det.Detect(frame, ts)
			frame.Close()
			if err != nil {
				t.log.Warn("pose detection", "error", err)
				continue
			}
			if pose == nil {
				// No person in frame: hold phase and count.
				t.mu.Lock()
				t.frames++
				t.mu.Unlock()
				continue
			}

			t.mu.Lock()
			def := t.counter.Exercise()
			p1, p2, p3 := pose.Joints(def.Joints)
			angle := exercise.Angle(p1, p2, p3)
			reps, counted := t.counter.Update(angle, now)
			phase := t.counter.Phase()
			t.frames++
			t.mu.Unlock()

			if counted && t.cfg.OnUpdate != nil {
				t.cfg.OnUpdate(Update{
					Exercise:    def.ID,
					Reps:        reps,
					Phase:       phase,
					Angle:       angle,
					TimestampMs: ts,
				})
			}
		}
	}
}
