// Package app wires the tracking pipeline to persistence and hooks. It owns
// the live Tracker, runs uploaded-video analyses, records every completed
// session in the store, and publishes results to notify hooks.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abhijeet1520/healthy-world/internal/capture"
	"github.com/Abhijeet1520/healthy-world/internal/detector"
	"github.com/Abhijeet1520/healthy-world/internal/exercise"
	"github.com/Abhijeet1520/healthy-world/internal/notify"
	"github.com/Abhijeet1520/healthy-world/internal/session"
	"github.com/Abhijeet1520/healthy-world/internal/store"
)

var (
	// ErrUnknownExercise is returned when an exercise id is not in the catalog.
	ErrUnknownExercise = errors.New("unknown exercise")
	// ErrNotTracking is returned by StopTracking when no live session runs.
	ErrNotTracking = errors.New("no live session running")
)

// Config holds the application dependencies.
type Config struct {
	Store    *store.Store
	Catalog  *exercise.Catalog
	Notifier *notify.Notifier

	// Source is the live capture device used by the tracker and the
	// preview stream.
	Source capture.Source
	// NewDetector builds a fresh pose detector. Both the live tracker and
	// each video analysis create their own detector through it.
	NewDetector func() (detector.Detector, error)

	DefaultExercise string
	Cooldown        time.Duration
	MotionThreshold float64

	Logger *slog.Logger
}

// App orchestrates live tracking and video analysis.
type App struct {
	cfg     Config
	log     *slog.Logger
	tracker *session.Tracker

	mu        sync.Mutex
	startedAt time.Time

	subMu      sync.Mutex
	subs       map[chan session.Update]struct{}
	statusSubs map[chan session.Status]struct{}
}

// New creates the application. The configured default exercise must exist
// in the catalog.
func New(cfg Config) (*App, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	def, ok := cfg.Catalog.Lookup(cfg.DefaultExercise)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, cfg.DefaultExercise)
	}

	a := &App{
		cfg:        cfg,
		log:        log.With("component", "app"),
		subs:       make(map[chan session.Update]struct{}),
		statusSubs: make(map[chan session.Status]struct{}),
	}

	a.tracker = session.NewTracker(session.TrackerConfig{
		Source:          cfg.Source,
		NewDetector:     cfg.NewDetector,
		Exercise:        def,
		Cooldown:        cfg.Cooldown,
		MotionThreshold: cfg.MotionThreshold,
		OnUpdate:        a.publish,
		Logger:          log,
	})

	return a, nil
}

// StartTracking begins a live camera session.
func (a *App) StartTracking() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.tracker.Start(); err != nil {
		return err
	}
	a.startedAt = time.Now()
	a.notifyStatus(session.StatusRunning)
	return nil
}

// StopTracking ends the live session, persists it, and fires hooks. The
// stored record is returned. The tray toggle and the HTTP API both land
// here; when they race, the Stop that actually halted the session is the
// only one that records it, the other caller gets ErrNotTracking.
func (a *App) StopTracking(ctx context.Context) (*store.Session, error) {
	a.mu.Lock()
	started := a.startedAt
	a.mu.Unlock()

	res, stopped := a.tracker.Stop()
	if !stopped {
		return nil, ErrNotTracking
	}
	a.notifyStatus(session.StatusStopped)

	return a.record(ctx, &res, store.SourceLive, "", started)
}

// SetExercise switches the live session's exercise. The rep counter resets.
func (a *App) SetExercise(id string) error {
	def, ok := a.cfg.Catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	a.tracker.SetExercise(def)
	return nil
}

// Status returns the live session status and, for failure statuses, the
// underlying error.
func (a *App) Status() (session.Status, error) {
	return a.tracker.Status()
}

// Snapshot returns the live counter state.
func (a *App) Snapshot() session.Update {
	return a.tracker.Snapshot()
}

// Source exposes the capture device for the preview stream.
func (a *App) Source() capture.Source {
	return a.cfg.Source
}

// Catalog exposes the exercise catalog.
func (a *App) Catalog() *exercise.Catalog {
	return a.cfg.Catalog
}

// Sessions exposes the persisted session history.
func (a *App) Sessions() *store.SessionRepository {
	return a.cfg.Store.Sessions()
}

// AnalyzeRequest describes one uploaded-video analysis.
type AnalyzeRequest struct {
	// Source delivers the video's frames, usually capture.NewVideoFile.
	Source capture.Source
	// ExerciseID selects the catalog entry to count.
	ExerciseID string
	// HighlightPath, when non-empty, writes the annotated copy there.
	HighlightPath string
	// VideoName is the client's original file name, kept for history.
	VideoName string
}

// AnalyzeVideo counts reps in a video file, persists the result, and fires
// hooks. A fresh detector is created for the run and closed afterwards.
func (a *App) AnalyzeVideo(ctx context.Context, req AnalyzeRequest) (*store.Session, error) {
	def, ok := a.cfg.Catalog.Lookup(req.ExerciseID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, req.ExerciseID)
	}

	det, err := a.cfg.NewDetector()
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}
	defer det.Close()

	started := time.Now()

	res, err := session.AnalyzeVideo(ctx, req.Source, det, session.VideoOptions{
		Exercise:      def,
		Cooldown:      a.cfg.Cooldown,
		HighlightPath: req.HighlightPath,
		OnUpdate:      a.publish,
		Logger:        a.log,
	})
	if err != nil {
		return nil, err
	}

	return a.record(ctx, res, store.SourceVideo, req.VideoName, started)
}

// record persists a completed session and delivers it to the hooks.
func (a *App) record(ctx context.Context, res *session.Result, source store.SessionSource, videoName string, started time.Time) (*store.Session, error) {
	rec := &store.Session{
		ID:         uuid.New().String(),
		ExerciseID: res.Exercise,
		Source:     source,
		Reps:       res.Reps,
		Frames:     res.Frames,
		DurationMs: res.Duration.Milliseconds(),
		VideoName:  videoName,
		StartedAt:  started,
		EndedAt:    time.Now(),
	}

	if err := a.cfg.Store.Sessions().Create(rec); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	if a.cfg.Notifier != nil {
		a.cfg.Notifier.Publish(ctx, notify.Event{
			SessionID:  rec.ID,
			Exercise:   rec.ExerciseID,
			Source:     string(rec.Source),
			Reps:       rec.Reps,
			DurationMs: rec.DurationMs,
			StartedAt:  rec.StartedAt,
			EndedAt:    rec.EndedAt,
		})
	}

	return rec, nil
}

// Subscribe registers a consumer of rep count updates. The returned cancel
// removes the subscription; slow consumers lose updates rather than stall
// the pipeline.
func (a *App) Subscribe() (<-chan session.Update, func()) {
	ch := make(chan session.Update, 8)

	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	cancel := func() {
		a.subMu.Lock()
		delete(a.subs, ch)
		a.subMu.Unlock()
	}
	return ch, cancel
}

// SubscribeStatus registers a consumer of session state transitions, such
// as a tray icon that must reflect sessions started over HTTP. The returned
// cancel removes the subscription.
func (a *App) SubscribeStatus() (<-chan session.Status, func()) {
	ch := make(chan session.Status, 4)

	a.subMu.Lock()
	a.statusSubs[ch] = struct{}{}
	a.subMu.Unlock()

	cancel := func() {
		a.subMu.Lock()
		delete(a.statusSubs, ch)
		a.subMu.Unlock()
	}
	return ch, cancel
}

func (a *App) notifyStatus(st session.Status) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.statusSubs {
		select {
		case ch <- st:
		default:
		}
	}
}

// publish fans an update out to all subscribers without blocking.
func (a *App) publish(u session.Update) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Close releases everything the app holds. A running live session is
// stopped and recorded first.
func (a *App) Close() error {
	if _, err := a.StopTracking(context.Background()); err != nil && !errors.Is(err, ErrNotTracking) {
		a.log.Warn("stopping live session on shutdown", "error", err)
	}
	return nil
}
