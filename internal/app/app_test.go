package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Abhijeet1520/healthy-world/internal/capture"
	"github.com/Abhijeet1520/healthy-world/internal/detector"
	"github.com/Abhijeet1520/healthy-world/internal/exercise"
	"github.com/Abhijeet1520/healthy-world/internal/notify"
	"github.com/Abhijeet1520/healthy-world/internal/session"
	"github.com/Abhijeet1520/healthy-world/internal/store"
)

func testApp(t *testing.T, det *detector.MockDetector, hooksDir string) *App {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	var notifier *notify.Notifier
	if hooksDir != "" {
		notifier = notify.NewNotifier(hooksDir, time.Second, slog.New(slog.DiscardHandler))
	}

	a, err := New(Config{
		Store:           st,
		Catalog:         exercise.NewCatalog(),
		Notifier:        notifier,
		Source:          capture.NewMockSource(nil, false),
		NewDetector:     func() (detector.Detector, error) { return det, nil },
		DefaultExercise: "bicep-curl",
		Cooldown:        0,
		Logger:          slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// repPoses scripts one full repetition for the given exercise.
func repPoses(def exercise.Definition) []*detector.PoseLandmarks {
	angles := []float64{170, 150, 100, 55, 80, 165}
	poses := make([]*detector.PoseLandmarks, len(angles))
	for i, a := range angles {
		p := detector.PoseWithJointAngle(def.Joints, a)
		poses[i] = &p
	}
	return poses
}

func videoFrames(n int) []capture.MockFrame {
	frames := make([]capture.MockFrame, n)
	for i := range frames {
		frames[i] = capture.MockFrame{Timestamp: int64(i) * 33}
	}
	return frames
}

func TestNew_UnknownDefaultExercise(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	_, err = New(Config{
		Store:           st,
		Catalog:         exercise.NewCatalog(),
		Source:          capture.NewMockSource(nil, false),
		NewDetector:     func() (detector.Detector, error) { return detector.NewMockDetector(), nil },
		DefaultExercise: "moonwalk",
		Logger:          slog.New(slog.DiscardHandler),
	})
	if !errors.Is(err, ErrUnknownExercise) {
		t.Fatalf("New() error = %v, want ErrUnknownExercise", err)
	}
}

func TestAnalyzeVideo_RecordsSession(t *testing.T) {
	catalog := exercise.NewCatalog()
	def, _ := catalog.Lookup("bicep-curl")

	det := detector.NewMockDetector()
	det.SetSequence(repPoses(def))

	a := testApp(t, det, "")

	rec, err := a.AnalyzeVideo(context.Background(), AnalyzeRequest{
		Source:     capture.NewMockSource(videoFrames(6), false),
		ExerciseID: "bicep-curl",
		VideoName:  "curls.mp4",
	})
	if err != nil {
		t.Fatalf("AnalyzeVideo() error = %v", err)
	}

	if rec.Reps != 1 {
		t.Errorf("Reps = %d, want 1", rec.Reps)
	}
	if rec.Source != store.SourceVideo {
		t.Errorf("Source = %q, want %q", rec.Source, store.SourceVideo)
	}
	if rec.VideoName != "curls.mp4" {
		t.Errorf("VideoName = %q", rec.VideoName)
	}

	// The session must be retrievable from history.
	got, err := a.Sessions().GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Reps != 1 || got.ExerciseID != "bicep-curl" {
		t.Errorf("stored session = %+v", got)
	}

	if !det.Closed() {
		t.Error("detector not closed after analysis")
	}
}

func TestAnalyzeVideo_UnknownExercise(t *testing.T) {
	a := testApp(t, detector.NewMockDetector(), "")

	_, err := a.AnalyzeVideo(context.Background(), AnalyzeRequest{
		Source:     capture.NewMockSource(videoFrames(1), false),
		ExerciseID: "handstand",
	})
	if !errors.Is(err, ErrUnknownExercise) {
		t.Fatalf("AnalyzeVideo() error = %v, want ErrUnknownExercise", err)
	}

	if sessions, _ := a.Sessions().List(0); len(sessions) != 0 {
		t.Errorf("history has %d sessions, want 0", len(sessions))
	}
}

func TestAnalyzeVideo_FiresHooks(t *testing.T) {
	hooksDir := t.TempDir()
	captured := filepath.Join(hooksDir, "event.json")
	script := "#!/bin/sh\ncat > " + captured + "\n"
	if err := os.WriteFile(filepath.Join(hooksDir, "capture.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	catalog := exercise.NewCatalog()
	def, _ := catalog.Lookup("bicep-curl")

	det := detector.NewMockDetector()
	det.SetSequence(repPoses(def))

	a := testApp(t, det, hooksDir)

	rec, err := a.AnalyzeVideo(context.Background(), AnalyzeRequest{
		Source:     capture.NewMockSource(videoFrames(6), false),
		ExerciseID: "bicep-curl",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Reps != 1 {
		t.Fatalf("Reps = %d, want 1", rec.Reps)
	}

	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatalf("hook did not run: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("hook received empty payload")
	}
}

func TestStopTracking_WithoutStart(t *testing.T) {
	a := testApp(t, detector.NewMockDetector(), "")

	if _, err := a.StopTracking(context.Background()); !errors.Is(err, ErrNotTracking) {
		t.Fatalf("StopTracking() error = %v, want ErrNotTracking", err)
	}
}

func TestStopTracking_ConcurrentCallsRecordOnce(t *testing.T) {
	a := testApp(t, detector.NewMockDetector(), "")

	if err := a.StartTracking(); err != nil {
		t.Fatalf("StartTracking() error = %v", err)
	}

	// The tray toggle and the HTTP stop endpoint can both reach
	// StopTracking at the same moment; only one of them may persist
	// the session.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.StopTracking(context.Background())
		}(i)
	}
	wg.Wait()

	var ok, notTracking int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNotTracking):
			notTracking++
		default:
			t.Errorf("StopTracking() error = %v", err)
		}
	}
	if ok != 1 || notTracking != 1 {
		t.Errorf("got %d successes and %d ErrNotTracking, want 1 and 1", ok, notTracking)
	}

	sessions, err := a.Sessions().List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Errorf("history has %d sessions after concurrent stop, want 1", len(sessions))
	}
}

func TestSubscribeStatus(t *testing.T) {
	a := testApp(t, detector.NewMockDetector(), "")

	ch, cancel := a.SubscribeStatus()
	defer cancel()

	if err := a.StartTracking(); err != nil {
		t.Fatalf("StartTracking() error = %v", err)
	}
	if _, err := a.StopTracking(context.Background()); err != nil {
		t.Fatalf("StopTracking() error = %v", err)
	}

	want := []session.Status{session.StatusRunning, session.StatusStopped}
	for _, w := range want {
		select {
		case got := <-ch:
			if got != w {
				t.Errorf("status = %s, want %s", got, w)
			}
		default:
			t.Fatalf("no %s transition published", w)
		}
	}
}

func TestSetExercise(t *testing.T) {
	a := testApp(t, detector.NewMockDetector(), "")

	if err := a.SetExercise("squat"); err != nil {
		t.Fatalf("SetExercise(squat) error = %v", err)
	}
	if got := a.Snapshot().Exercise; got != "squat" {
		t.Errorf("Snapshot().Exercise = %q, want squat", got)
	}

	if err := a.SetExercise("handstand"); !errors.Is(err, ErrUnknownExercise) {
		t.Errorf("SetExercise(handstand) error = %v, want ErrUnknownExercise", err)
	}
}

func TestSubscribe_ReceivesVideoUpdates(t *testing.T) {
	catalog := exercise.NewCatalog()
	def, _ := catalog.Lookup("bicep-curl")

	det := detector.NewMockDetector()
	det.SetSequence(repPoses(def))

	a := testApp(t, det, "")

	ch, cancel := a.Subscribe()
	defer cancel()

	if _, err := a.AnalyzeVideo(context.Background(), AnalyzeRequest{
		Source:     capture.NewMockSource(videoFrames(6), false),
		ExerciseID: "bicep-curl",
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-ch:
		if u.Reps != 1 || u.Exercise != "bicep-curl" {
			t.Errorf("update = %+v", u)
		}
	default:
		t.Fatal("no update published for the counted rep")
	}
}
