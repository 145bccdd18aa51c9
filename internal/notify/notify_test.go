package notify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeHook(t *testing.T, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testEvent() Event {
	return Event{
		SessionID:  "sess-42",
		Exercise:   "bicep-curl",
		Source:     "live",
		Reps:       12,
		DurationMs: 45000,
		StartedAt:  time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
		EndedAt:    time.Date(2025, 11, 3, 9, 0, 45, 0, time.UTC),
	}
}

func TestNotifier_DeliversPayload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks not supported on windows")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "captured.json")
	writeHook(t, dir, "capture.sh", "#!/bin/sh\ncat > "+out+"\n")

	n := NewNotifier(dir, time.Second, nil)
	if got := n.Publish(context.Background(), testEvent()); got != 1 {
		t.Fatalf("Publish() = %d hooks run, want 1", got)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not write payload: %v", err)
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if got.SessionID != "sess-42" || got.Reps != 12 || got.Exercise != "bicep-curl" {
		t.Errorf("payload = %+v", got)
	}
}

func TestNotifier_MissingDirIsQuiet(t *testing.T) {
	n := NewNotifier(filepath.Join(t.TempDir(), "no-such-dir"), time.Second, nil)

	if got := n.Publish(context.Background(), testEvent()); got != 0 {
		t.Errorf("Publish() = %d, want 0 for missing hooks dir", got)
	}
}

func TestNotifier_SkipsNonExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not meaningful on windows")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a hook"), 0644); err != nil {
		t.Fatal(err)
	}
	writeHook(t, dir, "ok.sh", "#!/bin/sh\nexit 0\n")

	n := NewNotifier(dir, time.Second, nil)
	if got := n.Publish(context.Background(), testEvent()); got != 1 {
		t.Errorf("Publish() = %d, want 1 (non-executable skipped)", got)
	}
}

func TestNotifier_FailingHookDoesNotBlockOthers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks not supported on windows")
	}

	dir := t.TempDir()
	// Hooks run in directory order: the failing one comes first.
	writeHook(t, dir, "a-fails.sh", "#!/bin/sh\necho boom >&2\nexit 1\n")
	writeHook(t, dir, "b-ok.sh", "#!/bin/sh\nexit 0\n")

	n := NewNotifier(dir, time.Second, nil)
	if got := n.Publish(context.Background(), testEvent()); got != 1 {
		t.Errorf("Publish() = %d, want 1", got)
	}
}

func TestNotifier_TimeoutKillsHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks not supported on windows")
	}

	dir := t.TempDir()
	writeHook(t, dir, "slow.sh", "#!/bin/sh\nsleep 10\n")

	n := NewNotifier(dir, 100*time.Millisecond, nil)

	start := time.Now()
	got := n.Publish(context.Background(), testEvent())
	elapsed := time.Since(start)

	if got != 0 {
		t.Errorf("Publish() = %d, want 0 for timed-out hook", got)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Publish() took %v, timeout not enforced", elapsed)
	}
}
