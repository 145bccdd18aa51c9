// Package notify delivers completed session results to external consumers.
// Consumers are hook executables dropped into a directory; each one receives
// the session result as JSON on stdin. This is the seam where things like
// challenge submission or reward issuance attach without the tracking core
// knowing about them.
package notify

import (
	"os"
	"path/filepath"
	"time"
)

// Event is the payload handed to every hook.
type Event struct {
	SessionID  string    `json:"sessionId"`
	Exercise   string    `json:"exercise"`
	Source     string    `json:"source"` // "live" or "video"
	Reps       int       `json:"reps"`
	DurationMs int64     `json:"durationMs"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
}

// discoverHooks lists the executable files directly inside dir. A missing
// directory means no hooks, not an error.
func discoverHooks(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var hooks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.Mode()&0111 == 0 {
			continue
		}
		hooks = append(hooks, filepath.Join(dir, entry.Name()))
	}

	return hooks, nil
}
