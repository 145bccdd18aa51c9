// Command log-reps is a sample session hook. It reads the session event
// from stdin and appends one CSV line per completed session to
// ~/.healthy-world/sessions.csv.
//
// Install by building it into the hooks directory:
//
//	go build -o ~/.healthy-world/hooks/log-reps ./hooks/log-reps
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event mirrors the payload the notifier writes to every hook.
type Event struct {
	SessionID  string    `json:"sessionId"`
	Exercise   string    `json:"exercise"`
	Source     string    `json:"source"`
	Reps       int       `json:"reps"`
	DurationMs int64     `json:"durationMs"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
}

func main() {
	var event Event
	if err := json.NewDecoder(os.Stdin).Decode(&event); err != nil {
		fmt.Fprintf(os.Stderr, "decoding event: %v\n", err)
		os.Exit(1)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "home directory: %v\n", err)
		os.Exit(1)
	}

	path := filepath.Join(home, ".healthy-world", "sessions.csv")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s,%s,%s,%d,%d,%s\n",
		event.StartedAt.Format(time.RFC3339),
		event.Exercise,
		event.Source,
		event.Reps,
		event.DurationMs,
		event.SessionID,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "writing log: %v\n", err)
		os.Exit(1)
	}
}
