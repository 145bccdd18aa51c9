// Command desktop-notify is a sample session hook that shows a desktop
// notification when a session completes. It uses osascript on macOS and
// notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

type event struct {
	Exercise   string `json:"exercise"`
	Source     string `json:"source"`
	Reps       int    `json:"reps"`
	DurationMs int64  `json:"durationMs"`
}

func main() {
	var ev event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		fmt.Fprintf(os.Stderr, "decoding event: %v\n", err)
		os.Exit(1)
	}

	title := "HealthyWorld"
	body := fmt.Sprintf("%d reps of %s (%.0fs)", ev.Reps, ev.Exercise, float64(ev.DurationMs)/1000)

	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf(`display notification %q with title %q`, body, title)
		cmd = exec.Command("osascript", "-e", script)
	} else {
		cmd = exec.Command("notify-send", title, body)
	}

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "showing notification: %v\n", err)
		os.Exit(1)
	}
}
