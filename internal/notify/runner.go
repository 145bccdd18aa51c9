package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Notifier runs session-completion hooks with a per-hook timeout.
type Notifier struct {
	dir     string
	timeout time.Duration
	log     *slog.Logger
}

// NewNotifier creates a Notifier over the given hooks directory. A timeout
// of zero defaults to 5 seconds.
func NewNotifier(dir string, timeout time.Duration, log *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		dir:     dir,
		timeout: timeout,
		log:     log.With("component", "notify"),
	}
}

// Publish delivers the event to every hook in the directory, sequentially.
// Hook failures are logged, never propagated: a broken hook must not take
// down the tracking pipeline. The returned count is the number of hooks
// that ran successfully.
func (n *Notifier) Publish(ctx context.Context, event Event) int {
	hooks, err := discoverHooks(n.dir)
	if err != nil {
		n.log.Warn("discovering hooks", "dir", n.dir, "error", err)
		return 0
	}
	if len(hooks) == 0 {
		return 0
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Warn("encoding hook payload", "error", err)
		return 0
	}

	ok := 0
	for _, hook := range hooks {
		if err := n.runHook(ctx, hook, payload); err != nil {
			n.log.Warn("hook failed", "hook", hook, "error", err)
			continue
		}
		n.log.Debug("hook delivered", "hook", hook, "session", event.SessionID)
		ok++
	}

	return ok
}

// runHook executes one hook with the payload on stdin, bounded by the
// notifier's timeout.
func (n *Notifier) runHook(ctx context.Context, hook string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, hook)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timed out after %v", n.timeout)
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("%w: %s", err, stderr.String())
		}
		return err
	}

	return nil
}
