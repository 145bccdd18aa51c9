// Package tray provides the system tray interface for healthy-world: a
// start/stop tracking toggle, exercise selection, and a live rep readout.
package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"

	"github.com/Abhijeet1520/healthy-world/internal/exercise"
)

// Tray is the system tray menu.
type Tray struct {
	exercises []exercise.Definition

	onToggle   func(tracking bool)
	onExercise func(id string)
	onDash     func()
	onQuit     func()
	tracking   bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuReps   *systray.MenuItem
	menuItems  []*systray.MenuItem
}

// New creates a Tray offering the given exercises.
func New(exercises []exercise.Definition) *Tray {
	return &Tray{exercises: exercises}
}

// OnToggle sets the callback for the start/stop tracking menu item.
func (t *Tray) OnToggle(fn func(tracking bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnExercise sets the callback for selecting an exercise.
func (t *Tray) OnExercise(fn func(id string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExercise = fn
}

// OnDashboard sets the callback for the open-dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDash = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. Blocks until systray.Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("HealthyWorld")
	systray.SetTooltip("HealthyWorld rep tracking")

	t.menuToggle = systray.AddMenuItem("▶ Start Tracking", "Start or stop the live session")
	systray.AddSeparator()

	t.menuReps = systray.AddMenuItem("Reps: 0", "Current session rep count")
	t.menuReps.Disable()
	systray.AddSeparator()

	exerciseMenu := systray.AddMenuItem("Exercise", "Choose the tracked exercise")
	for _, def := range t.exercises {
		item := exerciseMenu.AddSubMenuItem(def.Name, def.Description)
		t.menuItems = append(t.menuItems, item)
	}
	systray.AddSeparator()

	menuDash := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit HealthyWorld")

	go func() {
		cases := make([]<-chan struct{}, len(t.menuItems))
		for i, item := range t.menuItems {
			cases[i] = item.ClickedCh
		}
		for i, ch := range cases {
			go t.watchExercise(t.exercises[i].ID, ch)
		}

		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDash.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// watchExercise forwards clicks on one exercise submenu item.
func (t *Tray) watchExercise(id string, clicked <-chan struct{}) {
	for range clicked {
		t.mu.RLock()
		callback := t.onExercise
		t.mu.RUnlock()

		if callback != nil {
			callback(id)
		}
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.tracking = !t.tracking
	tracking := t.tracking

	if tracking {
		t.menuToggle.SetTitle("■ Stop Tracking")
	} else {
		t.menuToggle.SetTitle("▶ Start Tracking")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(tracking)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDash
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetReps updates the rep readout in the menu.
func (t *Tray) SetReps(exerciseID string, reps int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuReps != nil {
		t.menuReps.SetTitle("Reps: " + strconv.Itoa(reps) + " (" + exerciseID + ")")
	}
}

// SetTracking reflects an externally driven session state, for example a
// session started over the HTTP API.
func (t *Tray) SetTracking(tracking bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking == tracking || t.menuToggle == nil {
		t.tracking = tracking
		return
	}
	t.tracking = tracking
	if tracking {
		t.menuToggle.SetTitle("■ Stop Tracking")
	} else {
		t.menuToggle.SetTitle("▶ Start Tracking")
	}
}

// IsTracking returns whether the toggle currently shows a running session.
func (t *Tray) IsTracking() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracking
}
