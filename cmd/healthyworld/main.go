package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Abhijeet1520/healthy-world/internal/app"
	"github.com/Abhijeet1520/healthy-world/internal/capture"
	"github.com/Abhijeet1520/healthy-world/internal/config"
	"github.com/Abhijeet1520/healthy-world/internal/detector"
	"github.com/Abhijeet1520/healthy-world/internal/exercise"
	"github.com/Abhijeet1520/healthy-world/internal/notify"
	"github.com/Abhijeet1520/healthy-world/internal/server"
	"github.com/Abhijeet1520/healthy-world/internal/session"
	"github.com/Abhijeet1520/healthy-world/internal/store"
	"github.com/Abhijeet1520/healthy-world/internal/tray"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	noTray := flag.Bool("no-tray", false, "run headless without the system tray")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := run(*configPath, *noTray, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, noTray bool, log *slog.Logger) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	catalog := exercise.NewCatalog()
	notifier := notify.NewNotifier(cfg.Hooks.Dir, time.Duration(cfg.Hooks.TimeoutMs)*time.Millisecond, log)

	detCfg := detector.DefaultConfig()
	if cfg.Detector.ScriptPath != "" {
		detCfg.ScriptPath = cfg.Detector.ScriptPath
	}
	if cfg.Detector.PythonPath != "" {
		detCfg.PythonPath = cfg.Detector.PythonPath
	}
	if cfg.Detector.MinConfidence > 0 {
		detCfg.MinConfidence = cfg.Detector.MinConfidence
	}

	application, err := app.New(app.Config{
		Store:           st,
		Catalog:         catalog,
		Notifier:        notifier,
		Source:          capture.NewCamera(cfg.Camera.DeviceID),
		NewDetector:     func() (detector.Detector, error) { return detector.NewMediaPipeDetector(detCfg) },
		DefaultExercise: cfg.Tracking.DefaultExercise,
		Cooldown:        cfg.Tracking.Cooldown(),
		MotionThreshold: cfg.Camera.MotionThreshold,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	srv := server.New(application, server.Options{Logger: log})

	addr := cfg.Server.Addr()
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(addr)
	}()

	if noTray {
		return <-errCh
	}

	t := tray.New(catalog.List())
	t.OnToggle(func(tracking bool) {
		if tracking {
			if err := application.StartTracking(); err != nil {
				log.Error("starting live session", "error", err)
				t.SetTracking(false)
			}
			return
		}
		if _, err := application.StopTracking(context.Background()); err != nil {
			log.Warn("stopping live session", "error", err)
		}
	})
	t.OnExercise(func(id string) {
		if err := application.SetExercise(id); err != nil {
			log.Warn("switching exercise", "error", err)
		}
	})
	t.OnDashboard(func() {
		openBrowser("http://" + addr)
	})

	// Keep the rep readout current while a session runs.
	updates, cancel := application.Subscribe()
	defer cancel()
	go func() {
		for u := range updates {
			t.SetReps(u.Exercise, u.Reps)
		}
	}()

	// Sessions started or stopped over HTTP must flip the tray toggle too.
	statuses, cancelStatus := application.SubscribeStatus()
	defer cancelStatus()
	go func() {
		for st := range statuses {
			t.SetTracking(st == session.StatusRunning)
		}
	}()

	go func() {
		if err := <-errCh; err != nil {
			log.Error("http server", "error", err)
		}
	}()

	t.Run() // blocks until Quit
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".healthy-world", "config.yaml")
}

// openBrowser opens the dashboard URL with the platform's opener.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("opening browser", "url", url, "error", err)
	}
}
