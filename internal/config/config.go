// Package config loads the healthy-world backend configuration from YAML
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full backend configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Camera   CameraConfig   `yaml:"camera"`
	Tracking TrackingConfig `yaml:"tracking"`
	Detector DetectorConfig `yaml:"detector"`
	Storage  StorageConfig  `yaml:"storage"`
	Hooks    HooksConfig    `yaml:"hooks"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CameraConfig struct {
	DeviceID int `yaml:"device_id"`
	// MotionThreshold is the percentage of changed pixels treated as
	// subject movement; 0 uses the built-in default.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

type TrackingConfig struct {
	// DefaultExercise is the catalog id selected when a live session
	// starts without an explicit choice.
	DefaultExercise string `yaml:"default_exercise"`
	// CooldownMs suppresses reps counted within this many milliseconds of
	// the previous one. 0 disables the cooldown.
	CooldownMs int `yaml:"cooldown_ms"`
}

// Cooldown returns the rep cooldown as a duration.
func (t TrackingConfig) Cooldown() time.Duration {
	return time.Duration(t.CooldownMs) * time.Millisecond
}

type DetectorConfig struct {
	ScriptPath    string  `yaml:"script_path"`
	PythonPath    string  `yaml:"python_path"`
	MinConfidence float64 `yaml:"min_confidence"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type HooksConfig struct {
	Dir       string `yaml:"dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".healthy-world")

	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Camera:   CameraConfig{DeviceID: 0, MotionThreshold: 1.0},
		Tracking: TrackingConfig{DefaultExercise: "bicep-curl", CooldownMs: 1500},
		Detector: DetectorConfig{MinConfidence: 0.5},
		Storage:  StorageConfig{DBPath: filepath.Join(dataDir, "healthy-world.db")},
		Hooks:    HooksConfig{Dir: filepath.Join(dataDir, "hooks"), TimeoutMs: 5000},
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix HEALTHYWORLD_ and underscore-separated
// paths:
//
//	HEALTHYWORLD_SERVER_HOST, HEALTHYWORLD_SERVER_PORT,
//	HEALTHYWORLD_CAMERA_DEVICE_ID, HEALTHYWORLD_DB_PATH,
//	HEALTHYWORLD_DEFAULT_EXERCISE, HEALTHYWORLD_COOLDOWN_MS,
//	HEALTHYWORLD_DETECTOR_SCRIPT, HEALTHYWORLD_DETECTOR_PYTHON,
//	HEALTHYWORLD_HOOKS_DIR
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config file when it exists and falls back to the
// defaults (still honoring env overrides) when it does not.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEALTHYWORLD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HEALTHYWORLD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HEALTHYWORLD_CAMERA_DEVICE_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Camera.DeviceID = id
		}
	}
	if v := os.Getenv("HEALTHYWORLD_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("HEALTHYWORLD_DEFAULT_EXERCISE"); v != "" {
		cfg.Tracking.DefaultExercise = v
	}
	if v := os.Getenv("HEALTHYWORLD_COOLDOWN_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Tracking.CooldownMs = ms
		}
	}
	if v := os.Getenv("HEALTHYWORLD_DETECTOR_SCRIPT"); v != "" {
		cfg.Detector.ScriptPath = v
	}
	if v := os.Getenv("HEALTHYWORLD_DETECTOR_PYTHON"); v != "" {
		cfg.Detector.PythonPath = v
	}
	if v := os.Getenv("HEALTHYWORLD_HOOKS_DIR"); v != "" {
		cfg.Hooks.Dir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Tracking.DefaultExercise == "" {
		return fmt.Errorf("tracking.default_exercise is required")
	}
	if c.Tracking.CooldownMs < 0 {
		return fmt.Errorf("tracking.cooldown_ms must not be negative")
	}
	return nil
}
