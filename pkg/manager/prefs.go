package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultPrefsFilename = "config.toml"
	defaultPollInterval  = time.Second
	minPollInterval      = 100 * time.Millisecond
)

// Prefs are user preferences read from config.toml.
//
// Example TOML:
//
//	theme = "dark"
//	poll_interval = "500ms"
//	settings_path = "~/Slippi/connections.yaml"
//	status_path = "/tmp/slippi-status.json"
//	log_dir = "~/.cache/console-connections/logs"
type Prefs struct {
	Theme        string `toml:"theme"`
	PollInterval string `toml:"poll_interval"`
	SettingsPath string `toml:"settings_path"`
	StatusPath   string `toml:"status_path"`
	LogDir       string `toml:"log_dir"`
}

// DefaultPrefsPath returns the default config.toml location.
func DefaultPrefsPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultPrefsFilename), nil
}

// LoadPrefs reads preferences from path (default location when empty).
// A missing file yields zero Prefs and nil error.
func LoadPrefs(path string) (Prefs, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPrefsPath()
		if err != nil {
			return Prefs{}, err
		}
		path = p
	}
	path = expandPath(path)

	var p Prefs
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	if _, err := p.Poll(); err != nil {
		return Prefs{}, fmt.Errorf("invalid prefs %s: %w", path, err)
	}
	return p, nil
}

// Poll returns the snapshot poll interval, defaulting to one second.
func (p Prefs) Poll() (time.Duration, error) {
	v := strings.TrimSpace(p.PollInterval)
	if v == "" {
		return defaultPollInterval, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("poll_interval: %w", err)
	}
	if d < minPollInterval {
		return 0, fmt.Errorf("poll_interval: must be >= %s, got %s", minPollInterval, d)
	}
	return d, nil
}
