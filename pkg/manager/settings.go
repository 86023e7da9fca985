// Package manager hosts the saved console connections application: the
// settings and discovery stores, preferences, logging, and the Bubble Tea UI.
package manager

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"console-connections/pkg/connlist"
)

const (
	appDirName              = "console-connections"
	defaultSettingsFilename = "connections.yaml"
)

var (
	// ErrSettingsNotFound is returned when no settings file can be located.
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrConnectionNotFound is returned when an ID does not match a saved connection.
	ErrConnectionNotFound = errors.New("connection not found")
)

// Settings is the on-disk YAML document.
//
// Example YAML:
//
// connections:
//   - id: 5f0c7d2e-1b7a-4d8e-9a55-0c3e1f9b2a10
//     ip_address: 192.168.1.40
//     folder_path: ~/Slippi/Spectate
//     port: 51441
//     enable_relay: true
type Settings struct {
	Connections []connlist.SavedConnection `yaml:"connections"`
}

// Validate performs basic sanity checks on the settings.
//
// - IDs must be non-empty and unique.
// - ip_address must parse as an IP address.
// - port, if set, must fit in 1..65535.
func (s *Settings) Validate() error {
	seen := map[string]struct{}{}
	for i, c := range s.Connections {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return fmt.Errorf("connections[%d]: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("connections[%d]: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}
		if err := validateConnectionFields(c); err != nil {
			return fmt.Errorf("connections[%d](%s): %w", i, id, err)
		}
	}
	return nil
}

func validateConnectionFields(c connlist.SavedConnection) error {
	addr := strings.TrimSpace(c.IPAddress)
	if addr == "" {
		return errors.New("ip_address is required")
	}
	if net.ParseIP(addr) == nil {
		return fmt.Errorf("invalid ip_address %q", c.IPAddress)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port: must be within 1..65535, got %d", c.Port)
	}
	if obs := strings.TrimSpace(c.OBSIP); obs != "" && net.ParseIP(obs) == nil {
		return fmt.Errorf("invalid obs_ip %q", c.OBSIP)
	}
	return nil
}

// DefaultConfigDir returns the directory path for this application's files.
// Precedence:
//  1. $XDG_CONFIG_HOME/console-connections
//  2. ~/.config/console-connections
func DefaultConfigDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// SettingsPathCandidates returns possible settings file paths, in priority order.
func SettingsPathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv("CONSOLE_CONNECTIONS_SETTINGS"); env != "" {
		out = append(out, env)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		out = append(out, filepath.Join(dir, defaultSettingsFilename))
	}
	return out
}

// SettingsStore owns the persisted, ordered list of saved connections.
// It is safe for concurrent use.
type SettingsStore struct {
	mu    sync.RWMutex
	path  string
	conns []connlist.SavedConnection
}

// NewSettingsStore returns an empty store that saves to path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: expandPath(path)}
}

// LoadSettings reads the first existing candidate path. When none exists,
// it returns an empty store bound to the highest-priority candidate, so the
// first Save creates the file there.
func LoadSettings(explicitPath string) (*SettingsStore, error) {
	candidates := SettingsPathCandidates(explicitPath)
	if len(candidates) == 0 {
		return nil, ErrSettingsNotFound
	}
	for _, p := range candidates {
		p = expandPath(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read settings %s: %w", p, err)
		}
		var s Settings
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", p, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid settings %s: %w", p, err)
		}
		return &SettingsStore{path: p, conns: s.Connections}, nil
	}
	return NewSettingsStore(candidates[0]), nil
}

// Path returns the file the store saves to.
func (s *SettingsStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Connections returns a copy of the saved connections in display order.
func (s *SettingsStore) Connections() []connlist.SavedConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]connlist.SavedConnection(nil), s.conns...)
}

// Find returns the connection with the given ID.
func (s *SettingsStore) Find(id string) (connlist.SavedConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.conns[i], true
	}
	return connlist.SavedConnection{}, false
}

// Add appends conn with a freshly assigned ID and returns the stored value.
// Any ID set by the caller is replaced.
func (s *SettingsStore) Add(conn connlist.SavedConnection) (connlist.SavedConnection, error) {
	conn.IPAddress = strings.TrimSpace(conn.IPAddress)
	if err := validateConnectionFields(conn); err != nil {
		return connlist.SavedConnection{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conn.ID = uuid.NewString()
	s.conns = append(s.conns, conn)
	return conn, nil
}

// Update replaces the connection with the same ID, keeping its position.
func (s *SettingsStore) Update(conn connlist.SavedConnection) error {
	conn.IPAddress = strings.TrimSpace(conn.IPAddress)
	if err := validateConnectionFields(conn); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(conn.ID)
	if i < 0 {
		return fmt.Errorf("update %q: %w", conn.ID, ErrConnectionNotFound)
	}
	s.conns[i] = conn
	return nil
}

// Delete removes the connection with the given ID.
func (s *SettingsStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrConnectionNotFound)
	}
	s.conns = append(s.conns[:i:i], s.conns[i+1:]...)
	return nil
}

func (s *SettingsStore) indexOf(id string) int {
	if strings.TrimSpace(id) == "" {
		return -1
	}
	for i := range s.conns {
		if s.conns[i].ID == id {
			return i
		}
	}
	return -1
}

// Save writes the settings YAML atomically.
// The parent directory is created with 0700 permissions if missing.
func (s *SettingsStore) Save() error {
	s.mu.RLock()
	path := s.path
	doc := Settings{Connections: append([]connlist.SavedConnection(nil), s.conns...)}
	s.mu.RUnlock()

	if strings.TrimSpace(path) == "" {
		return errors.New("settings path is empty")
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create settings dir %s: %w", dir, err)
	}

	payload, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp := path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp settings %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename to %s: %w", path, err)
	}
	return nil
}

// expandPath expands leading "~" and environment variables in a path.
// If the input is empty, returns "".
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		if home != "" {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
