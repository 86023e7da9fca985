package manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"console-connections/pkg/connlist"
)

const defaultStatusFilename = "status.json"

// Snapshot is the live view written by the external connection manager.
//
// Example JSON:
//
//	{
//	  "connected": {
//	    "192.168.1.40": {"status": "connected", "filename": "Game_20240101T1200.slp", "nickname": "Wii"}
//	  },
//	  "available": [
//	    {"ip": "192.168.1.40", "name": "Living Room", "mac": "00:17:ab:00:00:01"}
//	  ]
//	}
type Snapshot struct {
	Connected map[string]connlist.LiveStatus `json:"connected,omitempty"`
	Available []connlist.DiscoveredConsole   `json:"available,omitempty"`
}

// DiscoveryStore holds the latest live status per address and the consoles
// currently visible on the network. It is safe for concurrent use.
type DiscoveryStore struct {
	mu        sync.RWMutex
	connected map[string]connlist.LiveStatus
	available []connlist.DiscoveredConsole
}

// NewDiscoveryStore returns an empty store.
func NewDiscoveryStore() *DiscoveryStore {
	return &DiscoveryStore{connected: map[string]connlist.LiveStatus{}}
}

// LiveStatus returns a copy of the address -> status map.
func (d *DiscoveryStore) LiveStatus() map[string]connlist.LiveStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]connlist.LiveStatus, len(d.connected))
	for k, v := range d.connected {
		out[k] = v
	}
	return out
}

// Available returns a copy of the discovered consoles.
func (d *DiscoveryStore) Available() []connlist.DiscoveredConsole {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]connlist.DiscoveredConsole(nil), d.available...)
}

// SetStatus records the live status for addr.
func (d *DiscoveryStore) SetStatus(addr string, st connlist.LiveStatus) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected[addr] = st
}

// RemoveStatus forgets the live status for addr.
func (d *DiscoveryStore) RemoveStatus(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.connected, strings.TrimSpace(addr))
}

// Apply replaces the store contents with snap. It reports whether anything
// changed, so callers can skip a redraw.
func (d *DiscoveryStore) Apply(snap Snapshot) bool {
	connected := make(map[string]connlist.LiveStatus, len(snap.Connected))
	for k, v := range snap.Connected {
		if k = strings.TrimSpace(k); k != "" {
			connected[k] = v
		}
	}
	available := append([]connlist.DiscoveredConsole(nil), snap.Available...)

	d.mu.Lock()
	defer d.mu.Unlock()
	changed := !reflect.DeepEqual(connected, d.connected) || !sameConsoles(available, d.available)
	d.connected = connected
	d.available = available
	return changed
}

func sameConsoles(a, b []connlist.DiscoveredConsole) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IP != b[i].IP || a[i].Name != b[i].Name || a[i].MAC != b[i].MAC || !a[i].FirstFound.Equal(b[i].FirstFound) {
			return false
		}
	}
	return true
}

// DefaultStatusPath returns the default snapshot location.
func DefaultStatusPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultStatusFilename), nil
}

// LoadSnapshot reads a snapshot file. A missing file yields an empty
// snapshot and nil error: no connection manager has reported yet.
func LoadSnapshot(path string) (Snapshot, error) {
	path = expandPath(strings.TrimSpace(path))
	if path == "" {
		return Snapshot{}, errors.New("status path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read status %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse status %s: %w", path, err)
	}
	return snap, nil
}
