// Package connlist merges saved console connections with live discovery and
// connection status, and tracks the contextual menu selection for the list.
//
// Nothing in this package performs I/O. Stores are read through small
// interfaces so the host UI can re-run the merge whenever it is notified of a
// change.
package connlist

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidStatus is returned when a status string cannot be parsed.
var ErrInvalidStatus = errors.New("invalid connection status")

// ConnectionStatus is the live state of the link to a console.
type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Connecting
	Connected
	ReconnectWait
)

// String returns the lowercase text form used in snapshots and the UI.
func (s ConnectionStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ReconnectWait:
		return "reconnecting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus accepts the text forms produced by String plus a few aliases
// ("reconnect_wait", "reconnect-wait") and the numeric codes 0-3.
func ParseStatus(v string) (ConnectionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "disconnected", "0", "":
		return Disconnected, nil
	case "connecting", "1":
		return Connecting, nil
	case "connected", "2":
		return Connected, nil
	case "reconnecting", "reconnect_wait", "reconnect-wait", "3":
		return ReconnectWait, nil
	}
	return Disconnected, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
}

// MarshalText implements encoding.TextMarshaler.
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	if s < Disconnected || s > ReconnectWait {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ConnectionStatus) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SavedConnection is a user-persisted console the user wants to reconnect to.
// ID is assigned by the settings store when the entry is created.
type SavedConnection struct {
	ID        string `yaml:"id" json:"id"`
	IPAddress string `yaml:"ip_address" json:"ip_address"`

	FolderPath         string `yaml:"folder_path,omitempty" json:"folder_path,omitempty"`
	IsRealTimeMode     bool   `yaml:"real_time_mode,omitempty" json:"real_time_mode,omitempty"`
	Port               int    `yaml:"port,omitempty" json:"port,omitempty"`
	ConsoleNick        string `yaml:"console_nick,omitempty" json:"console_nick,omitempty"`
	EnableRelay        bool   `yaml:"enable_relay,omitempty" json:"enable_relay,omitempty"`
	EnableAutoSwitcher bool   `yaml:"enable_auto_switcher,omitempty" json:"enable_auto_switcher,omitempty"`
	OBSIP              string `yaml:"obs_ip,omitempty" json:"obs_ip,omitempty"`
	OBSSourceName      string `yaml:"obs_source_name,omitempty" json:"obs_source_name,omitempty"`
	OBSPassword        string `yaml:"obs_password,omitempty" json:"obs_password,omitempty"`
	UseNicknameFolders bool   `yaml:"use_nickname_folders,omitempty" json:"use_nickname_folders,omitempty"`
}

// DiscoveredConsole is a console currently visible on the local network.
type DiscoveredConsole struct {
	IP         string    `json:"ip"`
	Name       string    `json:"name,omitempty"`
	MAC        string    `json:"mac,omitempty"`
	FirstFound time.Time `json:"first_found,omitempty"`
}

// LiveStatus is the per-address state reported by the connection manager.
// Empty Filename or Nickname means the value is absent.
type LiveStatus struct {
	Status   ConnectionStatus `json:"status"`
	Filename string           `json:"filename,omitempty"`
	Nickname string           `json:"nickname,omitempty"`
}

// ConnectionSource exposes the current, ordered saved connections.
type ConnectionSource interface {
	Connections() []SavedConnection
}

// ConnectionSourceFunc adapts a function to ConnectionSource.
type ConnectionSourceFunc func() []SavedConnection

// Connections calls f.
func (f ConnectionSourceFunc) Connections() []SavedConnection { return f() }
