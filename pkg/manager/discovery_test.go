package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console-connections/pkg/connlist"
)

func TestLoadSnapshot_MissingFileIsEmpty(t *testing.T) {
	snap, err := LoadSnapshot(filepath.Join(t.TempDir(), "status.json"))
	require.NoError(t, err)
	assert.Empty(t, snap.Connected)
	assert.Empty(t, snap.Available)
}

func TestLoadSnapshot_ParsesStatusForms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	doc := `{
  "connected": {
    "10.0.0.1": {"status": "connected", "filename": "Game_1.slp", "nickname": "Wii"},
    "10.0.0.2": {"status": "reconnect_wait"},
    "10.0.0.3": {"status": "connecting"}
  },
  "available": [{"ip": "10.0.0.1", "name": "Living Room", "mac": "00:17:ab:00:00:01"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, connlist.LiveStatus{Status: connlist.Connected, Filename: "Game_1.slp", Nickname: "Wii"}, snap.Connected["10.0.0.1"])
	assert.Equal(t, connlist.ReconnectWait, snap.Connected["10.0.0.2"].Status)
	assert.Equal(t, connlist.Connecting, snap.Connected["10.0.0.3"].Status)
	require.Len(t, snap.Available, 1)
	assert.Equal(t, "Living Room", snap.Available[0].Name)
}

func TestLoadSnapshot_RejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"connected": {"10.0.0.1": {"status": "online"}}}`), 0o600))

	_, err := LoadSnapshot(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, connlist.ErrInvalidStatus)
}

func TestDiscoveryStore_ApplyReportsChanges(t *testing.T) {
	d := NewDiscoveryStore()
	snap := Snapshot{
		Connected: map[string]connlist.LiveStatus{"10.0.0.1": {Status: connlist.Connected}},
		Available: []connlist.DiscoveredConsole{{IP: "10.0.0.1", Name: "Wii"}},
	}

	assert.True(t, d.Apply(snap))
	assert.False(t, d.Apply(snap), "same snapshot should not report a change")

	snap.Connected = map[string]connlist.LiveStatus{"10.0.0.1": {Status: connlist.ReconnectWait}}
	assert.True(t, d.Apply(snap))
	assert.Equal(t, connlist.ReconnectWait, d.LiveStatus()["10.0.0.1"].Status)
}

func TestDiscoveryStore_ReturnsCopies(t *testing.T) {
	d := NewDiscoveryStore()
	d.SetStatus("10.0.0.1", connlist.LiveStatus{Status: connlist.Connected})
	d.Apply(Snapshot{
		Connected: d.LiveStatus(),
		Available: []connlist.DiscoveredConsole{{IP: "10.0.0.1"}},
	})

	live := d.LiveStatus()
	live["10.0.0.9"] = connlist.LiveStatus{}
	avail := d.Available()
	avail[0].Name = "changed"

	assert.Len(t, d.LiveStatus(), 1)
	assert.Equal(t, "", d.Available()[0].Name)
}

func TestDiscoveryStore_SetAndRemoveStatus(t *testing.T) {
	d := NewDiscoveryStore()
	d.SetStatus(" 10.0.0.1 ", connlist.LiveStatus{Status: connlist.Connecting})
	d.SetStatus("", connlist.LiveStatus{Status: connlist.Connected})

	live := d.LiveStatus()
	require.Len(t, live, 1)
	assert.Equal(t, connlist.Connecting, live["10.0.0.1"].Status)

	d.RemoveStatus("10.0.0.1")
	assert.Empty(t, d.LiveStatus())
}
