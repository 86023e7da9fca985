package manager

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console-connections/pkg/connlist"
)

func newTestModel(t *testing.T, addrs ...string) (model, *SettingsStore, *DiscoveryStore) {
	t.Helper()
	st := NewSettingsStore(filepath.Join(t.TempDir(), "connections.yaml"))
	for _, a := range addrs {
		if _, err := st.Add(connlist.SavedConnection{IPAddress: a}); err != nil {
			t.Fatalf("add %s: %v", a, err)
		}
	}
	d := NewDiscoveryStore()
	m := newModel(st, d, UIOptions{ThemeName: "none", Logger: DiscardLogger()})
	return m, st, d
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, k tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(model), cmd
}

// deliver runs cmd and feeds its message back into the model.
func deliver(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	require.NotNil(t, cmd, "expected a command from the menu commit")
	next, _ := m.Update(cmd())
	return next.(model)
}

func TestTUI_EmptyListShowsPlaceholder(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No saved connections")

	// No menu can be opened on an empty list.
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.menu.IsOpen())
}

func TestTUI_ViewOverlaysLiveStatus(t *testing.T) {
	m, _, d := newTestModel(t, "10.0.0.1", "10.0.0.2")
	d.Apply(Snapshot{
		Connected: map[string]connlist.LiveStatus{"10.0.0.1": {Status: connlist.Connected, Nickname: "Wii", Filename: "Game_1.slp"}},
		Available: []connlist.DiscoveredConsole{{IP: "10.0.0.2", Name: "Kitchen"}},
	})

	out := m.View()
	assert.Contains(t, out, "Wii (10.0.0.1)")
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "file:Game_1.slp")
	assert.Contains(t, out, "Kitchen (10.0.0.2)")
	assert.Contains(t, out, "disconnected")
}

func TestTUI_MenuDeleteRemovesSelectedRow(t *testing.T) {
	m, st, _ := newTestModel(t, "10.0.0.1", "10.0.0.2")
	target := st.Connections()[1]

	m, _ = press(t, m, keyRunes("j"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.menu.IsOpen())
	assert.Contains(t, m.View(), "Delete")

	m, cmd := press(t, m, keyRunes("d"))
	assert.False(t, m.menu.IsOpen())
	m = deliver(t, m, cmd)

	conns := st.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "10.0.0.1", conns[0].IPAddress)
	_, found := st.Find(target.ID)
	assert.False(t, found)
	assert.Equal(t, 0, m.cursor)

	reloaded, err := LoadSettings(st.Path())
	require.NoError(t, err)
	assert.Len(t, reloaded.Connections(), 1)
}

func TestTUI_StaleMenuDeleteIsNoop(t *testing.T) {
	m, st, _ := newTestModel(t, "10.0.0.1", "10.0.0.2")
	second := st.Connections()[1]

	m, _ = press(t, m, keyRunes("j"))
	m, _ = press(t, m, keyRunes("m"))
	require.True(t, m.menu.IsOpen())

	// The list shrinks underneath the open menu.
	require.NoError(t, st.Delete(second.ID))

	m, cmd := press(t, m, keyRunes("d"))
	assert.Nil(t, cmd)
	assert.False(t, m.menu.IsOpen())
	assert.Len(t, st.Connections(), 1)
	assert.Contains(t, m.status, "list changed")
}

func TestTUI_MenuEditOpensFormAndSaves(t *testing.T) {
	m, st, _ := newTestModel(t, "10.0.0.1")
	orig := st.Connections()[0]

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, keyRunes("e"))
	m = deliver(t, m, cmd)
	require.NotNil(t, m.form)
	assert.False(t, m.form.isNew)
	assert.Equal(t, "10.0.0.1", m.form.inputs[fieldAddress].Value())

	m.form.inputs[fieldFolder].SetValue("/replays")
	m.form.inputs[fieldPort].SetValue("51441")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, m.form)
	got, ok := st.Find(orig.ID)
	require.True(t, ok)
	assert.Equal(t, "/replays", got.FolderPath)
	assert.Equal(t, 51441, got.Port)
}

func TestTUI_FormRejectsBadPort(t *testing.T) {
	m, st, _ := newTestModel(t, "10.0.0.1")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, keyRunes("e"))
	m = deliver(t, m, cmd)
	m.form.inputs[fieldPort].SetValue("abc")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.form)
	assert.Contains(t, m.form.err, "port")
	assert.Equal(t, 0, st.Connections()[0].Port)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.form)
}

func TestTUI_AddConnection(t *testing.T) {
	m, st, _ := newTestModel(t)

	m, _ = press(t, m, keyRunes("a"))
	require.NotNil(t, m.form)
	require.True(t, m.form.isNew)
	m.form.inputs[fieldAddress].SetValue("192.168.1.40")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, m.form)
	conns := st.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "192.168.1.40", conns[0].IPAddress)
	assert.NotEmpty(t, conns[0].ID)
}

func TestTUI_ReopenMenuOnOtherRowReplacesSelection(t *testing.T) {
	m, st, _ := newTestModel(t, "10.0.0.1", "10.0.0.2")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.menu.IsOpen())

	m, _ = press(t, m, keyRunes("j"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	sel, open := m.menu.Selection()
	require.True(t, open)
	assert.Equal(t, 1, sel.Index)
	assert.Equal(t, rowAnchor{line: 1}, sel.Anchor)

	m, cmd := press(t, m, keyRunes("d"))
	_ = deliver(t, m, cmd)
	conns := st.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "10.0.0.1", conns[0].IPAddress)
}

func TestTUI_SnapshotErrorIsReported(t *testing.T) {
	m, _, _ := newTestModel(t, "10.0.0.1")
	next, _ := m.Update(snapshotLoadedMsg{err: assert.AnError})
	m = next.(model)
	assert.True(t, strings.HasPrefix(m.status, "status: "))
}

func TestTUI_QuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := press(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "", m.View())
}
