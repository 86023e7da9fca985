package connlist

// Selection is the row an open contextual menu belongs to.
type Selection struct {
	// Index is the row position when the menu was opened.
	Index int
	// ID is the connection identity found at Index when the menu was opened;
	// empty if Index was out of range at that moment.
	ID string
	// Anchor is an opaque UI handle used to position the menu.
	Anchor any
}

// Menu tracks at most one open contextual menu and routes edit/delete
// commits to the parent's callbacks.
//
// Commits read the connection list from the source at commit time. The
// callback only runs when the selected index is still in range and still
// holds the connection that was there when the menu opened; otherwise the
// commit is dropped. Every commit closes the menu.
type Menu struct {
	source   ConnectionSource
	onEdit   func(SavedConnection)
	onDelete func(SavedConnection)

	sel  Selection
	open bool
}

// NewMenu returns a closed menu. Nil callbacks are allowed and ignored.
func NewMenu(source ConnectionSource, onEdit, onDelete func(SavedConnection)) *Menu {
	return &Menu{source: source, onEdit: onEdit, onDelete: onDelete}
}

// Open selects the row at index, replacing any open selection.
func (m *Menu) Open(index int, anchor any) {
	id := ""
	if conn, ok := m.at(index); ok {
		id = conn.ID
	}
	m.sel = Selection{Index: index, ID: id, Anchor: anchor}
	m.open = true
}

// Close discards the selection.
func (m *Menu) Close() {
	m.sel = Selection{}
	m.open = false
}

// IsOpen reports whether a menu is open.
func (m *Menu) IsOpen() bool { return m.open }

// Selection returns the current selection and whether the menu is open.
func (m *Menu) Selection() (Selection, bool) {
	return m.sel, m.open
}

// CommitEdit invokes the edit callback for the selected connection, then
// closes the menu. It reports whether the selection still resolved.
func (m *Menu) CommitEdit() bool { return m.commit(m.onEdit) }

// CommitDelete invokes the delete callback for the selected connection, then
// closes the menu. It reports whether the selection still resolved.
func (m *Menu) CommitDelete() bool { return m.commit(m.onDelete) }

func (m *Menu) commit(cb func(SavedConnection)) bool {
	defer m.Close()
	conn, ok := m.resolve()
	if !ok {
		return false
	}
	if cb != nil {
		cb(conn)
	}
	return true
}

// resolve returns the selected connection from the current list.
func (m *Menu) resolve() (SavedConnection, bool) {
	if !m.open {
		return SavedConnection{}, false
	}
	conn, ok := m.at(m.sel.Index)
	if !ok {
		return SavedConnection{}, false
	}
	if m.sel.ID != "" && conn.ID != m.sel.ID {
		return SavedConnection{}, false
	}
	return conn, true
}

func (m *Menu) at(index int) (SavedConnection, bool) {
	if m.source == nil || index < 0 {
		return SavedConnection{}, false
	}
	conns := m.source.Connections()
	if index >= len(conns) {
		return SavedConnection{}, false
	}
	return conns[index], true
}
