package connlist

// Row is the render-ready projection of one saved connection.
type Row struct {
	// Index is the position of Connection in the saved list; the menu
	// addresses rows by it.
	Index      int
	Connection SavedConnection

	Status          ConnectionStatus
	IsAvailable     bool
	CurrentFilename string
	Nickname        string
}

// DisplayName returns the nickname, or the raw address when none is known.
func (r Row) DisplayName() string {
	if r.Nickname != "" {
		return r.Nickname
	}
	return r.Connection.IPAddress
}

// HasNickname reports whether a nickname was resolved for the row.
func (r Row) HasNickname() bool { return r.Nickname != "" }

// IndexDiscovered builds an address -> console index. When an address shows up
// more than once, the first entry wins.
func IndexDiscovered(available []DiscoveredConsole) map[string]DiscoveredConsole {
	idx := make(map[string]DiscoveredConsole, len(available))
	for _, c := range available {
		if _, seen := idx[c.IP]; seen {
			continue
		}
		idx[c.IP] = c
	}
	return idx
}

// BuildRows merges saved connections with live status and discovery results.
//
// The result has exactly one row per connection, in the same order. Lookups
// use exact address matches. A missing status means Disconnected with no
// filename or nickname; availability only reflects discovery. The live
// nickname wins over the discovered name. Inputs are not modified.
func BuildRows(conns []SavedConnection, live map[string]LiveStatus, available []DiscoveredConsole) []Row {
	discovered := IndexDiscovered(available)
	rows := make([]Row, len(conns))
	for i, conn := range conns {
		row := Row{
			Index:      i,
			Connection: conn,
			Status:     Disconnected,
		}

		st, hasStatus := live[conn.IPAddress]
		if hasStatus {
			row.Status = st.Status
			row.CurrentFilename = st.Filename
		}

		info, found := discovered[conn.IPAddress]
		row.IsAvailable = found

		switch {
		case hasStatus && st.Nickname != "":
			row.Nickname = st.Nickname
		case found:
			row.Nickname = info.Name
		}

		rows[i] = row
	}
	return rows
}
