package manager

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"console-connections/pkg/connlist"
)

// RunTUI starts the saved connections list.
func RunTUI(settings *SettingsStore, discovery *DiscoveryStore, opts UIOptions) error {
	if settings == nil {
		return errors.New("nil settings store")
	}
	if discovery == nil {
		discovery = NewDiscoveryStore()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	m := newModel(settings, discovery, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type snapshotTickMsg time.Time

type snapshotLoadedMsg struct {
	snap Snapshot
	err  error
}

type statusMsg string

// editConnectionMsg and deleteConnectionMsg carry the menu's callbacks back
// into Update.
type editConnectionMsg struct {
	conn connlist.SavedConnection
}

type deleteConnectionMsg struct {
	conn connlist.SavedConnection
}

// rowAnchor positions the contextual menu under a rendered row.
type rowAnchor struct {
	line int
}

// actionQueue collects commands emitted by callbacks during a single Update.
type actionQueue struct {
	cmds []tea.Cmd
}

func (q *actionQueue) push(msg tea.Msg) {
	q.cmds = append(q.cmds, func() tea.Msg { return msg })
}

func (q *actionQueue) drain() tea.Cmd {
	cmds := q.cmds
	q.cmds = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Menu   key.Binding
	Edit   key.Binding
	Delete key.Binding
	Close  key.Binding
	Add    key.Binding
	Next   key.Binding
	Prev   key.Binding
	Save   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Menu:   key.NewBinding(key.WithKeys("enter", "m"), key.WithHelp("enter/m", "menu")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Menu, k.Add, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Menu}, {k.Edit, k.Delete, k.Close}, {k.Add, k.Quit}}
}

type menuKeys struct{ k keyMap }

func (m menuKeys) ShortHelp() []key.Binding  { return []key.Binding{m.k.Edit, m.k.Delete, m.k.Close} }
func (m menuKeys) FullHelp() [][]key.Binding { return [][]key.Binding{m.ShortHelp()} }

type formKeys struct{ k keyMap }

func (f formKeys) ShortHelp() []key.Binding  { return []key.Binding{f.k.Next, f.k.Prev, f.k.Save, f.k.Close} }
func (f formKeys) FullHelp() [][]key.Binding { return [][]key.Binding{f.ShortHelp()} }

const (
	fieldAddress = iota
	fieldPort
	fieldFolder
	fieldNick
	fieldCount
)

// editForm edits one connection. isNew is set when adding.
type editForm struct {
	conn   connlist.SavedConnection
	isNew  bool
	inputs []textinput.Model
	focus  int
	err    string
}

func newEditForm(conn connlist.SavedConnection, isNew bool) *editForm {
	mk := func(prompt, placeholder, value string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Prompt = prompt
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.SetValue(value)
		return ti
	}
	port := ""
	if conn.Port > 0 {
		port = strconv.Itoa(conn.Port)
	}
	f := &editForm{
		conn:  conn,
		isNew: isNew,
		inputs: []textinput.Model{
			fieldAddress: mk("IP Address: ", "e.g. 192.168.1.40", conn.IPAddress, 64),
			fieldPort:    mk("Port: ", "optional", port, 5),
			fieldFolder:  mk("Folder: ", "where replays are saved", conn.FolderPath, 1024),
			fieldNick:    mk("Console Nick: ", "optional", conn.ConsoleNick, 64),
		},
	}
	f.inputs[fieldAddress].Focus()
	return f
}

func (f *editForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// value returns the edited connection or a validation message.
func (f *editForm) value() (connlist.SavedConnection, error) {
	c := f.conn
	c.IPAddress = strings.TrimSpace(f.inputs[fieldAddress].Value())
	c.FolderPath = strings.TrimSpace(f.inputs[fieldFolder].Value())
	c.ConsoleNick = strings.TrimSpace(f.inputs[fieldNick].Value())
	c.Port = 0
	if p := strings.TrimSpace(f.inputs[fieldPort].Value()); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("port: %q is not a number", p)
		}
		c.Port = n
	}
	return c, validateConnectionFields(c)
}

type model struct {
	settings  *SettingsStore
	discovery *DiscoveryStore
	opts      UIOptions
	logger    *log.Logger

	menu  *connlist.Menu
	queue *actionQueue
	keys  keyMap
	help  help.Model

	cursor int
	form   *editForm

	status      string
	statusUntil time.Time

	width    int
	height   int
	ready    bool
	quitting bool

	theme Theme
}

func newModel(settings *SettingsStore, discovery *DiscoveryStore, opts UIOptions) model {
	logger := opts.Logger
	if logger == nil {
		logger = DiscardLogger()
	}
	q := &actionQueue{}
	m := model{
		settings:  settings,
		discovery: discovery,
		opts:      opts,
		logger:    logger,
		queue:     q,
		keys:      defaultKeyMap(),
		help:      help.New(),
		theme:     LoadTheme(opts.ThemeName),
	}
	m.menu = connlist.NewMenu(settings,
		func(c connlist.SavedConnection) { q.push(editConnectionMsg{conn: c}) },
		func(c connlist.SavedConnection) { q.push(deleteConnectionMsg{conn: c}) },
	)
	return m
}

func (m model) Init() tea.Cmd {
	if strings.TrimSpace(m.opts.StatusPath) == "" {
		return nil
	}
	return tea.Batch(loadSnapshotCmd(m.opts.StatusPath), tickSnapshot(m.opts.PollInterval))
}

func loadSnapshotCmd(path string) tea.Cmd {
	return func() tea.Msg {
		snap, err := LoadSnapshot(path)
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

func tickSnapshot(d time.Duration) tea.Cmd {
	if d <= 0 {
		d = defaultPollInterval
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return snapshotTickMsg(t) })
}

// rows merges the stores as they are right now.
func (m *model) rows() []connlist.Row {
	return connlist.BuildRows(m.settings.Connections(), m.discovery.LiveStatus(), m.discovery.Available())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case statusMsg:
		m.setStatus(string(msg), 2500)
		return m, nil

	case snapshotTickMsg:
		return m, tea.Batch(loadSnapshotCmd(m.opts.StatusPath), tickSnapshot(m.opts.PollInterval))

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.logger.Printf("[STATUS] %v", msg.err)
			m.setStatus("status: "+msg.err.Error(), 4000)
			return m, nil
		}
		m.discovery.Apply(msg.snap)
		return m, nil

	case editConnectionMsg:
		m.form = newEditForm(msg.conn, false)
		return m, textinput.Blink

	case deleteConnectionMsg:
		m.deleteConnection(msg.conn)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.menu.IsOpen() {
			return m.updateMenu(msg)
		}
		return m.updateList(msg)
	}

	if m.form != nil {
		var cmd tea.Cmd
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateList(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.settings.Connections())
	switch {
	case key.Matches(k, m.keys.Quit):
		return m.quit()
	case key.Matches(k, m.keys.Up):
		m.move(-1, n)
	case key.Matches(k, m.keys.Down):
		m.move(1, n)
	case key.Matches(k, m.keys.Menu):
		if n == 0 {
			return m, nil
		}
		m.clampCursor(n)
		m.menu.Open(m.cursor, rowAnchor{line: m.cursor})
	case key.Matches(k, m.keys.Add):
		m.form = newEditForm(connlist.SavedConnection{}, true)
		return m, textinput.Blink
	}
	return m, nil
}

func (m model) updateMenu(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel, _ := m.menu.Selection()
	switch {
	case key.Matches(k, m.keys.Edit):
		if !m.menu.CommitEdit() {
			m.staleSelection("edit", sel)
		}
	case key.Matches(k, m.keys.Delete):
		if !m.menu.CommitDelete() {
			m.staleSelection("delete", sel)
		}
	case key.Matches(k, m.keys.Close), key.Matches(k, m.keys.Menu), k.String() == "q":
		m.menu.Close()
	}
	return m, m.queue.drain()
}

func (m *model) staleSelection(action string, sel connlist.Selection) {
	m.logger.Printf("[MENU] %s dropped: row %d no longer holds %q", action, sel.Index, sel.ID)
	m.setStatus(action+": list changed, nothing done", 2000)
}

func (m model) updateForm(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch {
	case key.Matches(k, m.keys.Close):
		m.form = nil
		m.setStatus("edit cancelled", 1200)
		return m, nil
	case key.Matches(k, m.keys.Save):
		m.saveForm()
		return m, nil
	case key.Matches(k, m.keys.Next):
		f.setFocus(f.focus + 1)
		return m, nil
	case key.Matches(k, m.keys.Prev):
		f.setFocus(f.focus - 1)
		return m, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(k)
	return m, cmd
}

func (m *model) saveForm() {
	f := m.form
	conn, err := f.value()
	if err != nil {
		f.err = err.Error()
		return
	}
	if f.isNew {
		added, err := m.settings.Add(conn)
		if err != nil {
			f.err = err.Error()
			return
		}
		conn = added
	} else if err := m.settings.Update(conn); err != nil {
		f.err = err.Error()
		return
	}
	if err := m.settings.Save(); err != nil {
		m.logger.Printf("[SETTINGS] save failed: %v", err)
		f.err = "save failed: " + err.Error()
		return
	}
	verb := "updated"
	if f.isNew {
		verb = "added"
		m.cursor = maxInt(0, len(m.settings.Connections())-1)
	}
	m.logger.Printf("[SETTINGS] %s %s (%s)", verb, conn.ID, conn.IPAddress)
	m.setStatus(fmt.Sprintf("%s %s", verb, conn.IPAddress), 2000)
	m.form = nil
}

func (m *model) deleteConnection(conn connlist.SavedConnection) {
	if err := m.settings.Delete(conn.ID); err != nil {
		m.logger.Printf("[SETTINGS] delete %s: %v", conn.ID, err)
		m.setStatus("delete failed: "+err.Error(), 4000)
		return
	}
	if err := m.settings.Save(); err != nil {
		m.logger.Printf("[SETTINGS] save failed: %v", err)
		m.setStatus("save failed: "+err.Error(), 4000)
		return
	}
	m.logger.Printf("[SETTINGS] deleted %s (%s)", conn.ID, conn.IPAddress)
	m.setStatus("deleted "+conn.IPAddress, 2000)
	m.clampCursor(len(m.settings.Connections()))
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *model) move(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	m.clampCursor(n)
}

func (m *model) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) setStatus(s string, ms int) {
	m.status = s
	m.statusUntil = time.Now().Add(time.Duration(ms) * time.Millisecond)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "console-connections: Saved Connections"
	b.WriteString(m.theme.HeaderLine(title) + "\n")
	b.WriteString(m.theme.SeparatorLine(minInt(lipgloss.Width(title), maxInt(3, m.width))) + "\n")

	if m.form != nil {
		b.WriteString(m.viewForm())
		return b.String()
	}

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString("\n" + m.theme.DimText(emptyListText) + "\n")
	} else {
		sel, open := m.menu.Selection()
		anchor, _ := sel.Anchor.(rowAnchor)
		lineStyle := lipgloss.NewStyle()
		if m.width > 0 {
			lineStyle = lineStyle.MaxWidth(m.width)
		}
		for i, r := range rows {
			b.WriteString(lineStyle.Render(renderRow(m.theme, r, i == m.cursor)) + "\n")
			if open && anchor.line == i {
				menu := m.theme.MenuBox("e  Edit\nd  Delete")
				b.WriteString(lipgloss.NewStyle().MarginLeft(6).Render(menu) + "\n")
			}
		}
	}

	if m.status != "" && time.Now().Before(m.statusUntil) {
		b.WriteString("\n" + m.theme.WarnText(m.status) + "\n")
	}

	b.WriteString("\n")
	if m.menu.IsOpen() {
		b.WriteString(m.help.View(menuKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) viewForm() string {
	f := m.form
	var b strings.Builder
	heading := "Edit Connection"
	if f.isNew {
		heading = "Add Connection"
	}
	b.WriteString("\n" + m.theme.HeaderLine(heading) + "\n\n")
	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + m.theme.ErrorText(f.err) + "\n")
	}
	b.WriteString("\n" + m.help.View(formKeys{m.keys}) + "\n")
	return b.String()
}
