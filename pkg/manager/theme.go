package manager

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"console-connections/pkg/connlist"
)

// Theme provides optional colorized rendering for the TUI.
// All hooks are safe to call when theming is disabled; they fall back to plain strings.
//
// Sources (in priority order):
// 1) Explicit name (CLI flag or prefs)
// 2) Env var CONSOLE_CONNECTIONS_THEME = none | dark | light | catppuccin
// 3) Auto-defaults (enabled if terminal supports color)
type Theme struct {
	Enabled bool

	Header    lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Separator lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warn      lipgloss.Style
	Accent    lipgloss.Style
	Menu      lipgloss.Style
}

// LoadTheme resolves a theme by name, then the environment, then auto-detection.
func LoadTheme(name string) Theme {
	if t, ok := themeByName(name); ok {
		return t
	}
	if t, ok := themeByName(os.Getenv("CONSOLE_CONNECTIONS_THEME")); ok {
		return t
	}
	return AutoTheme()
}

func themeByName(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off", "disabled":
		return NoTheme(), true
	case "catppuccin", "catppuccin-mocha", "mocha":
		return CatppuccinMochaTheme(), true
	case "light":
		return LightTheme(), true
	case "dark":
		return DarkTheme(), true
	}
	return Theme{}, false
}

// NoTheme disables all styling.
func NoTheme() Theme {
	return Theme{Enabled: false}
}

// AutoTheme enables theming whenever the terminal likely supports color.
func AutoTheme() Theme {
	if !terminalSupportsColor() {
		return NoTheme()
	}
	return DarkTheme()
}

// DarkTheme provides a sane default palette for dark terminals.
func DarkTheme() Theme {
	return palette("15", "6", "2", "3", "1", "8", "5")
}

// LightTheme provides a default palette for light terminals.
func LightTheme() Theme {
	return palette("0", "4", "2", "3", "1", "8", "5")
}

// CatppuccinMochaTheme approximates Catppuccin Mocha colors with 256-color codes.
func CatppuccinMochaTheme() Theme {
	// mauve 183, teal 44, green 114, peach 215, red 203, gray 240, lavender 147
	return palette("183", "44", "114", "215", "203", "240", "147")
}

func palette(fg, accent, ok, warn, bad, muted, menu string) Theme {
	return Theme{
		Enabled:   true,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(fg)),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		Dim:       lipgloss.NewStyle().Faint(true),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color(accent)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(bad)),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color(ok)),
		Warn:      lipgloss.NewStyle().Foreground(lipgloss.Color(warn)),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(accent)),
		Menu: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(menu)).
			Padding(0, 1),
	}
}

func (t Theme) HeaderLine(s string) string   { return t.apply(t.Header, s) }
func (t Theme) SelectedText(s string) string { return t.apply(t.Selected, s) }
func (t Theme) DimText(s string) string      { return t.apply(t.Dim, s) }
func (t Theme) HelpText(s string) string     { return t.apply(t.Help, s) }
func (t Theme) ErrorText(s string) string    { return t.apply(t.Error, s) }
func (t Theme) SuccessText(s string) string  { return t.apply(t.Success, s) }
func (t Theme) WarnText(s string) string     { return t.apply(t.Warn, s) }

// SelectedPrefix returns a " > " or "   " prefix.
func (t Theme) SelectedPrefix(selected bool) string {
	if !selected {
		return "   "
	}
	return t.apply(t.Selected, " > ")
}

// SeparatorLine returns a horizontal rule of width w.
func (t Theme) SeparatorLine(w int) string {
	return t.apply(t.Separator, strings.Repeat("-", maxInt(3, w)))
}

// StatusBadge renders a fixed-width connection status label.
func (t Theme) StatusBadge(s connlist.ConnectionStatus) string {
	label := padStatus(s.String())
	switch s {
	case connlist.Connected:
		return t.apply(t.Success, label)
	case connlist.Connecting, connlist.ReconnectWait:
		return t.apply(t.Warn, label)
	default:
		return t.apply(t.Dim, label)
	}
}

// AvailabilityDot renders ● when the console is visible on the network.
func (t Theme) AvailabilityDot(available bool) string {
	if available {
		return t.apply(t.Success, "●")
	}
	return t.apply(t.Dim, "○")
}

// MenuBox frames the contextual menu.
func (t Theme) MenuBox(s string) string {
	if !t.Enabled {
		return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Render(s)
	}
	return t.Menu.Render(s)
}

func (t Theme) apply(style lipgloss.Style, s string) string {
	if !t.Enabled || s == "" {
		return s
	}
	return style.Render(s)
}

func padStatus(s string) string {
	const w = len("disconnected")
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func terminalSupportsColor() bool {
	// Respect NO_COLOR https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return term != "" && term != "dumb"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
