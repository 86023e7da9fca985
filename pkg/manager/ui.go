package manager

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"console-connections/pkg/connlist"
)

// UIOptions controls the connections list behavior.
type UIOptions struct {
	// PollInterval is how often the status snapshot is re-read.
	PollInterval time.Duration
	// StatusPath is the snapshot file written by the connection manager.
	StatusPath string
	// ThemeName selects a palette; empty means auto.
	ThemeName string
	// Logger receives commit and store errors; nil discards.
	Logger *log.Logger
}

// formatRowLine renders a readable one-liner for a merged row.
func formatRowLine(r connlist.Row) string {
	parts := []string{r.DisplayName()}
	if r.HasNickname() {
		parts = append(parts, fmt.Sprintf("(%s)", r.Connection.IPAddress))
	}
	if r.Connection.Port > 0 {
		parts = append(parts, fmt.Sprintf(":%d", r.Connection.Port))
	}
	if r.CurrentFilename != "" {
		parts = append(parts, "file:"+r.CurrentFilename)
	}
	if r.Connection.FolderPath != "" {
		parts = append(parts, "-> "+r.Connection.FolderPath)
	}
	return strings.Join(parts, " ")
}

// renderRow composes a colored list row.
func renderRow(t Theme, r connlist.Row, selected bool) string {
	line := fmt.Sprintf("%s%2d) %s %s %s",
		t.SelectedPrefix(selected), r.Index+1, t.AvailabilityDot(r.IsAvailable), t.StatusBadge(r.Status), formatRowLine(r))
	if selected {
		return t.SelectedText(line)
	}
	return line
}

// emptyListText is shown instead of rows when nothing is saved.
const emptyListText = "No saved connections"

// PrintRows writes the merged rows as plain text, one per line.
func PrintRows(w io.Writer, rows []connlist.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, emptyListText)
		return err
	}
	for _, r := range rows {
		avail := "offline"
		if r.IsAvailable {
			avail = "online"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index+1, r.Connection.ID, r.Status, avail, formatRowLine(r)); err != nil {
			return err
		}
	}
	return nil
}
