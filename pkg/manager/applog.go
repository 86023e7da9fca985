package manager

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Logs live under ~/.config/console-connections/logs/YYYY-MM-DD.log by default
// (or $XDG_CONFIG_HOME when set). A new file is started per local calendar day
// and appended to. Log lines never include OBS passwords.

const (
	// DefaultLogsSubdir is appended under the app config directory.
	DefaultLogsSubdir = "logs"

	// DefaultLogExt is the extension used for daily logs.
	DefaultLogExt = ".log"

	// DefaultDayFormat controls the log filename date format.
	DefaultDayFormat = "2006-01-02"

	// defaultKeepLogs is how many daily files PruneLogs keeps.
	defaultKeepLogs = 14
)

// LogOptions controls where log files go.
type LogOptions struct {
	// BaseDir overrides the logs directory. If empty, defaults to
	// <config dir>/logs.
	BaseDir string

	// Timezone controls what "day" means for file rotation. If nil, local time is used.
	Timezone *time.Location
}

// LogsDir resolves the logs directory according to opts and XDG rules.
func LogsDir(opts LogOptions) (string, error) {
	if strings.TrimSpace(opts.BaseDir) != "" {
		return expandPath(strings.TrimSpace(opts.BaseDir)), nil
	}
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultLogsSubdir), nil
}

// DailyLogPath returns the log file path for the given day.
// If t is zero, it uses time.Now().
func DailyLogPath(t time.Time, opts LogOptions) (string, error) {
	if t.IsZero() {
		t = time.Now()
	}
	loc := opts.Timezone
	if loc == nil {
		loc = time.Local
	}
	dir, err := LogsDir(opts)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, t.In(loc).Format(DefaultDayFormat)+DefaultLogExt), nil
}

// OpenDailyLogger opens (creating if needed) today's log file and returns a
// logger writing to it. The caller closes the returned io.Closer on exit.
func OpenDailyLogger(t time.Time, opts LogOptions) (*log.Logger, io.Closer, error) {
	p, err := DailyLogPath(t, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, nil, fmt.Errorf("mkdir logs dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// ListLogFiles lists daily log files, newest-first.
func ListLogFiles(opts LogOptions) ([]string, error) {
	dir, err := LogsDir(opts)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), DefaultLogExt) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	// YYYY-MM-DD sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// PruneLogs deletes all but the newest keep daily files (default 14 when keep <= 0).
// It returns how many files were removed.
func PruneLogs(opts LogOptions, keep int) (int, error) {
	if keep <= 0 {
		keep = defaultKeepLogs
	}
	files, err := ListLogFiles(opts)
	if err != nil {
		return 0, err
	}
	removed := 0
	for i, f := range files {
		if i < keep {
			continue
		}
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
