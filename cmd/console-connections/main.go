package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"console-connections/pkg/connlist"
	"console-connections/pkg/manager"
)

var (
	flagSettings string
	flagStatus   string
	flagPrefs    string
	flagTheme    string
	flagLogDir   string
	flagList     bool
)

func init() {
	flag.StringVar(&flagSettings, "settings", "", "Path to saved connections YAML (defaults to XDG paths if empty)")
	flag.StringVar(&flagStatus, "status", "", "Path to the live status snapshot JSON")
	flag.StringVar(&flagPrefs, "prefs", "", "Path to preferences TOML")
	flag.StringVar(&flagTheme, "theme", "", "Theme: none|dark|light|catppuccin (default: auto)")
	flag.StringVar(&flagLogDir, "log-dir", "", "Directory for daily log files")
	flag.BoolVar(&flagList, "list", false, "Print saved connections with live status and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "console-connections\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  console-connections [options]\n")
		fmt.Fprintf(os.Stderr, "  console-connections add <ip-address> [folder]\n")
		fmt.Fprintf(os.Stderr, "  console-connections rm <id>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  console-connections
  console-connections --list
  console-connections --status /tmp/slippi-status.json --theme catppuccin
  console-connections add 192.168.1.40 ~/Slippi/Spectate
`)
	}
}

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "console-connections: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	prefs, err := manager.LoadPrefs(flagPrefs)
	if err != nil {
		return err
	}

	settingsPath := firstNonEmpty(flagSettings, prefs.SettingsPath)
	settings, err := manager.LoadSettings(settingsPath)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		switch args[0] {
		case "add":
			return runAdd(settings, args[1:], os.Stdout)
		case "rm", "remove", "delete":
			return runRemove(settings, args[1:], os.Stdout)
		default:
			flag.Usage()
			return fmt.Errorf("unknown command %q", args[0])
		}
	}

	statusPath := firstNonEmpty(flagStatus, prefs.StatusPath)
	if statusPath == "" {
		if p, err := manager.DefaultStatusPath(); err == nil {
			statusPath = p
		}
	}
	discovery := manager.NewDiscoveryStore()
	if statusPath != "" {
		snap, err := manager.LoadSnapshot(statusPath)
		if err != nil {
			return err
		}
		discovery.Apply(snap)
	}

	if flagList || !term.IsTerminal(int(os.Stdout.Fd())) {
		rows := connlist.BuildRows(settings.Connections(), discovery.LiveStatus(), discovery.Available())
		return manager.PrintRows(os.Stdout, rows)
	}

	poll, err := prefs.Poll()
	if err != nil {
		return err
	}

	logOpts := manager.LogOptions{BaseDir: firstNonEmpty(flagLogDir, prefs.LogDir)}
	logger, closer, err := manager.OpenDailyLogger(time.Now(), logOpts)
	if err != nil {
		// Logging is not worth refusing to start over.
		fmt.Fprintf(os.Stderr, "console-connections: logging disabled: %v\n", err)
		logger = manager.DiscardLogger()
	} else {
		defer closer.Close()
		if n, err := manager.PruneLogs(logOpts, 0); err == nil && n > 0 {
			logger.Printf("[LOGS] pruned %d old log files", n)
		}
	}
	logger.Printf("[START] settings=%s status=%s connections=%d", settings.Path(), statusPath, len(settings.Connections()))

	return manager.RunTUI(settings, discovery, manager.UIOptions{
		PollInterval: poll,
		StatusPath:   statusPath,
		ThemeName:    firstNonEmpty(flagTheme, prefs.Theme),
		Logger:       logger,
	})
}

func runAdd(settings *manager.SettingsStore, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("add: ip address is required")
	}
	conn := connlist.SavedConnection{IPAddress: args[0]}
	if len(args) > 1 {
		conn.FolderPath = args[1]
	}
	added, err := settings.Add(conn)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if err := settings.Save(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\t%s\n", added.ID, added.IPAddress)
	return nil
}

func runRemove(settings *manager.SettingsStore, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("rm: id is required")
	}
	id := strings.TrimSpace(args[0])
	conn, ok := settings.Find(id)
	if !ok {
		return fmt.Errorf("rm: %w: %s", manager.ErrConnectionNotFound, id)
	}
	if err := settings.Delete(id); err != nil {
		return err
	}
	if err := settings.Save(); err != nil {
		return err
	}
	fmt.Fprintf(out, "removed %s\t%s\n", conn.ID, conn.IPAddress)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
