package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"console-connections/pkg/manager"
)

func TestRunAddThenRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.yaml")
	st := manager.NewSettingsStore(path)

	var out bytes.Buffer
	if err := runAdd(st, []string{"192.168.1.40", "/replays"}, &out); err != nil {
		t.Fatalf("add: %v", err)
	}
	id, _, ok := strings.Cut(strings.TrimSpace(out.String()), "\t")
	if !ok || id == "" {
		t.Fatalf("expected id in output, got %q", out.String())
	}

	reloaded, err := manager.LoadSettings(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	conns := reloaded.Connections()
	if len(conns) != 1 || conns[0].FolderPath != "/replays" {
		t.Fatalf("unexpected saved connections: %#v", conns)
	}

	out.Reset()
	if err := runRemove(reloaded, []string{id}, &out); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if len(reloaded.Connections()) != 0 {
		t.Fatalf("expected empty store after rm")
	}
}

func TestRunAdd_RejectsBadAddress(t *testing.T) {
	st := manager.NewSettingsStore(filepath.Join(t.TempDir(), "connections.yaml"))
	if err := runAdd(st, []string{"nope"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for invalid address")
	}
	if err := runAdd(st, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for missing address")
	}
}

func TestRunRemove_UnknownID(t *testing.T) {
	st := manager.NewSettingsStore(filepath.Join(t.TempDir(), "connections.yaml"))
	err := runRemove(st, []string{"missing"}, &bytes.Buffer{})
	if !errors.Is(err, manager.ErrConnectionNotFound) {
		t.Fatalf("expected ErrConnectionNotFound, got %v", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
