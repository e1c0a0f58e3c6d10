package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConf = `[commands]
connect: /usr/local/sbin/landialler-connect
disconnect: /usr/local/sbin/landialler-disconnect
is_connected: /usr/local/sbin/landialler-is-connected

[general]
port: 6543
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "landiallerd.conf")
	if err := os.WriteFile(path, []byte(sampleConf), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAndGet(t *testing.T) {
	path := writeSample(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, ok := cfg.Get("commands", "connect")
	if !ok || got != "/usr/local/sbin/landialler-connect" {
		t.Fatalf("Get(commands, connect) = %q, %v", got, ok)
	}

	port, ok := cfg.Get("general", "port")
	if !ok || port != "6543" {
		t.Fatalf("Get(general, port) = %q, %v", port, ok)
	}
}

func TestGetMissingOptionReturnsFalse(t *testing.T) {
	path := writeSample(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := cfg.Get("commands", "nonexistent"); ok {
		t.Fatal("Get for a missing option should report false")
	}
	if _, ok := cfg.Get("nosuchsection", "port"); ok {
		t.Fatal("Get for a missing section should report false")
	}
}

func TestFindSearchesInOrder(t *testing.T) {
	path := writeSample(t)
	cfg, err := Find([]string{"/does/not/exist.conf", path})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if cfg.Path() != path {
		t.Fatalf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestFindReturnsErrorWhenNothingExists(t *testing.T) {
	if _, err := Find([]string{"/does/not/exist.conf"}); err == nil {
		t.Fatal("Find should fail when no candidate path exists")
	}
}
