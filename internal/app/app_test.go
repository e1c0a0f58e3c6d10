package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/landialler/landiallerd/logger"

	"github.com/landialler/landiallerd/internal/config"
)

func writeConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "landiallerd.conf")
	body := "[commands]\nconnect: true\ndisconnect: true\nis_connected: true\n\n[general]\nport: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func testLogger() logger.Logger {
	l := logger.NewConsoleLogger(logger.NewTextPrinter(os.Stderr), func(int) {})
	l.SetLevel(logger.WARN)
	return l
}

func TestAppServeAndStop(t *testing.T) {
	cfg := writeConfig(t)
	lockPath := filepath.Join(t.TempDir(), "landiallerd.lock")

	a, err := New(cfg, Options{
		Log:           testLogger(),
		LockPath:      lockPath,
		SweepInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := a.AcquireLock(context.Background()); err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}

	addr := a.listener.Addr().String()
	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- a.Serve() }()

	// Give the server a moment to start accepting, then exercise the RPC
	// surface before shutting down.
	time.Sleep(20 * time.Millisecond)

	resp, err := http.Post(fmt.Sprintf("http://%s/rpc/connect", addr), "application/json", nil)
	if err != nil {
		t.Fatalf("POST /rpc/connect: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if err := a.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case err := <-serveErrCh:
		if err != nil {
			t.Fatalf("Serve() returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestAppMissingCommandFailsToStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "landiallerd.conf")
	os.WriteFile(path, []byte("[general]\nport: 0\n"), 0o644) //nolint:errcheck

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	if _, err := New(cfg, Options{Log: testLogger()}); err == nil {
		t.Fatal("New should fail when commands are missing from config")
	}
}
