package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindPort != 8080 {
		t.Errorf("BindPort = %d, want 8080", cfg.BindPort)
	}
	if cfg.ReadTimeout != 5*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 5ms", cfg.ReadTimeout)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("AOUHTTP_BIND_PORT", "9090")
	t.Setenv("AOUHTTP_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindPort != 9090 {
		t.Errorf("BindPort = %d, want 9090", cfg.BindPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadOptionsOverrideEnv(t *testing.T) {
	t.Setenv("AOUHTTP_BIND_PORT", "9090")

	cfg, err := Load(WithBind("127.0.0.1", 1234))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindPort != 1234 || cfg.BindHost != "127.0.0.1" {
		t.Errorf("cfg = %+v, want bind overridden by option", cfg)
	}
}

func TestLoadInvalidEnvReturnsError(t *testing.T) {
	t.Setenv("AOUHTTP_BIND_PORT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
}

func TestLoadHeadersFileParsesNameColonValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "headers.txt")
	contents := "# a comment\nX-Server: aouhttp\n\nX-Region: us-east-1\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	headers, err := LoadHeadersFile(path)
	if err != nil {
		t.Fatalf("LoadHeadersFile: %v", err)
	}
	if headers["X-Server"] != "aouhttp" || headers["X-Region"] != "us-east-1" {
		t.Fatalf("headers = %v", headers)
	}
}

func TestWatchStaticHeadersReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "headers.txt")
	if err := os.WriteFile(path, []byte("X-Server: v1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sh := NewStaticHeaders(nil)
	logger := zap.NewNop()

	stop, err := WatchStaticHeaders(path, sh, LoadHeadersFile, logger)
	if err != nil {
		t.Fatalf("WatchStaticHeaders: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("X-Server: v2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sh.Get()["X-Server"] == "v2" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("static headers never reloaded, got %v", sh.Get())
}
