package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level enabled by default")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level disabled by default")
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "not-a-level"}); err == nil {
		t.Fatal("expected an error for an invalid level")
	}
}

func TestNewWithFilePathCreatesRotatingSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aouhttp.log")

	logger, err := New(Options{FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}
