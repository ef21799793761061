package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/kit/log/level"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	level.Info(logger).Log("msg", "hidden")
	level.Error(logger).Log("msg", "shown", "err", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn, got %q", out)
	}
	if !strings.Contains(out, "level=error") || !strings.Contains(out, "msg=shown") || !strings.Contains(out, "err=boom") {
		t.Errorf("expected error line in logfmt, got %q", out)
	}
	if !strings.Contains(out, "ts=") {
		t.Errorf("expected timestamp, got %q", out)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOpen_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskdash.log")

	logger, closer, err := Open(path, "debug")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	level.Debug(logger).Log("msg", "first")
	closer.Close()

	logger, closer, err = Open(path, "debug")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	level.Debug(logger).Log("msg", "second")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "msg=first") || !strings.Contains(string(data), "msg=second") {
		t.Errorf("expected both lines, got %q", data)
	}
}
