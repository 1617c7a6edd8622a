package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skobkin/webbrowser/internal/config"
)

func TestFanoutWriter_ContinuesWhenOneDestinationFails(t *testing.T) {
	var dst bytes.Buffer
	w := newFanoutWriter(errorWriter{err: errors.New("broken stdout")}, &dst)

	n, err := w.Write([]byte("test"))
	if err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if n != len("test") {
		t.Fatalf("unexpected bytes written: got %d, want %d", n, len("test"))
	}
	if got := dst.String(); got != "test" {
		t.Fatalf("unexpected destination contents: got %q", got)
	}
}

func TestFanoutWriter_FailsWhenEveryDestinationFails(t *testing.T) {
	want := errors.New("first")
	w := newFanoutWriter(errorWriter{err: want}, errorWriter{err: errors.New("second")})

	if _, err := w.Write([]byte("x")); !errors.Is(err, want) {
		t.Fatalf("expected first error, got %v", err)
	}
}

func TestManagerConfigure_LogFileStillReceivesLogsWhenStdoutFails(t *testing.T) {
	origDefault := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origDefault) })

	logPath := filepath.Join(t.TempDir(), "app.log")
	m := newManager(errorWriter{err: errors.New("broken stdout")})
	t.Cleanup(func() { _ = m.Close() })

	if err := m.Configure(config.LoggingConfig{Level: "debug", LogToFile: true}, logPath); err != nil {
		t.Fatalf("configure manager: %v", err)
	}

	m.Logger("test").Debug("file must receive this message")

	if err := m.Close(); err != nil {
		t.Fatalf("close manager: %v", err)
	}

	// #nosec G304 -- logPath is created from t.TempDir() in this test.
	raw, err := os.ReadFile(filepath.Clean(logPath))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(raw, []byte("file must receive this message")) {
		t.Fatalf("log file does not contain test message, contents: %q", string(raw))
	}
	if !bytes.Contains(raw, []byte("component=test")) {
		t.Fatalf("expected component attribute, contents: %q", string(raw))
	}
}

func TestManagerConfigure_FiltersByLevel(t *testing.T) {
	origDefault := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origDefault) })

	var out bytes.Buffer
	m := newManager(&out)
	if err := m.Configure(config.LoggingConfig{Level: "warn"}, ""); err != nil {
		t.Fatalf("configure manager: %v", err)
	}
	if m.Level() != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v", m.Level())
	}

	logger := m.Logger("ui")
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(out.String(), "hidden") {
		t.Fatalf("info message must be filtered: %q", out.String())
	}
	if !strings.Contains(out.String(), "shown") {
		t.Fatalf("warn message missing: %q", out.String())
	}
}

func TestManagerConfigure_RejectsUnknownLevel(t *testing.T) {
	m := newManager(&bytes.Buffer{})
	if err := m.Configure(config.LoggingConfig{Level: "verbose"}, ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m.Level() != slog.LevelInfo {
		t.Fatalf("expected level to stay at info, got %v", m.Level())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range tests {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, got)
		}
	}
}

type errorWriter struct {
	err error
}

func (w errorWriter) Write(_ []byte) (int, error) {
	return 0, w.err
}
