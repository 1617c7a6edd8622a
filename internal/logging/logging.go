// Package logging owns the process-wide slog setup.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skobkin/webbrowser/internal/config"
)

// Manager owns app logger configuration and optional log file lifecycle.
type Manager struct {
	mu     sync.RWMutex
	level  slog.LevelVar
	out    io.Writer
	logger *slog.Logger
	file   *os.File
}

func NewManager() *Manager {
	return newManager(os.Stdout)
}

func newManager(out io.Writer) *Manager {
	m := &Manager{out: out}
	m.level.Set(slog.LevelInfo)
	m.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: &m.level}))

	return m
}

// Configure applies cfg and, when LogToFile is set, appends to filePath as well.
func (m *Manager) Configure(cfg config.LoggingConfig, filePath string) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file != nil {
		_ = m.file.Close()
		m.file = nil
	}

	writer := m.out
	if cfg.LogToFile {
		cleanPath := filepath.Clean(filePath)
		// #nosec G304 -- path is resolved by app runtime and points to user config dir.
		file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		m.file = file
		writer = newFanoutWriter(m.out, file)
	}

	m.level.Set(level)
	m.logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: &m.level}))
	slog.SetDefault(m.logger)

	return nil
}

func (m *Manager) Level() slog.Level {
	return m.level.Level()
}

func (m *Manager) Logger(component string) *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logger.With("component", component)
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			return err
		}
		m.file = nil
	}

	return nil
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %q", raw)
	}
}

// fanoutWriter succeeds if at least one destination accepted the write.
type fanoutWriter struct {
	writers []io.Writer
}

func newFanoutWriter(writers ...io.Writer) io.Writer {
	filtered := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			filtered = append(filtered, w)
		}
	}

	return &fanoutWriter{writers: filtered}
}

func (w *fanoutWriter) Write(p []byte) (int, error) {
	var (
		wroteAny bool
		firstErr error
	)

	for _, dst := range w.writers {
		n, err := dst.Write(p)
		if err == nil && n != len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			continue
		}
		wroteAny = true
	}

	if wroteAny || firstErr == nil {
		return len(p), nil
	}

	return 0, firstErr
}
