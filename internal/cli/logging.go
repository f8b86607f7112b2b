package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// SetupLogging sends slog output to stderr. Only warnings and errors are
// shown unless verbose is set.
func SetupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// LogToFile redirects slog output to path while the terminal UI owns the
// screen. The returned func closes the file.
func LogToFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := tea.LogToFile(path, "studio")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))

	return func() {
		slog.SetDefault(previous)
		f.Close()
	}, nil
}
