package ui

import "log/slog"

var appLogger = slog.Default().With("component", "ui")

func setLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	appLogger = logger.With("component", "ui")
}
