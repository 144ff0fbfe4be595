package uimanager

import (
	"log/slog"

	"github.com/go-drift/viewbridge/pkg/view"
)

// Context is handed to controllers when they create views.
type Context struct {
	// InstanceID identifies the owning manager in logs and metrics.
	InstanceID string

	// Toolkit builds native views and reports display metrics.
	Toolkit view.Toolkit

	// Logger is the manager's logger.
	Logger *slog.Logger
}
