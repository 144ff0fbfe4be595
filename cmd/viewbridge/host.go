package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/viewbridge/internal/config"
	"github.com/go-drift/viewbridge/pkg/bridge"
	"github.com/go-drift/viewbridge/pkg/controllers"
	"github.com/go-drift/viewbridge/pkg/errors"
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/uithread"
	"github.com/go-drift/viewbridge/pkg/view"
	"github.com/go-drift/viewbridge/pkg/view/headless"
)

// host is a headless manager running on its own UI thread.
type host struct {
	cfg      *config.Resolved
	logger   *slog.Logger
	toolkit  *headless.Toolkit
	looper   *uithread.Looper
	registry *prometheus.Registry
	manager  *uimanager.Manager
	router   *bridge.Router
}

func newHost(flags *globalFlags, logOut io.Writer, sink bridge.ResultSink) (*host, error) {
	cfg, err := config.Resolve(flags.dir)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}

	logger := newLogger(cfg, logOut)
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: cfg.LogLevel <= slog.LevelDebug})

	toolkit := headless.New(
		headless.WithDensity(cfg.Density),
		headless.WithStatusBarHeight(cfg.StatusBarHeight),
	)
	looper := uithread.NewLooper()
	registry := prometheus.NewRegistry()

	manager := uimanager.NewManager(toolkit,
		[]uimanager.Package{controllers.Package()},
		uimanager.WithLogger(logger),
		uimanager.WithDispatcher(looper),
		uimanager.WithMetrics(registry),
		uimanager.WithInstanceID(cfg.InstanceID),
		uimanager.WithOverrideReporting(cfg.ReportOverrides),
	)
	router := bridge.NewRouter(manager,
		bridge.WithResultSink(sink),
		bridge.WithRootFactory(func(id int) view.Group { return toolkit.NewRoot(id) }),
		bridge.WithTracerName(cfg.TracerName),
		bridge.WithRouterLogger(logger),
		bridge.WithRouterMetrics(registry),
	)

	return &host{
		cfg:      cfg,
		logger:   logger,
		toolkit:  toolkit,
		looper:   looper,
		registry: registry,
		manager:  manager,
		router:   router,
	}, nil
}

// close tears the tree down and stops the UI thread.
func (h *host) close() {
	h.manager.Destroy()
	h.looper.Quit()
}

// snapshot captures the tree on the UI thread.
func (h *host) snapshot() (uimanager.TreeSnapshot, bool) {
	var snap uimanager.TreeSnapshot
	ok := h.looper.Sync(func() { snap = h.manager.Snapshot() })
	return snap, ok
}

func newLogger(cfg *config.Resolved, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
