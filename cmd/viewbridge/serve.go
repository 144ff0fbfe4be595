package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-drift/viewbridge/pkg/bridge"
	"github.com/go-drift/viewbridge/pkg/debugserver"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command bridge and debug endpoints",
		Long: `Serve starts a headless tree and accepts command batches over a
WebSocket at /bridge. The same listener exposes /health, /view-tree,
/controllers and /metrics.

The port defaults to debug.port from viewbridge.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (0 uses debug.port)")

	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, port int) error {
	h, err := newHost(flags, os.Stderr, nil)
	if err != nil {
		return err
	}
	defer h.close()

	if port == 0 {
		port = h.cfg.DebugPort
	}

	bridgeServer := bridge.NewServer(h.router, h.logger)
	defer bridgeServer.Close()

	debug := debugserver.New(h.manager,
		debugserver.WithSync(h.looper.Sync),
		debugserver.WithBridge(bridgeServer),
		debugserver.WithGatherer(h.registry),
		debugserver.WithLogger(h.logger),
	)
	actual, err := debug.Start(port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer debug.Stop()

	h.logger.Info("serving",
		"port", actual,
		"instance", h.manager.Context().InstanceID,
		"bridge", fmt.Sprintf("ws://localhost:%d/bridge", actual),
	)

	<-ctx.Done()
	h.logger.Info("shutting down", "clients", bridgeServer.ClientCount())
	return nil
}
