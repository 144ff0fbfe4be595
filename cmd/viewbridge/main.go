package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir      string
	logLevel string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "viewbridge",
		Short: "Native view tree host driven by bridge commands",
		Long: `viewbridge applies view commands (create, update, attach, delete,
measure) to a native view tree on a single UI thread.

It can replay a recorded command script against the headless toolkit,
or serve a WebSocket bridge with a debug HTTP endpoint.

Settings are read from viewbridge.yaml in --dir when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Directory containing viewbridge.yaml")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	root.AddCommand(
		replayCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return root
}
