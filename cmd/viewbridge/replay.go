package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/viewbridge/pkg/bridge"
	"github.com/go-drift/viewbridge/pkg/uimanager"
)

// script is a recorded command stream. A file may also hold a bare list of
// batches.
type script struct {
	Batches []bridge.Batch `json:"batches" yaml:"batches"`
}

// replayReport is printed once the script has been applied.
type replayReport struct {
	Batches int                    `json:"batches"`
	Results []bridge.Result        `json:"results,omitempty"`
	Tree    uimanager.TreeSnapshot `json:"tree"`
}

func replayCmd(flags *globalFlags) *cobra.Command {
	var destroy bool

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Apply a recorded command script to a headless tree",
		Long: `Replay reads a JSON or YAML command script and applies each batch
on the UI thread, in order. Query results and the final view tree are
printed as JSON.

The script is either {"batches": [...]} or a bare list of batches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batches, err := loadScript(args[0])
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), flags, batches, destroy, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&destroy, "destroy", false, "Destroy the manager before taking the snapshot")

	return cmd
}

func runReplay(ctx context.Context, flags *globalFlags, batches []bridge.Batch, destroy bool, out, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		mu      sync.Mutex
		results []bridge.Result
	)
	sink := bridge.ResultSinkFunc(func(r bridge.Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	h, err := newHost(flags, logOut, sink)
	if err != nil {
		return err
	}
	defer h.looper.Quit()

	for i, batch := range batches {
		if _, err := h.router.Apply(ctx, batch); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
	}
	if destroy {
		h.manager.Destroy()
	}

	snap, ok := h.snapshot()
	if !ok {
		return fmt.Errorf("UI thread stopped before the snapshot was taken")
	}

	mu.Lock()
	report := replayReport{Batches: len(batches), Results: results, Tree: snap}
	mu.Unlock()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// loadScript reads batches from a .json, .yaml or .yml file.
func loadScript(path string) ([]bridge.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var batches []bridge.Batch
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		batches, err = decodeJSONScript(data)
	case ".yaml", ".yml":
		batches, err = decodeYAMLScript(data)
	default:
		return nil, fmt.Errorf("unsupported script format %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for i, b := range batches {
		for j, c := range b.Commands {
			if c.Op == "" {
				return nil, fmt.Errorf("batch %d command %d: missing op", i, j)
			}
		}
	}
	return batches, nil
}

func decodeJSONScript(data []byte) ([]bridge.Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batches []bridge.Batch
		if err := json.Unmarshal(trimmed, &batches); err != nil {
			return nil, err
		}
		return batches, nil
	}
	var s script
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, err
	}
	return s.Batches, nil
}

func decodeYAMLScript(data []byte) ([]bridge.Batch, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	top := doc.Content[0]
	if top.Kind == yaml.SequenceNode {
		var batches []bridge.Batch
		if err := top.Decode(&batches); err != nil {
			return nil, err
		}
		return batches, nil
	}
	var s script
	if err := top.Decode(&s); err != nil {
		return nil, err
	}
	return s.Batches, nil
}
