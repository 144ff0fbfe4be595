package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/viewbridge/pkg/bridge"
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view/headless"
)

const yamlScript = `
batches:
  - id: mount
    commands:
      - op: addRootView
        id: 1
      - op: createView
        id: 2
        rootId: 1
        className: View
      - op: addChild
        pid: 1
        id: 2
        index: 0
      - op: createView
        id: 3
        rootId: 1
        className: Text
        props:
          text: hi
      - op: addChild
        pid: 2
        id: 3
      - op: updateLayout
        id: 2
        className: View
        x: 5
        y: 6
        width: 100
        height: 50
  - commands:
      - op: dispatchUIFunction
        id: 3
        className: Text
        name: getText
        callId: c1
`

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func replay(t *testing.T, batches []bridge.Batch, destroy bool) replayReport {
	t.Helper()
	var out bytes.Buffer
	flags := &globalFlags{dir: t.TempDir()}
	if err := runReplay(context.Background(), flags, batches, destroy, &out, io.Discard); err != nil {
		t.Fatalf("runReplay: %v", err)
	}
	var report replayReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	return report
}

func TestReplayYAMLScript(t *testing.T) {
	batches, err := loadScript(writeScript(t, "mount.yaml", yamlScript))
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}

	report := replay(t, batches, false)

	wantResults := []bridge.Result{{CallID: "c1", OK: true, Value: "hi"}}
	if diff := cmp.Diff(wantResults, report.Results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	if report.Tree.InstanceID == "" {
		t.Error("expected a generated instance id")
	}
	wantTree := uimanager.TreeSnapshot{
		InstanceID: report.Tree.InstanceID,
		Views:      2,
		Roots: []uimanager.NodeSnapshot{{
			ID:        1,
			ClassName: headless.RootClassName,
			Children: []uimanager.NodeSnapshot{{
				ID:        2,
				ClassName: "View",
				X:         5, Y: 6, Width: 100, Height: 50,
				Children: []uimanager.NodeSnapshot{{ID: 3, ClassName: "Text"}},
			}},
		}},
	}
	if diff := cmp.Diff(wantTree, report.Tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayDestroy(t *testing.T) {
	batches, err := loadScript(writeScript(t, "mount.yml", yamlScript))
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}

	report := replay(t, batches, true)
	if len(report.Tree.Roots) != 0 || report.Tree.Views != 0 {
		t.Errorf("tree after destroy = %+v, want empty", report.Tree)
	}
}

func TestLoadScriptJSONList(t *testing.T) {
	path := writeScript(t, "list.json", `[
		{"commands": [{"op": "addRootView", "id": 1}]},
		{"commands": [{"op": "measureInWindow", "id": 1, "callId": "m"}]}
	]`)

	batches, err := loadScript(path)
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	want := []bridge.Batch{
		{Commands: []bridge.Command{{Op: bridge.OpAddRootView, ID: 1}}},
		{Commands: []bridge.Command{{Op: bridge.OpMeasureInWindow, ID: 1, CallID: "m"}}},
	}
	if diff := cmp.Diff(want, batches); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScriptYAMLList(t *testing.T) {
	path := writeScript(t, "list.yaml", `
- commands:
    - op: addRootView
      id: 7
`)

	batches, err := loadScript(path)
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	want := []bridge.Batch{{Commands: []bridge.Command{{Op: bridge.OpAddRootView, ID: 7}}}}
	if diff := cmp.Diff(want, batches); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "script.txt", "[]"},
		{"malformed json", "bad.json", "{"},
		{"malformed yaml", "bad.yaml", "batches: [\n"},
		{"missing op", "noop.json", `{"batches": [{"commands": [{"id": 1}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadScript(writeScript(t, tt.file, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := loadScript(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestVersionShort(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); got != version+"\n" {
		t.Errorf("version output = %q, want %q", got, version+"\n")
	}
}
