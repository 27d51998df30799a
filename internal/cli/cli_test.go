package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relplace/pkg/cache"
	"github.com/matzehuels/relplace/pkg/errors"
	pio "github.com/matzehuels/relplace/pkg/io"
)

const (
	counterDesign = "../../pkg/design/testdata/counter.toml"
	crampedDesign = "../../pkg/pipeline/testdata/cramped.json"
)

// captureOutput redirects status output to a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"place", "check", "seeds", "schema", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := map[string]string{
		"counter.toml":          "counter.placement.json",
		"designs/alu.yaml":      "alu.placement.json",
		"/abs/path/cpu.v2.json": "cpu.v2.placement.json",
	}
	for in, want := range tests {
		if got := defaultOutput(in); got != want {
			t.Errorf("defaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlaceAndCheck(t *testing.T) {
	status := captureOutput(t)
	out := filepath.Join(t.TempDir(), "counter.placement.json")

	if _, err := runCommand(t, "place", counterDesign, "-o", out, "--seed", "7", "--swaps", "200"); err != nil {
		t.Fatalf("place: %v", err)
	}
	if !strings.Contains(status.String(), "counter") {
		t.Errorf("place output %q should name the design", status.String())
	}

	p, err := pio.ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if p.Seed != 7 {
		t.Errorf("placement seed = %d, want 7", p.Seed)
	}
	if len(p.Blocks) != 5 {
		t.Errorf("placement has %d blocks, want 5", len(p.Blocks))
	}

	if _, err := runCommand(t, "check", counterDesign, out); err != nil {
		t.Errorf("check of a fresh placement: %v", err)
	}
}

func TestPlaceCompressedOutput(t *testing.T) {
	captureOutput(t)
	out := filepath.Join(t.TempDir(), "nested", "counter.placement.json.zst")

	if _, err := runCommand(t, "place", counterDesign, "-o", out, "--no-cache"); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := runCommand(t, "check", counterDesign, out); err != nil {
		t.Errorf("check of a compressed placement: %v", err)
	}
}

func TestCheckDetectsBrokenMacro(t *testing.T) {
	captureOutput(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "counter.placement.json")
	if _, err := runCommand(t, "place", counterDesign, "-o", out, "--no-cache"); err != nil {
		t.Fatalf("place: %v", err)
	}

	p, err := pio.ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	var q0, q1 *pio.Block
	for i := range p.Blocks {
		switch p.Blocks[i].Name {
		case "q0":
			q0 = &p.Blocks[i]
		case "q1":
			q1 = &p.Blocks[i]
		}
	}
	if q0 == nil || q1 == nil {
		t.Fatal("placement is missing q0 or q1")
	}
	// Swapping two members keeps the grid consistent but breaks the shape.
	q0.X, q1.X = q1.X, q0.X
	q0.Y, q1.Y = q1.Y, q0.Y
	q0.Z, q1.Z = q1.Z, q0.Z
	broken := filepath.Join(dir, "broken.placement.json")
	if err := pio.ExportJSON(p, broken); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	_, err = runCommand(t, "check", counterDesign, broken)
	if !errors.Is(err, errors.ErrCodeInvalidConstraint) {
		t.Errorf("check of a broken macro: error = %v, want %s", err, errors.ErrCodeInvalidConstraint)
	}
}

func TestPlaceMissingDesign(t *testing.T) {
	captureOutput(t)
	_, err := runCommand(t, "place", filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestSeeds(t *testing.T) {
	status := captureOutput(t)
	if _, err := runCommand(t, "seeds", counterDesign, "-n", "4", "-p", "2", "--swaps", "50"); err != nil {
		t.Fatalf("seeds: %v", err)
	}
	for _, seed := range []string{"seed 1", "seed 4"} {
		if !strings.Contains(status.String(), seed) {
			t.Errorf("seeds output should report %q:\n%s", seed, status.String())
		}
	}
}

func TestSeedsReportsFailures(t *testing.T) {
	captureOutput(t)
	_, err := runCommand(t, "seeds", crampedDesign, "-n", "3")
	if !errors.Is(err, errors.ErrCodePlacementExhausted) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodePlacementExhausted)
	}
}

func TestSeedsRejectsZeroCount(t *testing.T) {
	captureOutput(t)
	_, err := runCommand(t, "seeds", counterDesign, "-n", "0")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCommand(t, "schema")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	if _, ok := schema["properties"]; !ok {
		t.Error("schema should declare properties")
	}
}

func TestCacheCommands(t *testing.T) {
	status := captureOutput(t)
	cacheHome := t.TempDir()

	var logs, out bytes.Buffer
	run := func(args ...string) {
		t.Helper()
		root := New(&logs, LogInfo).RootCommand()
		root.SetArgs(args)
		root.SetOut(&out)
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	run("cache", "path")
	if got, want := strings.TrimSpace(out.String()), filepath.Join(cacheHome, appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	placement := filepath.Join(t.TempDir(), "counter.placement.json")
	run("place", counterDesign, "-o", placement, "--swaps", "10")
	run("cache", "clear")
	if !strings.Contains(status.String(), "Cleared 1 cached entries") {
		t.Errorf("cache clear should remove the stored placement:\n%s", status.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCommand(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should reference the command name")
	}
}

func TestDesignCompletion(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)
		args []string
		want []string
		dir  cobra.ShellCompDirective
	}{
		{"place design", completeDesign, nil, designExts, cobra.ShellCompDirectiveFilterFileExt},
		{"place extra", completeDesign, []string{"a.toml"}, nil, cobra.ShellCompDirectiveNoFileComp},
		{"check design", completeCheck, nil, designExts, cobra.ShellCompDirectiveFilterFileExt},
		{"check placement", completeCheck, []string{"a.toml"}, placementExts, cobra.ShellCompDirectiveFilterFileExt},
		{"check extra", completeCheck, []string{"a.toml", "a.json"}, nil, cobra.ShellCompDirectiveNoFileComp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir := tt.fn(nil, tt.args, "")
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || dir != tt.dir {
				t.Errorf("got %v %v, want %v %v", got, dir, tt.want, tt.dir)
			}
		})
	}

	out, err := runCommand(t, cobra.ShellCompRequestCmd, "check", counterDesign, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "zst") {
		t.Errorf("check completion %q should offer placement extensions", out)
	}
}

func TestCacheScopeSeparatesEntries(t *testing.T) {
	status := captureOutput(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "counter.placement.json")

	place := func(scope string) string {
		t.Helper()
		status.Reset()
		root := New(&bytes.Buffer{}, LogInfo).RootCommand()
		root.SetArgs([]string{"place", counterDesign, "-o", out, "--swaps", "10", "--cache-scope", scope})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("place --cache-scope %s: %v", scope, err)
		}
		return status.String()
	}

	if got := place("alice"); !strings.Contains(got, iconFresh) {
		t.Errorf("first run should be computed:\n%s", got)
	}
	if got := place("alice"); !strings.Contains(got, iconCached) {
		t.Errorf("same scope should hit the cache:\n%s", got)
	}
	if got := place("bob"); !strings.Contains(got, iconFresh) {
		t.Errorf("another scope should miss the cache:\n%s", got)
	}
}

func TestKeyer(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	if c.keyer() != nil {
		t.Error("unscoped CLI should use the runner's default keyer")
	}
	c.CacheScope = "ci"
	k := c.keyer()
	if k == nil || !strings.HasPrefix(k.PlacementKey("h", cache.PlacementKeyOpts{}), "ci:placement:") {
		t.Errorf("scoped key should start with the scope")
	}
}
