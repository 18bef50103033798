package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// testEnv points config, cache and store at temporary directories and
// returns the store directory.
func testEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	storeDir := filepath.Join(root, "calculations")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("TILECALC_STORE_BACKEND", "file")
	t.Setenv("TILECALC_STORE_DIR", storeDir)
	t.Setenv("TILECALC_CACHE_BACKEND", "file")
	t.Setenv("TILECALC_MQTT_BROKER", "")
	return storeDir
}

// run executes the root command with a fresh CLI.
func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// captureOutput redirects command output to a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func listStored(t *testing.T, dir string) []*store.Calculation {
	t.Helper()
	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	calcs, err := s.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return calcs
}

var scenarioArgs = []string{"--length", "5.5", "--width", "4.2", "--tile-length", "30", "--tile-width", "30", "--spacing", "3"}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"calc", "compare", "render", "report", "serve", "history", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, name := range []string{"list", "show", "delete", "browse"} {
		cmd, _, err := root.Find([]string{"history", name})
		if err != nil || cmd.Name() != name {
			t.Errorf("history subcommand %q not registered", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , report.md ", []string{"svg", "report.md"}},
		{"empty entries", "svg,,json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
		single bool
		want   string
	}{
		{"default base", "", "svg", true, "tile-layout.svg"},
		{"single uses output verbatim", "floor.svg", "svg", true, "floor.svg"},
		{"multiple strips extension", "out/floor.svg", "png", false, "out/floor.png"},
		{"report pdf", "floor", pipeline.FormatReportPDF, false, "floor-report.pdf"},
		{"report md default base", "", pipeline.FormatReportMD, true, "tile-layout-report.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactPath(tt.output, tt.format, tt.single); got != tt.want {
				t.Errorf("artifactPath(%q, %q, %v) = %q, want %q", tt.output, tt.format, tt.single, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "floor")
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json", "png"}, base)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %d files, want 2 (missing formats are skipped)", len(paths))
	}
	data, err := os.ReadFile(base + ".svg")
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("svg file = %q, %v", data, err)
	}
}

func TestCalcCommand(t *testing.T) {
	testEnv(t)
	out := filepath.Join(t.TempDir(), "kitchen")

	args := append([]string{"calc"}, scenarioArgs...)
	args = append(args, "-f", "json,report.md", "-o", out)
	if err := run(t, args...); err != nil {
		t.Fatalf("calc: %v", err)
	}

	for _, path := range []string{out + ".json", out + "-report.md"} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", path, err)
		}
	}
	md, _ := os.ReadFile(out + "-report.md")
	if !strings.Contains(string(md), "293") {
		t.Errorf("report should list 293 tiles with waste:\n%s", md)
	}
}

func TestCalcCommandErrors(t *testing.T) {
	testEnv(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad length", []string{"calc", "--length", "abc", "--width", "4", "--tile-length", "30", "--tile-width", "30"}, errors.ErrCodeInvalidDimension},
		{"missing tile", []string{"calc", "--length", "4", "--width", "4"}, errors.ErrCodeInvalidDimension},
		{"bad pattern", append(append([]string{"calc"}, scenarioArgs...), "--pattern", "hexagon"), errors.ErrCodeUnsupportedPattern},
		{"bad format", append(append([]string{"calc"}, scenarioArgs...), "-f", "gif"), errors.ErrCodeInvalidFormat},
		{"bad status", append(append([]string{"calc"}, scenarioArgs...), "--save", "--status", "archived"), errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestHistoryLifecycle(t *testing.T) {
	storeDir := testEnv(t)

	args := append([]string{"calc"}, scenarioArgs...)
	args = append(args, "--save", "--name", "Kitchen", "--status", "draft")
	if err := run(t, args...); err != nil {
		t.Fatalf("calc --save: %v", err)
	}

	calcs := listStored(t, storeDir)
	if len(calcs) != 1 {
		t.Fatalf("stored %d calculations, want 1", len(calcs))
	}
	saved := calcs[0]
	if saved.Name != "Kitchen" || saved.Status != store.StatusDraft {
		t.Errorf("saved = %q/%q, want Kitchen/draft", saved.Name, saved.Status)
	}

	if err := run(t, "history", "list"); err != nil {
		t.Errorf("history list: %v", err)
	}
	if err := run(t, "history", "show", saved.ID[:8]); err != nil {
		t.Errorf("history show: %v", err)
	}

	drawing := filepath.Join(t.TempDir(), "floor.svg")
	if err := run(t, "render", saved.ID, "-o", drawing); err != nil {
		t.Fatalf("render: %v", err)
	}
	svg, err := os.ReadFile(drawing)
	if err != nil || !strings.Contains(string(svg), "<svg") {
		t.Errorf("render wrote %q, %v", svg, err)
	}

	report := filepath.Join(t.TempDir(), "report.md")
	if err := run(t, "report", saved.ID[:8], "-f", "md", "-o", report); err != nil {
		t.Fatalf("report: %v", err)
	}
	md, _ := os.ReadFile(report)
	if !strings.Contains(string(md), "Kitchen") {
		t.Errorf("report should name the project:\n%s", md)
	}

	if err := run(t, "history", "delete", saved.ID[:8]); err != nil {
		t.Fatalf("history delete: %v", err)
	}
	if n := len(listStored(t, storeDir)); n != 0 {
		t.Errorf("stored %d calculations after delete, want 0", n)
	}
	if err := run(t, "history", "show", saved.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show after delete = %v, want NOT_FOUND", err)
	}
}

func TestReportCommandInvalidFormat(t *testing.T) {
	testEnv(t)
	err := run(t, "report", "0f8fad5b-d9cb-469f-a165-70867728950e", "-f", "docx")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestCompareCommand(t *testing.T) {
	testEnv(t)
	out := captureOutput(t)
	if err := run(t, append([]string{"compare"}, scenarioArgs...)...); err != nil {
		t.Fatalf("compare: %v", err)
	}
	for _, p := range tile.Patterns {
		if !strings.Contains(out.String(), p.Title()) {
			t.Errorf("comparison should list %s:\n%s", p.Title(), out.String())
		}
	}
}

func TestResolveCalculation(t *testing.T) {
	ctx := context.Background()
	runner := pipeline.NewRunner(nil, nil, newLogger(io.Discard, LogInfo))

	rec, err := tile.ComputeLayout(tile.Room{LengthM: 2, WidthM: 2}, tile.TileSpec{LengthCm: 50, WidthCm: 50}, tile.Grid)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	ids := []string{
		"aaaa1111-0000-4000-8000-000000000001",
		"aaaa2222-0000-4000-8000-000000000002",
		"bbbb1111-0000-4000-8000-000000000003",
	}
	for _, id := range ids {
		calc := &store.Calculation{ID: id, Name: id[:4], Status: store.StatusCompleted, CreatedAt: time.Now(), Record: rec}
		if err := runner.Store.Save(ctx, calc); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	tests := []struct {
		name   string
		arg    string
		wantID string
		code   errors.Code
	}{
		{"full id", ids[1], ids[1], ""},
		{"unique prefix", "bbbb", ids[2], ""},
		{"upper case prefix", "AAAA2", ids[1], ""},
		{"ambiguous prefix", "aaaa", "", errors.ErrCodeInvalidID},
		{"too short", "bb", "", errors.ErrCodeInvalidID},
		{"no match", "cccc", "", errors.ErrCodeNotFound},
		{"unknown full id", "0f8fad5b-d9cb-469f-a165-70867728950e", "", errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := resolveCalculation(ctx, runner, tt.arg)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("error = %v, want code %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveCalculation(%q): %v", tt.arg, err)
			}
			if calc.ID != tt.wantID {
				t.Errorf("resolved %q, want %q", calc.ID, tt.wantID)
			}
		})
	}
}

func TestResultRows(t *testing.T) {
	rec, err := tile.ComputeLayout(tile.Room{LengthM: 5.5, WidthM: 4.2}, tile.TileSpec{LengthCm: 30, WidthCm: 30, SpacingMm: 3}, tile.Grid)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	values := map[string]string{}
	for _, row := range resultRows(rec) {
		values[row[0]] = row[1]
	}
	if values["Tiles needed"] != "266" {
		t.Errorf("Tiles needed = %q, want 266", values["Tiles needed"])
	}
	if values["With waste"] != "293" {
		t.Errorf("With waste = %q, want 293", values["With waste"])
	}
	if values["Grid"] != "19 x 14" {
		t.Errorf("Grid = %q, want 19 x 14", values["Grid"])
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New(errors.ErrCodeInvalidDimension, "room length is required"))
	if got := buf.String(); !strings.Contains(got, "room length is required") || strings.Contains(got, "INVALID_DIMENSION") {
		t.Errorf("PrintError(coded) = %q", got)
	}

	buf.Reset()
	PrintError(&buf, fmt.Errorf("load config: %w", errors.New(errors.ErrCodeInvalidFormat, "unsupported config file")))
	if got := buf.String(); !strings.Contains(got, "load config:") {
		t.Errorf("PrintError(wrapped) = %q, want the wrapping context", got)
	}
}

// complete runs cobra's hidden completion command and returns its output.
func complete(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(append([]string{cobra.ShellCompRequestCmd}, args...))
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("complete %v: %v", args, err)
	}
	return buf.String()
}

func TestCompletions(t *testing.T) {
	storeDir := testEnv(t)
	args := append([]string{"calc"}, scenarioArgs...)
	if err := run(t, append(args, "--save", "--name", "Kitchen")...); err != nil {
		t.Fatalf("calc --save: %v", err)
	}
	saved := listStored(t, storeDir)[0]

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"pattern", []string{"calc", "--pattern", "he"}, "herringbone\n"},
		{"status", []string{"history", "list", "--status", "in"}, "in-progress\n"},
		{"format list", []string{"render", "--format", "svg,p"}, "svg,png\n"},
		{"report format", []string{"report", "x", "--format", ""}, "md\n"},
		{"calculation id", []string{"history", "show", saved.ID[:4]}, saved.ID + "\tKitchen\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := complete(t, tt.args...); !strings.Contains(out, tt.want) {
				t.Errorf("completions %q should contain %q", out, tt.want)
			}
		})
	}

	if out := complete(t, "render", saved.ID, ""); strings.Contains(out, saved.ID) {
		t.Errorf("second argument should not complete ids:\n%s", out)
	}
}

func TestCompletionScript(t *testing.T) {
	out := captureOutput(t)
	if err := run(t, "completion", "bash"); err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(out.String(), "bash completion V2 for tilecalc") {
		t.Errorf("unexpected script header:\n%.200s", out.String())
	}
	if err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
