package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/cukereport/internal/testutil"
)

const passingResults = `[{"name": "Search", "elements": [
  {"name": "By keyword", "steps": [
    {"keyword": "Given ", "name": "a catalog", "result": {"status": "passed", "duration": 5}}
  ]}
]}]`

const undefinedResults = `[{"name": "Checkout", "elements": [
  {"name": "Pay", "steps": [
    {"keyword": "When ", "name": "I pay", "result": {"status": "undefined"}}
  ]}
]}]`

func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	code := exitCode(root.Execute(), &stderr)
	return stdout.String() + stderr.String(), code
}

func TestGenerateCmd_FlagsExist(t *testing.T) {
	cmd := generateCmd()

	expectedFlags := []string{
		"config", "output", "url-prefix", "build-number", "build-project",
		"skipped-fails", "pending-fails", "undefined-fails", "missing-fails",
		"flash-charts", "high-charts", "host-integration", "parallel",
		"metrics-file", "format", "quiet",
	}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}

	shortFlags := map[string]string{"c": "config", "o": "output", "f": "format", "q": "quiet"}
	for short, long := range shortFlags {
		if cmd.Flags().ShorthandLookup(short) == nil {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestGenerateCmd_DefaultValues(t *testing.T) {
	cmd := generateCmd()

	if got := cmd.Flags().Lookup("output").DefValue; got != "cucumber-html-reports" {
		t.Errorf("Expected default output to be 'cucumber-html-reports', got '%s'", got)
	}
	if got := cmd.Flags().Lookup("format").DefValue; got != "text" {
		t.Errorf("Expected default format to be 'text', got '%s'", got)
	}
}

func TestGenerateCmd_NoPaths(t *testing.T) {
	out, code := execute(t, "generate")
	if code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
	if !strings.Contains(out, "no result files specified") {
		t.Errorf("Unexpected output: %s", out)
	}
}

func TestGenerateCmd_PassingBuild(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteFile(t, dir, "search.json", passingResults)
	site := filepath.Join(dir, "site")

	out, code := execute(t, "generate", "-o", site, "--build-number", "42", source)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", code, out)
	}
	if !strings.Contains(out, "Cucumber Report") {
		t.Errorf("Expected a summary, got: %s", out)
	}
	testutil.AssertFileExists(t, filepath.Join(site, "feature-overview.html"))
	testutil.AssertFileExists(t, filepath.Join(site, "feature-search.html"))
}

func TestGenerateCmd_ClassificationFlags(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteFile(t, dir, "checkout.json", undefinedResults)

	if _, code := execute(t, "generate", "-q", "-o", filepath.Join(dir, "lenient"), source); code != 0 {
		t.Errorf("Undefined steps should pass without --undefined-fails, got exit code %d", code)
	}
	if _, code := execute(t, "generate", "-q", "--undefined-fails", "-o", filepath.Join(dir, "strict"), source); code != 1 {
		t.Errorf("Undefined steps should fail with --undefined-fails, got exit code %d", code)
	}
}

func TestGenerateCmd_ConfigFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteFile(t, dir, "checkout.json", undefinedResults)
	configPath := testutil.WriteFile(t, dir, "cukereport.yaml", `
report:
  output_dir: `+filepath.Join(dir, "from-config")+`
classification:
  undefined_fails_build: true
`)

	if _, code := execute(t, "generate", "-q", "-c", configPath, source); code != 1 {
		t.Errorf("Config should make undefined steps fail, got exit code %d", code)
	}
	testutil.AssertFileExists(t, filepath.Join(dir, "from-config", "feature-overview.html"))

	if _, code := execute(t, "generate", "-q", "-c", configPath, "--undefined-fails=false", source); code != 0 {
		t.Errorf("An explicit flag should override the config, got exit code %d", code)
	}
}

func TestGenerateCmd_InvalidResults(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteFile(t, dir, "broken.json", "{")
	site := filepath.Join(dir, "site")

	out, code := execute(t, "generate", "-o", site, source)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "report generation failed") {
		t.Errorf("Expected failure message, got: %s", out)
	}

	content, err := os.ReadFile(filepath.Join(site, "feature-overview.html"))
	if err != nil {
		t.Fatalf("Error page not written: %v", err)
	}
	if !strings.Contains(string(content), "PARSE_ERROR") {
		t.Error("Error page should name the parse error")
	}
}

func TestGenerateCmd_MissingSource(t *testing.T) {
	dir := t.TempDir()
	site := filepath.Join(dir, "site")
	absent := filepath.Join(dir, "absent.json")

	out, code := execute(t, "generate", "-o", site, absent)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d: %s", code, out)
	}

	content, err := os.ReadFile(filepath.Join(site, "feature-overview.html"))
	if err != nil {
		t.Fatalf("Error page not written: %v", err)
	}
	if !strings.Contains(string(content), "absent.json") {
		t.Error("Error page should name the unreadable source")
	}
}

func TestGenerateCmd_UnsupportedFormat(t *testing.T) {
	source := testutil.WriteFile(t, t.TempDir(), "search.json", passingResults)
	if _, code := execute(t, "generate", "-f", "xml", source); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	passing := testutil.WriteFile(t, dir, "search.json", passingResults)
	undefined := testutil.WriteFile(t, dir, "checkout.json", undefinedResults)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"passing", []string{"check", passing}, 0},
		{"lenient undefined", []string{"check", "--strictness", "lenient", undefined}, 0},
		{"standard undefined", []string{"check", "--strictness", "standard", undefined}, 1},
		{"flag undefined", []string{"check", "--undefined-fails", undefined}, 1},
		{"unknown strictness", []string{"check", "--strictness", "paranoid", passing}, 2},
		{"missing file", []string{"check", filepath.Join(dir, "absent.json")}, 2},
		{"no paths", []string{"check"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, code := execute(t, tt.args...)
			if code != tt.want {
				t.Errorf("Expected exit code %d, got %d: %s", tt.want, code, out)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "cucumber-html-reports")); !os.IsNotExist(err) {
		t.Error("check must not write a report")
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	source := testutil.WriteFile(t, t.TempDir(), "search.json", passingResults)

	out, code := execute(t, "check", "-f", "json", source)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, `"verdict": "passed"`) {
		t.Errorf("Expected JSON summary, got: %s", out)
	}
}

func TestBatchCmd(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "results/web/search.json", passingResults)
	testutil.WriteFile(t, dir, "results/api/checkout.json", undefinedResults)
	manifest := testutil.WriteFile(t, dir, "batch.yaml", `
jobs:
  - name: web
    sources: [results/web]
    output_dir: site/web
  - name: api
    sources: [results/api]
    output_dir: site/api
`)

	out, code := execute(t, "batch", "-j", "2", manifest)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", code, out)
	}
	if !strings.Contains(out, "web") || !strings.Contains(out, "PASS") {
		t.Errorf("Expected job table, got: %s", out)
	}
	testutil.AssertFileExists(t, filepath.Join(dir, "site", "web", "feature-search.html"))
	testutil.AssertFileExists(t, filepath.Join(dir, "site", "api", "feature-checkout.html"))
}

func TestBatchCmd_InvalidManifest(t *testing.T) {
	manifest := testutil.WriteFile(t, t.TempDir(), "batch.yaml", "jobs: []\n")
	if _, code := execute(t, "batch", manifest); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer

	if code := exitCode(nil, &stderr); code != 0 {
		t.Errorf("Expected 0 for nil, got %d", code)
	}
	if code := exitCode(&ExitError{Code: 1}, &stderr); code != 1 || stderr.Len() != 0 {
		t.Errorf("Silent exit error should not print, got code %d and %q", code, stderr.String())
	}
	if code := exitCode(errors.New("unknown flag: --nope"), &stderr); code != 2 {
		t.Errorf("Expected 2 for cobra errors, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown flag") {
		t.Errorf("Expected message on stderr, got %q", stderr.String())
	}
}

func TestVersionCmd(t *testing.T) {
	out, code := execute(t, "version")
	if code != 0 || !strings.Contains(out, "cukereport version") {
		t.Errorf("Unexpected version output (%d): %s", code, out)
	}
}
