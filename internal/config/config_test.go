package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/cukereport/domain"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig should not return nil")
	}

	if config.Report.OutputDir != DefaultOutputDir {
		t.Errorf("Expected OutputDir %s, got %s", DefaultOutputDir, config.Report.OutputDir)
	}
	if config.Report.URLPrefix != DefaultURLPrefix {
		t.Errorf("Expected URLPrefix %s, got %s", DefaultURLPrefix, config.Report.URLPrefix)
	}
	if config.Report.Parallel {
		t.Error("Parallel should be false by default")
	}
	if config.Classification.Flags() != (domain.FailureFlags{}) {
		t.Errorf("No classification flag should be set by default, got %+v", config.Classification)
	}
	if config.Charts.Flash || config.Charts.HighCharts {
		t.Error("Chart options should be off by default")
	}
	if config.Host.Enabled {
		t.Error("Host integration should be off by default")
	}
	if config.Output.Format != "text" {
		t.Errorf("Expected Format 'text', got '%s'", config.Output.Format)
	}
	if !config.Sources.Recursive {
		t.Error("Recursive should be true by default")
	}
	if len(config.Sources.Include) == 0 {
		t.Error("Include patterns should not be empty")
	}
}

func TestDefaultConfig_DoesNotShareIncludeSlice(t *testing.T) {
	a := DefaultConfig()
	a.Sources.Include[0] = "changed"

	if DefaultIncludePatterns[0] == "changed" {
		t.Error("DefaultConfig must copy DefaultIncludePatterns")
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestConfig_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty output dir", func(c *Config) { c.Report.OutputDir = "  " }, "report.output_dir"},
		{"host without project", func(c *Config) { c.Host.Enabled = true }, "build_project"},
		{"unnamed header field", func(c *Config) { c.Report.CustomHeader = []HeaderField{{Value: "x"}} }, "custom_header[0]"},
		{"invalid format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"empty include", func(c *Config) { c.Sources.Include = nil }, "sources.include"},
		{"bad include pattern", func(c *Config) { c.Sources.Include = []string{"[a-"} }, "sources.include pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConfig_Validate_HostWithProject(t *testing.T) {
	config := DefaultConfig()
	config.Host.Enabled = true
	config.Report.BuildProject = "shop"

	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestClassificationConfig_Flags(t *testing.T) {
	c := ClassificationConfig{SkippedFailsBuild: true, MissingFailsBuild: true}
	want := domain.FailureFlags{SkippedFails: true, MissingFails: true}

	if got := c.Flags(); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestReportConfig_HeaderMap(t *testing.T) {
	r := ReportConfig{}
	if r.HeaderMap() != nil {
		t.Error("Expected nil map without header fields")
	}

	r.CustomHeader = []HeaderField{{Name: "Env", Value: "staging"}, {Name: "Region", Value: "eu"}}
	m := r.HeaderMap()
	if len(m) != 2 || m["Env"] != "staging" || m["Region"] != "eu" {
		t.Errorf("Unexpected header map %v", m)
	}
}

func TestLoadConfig_NoPath(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CUKEREPORT_CONFIG", "")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Report.OutputDir != DefaultOutputDir {
		t.Errorf("Expected default config, got %+v", config.Report)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cukereport.yaml")
	content := `
report:
  output_dir: out/reports
  url_prefix: /ci/
  build_number: "42"
  build_project: shop
  parallel: true
  custom_header:
    - name: Environment
      value: staging
classification:
  skipped_fails_build: true
charts:
  flash: true
host:
  enabled: true
output:
  format: json
  metrics_file: out/metrics.prom
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if config.Report.OutputDir != "out/reports" {
		t.Errorf("Expected output_dir out/reports, got %s", config.Report.OutputDir)
	}
	if config.Report.BuildNumber != "42" || config.Report.BuildProject != "shop" {
		t.Errorf("Unexpected build identity %+v", config.Report)
	}
	if !config.Report.Parallel || !config.Charts.Flash || !config.Host.Enabled {
		t.Error("Expected parallel, flash and host to be enabled")
	}
	if !config.Classification.SkippedFailsBuild || config.Classification.PendingFailsBuild {
		t.Errorf("Unexpected classification %+v", config.Classification)
	}
	if len(config.Report.CustomHeader) != 1 || config.Report.CustomHeader[0].Name != "Environment" {
		t.Errorf("Header names must keep their case, got %+v", config.Report.CustomHeader)
	}
	if config.Output.Format != "json" || config.Output.MetricsFile != "out/metrics.prom" {
		t.Errorf("Unexpected output config %+v", config.Output)
	}
	// Unset sections keep their defaults
	if len(config.Sources.Include) == 0 || !config.Sources.Recursive {
		t.Errorf("Expected default sources, got %+v", config.Sources)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cukereport.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid configuration")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfigWithTarget_DiscoversUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "build", "results")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".cukereport.yaml"), []byte("report:\n  build_project: found\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigWithTarget("", nested)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Report.BuildProject != "found" {
		t.Errorf("Expected discovered config, got %+v", config.Report)
	}
}

func TestFindDefaultConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cukereport.json", "cukereport.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := findDefaultConfig(dir)
	if filepath.Base(got) != "cukereport.yaml" {
		t.Errorf("Expected cukereport.yaml to win, got %s", got)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	config := DefaultConfig()
	config.Report.BuildProject = "shop"
	config.Classification.PendingFailsBuild = true

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Report.BuildProject != "shop" || !loaded.Classification.PendingFailsBuild {
		t.Errorf("Saved values not restored: %+v", loaded)
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Embedded default config should be valid: %v", err)
	}
	def := DefaultConfig()
	if cfg.Report.OutputDir != def.Report.OutputDir || cfg.Output.Format != def.Output.Format {
		t.Errorf("Embedded default config drifted from DefaultConfig: %+v", cfg)
	}
}

func TestStrictnessPresets(t *testing.T) {
	presets := GetStrictnessPresets()

	for _, s := range AllStrictness {
		if _, ok := presets[s]; !ok {
			t.Errorf("Missing preset %s", s)
		}
	}

	lenient := presets[StrictnessLenient].Classification
	if lenient.Flags() != (domain.FailureFlags{}) {
		t.Error("Lenient preset must not set any flag")
	}
	strict := presets[StrictnessStrict].Classification
	if !strict.SkippedFailsBuild || !strict.PendingFailsBuild || !strict.UndefinedFailsBuild || !strict.MissingFailsBuild {
		t.Error("Strict preset must set every flag")
	}
}

func TestGetFullConfigTemplate_IsValidConfig(t *testing.T) {
	for _, s := range AllStrictness {
		t.Run(string(s), func(t *testing.T) {
			opts := DefaultTemplateOptions()
			opts.Strictness = s
			opts.BuildProject = "shop"
			opts.HostEnabled = true

			cfg := DefaultConfig()
			if err := yaml.Unmarshal([]byte(GetFullConfigTemplate(opts)), cfg); err != nil {
				t.Fatalf("Template is not valid YAML: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Template is not a valid config: %v", err)
			}
			want := GetStrictnessPresets()[s].Classification
			if cfg.Classification != want {
				t.Errorf("Expected classification %+v, got %+v", want, cfg.Classification)
			}
			if cfg.Report.BuildProject != "shop" || !cfg.Host.Enabled {
				t.Errorf("Template options not applied: %+v %+v", cfg.Report, cfg.Host)
			}
		})
	}
}

func TestGetMinimalConfigTemplate(t *testing.T) {
	if !strings.Contains(GetMinimalConfigTemplate(), "output_dir") {
		t.Error("Minimal template should contain output_dir")
	}
}
