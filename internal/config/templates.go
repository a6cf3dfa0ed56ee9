package config

import (
	"strconv"
	"strings"

	"github.com/ludo-technologies/cukereport/internal/constants"
)

// Strictness represents how many non-failed statuses fail the build
type Strictness string

const (
	StrictnessLenient  Strictness = constants.PresetLenient
	StrictnessStandard Strictness = constants.PresetStandard
	StrictnessStrict   Strictness = constants.PresetStrict
)

// AllStrictness lists the presets in the order init offers them
var AllStrictness = []Strictness{StrictnessLenient, StrictnessStandard, StrictnessStrict}

// StrictnessPreset describes one preset offered by init
type StrictnessPreset struct {
	Description    string
	Classification ClassificationConfig
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessLenient: {
			Description: "only failed steps fail the build",
		},
		StrictnessStandard: {
			Description: "failed and undefined steps fail the build",
			Classification: ClassificationConfig{
				UndefinedFailsBuild: true,
			},
		},
		StrictnessStrict: {
			Description: "any step that did not pass fails the build",
			Classification: ClassificationConfig{
				SkippedFailsBuild:   true,
				PendingFailsBuild:   true,
				UndefinedFailsBuild: true,
				MissingFailsBuild:   true,
			},
		},
	}
}

// TemplateOptions are the answers collected by init
type TemplateOptions struct {
	Strictness   Strictness
	OutputDir    string
	BuildProject string
	HostEnabled  bool
	FlashCharts  bool
}

// DefaultTemplateOptions returns the options used by non-interactive init
func DefaultTemplateOptions() TemplateOptions {
	return TemplateOptions{
		Strictness: StrictnessStandard,
		OutputDir:  DefaultOutputDir,
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(opts TemplateOptions) string {
	preset, ok := GetStrictnessPresets()[opts.Strictness]
	if !ok {
		preset = GetStrictnessPresets()[StrictnessStandard]
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	c := preset.Classification

	return `# cukereport configuration
# Strictness: ` + string(opts.Strictness) + ` (` + preset.Description + `)

# ============================================================================
# REPORT
# ============================================================================
report:
  # Directory receiving the generated pages and assets
  output_dir: ` + quote(outputDir) + `

  # Prefix for every link between pages ("/" when empty)
  url_prefix: "./"

  # Shown in page headers and used for host links
  build_number: ""
  build_project: ` + quote(opts.BuildProject) + `

  # Include the source file name in feature page names so features with the
  # same name from parallel runs get separate pages
  parallel: false

  # Extra key/value pairs shown in every page header
  custom_header: []
  #  - name: Environment
  #    value: staging

# ============================================================================
# FAILURE CLASSIFICATION
# ============================================================================
# Failed steps always fail the build. Each flag below adds one more status.
classification:
  skipped_fails_build: ` + strconv.FormatBool(c.SkippedFailsBuild) + `
  pending_fails_build: ` + strconv.FormatBool(c.PendingFailsBuild) + `
  undefined_fails_build: ` + strconv.FormatBool(c.UndefinedFailsBuild) + `
  missing_fails_build: ` + strconv.FormatBool(c.MissingFailsBuild) + `

# ============================================================================
# CHARTS
# ============================================================================
charts:
  # Stage the supplemental flash chart bundle
  flash: ` + strconv.FormatBool(opts.FlashCharts) + `
  # Bar charts instead of pies
  high_charts: false

# ============================================================================
# HOST INTEGRATION
# ============================================================================
host:
  # Rewrite links to <prefix>job/<project>/<build>/cucumber-html-reports/<page>
  enabled: ` + strconv.FormatBool(opts.HostEnabled) + `

# ============================================================================
# SOURCES
# ============================================================================
# Applied when a directory is given as a source. Exclude entries use
# .gitignore syntax; a .cukereportignore file in the directory is honoured too.
sources:
  include: ` + formatYAMLList(DefaultIncludePatterns) + `
  exclude: []
  recursive: true

# ============================================================================
# OUTPUT
# ============================================================================
output:
  # Summary printed after a build: text, json, yaml
  format: text
  # Prometheus textfile written after each build (empty disables)
  metrics_file: ""
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return DefaultConfigYAML
}

func quote(s string) string {
	return strconv.Quote(s)
}

func formatYAMLList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
