package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/spf13/viper"
)

// Default report settings
const (
	// DefaultOutputDir is where pages are written when nothing else is configured
	DefaultOutputDir = "cucumber-html-reports"

	// DefaultURLPrefix is prepended to every generated link
	DefaultURLPrefix = "./"

	// DefaultOutputFormat is the summary format printed after a build
	DefaultOutputFormat = constants.OutputFormatText
)

// DefaultIncludePatterns select result files when a directory is given as a source
var DefaultIncludePatterns = []string{"*.json"}

// Config represents the main configuration structure
type Config struct {
	// Report holds page generation settings
	Report ReportConfig `json:"report" mapstructure:"report" yaml:"report"`

	// Classification decides which non-failed step statuses fail the build
	Classification ClassificationConfig `json:"classification" mapstructure:"classification" yaml:"classification"`

	// Charts holds chart rendering settings
	Charts ChartsConfig `json:"charts" mapstructure:"charts" yaml:"charts"`

	// Host holds CI server integration settings
	Host HostConfig `json:"host" mapstructure:"host" yaml:"host"`

	// Sources controls which result files are collected from directories
	Sources SourcesConfig `json:"sources" mapstructure:"sources" yaml:"sources"`

	// Output holds summary and metrics output settings
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// ReportConfig holds settings for the generated pages
type ReportConfig struct {
	OutputDir    string        `json:"output_dir" mapstructure:"output_dir" yaml:"output_dir"`
	URLPrefix    string        `json:"url_prefix" mapstructure:"url_prefix" yaml:"url_prefix"`
	BuildNumber  string        `json:"build_number" mapstructure:"build_number" yaml:"build_number"`
	BuildProject string        `json:"build_project" mapstructure:"build_project" yaml:"build_project"`
	Parallel     bool          `json:"parallel" mapstructure:"parallel" yaml:"parallel"`
	CustomHeader []HeaderField `json:"custom_header,omitempty" mapstructure:"custom_header" yaml:"custom_header,omitempty"`
}

// HeaderField is one key/value pair shown in the page header.
// Kept as a list so names keep their case through viper.
type HeaderField struct {
	Name  string `json:"name" mapstructure:"name" yaml:"name"`
	Value string `json:"value" mapstructure:"value" yaml:"value"`
}

// ClassificationConfig holds the failure-classification flags
type ClassificationConfig struct {
	SkippedFailsBuild   bool `json:"skipped_fails_build" mapstructure:"skipped_fails_build" yaml:"skipped_fails_build"`
	PendingFailsBuild   bool `json:"pending_fails_build" mapstructure:"pending_fails_build" yaml:"pending_fails_build"`
	UndefinedFailsBuild bool `json:"undefined_fails_build" mapstructure:"undefined_fails_build" yaml:"undefined_fails_build"`
	MissingFailsBuild   bool `json:"missing_fails_build" mapstructure:"missing_fails_build" yaml:"missing_fails_build"`
}

// ChartsConfig holds chart settings
type ChartsConfig struct {
	// Flash stages the supplemental flash chart bundle
	Flash bool `json:"flash" mapstructure:"flash" yaml:"flash"`

	// HighCharts switches pages to the richer bar chart rendering
	HighCharts bool `json:"high_charts" mapstructure:"high_charts" yaml:"high_charts"`
}

// HostConfig holds CI server integration settings
type HostConfig struct {
	// Enabled rewrites links to the host's job/build report path
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
}

// SourcesConfig controls result file collection
type SourcesConfig struct {
	Include   []string `json:"include" mapstructure:"include" yaml:"include"`
	Exclude   []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`
	Recursive bool     `json:"recursive" mapstructure:"recursive" yaml:"recursive"`
}

// OutputConfig holds summary output settings
type OutputConfig struct {
	Format      string `json:"format" mapstructure:"format" yaml:"format"`
	MetricsFile string `json:"metrics_file" mapstructure:"metrics_file" yaml:"metrics_file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			OutputDir: DefaultOutputDir,
			URLPrefix: DefaultURLPrefix,
		},
		Sources: SourcesConfig{
			Include:   append([]string(nil), DefaultIncludePatterns...),
			Exclude:   []string{},
			Recursive: true,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}

// Flags returns the failure-classification flags
func (c *ClassificationConfig) Flags() domain.FailureFlags {
	return domain.FailureFlags{
		SkippedFails:   c.SkippedFailsBuild,
		PendingFails:   c.PendingFailsBuild,
		UndefinedFails: c.UndefinedFailsBuild,
		MissingFails:   c.MissingFailsBuild,
	}
}

// HeaderMap returns the custom header as a map
func (c *ReportConfig) HeaderMap() map[string]string {
	if len(c.CustomHeader) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.CustomHeader))
	for _, f := range c.CustomHeader {
		m[f.Name] = f.Value
	}
	return m
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a config file from
// targetPath upward when configPath is empty
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for a config file from targetPath up to the root,
// then in the current directory, the user config directory and finally the
// CUKEREPORT_CONFIG environment variable
func findDefaultConfig(targetPath string) string {
	candidates := constants.ConfigFileNames

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Report.OutputDir) == "" {
		return fmt.Errorf("report.output_dir cannot be empty")
	}

	if c.Host.Enabled && c.Report.BuildProject == "" {
		return fmt.Errorf("report.build_project is required when host.enabled is true")
	}

	for i, f := range c.Report.CustomHeader {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("report.custom_header[%d].name cannot be empty", i)
		}
	}

	validFormats := map[string]bool{
		constants.OutputFormatText: true,
		constants.OutputFormatJSON: true,
		constants.OutputFormatYAML: true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	if len(c.Sources.Include) == 0 {
		return fmt.Errorf("sources.include cannot be empty")
	}
	for _, pattern := range c.Sources.Include {
		if _, err := filepath.Match(pattern, "x"); err != nil {
			return fmt.Errorf("invalid sources.include pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("report", config.Report)
	v.Set("classification", config.Classification)
	v.Set("charts", config.Charts)
	v.Set("host", config.Host)
	v.Set("sources", config.Sources)
	v.Set("output", config.Output)

	return v.WriteConfig()
}
