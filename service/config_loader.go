package service

import (
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/ludo-technologies/cukereport/internal/version"
)

// ConfigurationLoaderImpl loads configuration files and merges command line overrides
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// ConfigOverrides holds values given on the command line. Nil fields were
// not given and leave the configuration untouched.
type ConfigOverrides struct {
	OutputDir      *string
	URLPrefix      *string
	BuildNumber    *string
	BuildProject   *string
	SkippedFails   *bool
	PendingFails   *bool
	UndefinedFails *bool
	MissingFails   *bool
	FlashCharts    *bool
	HostEnabled    *bool
	HighCharts     *bool
	Parallel       *bool
	Format         *string
	MetricsFile    *string
}

// LoadConfig loads the file at path, or discovers one from target when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads a discovered config file, falling back to the
// built-in defaults when none is found or it cannot be read
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *config.Config {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return cfg
	}
	return config.DefaultConfig()
}

// FindDefaultConfigFile searches start and its parents for a config file
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}

	for {
		for _, file := range constants.ConfigFileNames {
			configPath := filepath.Join(dir, file)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// MergeConfig returns a copy of base with every given override applied
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, o ConfigOverrides) *config.Config {
	merged := *base

	setString(&merged.Report.OutputDir, o.OutputDir)
	setString(&merged.Report.URLPrefix, o.URLPrefix)
	setString(&merged.Report.BuildNumber, o.BuildNumber)
	setString(&merged.Report.BuildProject, o.BuildProject)
	setBool(&merged.Classification.SkippedFailsBuild, o.SkippedFails)
	setBool(&merged.Classification.PendingFailsBuild, o.PendingFails)
	setBool(&merged.Classification.UndefinedFailsBuild, o.UndefinedFails)
	setBool(&merged.Classification.MissingFailsBuild, o.MissingFails)
	setBool(&merged.Charts.Flash, o.FlashCharts)
	setBool(&merged.Charts.HighCharts, o.HighCharts)
	setBool(&merged.Host.Enabled, o.HostEnabled)
	setBool(&merged.Report.Parallel, o.Parallel)
	setString(&merged.Output.Format, o.Format)
	setString(&merged.Output.MetricsFile, o.MetricsFile)

	return &merged
}

// MetadataFromConfig derives the run-level build metadata from a configuration
func MetadataFromConfig(cfg *config.Config) domain.BuildMetadata {
	prefix := cfg.Report.URLPrefix
	if prefix == "" {
		prefix = domain.DefaultURLPrefix
	}
	return domain.BuildMetadata{
		BuildNumber:  cfg.Report.BuildNumber,
		BuildProject: cfg.Report.BuildProject,
		URLPrefix:    prefix,
		Flags:        cfg.Classification.Flags(),
		FlashCharts:  cfg.Charts.Flash,
		HighCharts:   cfg.Charts.HighCharts,
		HostEnabled:  cfg.Host.Enabled,
		Parallel:     cfg.Report.Parallel,
		CustomHeader: cfg.Report.HeaderMap(),
		Version:      version.GetVersion(),
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
