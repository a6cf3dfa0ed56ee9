package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "cukereport"

	// ConfigFileName is the default config file name
	ConfigFileName = "cukereport.yaml"

	// IgnoreFileName lists source patterns skipped when collecting result files
	IgnoreFileName = ".cukereportignore"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "CUKEREPORT"
)

// ConfigFileNames are searched, in order, when discovering a config file
var ConfigFileNames = []string{
	"cukereport.yaml",
	"cukereport.yml",
	".cukereport.yaml",
	".cukereport.toml",
	"cukereport.json",
}

// Page names
const (
	FeatureOverviewPage = "feature-overview.html"
	TagOverviewPage     = "tag-overview.html"
	StepOverviewPage    = "step-overview.html"
	FeaturePagePrefix   = "feature-"
	TagPagePrefix       = "tag-"
	PageExtension       = ".html"

	// HostReportDir is the report directory segment used in host links
	HostReportDir = "cucumber-html-reports"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Strictness presets used by init
const (
	PresetLenient  = "lenient"
	PresetStandard = "standard"
	PresetStrict   = "strict"
)

// Exit codes
const (
	ExitPassed     = 0
	ExitFailed     = 1
	ExitUsageError = 2
)
