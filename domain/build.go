package domain

import (
	"context"
	"io"
	"time"
)

// OutputFormat represents the supported summary output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// DefaultURLPrefix is used when no URL prefix is configured
const DefaultURLPrefix = "/"

// BuildMetadata is the immutable run-level configuration shared by every page generator
type BuildMetadata struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	BuildNumber  string            `json:"build_number" yaml:"build_number"`
	BuildProject string            `json:"build_project" yaml:"build_project"`
	URLPrefix    string            `json:"url_prefix" yaml:"url_prefix"`
	Flags        FailureFlags      `json:"flags" yaml:"flags"`
	FlashCharts  bool              `json:"flash_charts" yaml:"flash_charts"`
	HighCharts   bool              `json:"high_charts" yaml:"high_charts"`
	HostEnabled  bool              `json:"host_integration" yaml:"host_integration"`
	Parallel     bool              `json:"parallel" yaml:"parallel"`
	CustomHeader map[string]string `json:"custom_header,omitempty" yaml:"custom_header,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at" yaml:"generated_at"`
	Version      string            `json:"version" yaml:"version"`
}

// PageContext is everything a page generator receives
type PageContext struct {
	Report    *Report
	Features  []*Feature
	Metadata  BuildMetadata
	OutputDir string
}

// ResultParser turns source documents into features
type ResultParser interface {
	ParseFiles(paths []string) ([]*Feature, error)
}

// AssetStager places static resources under the output directory
type AssetStager interface {
	Stage(outputDir string, bundles ...string) error
}

// PageGenerator renders one report view
type PageGenerator interface {
	Name() string
	Generate(ctx PageContext) error
}

// ErrorPageWriter renders the single page left behind by a failed run
type ErrorPageWriter interface {
	WriteErrorPage(outputDir string, meta BuildMetadata, failure error) error
}

// ProgressManager creates progress tasks
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of one task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a unit of work run by the batch executor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// SummaryFormatter writes a report summary in a given format
type SummaryFormatter interface {
	Write(report *Report, meta BuildMetadata, format OutputFormat, writer io.Writer) error
}
