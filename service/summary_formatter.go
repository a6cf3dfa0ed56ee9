package service

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/version"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// SummaryFormatterImpl prints the outcome of a build
type SummaryFormatterImpl struct {
	// Colors switches to the colored table styles
	Colors bool
}

// NewSummaryFormatter creates a new summary formatter
func NewSummaryFormatter() *SummaryFormatterImpl {
	return &SummaryFormatterImpl{}
}

// BuildSummary is the machine readable summary of one build
type BuildSummary struct {
	Version      string         `json:"version" yaml:"version"`
	GeneratedAt  string         `json:"generated_at" yaml:"generated_at"`
	RunID        string         `json:"run_id" yaml:"run_id"`
	BuildNumber  string         `json:"build_number,omitempty" yaml:"build_number,omitempty"`
	BuildProject string         `json:"build_project,omitempty" yaml:"build_project,omitempty"`
	Verdict      domain.Verdict `json:"verdict" yaml:"verdict"`
	DurationMs   int64          `json:"duration_ms" yaml:"duration_ms"`
	Report       *domain.Report `json:"report" yaml:"report"`
}

// NewBuildSummary assembles the summary written in json and yaml formats
func NewBuildSummary(report *domain.Report, meta domain.BuildMetadata) BuildSummary {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	v := meta.Version
	if v == "" {
		v = version.GetVersion()
	}
	return BuildSummary{
		Version:      v,
		GeneratedAt:  generated.Format(time.RFC3339),
		RunID:        meta.RunID,
		BuildNumber:  meta.BuildNumber,
		BuildProject: meta.BuildProject,
		Verdict:      report.Verdict,
		DurationMs:   report.Totals.Duration.Milliseconds(),
		Report:       report,
	}
}

// Write writes the summary of report in the given format
func (f *SummaryFormatterImpl) Write(report *domain.Report, meta domain.BuildMetadata, format domain.OutputFormat, writer io.Writer) error {
	if report == nil {
		return domain.NewInvalidInputError("no report to summarize", nil)
	}

	switch format {
	case domain.OutputFormatText, "":
		return f.writeText(report, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, NewBuildSummary(report, meta))
	case domain.OutputFormatYAML:
		return WriteYAML(writer, NewBuildSummary(report, meta))
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteJSON writes data as indented JSON
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

func (f *SummaryFormatterImpl) writeText(report *domain.Report, writer io.Writer) error {
	caser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(writer)
	t.SetTitle("Cucumber Report")

	header := table.Row{"Feature", "Scenarios", "Steps"}
	for _, s := range displayStatuses {
		header = append(header, caser.String(string(s)))
	}
	header = append(header, "Duration", "Result")
	t.AppendHeader(header)

	configs := []table.ColumnConfig{
		{Name: "Feature", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Scenarios", Align: text.AlignRight},
		{Name: "Steps", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	}
	for _, s := range displayStatuses {
		configs = append(configs, table.ColumnConfig{Name: caser.String(string(s)), Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)

	for _, fs := range report.Features {
		t.AppendRow(countsRow(fs.Name, fs.Scenarios.Total(), fs.Steps, fs.Duration, resultString(fs.Verdict)))
	}

	if f.Colors {
		if report.Passed() {
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		} else {
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		}
	} else {
		t.SetStyle(table.StyleLight)
	}

	t.AppendFooter(countsRow(
		fmt.Sprintf("TOTAL (%d)", report.Totals.Features),
		report.Totals.Scenarios.Total(),
		report.Totals.Steps,
		report.Totals.Duration,
		resultString(report.Verdict),
	))

	t.Render()
	return nil
}

func countsRow(name string, scenarios int, steps domain.Counts, d time.Duration, result string) table.Row {
	row := table.Row{name, scenarios, steps.Total()}
	for _, s := range displayStatuses {
		row = append(row, steps.Get(s))
	}
	return append(row, formatDuration(d), result)
}

func resultString(v domain.Verdict) string {
	if v == domain.VerdictPassed {
		return "PASS"
	}
	return "FAIL"
}
