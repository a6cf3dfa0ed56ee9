package service

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/aggregate"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/ludo-technologies/cukereport/internal/version"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("pages").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html.tmpl"),
)

// Status display order used by tables and metric cards
var displayStatuses = []domain.Status{
	domain.StatusPassed,
	domain.StatusFailed,
	domain.StatusSkipped,
	domain.StatusPending,
	domain.StatusUndefined,
	domain.StatusMissing,
}

func templateFuncs() template.FuncMap {
	titleCaser := cases.Title(language.English)
	printer := message.NewPrinter(language.English)

	return template.FuncMap{
		"statuses": func() []domain.Status { return displayStatuses },
		// feature, scenarios, steps, one per status, duration, status
		"columns": func() int { return len(displayStatuses) + 5 },
		"count": func(c domain.Counts, s domain.Status) int {
			return c.Get(s)
		},
		"label": func(v any) string {
			return titleCaser.String(fmt.Sprint(v))
		},
		"statusClass": func(v any) string {
			return "status-" + fmt.Sprint(v)
		},
		"verdictClass": func(v domain.Verdict) string {
			return "verdict-" + string(v)
		},
		"number": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"duration": formatDuration,
		"percent": func(part, total int) string {
			if total == 0 {
				return "0%"
			}
			return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
		},
		"countsJSON": func(c domain.Counts) string {
			data, err := json.Marshal(countsMap(c))
			if err != nil {
				return "{}"
			}
			return string(data)
		},
		"metricsOf": func(c domain.Counts) struct{ Counts domain.Counts } {
			return struct{ Counts domain.Counts }{c}
		},
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "0s"
	case d < time.Millisecond:
		return d.String()
	case d < time.Minute:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func countsMap(c domain.Counts) map[string]int {
	m := make(map[string]int, len(displayStatuses))
	for _, s := range displayStatuses {
		m[string(s)] = c.Get(s)
	}
	return m
}

type headerField struct {
	Name  string
	Value string
}

// pageData is shared by every template; page specific fields are nil on
// other pages
type pageData struct {
	Title       string
	Meta        domain.BuildMetadata
	Header      []headerField
	Links       LinkBuilder
	Report      *domain.Report
	ChartKind   string
	Footer      string
	GeneratedAt string

	Groups   []featureGroup
	Feature  *featureView
	Tag      *tagView
	Failure  *failureView
}

type featureRow struct {
	Stats domain.FeatureStats
	Href  string
}

// featureGroup is a block of overview rows; Source is empty unless the
// report merges several parallel runs
type featureGroup struct {
	Source string
	Rows   []featureRow
}

type featureView struct {
	Stats     domain.FeatureStats
	Feature   *domain.Feature
	Scenarios []scenarioView
}

type scenarioView struct {
	Scenario *domain.Scenario
	Status   domain.Status
}

type tagView struct {
	Stats domain.TagStats
	Items []tagItem
}

type tagItem struct {
	Feature  string
	Scenario string
	Href     string
	Steps    int
	Status   domain.Status
}

type failureView struct {
	Code    string
	Message string
	Causes  []string
	Stack   string
}

func newPageData(ctx domain.PageContext, title string) pageData {
	chartKind := "pie"
	if ctx.Metadata.HighCharts {
		chartKind = "bar"
	}
	links := NewLinkBuilder(ctx.Metadata)
	if ctx.Report != nil {
		links = links.WithTagPages(TagPageNames(ctx.Report.Tags))
	}
	return pageData{
		Title:       title,
		Meta:        ctx.Metadata,
		Header:      sortedHeader(ctx.Metadata.CustomHeader),
		Links:       links,
		Report:      ctx.Report,
		ChartKind:   chartKind,
		Footer:      footerFor(ctx.Metadata),
		GeneratedAt: generatedAt(ctx.Metadata),
	}
}

func sortedHeader(header map[string]string) []headerField {
	fields := make([]headerField, 0, len(header))
	for name, value := range header {
		fields = append(fields, headerField{Name: name, Value: value})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

func footerFor(meta domain.BuildMetadata) string {
	if meta.Version != "" {
		return constants.ToolName + " " + meta.Version
	}
	return version.Footer()
}

func generatedAt(meta domain.BuildMetadata) string {
	if meta.GeneratedAt.IsZero() {
		return time.Now().Format("2006-01-02 15:04:05")
	}
	return meta.GeneratedAt.Format("2006-01-02 15:04:05")
}

// renderPage executes a template into outputDir/fileName
func renderPage(outputDir, fileName, templateName string, data any) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return domain.NewGenerationError(fileName, err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, fileName), buf.Bytes(), 0o644); err != nil {
		return domain.NewGenerationError(fileName, err)
	}
	return nil
}

func featureRows(ctx domain.PageContext, links LinkBuilder) []featureRow {
	names := FeaturePageNames(ctx.Features, ctx.Metadata.Parallel)
	rows := make([]featureRow, 0, len(ctx.Report.Features))
	for _, fs := range ctx.Report.Features {
		rows = append(rows, featureRow{Stats: fs, Href: links.Page(names[fs.Feature])})
	}
	return rows
}

// featureGroups splits the overview rows by result file in parallel mode
func featureGroups(ctx domain.PageContext, links LinkBuilder) []featureGroup {
	rows := featureRows(ctx, links)
	if !ctx.Metadata.Parallel || len(ctx.Features) == 0 {
		return []featureGroup{{Rows: rows}}
	}

	byFeature := make(map[*domain.Feature]featureRow, len(rows))
	for _, row := range rows {
		byFeature[row.Stats.Feature] = row
	}

	sources, bySource := aggregate.GroupBySource(ctx.Features)
	groups := make([]featureGroup, 0, len(sources))
	for _, source := range sources {
		members := bySource[source]
		group := featureGroup{Source: members[0].SourceName}
		if group.Source == "" {
			group.Source = filepath.Base(source)
		}
		for _, f := range members {
			if row, ok := byFeature[f]; ok {
				group.Rows = append(group.Rows, row)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// FeatureOverviewPage renders the entry page listing every feature
type FeatureOverviewPage struct{}

// Name returns the generator name
func (FeatureOverviewPage) Name() string { return "feature overview" }

// Generate writes feature-overview.html
func (FeatureOverviewPage) Generate(ctx domain.PageContext) error {
	data := newPageData(ctx, "Feature Overview")
	data.Groups = featureGroups(ctx, data.Links)
	return renderPage(ctx.OutputDir, constants.FeatureOverviewPage, "feature_overview.html.tmpl", data)
}

// FeatureReportPage renders one page per feature
type FeatureReportPage struct{}

// Name returns the generator name
func (FeatureReportPage) Name() string { return "feature reports" }

// Generate writes one feature page per feature
func (FeatureReportPage) Generate(ctx domain.PageContext) error {
	names := FeaturePageNames(ctx.Features, ctx.Metadata.Parallel)
	for _, fs := range ctx.Report.Features {
		view := &featureView{Stats: fs, Feature: fs.Feature}
		for i := range fs.Feature.Scenarios {
			sc := &fs.Feature.Scenarios[i]
			view.Scenarios = append(view.Scenarios, scenarioView{Scenario: sc, Status: sc.Status()})
		}

		data := newPageData(ctx, "Feature: "+fs.Name)
		data.Feature = view
		if err := renderPage(ctx.OutputDir, names[fs.Feature], "feature_report.html.tmpl", data); err != nil {
			return err
		}
	}
	return nil
}

// TagReportPage renders one page per tag
type TagReportPage struct{}

// Name returns the generator name
func (TagReportPage) Name() string { return "tag reports" }

// Generate writes one tag page per tag
func (TagReportPage) Generate(ctx domain.PageContext) error {
	names := FeaturePageNames(ctx.Features, ctx.Metadata.Parallel)
	tagPages := TagPageNames(ctx.Report.Tags)
	links := NewLinkBuilder(ctx.Metadata)

	for _, ts := range ctx.Report.Tags {
		view := &tagView{Stats: ts}
		for _, ref := range ts.Refs {
			item := tagItem{
				Feature: ref.Feature.Name,
				Href:    links.Page(names[ref.Feature]),
			}
			if ref.Scenario != nil {
				item.Scenario = ref.Scenario.Name
				item.Steps = len(ref.Scenario.Steps)
				item.Status = ref.Scenario.Status()
			} else {
				for i := range ref.Feature.Scenarios {
					item.Steps += len(ref.Feature.Scenarios[i].Steps)
				}
				item.Status = ref.Feature.Status()
			}
			view.Items = append(view.Items, item)
		}

		data := newPageData(ctx, "Tag: "+ts.Name)
		data.Tag = view
		if err := renderPage(ctx.OutputDir, tagPages[ts.Name], "tag_report.html.tmpl", data); err != nil {
			return err
		}
	}
	return nil
}

// TagOverviewPage renders the tag summary page
type TagOverviewPage struct{}

// Name returns the generator name
func (TagOverviewPage) Name() string { return "tag overview" }

// Generate writes tag-overview.html
func (TagOverviewPage) Generate(ctx domain.PageContext) error {
	return renderPage(ctx.OutputDir, constants.TagOverviewPage, "tag_overview.html.tmpl", newPageData(ctx, "Tag Overview"))
}

// StepOverviewPage renders the step definition summary page
type StepOverviewPage struct{}

// Name returns the generator name
func (StepOverviewPage) Name() string { return "step overview" }

// Generate writes step-overview.html
func (StepOverviewPage) Generate(ctx domain.PageContext) error {
	return renderPage(ctx.OutputDir, constants.StepOverviewPage, "step_overview.html.tmpl", newPageData(ctx, "Step Overview"))
}

// DefaultGenerators returns the page generators in the order they run
func DefaultGenerators() []domain.PageGenerator {
	return []domain.PageGenerator{
		FeatureOverviewPage{},
		FeatureReportPage{},
		TagReportPage{},
		TagOverviewPage{},
		StepOverviewPage{},
	}
}
