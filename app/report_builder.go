package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/aggregate"
	"github.com/ludo-technologies/cukereport/internal/assets"
	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/internal/parser"
	"github.com/ludo-technologies/cukereport/internal/version"
	"github.com/ludo-technologies/cukereport/service"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "app")

// BuildConfig holds the parameters of one report build
type BuildConfig struct {
	Sources      []string
	OutputDir    string
	URLPrefix    string
	BuildNumber  string
	BuildProject string
	Flags        domain.FailureFlags
	FlashCharts  bool
	HighCharts   bool
	HostEnabled  bool
	Parallel     bool
	CustomHeader map[string]string
}

// BuildConfigFromConfig derives a build configuration from a loaded config file
func BuildConfigFromConfig(cfg *config.Config, sources []string) BuildConfig {
	return BuildConfig{
		Sources:      sources,
		OutputDir:    cfg.Report.OutputDir,
		URLPrefix:    cfg.Report.URLPrefix,
		BuildNumber:  cfg.Report.BuildNumber,
		BuildProject: cfg.Report.BuildProject,
		Flags:        cfg.Classification.Flags(),
		FlashCharts:  cfg.Charts.Flash,
		HighCharts:   cfg.Charts.HighCharts,
		HostEnabled:  cfg.Host.Enabled,
		Parallel:     cfg.Report.Parallel,
		CustomHeader: cfg.Report.HeaderMap(),
	}
}

// Validate checks the build configuration
func (c BuildConfig) Validate() error {
	if c.OutputDir == "" {
		return domain.NewConfigError("output directory must not be empty", nil)
	}
	if c.HostEnabled && c.BuildProject == "" {
		return domain.NewConfigError("host integration requires a build project", nil)
	}
	for _, source := range c.Sources {
		if source == "" {
			return domain.NewConfigError("source path must not be empty", nil)
		}
	}
	return nil
}

// Option customizes a ReportBuilder
type Option func(*ReportBuilder)

// WithParser replaces the result parser
func WithParser(p domain.ResultParser) Option {
	return func(b *ReportBuilder) { b.parser = p }
}

// WithStager replaces the asset stager
func WithStager(s domain.AssetStager) Option {
	return func(b *ReportBuilder) { b.stager = s }
}

// WithGenerators replaces the page generators. They run in the given order.
func WithGenerators(generators ...domain.PageGenerator) Option {
	return func(b *ReportBuilder) { b.generators = generators }
}

// WithErrorPage replaces the error page writer
func WithErrorPage(w domain.ErrorPageWriter) Option {
	return func(b *ReportBuilder) { b.errorPage = w }
}

// WithProgress reports parsing and page generation progress to pm
func WithProgress(pm domain.ProgressManager) Option {
	return func(b *ReportBuilder) { b.progress = pm }
}

// WithClock sets the time source used for the generation timestamp
func WithClock(now func() time.Time) Option {
	return func(b *ReportBuilder) { b.now = now }
}

// WithRunID sets the run identifier instead of a random one
func WithRunID(id string) Option {
	return func(b *ReportBuilder) { b.runID = id }
}

// WithLogger sets the diagnostic logger
func WithLogger(l *log.Entry) Option {
	return func(b *ReportBuilder) { b.logger = l }
}

// ReportBuilder turns Cucumber JSON result files into an HTML report.
// Every failure of a build, including a panic, ends up on the error page.
type ReportBuilder struct {
	config    BuildConfig
	configErr error
	meta      domain.BuildMetadata

	parser     domain.ResultParser
	stager     domain.AssetStager
	generators []domain.PageGenerator
	errorPage  domain.ErrorPageWriter
	progress   domain.ProgressManager
	now        func() time.Time
	runID      string
	logger     *log.Entry

	report    *domain.Report
	completed bool
	err       error
}

// NewReportBuilder creates a builder for cfg. An invalid configuration is
// recorded and reported by Generate through the error page.
func NewReportBuilder(cfg BuildConfig, opts ...Option) *ReportBuilder {
	b := &ReportBuilder{
		config:     cfg,
		parser:     parser.NewParser(),
		stager:     assets.NewStager(),
		generators: service.DefaultGenerators(),
		errorPage:  service.NewErrorPage(),
		progress:   service.QuietProgress{},
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.configErr = cfg.Validate()
	if b.config.URLPrefix == "" {
		b.config.URLPrefix = domain.DefaultURLPrefix
	}
	if b.runID == "" {
		b.runID = uuid.NewString()
	}
	b.config.Sources = append([]string(nil), cfg.Sources...)
	b.logger = b.logger.WithField("run_id", b.runID)

	b.meta = domain.BuildMetadata{
		RunID:        b.runID,
		BuildNumber:  b.config.BuildNumber,
		BuildProject: b.config.BuildProject,
		URLPrefix:    b.config.URLPrefix,
		Flags:        b.config.Flags,
		FlashCharts:  b.config.FlashCharts,
		HighCharts:   b.config.HighCharts,
		HostEnabled:  b.config.HostEnabled,
		Parallel:     b.config.Parallel,
		CustomHeader: copyHeader(b.config.CustomHeader),
		GeneratedAt:  b.now(),
		Version:      version.GetVersion(),
	}
	return b
}

// Metadata returns the run-level metadata shared by every page
func (b *ReportBuilder) Metadata() domain.BuildMetadata {
	return b.meta
}

// Generate builds the report. On failure the output directory holds only
// the error page and the failure is returned. Generate never panics.
func (b *ReportBuilder) Generate() error {
	b.report = nil
	b.completed = false
	b.err = nil

	b.logger.WithFields(log.Fields{
		"sources": len(b.config.Sources),
		"output":  b.config.OutputDir,
	}).Debug("Starting report generation")

	if err := guard(b.generate); err != nil {
		b.fail(err)
		return err
	}

	b.completed = true
	b.logger.WithField("verdict", b.report.Verdict).Info("Report generated")
	return nil
}

// BuildStatus reports whether the last run completed with a passing verdict
func (b *ReportBuilder) BuildStatus() bool {
	return b.completed && b.report != nil && b.report.Passed()
}

// Report returns the aggregated report of the last run, or nil when it failed
func (b *ReportBuilder) Report() *domain.Report {
	return b.report
}

// Err returns the failure of the last run
func (b *ReportBuilder) Err() error {
	return b.err
}

func (b *ReportBuilder) generate() error {
	if b.configErr != nil {
		return b.configErr
	}

	features, err := b.parse()
	if err != nil {
		return err
	}

	report := aggregate.Build(features, b.config.Flags)

	for _, f := range features {
		f.SourceName = filepath.Base(f.Source)
	}

	if err := b.stager.Stage(b.config.OutputDir, assets.DefaultBundles(b.config.FlashCharts)...); err != nil {
		if domain.ErrorCode(err) == domain.ErrCodeUnclassified {
			err = domain.NewStagingError("assets", err)
		}
		return err
	}

	ctx := domain.PageContext{
		Report:    report,
		Features:  features,
		Metadata:  b.meta,
		OutputDir: b.config.OutputDir,
	}
	if err := b.render(ctx); err != nil {
		return err
	}

	b.report = report
	return nil
}

func (b *ReportBuilder) parse() ([]*domain.Feature, error) {
	task := b.progress.StartTask("Parsing result files", len(b.config.Sources))
	defer task.Complete()

	var features []*domain.Feature
	for _, source := range b.config.Sources {
		parsed, err := b.parser.ParseFiles([]string{source})
		if err != nil {
			if domain.ErrorCode(err) == domain.ErrCodeUnclassified {
				err = domain.NewParseError(source, err)
			}
			return nil, err
		}
		features = append(features, parsed...)
		task.Increment(1)
	}

	b.logger.WithField("features", len(features)).Debug("Parsed result files")
	return features, nil
}

func (b *ReportBuilder) render(ctx domain.PageContext) error {
	task := b.progress.StartTask("Generating pages", len(b.generators))
	defer task.Complete()

	for _, g := range b.generators {
		task.Describe(fmt.Sprintf("Generating %s", g.Name()))
		if err := g.Generate(ctx); err != nil {
			if domain.ErrorCode(err) == domain.ErrCodeUnclassified {
				err = domain.NewGenerationError(g.Name(), err)
			}
			return err
		}
		task.Increment(1)
	}
	return nil
}

func (b *ReportBuilder) fail(err error) {
	b.err = err
	b.report = nil

	entry := b.logger.WithFields(log.Fields{
		"code":   domain.ErrorCode(err),
		"causes": domain.CauseChain(err),
	})
	var panicErr *domain.PanicError
	if errors.As(err, &panicErr) {
		entry = entry.WithField("stack", panicErr.StackTrace())
	}
	entry.Error("Report generation failed")

	if b.config.OutputDir == "" {
		b.logger.Warn("No output directory, error page not written")
		return
	}

	werr := guard(func() error {
		return b.errorPage.WriteErrorPage(b.config.OutputDir, b.meta, err)
	})
	if werr != nil {
		b.logger.WithError(werr).Error("Failed to write error page")
	}
}

// guard runs fn and converts a panic into an unclassified error
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewUnclassifiedError("unexpected failure during report generation",
				&domain.PanicError{Value: r, Stack: debug.Stack()})
		}
	}()
	return fn()
}

func copyHeader(header map[string]string) map[string]string {
	if len(header) == 0 {
		return nil
	}
	out := make(map[string]string, len(header))
	for k, v := range header {
		out[k] = v
	}
	return out
}
