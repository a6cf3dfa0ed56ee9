package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/service"
)

// GenerateRequest describes one report build started from the command line
type GenerateRequest struct {
	Paths         []string
	Config        *config.Config
	SummaryFormat domain.OutputFormat
	SummaryWriter io.Writer
}

// GenerateResult holds the outcome of a report build
type GenerateResult struct {
	Passed    bool
	OutputDir string
	Report    *domain.Report
	Metadata  domain.BuildMetadata
}

// GenerateUseCase collects result files, builds the report, prints a
// summary and exports metrics
type GenerateUseCase struct {
	fileHelper *FileHelper
	formatter  domain.SummaryFormatter
	options    []Option
}

// NewGenerateUseCase creates a generate use case; opts are passed to every
// ReportBuilder it creates
func NewGenerateUseCase(formatter domain.SummaryFormatter, opts ...Option) *GenerateUseCase {
	if formatter == nil {
		formatter = service.NewSummaryFormatter()
	}
	return &GenerateUseCase{
		fileHelper: NewFileHelper(),
		formatter:  formatter,
		options:    opts,
	}
}

// Execute runs the build. Source collection errors are returned before any
// output is written; build failures leave the error page behind and are
// returned with a result describing the failed run.
func (uc *GenerateUseCase) Execute(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no result files specified", nil)
	}
	cfg := req.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	files, err := ResolveFilePaths(uc.fileHelper, req.Paths, cfg.Sources.Recursive, cfg.Sources.Include, cfg.Sources.Exclude)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect result files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no result files found in the specified paths", nil)
	}

	builder := NewReportBuilder(BuildConfigFromConfig(cfg, files), uc.options...)
	buildErr := builder.Generate()

	result := &GenerateResult{
		Passed:    builder.BuildStatus(),
		OutputDir: cfg.Report.OutputDir,
		Report:    builder.Report(),
		Metadata:  builder.Metadata(),
	}

	if cfg.Output.MetricsFile != "" {
		if err := service.NewMetricsExporter(cfg.Output.MetricsFile).Export(result.Report, result.Metadata); err != nil {
			logger.WithError(err).Warn("Failed to export metrics")
		}
	}

	if buildErr != nil {
		return result, buildErr
	}

	if req.SummaryWriter != nil {
		format := req.SummaryFormat
		if format == "" {
			format = domain.OutputFormat(cfg.Output.Format)
		}
		if err := uc.formatter.Write(result.Report, result.Metadata, format, req.SummaryWriter); err != nil {
			return result, err
		}
	}

	return result, nil
}
