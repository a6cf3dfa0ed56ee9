package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/service"
	"gopkg.in/yaml.v3"
)

// BatchManifest lists independent report builds
type BatchManifest struct {
	Jobs []BatchJob `yaml:"jobs"`
}

// BatchJob is one report build of a batch. Empty fields inherit the base
// configuration.
type BatchJob struct {
	Name         string   `yaml:"name"`
	Sources      []string `yaml:"sources"`
	OutputDir    string   `yaml:"output_dir"`
	URLPrefix    string   `yaml:"url_prefix"`
	BuildNumber  string   `yaml:"build_number"`
	BuildProject string   `yaml:"build_project"`
	Parallel     *bool    `yaml:"parallel"`
	Enabled      *bool    `yaml:"enabled"`
}

// IsEnabled reports whether the job should run; jobs are enabled by default
func (j BatchJob) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// LoadBatchManifest reads a manifest file. Relative source and output paths
// are resolved against the manifest's directory.
func LoadBatchManifest(path string) (*BatchManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	manifest, err := ParseBatchManifest(content)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range manifest.Jobs {
		job := &manifest.Jobs[i]
		for k, source := range job.Sources {
			job.Sources[k] = resolvePath(base, source)
		}
		if job.OutputDir != "" {
			job.OutputDir = resolvePath(base, job.OutputDir)
		}
	}
	return manifest, nil
}

// ParseBatchManifest decodes and validates manifest content
func ParseBatchManifest(content []byte) (*BatchManifest, error) {
	var manifest BatchManifest
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil {
		return nil, domain.NewConfigError("invalid batch manifest", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks that every job is named uniquely and has sources
func (m *BatchManifest) Validate() error {
	if len(m.Jobs) == 0 {
		return domain.NewConfigError("batch manifest has no jobs", nil)
	}

	seen := make(map[string]bool, len(m.Jobs))
	for i, job := range m.Jobs {
		if job.Name == "" {
			return domain.NewConfigError(fmt.Sprintf("job %d has no name", i+1), nil)
		}
		if seen[job.Name] {
			return domain.NewConfigError(fmt.Sprintf("duplicate job name: %s", job.Name), nil)
		}
		seen[job.Name] = true
		if len(job.Sources) == 0 {
			return domain.NewConfigError(fmt.Sprintf("job %s has no sources", job.Name), nil)
		}
	}
	return nil
}

// BatchJobResult is the outcome of one batch job
type BatchJobResult struct {
	Name      string
	OutputDir string
	Passed    bool
	Report    *domain.Report
	Err       error
}

// BatchUseCase runs the jobs of a manifest concurrently, each with its own
// ReportBuilder
type BatchUseCase struct {
	base       *config.Config
	executor   *service.BatchExecutor
	fileHelper *FileHelper
	options    []Option
}

// NewBatchUseCase creates a batch use case. Jobs inherit base.
func NewBatchUseCase(base *config.Config, executor *service.BatchExecutor, opts ...Option) *BatchUseCase {
	if base == nil {
		base = config.DefaultConfig()
	}
	if executor == nil {
		executor = service.NewBatchExecutor()
	}
	return &BatchUseCase{
		base:       base,
		executor:   executor,
		fileHelper: NewFileHelper(),
		options:    opts,
	}
}

// Execute runs every enabled job. The results follow manifest order; failed
// runs are reported both in their result and in the returned error.
func (uc *BatchUseCase) Execute(ctx context.Context, manifest *BatchManifest) ([]BatchJobResult, error) {
	if manifest == nil {
		return nil, domain.NewInvalidInputError("batch manifest is required", nil)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	tasks := make([]domain.ExecutableTask, 0, len(manifest.Jobs))
	for _, job := range manifest.Jobs {
		tasks = append(tasks, &reportTask{job: job, uc: uc})
	}

	taskResults, err := uc.executor.Execute(ctx, tasks)

	results := make([]BatchJobResult, 0, len(taskResults))
	for _, tr := range taskResults {
		result := BatchJobResult{Name: tr.TaskName, Err: tr.Err}
		if value, ok := tr.Value.(*BatchJobResult); ok && value != nil {
			result = *value
			result.Err = tr.Err
		}
		results = append(results, result)
	}
	return results, err
}

func (uc *BatchUseCase) buildConfig(job BatchJob) (BuildConfig, error) {
	sources, err := ResolveFilePaths(uc.fileHelper, job.Sources, uc.base.Sources.Recursive,
		uc.base.Sources.Include, uc.base.Sources.Exclude)
	if err != nil {
		return BuildConfig{}, domain.NewFileNotFoundError(fmt.Sprintf("sources of job %s", job.Name), err)
	}

	cfg := BuildConfigFromConfig(uc.base, sources)
	if job.OutputDir != "" {
		cfg.OutputDir = job.OutputDir
	} else {
		cfg.OutputDir = filepath.Join(uc.base.Report.OutputDir, job.Name)
	}
	if job.URLPrefix != "" {
		cfg.URLPrefix = job.URLPrefix
	}
	if job.BuildNumber != "" {
		cfg.BuildNumber = job.BuildNumber
	}
	if job.BuildProject != "" {
		cfg.BuildProject = job.BuildProject
	}
	if job.Parallel != nil {
		cfg.Parallel = *job.Parallel
	}
	return cfg, nil
}

// reportTask adapts a batch job to the batch executor
type reportTask struct {
	job BatchJob
	uc  *BatchUseCase
}

func (t *reportTask) Name() string { return t.job.Name }

func (t *reportTask) IsEnabled() bool { return t.job.IsEnabled() }

func (t *reportTask) Execute(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := t.uc.buildConfig(t.job)
	if err != nil {
		return nil, err
	}

	builder := NewReportBuilder(cfg, t.uc.options...)
	err = builder.Generate()
	return &BatchJobResult{
		Name:      t.job.Name,
		OutputDir: cfg.OutputDir,
		Passed:    builder.BuildStatus(),
		Report:    builder.Report(),
	}, err
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
