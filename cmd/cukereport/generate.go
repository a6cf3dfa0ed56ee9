package main

import (
	"fmt"
	"path/filepath"

	"github.com/ludo-technologies/cukereport/app"
	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/ludo-technologies/cukereport/service"
	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [path...]",
		Short: "Generate an HTML report from Cucumber JSON results",
		Long: `Generate an HTML report from Cucumber JSON result files.

Paths may be result files or directories; directories are searched for
files matching sources.include in the configuration (default *.json).

Exit codes:
  0 - Report generated and the build passed
  1 - Report generated and the build failed, or the report could not be built
  2 - Usage error (no sources, bad flags, unreadable config)

Examples:
  cukereport generate target/cucumber.json
  cukereport generate -o site/report --build-number 42 results/
  cukereport generate --undefined-fails --missing-fails results/
  cukereport generate --host-integration --build-project shop --url-prefix https://ci.example.com/ results/`,
		RunE:         runGenerate,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Output directory for the report")
	cmd.Flags().String("url-prefix", config.DefaultURLPrefix, "Prefix of links between report pages")
	cmd.Flags().String("build-number", "", "Build number shown in the report")
	cmd.Flags().String("build-project", "", "Project name shown in the report")
	addClassificationFlags(cmd)
	cmd.Flags().Bool("flash-charts", false, "Also stage the flash chart bundle")
	cmd.Flags().Bool("high-charts", false, "Render bar charts instead of pie charts")
	cmd.Flags().Bool("host-integration", false, "Link pages through the CI server job path")
	cmd.Flags().Bool("parallel", false, "Name feature pages after their source file")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringP("format", "f", constants.OutputFormatText, "Summary format: text, json, yaml")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print a summary")

	return cmd
}

func addClassificationFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("skipped-fails", false, "Skipped steps fail the build")
	cmd.Flags().Bool("pending-fails", false, "Pending steps fail the build")
	cmd.Flags().Bool("undefined-fails", false, "Undefined steps fail the build")
	cmd.Flags().Bool("missing-fails", false, "Steps without a result fail the build")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError("no result files specified")
	}

	cfg, err := loadMergedConfig(cmd, args[0])
	if err != nil {
		return err
	}

	format := domain.OutputFormat(cfg.Output.Format)
	if !isSummaryFormat(format) {
		return usageError("unsupported format: %s", cfg.Output.Format)
	}
	quiet, _ := cmd.Flags().GetBool("quiet")

	pm := service.NewProgressManager(format == domain.OutputFormatText && !quiet)
	defer pm.Close()

	req := app.GenerateRequest{
		Paths:         args,
		Config:        cfg,
		SummaryFormat: format,
	}
	if !quiet {
		req.SummaryWriter = cmd.OutOrStdout()
	}

	formatter := &service.SummaryFormatterImpl{Colors: service.IsInteractiveEnvironment()}
	result, err := app.NewGenerateUseCase(formatter, app.WithProgress(pm)).Execute(cmd.Context(), req)
	if err != nil {
		if result == nil {
			return usageError("%v", err)
		}
		return &ExitError{
			Code: constants.ExitFailed,
			Message: fmt.Sprintf("report generation failed, see %s: %v",
				filepath.Join(result.OutputDir, constants.FeatureOverviewPage), err),
		}
	}

	if !result.Passed {
		return &ExitError{Code: constants.ExitFailed}
	}
	return nil
}

// loadMergedConfig loads the config file and applies every flag given on
// the command line
func loadMergedConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	loader := service.NewConfigurationLoader()
	cfg, err := loader.LoadConfig(configPath, target)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return loader.MergeConfig(cfg, overridesFromFlags(cmd)), nil
}

func overridesFromFlags(cmd *cobra.Command) service.ConfigOverrides {
	return service.ConfigOverrides{
		OutputDir:      changedString(cmd, "output"),
		URLPrefix:      changedString(cmd, "url-prefix"),
		BuildNumber:    changedString(cmd, "build-number"),
		BuildProject:   changedString(cmd, "build-project"),
		SkippedFails:   changedBool(cmd, "skipped-fails"),
		PendingFails:   changedBool(cmd, "pending-fails"),
		UndefinedFails: changedBool(cmd, "undefined-fails"),
		MissingFails:   changedBool(cmd, "missing-fails"),
		FlashCharts:    changedBool(cmd, "flash-charts"),
		HighCharts:     changedBool(cmd, "high-charts"),
		HostEnabled:    changedBool(cmd, "host-integration"),
		Parallel:       changedBool(cmd, "parallel"),
		Format:         changedString(cmd, "format"),
		MetricsFile:    changedString(cmd, "metrics-file"),
	}
}

func changedString(cmd *cobra.Command, name string) *string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	v := flag.Value.String()
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil
	}
	return &v
}

func isSummaryFormat(format domain.OutputFormat) bool {
	switch format {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML:
		return true
	}
	return false
}
