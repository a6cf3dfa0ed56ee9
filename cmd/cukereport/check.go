package main

import (
	"fmt"

	"github.com/ludo-technologies/cukereport/app"
	"github.com/ludo-technologies/cukereport/domain"
	"github.com/ludo-technologies/cukereport/internal/aggregate"
	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/ludo-technologies/cukereport/internal/parser"
	"github.com/ludo-technologies/cukereport/service"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check Cucumber results without writing a report",
		Long: `Parse Cucumber JSON results, print a summary and exit with the build verdict.
No HTML is written, which makes check a fast gate for CI pipelines.

Exit codes:
  0 - The build passed
  1 - The build failed
  2 - Usage or parse error (file not found, invalid JSON, etc.)

Examples:
  cukereport check results/
  cukereport check --strictness strict results/
  cukereport check --format json results/run.json`,
		RunE:         runCheck,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	addClassificationFlags(cmd)
	cmd.Flags().String("strictness", "",
		fmt.Sprintf("Classification preset: %s, %s, %s", constants.PresetLenient, constants.PresetStandard, constants.PresetStrict))
	cmd.Flags().StringP("format", "f", constants.OutputFormatText, "Summary format: text, json, yaml")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError("no result files specified")
	}

	cfg, err := loadMergedConfig(cmd, args[0])
	if err != nil {
		return err
	}

	if strictness, _ := cmd.Flags().GetString("strictness"); strictness != "" {
		preset, ok := config.GetStrictnessPresets()[config.Strictness(strictness)]
		if !ok {
			return usageError("unknown strictness: %s", strictness)
		}
		cfg.Classification = preset.Classification
	}

	format := domain.OutputFormat(cfg.Output.Format)
	if !isSummaryFormat(format) {
		return usageError("unsupported format: %s", cfg.Output.Format)
	}

	files, err := app.ResolveFilePaths(app.NewFileHelper(), args,
		cfg.Sources.Recursive, cfg.Sources.Include, cfg.Sources.Exclude)
	if err != nil {
		return usageError("failed to collect result files: %v", err)
	}
	if len(files) == 0 {
		return usageError("no result files found")
	}

	features, err := parser.NewParser().ParseFiles(files)
	if err != nil {
		return usageError("%v", err)
	}

	report := aggregate.Build(features, cfg.Classification.Flags())
	meta := service.MetadataFromConfig(cfg)

	formatter := &service.SummaryFormatterImpl{Colors: service.IsInteractiveEnvironment()}
	if err := formatter.Write(report, meta, format, cmd.OutOrStdout()); err != nil {
		return usageError("%v", err)
	}

	if !report.Passed() {
		return &ExitError{Code: constants.ExitFailed}
	}
	return nil
}
