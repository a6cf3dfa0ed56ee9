package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ludo-technologies/cukereport/app"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/ludo-technologies/cukereport/service"
	"github.com/spf13/cobra"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Generate several independent reports from a manifest",
		Long: `Generate several independent reports concurrently. The manifest is a YAML
file listing jobs; each job has its own sources, output directory and build
number, and inherits everything else from the configuration file.

  jobs:
    - name: web
      sources: [results/web]
      build_number: "42"
    - name: api
      sources: [results/api.json]
      output_dir: site/api

Exit codes:
  0 - Every job produced a passing report
  1 - At least one job failed or produced a failing report
  2 - Usage error (missing or invalid manifest)`,
		Args:         cobra.ExactArgs(1),
		RunE:         runBatch,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().IntP("jobs", "j", service.DefaultMaxConcurrency, "Maximum number of reports built at once")
	cmd.Flags().Duration("timeout", service.DefaultTimeout, "Timeout for the whole batch")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]

	manifest, err := app.LoadBatchManifest(manifestPath)
	if err != nil {
		return usageError("%v", err)
	}

	cfg, err := loadMergedConfig(cmd, filepath.Dir(manifestPath))
	if err != nil {
		return err
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	pm := service.NewProgressManager(true)
	defer pm.Close()

	executor := service.NewBatchExecutorWithOptions(jobs, timeout, pm)
	start := time.Now()
	results, runErr := app.NewBatchUseCase(cfg, executor).Execute(cmd.Context(), manifest)
	pm.Close()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetTitle("Batch Reports")
	t.AppendHeader(table.Row{"Job", "Result", "Output"})
	failed := 0
	for _, r := range results {
		status := "PASS"
		switch {
		case r.Err != nil:
			status = "ERROR"
			failed++
		case !r.Passed:
			status = "FAIL"
			failed++
		}
		t.AppendRow(table.Row{r.Name, status, r.OutputDir})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d jobs", len(results)), fmt.Sprintf("%d failed", failed), time.Since(start).Round(time.Millisecond)})
	t.SetStyle(table.StyleLight)
	t.Render()

	if runErr != nil {
		return &ExitError{Code: constants.ExitFailed, Message: runErr.Error()}
	}
	if failed > 0 {
		return &ExitError{Code: constants.ExitFailed}
	}
	return nil
}
