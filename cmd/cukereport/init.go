package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cukereport/internal/config"
	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a cukereport configuration file",
		Long: `Generate a documented cukereport configuration file with sensible defaults.

By default, creates cukereport.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create cukereport.yaml in current directory
  cukereport init

  # Custom output path
  cukereport init --config ci/cukereport.yaml

  # Fail the build on any step that did not pass
  cukereport init --strictness strict

  # Overwrite existing file
  cukereport init --force

  # Generate smaller config with essential options only
  cukereport init --minimal

  # Interactive setup wizard
  cukereport init --interactive
  cukereport init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().String("strictness", string(config.StrictnessStandard),
		"Classification preset: lenient, standard, strict")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	strictness, _ := cmd.Flags().GetString("strictness")
	interactive, _ := cmd.Flags().GetBool("interactive")

	opts := config.DefaultTemplateOptions()
	opts.Strictness = config.Strictness(strictness)
	if _, ok := config.GetStrictnessPresets()[opts.Strictness]; !ok {
		return fmt.Errorf("unknown strictness: %s", strictness)
	}

	if interactive {
		var err error
		opts, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(opts)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", displayPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'cukereport generate <results>' to build your first report.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.TemplateOptions, string, error) {
	opts := config.DefaultTemplateOptions()

	fmt.Println()
	fmt.Println("cukereport Configuration Setup")
	fmt.Println("==============================")
	fmt.Println()

	presets := config.GetStrictnessPresets()
	type strictnessItem struct {
		Label       string
		Description string
		Value       config.Strictness
	}
	items := make([]strictnessItem, 0, len(config.AllStrictness))
	for _, s := range config.AllStrictness {
		label := string(s)
		if s == config.StrictnessStandard {
			label += " (recommended)"
		}
		items = append(items, strictnessItem{Label: label, Description: presets[s].Description, Value: s})
	}

	strictnessPrompt := promptui.Select{
		Label: "Which steps should fail the build?",
		Items: items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
		CursorPos: 1,
	}
	idx, _, err := strictnessPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	opts.Strictness = items[idx].Value

	fmt.Println()

	outputDir, err := (&promptui.Prompt{Label: "Report output directory", Default: opts.OutputDir}).Run()
	if err != nil {
		return opts, "", fmt.Errorf("output directory input cancelled: %w", err)
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}

	project, err := (&promptui.Prompt{Label: "Build project name (optional)"}).Run()
	if err != nil {
		return opts, "", fmt.Errorf("project input cancelled: %w", err)
	}
	opts.BuildProject = project

	if project != "" {
		_, err := (&promptui.Prompt{Label: "Link pages through the CI server job path", IsConfirm: true}).Run()
		opts.HostEnabled = err == nil
	}

	_, err = (&promptui.Prompt{Label: "Stage the flash chart bundle", IsConfirm: true}).Run()
	opts.FlashCharts = err == nil

	configPath, err := (&promptui.Prompt{Label: "Config file path", Default: defaultConfigPath}).Run()
	if err != nil {
		return opts, "", fmt.Errorf("config path input cancelled: %w", err)
	}
	if configPath == "" {
		configPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", configPath)

	return opts, configPath, nil
}
