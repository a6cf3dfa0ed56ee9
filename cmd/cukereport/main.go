package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/cukereport/internal/constants"
	"github.com/ludo-technologies/cukereport/internal/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

// ExitError carries the process exit code of a command
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	rootCmd := newRootCmd()
	os.Exit(exitCode(rootCmd.Execute(), os.Stderr))
}

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "cukereport",
		Short: "cukereport - HTML reports from Cucumber JSON results",
		Long: `cukereport turns Cucumber JSON result files into a browsable HTML report
with feature, tag and step definition overviews, and tells CI whether the
build passed.`,
		Version:       Version,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(debug, cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func configureLogging(debug bool, w io.Writer) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: !debug})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

// exitCode maps a command error to a process exit code
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return constants.ExitPassed
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintf(stderr, "Error: %s\n", exitErr.Message)
		}
		return exitErr.Code
	}

	// cobra reports unknown commands and bad flags as plain errors
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return constants.ExitUsageError
}

func usageError(format string, args ...interface{}) *ExitError {
	return &ExitError{Code: constants.ExitUsageError, Message: fmt.Sprintf(format, args...)}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "cukereport version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
