// Package cli implements the cobra-based commands for the tap CLI.
//
// This file defines the root command and the exit-code handling shared by
// all subcommands. The run command itself lives in run.go.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// verbose enables detailed trace output for debugging. Bound to a
// persistent flag on the root command, so it is available to every
// subcommand automatically.
var verbose bool

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action; it provides help
// text, global flags, and the version string. Functionality lives in the
// run subcommand.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tap",
		Short: "Test plan runner",
		Long: `tap executes previously authored test plans.

A run resolves external parameters, selects which result listeners are
active, loads the plan, executes it, and reports the outcome through a
fixed set of exit codes suitable for scripting:

  0  pass   20 inconclusive   30 fail   50 runtime error
  60 argument error   70 load error   80 plugin error`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Execute formats errors and maps them to exit codes itself.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// Errors carrying an exit code (CLIError) exit with that code; a CLIError
// with no message and no underlying error is a pure exit signal and prints
// nothing (used for verdict exits, whose diagnostics already went through
// the result listeners). Any other error reaching this point came from
// cobra's own flag and argument parsing, which is invalid CLI input.
func Execute(ctx context.Context, rootCmd *cobra.Command) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			if cliErr.Message != "" || cliErr.Err != nil {
				printError(cliErr.Error())
			}
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error())
		os.Exit(int(model.ExitArgumentError))
	}
}

// printError writes a single diagnostic line to stderr. Every abort path
// produces exactly one such line before the process exits.
func printError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
// This is used throughout the CLI for trace output that helps users
// understand what operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
