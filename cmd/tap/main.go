// Package main is the entry point for the tap CLI.
//
// This binary runs previously authored test plans. It delegates all
// functionality to the internal/cli package, which defines the cobra
// commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/brandon-tan-keysight/opentap/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
// They provide binary identification for the --version flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package. This decouples
	// the build system (ldflags) from the CLI framework (cobra).
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Ctrl-C and SIGTERM cancel the run's context. Cancellation is
	// cooperative: the engine forwards it to running steps and reports
	// the run as aborted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand()
	cli.Execute(ctx, rootCmd)
}
