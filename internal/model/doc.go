// Package model defines the domain types and value objects for the tap CLI.
//
// This package contains pure data structures with no external dependencies.
// It owns the verdict severity scale (Verdict), the process exit code
// contract (ExitCode), and the mapping between them, which scripting
// integrations depend on being bit-exact.
//
// The package also defines a custom error type (CLIError) that carries an
// exit code for proper OS process exit handling. A CLIError with an empty
// message is a pure exit signal: the CLI exits with the code without
// printing a diagnostic of its own.
package model
