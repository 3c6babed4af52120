package model

import (
	"fmt"
	"time"
)

// ExitCode defines the CLI exit code contract. These codes allow scripts
// and CI systems to programmatically determine the outcome of a run and
// must match exactly: they are part of the external interface, not an
// implementation detail.
type ExitCode int

const (
	// ExitOK indicates the run completed with a passing verdict, or a
	// non-executing mode (such as parameter listing) succeeded.
	ExitOK ExitCode = 0

	// ExitInconclusive indicates the run completed with an inconclusive verdict.
	ExitInconclusive ExitCode = 20

	// ExitFail indicates the run completed with a failing verdict.
	ExitFail ExitCode = 30

	// ExitRuntimeError indicates the execution itself broke down: an
	// aborted or errored run, or an unclassified internal failure.
	ExitRuntimeError ExitCode = 50

	// ExitArgumentError indicates malformed or invalid CLI input: a missing
	// plan file, an invalid search directory, an unknown strict external
	// parameter, or an unknown result listener name.
	ExitArgumentError ExitCode = 60

	// ExitLoadError indicates the test plan could not be deserialized.
	ExitLoadError ExitCode = 70

	// ExitPluginError indicates a plugin capability required by the plan
	// was not found in any search directory.
	ExitPluginError ExitCode = 80
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
//
// A CLIError with an empty Message is a silent exit signal: the code is
// returned to the OS but no diagnostic is printed. This is used for verdict
// exits (the verdict is an outcome, not an error) and for failures whose
// diagnostic has already been written, such as the result listener state
// dump printed before an unknown-listener abort.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description. May be empty, in
	// which case the error carries only the exit code.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ExitWithCode creates a silent CLIError carrying only an exit code.
func ExitWithCode(code ExitCode) *CLIError {
	return &CLIError{Code: code}
}

// MetadataRecord is a single key/value pair of run metadata, parsed from a
// repeatable --metadata flag. Metadata is attached to the run and forwarded
// to result listeners; it never influences execution.
type MetadataRecord struct {
	// Namespace qualifies the key. Always empty for records created at the
	// CLI layer; plugins may namespace the records they contribute.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Key is the metadata name, the part before the first "=".
	Key string `json:"key" yaml:"key"`

	// Value is the metadata value, the part after the first "=".
	Value string `json:"value" yaml:"value"`

	// Metadata distinguishes run metadata from other key/value properties
	// that may travel through the same result channels.
	Metadata bool `json:"metadata" yaml:"metadata"`
}

// StepResult is the outcome of a single executed plan step, as delivered
// to result listeners.
type StepResult struct {
	// StepName is the display name of the step.
	StepName string `json:"stepName" yaml:"stepName"`

	// Verdict is the step's outcome on the severity scale.
	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Duration is the wall-clock time the step took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Output is the step's combined stdout/stderr, possibly empty.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}
