// Package output provides the shared logger for the tap CLI.
//
// Recovered, non-fatal conditions (malformed metadata entries, per-file
// parameter import failures, lenient include-load failures, plugin manifest
// parse errors) are reported through this logger as warnings. Fatal
// conditions never go through here: they are returned as errors carrying
// an exit code and printed once by the CLI layer.
package output

import (
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger. It writes human-readable
// text to stderr so that stdout stays reserved for command output.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger overrides the default logger. Tests use this to capture or
// silence warning output.
func SetLogger(l *slog.Logger) {
	Logger = l
}
