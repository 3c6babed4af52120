package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// execRun runs "tap run" with the given arguments and returns the combined
// command output and the error cobra surfaced.
func execRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"run"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// exitCode extracts the CLIError exit code from an execRun error.
func exitCode(t *testing.T, err error) model.ExitCode {
	t.Helper()
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "expected a CLIError, got %v", err)
	return cliErr.Code
}

// requireTool skips the test when a helper binary is unavailable.
func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

// chdir switches the working directory for the test and restores it on
// cleanup (t.Chdir equivalent for toolchains before Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// writeFile drops content at dir/name and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const paramPlan = `name: nightly
parameters:
  - name: host
    value: localhost
  - name: browsers
    values: [chrome]
    available: [chrome, firefox, webkit]
steps:
  - name: ok
    command: ["true"]
`

// TestRun_PassingPlanExitsClean verifies the happy path: a passing plan
// returns no error at all.
func TestRun_PassingPlanExitsClean(t *testing.T) {
	requireTool(t, "true")
	planPath := writeFile(t, t.TempDir(), "plan.yaml", paramPlan)

	out, err := execRun(t, planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "verdict: pass")
}

// TestRun_FailVerdictExitsSilentlyWith30 verifies a failing run surfaces
// the fail exit code as a silent signal: the verdict already went through
// the listeners, it is an outcome rather than a diagnostic.
func TestRun_FailVerdictExitsSilentlyWith30(t *testing.T) {
	requireTool(t, "false")
	planPath := writeFile(t, t.TempDir(), "plan.yaml", `steps:
  - name: broken
    command: ["false"]
`)

	_, err := execRun(t, planPath)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitFail, cliErr.Code)
	assert.Empty(t, cliErr.Message)
}

// TestRun_EmptyPlanExitsWith20 verifies an inconclusive run maps to its
// dedicated exit code.
func TestRun_EmptyPlanExitsWith20(t *testing.T) {
	planPath := writeFile(t, t.TempDir(), "plan.yaml", "name: empty\nsteps: []\n")

	_, err := execRun(t, planPath)
	require.Error(t, err)
	assert.Equal(t, model.ExitInconclusive, exitCode(t, err))
}

// TestRun_UnknownStrictParameterAborts verifies a strict override naming
// no plan parameter is an argument error and the plan never executes.
func TestRun_UnknownStrictParameterAborts(t *testing.T) {
	requireTool(t, "touch")
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	planPath := writeFile(t, dir, "plan.yaml", `parameters:
  - name: host
    value: localhost
steps:
  - name: mark
    command: ["touch", "`+marker+`"]
`)

	_, err := execRun(t, planPath, "-e", "foo=1")
	require.Error(t, err)
	assert.Equal(t, model.ExitArgumentError, exitCode(t, err))
	assert.Contains(t, err.Error(), "foo")

	assert.NoFileExists(t, marker, "run must not execute after an argument error")
}

// TestRun_UnknownLenientParameterIsIgnored verifies the same unmatched
// name through the lenient channel is a silent no-op and the run executes.
func TestRun_UnknownLenientParameterIsIgnored(t *testing.T) {
	requireTool(t, "touch")
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	planPath := writeFile(t, dir, "plan.yaml", `parameters:
  - name: host
    value: localhost
steps:
  - name: mark
    command: ["touch", "`+marker+`"]
`)

	_, err := execRun(t, planPath, "-t", "foo=1")
	require.NoError(t, err)
	assert.FileExists(t, marker)
}

// TestRun_ListExternalParameters verifies listing-only mode prints the
// parameter surface (pipe-delimited sets for multi-valued parameters) and
// never executes the plan.
func TestRun_ListExternalParameters(t *testing.T) {
	requireTool(t, "true")
	planPath := writeFile(t, t.TempDir(), "plan.yaml", paramPlan)

	out, err := execRun(t, planPath, "--list-external-parameters",
		"-e", "browsers=firefox,webkit")
	require.NoError(t, err)

	assert.Contains(t, out, "Listing 2 external test plan parameter(s).")
	assert.Contains(t, out, "host = localhost")
	assert.Contains(t, out, "browsers = firefox|webkit (available: chrome|firefox|webkit)")
	assert.NotContains(t, out, "verdict", "listing mode must not execute the plan")
}

// TestRun_UnknownListenerFailsAfterStateDump verifies the selection
// failure contract end to end: full listener state printed, argument
// error exit, no duplicate diagnostic.
func TestRun_UnknownListenerFailsAfterStateDump(t *testing.T) {
	planPath := writeFile(t, t.TempDir(), "plan.yaml", paramPlan)

	out, err := execRun(t, planPath, "--results", "CSV,Bogus")
	require.Error(t, err)
	assert.Equal(t, model.ExitArgumentError, exitCode(t, err))

	assert.Contains(t, out, "Console")
	assert.Contains(t, out, "CSV")
	assert.Contains(t, out, "JSON")
	assert.Contains(t, out, "Bogus")
}

// TestRun_SearchPathFailureAbortsBeforeLenient verifies the exact
// ordering the compatibility shim requires: an invalid --search directory
// aborts with an argument error, and lenient loading is never applied,
// so a plan that would only load leniently still never gets that chance.
func TestRun_SearchPathFailureAbortsBeforeLenient(t *testing.T) {
	dir := t.TempDir()
	// This plan only loads in lenient mode (broken include).
	planPath := writeFile(t, dir, "plan.yaml", paramPlan+"includes: [missing.yaml]\n")

	_, err := execRun(t, planPath, "--search", filepath.Join(dir, "nope"))
	require.Error(t, err)
	assert.Equal(t, model.ExitArgumentError, exitCode(t, err))
	assert.Contains(t, err.Error(), "search path")
	assert.NotContains(t, err.Error(), "sub-plan", "the plan must never have been loaded")
}

// TestRun_SearchImpliesLenientLoad verifies the other side of the shim: a
// valid --search directory turns the broken include into a warning and
// the run proceeds.
func TestRun_SearchImpliesLenientLoad(t *testing.T) {
	requireTool(t, "true")
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", paramPlan+"includes: [missing.yaml]\n")

	_, err := execRun(t, planPath, "--search", t.TempDir())
	require.NoError(t, err)
}

// TestRun_IgnoreLoadErrorsFlag verifies --ignore-load-errors forces
// lenient loading without any search path.
func TestRun_IgnoreLoadErrorsFlag(t *testing.T) {
	requireTool(t, "true")
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", paramPlan+"includes: [missing.yaml]\n")

	_, strictErr := execRun(t, planPath)
	require.Error(t, strictErr)
	assert.Equal(t, model.ExitLoadError, exitCode(t, strictErr))

	_, lenientErr := execRun(t, planPath, "--ignore-load-errors")
	require.NoError(t, lenientErr)
}

// TestRun_MissingPlanIsArgumentError verifies the positional path must
// resolve to an existing file.
func TestRun_MissingPlanIsArgumentError(t *testing.T) {
	_, err := execRun(t, filepath.Join(t.TempDir(), "ghost.yaml"))
	require.Error(t, err)
	assert.Equal(t, model.ExitArgumentError, exitCode(t, err))
}

// TestRun_RequiredCapabilityMissingIsPluginError verifies a plan that
// requires an undiscovered capability aborts with the plugin exit code.
func TestRun_RequiredCapabilityMissingIsPluginError(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", paramPlan+"requires: [sqlite]\n")

	_, err := execRun(t, planPath, "--search", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, model.ExitPluginError, exitCode(t, err))
	assert.Contains(t, err.Error(), "sqlite")
}

// TestRun_RequiredCapabilityDiscovered verifies discovery results are
// joined and honored before execution.
func TestRun_RequiredCapabilityDiscovered(t *testing.T) {
	requireTool(t, "true")
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", paramPlan+"requires: [sqlite]\n")

	pluginDir := t.TempDir()
	writeFile(t, pluginDir, "sqlite.plugin.yaml", "name: SQLite Results\nprovides: [sqlite]\n")

	_, err := execRun(t, planPath, "--search", pluginDir)
	require.NoError(t, err)
}

// TestRun_MalformedMetadataDoesNotAbort verifies metadata parsing follows
// the drop-with-warning rule even at the command level.
func TestRun_MalformedMetadataDoesNotAbort(t *testing.T) {
	requireTool(t, "true")
	planPath := writeFile(t, t.TempDir(), "plan.yaml", paramPlan)

	out, err := execRun(t, planPath, "--metadata", "a=1", "--metadata", "bad")
	require.NoError(t, err)
	assert.Contains(t, out, "a=1")
	assert.NotContains(t, out, "metadata bad")
}

// TestRun_SettingsProfileDefaults verifies profile values apply as
// defaults while explicit flags win.
func TestRun_SettingsProfileDefaults(t *testing.T) {
	requireTool(t, "true")
	dir := t.TempDir()
	chdir(t, dir)

	planPath := writeFile(t, dir, "plan.yaml", paramPlan+"includes: [missing.yaml]\n")

	settingsDir := filepath.Join(dir, "settings")
	require.NoError(t, os.MkdirAll(settingsDir, 0o755))
	writeFile(t, settingsDir, "bench.yaml", "ignore-load-errors: true\nmetadata: [site=lab7]\n")

	// Profile supplies lenient loading; without it this plan cannot load.
	out, err := execRun(t, planPath, "--settings", "bench")
	require.NoError(t, err)
	assert.Contains(t, out, "site=lab7")
}

// TestRun_UnknownSettingsProfile verifies a bad profile name is invalid
// CLI input.
func TestRun_UnknownSettingsProfile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	planPath := writeFile(t, dir, "plan.yaml", paramPlan)

	_, err := execRun(t, planPath, "--settings", "nope")
	require.Error(t, err)
	assert.Equal(t, model.ExitArgumentError, exitCode(t, err))
}

// TestRun_BulkParameterFile verifies an -e entry without "=" resolves as a
// parameter file and its assignments reach the plan.
func TestRun_BulkParameterFile(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", paramPlan)
	paramFile := writeFile(t, dir, "overrides.csv", "host,10.0.0.7\n")

	out, err := execRun(t, planPath, "-e", paramFile, "--list-external-parameters")
	require.NoError(t, err)
	assert.Contains(t, out, "host = 10.0.0.7")
}
