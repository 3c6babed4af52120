package plan

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon-tan-keysight/opentap/internal/output"
	"github.com/brandon-tan-keysight/opentap/internal/params"
)

// testPlan builds a small in-memory plan for import tests.
func testPlan() *TestPlan {
	return &TestPlan{
		Name: "t",
		Parameters: []*Parameter{
			{Name: "host", Value: "localhost"},
			{Name: "retries", Value: "1"},
		},
	}
}

// writeParamFile creates a parameter file and returns its ImportFile reference.
func writeParamFile(t *testing.T, name, content string) params.ImportFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	ext := filepath.Ext(name)
	return params.ImportFile{Path: path, Format: ext[1:]}
}

// TestImporters_YAML verifies the YAML importer reads a name/value mapping
// in deterministic name order.
func TestImporters_YAML(t *testing.T) {
	file := writeParamFile(t, "params.yaml", "host: 10.0.0.7\nretries: \"5\"\n")

	overrides, err := Importers()["yaml"].Import(file.Path)
	require.NoError(t, err)
	assert.Equal(t, []params.Override{
		{Name: "host", Value: "10.0.0.7"},
		{Name: "retries", Value: "5"},
	}, overrides)
}

// TestImporters_JSONC verifies the JSONC importer tolerates comments and
// stringifies non-string scalars.
func TestImporters_JSONC(t *testing.T) {
	file := writeParamFile(t, "params.json", `{
  // bench overrides
  "host": "10.0.0.7",
  "retries": 5,
}`)

	overrides, err := Importers()["json"].Import(file.Path)
	require.NoError(t, err)
	assert.Equal(t, []params.Override{
		{Name: "host", Value: "10.0.0.7"},
		{Name: "retries", Value: "5"},
	}, overrides)
}

// TestImporters_CSV verifies the CSV importer reads name,value rows and
// skips an exact header row.
func TestImporters_CSV(t *testing.T) {
	file := writeParamFile(t, "params.csv", "name,value\nhost,10.0.0.7\nretries,5\n")

	overrides, err := Importers()["csv"].Import(file.Path)
	require.NoError(t, err)
	assert.Equal(t, []params.Override{
		{Name: "host", Value: "10.0.0.7"},
		{Name: "retries", Value: "5"},
	}, overrides)
}

// TestApplyImportFiles_AppliesLeniently verifies imported assignments land
// on matching parameters while unknown names are skipped silently.
func TestApplyImportFiles_AppliesLeniently(t *testing.T) {
	tp := testPlan()
	file := writeParamFile(t, "params.yaml", "host: 10.0.0.7\nnosuch: x\n")

	ApplyImportFiles(tp, []params.ImportFile{file}, Importers())

	assert.Equal(t, "10.0.0.7", tp.Parameter("host").Value)
	assert.Nil(t, tp.Parameter("nosuch"))
}

// TestApplyImportFiles_PerFileRecovery verifies a file with no registered
// importer, or a missing file, is logged and skipped while later files
// still apply.
func TestApplyImportFiles_PerFileRecovery(t *testing.T) {
	var buf bytes.Buffer
	prev := output.Logger
	output.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer output.SetLogger(prev)

	tp := testPlan()
	good := writeParamFile(t, "params.yaml", "retries: \"9\"\n")
	files := []params.ImportFile{
		{Path: "bench.xlsx", Format: "xlsx"},                            // no importer
		{Path: filepath.Join(t.TempDir(), "gone.yaml"), Format: "yaml"}, // missing file
		good,
	}

	ApplyImportFiles(tp, files, Importers())

	assert.Equal(t, "9", tp.Parameter("retries").Value)
	out := buf.String()
	assert.Contains(t, out, "xlsx")
	assert.Contains(t, out, "gone.yaml")
}

// TestImporters_Extensions pins the registered built-in formats.
func TestImporters_Extensions(t *testing.T) {
	importers := Importers()
	for _, ext := range []string{"yaml", "yml", "json", "jsonc", "csv"} {
		assert.Contains(t, importers, ext)
	}
}
