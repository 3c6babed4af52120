package plan

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/brandon-tan-keysight/opentap/internal/output"
	"github.com/brandon-tan-keysight/opentap/internal/params"
)

// Importer reads external parameter assignments from a bulk file.
// Implementations are keyed by file extension in the importer registry;
// plugins may contribute additional formats.
type Importer interface {
	Import(path string) ([]params.Override, error)
}

// Importers returns the built-in importer registry, keyed by lowercase
// extension (without dot): YAML and JSONC maps of name to value, and CSV
// name,value rows.
func Importers() map[string]Importer {
	yi := yamlImporter{}
	ji := jsonImporter{}
	ci := csvImporter{}
	return map[string]Importer{
		"yaml":  yi,
		"yml":   yi,
		"json":  ji,
		"jsonc": ji,
		"csv":   ci,
	}
}

// ApplyImportFiles resolves each bulk parameter file against the plan, one
// file at a time and strictly after direct overrides have been applied.
//
// Failures are per-file and non-fatal: a file whose extension has no
// registered importer, or whose import fails, is logged and the remaining
// files continue processing. Imported assignments apply leniently; names
// the plan does not expose are skipped.
func ApplyImportFiles(tp *TestPlan, files []params.ImportFile, importers map[string]Importer) {
	for _, file := range files {
		imp, ok := importers[file.Format]
		if !ok {
			output.Logger.Error("no parameter importer registered for file extension",
				"path", file.Path, "extension", file.Format)
			continue
		}

		overrides, err := imp.Import(file.Path)
		if err != nil {
			output.Logger.Error("failed to import parameter file", "path", file.Path, "error", err)
			continue
		}

		for _, o := range overrides {
			if !tp.SetParameter(o.Name, o.Value) {
				output.Logger.Debug("imported parameter not present in plan, skipping",
					"path", file.Path, "name", o.Name)
			}
		}
	}
}

// yamlImporter reads a YAML mapping of parameter name to value.
type yamlImporter struct{}

func (yamlImporter) Import(path string) ([]params.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return sortedOverrides(values), nil
}

// jsonImporter reads a JSONC object of parameter name to value. Non-string
// scalar values are accepted and stringified, since hand-written files
// routinely hold bare numbers and booleans.
type jsonImporter struct{}

func (jsonImporter) Import(path string) ([]params.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &values); err != nil {
		return nil, err
	}

	flat := make(map[string]string, len(values))
	for name, v := range values {
		switch tv := v.(type) {
		case string:
			flat[name] = tv
		case nil:
			flat[name] = ""
		default:
			flat[name] = fmt.Sprint(tv)
		}
	}
	return sortedOverrides(flat), nil
}

// csvImporter reads name,value rows. A header row of exactly "name,value"
// is tolerated and skipped.
type csvImporter struct{}

func (csvImporter) Import(path string) ([]params.Override, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var overrides []params.Override
	for i, row := range rows {
		if i == 0 && row[0] == "name" && row[1] == "value" {
			continue
		}
		overrides = append(overrides, params.Override{Name: row[0], Value: row[1]})
	}
	return overrides, nil
}

// sortedOverrides flattens a map into overrides in name order, so imports
// from unordered formats apply deterministically.
func sortedOverrides(values map[string]string) []params.Override {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	overrides := make([]params.Override, 0, len(names))
	for _, name := range names {
		overrides = append(overrides, params.Override{Name: name, Value: values[name]})
	}
	return overrides
}
