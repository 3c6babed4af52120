package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/brandon-tan-keysight/opentap/internal/model"
	"github.com/brandon-tan-keysight/opentap/internal/output"
	"github.com/brandon-tan-keysight/opentap/internal/params"
)

// Load reads a test plan from r and prepares it for execution.
//
// The path is used for format detection (by extension), for resolving
// include paths, and for the default plan name; the bytes come from r so
// the caller controls the file handle's lifetime.
//
// Overrides are applied in order after the plan (and its includes) are
// assembled. Unknown override names are silent no-ops here: the strict
// channel's unknown-name check runs afterwards, against the loaded plan,
// in the orchestrator.
//
// In lenient mode a sub-plan that fails to load is a warning and the rest
// of the plan proceeds; otherwise it is a load error. A top-level parse
// failure is always a load error, lenient or not.
//
// When cacheRaw is set the plan retains its raw serialized bytes. Callers
// must only request this when no overrides and no bulk files will touch
// the plan; the cached form is meant to be byte-identical to what runs.
func Load(r io.Reader, path string, cacheRaw bool, overrides []params.Override, lenient bool) (*TestPlan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitLoadError,
			fmt.Sprintf("failed to read test plan %s", path), err)
	}

	tp, err := decode(data, path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitLoadError,
			fmt.Sprintf("failed to load test plan %s", path), err)
	}

	if tp.Name == "" {
		base := filepath.Base(path)
		tp.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := loadIncludes(tp, filepath.Dir(path), lenient); err != nil {
		return nil, err
	}

	for _, o := range overrides {
		tp.SetParameter(o.Name, o.Value)
	}

	if cacheRaw {
		tp.raw = data
	}

	return tp, nil
}

// LoadFile opens path and loads the plan from it. The file handle is held
// only for the duration of deserialization and released on every path,
// including parse failure.
func LoadFile(path string, cacheRaw bool, overrides []params.Override, lenient bool) (*TestPlan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitArgumentError,
			fmt.Sprintf("test plan %q not found", path), err)
	}
	if info.IsDir() {
		return nil, model.NewCLIError(model.ExitArgumentError,
			fmt.Sprintf("test plan %q is a directory, not a file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitArgumentError,
			fmt.Sprintf("cannot open test plan %q", path), err)
	}
	defer f.Close()

	return Load(f, path, cacheRaw, overrides, lenient)
}

// loadIncludes merges each sub-plan referenced by the plan's includes,
// resolving relative paths against dir. Sub-plans may not nest further
// includes; one level keeps the failure semantics simple and has covered
// every plan seen so far.
func loadIncludes(tp *TestPlan, dir string, lenient bool) error {
	for _, inc := range tp.Includes {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(dir, incPath)
		}

		sub, err := loadIncludeFile(incPath)
		if err != nil {
			if lenient {
				output.Logger.Warn("ignoring sub-plan that failed to load", "path", incPath, "error", err)
				continue
			}
			return model.WrapCLIError(model.ExitLoadError,
				fmt.Sprintf("failed to load sub-plan %s", incPath), err)
		}

		tp.merge(sub)
	}
	return nil
}

func loadIncludeFile(path string) (*TestPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data, path)
}

// decode parses plan bytes according to the file extension: JSONC for
// .json/.jsonc, YAML for everything else. YAML is the default because it
// is also a superset of plain JSON, so extensionless plans still load.
func decode(data []byte, path string) (*TestPlan, error) {
	var tp TestPlan

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Strip comments and trailing commas before handing the bytes to
		// encoding/json; authored plan files frequently carry both.
		if err := json.Unmarshal(jsonc.ToJSON(data), &tp); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &tp); err != nil {
			return nil, err
		}
	}

	return &tp, nil
}
