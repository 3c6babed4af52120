// Package plan handles loading and parameterizing test plans.
//
// Plans are authored in YAML (.yaml/.yml) or JSONC (.json/.jsonc). JSONC
// support uses github.com/tidwall/jsonc to strip comments and trailing
// commas before parsing with encoding/json, so hand-maintained plan files
// can carry annotations.
//
// Key responsibilities:
//   - Load and parse a plan from a stream, including sub-plans referenced
//     through includes (failures are warnings in lenient mode)
//   - Apply external parameter overrides during load
//   - Resolve bulk parameter files through the extension-keyed importer
//     registry, with per-file, non-fatal error recovery
//   - Cache the raw serialized form, only when the plan is loaded with
//     zero overrides and zero bulk files
package plan
