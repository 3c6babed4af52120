package params

import (
	"path/filepath"
	"strings"
)

// Override is a single external parameter assignment: a named value that
// replaces a plan parameter's default when the plan is loaded.
type Override struct {
	// Name is the plan parameter name, the part before the first "=".
	Name string

	// Value is the assigned value, the part after the first "=".
	// May itself contain "=" characters; only the first one splits.
	Value string
}

// ImportFile is a bulk parameter file reference: a flag entry that carried
// no "=" and is therefore interpreted as a path to a file of assignments.
type ImportFile struct {
	// Path is the file path exactly as given on the command line.
	Path string

	// Format is the lowercased file extension without the leading dot,
	// used to select an importer. May be empty for extensionless paths.
	Format string
}

// ResolvedSet is the result of one resolution pass over the strict and
// lenient override channels.
//
// The channels are kept separate because they have different failure
// semantics: after the plan is loaded, every strict name must match a plan
// parameter or the run aborts, while unmatched lenient names are silent
// no-ops. Bulk files are channel-agnostic; their assignments always apply
// leniently.
type ResolvedSet struct {
	// Strict holds deduplicated strict-channel overrides in first-seen
	// order. A later entry with the same name silently replaced the value.
	Strict []Override

	// Lenient holds deduplicated lenient-channel overrides, same rules.
	Lenient []Override

	// Files holds bulk import file references from both channels, in the
	// order given (strict channel first, mirroring CLI flag ordering).
	Files []ImportFile
}

// Resolve normalizes the raw strict and lenient flag values into a
// ResolvedSet.
//
// Each entry is split on the first "=". An entry without an "=" is always
// treated as a bulk import file reference, even when it looks like a typo'd
// assignment. That is a literal precedence rule, not a heuristic: checking
// the entry against known parameter names first would make the
// interpretation depend on the plan, which is not loaded yet.
func Resolve(strict, lenient []string) ResolvedSet {
	var set ResolvedSet
	set.Strict = resolveChannel(strict, &set.Files)
	set.Lenient = resolveChannel(lenient, &set.Files)
	return set
}

// resolveChannel splits one channel's entries into overrides and import
// file references. Within the channel, a repeated name keeps its first
// position but takes the last value.
func resolveChannel(entries []string, files *[]ImportFile) []Override {
	var overrides []Override
	index := make(map[string]int)

	for _, entry := range entries {
		name, value, found := strings.Cut(entry, "=")
		if !found {
			// No "=": a bulk parameter file, keyed by extension so the
			// importer registry can pick a format.
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry)), ".")
			*files = append(*files, ImportFile{Path: entry, Format: ext})
			continue
		}

		if i, seen := index[name]; seen {
			overrides[i].Value = value
			continue
		}
		index[name] = len(overrides)
		overrides = append(overrides, Override{Name: name, Value: value})
	}

	return overrides
}

// IsEmpty reports whether the resolution pass produced no overrides and no
// bulk files at all. Only in this exact case is the plan's raw serialized
// form eligible for caching: an unmodified plan is byte-identical to its
// source.
func (s ResolvedSet) IsEmpty() bool {
	return len(s.Strict) == 0 && len(s.Lenient) == 0 && len(s.Files) == 0
}

// Merged returns the overrides to apply at plan load: the strict channel
// first, then lenient entries whose names were not already set strictly.
// A lenient entry never overrides a strict one of the same name.
func (s ResolvedSet) Merged() []Override {
	merged := make([]Override, 0, len(s.Strict)+len(s.Lenient))
	strictNames := make(map[string]struct{}, len(s.Strict))

	for _, o := range s.Strict {
		strictNames[o.Name] = struct{}{}
		merged = append(merged, o)
	}
	for _, o := range s.Lenient {
		if _, taken := strictNames[o.Name]; taken {
			continue
		}
		merged = append(merged, o)
	}
	return merged
}

// StrictNames returns the names supplied through the strict channel, in
// order, for post-load validation against the plan's parameter surface.
func (s ResolvedSet) StrictNames() []string {
	names := make([]string, len(s.Strict))
	for i, o := range s.Strict {
		names[i] = o.Name
	}
	return names
}
