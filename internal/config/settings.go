// Package config loads named settings profiles for the tap CLI.
//
// A profile supplies defaults for run flags (plugin search directories,
// result listener selection, metadata, prompting behavior) so that bench
// setups can be named once and selected with --settings instead of being
// retyped per invocation. Explicit flags always win over profile values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// Profile holds the run defaults a named settings profile provides.
type Profile struct {
	// Search lists plugin search directories, resolved like --search.
	Search []string `yaml:"search"`

	// Results is a listener selection applied like --results. A pointer
	// distinguishes "not set" (leave registry defaults) from an empty
	// string (disable every listener).
	Results *string `yaml:"results"`

	// Metadata lists key=value entries applied like --metadata.
	Metadata []string `yaml:"metadata"`

	// NonInteractive suppresses prompting, like --non-interactive.
	NonInteractive bool `yaml:"non-interactive"`

	// IgnoreLoadErrors forces lenient plan loading, like --ignore-load-errors.
	IgnoreLoadErrors bool `yaml:"ignore-load-errors"`
}

// LoadProfile reads the profile named name from dir/settings/<name>.yaml.
// An unknown profile name or an unparseable profile is an argument error:
// both are invalid CLI input, not a plan problem.
func LoadProfile(dir, name string) (*Profile, error) {
	path := filepath.Join(dir, "settings", name+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitArgumentError,
			fmt.Sprintf("settings profile %q not found at %s", name, path), err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, model.WrapCLIError(model.ExitArgumentError,
			fmt.Sprintf("settings profile %q is not valid YAML", name), err)
	}

	return &profile, nil
}
