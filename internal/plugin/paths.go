package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandon-tan-keysight/opentap/internal/model"
)

// ResolveSearchDirs normalizes raw search path strings into absolute paths
// and verifies each exists as a directory.
//
// Resolution is fail-fast and all-or-nothing: a single invalid or
// nonexistent entry aborts the entire batch with an argument error, even
// when other entries already resolved cleanly. Partial application would
// leave the user with a plugin set that silently depends on which flag
// happened to be mistyped.
func ResolveSearchDirs(raw []string) ([]string, error) {
	resolved := make([]string, 0, len(raw))

	for _, p := range raw {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitArgumentError,
				fmt.Sprintf("invalid plugin search path %q", p), err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitArgumentError,
				fmt.Sprintf("plugin search path %q does not exist", p), err)
		}
		if !info.IsDir() {
			return nil, model.NewCLIError(model.ExitArgumentError,
				fmt.Sprintf("plugin search path %q is not a directory", p))
		}

		resolved = append(resolved, abs)
	}

	return resolved, nil
}
