package plugin

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/brandon-tan-keysight/opentap/internal/output"
)

// manifestSuffix identifies plugin package manifests inside search
// directories.
const manifestSuffix = ".plugin.yaml"

// Package describes one discovered plugin package, parsed from its
// manifest file.
type Package struct {
	// Name is the package's display name.
	Name string `yaml:"name"`

	// Version is the package version string, informational only.
	Version string `yaml:"version"`

	// Provides lists the capability names the package contributes
	// (result listener names, importer formats, step drivers). Plans
	// declare required capabilities against these names.
	Provides []string `yaml:"provides"`
}

// Registry holds the plugin search directories and discovered packages for
// one run. It is passed explicitly to whoever needs it; there is no
// process-wide plugin state.
type Registry struct {
	mu       sync.Mutex
	dirs     []string
	packages []Package
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddSearchDirs registers resolved search directories. Call with the output
// of ResolveSearchDirs; raw user input must not reach here.
func (r *Registry) AddSearchDirs(dirs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = append(r.dirs, dirs...)
}

// SearchDirs returns the registered directories.
func (r *Registry) SearchDirs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dirs...)
}

// Packages returns the packages discovered so far.
func (r *Registry) Packages() []Package {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Package(nil), r.packages...)
}

// Provides reports whether any discovered package provides the named
// capability. Matching is case-insensitive like listener selection.
func (r *Registry) Provides(capability string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pkg := range r.packages {
		for _, p := range pkg.Provides {
			if strings.EqualFold(p, capability) {
				return true
			}
		}
	}
	return false
}

// Discovery is the handle for one background discovery pass. It is
// fire-and-forget: the spawner proceeds immediately and may join through
// Wait or Done, but nothing requires it to.
type Discovery struct {
	done chan struct{}
}

// StartDiscovery scans the registered search directories for package
// manifests on a background goroutine and returns immediately.
//
// Discovery is a warm-up, not a dependency: manifest read or parse
// failures are logged as warnings and never fail the run, and a cancelled
// context simply stops the scan early.
func (r *Registry) StartDiscovery(ctx context.Context) *Discovery {
	d := &Discovery{done: make(chan struct{})}

	go func() {
		defer close(d.done)
		for _, dir := range r.SearchDirs() {
			if ctx.Err() != nil {
				return
			}
			r.scanDir(ctx, dir)
		}
	}()

	return d
}

// Wait blocks until the discovery pass finishes.
func (d *Discovery) Wait() {
	<-d.done
}

// Done returns a channel closed when the discovery pass finishes.
func (d *Discovery) Done() <-chan struct{} {
	return d.done
}

// scanDir walks one search directory and parses every manifest found.
func (r *Registry) scanDir(ctx context.Context, dir string) {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			output.Logger.Warn("plugin discovery: cannot read entry", "path", path, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), manifestSuffix) {
			return nil
		}

		pkg, perr := loadManifest(path)
		if perr != nil {
			output.Logger.Warn("plugin discovery: skipping invalid manifest", "path", path, "error", perr)
			return nil
		}

		r.mu.Lock()
		r.packages = append(r.packages, pkg)
		r.mu.Unlock()
		return nil
	})
	if err != nil {
		output.Logger.Warn("plugin discovery: scan failed", "dir", dir, "error", err)
	}
}

// loadManifest reads and parses a single *.plugin.yaml manifest.
func loadManifest(path string) (Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Package{}, err
	}

	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return Package{}, err
	}
	return pkg, nil
}
