package manifest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stoewer/go-strcase"
)

// ResolvedDep is a component library located on disk.
type ResolvedDep struct {
	Name      string
	LocalPath string
	// Namespace prefixes the library's component names.
	Namespace string
	// Manifest is nil for a bare component directory.
	Manifest *Manifest
}

// Resolver locates the component libraries a project depends on.
type Resolver struct {
	fs       afero.Fs
	manifest *Manifest
}

// NewResolver returns a resolver for the dependencies of m.
func NewResolver(fs afero.Fs, m *Manifest) *Resolver {
	return &Resolver{fs: fs, manifest: m}
}

// Resolve returns every library reachable from the manifest, each one
// after the libraries it depends on. Cycles are rejected.
func (r *Resolver) Resolve() ([]ResolvedDep, error) {
	return r.resolveAll(r.manifest, make(map[string]*ResolvedDep), nil)
}

// resolveAll resolves the dependencies of m recursively. Names are
// visited in sorted order so the result is deterministic.
func (r *Resolver) resolveAll(m *Manifest, resolved map[string]*ResolvedDep, visiting []string) ([]ResolvedDep, error) {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var libs []ResolvedDep
	for _, name := range names {
		for _, v := range visiting {
			if v == name {
				return nil, errors.Errorf("dependency cycle: %s -> %s", strings.Join(visiting, " -> "), name)
			}
		}
		if _, seen := resolved[name]; seen {
			continue
		}

		rd, err := r.resolveOne(m, name, m.Dependencies[name])
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", name)
		}

		if rd.Manifest != nil && len(rd.Manifest.Dependencies) > 0 {
			transitive, err := r.resolveAll(rd.Manifest, resolved, append(visiting, name))
			if err != nil {
				return nil, err
			}
			libs = append(libs, transitive...)
		}

		resolved[name] = rd
		libs = append(libs, *rd)
	}
	return libs, nil
}

// resolveNamespace picks the consumer's namespace for the library, then the
// library's own project namespace, then the dependency name, in kebab case
// so it composes with component names.
func resolveNamespace(name string, dep Dependency, depManifest *Manifest) string {
	ns := name
	if depManifest != nil && depManifest.Project.Namespace != "" {
		ns = depManifest.Project.Namespace
	}
	if dep.Namespace != "" {
		ns = dep.Namespace
	}
	return strcase.KebabCase(ns)
}

// resolveOne locates one library declared by m. Relative paths are taken
// from m's directory.
func (r *Resolver) resolveOne(m *Manifest, name string, dep Dependency) (*ResolvedDep, error) {
	if dep.Path == "" {
		return nil, errors.Errorf("dependency %q has no path specified", name)
	}
	dir := m.path(dep.Path)
	ok, err := afero.DirExists(r.fs, dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("component library %q not found at %s", name, dir)
	}

	// A library without its own manifest is just a component directory.
	var depManifest *Manifest
	if exists, _ := afero.Exists(r.fs, filepath.Join(dir, FileName)); exists {
		if depManifest, err = Load(r.fs, dir); err != nil {
			return nil, err
		}
	}

	return &ResolvedDep{
		Name:      name,
		LocalPath: dir,
		Namespace: resolveNamespace(name, dep, depManifest),
		Manifest:  depManifest,
	}, nil
}

// ComponentDir returns the directory holding the dependency's components.
func (d ResolvedDep) ComponentDir() string {
	if d.Manifest != nil {
		return d.Manifest.ComponentDirPath()
	}
	return d.LocalPath
}
