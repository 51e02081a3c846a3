package manifest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Source is one wire template file of a project.
type Source struct {
	// Name is the template name, or the component name for layouts.
	Name string
	Path string
	// Component is set for component layouts.
	Component bool
}

const templateExt = ".json"

// Sources lists the project's templates, then the components of each
// dependency in load order, then the project's own components. Template
// names are slash-separated paths relative to their template directory,
// without extension; component names are file names, prefixed with the
// namespace for dependencies.
func (m *Manifest) Sources(afs afero.Fs, deps []ResolvedDep) ([]Source, error) {
	var out []Source
	for _, dir := range m.TemplateDirPaths() {
		found, err := walk(afs, dir, true)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}

	for _, d := range deps {
		found, err := walk(afs, d.ComponentDir(), false)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency %s", d.Name)
		}
		for i := range found {
			found[i].Name = d.Namespace + "-" + found[i].Name
		}
		out = append(out, found...)
	}

	found, err := walk(afs, m.ComponentDirPath(), false)
	if err != nil {
		return nil, err
	}
	return append(out, found...), nil
}

func walk(afs afero.Fs, root string, templates bool) ([]Source, error) {
	ok, err := afero.DirExists(afs, root)
	if err != nil || !ok {
		return nil, err
	}
	var out []Source
	err = afero.Walk(afs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != templateExt {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, templateExt))
		if !templates {
			name = strings.TrimSuffix(filepath.Base(path), templateExt)
		}
		out = append(out, Source{Name: name, Path: path, Component: !templates})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
