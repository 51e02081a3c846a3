package main

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/host"
	"github.com/chazu/trellis/manifest"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

const manifestName = manifest.FileName

// unit is one parsed source of a project.
type unit struct {
	manifest.Source
	Template *wire.Template
	// Definition is set for component layouts.
	Definition *compiler.ComponentDefinition
}

// project is a loaded manifest with its sources parsed and its components
// registered.
type project struct {
	Manifest *manifest.Manifest
	Registry *host.Registry
	Units    []unit

	templates map[string]*wire.Template
}

func loadProject(afs afero.Fs, dir string) (*project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(afs, abs)
	if err != nil {
		return nil, err
	}
	deps, err := manifest.NewResolver(afs, m).Resolve()
	if err != nil {
		return nil, err
	}
	sources, err := m.Sources(afs, deps)
	if err != nil {
		return nil, err
	}

	p := &project{
		Manifest:  m,
		Registry:  host.NewRegistry(),
		templates: make(map[string]*wire.Template),
	}
	for _, src := range sources {
		t, err := readTemplate(afs, src.Path)
		if err != nil {
			return nil, err
		}
		u := unit{Source: src, Template: t}
		if src.Component {
			u.Definition, err = p.Registry.RegisterTemplateOnly(src.Name, t)
			if err != nil {
				return nil, errors.Wrap(err, src.Path)
			}
		} else {
			p.templates[src.Name] = t
		}
		p.Units = append(p.Units, u)
	}
	log.Infof("loaded project %s: %d sources, %d dependencies", m.Project.Name, len(sources), len(deps))
	return p, nil
}

func readTemplate(afs afero.Fs, path string) (*wire.Template, error) {
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return nil, err
	}
	t, err := wire.ParseJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return t, nil
}

// template returns the named template, or the manifest's entry when name
// is empty.
func (p *project) template(name string) (string, *wire.Template, error) {
	if name == "" {
		name = p.Manifest.Templates.Entry
	}
	t, ok := p.templates[name]
	if !ok {
		return name, nil, errors.Errorf("no template named %q", name)
	}
	return name, t, nil
}

func (p *project) newContext() *compiler.Context {
	return compiler.NewContext(bytecode.NewProgram(), p.Registry)
}
