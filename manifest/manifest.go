// Package manifest handles trellis.toml project configuration.
package manifest

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileName is the name of the project file.
const FileName = "trellis.toml"

// Manifest represents a trellis.toml project configuration.
type Manifest struct {
	Project      Project               `toml:"project"`
	Templates    Templates             `toml:"templates"`
	Dependencies map[string]Dependency `toml:"dependencies"`
	Render       Render                `toml:"render"`
	Store        Store                 `toml:"store"`

	// Dir is the directory containing the trellis.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name      string `toml:"name"`
	Namespace string `toml:"namespace"`
	Version   string `toml:"version"`
}

// Templates configures where wire templates live. Every *.json file under
// Dirs is a template named after its path; every file under Components is
// a component layout named after its file.
type Templates struct {
	Dirs       []string `toml:"dirs"`
	Components string   `toml:"components"`
	Entry      string   `toml:"entry"`
}

// Dependency is a local component library. Its components are registered
// under Namespace, or under the library's own namespace, or its name.
type Dependency struct {
	Path      string `toml:"path"`
	Namespace string `toml:"namespace"`
}

// Render configures the render subcommand.
type Render struct {
	// Self is a JSON file whose contents become the entry template's self.
	Self             string            `toml:"self"`
	AlwaysRevalidate bool              `toml:"always-revalidate"`
	DynamicVars      map[string]string `toml:"dynamic-vars"`
}

// Store configures the compiled template store.
type Store struct {
	Path string `toml:"path"`
}

// Load parses the trellis.toml file in dir, validates it against the
// schema and applies defaults.
func Load(fs afero.Fs, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}
	if err := validate(raw); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}

	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", dir)
	}

	// Defaults
	if len(m.Templates.Dirs) == 0 {
		m.Templates.Dirs = []string{"templates"}
	}
	if m.Templates.Components == "" {
		m.Templates.Components = "components"
	}
	if m.Templates.Entry == "" {
		m.Templates.Entry = "main"
	}
	if m.Store.Path == "" {
		m.Store.Path = filepath.Join(".trellis", "templates.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a trellis.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(fs afero.Fs, startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		ok, err := afero.Exists(fs, filepath.Join(dir, FileName))
		if err != nil {
			return nil, err
		}
		if ok {
			return Load(fs, dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// TemplateDirPaths returns absolute paths for the configured template directories.
func (m *Manifest) TemplateDirPaths() []string {
	var paths []string
	for _, d := range m.Templates.Dirs {
		paths = append(paths, m.path(d))
	}
	return paths
}

// ComponentDirPath returns the absolute path of the component directory.
func (m *Manifest) ComponentDirPath() string {
	return m.path(m.Templates.Components)
}

// StorePath returns the absolute path of the template store.
func (m *Manifest) StorePath() string {
	return m.path(m.Store.Path)
}

// SelfPath returns the absolute path of the render self file, or "".
func (m *Manifest) SelfPath() string {
	if m.Render.Self == "" {
		return ""
	}
	return m.path(m.Render.Self)
}

func (m *Manifest) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
