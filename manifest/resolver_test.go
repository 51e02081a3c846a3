package manifest

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestResolveNamespace(t *testing.T) {
	tests := []struct {
		name        string
		depName     string
		dep         Dependency
		depManifest *Manifest
		wantNS      string
	}{
		{
			name:        "consumer override wins",
			depName:     "kit",
			dep:         Dependency{Path: "../kit", Namespace: "Custom"},
			depManifest: &Manifest{Project: Project{Namespace: "UiKit"}},
			wantNS:      "custom",
		},
		{
			name:        "producer namespace when no consumer override",
			depName:     "kit",
			dep:         Dependency{Path: "../kit"},
			depManifest: &Manifest{Project: Project{Namespace: "UiKit"}},
			wantNS:      "ui-kit",
		},
		{
			name:    "dependency name fallback",
			depName: "formControls",
			dep:     Dependency{Path: "../forms"},
			wantNS:  "form-controls",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveNamespace(tt.depName, tt.dep, tt.depManifest); got != tt.wantNS {
				t.Errorf("resolveNamespace = %q, want %q", got, tt.wantNS)
			}
		})
	}
}

func project(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/trellis.toml", `
[dependencies]
kit = { path = "../kit" }
icons = { path = "/libs/icons", namespace = "Ico" }
`)
	writeFile(t, fs, "/kit/trellis.toml", `
[project]
namespace = "UiKit"

[templates]
components = "parts"

[dependencies]
icons = { path = "../libs/icons" }
`)
	writeFile(t, fs, "/kit/parts/button.json", "{}")
	writeFile(t, fs, "/libs/icons/star.json", "{}")
	writeFile(t, fs, "/proj/templates/main.json", "{}")
	writeFile(t, fs, "/proj/templates/pages/about.json", "{}")
	writeFile(t, fs, "/proj/templates/notes.txt", "")
	writeFile(t, fs, "/proj/components/user-card.json", "{}")
	return fs
}

func TestResolveOrder(t *testing.T) {
	fs := project(t)
	m, err := Load(fs, "/proj")
	if err != nil {
		t.Fatal(err)
	}
	deps, err := NewResolver(fs, m).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var names []string
	for _, d := range deps {
		names = append(names, d.Name+"@"+d.Namespace)
	}
	// icons sorts first and keeps the consumer's namespace; kit's own
	// reference to it is not resolved again.
	want := "icons@ico,kit@ui-kit"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("resolved = %s, want %s", got, want)
	}
}

func TestResolveMissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/trellis.toml", "[dependencies]\nkit = { path = \"../kit\" }\n")
	m, err := Load(fs, "/proj")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewResolver(fs, m).Resolve(); err == nil {
		t.Error("expected an error for a missing dependency")
	}
}

func TestResolveCycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/a/trellis.toml", "[dependencies]\nb = { path = \"../b\" }\n")
	writeFile(t, fs, "/b/trellis.toml", "[dependencies]\nb = { path = \"../b\" }\n")
	m, err := Load(fs, "/a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewResolver(fs, m).Resolve(); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("Resolve error = %v, want a cycle", err)
	}
}

func TestSources(t *testing.T) {
	fs := project(t)
	m, err := Load(fs, "/proj")
	if err != nil {
		t.Fatal(err)
	}
	deps, err := NewResolver(fs, m).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	sources, err := m.Sources(fs, deps)
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}

	var got []string
	for _, s := range sources {
		kind := "t"
		if s.Component {
			kind = "c"
		}
		got = append(got, kind+":"+s.Name)
	}
	want := "t:main,t:pages/about,c:ico-star,c:ui-kit-button,c:user-card"
	if strings.Join(got, ",") != want {
		t.Errorf("sources = %s, want %s", strings.Join(got, ","), want)
	}
}
