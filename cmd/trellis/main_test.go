package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	demoManifest = `
[project]
name = "demo"

[render]
self = "self.json"
`
	// <h1>{{title}}</h1><Greeting @name="Ada" />
	demoMain = `{
  "symbols": [],
  "block": [[
    [5, "h1"], [7], [3, [31, "title"]], [8],
    [12, "Greeting", [], [["@name"], ["Ada"]], null]
  ], []]
}`
	// Hi {{@name}}
	demoGreeting = `{
  "symbols": ["@name"],
  "block": [[[1, "Hi "], [3, [30, 1]]], []]
}`
)

func writeDemo(t *testing.T, afs afero.Fs, root string) {
	t.Helper()
	files := map[string]string{
		"trellis.toml":              demoManifest,
		"self.json":                 `{"title": "Hello"}`,
		"templates/main.json":       demoMain,
		"components/greeting.json":  demoGreeting,
		"templates/pages/note.json": `{"symbols": [], "block": [[[1, "note"]], []]}`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, afs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(afs, path, []byte(content), 0o644))
	}
}

func run(t *testing.T, afs afero.Fs, fn func(afero.Fs, []string, io.Writer) error, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, fn(afs, args, &out))
	return out.String()
}

func TestRenderEntry(t *testing.T) {
	afs := afero.NewMemMapFs()
	writeDemo(t, afs, "/demo")

	out := run(t, afs, runRender, "-C", "/demo")
	assert.Equal(t, "<h1>Hello</h1>Hi Ada\n", out)

	out = run(t, afs, runRender, "-C", "/demo/templates", "pages/note")
	assert.Equal(t, "note\n", out)
}

func TestRenderSelfOverride(t *testing.T) {
	afs := afero.NewMemMapFs()
	writeDemo(t, afs, "/demo")
	require.NoError(t, afero.WriteFile(afs, "/other.json", []byte(`{"title": "Other"}`), 0o644))

	out := run(t, afs, runRender, "-C", "/demo", "--self", "/other.json", "--rerender")
	assert.Equal(t, "<h1>Other</h1>Hi Ada\n", out)
}

func TestRenderUnknownTemplate(t *testing.T) {
	afs := afero.NewMemMapFs()
	writeDemo(t, afs, "/demo")

	err := runRender(afs, []string{"-C", "/demo", "missing"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestDisasm(t *testing.T) {
	afs := afero.NewMemMapFs()
	writeDemo(t, afs, "/demo")

	out := run(t, afs, runDisasm, "-C", "/demo")
	assert.True(t, strings.HasPrefix(out, "; === main ===\n"), out)
	assert.Contains(t, out, "OPEN_ELEMENT")

	out = run(t, afs, runDisasm, "-C", "/demo", "--component", "Greeting")
	assert.Contains(t, out, "; === Greeting ===")
}

func TestHashFilesMatchProject(t *testing.T) {
	afs := afero.NewMemMapFs()
	writeDemo(t, afs, "/demo")

	all := run(t, afs, runHash, "-C", "/demo")
	lines := strings.Split(strings.TrimSpace(all), "\n")
	require.Len(t, lines, 3)

	file := run(t, afs, runHash, "/demo/templates/main.json")
	sum := strings.Fields(file)[0]
	assert.Contains(t, all, sum+"  main\n")
}

func TestCompileStoresOnce(t *testing.T) {
	afs := afero.NewOsFs()
	root := t.TempDir()
	writeDemo(t, afs, root)

	out := run(t, afs, runCompile, "-C", root)
	assert.Equal(t, 3, strings.Count(out, "stored"), out)

	out = run(t, afs, runCompile, "-C", root, "--list")
	assert.Equal(t, 3, strings.Count(out, "unchanged"), out)
	assert.Contains(t, out, "greeting")
	assert.Contains(t, out, "component")

	out = run(t, afs, runDisasm, "-C", root, "--stored", "pages/note")
	assert.Contains(t, out, "; === pages/note ===")
}

func TestCompileRejectsBrokenProject(t *testing.T) {
	afs := afero.NewOsFs()
	root := t.TempDir()
	writeDemo(t, afs, root)
	broken := `{"symbols": [], "block": [[[3, [32, "nope", [], null]]], []]}`
	require.NoError(t, afero.WriteFile(afs, filepath.Join(root, "templates/broken.json"), []byte(broken), 0o644))

	err := runCompile(afs, []string{"-C", root}, &bytes.Buffer{})
	require.Error(t, err)
	exists, _ := afero.Exists(afs, filepath.Join(root, ".trellis", "templates.db"))
	assert.False(t, exists)
}
