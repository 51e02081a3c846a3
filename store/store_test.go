package store

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/compiler/hash"
	"github.com/chazu/trellis/wire"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(text string) *wire.Template {
	return &wire.Template{
		ID:      "sample",
		Symbols: []string{"@title"},
		Block: &wire.Block{Statements: []wire.Statement{
			&wire.OpenElement{Tag: "h1"},
			&wire.FlushElement{},
			&wire.Append{Value: &wire.GetSymbol{Symbol: 1}},
			&wire.Text{Value: text},
			&wire.CloseElement{},
		}},
	}
}

func TestPutGet(t *testing.T) {
	s := openTest(t)
	tpl := sample("!")

	sum, changed, err := s.Put("heading", KindComponent, tpl)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, hash.Hex(tpl), sum)

	got, entry, err := s.Get("heading")
	require.NoError(t, err)
	assert.Equal(t, "heading", entry.Name)
	assert.Equal(t, KindComponent, entry.Kind)
	assert.Equal(t, sum, entry.Hash)
	assert.Equal(t, sum, hash.Hex(got))

	byHash, _, err := s.GetByHash(sum)
	require.NoError(t, err)
	assert.Equal(t, sum, hash.Hex(byHash))
}

func TestPutUnchanged(t *testing.T) {
	s := openTest(t)
	_, _, err := s.Put("heading", KindComponent, sample("!"))
	require.NoError(t, err)

	_, changed, err := s.Put("heading", KindComponent, sample("!"))
	require.NoError(t, err)
	assert.False(t, changed)

	sum, changed, err := s.Put("heading", KindComponent, sample("?"))
	require.NoError(t, err)
	assert.True(t, changed)
	_, entry, err := s.Get("heading")
	require.NoError(t, err)
	assert.Equal(t, sum, entry.Hash)
}

func TestNotFound(t *testing.T) {
	s := openTest(t)
	_, _, err := s.Get("missing")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	_, _, err = s.GetByHash("00")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	assert.True(t, errors.Is(s.Delete("missing"), ErrTemplateNotFound))
}

func TestListAndDelete(t *testing.T) {
	s := openTest(t)
	for _, name := range []string{"b", "a", "c"} {
		_, _, err := s.Put(name, KindTemplate, sample(name))
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete("b"))

	entries, err := s.List()
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
		assert.Equal(t, KindTemplate, e.Kind)
	}
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.db")
	s, err := Open(path)
	require.NoError(t, err)
	sum, _, err := s.Put("main", KindTemplate, sample("x"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, entry, err := s.Get("main")
	require.NoError(t, err)
	assert.Equal(t, sum, entry.Hash)
}
