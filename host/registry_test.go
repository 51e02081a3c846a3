package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/tracked"
	"github.com/chazu/trellis/vm"
	"github.com/chazu/trellis/wire"
)

func layout(stmts ...wire.Statement) *wire.Template {
	return &wire.Template{ID: "layout", Block: &wire.Block{Statements: stmts}}
}

func TestRegistryNormalizesNames(t *testing.T) {
	r := NewRegistry()
	def, err := r.RegisterTemplateOnly("UserCard", layout(&wire.Text{Value: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "user-card", def.Name)
	require.NotNil(t, def.Layout)

	for _, name := range []string{"UserCard", "user-card", "userCard"} {
		got, ok := r.LookupComponent(name, nil)
		assert.True(t, ok, name)
		assert.Same(t, def, got, name)
	}
	assert.Equal(t, []string{"user-card"}, r.Components())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	_, err := r.RegisterTemplateOnly("greeting", layout())
	require.NoError(t, err)
	_, err = r.RegisterTemplateOnly("Greeting", layout())
	assert.Error(t, err)
	_, err = r.RegisterTemplateOnly("", layout())
	assert.Error(t, err)
}

func TestRegistryLookupMisses(t *testing.T) {
	r := NewRegistry()
	_, ok := r.LookupComponent("nope", nil)
	assert.False(t, ok)
	_, ok = r.LookupHelper("nope", nil)
	assert.False(t, ok)
}

func TestRegisterHelperReplacesBuiltin(t *testing.T) {
	r := NewRegistry()
	r.RegisterHelper("eq", Pure("eq", func([]any, map[string]any) any { return "custom" }))
	h, ok := r.LookupHelper("eq", nil)
	require.True(t, ok)
	out := h.(vm.Helper).Invoke(vm.NewArguments(nil, nil))
	assert.Equal(t, "custom", out.Value())
}

func invoke(t *testing.T, name string, positional []reference.Reference,
	named map[string]reference.Reference) reference.Reference {
	t.Helper()
	h, ok := NewRegistry().LookupHelper(name, nil)
	require.True(t, ok, name)
	return h.(vm.Helper).Invoke(vm.NewArguments(positional, named))
}

func consts(vs ...any) []reference.Reference {
	out := make([]reference.Reference, len(vs))
	for i, v := range vs {
		out[i] = reference.Const(v)
	}
	return out
}

func TestBuiltinHelpers(t *testing.T) {
	tests := []struct {
		name       string
		positional []reference.Reference
		named      map[string]reference.Reference
		want       any
	}{
		{"eq", consts(1, 1), nil, true},
		{"eq", consts("a", "b"), nil, false},
		{"not", consts(""), nil, true},
		{"not", consts("x"), nil, false},
		{"if", consts(true, "yes", "no"), nil, "yes"},
		{"if", consts(0, "yes", "no"), nil, "no"},
		{"and", consts(1, "", 2), nil, ""},
		{"and", consts(1, 2), nil, 2},
		{"or", consts(0, "", "z"), nil, "z"},
		{"or", consts(0, false), nil, false},
		{"concat", consts("a", 1, nil), nil, "a1"},
		{"concat", consts("a", "b"), map[string]reference.Reference{"separator": reference.Const("-")}, "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := invoke(t, tt.name, tt.positional, tt.named)
			assert.True(t, out.IsConst())
			assert.Equal(t, tt.want, out.Value())
		})
	}
}

func TestPureHelperTracksInputs(t *testing.T) {
	m := tracked.NewMap(map[string]any{"a": "x"})
	arg := reference.Property(reference.Const(m), "a")
	out := invoke(t, "eq", []reference.Reference{arg, reference.Const("x")}, nil)
	assert.False(t, out.IsConst())
	assert.Equal(t, true, out.Value())

	m.Set("a", "y")
	assert.Equal(t, false, out.Value())
}
