package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/tracked"
	"github.com/chazu/trellis/validator"
)

func TestConstReference(t *testing.T) {
	ref := Const(42)
	assert.True(t, ref.IsConst())
	assert.Equal(t, 42, ref.Value())
	assert.True(t, validator.IsConstant(ref.Tag()))
}

func TestComputeCachesUntilInputChanges(t *testing.T) {
	cell := tracked.NewCell(1)
	calls := 0
	ref := Compute("double", func() any {
		calls++
		return cell.Get() * 2
	})

	assert.Equal(t, 2, ref.Value())
	assert.Equal(t, 2, ref.Value())
	assert.Equal(t, 1, calls)

	cell.Set(5)
	assert.Equal(t, 10, ref.Value())
	assert.Equal(t, 2, calls)
}

func TestComputeTagDominatesInputs(t *testing.T) {
	a := tracked.NewCell("a")
	b := tracked.NewCell("b")
	ref := Compute("concat", func() any { return a.Get() + b.Get() })

	tag := ref.Tag()
	snapshot := validator.ValueForTag(tag)
	b.Set("B")
	assert.False(t, validator.ValidateTag(tag, snapshot))
}

func TestComputeValuePropagatesToOuterFrame(t *testing.T) {
	cell := tracked.NewCell(1)
	inner := Compute("inner", func() any { return cell.Get() })

	outer := validator.Track("outer", func() { inner.Value() })
	snapshot := validator.ValueForTag(outer)
	cell.Set(2)
	assert.False(t, validator.ValidateTag(outer, snapshot))

	// A cached read still consumes the tag.
	inner.Value()
	again := validator.Track("again", func() { inner.Value() })
	assert.False(t, validator.IsConstant(again))
}

type person struct {
	FirstName string
	Age       int
}

func TestGet(t *testing.T) {
	m := tracked.NewMap(map[string]any{"name": "tom"})
	cases := []struct {
		name string
		obj  any
		key  string
		want any
	}{
		{"map", map[string]any{"a": 1}, "a", 1},
		{"map missing", map[string]any{}, "a", Undefined},
		{"typed map", map[string]int{"b": 2}, "b", 2},
		{"tracked", m, "name", "tom"},
		{"struct exact", person{FirstName: "ann"}, "FirstName", "ann"},
		{"struct camel", &person{FirstName: "ann"}, "firstName", "ann"},
		{"struct missing", person{}, "nope", Undefined},
		{"nil", nil, "x", Undefined},
		{"slice length", []int{1, 2, 3}, "length", 3},
		{"reference", Const(map[string]any{"x": "y"}), "x", "y"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Get(tc.obj, tc.key))
		})
	}
}

func TestPropertyTracksNestedCells(t *testing.T) {
	inner := tracked.NewMap(map[string]any{"city": "Oslo"})
	outer := tracked.NewMap(map[string]any{"address": inner})
	ref := Property(Property(Const(outer), "address"), "city")

	assert.Equal(t, "Oslo", ref.Value())
	inner.Set("city", "Bergen")
	assert.Equal(t, "Bergen", ref.Value())
}

func TestCacheReportsValueChanges(t *testing.T) {
	cell := tracked.NewCell(true)
	cache := NewCache(ToBool(Compute("flag", func() any { return cell.Get() })))
	require.Equal(t, true, cache.Peek())

	_, changed := cache.Revalidate()
	assert.False(t, changed, "nothing moved")

	cell.Set(false)
	cell.Set(true)
	v, changed := cache.Revalidate()
	assert.False(t, changed, "tag moved but value is the same")
	assert.Equal(t, true, v)

	cell.Set(false)
	v, changed = cache.Revalidate()
	assert.True(t, changed)
	assert.Equal(t, false, v)
}

func TestFilteredCacheComparesFilteredValues(t *testing.T) {
	items := []any{"a", "b"}
	m := tracked.NewMap(map[string]any{"items": items})
	ref := Property(Const(m), "items")
	clone := func(v any) any {
		list, _ := Items(v)
		return append([]any(nil), list...)
	}
	cache := NewFilteredCache(ref, ref.Value(), clone)

	items[0] = "z"
	m.Set("items", items)
	v, changed := cache.Revalidate()
	assert.True(t, changed, "in-place edit must not compare equal to the remembered list")
	assert.Equal(t, []any{"z", "b"}, v)

	m.Set("items", items)
	_, changed = cache.Revalidate()
	assert.False(t, changed)
}

func TestToBoolConstant(t *testing.T) {
	assert.Same(t, TrueReference, ToBool(Const("x")))
	assert.Same(t, FalseReference, ToBool(Const("")))
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, Undefined, false, "", 0, 0.0, []any{}, map[string]any{}, int64(0)}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
	truthy := []any{true, "x", 1, 2.5, []any{1}, map[string]int{"a": 1}, &person{}, person{}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestSame(t *testing.T) {
	assert.True(t, Same(nil, nil))
	assert.True(t, Same(1, 1))
	assert.False(t, Same(1, int64(1)))
	assert.True(t, Same([]any{1, "a"}, []any{1, "a"}))
	assert.False(t, Same([]any{1}, []any{2}))
	assert.True(t, Same(struct{ V any }{[]int{1}}, struct{ V any }{[]int{1}}))
}

func TestItems(t *testing.T) {
	items, ok := Items([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, items)

	_, ok = Items(5)
	assert.False(t, ok)

	items, ok = Items(nil)
	assert.True(t, ok)
	assert.Empty(t, items)
}
