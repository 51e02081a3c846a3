package tracked

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/trellis/validator"
)

func TestCellGetConsumes(t *testing.T) {
	c := NewCell(1)

	var got int
	tag := validator.Track("cell", func() { got = c.Get() })
	snapshot := validator.ValueForTag(tag)

	assert.Equal(t, 1, got)
	assert.True(t, validator.ValidateTag(tag, snapshot))

	c.Set(2)
	assert.False(t, validator.ValidateTag(tag, snapshot))
	assert.Equal(t, 2, c.Peek())
}

func TestCellPeekDoesNotConsume(t *testing.T) {
	c := NewCell("x")
	tag := validator.Track("peek", func() { c.Peek() })
	assert.True(t, validator.IsConstant(tag))
}

func TestMapKeysAreIndependent(t *testing.T) {
	m := NewMap(map[string]any{"a": 1, "b": 2})

	tag := validator.Track("a", func() { m.GetProperty("a") })
	snapshot := validator.ValueForTag(tag)

	m.Set("b", 3)
	assert.True(t, validator.ValidateTag(tag, snapshot))

	m.Set("a", 4)
	assert.False(t, validator.ValidateTag(tag, snapshot))
}

func TestMapMissingKeyIsTracked(t *testing.T) {
	m := NewMap(nil)

	var got any
	tag := validator.Track("missing", func() { got = m.GetProperty("late") })
	snapshot := validator.ValueForTag(tag)
	assert.Nil(t, got)

	m.Set("late", "here")
	assert.False(t, validator.ValidateTag(tag, snapshot))
	assert.Equal(t, []string{"late"}, m.Keys())
}
