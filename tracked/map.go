package tracked

import (
	"sort"

	"github.com/chazu/trellis/validator"
)

// Map is a string-keyed bag of tracked values. Each key owns its own tag,
// so readers of one key are not invalidated by writes to another.
type Map struct {
	cells map[string]*Cell[any]
	keys  *validator.DirtyableTag
}

// NewMap creates a map seeded with initial.
func NewMap(initial map[string]any) *Map {
	m := &Map{
		cells: make(map[string]*Cell[any], len(initial)),
		keys:  validator.NewDirtyableTag(),
	}
	for k, v := range initial {
		m.cells[k] = NewCell(v)
	}
	return m
}

func (m *Map) cell(key string) *Cell[any] {
	c, ok := m.cells[key]
	if !ok {
		// Reads of a missing key must still be invalidated by a later Set.
		c = NewCell[any](nil)
		m.cells[key] = c
	}
	return c
}

// GetProperty returns the value stored under key, consuming its tag.
func (m *Map) GetProperty(key string) any {
	return m.cell(key).Get()
}

// Set stores v under key.
func (m *Map) Set(key string, v any) {
	_, existed := m.cells[key]
	m.cell(key).Set(v)
	if !existed {
		validator.Dirty(m.keys)
	}
}

// Keys returns the sorted key set and consumes the key-set tag.
func (m *Map) Keys() []string {
	validator.ConsumeTag(m.keys)
	keys := make([]string, 0, len(m.cells))
	for k := range m.cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
