// Package tracked provides storage whose reads are recorded by the
// validator and whose writes invalidate the readers.
package tracked

import "github.com/chazu/trellis/validator"

// Cell holds one value of type T.
type Cell[T any] struct {
	value T
	tag   *validator.DirtyableTag
}

// NewCell creates a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v, tag: validator.NewDirtyableTag()}
}

// Get returns the value and consumes the cell's tag.
func (c *Cell[T]) Get() T {
	validator.ConsumeTag(c.tag)
	return c.value
}

// Peek returns the value without recording a dependency.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Set stores v. Every Set is one mutation, even when v equals the old value.
func (c *Cell[T]) Set(v T) {
	c.value = v
	validator.Dirty(c.tag)
}

// Tag returns the cell's tag.
func (c *Cell[T]) Tag() validator.Tag {
	return c.tag
}
