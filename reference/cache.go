package reference

import (
	"reflect"

	"github.com/chazu/trellis/validator"
)

// Cache remembers the last value of a reference and reports whether it
// changed by value, not merely by tag. An optional filter maps every value
// read before it is remembered or compared.
type Cache struct {
	ref      Reference
	filter   func(any) any
	last     any
	snapshot validator.Revision
}

// NewCache reads ref once and remembers the result.
func NewCache(ref Reference) *Cache {
	return NewFilteredCache(ref, ref.Value(), nil)
}

// NewFilteredCache remembers v, a value the caller has just read from ref,
// passed through filter. A nil filter keeps values as they are.
func NewFilteredCache(ref Reference, v any, filter func(any) any) *Cache {
	if filter != nil {
		v = filter(v)
	}
	return &Cache{
		ref:      ref,
		filter:   filter,
		last:     v,
		snapshot: validator.ValueForTag(ref.Tag()),
	}
}

// Peek returns the remembered value.
func (c *Cache) Peek() any {
	return c.last
}

// Reference returns the cached reference.
func (c *Cache) Reference() Reference {
	return c.ref
}

// Revalidate recomputes the value if the tag moved and reports whether the
// value differs from the remembered one.
func (c *Cache) Revalidate() (any, bool) {
	tag := c.ref.Tag()
	if validator.ValidateTag(tag, c.snapshot) {
		validator.ConsumeTag(tag)
		return c.last, false
	}
	v := c.ref.Value()
	c.snapshot = validator.ValueForTag(c.ref.Tag())
	if c.filter != nil {
		v = c.filter(v)
	}
	if Same(v, c.last) {
		return v, false
	}
	c.last = v
	return v, true
}

// Same reports whether a and b are the same value. Comparable values use
// ==, everything else falls back to reflect.DeepEqual.
func Same(a, b any) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	defer func() {
		// Structs holding non-comparable dynamic values panic on ==.
		if recover() != nil {
			same = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}
