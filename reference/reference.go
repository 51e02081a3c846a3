// Package reference implements References: lazily computed values paired
// with the tag that summarizes their inputs.
//
// The invariant every implementation maintains is that a reference's tag
// dominates every mutable cell read while computing its value. Reading a
// reference consumes its tag into the innermost open track frame, so
// derived references built on top of it inherit its dependencies.
package reference

import (
	"github.com/chazu/trellis/validator"
)

// Reference is a handle to a possibly-changing value.
type Reference interface {
	// Value computes (or returns the cached) value and consumes the tag.
	Value() any

	// Tag returns the tag summarizing the inputs of the current value.
	Tag() validator.Tag

	// IsConst reports whether the value can never change.
	IsConst() bool
}

// UndefinedValue is the type of Undefined.
type UndefinedValue struct{}

func (UndefinedValue) String() string { return "undefined" }

// Undefined is the value of missing symbols, arguments and properties. It
// is distinct from nil, which is an explicit null.
var Undefined = UndefinedValue{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedValue)
	return ok
}

type constRef struct {
	value any
}

// Const returns a reference whose value never changes.
func Const(v any) Reference {
	return &constRef{value: v}
}

func (r *constRef) Value() any         { return r.value }
func (r *constRef) Tag() validator.Tag { return validator.ConstantTag }
func (r *constRef) IsConst() bool      { return true }

// Shared constant references.
var (
	UndefinedReference = Const(Undefined)
	NullReference      = Const(nil)
	TrueReference      = Const(true)
	FalseReference     = Const(false)
	EmptyStringRef     = Const("")
)

type computeRef struct {
	label    string
	fn       func() any
	last     any
	tag      validator.Tag
	snapshot validator.Revision
	computed bool
}

// Compute returns a reference that runs fn inside a track frame and caches
// the result until one of the tags fn consumed changes.
func Compute(label string, fn func() any) Reference {
	return &computeRef{label: label, fn: fn}
}

func (r *computeRef) Value() any {
	if r.computed && validator.ValidateTag(r.tag, r.snapshot) {
		validator.ConsumeTag(r.tag)
		return r.last
	}
	var v any
	tag := validator.Track(r.label, func() { v = r.fn() })
	r.last, r.tag, r.computed = v, tag, true
	r.snapshot = validator.ValueForTag(tag)
	validator.ConsumeTag(tag)
	return v
}

func (r *computeRef) Tag() validator.Tag {
	if !r.computed {
		validator.Untrack(func() { r.Value() })
	}
	return r.tag
}

func (r *computeRef) IsConst() bool { return false }

// Property returns a reference to key on the value of parent.
func Property(parent Reference, key string) Reference {
	return Compute(key, func() any {
		return Get(parent.Value(), key)
	})
}

// ToBool returns a reference to the truthiness of ref. Constant in,
// constant out.
func ToBool(ref Reference) Reference {
	if ref.IsConst() {
		if Truthy(ref.Value()) {
			return TrueReference
		}
		return FalseReference
	}
	return Compute("to-bool", func() any {
		return Truthy(ref.Value())
	})
}
