package bytecode

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Handle is an index into a ConstantPool or a heap handle table.
type Handle int32

// ConstantPool interns values referenced by compiled programs. Values are
// immutable once interned and handles are stable for the pool's lifetime.
//
// Strings and string arrays are deduplicated by content. Other comparable
// values (resolved definitions, symbol tables, helpers) are deduplicated by
// identity; non-comparable values always get a fresh handle.
type ConstantPool struct {
	values  []any
	strings map[string]Handle
	arrays  map[uint64][]Handle
	objects map[any]Handle
}

// NewConstantPool creates an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		strings: make(map[string]Handle),
		arrays:  make(map[uint64][]Handle),
		objects: make(map[any]Handle),
	}
}

func (p *ConstantPool) push(v any) Handle {
	h := Handle(len(p.values))
	p.values = append(p.values, v)
	return h
}

// String interns s.
func (p *ConstantPool) String(s string) Handle {
	if h, ok := p.strings[s]; ok {
		return h
	}
	h := p.push(s)
	p.strings[s] = h
	return h
}

// Array interns a string array by content.
func (p *ConstantPool) Array(values []string) Handle {
	key := xxhash.Sum64String(strings.Join(values, "\x00"))
	for _, h := range p.arrays[key] {
		if equalStrings(p.values[h].([]string), values) {
			return h
		}
	}
	copied := append([]string(nil), values...)
	h := p.push(copied)
	p.arrays[key] = append(p.arrays[key], h)
	return h
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Value interns an arbitrary value.
func (p *ConstantPool) Value(v any) Handle {
	switch x := v.(type) {
	case string:
		return p.String(x)
	case []string:
		return p.Array(x)
	}
	if v != nil && reflect.TypeOf(v).Comparable() && isIdentity(v) {
		if h, ok := p.objects[v]; ok {
			return h
		}
		h := p.push(v)
		p.objects[v] = h
		return h
	}
	return p.push(v)
}

// isIdentity limits identity dedup to pointers and scalars; a struct with
// interface fields is comparable by type but may panic as a map key.
func isIdentity(v any) bool {
	switch reflect.TypeOf(v).Kind() {
	case reflect.Pointer, reflect.Bool, reflect.String,
		reflect.Int, reflect.Int32, reflect.Int64,
		reflect.Uint32, reflect.Uint64, reflect.Float64:
		return true
	}
	return false
}

// Get returns the value behind h.
func (p *ConstantPool) Get(h Handle) (any, error) {
	if h < 0 || int(h) >= len(p.values) {
		return nil, fmt.Errorf("constant handle %d out of range (pool size %d)", h, len(p.values))
	}
	return p.values[h], nil
}

// GetString returns the string behind h.
func (p *ConstantPool) GetString(h Handle) (string, error) {
	v, err := p.Get(h)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("constant %d: expected string, got %T", h, v)
	}
	return s, nil
}

// GetArray returns the string array behind h.
func (p *ConstantPool) GetArray(h Handle) ([]string, error) {
	v, err := p.Get(h)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("constant %d: expected string array, got %T", h, v)
	}
	return a, nil
}

// Len returns the number of interned values.
func (p *ConstantPool) Len() int {
	return len(p.values)
}
