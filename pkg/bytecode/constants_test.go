package bytecode

import (
	"testing"
)

func TestStringsAreInterned(t *testing.T) {
	p := NewConstantPool()
	a := p.String("hello")
	b := p.String("world")
	c := p.String("hello")

	if a != c {
		t.Errorf("duplicate string got handles %d and %d", a, c)
	}
	if a == b {
		t.Error("distinct strings share a handle")
	}
	if s, err := p.GetString(b); err != nil || s != "world" {
		t.Errorf("GetString(%d) = %q, %v", b, s, err)
	}
}

func TestArraysAreInternedByContent(t *testing.T) {
	p := NewConstantPool()
	src := []string{"@a", "&attrs"}
	a := p.Array(src)
	b := p.Array([]string{"@a", "&attrs"})
	c := p.Array([]string{"@a"})

	if a != b {
		t.Errorf("equal arrays got handles %d and %d", a, b)
	}
	if a == c {
		t.Error("different arrays share a handle")
	}

	src[0] = "mutated"
	got, _ := p.GetArray(a)
	if got[0] != "@a" {
		t.Errorf("pool value aliased caller slice: %v", got)
	}
}

func TestObjectsAreInternedByIdentity(t *testing.T) {
	type table struct{ symbols []string }
	p := NewConstantPool()
	x, y := &table{}, &table{}

	if p.Value(x) != p.Value(x) {
		t.Error("same pointer got two handles")
	}
	if p.Value(x) == p.Value(y) {
		t.Error("distinct pointers share a handle")
	}
	if p.Value("s") != p.String("s") {
		t.Error("Value(string) should route to String")
	}
}

func TestGetOutOfRange(t *testing.T) {
	p := NewConstantPool()
	if _, err := p.Get(3); err == nil {
		t.Error("expected error for missing handle")
	}
	h := p.Value(1.5)
	if _, err := p.GetString(h); err == nil {
		t.Error("expected type error")
	}
}

func TestPrimitiveEncoding(t *testing.T) {
	p := NewConstantPool()
	tests := []struct {
		value     any
		undefined bool
		kind      PrimitiveKind
	}{
		{7, false, PrimitiveNumber},
		{-3, false, PrimitiveNumber},
		{true, false, PrimitiveBool},
		{nil, false, PrimitiveNull},
		{nil, true, PrimitiveUndefined},
		{"s", false, PrimitiveString},
		{1.5, false, PrimitiveFloat},
		{MaxImmediate + 1, false, PrimitiveFloat},
	}
	for _, tt := range tests {
		enc, err := p.Primitive(tt.value, tt.undefined)
		if err != nil {
			t.Fatalf("Primitive(%v): %v", tt.value, err)
		}
		kind, payload := DecodePrimitive(enc)
		if kind != tt.kind {
			t.Errorf("Primitive(%v) kind = %d, want %d", tt.value, kind, tt.kind)
		}
		if tt.kind == PrimitiveNumber && int(payload) != tt.value.(int) {
			t.Errorf("Primitive(%v) payload = %d", tt.value, payload)
		}
	}
	if _, err := p.Primitive(struct{}{}, false); err == nil {
		t.Error("expected error for unsupported primitive")
	}
}
