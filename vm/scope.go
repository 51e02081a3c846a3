package vm

import (
	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/reference"
)

// BlockValue is a block bound into a scope slot: the block's symbol table,
// the scope it closes over and the compilable that implements it.
type BlockValue struct {
	Table      *compiler.BlockSymbolTable
	Scope      *Scope
	Compilable *compiler.CompilableTemplate
}

// Scope holds the symbol slots of one invocation. Slot 0 is self; every
// other slot holds a reference, a *BlockValue or nothing.
type Scope struct {
	slots []any

	// evalTable maps free names to slots in templates compiled with eval.
	evalTable map[string]int
}

func newRootScope(size int, self reference.Reference) *Scope {
	s := &Scope{slots: make([]any, max(size, 1))}
	s.slots[0] = self
	return s
}

// child copies the slots so bindings made by the child stay local to it.
func (s *Scope) child() *Scope {
	return &Scope{
		slots:     append([]any(nil), s.slots...),
		evalTable: s.evalTable,
	}
}

func (s *Scope) grow(symbol int) {
	if symbol >= len(s.slots) {
		s.slots = append(s.slots, make([]any, symbol+1-len(s.slots))...)
	}
}

func (s *Scope) bind(symbol int, v any) {
	s.grow(symbol)
	s.slots[symbol] = v
}

// Self returns the reference in slot 0.
func (s *Scope) Self() reference.Reference {
	return s.getSymbol(0)
}

func (s *Scope) getSymbol(symbol int) reference.Reference {
	if symbol < len(s.slots) {
		if ref, ok := s.slots[symbol].(reference.Reference); ok {
			return ref
		}
	}
	return reference.UndefinedReference
}

func (s *Scope) getBlock(symbol int) *BlockValue {
	if symbol < len(s.slots) {
		if b, ok := s.slots[symbol].(*BlockValue); ok {
			return b
		}
	}
	return nil
}

// lookupEval resolves a free name through the eval table.
func (s *Scope) lookupEval(name string) (reference.Reference, bool) {
	slot, ok := s.evalTable[name]
	if !ok {
		return nil, false
	}
	return s.getSymbol(slot), true
}

// DynamicScope is a bucket of dynamic variables. Children start with a copy
// of their parent's bucket.
type DynamicScope struct {
	vars map[string]reference.Reference
}

// NewDynamicScope creates a dynamic scope holding vars.
func NewDynamicScope(vars map[string]reference.Reference) *DynamicScope {
	d := &DynamicScope{vars: make(map[string]reference.Reference, len(vars))}
	for k, v := range vars {
		d.vars[k] = v
	}
	return d
}

func (d *DynamicScope) child() *DynamicScope {
	return NewDynamicScope(d.vars)
}

// Get returns the reference bound to name.
func (d *DynamicScope) Get(name string) (reference.Reference, bool) {
	ref, ok := d.vars[name]
	return ref, ok
}

// Set binds name in this scope only.
func (d *DynamicScope) Set(name string, ref reference.Reference) {
	d.vars[name] = ref
}
