package compiler

import "strings"

// Reserved symbol names.
const (
	AttrsBlock   = "&attrs"
	DefaultBlock = "&default"
	ElseBlock    = "&else"
)

// ProgramSymbolTable is the symbol table of a template or layout. Slot 0
// is self; Symbols[i] names slot i+1.
type ProgramSymbolTable struct {
	Symbols []string
	HasEval bool
}

// Size returns the number of scope slots a root scope needs.
func (t *ProgramSymbolTable) Size() int {
	return len(t.Symbols) + 1
}

// Slot returns the scope slot of name, or -1.
func (t *ProgramSymbolTable) Slot(name string) int {
	for i, s := range t.Symbols {
		if s == name {
			return i + 1
		}
	}
	return -1
}

// Named returns the @-prefixed symbols with their slots.
func (t *ProgramSymbolTable) Named() map[string]int {
	return t.prefixed("@")
}

// Blocks returns the &-prefixed symbols with their slots.
func (t *ProgramSymbolTable) Blocks() map[string]int {
	return t.prefixed("&")
}

func (t *ProgramSymbolTable) prefixed(p string) map[string]int {
	out := make(map[string]int)
	for i, s := range t.Symbols {
		if strings.HasPrefix(s, p) {
			out[s[1:]] = i + 1
		}
	}
	return out
}

// BlockSymbolTable is the symbol table of a block: the slots its
// positional parameters bind to.
type BlockSymbolTable struct {
	Parameters []int
}

// ContainingMetadata describes the template a block belongs to.
type ContainingMetadata struct {
	// Referrer identifies the template to the resolver.
	Referrer any

	// Symbols of the enclosing template.
	Symbols []string

	// HasEval marks templates that look names up at run time.
	HasEval bool

	// Layout marks component layouts; element hooks only fire there.
	Layout bool
}
