package vm

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/chazu/trellis/reference"
)

// Arguments are the evaluated arguments of a helper or component
// invocation. Named arguments and blocks keep their source order.
type Arguments struct {
	Positional []reference.Reference
	Named      *orderedmap.OrderedMap[string, reference.Reference]
	Blocks     *orderedmap.OrderedMap[string, *BlockValue]
}

// NewArguments creates arguments from positional references and named
// references. Map order is not preserved; use Named.Set for ordered input.
func NewArguments(positional []reference.Reference, named map[string]reference.Reference) *Arguments {
	args := emptyArguments()
	args.Positional = append(args.Positional, positional...)
	for k, v := range named {
		args.Named.Set(k, v)
	}
	return args
}

func emptyArguments() *Arguments {
	return &Arguments{
		Named:  orderedmap.NewOrderedMap[string, reference.Reference](),
		Blocks: orderedmap.NewOrderedMap[string, *BlockValue](),
	}
}

// At returns positional argument i, or an undefined reference.
func (a *Arguments) At(i int) reference.Reference {
	if i < 0 || i >= len(a.Positional) {
		return reference.UndefinedReference
	}
	return a.Positional[i]
}

// Get returns named argument name, or an undefined reference.
func (a *Arguments) Get(name string) reference.Reference {
	if ref, ok := a.Named.Get(name); ok {
		return ref
	}
	return reference.UndefinedReference
}

// Values reads every positional argument.
func (a *Arguments) Values() []any {
	out := make([]any, len(a.Positional))
	for i, ref := range a.Positional {
		out[i] = ref.Value()
	}
	return out
}

// NamedValues reads every named argument.
func (a *Arguments) NamedValues() map[string]any {
	out := make(map[string]any, a.Named.Len())
	for el := a.Named.Front(); el != nil; el = el.Next() {
		out[el.Key] = el.Value.Value()
	}
	return out
}

// capture copies the argument lists so later stack traffic cannot alias
// them. The references themselves are shared.
func (a *Arguments) capture() *Arguments {
	out := emptyArguments()
	out.Positional = append(out.Positional, a.Positional...)
	for el := a.Named.Front(); el != nil; el = el.Next() {
		out.Named.Set(el.Key, el.Value)
	}
	for el := a.Blocks.Front(); el != nil; el = el.Next() {
		out.Blocks.Set(el.Key, el.Value)
	}
	return out
}

func (a *Arguments) setNamed(from *Arguments) {
	for el := from.Named.Front(); el != nil; el = el.Next() {
		a.Named.Set(el.Key, el.Value)
	}
}

// IsConst reports whether every argument is constant.
func (a *Arguments) IsConst() bool {
	for _, ref := range a.Positional {
		if !ref.IsConst() {
			return false
		}
	}
	for el := a.Named.Front(); el != nil; el = el.Next() {
		if !el.Value.IsConst() {
			return false
		}
	}
	return true
}
