package host

import (
	"strings"

	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/vm"
)

// Pure wraps fn as a helper over argument values. The result is constant
// when every argument is, and otherwise recomputed when an input changes.
func Pure(name string, fn func(positional []any, named map[string]any) any) vm.Helper {
	return vm.HelperFunc(func(args *vm.Arguments) reference.Reference {
		compute := func() any { return fn(args.Values(), args.NamedValues()) }
		if args.IsConst() {
			return reference.Const(compute())
		}
		return reference.Compute(name, compute)
	})
}

func at(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return reference.Undefined
}

var builtinHelpers = map[string]vm.Helper{
	"eq": Pure("eq", func(p []any, _ map[string]any) any {
		return reference.Same(at(p, 0), at(p, 1))
	}),
	"not": Pure("not", func(p []any, _ map[string]any) any {
		return !reference.Truthy(at(p, 0))
	}),
	"if": Pure("if", func(p []any, _ map[string]any) any {
		if reference.Truthy(at(p, 0)) {
			return at(p, 1)
		}
		return at(p, 2)
	}),
	"and": Pure("and", func(p []any, _ map[string]any) any {
		var last any = true
		for _, v := range p {
			if !reference.Truthy(v) {
				return v
			}
			last = v
		}
		return last
	}),
	"or": Pure("or", func(p []any, _ map[string]any) any {
		var last any = false
		for _, v := range p {
			if reference.Truthy(v) {
				return v
			}
			last = v
		}
		return last
	}),
	"concat": Pure("concat", func(p []any, named map[string]any) any {
		parts := make([]string, len(p))
		for i, v := range p {
			parts[i] = dom.NormalizeString(v)
		}
		sep, _ := named["separator"].(string)
		return strings.Join(parts, sep)
	}),
}
