package vm

import (
	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
)

// ComponentManager implements a family of components. Capabilities gate
// which of the optional hook interfaces below the VM consults.
type ComponentManager interface {
	compiler.Manager

	// Create makes the component state. Only called with CreateInstance.
	// dynamicScope is nil unless the manager has DynamicScope, caller is
	// nil unless it has CreateCaller.
	Create(env *Environment, state any, args *Arguments, dynamicScope *DynamicScope,
		caller reference.Reference, hasDefaultBlock bool) (any, error)

	// GetSelf returns the self reference of the layout.
	GetSelf(instance any) reference.Reference
}

// LayoutProvider supplies the layout of a created instance at run time
// (DynamicLayout). A nil result falls back to the definition's layout.
type LayoutProvider interface {
	Layout(instance any) *compiler.CompilableTemplate
}

// ArgsPreparer rewrites arguments before creation (PrepareArgs). A nil
// result keeps the original arguments.
type ArgsPreparer interface {
	PrepareArgs(state any, args *Arguments) *Arguments
}

// ElementHook sees the element that received ...attributes (ElementHook).
type ElementHook interface {
	DidCreateElement(instance any, element dom.Node)
}

// LayoutHook sees the rendered bounds of the layout (CreateInstance).
type LayoutHook interface {
	DidRenderLayout(instance any, bounds Bounds)
}

// UpdateHook is told about update passes (UpdateHook).
type UpdateHook interface {
	Update(instance any, dynamicScope *DynamicScope)
	DidUpdate(instance any)
}

// CreateHook runs when the environment transaction that created the
// instance commits.
type CreateHook interface {
	DidCreate(instance any)
}

// DestructorHook runs when the instance's region is torn down
// (WillDestroy).
type DestructorHook interface {
	Destroy(instance any)
}

// CurriedComponent is a component value with some arguments already bound.
// Inner is a *compiler.ComponentDefinition or another *CurriedComponent.
type CurriedComponent struct {
	Inner any
	Args  *Arguments
}

// NewCurriedComponent binds args to def. A nil args binds nothing.
func NewCurriedComponent(def any, args *Arguments) *CurriedComponent {
	if args == nil {
		args = emptyArguments()
	}
	return &CurriedComponent{Inner: def, Args: args}
}

// definition unwraps to the innermost definition.
func (c *CurriedComponent) definition() *compiler.ComponentDefinition {
	var v any = c
	for {
		switch x := v.(type) {
		case *CurriedComponent:
			v = x.Inner
		case *compiler.ComponentDefinition:
			return x
		default:
			return nil
		}
	}
}

// chain lists the curried layers from innermost to outermost.
func (c *CurriedComponent) chain() []*CurriedComponent {
	var out []*CurriedComponent
	for v := any(c); ; {
		cc, ok := v.(*CurriedComponent)
		if !ok {
			break
		}
		out = append([]*CurriedComponent{cc}, out...)
		v = cc.Inner
	}
	return out
}

// Helper computes a value from its arguments.
type Helper interface {
	Invoke(args *Arguments) reference.Reference
}

// HelperFunc adapts a function to Helper.
type HelperFunc func(args *Arguments) reference.Reference

// Invoke calls f.
func (f HelperFunc) Invoke(args *Arguments) reference.Reference {
	return f(args)
}

// componentInstance is the per-invocation record kept in $s0.
type componentInstance struct {
	definition   *compiler.ComponentDefinition
	manager      ComponentManager
	capabilities compiler.Capabilities
	curried      *CurriedComponent
	state        any
	table        *compiler.ProgramSymbolTable
	handle       bytecode.Handle
}

func newComponentInstance(op bytecode.Op, v any) (*componentInstance, error) {
	inst := &componentInstance{handle: -1}
	switch x := v.(type) {
	case *compiler.ComponentDefinition:
		inst.definition = x
	case *CurriedComponent:
		inst.curried = x
		inst.definition = x.definition()
	}
	if inst.definition == nil {
		return nil, internal(op.Code, "component definition", v)
	}
	mgr, ok := inst.definition.Manager.(ComponentManager)
	if !ok {
		return nil, internal(op.Code, "component manager", inst.definition.Manager)
	}
	inst.manager = mgr
	inst.capabilities = inst.definition.Capabilities()
	if inst.definition.Layout != nil {
		inst.table = inst.definition.Layout.Program
	}
	return inst, nil
}

func (c *componentInstance) has(caps compiler.Capabilities) bool {
	return c.capabilities.Has(caps)
}

// isComponentValue reports whether v can be invoked as a component.
func isComponentValue(v any) bool {
	switch v.(type) {
	case *compiler.ComponentDefinition, *CurriedComponent:
		return true
	}
	return false
}
