package host

import (
	"context"

	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/vm"
)

// DefaultClassCapabilities is used by a Class that sets none.
const DefaultClassCapabilities = compiler.CreateInstance | compiler.CreateArgs | compiler.DynamicScope |
	compiler.CreateCaller | compiler.UpdateHook | compiler.WillDestroy | compiler.ElementHook

// Class describes a component backed by a Go value.
type Class struct {
	// New builds the backing object. args stay live: reading them later
	// sees their current values.
	New func(args *vm.Arguments) any

	// Capabilities overrides DefaultClassCapabilities when non-zero.
	Capabilities compiler.Capabilities

	// PrepareArgs, when set, rewrites arguments before New runs. It only
	// takes effect with the PrepareArgs capability.
	PrepareArgs func(args *vm.Arguments) *vm.Arguments

	// Layout, when set, is returned for the DynamicLayout capability.
	Layout *compiler.CompilableTemplate
}

// Hooks a backing object may implement.
type (
	Inserter interface {
		DidInsert(bounds vm.Bounds)
	}
	Updater interface {
		WillUpdate()
	}
	DidUpdater interface {
		DidUpdate()
	}
	Destroyer interface {
		WillDestroy()
	}
	ElementReceiver interface {
		DidReceiveElement(element dom.Node)
	}
)

// Lifecycle states of a class instance.
const (
	StateCreated   = "created"
	StateRendered  = "rendered"
	StateInserted  = "inserted"
	StateUpdating  = "updating"
	StateDestroyed = "destroyed"
)

const (
	triggerRender  = "render"
	triggerInsert  = "insert"
	triggerUpdate  = "update"
	triggerSettle  = "settle"
	triggerDestroy = "destroy"
)

// ClassInstance is the state the VM keeps for one class component.
type ClassInstance struct {
	Object          any
	Args            *vm.Arguments
	DynamicScope    *vm.DynamicScope
	Caller          reference.Reference
	HasDefaultBlock bool

	class     *Class
	bounds    vm.Bounds
	lifecycle *stateless.StateMachine
}

// State returns the lifecycle state.
func (i *ClassInstance) State() string {
	return i.lifecycle.MustState().(string)
}

// Bounds returns the nodes the layout rendered, once it has.
func (i *ClassInstance) Bounds() vm.Bounds {
	return i.bounds
}

func newLifecycle(i *ClassInstance) *stateless.StateMachine {
	sm := stateless.NewStateMachine(StateCreated)
	sm.Configure(StateCreated).
		Permit(triggerRender, StateRendered).
		Permit(triggerDestroy, StateDestroyed)
	sm.Configure(StateRendered).
		OnEntryFrom(triggerRender, func(_ context.Context, args ...any) error {
			i.bounds, _ = args[0].(vm.Bounds)
			return nil
		}).
		Permit(triggerInsert, StateInserted).
		Permit(triggerDestroy, StateDestroyed)
	sm.Configure(StateInserted).
		OnEntryFrom(triggerInsert, func(context.Context, ...any) error {
			if h, ok := i.Object.(Inserter); ok {
				h.DidInsert(i.bounds)
			}
			return nil
		}).
		OnEntryFrom(triggerSettle, func(context.Context, ...any) error {
			if h, ok := i.Object.(DidUpdater); ok {
				h.DidUpdate()
			}
			return nil
		}).
		Permit(triggerUpdate, StateUpdating).
		Permit(triggerDestroy, StateDestroyed).
		Ignore(triggerSettle)
	sm.Configure(StateUpdating).
		OnEntry(func(context.Context, ...any) error {
			if h, ok := i.Object.(Updater); ok {
				h.WillUpdate()
			}
			return nil
		}).
		Permit(triggerSettle, StateInserted).
		Permit(triggerDestroy, StateDestroyed).
		Ignore(triggerUpdate)
	sm.Configure(StateDestroyed).
		OnEntry(func(context.Context, ...any) error {
			if h, ok := i.Object.(Destroyer); ok {
				h.WillDestroy()
			}
			return nil
		}).
		Ignore(triggerRender).
		Ignore(triggerInsert).
		Ignore(triggerUpdate).
		Ignore(triggerSettle).
		Ignore(triggerDestroy)
	return sm
}

func (i *ClassInstance) fire(trigger string, args ...any) {
	if err := i.lifecycle.Fire(trigger, args...); err != nil {
		log.Errorf("component lifecycle: %s in state %s: %s", trigger, i.State(), err)
	}
}

// ClassManager manages components described by a *Class definition state.
type ClassManager struct{}

var (
	_ vm.ComponentManager = ClassManager{}
	_ vm.LayoutProvider   = ClassManager{}
	_ vm.ArgsPreparer     = ClassManager{}
	_ vm.ElementHook      = ClassManager{}
	_ vm.LayoutHook       = ClassManager{}
	_ vm.UpdateHook       = ClassManager{}
	_ vm.CreateHook       = ClassManager{}
	_ vm.DestructorHook   = ClassManager{}
)

func class(state any) *Class {
	c, _ := state.(*Class)
	return c
}

// Capabilities implements compiler.Manager.
func (ClassManager) Capabilities(state any) compiler.Capabilities {
	if c := class(state); c != nil && c.Capabilities != 0 {
		return c.Capabilities
	}
	return DefaultClassCapabilities
}

// Create builds the backing object.
func (ClassManager) Create(_ *vm.Environment, state any, args *vm.Arguments, dynamicScope *vm.DynamicScope,
	caller reference.Reference, hasDefaultBlock bool) (any, error) {
	c := class(state)
	if c == nil || c.New == nil {
		return nil, errors.Errorf("host: class definition %T has no constructor", state)
	}
	inst := &ClassInstance{
		Object:          c.New(args),
		Args:            args,
		DynamicScope:    dynamicScope,
		Caller:          caller,
		HasDefaultBlock: hasDefaultBlock,
		class:           c,
	}
	inst.lifecycle = newLifecycle(inst)
	return inst, nil
}

// GetSelf returns the backing object.
func (ClassManager) GetSelf(instance any) reference.Reference {
	inst, ok := instance.(*ClassInstance)
	if !ok || inst.Object == nil {
		return reference.NullReference
	}
	return reference.Const(inst.Object)
}

// Layout implements vm.LayoutProvider.
func (ClassManager) Layout(instance any) *compiler.CompilableTemplate {
	if inst := instanceOf(instance); inst != nil {
		return inst.class.Layout
	}
	return nil
}

// PrepareArgs implements vm.ArgsPreparer.
func (ClassManager) PrepareArgs(state any, args *vm.Arguments) *vm.Arguments {
	if c := class(state); c != nil && c.PrepareArgs != nil {
		return c.PrepareArgs(args)
	}
	return nil
}

func instanceOf(v any) *ClassInstance {
	inst, _ := v.(*ClassInstance)
	return inst
}

// DidCreateElement implements vm.ElementHook.
func (ClassManager) DidCreateElement(instance any, element dom.Node) {
	if inst := instanceOf(instance); inst != nil {
		if h, ok := inst.Object.(ElementReceiver); ok {
			h.DidReceiveElement(element)
		}
	}
}

// DidRenderLayout implements vm.LayoutHook.
func (ClassManager) DidRenderLayout(instance any, bounds vm.Bounds) {
	if inst := instanceOf(instance); inst != nil {
		inst.fire(triggerRender, bounds)
	}
}

// DidCreate implements vm.CreateHook.
func (ClassManager) DidCreate(instance any) {
	if inst := instanceOf(instance); inst != nil {
		inst.fire(triggerInsert)
	}
}

// Update implements vm.UpdateHook.
func (ClassManager) Update(instance any, dynamicScope *vm.DynamicScope) {
	if inst := instanceOf(instance); inst != nil {
		if dynamicScope != nil {
			inst.DynamicScope = dynamicScope
		}
		inst.fire(triggerUpdate)
	}
}

// DidUpdate implements vm.UpdateHook.
func (ClassManager) DidUpdate(instance any) {
	if inst := instanceOf(instance); inst != nil {
		inst.fire(triggerSettle)
	}
}

// Destroy implements vm.DestructorHook.
func (ClassManager) Destroy(instance any) {
	if inst := instanceOf(instance); inst != nil {
		inst.fire(triggerDestroy)
	}
}
