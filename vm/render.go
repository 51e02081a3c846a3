package vm

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/validator"
)

// Runtime ties a program, its dispatch table and an environment together.
type Runtime struct {
	Context *compiler.Context
	Env     *Environment

	dispatch *DispatchTable
}

// NewRuntime creates a runtime that compiles into ctx and renders through
// builder. A nil table gets a fresh NewDispatchTable.
func NewRuntime(ctx *compiler.Context, builder dom.TreeBuilder, table *DispatchTable) *Runtime {
	if table == nil {
		table = NewDispatchTable()
	}
	return &Runtime{
		Context:  ctx,
		Env:      NewEnvironment(builder, ctx.Resolver),
		dispatch: table,
	}
}

type renderOptions struct {
	nextSibling      dom.Node
	dynamicVars      map[string]reference.Reference
	alwaysRevalidate bool
}

// RenderOption adjusts a render.
type RenderOption func(*renderOptions)

// WithNextSibling inserts the output before next instead of appending.
func WithNextSibling(next dom.Node) RenderOption {
	return func(o *renderOptions) { o.nextSibling = next }
}

// WithDynamicVars seeds the root dynamic scope.
func WithDynamicVars(vars map[string]reference.Reference) RenderOption {
	return func(o *renderOptions) { o.dynamicVars = vars }
}

// WithAlwaysRevalidate makes every rerender visit every cache group.
func WithAlwaysRevalidate() RenderOption {
	return func(o *renderOptions) { o.alwaysRevalidate = true }
}

// RenderResult is a rendered template that can be brought up to date or
// torn down.
type RenderResult struct {
	ID uuid.UUID

	runtime          *Runtime
	handle           bytecode.Handle
	size             int
	self             reference.Reference
	dynamicScope     *DynamicScope
	alwaysRevalidate bool

	block    *liveBlock
	owner    *owner
	updating []updatingOp
}

// Render compiles main if needed and appends its output to parent.
func (r *Runtime) Render(main *compiler.CompilableTemplate, parent dom.Node, self reference.Reference,
	opts ...RenderOption) (*RenderResult, error) {
	if main.Program == nil {
		return nil, errors.Errorf("vm: %s is not a template", main)
	}
	var o renderOptions
	for _, opt := range opts {
		opt(&o)
	}
	h, err := main.Compile(r.Context)
	if err != nil {
		return nil, err
	}
	if self == nil {
		self = reference.UndefinedReference
	}
	res := &RenderResult{
		ID:               uuid.New(),
		runtime:          r,
		handle:           h,
		size:             main.Program.Size(),
		self:             self,
		dynamicScope:     NewDynamicScope(o.dynamicVars),
		alwaysRevalidate: o.alwaysRevalidate,
		block:            &liveBlock{parent: parent},
		owner:            &owner{},
	}

	err = validator.RunInTransaction("render", func() error {
		if err := r.Env.begin(); err != nil {
			return err
		}
		err := res.run(o.nextSibling)
		r.Env.commit()
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("rendered %s as %s (%d updating ops)", main, res.ID, len(res.updating))
	return res, nil
}

func (res *RenderResult) run(nextSibling dom.Node) error {
	r := res.runtime
	vm := r.newVM(newElementBuilder(r.Env.Builder, res.block.parent, nextSibling))
	vm.pushScope(newRootScope(res.size, res.self))
	vm.dynamicScopes = []*DynamicScope{res.dynamicScope}
	vm.elements.pushBlock(res.block)
	vm.lists = []*[]updatingOp{&res.updating}
	vm.owners = []*owner{res.owner}
	if err := vm.call(res.handle); err != nil {
		return err
	}
	if err := vm.execute(); err != nil {
		return err
	}
	_, err := vm.elements.popBlock()
	return err
}

// Bounds returns the nodes the render produced.
func (res *RenderResult) Bounds() Bounds {
	return res.block
}

// Rerender brings the output up to date with every mutation made since the
// last pass. Regions whose inputs did not change are not visited.
func (res *RenderResult) Rerender() error {
	env := res.runtime.Env
	return validator.RunInTransaction("rerender", func() error {
		if err := env.begin(); err != nil {
			return err
		}
		u := newUpdatingVM(res.runtime, res.alwaysRevalidate)
		err := u.execute(res.updating, res)
		env.commit()
		return errors.Wrapf(err, "vm: rerender %s", res.ID)
	})
}

// handleException re-renders everything from scratch.
func (res *RenderResult) handleException(*UpdatingVM) error {
	log.Debugf("full re-render of %s", res.ID)
	res.owner.destroy()
	next := res.block.clear(res.runtime.Env.Builder)
	res.block.reset()
	res.updating = nil
	return res.run(next)
}

// Destroy runs every destructor registered by the render, innermost first,
// and removes the rendered nodes.
func (res *RenderResult) Destroy() {
	res.owner.destroy()
	res.block.clear(res.runtime.Env.Builder)
	res.block.reset()
	res.updating = nil
}
