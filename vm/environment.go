package vm

import (
	"github.com/pkg/errors"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
)

// Environment is what a render pass shares with component managers: the
// output tree, the resolver and the queue of lifecycle hooks that fire
// when the pass commits.
type Environment struct {
	Builder  dom.TreeBuilder
	Resolver compiler.Resolver

	inTransaction bool
	created       []*componentInstance
	updated       []*componentInstance
}

// NewEnvironment creates an environment over builder.
func NewEnvironment(builder dom.TreeBuilder, resolver compiler.Resolver) *Environment {
	return &Environment{Builder: builder, Resolver: resolver}
}

func (e *Environment) begin() error {
	if e.inTransaction {
		return errors.New("vm: environment transaction already open")
	}
	e.inTransaction = true
	return nil
}

func (e *Environment) didCreate(inst *componentInstance) {
	if _, ok := inst.manager.(CreateHook); ok {
		e.created = append(e.created, inst)
	}
}

func (e *Environment) didUpdate(inst *componentInstance) {
	if _, ok := inst.manager.(UpdateHook); ok && inst.has(compiler.UpdateHook) {
		e.updated = append(e.updated, inst)
	}
}

// commit runs DidCreate hooks, then DidUpdate hooks, each in queue order.
func (e *Environment) commit() {
	created, updated := e.created, e.updated
	e.created, e.updated, e.inTransaction = nil, nil, false
	for _, inst := range created {
		inst.manager.(CreateHook).DidCreate(inst.state)
	}
	for _, inst := range updated {
		inst.manager.(UpdateHook).DidUpdate(inst.state)
	}
}
