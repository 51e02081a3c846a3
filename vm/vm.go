package vm

import (
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
)

var log = commonlog.GetLogger("trellis.vm")

type frame struct {
	ra, fp int
}

// cacheGroup is an open component transaction.
type cacheGroup struct {
	guard *jumpIfNotModifiedOp
}

// VM is the append VM. One VM runs one pass over a unit (or, when resumed,
// over one replayable region) and is discarded afterwards.
type VM struct {
	runtime *Runtime
	program *bytecode.Program

	stack  []any
	frames []frame
	pc     int
	ra     int
	fp     int
	regs   [bytecode.RegV0 - bytecode.RegS0 + 1]any

	scopes        []*Scope
	dynamicScopes []*DynamicScope
	groups        []cacheGroup
	lists         []*[]updatingOp
	owners        []*owner
	elements      *ElementBuilder
}

func (r *Runtime) newVM(elements *ElementBuilder) *VM {
	return &VM{
		runtime:  r,
		program:  r.Context.Program,
		pc:       -1,
		ra:       -1,
		elements: elements,
	}
}

// execute runs until control returns past the outermost unit.
func (vm *VM) execute() error {
	for vm.pc != -1 {
		if vm.pc < 0 || vm.pc >= vm.program.Heap.Len() {
			return errors.Errorf("vm: pc %d outside the heap", vm.pc)
		}
		op := vm.program.Heap.At(vm.pc)
		vm.pc++
		if err := vm.runtime.dispatch.evaluate(vm, op); err != nil {
			return err
		}
	}
	return nil
}

// call jumps to the unit behind h, returning to the current pc.
func (vm *VM) call(h bytecode.Handle) error {
	addr, err := vm.program.Heap.Address(h)
	if err != nil {
		return errors.Wrap(err, "vm: call")
	}
	vm.ra = vm.pc
	vm.pc = addr
	return nil
}

func (vm *VM) pushFrame() {
	vm.frames = append(vm.frames, frame{ra: vm.ra, fp: vm.fp})
	vm.fp = len(vm.stack)
}

func (vm *VM) popFrame(op bytecode.Op) error {
	if len(vm.frames) == 0 {
		return internal(op.Code, "open frame", nil)
	}
	f := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if vm.fp <= len(vm.stack) {
		clear(vm.stack[vm.fp:])
		vm.stack = vm.stack[:vm.fp]
	}
	vm.ra, vm.fp = f.ra, f.fp
	return nil
}

func (vm *VM) push(v any) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop(op bytecode.Op) (any, error) {
	if len(vm.stack) == 0 {
		return nil, internal(op.Code, "non-empty stack", nil)
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack[len(vm.stack)-1] = nil
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek(op bytecode.Op) (any, error) {
	if len(vm.stack) == 0 {
		return nil, internal(op.Code, "non-empty stack", nil)
	}
	return vm.stack[len(vm.stack)-1], nil
}

func popAs[T any](vm *VM, op bytecode.Op, expected string) (T, error) {
	var zero T
	v, err := vm.pop(op)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, internal(op.Code, expected, v)
	}
	return t, nil
}

func peekAs[T any](vm *VM, op bytecode.Op, expected string) (T, error) {
	var zero T
	v, err := vm.peek(op)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, internal(op.Code, expected, v)
	}
	return t, nil
}

func (vm *VM) popRef(op bytecode.Op) (reference.Reference, error) {
	return popAs[reference.Reference](vm, op, "reference")
}

func (vm *VM) popArgs(op bytecode.Op) (*Arguments, error) {
	return popAs[*Arguments](vm, op, "arguments")
}

func (vm *VM) constant(op bytecode.Op, operand int32) (any, error) {
	v, err := vm.program.Constants.Get(bytecode.Handle(operand))
	if err != nil {
		return nil, errors.Wrapf(err, "vm: %s", op.Code)
	}
	return v, nil
}

func (vm *VM) constantString(op bytecode.Op, operand int32) (string, error) {
	s, err := vm.program.Constants.GetString(bytecode.Handle(operand))
	if err != nil {
		return "", errors.Wrapf(err, "vm: %s", op.Code)
	}
	return s, nil
}

func (vm *VM) fetch(op bytecode.Op, r bytecode.Register) (any, error) {
	switch r {
	case bytecode.RegPC:
		return vm.pc, nil
	case bytecode.RegRA:
		return vm.ra, nil
	case bytecode.RegFP:
		return vm.fp, nil
	case bytecode.RegSP:
		return len(vm.stack) - 1, nil
	}
	if r < bytecode.RegS0 || r > bytecode.RegV0 {
		return nil, internal(op.Code, "register", r)
	}
	return vm.regs[r-bytecode.RegS0], nil
}

func (vm *VM) load(op bytecode.Op, r bytecode.Register, v any) error {
	if r < bytecode.RegS0 || r > bytecode.RegV0 {
		return internal(op.Code, "general register", r)
	}
	vm.regs[r-bytecode.RegS0] = v
	return nil
}

func (vm *VM) instance(op bytecode.Op, operand int32) (*componentInstance, error) {
	v, err := vm.fetch(op, bytecode.Register(operand))
	if err != nil {
		return nil, err
	}
	inst, ok := v.(*componentInstance)
	if !ok {
		return nil, internal(op.Code, "component instance", v)
	}
	return inst, nil
}

func (vm *VM) scope() *Scope {
	return vm.scopes[len(vm.scopes)-1]
}

func (vm *VM) pushScope(s *Scope) {
	vm.scopes = append(vm.scopes, s)
}

func (vm *VM) dynamicScope() *DynamicScope {
	return vm.dynamicScopes[len(vm.dynamicScopes)-1]
}

func (vm *VM) owner() *owner {
	return vm.owners[len(vm.owners)-1]
}

func (vm *VM) updateWith(op updatingOp) {
	list := vm.lists[len(vm.lists)-1]
	*list = append(*list, op)
}

func (vm *VM) listLen() int {
	return len(*vm.lists[len(vm.lists)-1])
}

func (vm *VM) context() *compiler.Context {
	return vm.runtime.Context
}

// resumableState is everything needed to run a replayable region again.
type resumableState struct {
	pc           int
	scope        *Scope
	dynamicScope *DynamicScope
	regs         [bytecode.RegV0 - bytecode.RegS0 + 1]any
	stack        []any
}

func (vm *VM) capture(n int) resumableState {
	return resumableState{
		pc:           vm.pc,
		scope:        vm.scope(),
		dynamicScope: vm.dynamicScope(),
		regs:         vm.regs,
		stack:        append([]any(nil), vm.stack[len(vm.stack)-n:]...),
	}
}

// resume builds a VM positioned at a captured state, writing through
// elements.
func (r *Runtime) resume(state resumableState, elements *ElementBuilder) *VM {
	vm := r.newVM(elements)
	vm.pc = state.pc
	vm.regs = state.regs
	vm.stack = append(vm.stack, state.stack...)
	vm.scopes = []*Scope{state.scope}
	vm.dynamicScopes = []*DynamicScope{state.dynamicScope}
	return vm
}
