package vm

import (
	"slices"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
)

// assert records that the region must be rebuilt if ref's value (after
// filter) ever differs from v.
func (vm *VM) assert(ref reference.Reference, v any, filter func(any) any) {
	if ref.IsConst() {
		return
	}
	vm.updateWith(newAssertOp(ref, v, filter))
}

func (vm *VM) branch(op bytecode.Op, when bool) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	v := ref.Value()
	vm.assert(ref, v, nil)
	if reference.Truthy(v) == when {
		vm.pc = int(op.Op1)
	}
	return nil
}

func (vm *VM) opJumpIf(op bytecode.Op) error {
	return vm.branch(op, true)
}

func (vm *VM) opJumpUnless(op bytecode.Op) error {
	return vm.branch(op, false)
}

func (vm *VM) opJumpEq(op bytecode.Op) error {
	v, err := peekAs[bytecode.ContentType](vm, op, "content type")
	if err != nil {
		return err
	}
	if int32(v) == op.Op2 {
		vm.pc = int(op.Op1)
	}
	return nil
}

func (vm *VM) opAssertSame(op bytecode.Op) error {
	ref, err := peekAs[reference.Reference](vm, op, "reference")
	if err != nil {
		return err
	}
	vm.assert(ref, ref.Value(), nil)
	return nil
}

// opEnter opens a replayable region over the top op.Op1 stack values.
func (vm *VM) opEnter(op bytecode.Op) error {
	n := int(op.Op1)
	if n > len(vm.stack) {
		return internal(op.Code, "captured values", len(vm.stack))
	}
	parent := vm.owner()
	try := &tryOp{state: vm.capture(n), owner: parent.child()}
	vm.updateWith(try)
	try.block = vm.elements.pushLiveBlock(false)
	vm.lists = append(vm.lists, &try.children)
	vm.owners = append(vm.owners, try.owner)
	return nil
}

func (vm *VM) opExit(op bytecode.Op) error {
	if len(vm.lists) == 0 || len(vm.owners) == 0 {
		return internal(op.Code, "open region", nil)
	}
	if _, err := vm.elements.popBlock(); err != nil {
		return err
	}
	vm.lists = vm.lists[:len(vm.lists)-1]
	vm.owners = vm.owners[:len(vm.owners)-1]
	return nil
}

type listIterator struct {
	items []any
	pos   int
}

// snapshotItems copies a list so that later in-place edits of the caller's
// slice still compare as a change.
func snapshotItems(v any) any {
	items, _ := reference.Items(v)
	return slices.Clone(items)
}

func (vm *VM) opEnterList(op bytecode.Op) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	v := ref.Value()
	items, ok := reference.Items(v)
	if !ok {
		return internal(op.Code, "iterable", v)
	}
	vm.assert(ref, v, snapshotItems)
	vm.push(&listIterator{items: items})
	return nil
}

func (vm *VM) opIterate(op bytecode.Op) error {
	it, err := peekAs[*listIterator](vm, op, "list iterator")
	if err != nil {
		return err
	}
	if it.pos >= len(it.items) {
		vm.pc = int(op.Op1)
		return nil
	}
	vm.push(reference.Const(it.items[it.pos]))
	vm.push(reference.Const(it.pos))
	it.pos++
	return nil
}
