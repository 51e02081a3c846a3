package vm

import (
	"github.com/pkg/errors"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
)

func (vm *VM) opRootScope(op bytecode.Op) error {
	vm.pushScope(newRootScope(int(op.Op1), reference.UndefinedReference))
	return nil
}

func (vm *VM) opVirtualRootScope(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	if inst.table == nil {
		return internal(op.Code, "populated layout", inst.definition)
	}
	vm.pushScope(newRootScope(inst.table.Size(), reference.UndefinedReference))
	return nil
}

func (vm *VM) opChildScope(bytecode.Op) error {
	vm.pushScope(vm.scope().child())
	return nil
}

func (vm *VM) opPopScope(op bytecode.Op) error {
	if len(vm.scopes) < 2 {
		return internal(op.Code, "nested scope", len(vm.scopes))
	}
	vm.scopes[len(vm.scopes)-1] = nil
	vm.scopes = vm.scopes[:len(vm.scopes)-1]
	return nil
}

func (vm *VM) opSetVariable(op bytecode.Op) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	vm.scope().bind(int(op.Op1), ref)
	return nil
}

func (vm *VM) opSetBlock(op bytecode.Op) error {
	blk, err := vm.popBlock(op)
	if err != nil {
		return err
	}
	if blk == nil {
		vm.scope().bind(int(op.Op1), nil)
		return nil
	}
	vm.scope().bind(int(op.Op1), blk)
	return nil
}

func (vm *VM) opPushDynamicScope(bytecode.Op) error {
	vm.dynamicScopes = append(vm.dynamicScopes, vm.dynamicScope().child())
	return nil
}

func (vm *VM) opPopDynamicScope(op bytecode.Op) error {
	if len(vm.dynamicScopes) < 2 {
		return internal(op.Code, "nested dynamic scope", len(vm.dynamicScopes))
	}
	vm.dynamicScopes = vm.dynamicScopes[:len(vm.dynamicScopes)-1]
	return nil
}

func (vm *VM) opBindDynamicScope(op bytecode.Op) error {
	names, err := vm.program.Constants.GetArray(bytecode.Handle(op.Op1))
	if err != nil {
		return errors.Wrapf(err, "vm: %s", op.Code)
	}
	scope := vm.dynamicScope()
	for i := len(names) - 1; i >= 0; i-- {
		ref, err := vm.popRef(op)
		if err != nil {
			return err
		}
		scope.Set(names[i], ref)
	}
	return nil
}

func (vm *VM) opPushSymbolTable(op bytecode.Op) error {
	return vm.opConstant(op)
}

func (vm *VM) opPushBlockScope(bytecode.Op) error {
	vm.push(vm.scope())
	return nil
}

func (vm *VM) compile(op bytecode.Op, c *compiler.CompilableTemplate) (bytecode.Handle, error) {
	h, err := c.Compile(vm.context())
	if err != nil {
		return -1, errors.Wrapf(err, "vm: %s", op.Code)
	}
	return h, nil
}

func (vm *VM) opCompileBlock(op bytecode.Op) error {
	v, err := vm.pop(op)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case nil, bytecode.Handle:
		vm.push(x)
	case *compiler.CompilableTemplate:
		h, err := vm.compile(op, x)
		if err != nil {
			return err
		}
		vm.push(h)
	default:
		return internal(op.Code, "compilable", v)
	}
	return nil
}

// opInvokeYield calls a block with the arguments below it. A missing block
// still opens a frame and scope so the caller's cleanup stays balanced.
func (vm *VM) opInvokeYield(op bytecode.Op) error {
	handle, err := vm.pop(op)
	if err != nil {
		return err
	}
	scope, err := vm.pop(op)
	if err != nil {
		return err
	}
	table, err := vm.pop(op)
	if err != nil {
		return err
	}
	args, err := vm.popArgs(op)
	if err != nil {
		return err
	}

	if table == nil {
		vm.pushFrame()
		if s, ok := scope.(*Scope); ok {
			vm.pushScope(s)
		} else {
			vm.pushScope(vm.scope())
		}
		return nil
	}

	blockTable, ok := table.(*compiler.BlockSymbolTable)
	if !ok {
		return internal(op.Code, "block symbol table", table)
	}
	blockScope, ok := scope.(*Scope)
	if !ok {
		return internal(op.Code, "scope", scope)
	}
	h, ok := handle.(bytecode.Handle)
	if !ok {
		return internal(op.Code, "compiled handle", handle)
	}
	s := blockScope.child()
	for i, symbol := range blockTable.Parameters {
		s.bind(symbol, args.At(i))
	}
	vm.pushFrame()
	vm.pushScope(s)
	return vm.call(h)
}
