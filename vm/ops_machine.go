package vm

import (
	"strings"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
)

func (vm *VM) opPushFrame(bytecode.Op) error {
	vm.pushFrame()
	return nil
}

func (vm *VM) opPopFrame(op bytecode.Op) error {
	return vm.popFrame(op)
}

func (vm *VM) opInvokeVirtual(op bytecode.Op) error {
	h, err := popAs[bytecode.Handle](vm, op, "compiled handle")
	if err != nil {
		return err
	}
	return vm.call(h)
}

func (vm *VM) opJump(op bytecode.Op) error {
	vm.pc = int(op.Op1)
	return nil
}

func (vm *VM) opReturn(bytecode.Op) error {
	vm.pc = vm.ra
	return nil
}

func (vm *VM) opReturnTo(op bytecode.Op) error {
	vm.ra = int(op.Op1)
	return nil
}

func (vm *VM) opPop(op bytecode.Op) error {
	for i := int32(0); i < op.Op1; i++ {
		if _, err := vm.pop(op); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) opDup(op bytecode.Op) error {
	var base int
	switch bytecode.Register(op.Op1) {
	case bytecode.RegSP:
		base = len(vm.stack) - 1
	case bytecode.RegFP:
		base = vm.fp
	default:
		return internal(op.Code, "$sp or $fp", bytecode.Register(op.Op1))
	}
	i := base - int(op.Op2)
	if i < 0 || i >= len(vm.stack) {
		return internal(op.Code, "stack slot", i)
	}
	vm.push(vm.stack[i])
	return nil
}

func (vm *VM) opFetch(op bytecode.Op) error {
	v, err := vm.fetch(op, bytecode.Register(op.Op1))
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func (vm *VM) opLoad(op bytecode.Op) error {
	v, err := vm.pop(op)
	if err != nil {
		return err
	}
	return vm.load(op, bytecode.Register(op.Op1), v)
}

func (vm *VM) opPrimitive(op bytecode.Op) error {
	kind, payload := bytecode.DecodePrimitive(op.Op1)
	switch kind {
	case bytecode.PrimitiveNumber:
		vm.push(int(payload))
	case bytecode.PrimitiveString:
		s, err := vm.constantString(op, payload)
		if err != nil {
			return err
		}
		vm.push(s)
	case bytecode.PrimitiveBool:
		vm.push(payload != 0)
	case bytecode.PrimitiveNull:
		vm.push(nil)
	case bytecode.PrimitiveUndefined:
		vm.push(reference.Undefined)
	case bytecode.PrimitiveFloat:
		v, err := vm.constant(op, payload)
		if err != nil {
			return err
		}
		vm.push(v)
	default:
		return internal(op.Code, "primitive kind", kind)
	}
	return nil
}

func constRef(v any) reference.Reference {
	switch x := v.(type) {
	case nil:
		return reference.NullReference
	case reference.UndefinedValue:
		return reference.UndefinedReference
	case bool:
		if x {
			return reference.TrueReference
		}
		return reference.FalseReference
	case string:
		if x == "" {
			return reference.EmptyStringRef
		}
	}
	return reference.Const(v)
}

func (vm *VM) opPrimitiveReference(op bytecode.Op) error {
	v, err := vm.pop(op)
	if err != nil {
		return err
	}
	vm.push(constRef(v))
	return nil
}

func (vm *VM) opConstant(op bytecode.Op) error {
	v, err := vm.constant(op, op.Op1)
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func (vm *VM) opGetVariable(op bytecode.Op) error {
	vm.push(vm.scope().getSymbol(int(op.Op1)))
	return nil
}

func (vm *VM) opGetProperty(op bytecode.Op) error {
	name, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	vm.push(reference.Property(ref, name))
	return nil
}

func (vm *VM) opResolveMaybeLocal(op bytecode.Op) error {
	name, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	if ref, ok := vm.scope().lookupEval(name); ok {
		vm.push(ref)
		return nil
	}
	vm.push(reference.Property(vm.scope().Self(), name))
	return nil
}

func (vm *VM) opGetBlock(op bytecode.Op) error {
	blk := vm.scope().getBlock(int(op.Op1))
	if blk == nil {
		vm.push(nil)
		vm.push(nil)
		vm.push(nil)
		return nil
	}
	vm.push(blk.Table)
	vm.push(blk.Scope)
	vm.push(blk.Compilable)
	return nil
}

// popBlock pops a block triple. A missing block comes back as nil.
func (vm *VM) popBlock(op bytecode.Op) (*BlockValue, error) {
	compilable, err := vm.pop(op)
	if err != nil {
		return nil, err
	}
	scope, err := vm.pop(op)
	if err != nil {
		return nil, err
	}
	table, err := vm.pop(op)
	if err != nil {
		return nil, err
	}
	if compilable == nil && table == nil {
		return nil, nil
	}
	blk := &BlockValue{}
	var ok bool
	if blk.Table, ok = table.(*compiler.BlockSymbolTable); !ok {
		return nil, internal(op.Code, "block symbol table", table)
	}
	if blk.Scope, ok = scope.(*Scope); !ok {
		return nil, internal(op.Code, "scope", scope)
	}
	if blk.Compilable, ok = compilable.(*compiler.CompilableTemplate); !ok {
		return nil, internal(op.Code, "compilable block", compilable)
	}
	return blk, nil
}

func (vm *VM) opHasBlock(op bytecode.Op) error {
	blk, err := vm.popBlock(op)
	if err != nil {
		return err
	}
	vm.push(constRef(blk != nil))
	return nil
}

func (vm *VM) opHasBlockParams(op bytecode.Op) error {
	blk, err := vm.popBlock(op)
	if err != nil {
		return err
	}
	vm.push(constRef(blk != nil && len(blk.Table.Parameters) > 0))
	return nil
}

func (vm *VM) opConcat(op bytecode.Op) error {
	parts := make([]reference.Reference, op.Op1)
	allConst := true
	for i := len(parts) - 1; i >= 0; i-- {
		ref, err := vm.popRef(op)
		if err != nil {
			return err
		}
		parts[i] = ref
		allConst = allConst && ref.IsConst()
	}
	join := func() any {
		var sb strings.Builder
		for _, ref := range parts {
			sb.WriteString(dom.NormalizeString(ref.Value()))
		}
		return sb.String()
	}
	if allConst {
		vm.push(constRef(join()))
		return nil
	}
	vm.push(reference.Compute("concat", join))
	return nil
}

func (vm *VM) opHelper(op bytecode.Op) error {
	v, err := vm.constant(op, op.Op1)
	if err != nil {
		return err
	}
	helper, ok := v.(Helper)
	if !ok {
		return internal(op.Code, "helper", v)
	}
	args, err := vm.popArgs(op)
	if err != nil {
		return err
	}
	vm.regs[bytecode.RegV0-bytecode.RegS0] = helper.Invoke(args)
	return nil
}

func (vm *VM) opGetDynamicVar(op bytecode.Op) error {
	nameRef, err := vm.popRef(op)
	if err != nil {
		return err
	}
	scope := vm.dynamicScope()
	vm.push(reference.Compute("dynamic-var", func() any {
		ref, ok := scope.Get(dom.NormalizeString(nameRef.Value()))
		if !ok {
			return reference.Undefined
		}
		return ref.Value()
	}))
	return nil
}

func (vm *VM) opCurryComponent(op bytecode.Op) error {
	referrer, err := vm.constant(op, op.Op1)
	if err != nil {
		return err
	}
	defRef, err := vm.popRef(op)
	if err != nil {
		return err
	}
	args, err := vm.popArgs(op)
	if err != nil {
		return err
	}
	resolver := vm.runtime.Env.Resolver
	vm.regs[bytecode.RegV0-bytecode.RegS0] = reference.Compute("curry", func() any {
		inner := defRef.Value()
		if name, ok := inner.(string); ok {
			def, found := resolver.LookupComponent(name, referrer)
			if !found {
				return nil
			}
			inner = def
		}
		if !isComponentValue(inner) {
			return nil
		}
		return &CurriedComponent{Inner: inner, Args: args}
	})
	return nil
}

func (vm *VM) opToBoolean(op bytecode.Op) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	vm.push(reference.ToBool(ref))
	return nil
}
