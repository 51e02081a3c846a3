package vm

import (
	"github.com/pkg/errors"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/validator"
)

func (vm *VM) opPushComponentDefinition(op bytecode.Op) error {
	v, err := vm.constant(op, op.Op1)
	if err != nil {
		return err
	}
	inst, err := newComponentInstance(op, v)
	if err != nil {
		return err
	}
	vm.push(inst)
	return nil
}

func (vm *VM) opPushDynamicComponentInstance(op bytecode.Op) error {
	v, err := vm.pop(op)
	if err != nil {
		return err
	}
	inst, err := newComponentInstance(op, v)
	if err != nil {
		return err
	}
	vm.push(inst)
	return nil
}

func (vm *VM) opResolveDynamicComponent(op bytecode.Op) error {
	referrer, err := vm.constant(op, op.Op1)
	if err != nil {
		return err
	}
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	switch v := ref.Value().(type) {
	case string:
		def, ok := vm.runtime.Env.Resolver.LookupComponent(v, referrer)
		if !ok {
			return errors.Wrapf(ErrComponentNotFound, "%q", v)
		}
		vm.push(def)
	case *compiler.ComponentDefinition, *CurriedComponent:
		vm.push(v)
	default:
		return internal(op.Code, "component name or definition", v)
	}
	return nil
}

func (vm *VM) opResolveCurriedComponent(op bytecode.Op) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	v := ref.Value()
	if !isComponentValue(v) {
		return internal(op.Code, "component definition", v)
	}
	// A different curried value must rebuild the invocation even though
	// the content type is unchanged.
	vm.assert(ref, v, nil)
	vm.push(v)
	return nil
}

func (vm *VM) opPushArgs(op bytecode.Op) error {
	names, err := vm.program.Constants.GetArray(bytecode.Handle(op.Op1))
	if err != nil {
		return errors.Wrapf(err, "vm: %s", op.Code)
	}
	blockNames, err := vm.program.Constants.GetArray(bytecode.Handle(op.Op2))
	if err != nil {
		return errors.Wrapf(err, "vm: %s", op.Code)
	}
	positional, atNames := bytecode.DecodeArgsFlags(op.Op3)

	named := make([]reference.Reference, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		if named[i], err = vm.popRef(op); err != nil {
			return err
		}
	}
	args := emptyArguments()
	args.Positional = make([]reference.Reference, positional)
	for i := positional - 1; i >= 0; i-- {
		if args.Positional[i], err = vm.popRef(op); err != nil {
			return err
		}
	}
	blocks := make([]*BlockValue, len(blockNames))
	for i := len(blockNames) - 1; i >= 0; i-- {
		if blocks[i], err = vm.popBlock(op); err != nil {
			return err
		}
	}

	for i, name := range names {
		if atNames && len(name) > 0 && name[0] == '@' {
			name = name[1:]
		}
		args.Named.Set(name, named[i])
	}
	for i, name := range blockNames {
		if blocks[i] != nil {
			args.Blocks.Set(name, blocks[i])
		}
	}
	vm.push(args)
	return nil
}

func (vm *VM) opPushEmptyArgs(bytecode.Op) error {
	vm.push(emptyArguments())
	return nil
}

func (vm *VM) opCaptureArgs(op bytecode.Op) error {
	args, err := vm.popArgs(op)
	if err != nil {
		return err
	}
	vm.push(args.capture())
	return nil
}

// mergeCurried folds the curried layers of c into args. Positional
// arguments run innermost layer first and invocation last; named arguments
// from outer layers and then the invocation override inner ones.
func mergeCurried(c *CurriedComponent, args *Arguments) *Arguments {
	out := emptyArguments()
	chain := c.chain()
	for _, layer := range chain {
		out.Positional = append(out.Positional, layer.Args.Positional...)
		out.setNamed(layer.Args)
	}
	out.Positional = append(out.Positional, args.Positional...)
	out.setNamed(args)
	for el := args.Blocks.Front(); el != nil; el = el.Next() {
		out.Blocks.Set(el.Key, el.Value)
	}
	return out
}

func (vm *VM) replaceTop(v any) {
	vm.stack[len(vm.stack)-1] = v
}

func (vm *VM) opPrepareArgs(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	args, err := peekAs[*Arguments](vm, op, "arguments")
	if err != nil {
		return err
	}
	if inst.curried != nil {
		args = mergeCurried(inst.curried, args)
		vm.replaceTop(args)
	}
	if preparer, ok := inst.manager.(ArgsPreparer); ok && inst.has(compiler.PrepareArgs) {
		if prepared := preparer.PrepareArgs(inst.definition.State, args); prepared != nil {
			vm.replaceTop(prepared)
		}
	}
	return nil
}

func (vm *VM) opCreateComponent(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op2)
	if err != nil {
		return err
	}
	if !inst.has(compiler.CreateInstance) {
		return nil
	}
	args := emptyArguments()
	if op.Op1&bytecode.CreateArgsOnStack != 0 {
		if args, err = peekAs[*Arguments](vm, op, "arguments"); err != nil {
			return err
		}
	}
	var dynamicScope *DynamicScope
	if inst.has(compiler.DynamicScope) {
		dynamicScope = vm.dynamicScope()
	}
	var caller reference.Reference
	if inst.has(compiler.CreateCaller) {
		caller = vm.scope().Self()
	}
	hasDefault := op.Op1&bytecode.CreateHasDefaultBlock != 0
	state, err := inst.manager.Create(vm.runtime.Env, inst.definition.State, args, dynamicScope, caller, hasDefault)
	if err != nil {
		return errors.Wrapf(err, "vm: create %s", inst.definition.Name)
	}
	inst.state = state
	if _, ok := inst.manager.(UpdateHook); ok && inst.has(compiler.UpdateHook) {
		vm.updateWith(&updateComponentOp{instance: inst, dynamicScope: dynamicScope})
	}
	return nil
}

func (vm *VM) opRegisterComponentDestructor(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	hook, ok := inst.manager.(DestructorHook)
	if !ok || !inst.has(compiler.WillDestroy) || inst.state == nil {
		return nil
	}
	state := inst.state
	vm.owner().register(func() { hook.Destroy(state) })
	return nil
}

func (vm *VM) opGetComponentSelf(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	self := inst.manager.GetSelf(inst.state)
	if self == nil {
		self = reference.UndefinedReference
	}
	vm.push(self)
	return nil
}

func (vm *VM) opGetComponentLayout(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	layout := inst.definition.Layout
	if provider, ok := inst.manager.(LayoutProvider); ok && inst.has(compiler.DynamicLayout) {
		if dynamic := provider.Layout(inst.state); dynamic != nil {
			layout = dynamic
		}
	}
	if layout == nil || layout.Program == nil {
		return internal(op.Code, "component layout", inst.definition)
	}
	h, err := vm.compile(op, layout)
	if err != nil {
		return err
	}
	vm.push(layout.Program)
	vm.push(h)
	return nil
}

func (vm *VM) opPopulateLayout(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	h, err := popAs[bytecode.Handle](vm, op, "compiled handle")
	if err != nil {
		return err
	}
	table, err := popAs[*compiler.ProgramSymbolTable](vm, op, "program symbol table")
	if err != nil {
		return err
	}
	inst.handle, inst.table = h, table
	return nil
}

func (vm *VM) opInvokeComponentLayout(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	return vm.call(inst.handle)
}

func (vm *VM) opSetupForEval(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	if inst.table == nil || !inst.table.HasEval {
		return nil
	}
	eval := make(map[string]int, len(inst.table.Symbols))
	for i, sym := range inst.table.Symbols {
		eval[sym] = i + 1
	}
	vm.scope().evalTable = eval
	return nil
}

func (vm *VM) opSetNamedVariables(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	args, err := peekAs[*Arguments](vm, op, "arguments")
	if err != nil {
		return err
	}
	if inst.table == nil {
		return nil
	}
	scope := vm.scope()
	for name, slot := range inst.table.Named() {
		if ref, ok := args.Named.Get(name); ok {
			scope.bind(slot, ref)
		}
	}
	return nil
}

func (vm *VM) opSetBlocks(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	args, err := peekAs[*Arguments](vm, op, "arguments")
	if err != nil {
		return err
	}
	if inst.table == nil {
		return nil
	}
	scope := vm.scope()
	for name, slot := range inst.table.Blocks() {
		if blk, ok := args.Blocks.Get(name); ok {
			scope.bind(slot, blk)
		}
	}
	return nil
}

// opBeginComponentTransaction opens a cache group around the component so
// an update pass can skip it when nothing it read has changed.
func (vm *VM) opBeginComponentTransaction(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	guard := &jumpIfNotModifiedOp{}
	vm.updateWith(guard)
	vm.updateWith(beginTrackFrameOp{})
	validator.BeginTrackFrame(inst.definition.Name)
	vm.groups = append(vm.groups, cacheGroup{guard: guard})
	vm.elements.pushLiveBlock(false)
	vm.owners = append(vm.owners, vm.owner().child())
	return nil
}

func (vm *VM) opCommitComponentTransaction(op bytecode.Op) error {
	if len(vm.groups) == 0 {
		return internal(op.Code, "open component transaction", nil)
	}
	if _, err := vm.elements.popBlock(); err != nil {
		return err
	}
	group := vm.groups[len(vm.groups)-1]
	vm.groups = vm.groups[:len(vm.groups)-1]
	vm.owners = vm.owners[:len(vm.owners)-1]

	tag := validator.EndTrackFrame()
	vm.updateWith(&endTrackFrameOp{guard: group.guard})
	group.guard.finalize(tag, vm.listLen())
	return nil
}

func (vm *VM) opDidCreateElement(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	hook, ok := inst.manager.(ElementHook)
	if !ok || !inst.has(compiler.ElementHook) {
		return nil
	}
	el, err := vm.constructing(op)
	if err != nil {
		return err
	}
	hook.DidCreateElement(inst.state, el)
	return nil
}

func (vm *VM) opDidRenderLayout(op bytecode.Op) error {
	inst, err := vm.instance(op, op.Op1)
	if err != nil {
		return err
	}
	if !inst.has(compiler.CreateInstance) || inst.state == nil {
		return nil
	}
	bounds := vm.elements.block()
	if hook, ok := inst.manager.(LayoutHook); ok {
		hook.DidRenderLayout(inst.state, bounds)
	}
	vm.runtime.Env.didCreate(inst)
	vm.updateWith(&didUpdateLayoutOp{instance: inst})
	return nil
}
