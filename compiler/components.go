package compiler

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

// component lowers an angle-bracket invocation.
func (b *builder) component(s *wire.Component) error {
	var attrs *wire.Block
	if len(s.Attrs) > 0 {
		attrs = &wire.Block{Statements: s.Attrs}
	}
	if s.Dynamic != nil {
		return b.invokeDynamicComponent(s.Dynamic, attrs, nil, s.Args, s.Blocks, true, true)
	}
	def, ok := b.ctx.Resolver.LookupComponent(s.Tag, b.meta.Referrer)
	if !ok {
		log.Debugf("component %q not resolved statically, deferring to run time", s.Tag)
		return b.invokeDynamicComponent(&wire.Literal{Value: s.Tag}, attrs, nil, s.Args, s.Blocks, true, false)
	}
	return b.invokeResolvedComponent(def, attrs, nil, s.Args, s.Blocks, true)
}

// invokeBlock lowers a curly block invocation, statically when the name
// resolves.
func (b *builder) invokeBlock(s *wire.InvokeBlock) error {
	err := b.staticComponent(s.Name, s.Params, s.Hash, s.Blocks)
	if errors.Is(err, ErrUnhandled) {
		return b.invokeDynamicComponent(&wire.Literal{Value: s.Name}, nil, s.Params, s.Hash, s.Blocks, false, false)
	}
	return err
}

func (b *builder) staticComponent(name string, params []wire.Expression, hash *wire.Hash, blocks *wire.NamedBlocks) error {
	def, ok := b.ctx.Resolver.LookupComponent(name, b.meta.Referrer)
	if !ok {
		return ErrUnhandled
	}
	return b.invokeResolvedComponent(def, nil, params, hash, blocks, false)
}

func (b *builder) invokeResolvedComponent(def *ComponentDefinition, attrs *wire.Block, params []wire.Expression,
	hash *wire.Hash, blocks *wire.NamedBlocks, atNames bool) error {
	b.op(bytecode.OpPushComponentDefinition, b.value(def))
	var err error
	if def.Layout != nil {
		err = b.invokeStaticComponent(def, attrs, params, hash, blocks, atNames)
	} else {
		err = b.invokeComponent(attrs, params, hash, blocks, atNames, nil)
	}
	if err != nil {
		return err
	}
	b.op(bytecode.OpPop, 1)
	return nil
}

// enterComponent saves $s0 and makes the instance on top of the stack the
// current component.
func (b *builder) enterComponent() {
	b.op(bytecode.OpFetch, reg(bytecode.RegS0))
	b.op(bytecode.OpDup, reg(bytecode.RegSP), 1)
	b.op(bytecode.OpLoad, reg(bytecode.RegS0))
	b.op(bytecode.OpPushFrame)
}

func createFlags(blocks *wire.NamedBlocks, argsOnStack bool) int {
	var flags int32
	if blocks.Has("default") {
		flags |= bytecode.CreateHasDefaultBlock
	}
	if argsOnStack {
		flags |= bytecode.CreateArgsOnStack
	}
	return int(flags)
}

type binding struct {
	slot  int
	block bool
}

// invokeStaticComponent binds arguments straight into the layout's
// symbols. Components whose layout needs eval or whose manager prepares
// arguments take the general path.
func (b *builder) invokeStaticComponent(def *ComponentDefinition, attrs *wire.Block, params []wire.Expression,
	hash *wire.Hash, blocks *wire.NamedBlocks, atNames bool) error {
	caps := def.Capabilities()
	layout := def.Layout
	table := layout.Program
	if table.HasEval || caps.Has(PrepareArgs) {
		return b.invokeComponent(attrs, params, hash, blocks, atNames, layout)
	}

	b.enterComponent()

	createArgs := caps.Has(CreateArgs)
	var bindings []binding
	if createArgs {
		if err := b.compileArgs(params, hash, blockList(attrs, blocks), atNames); err != nil {
			return err
		}
	} else {
		for i, sym := range table.Symbols {
			slot := i + 1
			switch {
			case sym == AttrsBlock:
				if attrs == nil {
					continue
				}
				if err := b.pushYieldableBlock(attrs); err != nil {
					return err
				}
				bindings = append(bindings, binding{slot: slot, block: true})
			case strings.HasPrefix(sym, "&"):
				blk, ok := blocks.Get(sym[1:])
				if !ok {
					continue
				}
				if err := b.pushYieldableBlock(blk); err != nil {
					return err
				}
				bindings = append(bindings, binding{slot: slot, block: true})
			case strings.HasPrefix(sym, "@"):
				key := sym
				if !atNames {
					key = sym[1:]
				}
				v, ok := hash.Get(key)
				if !ok {
					continue
				}
				if err := b.expr(v); err != nil {
					return err
				}
				bindings = append(bindings, binding{slot: slot})
			}
		}
	}

	s0 := reg(bytecode.RegS0)
	b.op(bytecode.OpBeginComponentTransaction, s0)
	if caps.Has(DynamicScope) {
		b.op(bytecode.OpPushDynamicScope)
	}
	if caps.Has(CreateInstance) {
		b.op(bytecode.OpCreateComponent, createFlags(blocks, createArgs), s0)
	}
	b.op(bytecode.OpRegisterComponentDestructor, s0)
	b.op(bytecode.OpGetComponentSelf, s0)
	b.op(bytecode.OpRootScope, table.Size())
	b.op(bytecode.OpSetVariable, 0)

	if createArgs {
		b.op(bytecode.OpSetNamedVariables, s0)
		b.op(bytecode.OpSetBlocks, s0)
		b.op(bytecode.OpPop, 1)
	} else {
		for i := len(bindings) - 1; i >= 0; i-- {
			if bindings[i].block {
				b.op(bytecode.OpSetBlock, bindings[i].slot)
			} else {
				b.op(bytecode.OpSetVariable, bindings[i].slot)
			}
		}
	}

	b.op(bytecode.OpConstant, b.value(layout))
	b.op(bytecode.OpCompileBlock)
	b.op(bytecode.OpInvokeVirtual)
	if caps.Has(CreateInstance) {
		b.op(bytecode.OpDidRenderLayout, s0)
	}
	b.op(bytecode.OpPopFrame)
	b.op(bytecode.OpPopScope)
	if caps.Has(DynamicScope) {
		b.op(bytecode.OpPopDynamicScope)
	}
	b.op(bytecode.OpCommitComponentTransaction)
	b.op(bytecode.OpLoad, s0)
	return nil
}

// invokeComponent is the general invocation sequence. Capabilities are
// checked at run time by the opcodes themselves. A nil layout is fetched
// from the manager.
func (b *builder) invokeComponent(attrs *wire.Block, params []wire.Expression,
	hash *wire.Hash, blocks *wire.NamedBlocks, atNames bool, layout *CompilableTemplate) error {
	b.enterComponent()
	if err := b.compileArgs(params, hash, blockList(attrs, blocks), atNames); err != nil {
		return err
	}
	b.op(bytecode.OpPrepareArgs, reg(bytecode.RegS0))
	return b.invokeComponentBody(createFlags(blocks, true), layout)
}

// invokeBareComponent invokes the instance on top of the stack without
// arguments.
func (b *builder) invokeBareComponent() error {
	b.enterComponent()
	b.op(bytecode.OpPushEmptyArgs)
	b.op(bytecode.OpPrepareArgs, reg(bytecode.RegS0))
	return b.invokeComponentBody(int(bytecode.CreateArgsOnStack), nil)
}

func (b *builder) invokeComponentBody(flags int, layout *CompilableTemplate) error {
	s0 := reg(bytecode.RegS0)
	b.op(bytecode.OpBeginComponentTransaction, s0)
	b.op(bytecode.OpPushDynamicScope)
	b.op(bytecode.OpCreateComponent, flags, s0)

	if layout != nil {
		b.op(bytecode.OpPushSymbolTable, b.value(layout.Program))
		b.op(bytecode.OpConstant, b.value(layout))
		b.op(bytecode.OpCompileBlock)
	} else {
		b.op(bytecode.OpGetComponentLayout, s0)
	}
	b.op(bytecode.OpPopulateLayout, s0)

	b.op(bytecode.OpRegisterComponentDestructor, s0)
	b.op(bytecode.OpGetComponentSelf, s0)
	b.op(bytecode.OpVirtualRootScope, s0)
	b.op(bytecode.OpSetVariable, 0)
	b.op(bytecode.OpSetupForEval, s0)
	b.op(bytecode.OpSetNamedVariables, s0)
	b.op(bytecode.OpSetBlocks, s0)
	b.op(bytecode.OpPop, 1)
	b.op(bytecode.OpInvokeComponentLayout, s0)
	b.op(bytecode.OpDidRenderLayout, s0)
	b.op(bytecode.OpPopFrame)
	b.op(bytecode.OpPopScope)
	b.op(bytecode.OpPopDynamicScope)
	b.op(bytecode.OpCommitComponentTransaction)
	b.op(bytecode.OpLoad, s0)
	return nil
}

// invokeDynamicComponent lowers an invocation whose definition is only
// known at run time. curried selects between curried values and names.
func (b *builder) invokeDynamicComponent(def wire.Expression, attrs *wire.Block, params []wire.Expression,
	hash *wire.Hash, blocks *wire.NamedBlocks, atNames, curried bool) error {
	return b.replayable(func() (int, error) {
		if err := b.expr(def); err != nil {
			return 0, err
		}
		b.op(bytecode.OpDup, reg(bytecode.RegSP), 0)
		return 2, nil
	}, func() error {
		b.jump(bytecode.OpJumpUnless, "ELSE")
		if curried {
			b.op(bytecode.OpResolveCurriedComponent)
		} else {
			b.op(bytecode.OpResolveDynamicComponent, b.value(b.meta.Referrer))
		}
		b.op(bytecode.OpPushDynamicComponentInstance)
		if err := b.invokeComponent(attrs, params, hash, blocks, atNames, nil); err != nil {
			return err
		}
		b.label("ELSE")
		return nil
	})
}
