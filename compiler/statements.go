package compiler

import (
	"fmt"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

func (b *builder) statements(stmts []wire.Statement) error {
	for _, s := range stmts {
		if err := b.statement(s); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) statement(s wire.Statement) error {
	switch s := s.(type) {
	case *wire.Text:
		b.op(bytecode.OpText, b.str(s.Value))
	case *wire.Comment:
		b.op(bytecode.OpComment, b.str(s.Value))
	case *wire.Append:
		return b.appendContent(s.Value)
	case *wire.TrustingAppend:
		return b.trustingAppend(s.Value)
	case *wire.OpenElement:
		b.op(bytecode.OpOpenElement, b.str(s.Tag))
	case *wire.OpenElementWithSplat:
		b.op(bytecode.OpOpenElement, b.str(s.Tag))
		b.splat = true
	case *wire.FlushElement:
		if b.splat && b.meta.Layout && !b.unit.IsBlock() {
			b.op(bytecode.OpDidCreateElement, reg(bytecode.RegS0))
		}
		b.splat = false
		b.op(bytecode.OpFlushElement)
	case *wire.CloseElement:
		b.op(bytecode.OpCloseElement)
	case *wire.StaticAttr:
		b.op(bytecode.OpStaticAttr, b.str(s.Name), b.str(s.Value))
	case *wire.DynamicAttr:
		return b.dynamicAttr(s.Name, s.Value, false)
	case *wire.TrustingDynamicAttr:
		return b.dynamicAttr(s.Name, s.Value, true)
	case *wire.AttrSplat:
		return b.yield(s.Symbol, nil)
	case *wire.Yield:
		return b.yield(s.Symbol, s.Params)
	case *wire.Component:
		return b.component(s)
	case *wire.InvokeBlock:
		return b.invokeBlock(s)
	case *wire.DynamicComponent:
		return b.invokeDynamicComponent(s.Definition, nil, s.Params, s.Hash, s.Blocks, false, false)
	case *wire.InElement:
		return b.inElement(s)
	case *wire.WithDynamicVars:
		return b.withDynamicVars(s)
	case *wire.If:
		return b.ifStatement(s)
	case *wire.Each:
		return b.each(s)
	case *wire.Let:
		return b.let(s)
	default:
		return errorf("unsupported statement %T", s)
	}
	return nil
}

func (b *builder) dynamicAttr(name string, value wire.Expression, trusting bool) error {
	if err := b.expr(value); err != nil {
		return err
	}
	t := 0
	if trusting {
		t = 1
	}
	b.op(bytecode.OpDynamicAttr, b.str(name), t)
	return nil
}

// literalText renders a literal the way dynamic text would.
func literalText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		return fmt.Sprintf("%g", x), true
	default:
		return fmt.Sprint(x), true
	}
}

// appendContent lowers {{value}}. Literals become static text; anything
// else switches on the content type of its value at run time.
func (b *builder) appendContent(value wire.Expression) error {
	if lit, ok := value.(*wire.Literal); ok {
		if text, ok := literalText(lit.Value); ok {
			b.op(bytecode.OpText, b.str(text))
		}
		return nil
	}
	return b.replayable(func() (int, error) {
		return 1, b.expr(value)
	}, func() error {
		b.op(bytecode.OpContentType)
		b.jump(bytecode.OpJumpEq, "COMPONENT", int(bytecode.ContentComponent))
		b.jump(bytecode.OpJumpEq, "SAFE_STRING", int(bytecode.ContentSafeString))

		b.op(bytecode.OpPop, 1)
		b.op(bytecode.OpAppendText)
		b.jump(bytecode.OpJump, "FINALLY")

		b.label("SAFE_STRING")
		b.op(bytecode.OpPop, 1)
		b.op(bytecode.OpAssertSame)
		b.op(bytecode.OpAppendSafeHTML)
		b.jump(bytecode.OpJump, "FINALLY")

		b.label("COMPONENT")
		b.op(bytecode.OpPop, 1)
		b.op(bytecode.OpResolveCurriedComponent)
		b.op(bytecode.OpPushDynamicComponentInstance)
		return b.invokeBareComponent()
	})
}

// trustingAppend lowers {{{value}}}.
func (b *builder) trustingAppend(value wire.Expression) error {
	return b.replayable(func() (int, error) {
		return 1, b.expr(value)
	}, func() error {
		b.op(bytecode.OpAssertSame)
		b.op(bytecode.OpAppendHTML)
		return nil
	})
}

// yield calls the block in symbol with params as block arguments.
func (b *builder) yield(symbol int, params []wire.Expression) error {
	if err := b.simpleArgs(params, nil, false); err != nil {
		return err
	}
	b.op(bytecode.OpGetBlock, symbol)
	b.op(bytecode.OpCompileBlock)
	b.op(bytecode.OpInvokeYield)
	b.op(bytecode.OpPopScope)
	b.op(bytecode.OpPopFrame)
	return nil
}

func (b *builder) ifStatement(s *wire.If) error {
	block, inverse := s.Block, s.Inverse
	if s.Unless {
		block, inverse = inverse, block
	}
	return b.replayable(func() (int, error) {
		if err := b.expr(s.Condition); err != nil {
			return 0, err
		}
		b.op(bytecode.OpToBoolean)
		return 1, nil
	}, func() error {
		b.jump(bytecode.OpJumpUnless, "ELSE")
		b.invokeStaticBlock(block)
		b.jump(bytecode.OpJump, "FINALLY")
		b.label("ELSE")
		b.invokeStaticBlock(inverse)
		return nil
	})
}

// each re-runs its whole region when the list changes; items are not
// matched up by key.
func (b *builder) each(s *wire.Each) error {
	return b.replayable(func() (int, error) {
		return 1, b.expr(s.List)
	}, func() error {
		b.op(bytecode.OpDup, reg(bytecode.RegSP), 0)
		b.op(bytecode.OpToBoolean)
		b.jump(bytecode.OpJumpUnless, "ELSE")

		b.op(bytecode.OpEnterList)
		b.label("LOOP")
		b.jump(bytecode.OpIterate, "BREAK")
		b.invokeStaticBlockWithStack(s.Block, 2)
		b.op(bytecode.OpPop, 2)
		b.jump(bytecode.OpJump, "LOOP")

		b.label("BREAK")
		b.op(bytecode.OpPop, 1)
		b.jump(bytecode.OpJump, "FINALLY")

		b.label("ELSE")
		b.op(bytecode.OpPop, 1)
		b.invokeStaticBlock(s.Inverse)
		return nil
	})
}

func (b *builder) let(s *wire.Let) error {
	for _, p := range s.Params {
		if err := b.expr(p); err != nil {
			return err
		}
	}
	b.invokeStaticBlockWithStack(s.Block, len(s.Params))
	if len(s.Params) > 0 {
		b.op(bytecode.OpPop, len(s.Params))
	}
	return nil
}

func (b *builder) inElement(s *wire.InElement) error {
	return b.replayable(func() (int, error) {
		if s.InsertBefore != nil {
			if err := b.expr(s.InsertBefore); err != nil {
				return 0, err
			}
		} else if err := b.primitiveReference(nil, true); err != nil {
			return 0, err
		}
		if err := b.expr(s.Destination); err != nil {
			return 0, err
		}
		b.op(bytecode.OpDup, reg(bytecode.RegSP), 0)
		return 3, nil
	}, func() error {
		b.jump(bytecode.OpJumpUnless, "ELSE")
		b.op(bytecode.OpPushRemoteElement)
		b.invokeStaticBlock(s.Block)
		b.op(bytecode.OpPopRemoteElement)
		b.jump(bytecode.OpJump, "FINALLY")
		b.label("ELSE")
		b.op(bytecode.OpPop, 2)
		return nil
	})
}

func (b *builder) withDynamicVars(s *wire.WithDynamicVars) error {
	b.op(bytecode.OpPushDynamicScope)
	var names []string
	if s.Vars != nil {
		for i, key := range s.Vars.Keys {
			if err := b.expr(s.Vars.Values[i]); err != nil {
				return err
			}
			names = append(names, key)
		}
	}
	b.op(bytecode.OpBindDynamicScope, b.array(names))
	b.invokeStaticBlock(s.Block)
	b.op(bytecode.OpPopDynamicScope)
	return nil
}
