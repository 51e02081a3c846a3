package compiler

import (
	"github.com/pkg/errors"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

// expr pushes a reference to the value of e.
func (b *builder) expr(e wire.Expression) error {
	switch e := e.(type) {
	case *wire.Literal:
		return b.primitiveReference(e.Value, false)
	case *wire.Undefined:
		return b.primitiveReference(nil, true)
	case *wire.GetSymbol:
		b.op(bytecode.OpGetVariable, e.Symbol)
		b.path(e.Path)
	case *wire.GetFree:
		if b.meta.HasEval {
			b.op(bytecode.OpResolveMaybeLocal, b.str(e.Name))
		} else {
			b.op(bytecode.OpGetVariable, 0)
			b.op(bytecode.OpGetProperty, b.str(e.Name))
		}
		b.path(e.Path)
	case *wire.Call:
		return b.call(e)
	case *wire.Concat:
		for _, part := range e.Parts {
			if err := b.expr(part); err != nil {
				return err
			}
		}
		b.op(bytecode.OpConcat, len(e.Parts))
	case *wire.HasBlock:
		b.op(bytecode.OpGetBlock, e.Symbol)
		b.op(bytecode.OpHasBlock)
	case *wire.HasBlockParams:
		b.op(bytecode.OpGetBlock, e.Symbol)
		b.op(bytecode.OpHasBlockParams)
	case *wire.CurryComponent:
		return b.curry(e)
	case *wire.GetDynamicVar:
		if err := b.expr(e.Name); err != nil {
			return err
		}
		b.op(bytecode.OpGetDynamicVar)
	default:
		return errorf("unsupported expression %T", e)
	}
	return nil
}

func (b *builder) path(path []string) {
	for _, key := range path {
		b.op(bytecode.OpGetProperty, b.str(key))
	}
}

// call lowers a helper invocation. Helpers must resolve at compile time.
func (b *builder) call(e *wire.Call) error {
	helper, ok := b.ctx.Resolver.LookupHelper(e.Name, b.meta.Referrer)
	if !ok {
		return errors.Wrapf(ErrHelperNotFound, "%q", e.Name)
	}
	b.op(bytecode.OpPushFrame)
	if err := b.compileArgs(e.Params, e.Hash, nil, false); err != nil {
		return err
	}
	b.op(bytecode.OpHelper, b.value(helper))
	b.op(bytecode.OpPopFrame)
	b.op(bytecode.OpFetch, reg(bytecode.RegV0))
	return nil
}

func (b *builder) curry(e *wire.CurryComponent) error {
	b.op(bytecode.OpPushFrame)
	if err := b.simpleArgs(e.Params, e.Hash, false); err != nil {
		return err
	}
	b.op(bytecode.OpCaptureArgs)
	if err := b.expr(e.Definition); err != nil {
		return err
	}
	b.op(bytecode.OpCurryComponent, b.value(b.meta.Referrer))
	b.op(bytecode.OpPopFrame)
	b.op(bytecode.OpFetch, reg(bytecode.RegV0))
	return nil
}
