package compiler

import (
	"github.com/pkg/errors"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

// builder lowers the statements of one unit into an encoder.
type builder struct {
	ctx       *Context
	unit      *CompilableTemplate
	meta      *ContainingMetadata
	enc       *bytecode.Encoder
	constants *bytecode.ConstantPool

	// splat is set between an OpenElementWithSplat and its FlushElement.
	splat bool
}

func newBuilder(ctx *Context, unit *CompilableTemplate) *builder {
	return &builder{
		ctx:       ctx,
		unit:      unit,
		meta:      unit.Meta,
		enc:       bytecode.NewEncoder(),
		constants: ctx.Program.Constants,
	}
}

func (b *builder) op(code bytecode.Opcode, operands ...int) {
	b.enc.Push(code, operands...)
}

func (b *builder) jump(code bytecode.Opcode, label string, operands ...int) {
	b.enc.PushJump(code, label, operands...)
}

func (b *builder) label(name string) {
	b.enc.Label(name)
}

func (b *builder) str(s string) int {
	return int(b.constants.String(s))
}

func (b *builder) array(ss []string) int {
	return int(b.constants.Array(ss))
}

func (b *builder) value(v any) int {
	return int(b.constants.Value(v))
}

func reg(r bytecode.Register) int {
	return int(r)
}

// block wraps a wire block as a compilable of the current template.
func (b *builder) block(blk *wire.Block) *CompilableTemplate {
	return NewBlock(blk, b.meta)
}

func (b *builder) primitive(v any, undefined bool) error {
	prim, err := b.constants.Primitive(v, undefined)
	if err != nil {
		return err
	}
	b.op(bytecode.OpPrimitive, int(prim))
	return nil
}

func (b *builder) primitiveReference(v any, undefined bool) error {
	if err := b.primitive(v, undefined); err != nil {
		return err
	}
	b.op(bytecode.OpPrimitiveReference)
	return nil
}

// replayable emits a region the updating VM can re-run from Enter. args
// pushes the values the region captures and returns how many.
func (b *builder) replayable(args func() (int, error), body func() error) error {
	b.enc.StartLabels()
	b.op(bytecode.OpPushFrame)
	b.jump(bytecode.OpReturnTo, "ENDINITIAL")
	count, err := args()
	if err != nil {
		return err
	}
	b.op(bytecode.OpEnter, count)
	if err := body(); err != nil {
		return err
	}
	b.label("FINALLY")
	b.op(bytecode.OpExit)
	b.op(bytecode.OpReturn)
	b.label("ENDINITIAL")
	b.op(bytecode.OpPopFrame)
	b.enc.StopLabels()
	return nil
}

// invokeStaticBlock calls a block in the current scope.
func (b *builder) invokeStaticBlock(blk *wire.Block) {
	if blk == nil {
		return
	}
	b.op(bytecode.OpPushFrame)
	b.op(bytecode.OpConstant, b.value(b.block(blk)))
	b.op(bytecode.OpCompileBlock)
	b.op(bytecode.OpInvokeVirtual)
	b.op(bytecode.OpPopFrame)
}

// invokeStaticBlockWithStack calls a block in a child scope whose
// parameters bind to the top callerCount stack values, deepest first.
func (b *builder) invokeStaticBlockWithStack(blk *wire.Block, callerCount int) {
	if blk == nil {
		return
	}
	count := min(callerCount, len(blk.Parameters))
	if count == 0 {
		b.invokeStaticBlock(blk)
		return
	}
	b.op(bytecode.OpPushFrame)
	b.op(bytecode.OpChildScope)
	for i := 0; i < count; i++ {
		b.op(bytecode.OpDup, reg(bytecode.RegFP), callerCount-i)
		b.op(bytecode.OpSetVariable, blk.Parameters[i])
	}
	b.op(bytecode.OpConstant, b.value(b.block(blk)))
	b.op(bytecode.OpCompileBlock)
	b.op(bytecode.OpInvokeVirtual)
	b.op(bytecode.OpPopScope)
	b.op(bytecode.OpPopFrame)
}

// pushYieldableBlock pushes the block triple (table, scope, compilable),
// or three nulls for a missing block.
func (b *builder) pushYieldableBlock(blk *wire.Block) error {
	if blk == nil {
		for i := 0; i < 3; i++ {
			if err := b.primitive(nil, false); err != nil {
				return err
			}
		}
		return nil
	}
	c := b.block(blk)
	b.op(bytecode.OpPushSymbolTable, b.value(c.Block))
	b.op(bytecode.OpPushBlockScope)
	b.op(bytecode.OpConstant, b.value(c))
	return nil
}

// namedBlock is one entry of the block list passed to a component.
type namedBlock struct {
	name  string
	block *wire.Block
}

func blockList(attrs *wire.Block, blocks *wire.NamedBlocks) []namedBlock {
	var out []namedBlock
	if attrs != nil {
		out = append(out, namedBlock{name: "attrs", block: attrs})
	}
	if blocks != nil {
		for i, name := range blocks.Names {
			out = append(out, namedBlock{name: name, block: blocks.Blocks[i]})
		}
	}
	return out
}

// compileArgs pushes block triples, positional values and named values,
// then collects them into an args object.
func (b *builder) compileArgs(params []wire.Expression, hash *wire.Hash, blocks []namedBlock, atNames bool) error {
	blockNames := make([]string, 0, len(blocks))
	for _, nb := range blocks {
		if err := b.pushYieldableBlock(nb.block); err != nil {
			return err
		}
		blockNames = append(blockNames, nb.name)
	}
	for _, p := range params {
		if err := b.expr(p); err != nil {
			return err
		}
	}
	names := make([]string, 0, hash.Len())
	if hash != nil {
		for i, key := range hash.Keys {
			if err := b.expr(hash.Values[i]); err != nil {
				return err
			}
			names = append(names, key)
		}
	}
	b.op(bytecode.OpPushArgs, b.array(names), b.array(blockNames),
		int(bytecode.EncodeArgsFlags(len(params), atNames)))
	return nil
}

// simpleArgs is compileArgs without blocks, collapsing to PushEmptyArgs.
func (b *builder) simpleArgs(params []wire.Expression, hash *wire.Hash, atNames bool) error {
	if len(params) == 0 && hash.Len() == 0 {
		b.op(bytecode.OpPushEmptyArgs)
		return nil
	}
	return b.compileArgs(params, hash, nil, atNames)
}

func errorf(format string, args ...any) error {
	return errors.Errorf("compiler: "+format, args...)
}
