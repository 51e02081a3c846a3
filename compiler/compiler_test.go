package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

type fakeManager Capabilities

func (m fakeManager) Capabilities(any) Capabilities { return Capabilities(m) }

type fakeResolver struct {
	components map[string]*ComponentDefinition
	helpers    map[string]any
}

func (r *fakeResolver) LookupComponent(name string, _ any) (*ComponentDefinition, bool) {
	d, ok := r.components[name]
	return d, ok
}

func (r *fakeResolver) LookupHelper(name string, _ any) (any, bool) {
	h, ok := r.helpers[name]
	return h, ok
}

func newTestContext(r *fakeResolver) *Context {
	if r == nil {
		r = &fakeResolver{}
	}
	return NewContext(bytecode.NewProgram(), r)
}

func template(symbols []string, stmts ...wire.Statement) *wire.Template {
	return &wire.Template{ID: "test", Symbols: symbols, Block: &wire.Block{Statements: stmts}}
}

// opcodes returns the instructions of the unit behind h.
func opcodes(t *testing.T, ctx *Context, h bytecode.Handle) []bytecode.Opcode {
	t.Helper()
	heap := ctx.Program.Heap
	start, err := heap.Address(h)
	require.NoError(t, err)
	var out []bytecode.Opcode
	for i := 0; i < heap.Size(h); i++ {
		out = append(out, heap.At(start+i).Code)
	}
	return out
}

func compile(t *testing.T, ctx *Context, c *CompilableTemplate) []bytecode.Opcode {
	t.Helper()
	h, err := c.Compile(ctx)
	require.NoError(t, err)
	return opcodes(t, ctx, h)
}

func TestStaticContent(t *testing.T) {
	ctx := newTestContext(nil)
	ops := compile(t, ctx, NewTemplate(template(nil,
		&wire.OpenElement{Tag: "p"},
		&wire.StaticAttr{Name: "class", Value: "x"},
		&wire.FlushElement{},
		&wire.Text{Value: "hi"},
		&wire.Append{Value: &wire.Literal{Value: 3}},
		&wire.Append{Value: &wire.Literal{Value: nil}},
		&wire.CloseElement{},
	), nil))

	assert.Equal(t, []bytecode.Opcode{
		bytecode.OpOpenElement, bytecode.OpStaticAttr, bytecode.OpFlushElement,
		bytecode.OpText, bytecode.OpText, bytecode.OpCloseElement, bytecode.OpReturn,
	}, ops)
}

func TestCompileIsCached(t *testing.T) {
	ctx := newTestContext(nil)
	c := NewTemplate(template(nil, &wire.Text{Value: "x"}), nil)
	h1, err := c.Compile(ctx)
	require.NoError(t, err)
	h2, err := c.Compile(ctx)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.True(t, c.Compiled(ctx.Program))
	assert.Equal(t, 1, ctx.Program.Heap.Units())
}

func TestCompileIsCachedPerProgram(t *testing.T) {
	first := newTestContext(nil)
	second := newTestContext(nil)
	c := NewLayout(template(nil, &wire.Text{Value: "x"}), "shared")

	_, err := NewTemplate(template(nil, &wire.Text{Value: "pad"}), nil).Compile(second)
	require.NoError(t, err)

	h1, err := c.Compile(first)
	require.NoError(t, err)
	h2, err := c.Compile(second)
	require.NoError(t, err)

	assert.True(t, c.Compiled(first.Program))
	assert.True(t, c.Compiled(second.Program))
	assert.Equal(t, 1, first.Program.Heap.Units())
	assert.Equal(t, 2, second.Program.Heap.Units())
	_, err = second.Program.Heap.Address(h2)
	require.NoError(t, err)
	_, err = first.Program.Heap.Address(h1)
	require.NoError(t, err)

	again, err := c.Compile(second)
	require.NoError(t, err)
	assert.Equal(t, h2, again)
}

func TestIfIsReplayable(t *testing.T) {
	ctx := newTestContext(nil)
	ops := compile(t, ctx, NewTemplate(template([]string{"@show"},
		&wire.If{
			Condition: &wire.GetSymbol{Symbol: 1},
			Block:     &wire.Block{Statements: []wire.Statement{&wire.Text{Value: "yes"}}},
		},
	), nil))

	assert.Equal(t, []bytecode.Opcode{
		bytecode.OpPushFrame, bytecode.OpReturnTo,
		bytecode.OpGetVariable, bytecode.OpToBoolean, bytecode.OpEnter,
		bytecode.OpJumpUnless,
		bytecode.OpPushFrame, bytecode.OpConstant, bytecode.OpCompileBlock, bytecode.OpInvokeVirtual, bytecode.OpPopFrame,
		bytecode.OpJump,
		bytecode.OpExit, bytecode.OpReturn,
		bytecode.OpPopFrame,
		bytecode.OpReturn,
	}, ops)

	// ReturnTo lands on the trailing PopFrame.
	start, _ := ctx.Program.Heap.Address(0)
	returnTo := ctx.Program.Heap.At(start + 1)
	assert.Equal(t, int32(start+14), returnTo.Op1)
}

func TestAppendSwitchesOnContentType(t *testing.T) {
	ctx := newTestContext(nil)
	ops := compile(t, ctx, NewTemplate(template(nil,
		&wire.Append{Value: &wire.GetFree{Name: "name"}},
	), nil))
	assert.Contains(t, ops, bytecode.OpContentType)
	assert.Contains(t, ops, bytecode.OpAppendText)
	assert.Contains(t, ops, bytecode.OpAppendSafeHTML)
	assert.Contains(t, ops, bytecode.OpResolveCurriedComponent)
	assert.NotContains(t, ops, bytecode.OpResolveMaybeLocal)
}

func TestGetFreeWithEval(t *testing.T) {
	ctx := newTestContext(nil)
	tpl := template(nil, &wire.Append{Value: &wire.GetFree{Name: "name"}})
	tpl.HasEval = true
	ops := compile(t, ctx, NewTemplate(tpl, nil))
	assert.Contains(t, ops, bytecode.OpResolveMaybeLocal)
}

func TestHelperNotFound(t *testing.T) {
	ctx := newTestContext(nil)
	c := NewTemplate(template(nil,
		&wire.Append{Value: &wire.Call{Name: "missing"}},
	), nil)
	_, err := c.Compile(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHelperNotFound)
	assert.False(t, c.Compiled(ctx.Program))
}

func TestHelperCall(t *testing.T) {
	ctx := newTestContext(&fakeResolver{helpers: map[string]any{"upper": "upper-helper"}})
	ops := compile(t, ctx, NewTemplate(template(nil,
		&wire.Append{Value: &wire.Call{Name: "upper", Params: []wire.Expression{&wire.Literal{Value: "a"}}}},
	), nil))
	assert.Subset(t, ops, []bytecode.Opcode{bytecode.OpPushArgs, bytecode.OpHelper, bytecode.OpFetch})
}

func layoutDef(name string, caps Capabilities, symbols []string, stmts ...wire.Statement) *ComponentDefinition {
	return &ComponentDefinition{
		Name:    name,
		Manager: fakeManager(caps),
		Layout:  NewLayout(template(symbols, stmts...), name),
	}
}

func TestStaticComponentBindsSymbols(t *testing.T) {
	def := layoutDef("Card", 0, []string{"@title", "&default"})
	ctx := newTestContext(&fakeResolver{components: map[string]*ComponentDefinition{"Card": def}})

	ops := compile(t, ctx, NewTemplate(template(nil,
		&wire.Component{
			Tag:    "Card",
			Args:   &wire.Hash{Keys: []string{"@title"}, Values: []wire.Expression{&wire.Literal{Value: "t"}}},
			Blocks: &wire.NamedBlocks{Names: []string{"default"}, Blocks: []*wire.Block{{}}},
		},
	), nil))

	assert.Contains(t, ops, bytecode.OpRootScope)
	assert.Contains(t, ops, bytecode.OpSetBlock)
	assert.NotContains(t, ops, bytecode.OpPushArgs)
	assert.NotContains(t, ops, bytecode.OpCreateComponent)
	assert.NotContains(t, ops, bytecode.OpVirtualRootScope)
	assert.Equal(t, bytecode.OpPop, ops[len(ops)-2])
}

func TestPrepareArgsTakesGeneralPath(t *testing.T) {
	def := layoutDef("Card", PrepareArgs|CreateInstance, []string{"@title"})
	ctx := newTestContext(&fakeResolver{components: map[string]*ComponentDefinition{"Card": def}})

	ops := compile(t, ctx, NewTemplate(template(nil, &wire.Component{Tag: "Card"}), nil))
	assert.Contains(t, ops, bytecode.OpPrepareArgs)
	assert.Contains(t, ops, bytecode.OpVirtualRootScope)
	assert.Contains(t, ops, bytecode.OpPopulateLayout)
	assert.NotContains(t, ops, bytecode.OpGetComponentLayout)
}

func TestUnresolvedComponentIsDynamic(t *testing.T) {
	ctx := newTestContext(nil)
	ops := compile(t, ctx, NewTemplate(template(nil, &wire.Component{Tag: "Later"}), nil))
	assert.Contains(t, ops, bytecode.OpResolveDynamicComponent)
	assert.Contains(t, ops, bytecode.OpGetComponentLayout)
	assert.Contains(t, ops, bytecode.OpEnter)

	ctx = newTestContext(nil)
	ops = compile(t, ctx, NewTemplate(template(nil, &wire.InvokeBlock{Name: "later"}), nil))
	assert.Contains(t, ops, bytecode.OpResolveDynamicComponent)
}

func TestElementHookOnlyInLayout(t *testing.T) {
	stmts := []wire.Statement{
		&wire.OpenElementWithSplat{Tag: "div"},
		&wire.AttrSplat{Symbol: 1},
		&wire.FlushElement{},
		&wire.CloseElement{},
	}

	ctx := newTestContext(nil)
	ops := compile(t, ctx, NewLayout(template([]string{AttrsBlock}, stmts...), "x"))
	assert.Contains(t, ops, bytecode.OpDidCreateElement)
	assert.Contains(t, ops, bytecode.OpInvokeYield)

	ctx = newTestContext(nil)
	ops = compile(t, ctx, NewTemplate(template([]string{AttrsBlock}, stmts...), "x"))
	assert.NotContains(t, ops, bytecode.OpDidCreateElement)
}

func TestEachLoopsBackwards(t *testing.T) {
	ctx := newTestContext(nil)
	h, err := NewTemplate(template([]string{"item"},
		&wire.Each{
			List:  &wire.GetFree{Name: "items"},
			Block: &wire.Block{Parameters: []int{1}, Statements: []wire.Statement{&wire.Text{Value: "x"}}},
		},
	), nil).Compile(ctx)
	require.NoError(t, err)

	heap := ctx.Program.Heap
	start, _ := heap.Address(h)
	var iterate, back int = -1, -1
	for i := 0; i < heap.Size(h); i++ {
		op := heap.At(start + i)
		switch op.Code {
		case bytecode.OpIterate:
			iterate = start + i
		case bytecode.OpJump:
			if int(op.Op1) <= iterate {
				back = int(op.Op1)
			}
		}
	}
	assert.Equal(t, iterate, back, "loop jump should target Iterate")
}

func TestLetBindsParams(t *testing.T) {
	ctx := newTestContext(nil)
	ops := compile(t, ctx, NewTemplate(template([]string{"a", "b"},
		&wire.Let{
			Params: []wire.Expression{&wire.Literal{Value: 1}, &wire.Literal{Value: 2}},
			Block:  &wire.Block{Parameters: []int{1, 2}},
		},
	), nil))
	assert.Equal(t, []bytecode.Opcode{
		bytecode.OpPrimitive, bytecode.OpPrimitiveReference,
		bytecode.OpPrimitive, bytecode.OpPrimitiveReference,
		bytecode.OpPushFrame, bytecode.OpChildScope,
		bytecode.OpDup, bytecode.OpSetVariable,
		bytecode.OpDup, bytecode.OpSetVariable,
		bytecode.OpConstant, bytecode.OpCompileBlock, bytecode.OpInvokeVirtual,
		bytecode.OpPopScope, bytecode.OpPopFrame,
		bytecode.OpPop, bytecode.OpReturn,
	}, ops)
}

func TestCapabilities(t *testing.T) {
	c := PrepareArgs | CreateInstance
	assert.True(t, c.Has(PrepareArgs))
	assert.False(t, c.Has(PrepareArgs|DynamicScope))
	assert.Equal(t, "PrepareArgs|CreateInstance", c.String())
	assert.Equal(t, "none", Capabilities(0).String())
	assert.True(t, AllCapabilities.Has(WillDestroy))
}

func TestProgramSymbolTable(t *testing.T) {
	table := &ProgramSymbolTable{Symbols: []string{"@title", "&default", "x", AttrsBlock}}
	assert.Equal(t, 5, table.Size())
	assert.Equal(t, 3, table.Slot("x"))
	assert.Equal(t, -1, table.Slot("y"))
	assert.Equal(t, map[string]int{"title": 1}, table.Named())
	assert.Equal(t, map[string]int{"default": 2, "attrs": 4}, table.Blocks())
}
