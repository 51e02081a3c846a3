package compiler

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/wire"
)

var log = commonlog.GetLogger("trellis.compiler")

// Context carries what every compilation needs: the program being built
// and the resolver for component and helper names.
type Context struct {
	Program  *bytecode.Program
	Resolver Resolver
}

// NewContext creates a compile context over program.
func NewContext(program *bytecode.Program, resolver Resolver) *Context {
	return &Context{Program: program, Resolver: resolver}
}

// CompilableTemplate is a unit compiled on demand: a template, a component
// layout or a block. Program is set for templates and layouts, Block for
// blocks.
type CompilableTemplate struct {
	Name       string
	Statements []wire.Statement
	Meta       *ContainingMetadata
	Program    *ProgramSymbolTable
	Block      *BlockSymbolTable

	mu      sync.Mutex
	handles map[*bytecode.Program]bytecode.Handle
}

func newProgram(t *wire.Template, referrer any, layout bool) *CompilableTemplate {
	meta := &ContainingMetadata{
		Referrer: referrer,
		Symbols:  t.Symbols,
		HasEval:  t.HasEval,
		Layout:   layout,
	}
	var stmts []wire.Statement
	if t.Block != nil {
		stmts = t.Block.Statements
	}
	return &CompilableTemplate{
		Name:       t.ID,
		Statements: stmts,
		Meta:       meta,
		Program:    &ProgramSymbolTable{Symbols: t.Symbols, HasEval: t.HasEval},
	}
}

// NewTemplate wraps a top-level template.
func NewTemplate(t *wire.Template, referrer any) *CompilableTemplate {
	return newProgram(t, referrer, false)
}

// NewLayout wraps a component layout.
func NewLayout(t *wire.Template, referrer any) *CompilableTemplate {
	return newProgram(t, referrer, true)
}

// NewBlock wraps a block of the template described by meta.
func NewBlock(b *wire.Block, meta *ContainingMetadata) *CompilableTemplate {
	return &CompilableTemplate{
		Name:       "block",
		Statements: b.Statements,
		Meta:       meta,
		Block:      &BlockSymbolTable{Parameters: b.Parameters},
	}
}

// IsBlock reports whether c is a block rather than a template.
func (c *CompilableTemplate) IsBlock() bool {
	return c.Block != nil
}

// Compiled reports whether Compile has already succeeded for program.
func (c *CompilableTemplate) Compiled(program *bytecode.Program) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handles[program]
	return ok
}

func (c *CompilableTemplate) String() string {
	if c.IsBlock() {
		return fmt.Sprintf("<block of %v>", c.Meta.Referrer)
	}
	return fmt.Sprintf("<template %s>", c.Name)
}

// Compile lowers the unit into ctx.Program and returns its handle. Handles
// are cached per program, so a unit shared by several runtimes is compiled
// once into each of their heaps.
func (c *CompilableTemplate) Compile(ctx *Context) (bytecode.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handles[ctx.Program]; ok {
		return h, nil
	}
	b := newBuilder(ctx, c)
	if err := b.statements(c.Statements); err != nil {
		return -1, errors.Wrapf(err, "compile %s", c)
	}
	h, err := b.enc.Commit(ctx.Program.Heap)
	if err != nil {
		return -1, errors.Wrapf(err, "compile %s", c)
	}
	if c.handles == nil {
		c.handles = make(map[*bytecode.Program]bytecode.Handle)
	}
	c.handles[ctx.Program] = h
	log.Debugf("compiled %s as unit %d (%d instructions)", c, h, ctx.Program.Heap.Size(h))
	return h, nil
}
