package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/host"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/vm"
	"github.com/chazu/trellis/wire"
)

type harness struct {
	t   *testing.T
	reg *host.Registry
	doc *dom.Document
	rt  *vm.Runtime
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg := host.NewRegistry()
	doc := dom.NewDocument()
	return &harness{
		t:   t,
		reg: reg,
		doc: doc,
		rt:  vm.NewRuntime(compiler.NewContext(bytecode.NewProgram(), reg), doc, nil),
	}
}

func tpl(symbols []string, stmts ...wire.Statement) *wire.Template {
	return &wire.Template{ID: "main", Symbols: symbols, Block: &wire.Block{Statements: stmts}}
}

func (h *harness) templateOnly(name string, symbols []string, stmts ...wire.Statement) *compiler.ComponentDefinition {
	h.t.Helper()
	def, err := h.reg.RegisterTemplateOnly(name, &wire.Template{
		ID: name, Symbols: symbols, Block: &wire.Block{Statements: stmts},
	})
	require.NoError(h.t, err)
	return def
}

func (h *harness) class(name string, c *host.Class, symbols []string, stmts ...wire.Statement) {
	h.t.Helper()
	_, err := h.reg.RegisterComponent(name, host.ClassManager{}, c, &wire.Template{
		ID: name, Symbols: symbols, Block: &wire.Block{Statements: stmts},
	})
	require.NoError(h.t, err)
}

func (h *harness) render(t *wire.Template, self any, opts ...vm.RenderOption) *vm.RenderResult {
	h.t.Helper()
	res, err := h.rt.Render(compiler.NewTemplate(t, "main"), h.doc.Body(), reference.Const(self), opts...)
	require.NoError(h.t, err)
	return res
}

func (h *harness) rerender(res *vm.RenderResult) {
	h.t.Helper()
	h.doc.ResetMutations()
	require.NoError(h.t, res.Rerender())
}

func (h *harness) html() string {
	return dom.InnerHTML(h.doc.Body())
}

// Statement and expression shorthands.

func text(s string) wire.Statement { return &wire.Text{Value: s} }

func appendOf(e wire.Expression) wire.Statement { return &wire.Append{Value: e} }

func lit(v any) wire.Expression { return &wire.Literal{Value: v} }

func self(path ...string) wire.Expression { return &wire.GetSymbol{Symbol: 0, Path: path} }

func sym(n int, path ...string) wire.Expression { return &wire.GetSymbol{Symbol: n, Path: path} }

func hash(kv ...any) *wire.Hash {
	h := &wire.Hash{}
	for i := 0; i < len(kv); i += 2 {
		h.Keys = append(h.Keys, kv[i].(string))
		h.Values = append(h.Values, kv[i+1].(wire.Expression))
	}
	return h
}

func block(stmts ...wire.Statement) *wire.Block { return &wire.Block{Statements: stmts} }

func element(tag string, body ...wire.Statement) []wire.Statement {
	out := []wire.Statement{&wire.OpenElement{Tag: tag}, &wire.FlushElement{}}
	out = append(out, body...)
	return append(out, &wire.CloseElement{})
}

func compilerTemplate(t *wire.Template) *compiler.CompilableTemplate {
	return compiler.NewTemplate(t, "main")
}
