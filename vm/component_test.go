package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/host"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/tracked"
	"github.com/chazu/trellis/vm"
	"github.com/chazu/trellis/wire"
)

type probe struct {
	name string
	log  *[]string
}

func (p *probe) record(event string) { *p.log = append(*p.log, p.name+":"+event) }

func (p *probe) DidInsert(vm.Bounds) { p.record("didInsert") }
func (p *probe) WillUpdate()         { p.record("willUpdate") }
func (p *probe) DidUpdate()          { p.record("didUpdate") }
func (p *probe) WillDestroy()        { p.record("willDestroy") }

func probeClass(name string, log *[]string) *host.Class {
	return &host.Class{New: func(*vm.Arguments) any { return &probe{name: name, log: log} }}
}

func TestClassLifecycleStaticAndDynamic(t *testing.T) {
	invocations := map[string]wire.Statement{
		"static":  &wire.Component{Tag: "Counter", Args: hash("@n", self("n"))},
		"dynamic": &wire.DynamicComponent{Definition: lit("counter"), Hash: hash("n", self("n"))},
		"block":   &wire.InvokeBlock{Name: "counter", Hash: hash("n", self("n"))},
	}
	for name, stmt := range invocations {
		t.Run(name, func(t *testing.T) {
			var events []string
			h := newHarness(t)
			h.class("counter", probeClass("c", &events), []string{"@n"}, element("span", appendOf(sym(1)))...)
			m := tracked.NewMap(map[string]any{"n": 1})

			res := h.render(tpl(nil, stmt), m)
			assert.Equal(t, "<span>1</span>", h.html())
			assert.Equal(t, []string{"c:didInsert"}, events)

			h.rerender(res)
			assert.Equal(t, []string{"c:didInsert"}, events)

			m.Set("n", 2)
			h.rerender(res)
			assert.Equal(t, "<span>2</span>", h.html())
			assert.Equal(t, []string{"c:didInsert", "c:willUpdate", "c:didUpdate"}, events)

			res.Destroy()
			assert.Equal(t, "c:willDestroy", events[len(events)-1])
			assert.Empty(t, h.html())
		})
	}
}

func TestNestedComponentOrder(t *testing.T) {
	var events []string
	h := newHarness(t)
	h.class("inner", probeClass("inner", &events), nil, text("i"))
	h.class("outer", probeClass("outer", &events), nil,
		element("div", &wire.Component{Tag: "inner"})...)

	res := h.render(tpl(nil, &wire.Component{Tag: "outer"}), nil)
	assert.Equal(t, "<div>i</div>", h.html())
	assert.Equal(t, []string{"inner:didInsert", "outer:didInsert"}, events)

	events = nil
	res.Destroy()
	assert.Equal(t, []string{"inner:willDestroy", "outer:willDestroy"}, events)
}

func TestRebuiltRegionDestroysComponents(t *testing.T) {
	var events []string
	h := newHarness(t)
	h.class("item", probeClass("item", &events), nil, text("x"))
	m := tracked.NewMap(map[string]any{"show": true})

	res := h.render(tpl(nil, &wire.If{Condition: self("show"), Block: block(&wire.Component{Tag: "item"})}), m)
	require.Equal(t, []string{"item:didInsert"}, events)

	m.Set("show", false)
	h.rerender(res)
	assert.Equal(t, []string{"item:didInsert", "item:willDestroy"}, events)
	assert.Equal(t, "<!---->", h.html())
}

type selfObject struct {
	Title string
}

func TestClassSelfAndNamedArgs(t *testing.T) {
	h := newHarness(t)
	h.class("titled", &host.Class{New: func(args *vm.Arguments) any {
		return &selfObject{Title: "T-" + args.Get("label").Value().(string)}
	}}, nil, element("h1", appendOf(self("title")))...)

	h.render(tpl(nil, &wire.Component{Tag: "titled", Args: hash("@label", lit("a"))}), nil)
	assert.Equal(t, "<h1>T-a</h1>", h.html())
}

func TestPrepareArgs(t *testing.T) {
	h := newHarness(t)
	h.class("shout", &host.Class{
		Capabilities: host.DefaultClassCapabilities | compiler.PrepareArgs,
		New:          func(*vm.Arguments) any { return &selfObject{} },
		PrepareArgs: func(args *vm.Arguments) *vm.Arguments {
			out := vm.NewArguments(nil, nil)
			out.Named.Set("word", args.Get("word"))
			out.Named.Set("tail", reference.Const("!"))
			return out
		},
	}, []string{"@word", "@tail"}, appendOf(sym(1)), appendOf(sym(2)))

	h.render(tpl(nil, &wire.Component{Tag: "shout", Args: hash("@word", lit("hey"))}), nil)
	assert.Equal(t, "hey!", h.html())
}

func TestDynamicLayout(t *testing.T) {
	h := newHarness(t)
	layout := compiler.NewLayout(&wire.Template{
		ID: "alt", Block: &wire.Block{Statements: []wire.Statement{text("alternate")}},
	}, "alt")
	h.class("swappable", &host.Class{
		Capabilities: host.DefaultClassCapabilities | compiler.DynamicLayout,
		New:          func(*vm.Arguments) any { return &selfObject{} },
		Layout:       layout,
	}, nil, text("default"))

	h.render(tpl(nil, &wire.DynamicComponent{Definition: lit("swappable")}), nil)
	assert.Equal(t, "alternate", h.html())
}

func TestAttrSplat(t *testing.T) {
	h := newHarness(t)
	h.templateOnly("button", []string{"&attrs"},
		&wire.OpenElementWithSplat{Tag: "button"},
		&wire.StaticAttr{Name: "type", Value: "button"},
		&wire.AttrSplat{Symbol: 1},
		&wire.FlushElement{},
		text("go"),
		&wire.CloseElement{},
	)
	h.render(tpl(nil, &wire.Component{
		Tag:   "button",
		Attrs: []wire.Statement{&wire.StaticAttr{Name: "class", Value: "primary"}},
	}), nil)
	assert.Equal(t, `<button type="button" class="primary">go</button>`, h.html())
}
