package vm

import (
	"github.com/pkg/errors"

	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/reference"
)

// Bounds is a contiguous run of sibling nodes.
type Bounds interface {
	Parent() dom.Node
	First() dom.Node
	Last() dom.Node
}

type nodeBounds struct {
	parent      dom.Node
	first, last dom.Node
}

func (b *nodeBounds) Parent() dom.Node { return b.parent }
func (b *nodeBounds) First() dom.Node  { return b.first }
func (b *nodeBounds) Last() dom.Node   { return b.last }

// liveBlock tracks the nodes appended while it is open. Its first and last
// entries may be nested blocks, resolved each time they are asked for, so a
// nested block that is cleared and rebuilt keeps its parent's bounds
// correct.
type liveBlock struct {
	parent      dom.Node
	first, last Bounds
	nesting     int
	remote      bool
}

func (b *liveBlock) Parent() dom.Node { return b.parent }

func (b *liveBlock) First() dom.Node {
	if b.first == nil {
		return nil
	}
	return b.first.First()
}

func (b *liveBlock) Last() dom.Node {
	if b.last == nil {
		return nil
	}
	return b.last.Last()
}

func (b *liveBlock) didAppendNode(n dom.Node) {
	if b.nesting != 0 {
		return
	}
	nb := &nodeBounds{parent: b.parent, first: n, last: n}
	if b.first == nil {
		b.first = nb
	}
	b.last = nb
}

func (b *liveBlock) didAppendBounds(bounds Bounds) {
	if b.nesting != 0 {
		return
	}
	if b.first == nil {
		b.first = bounds
	}
	b.last = bounds
}

func (b *liveBlock) openElement(el dom.Node) {
	b.didAppendNode(el)
	b.nesting++
}

func (b *liveBlock) closeElement() {
	b.nesting--
}

func (b *liveBlock) reset() {
	b.first, b.last, b.nesting = nil, nil, 0
}

// clear removes every node of the block and returns the node that followed
// it.
func (b *liveBlock) clear(tb dom.TreeBuilder) dom.Node {
	return clearBounds(tb, b)
}

func clearBounds(tb dom.TreeBuilder, b Bounds) dom.Node {
	first, last := b.First(), b.Last()
	if first == nil {
		return nil
	}
	next := tb.NextSibling(last)
	for n := first; n != nil; {
		following := tb.NextSibling(n)
		tb.Remove(n)
		if n == last {
			break
		}
		n = following
	}
	return next
}

type cursor struct {
	element     dom.Node
	nextSibling dom.Node
}

// ElementBuilder appends nodes at a cursor in the output tree and keeps
// the stack of open live blocks.
type ElementBuilder struct {
	dom          dom.TreeBuilder
	cursors      []cursor
	blocks       []*liveBlock
	constructing dom.Node
}

func newElementBuilder(tb dom.TreeBuilder, parent, nextSibling dom.Node) *ElementBuilder {
	return &ElementBuilder{
		dom:     tb,
		cursors: []cursor{{element: parent, nextSibling: nextSibling}},
	}
}

func (b *ElementBuilder) element() dom.Node {
	return b.cursors[len(b.cursors)-1].element
}

func (b *ElementBuilder) nextSibling() dom.Node {
	return b.cursors[len(b.cursors)-1].nextSibling
}

func (b *ElementBuilder) block() *liveBlock {
	if len(b.blocks) == 0 {
		return nil
	}
	return b.blocks[len(b.blocks)-1]
}

// pushBlock opens blk. A non-remote block reports itself to the enclosing
// block, which then tracks it lazily.
func (b *ElementBuilder) pushBlock(blk *liveBlock) {
	if current := b.block(); current != nil && !blk.remote {
		current.didAppendBounds(blk)
	}
	b.blocks = append(b.blocks, blk)
}

func (b *ElementBuilder) pushLiveBlock(remote bool) *liveBlock {
	blk := &liveBlock{parent: b.element(), remote: remote}
	b.pushBlock(blk)
	return blk
}

// popBlock closes the innermost block. A block that received no nodes gets
// an empty comment so it always has bounds.
func (b *ElementBuilder) popBlock() (*liveBlock, error) {
	blk := b.block()
	if blk == nil {
		return nil, errors.New("vm: no open block")
	}
	if blk.first == nil {
		b.appendComment("")
	}
	b.blocks = b.blocks[:len(b.blocks)-1]
	return blk, nil
}

func (b *ElementBuilder) insert(n dom.Node) {
	b.dom.InsertBefore(b.element(), n, b.nextSibling())
}

func (b *ElementBuilder) appendText(text string) dom.Node {
	n := b.dom.CreateText(text)
	b.insert(n)
	b.block().didAppendNode(n)
	return n
}

func (b *ElementBuilder) appendComment(text string) dom.Node {
	n := b.dom.CreateComment(text)
	b.insert(n)
	b.block().didAppendNode(n)
	return n
}

func (b *ElementBuilder) appendHTML(markup string) (Bounds, error) {
	first, last, err := b.dom.InsertHTML(b.element(), b.nextSibling(), markup)
	if err != nil {
		return nil, errors.Wrap(err, "vm: insert markup")
	}
	bounds := &nodeBounds{parent: b.element(), first: first, last: last}
	b.block().didAppendBounds(bounds)
	return bounds, nil
}

func (b *ElementBuilder) openElement(tag string) dom.Node {
	b.constructing = b.dom.CreateElement(tag)
	return b.constructing
}

func (b *ElementBuilder) flushElement() error {
	el := b.constructing
	if el == nil {
		return errors.New("vm: flush without an open element")
	}
	b.insert(el)
	b.block().openElement(el)
	b.cursors = append(b.cursors, cursor{element: el})
	b.constructing = nil
	return nil
}

func (b *ElementBuilder) closeElement() error {
	if len(b.cursors) < 2 {
		return errors.New("vm: close without an open element")
	}
	b.block().closeElement()
	b.cursors = b.cursors[:len(b.cursors)-1]
	return nil
}

// pushRemoteElement redirects output into dest. A nil insertBefore appends;
// an undefined one replaces dest's existing children first.
func (b *ElementBuilder) pushRemoteElement(dest dom.Node, insertBefore any) *liveBlock {
	var next dom.Node
	switch {
	case insertBefore == nil:
	case reference.IsUndefined(insertBefore):
		for c := b.dom.FirstChild(dest); c != nil; c = b.dom.FirstChild(dest) {
			b.dom.Remove(c)
		}
	default:
		next = insertBefore
	}
	b.cursors = append(b.cursors, cursor{element: dest, nextSibling: next})
	return b.pushLiveBlock(true)
}

func (b *ElementBuilder) popRemoteElement() error {
	if _, err := b.popBlock(); err != nil {
		return err
	}
	b.cursors = b.cursors[:len(b.cursors)-1]
	return nil
}
