package dom

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeKind distinguishes SimpleNode variants.
type NodeKind uint8

const (
	ElementNode NodeKind = iota + 1
	TextNode
	CommentNode
	FragmentNode
)

// Attr is one element attribute.
type Attr struct {
	Name  string
	Value string
}

// SimpleNode is a node of the in-memory document.
type SimpleNode struct {
	Kind  NodeKind
	Tag   string
	Data  string
	Attrs []Attr

	parent, firstChild, lastChild, prev, next *SimpleNode
}

// Parent returns the parent node or nil.
func (n *SimpleNode) Parent() *SimpleNode { return n.parent }

// FirstChild returns the first child or nil.
func (n *SimpleNode) FirstChild() *SimpleNode { return n.firstChild }

// NextSibling returns the next sibling or nil.
func (n *SimpleNode) NextSibling() *SimpleNode { return n.next }

// Children returns the child nodes in order.
func (n *SimpleNode) Children() []*SimpleNode {
	var out []*SimpleNode
	for c := n.firstChild; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// Attribute returns the named attribute value.
func (n *SimpleNode) Attribute(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Document is an in-memory TreeBuilder. It counts tree mutations so callers
// can assert that an update pass left the tree alone.
type Document struct {
	body      *SimpleNode
	mutations int
}

var _ TreeBuilder = (*Document)(nil)

// NewDocument creates a document with an empty body element.
func NewDocument() *Document {
	return &Document{body: &SimpleNode{Kind: ElementNode, Tag: "body"}}
}

// Body returns the root element.
func (d *Document) Body() *SimpleNode {
	return d.body
}

// Mutations returns the number of tree mutations performed so far.
func (d *Document) Mutations() int {
	return d.mutations
}

// ResetMutations zeroes the mutation counter.
func (d *Document) ResetMutations() {
	d.mutations = 0
}

func simple(n Node) *SimpleNode {
	if n == nil {
		return nil
	}
	return n.(*SimpleNode)
}

// node converts to the interface without smuggling a typed nil.
func node(n *SimpleNode) Node {
	if n == nil {
		return nil
	}
	return n
}

func (d *Document) CreateElement(tag string) Node {
	return &SimpleNode{Kind: ElementNode, Tag: strings.ToLower(tag)}
}

func (d *Document) CreateText(text string) Node {
	return &SimpleNode{Kind: TextNode, Data: text}
}

func (d *Document) CreateComment(text string) Node {
	return &SimpleNode{Kind: CommentNode, Data: text}
}

func (d *Document) InsertBefore(parent, n, reference Node) {
	p, c, ref := simple(parent), simple(n), simple(reference)
	d.mutations++
	if c.parent != nil {
		unlink(c)
	}
	c.parent = p
	if ref == nil {
		c.prev = p.lastChild
		if p.lastChild != nil {
			p.lastChild.next = c
		} else {
			p.firstChild = c
		}
		p.lastChild = c
		return
	}
	c.prev, c.next = ref.prev, ref
	if ref.prev != nil {
		ref.prev.next = c
	} else {
		p.firstChild = c
	}
	ref.prev = c
}

func unlink(n *SimpleNode) {
	p := n.parent
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		p.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		p.lastChild = n.prev
	}
	n.parent, n.prev, n.next = nil, nil, nil
}

func (d *Document) Remove(n Node) {
	c := simple(n)
	if c.parent == nil {
		return
	}
	d.mutations++
	unlink(c)
}

func (d *Document) SetAttribute(element Node, name, value string) {
	el := simple(element)
	d.mutations++
	for i := range el.Attrs {
		if el.Attrs[i].Name == name {
			el.Attrs[i].Value = value
			return
		}
	}
	el.Attrs = append(el.Attrs, Attr{Name: name, Value: value})
}

func (d *Document) RemoveAttribute(element Node, name string) {
	el := simple(element)
	for i := range el.Attrs {
		if el.Attrs[i].Name == name {
			d.mutations++
			el.Attrs = append(el.Attrs[:i], el.Attrs[i+1:]...)
			return
		}
	}
}

func (d *Document) SetText(n Node, text string) {
	d.mutations++
	simple(n).Data = text
}

func (d *Document) TagName(element Node) string {
	return simple(element).Tag
}

func (d *Document) Parent(n Node) Node {
	return node(simple(n).parent)
}

func (d *Document) NextSibling(n Node) Node {
	return node(simple(n).next)
}

func (d *Document) FirstChild(n Node) Node {
	return node(simple(n).firstChild)
}

func (d *Document) IsElement(n Node) bool {
	s, ok := n.(*SimpleNode)
	return ok && s != nil && s.Kind == ElementNode
}

var fragmentContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

func (d *Document) InsertHTML(parent, reference Node, markup string) (Node, Node, error) {
	if markup == "" {
		c := d.CreateComment("")
		d.InsertBefore(parent, c, reference)
		return c, c, nil
	}
	parsed, err := html.ParseFragment(strings.NewReader(markup), fragmentContext)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse trusted html")
	}
	var first, last Node
	for _, hn := range parsed {
		n := convert(hn)
		if n == nil {
			continue
		}
		d.InsertBefore(parent, n, reference)
		if first == nil {
			first = n
		}
		last = n
	}
	if first == nil {
		c := d.CreateComment("")
		d.InsertBefore(parent, c, reference)
		return c, c, nil
	}
	return first, last, nil
}

func convert(hn *html.Node) *SimpleNode {
	var n *SimpleNode
	switch hn.Type {
	case html.ElementNode:
		n = &SimpleNode{Kind: ElementNode, Tag: hn.Data}
		for _, a := range hn.Attr {
			n.Attrs = append(n.Attrs, Attr{Name: a.Key, Value: a.Val})
		}
	case html.TextNode:
		return &SimpleNode{Kind: TextNode, Data: hn.Data}
	case html.CommentNode:
		return &SimpleNode{Kind: CommentNode, Data: hn.Data}
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		child := convert(c)
		if child == nil {
			continue
		}
		child.parent = n
		child.prev = n.lastChild
		if n.lastChild != nil {
			n.lastChild.next = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
	}
	return n
}
