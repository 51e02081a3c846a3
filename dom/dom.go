// Package dom defines the output-tree adapter the VM drives, an in-memory
// implementation of it, an HTML serializer and attribute sanitization.
package dom

// Node is an opaque handle owned by a TreeBuilder. The VM never inspects a
// node itself; it only passes nodes back to the builder that created them.
type Node interface{}

// TreeBuilder performs every output-tree operation the VM needs. All
// operations are synchronous.
type TreeBuilder interface {
	CreateElement(tag string) Node
	CreateText(text string) Node
	CreateComment(text string) Node

	// InsertBefore inserts node into parent before reference, or at the
	// end when reference is nil.
	InsertBefore(parent, node, reference Node)
	Remove(node Node)

	SetAttribute(element Node, name, value string)
	RemoveAttribute(element Node, name string)
	SetText(node Node, text string)

	TagName(element Node) string
	Parent(node Node) Node
	NextSibling(node Node) Node
	FirstChild(node Node) Node
	IsElement(node Node) bool

	// InsertHTML parses markup and inserts the resulting nodes before
	// reference. An empty fragment inserts an empty comment so the result
	// always has bounds.
	InsertHTML(parent, reference Node, markup string) (first, last Node, err error)
}
