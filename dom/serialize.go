package dom

import (
	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// InnerHTML serializes the children of n.
func InnerHTML(n *SimpleNode) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for c := n.firstChild; c != nil; c = c.next {
		writeNode(buf, c)
	}
	return buf.String()
}

// OuterHTML serializes n itself.
func OuterHTML(n *SimpleNode) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	writeNode(buf, n)
	return buf.String()
}

func writeNode(buf *bytebufferpool.ByteBuffer, n *SimpleNode) {
	switch n.Kind {
	case TextNode:
		buf.WriteString(html.EscapeString(n.Data))
	case CommentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->")
	case FragmentNode:
		for c := n.firstChild; c != nil; c = c.next {
			writeNode(buf, c)
		}
	case ElementNode:
		buf.WriteString("<")
		buf.WriteString(n.Tag)
		for _, a := range n.Attrs {
			buf.WriteString(" ")
			buf.WriteString(a.Name)
			buf.WriteString(`="`)
			buf.WriteString(html.EscapeString(a.Value))
			buf.WriteString(`"`)
		}
		buf.WriteString(">")
		if voidElements[n.Tag] {
			return
		}
		for c := n.firstChild; c != nil; c = c.next {
			writeNode(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(n.Tag)
		buf.WriteString(">")
	}
}
