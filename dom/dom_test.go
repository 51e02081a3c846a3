package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndSerialize(t *testing.T) {
	d := NewDocument()
	body := d.Body()

	div := d.CreateElement("DIV")
	d.SetAttribute(div, "class", "box")
	d.InsertBefore(body, div, nil)
	d.InsertBefore(div, d.CreateText("a < b"), nil)
	d.InsertBefore(body, d.CreateComment(""), nil)
	img := d.CreateElement("img")
	d.InsertBefore(body, img, div)

	assert.Equal(t, `<img><div class="box">a &lt; b</div><!---->`, InnerHTML(body))
	assert.Equal(t, 5, d.Mutations())
}

func TestRemoveAndSiblings(t *testing.T) {
	d := NewDocument()
	body := d.Body()
	a, b, c := d.CreateText("a"), d.CreateText("b"), d.CreateText("c")
	for _, n := range []Node{a, b, c} {
		d.InsertBefore(body, n, nil)
	}

	assert.Equal(t, b, d.NextSibling(a))
	assert.Nil(t, d.NextSibling(c))

	d.Remove(b)
	assert.Equal(t, "ac", InnerHTML(body))
	assert.Equal(t, c, d.NextSibling(a))
	assert.Nil(t, d.Parent(b))

	d.Remove(b)
	assert.Equal(t, 4, d.Mutations(), "removing a detached node is not a mutation")
}

func TestMutationCounter(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("p")
	d.InsertBefore(d.Body(), el, nil)
	d.ResetMutations()

	d.RemoveAttribute(el, "missing")
	assert.Zero(t, d.Mutations())

	d.SetAttribute(el, "title", "x")
	d.SetAttribute(el, "title", "y")
	d.RemoveAttribute(el, "title")
	assert.Equal(t, 3, d.Mutations())
	assert.Equal(t, "<p></p>", OuterHTML(el.(*SimpleNode)))
}

func TestInsertHTML(t *testing.T) {
	d := NewDocument()
	body := d.Body()
	end := d.CreateText("!")
	d.InsertBefore(body, end, nil)

	first, last, err := d.InsertHTML(body, end, "<b>bold</b> text")
	require.NoError(t, err)
	assert.Equal(t, "b", d.TagName(first))
	assert.Equal(t, end, d.NextSibling(last))
	assert.Equal(t, "<b>bold</b> text!", InnerHTML(body))
}

func TestInsertEmptyHTML(t *testing.T) {
	d := NewDocument()
	first, last, err := d.InsertHTML(d.Body(), nil, "")
	require.NoError(t, err)
	assert.Same(t, first, last)
	assert.Equal(t, "<!---->", InnerHTML(d.Body()))
}
