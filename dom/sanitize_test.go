package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/trellis/reference"
)

func TestSanitizeAttributeValue(t *testing.T) {
	cases := []struct {
		tag, attr string
		value     any
		want      any
	}{
		{"a", "href", "javascript:doEvil()", "unsafe:javascript:doEvil()"},
		{"A", "href", "JavaScript:doEvil()", "unsafe:JavaScript:doEvil()"},
		{"a", "href", "  vbscript:x", "unsafe:  vbscript:x"},
		{"a", "href", "java\tscript:x", "unsafe:java\tscript:x"},
		{"a", "href", "http://example.com", "http://example.com"},
		{"a", "href", "/relative", "/relative"},
		{"img", "src", "javascript:x", "unsafe:javascript:x"},
		{"form", "action", "javascript:x", "unsafe:javascript:x"},
		{"body", "background", "javascript:x", "unsafe:javascript:x"},
		{"", "href", "javascript:x", "unsafe:javascript:x"},
		{"div", "href", "javascript:x", "javascript:x"},
		{"a", "title", "javascript:x", "javascript:x"},
		{"embed", "src", "data:text/html,x", "unsafe:data:text/html,x"},
		{"embed", "src", "movie.swf", "unsafe:movie.swf"},
		{"a", "href", HTML("javascript:trusted()"), "javascript:trusted()"},
		{"a", "href", nil, nil},
		{"a", "href", 42, "42"},
	}
	for _, tc := range cases {
		got := SanitizeAttributeValue(tc.tag, tc.attr, tc.value)
		assert.Equal(t, tc.want, got, "%s[%s]=%v", tc.tag, tc.attr, tc.value)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []struct{ tag, attr, value string }{
		{"a", "href", "javascript:doEvil()"},
		{"embed", "src", "data:x"},
		{"div", "class", "plain"},
	}
	for _, in := range inputs {
		once := SanitizeAttributeValue(in.tag, in.attr, in.value)
		twice := SanitizeAttributeValue(in.tag, in.attr, once)
		assert.Equal(t, once, twice, "%s[%s]", in.tag, in.attr)
	}
}

func TestRequiresSanitization(t *testing.T) {
	assert.True(t, RequiresSanitization("a", "href"))
	assert.True(t, RequiresSanitization("EMBED", "src"))
	assert.False(t, RequiresSanitization("embed", "href"))
	assert.False(t, RequiresSanitization("span", "src"))
}

func TestProtocolForURL(t *testing.T) {
	assert.Equal(t, "https:", ProtocolForURL("HTTPS://x"))
	assert.Equal(t, ":", ProtocolForURL("foo/bar"))
	assert.Equal(t, "javascript:", ProtocolForURL("javascript:%zz"))
}

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "", NormalizeString(nil))
	assert.Equal(t, "", NormalizeString(reference.Undefined))
	assert.Equal(t, "<b>", NormalizeString(HTML("<b>")))
	assert.Equal(t, "true", NormalizeString(true))
	assert.Equal(t, "1.5", NormalizeString(1.5))
}
