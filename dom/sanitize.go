package dom

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/chazu/trellis/reference"
)

// SafeString is markup that has been vetted by its producer. It bypasses
// sanitization and escaping.
type SafeString interface {
	ToHTML() string
}

// HTML marks a string as trusted markup.
type HTML string

// ToHTML implements SafeString.
func (h HTML) ToHTML() string { return string(h) }

const unsafePrefix = "unsafe:"

var (
	badProtocols = map[string]bool{
		"javascript:": true,
		"vbscript:":   true,
	}
	badTags = map[string]bool{
		"A":      true,
		"BODY":   true,
		"LINK":   true,
		"IMG":    true,
		"IFRAME": true,
		"BASE":   true,
		"FORM":   true,
	}
	badTagsForDataURI = map[string]bool{
		"EMBED": true,
	}
	badAttributes = map[string]bool{
		"href":       true,
		"src":        true,
		"background": true,
		"action":     true,
	}
	badAttributesForDataURI = map[string]bool{
		"src": true,
	}
)

func checkURI(tagName, attribute string) bool {
	return (tagName == "" || badTags[tagName]) && badAttributes[attribute]
}

func checkDataURI(tagName, attribute string) bool {
	return badTagsForDataURI[tagName] && badAttributesForDataURI[attribute]
}

// RequiresSanitization reports whether values written to attribute on
// tagName are checked. An empty tagName means the element is unknown.
func RequiresSanitization(tagName, attribute string) bool {
	tag := strings.ToUpper(tagName)
	return checkURI(tag, attribute) || checkDataURI(tag, attribute)
}

// SanitizeAttributeValue rewrites values that would execute script when
// written to attribute on tagName. Disallowed values come back prefixed with
// "unsafe:". Safe strings are unwrapped unchecked. A nil value stays nil.
func SanitizeAttributeValue(tagName, attribute string, value any) any {
	if value == nil {
		return nil
	}
	if safe, ok := value.(SafeString); ok {
		return safe.ToHTML()
	}
	str := NormalizeString(value)
	if strings.HasPrefix(str, unsafePrefix) {
		return str
	}
	tag := strings.ToUpper(tagName)
	if checkURI(tag, attribute) && badProtocols[ProtocolForURL(str)] {
		return unsafePrefix + str
	}
	if checkDataURI(tag, attribute) {
		return unsafePrefix + str
	}
	return str
}

// ProtocolForURL returns the lowercased scheme of raw followed by a colon,
// or ":" when raw has none. Leading control characters and embedded tabs
// and newlines are ignored the way browsers ignore them.
func ProtocolForURL(raw string) string {
	s := strings.TrimLeftFunc(raw, func(r rune) bool { return r <= ' ' })
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
	if u, err := url.Parse(s); err == nil {
		if u.Scheme == "" {
			return ":"
		}
		return strings.ToLower(u.Scheme) + ":"
	}
	if i := strings.IndexByte(s, ':'); i > 0 && isScheme(s[:i]) {
		return strings.ToLower(s[:i+1])
	}
	return ":"
}

func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// NormalizeString converts a content value to the text that is rendered.
func NormalizeString(v any) string {
	switch x := v.(type) {
	case nil, reference.UndefinedValue:
		return ""
	case string:
		return x
	case SafeString:
		return x.ToHTML()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
