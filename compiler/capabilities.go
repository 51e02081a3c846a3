package compiler

import "strings"

// Capabilities describes what a component implementation needs from the
// VM. Each bit gates one optional step of the invocation sequence.
type Capabilities uint32

const (
	DynamicLayout Capabilities = 1 << iota
	DynamicTag
	PrepareArgs
	CreateArgs
	AttributeHook
	ElementHook
	DynamicScope
	CreateCaller
	UpdateHook
	CreateInstance
	WillDestroy
)

// AllCapabilities is assumed for components resolved at run time.
const AllCapabilities = DynamicLayout | DynamicTag | PrepareArgs | CreateArgs |
	AttributeHook | ElementHook | DynamicScope | CreateCaller | UpdateHook |
	CreateInstance | WillDestroy

// Has reports whether every bit of c2 is set in c.
func (c Capabilities) Has(c2 Capabilities) bool {
	return c&c2 == c2
}

var capabilityNames = []string{
	"DynamicLayout", "DynamicTag", "PrepareArgs", "CreateArgs", "AttributeHook",
	"ElementHook", "DynamicScope", "CreateCaller", "UpdateHook", "CreateInstance",
	"WillDestroy",
}

func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for i, name := range capabilityNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
