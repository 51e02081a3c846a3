package host

import (
	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/vm"
)

// TemplateOnlyManager manages components without a backing object. Their
// self is null and they need none of the optional steps, so they always
// take the static invocation path.
type TemplateOnlyManager struct{}

// Capabilities implements compiler.Manager.
func (TemplateOnlyManager) Capabilities(any) compiler.Capabilities {
	return 0
}

// Create is never called; template-only components have no instance.
func (TemplateOnlyManager) Create(*vm.Environment, any, *vm.Arguments, *vm.DynamicScope,
	reference.Reference, bool) (any, error) {
	return nil, nil
}

// GetSelf implements vm.ComponentManager.
func (TemplateOnlyManager) GetSelf(any) reference.Reference {
	return reference.NullReference
}
