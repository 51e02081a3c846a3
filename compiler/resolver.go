package compiler

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnhandled is returned by a lowering that does not apply, so the
	// caller can choose another one.
	ErrUnhandled = errors.New("compiler: unhandled")

	// ErrHelperNotFound is returned for a call to an unknown helper.
	ErrHelperNotFound = errors.New("compiler: helper not found")
)

// Manager is the compile-time face of a component manager. The VM extends
// it with the runtime protocol.
type Manager interface {
	Capabilities(state any) Capabilities
}

// ComponentDefinition is a resolved component.
type ComponentDefinition struct {
	Name    string
	State   any
	Manager Manager

	// Layout is the statically known layout, or nil when the manager
	// supplies it at run time.
	Layout *CompilableTemplate
}

// Capabilities returns the manager's capabilities for this definition.
func (d *ComponentDefinition) Capabilities() Capabilities {
	return d.Manager.Capabilities(d.State)
}

func (d *ComponentDefinition) String() string {
	return fmt.Sprintf("<component %s>", d.Name)
}

// Resolver looks names up on behalf of a referring template. The same
// resolver serves compile-time and run-time lookups.
type Resolver interface {
	LookupComponent(name string, referrer any) (*ComponentDefinition, bool)

	// LookupHelper returns a helper value; the VM defines what it must be.
	LookupHelper(name string, referrer any) (any, bool)
}
