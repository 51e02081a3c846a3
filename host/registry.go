// Package host provides what an application plugs into the VM: a registry
// that resolves component and helper names, component managers and the
// builtin helpers.
package host

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/stoewer/go-strcase"
	"github.com/tliron/commonlog"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/vm"
	"github.com/chazu/trellis/wire"
)

var log = commonlog.GetLogger("trellis.host")

// Registry maps component and helper names to their implementations. Names
// are normalized to kebab case, so UserCard and user-card are the same
// component. A Registry serves both compile-time and run-time lookups.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*compiler.ComponentDefinition
	helpers    map[string]vm.Helper
}

var _ compiler.Resolver = (*Registry)(nil)

// NewRegistry creates a registry preloaded with the builtin helpers.
func NewRegistry() *Registry {
	r := &Registry{
		components: make(map[string]*compiler.ComponentDefinition),
		helpers:    make(map[string]vm.Helper),
	}
	for name, h := range builtinHelpers {
		r.helpers[name] = h
	}
	return r
}

// Normalize returns the registry key for name.
func Normalize(name string) string {
	return strcase.KebabCase(name)
}

// RegisterComponent adds a component whose layout is layout. A nil layout
// leaves it to the manager to supply one at run time.
func (r *Registry) RegisterComponent(name string, manager vm.ComponentManager, state any,
	layout *wire.Template) (*compiler.ComponentDefinition, error) {
	key := Normalize(name)
	if key == "" {
		return nil, errors.Errorf("host: invalid component name %q", name)
	}
	def := &compiler.ComponentDefinition{Name: key, State: state, Manager: manager}
	if layout != nil {
		def.Layout = compiler.NewLayout(layout, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[key]; ok {
		return nil, errors.Errorf("host: component %q already registered", key)
	}
	r.components[key] = def
	log.Debugf("registered component %s (%s)", key, manager.Capabilities(state))
	return def, nil
}

// RegisterTemplateOnly adds a component that is nothing but its layout.
func (r *Registry) RegisterTemplateOnly(name string, layout *wire.Template) (*compiler.ComponentDefinition, error) {
	return r.RegisterComponent(name, TemplateOnlyManager{}, nil, layout)
}

// RegisterHelper adds or replaces a helper.
func (r *Registry) RegisterHelper(name string, h vm.Helper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.helpers[Normalize(name)] = h
}

// LookupComponent implements compiler.Resolver.
func (r *Registry) LookupComponent(name string, _ any) (*compiler.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.components[Normalize(name)]
	return def, ok
}

// LookupHelper implements compiler.Resolver.
func (r *Registry) LookupHelper(name string, _ any) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.helpers[Normalize(name)]
	return h, ok
}

// Components lists the registered component names.
func (r *Registry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	return names
}
