package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/vm"
)

type recorder struct {
	calls []string
}

func (r *recorder) DidInsert(vm.Bounds) { r.calls = append(r.calls, "didInsert") }
func (r *recorder) WillUpdate()         { r.calls = append(r.calls, "willUpdate") }
func (r *recorder) DidUpdate()          { r.calls = append(r.calls, "didUpdate") }
func (r *recorder) WillDestroy()        { r.calls = append(r.calls, "willDestroy") }

func newInstance(t *testing.T, obj any) *ClassInstance {
	t.Helper()
	c := &Class{New: func(*vm.Arguments) any { return obj }}
	inst, err := ClassManager{}.Create(nil, c, vm.NewArguments(nil, nil), nil, nil, true)
	require.NoError(t, err)
	return inst.(*ClassInstance)
}

func TestClassLifecycle(t *testing.T) {
	rec := &recorder{}
	inst := newInstance(t, rec)
	m := ClassManager{}
	assert.Equal(t, StateCreated, inst.State())
	assert.True(t, inst.HasDefaultBlock)

	m.DidRenderLayout(inst, nil)
	assert.Equal(t, StateRendered, inst.State())
	m.DidCreate(inst)
	assert.Equal(t, StateInserted, inst.State())

	m.Update(inst, nil)
	assert.Equal(t, StateUpdating, inst.State())
	m.Update(inst, nil)
	m.DidUpdate(inst)
	assert.Equal(t, StateInserted, inst.State())

	m.Destroy(inst)
	m.Destroy(inst)
	m.Update(inst, nil)
	assert.Equal(t, StateDestroyed, inst.State())

	assert.Equal(t, []string{"didInsert", "willUpdate", "didUpdate", "willDestroy"}, rec.calls)
}

func TestClassDestroyBeforeInsert(t *testing.T) {
	rec := &recorder{}
	inst := newInstance(t, rec)
	ClassManager{}.Destroy(inst)
	assert.Equal(t, StateDestroyed, inst.State())
	assert.Equal(t, []string{"willDestroy"}, rec.calls)
}

func TestClassCapabilities(t *testing.T) {
	m := ClassManager{}
	assert.Equal(t, DefaultClassCapabilities, m.Capabilities(&Class{}))
	custom := compiler.CreateInstance | compiler.PrepareArgs
	assert.Equal(t, custom, m.Capabilities(&Class{Capabilities: custom}))
}

func TestClassWithoutConstructor(t *testing.T) {
	_, err := ClassManager{}.Create(nil, &Class{}, vm.NewArguments(nil, nil), nil, nil, false)
	assert.Error(t, err)
}

func TestClassSelf(t *testing.T) {
	obj := &recorder{}
	inst := newInstance(t, obj)
	assert.Same(t, obj, ClassManager{}.GetSelf(inst).Value())
	assert.Nil(t, ClassManager{}.GetSelf(nil).Value())
}
