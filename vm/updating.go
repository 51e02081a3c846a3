package vm

import (
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/validator"
)

// updatingOp is one entry of the tree the append VM records. The set of
// implementations is closed; UpdatingVM.evaluate switches over it.
type updatingOp interface {
	updatingOp()
}

type assertOp struct {
	cache *reference.Cache
}

func newAssertOp(ref reference.Reference, v any, filter func(any) any) *assertOp {
	return &assertOp{cache: reference.NewFilteredCache(ref, v, filter)}
}

// jumpIfNotModifiedOp guards a cache group. target is the index just past
// the group's endTrackFrameOp in the same list.
type jumpIfNotModifiedOp struct {
	tag          validator.Tag
	lastRevision validator.Revision
	target       int
}

func (op *jumpIfNotModifiedOp) finalize(tag validator.Tag, target int) {
	op.target = target
	op.didModify(tag)
}

func (op *jumpIfNotModifiedOp) didModify(tag validator.Tag) {
	op.tag = tag
	op.lastRevision = validator.ValueForTag(tag)
	validator.ConsumeTag(tag)
}

type beginTrackFrameOp struct{}

type endTrackFrameOp struct {
	guard *jumpIfNotModifiedOp
}

// tryOp is a replayable region. On an exception from its children it
// tears its subtree down and re-runs the append VM from state.
type tryOp struct {
	state    resumableState
	block    *liveBlock
	owner    *owner
	children []updatingOp
}

type updateTextOp struct {
	node dom.Node
	ref  reference.Reference
	last string
}

type updateAttributeOp struct {
	element  dom.Node
	tag      string
	name     string
	ref      reference.Reference
	trusting bool
	last     string
	present  bool
}

type updateComponentOp struct {
	instance     *componentInstance
	dynamicScope *DynamicScope
}

type didUpdateLayoutOp struct {
	instance *componentInstance
}

func (*assertOp) updatingOp()            {}
func (*jumpIfNotModifiedOp) updatingOp() {}
func (beginTrackFrameOp) updatingOp()    {}
func (*endTrackFrameOp) updatingOp()     {}
func (*tryOp) updatingOp()               {}
func (*updateTextOp) updatingOp()        {}
func (*updateAttributeOp) updatingOp()   {}
func (*updateComponentOp) updatingOp()   {}
func (*didUpdateLayoutOp) updatingOp()   {}

// exceptionHandler rebuilds a region after an assertion inside it failed.
type exceptionHandler interface {
	handleException(u *UpdatingVM) error
}

type updatingFrame struct {
	ops        []updatingOp
	index      int
	handler    exceptionHandler
	trackDepth int
}

// UpdatingVM walks an updating tree, patching the output in place and
// rebuilding the regions whose assertions fail.
type UpdatingVM struct {
	runtime          *Runtime
	alwaysRevalidate bool
	frames           []*updatingFrame
}

func newUpdatingVM(r *Runtime, alwaysRevalidate bool) *UpdatingVM {
	return &UpdatingVM{runtime: r, alwaysRevalidate: alwaysRevalidate}
}

func (u *UpdatingVM) execute(ops []updatingOp, handler exceptionHandler) error {
	u.try(ops, handler)
	for len(u.frames) > 0 {
		f := u.frames[len(u.frames)-1]
		if f.index >= len(f.ops) {
			u.frames = u.frames[:len(u.frames)-1]
			continue
		}
		op := f.ops[f.index]
		f.index++
		if err := u.evaluate(op); err != nil {
			return err
		}
	}
	return nil
}

func (u *UpdatingVM) try(ops []updatingOp, handler exceptionHandler) {
	u.frames = append(u.frames, &updatingFrame{
		ops:        ops,
		handler:    handler,
		trackDepth: validator.TrackDepth(),
	})
}

func (u *UpdatingVM) frame() *updatingFrame {
	return u.frames[len(u.frames)-1]
}

// throw abandons the current frame and lets its handler rebuild it.
func (u *UpdatingVM) throw() error {
	f := u.frame()
	validator.UnwindTrackFrames(f.trackDepth)
	err := f.handler.handleException(u)
	u.frames = u.frames[:len(u.frames)-1]
	return err
}

func (u *UpdatingVM) evaluate(op updatingOp) error {
	tb := u.runtime.Env.Builder
	switch op := op.(type) {
	case *assertOp:
		if _, changed := op.cache.Revalidate(); changed {
			return u.throw()
		}

	case *jumpIfNotModifiedOp:
		if !u.alwaysRevalidate && validator.ValidateTag(op.tag, op.lastRevision) {
			validator.ConsumeTag(op.tag)
			u.frame().index = op.target
		}

	case beginTrackFrameOp:
		validator.BeginTrackFrame("cache group")

	case *endTrackFrameOp:
		op.guard.didModify(validator.EndTrackFrame())

	case *tryOp:
		u.try(op.children, op)

	case *updateTextOp:
		text := dom.NormalizeString(op.ref.Value())
		if text != op.last {
			tb.SetText(op.node, text)
			op.last = text
		}

	case *updateAttributeOp:
		value, present := attributeValue(op.tag, op.name, op.ref.Value(), op.trusting)
		switch {
		case !present && op.present:
			tb.RemoveAttribute(op.element, op.name)
		case present && (!op.present || value != op.last):
			tb.SetAttribute(op.element, op.name, value)
		}
		op.last, op.present = value, present

	case *updateComponentOp:
		if hook, ok := op.instance.manager.(UpdateHook); ok {
			hook.Update(op.instance.state, op.dynamicScope)
		}

	case *didUpdateLayoutOp:
		u.runtime.Env.didUpdate(op.instance)
	}
	return nil
}

func (t *tryOp) handleException(u *UpdatingVM) error {
	tb := u.runtime.Env.Builder
	t.owner.destroy()
	next := t.block.clear(tb)
	t.block.reset()
	t.children = nil
	log.Debugf("rebuilding replayable region at %d", t.state.pc)

	vm := u.runtime.resume(t.state, newElementBuilder(tb, t.block.parent, next))
	vm.elements.pushBlock(t.block)
	vm.lists = append(vm.lists, &t.children)
	vm.owners = append(vm.owners, t.owner)
	return vm.execute()
}
