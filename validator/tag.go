package validator

import (
	"go.uber.org/atomic"
)

// Revision is a point on the process-wide revision timeline.
type Revision = uint64

const (
	// ConstantRevision is the value of tags that never change.
	ConstantRevision Revision = 0

	// InitialRevision is the value of a freshly created dirtyable tag.
	InitialRevision Revision = 1
)

// $REVISION. Every mutation of tracked state advances it by exactly one.
var revision = atomic.NewUint64(InitialRevision)

// Current returns the current global revision.
func Current() Revision {
	return revision.Load()
}

func bump() Revision {
	return revision.Inc()
}

// Tag summarizes when a value was last modified.
type Tag interface {
	// Value returns the revision the tag currently reports.
	Value() Revision
}

type constantTag struct{}

func (constantTag) Value() Revision { return ConstantRevision }

// ConstantTag is the tag of values that are independent of mutable state.
var ConstantTag Tag = constantTag{}

// IsConstant reports whether t is the constant tag.
func IsConstant(t Tag) bool {
	_, ok := t.(constantTag)
	return ok
}

// DirtyableTag is owned by one mutable cell. Dirty records a mutation.
type DirtyableTag struct {
	revision Revision
}

// NewDirtyableTag creates a tag at the initial revision.
func NewDirtyableTag() *DirtyableTag {
	return &DirtyableTag{revision: InitialRevision}
}

// Value implements Tag.
func (t *DirtyableTag) Value() Revision {
	return t.revision
}

// Dirty advances the global revision and stamps it on the tag.
func Dirty(t *DirtyableTag) {
	assertTagNotConsumed(t)
	t.revision = bump()
}

// combinatorTag reports the maximum of its children. The value is computed
// on every call; nothing is cached.
type combinatorTag struct {
	children []Tag
}

func (t *combinatorTag) Value() Revision {
	max := ConstantRevision
	for _, child := range t.children {
		if v := child.Value(); v > max {
			max = v
		}
	}
	return max
}

// Combine merges tags into one. Constant tags are dropped; zero remaining
// children yield ConstantTag and a single child is returned as is.
func Combine(tags ...Tag) Tag {
	children := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t == nil || IsConstant(t) {
			continue
		}
		children = append(children, t)
	}
	switch len(children) {
	case 0:
		return ConstantTag
	case 1:
		return children[0]
	default:
		return &combinatorTag{children: children}
	}
}

// ValueForTag snapshots the tag's current value.
func ValueForTag(t Tag) Revision {
	return t.Value()
}

// ValidateTag reports whether nothing t depends on has moved since snapshot
// was taken.
func ValidateTag(t Tag, snapshot Revision) bool {
	return t.Value() == snapshot
}
