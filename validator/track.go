package validator

// tracker accumulates the tags consumed while a frame is open.
type tracker struct {
	label string
	seen  map[Tag]struct{}
	tags  []Tag
}

func (t *tracker) add(tag Tag) {
	if IsConstant(tag) {
		return
	}
	if _, ok := t.seen[tag]; ok {
		return
	}
	t.seen[tag] = struct{}{}
	t.tags = append(t.tags, tag)
}

func (t *tracker) combine() Tag {
	return Combine(t.tags...)
}

// frames is the stack of open track frames. A nil entry is an untracked
// region: reads inside it are not recorded anywhere.
var frames []*tracker

// BeginTrackFrame opens a recording region. Every tag consumed until the
// matching EndTrackFrame is accumulated into it.
func BeginTrackFrame(label string) {
	frames = append(frames, &tracker{label: label, seen: make(map[Tag]struct{})})
}

// EndTrackFrame closes the innermost region and returns the combined tag of
// everything it consumed, or ConstantTag if nothing was read.
func EndTrackFrame() Tag {
	if len(frames) == 0 {
		panic("validator: EndTrackFrame called with no open track frame")
	}
	current := frames[len(frames)-1]
	frames = frames[:len(frames)-1]
	if current == nil {
		panic("validator: EndTrackFrame called inside an untracked region")
	}
	return current.combine()
}

// ConsumeTag records tag in the innermost open frame.
func ConsumeTag(tag Tag) {
	markConsumed(tag)
	if len(frames) == 0 {
		return
	}
	if current := frames[len(frames)-1]; current != nil {
		current.add(tag)
	}
}

// IsTracking reports whether a tag consumed now would be recorded.
func IsTracking() bool {
	return len(frames) > 0 && frames[len(frames)-1] != nil
}

// Track runs fn inside a fresh frame and returns the combined tag.
func Track(label string, fn func()) Tag {
	BeginTrackFrame(label)
	defer func() {
		if r := recover(); r != nil {
			EndTrackFrame()
			panic(r)
		}
	}()
	fn()
	return EndTrackFrame()
}

// Untrack runs fn without recording any of the tags it consumes.
func Untrack(fn func()) {
	frames = append(frames, nil)
	defer func() { frames = frames[:len(frames)-1] }()
	fn()
}

// TrackDepth returns the number of open frames, tracked or not.
func TrackDepth() int {
	return len(frames)
}

// UnwindTrackFrames closes frames above depth. Tags consumed by the closed
// frames are folded into the frame left on top so no dependency is lost.
func UnwindTrackFrames(depth int) {
	for len(frames) > depth {
		current := frames[len(frames)-1]
		frames = frames[:len(frames)-1]
		if current == nil {
			continue
		}
		ConsumeTag(current.combine())
	}
}
