// Package validator implements revision tracking.
//
// A single process-wide counter advances once per mutation of tracked
// state. Each mutable cell owns a DirtyableTag stamped with the revision of
// its last mutation. Derived values are summarized by combining the tags of
// everything they read; the combined value is the maximum of the children,
// computed on demand.
//
// Dependencies are discovered rather than declared: BeginTrackFrame opens a
// recording region, every ConsumeTag call inside it is accumulated, and
// EndTrackFrame yields the combined tag.
//
//	validator.BeginTrackFrame("greeting")
//	name := cell.Get() // consumes cell's tag
//	tag := validator.EndTrackFrame()
//	snapshot := validator.ValueForTag(tag)
//	...
//	if !validator.ValidateTag(tag, snapshot) {
//		// recompute
//	}
//
// Building with -tags debug enables consistency checks that panic when a
// tag is dirtied after being consumed in the same render transaction.
package validator
