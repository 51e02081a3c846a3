// Package vm executes compiled templates.
//
// The append VM runs a compiled unit once against an output tree and, as a
// side effect, records a tree of updating opcodes. The updating VM walks
// that tree on later passes: cache groups whose tag did not move are
// skipped wholesale, content and attribute opcodes patch nodes in place,
// and an assertion that fails re-runs the enclosing replayable region from
// the state captured when it was first entered.
//
// Machine state is kept in explicit stacks (operands, frames, scopes,
// dynamic scopes, live blocks, updating lists and destroyable owners), so
// nested invocations never recurse on the Go call stack and any region can
// be resumed from a snapshot.
package vm
