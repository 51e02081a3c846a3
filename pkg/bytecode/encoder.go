package bytecode

import (
	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"
)

// Encoder buffers the instructions of one compiled unit. Jump targets are
// unit-relative while encoding and relocated to absolute heap addresses on
// Commit.
//
// Two ways of producing jump targets are supported. EmitJump/PatchJump
// patch a placeholder once the target is reached; StartLabels, Label and
// StopLabels resolve named targets in a second pass, which also allows
// backward jumps.
type Encoder struct {
	ops    []Op
	relocs []int
	labels []*labelScope
	err    error
}

type labelScope struct {
	targets map[string]int
	pending []pendingLabel
}

type pendingLabel struct {
	at    int
	label string
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{ops: make([]Op, 0, 32)}
}

// Len returns the number of buffered instructions.
func (e *Encoder) Len() int {
	return len(e.ops)
}

// Err returns the first encoding error.
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) operand(code Opcode, v int) int32 {
	n, err := safecast.Convert[int32](v)
	if err != nil {
		e.fail(errors.Wrapf(err, "%s operand", code))
	}
	return n
}

// Push appends an instruction with up to three operands and returns its
// index within the unit.
func (e *Encoder) Push(code Opcode, operands ...int) int {
	if len(operands) > 3 {
		e.fail(errors.Errorf("%s: %d operands, at most 3 allowed", code, len(operands)))
	}
	op := Op{Code: code}
	for i, v := range operands {
		switch i {
		case 0:
			op.Op1 = e.operand(code, v)
		case 1:
			op.Op2 = e.operand(code, v)
		case 2:
			op.Op3 = e.operand(code, v)
		}
	}
	e.ops = append(e.ops, op)
	return len(e.ops) - 1
}

// EmitJump appends a jump with a placeholder target and returns its index
// for PatchJump.
func (e *Encoder) EmitJump(code Opcode, operands ...int) int {
	at := e.Push(code, append([]int{-1}, operands...)...)
	e.relocs = append(e.relocs, at)
	return at
}

// PatchJump points the jump at index to the next instruction to be pushed.
func (e *Encoder) PatchJump(index int) {
	e.PatchJumpTo(index, len(e.ops))
}

// PatchJumpTo points the jump at index to target.
func (e *Encoder) PatchJumpTo(index, target int) {
	e.ops[index].Op1 = e.operand(e.ops[index].Code, target)
}

// StartLabels opens a label namespace.
func (e *Encoder) StartLabels() {
	e.labels = append(e.labels, &labelScope{targets: make(map[string]int)})
}

// Label binds name to the next instruction in the innermost namespace.
func (e *Encoder) Label(name string) {
	if len(e.labels) == 0 {
		e.fail(errors.Errorf("label %q outside StartLabels", name))
		return
	}
	scope := e.labels[len(e.labels)-1]
	if _, dup := scope.targets[name]; dup {
		e.fail(errors.Errorf("label %q defined twice", name))
	}
	scope.targets[name] = len(e.ops)
}

// PushJump appends a jump to a named label; remaining operands follow the
// target.
func (e *Encoder) PushJump(code Opcode, label string, operands ...int) int {
	at := e.Push(code, append([]int{-1}, operands...)...)
	e.relocs = append(e.relocs, at)
	if len(e.labels) == 0 {
		e.fail(errors.Errorf("jump to %q outside StartLabels", label))
		return at
	}
	scope := e.labels[len(e.labels)-1]
	scope.pending = append(scope.pending, pendingLabel{at: at, label: label})
	return at
}

// StopLabels resolves every jump in the innermost namespace.
func (e *Encoder) StopLabels() {
	if len(e.labels) == 0 {
		e.fail(errors.New("StopLabels without StartLabels"))
		return
	}
	scope := e.labels[len(e.labels)-1]
	e.labels = e.labels[:len(e.labels)-1]
	for _, p := range scope.pending {
		target, ok := scope.targets[p.label]
		if !ok {
			e.fail(errors.Errorf("unresolved label %q", p.label))
			continue
		}
		e.PatchJumpTo(p.at, target)
	}
}

// Commit terminates the unit with OpReturn, relocates jump targets and
// appends the unit to the heap.
func (e *Encoder) Commit(heap *Heap) (Handle, error) {
	if len(e.labels) != 0 {
		e.fail(errors.Errorf("%d label namespaces left open", len(e.labels)))
	}
	if e.err != nil {
		return -1, e.err
	}
	e.Push(OpReturn)
	base := int32(heap.Len())
	for _, at := range e.relocs {
		if e.ops[at].Op1 < 0 {
			return -1, errors.Errorf("%s at %d was never patched", e.ops[at].Code, at)
		}
		e.ops[at].Op1 += base
	}
	return heap.commit(e.ops), nil
}
