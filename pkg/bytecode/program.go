package bytecode

import "fmt"

// Heap is the append-only instruction store shared by every compiled unit
// of a program. A handle names a unit; the handle table maps it to the
// unit's start address.
type Heap struct {
	ops    []Op
	starts []int32
	sizes  []int32
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{ops: make([]Op, 0, 256)}
}

// Len returns the number of instructions on the heap.
func (h *Heap) Len() int {
	return len(h.ops)
}

// At returns the instruction at addr.
func (h *Heap) At(addr int) Op {
	return h.ops[addr]
}

// Address returns the start address of the unit behind handle.
func (h *Heap) Address(handle Handle) (int, error) {
	if handle < 0 || int(handle) >= len(h.starts) {
		return 0, fmt.Errorf("heap handle %d out of range (%d units)", handle, len(h.starts))
	}
	return int(h.starts[handle]), nil
}

// Size returns the instruction count of the unit behind handle.
func (h *Heap) Size(handle Handle) int {
	return int(h.sizes[handle])
}

// Units returns the number of committed units.
func (h *Heap) Units() int {
	return len(h.starts)
}

func (h *Heap) commit(ops []Op) Handle {
	handle := Handle(len(h.starts))
	h.starts = append(h.starts, int32(len(h.ops)))
	h.sizes = append(h.sizes, int32(len(ops)))
	h.ops = append(h.ops, ops...)
	return handle
}

// Program bundles the heap with the constant pool its operands point into.
type Program struct {
	Heap      *Heap
	Constants *ConstantPool
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{Heap: NewHeap(), Constants: NewConstantPool()}
}
