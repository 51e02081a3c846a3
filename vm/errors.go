package vm

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/chazu/trellis/pkg/bytecode"
)

// ErrComponentNotFound is returned when a component name does not resolve
// at run time.
var ErrComponentNotFound = errors.New("vm: component not found")

// InternalError reports a malformed instruction stream. It always points
// at a compiler or host bug and aborts the pass.
type InternalError struct {
	Op       bytecode.Opcode
	Expected string
	Actual   any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("vm: %s: expected %s, got %T (%v)", e.Op, e.Expected, e.Actual, e.Actual)
}

func internal(op bytecode.Opcode, expected string, actual any) error {
	return &InternalError{Op: op, Expected: expected, Actual: actual}
}
