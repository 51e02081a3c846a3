package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the unit behind handle.
func (p *Program) Disassemble(handle Handle) string {
	return p.DisassembleWithName(handle, "")
}

// DisassembleWithName returns a listing with a name header.
func (p *Program) DisassembleWithName(handle Handle, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	start, err := p.Heap.Address(handle)
	if err != nil {
		sb.WriteString(fmt.Sprintf("; %v\n", err))
		return sb.String()
	}
	size := p.Heap.Size(handle)
	sb.WriteString(fmt.Sprintf("; unit %d: %d instructions at %04d\n", handle, size, start))

	for addr := start; addr < start+size; addr++ {
		sb.WriteString(fmt.Sprintf("%04d  %s\n", addr, p.DisassembleOp(p.Heap.At(addr))))
	}
	return sb.String()
}

// DisassembleOp formats a single instruction.
func (p *Program) DisassembleOp(op Op) string {
	info := GetOpcodeInfo(op.Code)
	operands := [3]int32{op.Op1, op.Op2, op.Op3}

	parts := []string{fmt.Sprintf("%-32s", info.Name)}
	for i, kind := range info.Operands {
		parts = append(parts, p.formatOperand(kind, operands[i]))
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func (p *Program) formatOperand(kind OperandKind, v int32) string {
	switch kind {
	case OperandAddr:
		return fmt.Sprintf("-> %04d", v)
	case OperandRegister:
		return Register(v).String()
	case OperandSymbol:
		return fmt.Sprintf("sym%d", v)
	case OperandHandle:
		return p.formatConstant(Handle(v))
	case OperandPrimitive:
		kind, payload := DecodePrimitive(v)
		switch kind {
		case PrimitiveNumber:
			return fmt.Sprintf("%d", payload)
		case PrimitiveBool:
			return fmt.Sprintf("%t", payload == 1)
		case PrimitiveNull:
			return "null"
		case PrimitiveUndefined:
			return "undefined"
		default:
			return p.formatConstant(Handle(payload))
		}
	default:
		return fmt.Sprintf("%d", v)
	}
}

func (p *Program) formatConstant(h Handle) string {
	v, err := p.Constants.Get(h)
	if err != nil {
		return fmt.Sprintf("#%d ; <invalid>", h)
	}
	switch x := v.(type) {
	case string:
		display := x
		// Truncate long strings for readability
		if len(display) > 40 {
			display = display[:37] + "..."
		}
		return fmt.Sprintf("#%d ; %q", h, display)
	case []string:
		return fmt.Sprintf("#%d ; [%s]", h, strings.Join(x, " "))
	case fmt.Stringer:
		return fmt.Sprintf("#%d ; %s", h, x.String())
	default:
		return fmt.Sprintf("#%d ; %T", h, x)
	}
}
