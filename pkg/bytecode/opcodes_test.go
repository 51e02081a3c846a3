package bytecode

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	// Ensure every defined opcode has metadata
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" || strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("Opcode 0x%02X has no metadata", byte(op))
		}
		if len(info.Operands) > 3 {
			t.Errorf("%s declares %d operands", info.Name, len(info.Operands))
		}
		if op >= OpcodeLimit {
			t.Errorf("%s is outside the dispatch range", info.Name)
		}
	}
}

func TestOpcodeNamesUnique(t *testing.T) {
	seen := make(map[string]Opcode)
	for _, op := range AllOpcodes() {
		name := op.String()
		if prev, ok := seen[name]; ok {
			t.Errorf("%s used by 0x%02X and 0x%02X", name, byte(prev), byte(op))
		}
		seen[name] = op
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpNop, "NOP"},
		{OpPushFrame, "PUSH_FRAME"},
		{OpDup, "DUP"},
		{OpJumpUnless, "JUMP_UNLESS"},
		{OpInvokeYield, "INVOKE_YIELD"},
		{OpPushComponentDefinition, "PUSH_COMPONENT_DEFINITION"},
		{OpReturn, "RETURN"},
	}

	for _, tt := range tests {
		got := tt.op.String()
		if got != tt.want {
			t.Errorf("Opcode(0x%02X).String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}

func TestUnknownOpcodeString(t *testing.T) {
	op := Opcode(0xEE) // Not defined
	if got := op.String(); !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("Unknown opcode should return UNKNOWN, got %q", got)
	}
	if op.Known() {
		t.Error("0xEE should not be known")
	}
}

func TestMachineOpcodesHaveNoStaticCall(t *testing.T) {
	// Units are only ever called through a handle on the stack.
	if Opcode(0x04).Known() {
		t.Errorf("0x04 should be unassigned, got %s", Opcode(0x04))
	}
	for _, op := range AllOpcodes() {
		if op.String() == "INVOKE_STATIC" {
			t.Errorf("INVOKE_STATIC is defined as 0x%02X", byte(op))
		}
	}
}

func TestIsJump(t *testing.T) {
	for _, op := range []Opcode{OpJump, OpJumpIf, OpJumpUnless, OpJumpEq, OpIterate, OpReturnTo} {
		if !op.IsJump() {
			t.Errorf("%s should be a jump", op)
		}
	}
	if OpEnter.IsJump() {
		t.Error("ENTER is not a jump")
	}
}

func TestRegisterString(t *testing.T) {
	if got := RegS0.String(); got != "$s0" {
		t.Errorf("RegS0 = %q", got)
	}
	if !RegSP.IsMachine() || RegV0.IsMachine() {
		t.Error("machine register classification is wrong")
	}
}

func TestArgsFlags(t *testing.T) {
	flags := EncodeArgsFlags(3, true)
	n, at := DecodeArgsFlags(flags)
	if n != 3 || !at {
		t.Errorf("DecodeArgsFlags = (%d, %v), want (3, true)", n, at)
	}
	n, at = DecodeArgsFlags(EncodeArgsFlags(0, false))
	if n != 0 || at {
		t.Errorf("DecodeArgsFlags = (%d, %v), want (0, false)", n, at)
	}
}
