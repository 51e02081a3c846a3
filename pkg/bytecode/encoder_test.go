package bytecode

import (
	"math"
	"strings"
	"testing"
)

func TestEncoderForwardPatch(t *testing.T) {
	heap := NewHeap()
	heap.commit([]Op{{Code: OpNop}, {Code: OpReturn}}) // occupy addresses 0-1

	e := NewEncoder()
	jump := e.EmitJump(OpJumpUnless)
	e.Push(OpText, 0)
	e.PatchJump(jump)
	e.Push(OpText, 1)

	h, err := e.Commit(heap)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	start, _ := heap.Address(h)
	if start != 2 {
		t.Fatalf("start = %d, want 2", start)
	}
	if got := heap.At(start).Op1; got != 4 {
		t.Errorf("jump target = %d, want 4 (relocated)", got)
	}
	if heap.At(start+3).Code != OpReturn {
		t.Errorf("unit not terminated with RETURN")
	}
	if heap.Size(h) != 4 {
		t.Errorf("size = %d, want 4", heap.Size(h))
	}
}

func TestEncoderLabels(t *testing.T) {
	heap := NewHeap()
	e := NewEncoder()
	e.StartLabels()
	e.Label("LOOP")
	e.PushJump(OpIterate, "BREAK")
	e.PushJump(OpJump, "LOOP")
	e.Label("BREAK")
	e.Push(OpPop, 1)
	e.StopLabels()

	h, err := e.Commit(heap)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	start, _ := heap.Address(h)
	if got := heap.At(start).Op1; got != int32(start+2) {
		t.Errorf("ITERATE target = %d, want %d", got, start+2)
	}
	if got := heap.At(start + 1).Op1; got != int32(start) {
		t.Errorf("backward JUMP target = %d, want %d", got, start)
	}
}

func TestEncoderNestedLabelScopes(t *testing.T) {
	e := NewEncoder()
	e.StartLabels()
	e.PushJump(OpJump, "END")
	e.StartLabels()
	e.PushJump(OpJump, "END")
	e.Push(OpNop)
	e.Label("END")
	e.StopLabels()
	e.Push(OpNop)
	e.Label("END")
	e.StopLabels()

	if _, err := e.Commit(NewHeap()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if e.ops[0].Op1 != 4 || e.ops[1].Op1 != 3 {
		t.Errorf("targets = %d, %d; want 4, 3", e.ops[0].Op1, e.ops[1].Op1)
	}
}

func TestEncoderErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(e *Encoder)
		want  string
	}{
		{"unresolved", func(e *Encoder) {
			e.StartLabels()
			e.PushJump(OpJump, "NOWHERE")
			e.StopLabels()
		}, "unresolved label"},
		{"unclosed", func(e *Encoder) { e.StartLabels() }, "left open"},
		{"duplicate", func(e *Encoder) {
			e.StartLabels()
			e.Label("A")
			e.Label("A")
			e.StopLabels()
		}, "defined twice"},
		{"unpatched", func(e *Encoder) { e.EmitJump(OpJump) }, "never patched"},
		{"overflow", func(e *Encoder) { e.Push(OpPop, math.MaxInt64) }, "POP operand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			tt.build(e)
			_, err := e.Commit(NewHeap())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Commit error = %v, want %q", err, tt.want)
			}
		})
	}
}
