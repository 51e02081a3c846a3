package hash

import (
	"encoding/binary"
	"testing"

	"github.com/chazu/trellis/wire"
)

func tpl(symbols []string, stmts ...wire.Statement) *wire.Template {
	return &wire.Template{ID: "t", Symbols: symbols, Block: &wire.Block{Statements: stmts}}
}

func TestSerialize_Deterministic(t *testing.T) {
	tmpl := tpl([]string{"@title"},
		&wire.Append{Value: &wire.GetSymbol{Symbol: 1}},
		&wire.If{Condition: &wire.Literal{Value: true}, Block: &wire.Block{}},
	)
	if string(Serialize(tmpl)) != string(Serialize(tmpl)) {
		t.Error("serialization is not deterministic")
	}
}

func TestSerialize_VersionPrefix(t *testing.T) {
	data := Serialize(tpl(nil))
	if len(data) < 2 {
		t.Fatal("short serialization")
	}
	if data[0] != HashVersion {
		t.Errorf("version prefix: got 0x%02X, want 0x%02X", data[0], HashVersion)
	}
	if data[1] != TagTemplate {
		t.Errorf("template tag: got 0x%02X", data[1])
	}
}

func TestSerialize_Text(t *testing.T) {
	data := Serialize(tpl(nil, &wire.Text{Value: "hello"}))

	// version(1) + template(1) + eval(1) + symbols(4) + block(1) + params(4)
	// + count(4) + op(1) + len(4) + "hello"(5) = 26
	if len(data) != 26 {
		t.Fatalf("length: got %d, want 26", len(data))
	}
	if data[16] != byte(wire.OpText) {
		t.Errorf("tag: got 0x%02X, want 0x%02X", data[16], byte(wire.OpText))
	}
	if n := binary.BigEndian.Uint32(data[17:21]); n != 5 {
		t.Errorf("string length: got %d, want 5", n)
	}
	if string(data[21:]) != "hello" {
		t.Errorf("string value: got %q", string(data[21:]))
	}
}

func TestSerialize_DifferentLiteralsDiffer(t *testing.T) {
	values := []any{1, 1.5, "1", true, false, nil}
	seen := make(map[string]int)
	for i, v := range values {
		data := string(Serialize(tpl(nil, &wire.Append{Value: &wire.Literal{Value: v}})))
		if prev, ok := seen[data]; ok {
			t.Errorf("literal %d and %d produce identical serializations", prev, i)
		}
		seen[data] = i
	}
}

func TestSerialize_UnlessDiffersFromIf(t *testing.T) {
	cond := &wire.GetFree{Name: "ok"}
	a := Serialize(tpl(nil, &wire.If{Condition: cond, Block: &wire.Block{}}))
	b := Serialize(tpl(nil, &wire.If{Condition: cond, Block: &wire.Block{}, Unless: true}))
	if string(a) == string(b) {
		t.Error("if and unless serialize identically")
	}
}
