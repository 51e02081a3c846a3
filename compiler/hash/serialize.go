package hash

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/chazu/trellis/wire"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of a template for hashing.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (int64=8B)
//   - Floats: IEEE 754 big-endian 8B
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Booleans: single byte (0/1)
//   - Lists: uint32 big-endian count, then the elements inline
//   - Optional children: TagAbsent when missing
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of t.
// The returned bytes are suitable for hashing with SHA-256.
func Serialize(t *wire.Template) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.writeByte(TagTemplate)
	s.writeBool(t.HasEval)
	s.writeUint32(uint32(len(t.Symbols)))
	for _, sym := range t.Symbols {
		s.symbol(sym)
	}
	s.block(t.Block)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeBool(v bool) {
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeInt(v int) {
	s.writeInt64(int64(v))
}

func (s *serializer) writeStrings(vs []string) {
	s.writeUint32(uint32(len(vs)))
	for _, v := range vs {
		s.writeString(v)
	}
}

// symbol writes a symbol table entry. Locals are anonymous; only their
// position matters.
func (s *serializer) symbol(name string) {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "&") {
		s.writeByte(TagNamedSymbol)
		s.writeString(name)
		return
	}
	s.writeByte(TagLocalSymbol)
}

func (s *serializer) block(b *wire.Block) {
	if b == nil {
		s.writeByte(TagAbsent)
		return
	}
	s.writeByte(TagBlock)
	s.writeUint32(uint32(len(b.Parameters)))
	for _, p := range b.Parameters {
		s.writeInt(p)
	}
	s.statements(b.Statements)
}

func (s *serializer) statements(stmts []wire.Statement) {
	s.writeUint32(uint32(len(stmts)))
	for _, st := range stmts {
		s.statement(st)
	}
}

func (s *serializer) hash(h *wire.Hash) {
	if h == nil {
		s.writeByte(TagAbsent)
		return
	}
	s.writeByte(TagHash)
	s.writeStrings(h.Keys)
	s.exprs(h.Values)
}

func (s *serializer) namedBlocks(b *wire.NamedBlocks) {
	if b == nil {
		s.writeByte(TagAbsent)
		return
	}
	s.writeByte(TagNamedBlocks)
	s.writeStrings(b.Names)
	for _, blk := range b.Blocks {
		s.block(blk)
	}
}

func (s *serializer) exprs(es []wire.Expression) {
	s.writeUint32(uint32(len(es)))
	for _, e := range es {
		s.expr(e)
	}
}

func (s *serializer) optExpr(e wire.Expression) {
	if e == nil {
		s.writeByte(TagAbsent)
		return
	}
	s.expr(e)
}

func (s *serializer) statement(st wire.Statement) {
	switch n := st.(type) {
	case *wire.Text:
		s.writeByte(statementTag(wire.OpText))
		s.writeString(n.Value)

	case *wire.Comment:
		s.writeByte(statementTag(wire.OpComment))
		s.writeString(n.Value)

	case *wire.Append:
		s.writeByte(statementTag(wire.OpAppend))
		s.expr(n.Value)

	case *wire.TrustingAppend:
		s.writeByte(statementTag(wire.OpTrustingAppend))
		s.expr(n.Value)

	case *wire.OpenElement:
		s.writeByte(statementTag(wire.OpOpenElement))
		s.writeString(n.Tag)

	case *wire.OpenElementWithSplat:
		s.writeByte(statementTag(wire.OpOpenElementWithSplat))
		s.writeString(n.Tag)

	case *wire.FlushElement:
		s.writeByte(statementTag(wire.OpFlushElement))

	case *wire.CloseElement:
		s.writeByte(statementTag(wire.OpCloseElement))

	case *wire.StaticAttr:
		s.writeByte(statementTag(wire.OpStaticAttr))
		s.writeString(n.Name)
		s.writeString(n.Value)

	case *wire.DynamicAttr:
		s.writeByte(statementTag(wire.OpDynamicAttr))
		s.writeString(n.Name)
		s.expr(n.Value)

	case *wire.TrustingDynamicAttr:
		s.writeByte(statementTag(wire.OpTrustingDynamicAttr))
		s.writeString(n.Name)
		s.expr(n.Value)

	case *wire.AttrSplat:
		s.writeByte(statementTag(wire.OpAttrSplat))
		s.writeInt(n.Symbol)

	case *wire.Component:
		s.writeByte(statementTag(wire.OpComponent))
		s.writeString(n.Tag)
		s.optExpr(n.Dynamic)
		s.statements(n.Attrs)
		s.hash(n.Args)
		s.namedBlocks(n.Blocks)

	case *wire.Yield:
		s.writeByte(statementTag(wire.OpYield))
		s.writeInt(n.Symbol)
		s.exprs(n.Params)

	case *wire.InvokeBlock:
		s.writeByte(statementTag(wire.OpBlock))
		s.writeString(n.Name)
		s.exprs(n.Params)
		s.hash(n.Hash)
		s.namedBlocks(n.Blocks)

	case *wire.DynamicComponent:
		s.writeByte(statementTag(wire.OpDynamicComponent))
		s.expr(n.Definition)
		s.exprs(n.Params)
		s.hash(n.Hash)
		s.namedBlocks(n.Blocks)

	case *wire.InElement:
		s.writeByte(statementTag(wire.OpInElement))
		s.expr(n.Destination)
		s.optExpr(n.InsertBefore)
		s.block(n.Block)

	case *wire.WithDynamicVars:
		s.writeByte(statementTag(wire.OpWithDynamicVars))
		s.hash(n.Vars)
		s.block(n.Block)

	case *wire.If:
		if n.Unless {
			s.writeByte(statementTag(wire.OpUnless))
		} else {
			s.writeByte(statementTag(wire.OpIf))
		}
		s.expr(n.Condition)
		s.block(n.Block)
		s.block(n.Inverse)

	case *wire.Each:
		s.writeByte(statementTag(wire.OpEach))
		s.expr(n.List)
		s.optExpr(n.Key)
		s.block(n.Block)
		s.block(n.Inverse)

	case *wire.Let:
		s.writeByte(statementTag(wire.OpLet))
		s.exprs(n.Params)
		s.block(n.Block)
	}
}

func (s *serializer) expr(e wire.Expression) {
	switch n := e.(type) {
	case *wire.Literal:
		s.literal(n.Value)

	case *wire.GetSymbol:
		s.writeByte(expressionTag(wire.OpGetSymbol))
		s.writeInt(n.Symbol)
		s.writeStrings(n.Path)

	case *wire.GetFree:
		s.writeByte(expressionTag(wire.OpGetFree))
		s.writeString(n.Name)
		s.writeStrings(n.Path)

	case *wire.Call:
		s.writeByte(expressionTag(wire.OpCall))
		s.writeString(n.Name)
		s.exprs(n.Params)
		s.hash(n.Hash)

	case *wire.Concat:
		s.writeByte(expressionTag(wire.OpConcat))
		s.exprs(n.Parts)

	case *wire.HasBlock:
		s.writeByte(expressionTag(wire.OpHasBlock))
		s.writeInt(n.Symbol)

	case *wire.HasBlockParams:
		s.writeByte(expressionTag(wire.OpHasBlockParams))
		s.writeInt(n.Symbol)

	case *wire.CurryComponent:
		s.writeByte(expressionTag(wire.OpCurryComponent))
		s.expr(n.Definition)
		s.exprs(n.Params)
		s.hash(n.Hash)

	case *wire.GetDynamicVar:
		s.writeByte(expressionTag(wire.OpGetDynamicVar))
		s.expr(n.Name)

	case *wire.Undefined:
		s.writeByte(expressionTag(wire.OpUndefined))
	}
}

func (s *serializer) literal(v any) {
	switch x := v.(type) {
	case nil:
		s.writeByte(TagNullLiteral)
	case bool:
		s.writeByte(TagBoolLiteral)
		s.writeBool(x)
	case string:
		s.writeByte(TagStringLiteral)
		s.writeString(x)
	case int:
		s.writeByte(TagIntLiteral)
		s.writeInt(x)
	case int64:
		s.writeByte(TagIntLiteral)
		s.writeInt64(x)
	case float64:
		s.writeByte(TagFloatLiteral)
		s.writeFloat64(x)
	}
}
