package hash

import "github.com/chazu/trellis/wire"

// ---------------------------------------------------------------------------
// Frozen tag bytes for the template hashing format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// Structural tags. Statement and expression forms are tagged with their
// wire opcode, which is itself frozen by the wire format.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagIntLiteral    byte = 0x40
	TagFloatLiteral  byte = 0x41
	TagStringLiteral byte = 0x42
	TagBoolLiteral   byte = 0x43
	TagNullLiteral   byte = 0x44

	// Structure
	TagTemplate    byte = 0x50
	TagBlock       byte = 0x51
	TagHash        byte = 0x52
	TagNamedBlocks byte = 0x53
	TagAbsent      byte = 0x54

	// Symbols
	TagLocalSymbol byte = 0x58
	TagNamedSymbol byte = 0x59
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagIntLiteral, TagFloatLiteral, TagStringLiteral, TagBoolLiteral, TagNullLiteral,
	TagTemplate, TagBlock, TagHash, TagNamedBlocks, TagAbsent,
	TagLocalSymbol, TagNamedSymbol,
}

func statementTag(op wire.StatementOp) byte {
	return byte(op)
}

func expressionTag(op wire.ExpressionOp) byte {
	return byte(op)
}
