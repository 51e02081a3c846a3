package bytecode

import "fmt"

// Opcode identifies a VM instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Machine control (0x00-0x0F)
	// ========================================================================

	OpNop           Opcode = 0x00 // No operation
	OpPushFrame     Opcode = 0x01 // Save $ra/$fp and open a stack frame
	OpPopFrame      Opcode = 0x02 // Truncate to frame base, restore $ra/$fp
	OpInvokeVirtual Opcode = 0x03 // Pop a handle and call it
	OpJump          Opcode = 0x05 // Jump: OpJump <addr>
	OpReturn        Opcode = 0x06 // Jump to $ra
	OpReturnTo      Opcode = 0x07 // Set $ra: OpReturnTo <addr>

	// ========================================================================
	// Stack and registers (0x10-0x1F)
	// ========================================================================

	OpPop                Opcode = 0x10 // Pop n values: OpPop <count>
	OpDup                Opcode = 0x11 // Push copy of slot value(reg)-offset: OpDup <reg> <offset>
	OpFetch              Opcode = 0x12 // Push register: OpFetch <reg>
	OpLoad               Opcode = 0x13 // Pop into register: OpLoad <reg>
	OpPrimitive          Opcode = 0x14 // Push raw primitive: OpPrimitive <encoded>
	OpPrimitiveReference Opcode = 0x15 // Wrap top raw value in a constant reference
	OpConstant           Opcode = 0x16 // Push pool value: OpConstant <handle>

	// ========================================================================
	// Expressions (0x20-0x2F)
	// ========================================================================

	OpGetVariable    Opcode = 0x20 // Push scope symbol: OpGetVariable <symbol>
	OpGetProperty    Opcode = 0x21 // Replace top ref with property ref: OpGetProperty <name>
	OpGetBlock       Opcode = 0x22 // Push block triple: OpGetBlock <symbol>
	OpHasBlock       Opcode = 0x23 // Replace block triple with bool ref
	OpHasBlockParams Opcode = 0x24 // Replace block triple with bool ref
	OpConcat         Opcode = 0x25 // Pop n refs, push concatenation: OpConcat <count>
	OpHelper         Opcode = 0x26 // Pop args, call helper into $v0: OpHelper <handle>
	OpGetDynamicVar  Opcode = 0x27 // Replace name ref with dynamic variable ref
	OpCurryComponent Opcode = 0x28 // Curry definition + captured args into $v0: OpCurryComponent <referrer>
	OpToBoolean      Opcode = 0x29 // Replace top ref with truthiness ref

	OpResolveMaybeLocal Opcode = 0x2A // Push scope local or self property: OpResolveMaybeLocal <name>

	// ========================================================================
	// Scopes (0x30-0x3F)
	// ========================================================================

	OpRootScope        Opcode = 0x30 // Push root scope: OpRootScope <size>
	OpVirtualRootScope Opcode = 0x31 // Push root scope sized by component layout: OpVirtualRootScope <reg>
	OpChildScope       Opcode = 0x32 // Push child of current scope
	OpPopScope         Opcode = 0x33 // Pop current scope
	OpSetVariable      Opcode = 0x34 // Pop ref into symbol: OpSetVariable <symbol>
	OpSetBlock         Opcode = 0x35 // Pop block triple into symbol: OpSetBlock <symbol>
	OpPushDynamicScope Opcode = 0x36 // Push child dynamic scope
	OpPopDynamicScope  Opcode = 0x37 // Pop dynamic scope
	OpBindDynamicScope Opcode = 0x38 // Pop refs into dynamic names: OpBindDynamicScope <names>

	// ========================================================================
	// Blocks (0x40-0x4F)
	// ========================================================================

	OpPushSymbolTable Opcode = 0x40 // Push symbol table: OpPushSymbolTable <handle>
	OpPushBlockScope  Opcode = 0x41 // Push current scope
	OpCompileBlock    Opcode = 0x42 // Replace compilable with compiled handle
	OpInvokeYield     Opcode = 0x43 // Pop handle, scope, table, args; call block

	// ========================================================================
	// Control flow (0x50-0x5F)
	// ========================================================================

	OpJumpIf     Opcode = 0x50 // Pop ref, jump when truthy: OpJumpIf <addr>
	OpJumpUnless Opcode = 0x51 // Pop ref, jump when falsy: OpJumpUnless <addr>
	OpJumpEq     Opcode = 0x52 // Jump when top immediate equals value: OpJumpEq <addr> <value>
	OpAssertSame Opcode = 0x53 // Guard top ref without branching
	OpEnter      Opcode = 0x54 // Open replayable region capturing n values: OpEnter <count>
	OpExit       Opcode = 0x55 // Close replayable region
	OpEnterList  Opcode = 0x56 // Replace list ref with iterator
	OpIterate    Opcode = 0x57 // Push next item/index or jump: OpIterate <addr>

	// ========================================================================
	// Output tree (0x60-0x6F)
	// ========================================================================

	OpText              Opcode = 0x60 // Append static text: OpText <string>
	OpComment           Opcode = 0x61 // Append static comment: OpComment <string>
	OpContentType       Opcode = 0x62 // Push content type of top ref
	OpAppendText        Opcode = 0x63 // Pop ref, append dynamic text
	OpAppendHTML        Opcode = 0x64 // Pop ref, append trusted markup
	OpAppendSafeHTML    Opcode = 0x65 // Pop ref, append safe string markup
	OpOpenElement       Opcode = 0x66 // Start element: OpOpenElement <tag>
	OpFlushElement      Opcode = 0x67 // Insert constructing element
	OpCloseElement      Opcode = 0x68 // Close current element
	OpStaticAttr        Opcode = 0x69 // Set attribute: OpStaticAttr <name> <value>
	OpDynamicAttr       Opcode = 0x6A // Pop ref into attribute: OpDynamicAttr <name> <trusting>
	OpPushRemoteElement Opcode = 0x6B // Pop destination and insertBefore refs, render into destination
	OpPopRemoteElement  Opcode = 0x6C // Return to the previous element

	// ========================================================================
	// Components (0x70-0x8F)
	// ========================================================================

	OpPushComponentDefinition      Opcode = 0x70 // Push instance of known definition: <handle>
	OpPushDynamicComponentInstance Opcode = 0x71 // Pop definition, push instance
	OpResolveDynamicComponent      Opcode = 0x72 // Pop ref, push resolved definition: <referrer>
	OpResolveCurriedComponent      Opcode = 0x73 // Pop ref, push curried definition
	OpPushArgs                     Opcode = 0x74 // Collect args: <names> <blockNames> <flags>
	OpPushEmptyArgs                Opcode = 0x75 // Push empty args
	OpPrepareArgs                  Opcode = 0x76 // Resolve curried defs, prepare args: <reg>
	OpCaptureArgs                  Opcode = 0x77 // Replace args with captured args
	OpCreateComponent              Opcode = 0x78 // Create instance: <flags> <reg>
	OpRegisterComponentDestructor  Opcode = 0x79 // <reg>
	OpGetComponentSelf             Opcode = 0x7A // Push self ref: <reg>
	OpGetComponentLayout           Opcode = 0x7B // Push table and layout handle: <reg>
	OpPopulateLayout               Opcode = 0x7C // Pop handle and table into instance: <reg>
	OpInvokeComponentLayout        Opcode = 0x7D // Call instance layout: <reg>
	OpSetupForEval                 Opcode = 0x7E // Build eval lookup: <reg>
	OpSetNamedVariables            Opcode = 0x7F // Bind @args from top args: <reg>
	OpSetBlocks                    Opcode = 0x80 // Bind &blocks from top args: <reg>
	OpBeginComponentTransaction    Opcode = 0x81 // <reg>
	OpCommitComponentTransaction   Opcode = 0x82
	OpDidCreateElement             Opcode = 0x83 // <reg>
	OpDidRenderLayout              Opcode = 0x84 // <reg>

	// OpcodeLimit bounds every opcode value; dispatch tables are sized by it.
	OpcodeLimit = 0x90
)

// OperandKind describes how an operand is interpreted.
type OperandKind uint8

const (
	OperandImm       OperandKind = iota + 1 // Small integer
	OperandAddr                             // Absolute heap address
	OperandHandle                           // Constant pool handle
	OperandRegister                         // Register id
	OperandSymbol                           // Scope symbol
	OperandPrimitive                        // Encoded primitive
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name     string        // Human-readable name
	Operands []OperandKind // Meaning of Op1..Op3
}

var (
	none     = []OperandKind(nil)
	imm      = []OperandKind{OperandImm}
	addr     = []OperandKind{OperandAddr}
	handle   = []OperandKind{OperandHandle}
	register = []OperandKind{OperandRegister}
	symbol   = []OperandKind{OperandSymbol}
)

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Machine control
	OpNop:           {"NOP", none},
	OpPushFrame:     {"PUSH_FRAME", none},
	OpPopFrame:      {"POP_FRAME", none},
	OpInvokeVirtual: {"INVOKE_VIRTUAL", none},
	OpJump:          {"JUMP", addr},
	OpReturn:        {"RETURN", none},
	OpReturnTo:      {"RETURN_TO", addr},

	// Stack and registers
	OpPop:                {"POP", imm},
	OpDup:                {"DUP", []OperandKind{OperandRegister, OperandImm}},
	OpFetch:              {"FETCH", register},
	OpLoad:               {"LOAD", register},
	OpPrimitive:          {"PRIMITIVE", []OperandKind{OperandPrimitive}},
	OpPrimitiveReference: {"PRIMITIVE_REFERENCE", none},
	OpConstant:           {"CONSTANT", handle},

	// Expressions
	OpGetVariable:    {"GET_VARIABLE", symbol},
	OpGetProperty:    {"GET_PROPERTY", handle},
	OpGetBlock:       {"GET_BLOCK", symbol},
	OpHasBlock:       {"HAS_BLOCK", none},
	OpHasBlockParams: {"HAS_BLOCK_PARAMS", none},
	OpConcat:         {"CONCAT", imm},
	OpHelper:         {"HELPER", handle},
	OpGetDynamicVar:  {"GET_DYNAMIC_VAR", none},
	OpCurryComponent: {"CURRY_COMPONENT", handle},
	OpToBoolean:      {"TO_BOOLEAN", none},

	OpResolveMaybeLocal: {"RESOLVE_MAYBE_LOCAL", handle},

	// Scopes
	OpRootScope:        {"ROOT_SCOPE", imm},
	OpVirtualRootScope: {"VIRTUAL_ROOT_SCOPE", register},
	OpChildScope:       {"CHILD_SCOPE", none},
	OpPopScope:         {"POP_SCOPE", none},
	OpSetVariable:      {"SET_VARIABLE", symbol},
	OpSetBlock:         {"SET_BLOCK", symbol},
	OpPushDynamicScope: {"PUSH_DYNAMIC_SCOPE", none},
	OpPopDynamicScope:  {"POP_DYNAMIC_SCOPE", none},
	OpBindDynamicScope: {"BIND_DYNAMIC_SCOPE", handle},

	// Blocks
	OpPushSymbolTable: {"PUSH_SYMBOL_TABLE", handle},
	OpPushBlockScope:  {"PUSH_BLOCK_SCOPE", none},
	OpCompileBlock:    {"COMPILE_BLOCK", none},
	OpInvokeYield:     {"INVOKE_YIELD", none},

	// Control flow
	OpJumpIf:     {"JUMP_IF", addr},
	OpJumpUnless: {"JUMP_UNLESS", addr},
	OpJumpEq:     {"JUMP_EQ", []OperandKind{OperandAddr, OperandImm}},
	OpAssertSame: {"ASSERT_SAME", none},
	OpEnter:      {"ENTER", imm},
	OpExit:       {"EXIT", none},
	OpEnterList:  {"ENTER_LIST", none},
	OpIterate:    {"ITERATE", addr},

	// Output tree
	OpText:              {"TEXT", handle},
	OpComment:           {"COMMENT", handle},
	OpContentType:       {"CONTENT_TYPE", none},
	OpAppendText:        {"APPEND_TEXT", none},
	OpAppendHTML:        {"APPEND_HTML", none},
	OpAppendSafeHTML:    {"APPEND_SAFE_HTML", none},
	OpOpenElement:       {"OPEN_ELEMENT", handle},
	OpFlushElement:      {"FLUSH_ELEMENT", none},
	OpCloseElement:      {"CLOSE_ELEMENT", none},
	OpStaticAttr:        {"STATIC_ATTR", []OperandKind{OperandHandle, OperandHandle}},
	OpDynamicAttr:       {"DYNAMIC_ATTR", []OperandKind{OperandHandle, OperandImm}},
	OpPushRemoteElement: {"PUSH_REMOTE_ELEMENT", none},
	OpPopRemoteElement:  {"POP_REMOTE_ELEMENT", none},

	// Components
	OpPushComponentDefinition:      {"PUSH_COMPONENT_DEFINITION", handle},
	OpPushDynamicComponentInstance: {"PUSH_DYNAMIC_COMPONENT_INSTANCE", none},
	OpResolveDynamicComponent:      {"RESOLVE_DYNAMIC_COMPONENT", handle},
	OpResolveCurriedComponent:      {"RESOLVE_CURRIED_COMPONENT", none},
	OpPushArgs:                     {"PUSH_ARGS", []OperandKind{OperandHandle, OperandHandle, OperandImm}},
	OpPushEmptyArgs:                {"PUSH_EMPTY_ARGS", none},
	OpPrepareArgs:                  {"PREPARE_ARGS", register},
	OpCaptureArgs:                  {"CAPTURE_ARGS", none},
	OpCreateComponent:              {"CREATE_COMPONENT", []OperandKind{OperandImm, OperandRegister}},
	OpRegisterComponentDestructor:  {"REGISTER_COMPONENT_DESTRUCTOR", register},
	OpGetComponentSelf:             {"GET_COMPONENT_SELF", register},
	OpGetComponentLayout:           {"GET_COMPONENT_LAYOUT", register},
	OpPopulateLayout:               {"POPULATE_LAYOUT", register},
	OpInvokeComponentLayout:        {"INVOKE_COMPONENT_LAYOUT", register},
	OpSetupForEval:                 {"SETUP_FOR_EVAL", register},
	OpSetNamedVariables:            {"SET_NAMED_VARIABLES", register},
	OpSetBlocks:                    {"SET_BLOCKS", register},
	OpBeginComponentTransaction:    {"BEGIN_COMPONENT_TRANSACTION", register},
	OpCommitComponentTransaction:   {"COMMIT_COMPONENT_TRANSACTION", none},
	OpDidCreateElement:             {"DID_CREATE_ELEMENT", register},
	OpDidRenderLayout:              {"DID_RENDER_LAYOUT", register},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Known reports whether op has an entry in the opcode table.
func (op Opcode) Known() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// IsJump returns true if op transfers control to its first operand.
func (op Opcode) IsJump() bool {
	switch op {
	case OpJump, OpJumpIf, OpJumpUnless, OpJumpEq, OpIterate, OpReturnTo:
		return true
	}
	return false
}

// AllOpcodes returns all defined opcodes.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}

// Op is one encoded instruction.
type Op struct {
	Code Opcode
	Op1  int32
	Op2  int32
	Op3  int32
}

// Register identifies a VM register.
type Register int32

const (
	RegPC Register = iota // program counter
	RegRA                 // return address
	RegFP                 // frame pointer
	RegSP                 // stack pointer
	RegS0                 // saved: current component instance
	RegS1                 // saved
	RegT0                 // temporary
	RegT1                 // temporary
	RegV0                 // return value
)

var registerNames = [...]string{"$pc", "$ra", "$fp", "$sp", "$s0", "$s1", "$t0", "$t1", "$v0"}

// String returns the register mnemonic.
func (r Register) String() string {
	if r >= 0 && int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("$r%d", int32(r))
}

// IsMachine reports whether r holds an integer machine register.
func (r Register) IsMachine() bool {
	return r <= RegSP
}

// ContentType classifies a dynamic value appended as content.
type ContentType int32

const (
	ContentString ContentType = iota
	ContentSafeString
	ContentComponent
)

// Flags packed into OpCreateComponent's first operand.
const (
	CreateHasDefaultBlock int32 = 1 << 0
	CreateArgsOnStack     int32 = 1 << 1
)

// EncodeArgsFlags packs OpPushArgs' third operand.
func EncodeArgsFlags(positional int, atNames bool) int32 {
	flags := int32(positional) << 4
	if atNames {
		flags |= 1
	}
	return flags
}

// DecodeArgsFlags unpacks OpPushArgs' third operand.
func DecodeArgsFlags(flags int32) (positional int, atNames bool) {
	return int(flags >> 4), flags&1 == 1
}
