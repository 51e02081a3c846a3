package vm

import (
	"github.com/chazu/trellis/pkg/bytecode"
)

type handler func(vm *VM, op bytecode.Op) error

// DispatchTable maps every opcode to its append-VM implementation. A table
// is immutable once built and can be shared by any number of runtimes.
type DispatchTable struct {
	handlers [bytecode.OpcodeLimit]handler
}

// NewDispatchTable builds the table of every opcode the VM implements.
func NewDispatchTable() *DispatchTable {
	t := &DispatchTable{}
	for code, h := range map[bytecode.Opcode]handler{
		// Machine control
		bytecode.OpNop:           func(*VM, bytecode.Op) error { return nil },
		bytecode.OpPushFrame:     (*VM).opPushFrame,
		bytecode.OpPopFrame:      (*VM).opPopFrame,
		bytecode.OpInvokeVirtual: (*VM).opInvokeVirtual,
		bytecode.OpJump:          (*VM).opJump,
		bytecode.OpReturn:        (*VM).opReturn,
		bytecode.OpReturnTo:      (*VM).opReturnTo,

		// Stack and registers
		bytecode.OpPop:                (*VM).opPop,
		bytecode.OpDup:                (*VM).opDup,
		bytecode.OpFetch:              (*VM).opFetch,
		bytecode.OpLoad:               (*VM).opLoad,
		bytecode.OpPrimitive:          (*VM).opPrimitive,
		bytecode.OpPrimitiveReference: (*VM).opPrimitiveReference,
		bytecode.OpConstant:           (*VM).opConstant,

		// Expressions
		bytecode.OpGetVariable:       (*VM).opGetVariable,
		bytecode.OpGetProperty:       (*VM).opGetProperty,
		bytecode.OpGetBlock:          (*VM).opGetBlock,
		bytecode.OpHasBlock:          (*VM).opHasBlock,
		bytecode.OpHasBlockParams:    (*VM).opHasBlockParams,
		bytecode.OpConcat:            (*VM).opConcat,
		bytecode.OpHelper:            (*VM).opHelper,
		bytecode.OpGetDynamicVar:     (*VM).opGetDynamicVar,
		bytecode.OpCurryComponent:    (*VM).opCurryComponent,
		bytecode.OpToBoolean:         (*VM).opToBoolean,
		bytecode.OpResolveMaybeLocal: (*VM).opResolveMaybeLocal,

		// Scopes
		bytecode.OpRootScope:        (*VM).opRootScope,
		bytecode.OpVirtualRootScope: (*VM).opVirtualRootScope,
		bytecode.OpChildScope:       (*VM).opChildScope,
		bytecode.OpPopScope:         (*VM).opPopScope,
		bytecode.OpSetVariable:      (*VM).opSetVariable,
		bytecode.OpSetBlock:         (*VM).opSetBlock,
		bytecode.OpPushDynamicScope: (*VM).opPushDynamicScope,
		bytecode.OpPopDynamicScope:  (*VM).opPopDynamicScope,
		bytecode.OpBindDynamicScope: (*VM).opBindDynamicScope,

		// Blocks
		bytecode.OpPushSymbolTable: (*VM).opPushSymbolTable,
		bytecode.OpPushBlockScope:  (*VM).opPushBlockScope,
		bytecode.OpCompileBlock:    (*VM).opCompileBlock,
		bytecode.OpInvokeYield:     (*VM).opInvokeYield,

		// Control flow
		bytecode.OpJumpIf:     (*VM).opJumpIf,
		bytecode.OpJumpUnless: (*VM).opJumpUnless,
		bytecode.OpJumpEq:     (*VM).opJumpEq,
		bytecode.OpAssertSame: (*VM).opAssertSame,
		bytecode.OpEnter:      (*VM).opEnter,
		bytecode.OpExit:       (*VM).opExit,
		bytecode.OpEnterList:  (*VM).opEnterList,
		bytecode.OpIterate:    (*VM).opIterate,

		// Output tree
		bytecode.OpText:              (*VM).opText,
		bytecode.OpComment:           (*VM).opComment,
		bytecode.OpContentType:       (*VM).opContentType,
		bytecode.OpAppendText:        (*VM).opAppendText,
		bytecode.OpAppendHTML:        (*VM).opAppendHTML,
		bytecode.OpAppendSafeHTML:    (*VM).opAppendSafeHTML,
		bytecode.OpOpenElement:       (*VM).opOpenElement,
		bytecode.OpFlushElement:      (*VM).opFlushElement,
		bytecode.OpCloseElement:      (*VM).opCloseElement,
		bytecode.OpStaticAttr:        (*VM).opStaticAttr,
		bytecode.OpDynamicAttr:       (*VM).opDynamicAttr,
		bytecode.OpPushRemoteElement: (*VM).opPushRemoteElement,
		bytecode.OpPopRemoteElement:  (*VM).opPopRemoteElement,

		// Components
		bytecode.OpPushComponentDefinition:      (*VM).opPushComponentDefinition,
		bytecode.OpPushDynamicComponentInstance: (*VM).opPushDynamicComponentInstance,
		bytecode.OpResolveDynamicComponent:      (*VM).opResolveDynamicComponent,
		bytecode.OpResolveCurriedComponent:      (*VM).opResolveCurriedComponent,
		bytecode.OpPushArgs:                     (*VM).opPushArgs,
		bytecode.OpPushEmptyArgs:                (*VM).opPushEmptyArgs,
		bytecode.OpPrepareArgs:                  (*VM).opPrepareArgs,
		bytecode.OpCaptureArgs:                  (*VM).opCaptureArgs,
		bytecode.OpCreateComponent:              (*VM).opCreateComponent,
		bytecode.OpRegisterComponentDestructor:  (*VM).opRegisterComponentDestructor,
		bytecode.OpGetComponentSelf:             (*VM).opGetComponentSelf,
		bytecode.OpGetComponentLayout:           (*VM).opGetComponentLayout,
		bytecode.OpPopulateLayout:               (*VM).opPopulateLayout,
		bytecode.OpInvokeComponentLayout:        (*VM).opInvokeComponentLayout,
		bytecode.OpSetupForEval:                 (*VM).opSetupForEval,
		bytecode.OpSetNamedVariables:            (*VM).opSetNamedVariables,
		bytecode.OpSetBlocks:                    (*VM).opSetBlocks,
		bytecode.OpBeginComponentTransaction:    (*VM).opBeginComponentTransaction,
		bytecode.OpCommitComponentTransaction:   (*VM).opCommitComponentTransaction,
		bytecode.OpDidCreateElement:             (*VM).opDidCreateElement,
		bytecode.OpDidRenderLayout:              (*VM).opDidRenderLayout,
	} {
		t.handlers[code] = h
	}
	return t
}

// Has reports whether code has an implementation.
func (t *DispatchTable) Has(code bytecode.Opcode) bool {
	return int(code) < len(t.handlers) && t.handlers[code] != nil
}

func (t *DispatchTable) evaluate(vm *VM, op bytecode.Op) error {
	if !t.Has(op.Code) {
		return internal(op.Code, "known opcode", op)
	}
	return t.handlers[op.Code](vm, op)
}
