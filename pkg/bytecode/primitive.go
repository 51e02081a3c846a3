package bytecode

import (
	"fmt"
	"math"
)

// PrimitiveKind is the low three bits of an encoded OpPrimitive operand.
type PrimitiveKind int32

const (
	PrimitiveNumber    PrimitiveKind = iota // payload is the integer itself
	PrimitiveString                         // payload is a string handle
	PrimitiveBool                           // payload is 0 or 1
	PrimitiveNull                           // no payload
	PrimitiveUndefined                      // no payload
	PrimitiveFloat                          // payload is a handle to a float64 or large int
)

const (
	primitiveShift = 3
	primitiveMask  = 1<<primitiveShift - 1

	// Integers in this range are stored inline in the operand.
	MaxImmediate = math.MaxInt32 >> primitiveShift
	MinImmediate = math.MinInt32 >> primitiveShift
)

// EncodePrimitive packs kind and payload into one operand.
func EncodePrimitive(kind PrimitiveKind, payload int32) int32 {
	return payload<<primitiveShift | int32(kind)
}

// DecodePrimitive unpacks an operand built by EncodePrimitive.
func DecodePrimitive(operand int32) (PrimitiveKind, int32) {
	return PrimitiveKind(operand & primitiveMask), operand >> primitiveShift
}

// Primitive encodes a literal, interning it in the pool when it does not
// fit inline. undefined selects PrimitiveUndefined for a nil value.
func (p *ConstantPool) Primitive(v any, undefined bool) (int32, error) {
	switch x := v.(type) {
	case nil:
		if undefined {
			return EncodePrimitive(PrimitiveUndefined, 0), nil
		}
		return EncodePrimitive(PrimitiveNull, 0), nil
	case bool:
		if x {
			return EncodePrimitive(PrimitiveBool, 1), nil
		}
		return EncodePrimitive(PrimitiveBool, 0), nil
	case string:
		return EncodePrimitive(PrimitiveString, int32(p.String(x))), nil
	case int:
		if x >= MinImmediate && x <= MaxImmediate {
			return EncodePrimitive(PrimitiveNumber, int32(x)), nil
		}
		return EncodePrimitive(PrimitiveFloat, int32(p.push(x))), nil
	case int64:
		return p.Primitive(int(x), undefined)
	case float64:
		if x == math.Trunc(x) && x >= MinImmediate && x <= MaxImmediate {
			return EncodePrimitive(PrimitiveNumber, int32(x)), nil
		}
		return EncodePrimitive(PrimitiveFloat, int32(p.push(x))), nil
	}
	return 0, fmt.Errorf("unsupported primitive %T", v)
}
