package reference

import "reflect"

// Truther lets a value decide its own truthiness.
type Truther interface {
	Truthy() bool
}

// Truthy applies template truthiness: nil, Undefined, false, zero numbers,
// the empty string and empty collections are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil, UndefinedValue:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case Truther:
		return x.Truthy()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return !rv.IsZero()
	case reflect.Float32:
		return rv.Float() != 0
	}
	return true
}
