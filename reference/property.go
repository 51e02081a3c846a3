package reference

import (
	"reflect"

	"github.com/stoewer/go-strcase"
)

// Getter is implemented by values that resolve their own properties, such
// as tracked.Map. Implementations consume the tags of what they read.
type Getter interface {
	GetProperty(key string) any
}

// Get reads key from obj. Maps are indexed, Getters are asked, structs are
// searched for an exported field named key or its UpperCamelCase form.
// Anything else yields Undefined.
func Get(obj any, key string) any {
	switch o := obj.(type) {
	case nil, UndefinedValue:
		return Undefined
	case Getter:
		return o.GetProperty(key)
	case Reference:
		return Get(o.Value(), key)
	case map[string]any:
		if v, ok := o[key]; ok {
			return v
		}
		return Undefined
	}
	return reflectGet(reflect.ValueOf(obj), key)
}

func reflectGet(v reflect.Value, key string) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return Undefined
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return Undefined
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return Undefined
		}
		return mv.Interface()
	case reflect.Struct:
		for _, name := range []string{key, strcase.UpperCamelCase(key)} {
			f, ok := v.Type().FieldByName(name)
			if !ok || !f.IsExported() {
				continue
			}
			return v.FieldByIndex(f.Index).Interface()
		}
	case reflect.Slice, reflect.Array:
		if key == "length" {
			return v.Len()
		}
	}
	return Undefined
}

// Items returns the elements of a slice or array value, or nil and false
// when v is not iterable.
func Items(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil, UndefinedValue:
		return nil, true
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
