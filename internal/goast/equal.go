package goast

import (
	"go/ast"
	"go/token"
	"reflect"
)

var (
	posType     = reflect.TypeOf(token.NoPos)
	objectType  = reflect.TypeOf((*ast.Object)(nil))
	scopeType   = reflect.TypeOf((*ast.Scope)(nil))
	commentType = reflect.TypeOf((*ast.CommentGroup)(nil))
	identType   = reflect.TypeOf((*ast.Ident)(nil))
)

// Equal reports whether a and b are the same syntax, ignoring positions,
// comments and resolver objects.
func Equal(a, b ast.Node) bool {
	return equalValue(reflect.ValueOf(a), reflect.ValueOf(b), false)
}

// Match reports whether item has the shape of template. Every blank
// identifier in template matches any non-nil node in the same place.
func Match(item, template ast.Node) bool {
	return equalValue(reflect.ValueOf(item), reflect.ValueOf(template), true)
}

func ignored(t reflect.Type) bool {
	switch t {
	case posType, objectType, scopeType, commentType:
		return true
	}
	return false
}

func isBlank(v reflect.Value) bool {
	if v.Type() != identType || v.IsNil() {
		return false
	}
	return v.Elem().FieldByName("Name").String() == "_"
}

func equalValue(a, b reflect.Value, wildcard bool) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	for a.Kind() == reflect.Interface {
		if a.IsNil() {
			break
		}
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface {
		if b.IsNil() {
			break
		}
		b = b.Elem()
	}

	if wildcard && isBlank(b) {
		if a.Kind() == reflect.Interface || a.Kind() == reflect.Pointer {
			return !a.IsNil()
		}
		return false
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Interface, reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return equalValue(a.Elem(), b.Elem(), wildcard)

	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if ignored(a.Type().Field(i).Type) {
				continue
			}
			if !equalValue(a.Field(i), b.Field(i), wildcard) {
				return false
			}
		}
		return true

	case reflect.Slice:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValue(a.Index(i), b.Index(i), wildcard) {
				return false
			}
		}
		return true

	case reflect.String:
		return a.String() == b.String()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()

	default:
		return false
	}
}
