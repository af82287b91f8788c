package models

import (
	"encoding/json"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the type name reported to callers ("null", "boolean", "number",
// "string", "object", "array").
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Value is an immutable JSON value. The zero Value is JSON null.
//
// Containers are shared by reference between values, so code that needs a
// modified container must clone it first (see Object.Clone and CloneArray).
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	obj  *Object
	arr  []Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric literal. The literal is kept verbatim so that
// formatting round-trips do not alter precision.
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// Int is a convenience constructor for integral numbers.
func Int(i int64) Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// ObjectValue wraps an ordered object. A nil object becomes an empty one.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Array wraps a sequence of values. The slice is not copied.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool { return v.kind == KindObject || v.kind == KindArray }

// AsBool returns the boolean payload (false for other kinds).
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric literal (empty for other kinds).
func (v Value) AsNumber() json.Number { return v.num }

// AsString returns the string payload (empty for other kinds).
func (v Value) AsString() string { return v.str }

// AsObject returns the object payload, or nil when v is not an object.
func (v Value) AsObject() *Object { return v.obj }

// AsArray returns the array payload, or nil when v is not an array.
// Callers must not modify the returned slice.
func (v Value) AsArray() []Value { return v.arr }

// Len returns the number of members of a container, or 0.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return v.obj.Len()
	case KindArray:
		return len(v.arr)
	default:
		return 0
	}
}

// CloneArray returns a shallow copy of an array's elements.
func CloneArray(items []Value) []Value {
	out := make([]Value, len(items))
	copy(out, items)
	return out
}

// Equal reports deep equality. Object key order is not significant and numbers
// compare by value when both literals parse as floats.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if a.num == b.num {
			return true
		}
		fa, errA := a.num.Float64()
		fb, errB := b.num.Float64()
		return errA == nil && errB == nil && fa == fb
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, m := range a.obj.members {
			other, ok := b.obj.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}
