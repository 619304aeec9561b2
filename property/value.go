package property

import (
	"fmt"
	"sort"
)

// Kind tags the concrete payload carried by a Value.
type Kind int

// The kinds a Value can hold. Absent, Null and an empty String are three
// different states and must never be folded into each other.
const (
	Absent Kind = iota
	Null
	Bool
	Int
	Uint
	Float
	String
	Sequence
	Dictionary
	Reference
	Struct
	Opaque
)

var kindNames = [...]string{
	Absent:     "absent",
	Null:       "null",
	Bool:       "bool",
	Int:        "int",
	Uint:       "uint",
	Float:      "float",
	String:     "string",
	Sequence:   "sequence",
	Dictionary: "dictionary",
	Reference:  "reference",
	Struct:     "struct",
	Opaque:     "opaque",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return kindNames[k]
}

// Value is the dynamically-typed box exchanged between object storage and the
// codec. The zero Value is Absent.
type Value struct {
	kind Kind

	b bool
	i int64
	u uint64
	f float64
	s string

	seq  []Value
	dict *Dict

	typeName string
	obj      Object
	opaque   any
}

// AbsentValue returns a Value that was never populated.
func AbsentValue() Value { return Value{} }

// NullValue returns an explicitly unset Value.
func NullValue() Value { return Value{kind: Null} }

// BoolValue boxes a bool.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// IntValue boxes a signed integer.
func IntValue(i int64) Value { return Value{kind: Int, i: i} }

// UintValue boxes an unsigned integer.
func UintValue(u uint64) Value { return Value{kind: Uint, u: u} }

// FloatValue boxes a floating point number.
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }

// StringValue boxes a string. StringValue("") is present-empty, not null.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// SequenceValue boxes an ordered list of values.
func SequenceValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: Sequence, seq: elems}
}

// DictionaryValue boxes a string-keyed dictionary.
func DictionaryValue(d *Dict) Value {
	if d == nil {
		d = NewDict()
	}

	return Value{kind: Dictionary, dict: d}
}

// ReferenceValue boxes a reference to an instance of a reference type. A nil
// obj is a null reference of the given type.
func ReferenceValue(typeName string, obj Object) Value {
	return Value{kind: Reference, typeName: typeName, obj: obj}
}

// StructValue boxes an instance of a value type. The instance is always
// present.
func StructValue(obj Object) Value {
	name := ""
	if obj != nil {
		name = obj.TypeName()
	}

	return Value{kind: Struct, typeName: name, obj: obj}
}

// OpaqueValue boxes a Go value that has no direct JSON mapping. Stringifiers
// consume these; without one the codec treats them as unknown.
func OpaqueValue(v any) Value { return Value{kind: Opaque, opaque: v} }

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value was never populated.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// IsNull reports whether the value is null. A null reference counts as null.
func (v Value) IsNull() bool {
	return v.kind == Null || (v.kind == Reference && v.obj == nil)
}

// Bool returns the payload of a Bool value.
func (v Value) Bool() bool { return v.b }

// Int returns the payload of an Int value, converting from Uint and Float.
func (v Value) Int() int64 {
	switch v.kind {
	case Uint:
		return int64(v.u)
	case Float:
		return int64(v.f)
	}

	return v.i
}

// Uint returns the payload of a Uint value, converting from Int and Float.
func (v Value) Uint() uint64 {
	switch v.kind {
	case Int:
		return uint64(v.i)
	case Float:
		return uint64(v.f)
	}

	return v.u
}

// Float returns the payload of a numeric value as a float64.
func (v Value) Float() float64 {
	switch v.kind {
	case Int:
		return float64(v.i)
	case Uint:
		return float64(v.u)
	}

	return v.f
}

// Str returns the payload of a String value.
func (v Value) Str() string { return v.s }

// Elems returns the elements of a Sequence value.
func (v Value) Elems() []Value { return v.seq }

// Dict returns the dictionary of a Dictionary value.
func (v Value) Dict() *Dict { return v.dict }

// TypeName returns the registered type name of a Reference or Struct value.
func (v Value) TypeName() string { return v.typeName }

// Object returns the instance of a Reference or Struct value.
func (v Value) Object() Object { return v.obj }

// Opaque returns the payload of an Opaque value.
func (v Value) Opaque() any { return v.opaque }

// IsPrimitive reports whether the value is a bool, a number or a string.
func (v Value) IsPrimitive() bool {
	switch v.kind {
	case Bool, Int, Uint, Float, String:
		return true
	}

	return false
}

// Interface converts the value into plain Go data: nil, bool, int64, uint64,
// float64, string, []any, map[string]any, or the boxed instance.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Uint:
		return v.u
	case Float:
		return v.f
	case String:
		return v.s
	case Sequence:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}

		return out
	case Dictionary:
		out := make(map[string]any, v.dict.Len())
		v.dict.Range(func(k string, e Value) bool {
			out[k] = e.Interface()
			return true
		})

		return out
	case Reference, Struct:
		if v.obj == nil {
			return nil
		}

		if u, ok := v.obj.(Unwrapper); ok {
			return u.Unwrap()
		}

		return v.obj
	case Opaque:
		return v.opaque
	}

	return nil
}

// FromInterface boxes plain Go data, the inverse of Interface for untyped
// containers. Unsupported inputs become Opaque values.
func FromInterface(x any) Value {
	switch t := x.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int8:
		return IntValue(int64(t))
	case int16:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case uint:
		return UintValue(uint64(t))
	case uint8:
		return UintValue(uint64(t))
	case uint16:
		return UintValue(uint64(t))
	case uint32:
		return UintValue(uint64(t))
	case uint64:
		return UintValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case string:
		return StringValue(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = FromInterface(e)
		}

		return SequenceValue(elems...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		d := NewDict()
		for _, k := range keys {
			d.Set(k, FromInterface(t[k]))
		}

		return DictionaryValue(d)
	}

	return OpaqueValue(x)
}

func (v Value) String() string {
	switch v.kind {
	case Absent, Null:
		return "<" + v.kind.String() + ">"
	case Reference, Struct:
		if v.obj == nil {
			return "<" + v.kind.String() + " " + v.typeName + " null>"
		}

		return "<" + v.kind.String() + " " + v.typeName + ">"
	}

	return fmt.Sprintf("%v", v.Interface())
}

// Dict is a string-keyed dictionary that remembers insertion order.
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict creates an empty Dict.
func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Set inserts or replaces the value stored under key.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.values[key] = v
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}

	return append([]string(nil), d.keys...)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (d *Dict) Range(fn func(key string, v Value) bool) {
	if d == nil {
		return
	}

	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}
