// Package jsonvalue provides the JSON document model manipulated by the
// codec: an ordered tree that keeps undefined apart from null.
package jsonvalue

import "fmt"

// Kind is the type of a JSON value.
type Kind int

// JSON value kinds. Undefined is the zero kind and stands for an absent
// member.
const (
	Undefined Kind = iota
	NullKind
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a node of a JSON document.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null is the JSON null.
var Null = Value{kind: NullKind}

// UndefinedValue returns the undefined value.
func UndefinedValue() Value { return Value{} }

// Bool creates a JSON boolean.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// Number creates a JSON number.
func Number(n float64) Value { return Value{kind: NumberKind, n: n} }

// String creates a JSON string.
func String(s string) Value { return Value{kind: StringKind, s: s} }

// Array creates a JSON array.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: ArrayKind, arr: elems}
}

// ObjectValue wraps an object as a value.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}

	return Value{kind: ObjectKind, obj: o}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether the value is undefined.
func (v Value) IsUndefined() bool { return v.kind == Undefined }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// IsNullish reports whether the value is null or undefined.
func (v Value) IsNullish() bool { return v.kind == NullKind || v.kind == Undefined }

// IsScalar reports whether the value is a bool, a number or a string.
func (v Value) IsScalar() bool {
	return v.kind == BoolKind || v.kind == NumberKind || v.kind == StringKind
}

// AsBool returns the payload of a boolean.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the payload of a number.
func (v Value) AsNumber() float64 { return v.n }

// AsString returns the payload of a string.
func (v Value) AsString() string { return v.s }

// AsArray returns the elements of an array.
func (v Value) AsArray() []Value { return v.arr }

// AsObject returns the members of an object.
func (v Value) AsObject() *Object { return v.obj }

// Equal compares two values structurally. Member order is ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case BoolKind:
		return v.b == o.b
	case NumberKind:
		return v.n == o.n
	case StringKind:
		return v.s == o.s
	case ArrayKind:
		if len(v.arr) != len(o.arr) {
			return false
		}

		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}

		return true
	case ObjectKind:
		return v.obj.Equal(o.obj)
	}

	return true
}

func (v Value) String() string {
	if v.kind == Undefined {
		return "undefined"
	}

	data, err := Marshal(v, false)
	if err != nil {
		return "<" + err.Error() + ">"
	}

	return string(data)
}

// Object is a JSON object that keeps its members in insertion order.
type Object struct {
	keys    []string
	members map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{members: make(map[string]Value)}
}

// Set stores a member. Setting an undefined value removes the member.
func (o *Object) Set(key string, v Value) {
	if v.IsUndefined() {
		o.Delete(key)
		return
	}

	if _, ok := o.members[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.members[key] = v
}

// Get returns a member, or undefined when it is missing.
func (o *Object) Get(key string) Value {
	if o == nil {
		return Value{}
	}

	return o.members[key]
}

// Has reports whether the member exists.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}

	_, ok := o.members[key]

	return ok
}

// Delete removes a member.
func (o *Object) Delete(key string) {
	if _, ok := o.members[key]; !ok {
		return
	}

	delete(o.members, key)

	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the member names in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	return append([]string(nil), o.keys...)
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.keys)
}

// Range calls fn for every member in document order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}

	for _, k := range o.keys {
		if !fn(k, o.members[k]) {
			return
		}
	}
}

// Equal compares two objects member by member, ignoring order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}

	equal := true
	o.Range(func(k string, v Value) bool {
		if !other.Has(k) || !v.Equal(other.Get(k)) {
			equal = false
		}

		return equal
	})

	return equal
}
