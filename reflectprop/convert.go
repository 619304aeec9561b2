package reflectprop

import (
	"math"
	"reflect"
	"sort"

	"github.com/sarchlab/propjson/property"
)

func toValue(rv reflect.Value) property.Value {
	switch rv.Kind() {
	case reflect.Bool:
		return property.BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return property.IntValue(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return property.UintValue(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return property.FloatValue(rv.Float())
	case reflect.String:
		return property.StringValue(rv.String())
	case reflect.Pointer:
		return pointerValue(rv)
	case reflect.Struct:
		m, err := lookupMeta(rv.Type())
		if err != nil {
			return property.OpaqueValue(rv.Interface())
		}

		return property.StructValue(
			&Adapter{ptr: addressable(rv).Addr(), meta: m})
	case reflect.Slice:
		if rv.IsNil() {
			return property.NullValue()
		}

		return sequenceValue(rv)
	case reflect.Array:
		return sequenceValue(rv)
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return property.NullValue()
		}

		return dictionaryValue(rv)
	case reflect.Interface:
		if rv.IsNil() {
			return property.NullValue()
		}

		return property.FromInterface(rv.Elem().Interface())
	}

	return property.OpaqueValue(rv.Interface())
}

func pointerValue(rv reflect.Value) property.Value {
	elem := rv.Type().Elem()

	if elem.Kind() == reflect.Struct {
		name := typeNameOf(elem)
		if rv.IsNil() {
			return property.ReferenceValue(name, nil)
		}

		m, err := lookupMeta(elem)
		if err != nil {
			return property.OpaqueValue(rv.Interface())
		}

		return property.ReferenceValue(name, &Adapter{ptr: rv, meta: m})
	}

	if rv.IsNil() {
		return property.NullValue()
	}

	return toValue(rv.Elem())
}

func sequenceValue(rv reflect.Value) property.Value {
	elems := make([]property.Value, rv.Len())
	for i := range elems {
		elems[i] = toValue(rv.Index(i))
	}

	return property.SequenceValue(elems...)
}

func dictionaryValue(rv reflect.Value) property.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	dict := property.NewDict()
	for _, k := range keys {
		dict.Set(k.String(), toValue(rv.MapIndex(k)))
	}

	return property.DictionaryValue(dict)
}

// addressable returns rv itself when it can be addressed, or a copy that can.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}

	c := reflect.New(rv.Type()).Elem()
	c.Set(rv)

	return c
}

// assign stores v into the settable rv. It fails without side effects on
// the caller's field, since callers assign into a scratch value first.
func assign(rv reflect.Value, v property.Value) bool {
	if v.IsAbsent() || v.IsNull() {
		rv.Set(reflect.Zero(rv.Type()))
		return true
	}

	if v.Kind() == property.Opaque {
		x := reflect.ValueOf(v.Opaque())

		switch {
		case !x.IsValid():
			return false
		case x.Type().AssignableTo(rv.Type()):
			rv.Set(x)
		case rv.Kind() == reflect.Pointer &&
			x.Type().AssignableTo(rv.Type().Elem()):
			p := reflect.New(rv.Type().Elem())
			p.Elem().Set(x)
			rv.Set(p)
		default:
			return false
		}

		return true
	}

	switch rv.Kind() {
	case reflect.Bool:
		if v.Kind() != property.Bool {
			return false
		}

		rv.SetBool(v.Bool())

		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return assignInt(rv, v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return assignUint(rv, v)
	case reflect.Float32, reflect.Float64:
		if !isNumber(v) || rv.OverflowFloat(v.Float()) {
			return false
		}

		rv.SetFloat(v.Float())

		return true
	case reflect.String:
		if v.Kind() != property.String {
			return false
		}

		rv.SetString(v.Str())

		return true
	case reflect.Pointer:
		return assignPointer(rv, v)
	case reflect.Struct:
		return assignStruct(rv, v)
	case reflect.Slice, reflect.Array:
		return assignSequence(rv, v)
	case reflect.Map:
		return assignDictionary(rv, v)
	case reflect.Interface:
		x := v.Interface()
		if x == nil {
			rv.Set(reflect.Zero(rv.Type()))
			return true
		}

		if !reflect.TypeOf(x).AssignableTo(rv.Type()) {
			return false
		}

		rv.Set(reflect.ValueOf(x))

		return true
	}

	return false
}

func isNumber(v property.Value) bool {
	switch v.Kind() {
	case property.Int, property.Uint, property.Float:
		return true
	}

	return false
}

func assignInt(rv reflect.Value, v property.Value) bool {
	switch v.Kind() {
	case property.Int:
	case property.Uint:
		if v.Uint() > math.MaxInt64 {
			return false
		}
	case property.Float:
		if v.Float() != math.Trunc(v.Float()) {
			return false
		}
	default:
		return false
	}

	if rv.OverflowInt(v.Int()) {
		return false
	}

	rv.SetInt(v.Int())

	return true
}

func assignUint(rv reflect.Value, v property.Value) bool {
	switch v.Kind() {
	case property.Uint:
	case property.Int:
		if v.Int() < 0 {
			return false
		}
	case property.Float:
		if v.Float() < 0 || v.Float() != math.Trunc(v.Float()) {
			return false
		}
	default:
		return false
	}

	if rv.OverflowUint(v.Uint()) {
		return false
	}

	rv.SetUint(v.Uint())

	return true
}

func assignPointer(rv reflect.Value, v property.Value) bool {
	elem := rv.Type().Elem()

	if elem.Kind() == reflect.Struct {
		x, ok := nativeObject(v)
		if !ok {
			return false
		}

		switch {
		case x.Type() == rv.Type():
			rv.Set(x)
		case x.Type() == elem:
			p := reflect.New(elem)
			p.Elem().Set(x)
			rv.Set(p)
		default:
			return false
		}

		return true
	}

	p := reflect.New(elem)
	if !assign(p.Elem(), v) {
		return false
	}

	rv.Set(p)

	return true
}

func assignStruct(rv reflect.Value, v property.Value) bool {
	x, ok := nativeObject(v)
	if !ok {
		return false
	}

	switch {
	case x.Type() == rv.Type():
		rv.Set(x)
	case x.Kind() == reflect.Pointer && x.Type().Elem() == rv.Type():
		rv.Set(x.Elem())
	default:
		return false
	}

	return true
}

// nativeObject returns the Go value behind a Reference or Struct value.
func nativeObject(v property.Value) (reflect.Value, bool) {
	if v.Kind() != property.Reference && v.Kind() != property.Struct {
		return reflect.Value{}, false
	}

	if v.Object() == nil {
		return reflect.Value{}, false
	}

	return reflect.ValueOf(unwrap(v.Object())), true
}

func assignSequence(rv reflect.Value, v property.Value) bool {
	if v.Kind() != property.Sequence {
		return false
	}

	elems := v.Elems()

	if rv.Kind() == reflect.Array {
		if len(elems) != rv.Len() {
			return false
		}
	} else {
		rv.Set(reflect.MakeSlice(rv.Type(), len(elems), len(elems)))
	}

	for i, e := range elems {
		if !assign(rv.Index(i), e) {
			return false
		}
	}

	return true
}

func assignDictionary(rv reflect.Value, v property.Value) bool {
	if v.Kind() != property.Dictionary ||
		rv.Type().Key().Kind() != reflect.String {
		return false
	}

	m := reflect.MakeMapWithSize(rv.Type(), v.Dict().Len())
	ok := true

	v.Dict().Range(func(key string, e property.Value) bool {
		ev := reflect.New(rv.Type().Elem()).Elem()
		if !assign(ev, e) {
			ok = false
			return false
		}

		m.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), ev)

		return true
	})

	if !ok {
		return false
	}

	rv.Set(m)

	return true
}
