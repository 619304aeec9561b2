package reflectprop

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/propjson/property"
)

// Adapter exposes a struct through property.Object.
type Adapter struct {
	ptr  reflect.Value
	meta *typeMeta
}

// Wrap adapts ptr, a non-nil pointer to a struct. It panics on anything else.
func Wrap(ptr any) *Adapter {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() ||
		v.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("reflectprop: cannot wrap %T", ptr))
	}

	return &Adapter{ptr: v, meta: metaOf(v.Elem().Type())}
}

// TypeName returns the registered name of the struct type.
func (a *Adapter) TypeName() string {
	return a.meta.desc.Name
}

// Describe returns the descriptor derived from the struct type.
func (a *Adapter) Describe() property.TypeDescriptor {
	return a.meta.desc
}

// Unwrap returns the pointer to the struct.
func (a *Adapter) Unwrap() any {
	return a.ptr.Interface()
}

// Get reads a field.
func (a *Adapter) Get(name string) property.Value {
	f, ok := a.meta.fields[name]
	if !ok {
		return property.AbsentValue()
	}

	rv := a.ptr.Elem().FieldByIndex(f.index)

	if f.desc.Converter != "" {
		if isNilable(rv) && rv.IsNil() {
			return property.NullValue()
		}

		return property.OpaqueValue(rv.Interface())
	}

	return toValue(rv)
}

// Set writes a field and reports whether v fits its Go type.
func (a *Adapter) Set(name string, v property.Value) bool {
	f, ok := a.meta.fields[name]
	if !ok {
		return false
	}

	rv := a.ptr.Elem().FieldByIndex(f.index)
	tmp := reflect.New(rv.Type()).Elem()

	if !assign(tmp, v) {
		return false
	}

	rv.Set(tmp)

	return true
}

// Appender returns the Add<Field> method of a list of nested objects.
func (a *Adapter) Appender(name string) (property.AppendFunc, bool) {
	f, ok := a.meta.fields[name]
	if !ok || f.adder == "" {
		return nil, false
	}

	method := a.ptr.MethodByName(f.adder)
	param := method.Type().In(0)

	return func(elem property.Object) {
		arg := reflect.Zero(param)

		if elem != nil {
			x := reflect.ValueOf(unwrap(elem))

			switch {
			case x.Type().AssignableTo(param):
				arg = x
			case x.Kind() == reflect.Pointer && x.Elem().Type().AssignableTo(param):
				arg = x.Elem()
			default:
				return
			}
		}

		method.Call([]reflect.Value{arg})
	}, true
}

func isNilable(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}

	return false
}
