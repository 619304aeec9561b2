package serialization

import (
	"fmt"

	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
)

// Category is the conversion route chosen for a value.
type Category int

// Conversion routes, see Dispatcher.
const (
	Primitive Category = iota
	Sequence
	Dictionary
	NestedReference
	NestedValue
	CustomConverted
	Unknown
)

func (c Category) String() string {
	switch c {
	case Primitive:
		return "Primitive"
	case Sequence:
		return "Sequence"
	case Dictionary:
		return "Dictionary"
	case NestedReference:
		return "NestedReference"
	case NestedValue:
		return "NestedValue"
	case CustomConverted:
		return "CustomConverted"
	case Unknown:
		return "Unknown"
	}

	return fmt.Sprintf("Category(%d)", int(c))
}

// Dispatcher classifies values into conversion routes. Rules apply in this
// order: custom converter, sequence, dictionary, nested reference, nested
// value, primitive, unknown.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a Dispatcher resolving nested types in r.
func NewDispatcher(r *Registry) *Dispatcher {
	return &Dispatcher{registry: r}
}

// ClassifyValue picks the route of a property value being serialized. desc
// may be the zero Descriptor for container elements.
func (d *Dispatcher) ClassifyValue(
	desc property.Descriptor,
	v property.Value,
) Category {
	if desc.Converter != "" && !v.IsNull() && !v.IsAbsent() {
		return CustomConverted
	}

	switch v.Kind() {
	case property.Sequence:
		return Sequence
	case property.Dictionary:
		return Dictionary
	case property.Reference:
		if v.Object() != nil && !d.registered(v.Object().TypeName()) {
			return Unknown
		}

		return NestedReference
	case property.Struct:
		if v.Object() == nil || !d.registered(v.Object().TypeName()) {
			return Unknown
		}

		return NestedValue
	case property.Absent, property.Null,
		property.Bool, property.Int, property.Uint, property.Float,
		property.String:
		return Primitive
	}

	return Unknown
}

// ClassifyJSON picks the route of a JSON value being written into the
// property desc. Null and undefined are not classified: they always reset the
// property.
func (d *Dispatcher) ClassifyJSON(
	desc property.Descriptor,
	jv jsonvalue.Value,
) Category {
	if desc.Converter != "" && jv.Kind() == jsonvalue.StringKind {
		return CustomConverted
	}

	sig, sigErr := desc.Signature()

	switch jv.Kind() {
	case jsonvalue.ArrayKind:
		return Sequence
	case jsonvalue.ObjectKind:
		if sigErr != nil {
			return Unknown
		}

		return d.classifyObjectSignature(sig)
	case jsonvalue.BoolKind, jsonvalue.NumberKind, jsonvalue.StringKind:
		if sigErr == nil && sig.Kind == property.SigNamed {
			return Unknown
		}

		return Primitive
	}

	return Unknown
}

func (d *Dispatcher) classifyObjectSignature(sig property.Signature) Category {
	switch sig.Kind {
	case property.SigDictionary, property.SigDynamic:
		return Dictionary
	case property.SigNamed:
		entry, ok := d.registry.ResolveType(sig.Name)
		if !ok {
			return Unknown
		}

		if entry.Descriptor.Semantics == property.ValueSemantics {
			return NestedValue
		}

		return NestedReference
	}

	return Unknown
}

func (d *Dispatcher) registered(typeName string) bool {
	if d.registry == nil {
		return false
	}

	_, ok := d.registry.ResolveType(typeName)

	return ok
}
