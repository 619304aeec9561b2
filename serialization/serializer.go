package serialization

import (
	"math"

	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
	"go.uber.org/zap"
)

// Serializer turns object graphs into JSON documents. It never fails:
// values it cannot convert become JSON null and are reported.
type Serializer struct {
	walker
}

// NewSerializer creates a Serializer. A nil logger disables logging.
func NewSerializer(registry *Registry, logger *zap.Logger) *Serializer {
	return &Serializer{walker: newWalker(registry, logger)}
}

// Serialize converts obj using its own descriptor. A nil obj gives an empty
// JSON object.
func (s *Serializer) Serialize(obj property.Object) jsonvalue.Value {
	if obj == nil {
		return jsonvalue.ObjectValue(nil)
	}

	return s.SerializeWith(obj, obj.Describe())
}

// SerializeWith converts obj walking the given descriptor.
func (s *Serializer) SerializeWith(
	obj property.Object,
	desc property.TypeDescriptor,
) jsonvalue.Value {
	if obj == nil {
		return jsonvalue.ObjectValue(nil)
	}

	return s.serializeObject(obj, desc)
}

// SerializeArray converts a bare collection into a JSON array.
func (s *Serializer) SerializeArray(elems []property.Value) jsonvalue.Value {
	return s.serializeSequence("", "", elems)
}

func (s *Serializer) serializeObject(
	obj property.Object,
	desc property.TypeDescriptor,
) jsonvalue.Value {
	out := jsonvalue.NewObject()

	for _, p := range desc.Properties {
		if !p.Readable {
			continue
		}

		v := obj.Get(p.Name)

		if p.Identity {
			if v.Kind() == property.String && v.Str() != "" {
				out.Set(p.Name, jsonvalue.String(v.Str()))
			}

			continue
		}

		out.Set(p.Name, s.serializeProperty(desc.Name, p, v))
	}

	return jsonvalue.ObjectValue(out)
}

func (s *Serializer) serializeProperty(
	typeName string,
	p property.Descriptor,
	v property.Value,
) jsonvalue.Value {
	if s.dispatcher.ClassifyValue(p, v) != CustomConverted {
		return s.serializeValue(typeName, p.Name, v)
	}

	stringifier, ok := s.registry.ResolveStringifier(p.Converter)
	if !ok {
		s.report(s, UnregisteredStringifier, typeName, p.Name,
			"no stringifier registered under %q", p.Converter)

		return s.serializeValue(typeName, p.Name, v)
	}

	text := stringifier.Stringify(v)
	if text == "" {
		return jsonvalue.UndefinedValue()
	}

	return jsonvalue.String(text)
}

// serializeValue returns undefined for null primitives so that null strings
// drop out of objects, while containers turn it into null or skip it.
func (s *Serializer) serializeValue(
	typeName, propName string,
	v property.Value,
) jsonvalue.Value {
	switch s.dispatcher.ClassifyValue(property.Descriptor{}, v) {
	case Primitive:
		return s.serializePrimitive(typeName, propName, v)
	case Sequence:
		return s.serializeSequence(typeName, propName, v.Elems())
	case Dictionary:
		return s.serializeDictionary(typeName, propName, v.Dict())
	case NestedReference:
		if v.Object() == nil {
			return jsonvalue.Null
		}

		return s.serializeObject(v.Object(), v.Object().Describe())
	case NestedValue:
		return s.serializeObject(v.Object(), v.Object().Describe())
	}

	s.report(s, UnconvertibleValue, typeName, propName,
		"cannot convert %s value to JSON", v.Kind())

	return jsonvalue.Null
}

func (s *Serializer) serializePrimitive(
	typeName, propName string,
	v property.Value,
) jsonvalue.Value {
	switch v.Kind() {
	case property.Bool:
		return jsonvalue.Bool(v.Bool())
	case property.Int, property.Uint, property.Float:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			s.report(s, UnconvertibleValue, typeName, propName,
				"%v has no JSON representation", f)

			return jsonvalue.Null
		}

		return jsonvalue.Number(f)
	case property.String:
		return jsonvalue.String(v.Str())
	}

	return jsonvalue.UndefinedValue()
}

func (s *Serializer) serializeSequence(
	typeName, propName string,
	elems []property.Value,
) jsonvalue.Value {
	out := make([]jsonvalue.Value, len(elems))

	for i, e := range elems {
		jv := s.serializeValue(typeName, propName, e)
		if jv.IsUndefined() {
			jv = jsonvalue.Null
		}

		out[i] = jv
	}

	return jsonvalue.Array(out...)
}

func (s *Serializer) serializeDictionary(
	typeName, propName string,
	dict *property.Dict,
) jsonvalue.Value {
	out := jsonvalue.NewObject()

	dict.Range(func(key string, e property.Value) bool {
		jv := s.serializeValue(typeName, propName, e)
		if !jv.IsNullish() {
			out.Set(key, jv)
		}

		return true
	})

	return jsonvalue.ObjectValue(out)
}
