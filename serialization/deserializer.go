package serialization

import (
	"fmt"

	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
	"go.uber.org/zap"
)

// Deserializer rebuilds object graphs from JSON documents, instantiating
// nested objects through the registry.
//
// Only two conditions fail a call: a document that is not a JSON object and
// an unregistered top-level type. Anything else is reported as a Diagnostic
// and leaves the affected property untouched. A partially populated instance
// is still returned to the caller in that case.
type Deserializer struct {
	walker
}

// NewDeserializer creates a Deserializer. A nil logger disables logging.
func NewDeserializer(registry *Registry, logger *zap.Logger) *Deserializer {
	return &Deserializer{walker: newWalker(registry, logger)}
}

// Deserialize creates an instance of typeName and fills it from doc.
func (d *Deserializer) Deserialize(
	doc jsonvalue.Value,
	typeName string,
) (property.Object, error) {
	return d.DeserializeOwned(doc, typeName, nil)
}

// DeserializeOwned is Deserialize with the new instance owned by parent.
func (d *Deserializer) DeserializeOwned(
	doc jsonvalue.Value,
	typeName string,
	parent property.Object,
) (property.Object, error) {
	if doc.Kind() != jsonvalue.ObjectKind {
		return nil, fmt.Errorf("cannot deserialize %s from %s: %w",
			typeName, doc.Kind(), ErrNotObject)
	}

	obj, err := d.registry.CreateInstance(typeName, parent)
	if err != nil {
		return nil, err
	}

	d.instantiated(typeName, obj)
	d.deserializeObject(doc.AsObject(), obj, obj.Describe())

	return obj, nil
}

// DeserializeInto fills an existing instance walking the given descriptor.
func (d *Deserializer) DeserializeInto(
	doc jsonvalue.Value,
	dest property.Object,
	desc property.TypeDescriptor,
) error {
	if doc.Kind() != jsonvalue.ObjectKind {
		return fmt.Errorf("cannot deserialize %s from %s: %w",
			desc.Name, doc.Kind(), ErrNotObject)
	}

	d.deserializeObject(doc.AsObject(), dest, desc)

	return nil
}

func (d *Deserializer) deserializeObject(
	json *jsonvalue.Object,
	dest property.Object,
	desc property.TypeDescriptor,
) {
	json.Range(func(key string, jv jsonvalue.Value) bool {
		p, ok := desc.Property(key)
		if !ok {
			d.report(d, UnknownProperty, desc.Name, key,
				"ignoring key without a matching property")

			return true
		}

		d.deserializeProperty(jv, p, dest, desc.Name)

		return true
	})
}

func (d *Deserializer) deserializeProperty(
	jv jsonvalue.Value,
	p property.Descriptor,
	dest property.Object,
	typeName string,
) {
	if jv.IsNullish() {
		d.write(dest, typeName, p, d.nullFor(p))
		return
	}

	category := d.dispatcher.ClassifyJSON(p, jv)
	switch category {
	case CustomConverted:
		d.write(dest, typeName, p, d.destringify(typeName, p, jv.AsString()))
		return
	case Sequence:
		d.deserializeArray(jv.AsArray(), p, dest, typeName)
		return
	case Unknown:
		d.reportUnknown(jv, p, typeName)
		return
	}

	sig, _ := p.Signature()

	switch category {
	case Primitive, Dictionary:
		v, ok := d.convert(jv, sig, dest, typeName, p.Name)
		if !ok {
			d.report(d, UnconvertibleValue, typeName, p.Name,
				"cannot convert JSON %s to %s", jv.Kind(), p.Type)

			return
		}

		d.write(dest, typeName, p, v)
	case NestedReference, NestedValue:
		v, ok := d.convertNamed(jv, sig.Name, dest, typeName, p.Name)
		if ok {
			d.write(dest, typeName, p, v)
		}
	}
}

// nullFor is what a JSON null resets a property to. Reference-typed
// properties get a typed null reference.
func (d *Deserializer) nullFor(p property.Descriptor) property.Value {
	sig, err := p.Signature()
	if err != nil || sig.Kind != property.SigNamed {
		return property.NullValue()
	}

	entry, ok := d.registry.ResolveType(sig.Name)
	if ok && entry.Descriptor.Semantics == property.ValueSemantics {
		return property.NullValue()
	}

	return property.ReferenceValue(sig.Name, nil)
}

func (d *Deserializer) reportUnknown(
	jv jsonvalue.Value,
	p property.Descriptor,
	typeName string,
) {
	sig, err := p.Signature()

	switch {
	case err != nil:
		d.report(d, MalformedContainerSignature, typeName, p.Name,
			"cannot parse signature %q", p.Type)
	case sig.Kind == property.SigNamed && jv.Kind() == jsonvalue.ObjectKind:
		d.report(d, UnregisteredType, typeName, p.Name,
			"type %s is not registered", sig.Name)
	default:
		d.report(d, UnconvertibleValue, typeName, p.Name,
			"cannot convert JSON %s to %s", jv.Kind(), p.Type)
	}
}

// destringify lets the property's stringifier parse text and falls back to
// the raw string when it cannot.
func (d *Deserializer) destringify(
	typeName string,
	p property.Descriptor,
	text string,
) property.Value {
	stringifier, ok := d.registry.ResolveStringifier(p.Converter)
	if !ok {
		d.report(d, UnregisteredStringifier, typeName, p.Name,
			"no stringifier registered under %q", p.Converter)

		return property.StringValue(text)
	}

	v, ok := stringifier.Destringify(text)
	if !ok || v.IsAbsent() {
		return property.StringValue(text)
	}

	return v
}

func (d *Deserializer) deserializeArray(
	arr []jsonvalue.Value,
	p property.Descriptor,
	dest property.Object,
	typeName string,
) {
	d.logger.Debug("deserialize array",
		zap.String("type", typeName),
		zap.String("property", p.Name),
		zap.String("signature", p.Type),
		zap.Int("length", len(arr)))

	sig, err := p.Signature()
	if err != nil ||
		(sig.Kind != property.SigSequence && sig.Kind != property.SigDynamic) {
		d.report(d, MalformedContainerSignature, typeName, p.Name,
			"cannot deserialize an array into %q", p.Type)

		return
	}

	if sig.Kind == property.SigDynamic {
		d.write(dest, typeName, p, dynamicValue(jsonvalue.Array(arr...)))
		return
	}

	elem := *sig.Elem
	if elem.Kind == property.SigNamed {
		if _, ok := d.registry.ResolveType(elem.Name); !ok {
			d.report(d, UnregisteredType, typeName, p.Name,
				"element type %s is not known", elem.Name)

			return
		}

		d.deserializeObjectArray(arr, p, elem.Name, dest, typeName)

		return
	}

	elems := make([]property.Value, 0, len(arr))
	for i, e := range arr {
		v, ok := d.convert(e, elem, dest, typeName, p.Name)
		if !ok {
			d.report(d, UnconvertibleValue, typeName, p.Name,
				"element %d: cannot convert JSON %s to %s", i, e.Kind(), elem)

			v = zeroValue(elem)
		}

		elems = append(elems, v)
	}

	d.write(dest, typeName, p, property.SequenceValue(elems...))
}

// deserializeObjectArray grows a list of nested objects through the
// property's appender, one element at a time. Null elements become null
// placeholders so that indices are preserved.
func (d *Deserializer) deserializeObjectArray(
	arr []jsonvalue.Value,
	p property.Descriptor,
	elemType string,
	dest property.Object,
	typeName string,
) {
	var (
		add property.AppendFunc
		ok  bool
	)

	if growable, isGrowable := dest.(property.Growable); isGrowable {
		add, ok = growable.Appender(p.Name)
	}

	if !ok || add == nil {
		d.report(d, MissingAppender, typeName, p.Name,
			"could not find an appender for %s elements", elemType)

		return
	}

	parent := dest
	if entry, found := d.registry.ResolveType(elemType); found &&
		entry.Descriptor.Semantics == property.ValueSemantics {
		parent = nil
	}

	for i, e := range arr {
		switch e.Kind() {
		case jsonvalue.Undefined, jsonvalue.NullKind:
			add(nil)
		case jsonvalue.ObjectKind:
			child, created := d.instantiate(elemType, parent, typeName, p.Name)
			if !created {
				add(nil)
				continue
			}

			d.deserializeObject(e.AsObject(), child, child.Describe())
			add(child)
		default:
			d.report(d, UnconvertibleValue, typeName, p.Name,
				"element %d: expected an object, got %s", i, e.Kind())
			add(nil)
		}
	}
}

// convert turns a JSON value into a property value of the given signature.
func (d *Deserializer) convert(
	jv jsonvalue.Value,
	sig property.Signature,
	owner property.Object,
	typeName, propName string,
) (property.Value, bool) {
	if jv.IsNullish() {
		if sig.Kind == property.SigNamed {
			return property.ReferenceValue(sig.Name, nil), true
		}

		return property.NullValue(), true
	}

	switch sig.Kind {
	case property.SigDynamic:
		return dynamicValue(jv), true
	case property.SigSequence:
		if jv.Kind() != jsonvalue.ArrayKind {
			return property.Value{}, false
		}

		elems := make([]property.Value, 0, len(jv.AsArray()))
		for _, e := range jv.AsArray() {
			v, ok := d.convert(e, *sig.Elem, owner, typeName, propName)
			if !ok {
				v = zeroValue(*sig.Elem)
			}

			elems = append(elems, v)
		}

		return property.SequenceValue(elems...), true
	case property.SigDictionary:
		if jv.Kind() != jsonvalue.ObjectKind {
			return property.Value{}, false
		}

		dict := property.NewDict()
		jv.AsObject().Range(func(key string, e jsonvalue.Value) bool {
			v, ok := d.convert(e, *sig.Elem, owner, typeName, propName)
			if !ok {
				d.report(d, UnconvertibleValue, typeName, propName,
					"entry %q: cannot convert JSON %s to %s",
					key, e.Kind(), sig.Elem)

				return true
			}

			dict.Set(key, v)

			return true
		})

		return property.DictionaryValue(dict), true
	case property.SigNamed:
		if jv.Kind() != jsonvalue.ObjectKind {
			return property.Value{}, false
		}

		return d.convertNamed(jv, sig.Name, owner, typeName, propName)
	}

	return coerce(jv, sig)
}

// convertNamed instantiates a registered type from a JSON object. Reference
// types are owned by owner, value types are standalone.
func (d *Deserializer) convertNamed(
	jv jsonvalue.Value,
	name string,
	owner property.Object,
	typeName, propName string,
) (property.Value, bool) {
	entry, ok := d.registry.ResolveType(name)
	if !ok {
		d.report(d, UnregisteredType, typeName, propName,
			"type %s is not registered", name)

		return property.Value{}, false
	}

	if entry.Descriptor.Semantics == property.ValueSemantics {
		child, created := d.instantiate(name, nil, typeName, propName)
		if !created {
			return property.Value{}, false
		}

		d.deserializeObject(jv.AsObject(), child, child.Describe())

		return property.StructValue(child), true
	}

	child, created := d.instantiate(name, owner, typeName, propName)
	if !created {
		return property.Value{}, false
	}

	d.deserializeObject(jv.AsObject(), child, child.Describe())

	return property.ReferenceValue(name, child), true
}

func (d *Deserializer) instantiate(
	name string,
	parent property.Object,
	typeName, propName string,
) (property.Object, bool) {
	obj, err := d.registry.CreateInstance(name, parent)
	if err != nil {
		d.report(d, UnregisteredType, typeName, propName, "%v", err)
		return nil, false
	}

	d.instantiated(name, obj)

	return obj, true
}

func (d *Deserializer) instantiated(name string, obj property.Object) {
	d.logger.Debug("instantiated", zap.String("type", name))

	if d.NumHooks() > 0 {
		d.InvokeHook(hooking.HookCtx{
			Domain: d,
			Pos:    HookPosInstantiate,
			Item:   obj,
			Detail: name,
		})
	}
}

// write stores v into the property after checking that it is writable.
func (d *Deserializer) write(
	dest property.Object,
	typeName string,
	p property.Descriptor,
	v property.Value,
) {
	if !p.Writable {
		d.report(d, NotWritable, typeName, p.Name, "property is not writable")
		return
	}

	if !dest.Set(p.Name, v) {
		d.report(d, UnconvertibleValue, typeName, p.Name,
			"property rejected %s value", v.Kind())
	}
}
