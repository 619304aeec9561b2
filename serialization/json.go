package serialization

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
)

// Codec converts between object graphs and JSON text. Build one with
// MakeBuilder.
type Codec struct {
	serializer   *Serializer
	deserializer *Deserializer
	pretty       bool
}

// Serializer returns the serializer of the codec.
func (c *Codec) Serializer() *Serializer {
	return c.serializer
}

// Deserializer returns the deserializer of the codec.
func (c *Codec) Deserializer() *Deserializer {
	return c.deserializer
}

// Registry returns the registry the codec resolves types in.
func (c *Codec) Registry() *Registry {
	return c.serializer.Registry()
}

// AcceptHook registers a hook on both directions of the codec.
func (c *Codec) AcceptHook(hook hooking.Hook) {
	c.serializer.AcceptHook(hook)
	c.deserializer.AcceptHook(hook)
}

// NumHooks returns the number of hooks registered.
func (c *Codec) NumHooks() int {
	return c.serializer.NumHooks()
}

// Hooks returns the registered hooks.
func (c *Codec) Hooks() []hooking.Hook {
	return c.serializer.Hooks()
}

// Marshal serializes obj into JSON text.
func (c *Codec) Marshal(obj property.Object) ([]byte, error) {
	return jsonvalue.Marshal(c.serializer.Serialize(obj), c.pretty)
}

// MarshalArray serializes a bare collection into a JSON array.
func (c *Codec) MarshalArray(elems []property.Value) ([]byte, error) {
	return jsonvalue.Marshal(c.serializer.SerializeArray(elems), c.pretty)
}

// Encode serializes obj and writes the JSON text to w.
func (c *Codec) Encode(w io.Writer, obj property.Object) error {
	return jsonvalue.Encode(w, c.serializer.Serialize(obj), c.pretty)
}

// Unmarshal parses JSON text and deserializes it as an instance of typeName.
func (c *Codec) Unmarshal(
	data []byte,
	typeName string,
) (property.Object, error) {
	return c.Decode(bytes.NewReader(data), typeName)
}

// Decode reads a JSON document from r and deserializes it as an instance of
// typeName.
func (c *Codec) Decode(
	r io.Reader,
	typeName string,
) (property.Object, error) {
	doc, err := jsonvalue.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	return c.deserializer.Deserialize(doc, typeName)
}

// DecodeInto reads a JSON document from r and fills dest with it.
func (c *Codec) DecodeInto(r io.Reader, dest property.Object) error {
	doc, err := jsonvalue.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	return c.deserializer.DeserializeInto(doc, dest, dest.Describe())
}
