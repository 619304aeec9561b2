package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("invalid JSON text")

// Parse parses a single JSON document.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single JSON document from r. Duplicate member names and
// trailing data are rejected.
func Decode(r io.Reader) (Value, error) {
	dec := jsontext.NewDecoder(r)

	v, err := readValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}

		return Value{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	return v, nil
}

func readValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}

	switch tok.Kind() {
	case 'n':
		return Null, nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '0':
		return Number(tok.Float()), nil
	case '"':
		return String(tok.String()), nil
	case '[':
		return readArray(dec)
	case '{':
		return readObject(dec)
	}

	return Value{}, fmt.Errorf("unexpected token %v", tok.Kind())
}

func readArray(dec *jsontext.Decoder) (Value, error) {
	elems := []Value{}

	for dec.PeekKind() != ']' {
		elem, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}

		elems = append(elems, elem)
	}

	if _, err := dec.ReadToken(); err != nil {
		return Value{}, err
	}

	return Array(elems...), nil
}

func readObject(dec *jsontext.Decoder) (Value, error) {
	obj := NewObject()

	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return Value{}, err
		}

		// The token is only valid until the next decoder call.
		key := name.String()

		member, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}

		obj.Set(key, member)
	}

	if _, err := dec.ReadToken(); err != nil {
		return Value{}, err
	}

	return ObjectValue(obj), nil
}

// Marshal prints v as JSON text. Pretty output is indented by two spaces.
// Undefined members and array elements are written as omitted and null
// respectively.
func Marshal(v Value, pretty bool) ([]byte, error) {
	buf := &bytes.Buffer{}

	err := Encode(buf, v, pretty)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode writes v as JSON text followed by a newline.
func Encode(w io.Writer, v Value, pretty bool) error {
	var opts []jsontext.Options
	if pretty {
		opts = append(opts, jsontext.WithIndent("  "))
	}

	enc := jsontext.NewEncoder(w, opts...)

	return writeValue(enc, v)
}

func writeValue(enc *jsontext.Encoder, v Value) error {
	switch v.kind {
	case Undefined, NullKind:
		return enc.WriteToken(jsontext.Null)
	case BoolKind:
		return enc.WriteToken(jsontext.Bool(v.b))
	case NumberKind:
		return enc.WriteToken(jsontext.Float(v.n))
	case StringKind:
		return enc.WriteToken(jsontext.String(v.s))
	case ArrayKind:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}

		for _, e := range v.arr {
			if err := writeValue(enc, e); err != nil {
				return err
			}
		}

		return enc.WriteToken(jsontext.EndArray)
	case ObjectKind:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}

		var err error
		v.obj.Range(func(k string, member Value) bool {
			if err = enc.WriteToken(jsontext.String(k)); err != nil {
				return false
			}

			err = writeValue(enc, member)

			return err == nil
		})
		if err != nil {
			return err
		}

		return enc.WriteToken(jsontext.EndObject)
	}

	return fmt.Errorf("cannot encode JSON value of kind %v", v.kind)
}
