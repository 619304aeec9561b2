package jsonvalue

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// MarshalMsgpack encodes the document as MessagePack. Member order is kept.
func MarshalMsgpack(v Value) ([]byte, error) {
	buf := &bytes.Buffer{}

	err := EncodeMsgpack(buf, v)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeMsgpack writes the document as MessagePack to w.
func EncodeMsgpack(w io.Writer, v Value) error {
	enc := msgpack.NewEncoder(w)

	return encodeMsgpack(enc, v)
}

func encodeMsgpack(enc *msgpack.Encoder, v Value) error {
	switch v.kind {
	case Undefined, NullKind:
		return enc.EncodeNil()
	case BoolKind:
		return enc.EncodeBool(v.b)
	case NumberKind:
		return enc.EncodeFloat64(v.n)
	case StringKind:
		return enc.EncodeString(v.s)
	case ArrayKind:
		if err := enc.EncodeArrayLen(len(v.arr)); err != nil {
			return err
		}

		for _, e := range v.arr {
			if err := encodeMsgpack(enc, e); err != nil {
				return err
			}
		}

		return nil
	case ObjectKind:
		if err := enc.EncodeMapLen(v.obj.Len()); err != nil {
			return err
		}

		var err error
		v.obj.Range(func(k string, member Value) bool {
			if err = enc.EncodeString(k); err != nil {
				return false
			}

			err = encodeMsgpack(enc, member)

			return err == nil
		})

		return err
	}

	return fmt.Errorf("cannot encode JSON value of kind %v", v.kind)
}

// UnmarshalMsgpack decodes a MessagePack document produced by MarshalMsgpack.
func UnmarshalMsgpack(data []byte) (Value, error) {
	return DecodeMsgpack(bytes.NewReader(data))
}

// DecodeMsgpack reads one MessagePack document from r.
func DecodeMsgpack(r io.Reader) (Value, error) {
	dec := msgpack.NewDecoder(r)

	v, err := decodeMsgpack(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	return v, nil
}

func decodeMsgpack(dec *msgpack.Decoder) (Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return Value{}, err
	}

	switch {
	case c == msgpcode.Nil:
		return Null, dec.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := dec.DecodeBool()
		return Bool(b), err
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		s, err := dec.DecodeString()
		return String(s), err
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		return decodeMsgpackArray(dec)
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return decodeMsgpackMap(dec)
	}

	n, err := dec.DecodeFloat64()

	return Number(n), err
}

func decodeMsgpackArray(dec *msgpack.Decoder) (Value, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return Value{}, err
	}

	elems := make([]Value, 0, max(n, 0))
	for i := 0; i < n; i++ {
		e, err := decodeMsgpack(dec)
		if err != nil {
			return Value{}, err
		}

		elems = append(elems, e)
	}

	return Array(elems...), nil
}

func decodeMsgpackMap(dec *msgpack.Decoder) (Value, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return Value{}, err
	}

	obj := NewObject()
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return Value{}, err
		}

		member, err := decodeMsgpack(dec)
		if err != nil {
			return Value{}, err
		}

		obj.Set(k, member)
	}

	return ObjectValue(obj), nil
}
