package serialization

import (
	"math"
	"strconv"
	"strings"

	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
)

// coerce converts a JSON scalar into a primitive of the given signature.
// Numbers, booleans and strings convert into each other where the conversion
// is lossless enough to be unsurprising.
func coerce(jv jsonvalue.Value, sig property.Signature) (property.Value, bool) {
	switch jv.Kind() {
	case jsonvalue.NumberKind:
		return coerceNumber(jv.AsNumber(), sig)
	case jsonvalue.BoolKind:
		return coerceBool(jv.AsBool(), sig)
	case jsonvalue.StringKind:
		return coerceString(jv.AsString(), sig)
	}

	return property.Value{}, false
}

func coerceNumber(n float64, sig property.Signature) (property.Value, bool) {
	switch sig.Kind {
	case property.SigBool:
		return property.BoolValue(n != 0), true
	case property.SigInt:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return property.Value{}, false
		}

		return property.IntValue(int64(n)), true
	case property.SigLong:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return property.Value{}, false
		}

		return property.IntValue(int64(n)), true
	case property.SigUint:
		if n != math.Trunc(n) || n < 0 || n > math.MaxUint32 {
			return property.Value{}, false
		}

		return property.UintValue(uint64(n)), true
	case property.SigUlong:
		if n != math.Trunc(n) || n < 0 || n >= math.MaxUint64 {
			return property.Value{}, false
		}

		return property.UintValue(uint64(n)), true
	case property.SigFloat, property.SigDouble:
		return property.FloatValue(n), true
	case property.SigString:
		return property.StringValue(strconv.FormatFloat(n, 'g', -1, 64)), true
	}

	return property.Value{}, false
}

func coerceBool(b bool, sig property.Signature) (property.Value, bool) {
	n := 0.0
	if b {
		n = 1
	}

	switch sig.Kind {
	case property.SigBool:
		return property.BoolValue(b), true
	case property.SigString:
		return property.StringValue(strconv.FormatBool(b)), true
	}

	if sig.IsNumeric() {
		return coerceNumber(n, sig)
	}

	return property.Value{}, false
}

func coerceString(s string, sig property.Signature) (property.Value, bool) {
	if sig.Kind == property.SigString {
		return property.StringValue(s), true
	}

	s = strings.TrimSpace(s)

	switch sig.Kind {
	case property.SigBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return property.Value{}, false
		}

		return property.BoolValue(b), true
	case property.SigInt:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return property.Value{}, false
		}

		return property.IntValue(i), true
	case property.SigLong:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return property.Value{}, false
		}

		return property.IntValue(i), true
	case property.SigUint:
		u, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return property.Value{}, false
		}

		return property.UintValue(u), true
	case property.SigUlong:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return property.Value{}, false
		}

		return property.UintValue(u), true
	case property.SigFloat, property.SigDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return property.Value{}, false
		}

		return property.FloatValue(f), true
	}

	return property.Value{}, false
}

// zeroValue is the placeholder written for list elements that cannot be
// converted.
func zeroValue(sig property.Signature) property.Value {
	switch sig.Kind {
	case property.SigBool:
		return property.BoolValue(false)
	case property.SigInt, property.SigLong:
		return property.IntValue(0)
	case property.SigUint, property.SigUlong:
		return property.UintValue(0)
	case property.SigFloat, property.SigDouble:
		return property.FloatValue(0)
	case property.SigString:
		return property.StringValue("")
	case property.SigNamed:
		return property.ReferenceValue(sig.Name, nil)
	}

	return property.NullValue()
}

// dynamicValue maps JSON onto untyped property values, keeping member order.
func dynamicValue(jv jsonvalue.Value) property.Value {
	switch jv.Kind() {
	case jsonvalue.BoolKind:
		return property.BoolValue(jv.AsBool())
	case jsonvalue.NumberKind:
		return property.FloatValue(jv.AsNumber())
	case jsonvalue.StringKind:
		return property.StringValue(jv.AsString())
	case jsonvalue.ArrayKind:
		elems := make([]property.Value, len(jv.AsArray()))
		for i, e := range jv.AsArray() {
			elems[i] = dynamicValue(e)
		}

		return property.SequenceValue(elems...)
	case jsonvalue.ObjectKind:
		dict := property.NewDict()
		jv.AsObject().Range(func(key string, e jsonvalue.Value) bool {
			dict.Set(key, dynamicValue(e))
			return true
		})

		return property.DictionaryValue(dict)
	}

	return property.NullValue()
}
