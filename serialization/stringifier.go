package serialization

import "github.com/sarchlab/propjson/property"

// A Stringifier collapses a structured value into a single string and expands
// it back.
type Stringifier interface {
	// Stringify returns the textual form of v. An empty result makes the
	// serializer omit the property.
	Stringify(v property.Value) string

	// Destringify parses s. It reports false when s is not in the expected
	// form, in which case the raw string is used instead.
	Destringify(s string) (property.Value, bool)
}

// StringifierFuncs builds a Stringifier out of two functions.
type StringifierFuncs struct {
	StringifyFunc   func(v property.Value) string
	DestringifyFunc func(s string) (property.Value, bool)
}

// Stringify calls StringifyFunc.
func (f StringifierFuncs) Stringify(v property.Value) string {
	if f.StringifyFunc == nil {
		return ""
	}

	return f.StringifyFunc(v)
}

// Destringify calls DestringifyFunc.
func (f StringifierFuncs) Destringify(s string) (property.Value, bool) {
	if f.DestringifyFunc == nil {
		return property.Value{}, false
	}

	return f.DestringifyFunc(s)
}
