package geometry

import (
	"fmt"

	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
)

// Converter keys the geometry stringifiers are registered under.
const (
	PointKey = "point"
	SizeKey  = "size"
	RectKey  = "rect"
)

// stringifier converts one geometry type. Values travel as opaque
// property values holding either T or *T.
type stringifier[T fmt.Stringer] struct {
	parse func(string) (T, error)
}

func (s stringifier[T]) Stringify(v property.Value) string {
	switch x := v.Opaque().(type) {
	case T:
		return x.String()
	case *T:
		if x != nil {
			return (*x).String()
		}
	}

	return ""
}

func (s stringifier[T]) Destringify(text string) (property.Value, bool) {
	x, err := s.parse(text)
	if err != nil {
		return property.Value{}, false
	}

	return property.OpaqueValue(x), true
}

// PointStringifier converts Points to and from "x,y".
func PointStringifier() serialization.Stringifier {
	return stringifier[Point]{parse: ParsePoint}
}

// SizeStringifier converts Sizes to and from "w,h".
func SizeStringifier() serialization.Stringifier {
	return stringifier[Size]{parse: ParseSize}
}

// RectStringifier converts Rects to and from "x,y,w,h".
func RectStringifier() serialization.Stringifier {
	return stringifier[Rect]{parse: ParseRect}
}

// RegisterStringifiers registers the geometry stringifiers under PointKey,
// SizeKey and RectKey.
func RegisterStringifiers(registry *serialization.Registry) error {
	for key, s := range map[string]serialization.Stringifier{
		PointKey: PointStringifier(),
		SizeKey:  SizeStringifier(),
		RectKey:  RectStringifier(),
	} {
		if err := registry.RegisterStringifier(key, s); err != nil {
			return err
		}
	}

	return nil
}
