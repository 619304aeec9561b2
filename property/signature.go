package property

import (
	"errors"
	"fmt"
	"strings"
)

// SignatureKind classifies a declared type signature.
type SignatureKind int

// Signature kinds.
const (
	SigBool SignatureKind = iota
	SigInt
	SigLong
	SigUint
	SigUlong
	SigFloat
	SigDouble
	SigString
	SigSequence
	SigDictionary
	SigNamed
	SigDynamic
)

// Primitive signature names.
const (
	TypeBool       = "bool"
	TypeInt        = "int"
	TypeLong       = "long"
	TypeUint       = "uint"
	TypeUlong      = "ulong"
	TypeFloat      = "float"
	TypeDouble     = "double"
	TypeString     = "string"
	TypeStringList = "stringlist"
	TypeDynamic    = "dynamic"
)

var primitiveSignatures = map[string]SignatureKind{
	TypeBool:   SigBool,
	TypeInt:    SigInt,
	TypeLong:   SigLong,
	TypeUint:   SigUint,
	TypeUlong:  SigUlong,
	TypeFloat:  SigFloat,
	TypeDouble: SigDouble,
	TypeString: SigString,
}

// ErrMalformedSignature is returned for signatures that cannot be parsed.
var ErrMalformedSignature = errors.New("malformed type signature")

// Signature is a parsed declared type.
type Signature struct {
	Kind SignatureKind

	// Name is the type name of a SigNamed signature.
	Name string

	// Elem is the element type of a sequence or the value type of a
	// dictionary.
	Elem *Signature
}

// IsPrimitive reports whether the signature is a bool, a number or a string.
func (s Signature) IsPrimitive() bool {
	return s.Kind <= SigString
}

// IsNumeric reports whether the signature is an integral or floating kind.
func (s Signature) IsNumeric() bool {
	return s.Kind >= SigInt && s.Kind <= SigDouble
}

// String prints the signature back in its canonical textual form.
func (s Signature) String() string {
	switch s.Kind {
	case SigSequence:
		return "sequence<" + s.Elem.String() + ">"
	case SigDictionary:
		return "dictionary<string," + s.Elem.String() + ">"
	case SigNamed:
		return s.Name
	case SigDynamic:
		return TypeDynamic
	}

	for name, k := range primitiveSignatures {
		if k == s.Kind {
			return name
		}
	}

	return "?"
}

// SequenceOf builds a sequence signature string.
func SequenceOf(elem string) string {
	return "sequence<" + elem + ">"
}

// DictionaryOf builds a string-keyed dictionary signature string.
func DictionaryOf(elem string) string {
	return "dictionary<string," + elem + ">"
}

// ParseSignature parses a declared type. Accepted forms are the primitive
// names, "stringlist", "dynamic", "sequence<T>", "dictionary<string,T>" and
// bare type names.
func ParseSignature(text string) (Signature, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Signature{}, fmt.Errorf("%w: empty", ErrMalformedSignature)
	}

	if k, ok := primitiveSignatures[text]; ok {
		return Signature{Kind: k}, nil
	}

	switch text {
	case TypeStringList:
		return Signature{
			Kind: SigSequence,
			Elem: &Signature{Kind: SigString},
		}, nil
	case TypeDynamic:
		return Signature{Kind: SigDynamic}, nil
	}

	open := strings.IndexByte(text, '<')
	if open < 0 {
		if !isTypeName(text) {
			return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
		}

		return Signature{Kind: SigNamed, Name: text}, nil
	}

	if !strings.HasSuffix(text, ">") {
		return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
	}

	container := text[:open]
	args := text[open+1 : len(text)-1]

	switch container {
	case "sequence":
		elem, err := ParseSignature(args)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
		}

		return Signature{Kind: SigSequence, Elem: &elem}, nil
	case "dictionary":
		key, rest, found := strings.Cut(args, ",")
		if !found || strings.TrimSpace(key) != TypeString {
			return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
		}

		elem, err := ParseSignature(rest)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
		}

		return Signature{Kind: SigDictionary, Elem: &elem}, nil
	}

	return Signature{}, fmt.Errorf("%w: unknown container %q",
		ErrMalformedSignature, container)
}

func isTypeName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}
