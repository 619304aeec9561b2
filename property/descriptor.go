package property

import "fmt"

// Semantics tells whether instances of a type have their own identity.
type Semantics int

const (
	// ReferenceSemantics types are nullable and owned through a pointer.
	ReferenceSemantics Semantics = iota

	// ValueSemantics types are embedded by copy and never null.
	ValueSemantics
)

func (s Semantics) String() string {
	if s == ValueSemantics {
		return "value"
	}

	return "reference"
}

// Descriptor describes one property of a type.
type Descriptor struct {
	Name string

	// Type is the declared type signature, see ParseSignature.
	Type string

	Readable bool
	Writable bool

	// Converter is the stringifier registry key, empty when the property is
	// not custom converted.
	Converter string

	// Identity marks the built-in instance name property. It is serialized
	// only when non-empty.
	Identity bool
}

// Signature parses the declared type of the property.
func (d Descriptor) Signature() (Signature, error) {
	return ParseSignature(d.Type)
}

// TypeDescriptor is the reflection metadata of a serializable type.
type TypeDescriptor struct {
	Name       string
	Semantics  Semantics
	Properties []Descriptor
}

// Property returns the first property descriptor with the given name.
func (t TypeDescriptor) Property(name string) (Descriptor, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return Descriptor{}, false
}

// Validate checks that the descriptor is named and that property names are
// unique and carry parsable signatures.
func (t TypeDescriptor) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("type descriptor has no name")
	}

	seen := make(map[string]bool, len(t.Properties))
	for _, p := range t.Properties {
		if p.Name == "" {
			return fmt.Errorf("type %s has a property without a name", t.Name)
		}

		if seen[p.Name] {
			return fmt.Errorf("type %s declares property %q twice",
				t.Name, p.Name)
		}
		seen[p.Name] = true

		if _, err := ParseSignature(p.Type); err != nil {
			return fmt.Errorf("type %s property %q: %w", t.Name, p.Name, err)
		}
	}

	return nil
}
