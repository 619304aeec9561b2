package property

// Object is implemented by every type that takes part in serialization. It
// publishes the type's descriptor and gives name-indexed access to property
// values.
type Object interface {
	// TypeName returns the registered name of the instance's own type.
	TypeName() string

	// Describe returns the descriptor of the instance's own type.
	Describe() TypeDescriptor

	// Get reads a property. Unknown names return an Absent value.
	Get(name string) Value

	// Set writes a property and reports whether the value was accepted.
	Set(name string, v Value) bool
}

// AppendFunc appends one element to a growable property. A nil elem appends
// a null placeholder.
type AppendFunc func(elem Object)

// Growable is implemented by objects with list properties that can only be
// grown one element at a time.
type Growable interface {
	// Appender returns the append operation of the named property.
	Appender(name string) (AppendFunc, bool)
}

// Parented is implemented by reference types that record the object owning
// them.
type Parented interface {
	SetParent(parent Object)
}

// Unwrapper is implemented by adapters that box a native Go value.
type Unwrapper interface {
	Unwrap() any
}

// IdentityProperty is the name of the built-in identity property shared by
// reference types.
const IdentityProperty = "instanceName"

// NamedBase carries the instance name of a reference type.
type NamedBase struct {
	InstanceName string
}

// MakeNamedBase creates a NamedBase with the given name.
func MakeNamedBase(name string) NamedBase {
	return NamedBase{InstanceName: name}
}

// Name returns the instance name.
func (b *NamedBase) Name() string {
	return b.InstanceName
}

// SetName changes the instance name.
func (b *NamedBase) SetName(name string) {
	b.InstanceName = name
}
