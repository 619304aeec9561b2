package serialization

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/propjson/property"
)

// ErrRegistryFrozen is returned when registering into a frozen Registry.
var ErrRegistryFrozen = errors.New("registry is frozen")

// Constructor creates a fresh instance of a registered type. Reference types
// receive the object that will own the new instance, value types receive nil.
type Constructor func(parent property.Object) property.Object

// TypeEntry is what the registry knows about a type.
type TypeEntry struct {
	Descriptor property.TypeDescriptor
	New        Constructor
}

// Registry maps type names to descriptors and constructors, and converter
// keys to stringifiers.
//
// A Registry is populated once at startup and then frozen. It takes no locks:
// registering while another goroutine serializes or deserializes is a caller
// error. After Freeze it can be shared by any number of goroutines.
type Registry struct {
	frozen bool

	types        map[string]*TypeEntry
	stringifiers map[string]Stringifier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:        make(map[string]*TypeEntry),
		stringifiers: make(map[string]Stringifier),
	}
}

// RegisterType registers a type under desc.Name. Registering a name again
// replaces the previous entry.
func (r *Registry) RegisterType(
	desc property.TypeDescriptor,
	ctor Constructor,
) error {
	if r.frozen {
		return fmt.Errorf("cannot register type %s: %w", desc.Name,
			ErrRegistryFrozen)
	}

	if err := desc.Validate(); err != nil {
		return err
	}

	if ctor == nil {
		return fmt.Errorf("type %s has no constructor", desc.Name)
	}

	r.types[desc.Name] = &TypeEntry{Descriptor: desc, New: ctor}

	return nil
}

// ResolveType looks up a registered type.
func (r *Registry) ResolveType(name string) (*TypeEntry, bool) {
	entry, ok := r.types[name]
	return entry, ok
}

// Descriptor returns the descriptor of a registered type.
func (r *Registry) Descriptor(name string) (property.TypeDescriptor, bool) {
	entry, ok := r.types[name]
	if !ok {
		return property.TypeDescriptor{}, false
	}

	return entry.Descriptor, true
}

// CreateInstance builds a new instance of a registered type.
func (r *Registry) CreateInstance(
	name string,
	parent property.Object,
) (property.Object, error) {
	entry, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("type %s: %w", name, ErrUnregisteredType)
	}

	obj := entry.New(parent)
	if obj == nil {
		return nil, fmt.Errorf("constructor of type %s returned nil", name)
	}

	return obj, nil
}

// TypeNames lists the registered type names in lexical order.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RegisterStringifier registers a stringifier under a converter key.
// Registering a key again replaces the previous stringifier.
func (r *Registry) RegisterStringifier(key string, s Stringifier) error {
	if r.frozen {
		return fmt.Errorf("cannot register stringifier %s: %w", key,
			ErrRegistryFrozen)
	}

	if key == "" || s == nil {
		return fmt.Errorf("stringifier registration needs a key and a value")
	}

	r.stringifiers[key] = s

	return nil
}

// ResolveStringifier looks up the stringifier of a converter key.
func (r *Registry) ResolveStringifier(key string) (Stringifier, bool) {
	s, ok := r.stringifiers[key]
	return s, ok
}

// StringifierKeys lists the registered converter keys in lexical order.
func (r *Registry) StringifierKeys() []string {
	keys := make([]string, 0, len(r.stringifiers))
	for key := range r.stringifiers {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}
