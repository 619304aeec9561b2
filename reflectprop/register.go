package reflectprop

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
)

type config struct {
	typeName   string
	semantics  property.Semantics
	converters map[string]string
}

// An Option changes how a struct is registered.
type Option func(c *config)

// WithTypeName registers the struct under name instead of its Go type name.
func WithTypeName(name string) Option {
	return func(c *config) {
		c.typeName = name
	}
}

// AsValueType registers the struct with value semantics. Its instances are
// copied into their owners and are never null.
func AsValueType() Option {
	return func(c *config) {
		c.semantics = property.ValueSemantics
	}
}

// WithConverter custom-converts the property prop through the stringifier
// registered under key, as the converter tag option would.
func WithConverter(prop, key string) Option {
	return func(c *config) {
		if c.converters == nil {
			c.converters = make(map[string]string)
		}

		c.converters[prop] = key
	}
}

// Owned is implemented by structs that keep a pointer to the object owning
// them. SetOwner receives the owner's native Go value.
type Owned interface {
	SetOwner(owner any)
}

// Register registers the struct type of sample, a struct or a pointer to one,
// in the registry. The descriptor derived at registration is also used by
// every later Wrap of the same type.
//
// Register belongs to the registration phase and must not run concurrently
// with serialization.
func Register(
	registry *serialization.Registry,
	sample any,
	opts ...Option,
) (property.TypeDescriptor, error) {
	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return property.TypeDescriptor{},
			fmt.Errorf("reflectprop: cannot register %T, not a struct", sample)
	}

	c := config{}
	for _, opt := range opts {
		opt(&c)
	}

	m, err := buildMeta(t, c)
	if err != nil {
		return property.TypeDescriptor{}, err
	}

	err = registry.RegisterType(m.desc, constructorOf(m))
	if err != nil {
		return property.TypeDescriptor{}, err
	}

	metas.Store(t, m)

	return m.desc, nil
}

// MustRegister is Register that panics on errors, for use in init functions.
func MustRegister(
	registry *serialization.Registry,
	sample any,
	opts ...Option,
) property.TypeDescriptor {
	desc, err := Register(registry, sample, opts...)
	if err != nil {
		panic(err)
	}

	return desc
}

func constructorOf(m *typeMeta) serialization.Constructor {
	return func(parent property.Object) property.Object {
		a := &Adapter{ptr: reflect.New(m.typ), meta: m}

		if parent == nil {
			return a
		}

		if owned, ok := a.Unwrap().(Owned); ok {
			owned.SetOwner(unwrap(parent))
		}

		if parented, ok := a.Unwrap().(property.Parented); ok {
			parented.SetParent(parent)
		}

		return a
	}
}

func unwrap(obj property.Object) any {
	if u, ok := obj.(property.Unwrapper); ok {
		return u.Unwrap()
	}

	return obj
}
