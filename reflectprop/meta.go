// Package reflectprop derives property descriptors from Go structs, so that
// plain structs can take part in serialization without hand-written getters
// and setters.
//
// Exported fields become properties. The name defaults to the field name with
// a lower-case first letter and can be changed with a struct tag:
//
//	type Repo struct {
//		property.NamedBase
//
//		FullName string            `prop:"full_name"`
//		Stars    int64             `prop:"stargazers_count,readonly"`
//		Topics   []string          `prop:"topics"`
//		Bounds   geometry.Rect     `prop:"bounds,converter=rect"`
//		Labels   map[string]string `prop:"-"`
//	}
//
// An embedded property.NamedBase provides the instance name property. A list
// of nested objects is grown through an Add<Field> method when one exists.
package reflectprop

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sarchlab/propjson/property"
)

// TypeNamer lets a struct choose the name it is registered under. By default
// the Go type name is used.
type TypeNamer interface {
	TypeName() string
}

type field struct {
	desc  property.Descriptor
	index []int
	adder string
}

type typeMeta struct {
	typ    reflect.Type
	desc   property.TypeDescriptor
	fields map[string]*field
}

var (
	metas sync.Map // reflect.Type -> *typeMeta

	namedBaseType = reflect.TypeOf(property.NamedBase{})
	typeNamerType = reflect.TypeOf((*TypeNamer)(nil)).Elem()
)

func metaOf(t reflect.Type) *typeMeta {
	m, err := lookupMeta(t)
	if err != nil {
		panic(err)
	}

	return m
}

// lookupMeta returns the cached metadata of t, deriving it on first use.
// Types that cannot be described are not cached.
func lookupMeta(t reflect.Type) (*typeMeta, error) {
	if m, ok := metas.Load(t); ok {
		return m.(*typeMeta), nil
	}

	m, err := buildMeta(t, config{})
	if err != nil {
		return nil, err
	}

	actual, _ := metas.LoadOrStore(t, m)

	return actual.(*typeMeta), nil
}

func typeNameOf(t reflect.Type) string {
	if m, ok := metas.Load(t); ok {
		return m.(*typeMeta).desc.Name
	}

	if reflect.PointerTo(t).Implements(typeNamerType) {
		namer := reflect.New(t).Interface().(TypeNamer)
		return namer.TypeName()
	}

	return t.Name()
}

func buildMeta(t reflect.Type, c config) (*typeMeta, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("reflectprop: %s is not a struct", t)
	}

	name := c.typeName
	if name == "" {
		name = typeNameOf(t)
	}

	m := &typeMeta{
		typ: t,
		desc: property.TypeDescriptor{
			Name:      name,
			Semantics: c.semantics,
		},
		fields: make(map[string]*field),
	}

	for i := 0; i < t.NumField(); i++ {
		f, err := fieldOf(t, t.Field(i), c)
		if err != nil {
			return nil, fmt.Errorf("reflectprop: %s.%s: %w",
				t.Name(), t.Field(i).Name, err)
		}

		if f == nil {
			continue
		}

		m.add(f)
	}

	for prop := range c.converters {
		if _, ok := m.fields[prop]; !ok {
			return nil, fmt.Errorf("reflectprop: %s has no property %q",
				t.Name(), prop)
		}
	}

	if err := m.desc.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *typeMeta) add(f *field) {
	m.fields[f.desc.Name] = f

	if f.desc.Identity {
		m.desc.Properties = append(
			[]property.Descriptor{f.desc}, m.desc.Properties...)
		return
	}

	m.desc.Properties = append(m.desc.Properties, f.desc)
}

func fieldOf(
	owner reflect.Type,
	sf reflect.StructField,
	c config,
) (*field, error) {
	if sf.Anonymous && sf.Type == namedBaseType {
		return &field{
			desc: property.Descriptor{
				Name:     property.IdentityProperty,
				Type:     property.TypeString,
				Readable: true,
				Writable: true,
				Identity: true,
			},
			index: append(append([]int(nil), sf.Index...), 0),
		}, nil
	}

	tag, hasTag := sf.Tag.Lookup("prop")
	if !sf.IsExported() || tag == "-" || (sf.Anonymous && !hasTag) {
		return nil, nil
	}

	opts, err := parseTag(tag)
	if err != nil {
		return nil, err
	}

	f := &field{
		desc: property.Descriptor{
			Name:      opts.name,
			Type:      opts.typ,
			Readable:  !opts.writeOnly,
			Writable:  !opts.readOnly,
			Converter: opts.converter,
		},
		index: sf.Index,
	}

	if f.desc.Name == "" {
		f.desc.Name = lowerFirst(sf.Name)
	}

	if key, ok := c.converters[f.desc.Name]; ok {
		f.desc.Converter = key
	}

	if f.desc.Type == "" {
		f.desc.Type, err = signatureOf(sf.Type, f.desc.Converter != "")
		if err != nil {
			return nil, err
		}
	}

	if isObjectList(sf.Type) {
		method := "Add" + sf.Name
		m, ok := reflect.PointerTo(owner).MethodByName(method)
		if ok && adderAccepts(m.Type, sf.Type.Elem()) {
			f.adder = method
		}
	}

	return f, nil
}

// adderAccepts reports whether the method type, receiver included, takes a
// single list element of type elem or the struct it points to.
func adderAccepts(method, elem reflect.Type) bool {
	if method.NumIn() != 2 {
		return false
	}

	param := method.In(1)

	return elem.AssignableTo(param) ||
		(elem.Kind() == reflect.Pointer && elem.Elem().AssignableTo(param))
}

type tagOptions struct {
	name      string
	typ       string
	converter string
	readOnly  bool
	writeOnly bool
}

func parseTag(tag string) (tagOptions, error) {
	parts := strings.Split(tag, ",")
	opts := tagOptions{name: strings.TrimSpace(parts[0])}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")

		switch key {
		case "readonly":
			opts.readOnly = true
		case "writeonly":
			opts.writeOnly = true
		case "converter":
			opts.converter = value
		case "type":
			opts.typ = value
		case "":
		default:
			return opts, fmt.Errorf("unknown tag option %q", part)
		}
	}

	if opts.readOnly && opts.writeOnly {
		return opts, fmt.Errorf("property is both readonly and writeonly")
	}

	return opts, nil
}

// signatureOf maps a Go type onto a property signature. Types without a
// mapping are accepted only on converted fields, where they travel as
// opaque values.
func signatureOf(t reflect.Type, converted bool) (string, error) {
	switch t.Kind() {
	case reflect.Bool:
		return property.TypeBool, nil
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return property.TypeInt, nil
	case reflect.Int, reflect.Int64:
		return property.TypeLong, nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return property.TypeUint, nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return property.TypeUlong, nil
	case reflect.Float32:
		return property.TypeFloat, nil
	case reflect.Float64:
		return property.TypeDouble, nil
	case reflect.String:
		return property.TypeString, nil
	case reflect.Interface:
		return property.TypeDynamic, nil
	case reflect.Struct:
		return typeNameOf(t), nil
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return typeNameOf(t.Elem()), nil
		}

		return signatureOf(t.Elem(), converted)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.String {
			return property.TypeStringList, nil
		}

		elem, err := signatureOf(t.Elem(), converted)
		if err != nil {
			return "", err
		}

		return property.SequenceOf(elem), nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			break
		}

		elem, err := signatureOf(t.Elem(), converted)
		if err != nil {
			return "", err
		}

		return property.DictionaryOf(elem), nil
	}

	if converted {
		return property.TypeDynamic, nil
	}

	return "", fmt.Errorf("type %s has no property signature", t)
}

func isObjectList(t reflect.Type) bool {
	if t.Kind() != reflect.Slice {
		return false
	}

	elem := t.Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	return elem.Kind() == reflect.Struct
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
