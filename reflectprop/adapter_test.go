package reflectprop

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/propjson/geometry"
	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/serialization"
)

var _ = Describe("Adapter", func() {
	var (
		registry    *serialization.Registry
		codec       *serialization.Codec
		diagnostics []serialization.DiagnosticKind
	)

	BeforeEach(func() {
		registry = newTestRegistry()
		diagnostics = nil
		codec = serialization.MakeBuilder().
			WithRegistry(registry).
			WithHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if d, ok := ctx.Item.(serialization.Diagnostic); ok {
					diagnostics = append(diagnostics, d.Kind)
				}
			})).
			Build()
	})

	unmarshalRepo := func(text string) *repo {
		obj, err := codec.Unmarshal([]byte(text), "Repo")
		Expect(err).NotTo(HaveOccurred())

		return obj.(property.Unwrapper).Unwrap().(*repo)
	}

	It("should derive the descriptor from the struct", func() {
		desc, ok := registry.Descriptor("Repo")
		Expect(ok).To(BeTrue())

		names := make([]string, 0, len(desc.Properties))
		for _, p := range desc.Properties {
			names = append(names, p.Name)
		}

		Expect(names).To(Equal([]string{
			"instanceName", "full_name", "stargazers_count", "topics",
			"description", "watchers", "forks", "bounds", "origin", "labels",
			"extra",
		}))

		Expect(desc.Properties[0].Identity).To(BeTrue())

		stars, _ := desc.Property("stargazers_count")
		Expect(stars.Writable).To(BeFalse())
		Expect(stars.Type).To(Equal("long"))

		topics, _ := desc.Property("topics")
		Expect(topics.Type).To(Equal("stringlist"))

		watchers, _ := desc.Property("watchers")
		Expect(watchers.Type).To(Equal("int"))

		bounds, _ := desc.Property("bounds")
		Expect(bounds.Converter).To(Equal(geometry.RectKey))

		origin, _ := desc.Property("origin")
		Expect(origin.Type).To(Equal("Point"))

		labels, _ := desc.Property("labels")
		Expect(labels.Type).To(Equal("dictionary<string,string>"))

		extra, _ := desc.Property("extra")
		Expect(extra.Type).To(Equal("dynamic"))

		point, _ := registry.Descriptor("Point")
		Expect(point.Semantics).To(Equal(property.ValueSemantics))
	})

	It("should round trip structs", func() {
		description := ""
		o := &owner{NamedBase: property.MakeNamedBase("octocat"), Login: "octo"}
		o.AddRepos(&repo{
			FullName:    "octo/hello",
			Stars:       7,
			Topics:      []string{"go", "json"},
			Description: &description,
			Watchers:    3,
			Forks:       2147483657,
			Bounds:      geometry.Rect{X: 1, Y: 2, W: 3, H: 4},
			Origin:      geometry.Point{X: 5, Y: 6},
			Labels:      map[string]string{"b": "2", "a": "1"},
			Extra:       map[string]any{"n": 1.0},
		})

		text, err := codec.Marshal(Wrap(o))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal(`{"instanceName":"octocat","login":"octo",` +
			`"repos":[{"full_name":"octo/hello","stargazers_count":7,` +
			`"topics":["go","json"],"description":"","watchers":3,` +
			`"forks":2147483657,"bounds":"1,2,3,4","origin":{"x":5,"y":6},` +
			`"labels":{"a":"1","b":"2"},"extra":{"n":1}}]}`))

		obj, err := codec.Unmarshal(text, "Owner")
		Expect(err).NotTo(HaveOccurred())

		decoded := obj.(property.Unwrapper).Unwrap().(*owner)
		Expect(decoded.Name()).To(Equal("octocat"))
		Expect(decoded.Repos).To(HaveLen(1))

		r := decoded.Repos[0]
		Expect(r.owner).To(BeIdenticalTo(decoded))
		Expect(r.FullName).To(Equal("octo/hello"))
		Expect(r.Stars).To(BeZero())
		Expect(r.Topics).To(Equal([]string{"go", "json"}))
		Expect(r.Description).NotTo(BeNil())
		Expect(*r.Description).To(BeEmpty())
		Expect(r.Forks).To(Equal(int64(2147483657)))
		Expect(r.Bounds).To(Equal(geometry.Rect{X: 1, Y: 2, W: 3, H: 4}))
		Expect(r.Origin).To(Equal(geometry.Point{X: 5, Y: 6}))
		Expect(r.Labels).To(Equal(map[string]string{"a": "1", "b": "2"}))
		Expect(r.Extra).To(Equal(map[string]any{"n": 1.0}))

		Expect(diagnostics).To(Equal([]serialization.DiagnosticKind{
			serialization.NotWritable,
		}))
	})

	It("should omit null strings and lists", func() {
		text, err := codec.Marshal(Wrap(&repo{FullName: "x"}))

		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal(`{"full_name":"x","stargazers_count":0,` +
			`"watchers":0,"forks":0,"bounds":"0,0,0,0","origin":{"x":0,"y":0}}`))
	})

	It("should grow nested lists through Add methods", func() {
		obj, err := codec.Unmarshal([]byte(`{"repos": [
			{"full_name": "a"}, null, {"full_name": "c"}
		]}`), "Owner")
		Expect(err).NotTo(HaveOccurred())

		o := obj.(property.Unwrapper).Unwrap().(*owner)
		Expect(o.Repos).To(HaveLen(3))
		Expect(o.Repos[0].FullName).To(Equal("a"))
		Expect(o.Repos[1]).To(BeNil())
		Expect(o.Repos[2].FullName).To(Equal("c"))
		Expect(o.Repos[2].owner).To(BeIdenticalTo(o))
	})

	It("should reject values that do not fit the field", func() {
		r := unmarshalRepo(`{"watchers": 2147483657, "bounds": "garbage",
			"description": null, "bogus": true}`)

		Expect(r.Watchers).To(BeZero())
		Expect(r.Bounds).To(Equal(geometry.Rect{}))
		Expect(r.Description).To(BeNil())
		Expect(diagnostics).To(Equal([]serialization.DiagnosticKind{
			serialization.UnconvertibleValue,
			serialization.UnconvertibleValue,
			serialization.UnknownProperty,
		}))
	})

	It("should read and write fields directly", func() {
		r := &repo{}
		a := Wrap(r)

		Expect(a.TypeName()).To(Equal("Repo"))
		Expect(a.Set("full_name", property.StringValue("x"))).To(BeTrue())
		Expect(a.Set("watchers", property.StringValue("x"))).To(BeFalse())
		Expect(a.Set("nope", property.StringValue("x"))).To(BeFalse())
		Expect(a.Set(property.IdentityProperty, property.StringValue("id"))).
			To(BeTrue())

		Expect(r.FullName).To(Equal("x"))
		Expect(r.Name()).To(Equal("id"))
		Expect(a.Get("full_name")).To(Equal(property.StringValue("x")))
		Expect(a.Get("description").IsNull()).To(BeTrue())
		Expect(a.Get("nope").IsAbsent()).To(BeTrue())
		Expect(a.Get("bounds").Opaque()).To(Equal(geometry.Rect{}))
	})

	It("should only offer appenders for lists of objects", func() {
		_, ok := Wrap(&owner{}).Appender("repos")
		Expect(ok).To(BeTrue())

		_, ok = Wrap(&repo{}).Appender("topics")
		Expect(ok).To(BeFalse())
	})

	It("should refuse to wrap non-struct pointers", func() {
		Expect(func() { Wrap(repo{}) }).To(Panic())
		Expect(func() { Wrap((*repo)(nil)) }).To(Panic())
	})
})

type marker struct {
	At    geometry.Point `prop:"at"`
	Ready chan bool      `prop:"-"`
}

type broken struct {
	Ready chan bool
}

var _ = Describe("Register", func() {
	It("should add converters at registration", func() {
		registry := serialization.NewRegistry()
		Expect(geometry.RegisterStringifiers(registry)).To(Succeed())

		desc, err := Register(registry, marker{},
			WithTypeName("Marker"), WithConverter("at", geometry.PointKey))
		Expect(err).NotTo(HaveOccurred())
		Expect(desc.Name).To(Equal("Marker"))

		codec := serialization.MakeBuilder().WithRegistry(registry).Build()
		text, err := codec.Marshal(Wrap(&marker{At: geometry.Point{X: 1, Y: 2}}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal(`{"at":"1,2"}`))
	})

	It("should reject what it cannot describe", func() {
		registry := serialization.NewRegistry()

		_, err := Register(registry, 42)
		Expect(err).To(HaveOccurred())

		_, err = Register(registry, broken{})
		Expect(err).To(HaveOccurred())

		_, err = Register(registry, marker{}, WithConverter("nope", "point"))
		Expect(err).To(HaveOccurred())

		Expect(registry.TypeNames()).To(BeEmpty())
	})
})

type callbacks struct {
	OnDone func()
}

type job struct {
	Name  string    `prop:"name"`
	Hooks callbacks `prop:"hooks"`
	At    time.Time `prop:"at"`
}

type badge struct {
	Frame *geometry.Rect `prop:"frame,converter=rect"`
}

type book struct {
	Title string `prop:"title"`
}

type shelf struct {
	Books []*book `prop:"books"`
}

func (s *shelf) AddBooks(title string) {
	s.Books = append(s.Books, &book{Title: title})
}

var _ = Describe("Adapter edge cases", func() {
	var (
		codec       *serialization.Codec
		diagnostics []serialization.Diagnostic
	)

	BeforeEach(func() {
		registry := serialization.NewRegistry()
		Expect(geometry.RegisterStringifiers(registry)).To(Succeed())
		MustRegister(registry, &job{})
		MustRegister(registry, &badge{})
		MustRegister(registry, &book{})
		MustRegister(registry, &shelf{})

		diagnostics = nil
		codec = serialization.MakeBuilder().
			WithRegistry(registry).
			WithHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if d, ok := ctx.Item.(serialization.Diagnostic); ok {
					diagnostics = append(diagnostics, d)
				}
			})).
			Build()
	})

	It("should write nested structs of unregistered types as null", func() {
		text, err := codec.Marshal(Wrap(&job{
			Name:  "build",
			Hooks: callbacks{OnDone: func() {}},
			At:    time.Unix(0, 0),
		}))

		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal(`{"name":"build","hooks":null,"at":null}`))
		Expect(diagnostics).To(HaveLen(2))
		Expect(diagnostics[0].Kind).To(Equal(serialization.UnconvertibleValue))
		Expect(diagnostics[0].Property).To(Equal("hooks"))
		Expect(diagnostics[1].Kind).To(Equal(serialization.UnconvertibleValue))
		Expect(diagnostics[1].Property).To(Equal("at"))
	})

	It("should round trip converted pointer fields", func() {
		b := &badge{Frame: &geometry.Rect{X: 1, Y: 2, W: 3, H: 4}}

		text, err := codec.Marshal(Wrap(b))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal(`{"frame":"1,2,3,4"}`))

		obj, err := codec.Unmarshal(text, "badge")
		Expect(err).NotTo(HaveOccurred())
		Expect(obj.(property.Unwrapper).Unwrap()).To(Equal(b))

		text, err = codec.Marshal(Wrap(&badge{}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal(`{}`))
		Expect(diagnostics).To(BeEmpty())
	})

	It("should not offer Add methods that take another type", func() {
		_, ok := Wrap(&shelf{}).Appender("books")
		Expect(ok).To(BeFalse())

		obj, err := codec.Unmarshal([]byte(`{"books":[{"title":"a"}]}`), "shelf")
		Expect(err).NotTo(HaveOccurred())
		Expect(obj.(property.Unwrapper).Unwrap().(*shelf).Books).To(BeEmpty())
		Expect(diagnostics).To(HaveLen(1))
		Expect(diagnostics[0].Kind).To(Equal(serialization.MissingAppender))
	})
})
