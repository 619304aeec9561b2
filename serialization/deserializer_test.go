package serialization

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Deserializer", func() {
	var (
		registry     *Registry
		logs         *observer.ObservedLogs
		diagnostics  []Diagnostic
		instantiated []string
		deserializer *Deserializer
	)

	decode := func(text string) *growableRecord {
		obj, err := deserializer.Deserialize(mustParse(text), "Person")
		Expect(err).NotTo(HaveOccurred())

		return obj.(*growableRecord)
	}

	kinds := func() []DiagnosticKind {
		out := make([]DiagnosticKind, 0, len(diagnostics))
		for _, d := range diagnostics {
			out = append(out, d.Kind)
		}

		return out
	}

	BeforeEach(func() {
		core, observed := observer.New(zap.DebugLevel)
		logs = observed

		registry = newTestRegistry()
		diagnostics = nil
		instantiated = nil
		deserializer = NewDeserializer(registry, zap.New(core))
		deserializer.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			switch ctx.Pos {
			case HookPosDiagnostic:
				diagnostics = append(diagnostics, ctx.Item.(Diagnostic))
			case HookPosInstantiate:
				instantiated = append(instantiated, ctx.Detail.(string))
			}
		}))
	})

	It("should fail on documents that are not objects", func() {
		_, err := deserializer.Deserialize(jsonvalue.Array(), "Person")

		Expect(err).To(MatchError(ErrNotObject))
	})

	It("should fail on unregistered top-level types", func() {
		_, err := deserializer.Deserialize(mustParse(`{}`), "Nope")

		Expect(err).To(MatchError(ErrUnregisteredType))
	})

	It("should write primitives", func() {
		p := decode(`{
			"instanceName": "alice",
			"name": "Alice",
			"age": 30,
			"score": 1.5,
			"active": true
		}`)

		Expect(p.values[property.IdentityProperty]).
			To(Equal(property.StringValue("alice")))
		Expect(p.values["name"]).To(Equal(property.StringValue("Alice")))
		Expect(p.values["age"]).To(Equal(property.IntValue(30)))
		Expect(p.values["score"]).To(Equal(property.FloatValue(1.5)))
		Expect(p.values["active"]).To(Equal(property.BoolValue(true)))
		Expect(instantiated).To(Equal([]string{"Person"}))
	})

	It("should tell null from empty and absent", func() {
		p := decode(`{"name": "", "nickname": null}`)

		Expect(p.values["name"]).To(Equal(property.StringValue("")))
		Expect(p.values["nickname"].IsNull()).To(BeTrue())
		Expect(p.values).NotTo(HaveKey("age"))
	})

	It("should store integers beyond 32 bits in long properties", func() {
		p := decode(`{"big": 2147483657, "age": 2147483657}`)

		Expect(p.values["big"]).To(Equal(property.IntValue(2147483657)))
		Expect(p.values).NotTo(HaveKey("age"))
		Expect(kinds()).To(Equal([]DiagnosticKind{UnconvertibleValue}))
	})

	It("should coerce between scalar kinds", func() {
		p := decode(`{"name": 12, "age": "42", "active": 1}`)

		Expect(p.values["name"]).To(Equal(property.StringValue("12")))
		Expect(p.values["age"]).To(Equal(property.IntValue(42)))
		Expect(p.values["active"]).To(Equal(property.BoolValue(true)))
	})

	It("should ignore unknown keys", func() {
		p := decode(`{"bogus": 1, "name": "x"}`)

		Expect(p.values["name"]).To(Equal(property.StringValue("x")))
		Expect(kinds()).To(Equal([]DiagnosticKind{UnknownProperty}))
		Expect(logs.FilterLevelExact(zap.DebugLevel).
			FilterField(zap.String("property", "bogus")).Len()).To(Equal(1))
		Expect(logs.FilterLevelExact(zap.WarnLevel).Len()).To(Equal(0))
	})

	It("should build primitive lists", func() {
		p := decode(`{"tags": ["a", "b"], "scores": [1, "x", 3]}`)

		Expect(p.values["tags"]).To(Equal(property.SequenceValue(
			property.StringValue("a"), property.StringValue("b"))))
		Expect(p.values["scores"]).To(Equal(property.SequenceValue(
			property.IntValue(1), property.IntValue(0), property.IntValue(3))))
		Expect(kinds()).To(Equal([]DiagnosticKind{UnconvertibleValue}))
	})

	It("should build dictionaries", func() {
		p := decode(`{"attrs": {"b": "2", "a": "1"}}`)

		dict := p.values["attrs"].Dict()
		Expect(dict.Keys()).To(Equal([]string{"b", "a"}))

		v, _ := dict.Get("a")
		Expect(v).To(Equal(property.StringValue("1")))
	})

	It("should build dynamic trees", func() {
		p := decode(`{"extra": {"n": 1, "list": [true, null]}}`)

		Expect(p.values["extra"].Interface()).To(Equal(map[string]any{
			"n":    1.0,
			"list": []any{true, nil},
		}))
	})

	It("should own nested references and copy nested values", func() {
		p := decode(`{
			"friend": {"name": "bob"},
			"home": {"street": "main", "zip": 12345}
		}`)

		friend := p.values["friend"]
		Expect(friend.Kind()).To(Equal(property.Reference))
		Expect(friend.Object().(*growableRecord).parent).To(BeIdenticalTo(p))
		Expect(friend.Object().Get("name")).To(Equal(property.StringValue("bob")))

		home := p.values["home"]
		Expect(home.Kind()).To(Equal(property.Struct))
		Expect(home.Object().(*record).parent).To(BeNil())
		Expect(home.Object().Get("zip")).To(Equal(property.IntValue(12345)))

		Expect(instantiated).To(Equal([]string{"Person", "Person", "Address"}))
	})

	It("should write null to nested references", func() {
		p := decode(`{"friend": null}`)

		Expect(p.values["friend"].IsNull()).To(BeTrue())
	})

	It("should grow lists through the appender", func() {
		p := decode(`{"children": [{"name": "a"}, null, {"name": "c"}]}`)

		children := p.children["children"]
		Expect(children).To(HaveLen(3))
		Expect(children[0].Get("name")).To(Equal(property.StringValue("a")))
		Expect(children[1]).To(BeNil())
		Expect(children[2].Get("name")).To(Equal(property.StringValue("c")))
		Expect(children[2].(*growableRecord).parent).To(BeIdenticalTo(p))
		Expect(p.values).NotTo(HaveKey("children"))
	})

	It("should not parent value elements grown through the appender", func() {
		p := decode(`{"stops": [{"street": "main"}, {"street": "side"}]}`)

		stops := p.children["stops"]
		Expect(stops).To(HaveLen(2))
		Expect(stops[1].Get("street")).To(Equal(property.StringValue("side")))
		Expect(stops[0].(*record).parent).To(BeNil())
		Expect(stops[1].(*record).parent).To(BeNil())
	})

	It("should warn when there is no appender", func() {
		obj, err := deserializer.Deserialize(
			mustParse(`{"members": [{"name": "a"}]}`), "Team")

		Expect(err).NotTo(HaveOccurred())
		Expect(obj.(*record).values).To(BeEmpty())
		Expect(kinds()).To(Equal([]DiagnosticKind{MissingAppender}))
	})

	It("should skip lists of unregistered element types", func() {
		p := decode(`{"pets": [{"name": "rex"}]}`)

		Expect(p.children).To(BeEmpty())
		Expect(kinds()).To(Equal([]DiagnosticKind{UnregisteredType}))
	})

	It("should skip objects of unregistered types", func() {
		p := decode(`{"pet": {"name": "rex"}}`)

		Expect(p.values).NotTo(HaveKey("pet"))
		Expect(kinds()).To(Equal([]DiagnosticKind{UnregisteredType}))
	})

	It("should report arrays written into scalar properties", func() {
		p := decode(`{"name": ["x"]}`)

		Expect(p.values).NotTo(HaveKey("name"))
		Expect(kinds()).To(Equal([]DiagnosticKind{MalformedContainerSignature}))
	})

	It("should not write read-only properties", func() {
		p := decode(`{"id": "x"}`)

		Expect(p.values).NotTo(HaveKey("id"))
		Expect(kinds()).To(Equal([]DiagnosticKind{NotWritable}))
	})

	It("should destringify custom converted values", func() {
		p := decode(`{"bounds": "1,2,3,4"}`)

		Expect(p.values["bounds"].Opaque()).To(Equal(rect{1, 2, 3, 4}))
	})

	It("should keep the raw string when the stringifier cannot parse it", func() {
		p := decode(`{"bounds": "garbage", "shape": "circle"}`)

		Expect(p.values["bounds"]).To(Equal(property.StringValue("garbage")))
		Expect(p.values["shape"]).To(Equal(property.StringValue("circle")))
		Expect(kinds()).To(Equal([]DiagnosticKind{UnregisteredStringifier}))
	})

	It("should fill an existing instance", func() {
		p := newPerson(nil).(*growableRecord)

		err := deserializer.DeserializeInto(mustParse(`{"name": "x"}`), p, personDesc)

		Expect(err).NotTo(HaveOccurred())
		Expect(p.values["name"]).To(Equal(property.StringValue("x")))
		Expect(instantiated).To(BeEmpty())
	})

	It("should hand the parent to the top-level instance", func() {
		owner := newRecord(teamDesc)

		obj, err := deserializer.DeserializeOwned(mustParse(`{}`), "Person", owner)

		Expect(err).NotTo(HaveOccurred())
		Expect(obj.(*growableRecord).parent).To(BeIdenticalTo(owner))
	})
})
