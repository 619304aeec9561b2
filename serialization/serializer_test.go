package serialization

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func mustParse(text string) jsonvalue.Value {
	v, err := jsonvalue.Parse([]byte(text))
	Expect(err).NotTo(HaveOccurred())

	return v
}

var _ = Describe("Serializer", func() {
	var (
		registry    *Registry
		logs        *observer.ObservedLogs
		diagnostics []Diagnostic
		serializer  *Serializer
		person      *growableRecord
	)

	BeforeEach(func() {
		core, observed := observer.New(zap.DebugLevel)
		logs = observed

		registry = newTestRegistry()
		diagnostics = nil
		serializer = NewSerializer(registry, zap.New(core))
		serializer.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosDiagnostic {
				diagnostics = append(diagnostics, ctx.Item.(Diagnostic))
			}
		}))

		person = newPerson(nil).(*growableRecord)
	})

	It("should serialize a nil object as an empty object", func() {
		out := serializer.Serialize(nil)

		Expect(out.Kind()).To(Equal(jsonvalue.ObjectKind))
		Expect(out.AsObject().Len()).To(Equal(0))
	})

	It("should keep empty strings and drop null and absent ones", func() {
		person.Set("name", property.StringValue(""))
		person.Set("nickname", property.NullValue())

		out := serializer.Serialize(person)

		Expect(out.Equal(mustParse(`{"name": ""}`))).To(BeTrue(), out.String())
	})

	It("should write the identity property only when it is set", func() {
		person.Set(property.IdentityProperty, property.StringValue(""))
		Expect(serializer.Serialize(person).AsObject().
			Has(property.IdentityProperty)).To(BeFalse())

		person.Set(property.IdentityProperty, property.StringValue("alice"))
		Expect(serializer.Serialize(person).AsObject().
			Get(property.IdentityProperty).AsString()).To(Equal("alice"))
	})

	It("should write every number as a double", func() {
		person.Set("age", property.IntValue(30))
		person.Set("big", property.IntValue(2147483657))
		person.Set("score", property.FloatValue(1.5))

		out := serializer.Serialize(person).AsObject()

		Expect(out.Get("age").AsNumber()).To(Equal(30.0))
		Expect(out.Get("big").AsNumber()).To(Equal(2147483657.0))
		Expect(out.Get("score").AsNumber()).To(Equal(1.5))
	})

	It("should keep nulls in sequences and drop them from dictionaries", func() {
		attrs := property.NewDict()
		attrs.Set("a", property.StringValue("x"))
		attrs.Set("b", property.NullValue())
		attrs.Set("c", property.StringValue("z"))

		person.Set("attrs", property.DictionaryValue(attrs))
		person.Set("tags", property.SequenceValue(
			property.StringValue("a"),
			property.StringValue("b"),
			property.NullValue(),
			property.StringValue("d"),
		))

		out := serializer.Serialize(person)

		Expect(out.Equal(mustParse(`{
			"tags": ["a", "b", null, "d"],
			"attrs": {"a": "x", "c": "z"}
		}`))).To(BeTrue(), out.String())
	})

	It("should serialize nested references and values", func() {
		friend := newPerson(person)
		friend.Set("name", property.StringValue("bob"))

		home := newRecord(addressDesc)
		home.Set("street", property.StringValue("main"))
		home.Set("zip", property.IntValue(12345))

		person.Set("friend", property.ReferenceValue("Person", friend))
		person.Set("home", property.StructValue(home))

		out := serializer.Serialize(person)

		Expect(out.Equal(mustParse(`{
			"friend": {"name": "bob"},
			"home": {"street": "main", "zip": 12345}
		}`))).To(BeTrue(), out.String())
	})

	It("should write null references as null", func() {
		person.Set("friend", property.ReferenceValue("Person", nil))

		out := serializer.Serialize(person).AsObject()

		Expect(out.Has("friend")).To(BeTrue())
		Expect(out.Get("friend").IsNull()).To(BeTrue())
	})

	It("should skip properties that are not readable", func() {
		person.Set("secret", property.StringValue("hidden"))

		Expect(serializer.Serialize(person).AsObject().Has("secret")).
			To(BeFalse())
	})

	It("should stringify custom converted values", func() {
		person.Set("bounds", property.OpaqueValue(rect{1, 2, 3, 4}))

		out := serializer.Serialize(person).AsObject()

		Expect(out.Get("bounds").AsString()).To(Equal("1,2,3,4"))
	})

	It("should omit the key when the stringifier returns nothing", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		stringifier := NewMockStringifier(mockCtrl)
		Expect(registry.RegisterStringifier("rect", stringifier)).To(Succeed())

		value := property.OpaqueValue("not a rect")
		stringifier.EXPECT().Stringify(value).Return("")
		person.Set("bounds", value)

		Expect(serializer.Serialize(person).AsObject().Has("bounds")).
			To(BeFalse())
		mockCtrl.Finish()
	})

	It("should fall back when the converter key is not registered", func() {
		person.Set("shape", property.StringValue("circle"))

		out := serializer.Serialize(person).AsObject()

		Expect(out.Get("shape").AsString()).To(Equal("circle"))
		Expect(diagnostics).To(HaveLen(1))
		Expect(diagnostics[0].Kind).To(Equal(UnregisteredStringifier))
	})

	It("should degrade unconvertible values to null with a warning", func() {
		person.Set("extra", property.OpaqueValue(make(chan int)))
		person.Set("score", property.FloatValue(math.NaN()))

		out := serializer.Serialize(person).AsObject()

		Expect(out.Get("extra").IsNull()).To(BeTrue())
		Expect(out.Get("score").IsNull()).To(BeTrue())
		Expect(diagnostics).To(HaveLen(2))
		Expect(logs.FilterLevelExact(zap.WarnLevel).Len()).To(Equal(2))
	})

	It("should write values of unregistered types as null", func() {
		pet := newRecord(petDesc)
		pet.Set("species", property.StringValue("cat"))
		person.Set("pet", property.StructValue(pet))

		out := serializer.Serialize(person).AsObject()

		Expect(out.Get("pet").IsNull()).To(BeTrue())
		Expect(diagnostics).To(HaveLen(1))
		Expect(diagnostics[0].Kind).To(Equal(UnconvertibleValue))
		Expect(diagnostics[0].Property).To(Equal("pet"))
		Expect(logs.FilterLevelExact(zap.WarnLevel).Len()).To(Equal(1))
	})

	It("should serialize bare collections", func() {
		out := serializer.SerializeArray([]property.Value{
			property.IntValue(1),
			property.NullValue(),
			property.StringValue("x"),
		})

		Expect(out.Equal(mustParse(`[1, null, "x"]`))).To(BeTrue())
	})
})
