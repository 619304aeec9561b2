package serialization

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/propjson/jsonvalue"
	"github.com/sarchlab/propjson/property"
)

var _ = Describe("Dispatcher", func() {
	var dispatcher *Dispatcher

	BeforeEach(func() {
		dispatcher = NewDispatcher(newTestRegistry())
	})

	prop := func(name string) property.Descriptor {
		p, ok := personDesc.Property(name)
		Expect(ok).To(BeTrue())

		return p
	}

	DescribeTable("classifying values to serialize",
		func(name string, v property.Value, expected Category) {
			Expect(dispatcher.ClassifyValue(prop(name), v)).To(Equal(expected))
		},
		Entry("converter wins over the kind", "bounds",
			property.StringValue("1,2,3,4"), CustomConverted),
		Entry("null skips the converter", "bounds",
			property.NullValue(), Primitive),
		Entry("sequence", "tags", property.SequenceValue(), Sequence),
		Entry("dictionary", "attrs", property.DictionaryValue(nil), Dictionary),
		Entry("reference", "friend",
			property.ReferenceValue("Person", nil), NestedReference),
		Entry("value", "home",
			property.StructValue(newRecord(addressDesc)), NestedValue),
		Entry("value without an instance", "home",
			property.StructValue(nil), Unknown),
		Entry("value of an unregistered type", "home",
			property.StructValue(newRecord(petDesc)), Unknown),
		Entry("reference to an unregistered type", "pet",
			property.ReferenceValue("Pet", newRecord(petDesc)), Unknown),
		Entry("null reference to an unregistered type", "pet",
			property.ReferenceValue("Pet", nil), NestedReference),
		Entry("absent", "name", property.AbsentValue(), Primitive),
		Entry("string", "name", property.StringValue("x"), Primitive),
		Entry("opaque", "extra", property.OpaqueValue(struct{}{}), Unknown),
	)

	DescribeTable("classifying JSON to deserialize",
		func(name string, jv jsonvalue.Value, expected Category) {
			Expect(dispatcher.ClassifyJSON(prop(name), jv)).To(Equal(expected))
		},
		Entry("converter on a string", "bounds",
			jsonvalue.String("1,2,3,4"), CustomConverted),
		Entry("converter ignores non-strings", "bounds",
			jsonvalue.Number(1), Unknown),
		Entry("array", "tags", jsonvalue.Array(), Sequence),
		Entry("dictionary", "attrs", jsonvalue.ObjectValue(nil), Dictionary),
		Entry("dynamic object", "extra", jsonvalue.ObjectValue(nil), Dictionary),
		Entry("registered reference type", "friend",
			jsonvalue.ObjectValue(nil), NestedReference),
		Entry("registered value type", "home",
			jsonvalue.ObjectValue(nil), NestedValue),
		Entry("unregistered type", "pet", jsonvalue.ObjectValue(nil), Unknown),
		Entry("scalar into a named type", "home", jsonvalue.Number(1), Unknown),
		Entry("object into a scalar", "name", jsonvalue.ObjectValue(nil), Unknown),
		Entry("scalar", "age", jsonvalue.Number(1), Primitive),
	)
})
