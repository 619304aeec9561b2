package serialization

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/propjson/property"
)

var _ = Describe("Registry", func() {
	var registry *Registry

	BeforeEach(func() {
		registry = newTestRegistry()
	})

	It("should list types and stringifiers in order", func() {
		Expect(registry.TypeNames()).To(Equal([]string{"Address", "Person", "Team"}))
		Expect(registry.StringifierKeys()).To(Equal([]string{"rect"}))
	})

	It("should create instances with their parent", func() {
		owner := newRecord(teamDesc)

		obj, err := registry.CreateInstance("Person", owner)

		Expect(err).NotTo(HaveOccurred())
		Expect(obj.TypeName()).To(Equal("Person"))
		Expect(obj.(*growableRecord).parent).To(BeIdenticalTo(owner))
	})

	It("should replace a type registered twice", func() {
		desc := property.TypeDescriptor{Name: "Person"}

		Expect(registry.RegisterType(desc, func(property.Object) property.Object {
			return newRecord(desc)
		})).To(Succeed())

		d, ok := registry.Descriptor("Person")
		Expect(ok).To(BeTrue())
		Expect(d.Properties).To(BeEmpty())
	})

	It("should reject invalid registrations", func() {
		Expect(registry.RegisterType(property.TypeDescriptor{}, newPerson)).
			NotTo(Succeed())
		Expect(registry.RegisterType(addressDesc, nil)).NotTo(Succeed())
		Expect(registry.RegisterStringifier("", rectStringifier)).NotTo(Succeed())
	})

	It("should fail on constructors returning nil", func() {
		Expect(registry.RegisterType(property.TypeDescriptor{Name: "Ghost"},
			func(property.Object) property.Object { return nil })).To(Succeed())

		_, err := registry.CreateInstance("Ghost", nil)

		Expect(err).To(HaveOccurred())
	})

	It("should refuse registrations once frozen", func() {
		registry.Freeze()

		Expect(registry.Frozen()).To(BeTrue())
		Expect(registry.RegisterType(addressDesc, newPerson)).
			To(MatchError(ErrRegistryFrozen))
		Expect(registry.RegisterStringifier("rect", rectStringifier)).
			To(MatchError(ErrRegistryFrozen))

		_, ok := registry.ResolveType("Person")
		Expect(ok).To(BeTrue())
	})
})
