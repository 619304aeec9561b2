package serialization

import (
	"github.com/sarchlab/propjson/hooking"
	"go.uber.org/zap"
)

// Builder can build codecs.
type Builder struct {
	registry *Registry
	logger   *zap.Logger
	pretty   bool
	hooks    []hooking.Hook
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRegistry sets the registry types and stringifiers are resolved in.
func (b Builder) WithRegistry(r *Registry) Builder {
	b.registry = r
	return b
}

// WithLogger sets the logger diagnostics are written to.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

// WithPrettyPrint makes the codec indent its output.
func (b Builder) WithPrettyPrint(pretty bool) Builder {
	b.pretty = pretty
	return b
}

// WithHook attaches a hook to every serializer and deserializer built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(append([]hooking.Hook(nil), b.hooks...), hook)
	return b
}

// Build creates a Codec.
func (b Builder) Build() *Codec {
	return &Codec{
		serializer:   b.BuildSerializer(),
		deserializer: b.BuildDeserializer(),
		pretty:       b.pretty,
	}
}

// BuildSerializer creates a standalone Serializer.
func (b Builder) BuildSerializer() *Serializer {
	b.mustHaveRegistry()

	s := NewSerializer(b.registry, b.logger)
	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	return s
}

// BuildDeserializer creates a standalone Deserializer.
func (b Builder) BuildDeserializer() *Deserializer {
	b.mustHaveRegistry()

	d := NewDeserializer(b.registry, b.logger)
	for _, h := range b.hooks {
		d.AcceptHook(h)
	}

	return d
}

func (b Builder) mustHaveRegistry() {
	if b.registry == nil {
		panic("a registry is required to build a codec")
	}
}
