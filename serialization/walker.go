package serialization

import (
	"fmt"

	"github.com/sarchlab/propjson/hooking"
	"go.uber.org/zap"
)

// walker holds what the Serializer and the Deserializer share: the registry,
// the dispatcher, the logger and the hooks diagnostics are reported to.
type walker struct {
	hooking.HookableBase

	registry   *Registry
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func newWalker(registry *Registry, logger *zap.Logger) walker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return walker{
		registry:   registry,
		dispatcher: NewDispatcher(registry),
		logger:     logger,
	}
}

// Registry returns the registry the walker resolves types in.
func (w *walker) Registry() *Registry {
	return w.registry
}

// Dispatcher returns the dispatcher used to route values.
func (w *walker) Dispatcher() *Dispatcher {
	return w.dispatcher
}

func (w *walker) report(
	domain hooking.Hookable,
	kind DiagnosticKind,
	typeName, propName string,
	format string, args ...any,
) {
	d := Diagnostic{
		Kind:     kind,
		Type:     typeName,
		Property: propName,
		Message:  fmt.Sprintf(format, args...),
	}

	fields := []zap.Field{
		zap.Stringer("diagnostic", kind),
		zap.String("type", typeName),
		zap.String("property", propName),
	}

	if kind == UnknownProperty {
		w.logger.Debug(d.Message, fields...)
	} else {
		w.logger.Warn(d.Message, fields...)
	}

	if w.NumHooks() > 0 {
		w.InvokeHook(hooking.HookCtx{
			Domain: domain,
			Pos:    HookPosDiagnostic,
			Item:   d,
		})
	}
}
