// Package hooking is the observer layer of the codec. Serializers and
// deserializers embed a HookableBase and report what they do at named
// positions; collectors, recorders and tests attach as Hooks.
//
// Positions are declared by the package that reports them, for example
// serialization.HookPosDiagnostic.
package hooking

// HookPos identifies one kind of event. Positions are compared by pointer.
type HookPos struct {
	Name string
}

// HookCtx is what a Hook receives. Item is the subject of the event, such as
// a Diagnostic or a freshly created object, and Detail is optional extra
// data that depends on Pos.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is implemented by the codec components that report events.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// Hook receives every event of the Hookable it is attached to and filters on
// ctx.Pos itself.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc lets a closure serve as a Hook. Funcs are not comparable, so the
// same HookFunc may be attached more than once.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase keeps an ordered hook list. Embed it to implement Hookable.
// Attaching the same comparable Hook twice panics.
type HookableBase struct {
	hookList []Hook
}

func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns the attached hooks in the order they fire.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); isFunc {
		return
	}

	for _, existing := range h.hookList {
		if _, isFunc := existing.(HookFunc); isFunc {
			continue
		}

		if existing == hook {
			panic("hook already attached")
		}
	}
}

// InvokeHook delivers ctx to each hook, in attachment order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}
