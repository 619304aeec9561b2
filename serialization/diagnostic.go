package serialization

import (
	"errors"

	"github.com/sarchlab/propjson/hooking"
)

// Hard failures. Everything else is reported as a Diagnostic and the walk
// carries on.
var (
	// ErrMalformedJSON wraps text that is not valid JSON.
	ErrMalformedJSON = errors.New("malformed JSON")

	// ErrNotObject is returned when a document to deserialize is not a JSON
	// object.
	ErrNotObject = errors.New("JSON document is not an object")

	// ErrUnregisteredType is returned when the requested top-level type has
	// no registered constructor.
	ErrUnregisteredType = errors.New("type is not registered")
)

// DiagnosticKind classifies recoverable conditions met during a walk.
type DiagnosticKind int

// Diagnostic kinds.
const (
	UnknownProperty DiagnosticKind = iota
	UnregisteredType
	NotWritable
	MalformedContainerSignature
	UnconvertibleValue
	MissingAppender
	UnregisteredStringifier
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownProperty:
		return "UnknownProperty"
	case UnregisteredType:
		return "UnregisteredType"
	case NotWritable:
		return "NotWritable"
	case MalformedContainerSignature:
		return "MalformedContainerSignature"
	case UnconvertibleValue:
		return "UnconvertibleValue"
	case MissingAppender:
		return "MissingAppender"
	case UnregisteredStringifier:
		return "UnregisteredStringifier"
	}

	return "Unknown"
}

// Diagnostic describes one recoverable condition.
type Diagnostic struct {
	Kind DiagnosticKind

	// Type is the name of the type being walked.
	Type string

	// Property is the property or JSON key involved.
	Property string

	Message string
}

// HookPosDiagnostic marks a hook invocation carrying a Diagnostic as its item.
var HookPosDiagnostic = &hooking.HookPos{Name: "Diagnostic"}

// HookPosInstantiate marks a hook invocation carrying a freshly constructed
// property.Object as its item and its type name as detail.
var HookPosInstantiate = &hooking.HookPos{Name: "Instantiate"}
