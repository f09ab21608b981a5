package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseReflect Phase = "reflect" // reflection metadata parsing
	PhaseEncode  Phase = "encode"  // host arguments to VM
	PhaseDecode  Phase = "decode"  // VM results to host
	PhaseInvoke  Phase = "invoke"  // VM invocation
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidMetadata Kind = "invalid_metadata"
	KindArityMismatch   Kind = "arity_mismatch"
	KindTypeMismatch    Kind = "type_mismatch"
	KindShapeMismatch   Kind = "shape_mismatch"
	KindUnknownKeyword  Kind = "unknown_keyword"
	KindFieldMissing    Kind = "field_missing"
	KindUnknownTag      Kind = "unknown_tag"
	KindUnknownDType    Kind = "unknown_dtype"
	KindUnsupported     Kind = "unsupported"
	KindInternal        Kind = "internal"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	Context string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Context != "" {
		b.WriteString(" (")
		b.WriteString(e.Context)
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Kind == "" {
			return e.Phase == t.Phase
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Context sets the positional context suffix, typically produced by the
// invocation tracker ("while encoding argument ...").
func (b *Builder) Context(ctx string) *Builder {
	b.err.Context = ctx
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Taxonomy predicates. The three spec-level error classes map onto phases:
// metadata errors are PhaseReflect, argument errors PhaseEncode, return
// errors PhaseDecode.

func IsMetadataError(err error) bool { return hasPhase(err, PhaseReflect) }
func IsArgumentError(err error) bool { return hasPhase(err, PhaseEncode) }
func IsReturnError(err error) bool   { return hasPhase(err, PhaseDecode) }

func hasPhase(err error, phase Phase) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Phase == phase {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Convenience constructors for common error patterns

// InvalidMetadata creates a reflection metadata error. Bindings that hit this
// are unusable.
func InvalidMetadata(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseReflect,
		Kind:   KindInvalidMetadata,
		Detail: detail,
		Cause:  cause,
	}
}

// ArityMismatch creates an arity mismatch error for the given direction.
func ArityMismatch(phase Phase, expected, actual int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArityMismatch,
		Detail: fmt.Sprintf("mismatched arity: expected %d, got %d", expected, actual),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: detail,
	}
}

// ShapeMismatch creates a shape/rank mismatch error for array arguments
func ShapeMismatch(detail string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindShapeMismatch,
		Detail: detail,
	}
}

// UnknownKeyword creates an error for a keyword argument with no declared
// position.
func UnknownKeyword(name string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnknownKeyword,
		Detail: fmt.Sprintf("specified keyword argument %q is unknown", name),
	}
}

// FieldMissing creates a missing dict key error
func FieldMissing(key string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindFieldMissing,
		Detail: fmt.Sprintf("expected dict item with key %q", key),
	}
}

// UnknownTag creates an error for an unrecognized descriptor tag
func UnknownTag(phase Phase, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownTag,
		Detail: fmt.Sprintf("unrecognized descriptor tag %q", tag),
		Value:  tag,
	}
}

// UnknownDType creates an error for an unrecognized element type tag
func UnknownDType(phase Phase, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownDType,
		Detail: fmt.Sprintf("unrecognized dtype %q", tag),
		Value:  tag,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Internal wraps an unexpected failure inside a conversion routine,
// preserving the original as cause.
func Internal(phase Phase, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
