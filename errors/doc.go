// Package errors provides structured error types for the vm-bindings library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). PhaseReflect errors are fatal for a function binding (malformed
// reflection metadata), PhaseEncode errors cover host-to-VM argument
// conversion, and PhaseDecode errors cover VM-to-host result conversion.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Context("while encoding argument 2").
//		Detail("passed a dict but expected ndarray").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ArityMismatch(errors.PhaseEncode, 3, 2)
//	err := errors.UnknownKeyword("z")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
