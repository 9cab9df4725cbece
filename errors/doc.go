// Package errors provides structured error types for the qtpeek library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: the inspected type name,
// the faulting address, a field path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindInvalidReference).
//		TypeName("QString").
//		Addr(0x804a000).
//		Detail("reference count %d outside [0, %d]", -1, 512).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidReference(errors.PhaseValidate, "QString", addr, count)
//	err := errors.Oversized(errors.PhaseValidate, "QList<int>", addr, size, limit)
//
// All errors implement the standard error interface and support errors.Is/As.
// Failure kinds form a closed set: the decode boundary maps every kind to a
// fixed display placeholder, so no fault ever reaches the host session.
package errors
