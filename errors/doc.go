// Package errors provides structured error types for the class layout manager.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending class or wasm type name, a member path
// (class, field or method) and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindMissingClass).
//		Class("com/example/Dog").
//		Detail("superclass of %s", "com/example/Puppy").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LateRegistration("struct", "com/example/Dog")
//	err := errors.MissingClass("com/example/Animal", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Sentinels such as ErrLateRegistration match any error with the same
// phase and kind.
package errors
