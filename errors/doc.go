// Package errors provides structured error types for the clrmeta library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the table name, the token involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindNotFound).
//		Table("TypeDef").
//		Token(tok).
//		Detail("owner row missing").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseRead, "Field", 10, 5)
//	err := errors.OperandMismatch("ldc.i4", "InlineI", "string")
//
// Structural errors (not_found, out_of_bounds) are turned into absent
// references by the entity layer. Contract errors (operand_mismatch,
// duplicate, invalid_token, unsupported) are returned to the caller.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
