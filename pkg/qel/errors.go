package qel

import "fmt"

// ----------------------------------------------------------------------------
// Stage-prefixed errors. Parse errors are bare (the driver prefixes nothing
// extra); lowering errors carry the "BACKEND_ERROR:" prefix, built with
// fmt.Errorf rather than a dedicated error type.

// backendErrorf reports a code-generation failure: unknown identifier,
// missing AST field, out-of-range literal, or unsupported type combination.
func backendErrorf(format string, args ...any) error {
	return fmt.Errorf("BACKEND_ERROR: "+format, args...)
}

// parseErrorf reports a parser failure naming the offending token.
func parseErrorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// astErrorf reports a malformed AST handed to the lowerer's top-level
// dispatch: something that isn't a well-formed Program/Block root reaching
// code generation.
func astErrorf(format string, args ...any) error {
	return fmt.Errorf("AST_ERROR: "+format, args...)
}
