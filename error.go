package vmrex

// CompileError wraps a pattern that failed to compile, at any stage
// (lexer, parser, or code generator) together with the original cause.
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return "vmrex: compile(" + e.Pattern + "): " + e.Err.Error()
}

// Unwrap exposes the underlying lexer/parser/compiler error to errors.Is
// and errors.As.
func (e *CompileError) Unwrap() error {
	return e.Err
}
