package compiler

import (
	"errors"
	"fmt"
)

// ErrTooManyCaptures mirrors the parser's cap but is checked again here
// since a caller could hand Compile a hand-built ast.Tree that bypassed
// the parser.
var ErrTooManyCaptures = errors.New("more than 9 capturing groups")

// Error wraps a code-generation failure.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("regex compile error: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
