package bbawk

import (
	"errors"
	"fmt"
)

// ParseError represents a syntax error in AWK source code.
type ParseError struct {
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// CompileError reports a program that parses but cannot run, such as
// one with an invalid regular expression literal.
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("compile error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("compile error: %s", e.Message)
}

// RuntimeError represents a fatal error during AWK execution. Output
// written before the error is kept.
type RuntimeError struct {
	Line    int    // source line of the failing statement, 0 if unknown
	Message string // Error description
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("runtime error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("runtime error: %s", e.Message)
}

// ExitError represents a normal exit with a status code.
// This is not an error condition; it indicates the AWK program
// called exit with the given status, or that an input file could
// not be opened (status 2).
type ExitError struct {
	Code int // Exit status code (never 0)
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// IsExitError reports whether err is an ExitError and returns the exit code.
// Returns (code, true) if err is an ExitError, or (0, false) otherwise.
func IsExitError(err error) (int, bool) {
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
