// Package parser builds the program graph from awk source.
package parser

import (
	"errors"
	"fmt"

	"github.com/kolkov/bbawk/internal/lexer"
	"github.com/kolkov/bbawk/internal/token"
)

// ParseError represents a syntax error encountered during parsing.
// Parsing stops at the first error.
type ParseError struct {
	Pos     token.Position // Position where the error occurred
	Message string         // Human-readable error message
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// bailout carries a ParseError up to Parse.
type bailout struct{ err *ParseError }

func (p *parser) errorf(pos token.Position, format string, args ...any) {
	panic(bailout{&ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}})
}

func (p *parser) failf(format string, args ...any) {
	p.errorf(p.pos, format, args...)
}

func (p *parser) fail(err error) {
	var le *lexer.Error
	if errors.As(err, &le) {
		panic(bailout{&ParseError{Pos: le.Pos, Message: le.Message}})
	}
	p.failf("%v", err)
}
