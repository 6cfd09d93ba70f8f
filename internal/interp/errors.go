package interp

import (
	"errors"
	"fmt"
)

// Error is a fatal runtime error. Execution stops at the first one.
type Error struct {
	Line    int // source line of the statement being run, 0 if unknown
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Control-flow signals. They unwind statement execution and never reach
// the caller of Run.
var (
	errNext     = errors.New("next")
	errNextFile = errors.New("nextfile")
	errExit     = errors.New("exit")
	errReturn   = errors.New("return")
)

func (in *Interp) errorf(format string, args ...any) error {
	return &Error{Line: in.line, Message: fmt.Sprintf(format, args...)}
}

// warnf reports a non-fatal problem on the error stream.
func (in *Interp) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	in.logger.Debug("warning", "msg", msg)
	fmt.Fprintf(in.stderr, "bbawk: warning: %s\n", msg)
}
