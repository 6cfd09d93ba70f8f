package interp

import (
	"errors"
	"io"
	"syscall"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/runtime"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/types"
)

// getline reads one record and returns 1, 0 at end of input, or -1 when
// the source cannot be opened or read. Failures set ERRNO and are not
// fatal.
//
//	getline [var]          main input; sets NR, FNR
//	getline [var] < file   sets neither
//	cmd | getline [var]    sets NR
//
// Without var the record goes to $0, which also resets NF.
func (in *Interp) getline(e *graph.Expr) (types.Value, error) {
	var (
		text string
		ok   bool
		err  error
	)
	switch e.Mode {
	case graph.GetlineMain:
		text, ok, err = in.nextRecord()
		if err != nil {
			in.setErrno(err)
			return types.Num(-1), nil
		}
	default:
		src, evalErr := in.eval(e.Right)
		if evalErr != nil {
			return types.Value{}, evalErr
		}
		name := src.AsStr(in.convfmt)
		kind := runtime.InputFile
		if e.Mode == graph.GetlineCmd {
			kind = runtime.InputPipe
		}
		rr, openErr := in.streams.Input(name, kind)
		if openErr != nil {
			in.setErrno(openErr)
			return types.Num(-1), nil
		}
		text, err = rr.Read(in.rsep)
		switch {
		case err == io.EOF:
		case err != nil:
			in.setErrno(err)
			return types.Num(-1), nil
		default:
			ok = true
		}
	}
	if !ok {
		return types.Num(0), nil
	}

	switch e.Mode {
	case graph.GetlineMain:
		in.incr(symtab.NR)
		in.incr(symtab.FNR)
	case graph.GetlineCmd:
		in.incr(symtab.NR)
	}
	if e.Left == graph.NoExpr {
		in.rec.Set(text, in.splitter)
	} else if err := in.assign(e.Left, types.Input(text)); err != nil {
		return types.Value{}, err
	}
	return types.Num(1), nil
}

// setErrno records a soft I/O failure in ERRNO: the system error number
// when there is one, otherwise -1.
func (in *Interp) setErrno(err error) {
	code := -1
	var errno syscall.Errno
	if errors.As(err, &errno) {
		code = int(errno)
	}
	in.logger.Debug("soft error", "err", err, "errno", code)
	in.setNum(symtab.ERRNO, float64(code))
}
