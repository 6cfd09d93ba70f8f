package interp

import (
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/runtime"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/types"
)

// Run executes the program: BEGIN once, the main rules once per input
// record, then END once. An exit statement skips to END, and an exit in
// END stops at once. Run returns the exit status: the exit statement's
// value, or 2 when an input file could not be opened. Every stream is
// closed and every command waited for before Run returns, also on
// error.
func (in *Interp) Run() (status int, err error) {
	defer func() {
		in.closeInput()
		if cerr := in.streams.CloseAll(); cerr != nil && err == nil {
			err = &Error{Message: "close: " + cerr.Error()}
		}
		in.logger.Debug("done", "status", status, "err", err)
	}()

	in.logger.Debug("phase", "name", "BEGIN")
	exiting := false
	if err := in.runChain(in.prog.Begin); err != nil {
		if !errors.Is(err, errExit) {
			return 2, err
		}
		exiting = true
	}

	if !exiting && (in.prog.HasMain || in.prog.HasEnd) {
		in.logger.Debug("phase", "name", "main")
		if err := in.mainLoop(); err != nil {
			if !errors.Is(err, errExit) {
				return 2, err
			}
		}
	}

	in.logger.Debug("phase", "name", "END")
	in.inEnd = true
	if err := in.runChain(in.prog.End); err != nil && !errors.Is(err, errExit) {
		return 2, err
	}
	if in.exitCode == 0 && in.status != 0 {
		return in.status, nil
	}
	return in.exitCode, nil
}

// runChain runs a top-level chain. next and nextfile were rejected by the
// parser outside the main rules.
func (in *Interp) runChain(id graph.StmtID) error {
	err := in.run(id)
	if errors.Is(err, errReturn) {
		return nil
	}
	return err
}

func (in *Interp) mainLoop() error {
	for {
		text, ok, err := in.nextRecord()
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				return err
			}
			return in.errorf("read error: %v", err)
		}
		if !ok {
			return nil
		}
		in.incr(symtab.NR)
		in.incr(symtab.FNR)
		in.rec.Set(text, in.splitter)

		err = in.run(in.prog.Main)
		switch {
		case err == nil, errors.Is(err, errNext):
		case errors.Is(err, errNextFile):
			in.closeInput()
		default:
			return err
		}
	}
}

// nextRecord returns the next record of the main input, moving through
// the ARGV operands as each one is exhausted. ok is false at the end of
// all input.
func (in *Interp) nextRecord() (text string, ok bool, err error) {
	for {
		if in.input == nil {
			more, err := in.openNext()
			if err != nil || !more {
				return "", false, err
			}
		}
		text, err := in.input.Read(in.rsep)
		if err == io.EOF {
			in.closeInput()
			continue
		}
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	}
}

// openNext opens the next file operand. Assignment operands are applied
// on the way. Standard input is read when no file operand was seen.
func (in *Interp) openNext() (bool, error) {
	argv, err := in.globals[symtab.ARGV].Array()
	if err != nil {
		return false, in.errorf("ARGV is not an array")
	}
	for {
		argc, _ := in.getGlobal(symtab.ARGC)
		if in.argIndex >= int(argc.AsNum()) {
			break
		}
		v, _ := argv.Get(strconv.Itoa(in.argIndex))
		in.argIndex++
		arg := v.AsStr(in.convfmt)
		if arg == "" {
			continue
		}
		if name, value, ok := isAssignment(arg); ok {
			if err := in.assignArg(name, value); err != nil {
				return false, err
			}
			continue
		}
		in.sawFile = true
		if arg == "-" || arg == "/dev/stdin" {
			in.useInput(in.streams.Stdin(), nil, arg)
			return true, nil
		}
		f, err := os.Open(arg)
		if err != nil {
			in.warnf("can't open file %s: %v", arg, unwrapPath(err))
			in.status = 2
			continue
		}
		in.useInput(runtime.NewRecordReader(f), f, arg)
		return true, nil
	}
	if in.sawFile {
		return false, nil
	}
	in.sawFile = true
	in.useInput(in.streams.Stdin(), nil, "")
	return true, nil
}

func (in *Interp) useInput(rr *runtime.RecordReader, c io.Closer, name string) {
	in.logger.Debug("input", "file", name)
	in.input, in.inputFile = rr, c
	in.globals[symtab.FILENAME].Set(types.Str(name))
	in.setNum(symtab.FNR, 0)
}

func (in *Interp) closeInput() {
	if in.inputFile != nil {
		in.inputFile.Close()
	}
	in.input, in.inputFile = nil, nil
}

func unwrapPath(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
