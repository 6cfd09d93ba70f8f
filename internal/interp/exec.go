package interp

import (
	"io"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/runtime"
	"github.com/kolkov/bbawk/internal/token"
	"github.com/kolkov/bbawk/internal/types"
)

// run executes the chain starting at id until it falls off the end or a
// control signal (next, exit, return) unwinds it.
func (in *Interp) run(id graph.StmtID) error {
	for id != graph.NoStmt {
		s := in.prog.Stmt(id)
		if s.Line > 0 {
			in.line = s.Line
		}
		next := s.Next
		switch s.Kind {
		case graph.StmtExpr:
			if _, err := in.eval(s.Expr); err != nil {
				return err
			}
		case graph.StmtPrint, graph.StmtPrintf:
			if err := in.print(s); err != nil {
				return err
			}
		case graph.StmtBranch:
			v, err := in.eval(s.Expr)
			if err != nil {
				return err
			}
			if !v.AsBool() {
				next = s.Alt
			}
		case graph.StmtRange:
			inside, err := in.inRange(s)
			if err != nil {
				return err
			}
			if !inside {
				next = s.Alt
			}
		case graph.StmtJump:
		case graph.StmtNext:
			return errNext
		case graph.StmtNextFile:
			return errNextFile
		case graph.StmtExit:
			if s.Expr != graph.NoExpr {
				v, err := in.eval(s.Expr)
				if err != nil {
					return err
				}
				in.exitCode = int(v.AsNum())
			}
			return errExit
		case graph.StmtReturn:
			if s.Expr != graph.NoExpr {
				v, err := in.eval(s.Expr)
				if err != nil {
					return err
				}
				in.frame.ret = v
			}
			return errReturn
		case graph.StmtDelete:
			if err := in.delete(s); err != nil {
				return err
			}
		case graph.StmtIterInit:
			arr, err := in.array(s.Expr)
			if err != nil {
				return err
			}
			*in.iter(s.Slot) = iterState{keys: arr.Keys(), arr: arr}
		case graph.StmtIterNext:
			it := in.iter(s.Slot)
			done := true
			for it.pos < len(it.keys) {
				k := it.keys[it.pos]
				it.pos++
				// keys deleted by the loop body are skipped
				if !it.arr.Has(k) {
					continue
				}
				if err := in.assign(s.Expr, types.Str(k)); err != nil {
					return err
				}
				done = false
				break
			}
			if done {
				*it = iterState{}
				next = s.Alt
			}
		}
		id = next
	}
	return nil
}

// inRange advances the state of a range pattern for the current record
// and reports whether the record is inside the range.
func (in *Interp) inRange(s *graph.Stmt) (bool, error) {
	if !in.ranges[s.Slot] {
		v, err := in.eval(s.Expr)
		if err != nil || !v.AsBool() {
			return false, err
		}
		in.ranges[s.Slot] = true
	}
	v, err := in.eval(s.Expr2)
	if err != nil {
		return false, err
	}
	if v.AsBool() {
		in.ranges[s.Slot] = false
	}
	return true, nil
}

func (in *Interp) iter(slot int) *iterState {
	if in.frame != nil {
		return &in.frame.iters[slot]
	}
	return &in.iters[slot]
}

func (in *Interp) delete(s *graph.Stmt) error {
	arr, err := in.array(s.Expr)
	if err != nil {
		return err
	}
	if len(s.Args) == 0 {
		arr.Clear()
		return nil
	}
	key, err := in.subscript(s.Args)
	if err != nil {
		return err
	}
	arr.Delete(key)
	return nil
}

func (in *Interp) print(s *graph.Stmt) error {
	vals := make([]types.Value, len(s.Args))
	for i, a := range s.Args {
		v, err := in.eval(a)
		if err != nil {
			return err
		}
		vals[i] = v
	}

	var text string
	if s.Kind == graph.StmtPrintf {
		format := vals[0].AsStr(in.convfmt)
		out, err := in.sprintf(format, vals[1:])
		if err != nil {
			return err
		}
		text = out
	} else {
		buf := make([]byte, 0, 128)
		if len(vals) == 0 {
			buf = append(buf, in.rec.Line()...)
		}
		for i, v := range vals {
			if i > 0 {
				buf = append(buf, in.ofs...)
			}
			buf = append(buf, v.AsStr(in.ofmt)...)
		}
		buf = append(buf, in.ors...)
		text = string(buf)
	}

	w, err := in.output(s)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return in.errorf("write error: %v", err)
	}
	if in.flush && w == io.Writer(in.streams.Stdout()) {
		if err := in.streams.Stdout().Flush(); err != nil {
			return in.errorf("write error: %v", err)
		}
	}
	return nil
}

// output returns the destination of a print statement, opening the
// redirection on first use.
func (in *Interp) output(s *graph.Stmt) (io.Writer, error) {
	if s.Redirect == 0 {
		return in.streams.Stdout(), nil
	}
	v, err := in.eval(s.Dest)
	if err != nil {
		return nil, err
	}
	name := v.AsStr(in.convfmt)
	kind := runtime.OutputFile
	switch s.Redirect {
	case token.APPEND:
		kind = runtime.AppendFile
	case token.PIPE:
		kind = runtime.OutputPipe
	}
	w, err := in.streams.Output(name, kind)
	if err != nil {
		return nil, in.errorf("can't redirect to %s: %v", name, err)
	}
	return w, nil
}
