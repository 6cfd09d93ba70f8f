package interp

import (
	"errors"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/types"
)

// call invokes a user function. Scalars are passed by value; arrays,
// and parameters the function uses as arrays, are passed as borrowed
// handles to the caller's array. Missing arguments start unset.
func (in *Interp) call(e *graph.Expr) (types.Value, error) {
	f := &in.prog.Funcs[e.Slot]
	if in.depth >= in.maxDepth {
		return types.Value{}, in.errorf("function %s: call depth exceeds %d", f.Name, in.maxDepth)
	}

	locals := make([]types.Cell, len(f.Params))
	for i, arg := range e.Args {
		c, err := in.argument(f, i, arg)
		if err != nil {
			return types.Value{}, err
		}
		locals[i] = c
	}

	saved, line := in.frame, in.line
	in.frame = &frame{fn: f, locals: locals, iters: make([]iterState, f.NumIters)}
	in.depth++
	err := in.run(f.Entry)
	ret := in.frame.ret
	in.frame, in.line = saved, line
	in.depth--

	if err != nil && !errors.Is(err, errReturn) {
		return types.Value{}, err
	}
	return ret, nil
}

func (in *Interp) argument(f *graph.Function, i int, arg graph.ExprID) (types.Cell, error) {
	a := in.prog.Expr(arg)
	if a.Op == graph.OpVar || a.Op == graph.OpLocal {
		c := in.cell(a)
		if f.ArrayParams[i] || c.IsArray() {
			arr, err := c.Array()
			if err != nil {
				return types.Cell{}, in.errorf("function %s: can't pass scalar %s as array parameter %s",
					f.Name, in.varName(a), f.Params[i])
			}
			return types.Borrow(arr), nil
		}
	} else if f.ArrayParams[i] {
		return types.Cell{}, in.errorf("function %s: parameter %s must be an array", f.Name, f.Params[i])
	}
	v, err := in.eval(arg)
	if err != nil {
		return types.Cell{}, err
	}
	return types.Scalar(v), nil
}
