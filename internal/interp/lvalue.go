package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/types"
)

type refKind uint8

const (
	refGlobal refKind = iota
	refLocal
	refElem
	refField
)

// ref is a resolved assignment target. Subscripts and field indexes are
// evaluated once, when the ref is made.
type ref struct {
	kind  refKind
	slot  int
	arr   *types.Array
	key   string
	field int
}

func (in *Interp) lvalue(id graph.ExprID) (ref, error) {
	e := in.prog.Expr(id)
	switch e.Op {
	case graph.OpVar:
		return ref{kind: refGlobal, slot: e.Slot}, nil
	case graph.OpLocal:
		return ref{kind: refLocal, slot: e.Slot}, nil
	case graph.OpIndex:
		arr, err := in.array(e.Left)
		if err != nil {
			return ref{}, err
		}
		key, err := in.subscript(e.Args)
		if err != nil {
			return ref{}, err
		}
		return ref{kind: refElem, arr: arr, key: key}, nil
	case graph.OpField:
		i, err := in.fieldIndex(e.Left)
		if err != nil {
			return ref{}, err
		}
		return ref{kind: refField, field: i}, nil
	}
	return ref{}, in.errorf("assignment to a non-lvalue")
}

func (in *Interp) get(r ref) (types.Value, error) {
	switch r.kind {
	case refGlobal:
		return in.getGlobal(r.slot)
	case refLocal:
		v, err := in.frame.locals[r.slot].Get()
		if err != nil {
			return v, in.errorf("can't use array %s in scalar context", in.frame.fn.Params[r.slot])
		}
		return v, nil
	case refElem:
		return r.arr.Ref(r.key), nil
	}
	return in.field(r.field), nil
}

func (in *Interp) set(r ref, v types.Value) error {
	switch r.kind {
	case refGlobal:
		return in.setGlobal(r.slot, v)
	case refLocal:
		if err := in.frame.locals[r.slot].Set(v); err != nil {
			return in.errorf("can't assign to %s; it's an array name", in.frame.fn.Params[r.slot])
		}
		return nil
	case refElem:
		r.arr.Set(r.key, v)
		return nil
	}
	return in.setField(r.field, v)
}

// assign stores v in the target id.
func (in *Interp) assign(id graph.ExprID, v types.Value) error {
	r, err := in.lvalue(id)
	if err != nil {
		return err
	}
	return in.set(r, v)
}

// cell returns the storage behind a variable reference.
func (in *Interp) cell(e *graph.Expr) *types.Cell {
	if e.Op == graph.OpLocal {
		return &in.frame.locals[e.Slot]
	}
	return &in.globals[e.Slot]
}

func (in *Interp) varName(e *graph.Expr) string {
	if e.Op == graph.OpLocal {
		return in.frame.fn.Params[e.Slot]
	}
	return in.prog.Syms.VarName(e.Slot)
}

// array returns the array named by id, creating it if the variable is
// unset.
func (in *Interp) array(id graph.ExprID) (*types.Array, error) {
	e := in.prog.Expr(id)
	arr, err := in.cell(e).Array()
	if err != nil {
		return nil, in.errorf("can't use scalar %s as array", in.varName(e))
	}
	return arr, nil
}

// subscript evaluates an index list into an array key.
func (in *Interp) subscript(args []graph.ExprID) (string, error) {
	if len(args) == 1 {
		v, err := in.eval(args[0])
		if err != nil {
			return "", err
		}
		return in.key(v), nil
	}
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteString(in.subsep)
		}
		v, err := in.eval(a)
		if err != nil {
			return "", err
		}
		sb.WriteString(in.key(v))
	}
	return sb.String(), nil
}

func (in *Interp) key(v types.Value) string {
	return v.AsStr(in.convfmt)
}

// maxField bounds field indexes and NF.
const maxField = math.MaxInt32

func (in *Interp) fieldIndex(id graph.ExprID) (int, error) {
	v, err := in.eval(id)
	if err != nil {
		return 0, err
	}
	n := v.AsNum()
	if math.IsNaN(n) || n < 0 || n > maxField {
		return 0, in.errorf("trying to access out of range field %s", strconv.FormatFloat(n, 'g', -1, 64))
	}
	return int(n), nil
}

func (in *Interp) field(i int) types.Value {
	if i == 0 {
		return types.Input(in.rec.Line())
	}
	return types.Input(in.rec.Field(i))
}

func (in *Interp) setField(i int, v types.Value) error {
	s := v.AsStr(in.convfmt)
	if i == 0 {
		in.rec.Set(s, in.splitter)
		return nil
	}
	in.rec.SetField(i, s, in.ofs)
	return nil
}
