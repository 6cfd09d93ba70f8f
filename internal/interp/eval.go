package interp

import (
	"math"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/runtime"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/token"
	"github.com/kolkov/bbawk/internal/types"
)

// eval evaluates an expression. Operands of &&, || and ?: are evaluated
// only when their value is needed.
func (in *Interp) eval(id graph.ExprID) (types.Value, error) {
	e := in.prog.Expr(id)
	switch e.Op {
	case graph.OpNum:
		return types.Num(e.Num), nil
	case graph.OpStr:
		return types.Str(e.Str), nil
	case graph.OpRegex:
		re, err := in.regex(e.Str)
		if err != nil {
			return types.Value{}, err
		}
		return types.Bool(re.MatchString(in.rec.Line())), nil
	case graph.OpVar:
		return in.getGlobal(e.Slot)
	case graph.OpLocal:
		return in.get(ref{kind: refLocal, slot: e.Slot})
	case graph.OpField:
		i, err := in.fieldIndex(e.Left)
		if err != nil {
			return types.Value{}, err
		}
		return in.field(i), nil
	case graph.OpIndex:
		arr, err := in.array(e.Left)
		if err != nil {
			return types.Value{}, err
		}
		key, err := in.subscript(e.Args)
		if err != nil {
			return types.Value{}, err
		}
		return arr.Ref(key), nil
	case graph.OpGroup:
		if err := in.checkRecursion(in.prog.Expr(e.Left).Slot); err != nil {
			return types.Value{}, err
		}
		return in.eval(e.Left)
	case graph.OpList:
		return types.Value{}, in.errorf("unexpected parenthesized list")
	case graph.OpAssign:
		return in.evalAssign(e)
	case graph.OpCond:
		c, err := in.eval(e.Left)
		if err != nil {
			return c, err
		}
		if c.AsBool() {
			return in.eval(e.Right)
		}
		return in.eval(e.Extra)
	case graph.OpAnd, graph.OpOr:
		l, err := in.eval(e.Left)
		if err != nil {
			return l, err
		}
		if l.AsBool() == (e.Op == graph.OpOr) {
			return types.Bool(e.Op == graph.OpOr), nil
		}
		r, err := in.eval(e.Right)
		if err != nil {
			return r, err
		}
		return types.Bool(r.AsBool()), nil
	case graph.OpNot, graph.OpNeg, graph.OpPlus:
		v, err := in.eval(e.Left)
		if err != nil {
			return v, err
		}
		switch e.Op {
		case graph.OpNot:
			return types.Bool(!v.AsBool()), nil
		case graph.OpNeg:
			return types.Num(-v.AsNum()), nil
		}
		return types.Num(v.AsNum()), nil
	case graph.OpPreIncr, graph.OpPreDecr, graph.OpPostIncr, graph.OpPostDecr:
		return in.incDec(e)
	case graph.OpMatch, graph.OpNotMatch:
		l, err := in.eval(e.Left)
		if err != nil {
			return l, err
		}
		re, err := in.pattern(e.Right)
		if err != nil {
			return types.Value{}, err
		}
		return types.Bool(re.MatchString(l.AsStr(in.convfmt)) == (e.Op == graph.OpMatch)), nil
	case graph.OpIn:
		return in.evalIn(e)
	case graph.OpCall:
		return in.call(e)
	case graph.OpBuiltin:
		return in.builtin(e)
	case graph.OpGetline:
		return in.getline(e)
	}

	l, err := in.eval(e.Left)
	if err != nil {
		return l, err
	}
	r, err := in.eval(e.Right)
	if err != nil {
		return r, err
	}
	return in.binary(e.Op, l, r)
}

func (in *Interp) binary(op graph.Op, l, r types.Value) (types.Value, error) {
	switch op {
	case graph.OpConcat:
		return types.Str(l.AsStr(in.convfmt) + r.AsStr(in.convfmt)), nil
	case graph.OpLess, graph.OpLessEq, graph.OpGreater, graph.OpGreaterEq, graph.OpEqual, graph.OpNotEqual:
		c := types.Compare(l, r, in.convfmt)
		switch op {
		case graph.OpLess:
			return types.Bool(c < 0), nil
		case graph.OpLessEq:
			return types.Bool(c <= 0), nil
		case graph.OpGreater:
			return types.Bool(c > 0), nil
		case graph.OpGreaterEq:
			return types.Bool(c >= 0), nil
		case graph.OpEqual:
			return types.Bool(c == 0), nil
		}
		return types.Bool(c != 0), nil
	}
	n, err := in.arith(op, l.AsNum(), r.AsNum())
	return types.Num(n), err
}

func (in *Interp) arith(op graph.Op, a, b float64) (float64, error) {
	switch op {
	case graph.OpAdd:
		return a + b, nil
	case graph.OpSub:
		return a - b, nil
	case graph.OpMul:
		return a * b, nil
	case graph.OpDiv:
		if b == 0 {
			return 0, in.errorf("division by zero")
		}
		return a / b, nil
	case graph.OpMod:
		if b == 0 {
			return 0, in.errorf("division by zero in %%")
		}
		return math.Mod(a, b), nil
	case graph.OpPow:
		return math.Pow(a, b), nil
	}
	return 0, in.errorf("unknown operator %d", op)
}

var augOps = map[token.Token]graph.Op{
	token.ADD_ASSIGN: graph.OpAdd,
	token.SUB_ASSIGN: graph.OpSub,
	token.MUL_ASSIGN: graph.OpMul,
	token.DIV_ASSIGN: graph.OpDiv,
	token.MOD_ASSIGN: graph.OpMod,
	token.POW_ASSIGN: graph.OpPow,
}

func (in *Interp) evalAssign(e *graph.Expr) (types.Value, error) {
	r, err := in.lvalue(e.Left)
	if err != nil {
		return types.Value{}, err
	}
	v, err := in.eval(e.Right)
	if err != nil {
		return v, err
	}
	if e.Tok != token.ASSIGN {
		cur, err := in.get(r)
		if err != nil {
			return cur, err
		}
		n, err := in.arith(augOps[e.Tok], cur.AsNum(), v.AsNum())
		if err != nil {
			return types.Value{}, err
		}
		v = types.Num(n)
	}
	return v, in.set(r, v)
}

func (in *Interp) incDec(e *graph.Expr) (types.Value, error) {
	r, err := in.lvalue(e.Left)
	if err != nil {
		return types.Value{}, err
	}
	cur, err := in.get(r)
	if err != nil {
		return cur, err
	}
	old := cur.AsNum()
	n := old + 1
	if e.Op == graph.OpPreDecr || e.Op == graph.OpPostDecr {
		n = old - 1
	}
	if err := in.set(r, types.Num(n)); err != nil {
		return types.Value{}, err
	}
	if e.Op == graph.OpPostIncr || e.Op == graph.OpPostDecr {
		return types.Num(old), nil
	}
	return types.Num(n), nil
}

func (in *Interp) evalIn(e *graph.Expr) (types.Value, error) {
	subs := []graph.ExprID{e.Left}
	if l := in.prog.Expr(e.Left); l.Op == graph.OpList {
		subs = l.Args
	}
	key, err := in.subscript(subs)
	if err != nil {
		return types.Value{}, err
	}
	arr, err := in.array(e.Right)
	if err != nil {
		return types.Value{}, err
	}
	return types.Bool(arr.Has(key)), nil
}

// checkRecursion follows the chain of variables named by string values,
// starting at global slot. A chain that returns to a variable already on
// it is an expression recursion.
func (in *Interp) checkRecursion(slot int) error {
	seen := []int{slot}
	for cur := slot; ; {
		v, err := in.globals[cur].Get()
		if err != nil || !v.IsStr() {
			return nil
		}
		e, ok := in.prog.Syms.Lookup(v.AsStr(in.convfmt))
		if !ok || e.Kind != symtab.Var {
			return nil
		}
		for _, s := range seen {
			if s == e.Index {
				return in.errorf("expression recursion on %s", in.prog.Syms.VarName(slot))
			}
		}
		seen = append(seen, e.Index)
		cur = e.Index
	}
}

// pattern returns the regex for an operand of ~, match, split, sub or
// gsub: a regex literal is used as is, anything else is a dynamic
// pattern.
func (in *Interp) pattern(id graph.ExprID) (*runtime.Regex, error) {
	if e := in.prog.Expr(id); e.Op == graph.OpRegex {
		return in.regex(e.Str)
	}
	v, err := in.eval(id)
	if err != nil {
		return nil, err
	}
	return in.regex(v.AsStr(in.convfmt))
}

func (in *Interp) regex(pattern string) (*runtime.Regex, error) {
	re, err := in.regexes.Get(pattern, in.fold)
	if err != nil {
		return nil, in.errorf("invalid regex %q: %v", pattern, err)
	}
	return re, nil
}
