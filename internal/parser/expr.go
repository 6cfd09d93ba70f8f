package parser

import (
	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/lexer"
	"github.com/kolkov/bbawk/internal/token"
	"github.com/kolkov/bbawk/internal/types"
)

// pending is an operator waiting on the operator stack.
type pending struct {
	kind  token.Token
	prec  int
	unary bool
	colon bool // a '?' whose ':' has been seen
	pos   token.Position
}

// builder is the operand and operator stack pair of one expression.
type builder struct {
	p        *parser
	operands []graph.ExprID
	ops      []pending
}

// expr parses an expression ending at a token in term and returns the
// expression and the terminator.
func (p *parser) expr(term token.Class) (graph.ExprID, lexer.Token) {
	return p.parse(term, false)
}

// parse is the operator-precedence loop. It alternates between operand
// position, where prefix operators and one operand are read, and operator
// position, where a binary, postfix or terminating token is read.
func (p *parser) parse(term token.Class, allowList bool) (graph.ExprID, lexer.Token) {
	b := &builder{p: p}
	for {
		tok := p.next(token.Operand)
		if tok.Class&token.ClassUnary != 0 {
			b.ops = append(b.ops, pending{kind: tok.Kind, prec: token.Lookup(tok.Kind).Unary, unary: true, pos: tok.Pos})
			continue
		}
		b.push(p.operand(tok, term))

	operator:
		for {
			tok = p.next(token.Operator | term)
			if tok.Class&term != 0 {
				return b.finish(allowList), tok
			}
			switch tok.Kind {
			case token.INCR, token.DECR:
				b.reduceAbove(token.PrecIncr)
				x := b.pop()
				if !p.prog.Expr(x).IsLValue() {
					p.errorf(tok.Pos, "%s applied to a non-lvalue", tok.Kind)
				}
				op := graph.OpPostIncr
				if tok.Kind == token.DECR {
					op = graph.OpPostDecr
				}
				b.push(p.addExpr(graph.Expr{Op: op, Left: x}))
			case token.IN:
				b.reduceFrom(token.PrecIn)
				name := p.next(token.ClassName)
				left := b.pop()
				if g := p.prog.Expr(left); g.Op == graph.OpGroup {
					left = g.Left
				}
				b.push(p.addExpr(graph.Expr{Op: graph.OpIn, Left: left, Right: p.arrayRef(name.Value)}))
			case token.PIPE:
				b.reduceFrom(token.PrecConcat)
				cmd := b.pop()
				p.expect(token.GETLINE)
				target := p.optLValue(term)
				b.push(p.addExpr(graph.Expr{Op: graph.OpGetline, Mode: graph.GetlineCmd, Left: target, Right: cmd}))
			case token.COLON:
				b.colon(tok.Pos)
				break operator
			default:
				b.binary(tok)
				break operator
			}
		}
	}
}

func (b *builder) push(id graph.ExprID) {
	b.operands = append(b.operands, id)
}

func (b *builder) pop() graph.ExprID {
	n := len(b.operands) - 1
	id := b.operands[n]
	b.operands = b.operands[:n]
	return id
}

// reduceAbove reduces stacked operators binding tighter than prec.
func (b *builder) reduceAbove(prec int) {
	for len(b.ops) > 0 && b.ops[len(b.ops)-1].prec > prec {
		b.reduce()
	}
}

// reduceFrom reduces stacked operators binding at least as tight as prec.
func (b *builder) reduceFrom(prec int) {
	for len(b.ops) > 0 && b.ops[len(b.ops)-1].prec >= prec {
		b.reduce()
	}
}

// binary pushes an infix operator after reducing what it outranks.
// Assignment reduces only '$', so "1 && x = 2" assigns to x.
func (b *builder) binary(tok lexer.Token) {
	info := token.Lookup(tok.Kind)
	switch {
	case info.Flags&token.NeedsLValue != 0:
		b.reduceFrom(token.PrecField)
	case info.Flags&token.RightAssoc != 0:
		b.reduceAbove(info.Prec)
	default:
		b.reduceFrom(info.Prec)
	}
	b.ops = append(b.ops, pending{kind: tok.Kind, prec: info.Prec, pos: tok.Pos})
}

// colon closes the true branch of the nearest open conditional.
func (b *builder) colon(pos token.Position) {
	for {
		n := len(b.ops)
		if n == 0 {
			b.p.errorf(pos, "unexpected :")
		}
		if top := &b.ops[n-1]; top.kind == token.QUESTION && !top.colon {
			top.colon = true
			return
		}
		b.reduce()
	}
}

func (b *builder) finish(allowList bool) graph.ExprID {
	for len(b.ops) > 0 {
		b.reduce()
	}
	id := b.pop()
	if !allowList && b.p.prog.Expr(id).Op == graph.OpList {
		b.p.failf("unexpected parenthesized list")
	}
	return id
}

var binaryOps = map[token.Token]graph.Op{
	token.OR: graph.OpOr, token.AND: graph.OpAnd,
	token.MATCH: graph.OpMatch, token.NOT_MATCH: graph.OpNotMatch,
	token.LESS: graph.OpLess, token.LTE: graph.OpLessEq,
	token.GREATER: graph.OpGreater, token.GTE: graph.OpGreaterEq,
	token.EQUALS: graph.OpEqual, token.NOT_EQUALS: graph.OpNotEqual,
	token.CONCAT: graph.OpConcat,
	token.ADD: graph.OpAdd, token.SUB: graph.OpSub,
	token.MUL: graph.OpMul, token.DIV: graph.OpDiv, token.MOD: graph.OpMod,
	token.POW: graph.OpPow,
}

var unaryOps = map[token.Token]graph.Op{
	token.NOT: graph.OpNot, token.SUB: graph.OpNeg, token.ADD: graph.OpPlus,
	token.INCR: graph.OpPreIncr, token.DECR: graph.OpPreDecr,
	token.DOLLAR: graph.OpField,
}

// reduce pops the top operator and its operands and pushes the node.
func (b *builder) reduce() {
	n := len(b.ops) - 1
	op := b.ops[n]
	b.ops = b.ops[:n]
	p := b.p
	p.pos = op.pos

	if op.unary {
		x := b.pop()
		p.noList(x)
		if op.kind == token.INCR || op.kind == token.DECR {
			if !p.prog.Expr(x).IsLValue() {
				p.failf("%s applied to a non-lvalue", op.kind)
			}
		}
		b.push(p.addExpr(graph.Expr{Op: unaryOps[op.kind], Left: x}))
		return
	}

	if op.kind == token.QUESTION {
		if !op.colon {
			p.failf("missing : in conditional expression")
		}
		z, y, x := b.pop(), b.pop(), b.pop()
		p.noList(x)
		p.noList(y)
		p.noList(z)
		b.push(p.addExpr(graph.Expr{Op: graph.OpCond, Left: x, Right: y, Extra: z}))
		return
	}

	y, x := b.pop(), b.pop()
	p.noList(x)
	p.noList(y)
	if token.Lookup(op.kind).Flags&token.NeedsLValue != 0 {
		if !p.prog.Expr(x).IsLValue() {
			p.failf("assignment to a non-lvalue")
		}
		b.push(p.addExpr(graph.Expr{Op: graph.OpAssign, Tok: op.kind, Left: x, Right: y}))
		return
	}
	b.push(p.addExpr(graph.Expr{Op: binaryOps[op.kind], Left: x, Right: y}))
}

func (p *parser) noList(id graph.ExprID) {
	if p.prog.Expr(id).Op == graph.OpList {
		p.failf("unexpected parenthesized list")
	}
}

// operand builds the node for a token read in operand position.
func (p *parser) operand(tok lexer.Token, term token.Class) graph.ExprID {
	switch tok.Kind {
	case token.NUMBER:
		n, err := types.ParseNum(tok.Value)
		if err != nil {
			p.errorf(tok.Pos, "invalid number %s", tok.Value)
		}
		return p.addExpr(graph.Expr{Op: graph.OpNum, Num: n})
	case token.STRING:
		return p.addExpr(graph.Expr{Op: graph.OpStr, Str: tok.Value})
	case token.REGEX:
		return p.addExpr(graph.Expr{Op: graph.OpRegex, Str: tok.Value, Line: tok.Pos.Line})
	case token.NAME:
		return p.varRef(tok.Value)
	case token.ARRAY_NAME:
		return p.index(tok.Value)
	case token.FUNC_NAME:
		return p.call(tok)
	case token.LPAREN:
		return p.group()
	case token.GETLINE:
		return p.getline(term)
	}
	if tok.Kind.IsBuiltin() {
		return p.builtin(tok, term)
	}
	p.errorf(tok.Pos, "unexpected %s", tok.Kind)
	return graph.NoExpr
}

// primary parses a single operand with its prefix operators and no
// binary operators. It serves "$" targets and getline sources.
func (p *parser) primary() graph.ExprID {
	tok := p.next(token.Operand)
	switch tok.Kind {
	case token.DOLLAR, token.NOT, token.SUB, token.ADD:
		x := p.primary()
		return p.addExpr(graph.Expr{Op: unaryOps[tok.Kind], Left: x})
	case token.INCR, token.DECR:
		x := p.primary()
		if !p.prog.Expr(x).IsLValue() {
			p.errorf(tok.Pos, "%s applied to a non-lvalue", tok.Kind)
		}
		return p.addExpr(graph.Expr{Op: unaryOps[tok.Kind], Left: x})
	}
	return p.operand(tok, 0)
}

// group parses the rest of "(expr)" or "(expr, expr...)". A lone
// variable keeps its group node so the evaluator can tell "(a)" from "a".
func (p *parser) group() graph.ExprID {
	first, t := p.parse(token.ClassComma|token.ClassRParen, false)
	if t.Kind == token.RPAREN {
		if p.prog.Expr(first).Op == graph.OpVar {
			return p.addExpr(graph.Expr{Op: graph.OpGroup, Left: first})
		}
		return first
	}
	args := []graph.ExprID{first}
	for t.Kind == token.COMMA {
		var e graph.ExprID
		e, t = p.parse(token.ClassComma|token.ClassRParen, false)
		args = append(args, e)
	}
	return p.addExpr(graph.Expr{Op: graph.OpList, Args: args})
}

// exprList parses comma-separated expressions up to a token in close.
func (p *parser) exprList(close token.Class) []graph.ExprID {
	var list []graph.ExprID
	for {
		e, t := p.expr(token.ClassComma | close)
		list = append(list, e)
		if t.Kind != token.COMMA {
			return list
		}
	}
}

// args parses a call argument list after the opening parenthesis.
func (p *parser) args() []graph.ExprID {
	tok := p.next(token.Operand | token.ClassRParen)
	if tok.Kind == token.RPAREN {
		return nil
	}
	p.unread(tok)
	return p.exprList(token.ClassRParen)
}

func (p *parser) varRef(name string) graph.ExprID {
	if p.fn != nil {
		if i, ok := p.fn.params[name]; ok {
			return p.addExpr(graph.Expr{Op: graph.OpLocal, Slot: i})
		}
	}
	e, err := p.prog.Syms.Var(name)
	if err != nil {
		p.fail(err)
	}
	return p.addExpr(graph.Expr{Op: graph.OpVar, Slot: e.Index})
}

// arrayRef is varRef for a name used as an array; a parameter used this
// way is recorded as an array parameter.
func (p *parser) arrayRef(name string) graph.ExprID {
	id := p.varRef(name)
	p.markArray(id)
	return id
}

func (p *parser) markArray(id graph.ExprID) {
	if e := p.prog.Expr(id); e.Op == graph.OpLocal {
		p.fn.arrays[e.Slot] = true
	}
}

// index parses the subscripts of name[...].
func (p *parser) index(name string) graph.ExprID {
	arr := p.arrayRef(name)
	subs := p.exprList(token.ClassRBracket)
	return p.addExpr(graph.Expr{Op: graph.OpIndex, Left: arr, Args: subs})
}

// optLValue parses the optional target of getline.
func (p *parser) optLValue(term token.Class) graph.ExprID {
	tok := p.next(token.ClassName | token.ClassArray | token.ClassUnary | token.Operator | term)
	switch tok.Kind {
	case token.NAME:
		return p.varRef(tok.Value)
	case token.ARRAY_NAME:
		return p.index(tok.Value)
	case token.DOLLAR:
		x := p.primary()
		return p.addExpr(graph.Expr{Op: graph.OpField, Left: x})
	}
	p.unread(tok)
	return graph.NoExpr
}

// getline parses "getline [lvalue] [< file]".
func (p *parser) getline(term token.Class) graph.ExprID {
	target := p.optLValue(term)
	tok := p.next(token.Operator | term)
	if tok.Kind == token.LESS {
		src := p.primary()
		return p.addExpr(graph.Expr{Op: graph.OpGetline, Mode: graph.GetlineFile, Left: target, Right: src})
	}
	p.unread(tok)
	return p.addExpr(graph.Expr{Op: graph.OpGetline, Mode: graph.GetlineMain, Left: target, Right: graph.NoExpr})
}

// call parses a user function call; the name token already consumed '('.
func (p *parser) call(tok lexer.Token) graph.ExprID {
	e, err := p.prog.Syms.Func(tok.Value)
	if err != nil {
		p.fail(err)
	}
	p.ensureFunc(e.Index, tok.Value)
	args := p.args()
	caller := -1
	if p.fn != nil {
		caller = p.fn.index
	}
	p.calls = append(p.calls, callSite{caller: caller, callee: e.Index, args: args, pos: tok.Pos})
	return p.addExpr(graph.Expr{Op: graph.OpCall, Slot: e.Index, Args: args, Line: tok.Pos.Line})
}

// arity bounds of the built-in functions; max -1 is unbounded.
var arity = map[token.Token][2]int{
	token.F_AND: {2, -1}, token.F_ATAN2: {2, 2}, token.F_CLOSE: {1, 2},
	token.F_COMPL: {1, 1}, token.F_COS: {1, 1}, token.F_EXP: {1, 1},
	token.F_FFLUSH: {0, 1}, token.F_GSUB: {2, 3}, token.F_INDEX: {2, 2},
	token.F_INT: {1, 1}, token.F_LENGTH: {0, 1}, token.F_LOG: {1, 1},
	token.F_LSHIFT: {2, 2}, token.F_MATCH: {2, 2}, token.F_MKTIME: {1, 1},
	token.F_OR: {2, -1}, token.F_RAND: {0, 0}, token.F_RSHIFT: {2, 2},
	token.F_SIN: {1, 1}, token.F_SPLIT: {2, 3}, token.F_SPRINTF: {1, -1},
	token.F_SQRT: {1, 1}, token.F_SRAND: {0, 1}, token.F_STRFTIME: {0, 3},
	token.F_SUB: {2, 3}, token.F_SUBSTR: {2, 3}, token.F_SYSTEM: {1, 1},
	token.F_SYSTIME: {0, 0}, token.F_TOLOWER: {1, 1}, token.F_TOUPPER: {1, 1},
	token.F_XOR: {2, -1},
}

// builtin parses a built-in function call. Unlike user calls, space is
// allowed before the parenthesis, and length may omit it entirely.
func (p *parser) builtin(tok lexer.Token, term token.Class) graph.ExprID {
	fn := tok.Kind
	expect := token.ClassLParen
	if fn == token.F_LENGTH {
		expect |= token.Operator | term
	}
	if open := p.next(expect); open.Kind != token.LPAREN {
		p.unread(open)
		return p.addExpr(graph.Expr{Op: graph.OpBuiltin, Tok: fn, Line: tok.Pos.Line})
	}
	args := p.args()

	bounds := arity[fn]
	if len(args) < bounds[0] {
		p.errorf(tok.Pos, "too few arguments to %s", fn)
	}
	if bounds[1] >= 0 && len(args) > bounds[1] {
		p.errorf(tok.Pos, "too many arguments to %s", fn)
	}

	switch fn {
	case token.F_SPLIT:
		if op := p.prog.Expr(args[1]).Op; op != graph.OpVar && op != graph.OpLocal {
			p.errorf(tok.Pos, "split: second argument must be an array name")
		}
		p.markArray(args[1])
	case token.F_SUB, token.F_GSUB:
		if len(args) == 3 && !p.prog.Expr(args[2]).IsLValue() {
			p.errorf(tok.Pos, "%s: third argument must be assignable", fn)
		}
	}
	return p.addExpr(graph.Expr{Op: graph.OpBuiltin, Tok: fn, Args: args, Line: tok.Pos.Line})
}
