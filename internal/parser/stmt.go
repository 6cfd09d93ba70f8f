package parser

import (
	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/lexer"
	"github.com/kolkov/bbawk/internal/token"
)

// block parses statements up to and including the closing brace.
func (p *parser) block() {
	for {
		tok := p.next(token.StmtStart)
		if tok.Kind == token.RBRACE {
			return
		}
		p.unread(tok)
		p.statement()
	}
}

// body parses the statement governed by if, else or a loop header.
func (p *parser) body() {
	tok := p.next(token.StmtStart)
	for tok.Kind == token.NEWLINE {
		tok = p.next(token.StmtStart)
	}
	if tok.Kind == token.RBRACE {
		p.errorf(tok.Pos, "unexpected }")
	}
	p.unread(tok)
	p.statement()
}

// finish consumes a simple statement's terminator; a closing brace or
// end of input is left for the enclosing construct.
func (p *parser) finish(term lexer.Token) {
	if term.Kind == token.RBRACE || term.Kind == token.EOF {
		p.unread(term)
	}
}

func (p *parser) terminator() {
	p.finish(p.next(token.StmtEnd))
}

func (p *parser) statement() {
	tok := p.next(token.StmtStart)
	switch tok.Kind {
	case token.NEWLINE, token.SEMICOLON:
	case token.LBRACE:
		p.block()
	case token.IF:
		p.ifStmt()
	case token.WHILE:
		p.whileStmt()
	case token.DO:
		p.doStmt()
	case token.FOR:
		p.forStmt()
	case token.BREAK, token.CONTINUE:
		if p.loop == nil {
			p.errorf(tok.Pos, "%s outside a loop", tok.Kind)
		}
		id := p.emit(graph.Stmt{Kind: graph.StmtJump})
		if tok.Kind == token.BREAK {
			p.loop.breaks = append(p.loop.breaks, link{id: id})
		} else {
			p.loop.continues = append(p.loop.continues, link{id: id})
		}
		p.cur.open = nil
		p.terminator()
	case token.NEXT, token.NEXTFILE:
		if p.section == sectionBegin || p.section == sectionEnd {
			p.errorf(tok.Pos, "%s used in BEGIN or END action", tok.Kind)
		}
		kind := graph.StmtNext
		if tok.Kind == token.NEXTFILE {
			kind = graph.StmtNextFile
		}
		p.emit(graph.Stmt{Kind: kind})
		p.cur.open = nil
		p.terminator()
	case token.EXIT, token.RETURN:
		if tok.Kind == token.RETURN && p.fn == nil {
			p.errorf(tok.Pos, "return outside function body")
		}
		kind := graph.StmtExit
		if tok.Kind == token.RETURN {
			kind = graph.StmtReturn
		}
		val := graph.NoExpr
		term := p.next(token.Operand | token.StmtEnd)
		if term.Class&token.StmtEnd == 0 {
			p.unread(term)
			val, term = p.expr(token.StmtEnd)
		}
		p.emit(graph.Stmt{Kind: kind, Expr: val, Line: tok.Pos.Line})
		p.cur.open = nil
		p.finish(term)
	case token.DELETE:
		name := p.next(token.ClassName | token.ClassArray)
		arr := p.arrayRef(name.Value)
		var subs []graph.ExprID
		if name.Kind == token.ARRAY_NAME {
			subs = p.exprList(token.ClassRBracket)
		}
		p.emit(graph.Stmt{Kind: graph.StmtDelete, Expr: arr, Args: subs, Line: tok.Pos.Line})
		p.terminator()
	case token.PRINT, token.PRINTF:
		p.print(tok)
	default:
		p.unread(tok)
		e, term := p.expr(token.StmtEnd)
		p.emit(graph.Stmt{Kind: graph.StmtExpr, Expr: e})
		p.finish(term)
	}
}

// print parses print and printf with their optional redirection.
func (p *parser) print(kw lexer.Token) {
	argEnd := token.ClassComma | token.StmtEnd | token.ClassRedirect
	var args []graph.ExprID
	term := p.next(token.Operand | token.StmtEnd | token.ClassRedirect)
	if term.Class&token.Operand != 0 {
		p.unread(term)
		for {
			var e graph.ExprID
			e, term = p.parse(argEnd, true)
			args = append(args, e)
			if term.Kind != token.COMMA {
				break
			}
		}
	}
	if len(args) == 1 {
		if e := p.prog.Expr(args[0]); e.Op == graph.OpList {
			args = e.Args
		}
	}
	for _, a := range args {
		p.noList(a)
	}

	s := graph.Stmt{Kind: graph.StmtPrint, Args: args, Dest: graph.NoExpr, Line: kw.Pos.Line}
	if kw.Kind == token.PRINTF {
		s.Kind = graph.StmtPrintf
		if len(args) == 0 {
			p.errorf(kw.Pos, "printf: no format")
		}
	}
	switch term.Kind {
	case token.GREATER, token.APPEND, token.PIPE:
		s.Redirect = term.Kind
		s.Dest, term = p.expr(token.StmtEnd)
	}
	p.emit(s)
	p.finish(term)
}

func (p *parser) ifStmt() {
	p.expect(token.LPAREN)
	cond, _ := p.expr(token.ClassRParen)
	branch := p.emit(graph.Stmt{Kind: graph.StmtBranch, Expr: cond})
	p.body()

	tok := p.next(token.StmtStart | token.ClassElse)
	for tok.Kind == token.NEWLINE || tok.Kind == token.SEMICOLON {
		tok = p.next(token.StmtStart | token.ClassElse)
	}
	if tok.Kind != token.ELSE {
		p.unread(tok)
		p.cur.open = append(p.cur.open, link{id: branch, alt: true})
		return
	}
	thenOpen := p.cur.open
	p.cur.open = []link{{id: branch, alt: true}}
	p.body()
	p.cur.open = append(p.cur.open, thenOpen...)
}

// enterLoop installs a fresh break/continue scope and returns the
// enclosing one.
func (p *parser) enterLoop() (*loop, *loop) {
	saved := p.loop
	p.loop = &loop{}
	return p.loop, saved
}

func (p *parser) whileStmt() {
	p.expect(token.LPAREN)
	cond, _ := p.expr(token.ClassRParen)
	head := p.emit(graph.Stmt{Kind: graph.StmtBranch, Expr: cond})
	lp, saved := p.enterLoop()
	p.body()
	p.patch(p.cur.open, head)
	p.patch(lp.continues, head)
	p.cur.open = append([]link{{id: head, alt: true}}, lp.breaks...)
	p.loop = saved
}

func (p *parser) doStmt() {
	head := p.emit(graph.Stmt{Kind: graph.StmtJump})
	lp, saved := p.enterLoop()
	p.body()
	p.loop = saved

	tok := p.next(token.StmtStart)
	for tok.Kind == token.NEWLINE || tok.Kind == token.SEMICOLON {
		tok = p.next(token.StmtStart)
	}
	if tok.Kind != token.WHILE {
		p.errorf(tok.Pos, "expected while after do body, got %s", tok.Kind)
	}
	p.expect(token.LPAREN)
	cond, _ := p.expr(token.ClassRParen)
	test := p.emit(graph.Stmt{Kind: graph.StmtBranch, Expr: cond})
	p.patch(lp.continues, test)
	p.patch([]link{{id: test}}, head)
	p.cur.open = append([]link{{id: test, alt: true}}, lp.breaks...)
	p.terminator()
}

func (p *parser) forStmt() {
	p.expect(token.LPAREN)

	tok := p.next(token.Operand | token.ClassSemicolon)
	if tok.Kind == token.NAME {
		after := p.next(token.Operator | token.ClassSemicolon | token.ClassRParen)
		if after.Kind == token.IN {
			arr := p.next(token.ClassName)
			if rp := p.next(token.Operator | token.ClassRParen); rp.Kind == token.RPAREN {
				p.forIn(tok.Value, arr.Value)
				return
			}
			p.errorf(after.Pos, "for (var in array) expected")
		}
		p.unread(after)
	}
	p.unread(tok)

	if tok = p.next(token.Operand | token.ClassSemicolon); tok.Kind != token.SEMICOLON {
		p.unread(tok)
		init, _ := p.expr(token.ClassSemicolon)
		p.emit(graph.Stmt{Kind: graph.StmtExpr, Expr: init})
	}
	cond := graph.NoExpr
	if tok = p.next(token.Operand | token.ClassSemicolon); tok.Kind != token.SEMICOLON {
		p.unread(tok)
		cond, _ = p.expr(token.ClassSemicolon)
	}
	post := graph.NoExpr
	if tok = p.next(token.Operand | token.ClassRParen); tok.Kind != token.RPAREN {
		p.unread(tok)
		post, _ = p.expr(token.ClassRParen)
	}

	var head graph.StmtID
	if cond != graph.NoExpr {
		head = p.emit(graph.Stmt{Kind: graph.StmtBranch, Expr: cond})
	} else {
		head = p.emit(graph.Stmt{Kind: graph.StmtJump})
	}
	lp, saved := p.enterLoop()
	p.body()
	p.loop = saved

	p.cur.open = append(p.cur.open, lp.continues...)
	if post != graph.NoExpr {
		p.emit(graph.Stmt{Kind: graph.StmtExpr, Expr: post})
	}
	p.patch(p.cur.open, head)
	p.cur.open = lp.breaks
	if cond != graph.NoExpr {
		p.cur.open = append(p.cur.open, link{id: head, alt: true})
	}
}

// forIn emits the iterator pair of "for (name in array) body". The keys
// are snapshotted when the loop starts.
func (p *parser) forIn(name, array string) {
	target := p.varRef(name)
	arr := p.arrayRef(array)
	slot := p.newIter()
	p.emit(graph.Stmt{Kind: graph.StmtIterInit, Expr: arr, Slot: slot})
	step := p.emit(graph.Stmt{Kind: graph.StmtIterNext, Expr: target, Slot: slot})
	lp, saved := p.enterLoop()
	p.body()
	p.loop = saved
	p.patch(p.cur.open, step)
	p.patch(lp.continues, step)
	p.cur.open = append([]link{{id: step, alt: true}}, lp.breaks...)
}

func (p *parser) newIter() int {
	if p.fn != nil {
		p.fn.iters++
		return p.fn.iters - 1
	}
	p.prog.NumIters++
	return p.prog.NumIters - 1
}
