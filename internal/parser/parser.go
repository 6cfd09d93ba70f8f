package parser

import (
	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/lexer"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/token"
)

type section uint8

const (
	sectionBegin section = iota
	sectionMain
	sectionEnd
	sectionFunc
)

// link is an unresolved successor: the Next (or Alt) field of a
// statement whose target is not known yet.
type link struct {
	id  graph.StmtID
	alt bool
}

// chain tracks a statement chain under construction: its first
// statement and the links that fall through to whatever comes next.
type chain struct {
	entry graph.StmtID
	open  []link
}

// loop collects the jumps of break and continue statements for the
// innermost enclosing loop.
type loop struct {
	breaks    []link
	continues []link
}

// funcScope is the parameter namespace of the function being parsed. It
// is discarded when the body ends, so parameter names never reach the
// global symbol table.
type funcScope struct {
	index  int
	params map[string]int
	arrays []bool
	iters  int
}

type callSite struct {
	caller int // function index, or -1 outside functions
	callee int
	args   []graph.ExprID
	pos    token.Position
}

type parser struct {
	lex  *lexer.Lexer
	prog *graph.Program
	pos  token.Position

	begin, main, end chain
	cur              *chain
	section          section
	loop             *loop
	fn               *funcScope
	calls            []callSite
}

// Parse parses awk source into a program graph.
func Parse(src string) (prog *graph.Program, err error) {
	p := &parser{
		lex:   lexer.NewFromString(src),
		prog:  graph.New(),
		begin: chain{entry: graph.NoStmt},
		main:  chain{entry: graph.NoStmt},
		end:   chain{entry: graph.NoStmt},
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()

	p.program()
	p.resolve()
	p.prog.Begin = p.begin.entry
	p.prog.Main = p.main.entry
	p.prog.End = p.end.entry
	return p.prog, nil
}

func (p *parser) next(expect token.Class) lexer.Token {
	tok, err := p.lex.Next(expect)
	if err != nil {
		p.fail(err)
	}
	p.pos = tok.Pos
	return tok
}

func (p *parser) expect(kind token.Token) lexer.Token {
	tok := p.next(token.ClassOf(kind))
	if tok.Kind != kind {
		p.failf("expected %s, got %s", kind, tok.Kind)
	}
	return tok
}

func (p *parser) unread(tok lexer.Token) {
	p.lex.Unread(tok)
}

// program parses top-level items until end of input.
func (p *parser) program() {
	for {
		tok := p.next(token.ItemStart)
		switch tok.Kind {
		case token.EOF:
			return
		case token.NEWLINE, token.SEMICOLON:
		case token.BEGIN:
			p.action(&p.begin, sectionBegin)
		case token.END:
			p.prog.HasEnd = true
			p.action(&p.end, sectionEnd)
		case token.FUNCTION:
			p.function()
		case token.LBRACE:
			p.prog.HasMain = true
			p.cur, p.section = &p.main, sectionMain
			p.block()
		default:
			p.unread(tok)
			p.rule()
		}
	}
}

func (p *parser) action(c *chain, s section) {
	p.cur, p.section = c, s
	p.expect(token.LBRACE)
	p.block()
}

// rule parses "pattern [, pattern] [{ action }]".
func (p *parser) rule() {
	p.prog.HasMain = true
	p.cur, p.section = &p.main, sectionMain

	ruleEnd := token.ClassLBrace | token.ClassNewline | token.ClassSemicolon | token.ClassEOF
	start, term := p.expr(ruleEnd | token.ClassComma)
	var id graph.StmtID
	if term.Kind == token.COMMA {
		var end graph.ExprID
		end, term = p.expr(ruleEnd)
		id = p.emit(graph.Stmt{Kind: graph.StmtRange, Expr: start, Expr2: end, Slot: p.prog.NumRanges})
		p.prog.NumRanges++
	} else {
		id = p.emit(graph.Stmt{Kind: graph.StmtBranch, Expr: start})
	}

	if term.Kind == token.LBRACE {
		p.block()
	} else {
		p.emit(graph.Stmt{Kind: graph.StmtPrint, Dest: graph.NoExpr})
		if term.Kind == token.EOF {
			p.unread(term)
		}
	}
	p.cur.open = append(p.cur.open, link{id: id, alt: true})
}

// function parses "function name(params) { body }".
func (p *parser) function() {
	tok := p.next(token.ClassName | token.ClassFunc)
	name := tok.Value
	if tok.Kind == token.NAME {
		p.expect(token.LPAREN)
	}
	entry, err := p.prog.Syms.Func(name)
	if err != nil {
		p.fail(err)
	}
	idx := entry.Index
	p.ensureFunc(idx, name)
	if p.prog.Funcs[idx].Defined {
		p.errorf(tok.Pos, "function %s redefined", name)
	}

	scope := &funcScope{index: idx, params: make(map[string]int)}
	var params []string
	tok = p.next(token.ClassName | token.ClassRParen)
	for tok.Kind != token.RPAREN {
		pname := tok.Value
		if pname == name {
			p.failf("function %s: parameter shadows the function name", name)
		}
		if e, ok := p.prog.Syms.Lookup(pname); ok && e.Kind == symtab.Func {
			p.failf("function %s: function name %s used as parameter", name, pname)
		}
		if _, dup := scope.params[pname]; dup {
			p.failf("function %s: duplicate parameter %s", name, pname)
		}
		scope.params[pname] = len(params)
		params = append(params, pname)
		if tok = p.next(token.ClassComma | token.ClassRParen); tok.Kind == token.COMMA {
			tok = p.next(token.ClassName)
		}
	}
	scope.arrays = make([]bool, len(params))

	f := &p.prog.Funcs[idx]
	f.Params = params
	f.Defined = true
	f.Line = p.pos.Line

	body := chain{entry: graph.NoStmt}
	savedCur, savedSection := p.cur, p.section
	p.cur, p.section, p.fn = &body, sectionFunc, scope
	p.expect(token.LBRACE)
	p.block()
	p.cur, p.section, p.fn = savedCur, savedSection, nil

	f = &p.prog.Funcs[idx]
	f.Entry = body.entry
	f.ArrayParams = scope.arrays
	f.NumIters = scope.iters
}

func (p *parser) ensureFunc(idx int, name string) {
	for len(p.prog.Funcs) <= idx {
		p.prog.Funcs = append(p.prog.Funcs, graph.Function{Entry: graph.NoStmt})
	}
	p.prog.Funcs[idx].Name = name
}

// emit appends s to the current chain, resolving every open link to it.
func (p *parser) emit(s graph.Stmt) graph.StmtID {
	s.Next, s.Alt = graph.NoStmt, graph.NoStmt
	if s.Line == 0 {
		s.Line = p.pos.Line
	}
	id := p.prog.AddStmt(s)
	p.patch(p.cur.open, id)
	if p.cur.entry == graph.NoStmt {
		p.cur.entry = id
	}
	p.cur.open = []link{{id: id}}
	return id
}

func (p *parser) patch(links []link, to graph.StmtID) {
	for _, l := range links {
		s := p.prog.Stmt(l.id)
		if l.alt {
			s.Alt = to
		} else {
			s.Next = to
		}
	}
}

func (p *parser) addExpr(e graph.Expr) graph.ExprID {
	if e.Line == 0 {
		e.Line = p.pos.Line
	}
	return p.prog.AddExpr(e)
}
