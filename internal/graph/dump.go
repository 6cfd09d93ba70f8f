package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble returns a listing of every chain in the program, one
// statement per line with its successor links.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	d := dumper{p: p, sb: &sb}
	d.chain("BEGIN", p.Begin)
	d.chain("main", p.Main)
	d.chain("END", p.End)
	for i := range p.Funcs {
		f := &p.Funcs[i]
		d.chain(fmt.Sprintf("function %s(%s)", f.Name, strings.Join(f.Params, ", ")), f.Entry)
	}
	return sb.String()
}

// ExprString renders expression id in a fully parenthesized form.
func (p *Program) ExprString(id ExprID) string {
	d := dumper{p: p}
	return d.expr(id)
}

type dumper struct {
	p  *Program
	sb *strings.Builder
}

// chain lists the statements reachable from entry in ID order.
func (d *dumper) chain(title string, entry StmtID) {
	if entry == NoStmt {
		return
	}
	seen := map[StmtID]bool{}
	work := []StmtID{entry}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if id == NoStmt || seen[id] {
			continue
		}
		seen[id] = true
		s := d.p.Stmt(id)
		work = append(work, s.Alt, s.Next)
	}
	fmt.Fprintf(d.sb, "%s:\n", title)
	for id := range d.p.Stmts {
		if seen[StmtID(id)] {
			d.stmt(StmtID(id))
		}
	}
}

func link(id StmtID) string {
	if id == NoStmt {
		return "end"
	}
	return strconv.Itoa(int(id))
}

func (d *dumper) stmt(id StmtID) {
	s := d.p.Stmt(id)
	var text string
	switch s.Kind {
	case StmtExpr:
		text = d.expr(s.Expr)
	case StmtPrint, StmtPrintf:
		name := "print"
		if s.Kind == StmtPrintf {
			name = "printf"
		}
		text = name + " " + d.list(s.Args)
		if s.Redirect != 0 {
			text += " " + s.Redirect.String() + " " + d.expr(s.Dest)
		}
	case StmtBranch:
		text = "branch " + d.expr(s.Expr)
	case StmtRange:
		text = fmt.Sprintf("range#%d %s, %s", s.Slot, d.expr(s.Expr), d.expr(s.Expr2))
	case StmtJump:
		text = "jump"
	case StmtNext:
		text = "next"
	case StmtNextFile:
		text = "nextfile"
	case StmtExit, StmtReturn:
		text = "exit"
		if s.Kind == StmtReturn {
			text = "return"
		}
		if s.Expr != NoExpr {
			text += " " + d.expr(s.Expr)
		}
	case StmtDelete:
		text = "delete " + d.expr(s.Expr)
		if len(s.Args) > 0 {
			text += "[" + d.list(s.Args) + "]"
		}
	case StmtIterInit:
		text = fmt.Sprintf("iter#%d keys %s", s.Slot, d.expr(s.Expr))
	case StmtIterNext:
		text = fmt.Sprintf("iter#%d next %s", s.Slot, d.expr(s.Expr))
	}
	switch s.Kind {
	case StmtBranch, StmtRange, StmtIterNext:
		fmt.Fprintf(d.sb, "%5d  %-40s -> %s | %s\n", id, text, link(s.Next), link(s.Alt))
	case StmtNext, StmtNextFile, StmtExit, StmtReturn:
		fmt.Fprintf(d.sb, "%5d  %s\n", id, text)
	default:
		fmt.Fprintf(d.sb, "%5d  %-40s -> %s\n", id, text, link(s.Next))
	}
}

func (d *dumper) list(ids []ExprID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = d.expr(id)
	}
	return strings.Join(parts, ", ")
}

var binarySpelling = map[Op]string{
	OpAnd: "&&", OpOr: "||", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpMod: "%", OpPow: "^", OpConcat: " ", OpLess: "<", OpLessEq: "<=",
	OpGreater: ">", OpGreaterEq: ">=", OpEqual: "==", OpNotEqual: "!=",
	OpMatch: "~", OpNotMatch: "!~", OpIn: " in ",
}

func (d *dumper) expr(id ExprID) string {
	if id == NoExpr {
		return "_"
	}
	e := d.p.Expr(id)
	switch e.Op {
	case OpNum:
		return strconv.FormatFloat(e.Num, 'g', -1, 64)
	case OpStr:
		return strconv.Quote(e.Str)
	case OpRegex:
		return "/" + e.Str + "/"
	case OpVar:
		return d.p.Syms.VarName(e.Slot)
	case OpLocal:
		return fmt.Sprintf("local#%d", e.Slot)
	case OpField:
		return "$" + d.expr(e.Left)
	case OpIndex:
		return d.expr(e.Left) + "[" + d.list(e.Args) + "]"
	case OpGroup, OpList:
		if e.Op == OpGroup {
			return "(" + d.expr(e.Left) + ")"
		}
		return "(" + d.list(e.Args) + ")"
	case OpAssign:
		return "(" + d.expr(e.Left) + " " + e.Tok.String() + " " + d.expr(e.Right) + ")"
	case OpCond:
		return "(" + d.expr(e.Left) + " ? " + d.expr(e.Right) + " : " + d.expr(e.Extra) + ")"
	case OpNot:
		return "!" + d.expr(e.Left)
	case OpNeg:
		return "-" + d.expr(e.Left)
	case OpPlus:
		return "+" + d.expr(e.Left)
	case OpPreIncr:
		return "++" + d.expr(e.Left)
	case OpPreDecr:
		return "--" + d.expr(e.Left)
	case OpPostIncr:
		return d.expr(e.Left) + "++"
	case OpPostDecr:
		return d.expr(e.Left) + "--"
	case OpCall:
		return d.p.Funcs[e.Slot].Name + "(" + d.list(e.Args) + ")"
	case OpBuiltin:
		return e.Tok.String() + "(" + d.list(e.Args) + ")"
	case OpGetline:
		target := ""
		if e.Left != NoExpr {
			target = " " + d.expr(e.Left)
		}
		switch e.Mode {
		case GetlineFile:
			return "(getline" + target + " < " + d.expr(e.Right) + ")"
		case GetlineCmd:
			return "(" + d.expr(e.Right) + " | getline" + target + ")"
		}
		return "(getline" + target + ")"
	}
	if op, ok := binarySpelling[e.Op]; ok {
		if op != " " && op != " in " {
			op = " " + op + " "
		}
		return "(" + d.expr(e.Left) + op + d.expr(e.Right) + ")"
	}
	return "?"
}
