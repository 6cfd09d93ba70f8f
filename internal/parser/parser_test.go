package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/parser"
	"github.com/kolkov/bbawk/internal/token"
)

func mustParse(t *testing.T, src string) *graph.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return prog
}

// TestParseEmpty tests parsing an empty program.
func TestParseEmpty(t *testing.T) {
	prog := mustParse(t, "")
	if prog.Begin != graph.NoStmt || prog.Main != graph.NoStmt || prog.End != graph.NoStmt {
		t.Errorf("chains = %d/%d/%d, want all empty", prog.Begin, prog.Main, prog.End)
	}
	if prog.HasMain || prog.HasEnd {
		t.Error("empty program should not read input")
	}
}

func TestExpressionShape(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"-2 ^ 2", "-(2 ^ 2)"},
		{"a b c", "((a b) c)"},
		{`1 " " 2 + 3`, `((1 " ") (2 + 3))`},
		{"1 && x = 1", "(1 && (x = 1))"},
		{"x = y = 3", "(x = (y = 3))"},
		{"x += y == z", "(x += (y == z))"},
		{"a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"a ? b ? c : d : e", "(a ? (b ? c : d) : e)"},
		{"$i++", "$i++"},
		{"$NF - 1", "($NF - 1)"},
		{"1 - -1", "(1 - -1)"},
		{"x++ + ++y", "(x++ + ++y)"},
		{"(i, j) in arr", "((i, j) in arr)"},
		{"k in arr && x", "((k in arr) && x)"},
		{`"cmd" | getline x`, `("cmd" | getline x)`},
		{`"a" "b" | getline`, `(("a" "b") | getline)`},
		{"getline line < file", "(getline line < file)"},
		{"x = length", "(x = length())"},
		{`n = split(s, arr, ",")`, `(n = split(s, arr, ","))`},
		{"x = substr (s, 2)", "(x = substr(s, 2))"},
		{"a ~ /re/", "(a ~ /re/)"},
		{"a = b ~ c", "(a = (b ~ c))"},
		{"x = (a)", "(x = (a))"},
		{"x = (a + 1) * 2", "(x = ((a + 1) * 2))"},
		{"!a || b", "(!a || b)"},
		{"a[1, 2] = 3", "(a[1, 2] = 3)"},
		{"x = 0x1A", "(x = 26)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog := mustParse(t, "BEGIN { "+tt.src+" }")
			s := prog.Stmt(prog.Begin)
			if s.Kind != graph.StmtExpr {
				t.Fatalf("statement kind = %d, want expression", s.Kind)
			}
			if got := prog.ExprString(s.Expr); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrintArguments(t *testing.T) {
	tests := []struct {
		src      string
		args     []string
		redirect token.Token
		dest     string
	}{
		{`print`, nil, 0, ""},
		{`print (1, 2) > "out"`, []string{"1", "2"}, token.GREATER, `"out"`},
		{`print 1 > 2`, []string{"1"}, token.GREATER, "2"},
		{`print (1 > 2)`, []string{"(1 > 2)"}, 0, ""},
		{`print "a" "b", c | "sort"`, []string{`("a" "b")`, "c"}, token.PIPE, `"sort"`},
		{`print x >> "log" n`, []string{"x"}, token.APPEND, `("log" n)`},
		{`printf "%d\n", 3`, []string{`"%d\n"`, "3"}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog := mustParse(t, "BEGIN { "+tt.src+" }")
			s := prog.Stmt(prog.Begin)
			if len(s.Args) != len(tt.args) {
				t.Fatalf("got %d args, want %d", len(s.Args), len(tt.args))
			}
			for i, a := range s.Args {
				if got := prog.ExprString(a); got != tt.args[i] {
					t.Errorf("arg %d = %s, want %s", i, got, tt.args[i])
				}
			}
			if s.Redirect != tt.redirect {
				t.Errorf("redirect = %s, want %s", s.Redirect, tt.redirect)
			}
			if tt.redirect != 0 {
				if got := prog.ExprString(s.Dest); got != tt.dest {
					t.Errorf("dest = %s, want %s", got, tt.dest)
				}
			}
		})
	}
}

func TestRuleShapes(t *testing.T) {
	prog := mustParse(t, "/x/")
	if !prog.HasMain {
		t.Fatal("HasMain = false")
	}
	branch := prog.Stmt(prog.Main)
	if branch.Kind != graph.StmtBranch {
		t.Fatalf("first statement kind = %d, want branch", branch.Kind)
	}
	print := prog.Stmt(branch.Next)
	if print.Kind != graph.StmtPrint || len(print.Args) != 0 {
		t.Errorf("pattern without action should print the record")
	}
	if branch.Alt != graph.NoStmt || print.Next != graph.NoStmt {
		t.Errorf("rule should fall off the end of the chain")
	}

	prog = mustParse(t, "NR == 1, NR == 3 { n++ }")
	r := prog.Stmt(prog.Main)
	if r.Kind != graph.StmtRange || prog.NumRanges != 1 {
		t.Errorf("range rule not recognized")
	}

	prog = mustParse(t, "BEGIN { x = 1 } END { } BEGIN { y = 2 }")
	first := prog.Stmt(prog.Begin)
	if got := prog.ExprString(prog.Stmt(first.Next).Expr); got != "(y = 2)" {
		t.Errorf("second BEGIN block not chained: %s", got)
	}
	if prog.HasMain || !prog.HasEnd {
		t.Errorf("HasMain = %v, HasEnd = %v", prog.HasMain, prog.HasEnd)
	}
}

func TestControlFlowLinks(t *testing.T) {
	t.Run("if else", func(t *testing.T) {
		prog := mustParse(t, "BEGIN { if (x) a = 1; else a = 2; b = 3 }")
		br := prog.Stmt(prog.Begin)
		then, els := prog.Stmt(br.Next), prog.Stmt(br.Alt)
		if prog.ExprString(then.Expr) != "(a = 1)" || prog.ExprString(els.Expr) != "(a = 2)" {
			t.Fatalf("branches = %s / %s", prog.ExprString(then.Expr), prog.ExprString(els.Expr))
		}
		if then.Next != els.Next || prog.ExprString(prog.Stmt(then.Next).Expr) != "(b = 3)" {
			t.Errorf("branches should join at b = 3")
		}
	})

	t.Run("for", func(t *testing.T) {
		prog := mustParse(t, "BEGIN { for (i = 0; i < 3; i++) x++ }")
		init := prog.Stmt(prog.Begin)
		head := prog.Stmt(init.Next)
		body := prog.Stmt(head.Next)
		post := prog.Stmt(body.Next)
		if head.Kind != graph.StmtBranch || prog.ExprString(post.Expr) != "i++" {
			t.Fatalf("unexpected loop layout")
		}
		if post.Next != init.Next {
			t.Errorf("post statement should return to the loop head")
		}
		if head.Alt != graph.NoStmt {
			t.Errorf("loop exit should end the chain")
		}
	})

	t.Run("while break", func(t *testing.T) {
		prog := mustParse(t, "BEGIN { while (1) { break }; y = 1 }")
		head := prog.Stmt(prog.Begin)
		jump := prog.Stmt(head.Next)
		if jump.Kind != graph.StmtJump || jump.Next != head.Alt {
			t.Errorf("break should jump to the loop exit")
		}
	})

	t.Run("do while", func(t *testing.T) {
		prog := mustParse(t, "BEGIN { do x++; while (x < 3) }")
		head := prog.Stmt(prog.Begin)
		body := prog.Stmt(head.Next)
		test := prog.Stmt(body.Next)
		if test.Kind != graph.StmtBranch || test.Next != prog.Begin {
			t.Errorf("do-while test should loop back to the head")
		}
	})

	t.Run("for in", func(t *testing.T) {
		prog := mustParse(t, "BEGIN { for (k in arr) n++ }")
		init := prog.Stmt(prog.Begin)
		step := prog.Stmt(init.Next)
		if init.Kind != graph.StmtIterInit || step.Kind != graph.StmtIterNext {
			t.Fatalf("kinds = %d, %d", init.Kind, step.Kind)
		}
		if prog.Stmt(step.Next).Next != init.Next {
			t.Errorf("body should return to the iterator step")
		}
		if prog.NumIters != 1 {
			t.Errorf("NumIters = %d, want 1", prog.NumIters)
		}
	})

	t.Run("getline before newline", func(t *testing.T) {
		prog := mustParse(t, "{ getline\nprint }")
		first := prog.Stmt(prog.Main)
		if prog.Stmt(first.Next).Kind != graph.StmtPrint {
			t.Errorf("getline should end at the newline")
		}
	})
}

func TestArrayParamInference(t *testing.T) {
	prog := mustParse(t, `
function fill(a) { a[1] = 1 }
function pass(b) { fill(b) }
function scalar(c) { return c + 1 }
BEGIN { pass(x); scalar(1) }`)
	want := map[string]bool{"fill": true, "pass": true, "scalar": false}
	for _, f := range prog.Funcs {
		if got := f.ArrayParams[0]; got != want[f.Name] {
			t.Errorf("%s: array param = %v, want %v", f.Name, got, want[f.Name])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"BEGIN { next }", "next used in BEGIN or END action"},
		{"BEGIN { break }", "break outside a loop"},
		{"BEGIN { return 1 }", "return outside function body"},
		{"BEGIN { f(1) }", "calling undefined function f"},
		{"function f(a) { } BEGIN { f(1, 2) }", "function f called with 2 args, accepts only 1"},
		{"function f(a, a) { }", "duplicate parameter a"},
		{"function f() { } function f() { }", "function f redefined"},
		{"BEGIN { f = 1 } function f() { }", "variable f used as a function"},
		{"BEGIN { 1 = 2 }", "assignment to a non-lvalue"},
		{"BEGIN { print (1, 2) + 3 }", "unexpected parenthesized list"},
		{"BEGIN { x = a ? b }", "missing : in conditional expression"},
		{"BEGIN { printf }", "printf: no format"},
		{"BEGIN { substr(s) }", "too few arguments to substr"},
		{"BEGIN { x = rand(1) }", "too many arguments to rand"},
		{"BEGIN { split(s, 1) }", "split: second argument must be an array name"},
		{"BEGIN { x = 1", "unexpected end of input"},
		{`BEGIN { print "abc }`, "unterminated string"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parser.Parse(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.Parse("BEGIN {\n  x = = 1\n}")
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a *ParseError", err)
	}
	if pe.Pos.Line != 2 {
		t.Errorf("line = %d, want 2", pe.Pos.Line)
	}
}
