package lexer

import (
	"strings"
	"testing"

	"github.com/kolkov/bbawk/internal/token"
)

const all = ^token.Class(0)

func kinds(t *testing.T, src string, expect token.Class) []token.Token {
	t.Helper()
	l := NewFromString(src)
	var out []token.Token
	for range 100 {
		tok, err := l.Next(expect)
		if err != nil {
			t.Fatalf("Next(%q): %v", src, err)
		}
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
	t.Fatalf("no EOF after 100 tokens in %q", src)
	return nil
}

func TestNextOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{"+", []token.Token{token.ADD, token.EOF}},
		{"++", []token.Token{token.INCR, token.EOF}},
		{"+=", []token.Token{token.ADD_ASSIGN, token.EOF}},
		{"x /= 1", []token.Token{token.NAME, token.DIV_ASSIGN, token.NUMBER, token.EOF}},
		{"**", []token.Token{token.POW, token.EOF}},
		{"==", []token.Token{token.EQUALS, token.EOF}},
		{"!=", []token.Token{token.NOT_EQUALS, token.EOF}},
		{"!~", []token.Token{token.NOT_MATCH, token.EOF}},
		{">>", []token.Token{token.APPEND, token.EOF}},
		{"a && b || !c", []token.Token{token.NAME, token.AND, token.NAME, token.OR, token.NOT, token.NAME, token.EOF}},
		{"$NF", []token.Token{token.DOLLAR, token.NAME, token.EOF}},
		{"a ? b : c", []token.Token{token.NAME, token.QUESTION, token.NAME, token.COLON, token.NAME, token.EOF}},
		{"print > \"f\"", []token.Token{token.PRINT, token.GREATER, token.STRING, token.EOF}},
		{"k in a", []token.Token{token.NAME, token.IN, token.NAME, token.EOF}},
		{"getline line", []token.Token{token.GETLINE, token.NAME, token.EOF}},
		{"# comment\n1", []token.Token{token.NEWLINE, token.NUMBER, token.EOF}},
		{"a \\\n b", []token.Token{token.NAME, token.NAME, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := kinds(t, tt.input, all)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token[%d]: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestRegexOrDivide(t *testing.T) {
	l := NewFromString("/a+b/")
	tok, err := l.Next(token.Operand)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != token.REGEX || tok.Value != "a+b" {
		t.Errorf("operand position: got %v %q, want regex a+b", tok.Kind, tok.Value)
	}

	l = NewFromString("/ 2")
	tok, err = l.Next(token.Operator)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != token.DIV {
		t.Errorf("operator position: got %v, want /", tok.Kind)
	}
}

func TestRegexEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`/a\/b/`, `a/b`},
		{`/a\.b/`, `a\.b`},
		{`/[/]x/`, `[/]x`},
		{`/[]a]/`, `[]a]`},
		{`/\//`, `/`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok, err := NewFromString(tt.input).Next(token.Operand)
			if err != nil {
				t.Fatal(err)
			}
			if tok.Value != tt.want {
				t.Errorf("got %q, want %q", tok.Value, tt.want)
			}
		})
	}
}

func TestNameClassification(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Token
		value string
	}{
		{"foo(", token.FUNC_NAME, "foo"},
		{"foo (", token.NAME, "foo"},
		{"arr[", token.ARRAY_NAME, "arr"},
		{"arr  [", token.ARRAY_NAME, "arr"},
		{"length(", token.F_LENGTH, "length"},
		{"substr", token.F_SUBSTR, "substr"},
		{"BEGIN", token.BEGIN, "BEGIN"},
		{"function", token.FUNCTION, "function"},
		{"_x1", token.NAME, "_x1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok, err := NewFromString(tt.input).Next(all)
			if err != nil {
				t.Fatal(err)
			}
			if tok.Kind != tt.kind || tok.Value != tt.value {
				t.Errorf("got %v %q, want %v %q", tok.Kind, tok.Value, tt.kind, tt.value)
			}
		})
	}
}

func TestConcatInsertion(t *testing.T) {
	l := NewFromString(`"a" "b"`)
	first, err := l.Next(token.Operand)
	if err != nil {
		t.Fatal(err)
	}
	if first.Kind != token.STRING || first.Value != "a" {
		t.Fatalf("first = %v %q", first.Kind, first.Value)
	}
	cat, err := l.Next(token.Operator | token.StmtEnd)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Kind != token.CONCAT {
		t.Fatalf("got %v, want <concat>", cat.Kind)
	}
	second, err := l.Next(token.Operand)
	if err != nil {
		t.Fatal(err)
	}
	if second.Kind != token.STRING || second.Value != "b" {
		t.Errorf("second = %v %q", second.Kind, second.Value)
	}
}

func TestNoConcatWithoutMask(t *testing.T) {
	l := NewFromString(`"a" "b"`)
	if _, err := l.Next(token.Operand); err != nil {
		t.Fatal(err)
	}
	_, err := l.Next(token.ClassBinary | token.StmtEnd)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `unexpected string "b"`) {
		t.Errorf("error = %v", err)
	}
}

func TestNewlineElision(t *testing.T) {
	l := NewFromString("\n\n  1\n")
	tok, err := l.Next(token.Operand)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != token.NUMBER || tok.Pos.Line != 3 || tok.Pos.Column != 3 {
		t.Errorf("got %v at %v, want number at 3:3", tok.Kind, tok.Pos)
	}
	tok, err = l.Next(token.Operator | token.StmtEnd)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != token.NEWLINE {
		t.Errorf("got %v, want newline", tok.Kind)
	}
}

func TestUnread(t *testing.T) {
	l := NewFromString("a b")
	a, _ := l.Next(all)
	b, _ := l.Next(all)
	l.Unread(b)
	l.Unread(a)
	for _, want := range []string{"a", "b"} {
		tok, err := l.Next(token.ClassName)
		if err != nil {
			t.Fatal(err)
		}
		if tok.Value != want {
			t.Errorf("got %q, want %q", tok.Value, want)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a\tb"`, "a\tb"},
		{`"\101"`, "A"},
		{`"\x41z"`, "Az"},
		{`"say \"hi\""`, `say "hi"`},
		{`"a\.b"`, `a\.b`},
		{`"\/"`, "/"},
		{`"a\-b"`, "a-b"},
		{"\"a\\\nb\"", "ab"},
		{`"héllo"`, "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok, err := NewFromString(tt.input).Next(token.Operand)
			if err != nil {
				t.Fatal(err)
			}
			if tok.Value != tt.want {
				t.Errorf("got %q, want %q", tok.Value, tt.want)
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123", "123"},
		{"1.5", "1.5"},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"1E-3", "1E-3"},
		{"0x1F", "0x1F"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok, err := NewFromString(tt.input).Next(token.Operand)
			if err != nil {
				t.Fatal(err)
			}
			if tok.Kind != token.NUMBER || tok.Value != tt.want {
				t.Errorf("got %v %q, want number %q", tok.Kind, tok.Value, tt.want)
			}
		})
	}

	// "1e" is the number 1 followed by the name e.
	got := kinds(t, "1e", all)
	if len(got) != 3 || got[0] != token.NUMBER || got[1] != token.NAME {
		t.Errorf("1e: got %v", got)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input  string
		expect token.Class
		want   string
	}{
		{`"abc`, token.Operand, "unterminated string"},
		{"\"ab\ncd\"", token.Operand, "unterminated string"},
		{`/abc`, token.Operand, "unterminated regex"},
		{`"\q"`, token.Operand, `unknown escape sequence \q`},
		{`@`, all, "unexpected character '@'"},
		{`)`, token.Operand, "unexpected )"},
		{``, token.Operand, "unexpected end of input"},
		{`a \ b`, all, "backslash not last character on line"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			var err error
			for range 10 {
				var tok Token
				if tok, err = l.Next(tt.expect); err != nil || tok.Kind == token.EOF {
					break
				}
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{`plain`, "plain", false},
		{`a\tb`, "a\tb", false},
		{`\n`, "\n", false},
		{`trailing\`, `trailing\`, false},
		{`\k`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unescape(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsName(t *testing.T) {
	for s, want := range map[string]bool{"x": true, "_a9": true, "9a": false, "": false, "a-b": false} {
		if got := IsName(s); got != want {
			t.Errorf("IsName(%q) = %v, want %v", s, got, want)
		}
	}
}
