// Package lexer provides awk source tokenization.
//
// The lexer is driven by the parser: every call to Next names the token
// classes acceptable at that point. The mask resolves the '/' ambiguity
// (regex or division), lets newlines that cannot end a statement pass as
// white space, and triggers the synthetic CONCAT token between two
// adjacent operands.
package lexer

import (
	"fmt"

	"github.com/kolkov/bbawk/internal/token"
)

// Token represents a scanned token with its position and value.
type Token struct {
	Kind  token.Token
	Class token.Class
	Pos   token.Position
	Value string // name, decoded string or regex text, number spelling
}

// Error is a fatal lexical or grammatical error.
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Lexer tokenizes awk source code.
type Lexer struct {
	src    []byte
	offset int  // offset of ch
	ch     byte // current character, 0 at EOF
	line   int
	col    int
	held   []Token // tokens returned by Unread or held behind a CONCAT
}

// New creates a new Lexer for the given source code.
func New(src []byte) *Lexer {
	l := &Lexer{src: src, line: 1, col: 1}
	if len(src) > 0 {
		l.ch = src[0]
	}
	return l
}

// NewFromString creates a new Lexer from a string.
func NewFromString(src string) *Lexer {
	return New([]byte(src))
}

type state uint8

const (
	stateNext  state = iota // take a held token or start scanning
	stateSkip               // skip blanks, comments and line continuations
	stateScan               // scan one token from source
	stateCheck              // match the token against the expected classes
)

// Next returns the next token acceptable under expect.
//
// A newline that expect does not accept is skipped. A token that is not
// acceptable but can start an operand, when expect includes
// token.ClassConcat, is held back and a CONCAT token returned in its
// place. Anything else is a syntax error.
func (l *Lexer) Next(expect token.Class) (Token, error) {
	var tok Token
	st := stateNext
	for {
		switch st {
		case stateNext:
			if n := len(l.held); n > 0 {
				tok = l.held[n-1]
				l.held = l.held[:n-1]
				st = stateCheck
			} else {
				st = stateSkip
			}
		case stateSkip:
			if err := l.skipBlank(); err != nil {
				return Token{}, err
			}
			st = stateScan
		case stateScan:
			var err error
			if tok, err = l.scan(expect); err != nil {
				return Token{}, err
			}
			st = stateCheck
		case stateCheck:
			switch {
			case tok.Class&expect != 0:
				return tok, nil
			case tok.Kind == token.NEWLINE:
				st = stateNext
			case expect&token.ClassConcat != 0 && tok.Class&token.ConcatStart != 0:
				l.held = append(l.held, tok)
				return Token{Kind: token.CONCAT, Class: token.ClassConcat, Pos: tok.Pos}, nil
			default:
				return Token{}, unexpected(tok)
			}
		}
	}
}

// Unread pushes tok back; the next call to Next sees it first.
func (l *Lexer) Unread(tok Token) {
	l.held = append(l.held, tok)
}

// Line returns the current source line.
func (l *Lexer) Line() int {
	return l.line
}

func unexpected(tok Token) *Error {
	var msg string
	switch tok.Kind {
	case token.EOF:
		msg = "unexpected end of input"
	case token.NEWLINE:
		msg = "unexpected newline"
	case token.STRING:
		msg = fmt.Sprintf("unexpected string %q", tok.Value)
	case token.NUMBER, token.NAME:
		msg = fmt.Sprintf("unexpected %s %s", tok.Kind, tok.Value)
	case token.FUNC_NAME:
		msg = fmt.Sprintf("unexpected %s(", tok.Value)
	case token.ARRAY_NAME:
		msg = fmt.Sprintf("unexpected %s[", tok.Value)
	case token.REGEX:
		msg = fmt.Sprintf("unexpected regex /%s/", tok.Value)
	default:
		msg = fmt.Sprintf("unexpected %s", tok.Kind)
	}
	return &Error{Pos: tok.Pos, Message: msg}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.offset}
}

func (l *Lexer) atEOF() bool {
	return l.offset >= len(l.src)
}

func (l *Lexer) advance() {
	if l.atEOF() {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.offset++
	if l.offset < len(l.src) {
		l.ch = l.src[l.offset]
	} else {
		l.ch = 0
	}
}

func (l *Lexer) peek() byte {
	if l.offset+1 < len(l.src) {
		return l.src[l.offset+1]
	}
	return 0
}

func (l *Lexer) skipBlank() error {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\r':
			l.advance()
		case '#':
			for !l.atEOF() && l.ch != '\n' {
				l.advance()
			}
		case '\\':
			pos := l.position()
			l.advance()
			if l.ch == '\r' {
				l.advance()
			}
			if l.ch != '\n' {
				return l.errorf(pos, "backslash not last character on line")
			}
			l.advance()
		default:
			return nil
		}
	}
	return nil
}

func tok(kind token.Token, pos token.Position, value string) Token {
	return Token{Kind: kind, Class: token.ClassOf(kind), Pos: pos, Value: value}
}

func (l *Lexer) scan(expect token.Class) (Token, error) {
	pos := l.position()
	if l.atEOF() {
		return tok(token.EOF, pos, ""), nil
	}
	ch := l.ch
	switch {
	case ch == '\n':
		l.advance()
		return tok(token.NEWLINE, pos, ""), nil
	case ch == '"':
		return l.scanString(pos)
	case ch == '/' && expect&token.ClassRegex != 0 && expect&token.ClassBinary == 0:
		return l.scanRegex(pos)
	case isDigit(ch) || (ch == '.' && isDigit(l.peek())):
		return l.scanNumber(pos), nil
	case isIdentStart(ch):
		return l.scanIdent(pos), nil
	}

	if l.offset+1 < len(l.src) {
		if kind, ok := operators[string(l.src[l.offset:l.offset+2])]; ok {
			l.advance()
			l.advance()
			return tok(kind, pos, ""), nil
		}
	}
	if kind, ok := operators[string(ch)]; ok {
		l.advance()
		return tok(kind, pos, ""), nil
	}
	return Token{}, l.errorf(pos, "unexpected character %q", rune(ch))
}

// operators maps operator spellings to token kinds. Two-byte spellings
// are tried before one-byte ones.
var operators = map[string]token.Token{
	"+=": token.ADD_ASSIGN, "-=": token.SUB_ASSIGN, "*=": token.MUL_ASSIGN,
	"/=": token.DIV_ASSIGN, "%=": token.MOD_ASSIGN, "^=": token.POW_ASSIGN,
	"**": token.POW, "==": token.EQUALS, "!=": token.NOT_EQUALS,
	"<=": token.LTE, ">=": token.GTE, "&&": token.AND, "||": token.OR,
	"!~": token.NOT_MATCH, "++": token.INCR, "--": token.DECR, ">>": token.APPEND,

	"+": token.ADD, "-": token.SUB, "*": token.MUL, "/": token.DIV,
	"%": token.MOD, "^": token.POW, "=": token.ASSIGN, "<": token.LESS,
	">": token.GREATER, "!": token.NOT, "~": token.MATCH, "|": token.PIPE,
	"(": token.LPAREN, ")": token.RPAREN, "{": token.LBRACE, "}": token.RBRACE,
	"[": token.LBRACKET, "]": token.RBRACKET, ",": token.COMMA,
	";": token.SEMICOLON, ":": token.COLON, "?": token.QUESTION, "$": token.DOLLAR,
}

func (l *Lexer) scanIdent(pos token.Position) Token {
	start := l.offset
	for !l.atEOF() && isIdentContinue(l.ch) {
		l.advance()
	}
	name := string(l.src[start:l.offset])
	kind := token.LookupIdent(name)
	if kind != token.NAME {
		return tok(kind, pos, name)
	}
	if l.ch == '(' {
		l.advance()
		return tok(token.FUNC_NAME, pos, name)
	}
	for l.ch == ' ' || l.ch == '\t' {
		l.advance()
	}
	if l.ch == '[' {
		l.advance()
		return tok(token.ARRAY_NAME, pos, name)
	}
	return tok(token.NAME, pos, name)
}

func (l *Lexer) scanNumber(pos token.Position) Token {
	start := l.offset
	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.ch) {
			l.advance()
		}
		return tok(token.NUMBER, pos, string(l.src[start:l.offset]))
	}
	for isDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' {
		l.advance()
		for isDigit(l.ch) {
			l.advance()
		}
	}
	// Only take e/E as an exponent when digits follow, so "1e" is 1 e.
	if (l.ch == 'e' || l.ch == 'E') && l.hasExponent() {
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		for isDigit(l.ch) {
			l.advance()
		}
	}
	return tok(token.NUMBER, pos, string(l.src[start:l.offset]))
}

func (l *Lexer) hasExponent() bool {
	i := l.offset + 1
	if i < len(l.src) && (l.src[i] == '+' || l.src[i] == '-') {
		i++
	}
	return i < len(l.src) && isDigit(l.src[i])
}

func (l *Lexer) scanString(pos token.Position) (Token, error) {
	l.advance() // opening quote
	var sb []byte
	for {
		if l.atEOF() || l.ch == '\n' {
			return Token{}, l.errorf(pos, "unterminated string")
		}
		if l.ch == '"' {
			l.advance()
			return tok(token.STRING, pos, string(sb)), nil
		}
		if l.ch != '\\' {
			sb = append(sb, l.ch)
			l.advance()
			continue
		}
		escPos := l.position()
		i := l.offset + 1
		if i >= len(l.src) {
			return Token{}, l.errorf(pos, "unterminated string")
		}
		var err error
		var n int
		sb, n, err = appendEscape(sb, l.src, i)
		if err != nil {
			return Token{}, l.errorf(escPos, "%v", err)
		}
		for range n + 1 {
			l.advance()
		}
	}
}

func (l *Lexer) scanRegex(pos token.Position) (Token, error) {
	l.advance() // opening slash
	var sb []byte
	inBracket := false
	for {
		if l.atEOF() || l.ch == '\n' {
			return Token{}, l.errorf(pos, "unterminated regex")
		}
		switch {
		case l.ch == '/' && !inBracket:
			l.advance()
			return tok(token.REGEX, pos, string(sb)), nil
		case l.ch == '\\':
			next := l.peek()
			if next == '\n' || l.offset+1 >= len(l.src) {
				return Token{}, l.errorf(pos, "unterminated regex")
			}
			if next != '/' {
				sb = append(sb, '\\')
			}
			sb = append(sb, next)
			l.advance()
			l.advance()
			continue
		case l.ch == '[' && !inBracket:
			inBracket = true
			sb = append(sb, l.ch)
			l.advance()
			// A ']' right after '[' or '[^' is a literal member.
			if l.ch == '^' {
				sb = append(sb, l.ch)
				l.advance()
			}
			if l.ch == ']' {
				sb = append(sb, l.ch)
				l.advance()
			}
			continue
		case l.ch == ']' && inBracket:
			inBracket = false
		}
		sb = append(sb, l.ch)
		l.advance()
	}
}

// Helper functions

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// IsName reports whether s is a valid variable name.
func IsName(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentContinue(s[i]) {
			return false
		}
	}
	return true
}
