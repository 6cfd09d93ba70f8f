package token

// Class is a set of grammatical roles a token can play. The parser
// passes the union of acceptable classes to the lexer, which uses it to
// decide between ambiguous spellings and to insert implicit
// concatenation.
type Class uint32

const (
	ClassEOF Class = 1 << iota
	ClassNewline
	ClassSemicolon
	ClassLBrace
	ClassRBrace
	ClassLParen
	ClassRParen
	ClassRBracket
	ClassComma
	ClassNumber
	ClassString
	ClassRegex
	ClassName
	ClassArray
	ClassFunc
	ClassBuiltin
	ClassGetline
	ClassUnary
	ClassPostfix
	ClassBinary
	ClassPipe
	ClassRedirect
	ClassStatement
	ClassElse
	ClassFunction
	ClassBegin
	ClassEnd
	ClassConcat
)

// Composite masks used by the parser.
const (
	// Operand is the set of tokens that can begin an expression.
	Operand = ClassNumber | ClassString | ClassRegex | ClassName | ClassArray |
		ClassFunc | ClassBuiltin | ClassGetline | ClassLParen | ClassUnary

	// ConcatStart is the set of tokens that, seen where an operator is
	// expected, start the right operand of an implicit concatenation.
	ConcatStart = ClassNumber | ClassString | ClassName | ClassArray |
		ClassFunc | ClassBuiltin | ClassLParen | ClassUnary

	// Operator is the set of tokens that can follow a complete operand.
	Operator = ClassBinary | ClassPostfix | ClassPipe | ClassConcat

	// StmtEnd terminates a simple statement.
	StmtEnd = ClassNewline | ClassSemicolon | ClassRBrace | ClassEOF

	// StmtStart can begin a statement inside a block.
	StmtStart = Operand | ClassStatement | ClassLBrace | ClassSemicolon |
		ClassNewline | ClassRBrace

	// ItemStart can begin a top-level program item.
	ItemStart = Operand | ClassBegin | ClassEnd | ClassFunction |
		ClassLBrace | ClassNewline | ClassSemicolon | ClassEOF
)

// Flag carries evaluation-order properties of an operator.
type Flag uint8

const (
	// RightAssoc operators do not reduce an equal-precedence operator
	// already on the stack.
	RightAssoc Flag = 1 << iota
	// NeedsLValue operators require an assignable left operand.
	NeedsLValue
)

// Info describes how a token participates in expressions.
type Info struct {
	Class Class
	Prec  int // binary precedence, 0 if not a binary operator
	Unary int // prefix precedence, 0 if not a prefix operator
	Flags Flag
}

// Precedence levels, lowest binding first.
const (
	PrecAssign = 1 + iota
	PrecCond
	PrecOr
	PrecAnd
	PrecIn
	PrecMatch
	PrecCompare
	PrecConcat
	PrecAdd
	PrecMul
	PrecUnary
	PrecPow
	PrecIncr
	PrecField
)

var infos [numTokens]Info

func init() {
	assign := Info{Class: ClassBinary, Prec: PrecAssign, Flags: RightAssoc | NeedsLValue}
	for _, t := range []Token{ASSIGN, ADD_ASSIGN, SUB_ASSIGN, MUL_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, POW_ASSIGN} {
		infos[t] = assign
	}
	for _, t := range []Token{EQUALS, NOT_EQUALS, LESS, LTE, GTE} {
		infos[t] = Info{Class: ClassBinary, Prec: PrecCompare}
	}
	infos[GREATER] = Info{Class: ClassBinary | ClassRedirect, Prec: PrecCompare}
	infos[APPEND] = Info{Class: ClassRedirect}
	infos[PIPE] = Info{Class: ClassPipe | ClassRedirect}

	infos[QUESTION] = Info{Class: ClassBinary, Prec: PrecCond, Flags: RightAssoc}
	infos[COLON] = Info{Class: ClassBinary, Prec: PrecCond, Flags: RightAssoc}
	infos[OR] = Info{Class: ClassBinary, Prec: PrecOr}
	infos[AND] = Info{Class: ClassBinary, Prec: PrecAnd}
	infos[IN] = Info{Class: ClassBinary, Prec: PrecIn}
	infos[MATCH] = Info{Class: ClassBinary, Prec: PrecMatch}
	infos[NOT_MATCH] = Info{Class: ClassBinary, Prec: PrecMatch}
	infos[CONCAT] = Info{Class: ClassConcat, Prec: PrecConcat}
	infos[ADD] = Info{Class: ClassBinary | ClassUnary, Prec: PrecAdd, Unary: PrecUnary}
	infos[SUB] = Info{Class: ClassBinary | ClassUnary, Prec: PrecAdd, Unary: PrecUnary}
	infos[MUL] = Info{Class: ClassBinary, Prec: PrecMul}
	infos[DIV] = Info{Class: ClassBinary, Prec: PrecMul}
	infos[MOD] = Info{Class: ClassBinary, Prec: PrecMul}
	infos[NOT] = Info{Class: ClassUnary, Unary: PrecUnary}
	infos[POW] = Info{Class: ClassBinary, Prec: PrecPow, Flags: RightAssoc}
	infos[INCR] = Info{Class: ClassUnary | ClassPostfix, Unary: PrecIncr, Flags: NeedsLValue}
	infos[DECR] = Info{Class: ClassUnary | ClassPostfix, Unary: PrecIncr, Flags: NeedsLValue}
	infos[DOLLAR] = Info{Class: ClassUnary, Unary: PrecField}

	infos[EOF] = Info{Class: ClassEOF}
	infos[NEWLINE] = Info{Class: ClassNewline}
	infos[SEMICOLON] = Info{Class: ClassSemicolon}
	infos[LBRACE] = Info{Class: ClassLBrace}
	infos[RBRACE] = Info{Class: ClassRBrace}
	infos[LPAREN] = Info{Class: ClassLParen}
	infos[RPAREN] = Info{Class: ClassRParen}
	infos[RBRACKET] = Info{Class: ClassRBracket}
	infos[COMMA] = Info{Class: ClassComma}

	infos[NUMBER] = Info{Class: ClassNumber}
	infos[STRING] = Info{Class: ClassString}
	infos[REGEX] = Info{Class: ClassRegex}
	infos[NAME] = Info{Class: ClassName}
	infos[ARRAY_NAME] = Info{Class: ClassArray}
	infos[FUNC_NAME] = Info{Class: ClassFunc}
	for t := builtinStart + 1; t < builtinEnd; t++ {
		infos[t] = Info{Class: ClassBuiltin}
	}

	infos[GETLINE] = Info{Class: ClassGetline}
	for _, t := range []Token{IF, WHILE, FOR, DO, BREAK, CONTINUE, RETURN, DELETE, EXIT, NEXT, NEXTFILE, PRINT, PRINTF} {
		infos[t] = Info{Class: ClassStatement}
	}
	infos[ELSE] = Info{Class: ClassElse}
	infos[FUNCTION] = Info{Class: ClassFunction}
	infos[BEGIN] = Info{Class: ClassBegin}
	infos[END] = Info{Class: ClassEnd}
}

// Lookup returns the expression properties of t.
func Lookup(t Token) Info {
	if t < numTokens {
		return infos[t]
	}
	return Info{}
}

// ClassOf returns the class set of t.
func ClassOf(t Token) Class {
	return Lookup(t).Class
}
