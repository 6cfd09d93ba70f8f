// Package token defines lexical tokens for the awk language.
package token

// Token represents a lexical token kind.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF
	NEWLINE              // <newline>
	CONCAT               // <concat>

	// Operators and delimiters
	operatorStart
	ADD        // +
	ADD_ASSIGN // +=
	SUB        // -
	SUB_ASSIGN // -=
	MUL        // *
	MUL_ASSIGN // *=
	DIV        // /
	DIV_ASSIGN // /=
	MOD        // %
	MOD_ASSIGN // %=
	POW        // ^
	POW_ASSIGN // ^=

	ASSIGN     // =
	EQUALS     // ==
	NOT_EQUALS // !=
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=

	AND       // &&
	OR        // ||
	NOT       // !
	MATCH     // ~
	NOT_MATCH // !~

	INCR   // ++
	DECR   // --
	APPEND // >>
	PIPE   // |

	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	QUESTION  // ?
	DOLLAR    // $
	operatorEnd

	// Keywords
	keywordStart
	BEGIN    // BEGIN
	END      // END
	IF       // if
	ELSE     // else
	WHILE    // while
	FOR      // for
	DO       // do
	BREAK    // break
	CONTINUE // continue
	FUNCTION // function
	RETURN   // return
	DELETE   // delete
	EXIT     // exit
	NEXT     // next
	NEXTFILE // nextfile
	GETLINE  // getline
	PRINT    // print
	PRINTF   // printf
	IN       // in
	keywordEnd

	// Built-in functions
	builtinStart
	F_AND      // and
	F_ATAN2    // atan2
	F_CLOSE    // close
	F_COMPL    // compl
	F_COS      // cos
	F_EXP      // exp
	F_FFLUSH   // fflush
	F_GSUB     // gsub
	F_INDEX    // index
	F_INT      // int
	F_LENGTH   // length
	F_LOG      // log
	F_LSHIFT   // lshift
	F_MATCH    // match
	F_MKTIME   // mktime
	F_OR       // or
	F_RAND     // rand
	F_RSHIFT   // rshift
	F_SIN      // sin
	F_SPLIT    // split
	F_SPRINTF  // sprintf
	F_SQRT     // sqrt
	F_SRAND    // srand
	F_STRFTIME // strftime
	F_SUB      // sub
	F_SUBSTR   // substr
	F_SYSTEM   // system
	F_SYSTIME  // systime
	F_TOLOWER  // tolower
	F_TOUPPER  // toupper
	F_XOR      // xor
	builtinEnd

	// Literals
	NAME       // name
	FUNC_NAME  // name(
	ARRAY_NAME // name[
	NUMBER     // number
	STRING     // string
	REGEX      // regex

	numTokens
)

// IsOperator returns true if the token is an operator.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsKeyword returns true if the token is a keyword.
func (t Token) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsBuiltin returns true if the token is a built-in function.
func (t Token) IsBuiltin() bool {
	return t > builtinStart && t < builtinEnd
}

// IsLiteral returns true if the token is a literal (name, number, string, regex).
func (t Token) IsLiteral() bool {
	return t >= NAME && t <= REGEX
}

// String returns the source spelling of the token, or a description
// in angle brackets for tokens without one.
func (t Token) String() string {
	if t < numTokens {
		if s := names[t]; s != "" {
			return s
		}
	}
	return "<unknown>"
}

var names = [numTokens]string{
	ILLEGAL: "<illegal>",
	EOF:     "end of input",
	NEWLINE: "newline",
	CONCAT:  "<concat>",

	ADD: "+", ADD_ASSIGN: "+=", SUB: "-", SUB_ASSIGN: "-=",
	MUL: "*", MUL_ASSIGN: "*=", DIV: "/", DIV_ASSIGN: "/=",
	MOD: "%", MOD_ASSIGN: "%=", POW: "^", POW_ASSIGN: "^=",
	ASSIGN: "=", EQUALS: "==", NOT_EQUALS: "!=", LESS: "<", LTE: "<=",
	GREATER: ">", GTE: ">=", AND: "&&", OR: "||", NOT: "!",
	MATCH: "~", NOT_MATCH: "!~", INCR: "++", DECR: "--", APPEND: ">>",
	PIPE: "|", LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", SEMICOLON: ";",
	COLON: ":", QUESTION: "?", DOLLAR: "$",

	NAME:       "name",
	FUNC_NAME:  "function call",
	ARRAY_NAME: "array subscript",
	NUMBER:     "number",
	STRING:     "string",
	REGEX:      "regex",
}

func init() {
	for s, t := range keywords {
		names[t] = s
	}
	for s, t := range builtins {
		names[t] = s
	}
}

// keywords maps keyword strings to their token types.
var keywords = map[string]Token{
	"BEGIN":    BEGIN,
	"END":      END,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"do":       DO,
	"break":    BREAK,
	"continue": CONTINUE,
	"function": FUNCTION,
	"return":   RETURN,
	"delete":   DELETE,
	"exit":     EXIT,
	"next":     NEXT,
	"nextfile": NEXTFILE,
	"getline":  GETLINE,
	"print":    PRINT,
	"printf":   PRINTF,
	"in":       IN,
}

// builtins maps built-in function names to their token types.
var builtins = map[string]Token{
	"and":      F_AND,
	"atan2":    F_ATAN2,
	"close":    F_CLOSE,
	"compl":    F_COMPL,
	"cos":      F_COS,
	"exp":      F_EXP,
	"fflush":   F_FFLUSH,
	"gsub":     F_GSUB,
	"index":    F_INDEX,
	"int":      F_INT,
	"length":   F_LENGTH,
	"log":      F_LOG,
	"lshift":   F_LSHIFT,
	"match":    F_MATCH,
	"mktime":   F_MKTIME,
	"or":       F_OR,
	"rand":     F_RAND,
	"rshift":   F_RSHIFT,
	"sin":      F_SIN,
	"split":    F_SPLIT,
	"sprintf":  F_SPRINTF,
	"sqrt":     F_SQRT,
	"srand":    F_SRAND,
	"strftime": F_STRFTIME,
	"sub":      F_SUB,
	"substr":   F_SUBSTR,
	"system":   F_SYSTEM,
	"systime":  F_SYSTIME,
	"tolower":  F_TOLOWER,
	"toupper":  F_TOUPPER,
	"xor":      F_XOR,
}

// LookupIdent returns the token type for a given identifier.
// Returns a keyword or builtin token if found, otherwise NAME.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if tok, ok := builtins[ident]; ok {
		return tok
	}
	return NAME
}
