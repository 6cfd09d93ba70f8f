// Package graph defines the executable program form: an arena of
// expression nodes and an arena of statement nodes linked by successor
// indices. Control flow is explicit in the links, so the interpreter
// walks a chain without any nested block structure.
package graph

import (
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/token"
)

// ExprID indexes Program.Exprs.
type ExprID int32

// StmtID indexes Program.Stmts.
type StmtID int32

// Absent links.
const (
	NoExpr ExprID = -1
	NoStmt StmtID = -1
)

// Op is an expression operator.
type Op uint8

const (
	OpNum    Op = iota // Num
	OpStr              // Str
	OpRegex            // Str holds the pattern; matches $0 unless used as a regex operand
	OpVar              // global variable, Slot
	OpLocal            // function parameter, Slot
	OpField            // $Left
	OpIndex            // Left[Args...], Left is OpVar or OpLocal
	OpGroup            // (Left)
	OpList             // (Args...), only as print arguments or left of "in"
	OpAssign           // Left Tok= Right
	OpCond             // Left ? Right : Extra
	OpAnd              // Left && Right
	OpOr               // Left || Right
	OpNot              // !Left
	OpNeg              // -Left
	OpPlus             // +Left
	OpPreIncr
	OpPreDecr
	OpPostIncr
	OpPostDecr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEqual
	OpNotEqual
	OpMatch    // Left ~ Right
	OpNotMatch // Left !~ Right
	OpIn       // Left in Right, Left may be OpList
	OpCall     // user function Slot with Args
	OpBuiltin  // builtin Tok with Args
	OpGetline  // Mode, target Left (or NoExpr), source Right (or NoExpr)
)

// Getline modes.
const (
	GetlineMain uint8 = iota // getline [var]
	GetlineFile              // getline [var] < file
	GetlineCmd               // cmd | getline [var]
)

// Expr is one expression node.
type Expr struct {
	Op    Op
	Tok   token.Token // assignment operator or builtin function
	Mode  uint8
	Left  ExprID
	Right ExprID
	Extra ExprID
	Args  []ExprID
	Num   float64
	Str   string
	Slot  int
	Line  int
}

// IsLValue reports whether e can be assigned to.
func (e *Expr) IsLValue() bool {
	switch e.Op {
	case OpVar, OpLocal, OpField, OpIndex:
		return true
	}
	return false
}

// Kind is a statement kind.
type Kind uint8

const (
	StmtExpr     Kind = iota // evaluate Expr
	StmtPrint                // print Args [Redirect Dest]
	StmtPrintf               // printf Args [Redirect Dest]
	StmtBranch               // Next if Expr is true, Alt otherwise
	StmtRange                // Next while inside the range Expr, Expr2; Alt otherwise
	StmtJump                 // go to Next
	StmtNext                 // next
	StmtNextFile             // nextfile
	StmtExit                 // exit [Expr]
	StmtReturn               // return [Expr]
	StmtDelete               // delete Expr[Args...], or the whole array when Args is empty
	StmtIterInit             // snapshot the keys of array Expr into iterator Slot
	StmtIterNext             // assign next key to lvalue Expr and go to Next, or Alt when done
)

// Stmt is one statement node. Next is the fall-through successor; Alt
// is the second successor of branching statements.
type Stmt struct {
	Kind     Kind
	Expr     ExprID
	Expr2    ExprID
	Args     []ExprID
	Redirect token.Token // 0, GREATER, APPEND or PIPE
	Dest     ExprID
	Slot     int
	Next     StmtID
	Alt      StmtID
	Line     int
}

// Function is a user-defined function.
type Function struct {
	Name        string
	Params      []string
	ArrayParams []bool // parameter is used as an array
	Entry       StmtID
	NumIters    int
	Defined     bool
	Line        int
}

// Program is a parsed program.
type Program struct {
	Exprs []Expr
	Stmts []Stmt

	Begin StmtID
	Main  StmtID
	End   StmtID

	// HasMain and HasEnd are set when the program has rules or END
	// actions, even empty ones; input is read only then.
	HasMain bool
	HasEnd  bool

	Funcs     []Function
	Syms      *symtab.Table
	NumRanges int
	NumIters  int
}

// New returns an empty program.
func New() *Program {
	return &Program{
		Begin: NoStmt,
		Main:  NoStmt,
		End:   NoStmt,
		Syms:  symtab.New(),
	}
}

// AddExpr appends e and returns its ID.
func (p *Program) AddExpr(e Expr) ExprID {
	p.Exprs = append(p.Exprs, e)
	return ExprID(len(p.Exprs) - 1)
}

// AddStmt appends s and returns its ID.
func (p *Program) AddStmt(s Stmt) StmtID {
	p.Stmts = append(p.Stmts, s)
	return StmtID(len(p.Stmts) - 1)
}

// Expr returns the node for id.
func (p *Program) Expr(id ExprID) *Expr {
	return &p.Exprs[id]
}

// Stmt returns the node for id.
func (p *Program) Stmt(id StmtID) *Stmt {
	return &p.Stmts[id]
}
