// Package symtab maps program names to global variable slots and
// function indexes.
package symtab

import "fmt"

// Kind says what a name denotes.
type Kind uint8

const (
	Var Kind = iota
	Func
)

func (k Kind) String() string {
	if k == Func {
		return "function"
	}
	return "variable"
}

// Slots of the built-in variables. They occupy the first global slots in
// every program.
const (
	NF = iota
	NR
	FNR
	FS
	OFS
	ORS
	RS
	FILENAME
	SUBSEP
	RSTART
	RLENGTH
	CONVFMT
	OFMT
	ENVIRON
	ARGC
	ARGV
	IGNORECASE
	ERRNO

	NumSpecial
)

var specialNames = [NumSpecial]string{
	NF: "NF", NR: "NR", FNR: "FNR", FS: "FS", OFS: "OFS", ORS: "ORS",
	RS: "RS", FILENAME: "FILENAME", SUBSEP: "SUBSEP", RSTART: "RSTART",
	RLENGTH: "RLENGTH", CONVFMT: "CONVFMT", OFMT: "OFMT",
	ENVIRON: "ENVIRON", ARGC: "ARGC", ARGV: "ARGV",
	IGNORECASE: "IGNORECASE", ERRNO: "ERRNO",
}

// Entry is one named symbol.
type Entry struct {
	Name  string
	Kind  Kind
	Index int // global slot for variables, function index for functions
}

// Table is the program symbol table. Entries are created on first lookup
// and never removed.
type Table struct {
	entries map[string]*Entry
	vars    []string
	funcs   []string
}

// New returns a table pre-seeded with the built-in variables.
func New() *Table {
	t := &Table{entries: make(map[string]*Entry)}
	for _, name := range specialNames {
		t.add(name, Var)
	}
	return t
}

func (t *Table) add(name string, kind Kind) *Entry {
	e := &Entry{Name: name, Kind: kind}
	if kind == Var {
		e.Index = len(t.vars)
		t.vars = append(t.vars, name)
	} else {
		e.Index = len(t.funcs)
		t.funcs = append(t.funcs, name)
	}
	t.entries[name] = e
	return e
}

// Var returns the variable entry for name, creating it if needed.
func (t *Table) Var(name string) (*Entry, error) {
	return t.get(name, Var)
}

// Func returns the function entry for name, creating it if needed.
func (t *Table) Func(name string) (*Entry, error) {
	return t.get(name, Func)
}

func (t *Table) get(name string, kind Kind) (*Entry, error) {
	if e, ok := t.entries[name]; ok {
		if e.Kind != kind {
			return nil, fmt.Errorf("%s %s used as a %s", e.Kind, name, kind)
		}
		return e, nil
	}
	return t.add(name, kind), nil
}

// Lookup returns the entry for name without creating it.
func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// NumVars returns the number of global variable slots.
func (t *Table) NumVars() int {
	return len(t.vars)
}

// NumFuncs returns the number of functions.
func (t *Table) NumFuncs() int {
	return len(t.funcs)
}

// VarName returns the name of global slot i.
func (t *Table) VarName(i int) string {
	return t.vars[i]
}

// FuncName returns the name of function i.
func (t *Table) FuncName(i int) string {
	return t.funcs[i]
}
