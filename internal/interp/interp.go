// Package interp executes program graphs. It owns all interpreter state:
// global cells, the call stack, the current record, range and iterator
// state, and the stream table. Statements are executed by walking their
// successor links; expressions are evaluated recursively.
package interp

import (
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/lexer"
	"github.com/kolkov/bbawk/internal/record"
	"github.com/kolkov/bbawk/internal/runtime"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/token"
	"github.com/kolkov/bbawk/internal/types"
)

// DefaultMaxCallDepth bounds user function nesting.
const DefaultMaxCallDepth = 4096

// Var is a variable assignment applied before BEGIN runs, as given by
// -v name=value. The value goes through escape processing.
type Var struct {
	Name  string
	Value string
}

// Config configures an interpreter.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Args is ARGV, with the program name at index 0.
	Args []string
	// Env is the environment as "name=value" pairs, used for ENVIRON and
	// for launched commands. Nil means os.Environ().
	Env  []string
	Vars []Var

	// Launcher runs pipes and system(). When nil, one is chosen by Shell
	// (see runtime.NewLauncher).
	Launcher runtime.Launcher
	Shell    string

	// FlushEachLine flushes standard output after every print to it.
	FlushEachLine bool
	MaxCallDepth  int
	Logger        *log.Logger
}

type iterState struct {
	keys []string
	arr  *types.Array
	pos  int
}

// frame is the activation of a user function.
type frame struct {
	fn     *graph.Function
	locals []types.Cell
	iters  []iterState
	ret    types.Value
}

// Interp is the state of one program run.
type Interp struct {
	prog     *graph.Program
	globals  []types.Cell
	iters    []iterState
	ranges   []bool
	frame    *frame
	depth    int
	maxDepth int

	rec      *record.Record
	splitter record.Splitter
	rsep     runtime.RecordSep
	regexes  *runtime.RegexCache
	fold     bool

	// cached special variable values
	convfmt, ofmt string
	ofs, ors      string
	subsep        string

	streams *runtime.Streams
	stderr  io.Writer
	flush   bool

	// main input
	argIndex  int
	sawFile   bool
	input     *runtime.RecordReader
	inputFile io.Closer

	rng  *rand.Rand
	seed float64

	line     int // source line of the current statement
	exitCode int
	inEnd    bool
	status   int // set to 2 when an input file cannot be opened
	logger   *log.Logger
}

// New prepares prog for a run. It validates regex literals, sets up the
// built-in variables, and applies cfg.Vars.
func New(prog *graph.Program, cfg *Config) (*Interp, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	stdin, stdout, stderr := cfg.Stdin, cfg.Stdout, cfg.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = io.Discard
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	env := cfg.Env
	if env == nil {
		env = os.Environ()
	}
	maxDepth := cfg.MaxCallDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxCallDepth
	}

	if err := Check(prog); err != nil {
		return nil, err
	}

	out := runtime.SyncWriter(stdout)
	launcher := cfg.Launcher
	if launcher == nil {
		launcher = runtime.NewLauncher(cfg.Shell, env, runtime.Stdio{Stdin: stdin, Stdout: out, Stderr: stderr})
	}
	logger.Debug("launcher", "type", launcherName(launcher))

	in := &Interp{
		prog:     prog,
		globals:  make([]types.Cell, prog.Syms.NumVars()),
		iters:    make([]iterState, prog.NumIters),
		ranges:   make([]bool, prog.NumRanges),
		maxDepth: maxDepth,
		rec:      record.New(),
		splitter: record.DefaultSplitter,
		rsep:     runtime.CharSep('\n'),
		regexes:  runtime.NewRegexCache(256),
		convfmt:  "%.6g",
		ofmt:     "%.6g",
		ofs:      " ",
		ors:      "\n",
		subsep:   "\x1c",
		streams:  runtime.NewStreams(launcher, stdin, out, stderr, logger),
		stderr:   stderr,
		flush:    cfg.FlushEachLine,
		argIndex: 1,
		rng:      rand.New(rand.NewSource(0)),
		logger:   logger,
	}
	in.initSpecials(cfg.Args, env)

	for _, v := range cfg.Vars {
		if err := in.assignArg(v.Name, v.Value); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// Check compiles every regex literal of prog, reporting the first that
// is invalid.
func Check(prog *graph.Program) error {
	for i := range prog.Exprs {
		e := &prog.Exprs[i]
		if e.Op != graph.OpRegex {
			continue
		}
		if _, err := runtime.Compile(e.Str); err != nil {
			return &Error{Line: e.Line, Message: "invalid regex /" + e.Str + "/: " + err.Error()}
		}
	}
	return nil
}

func launcherName(l runtime.Launcher) string {
	switch l.(type) {
	case *runtime.ExecLauncher:
		return "exec"
	case *runtime.EmbeddedLauncher:
		return "embedded"
	}
	return "custom"
}

func (in *Interp) initSpecials(args []string, env []string) {
	g := in.globals
	g[symtab.FS] = types.Scalar(types.Str(" "))
	g[symtab.OFS] = types.Scalar(types.Str(in.ofs))
	g[symtab.ORS] = types.Scalar(types.Str(in.ors))
	g[symtab.RS] = types.Scalar(types.Str("\n"))
	g[symtab.SUBSEP] = types.Scalar(types.Str(in.subsep))
	g[symtab.CONVFMT] = types.Scalar(types.Str(in.convfmt))
	g[symtab.OFMT] = types.Scalar(types.Str(in.ofmt))
	g[symtab.NR] = types.Scalar(types.Num(0))
	g[symtab.FNR] = types.Scalar(types.Num(0))
	g[symtab.RSTART] = types.Scalar(types.Num(0))
	g[symtab.RLENGTH] = types.Scalar(types.Num(-1))
	g[symtab.IGNORECASE] = types.Scalar(types.Num(0))
	g[symtab.ERRNO] = types.Scalar(types.Num(0))
	g[symtab.ARGC] = types.Scalar(types.Num(float64(len(args))))

	argv, _ := g[symtab.ARGV].Array()
	for i, a := range args {
		argv.Set(strconv.Itoa(i), types.Input(a))
	}
	environ, _ := g[symtab.ENVIRON].Array()
	for _, kv := range env {
		if name, value, ok := strings.Cut(kv, "="); ok {
			environ.Set(name, types.Input(value))
		}
	}
}

// assignArg applies a command-line "name=value" assignment. Names the
// program never mentions are ignored.
func (in *Interp) assignArg(name, value string) error {
	if s, err := lexer.Unescape(value); err == nil {
		value = s
	}
	e, ok := in.prog.Syms.Lookup(name)
	if !ok {
		return nil
	}
	if e.Kind != symtab.Var {
		return in.errorf("can't assign to %s; it's a function", name)
	}
	return in.setGlobal(e.Index, types.Input(value))
}

// isAssignment reports whether a command-line operand is "name=value".
func isAssignment(arg string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(arg, "=")
	if !ok || !lexer.IsName(name) || token.LookupIdent(name) != token.NAME {
		return "", "", false
	}
	return name, value, true
}

// ExitCode returns the status set by the program's exit statement.
func (in *Interp) ExitCode() int {
	return in.exitCode
}
