package bbawk

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/interp"
)

// Program represents a compiled AWK program ready for execution.
// It is safe for concurrent use; each call to Run creates an
// independent interpreter.
type Program struct {
	graph  *graph.Program
	source string // Original source for debugging
}

// Run executes the compiled program with the given input and configuration.
// Returns the output as a string, or an error if execution fails.
//
// If config is nil, default configuration is used.
// If config.Output is set, output is written there and the returned
// string will be empty.
//
// A non-zero exit status is reported as *ExitError together with the
// output produced so far. A fatal error is a *RuntimeError; output
// captured before it is returned as well.
func (p *Program) Run(input io.Reader, config *Config) (string, error) {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	var outputBuf *bytes.Buffer
	output := cfg.Output
	if output == nil {
		outputBuf = &bytes.Buffer{}
		output = outputBuf
	}
	captured := func() string {
		if outputBuf == nil {
			return ""
		}
		return outputBuf.String()
	}

	if input == nil {
		input = cfg.Stdin
	}
	if input == nil {
		input = strings.NewReader("")
	}

	in, err := interp.New(p.graph, &interp.Config{
		Stdin:         input,
		Stdout:        output,
		Stderr:        cfg.Stderr,
		Args:          cfg.Args,
		Env:           cfg.Env,
		Vars:          interpVars(&cfg),
		Shell:         cfg.Shell,
		FlushEachLine: cfg.FlushEachLine,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return "", runtimeError(err)
	}

	status, err := in.Run()
	if err != nil {
		return captured(), runtimeError(err)
	}
	if status != 0 {
		return captured(), &ExitError{Code: status}
	}
	return captured(), nil
}

// interpVars turns the separators and Variables into assignments applied
// before BEGIN. The separators are escaped so they arrive verbatim.
func interpVars(cfg *Config) []interp.Var {
	raw := func(s string) string { return strings.ReplaceAll(s, `\`, `\\`) }
	vars := []interp.Var{
		{Name: "FS", Value: raw(cfg.FS)},
		{Name: "OFS", Value: raw(cfg.OFS)},
		{Name: "ORS", Value: raw(cfg.ORS)},
	}
	if cfg.RS != "" {
		vars = append(vars, interp.Var{Name: "RS", Value: raw(cfg.RS)})
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Variables)) {
		vars = append(vars, interp.Var{Name: name, Value: cfg.Variables[name]})
	}
	return vars
}

func runtimeError(err error) error {
	var ie *interp.Error
	if errors.As(err, &ie) {
		return &RuntimeError{Line: ie.Line, Message: ie.Message}
	}
	return &RuntimeError{Message: err.Error()}
}

// Disassemble returns a listing of the program graph: the BEGIN, main
// and END chains and each function, one statement per line.
// Useful for debugging and understanding program structure.
func (p *Program) Disassemble() string {
	return p.graph.Disassemble()
}

// Source returns the original AWK source code.
func (p *Program) Source() string {
	return p.source
}
