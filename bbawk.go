package bbawk

import (
	"errors"
	"io"

	"github.com/kolkov/bbawk/internal/interp"
	"github.com/kolkov/bbawk/internal/parser"
)

// Version is the bbawk version string.
const Version = "0.1.0"

// Run executes an AWK program with the given input.
// This is a convenience function for one-off execution.
// For repeated execution of the same program, use Compile followed by Program.Run.
//
// Parameters:
//   - program: AWK source code
//   - input: input data reader (can be nil for programs without input)
//   - config: execution configuration (can be nil for defaults)
//
// Returns the program output as a string, or an error if parsing
// or execution fails.
//
// Example:
//
//	output, err := bbawk.Run(`{ print $1 }`, strings.NewReader("hello world"), nil)
//	// output: "hello\n"
func Run(program string, input io.Reader, config *Config) (string, error) {
	prog, err := Compile(program)
	if err != nil {
		return "", err
	}
	return prog.Run(input, config)
}

// Compile parses an AWK program and checks its regular expressions.
// The returned Program can be executed multiple times with different inputs.
//
// Example:
//
//	prog, err := bbawk.Compile(`{ sum += $1 } END { print sum }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	output1, _ := prog.Run(file1, nil)
//	output2, _ := prog.Run(file2, nil)
func Compile(program string) (*Program, error) {
	g, err := parser.Parse(program)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return nil, &ParseError{
				Line:    pe.Pos.Line,
				Column:  pe.Pos.Column,
				Message: pe.Message,
			}
		}
		return nil, &ParseError{Message: err.Error()}
	}

	if err := interp.Check(g); err != nil {
		var ie *interp.Error
		if errors.As(err, &ie) {
			return nil, &CompileError{Line: ie.Line, Message: ie.Message}
		}
		return nil, &CompileError{Message: err.Error()}
	}

	return &Program{
		graph:  g,
		source: program,
	}, nil
}

// Exec is a simplified interface for running an AWK program.
// It reads from input, writes to output, and returns any error.
//
// This function is useful for integration with I/O pipelines
// where you need control over the output writer.
//
// Example:
//
//	err := bbawk.Exec(`{ print toupper($0) }`, os.Stdin, os.Stdout, nil)
func Exec(program string, input io.Reader, output io.Writer, config *Config) error {
	prog, err := Compile(program)
	if err != nil {
		return err
	}

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	cfg.Output = output

	_, err = prog.Run(input, &cfg)
	return err
}

// MustCompile is like Compile but panics if the program cannot be compiled.
// It simplifies initialization of global program variables.
//
// Example:
//
//	var sumProgram = bbawk.MustCompile(`{ sum += $1 } END { print sum }`)
func MustCompile(program string) *Program {
	prog, err := Compile(program)
	if err != nil {
		panic(err)
	}
	return prog
}
