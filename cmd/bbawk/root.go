package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kolkov/bbawk"
	"github.com/kolkov/bbawk/internal/lexer"
)

const usageLine = "bbawk [-F fs] [-v var=value] [-f progfile | 'prog'] [file ...]"

// options holds the parsed command line.
type options struct {
	fs        string
	vars      []string
	progFiles []string
	shell     string
	debug     bool
	dump      bool
}

// exitCode carries the process status out of the command.
type exitCode struct {
	code int
	err  error
}

func (e *exitCode) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitCode) Unwrap() error { return e.err }

// usageError is a bad command line; it exits with status 2.
func usageError(format string, args ...any) error {
	return &exitCode{code: 2, err: fmt.Errorf(format, args...)}
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ec *exitCode
	if errors.As(err, &ec) {
		if ec.err != nil {
			printError(stderr, ec.err)
		}
		return ec.code
	}
	// flag parsing errors from cobra
	printError(stderr, err)
	fmt.Fprintln(stderr, "usage: "+usageLine)
	return 2
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, newStyles(w).err.Render("bbawk:")+" "+err.Error())
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   usageLine,
		Short: "Pattern scanning and processing language",
		Long: `bbawk runs an AWK program over input files or standard input.

Operands after the program are input files; an operand of the form
name=value assigns a variable when it is reached, and "-" reads
standard input. Pipes and system() use /bin/sh, or an embedded POSIX
shell with --shell=builtin or when no sh is installed.

Environment:
  BBAWK_SHELL   default for --shell
  BBAWK_DEBUG   default for --debug`,
		Version:       versionString(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, args, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	// The program text and operands follow the options; anything after
	// them is never a flag.
	flags.SetInterspersed(false)
	flags.StringVarP(&opts.fs, "field-separator", "F", "", "input field separator `fs`")
	flags.StringArrayVarP(&opts.vars, "assign", "v", nil, "assign `var=value` before the program starts")
	flags.StringArrayVarP(&opts.progFiles, "file", "f", nil, "read the program from `progfile` (repeatable)")
	flags.StringVar(&opts.shell, "shell", "", "shell for pipes and system(): a path, or \"builtin\"")
	flags.BoolVar(&opts.debug, "debug", false, "log interpreter events to stderr")
	flags.BoolVar(&opts.dump, "dump", false, "print the compiled program and exit")
	return cmd
}

func versionString() string {
	return fmt.Sprintf("%s (library %s, commit: %s, built: %s)", version, bbawk.Version, commit, date)
}

func execute(cmd *cobra.Command, opts *options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	set, err := loadSettings(cmd.Flags())
	if err != nil {
		return &exitCode{code: 2, err: err}
	}

	source, operands, err := programSource(opts.progFiles, args, stdin)
	if err != nil {
		return err
	}

	prog, err := bbawk.Compile(source)
	if err != nil {
		return &exitCode{code: 2, err: err}
	}
	if opts.dump {
		fmt.Fprint(stdout, newStyles(stdout).renderDump(prog.Disassemble()))
		return nil
	}

	level := log.WarnLevel
	if set.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(stderr, log.Options{
		Prefix: "bbawk",
		Level:  level,
	})

	config := &bbawk.Config{
		Output:        stdout,
		Stderr:        stderr,
		Stdin:         stdin,
		Args:          append([]string{"bbawk"}, operands...),
		Shell:         set.Shell,
		Logger:        logger,
		FlushEachLine: isTerminal(stdout),
	}
	if cmd.Flags().Changed("field-separator") {
		fs, err := lexer.Unescape(opts.fs)
		if err != nil {
			return usageError("invalid field separator %q: %v", opts.fs, err)
		}
		// -F t is a tab, as in other awks
		if fs == "t" {
			fs = "\t"
		}
		config.FS = fs
	}
	if len(opts.vars) > 0 {
		config.Variables = make(map[string]string, len(opts.vars))
		for _, v := range opts.vars {
			name, value, ok := strings.Cut(v, "=")
			if !ok || !lexer.IsName(name) {
				return usageError("invalid variable assignment: %s (expected var=value)", v)
			}
			config.Variables[name] = value
		}
	}
	logger.Debug("start", "operands", len(operands), "shell", set.Shell, "flush", config.FlushEachLine)

	_, err = prog.Run(nil, config)
	if err != nil {
		if code, ok := bbawk.IsExitError(err); ok {
			return &exitCode{code: code}
		}
		return &exitCode{code: 2, err: err}
	}
	return nil
}

// programSource returns the program text, from -f files or the first
// argument, and the remaining operands.
func programSource(progFiles, args []string, stdin io.Reader) (string, []string, error) {
	if len(progFiles) == 0 {
		if len(args) == 0 {
			return "", nil, usageError("no program given")
		}
		return args[0], args[1:], nil
	}

	var sb strings.Builder
	for _, f := range progFiles {
		var (
			content []byte
			err     error
		)
		if f == "-" {
			content, err = io.ReadAll(stdin)
		} else {
			content, err = os.ReadFile(f)
		}
		if err != nil {
			return "", nil, usageError("cannot read program file %s: %v", f, err)
		}
		sb.Write(content)
		sb.WriteByte('\n')
	}
	return sb.String(), args, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
