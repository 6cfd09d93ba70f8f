package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Process is a running command.
type Process interface {
	// Wait blocks until the command exits and returns its exit status.
	Wait() (int, error)
}

// Launcher runs shell command lines for pipes and system().
type Launcher interface {
	// Writer starts cmd with its standard input connected to the
	// returned writer. Closing the writer delivers end of file.
	Writer(cmd string) (io.WriteCloser, Process, error)
	// Reader starts cmd with its standard output connected to the
	// returned reader.
	Reader(cmd string) (io.ReadCloser, Process, error)
	// Run runs cmd to completion and returns its exit status.
	Run(cmd string) (int, error)
}

// Stdio is the standard I/O inherited by launched commands.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// inheritedStdin returns the standard input handed to commands. Only a
// real file is shared; an in-memory reader belongs to the interpreter.
func (s Stdio) inheritedStdin() io.Reader {
	if f, ok := s.Stdin.(*os.File); ok {
		return f
	}
	return nil
}

// ExecLauncher runs commands with an external POSIX shell via os/exec.
type ExecLauncher struct {
	Shell string // path of the shell, run as "shell -c cmd"
	Env   []string
	Stdio
}

// NewLauncher picks the launcher for the named shell. "builtin" selects
// the embedded interpreter; an empty name selects /bin/sh, falling back
// to the embedded interpreter when no sh is installed.
func NewLauncher(shell string, env []string, stdio Stdio) Launcher {
	if shell == "builtin" {
		return &EmbeddedLauncher{Env: env, Stdio: stdio}
	}
	if shell == "" {
		path, err := exec.LookPath("sh")
		if err != nil {
			return &EmbeddedLauncher{Env: env, Stdio: stdio}
		}
		shell = path
	}
	return &ExecLauncher{Shell: shell, Env: env, Stdio: stdio}
}

func (l *ExecLauncher) command(cmd string) *exec.Cmd {
	c := exec.Command(l.Shell, "-c", cmd)
	c.Env = l.Env
	c.Stderr = l.Stderr
	return c
}

// Writer implements Launcher.
func (l *ExecLauncher) Writer(cmd string) (io.WriteCloser, Process, error) {
	c := l.command(cmd)
	c.Stdout = l.Stdout
	w, err := c.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := c.Start(); err != nil {
		return nil, nil, err
	}
	return w, execProcess{c}, nil
}

// Reader implements Launcher.
func (l *ExecLauncher) Reader(cmd string) (io.ReadCloser, Process, error) {
	c := l.command(cmd)
	c.Stdin = l.inheritedStdin()
	r, err := c.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := c.Start(); err != nil {
		return nil, nil, err
	}
	return r, execProcess{c}, nil
}

// Run implements Launcher.
func (l *ExecLauncher) Run(cmd string) (int, error) {
	c := l.command(cmd)
	c.Stdin = l.inheritedStdin()
	c.Stdout = l.Stdout
	if err := c.Start(); err != nil {
		return -1, err
	}
	return execProcess{c}.Wait()
}

type execProcess struct{ cmd *exec.Cmd }

func (p execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// EmbeddedLauncher interprets command lines with the mvdan.cc/sh POSIX
// shell, so pipes and system() work on hosts without /bin/sh.
type EmbeddedLauncher struct {
	Env []string
	Dir string
	Stdio
}

func (l *EmbeddedLauncher) start(cmd string, stdin io.Reader, stdout io.Writer, done func()) (Process, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(cmd), "")
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	env := l.Env
	if env == nil {
		env = os.Environ()
	}
	opts := []interp.RunnerOption{
		interp.StdIO(stdin, stdout, l.Stderr),
		interp.Env(expand.ListEnviron(env...)),
	}
	if l.Dir != "" {
		opts = append(opts, interp.Dir(l.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create shell: %w", err)
	}

	p := &shellProcess{done: make(chan struct{})}
	go func() {
		p.err = runner.Run(context.Background(), file)
		if done != nil {
			done()
		}
		close(p.done)
	}()
	return p, nil
}

// Writer implements Launcher.
func (l *EmbeddedLauncher) Writer(cmd string) (io.WriteCloser, Process, error) {
	pr, pw := io.Pipe()
	// Unblock writers once the script stops reading.
	p, err := l.start(cmd, pr, l.Stdout, func() { pr.Close() })
	if err != nil {
		return nil, nil, err
	}
	return pw, p, nil
}

// Reader implements Launcher.
func (l *EmbeddedLauncher) Reader(cmd string) (io.ReadCloser, Process, error) {
	pr, pw := io.Pipe()
	p, err := l.start(cmd, nil, pw, func() { pw.Close() })
	if err != nil {
		return nil, nil, err
	}
	return pr, p, nil
}

// Run implements Launcher.
func (l *EmbeddedLauncher) Run(cmd string) (int, error) {
	p, err := l.start(cmd, l.inheritedStdin(), l.Stdout, nil)
	if err != nil {
		return -1, err
	}
	return p.Wait()
}

type shellProcess struct {
	done chan struct{}
	err  error
}

func (p *shellProcess) Wait() (int, error) {
	<-p.done
	if p.err == nil {
		return 0, nil
	}
	var status interp.ExitStatus
	if errors.As(p.err, &status) {
		return int(status), nil
	}
	return -1, p.err
}
