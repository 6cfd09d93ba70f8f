package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// StreamKind says how a named stream was opened.
type StreamKind uint8

const (
	OutputFile StreamKind = iota // print > name
	AppendFile                   // print >> name
	OutputPipe                   // print | cmd
	InputFile                    // getline < name
	InputPipe                    // cmd | getline
)

func (k StreamKind) String() string {
	switch k {
	case OutputFile:
		return "file"
	case AppendFile:
		return "append"
	case OutputPipe:
		return "output pipe"
	case InputFile:
		return "input file"
	case InputPipe:
		return "input pipe"
	}
	return "unknown"
}

func (k StreamKind) isOutput() bool {
	return k <= OutputPipe
}

// ErrNotOpen is returned when closing or flushing a name with no stream.
var ErrNotOpen = errors.New("no open stream with that name")

type stream struct {
	kind   StreamKind
	w      *bufio.Writer
	closer io.Closer
	reader *RecordReader
	proc   Process
}

// Streams maps file names and command lines to lazily opened streams.
// A name keeps its stream, and the mode it was first opened with, until
// it is closed.
type Streams struct {
	streams  map[string]*stream
	launcher Launcher
	stdout   *bufio.Writer
	stderr   io.Writer
	stdin    *RecordReader
	logger   *log.Logger
}

// NewStreams returns a stream table. stdout is buffered; stderr is not.
func NewStreams(launcher Launcher, stdin io.Reader, stdout, stderr io.Writer, logger *log.Logger) *Streams {
	return &Streams{
		streams:  make(map[string]*stream),
		launcher: launcher,
		stdout:   bufio.NewWriterSize(stdout, 64*1024),
		stderr:   stderr,
		stdin:    NewRecordReader(stdin),
		logger:   logger,
	}
}

// Stdout returns the buffered standard output.
func (s *Streams) Stdout() *bufio.Writer {
	return s.stdout
}

// Stdin returns the record reader over standard input.
func (s *Streams) Stdin() *RecordReader {
	return s.stdin
}

// Launcher returns the launcher used for pipes.
func (s *Streams) Launcher() Launcher {
	return s.launcher
}

// Output returns the writer for an output redirection, opening the file
// or starting the command on first use.
func (s *Streams) Output(name string, kind StreamKind) (io.Writer, error) {
	switch name {
	case "/dev/stdout", "-":
		if kind != OutputPipe {
			return s.stdout, nil
		}
	case "/dev/stderr":
		if kind != OutputPipe {
			return s.stderr, nil
		}
	}
	if st, ok := s.streams[name]; ok {
		if !st.kind.isOutput() {
			return nil, fmt.Errorf("%s is open for reading", name)
		}
		return st.w, nil
	}

	st := &stream{kind: kind}
	switch kind {
	case OutputPipe:
		if err := s.FlushAll(); err != nil {
			return nil, err
		}
		w, proc, err := s.launcher.Writer(name)
		if err != nil {
			return nil, err
		}
		st.closer, st.proc = w, proc
		st.w = bufio.NewWriter(w)
	default:
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if kind == AppendFile {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(name, flag, 0o644)
		if err != nil {
			return nil, err
		}
		st.closer = f
		st.w = bufio.NewWriter(f)
	}
	s.streams[name] = st
	s.logger.Debug("open stream", "name", name, "kind", kind)
	return st.w, nil
}

// Input returns the record reader for getline from a file or command.
func (s *Streams) Input(name string, kind StreamKind) (*RecordReader, error) {
	if kind == InputFile && (name == "-" || name == "/dev/stdin") {
		return s.stdin, nil
	}
	if st, ok := s.streams[name]; ok {
		if st.kind.isOutput() {
			return nil, fmt.Errorf("%s is open for writing", name)
		}
		return st.reader, nil
	}

	st := &stream{kind: kind}
	switch kind {
	case InputPipe:
		if err := s.FlushAll(); err != nil {
			return nil, err
		}
		r, proc, err := s.launcher.Reader(name)
		if err != nil {
			return nil, err
		}
		st.closer, st.proc = r, proc
		st.reader = NewRecordReader(r)
	default:
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		st.closer = f
		st.reader = NewRecordReader(f)
	}
	s.streams[name] = st
	s.logger.Debug("open stream", "name", name, "kind", kind)
	return st.reader, nil
}

// Close closes the named stream and forgets it. For a pipe it waits for
// the command and returns its exit status; otherwise it returns 0. It
// returns -1 with an error when nothing by that name is open or the
// close fails.
func (s *Streams) Close(name string) (int, error) {
	st, ok := s.streams[name]
	if !ok {
		return -1, fmt.Errorf("close %s: %w", name, ErrNotOpen)
	}
	delete(s.streams, name)
	s.logger.Debug("close stream", "name", name, "kind", st.kind)
	return st.close()
}

func (st *stream) close() (int, error) {
	var firstErr error
	if st.w != nil {
		firstErr = st.w.Flush()
	}
	if err := st.closer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if st.proc != nil {
		status, err := st.proc.Wait()
		if err != nil {
			return -1, err
		}
		return status, nil
	}
	if firstErr != nil {
		return -1, firstErr
	}
	return 0, nil
}

// Flush flushes the named output stream.
func (s *Streams) Flush(name string) error {
	switch name {
	case "/dev/stdout", "-":
		return s.stdout.Flush()
	case "/dev/stderr":
		return nil
	}
	st, ok := s.streams[name]
	if !ok || st.w == nil {
		return fmt.Errorf("fflush %s: %w", name, ErrNotOpen)
	}
	return st.w.Flush()
}

// FlushAll flushes standard output and every output stream.
func (s *Streams) FlushAll() error {
	firstErr := s.stdout.Flush()
	for _, st := range s.streams {
		if st.w == nil {
			continue
		}
		if err := st.w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CloseAll flushes standard output, then closes every stream, waiting
// for every command so none is left behind.
func (s *Streams) CloseAll() error {
	firstErr := s.stdout.Flush()
	for name, st := range s.streams {
		if _, err := st.close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.streams, name)
	}
	return firstErr
}

// SyncWriter returns a writer safe to share between the interpreter and
// the commands it starts. Files are returned as is: commands inherit the
// descriptor and write to it directly.
func SyncWriter(w io.Writer) io.Writer {
	if _, ok := w.(*os.File); ok {
		return w
	}
	return &syncWriter{w: w}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
