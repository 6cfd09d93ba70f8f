package bbawk

import (
	"io"

	"github.com/charmbracelet/log"
)

// Config holds configuration options for AWK execution.
type Config struct {
	// FS is the input field separator (default: " ").
	// When set to a single space, runs of whitespace are treated as separators.
	// A single other character separates fields literally; anything longer
	// is a regular expression.
	FS string

	// RS is the input record separator (default: "\n").
	// More than one character is a regular expression. Paragraph mode
	// cannot be selected here, since the empty string means the default;
	// set RS = "" in a BEGIN action instead.
	RS string

	// OFS is the output field separator (default: " ").
	// Used when printing multiple values with print statement.
	OFS string

	// ORS is the output record separator (default: "\n").
	// Appended after each print statement.
	ORS string

	// Variables contains pre-defined variables.
	// These are set before BEGIN block execution, in name order.
	// Values go through escape processing like -v assignments.
	// Example: map[string]string{"threshold": "100", "prefix": "LOG:"}
	Variables map[string]string

	// Output is the writer for print/printf statements.
	// If nil, output is captured and returned from Run.
	Output io.Writer

	// Stderr is the writer for warnings and command error output.
	// If nil, it is discarded.
	Stderr io.Writer

	// Stdin is read when the input passed to Run is nil.
	// If both are nil, the program sees empty input.
	Stdin io.Reader

	// Args contains command-line arguments (ARGV).
	// Args[0] is typically the program name; later entries are input
	// files or name=value assignments.
	Args []string

	// Env is the environment for ENVIRON and launched commands, as
	// "name=value" pairs. If nil, the process environment is used.
	Env []string

	// Shell selects how pipes and system() run commands: a shell path,
	// "builtin" for the embedded POSIX shell, or empty for /bin/sh with
	// the embedded shell as fallback.
	Shell string

	// Logger receives debug events. If nil, nothing is logged.
	Logger *log.Logger

	// FlushEachLine flushes output after every print.
	FlushEachLine bool
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.FS == "" {
		c.FS = " "
	}
	if c.OFS == "" {
		c.OFS = " "
	}
	if c.ORS == "" {
		c.ORS = "\n"
	}
	if len(c.Args) == 0 {
		c.Args = []string{"bbawk"}
	}
}
