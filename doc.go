// Package bbawk provides an embeddable AWK interpreter.
//
// bbawk is a small POSIX-style AWK written in Go, featuring:
//   - The POSIX language plus common extensions (IGNORECASE, bitwise
//     and time functions, nextfile, regex RS)
//   - Regex matching through coregex
//   - Command pipes and system() through /bin/sh, or through an embedded
//     POSIX shell where none is installed
//   - Embeddable library for Go applications
//
// # Quick Start
//
// For simple one-off execution:
//
//	output, err := bbawk.Run(`{ print $1 }`, strings.NewReader("hello world"), nil)
//
// With configuration:
//
//	output, err := bbawk.Run(program, input, &bbawk.Config{
//	    FS: ":",
//	    Variables: map[string]string{"threshold": "100"},
//	})
//
// # Compiled Programs
//
// For repeated execution of the same program:
//
//	prog, err := bbawk.Compile(`$1 > threshold { print $2 }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, file := range files {
//	    output, err := prog.Run(file, &bbawk.Config{
//	        Variables: map[string]string{"threshold": "100"},
//	    })
//	    // ...
//	}
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [ParseError]: syntax errors in AWK source
//   - [CompileError]: invalid regular expression literals
//   - [RuntimeError]: fatal errors during execution
//   - [ExitError]: a non-zero exit status
//
// # Thread Safety
//
// Compiled [Program] objects are safe for concurrent use.
// Each call to [Program.Run] creates an independent interpreter.
package bbawk
