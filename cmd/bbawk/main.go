// bbawk - a POSIX-style AWK interpreter
//
// Usage follows POSIX awk: options first, then the program text (unless
// given with -f), then input files and name=value assignments.
package main

import "os"

// version is set at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
