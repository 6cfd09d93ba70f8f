package interp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kolkov/bbawk/internal/parser"
)

// runAWK compiles and runs src over input and returns what it printed.
func runAWK(t *testing.T, src, input string, args ...string) (string, int, error) {
	t.Helper()

	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out, errOut bytes.Buffer
	in, err := New(prog, &Config{
		Stdin:  strings.NewReader(input),
		Stdout: &out,
		Stderr: &errOut,
		Args:   append([]string{"bbawk"}, args...),
		Env:    []string{"HOME=/home/awk"},
		Shell:  "builtin",
	})
	if err != nil {
		return "", 2, err
	}
	status, err := in.Run()
	return out.String(), status, err
}

func mustRun(t *testing.T, src, input string, args ...string) string {
	t.Helper()
	out, _, err := runAWK(t, src, input, args...)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return out
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input string
		want  string
	}{
		{"print fields", `{ print $2, $1 }`, "a b\nc d\n", "b a\nd c\n"},
		{"default action", `/b/`, "a\nb\nc\n", "b\n"},
		{"sum column", `{ s += $1 } END { print s }`, "1\n2\n3\n", "6\n"},
		{"NR and NF", `END { print NR, NF }`, "a b c\nd e\n", "2 2\n"},
		{"split and for", `BEGIN { n = split("1-2-3", a, "-"); for (i = 1; i <= n; i++) printf "%s-", a[i]; print "" }`, "", "1-2-3-\n"},
		{"number compare", `BEGIN { print (1 == 1.0) }`, "", "1\n"},
		{"string compare", `BEGIN { print ("1" == "1.0") }`, "", "0\n"},
		{"strnum compare", `{ print ($1 == 10) }`, " 10 \n", "1\n"},
		{"strnum vs string", `{ print ($1 == "10") }`, " 10 \n", "0\n"},
		{"uninitialized", `BEGIN { print x + 0, length(x), (x == 0), (x == "") }`, "", "0 0 1 1\n"},
		{"concat", `BEGIN { x = "a" "b" 1 + 2; print x }`, "", "ab3\n"},
		{"exponent", `BEGIN { print 2^3^2, -2^2 }`, "", "512 -4\n"},
		{"modulo", `BEGIN { print 7 % 3, -7 % 3 }`, "", "1 -1\n"},
		{"increment", `BEGIN { x = 5; print x++, x, ++x, x-- , x }`, "", "5 6 7 7 6\n"},
		{"assign ops", `BEGIN { x = 10; x += 2; x -= 1; x *= 3; x /= 11; x %= 2; x ^= 3; print x }`, "", "1\n"},
		{"ternary", `BEGIN { print 1 ? "y" : "n", 0 ? "y" : "n" }`, "", "y n\n"},
		{"in operator", `BEGIN { a["x"]; print ("x" in a), ("y" in a) }`, "", "1 0\n"},
		{"multi subscript", `BEGIN { a[1, 2] = 3; for (k in a) { split(k, p, SUBSEP); print p[1], p[2], a[k] }; print ((1, 2) in a) }`, "", "1 2 3\n1\n"},
		{"delete element", `BEGIN { a[1]; a[2]; delete a[1]; print length(a), (1 in a) }`, "", "1 0\n"},
		{"delete array", `BEGIN { a[1]; a[2]; delete a; print length(a) }`, "", "0\n"},
		{"while and break", `BEGIN { while (1) { if (++i > 3) break }; print i }`, "", "4\n"},
		{"do while", `BEGIN { do i++; while (i < 5); print i }`, "", "5\n"},
		{"continue", `BEGIN { for (i = 0; i < 5; i++) { if (i % 2) continue; s = s i }; print s }`, "", "024\n"},
		{"next", `NR == 1 { next } { print }`, "a\nb\n", "b\n"},
		{"regex match", `$0 ~ /^a+$/ { print "yes" } $0 !~ "b" { print "nob" }`, "aa\n", "yes\nnob\n"},
		{"dynamic regex", `BEGIN { r = "^[0-9]+$"; print ("123" ~ r), ("12a" ~ r) }`, "", "1 0\n"},
		{"OFS and ORS", `BEGIN { OFS = "-"; ORS = "|" } { print $1, $2 }`, "a b\n", "a-b|"},
		{"CONVFMT", `BEGIN { CONVFMT = "%.2g"; x = 3.14159; y = x ""; print y }`, "", "3.1\n"},
		{"OFMT", `BEGIN { OFMT = "%.2f"; print 3.14159, 42 }`, "", "3.14 42\n"},
		{"integer output", `BEGIN { print 1e6, 1e20, 0.1 + 0.2 }`, "", "1000000 1e+20 0.3\n"},
		{"function", `function f(a, b) { return a * b } BEGIN { print f(3, 4) }`, "", "12\n"},
		{"recursion", `function fact(n) { return n <= 1 ? 1 : n * fact(n - 1) } BEGIN { print fact(10) }`, "", "3628800\n"},
		{"scalar by value", `function f(x) { x = 5 } BEGIN { y = 1; f(y); print y }`, "", "1\n"},
		{"array by reference", `function f(a) { a["k"] = 1 } BEGIN { f(arr); print arr["k"] }`, "", "1\n"},
		{"local array", `function f(n,   t) { t[1] = n; return t[1] } BEGIN { print f(1), f(2) }`, "", "1 2\n"},
		{"missing args", `function f(a, b) { return b == "" } BEGIN { print f(1) }`, "", "1\n"},
		{"ENVIRON", `BEGIN { print ENVIRON["HOME"] }`, "", "/home/awk\n"},
		{"range pattern", `/start/,/end/`, "a\nstart\nb\nend\nc\n", "start\nb\nend\n"},
		{"range same record", `/x/,/x/ { print NR }`, "x\ny\nx\n", "1\n3\n"},
		{"FS tab", `BEGIN { FS = "\t" } { print $2 }`, "a b\tc\n", "c\n"},
		{"FS regex", `BEGIN { FS = "[,;]+" } { print $3 }`, "a,,b;c\n", "c\n"},
		{"FS single space", `{ print NF }`, "  a   b  \n", "2\n"},
		{"paragraph mode", `BEGIN { RS = "" } { print NR ": " $1 "," $NF }`, "a b\nc\n\n\nd e\n", "1: a,c\n2: d,e\n"},
		{"regex RS", `BEGIN { RS = "[0-9]+" } { print }`, "a1b22c", "a\nb\nc\n"},
		{"char RS", `BEGIN { RS = ";" } { print NR, $0 }`, "x;y", "1 x\n2 y\n"},
		{"IGNORECASE", `BEGIN { IGNORECASE = 1 } /abc/ { print "m" }`, "xABCx\n", "m\n"},
		{"NF decrease", `{ NF = 2; print; print NF }`, "a b c d\n", "a b\n2\n"},
		{"NF zero", `{ NF = 0; print length($0), NF }`, "a b\n", "0 0\n"},
		{"field growth", `BEGIN { OFS = ":" } { $5 = "e"; print; print NF }`, "a b\n", "a:b:::e\n5\n"},
		{"set $0", `{ $0 = "x y z"; print NF, $2 }`, "a\n", "3 y\n"},
		{"set field rebuilds", `{ $2 = "X"; print }`, "a  b  c\n", "a X c\n"},
		{"field of number", `{ print $(1 + 1) }`, "a b c\n", "b\n"},
		{"substr", `BEGIN { s = "hello"; print substr(s, 2, 3), substr(s, 0), substr(s, -1, 3), substr(s, 4, 100), substr(s, 1.5, 2) }`, "", "ell hello h lo el\n"},
		{"index", `BEGIN { print index("foobar", "bar"), index("foo", "z") }`, "", "4 0\n"},
		{"length", `{ print length(), length }`, "héllo\n", "5 5\n"},
		{"case", `BEGIN { print toupper("aBc"), tolower("AbC") }`, "", "ABC abc\n"},
		{"sub", `{ n = sub(/o/, "0"); print n, $0 }`, "foo boo\n", "1 f0o boo\n"},
		{"gsub", `{ n = gsub(/o/, "[&]"); print n, $0 }`, "foo\n", "2 f[o][o]\n"},
		{"gsub literal amp", `BEGIN { s = "a.b"; gsub(/\./, "\\&", s); print s }`, "", "a&b\n"},
		{"gsub target var", `BEGIN { s = "aaa"; print gsub("a", "b", s), s }`, "", "3 bbb\n"},
		{"gsub field", `{ gsub(/x/, "y", $2); print }`, "ax bx\n", "ax by\n"},
		{"match", `BEGIN { print match("foobar", /o+/), RSTART, RLENGTH; print match("abc", /z/), RSTART, RLENGTH }`, "", "2 2 2\n0 0 -1\n"},
		{"sprintf", `BEGIN { print sprintf("%5.2f|%-4d|%s|%c|%c|%x|%o|%e", 3.14159, 42, "str", 65, "hello", 255, 8, 12345.678) }`, "", " 3.14|42  |str|A|h|ff|10|1.234568e+04\n"},
		{"printf star", `BEGIN { printf "%*d|%-*s|%.*f\n", 4, 7, 3, "a", 1, 2.25 }`, "", "   7|a  |2.2\n"},
		{"printf percent", `BEGIN { printf "100%%\n" }`, "", "100%\n"},
		{"printf g", `BEGIN { printf "%g %G\n", 0.0001, 1e20 }`, "", "0.0001 1E+20\n"},
		{"int", `BEGIN { print int(3.9), int(-3.9), int("12abc") }`, "", "3 -3 12\n"},
		{"math", `BEGIN { printf "%.4f %.4f %.4f\n", sqrt(2), exp(1), atan2(0, -1) }`, "", "1.4142 2.7183 3.1416\n"},
		{"bitwise", `BEGIN { print and(12, 10), or(12, 10), xor(12, 10), lshift(1, 4), rshift(256, 4), and(7, 3, 1) }`, "", "8 14 6 16 16 1\n"},
		{"srand returns previous seed", `BEGIN { srand(5); print srand(7) }`, "", "5\n"},
		{"rand range", `BEGIN { srand(1); r = rand(); print (r >= 0 && r < 1) }`, "", "1\n"},
		{"getline var", `NR == 1 { getline line; print "got", line, NR }`, "a\nb\nc\n", "got b 2\n"},
		{"getline record", `NR == 1 { getline; print $0, NR }`, "a\nb\n", "b 2\n"},
		{"getline at end", `{ r = getline; print r, $0 }`, "a\n", "0 a\n"},
		{"getline command", `BEGIN { while (("echo x; echo y" | getline l) > 0) print "<" l ">"; print NR }`, "", "<x>\n<y>\n2\n"},
		{"getline missing file", `BEGIN { print (getline l < "/nonexistent/file") }`, "", "-1\n"},
		{"print to pipe", `BEGIN { c = "read x; echo got $x"; print "hi" | c; close(c); print "done" }`, "", "got hi\ndone\n"},
		{"system", `BEGIN { printf "before "; r = system("echo mid"); print "after", r }`, "", "before mid\nafter 0\n"},
		{"close status", `BEGIN { "exit 3" | getline; print close("exit 3") }`, "", "3\n"},
		{"close unknown", `BEGIN { print close("nothing") }`, "", "-1\n"},
		{"string to number", `BEGIN { print "3x" + 1, " 12 " + 0, "0x1A" + 0, ".5" + 0 }`, "", "4 12 26 0.5\n"},
		{"unary", `BEGIN { x = "3"; print -x, +x, !x, !"" }`, "", "-3 3 0 1\n"},
		{"short circuit", `BEGIN { if (0 && (x = 1)) ; if (1 || (y = 1)) ; print x + 0, y + 0 }`, "", "0 0\n"},
		{"short circuit calls", `function f() { print "f"; return 0 } function g() { print "g"; return 1 } BEGIN { f() && g(); 1 || g() }`, "", "f\n"},
		{"for in key is a string", `BEGIN { a[10]; for (k in a) print (k < 9) }`, "", "1\n"},
		{"for in order", `BEGIN { a[3]; a[1]; a[2]; for (k in a) s = s k; print s }`, "", "123\n"},
		{"delete during for in", `BEGIN { a[1]; a[2]; a[3]; for (k in a) { delete a[3]; n++ }; print n }`, "", "2\n"},
		{"regex as value", `{ x = /b/; print x }`, "abc\n", "1\n"},
		{"grouping", `BEGIN { x = 2; print (x) * 3 }`, "", "6\n"},
		{"printf no newline", `BEGIN { printf "%s", "x" }`, "", "x"},
		{"print paren list", `BEGIN { print("a", "b") }`, "", "a b\n"},
		{"comparison output redirect", `BEGIN { print (2 > 1) }`, "", "1\n"},
		{"mktime", `BEGIN { t = mktime("2020 01 01 00 00 00"); print (t > 0), strftime("%Y-%m-%d", t) }`, "", "1 2020-01-01\n"},
		{"mktime invalid", `BEGIN { print mktime("xyz") }`, "", "-1\n"},
		{"strftime literal percent", `BEGIN { print strftime("%%s|%H:%M|%B", 0, 1) }`, "", "%s|00:00|January\n"},
		{"strftime utc", `BEGIN { print strftime("%Y-%m-%d %H:%M:%S %j %u %w %e|%s", 86400 * 31, 1) }`, "", "1970-02-01 00:00:00 032 7 0  1|2678400\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustRun(t, tt.src, tt.input)
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldSeparatorAssignmentOperand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	if err := os.WriteFile(path, []byte("a:b:c\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := mustRun(t, `{ print $3 }`, "", "FS=:", path)
	if got != "c\n" {
		t.Errorf("output = %q, want %q", got, "c\n")
	}
}

func TestVars(t *testing.T) {
	prog, err := parser.Parse(`BEGIN { print x, y; print length(x) }`)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	in, err := New(prog, &Config{
		Stdout: &out,
		Vars:   []Var{{Name: "x", Value: `a\tb`}, {Name: "y", Value: "2"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := in.Run(); err != nil {
		t.Fatal(err)
	}
	if want := "a\tb 2\n3\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := os.WriteFile(a, []byte("1\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := mustRun(t, `{ print FILENAME == ARGV[1] ? "a" : "b", NR, FNR }`, "", a, b)
	if want := "a 1 1\na 2 2\nb 3 1\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	got = mustRun(t, `FNR == 1 { n++ } { nextfile } END { print n, NR }`, "", a, b)
	if want := "2 2\n"; got != want {
		t.Errorf("nextfile output = %q, want %q", got, want)
	}

	got = mustRun(t, `BEGIN { ARGV[1] = ""; } { print }`, "", a, b)
	if want := "3\n"; got != want {
		t.Errorf("ARGV edit output = %q, want %q", got, want)
	}
}

func TestGetlineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := `BEGIN { while ((getline l < F) > 0) n++; print n, NR; close(F); getline l < F; print l }`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	in, err := New(prog, &Config{Stdout: &out, Vars: []Var{{Name: "F", Value: path}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := in.Run(); err != nil {
		t.Fatal(err)
	}
	if want := "2 0\none\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestOutputRedirection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	src := `BEGIN { print "a" > F; print "b" > F; close(F); print "c" >> F }`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	in, err := New(prog, &Config{Stdout: &bytes.Buffer{}, Vars: []Var{{Name: "F", Value: path}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := in.Run(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "a\nb\nc\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestExit(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		status int
	}{
		{"exit in BEGIN runs END", `BEGIN { print "b"; exit 3 } { print "main" } END { print "e" }`, "b\ne\n", 3},
		{"exit in END", `END { print "e"; exit 4; print "no" }`, "e\n", 4},
		{"exit in main", `{ print; exit } END { print "end" }`, "a\nend\n", 0},
		{"END keeps code", `BEGIN { exit 5 } END { exit }`, "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, status, err := runAWK(t, tt.src, "a\nb\n")
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want || status != tt.status {
				t.Errorf("got (%q, %d), want (%q, %d)", out, status, tt.want, tt.status)
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	out, status, err := runAWK(t, `{ print } END { print NR }`, "", "/nonexistent/input")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0\n" || status != 2 {
		t.Errorf("got (%q, %d), want (%q, 2)", out, status, "0\n")
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"division by zero", `BEGIN { x = 0; print 1 / x }`, "division by zero"},
		{"modulo by zero", `BEGIN { x = 0; print 1 % x }`, "division by zero in %"},
		{"negative field", `BEGIN { x = -1; print $x }`, "out of range field"},
		{"NaN field", `BEGIN { x = $(log(-1)); print "ok" }`, "out of range field"},
		{"NaN field assignment", `{ $(log(-1)) = "x" }`, "out of range field"},
		{"huge field", `BEGIN { $(2 ^ 40) = "x" }`, "out of range field"},
		{"negative NF", `{ NF = -1 }`, "NF set to out of range value"},
		{"NaN NF", `{ NF = log(-1) }`, "NF set to out of range value"},
		{"scalar as array", `BEGIN { x = 1; x[1] = 2 }`, "can't use scalar x as array"},
		{"array as scalar", `BEGIN { a[1] = 1; print a + 0 }`, "can't use array a in scalar context"},
		{"expression recursion", `BEGIN { a = "a"; print (a) }`, "expression recursion on a"},
		{"format arguments", `BEGIN { printf "%d %d\n", 1 }`, "not enough arguments"},
		{"invalid dynamic regex", `BEGIN { r = "("; print "x" ~ r }`, "invalid regex"},
		{"call depth", `function f(n) { return f(n + 1) } BEGIN { f(0) }`, "call depth exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, status, err := runAWK(t, tt.src, "a b\n")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *Error", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
			if status != 2 {
				t.Errorf("status = %d, want 2", status)
			}
		})
	}
}

func TestErrorLine(t *testing.T) {
	_, _, err := runAWK(t, "BEGIN {\n  x = 0\n  print 1 / x\n}", "")
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if e.Line != 3 {
		t.Errorf("line = %d, want 3", e.Line)
	}
}

func TestOutputBeforeError(t *testing.T) {
	out, _, err := runAWK(t, `BEGIN { print "kept"; x = 0; print 1 / x }`, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if out != "kept\n" {
		t.Errorf("output = %q, want %q", out, "kept\n")
	}
}

func TestAssignArgumentToFunction(t *testing.T) {
	prog, err := parser.Parse(`function f() {} BEGIN { }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(prog, &Config{Vars: []Var{{Name: "f", Value: "1"}}}); err == nil {
		t.Error("expected error assigning to a function name")
	}
}

func TestIsAssignment(t *testing.T) {
	tests := []struct {
		arg   string
		name  string
		value string
		ok    bool
	}{
		{"x=1", "x", "1", true},
		{"_a1=b=c", "_a1", "b=c", true},
		{"x=", "x", "", true},
		{"=1", "", "", false},
		{"1x=2", "", "", false},
		{"file.txt", "", "", false},
		{"a-b=1", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, ok := isAssignment(tt.arg)
			if ok != tt.ok || name != tt.name || value != tt.value {
				t.Errorf("isAssignment(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.arg, name, value, ok, tt.name, tt.value, tt.ok)
			}
		})
	}
}
