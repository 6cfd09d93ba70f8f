package record

import (
	"regexp"
	"unicode/utf8"

	"github.com/kolkov/bbawk/internal/runtime"
)

// Mode is a field splitting mode.
type Mode uint8

const (
	Whitespace Mode = iota // FS == " ": runs of blanks and newlines, ends trimmed
	Char                   // one literal character
	Chars                  // FS == "": every character is a field
	Pattern                // regular expression
)

// Splitter cuts a record into fields.
type Splitter struct {
	mode Mode
	ch   byte
	re   *runtime.Regex
	// newline also separates fields (paragraph mode records).
	newline bool
}

// DefaultSplitter is the splitter for FS == " ".
var DefaultSplitter = Splitter{mode: Whitespace}

// NewSplitter compiles a field separator. paragraph is set when records
// are paragraphs, where newline always separates fields. fold makes a
// regex separator case-insensitive.
func NewSplitter(fs string, paragraph, fold bool, cache *runtime.RegexCache) (Splitter, error) {
	switch {
	case fs == " ":
		return Splitter{mode: Whitespace}, nil
	case fs == "":
		return Splitter{mode: Chars}, nil
	case len(fs) == 1 && fs != "\\" && !(fold && isLetter(fs[0])):
		return Splitter{mode: Char, ch: fs[0], newline: paragraph}, nil
	}
	pattern := fs
	if len(fs) == 1 {
		pattern = regexp.QuoteMeta(fs)
	}
	if paragraph {
		pattern = "(" + pattern + ")|\n"
	}
	re, err := cache.Get(pattern, fold)
	if err != nil {
		return Splitter{}, err
	}
	return Splitter{mode: Pattern, re: re}, nil
}

// PatternSplitter splits at matches of re, whatever its length.
func PatternSplitter(re *runtime.Regex) Splitter {
	return Splitter{mode: Pattern, re: re}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Mode returns the splitting mode.
func (s Splitter) Mode() Mode {
	return s.mode
}

// Split appends the fields of line to dst[:0]. An empty line has no
// fields in every mode.
func (s Splitter) Split(line string, dst []string) []string {
	dst = dst[:0]
	if line == "" {
		return dst
	}
	switch s.mode {
	case Whitespace:
		return splitBlank(line, dst)
	case Char:
		start := 0
		for i := 0; i < len(line); i++ {
			if c := line[i]; c == s.ch || (s.newline && c == '\n') {
				dst = append(dst, line[start:i])
				start = i + 1
			}
		}
		return append(dst, line[start:])
	case Chars:
		for i := 0; i < len(line); {
			_, n := utf8.DecodeRuneInString(line[i:])
			dst = append(dst, line[i:i+n])
			i += n
		}
		return dst
	}

	start, search := 0, 0
	for search <= len(line) {
		loc := s.re.FindStringIndex(line[search:])
		if loc == nil {
			break
		}
		ms, me := search+loc[0], search+loc[1]
		if ms == me {
			// An empty match separates nothing; step past it.
			if ms >= len(line) {
				break
			}
			_, n := utf8.DecodeRuneInString(line[ms:])
			search = ms + n
			continue
		}
		dst = append(dst, line[start:ms])
		start, search = me, me
	}
	return append(dst, line[start:])
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func splitBlank(line string, dst []string) []string {
	i := 0
	for {
		for i < len(line) && isBlank(line[i]) {
			i++
		}
		if i == len(line) {
			return dst
		}
		start := i
		for i < len(line) && !isBlank(line[i]) {
			i++
		}
		dst = append(dst, line[start:i])
	}
}
