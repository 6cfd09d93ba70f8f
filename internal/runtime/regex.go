// Package runtime provides the interpreter's I/O and pattern support:
// compiled regex caching, separator-aware record reading, the table of
// named streams, and the shell launchers behind pipes and system().
package runtime

import (
	"github.com/coregx/coregex"
)

// Pattern prefixes. AWK regexes let '.' match a newline.
const (
	dotallPrefix = "(?s)"
	foldPrefix   = "(?is)"
)

// Regex wraps coregex with AWK semantics: leftmost-longest matching and
// dot-matches-newline.
type Regex struct {
	pattern string
	re      *coregex.Regexp
	fold    bool
}

// Compile compiles an extended regular expression.
func Compile(pattern string) (*Regex, error) {
	return compile(pattern, false)
}

// CompileFold compiles pattern for case-insensitive matching.
func CompileFold(pattern string) (*Regex, error) {
	return compile(pattern, true)
}

func compile(pattern string, fold bool) (*Regex, error) {
	prefix := dotallPrefix
	if fold {
		prefix = foldPrefix
	}
	re, err := coregex.Compile(prefix + pattern)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return &Regex{pattern: pattern, re: re, fold: fold}, nil
}

// MustCompile creates a Regex, panicking on error.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Pattern returns the original pattern string.
func (r *Regex) Pattern() string {
	return r.pattern
}

// IgnoresCase reports whether r was compiled case-insensitively.
func (r *Regex) IgnoresCase() bool {
	return r.fold
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	return r.re.MatchString(s)
}

// FindStringIndex returns the start and end of the first match, or nil.
func (r *Regex) FindStringIndex(s string) []int {
	return r.re.FindStringIndex(s)
}

// FindAllStringIndex returns all non-overlapping matches.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.re.FindAllStringIndex(s, n)
}

type cacheKey struct {
	pattern string
	fold    bool
}

// RegexCache holds compiled regexes for dynamic patterns with FIFO
// eviction. The interpreter is single-threaded, so the cache is not
// safe for concurrent use.
type RegexCache struct {
	cache   map[cacheKey]*Regex
	order   []cacheKey
	maxSize int
}

// NewRegexCache creates a cache holding at most maxSize patterns.
func NewRegexCache(maxSize int) *RegexCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &RegexCache{
		cache:   make(map[cacheKey]*Regex, maxSize),
		order:   make([]cacheKey, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns a compiled regex, compiling and caching it if needed.
func (c *RegexCache) Get(pattern string, fold bool) (*Regex, error) {
	key := cacheKey{pattern, fold}
	if re, ok := c.cache[key]; ok {
		return re, nil
	}
	re, err := compile(pattern, fold)
	if err != nil {
		return nil, err
	}
	c.cache[key] = re
	c.order = append(c.order, key)
	for len(c.order) > c.maxSize {
		delete(c.cache, c.order[0])
		c.order = c.order[1:]
	}
	return re, nil
}

// Len returns the number of cached regexes.
func (c *RegexCache) Len() int {
	return len(c.cache)
}
