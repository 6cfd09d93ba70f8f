package runtime

import (
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"hello", false},
		{"^[a-z]+$", false},
		{"[[:alpha:]]+", false},
		{"(foo|bar)", false},
		{".*\\.txt$", false},
		{"[invalid", true},
		{"(unclosed", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for pattern %q", tt.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if re.Pattern() != tt.pattern {
				t.Errorf("Pattern() = %q, want %q", re.Pattern(), tt.pattern)
			}
		})
	}
}

func TestMatchString(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"hello", "hello world", true},
		{"hello", "goodbye world", false},
		{"^hello", "say hello", false},
		{"world$", "hello world", true},
		{"[0-9]+", "abc123def", true},
		{"^$", "", true},
		{"foo|bar", "baz", false},
		{"a.b", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.input, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLeftmostLongest(t *testing.T) {
	re := MustCompile("a|ab")
	loc := re.FindStringIndex("xabc")
	if loc == nil || loc[0] != 1 || loc[1] != 3 {
		t.Errorf("FindStringIndex = %v, want [1 3]", loc)
	}
}

func TestCompileFold(t *testing.T) {
	re, err := CompileFold("abc")
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("xABCx") {
		t.Error("case-insensitive regex should match ABC")
	}
	if !re.IgnoresCase() {
		t.Error("IgnoresCase() = false")
	}
	if MustCompile("abc").MatchString("ABC") {
		t.Error("case-sensitive regex matched ABC")
	}
}

func TestRegexCache(t *testing.T) {
	c := NewRegexCache(2)
	a1, err := c.Get("a", false)
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := c.Get("a", false)
	if a1 != a2 {
		t.Error("cache returned a different regex for the same pattern")
	}
	af, _ := c.Get("a", true)
	if af == a1 {
		t.Error("folded and plain patterns share a cache entry")
	}
	c.Get("b", false)
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after eviction", c.Len())
	}
	if a3, _ := c.Get("a", false); a3 == a1 {
		t.Error("oldest entry was not evicted")
	}
	if _, err := c.Get("(", false); err == nil {
		t.Error("expected compile error")
	}
}
