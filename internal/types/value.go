// Package types defines runtime value types for bbawk.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind represents the type of an awk value.
type Kind uint8

const (
	KindNull   Kind = iota // Uninitialized value
	KindNum                // Numeric value
	KindStr                // String value
	KindStrNum             // Input text that looks numeric; both forms cached
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindStrNum:
		return "strnum"
	default:
		return "unknown"
	}
}

// Value represents an awk scalar. It is a sum type: a number, a string,
// or a string from input that also carries its parsed number. The zero
// Value is the uninitialized value, which reads as "" and 0.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Constructors

// Null returns a null (uninitialized) value.
func Null() Value {
	return Value{}
}

// Num creates a numeric value.
func Num(n float64) Value {
	return Value{kind: KindNum, num: n}
}

// Str creates a string value.
func Str(s string) Value {
	return Value{kind: KindStr, str: s}
}

// Input creates a value from user input (fields, getline, ARGV, ENVIRON,
// -v assignments). Text that parses fully as a number, surrounding
// blanks allowed, is a numeric string; anything else is a plain string.
func Input(s string) Value {
	if n, ok := looksNumeric(s); ok {
		return Value{kind: KindStrNum, num: n, str: s}
	}
	return Value{kind: KindStr, str: s}
}

// Bool creates a numeric value from a boolean (1 for true, 0 for false).
func Bool(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// Accessors

// Kind returns the value's type.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsNum returns true if the value is a pure number.
func (v Value) IsNum() bool {
	return v.kind == KindNum
}

// IsStr returns true if the value is a plain string.
func (v Value) IsStr() bool {
	return v.kind == KindStr
}

// IsNumeric reports whether v compares as a number: a number, a numeric
// string, or the uninitialized value.
func (v Value) IsNumeric() bool {
	return v.kind != KindStr
}

// Conversions

// AsNum returns the numeric representation of the value.
// Plain strings convert by their longest numeric prefix.
func (v Value) AsNum() float64 {
	switch v.kind {
	case KindNum, KindStrNum:
		return v.num
	case KindStr:
		return ParseNumPrefix(v.str)
	default:
		return 0
	}
}

// AsStr returns the string representation using the given format for
// non-integral numbers (CONVFMT or OFMT).
func (v Value) AsStr(format string) string {
	if v.kind == KindNum {
		return FormatNum(v.num, format)
	}
	return v.str
}

// AsBool returns the truth value: numbers and numeric strings are true
// when non-zero, strings when non-empty.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindNum, KindStrNum:
		return v.num != 0
	case KindStr:
		return v.str != ""
	default:
		return false
	}
}

// String returns a debug representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindNum:
		return fmt.Sprintf("Num(%s)", FormatNum(v.num, "%.6g"))
	case KindStr:
		return fmt.Sprintf("Str(%q)", v.str)
	case KindStrNum:
		return fmt.Sprintf("StrNum(%q)", v.str)
	default:
		return "Null()"
	}
}

// Comparison

// Compare compares two values using awk comparison semantics: numerically
// when both are numeric, otherwise as strings formatted with convfmt.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b Value, convfmt string) int {
	if a.IsNumeric() && b.IsNumeric() {
		an, bn := a.AsNum(), b.AsNum()
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.AsStr(convfmt), b.AsStr(convfmt))
}

// Number Parsing and Formatting

// looksNumeric reports whether s is entirely a decimal or hex number,
// allowing surrounding blanks.
func looksNumeric(s string) (float64, bool) {
	s = strings.Trim(s, " \t\n\r\f\v")
	if s == "" {
		return 0, false
	}
	n, err := ParseNum(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseNum parses a string as a number (strict parsing).
func ParseNum(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if len(s) >= 3 {
		switch strings.ToLower(s) {
		case "nan", "+nan", "-nan":
			return math.NaN(), nil
		case "inf", "+inf":
			return math.Inf(1), nil
		case "-inf":
			return math.Inf(-1), nil
		}
	}

	// Go rejects underscores only in some positions; awk never allows them.
	if strings.Contains(s, "_") {
		return 0, strconv.ErrSyntax
	}

	body := strings.TrimLeft(s, "+-")
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		u, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		if s[0] == '-' {
			return -float64(u), nil
		}
		return float64(u), nil
	}
	// ParseFloat accepts spellings awk does not, like "infinity".
	if strings.ContainsAny(body, "iInN") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// ParseNumPrefix parses a number from the beginning of a string.
// Allows trailing non-numeric characters like "123abc" -> 123.
func ParseNumPrefix(s string) float64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i+2 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') && isHexDigit(s[i+2]) {
		j := i + 2
		for j < len(s) && isHexDigit(s[j]) {
			j++
		}
		u, _ := strconv.ParseUint(s[i+2:j], 16, 64)
		if s[start] == '-' {
			return -float64(u)
		}
		return float64(u)
	}

	gotDigit := false
	for i < len(s) && isDigit(s[i]) {
		gotDigit = true
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			gotDigit = true
			i++
		}
	}
	if !gotDigit {
		return 0
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && isDigit(s[i]) {
			end = i + 1
			i++
		}
	}

	n, _ := strconv.ParseFloat(s[start:end], 64)
	return n
}

// FormatNum formats a number as a string. Integral values print without
// a fraction; others use format.
func FormatNum(n float64, format string) string {
	switch {
	case math.IsNaN(n):
		if math.Signbit(n) {
			return "-nan"
		}
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == math.Trunc(n) && math.Abs(n) < 1e16:
		return strconv.FormatInt(int64(n), 10)
	case format == "%.6g":
		return strconv.FormatFloat(n, 'g', 6, 64)
	default:
		return fmt.Sprintf(format, n)
	}
}

// Helper functions

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
