package lexer

import "fmt"

// appendEscape decodes the escape sequence whose first byte after the
// backslash is src[i] and appends the result to dst. It returns the
// extended dst and the number of bytes consumed after the backslash.
//
// Escapes of regex metacharacters keep their backslash so that a string
// used as a dynamic regex means the same as the literal regex. Unknown
// escapes of letters and digits are errors.
func appendEscape(dst, src []byte, i int) ([]byte, int, error) {
	c := src[i]
	switch c {
	case 'n':
		return append(dst, '\n'), 1, nil
	case 't':
		return append(dst, '\t'), 1, nil
	case 'r':
		return append(dst, '\r'), 1, nil
	case 'b':
		return append(dst, '\b'), 1, nil
	case 'f':
		return append(dst, '\f'), 1, nil
	case 'a':
		return append(dst, '\a'), 1, nil
	case 'v':
		return append(dst, '\v'), 1, nil
	case '\\', '"', '/':
		return append(dst, c), 1, nil
	case '\n':
		// Line continuation inside a string.
		return dst, 1, nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n, j := 0, i
		for j < len(src) && j < i+3 && src[j] >= '0' && src[j] <= '7' {
			n = n*8 + int(src[j]-'0')
			j++
		}
		return append(dst, byte(n)), j - i, nil
	case 'x':
		n, j := 0, i+1
		for j < len(src) && j < i+3 && isHexDigit(src[j]) {
			n = n*16 + hexValue(src[j])
			j++
		}
		if j == i+1 {
			return nil, 0, fmt.Errorf("invalid hex escape \\x")
		}
		return append(dst, byte(n)), j - i, nil
	case '.', '[', ']', '(', ')', '*', '+', '?', '{', '}', '|', '^', '$':
		return append(dst, '\\', c), 1, nil
	}
	if isIdentContinue(c) {
		return nil, 0, fmt.Errorf("unknown escape sequence \\%c", c)
	}
	return append(dst, c), 1, nil
}

func hexValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch - 'a' + 10)
	default:
		return int(ch - 'A' + 10)
	}
}

// Unescape processes escape sequences in s the way string literals are
// processed. It is used for -v and command-line assignments.
func Unescape(s string) (string, error) {
	src := []byte(s)
	var dst []byte
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			dst = append(dst, src[i])
			continue
		}
		if i+1 >= len(src) {
			dst = append(dst, '\\')
			break
		}
		var n int
		var err error
		if dst, n, err = appendEscape(dst, src, i+1); err != nil {
			return "", err
		}
		i += n
	}
	return string(dst), nil
}
