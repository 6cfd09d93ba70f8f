package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kolkov/bbawk/internal/types"
)

// sprintf formats args per the printf conversions %c %d %i %o %u %x %X
// %e %E %f %F %g %G %s, each with optional flags, width and precision;
// '*' takes the width or precision from the next argument. An unknown
// conversion or a missing argument is fatal. Extra arguments are
// ignored.
func (in *Interp) sprintf(format string, args []types.Value) (string, error) {
	var sb strings.Builder
	next := 0
	arg := func() (types.Value, error) {
		if next >= len(args) {
			return types.Value{}, in.errorf("not enough arguments for format %q", format)
		}
		next++
		return args[next-1], nil
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			sb.WriteByte('%')
			continue
		}

		spec := []byte{'%'}
		for i < len(format) && strings.IndexByte("-+ #0", format[i]) >= 0 {
			spec = append(spec, format[i])
			i++
		}
		if i < len(format) && format[i] == '*' {
			v, err := arg()
			if err != nil {
				return "", err
			}
			w := int(v.AsNum())
			if w < 0 {
				spec = append(spec, '-')
				w = -w
			}
			spec = strconv.AppendInt(spec, int64(w), 10)
			i++
		} else {
			for i < len(format) && isDigit(format[i]) {
				spec = append(spec, format[i])
				i++
			}
		}
		hasPrec := false
		if i < len(format) && format[i] == '.' {
			i++
			if i < len(format) && format[i] == '*' {
				v, err := arg()
				if err != nil {
					return "", err
				}
				// a negative precision is taken as omitted
				if p := int(v.AsNum()); p >= 0 {
					spec = strconv.AppendInt(append(spec, '.'), int64(p), 10)
					hasPrec = true
				}
				i++
			} else {
				spec = append(spec, '.')
				hasPrec = true
				for i < len(format) && isDigit(format[i]) {
					spec = append(spec, format[i])
					i++
				}
			}
		}
		// C length modifiers carry no meaning here.
		for i < len(format) && strings.IndexByte("hlLqjzt", format[i]) >= 0 {
			i++
		}
		if i >= len(format) {
			return "", in.errorf("invalid format %q: incomplete conversion", format)
		}

		verb := format[i]
		if strings.IndexByte("cdiouxXeEfFgGs", verb) < 0 {
			return "", in.errorf("invalid format %q: unknown conversion %%%c", format, verb)
		}
		v, err := arg()
		if err != nil {
			return "", err
		}
		in.formatOne(&sb, string(spec), verb, hasPrec, v)
	}
	return sb.String(), nil
}

func (in *Interp) formatOne(sb *strings.Builder, spec string, verb byte, hasPrec bool, v types.Value) {
	switch verb {
	case 'd', 'i':
		n := v.AsNum()
		switch {
		case math.IsNaN(n) || math.IsInf(n, 0):
			fmt.Fprintf(sb, noPrec(spec)+"s", types.FormatNum(n, in.convfmt))
		case math.Abs(n) >= 1<<63:
			fmt.Fprintf(sb, noPrec(spec)+".0f", n)
		default:
			fmt.Fprintf(sb, spec+"d", int64(n))
		}
	case 'o', 'u', 'x', 'X':
		n := v.AsNum()
		var u uint64
		if n < 0 {
			u = uint64(int64(n))
		} else {
			u = uint64(n)
		}
		if verb == 'u' {
			verb = 'd'
		}
		fmt.Fprintf(sb, spec+string(verb), u)
	case 'e', 'E', 'f', 'F', 'g', 'G':
		if verb == 'F' {
			verb = 'f'
		}
		if !hasPrec && (verb == 'g' || verb == 'G') {
			// Go's %g defaults to the shortest representation
			spec += ".6"
		}
		fmt.Fprintf(sb, spec+string(verb), v.AsNum())
	case 'c':
		var s string
		if v.IsNum() || v.IsNull() {
			s = string(rune(int(v.AsNum())))
		} else if str := v.AsStr(in.convfmt); str != "" {
			_, n := utf8.DecodeRuneInString(str)
			s = str[:n]
		}
		fmt.Fprintf(sb, noPrec(spec)+"s", s)
	case 's':
		fmt.Fprintf(sb, spec+"s", v.AsStr(in.convfmt))
	}
}

// noPrec drops the precision from a conversion spec.
func noPrec(spec string) string {
	if i := strings.IndexByte(spec, '.'); i >= 0 {
		return spec[:i]
	}
	return spec
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
