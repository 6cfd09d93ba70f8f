package interp

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kolkov/bbawk/internal/graph"
	"github.com/kolkov/bbawk/internal/record"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/token"
	"github.com/kolkov/bbawk/internal/types"
)

// builtin calls a built-in function. Arguments are evaluated by each
// case, since some take arrays, regexes or assignable targets.
func (in *Interp) builtin(e *graph.Expr) (types.Value, error) {
	if e.Line > 0 {
		in.line = e.Line
	}
	switch e.Tok {
	case token.F_LENGTH:
		return in.length(e.Args)
	case token.F_SPLIT:
		return in.split(e.Args)
	case token.F_SUB, token.F_GSUB:
		return in.substitute(e.Args, e.Tok == token.F_GSUB)
	case token.F_MATCH:
		return in.match(e.Args)
	case token.F_SPRINTF:
		args, err := in.evalArgs(e.Args)
		if err != nil {
			return types.Value{}, err
		}
		s, err := in.sprintf(args[0].AsStr(in.convfmt), args[1:])
		return types.Str(s), err
	}

	args, err := in.evalArgs(e.Args)
	if err != nil {
		return types.Value{}, err
	}
	num := func(i int) float64 { return args[i].AsNum() }
	str := func(i int) string { return args[i].AsStr(in.convfmt) }

	switch e.Tok {
	case token.F_SUBSTR:
		length := math.Inf(1)
		if len(args) == 3 {
			length = num(2)
		}
		return types.Str(substr(str(0), num(1), length)), nil
	case token.F_INDEX:
		s, t := str(0), str(1)
		i := strings.Index(s, t)
		if i < 0 {
			return types.Num(0), nil
		}
		return types.Num(float64(utf8.RuneCountInString(s[:i]) + 1)), nil
	case token.F_TOLOWER:
		return types.Str(strings.ToLower(str(0))), nil
	case token.F_TOUPPER:
		return types.Str(strings.ToUpper(str(0))), nil

	case token.F_SIN:
		return types.Num(math.Sin(num(0))), nil
	case token.F_COS:
		return types.Num(math.Cos(num(0))), nil
	case token.F_ATAN2:
		return types.Num(math.Atan2(num(0), num(1))), nil
	case token.F_EXP:
		return types.Num(math.Exp(num(0))), nil
	case token.F_LOG:
		return types.Num(math.Log(num(0))), nil
	case token.F_SQRT:
		return types.Num(math.Sqrt(num(0))), nil
	case token.F_INT:
		return types.Num(math.Trunc(num(0))), nil
	case token.F_RAND:
		return types.Num(in.rng.Float64()), nil
	case token.F_SRAND:
		prev := in.seed
		if len(args) == 1 {
			in.seed = num(0)
		} else {
			in.seed = float64(time.Now().Unix())
		}
		in.rng.Seed(int64(in.seed))
		return types.Num(prev), nil

	case token.F_AND, token.F_OR, token.F_XOR:
		acc := toBits(num(0))
		for i := 1; i < len(args); i++ {
			b := toBits(num(i))
			switch e.Tok {
			case token.F_AND:
				acc &= b
			case token.F_OR:
				acc |= b
			default:
				acc ^= b
			}
		}
		return types.Num(float64(acc)), nil
	case token.F_LSHIFT:
		return types.Num(float64(toBits(num(0)) << toBits(num(1)))), nil
	case token.F_RSHIFT:
		return types.Num(float64(toBits(num(0)) >> toBits(num(1)))), nil
	case token.F_COMPL:
		return types.Num(float64(^toBits(num(0)) & maxBits)), nil

	case token.F_SYSTEM:
		return in.system(str(0))
	case token.F_CLOSE:
		status, err := in.streams.Close(str(0))
		if err != nil {
			in.setErrno(err)
		}
		return types.Num(float64(status)), nil
	case token.F_FFLUSH:
		var err error
		if len(args) == 0 || str(0) == "" {
			err = in.streams.FlushAll()
		} else {
			err = in.streams.Flush(str(0))
		}
		if err != nil {
			in.setErrno(err)
			return types.Num(-1), nil
		}
		return types.Num(0), nil

	case token.F_SYSTIME:
		return types.Num(float64(time.Now().Unix())), nil
	case token.F_STRFTIME:
		return in.strftime(args)
	case token.F_MKTIME:
		return types.Num(float64(mktime(str(0)))), nil
	}
	return types.Value{}, in.errorf("unknown builtin %s", e.Tok)
}

func (in *Interp) evalArgs(ids []graph.ExprID) ([]types.Value, error) {
	args := make([]types.Value, len(ids))
	for i, id := range ids {
		v, err := in.eval(id)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// maxBits masks bitwise results to the integers a float64 holds exactly.
const maxBits = 1<<53 - 1

func toBits(f float64) uint64 {
	if f < 0 {
		return uint64(int64(f))
	}
	return uint64(f)
}

// length counts the characters of a string, or the elements of an
// array argument. Without an argument it measures $0.
func (in *Interp) length(ids []graph.ExprID) (types.Value, error) {
	if len(ids) == 0 {
		return types.Num(float64(utf8.RuneCountInString(in.rec.Line()))), nil
	}
	if a := in.prog.Expr(ids[0]); a.Op == graph.OpVar || a.Op == graph.OpLocal {
		if c := in.cell(a); c.IsArray() {
			arr, _ := c.Array()
			return types.Num(float64(arr.Len())), nil
		}
	}
	v, err := in.eval(ids[0])
	if err != nil {
		return v, err
	}
	return types.Num(float64(utf8.RuneCountInString(v.AsStr(in.convfmt)))), nil
}

// substr returns the characters of s from position m (1-based) for n
// characters, with both rounded to the nearest integer and clipped to s.
func substr(s string, m, n float64) string {
	if math.IsNaN(m) || math.IsNaN(n) {
		return ""
	}
	runes := []rune(s)
	start := math.Round(m)
	end := start + math.Round(n)
	if start < 1 {
		start = 1
	}
	if limit := float64(len(runes) + 1); end > limit {
		end = limit
	}
	if math.IsNaN(end) || end <= start {
		return ""
	}
	return string(runes[int(start)-1 : int(end)-1])
}

// split fills array with the fields of a string, separated by the third
// argument or by FS.
func (in *Interp) split(ids []graph.ExprID) (types.Value, error) {
	v, err := in.eval(ids[0])
	if err != nil {
		return v, err
	}
	s := v.AsStr(in.convfmt)
	arr, err := in.array(ids[1])
	if err != nil {
		return types.Value{}, err
	}

	sp := in.splitter
	if len(ids) == 3 {
		if sep := in.prog.Expr(ids[2]); sep.Op == graph.OpRegex {
			re, err := in.regex(sep.Str)
			if err != nil {
				return types.Value{}, err
			}
			sp = record.PatternSplitter(re)
		} else {
			fv, err := in.eval(ids[2])
			if err != nil {
				return fv, err
			}
			fs := fv.AsStr(in.convfmt)
			if sp, err = record.NewSplitter(fs, false, in.fold, in.regexes); err != nil {
				return types.Value{}, in.errorf("split: invalid separator %q: %v", fs, err)
			}
		}
	}

	fields := sp.Split(s, nil)
	arr.Clear()
	for i, f := range fields {
		arr.Set(strconv.Itoa(i+1), types.Input(f))
	}
	return types.Num(float64(len(fields))), nil
}

// substitute implements sub and gsub. The target defaults to $0 and is
// only assigned when something was replaced.
func (in *Interp) substitute(ids []graph.ExprID, global bool) (types.Value, error) {
	re, err := in.pattern(ids[0])
	if err != nil {
		return types.Value{}, err
	}
	rv, err := in.eval(ids[1])
	if err != nil {
		return rv, err
	}
	repl := rv.AsStr(in.convfmt)

	target := ref{kind: refField}
	if len(ids) == 3 {
		if target, err = in.lvalue(ids[2]); err != nil {
			return types.Value{}, err
		}
	}
	tv, err := in.get(target)
	if err != nil {
		return tv, err
	}
	s := tv.AsStr(in.convfmt)

	limit := 1
	if global {
		limit = -1
	}
	matches := re.FindAllStringIndex(s, limit)
	if len(matches) == 0 {
		return types.Num(0), nil
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		expandReplacement(&sb, repl, s[m[0]:m[1]])
		last = m[1]
	}
	sb.WriteString(s[last:])
	if err := in.set(target, types.Str(sb.String())); err != nil {
		return types.Value{}, err
	}
	return types.Num(float64(len(matches))), nil
}

// expandReplacement writes repl with & replaced by the matched text. \&
// is a literal ampersand and \\ a literal backslash.
func expandReplacement(sb *strings.Builder, repl, matched string) {
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c == '\\' && i+1 < len(repl) && (repl[i+1] == '&' || repl[i+1] == '\\') {
			i++
			sb.WriteByte(repl[i])
			continue
		}
		if c == '&' {
			sb.WriteString(matched)
			continue
		}
		sb.WriteByte(c)
	}
}

// match sets RSTART and RLENGTH to the leftmost longest match and
// returns RSTART, or 0 when nothing matches.
func (in *Interp) match(ids []graph.ExprID) (types.Value, error) {
	v, err := in.eval(ids[0])
	if err != nil {
		return v, err
	}
	re, err := in.pattern(ids[1])
	if err != nil {
		return types.Value{}, err
	}
	s := v.AsStr(in.convfmt)
	start, length := 0, -1
	if loc := re.FindStringIndex(s); loc != nil {
		start = utf8.RuneCountInString(s[:loc[0]]) + 1
		length = utf8.RuneCountInString(s[loc[0]:loc[1]])
	}
	in.setNum(symtab.RSTART, float64(start))
	in.setNum(symtab.RLENGTH, float64(length))
	return types.Num(float64(start)), nil
}

// system runs a command after flushing all output, so the command's
// output lands after everything printed before it.
func (in *Interp) system(cmd string) (types.Value, error) {
	if err := in.streams.FlushAll(); err != nil {
		return types.Value{}, in.errorf("write error: %v", err)
	}
	in.logger.Debug("system", "cmd", cmd)
	status, err := in.streams.Launcher().Run(cmd)
	if err != nil {
		in.setErrno(err)
		return types.Num(-1), nil
	}
	return types.Num(float64(status)), nil
}
