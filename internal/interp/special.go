package interp

import (
	"math"
	"strconv"

	"github.com/kolkov/bbawk/internal/record"
	"github.com/kolkov/bbawk/internal/runtime"
	"github.com/kolkov/bbawk/internal/symtab"
	"github.com/kolkov/bbawk/internal/types"
)

// getGlobal reads global slot i as a scalar. NF is computed from the
// current record.
func (in *Interp) getGlobal(i int) (types.Value, error) {
	if i == symtab.NF {
		return types.Num(float64(in.rec.NF())), nil
	}
	v, err := in.globals[i].Get()
	if err != nil {
		return v, in.errorf("can't use array %s in scalar context", in.prog.Syms.VarName(i))
	}
	return v, nil
}

// setGlobal assigns global slot i, running the side effects of the
// built-in variables.
func (in *Interp) setGlobal(i int, v types.Value) error {
	if i == symtab.NF {
		f := v.AsNum()
		if math.IsNaN(f) || f < 0 || f > maxField {
			return in.errorf("NF set to out of range value %s", strconv.FormatFloat(f, 'g', -1, 64))
		}
		in.rec.SetNF(int(f), in.ofs)
		return nil
	}
	if err := in.globals[i].Set(v); err != nil {
		return in.errorf("can't assign to %s; it's an array name", in.prog.Syms.VarName(i))
	}
	if i >= symtab.NumSpecial {
		return nil
	}

	switch i {
	case symtab.FS:
		return in.compileFS()
	case symtab.RS:
		if err := in.compileRS(); err != nil {
			return err
		}
		return in.compileFS()
	case symtab.IGNORECASE:
		in.fold = v.AsBool()
		if err := in.compileRS(); err != nil {
			return err
		}
		return in.compileFS()
	case symtab.OFS:
		in.ofs = v.AsStr(in.convfmt)
	case symtab.ORS:
		in.ors = v.AsStr(in.convfmt)
	case symtab.SUBSEP:
		in.subsep = v.AsStr(in.convfmt)
	case symtab.CONVFMT:
		in.convfmt = v.AsStr(in.convfmt)
	case symtab.OFMT:
		in.ofmt = v.AsStr(in.convfmt)
	}
	return nil
}

func (in *Interp) specialStr(i int) string {
	v, _ := in.globals[i].Get()
	return v.AsStr(in.convfmt)
}

// compileFS rebuilds the field splitter from FS. Records already read
// keep the splitter they were read with.
func (in *Interp) compileFS() error {
	fs := in.specialStr(symtab.FS)
	sp, err := record.NewSplitter(fs, in.rsep.IsParagraph(), in.fold, in.regexes)
	if err != nil {
		return in.errorf("invalid FS %q: %v", fs, err)
	}
	in.splitter = sp
	return nil
}

func (in *Interp) compileRS() error {
	rs := in.specialStr(symtab.RS)
	switch {
	case rs == "":
		in.rsep = runtime.ParagraphSep()
		return nil
	case len(rs) == 1 && !(in.fold && isLetter(rs[0])):
		in.rsep = runtime.CharSep(rs[0])
		return nil
	}
	pattern := rs
	if len(rs) == 1 {
		// a letter under IGNORECASE
		pattern = "[" + rs + "]"
	}
	re, err := in.regexes.Get(pattern, in.fold)
	if err != nil {
		return in.errorf("invalid RS %q: %v", rs, err)
	}
	in.rsep = runtime.RegexSep(re)
	return nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (in *Interp) incr(slot int) {
	v, _ := in.globals[slot].Get()
	in.globals[slot].Set(types.Num(v.AsNum() + 1))
}

func (in *Interp) setNum(slot int, n float64) {
	in.globals[slot].Set(types.Num(n))
}
