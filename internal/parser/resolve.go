package parser

import (
	"github.com/kolkov/bbawk/internal/graph"
)

// resolve checks calls against definitions and infers which parameters
// are arrays. A parameter passed on to a callee's array parameter is an
// array too, so inference runs to a fixpoint over the call sites.
func (p *parser) resolve() {
	funcs := p.prog.Funcs
	for _, c := range p.calls {
		f := &funcs[c.callee]
		if !f.Defined {
			p.errorf(c.pos, "calling undefined function %s", f.Name)
		}
		if len(c.args) > len(f.Params) {
			p.errorf(c.pos, "function %s called with %d args, accepts only %d", f.Name, len(c.args), len(f.Params))
		}
	}

	for changed := true; changed; {
		changed = false
		for _, c := range p.calls {
			if c.caller < 0 {
				continue
			}
			callee, caller := &funcs[c.callee], &funcs[c.caller]
			for i, arg := range c.args {
				e := p.prog.Expr(arg)
				if e.Op != graph.OpLocal || !callee.ArrayParams[i] || caller.ArrayParams[e.Slot] {
					continue
				}
				caller.ArrayParams[e.Slot] = true
				changed = true
			}
		}
	}
}
