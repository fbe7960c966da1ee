package translate

import (
	"hlscc/internal/ast"
	errs "hlscc/internal/errors"
)

// effects summarizes which variable roots an expression group reads
// and writes. Channel operations are excluded: the translator already
// fixes their order by emission.
type effects struct {
	reads  map[string]bool
	writes map[string]bool
}

func newEffects() *effects {
	return &effects{reads: make(map[string]bool), writes: make(map[string]bool)}
}

func (e *effects) merge(o *effects) {
	for k := range o.reads {
		e.reads[k] = true
	}
	for k := range o.writes {
		e.writes[k] = true
	}
}

// conflict reports a variable modified in one group and touched in the
// other.
func conflict(a, b *effects) (string, bool) {
	for k := range a.writes {
		if b.reads[k] || b.writes[k] {
			return k, true
		}
	}
	for k := range b.writes {
		if a.reads[k] {
			return k, true
		}
	}
	return "", false
}

// checkSequencing rejects expressions where sibling subexpressions with
// no sequencing between them modify and access the same variable.
func (f *frame) checkSequencing(e ast.Expr) error {
	_, err := f.collectEffects(e)
	return err
}

func (f *frame) checkSiblings(pos ast.Position, groups ...*effects) error {
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if name, bad := conflict(groups[i], groups[j]); bad {
				return errs.Invalidf(pos, "unsequenced modification and access to %s", name)
			}
		}
	}
	return nil
}

func rootName(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return rootName(x.X)
	case *ast.Ident:
		return x.Name
	case *ast.MemberExpr:
		return rootName(x.X)
	case *ast.IndexExpr:
		return rootName(x.X)
	}
	return ""
}

func (f *frame) collectEffects(e ast.Expr) (*effects, error) {
	out := newEffects()
	if e == nil {
		return out, nil
	}
	switch x := e.(type) {
	case *ast.IntLit, *ast.BoolLit:
		return out, nil
	case *ast.ParenExpr:
		return f.collectEffects(x.X)
	case *ast.Ident:
		out.reads[x.Name] = true
		return out, nil
	case *ast.ScopeExpr:
		return out, nil
	case *ast.UnaryExpr:
		return f.collectEffects(x.X)
	case *ast.CastExpr:
		return f.collectEffects(x.X)
	case *ast.IncDecExpr:
		inner, err := f.collectEffects(x.X)
		if err != nil {
			return nil, err
		}
		out.merge(inner)
		if name := rootName(x.X); name != "" {
			out.writes[name] = true
		}
		return out, nil
	case *ast.MemberExpr:
		return f.collectEffects(x.X)
	case *ast.IndexExpr:
		a, err := f.collectEffects(x.X)
		if err != nil {
			return nil, err
		}
		b, err := f.collectEffects(x.Index)
		if err != nil {
			return nil, err
		}
		if err := f.checkSiblings(x.Pos, a, b); err != nil {
			return nil, err
		}
		out.merge(a)
		out.merge(b)
		return out, nil
	case *ast.BinaryExpr:
		a, err := f.collectEffects(x.X)
		if err != nil {
			return nil, err
		}
		b, err := f.collectEffects(x.Y)
		if err != nil {
			return nil, err
		}
		// Short-circuit operators sequence their operands.
		if x.Op != "&&" && x.Op != "||" {
			if err := f.checkSiblings(x.Pos, a, b); err != nil {
				return nil, err
			}
		}
		out.merge(a)
		out.merge(b)
		return out, nil
	case *ast.CondExpr:
		c, err := f.collectEffects(x.Cond)
		if err != nil {
			return nil, err
		}
		t, err := f.collectEffects(x.Then)
		if err != nil {
			return nil, err
		}
		el, err := f.collectEffects(x.Else)
		if err != nil {
			return nil, err
		}
		if err := f.checkSiblings(x.Pos, c, t, el); err != nil {
			return nil, err
		}
		out.merge(c)
		out.merge(t)
		out.merge(el)
		return out, nil
	case *ast.AssignExpr:
		lhs, err := f.collectEffects(x.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := f.collectEffects(x.RHS)
		if err != nil {
			return nil, err
		}
		// Compound assignment reads the target with no sequencing
		// against the right side.
		if x.Op != "=" {
			if err := f.checkSiblings(x.Pos, lhs, rhs); err != nil {
				return nil, err
			}
		}
		out.merge(lhs)
		out.merge(rhs)
		if name := rootName(x.LHS); name != "" {
			out.writes[name] = true
		}
		return out, nil
	case *ast.InitListExpr:
		groups := make([]*effects, 0, len(x.Elts))
		for _, el := range x.Elts {
			g, err := f.collectEffects(el)
			if err != nil {
				return nil, err
			}
			groups = append(groups, g)
		}
		if err := f.checkSiblings(x.Pos, groups...); err != nil {
			return nil, err
		}
		for _, g := range groups {
			out.merge(g)
		}
		return out, nil
	case *ast.CallExpr:
		return f.callEffects(x)
	}
	return out, nil
}

func (f *frame) callEffects(x *ast.CallExpr) (*effects, error) {
	out := newEffects()
	var groups []*effects

	if m, ok := x.Fn.(*ast.MemberExpr); ok {
		recv, err := f.collectEffects(m.X)
		if err != nil {
			return nil, err
		}
		if !f.isChannelTyped(m.X) {
			if name := rootName(m.X); name != "" {
				// Method calls may mutate their receiver.
				recv.writes[name] = true
			}
		}
		groups = append(groups, recv)
	}

	var callee *ast.FuncDecl
	if id, ok := x.Fn.(*ast.Ident); ok {
		callee = f.tr.funcs[id.Name]
	}
	for i, a := range x.Args {
		g, err := f.collectEffects(a)
		if err != nil {
			return nil, err
		}
		// Argument evaluation order is unspecified, so once a call has
		// more than one argument a side effect while evaluating any of
		// them is unsequenced against the call itself. Writes the callee
		// makes through a reference parameter happen after evaluation
		// and only conflict across sibling groups.
		if len(x.Args) > 1 {
			for name := range g.writes {
				return nil, errs.Invalidf(x.Pos, "unsequenced modification and access to %s", name)
			}
		}
		if callee != nil && i < len(callee.Params) {
			p := callee.Params[i]
			if p.Type.Reference && !p.Type.Const {
				if name := rootName(a); name != "" {
					g.writes[name] = true
				}
			}
		}
		groups = append(groups, g)
	}

	if err := f.checkSiblings(x.Pos, groups...); err != nil {
		return nil, err
	}
	for _, g := range groups {
		out.merge(g)
	}
	return out, nil
}
