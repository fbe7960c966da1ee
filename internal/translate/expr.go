package translate

import (
	"hlscc/internal/ast"
	"hlscc/internal/ctype"
	errs "hlscc/internal/errors"
	"hlscc/internal/ir"
)

// step is one access into a compound lvalue: a flattened tuple field,
// or an array element when field is -1.
type step struct {
	field int
	index *ir.Node
	t     ctype.Type
}

// lvalue is a root symbol plus an access path. Stores rebuild the root
// value along the path and rebind the symbol under the current guard.
type lvalue struct {
	sym   *symbol
	steps []step
	t     ctype.Type
	pos   ast.Position
}

func (f *frame) lvalueOf(e ast.Expr) (*lvalue, error) {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return f.lvalueOf(x.X)
	case *ast.Ident:
		if x.Name == "this" {
			if f.thisSym == nil {
				return nil, errs.Invalidf(x.Pos, "this outside a method")
			}
			return &lvalue{sym: f.thisSym, t: f.thisSym.typ, pos: x.Pos}, nil
		}
		if sym := f.lookup(x.Name); sym != nil {
			return &lvalue{sym: sym, t: sym.typ, pos: x.Pos}, nil
		}
		// Unqualified member access inside a method body.
		if f.thisSym != nil {
			if st, ok := f.thisSym.typ.(*ctype.StructType); ok {
				if i := st.FieldIndex(x.Name); i >= 0 {
					lv := &lvalue{sym: f.thisSym, t: f.thisSym.typ, pos: x.Pos}
					return f.member(lv, x.Name, x.Pos)
				}
			}
		}
		return nil, errs.NotFoundf(x.Pos, "unknown name %s", x.Name)
	case *ast.MemberExpr:
		lv, err := f.lvalueOf(x.X)
		if err != nil {
			return nil, err
		}
		return f.member(lv, x.Member, x.Pos)
	case *ast.IndexExpr:
		lv, err := f.lvalueOf(x.X)
		if err != nil {
			return nil, err
		}
		at, ok := lv.t.(*ctype.ArrayType)
		if !ok {
			return nil, errs.Invalidf(x.Pos, "subscript of non-array type %s", lv.t)
		}
		idx, err := f.expr(x.Index)
		if err != nil {
			return nil, err
		}
		out := &lvalue{sym: lv.sym, t: at.Elem, pos: x.Pos}
		out.steps = append(append(out.steps, lv.steps...), step{field: -1, index: idx.n, t: at.Elem})
		return out, nil
	}
	return nil, errs.Invalidf(e.NodePos(), "expression is not assignable")
}

func (f *frame) member(lv *lvalue, name string, pos ast.Position) (*lvalue, error) {
	st, ok := lv.t.(*ctype.StructType)
	if !ok {
		return nil, errs.Invalidf(pos, "member access on non-struct type %s", lv.t)
	}
	i := st.FieldIndex(name)
	if i < 0 {
		return nil, errs.NotFoundf(pos, "%s has no field %s", st.Name, name)
	}
	out := &lvalue{sym: lv.sym, t: st.Fields[i].Type, pos: pos}
	out.steps = append(out.steps, lv.steps...)
	if !st.NoTuple {
		out.steps = append(out.steps, step{field: i, t: st.Fields[i].Type})
	}
	return out, nil
}

func (f *frame) load(lv *lvalue) value {
	n := lv.sym.node
	for _, s := range lv.steps {
		if s.field >= 0 {
			n = f.tr.g.TupleIndex(n, s.field)
		} else {
			n = f.tr.g.ArrayIndex(n, s.index)
		}
	}
	return value{t: lv.t, n: n}
}

// store rebinds the lvalue's root symbol, gated by the activation
// condition of the current statement.
func (f *frame) store(lv *lvalue, n *ir.Node) error {
	sym := lv.sym
	switch {
	case sym.kind == symInduction:
		return errs.Invalidf(lv.pos, "assignment to loop induction variable %s is forbidden in this context", sym.name)
	case sym.kind != symVar:
		return errs.Invalidf(lv.pos, "%s is not assignable", sym.name)
	case sym.ro:
		return errs.Invalidf(lv.pos, "assignment to const %s", sym.name)
	}
	newRoot := f.rebuild(sym.node, lv.steps, n)
	sym.node = f.tr.sel(f.cc(), newRoot, sym.node)
	return nil
}

func (f *frame) rebuild(cur *ir.Node, steps []step, repl *ir.Node) *ir.Node {
	if len(steps) == 0 {
		return repl
	}
	s := steps[0]
	g := f.tr.g
	if s.field >= 0 {
		tt := cur.Type.(*ir.TupleType)
		elems := make([]*ir.Node, len(tt.Elems))
		for i := range tt.Elems {
			el := g.TupleIndex(cur, i)
			if i == s.field {
				el = f.rebuild(el, steps[1:], repl)
			}
			elems[i] = el
		}
		return g.MakeTuple(elems...)
	}
	child := g.ArrayIndex(cur, s.index)
	return g.ArrayUpdate(cur, s.index, f.rebuild(child, steps[1:], repl))
}

func (f *frame) expr(e ast.Expr) (value, error) {
	t := f.tr
	switch x := e.(type) {
	case *ast.IntLit:
		it := litType(x.Value)
		return value{t: it, n: t.intLiteral(it, x.Value)}, nil
	case *ast.BoolLit:
		return value{t: &ctype.BoolType{}, n: t.lit1(x.Value)}, nil
	case *ast.ParenExpr:
		return f.expr(x.X)
	case *ast.Ident:
		return f.identValue(x)
	case *ast.UnaryExpr:
		return f.unary(x)
	case *ast.IncDecExpr:
		return f.incDec(x)
	case *ast.BinaryExpr:
		lhs, err := f.expr(x.X)
		if err != nil {
			return value{}, err
		}
		rhs, err := f.expr(x.Y)
		if err != nil {
			return value{}, err
		}
		return f.binaryValue(x.Op, lhs, rhs, x.Pos)
	case *ast.AssignExpr:
		return f.assign(x)
	case *ast.CondExpr:
		return f.ternary(x)
	case *ast.CallExpr:
		return f.call(x)
	case *ast.MemberExpr:
		return f.memberValue(x)
	case *ast.ScopeExpr:
		return f.scopeValue(x)
	case *ast.IndexExpr:
		v, err := f.expr(x.X)
		if err != nil {
			return value{}, err
		}
		at, ok := v.t.(*ctype.ArrayType)
		if !ok {
			return value{}, errs.Invalidf(x.Pos, "subscript of non-array type %s", v.t)
		}
		idx, err := f.expr(x.Index)
		if err != nil {
			return value{}, err
		}
		return value{t: at.Elem, n: t.g.ArrayIndex(v.n, idx.n)}, nil
	case *ast.CastExpr:
		to, err := f.res.Resolve(x.Type)
		if err != nil {
			return value{}, err
		}
		v, err := f.expr(x.X)
		if err != nil {
			return value{}, err
		}
		return f.convert(v, to, x.Pos)
	case *ast.InitListExpr:
		return value{}, errs.Invalidf(x.Pos, "initializer list outside a declaration")
	}
	return value{}, errs.Unimplementedf(e.NodePos(), "unsupported expression")
}

func (f *frame) identValue(x *ast.Ident) (value, error) {
	t := f.tr
	if x.Name == "this" {
		if f.thisSym == nil {
			return value{}, errs.Invalidf(x.Pos, "this outside a method")
		}
		return value{t: f.thisSym.typ, n: f.thisSym.node}, nil
	}
	if sym := f.lookup(x.Name); sym != nil {
		switch sym.kind {
		case symVar:
			return value{t: sym.typ, n: sym.node}, nil
		case symInduction, symConst:
			if sym.isBool {
				return value{t: &ctype.BoolType{}, n: t.lit1(sym.val != 0)}, nil
			}
			it, ok := sym.typ.(*ctype.IntType)
			if !ok {
				it = litType(sym.val)
			}
			return value{t: it, n: t.intLiteral(it, sym.val)}, nil
		case symChannel:
			return value{}, errs.Invalidf(x.Pos, "channel %s cannot be used as a value", x.Name)
		}
	}
	// Template value bindings behave like constants.
	if b, ok := f.res.Bindings()[x.Name]; ok && b.Type == nil {
		if b.IsBool {
			return value{t: &ctype.BoolType{}, n: t.lit1(b.Value != 0)}, nil
		}
		it := litType(b.Value)
		return value{t: it, n: t.intLiteral(it, b.Value)}, nil
	}
	// Unqualified member access inside a method body.
	if f.thisSym != nil {
		if st, ok := f.thisSym.typ.(*ctype.StructType); ok {
			if st.FieldIndex(x.Name) >= 0 {
				lv, err := f.lvalueOf(x)
				if err != nil {
					return value{}, err
				}
				return f.load(lv), nil
			}
		}
	}
	return value{}, errs.NotFoundf(x.Pos, "unknown name %s", x.Name)
}

func (f *frame) memberValue(x *ast.MemberExpr) (value, error) {
	v, err := f.expr(x.X)
	if err != nil {
		return value{}, err
	}
	st, ok := v.t.(*ctype.StructType)
	if !ok {
		return value{}, errs.Invalidf(x.Pos, "member access on non-struct type %s", v.t)
	}
	i := st.FieldIndex(x.Member)
	if i < 0 {
		return value{}, errs.NotFoundf(x.Pos, "%s has no field %s", st.Name, x.Member)
	}
	if st.NoTuple {
		return value{t: st.Fields[i].Type, n: v.n}, nil
	}
	return value{t: st.Fields[i].Type, n: f.tr.g.TupleIndex(v.n, i)}, nil
}

// scopeValue resolves Name::member for static constant members.
func (f *frame) scopeValue(x *ast.ScopeExpr) (value, error) {
	decl, ok := f.tr.structs[x.Scope]
	if !ok {
		return value{}, errs.NotFoundf(x.Pos, "unknown type %s", x.Scope)
	}
	for _, fd := range decl.Fields {
		if fd.Name != x.Name || !fd.Static {
			continue
		}
		if fd.Init == nil {
			return value{}, errs.Invalidf(x.Pos, "static member %s::%s has no initializer", x.Scope, x.Name)
		}
		v, _, err := f.res.EvalConst(fd.Init)
		if err != nil {
			return value{}, err
		}
		ft, err := f.res.Resolve(fd.Type)
		if err != nil {
			return value{}, err
		}
		it, ok := ft.(*ctype.IntType)
		if !ok {
			return value{}, errs.Unimplementedf(x.Pos, "static member %s::%s is not integral", x.Scope, x.Name)
		}
		return value{t: it, n: f.tr.intLiteral(it, v)}, nil
	}
	return value{}, errs.NotFoundf(x.Pos, "%s has no static member %s", x.Scope, x.Name)
}

func (f *frame) unary(x *ast.UnaryExpr) (value, error) {
	v, err := f.expr(x.X)
	if err != nil {
		return value{}, err
	}
	if st, ok := v.t.(*ctype.StructType); ok {
		return f.unaryOverload(x.Op, v, st, x.Pos)
	}
	return f.numericUnary(x.Op, v, x.Pos)
}

func (f *frame) numericUnary(op string, v value, pos ast.Position) (value, error) {
	t := f.tr
	switch op {
	case "+":
		pt := ctype.Promote(v.t)
		return f.convert(v, pt, pos)
	case "-":
		pt := ctype.Promote(v.t).(*ctype.IntType)
		pv, err := f.convert(v, pt, pos)
		if err != nil {
			return value{}, err
		}
		return value{t: pt, n: t.g.Unary("neg", &ir.BitsType{Width: pt.Width}, pv.n)}, nil
	case "~":
		pt := ctype.Promote(v.t).(*ctype.IntType)
		pv, err := f.convert(v, pt, pos)
		if err != nil {
			return value{}, err
		}
		return value{t: pt, n: t.g.Unary("not", &ir.BitsType{Width: pt.Width}, pv.n)}, nil
	case "!":
		bv, err := f.toBool(v, pos)
		if err != nil {
			return value{}, err
		}
		return value{t: &ctype.BoolType{}, n: t.g.Unary("lnot", &ir.BitsType{Width: 1}, bv.n)}, nil
	case "*":
		return value{}, errs.Unimplementedf(pos, "pointer dereference is not supported")
	}
	return value{}, errs.Unimplementedf(pos, "unsupported unary operator %s", op)
}

func (f *frame) incDec(x *ast.IncDecExpr) (value, error) {
	lv, err := f.lvalueOf(x.X)
	if err != nil {
		return value{}, err
	}
	if st, ok := lv.t.(*ctype.StructType); ok {
		return f.incDecOverload(x, lv, st)
	}
	cur := f.load(lv)
	op := "+"
	if x.Op == "--" {
		op = "-"
	}
	one := value{t: &ctype.IntType{Width: 32, Signed: true}, n: f.tr.intLiteral(&ctype.IntType{Width: 32, Signed: true}, 1)}
	next, err := f.binaryValue(op, cur, one, x.Pos)
	if err != nil {
		return value{}, err
	}
	stored, err := f.convert(next, lv.t, x.Pos)
	if err != nil {
		return value{}, err
	}
	if err := f.store(lv, stored.n); err != nil {
		return value{}, err
	}
	if x.Prefix {
		return stored, nil
	}
	return cur, nil
}

func (f *frame) assign(x *ast.AssignExpr) (value, error) {
	lv, err := f.lvalueOf(x.LHS)
	if err != nil {
		return value{}, err
	}
	if x.Op == "=" {
		v, err := f.exprWithType(x.RHS, lv.t)
		if err != nil {
			return value{}, err
		}
		if err := f.store(lv, v.n); err != nil {
			return value{}, err
		}
		return value{t: lv.t, n: v.n}, nil
	}

	baseOp := x.Op[:len(x.Op)-1]
	if st, ok := lv.t.(*ctype.StructType); ok {
		return f.compoundOverload(x.Op, lv, st, x.RHS, x.Pos)
	}
	cur := f.load(lv)
	rhs, err := f.expr(x.RHS)
	if err != nil {
		return value{}, err
	}
	next, err := f.binaryValue(baseOp, cur, rhs, x.Pos)
	if err != nil {
		return value{}, err
	}
	stored, err := f.convert(next, lv.t, x.Pos)
	if err != nil {
		return value{}, err
	}
	if err := f.store(lv, stored.n); err != nil {
		return value{}, err
	}
	return stored, nil
}

// ternary gates each arm so side effects inside an arm only apply when
// that arm is selected.
func (f *frame) ternary(x *ast.CondExpr) (value, error) {
	cv, err := f.expr(x.Cond)
	if err != nil {
		return value{}, err
	}
	cb, err := f.toBool(cv, x.Pos)
	if err != nil {
		return value{}, err
	}

	f.pushCond(cb.n)
	thenV, err := f.expr(x.Then)
	f.popCond()
	if err != nil {
		return value{}, err
	}

	f.pushCond(f.tr.not1(cb.n))
	elseV, err := f.expr(x.Else)
	f.popCond()
	if err != nil {
		return value{}, err
	}

	if !ctype.Equal(thenV.t, elseV.t) {
		_, thenInt := thenV.t.(*ctype.IntType)
		_, elseInt := elseV.t.(*ctype.IntType)
		_, thenBool := thenV.t.(*ctype.BoolType)
		_, elseBool := elseV.t.(*ctype.BoolType)
		if (thenInt || thenBool) && (elseInt || elseBool) {
			common := ctype.Common(thenV.t, elseV.t)
			if thenV, err = f.convert(thenV, common, x.Pos); err != nil {
				return value{}, err
			}
			if elseV, err = f.convert(elseV, common, x.Pos); err != nil {
				return value{}, err
			}
		} else {
			return value{}, errs.Invalidf(x.Pos, "mismatched ternary arms: %s and %s", thenV.t, elseV.t)
		}
	}
	return value{t: thenV.t, n: f.tr.g.Select(cb.n, thenV.n, elseV.n)}, nil
}

func numericOpcode(op string, signed bool) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		if signed {
			return "sdiv"
		}
		return "udiv"
	case "%":
		if signed {
			return "smod"
		}
		return "umod"
	case "&":
		return "and"
	case "|":
		return "or"
	case "^":
		return "xor"
	case "==":
		return "eq"
	case "!=":
		return "ne"
	case "<":
		if signed {
			return "slt"
		}
		return "ult"
	case "<=":
		if signed {
			return "sle"
		}
		return "ule"
	case ">":
		if signed {
			return "sgt"
		}
		return "ugt"
	case ">=":
		if signed {
			return "sge"
		}
		return "uge"
	}
	return ""
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (f *frame) binaryValue(op string, lhs, rhs value, pos ast.Position) (value, error) {
	t := f.tr
	_, lStruct := lhs.t.(*ctype.StructType)
	_, rStruct := rhs.t.(*ctype.StructType)
	if lStruct || rStruct {
		return f.binaryOverload(op, lhs, rhs, pos)
	}

	switch op {
	case "&&", "||":
		lb, err := f.toBool(lhs, pos)
		if err != nil {
			return value{}, err
		}
		rb, err := f.toBool(rhs, pos)
		if err != nil {
			return value{}, err
		}
		sym := "and"
		if op == "||" {
			sym = "or"
		}
		return value{t: &ctype.BoolType{}, n: t.g.Binary(sym, &ir.BitsType{Width: 1}, lb.n, rb.n)}, nil

	case "<<", ">>":
		lt := ctype.Promote(lhs.t).(*ctype.IntType)
		lp, err := f.convert(lhs, lt, pos)
		if err != nil {
			return value{}, err
		}
		rt := ctype.Promote(rhs.t)
		rp, err := f.convert(rhs, rt, pos)
		if err != nil {
			return value{}, err
		}
		sym := "shll"
		if op == ">>" {
			if lt.Signed {
				sym = "shra"
			} else {
				sym = "shrl"
			}
		}
		return value{t: lt, n: t.g.Binary(sym, &ir.BitsType{Width: lt.Width}, lp.n, rp.n)}, nil
	}

	common := ctype.Common(lhs.t, rhs.t)
	lc, err := f.convert(lhs, common, pos)
	if err != nil {
		return value{}, err
	}
	rc, err := f.convert(rhs, common, pos)
	if err != nil {
		return value{}, err
	}
	sym := numericOpcode(op, common.Signed)
	if sym == "" {
		return value{}, errs.Unimplementedf(pos, "unsupported binary operator %s", op)
	}
	if isComparison(op) {
		return value{t: &ctype.BoolType{}, n: t.g.Binary(sym, &ir.BitsType{Width: 1}, lc.n, rc.n)}, nil
	}
	return value{t: common, n: t.g.Binary(sym, &ir.BitsType{Width: common.Width}, lc.n, rc.n)}, nil
}

// exprWithType translates with a target type, giving initializer lists
// their shape and applying implicit conversion.
func (f *frame) exprWithType(e ast.Expr, want ctype.Type) (value, error) {
	if il, ok := e.(*ast.InitListExpr); ok {
		n, err := f.initList(want, il)
		if err != nil {
			return value{}, err
		}
		return value{t: want, n: n}, nil
	}
	v, err := f.expr(e)
	if err != nil {
		return value{}, err
	}
	return f.convert(v, want, e.NodePos())
}

func (f *frame) initList(want ctype.Type, il *ast.InitListExpr) (*ir.Node, error) {
	t := f.tr
	switch wt := want.(type) {
	case *ctype.ArrayType:
		if len(il.Elts) > wt.Len {
			return nil, errs.Invalidf(il.Pos, "too many initializers for %s", want)
		}
		elems := make([]*ir.Node, wt.Len)
		for i := 0; i < wt.Len; i++ {
			if i < len(il.Elts) {
				v, err := f.exprWithType(il.Elts[i], wt.Elem)
				if err != nil {
					return nil, err
				}
				elems[i] = v.n
			} else {
				z, err := t.zeroNode(wt.Elem, il.Pos)
				if err != nil {
					return nil, err
				}
				elems[i] = z
			}
		}
		lt, err := t.layout(wt.Elem, il.Pos)
		if err != nil {
			return nil, err
		}
		return t.g.MakeArray(lt, elems...), nil
	case *ctype.StructType:
		if len(il.Elts) > len(wt.Fields) {
			return nil, errs.Invalidf(il.Pos, "too many initializers for %s", wt.Name)
		}
		if wt.NoTuple {
			if len(il.Elts) == 0 {
				return t.zeroNode(wt.Fields[0].Type, il.Pos)
			}
			v, err := f.exprWithType(il.Elts[0], wt.Fields[0].Type)
			if err != nil {
				return nil, err
			}
			return v.n, nil
		}
		elems := make([]*ir.Node, len(wt.Fields))
		for i, fl := range wt.Fields {
			if i < len(il.Elts) {
				v, err := f.exprWithType(il.Elts[i], fl.Type)
				if err != nil {
					return nil, err
				}
				elems[i] = v.n
			} else {
				z, err := t.zeroNode(fl.Type, il.Pos)
				if err != nil {
					return nil, err
				}
				elems[i] = z
			}
		}
		return t.g.MakeTuple(elems...), nil
	default:
		if len(il.Elts) == 0 {
			return t.zeroNode(want, il.Pos)
		}
		if len(il.Elts) == 1 {
			v, err := f.exprWithType(il.Elts[0], want)
			if err != nil {
				return nil, err
			}
			return v.n, nil
		}
		return nil, errs.Invalidf(il.Pos, "scalar initializer with %d values", len(il.Elts))
	}
}
