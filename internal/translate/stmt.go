package translate

import (
	"hlscc/internal/ast"
	"hlscc/internal/ctype"
	errs "hlscc/internal/errors"
	"hlscc/internal/ir"
)

func (f *frame) stmts(list []ast.Stmt) error {
	for _, s := range list {
		if err := f.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *frame) stmt(s ast.Stmt) error {
	switch x := s.(type) {
	case *ast.BlockStmt:
		f.pushScope()
		err := f.stmts(x.Stmts)
		f.popScope()
		return err
	case *ast.DeclStmt:
		for _, d := range x.Decls {
			if err := f.declareVar(d); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStmt:
		if err := f.checkSequencing(x.X); err != nil {
			return err
		}
		_, err := f.expr(x.X)
		return err
	case *ast.IfStmt:
		return f.ifStmt(x)
	case *ast.SwitchStmt:
		return f.switchStmt(x)
	case *ast.ForStmt:
		return f.forStmt(x)
	case *ast.BreakStmt:
		return f.breakStmt(x)
	case *ast.ContinueStmt:
		return f.continueStmt(x)
	case *ast.ReturnStmt:
		return f.returnStmt(x)
	}
	return errs.Unimplementedf(s.NodePos(), "unsupported statement")
}

func (f *frame) declareVar(d *ast.VarDecl) error {
	vt, err := f.res.Resolve(d.Type)
	if err != nil {
		return err
	}
	vt, err = f.res.ApplyDims(vt, d.ArrayDims)
	if err != nil {
		return err
	}
	if _, ok := vt.(*ctype.ChannelType); ok {
		return errs.Invalidf(d.Pos, "channels may only be declared as parameters")
	}

	var v value
	if d.Init != nil {
		if err := f.checkSequencing(d.Init); err != nil {
			return err
		}
		v, err = f.exprWithType(d.Init, vt)
	} else {
		v, err = f.construct(vt, d.CtorArgs, d.Pos)
	}
	if err != nil {
		return err
	}
	f.declare(&symbol{name: d.Name, kind: symVar, typ: vt, node: v.n, ro: d.Type.Const})
	return nil
}

func (f *frame) ifStmt(x *ast.IfStmt) error {
	cv, err := f.expr(x.Cond)
	if err != nil {
		return err
	}
	cb, err := f.toBool(cv, x.Pos)
	if err != nil {
		return err
	}

	f.pushCond(cb.n)
	err = f.stmt(x.Then)
	f.popCond()
	if err != nil {
		return err
	}
	if x.Else != nil {
		f.pushCond(f.tr.not1(cb.n))
		err = f.stmt(x.Else)
		f.popCond()
		if err != nil {
			return err
		}
	}
	return nil
}

// switchStmt lowers a switch into per-clause activation conditions.
// Execution falls from clause to clause until one ends in a break, so a
// clause is active when its own label matches or any earlier clause was
// active and did not break. The default clause matches exactly when no
// case label does, wherever it appears in source order.
func (f *frame) switchStmt(x *ast.SwitchStmt) error {
	t := f.tr
	tag, err := f.expr(x.Tag)
	if err != nil {
		return err
	}
	tt, ok := ctype.Promote(tag.t).(*ctype.IntType)
	if !ok {
		return errs.Invalidf(x.Pos, "switch tag must have an integer type")
	}
	tv, err := f.convert(tag, tt, x.Pos)
	if err != nil {
		return err
	}

	res := f.constResolver()
	matches := make([]*ir.Node, len(x.Cases))
	var anyMatch *ir.Node
	for i, c := range x.Cases {
		if c.Default {
			continue
		}
		cv, _, err := res.EvalConst(c.Value)
		if err != nil {
			return err
		}
		lit := t.intLiteral(tt, cv)
		matches[i] = t.g.Binary("eq", &ir.BitsType{Width: 1}, tv.n, lit)
		anyMatch = t.or2(anyMatch, matches[i])
	}

	var fall *ir.Node // nil means false here
	for i, c := range x.Cases {
		match := matches[i]
		if c.Default {
			if anyMatch == nil {
				match = t.lit1(true)
			} else {
				match = t.not1(anyMatch)
			}
		}
		act := t.or2(fall, match)

		f.pushCond(act)
		b := &breakable{clauseCondDepth: len(f.conds)}
		f.breaks = append(f.breaks, b)
		for _, s := range c.Stmts {
			if b.clauseEnded {
				break
			}
			if err := f.stmt(s); err != nil {
				f.breaks = f.breaks[:len(f.breaks)-1]
				f.popCond()
				return err
			}
		}
		f.breaks = f.breaks[:len(f.breaks)-1]
		f.popCond()

		if c.HasBreak || b.clauseEnded {
			fall = nil
		} else {
			fall = act
		}
	}
	return nil
}

func (f *frame) breakStmt(x *ast.BreakStmt) error {
	if len(f.breaks) == 0 {
		return errs.Invalidf(x.Pos, "break outside a loop or switch")
	}
	b := f.breaks[len(f.breaks)-1]
	if !b.isLoop {
		if len(f.conds) > b.clauseCondDepth {
			return errs.Unimplementedf(x.Pos, "Conditional breaks are not supported")
		}
		b.clauseEnded = true
		return nil
	}
	g := f.cc()
	if g == nil {
		g = f.tr.lit1(true)
	}
	b.loop.brk = f.tr.or2(b.loop.brk, g)
	f.invalidateCC()
	return nil
}

func (f *frame) continueStmt(x *ast.ContinueStmt) error {
	if f.loop == nil {
		return errs.Invalidf(x.Pos, "continue outside a loop")
	}
	g := f.cc()
	if g == nil {
		g = f.tr.lit1(true)
	}
	f.loop.cont = f.tr.or2(f.loop.cont, g)
	f.invalidateCC()
	return nil
}

func (f *frame) returnStmt(x *ast.ReturnStmt) error {
	_, void := f.retType.(*ctype.VoidType)
	if void && x.Result != nil {
		return errs.Invalidf(x.Pos, "returning a value from a void function")
	}
	if !void && x.Result == nil {
		return errs.Invalidf(x.Pos, "return without a value")
	}

	g := f.cc()
	if x.Result != nil {
		if err := f.checkSequencing(x.Result); err != nil {
			return err
		}
		v, err := f.exprWithType(x.Result, f.retType)
		if err != nil {
			return err
		}
		f.retVal = f.tr.sel(g, v.n, f.retVal)
	}
	if g == nil {
		g = f.tr.lit1(true)
	}
	f.returned = f.tr.or2(f.returned, g)
	f.invalidateCC()
	return nil
}

// constResolver derives a resolver whose bindings include the induction
// variables and integer constants currently in scope, so loop bounds
// and case labels can refer to them.
func (f *frame) constResolver() *ctype.Resolver {
	bindings := make(map[string]ctype.Binding, len(f.res.Bindings()))
	for k, v := range f.res.Bindings() {
		bindings[k] = v
	}
	for _, scope := range f.scopes {
		for name, sym := range scope {
			switch sym.kind {
			case symInduction, symConst:
				bindings[name] = ctype.Binding{Value: sym.val, IsBool: sym.isBool}
			case symVar:
				if sym.ro && sym.node != nil && sym.node.Op == ir.OpLiteral {
					if b, ok := sym.node.Lit.(ir.Bits); ok {
						v := b.Int64()
						if !isSignedType(sym.typ) {
							v = int64(b.Uint64())
						}
						bindings[name] = ctype.Binding{Value: v}
					}
				}
			}
		}
	}
	return f.res.WithBindings(bindings)
}

func isSignedType(t ctype.Type) bool {
	it, ok := t.(*ctype.IntType)
	return ok && it.Signed
}

// forStmt fully unrolls the loop. The induction variable is evaluated
// statically per iteration; break and continue inside the body remain
// dynamic and contribute to the activation conditions of the emitted
// statements.
func (f *frame) forStmt(x *ast.ForStmt) error {
	if !x.Unroll {
		return errs.Unimplementedf(x.Pos, "only fully unrolled loops are supported; use #pragma hls_unroll yes")
	}
	if x.Init == nil {
		return errs.Invalidf(x.Pos, "unrolled for loop must have an initializer")
	}
	if x.Cond == nil {
		return errs.Invalidf(x.Pos, "unrolled for loop must have a condition")
	}
	if x.Inc == nil {
		return errs.Invalidf(x.Pos, "unrolled for loop must have an increment")
	}

	ds, ok := x.Init.(*ast.DeclStmt)
	if !ok || len(ds.Decls) != 1 || ds.Decls[0].Init == nil {
		return errs.Invalidf(x.Init.NodePos(), "unrolled for loop must have an initializer declaring its induction variable")
	}
	d := ds.Decls[0]
	dt, err := f.res.Resolve(d.Type)
	if err != nil {
		return err
	}
	if _, ok := dt.(*ctype.IntType); !ok {
		return errs.Invalidf(d.Pos, "induction variable %s must have an integer type", d.Name)
	}

	f.pushScope()
	defer f.popScope()

	v0, _, err := f.constResolver().EvalConst(d.Init)
	if err != nil {
		return err
	}
	sym := &symbol{name: d.Name, kind: symInduction, typ: dt, val: v0}
	f.declare(sym)

	loop := &loopCtx{outer: f.loop, indVar: sym}
	f.loop = loop
	f.breaks = append(f.breaks, &breakable{isLoop: true, loop: loop})
	f.invalidateCC()
	defer func() {
		f.breaks = f.breaks[:len(f.breaks)-1]
		f.loop = loop.outer
		f.invalidateCC()
	}()

	for iter := 0; ; iter++ {
		if iter >= maxUnrollIterations {
			return errs.Invalidf(x.Pos, "loop exceeds maximum unroll iterations (%d)", maxUnrollIterations)
		}
		cv, _, err := f.constResolver().EvalConst(x.Cond)
		if err != nil {
			return err
		}
		if cv == 0 {
			break
		}
		if v, ok := litBoolValue(loop.brk); ok && v {
			break
		}

		loop.cont = nil
		f.invalidateCC()

		f.pushScope()
		err = f.stmts(blockStmts(x.Body))
		f.popScope()
		if err != nil {
			return err
		}

		next, err := f.stepInduction(x.Inc, sym)
		if err != nil {
			return err
		}
		sym.val = next
	}
	return nil
}

func blockStmts(s ast.Stmt) []ast.Stmt {
	if b, ok := s.(*ast.BlockStmt); ok {
		return b.Stmts
	}
	return []ast.Stmt{s}
}

// stepInduction applies one increment to the induction variable at
// compile time.
func (f *frame) stepInduction(inc ast.Expr, sym *symbol) (int64, error) {
	switch x := inc.(type) {
	case *ast.ParenExpr:
		return f.stepInduction(x.X, sym)
	case *ast.IncDecExpr:
		id, ok := x.X.(*ast.Ident)
		if !ok || id.Name != sym.name {
			break
		}
		if x.Op == "++" {
			return sym.val + 1, nil
		}
		return sym.val - 1, nil
	case *ast.AssignExpr:
		id, ok := x.LHS.(*ast.Ident)
		if !ok || id.Name != sym.name {
			break
		}
		rv, _, err := f.constResolver().EvalConst(x.RHS)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case "=":
			return rv, nil
		case "+=":
			return sym.val + rv, nil
		case "-=":
			return sym.val - rv, nil
		case "*=":
			return sym.val * rv, nil
		case "<<=":
			return sym.val << uint(rv), nil
		case ">>=":
			return sym.val >> uint(rv), nil
		}
	}
	return 0, errs.Invalidf(inc.NodePos(), "unrolled for loop increment must update induction variable %s", sym.name)
}
