package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"hlscc/internal/ast"
)

type lowerer struct {
	filename string
	pragmas  *pragmaSet
	err      error
}

func (lw *lowerer) errorf(pos lexer.Position, format string, args ...any) {
	if lw.err == nil {
		lw.err = fmt.Errorf("%s:%d:%d: %s", lw.filename, pos.Line, pos.Column, fmt.Sprintf(format, args...))
	}
}

func (lw *lowerer) pos(p lexer.Position) ast.Position {
	return ast.Position{Filename: lw.filename, Line: p.Line, Column: p.Column}
}

func (lw *lowerer) unit(u *gUnit) *ast.Unit {
	out := &ast.Unit{Filename: lw.filename}
	for _, d := range u.Decls {
		switch {
		case d.Typedef != nil:
			out.Typedefs = append(out.Typedefs, &ast.TypedefDecl{
				Pos:  lw.pos(d.Typedef.Pos),
				Type: lw.typ(d.Typedef.Type),
				Name: d.Typedef.Name,
			})
		case d.Struct != nil:
			out.Structs = append(out.Structs, lw.structDecl(d.Struct))
		case d.Func != nil:
			out.Funcs = append(out.Funcs, lw.funcDecl(d.Func, ""))
		}
	}
	return out
}

// typ canonicalizes builtin keyword spellings: "unsigned" alone is
// unsigned int, "long long" collapses to long.
func (lw *lowerer) typ(t *gType) *ast.TypeExpr {
	out := &ast.TypeExpr{
		Pos:       lw.pos(t.Pos),
		Const:     t.Const,
		Reference: t.Ref,
	}
	if t.Name != "" {
		out.Name = t.Name
	} else {
		name := "int"
		for _, kw := range t.Kw {
			switch kw {
			case "unsigned":
				out.Unsigned = true
			case "signed":
			case "void", "bool", "char", "short", "long":
				name = kw
			case "int":
				if name != "long" && name != "short" {
					name = "int"
				}
			}
		}
		out.Name = name
	}
	for _, a := range t.Args {
		out.TemplateArgs = append(out.TemplateArgs, lw.templateArg(a))
	}
	return out
}

func (lw *lowerer) templateArg(a *gTemplateArg) *ast.TemplateArg {
	if a.Type != nil {
		t := lw.typ(a.Type)
		// A bare name could be a value; classification happens during
		// type resolution.
		if a.Type.Name != "" && !t.Const && !t.Reference && len(t.TemplateArgs) == 0 {
			return &ast.TemplateArg{Pos: t.Pos, Expr: &ast.Ident{Pos: t.Pos, Name: t.Name}}
		}
		return &ast.TemplateArg{Pos: t.Pos, Type: t}
	}
	return &ast.TemplateArg{Pos: lw.pos(a.Expr.Pos), Expr: lw.expr(a.Expr)}
}

func (lw *lowerer) structDecl(s *gStruct) *ast.StructDecl {
	out := &ast.StructDecl{
		Pos:     lw.pos(s.Pos),
		Name:    s.Name,
		NoTuple: lw.pragmas.take(PragmaNoTuple, s.Pos.Line),
	}
	if s.Template != nil {
		out.Templates = lw.templateParams(s.Template)
	}
	for _, b := range s.Bases {
		out.Bases = append(out.Bases, lw.typ(b.Type))
	}
	for _, m := range s.Members {
		switch {
		case m.Conv != nil:
			out.Methods = append(out.Methods, lw.convOp(m.Conv, s.Name))
		case m.Ctor != nil:
			out.Methods = append(out.Methods, lw.ctor(m.Ctor, s.Name))
		case m.Method != nil:
			out.Methods = append(out.Methods, lw.funcDecl(m.Method, s.Name))
		case m.Field != nil:
			out.Fields = append(out.Fields, lw.fields(m.Field)...)
		}
	}
	return out
}

func (lw *lowerer) fields(f *gFieldDecl) []*ast.FieldDecl {
	base := lw.typ(f.Type)
	base.Const = base.Const || f.Const
	var out []*ast.FieldDecl
	for _, d := range f.Decls {
		fd := &ast.FieldDecl{
			Pos:    lw.pos(d.Pos),
			Static: f.Static,
			Type:   base,
			Name:   d.Name,
		}
		for _, dim := range d.Dims {
			fd.ArrayDims = append(fd.ArrayDims, lw.expr(dim))
		}
		if d.Init != nil {
			fd.Init = lw.init(d.Init)
		}
		if d.Ctor != nil {
			lw.errorf(d.Pos, "constructor syntax is not valid for a field")
		}
		out = append(out, fd)
	}
	return out
}

func (lw *lowerer) ctor(c *gCtor, structName string) *ast.FuncDecl {
	if c.Name != structName {
		lw.errorf(c.Pos, "constructor name %q does not match struct %q", c.Name, structName)
	}
	out := &ast.FuncDecl{
		Pos:      lw.pos(c.Pos),
		Receiver: structName,
		Name:     c.Name,
		IsCtor:   true,
		Body:     lw.block(c.Body),
	}
	for _, p := range c.Params {
		out.Params = append(out.Params, lw.param(p))
	}
	for _, in := range c.Inits {
		ci := &ast.CtorInit{Pos: lw.pos(in.Pos), Name: in.Name}
		for _, a := range in.Args {
			ci.Args = append(ci.Args, lw.expr(a))
		}
		out.CtorInits = append(out.CtorInits, ci)
	}
	return out
}

func (lw *lowerer) convOp(c *gConvOp, structName string) *ast.FuncDecl {
	target := lw.typ(&gType{Pos: c.Pos, Kw: c.Kw})
	return &ast.FuncDecl{
		Pos:      lw.pos(c.Pos),
		Receiver: structName,
		Name:     "operator " + target.Name,
		IsConv:   true,
		Result:   target,
		Body:     lw.block(c.Body),
	}
}

func (lw *lowerer) funcDecl(f *gFunc, receiver string) *ast.FuncDecl {
	name := f.Name
	if f.OpName != "" {
		name = "operator" + f.OpName
	}
	out := &ast.FuncDecl{
		Pos:      lw.pos(f.Pos),
		Top:      lw.pragmas.take(PragmaTop, f.Pos.Line),
		Static:   f.Static,
		Result:   lw.typ(f.Result),
		Receiver: receiver,
		Name:     name,
		Body:     lw.block(f.Body),
	}
	if f.Template != nil {
		out.Templates = lw.templateParams(f.Template)
	}
	for _, p := range f.Params {
		out.Params = append(out.Params, lw.param(p))
	}
	return out
}

func (lw *lowerer) templateParams(h *gTemplateHeader) []*ast.TemplateParam {
	var out []*ast.TemplateParam
	for _, p := range h.Params {
		tp := &ast.TemplateParam{
			Pos:      lw.pos(p.Pos),
			TypeName: p.Class != "",
			Name:     p.Name,
		}
		if p.Type != nil {
			tp.Type = lw.typ(p.Type)
		}
		out = append(out, tp)
	}
	return out
}

func (lw *lowerer) param(p *gParam) *ast.ParamDecl {
	out := &ast.ParamDecl{
		Pos:  lw.pos(p.Pos),
		Type: lw.typ(p.Type),
		Name: p.Name,
	}
	if p.Default != nil {
		out.Default = lw.expr(p.Default)
	}
	return out
}

func (lw *lowerer) block(b *gBlock) *ast.BlockStmt {
	out := &ast.BlockStmt{Pos: lw.pos(b.Pos)}
	for _, s := range b.Stmts {
		if st := lw.stmt(s); st != nil {
			out.Stmts = append(out.Stmts, st)
		}
	}
	return out
}

func (lw *lowerer) stmt(s *gStmt) ast.Stmt {
	switch {
	case s.Block != nil:
		return lw.block(s.Block)
	case s.If != nil:
		out := &ast.IfStmt{
			Pos:  lw.pos(s.If.Pos),
			Cond: lw.expr(s.If.Cond),
			Then: lw.stmt(s.If.Then),
		}
		if s.If.Else != nil {
			out.Else = lw.stmt(s.If.Else)
		}
		return out
	case s.Switch != nil:
		return lw.switchStmt(s.Switch)
	case s.For != nil:
		return lw.forStmt(s.For)
	case s.Break != nil:
		return &ast.BreakStmt{Pos: lw.pos(s.Break.Pos)}
	case s.Continue != nil:
		return &ast.ContinueStmt{Pos: lw.pos(s.Continue.Pos)}
	case s.Return != nil:
		out := &ast.ReturnStmt{Pos: lw.pos(s.Return.Pos)}
		if s.Return.Result != nil {
			out.Result = lw.expr(s.Return.Result)
		}
		return out
	case s.Decl != nil:
		return lw.declStmt(s.Decl)
	case s.Expr != nil:
		return &ast.ExprStmt{Pos: lw.pos(s.Expr.Pos), X: lw.expr(s.Expr.X)}
	default:
		return nil // bare semicolon
	}
}

func (lw *lowerer) declStmt(d *gDeclStmt) *ast.DeclStmt {
	base := lw.typ(d.Type)
	out := &ast.DeclStmt{Pos: lw.pos(d.Pos)}
	for _, dec := range d.Decls {
		vd := &ast.VarDecl{
			Pos:  lw.pos(dec.Pos),
			Type: base,
			Name: dec.Name,
		}
		for _, dim := range dec.Dims {
			vd.ArrayDims = append(vd.ArrayDims, lw.expr(dim))
		}
		switch {
		case dec.Ctor != nil:
			vd.HasCtor = true
			for _, a := range dec.Ctor.Args {
				vd.CtorArgs = append(vd.CtorArgs, lw.expr(a))
			}
		case dec.Init != nil:
			vd.Init = lw.init(dec.Init)
		}
		out.Decls = append(out.Decls, vd)
	}
	return out
}

func (lw *lowerer) init(in *gInit) ast.Expr {
	if in.List != nil {
		return lw.initList(in.List)
	}
	return lw.expr(in.Expr)
}

func (lw *lowerer) initList(l *gInitList) *ast.InitListExpr {
	out := &ast.InitListExpr{Pos: lw.pos(l.Pos)}
	for _, e := range l.Elts {
		out.Elts = append(out.Elts, lw.expr(e))
	}
	return out
}

func (lw *lowerer) switchStmt(s *gSwitch) *ast.SwitchStmt {
	out := &ast.SwitchStmt{Pos: lw.pos(s.Pos), Tag: lw.expr(s.Tag)}
	for _, c := range s.Cases {
		cc := &ast.CaseClause{Pos: lw.pos(c.Pos), Default: c.Default}
		if c.Value != nil {
			cc.Value = lw.expr(c.Value)
		}
		for _, st := range c.Stmts {
			if lowered := lw.stmt(st); lowered != nil {
				cc.Stmts = append(cc.Stmts, lowered)
			}
		}
		// Trailing unconditional breaks end the clause. More than one
		// is tolerated.
		for len(cc.Stmts) > 0 {
			if _, ok := cc.Stmts[len(cc.Stmts)-1].(*ast.BreakStmt); !ok {
				break
			}
			cc.Stmts = cc.Stmts[:len(cc.Stmts)-1]
			cc.HasBreak = true
		}
		out.Cases = append(out.Cases, cc)
	}
	return out
}

func (lw *lowerer) forStmt(f *gFor) *ast.ForStmt {
	out := &ast.ForStmt{
		Pos:    lw.pos(f.Pos),
		Unroll: lw.pragmas.take(PragmaUnroll, f.Pos.Line),
		Body:   lw.stmt(f.Body),
	}
	switch {
	case f.Init.Decl != nil:
		out.Init = lw.declStmt(f.Init.Decl)
	case f.Init.Expr != nil:
		out.Init = &ast.ExprStmt{Pos: lw.pos(f.Init.Expr.Pos), X: lw.expr(f.Init.Expr.X)}
	}
	if f.Cond != nil {
		out.Cond = lw.expr(f.Cond)
	}
	if f.Inc != nil {
		out.Inc = lw.expr(f.Inc)
	}
	return out
}

// Expression lowering. Binary chains arrive flat and are folded with an
// operator precedence table, all levels left associative.

var binPrec = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"==": 6, "!=": 6,
	"&": 5, "^": 4, "|": 3,
	"&&": 2, "||": 1,
}

func (lw *lowerer) expr(e *gExpr) ast.Expr {
	lhs := lw.cond(e.LHS)
	if e.Op == "" {
		return lhs
	}
	return &ast.AssignExpr{
		Pos: lw.pos(e.Pos),
		Op:  e.Op,
		LHS: lhs,
		RHS: lw.expr(e.RHS),
	}
}

func (lw *lowerer) cond(c *gCond) ast.Expr {
	bin := lw.binary(c.Bin)
	if c.Then == nil {
		return bin
	}
	return &ast.CondExpr{
		Pos:  lw.pos(c.Pos),
		Cond: bin,
		Then: lw.expr(c.Then),
		Else: lw.cond(c.Else),
	}
}

func (lw *lowerer) binary(b *gBinary) ast.Expr {
	exprs := []ast.Expr{lw.unary(b.First)}
	var ops []string
	reduce := func() {
		n := len(exprs)
		op := ops[len(ops)-1]
		exprs[n-2] = &ast.BinaryExpr{
			Pos: exprs[n-2].NodePos(),
			Op:  op,
			X:   exprs[n-2],
			Y:   exprs[n-1],
		}
		exprs = exprs[:n-1]
		ops = ops[:len(ops)-1]
	}
	for _, part := range b.Rest {
		for len(ops) > 0 && binPrec[ops[len(ops)-1]] >= binPrec[part.Op] {
			reduce()
		}
		ops = append(ops, part.Op)
		exprs = append(exprs, lw.unary(part.X))
	}
	for len(ops) > 0 {
		reduce()
	}
	return exprs[0]
}

func (lw *lowerer) unary(u *gUnary) ast.Expr {
	switch {
	case u.Op != "":
		x := lw.unary(u.X)
		if u.Op == "*" {
			// *this means the whole receiver object.
			if id, ok := x.(*ast.Ident); ok && id.Name == "this" {
				return id
			}
		}
		return &ast.UnaryExpr{Pos: lw.pos(u.Pos), Op: u.Op, X: x}
	case u.IncDec != "":
		return &ast.IncDecExpr{Pos: lw.pos(u.Pos), Op: u.IncDec, Prefix: true, X: lw.unary(u.IncX)}
	case u.Cast != nil:
		return &ast.CastExpr{
			Pos:  lw.pos(u.Cast.Pos),
			Type: lw.typ(&gType{Pos: u.Cast.Pos, Kw: u.Cast.Kw}),
			X:    lw.unary(u.Cast.X),
		}
	default:
		return lw.postfix(u.Postfix)
	}
}

func (lw *lowerer) postfix(p *gPostfix) ast.Expr {
	x := lw.primary(p.Primary)
	for _, op := range p.Ops {
		switch {
		case op.Member != "":
			x = &ast.MemberExpr{Pos: lw.pos(op.Pos), X: x, Member: op.Member}
			if op.Call != nil {
				x = lw.call(op.Pos, x, nil, op.Call)
			}
		case op.Index != nil:
			x = &ast.IndexExpr{Pos: lw.pos(op.Pos), X: x, Index: lw.expr(op.Index)}
		case op.IncDec != "":
			x = &ast.IncDecExpr{Pos: lw.pos(op.Pos), Op: op.IncDec, X: x}
		}
	}
	return x
}

func (lw *lowerer) call(pos lexer.Position, fn ast.Expr, targs []*ast.TemplateArg, args *gArgList) ast.Expr {
	out := &ast.CallExpr{Pos: lw.pos(pos), Fn: fn, TemplateArgs: targs}
	for _, a := range args.Args {
		out.Args = append(out.Args, lw.expr(a))
	}
	return out
}

func (lw *lowerer) primary(p *gPrimary) ast.Expr {
	switch {
	case p.True:
		return &ast.BoolLit{Pos: lw.pos(p.Pos), Value: true}
	case p.False:
		return &ast.BoolLit{Pos: lw.pos(p.Pos), Value: false}
	case p.Char != "":
		return &ast.IntLit{Pos: lw.pos(p.Pos), Value: charValue(p.Char)}
	case p.Int != "":
		v, err := strconv.ParseInt(p.Int, 0, 64)
		if err != nil {
			// Large unsigned literals still fit the 64-bit value model.
			u, uerr := strconv.ParseUint(p.Int, 0, 64)
			if uerr != nil {
				lw.errorf(p.Pos, "invalid integer literal %q", p.Int)
				return &ast.IntLit{Pos: lw.pos(p.Pos)}
			}
			v = int64(u)
		}
		return &ast.IntLit{Pos: lw.pos(p.Pos), Value: v}
	case p.Init != nil:
		return lw.initList(p.Init)
	case p.Qual != nil:
		return lw.qualified(p.Qual)
	default:
		return &ast.ParenExpr{Pos: lw.pos(p.Pos), X: lw.expr(p.Paren)}
	}
}

func (lw *lowerer) qualified(q *gQualified) ast.Expr {
	var fn ast.Expr
	if q.Scope != "" {
		fn = &ast.ScopeExpr{Pos: lw.pos(q.Pos), Scope: q.Scope, Name: q.Name}
	} else {
		fn = &ast.Ident{Pos: lw.pos(q.Pos), Name: q.Name}
	}
	if q.TCall != nil {
		var targs []*ast.TemplateArg
		for _, a := range q.TCall.TArgs {
			targs = append(targs, lw.simpleTArg(a))
		}
		return lw.call(q.Pos, fn, targs, q.TCall.Args)
	}
	if q.Args != nil {
		return lw.call(q.Pos, fn, nil, q.Args)
	}
	return fn
}

func (lw *lowerer) simpleTArg(a *gSTArg) *ast.TemplateArg {
	pos := lw.pos(a.Pos)
	switch {
	case a.Int != "":
		v, _ := strconv.ParseInt(a.Int, 0, 64)
		return &ast.TemplateArg{Pos: pos, Expr: &ast.IntLit{Pos: pos, Value: v}}
	case a.True:
		return &ast.TemplateArg{Pos: pos, Expr: &ast.BoolLit{Pos: pos, Value: true}}
	case a.False:
		return &ast.TemplateArg{Pos: pos, Expr: &ast.BoolLit{Pos: pos, Value: false}}
	case len(a.Kw) > 0:
		return &ast.TemplateArg{Pos: pos, Type: lw.typ(&gType{Pos: a.Pos, Kw: a.Kw})}
	default:
		return &ast.TemplateArg{Pos: pos, Expr: &ast.Ident{Pos: pos, Name: a.Name}}
	}
}

// charValue decodes a character literal token, quotes included.
func charValue(tok string) int64 {
	body := tok[1 : len(tok)-1]
	if body[0] != '\\' {
		return int64(body[0])
	}
	switch body[1] {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return int64(body[1])
	}
}
