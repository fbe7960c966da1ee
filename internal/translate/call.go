package translate

import (
	"strings"

	"hlscc/internal/ast"
	"hlscc/internal/ctype"
	errs "hlscc/internal/errors"
	"hlscc/internal/ir"
)

// callArg is one prepared argument of an inlined call.
type callArg struct {
	v  value
	lv *lvalue  // non-const reference params write back here
	ch *chanSym // channel params pass the endpoint through
}

func (f *frame) call(x *ast.CallExpr) (value, error) {
	switch fn := x.Fn.(type) {
	case *ast.MemberExpr:
		if f.isChannelTyped(fn.X) {
			return f.channelOp(fn, x)
		}
		return f.methodCall(fn, x)
	case *ast.Ident:
		fd, ok := f.tr.funcs[fn.Name]
		if !ok {
			return value{}, errs.NotFoundf(fn.Pos, "unknown function %s", fn.Name)
		}
		if f.tr.isPure(fd) {
			return f.invokePure(fd, x)
		}
		out, _, err := f.callInline(fd, nil, nil, nil, x.TemplateArgs, x.Args, x.Pos, f.banIO)
		return out, err
	case *ast.ScopeExpr:
		return f.staticCall(fn, x)
	}
	return value{}, errs.Unimplementedf(x.Pos, "unsupported call target")
}

func (f *frame) channelOp(fn *ast.MemberExpr, x *ast.CallExpr) (value, error) {
	ch, err := f.channelOperand(fn.X)
	if err != nil {
		return value{}, err
	}
	if f.banIO {
		return value{}, errs.Unimplementedf(x.Pos, "IO ops in operator calls are not supported")
	}
	switch fn.Member {
	case "read":
		if len(x.Args) != 0 {
			return value{}, errs.Invalidf(x.Pos, "read takes no arguments")
		}
		n, err := f.tr.io.recv(f, ch, f.cc(), x.Pos)
		if err != nil {
			return value{}, err
		}
		return value{t: ch.elem, n: n}, nil
	case "write":
		if len(x.Args) != 1 {
			return value{}, errs.Invalidf(x.Pos, "write takes one argument")
		}
		v, err := f.exprWithType(x.Args[0], ch.elem)
		if err != nil {
			return value{}, err
		}
		if err := f.tr.io.send(f, ch, v.n, f.cc(), x.Pos); err != nil {
			return value{}, err
		}
		return value{t: &ctype.VoidType{}}, nil
	}
	return value{}, errs.Invalidf(x.Pos, "channel has no method %s", fn.Member)
}

func (f *frame) methodCall(fn *ast.MemberExpr, x *ast.CallExpr) (value, error) {
	lv, lvErr := f.lvalueOf(fn.X)
	var recv value
	if lvErr == nil {
		recv = f.load(lv)
	} else {
		var err error
		recv, err = f.expr(fn.X)
		if err != nil {
			return value{}, err
		}
		lv = nil
	}
	st, ok := recv.t.(*ctype.StructType)
	if !ok {
		return value{}, errs.Invalidf(x.Pos, "method call on non-struct type %s", recv.t)
	}
	fd := findMethod(st, fn.Member, len(x.Args))
	if fd == nil {
		return value{}, errs.NotFoundf(x.Pos, "%s has no method %s", st.Name, fn.Member)
	}
	out, _, err := f.callInline(fd, lv, st, recv.n, x.TemplateArgs, x.Args, x.Pos, f.banIO)
	return out, err
}

func (f *frame) staticCall(fn *ast.ScopeExpr, x *ast.CallExpr) (value, error) {
	decl, ok := f.tr.structs[fn.Scope]
	if !ok {
		return value{}, errs.NotFoundf(fn.Pos, "unknown type %s", fn.Scope)
	}
	if len(decl.Templates) > 0 {
		return value{}, errs.Unimplementedf(fn.Pos, "qualified calls into template %s are not supported", fn.Scope)
	}
	st, err := f.res.Resolve(&ast.TypeExpr{Pos: fn.Pos, Name: fn.Scope})
	if err != nil {
		return value{}, err
	}
	sst, ok := st.(*ctype.StructType)
	if !ok {
		return value{}, errs.Invalidf(fn.Pos, "%s is not a struct", fn.Scope)
	}
	var fd *ast.FuncDecl
	for _, m := range decl.Methods {
		if m.Name == fn.Name && m.Static {
			fd = m
			break
		}
	}
	if fd == nil {
		return value{}, errs.NotFoundf(fn.Pos, "%s has no static method %s", fn.Scope, fn.Name)
	}
	out, _, err := f.callInline(fd, nil, sst, nil, x.TemplateArgs, x.Args, x.Pos, f.banIO)
	return out, err
}

// findMethod looks up a method by name with a compatible arity; nargs
// of -1 matches any.
func findMethod(st *ctype.StructType, name string, nargs int) *ast.FuncDecl {
	if st.Decl == nil {
		return nil
	}
	for _, m := range st.Decl.Methods {
		if m.Name != name || m.IsCtor || m.IsConv {
			continue
		}
		if nargs < 0 || arityMatches(m, nargs) {
			return m
		}
	}
	return nil
}

func findCtor(st *ctype.StructType, nargs int) *ast.FuncDecl {
	if st.Decl == nil {
		return nil
	}
	for _, m := range st.Decl.Methods {
		if m.IsCtor && arityMatches(m, nargs) {
			return m
		}
	}
	return nil
}

func findConv(st *ctype.StructType) *ast.FuncDecl {
	if st.Decl == nil {
		return nil
	}
	for _, m := range st.Decl.Methods {
		if m.IsConv {
			return m
		}
	}
	return nil
}

func arityMatches(fd *ast.FuncDecl, nargs int) bool {
	if nargs > len(fd.Params) {
		return false
	}
	for _, p := range fd.Params[nargs:] {
		if p.Default == nil {
			return false
		}
	}
	return true
}

// calleeResolver builds the type scope of a callee: the receiver's
// template bindings plus the function's own, with explicit template
// arguments evaluated in the caller's context.
func (f *frame) calleeResolver(fd *ast.FuncDecl, recvSt *ctype.StructType, targs []*ast.TemplateArg, pos ast.Position) (*ctype.Resolver, error) {
	base := ctype.NewResolver(f.tr.unit)
	bindings := make(map[string]ctype.Binding)
	if recvSt != nil {
		for k, v := range recvSt.Bindings {
			bindings[k] = v
		}
	}
	if len(fd.Templates) > 0 {
		tb, err := f.constResolver().BindTemplates(fd.Templates, targs, pos)
		if err != nil {
			return nil, err
		}
		for k, v := range tb {
			bindings[k] = v
		}
	} else if len(targs) > 0 {
		return nil, errs.Invalidf(pos, "%s is not a template", fd.Name)
	}
	return base.WithBindings(bindings), nil
}

// callInline expands a callee into the caller's graph. The caller's
// activation condition becomes the base condition of the callee frame,
// so assignments, IO and returns inside the callee stay gated exactly
// as they would at the call site.
func (f *frame) callInline(fd *ast.FuncDecl, recvLV *lvalue, recvSt *ctype.StructType, recvNode *ir.Node, targs []*ast.TemplateArg, args []ast.Expr, pos ast.Position, banIO bool) (value, *ir.Node, error) {
	res2, err := f.calleeResolver(fd, recvSt, targs, pos)
	if err != nil {
		return value{}, nil, err
	}

	if len(args) > len(fd.Params) {
		return value{}, nil, errs.Invalidf(pos, "%s expects %d arguments, got %d", fd.Name, len(fd.Params), len(args))
	}
	prepared := make([]callArg, 0, len(fd.Params))
	for i, p := range fd.Params {
		pt, err := res2.Resolve(p.Type)
		if err != nil {
			return value{}, nil, err
		}
		var arg ast.Expr
		if i < len(args) {
			arg = args[i]
		} else if p.Default != nil {
			arg = p.Default
		} else {
			return value{}, nil, errs.Invalidf(pos, "%s expects an argument for %s", fd.Name, p.Name)
		}
		if _, ok := pt.(*ctype.ChannelType); ok {
			ch, err := f.channelOperand(arg)
			if err != nil {
				return value{}, nil, err
			}
			prepared = append(prepared, callArg{ch: ch})
			continue
		}
		if p.Type.Reference && !p.Type.Const {
			alv, err := f.lvalueOf(arg)
			if err != nil {
				return value{}, nil, err
			}
			if !ctype.Equal(alv.t, pt) {
				return value{}, nil, errs.Invalidf(arg.NodePos(), "reference argument %s must have type %s", p.Name, pt)
			}
			prepared = append(prepared, callArg{v: f.load(alv), lv: alv})
			continue
		}
		v, err := f.exprWithType(arg, pt)
		if err != nil {
			return value{}, nil, err
		}
		prepared = append(prepared, callArg{v: v})
	}

	out, thisOut, refNodes, err := f.inlineBody(fd, res2, recvSt, recvNode, prepared, pos, banIO)
	if err != nil {
		return value{}, nil, err
	}

	j := 0
	for _, pa := range prepared {
		if pa.lv == nil {
			continue
		}
		if err := f.store(pa.lv, refNodes[j]); err != nil {
			return value{}, nil, err
		}
		j++
	}
	if recvLV != nil && thisOut != nil && recvLV.sym.kind == symVar && !recvLV.sym.ro {
		if err := f.store(recvLV, thisOut); err != nil {
			return value{}, nil, err
		}
	}
	return out, thisOut, nil
}

func (f *frame) inlineBody(fd *ast.FuncDecl, res2 *ctype.Resolver, recvSt *ctype.StructType, recvNode *ir.Node, prepared []callArg, pos ast.Position, banIO bool) (value, *ir.Node, []*ir.Node, error) {
	t := f.tr
	for _, on := range t.inlineStack {
		if on == fd {
			return value{}, nil, nil, errs.Unimplementedf(pos, "recursive call to %s is not supported", fd.Name)
		}
	}
	t.inlineStack = append(t.inlineStack, fd)
	defer func() { t.inlineStack = t.inlineStack[:len(t.inlineStack)-1] }()

	nf := t.newFrame(res2, fd)
	nf.banIO = banIO
	if base := f.cc(); base != nil {
		nf.conds = append(nf.conds, base)
	}
	if recvSt != nil && recvNode != nil {
		nf.thisSym = &symbol{name: "this", kind: symVar, typ: recvSt, node: recvNode}
	}

	var refSyms []*symbol
	for i, p := range fd.Params {
		pa := prepared[i]
		if pa.ch != nil {
			nf.declare(&symbol{name: p.Name, kind: symChannel, typ: &ctype.ChannelType{Elem: pa.ch.elem}, ch: pa.ch})
			continue
		}
		sym := &symbol{name: p.Name, kind: symVar, typ: pa.v.t, node: pa.v.n, ro: p.Type.Const && !p.Type.Reference}
		nf.declare(sym)
		if pa.lv != nil {
			refSyms = append(refSyms, sym)
		}
	}

	var rt ctype.Type = &ctype.VoidType{}
	if !fd.IsCtor && fd.Result != nil {
		var err error
		rt, err = res2.Resolve(fd.Result)
		if err != nil {
			return value{}, nil, nil, err
		}
	}
	if err := nf.setupReturn(rt, pos); err != nil {
		return value{}, nil, nil, err
	}

	if fd.IsCtor {
		for _, ci := range fd.CtorInits {
			if err := nf.ctorInit(ci); err != nil {
				return value{}, nil, nil, err
			}
		}
	}
	if err := nf.stmts(fd.Body.Stmts); err != nil {
		return value{}, nil, nil, err
	}

	out := value{t: rt}
	if _, void := rt.(*ctype.VoidType); !void {
		out.n = nf.retVal
	}
	var thisOut *ir.Node
	if nf.thisSym != nil {
		thisOut = nf.thisSym.node
	}
	refNodes := make([]*ir.Node, len(refSyms))
	for i, s := range refSyms {
		refNodes[i] = s.node
	}
	return out, thisOut, refNodes, nil
}

// ctorInit applies one constructor initializer list entry to this.
func (f *frame) ctorInit(ci *ast.CtorInit) error {
	base := &lvalue{sym: f.thisSym, t: f.thisSym.typ, pos: ci.Pos}
	lv, err := f.member(base, ci.Name, ci.Pos)
	if err != nil {
		if _, isStruct := f.tr.structs[ci.Name]; isStruct {
			return errs.Unimplementedf(ci.Pos, "base class initializers are not supported")
		}
		return err
	}
	var v value
	switch len(ci.Args) {
	case 1:
		v, err = f.exprWithType(ci.Args[0], lv.t)
	default:
		v, err = f.construct(lv.t, ci.Args, ci.Pos)
	}
	if err != nil {
		return err
	}
	return f.store(lv, v.n)
}

// construct materializes a value of type vt from constructor-call
// arguments, running a user constructor when the type declares one.
func (f *frame) construct(vt ctype.Type, args []ast.Expr, pos ast.Position) (value, error) {
	st, ok := vt.(*ctype.StructType)
	if !ok || st.Decl == nil {
		switch len(args) {
		case 0:
			z, err := f.tr.zeroNode(vt, pos)
			return value{t: vt, n: z}, err
		case 1:
			return f.exprWithType(args[0], vt)
		}
		return value{}, errs.Invalidf(pos, "too many initializers for %s", vt)
	}
	fd := findCtor(st, len(args))
	if fd == nil {
		if len(args) == 0 {
			z, err := f.tr.zeroNode(vt, pos)
			return value{t: vt, n: z}, err
		}
		return value{}, errs.NotFoundf(pos, "%s has no matching constructor", st.Name)
	}
	zero, err := f.tr.zeroNode(vt, pos)
	if err != nil {
		return value{}, err
	}
	_, thisOut, err := f.callInline(fd, nil, st, zero, nil, args, pos, f.banIO)
	if err != nil {
		return value{}, err
	}
	return value{t: vt, n: thisOut}, nil
}

// convertViaOperator applies a user conversion operator to a struct
// value.
func (f *frame) convertViaOperator(v value, vt *ctype.StructType, pos ast.Position) (value, error) {
	fd := findConv(vt)
	if fd == nil {
		return value{}, errs.Invalidf(pos, "%s has no conversion operator", vt.Name)
	}
	res2, err := f.calleeResolver(fd, vt, nil, pos)
	if err != nil {
		return value{}, err
	}
	out, _, _, err := f.inlineBody(fd, res2, vt, v.n, nil, pos, true)
	return out, err
}

// tryCtorConvert attempts an implicit conversion through a
// single-argument constructor; a nil result means no candidate.
func (f *frame) tryCtorConvert(v value, tt *ctype.StructType, pos ast.Position) (*value, error) {
	fd := findCtor(tt, 1)
	if fd == nil {
		return nil, nil
	}
	res2, err := f.calleeResolver(fd, tt, nil, pos)
	if err != nil {
		return nil, nil
	}
	pt, err := res2.Resolve(fd.Params[0].Type)
	if err != nil {
		return nil, nil
	}
	av, err := f.convert(v, pt, pos)
	if err != nil {
		return nil, nil
	}
	zero, err := f.tr.zeroNode(tt, pos)
	if err != nil {
		return nil, err
	}
	_, thisOut, _, err := f.inlineBody(fd, res2, tt, zero, []callArg{{v: av}}, pos, true)
	if err != nil {
		return nil, err
	}
	return &value{t: tt, n: thisOut}, nil
}

// binaryOverload dispatches a binary operator with at least one struct
// operand: a matching operator method on the left operand, otherwise
// conversion operators reduce both sides to numeric values.
func (f *frame) binaryOverload(op string, lhs, rhs value, pos ast.Position) (value, error) {
	if lst, ok := lhs.t.(*ctype.StructType); ok {
		if fd := findMethodOp(lst, fmtOpName(op), 1); fd != nil {
			res2, err := f.calleeResolver(fd, lst, nil, pos)
			if err != nil {
				return value{}, err
			}
			pt, err := res2.Resolve(fd.Params[0].Type)
			if err != nil {
				return value{}, err
			}
			av, err := f.convert(rhs, pt, pos)
			if err != nil {
				return value{}, err
			}
			out, _, _, err := f.inlineBody(fd, res2, lst, lhs.n, []callArg{{v: av}}, pos, true)
			return out, err
		}
		cv, err := f.convertViaOperator(lhs, lst, pos)
		if err != nil {
			return value{}, err
		}
		lhs = cv
	}
	if rst, ok := rhs.t.(*ctype.StructType); ok {
		cv, err := f.convertViaOperator(rhs, rst, pos)
		if err != nil {
			return value{}, err
		}
		rhs = cv
	}
	return f.binaryValue(op, lhs, rhs, pos)
}

// findMethodOp is findMethod for operator names, which live alongside
// ordinary methods.
func findMethodOp(st *ctype.StructType, name string, nargs int) *ast.FuncDecl {
	if st.Decl == nil {
		return nil
	}
	for _, m := range st.Decl.Methods {
		if m.Name == name && !m.IsCtor && !m.IsConv && arityMatches(m, nargs) {
			return m
		}
	}
	return nil
}

func (f *frame) unaryOverload(op string, v value, st *ctype.StructType, pos ast.Position) (value, error) {
	if fd := findMethodOp(st, fmtOpName(op), 0); fd != nil {
		res2, err := f.calleeResolver(fd, st, nil, pos)
		if err != nil {
			return value{}, err
		}
		out, _, _, err := f.inlineBody(fd, res2, st, v.n, nil, pos, true)
		return out, err
	}
	cv, err := f.convertViaOperator(v, st, pos)
	if err != nil {
		return value{}, err
	}
	return f.numericUnary(op, cv, pos)
}

func (f *frame) compoundOverload(op string, lv *lvalue, st *ctype.StructType, rhsExpr ast.Expr, pos ast.Position) (value, error) {
	if fd := findMethodOp(st, fmtOpName(op), 1); fd != nil {
		res2, err := f.calleeResolver(fd, st, nil, pos)
		if err != nil {
			return value{}, err
		}
		pt, err := res2.Resolve(fd.Params[0].Type)
		if err != nil {
			return value{}, err
		}
		av, err := f.exprWithType(rhsExpr, pt)
		if err != nil {
			return value{}, err
		}
		_, thisOut, _, err := f.inlineBody(fd, res2, st, f.load(lv).n, []callArg{{v: av}}, pos, true)
		if err != nil {
			return value{}, err
		}
		if err := f.store(lv, thisOut); err != nil {
			return value{}, err
		}
		return f.load(lv), nil
	}

	baseOp := strings.TrimSuffix(op, "=")
	cur := f.load(lv)
	rhs, err := f.expr(rhsExpr)
	if err != nil {
		return value{}, err
	}
	next, err := f.binaryValue(baseOp, cur, rhs, pos)
	if err != nil {
		return value{}, err
	}
	stored, err := f.convert(next, lv.t, pos)
	if err != nil {
		return value{}, err
	}
	if err := f.store(lv, stored.n); err != nil {
		return value{}, err
	}
	return stored, nil
}

func (f *frame) incDecOverload(x *ast.IncDecExpr, lv *lvalue, st *ctype.StructType) (value, error) {
	fd := findMethodOp(st, fmtOpName(x.Op), 0)
	var prepared []callArg
	if fd == nil {
		// Postfix overloads carry a dummy int parameter.
		if fd = findMethodOp(st, fmtOpName(x.Op), 1); fd != nil {
			it := &ctype.IntType{Width: 32, Signed: true}
			prepared = []callArg{{v: value{t: it, n: f.tr.intLiteral(it, 0)}}}
		}
	}
	if fd == nil {
		return value{}, errs.NotFoundf(x.Pos, "%s has no %s operator", st.Name, fmtOpName(x.Op))
	}
	res2, err := f.calleeResolver(fd, st, nil, x.Pos)
	if err != nil {
		return value{}, err
	}
	old := f.load(lv)
	_, thisOut, _, err := f.inlineBody(fd, res2, st, old.n, prepared, x.Pos, true)
	if err != nil {
		return value{}, err
	}
	if err := f.store(lv, thisOut); err != nil {
		return value{}, err
	}
	if x.Prefix {
		return f.load(lv), nil
	}
	return old, nil
}

// isPure reports whether a free function can compile to a standalone IR
// function and be called through an invoke node.
func (t *translator) isPure(fd *ast.FuncDecl) bool {
	if fd.Receiver != "" || fd.IsCtor || fd.IsConv || len(fd.Templates) > 0 {
		return false
	}
	if fd.Result == nil || fd.Result.Name == "void" {
		return false
	}
	for _, p := range fd.Params {
		if p.Type.Reference && !p.Type.Const {
			return false
		}
		if p.Type.Name == "channel" {
			return false
		}
	}
	return !t.hasIO(fd, make(map[*ast.FuncDecl]bool))
}

func (f *frame) invokePure(fd *ast.FuncDecl, x *ast.CallExpr) (value, error) {
	t := f.tr
	if len(x.TemplateArgs) > 0 {
		return value{}, errs.Invalidf(x.Pos, "%s is not a template", fd.Name)
	}
	pf, err := t.purify(fd, x.Pos)
	if err != nil {
		return value{}, err
	}
	if len(x.Args) > len(fd.Params) {
		return value{}, errs.Invalidf(x.Pos, "%s expects %d arguments, got %d", fd.Name, len(fd.Params), len(x.Args))
	}
	nodes := make([]*ir.Node, len(fd.Params))
	for i, p := range fd.Params {
		var arg ast.Expr
		if i < len(x.Args) {
			arg = x.Args[i]
		} else if p.Default != nil {
			arg = p.Default
		} else {
			return value{}, errs.Invalidf(x.Pos, "%s expects an argument for %s", fd.Name, p.Name)
		}
		v, err := f.exprWithType(arg, pf.params[i])
		if err != nil {
			return value{}, err
		}
		nodes[i] = v.n
	}
	return value{t: pf.ret, n: t.g.Invoke(pf.fn, nodes...)}, nil
}

// purify compiles a pure callee into its own graph, once per name.
func (t *translator) purify(fd *ast.FuncDecl, pos ast.Position) (*pureFn, error) {
	if pf, ok := t.pureFuncs[fd.Name]; ok {
		return pf, nil
	}
	for _, on := range t.inlineStack {
		if on == fd {
			return nil, errs.Unimplementedf(pos, "recursive call to %s is not supported", fd.Name)
		}
	}
	t.inlineStack = append(t.inlineStack, fd)
	defer func() { t.inlineStack = t.inlineStack[:len(t.inlineStack)-1] }()

	savedG, savedIO := t.g, t.io
	defer func() { t.g, t.io = savedG, savedIO }()

	fn := ir.NewFunction(fd.Name)
	t.g = &fn.Graph
	t.io = &funcIO{t: t}

	res := ctype.NewResolver(t.unit)
	nf := t.newFrame(res, fd)
	var params []ctype.Type
	for _, p := range fd.Params {
		pt, err := res.Resolve(p.Type)
		if err != nil {
			return nil, err
		}
		lt, err := t.layout(pt, p.Pos)
		if err != nil {
			return nil, err
		}
		node := fn.AddParam(p.Name, lt)
		nf.declare(&symbol{name: p.Name, kind: symVar, typ: pt, node: node, ro: p.Type.Const})
		params = append(params, pt)
	}
	rt, err := res.Resolve(fd.Result)
	if err != nil {
		return nil, err
	}
	if err := nf.setupReturn(rt, fd.Pos); err != nil {
		return nil, err
	}
	if err := nf.stmts(fd.Body.Stmts); err != nil {
		return nil, err
	}
	fn.Return = nf.retVal

	pf := &pureFn{fn: fn, ret: rt, params: params}
	t.pureFuncs[fd.Name] = pf
	return pf, nil
}

// hasIO conservatively detects channel operations anywhere in a
// function's call graph.
func (t *translator) hasIO(fd *ast.FuncDecl, seen map[*ast.FuncDecl]bool) bool {
	if seen[fd] {
		return false
	}
	for _, p := range fd.Params {
		if p.Type.Name == "channel" {
			return true
		}
	}
	seen[fd] = true
	if fd.Body == nil {
		return false
	}
	found := false
	var visitExpr func(e ast.Expr)
	var visitStmt func(s ast.Stmt)
	visitExpr = func(e ast.Expr) {
		if found || e == nil {
			return
		}
		switch x := e.(type) {
		case *ast.ParenExpr:
			visitExpr(x.X)
		case *ast.UnaryExpr:
			visitExpr(x.X)
		case *ast.IncDecExpr:
			visitExpr(x.X)
		case *ast.BinaryExpr:
			visitExpr(x.X)
			visitExpr(x.Y)
		case *ast.AssignExpr:
			visitExpr(x.LHS)
			visitExpr(x.RHS)
		case *ast.CondExpr:
			visitExpr(x.Cond)
			visitExpr(x.Then)
			visitExpr(x.Else)
		case *ast.MemberExpr:
			visitExpr(x.X)
		case *ast.IndexExpr:
			visitExpr(x.X)
			visitExpr(x.Index)
		case *ast.CastExpr:
			visitExpr(x.X)
		case *ast.InitListExpr:
			for _, el := range x.Elts {
				visitExpr(el)
			}
		case *ast.CallExpr:
			if m, ok := x.Fn.(*ast.MemberExpr); ok {
				if m.Member == "read" || m.Member == "write" {
					found = true
					return
				}
			}
			if id, ok := x.Fn.(*ast.Ident); ok {
				if callee, ok := t.funcs[id.Name]; ok && t.hasIO(callee, seen) {
					found = true
					return
				}
			}
			for _, a := range x.Args {
				visitExpr(a)
			}
		}
	}
	visitStmt = func(s ast.Stmt) {
		if found || s == nil {
			return
		}
		switch x := s.(type) {
		case *ast.BlockStmt:
			for _, s2 := range x.Stmts {
				visitStmt(s2)
			}
		case *ast.DeclStmt:
			for _, d := range x.Decls {
				visitExpr(d.Init)
				for _, a := range d.CtorArgs {
					visitExpr(a)
				}
			}
		case *ast.ExprStmt:
			visitExpr(x.X)
		case *ast.IfStmt:
			visitExpr(x.Cond)
			visitStmt(x.Then)
			visitStmt(x.Else)
		case *ast.SwitchStmt:
			visitExpr(x.Tag)
			for _, c := range x.Cases {
				for _, s2 := range c.Stmts {
					visitStmt(s2)
				}
			}
		case *ast.ForStmt:
			visitStmt(x.Init)
			visitExpr(x.Cond)
			visitExpr(x.Inc)
			visitStmt(x.Body)
		case *ast.ReturnStmt:
			visitExpr(x.Result)
		}
	}
	visitStmt(fd.Body)
	return found
}
