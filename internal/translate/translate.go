// Package translate lowers the HLC AST to the dataflow IR. Imperative
// control flow is flattened into conditionally gated straight-line
// dataflow: every assignment rebinds its symbol through a select on the
// statement's activation condition, and return, break and continue are
// monotonic condition flags rather than jumps.
package translate

import (
	"fmt"
	"sort"

	"hlscc/internal/ast"
	"hlscc/internal/blockspec"
	"hlscc/internal/ctype"
	errs "hlscc/internal/errors"
	"hlscc/internal/ir"
)

// Options selects the top function and the generation mode. A nil
// Block produces the function form; a block spec produces a proc.
type Options struct {
	Package string
	Top     string
	Block   *blockspec.Spec
}

const maxUnrollIterations = 1000

type translator struct {
	unit *ast.Unit
	opts Options
	pkg  *ir.Package
	g    *ir.Graph
	io   ioBackend

	funcs   map[string]*ast.FuncDecl
	structs map[string]*ast.StructDecl

	pureFuncs   map[string]*pureFn
	inlineStack []*ast.FuncDecl
}

// pureFn is a callee compiled to a standalone IR function instead of
// being inlined at the AST level.
type pureFn struct {
	fn     *ir.Function
	ret    ctype.Type
	params []ctype.Type
}

// Translate compiles one unit around its top function.
func Translate(unit *ast.Unit, opts Options) (*ir.Package, error) {
	if opts.Package == "" {
		opts.Package = "hlscc"
	}
	t := &translator{
		unit:      unit,
		opts:      opts,
		pkg:       &ir.Package{Name: opts.Package},
		funcs:     make(map[string]*ast.FuncDecl),
		structs:   make(map[string]*ast.StructDecl),
		pureFuncs: make(map[string]*pureFn),
	}
	for _, fd := range unit.Funcs {
		t.funcs[fd.Name] = fd
	}
	for _, sd := range unit.Structs {
		t.structs[sd.Name] = sd
	}

	top, err := t.findTop()
	if err != nil {
		return nil, err
	}
	if opts.Block != nil {
		if err := t.generateProc(top); err != nil {
			return nil, err
		}
	} else {
		if err := t.generateFunction(top); err != nil {
			return nil, err
		}
	}
	return t.pkg, nil
}

// findTop picks the entry function: the configured name, or the single
// declaration marked with the top pragma.
func (t *translator) findTop() (*ast.FuncDecl, error) {
	if t.opts.Top != "" {
		if fd, ok := t.funcs[t.opts.Top]; ok {
			return fd, nil
		}
		return nil, errs.NotFoundf(ast.Position{Filename: t.unit.Filename},
			"No top function found: %s is not declared", t.opts.Top)
	}
	var top *ast.FuncDecl
	for _, fd := range t.unit.Funcs {
		if !fd.Top {
			continue
		}
		if top != nil {
			return nil, errs.Invalidf(fd.Pos, "multiple top functions marked")
		}
		top = fd
	}
	if top == nil {
		return nil, errs.NotFoundf(ast.Position{Filename: t.unit.Filename}, "No top function found")
	}
	return top, nil
}

func (t *translator) newFrame(res *ctype.Resolver, fn *ast.FuncDecl) *frame {
	f := &frame{tr: t, res: res, fn: fn}
	f.pushScope()
	return f
}

// generateFunction builds the combinational form: channel reads draw
// from per-channel parameters and every I/O op contributes a
// {payload, fired} entry to the result tuple.
func (t *translator) generateFunction(top *ast.FuncDecl) error {
	if len(top.Templates) > 0 {
		return errs.Unimplementedf(top.Pos, "top function %s cannot be a template", top.Name)
	}
	fn := ir.NewFunction(top.Name)
	t.g = &fn.Graph
	fio := &funcIO{t: t}
	t.io = fio

	res := ctype.NewResolver(t.unit)
	f := t.newFrame(res, top)

	var refOut []*symbol
	for _, p := range top.Params {
		pt, err := res.Resolve(p.Type)
		if err != nil {
			return err
		}
		if ch, ok := pt.(*ctype.ChannelType); ok {
			cs := &chanSym{name: p.Name, elem: ch.Elem}
			f.declare(&symbol{name: p.Name, kind: symChannel, typ: pt, ch: cs})
			continue
		}
		lt, err := t.layout(pt, p.Pos)
		if err != nil {
			return err
		}
		node := fn.AddParam(p.Name, lt)
		sym := &symbol{name: p.Name, kind: symVar, typ: pt, node: node, ro: p.Type.Const}
		f.declare(sym)
		if p.Type.Reference && !p.Type.Const {
			refOut = append(refOut, sym)
		}
	}

	rt, err := res.Resolve(top.Result)
	if err != nil {
		return err
	}
	if err := f.setupReturn(rt, top.Pos); err != nil {
		return err
	}
	if err := f.stmts(top.Body.Stmts); err != nil {
		return err
	}

	fio.finalize(fn, f, refOut)
	t.pkg.Funcs = append(t.pkg.Funcs, fn)
	t.appendPureFuncs()
	return nil
}

func (t *translator) appendPureFuncs() {
	names := make([]string, 0, len(t.pureFuncs))
	for name := range t.pureFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.pkg.Funcs = append(t.pkg.Funcs, t.pureFuncs[name].fn)
	}
}

// setupReturn initializes the return accumulator to the zero value of
// the declared result type.
func (f *frame) setupReturn(rt ctype.Type, pos ast.Position) error {
	f.retType = rt
	if _, ok := rt.(*ctype.VoidType); ok {
		return nil
	}
	zero, err := f.tr.zeroNode(rt, pos)
	if err != nil {
		return err
	}
	f.retVal = zero
	return nil
}

// layout maps a source type onto its IR shape: ints and bool flatten to
// bits, structs to tuples of their flattened fields, no-tuple structs
// to the bare field.
func (t *translator) layout(ct ctype.Type, pos ast.Position) (ir.Type, error) {
	switch tt := ct.(type) {
	case *ctype.IntType:
		return &ir.BitsType{Width: tt.Width}, nil
	case *ctype.BoolType:
		return &ir.BitsType{Width: 1}, nil
	case *ctype.ArrayType:
		elem, err := t.layout(tt.Elem, pos)
		if err != nil {
			return nil, err
		}
		return &ir.ArrayType{Elem: elem, Len: tt.Len}, nil
	case *ctype.StructType:
		if tt.NoTuple {
			return t.layout(tt.Fields[0].Type, pos)
		}
		out := &ir.TupleType{}
		for _, fl := range tt.Fields {
			lt, err := t.layout(fl.Type, pos)
			if err != nil {
				return nil, err
			}
			out.Elems = append(out.Elems, lt)
		}
		return out, nil
	}
	return nil, errs.Invalidf(pos, "type %s has no value layout", ct)
}

func (t *translator) zeroNode(ct ctype.Type, pos ast.Position) (*ir.Node, error) {
	lt, err := t.layout(ct, pos)
	if err != nil {
		return nil, err
	}
	return t.g.Literal(ir.ZeroValue(lt)), nil
}

// intLiteral builds a typed integer literal node.
func (t *translator) intLiteral(it *ctype.IntType, v int64) *ir.Node {
	return t.g.Literal(ir.MakeBitsInt64(it.Width, v))
}

func litType(v int64) *ctype.IntType {
	if v > (1<<31)-1 || v < -(1<<31) {
		return &ctype.IntType{Width: 64, Signed: true}
	}
	return &ctype.IntType{Width: 32, Signed: true}
}

// convert applies implicit conversion, including through a struct's
// conversion operator.
func (f *frame) convert(v value, to ctype.Type, pos ast.Position) (value, error) {
	if ctype.Equal(v.t, to) {
		return value{t: to, n: v.n}, nil
	}
	t := f.tr
	switch tt := to.(type) {
	case *ctype.IntType:
		switch vt := v.t.(type) {
		case *ctype.IntType:
			if vt.Width == tt.Width {
				return value{t: to, n: v.n}, nil
			}
			return value{t: to, n: t.g.Convert(v.n, &ir.BitsType{Width: tt.Width}, vt.Signed)}, nil
		case *ctype.BoolType:
			return value{t: to, n: t.g.Convert(v.n, &ir.BitsType{Width: tt.Width}, false)}, nil
		case *ctype.StructType:
			conv, err := f.convertViaOperator(v, vt, pos)
			if err != nil {
				return value{}, err
			}
			return f.convert(conv, to, pos)
		}
	case *ctype.BoolType:
		switch vt := v.t.(type) {
		case *ctype.IntType:
			zero := t.intLiteral(vt, 0)
			return value{t: to, n: t.g.Binary("ne", &ir.BitsType{Width: 1}, v.n, zero)}, nil
		case *ctype.StructType:
			conv, err := f.convertViaOperator(v, vt, pos)
			if err != nil {
				return value{}, err
			}
			return f.convert(conv, to, pos)
		}
	case *ctype.StructType:
		if vt, ok := v.t.(*ctype.StructType); ok && vt.Decl == tt.Decl && ctype.Equal(vt, tt) {
			return value{t: to, n: v.n}, nil
		}
		if tt.NoTuple && ctype.Equal(v.t, tt.Fields[0].Type) {
			return value{t: to, n: v.n}, nil
		}
		// A single-argument constructor acts as an implicit conversion.
		conv, err := f.tryCtorConvert(v, tt, pos)
		if err != nil || conv != nil {
			if err != nil {
				return value{}, err
			}
			return *conv, nil
		}
	}
	return value{}, errs.Invalidf(pos, "cannot convert %s to %s", v.t, to)
}

func (f *frame) toBool(v value, pos ast.Position) (value, error) {
	return f.convert(v, &ctype.BoolType{}, pos)
}

func fmtOpName(op string) string { return fmt.Sprintf("operator%s", op) }
