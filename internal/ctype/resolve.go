package ctype

import (
	"fmt"

	"hlscc/internal/ast"
	errs "hlscc/internal/errors"
)

// Binding is one template argument: a type, or a constant value (bool
// constants store 0 or 1 with IsBool set).
type Binding struct {
	Type   Type
	Value  int64
	IsBool bool
}

// Resolver turns syntactic type references into resolved types. A
// resolver carries the template bindings of the scope it was derived
// for; WithBindings layers a new scope.
type Resolver struct {
	structs  map[string]*ast.StructDecl
	typedefs map[string]*ast.TypeExpr
	bindings map[string]Binding

	cache     map[string]*StructType
	resolving map[string]bool
}

func NewResolver(unit *ast.Unit) *Resolver {
	r := &Resolver{
		structs:   make(map[string]*ast.StructDecl),
		typedefs:  make(map[string]*ast.TypeExpr),
		bindings:  make(map[string]Binding),
		cache:     make(map[string]*StructType),
		resolving: make(map[string]bool),
	}
	if unit != nil {
		for _, s := range unit.Structs {
			r.structs[s.Name] = s
		}
		for _, td := range unit.Typedefs {
			r.typedefs[td.Name] = td.Type
		}
	}
	return r
}

// WithBindings derives a resolver for a template instantiation scope.
// The struct and typedef tables are shared.
func (r *Resolver) WithBindings(bindings map[string]Binding) *Resolver {
	derived := *r
	derived.bindings = bindings
	return &derived
}

func (r *Resolver) Bindings() map[string]Binding { return r.bindings }

// fixed-width integer aliases available without declaration
var stdintTypes = map[string]*IntType{
	"int8_t": {8, true}, "uint8_t": {8, false},
	"int16_t": {16, true}, "uint16_t": {16, false},
	"int32_t": {32, true}, "uint32_t": {32, false},
	"int64_t": {64, true}, "uint64_t": {64, false},
}

func (r *Resolver) Resolve(t *ast.TypeExpr) (Type, error) {
	switch t.Name {
	case "void":
		return &VoidType{}, nil
	case "bool":
		return &BoolType{}, nil
	case "char":
		return &IntType{Width: 8, Signed: !t.Unsigned}, nil
	case "short":
		return &IntType{Width: 16, Signed: !t.Unsigned}, nil
	case "int":
		return &IntType{Width: 32, Signed: !t.Unsigned}, nil
	case "long":
		return &IntType{Width: 64, Signed: !t.Unsigned}, nil
	case "ac_int":
		return r.resolveAcInt(t)
	case "channel":
		return r.resolveChannel(t)
	}

	if b, ok := r.bindings[t.Name]; ok {
		if b.Type == nil {
			return nil, errs.Invalidf(t.Pos, "template parameter %s is a value, not a type", t.Name)
		}
		return b.Type, nil
	}
	if it, ok := stdintTypes[t.Name]; ok {
		return &IntType{Width: it.Width, Signed: it.Signed}, nil
	}
	if alias, ok := r.typedefs[t.Name]; ok {
		return r.Resolve(alias)
	}
	if decl, ok := r.structs[t.Name]; ok {
		return r.instantiate(decl, t)
	}
	return nil, errs.NotFoundf(t.Pos, "unknown type %s", t.Name)
}

func (r *Resolver) resolveAcInt(t *ast.TypeExpr) (Type, error) {
	if len(t.TemplateArgs) != 2 {
		return nil, errs.Invalidf(t.Pos, "ac_int requires width and signedness arguments")
	}
	width, _, err := r.evalTemplateValue(t.TemplateArgs[0])
	if err != nil {
		return nil, err
	}
	signed, _, err := r.evalTemplateValue(t.TemplateArgs[1])
	if err != nil {
		return nil, err
	}
	if width < 1 || width > 64 {
		return nil, errs.Unimplementedf(t.Pos, "unsupported bit width %d", width)
	}
	return &IntType{Width: int(width), Signed: signed != 0}, nil
}

func (r *Resolver) resolveChannel(t *ast.TypeExpr) (Type, error) {
	if len(t.TemplateArgs) != 1 {
		return nil, errs.Invalidf(t.Pos, "channel requires an element type argument")
	}
	elem, err := r.resolveTemplateType(t.TemplateArgs[0])
	if err != nil {
		return nil, err
	}
	return &ChannelType{Elem: elem}, nil
}

// resolveTemplateType interprets a template argument as a type. Bare
// names parse as expressions, so Ident arguments are retried as types.
func (r *Resolver) resolveTemplateType(a *ast.TemplateArg) (Type, error) {
	if a.Type != nil {
		return r.Resolve(a.Type)
	}
	if id, ok := a.Expr.(*ast.Ident); ok {
		return r.Resolve(&ast.TypeExpr{Pos: a.Pos, Name: id.Name})
	}
	return nil, errs.Invalidf(a.Pos, "expected a type argument")
}

// evalTemplateValue interprets a template argument as a constant value.
func (r *Resolver) evalTemplateValue(a *ast.TemplateArg) (int64, bool, error) {
	if a.Type != nil {
		return 0, false, errs.Invalidf(a.Pos, "expected a value argument")
	}
	return r.EvalConst(a.Expr)
}

// EvalConst evaluates a compile-time constant expression; identifiers
// resolve against template bindings. The bool result reports whether
// the value is boolean typed.
func (r *Resolver) EvalConst(e ast.Expr) (int64, bool, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return x.Value, false, nil
	case *ast.BoolLit:
		if x.Value {
			return 1, true, nil
		}
		return 0, true, nil
	case *ast.Ident:
		if b, ok := r.bindings[x.Name]; ok && b.Type == nil {
			return b.Value, b.IsBool, nil
		}
		return 0, false, errs.Invalidf(x.Pos, "%s is not a constant", x.Name)
	case *ast.ParenExpr:
		return r.EvalConst(x.X)
	case *ast.UnaryExpr:
		v, _, err := r.EvalConst(x.X)
		if err != nil {
			return 0, false, err
		}
		switch x.Op {
		case "-":
			return -v, false, nil
		case "+":
			return v, false, nil
		case "~":
			return ^v, false, nil
		case "!":
			if v == 0 {
				return 1, true, nil
			}
			return 0, true, nil
		}
		return 0, false, errs.Invalidf(x.Pos, "operator %s is not constant", x.Op)
	case *ast.BinaryExpr:
		a, _, err := r.EvalConst(x.X)
		if err != nil {
			return 0, false, err
		}
		b, _, err := r.EvalConst(x.Y)
		if err != nil {
			return 0, false, err
		}
		switch x.Op {
		case "+":
			return a + b, false, nil
		case "-":
			return a - b, false, nil
		case "*":
			return a * b, false, nil
		case "/":
			if b == 0 {
				return 0, false, errs.Invalidf(x.Pos, "constant division by zero")
			}
			return a / b, false, nil
		case "%":
			if b == 0 {
				return 0, false, errs.Invalidf(x.Pos, "constant division by zero")
			}
			return a % b, false, nil
		case "<<":
			return a << uint(b), false, nil
		case ">>":
			return a >> uint(b), false, nil
		case "&":
			return a & b, false, nil
		case "|":
			return a | b, false, nil
		case "^":
			return a ^ b, false, nil
		case "==":
			return boolConst(a == b)
		case "!=":
			return boolConst(a != b)
		case "<":
			return boolConst(a < b)
		case "<=":
			return boolConst(a <= b)
		case ">":
			return boolConst(a > b)
		case ">=":
			return boolConst(a >= b)
		case "&&":
			return boolConst(a != 0 && b != 0)
		case "||":
			return boolConst(a != 0 || b != 0)
		}
		return 0, false, errs.Invalidf(x.Pos, "operator %s is not constant", x.Op)
	}
	return 0, false, errs.Invalidf(e.NodePos(), "expression is not a constant")
}

func boolConst(b bool) (int64, bool, error) {
	if b {
		return 1, true, nil
	}
	return 0, true, nil
}

// BindTemplates binds an explicit template argument list against
// declared parameters, used for function template instantiation.
func (r *Resolver) BindTemplates(params []*ast.TemplateParam, args []*ast.TemplateArg, pos ast.Position) (map[string]Binding, error) {
	if len(params) != len(args) {
		return nil, errs.Invalidf(pos, "expected %d template arguments, got %d", len(params), len(args))
	}
	out := make(map[string]Binding, len(params))
	for i, tp := range params {
		if tp.TypeName {
			t, err := r.resolveTemplateType(args[i])
			if err != nil {
				return nil, err
			}
			out[tp.Name] = Binding{Type: t}
		} else {
			v, isBool, err := r.evalTemplateValue(args[i])
			if err != nil {
				return nil, err
			}
			out[tp.Name] = Binding{Value: v, IsBool: isBool}
		}
	}
	return out, nil
}

// instantiate resolves a struct declaration, binding template arguments
// and flattening the single allowed base class ahead of own fields.
func (r *Resolver) instantiate(decl *ast.StructDecl, ref *ast.TypeExpr) (*StructType, error) {
	if len(decl.Templates) != len(ref.TemplateArgs) {
		return nil, errs.Invalidf(ref.Pos, "%s expects %d template arguments, got %d",
			decl.Name, len(decl.Templates), len(ref.TemplateArgs))
	}

	bindings := make(map[string]Binding, len(decl.Templates))
	key := decl.Name
	for i, tp := range decl.Templates {
		arg := ref.TemplateArgs[i]
		if tp.TypeName {
			t, err := r.resolveTemplateType(arg)
			if err != nil {
				return nil, err
			}
			bindings[tp.Name] = Binding{Type: t}
			key += fmt.Sprintf("|t:%s", t)
		} else {
			v, isBool, err := r.evalTemplateValue(arg)
			if err != nil {
				return nil, err
			}
			bindings[tp.Name] = Binding{Value: v, IsBool: isBool}
			key += fmt.Sprintf("|v:%d", v)
		}
	}

	if st, ok := r.cache[key]; ok {
		return st, nil
	}
	if r.resolving[key] {
		return nil, errs.Unimplementedf(ref.Pos, "recursive struct %s", decl.Name)
	}
	r.resolving[key] = true
	defer delete(r.resolving, key)

	inner := r.WithBindings(bindings)
	st := &StructType{
		Name:     decl.Name,
		NoTuple:  decl.NoTuple,
		Decl:     decl,
		Bindings: bindings,
	}

	if len(decl.Bases) > 1 {
		return nil, errs.Unimplementedf(decl.Pos, "multiple inheritance is not supported")
	}
	for _, base := range decl.Bases {
		bt, err := inner.Resolve(base)
		if err != nil {
			return nil, err
		}
		bst, ok := bt.(*StructType)
		if !ok {
			return nil, errs.Invalidf(base.Pos, "base of %s is not a struct", decl.Name)
		}
		for _, f := range bst.Fields {
			st.Fields = append(st.Fields, &Field{Name: f.Name, Type: f.Type, FromBase: true})
		}
	}

	for _, f := range decl.Fields {
		if f.Static {
			continue
		}
		ft, err := inner.Resolve(f.Type)
		if err != nil {
			return nil, err
		}
		ft, err = inner.ApplyDims(ft, f.ArrayDims)
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, &Field{Name: f.Name, Type: ft})
	}

	if st.NoTuple && len(st.Fields) != 1 {
		return nil, errs.Unimplementedf(decl.Pos,
			"no-tuple struct %s has %d fields, only 1 field is supported", decl.Name, len(st.Fields))
	}

	r.cache[key] = st
	return st, nil
}

// ApplyDims wraps a base type with array dimensions, outermost first.
func (r *Resolver) ApplyDims(base Type, dims []ast.Expr) (Type, error) {
	t := base
	for i := len(dims) - 1; i >= 0; i-- {
		n, _, err := r.EvalConst(dims[i])
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, errs.Invalidf(dims[i].NodePos(), "array length must be positive")
		}
		t = &ArrayType{Elem: t, Len: int(n)}
	}
	return t, nil
}
