package translate

import (
	"hlscc/internal/ast"
	"hlscc/internal/ctype"
	errs "hlscc/internal/errors"
	"hlscc/internal/ir"
)

// generateProc builds the repeating-process form of the top function.
// Channel parameters bind to the ports named by the block spec. A
// non-const reference parameter bound there as a direct input is read
// fresh every activation; the remaining reference parameters
// become proc state carried from one iteration to the next.
func (t *translator) generateProc(top *ast.FuncDecl) error {
	if len(top.Templates) > 0 {
		return errs.Unimplementedf(top.Pos, "top function %s cannot be a template", top.Name)
	}
	spec := t.opts.Block
	name := spec.Name
	if name == "" {
		name = top.Name
	}
	p := ir.NewProc(name)
	t.g = &p.Graph
	t.io = &procIO{t: t, p: p}

	res := ctype.NewResolver(t.unit)
	f := t.newFrame(res, top)

	bound := make(map[string]bool)
	var state []*symbol
	for _, prm := range top.Params {
		pt, err := res.Resolve(prm.Type)
		if err != nil {
			return err
		}
		if ch, ok := pt.(*ctype.ChannelType); ok {
			cs := &chanSym{name: prm.Name, elem: ch.Elem}
			if bc := spec.Find(prm.Name); bc != nil {
				lt, err := t.layout(ch.Elem, prm.Pos)
				if err != nil {
					return err
				}
				irch := &ir.Channel{Name: prm.Name, Input: bc.IsInput(), Elem: lt}
				if bc.IsDirect() {
					irch.Kind = ir.ChannelDirectIn
				}
				t.pkg.Channels = append(t.pkg.Channels, irch)
				cs.irch = irch
				bound[prm.Name] = true
			}
			f.declare(&symbol{name: prm.Name, kind: symChannel, typ: pt, ch: cs})
			continue
		}
		if !prm.Type.Reference || prm.Type.Const {
			return errs.Invalidf(prm.Pos, "proc top parameter %s must be a channel or a non-const reference", prm.Name)
		}
		lt, err := t.layout(pt, prm.Pos)
		if err != nil {
			return err
		}
		if bc := spec.Find(prm.Name); bc != nil {
			if !bc.IsDirect() {
				return errs.Invalidf(prm.Pos, "block spec channel %s must be direct to bind non-channel parameter %s", bc.Name, prm.Name)
			}
			irch := &ir.Channel{Name: prm.Name, Input: true, Elem: lt, Kind: ir.ChannelDirectIn}
			t.pkg.Channels = append(t.pkg.Channels, irch)
			f.declare(&symbol{name: prm.Name, kind: symVar, typ: pt, node: p.Receive(irch)})
			bound[prm.Name] = true
			continue
		}
		node := p.AddState(prm.Name, ir.ZeroValue(lt))
		sym := &symbol{name: prm.Name, kind: symVar, typ: pt, node: node}
		f.declare(sym)
		state = append(state, sym)
	}

	for _, bc := range spec.Channels {
		if !bound[bc.Name] {
			return errs.NotFoundf(top.Pos, "block spec channel %s does not match a parameter of %s", bc.Name, top.Name)
		}
	}

	rt, err := res.Resolve(top.Result)
	if err != nil {
		return err
	}
	if _, ok := rt.(*ctype.VoidType); !ok {
		return errs.Invalidf(top.Pos, "top function %s for a proc must return void", top.Name)
	}
	if err := f.setupReturn(rt, top.Pos); err != nil {
		return err
	}
	if err := f.stmts(top.Body.Stmts); err != nil {
		return err
	}

	for _, sym := range state {
		p.Next = append(p.Next, sym.node)
	}

	t.pkg.Procs = append(t.pkg.Procs, p)
	t.appendPureFuncs()
	return ir.InlineInvokes(t.pkg)
}
