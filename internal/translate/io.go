package translate

import (
	"fmt"

	"hlscc/internal/ast"
	"hlscc/internal/ctype"
	errs "hlscc/internal/errors"
	"hlscc/internal/ir"
)

// ioBackend materializes channel operations. Reads and writes are
// logged in program order with the activation condition of the site
// that issued them; inlined subroutines splice their ops into the
// caller's order by sharing the backend.
type ioBackend interface {
	recv(f *frame, ch *chanSym, cond *ir.Node, pos ast.Position) (*ir.Node, error)
	send(f *frame, ch *chanSym, payload *ir.Node, cond *ir.Node, pos ast.Position) error
}

type ioRecord struct {
	isRecv bool
	ch     *chanSym
	cond   *ir.Node // nil when unconditional
	value  *ir.Node // read placeholder or send payload
}

// funcIO is the combinational backend: each read draws from a
// per-channel parameter and every op becomes a {payload, fired} entry
// in the result tuple.
type funcIO struct {
	t     *translator
	ops   []*ioRecord
	reads map[*chanSym][]*ir.Node
	order []*chanSym
}

func (fio *funcIO) recv(f *frame, ch *chanSym, cond *ir.Node, pos ast.Position) (*ir.Node, error) {
	lt, err := fio.t.layout(ch.elem, pos)
	if err != nil {
		return nil, err
	}
	if fio.reads == nil {
		fio.reads = make(map[*chanSym][]*ir.Node)
	}
	if len(fio.reads[ch]) == 0 {
		fio.order = append(fio.order, ch)
	}
	placeholder := fio.t.g.Param(fmt.Sprintf("%s__%d", ch.name, len(fio.reads[ch])), lt)
	fio.reads[ch] = append(fio.reads[ch], placeholder)
	fio.ops = append(fio.ops, &ioRecord{isRecv: true, ch: ch, cond: cond, value: placeholder})
	return placeholder, nil
}

func (fio *funcIO) send(f *frame, ch *chanSym, payload *ir.Node, cond *ir.Node, pos ast.Position) error {
	fio.ops = append(fio.ops, &ioRecord{ch: ch, cond: cond, value: payload})
	return nil
}

// finalize shapes the channel parameters and the result tuple. A
// channel read once becomes a bare parameter; multiple reads share a
// tuple-typed parameter, with each placeholder rewritten in place into
// a tuple_index so existing references stay valid.
func (fio *funcIO) finalize(fn *ir.Function, f *frame, refOut []*symbol) {
	t := fio.t
	for _, ch := range fio.order {
		nodes := fio.reads[ch]
		if len(nodes) == 1 {
			nodes[0].Name = ch.name
			fn.Params = append(fn.Params, nodes[0])
			continue
		}
		tt := &ir.TupleType{}
		for _, n := range nodes {
			tt.Elems = append(tt.Elems, n.Type)
		}
		param := &ir.Node{Op: ir.OpParam, Type: tt, Name: ch.name}
		fn.Prepend(param)
		fn.Params = append(fn.Params, param)
		for i, n := range nodes {
			n.Op = ir.OpTupleIndex
			n.Name = ""
			n.Index = i
			n.Args = []*ir.Node{param}
		}
	}

	var entries []*ir.Node
	if f.retVal != nil {
		entries = append(entries, f.retVal)
	}
	for _, op := range fio.ops {
		fired := op.cond
		if fired == nil {
			fired = t.lit1(true)
		}
		entries = append(entries, t.g.MakeTuple(op.value, fired))
	}
	for _, sym := range refOut {
		entries = append(entries, sym.node)
	}

	switch {
	case len(entries) == 0:
		fn.Return = nil
	case len(entries) == 1 && f.retVal != nil:
		fn.Return = f.retVal
	default:
		fn.Return = t.g.MakeTuple(entries...)
	}
}

// procIO emits real channel ops: conditional sites become receive_if
// and send_if, direct-in channels read unconditionally.
type procIO struct {
	t *translator
	p *ir.Proc
}

func (pio *procIO) recv(f *frame, ch *chanSym, cond *ir.Node, pos ast.Position) (*ir.Node, error) {
	if ch.irch == nil {
		return nil, errs.NotFoundf(pos, "channel %s is not bound by the block spec", ch.name)
	}
	if !ch.irch.Input {
		return nil, errs.Invalidf(pos, "read from output channel %s", ch.name)
	}
	if ch.irch.Kind == ir.ChannelDirectIn || cond == nil {
		return pio.p.Receive(ch.irch), nil
	}
	return pio.p.ReceiveIf(ch.irch, cond), nil
}

func (pio *procIO) send(f *frame, ch *chanSym, payload *ir.Node, cond *ir.Node, pos ast.Position) error {
	if ch.irch == nil {
		return errs.NotFoundf(pos, "channel %s is not bound by the block spec", ch.name)
	}
	if ch.irch.Input {
		return errs.Invalidf(pos, "write to input channel %s", ch.name)
	}
	if cond == nil {
		pio.p.Send(ch.irch, payload)
	} else {
		pio.p.SendIf(ch.irch, cond, payload)
	}
	return nil
}

// channelOperand resolves the receiver of a read or write call. Only a
// direct reference to a channel parameter is a legal endpoint.
func (f *frame) channelOperand(e ast.Expr) (*chanSym, error) {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return f.channelOperand(x.X)
	case *ast.Ident:
		sym := f.lookup(x.Name)
		if sym == nil {
			return nil, errs.NotFoundf(x.Pos, "unknown name %s", x.Name)
		}
		if sym.kind == symChannel {
			return sym.ch, nil
		}
		return nil, errs.Invalidf(x.Pos, "IO ops should be on channel parameters")
	default:
		return nil, errs.Invalidf(e.NodePos(), "IO ops should be on direct references")
	}
}

// isChannelTyped reports whether an expression denotes a channel
// without translating it.
func (f *frame) isChannelTyped(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return f.isChannelTyped(x.X)
	case *ast.Ident:
		if sym := f.lookup(x.Name); sym != nil {
			if sym.kind == symChannel {
				return true
			}
			_, ok := sym.typ.(*ctype.ChannelType)
			return ok
		}
	default:
		_, ok := f.staticTypeOf(e).(*ctype.ChannelType)
		return ok
	}
	return false
}

// staticTypeOf is a best-effort type lookup used only for dispatch; it
// never emits nodes.
func (f *frame) staticTypeOf(e ast.Expr) ctype.Type {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return f.staticTypeOf(x.X)
	case *ast.Ident:
		if x.Name == "this" && f.thisSym != nil {
			return f.thisSym.typ
		}
		if sym := f.lookup(x.Name); sym != nil {
			return sym.typ
		}
		if f.thisSym != nil {
			if st, ok := f.thisSym.typ.(*ctype.StructType); ok {
				if i := st.FieldIndex(x.Name); i >= 0 {
					return st.Fields[i].Type
				}
			}
		}
	case *ast.MemberExpr:
		if st, ok := f.staticTypeOf(x.X).(*ctype.StructType); ok {
			if i := st.FieldIndex(x.Member); i >= 0 {
				return st.Fields[i].Type
			}
		}
	case *ast.IndexExpr:
		if at, ok := f.staticTypeOf(x.X).(*ctype.ArrayType); ok {
			return at.Elem
		}
	}
	return nil
}
