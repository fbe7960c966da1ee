// Package ir is the dataflow intermediate representation: pure value
// graphs per function, plus procs with explicit state and channel
// operations. Nodes appear in dependency order, so evaluation is a
// single forward pass.
package ir

import (
	"fmt"
	"strings"
)

type Type interface {
	String() string
	isIRType()
}

type BitsType struct {
	Width int
}

type TupleType struct {
	Elems []Type
}

type ArrayType struct {
	Elem Type
	Len  int
}

func (*BitsType) isIRType()  {}
func (*TupleType) isIRType() {}
func (*ArrayType) isIRType() {}

func (t *BitsType) String() string { return fmt.Sprintf("bits[%d]", t.Width) }

func (t *TupleType) String() string {
	var parts []string
	for _, e := range t.Elems {
		parts = append(parts, e.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
}

// TypesEqual compares IR types structurally.
func TypesEqual(a, b Type) bool {
	switch at := a.(type) {
	case *BitsType:
		bt, ok := b.(*BitsType)
		return ok && at.Width == bt.Width
	case *TupleType:
		bt, ok := b.(*TupleType)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !TypesEqual(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && at.Len == bt.Len && TypesEqual(at.Elem, bt.Elem)
	}
	return false
}

// Op is a node opcode.
type Op int

const (
	OpLiteral Op = iota
	OpParam
	OpUnary       // opcode in Sym: neg, not, lnot
	OpBinary      // opcode in Sym, signedness-resolved: add, sdiv, ult, ...
	OpSelect      // args: cond, onTrue, onFalse
	OpTuple       // args: elements
	OpTupleIndex  // arg: tuple; Index
	OpArray       // args: elements
	OpArrayIndex  // args: array, index
	OpArrayUpdate // args: array, index, value
	OpConvert     // arg: value; Signed selects sign extension
	OpInvoke      // args: call arguments; Callee
	OpReceive     // proc only; Chan
	OpReceiveIf   // proc only; arg: cond; Chan
	OpSend        // proc only; arg: payload; Chan
	OpSendIf      // proc only; args: cond, payload; Chan
)

// Node is one operation in a graph.
type Node struct {
	ID   int
	Op   Op
	Type Type
	Args []*Node

	Lit    Value     // OpLiteral
	Name   string    // OpParam
	Sym    string    // OpUnary, OpBinary opcode name
	Index  int       // OpTupleIndex
	Signed bool      // OpConvert sign extension
	Callee *Function // OpInvoke
	Chan   *Channel  // channel ops
}

// opName returns the printable opcode.
func (n *Node) opName() string {
	switch n.Op {
	case OpLiteral:
		return "literal"
	case OpParam:
		return "param"
	case OpUnary, OpBinary:
		return n.Sym
	case OpSelect:
		return "sel"
	case OpTuple:
		return "tuple"
	case OpTupleIndex:
		return "tuple_index"
	case OpArray:
		return "array"
	case OpArrayIndex:
		return "array_index"
	case OpArrayUpdate:
		return "array_update"
	case OpConvert:
		if n.Signed {
			return "sign_ext"
		}
		return "zero_ext"
	case OpInvoke:
		return "invoke"
	case OpReceive:
		return "receive"
	case OpReceiveIf:
		return "receive_if"
	case OpSend:
		return "send"
	case OpSendIf:
		return "send_if"
	}
	return "unknown"
}

// ChannelKind distinguishes queue-backed ports from wire inputs.
type ChannelKind int

const (
	ChannelFIFO ChannelKind = iota
	ChannelDirectIn
)

type Channel struct {
	Name  string
	Kind  ChannelKind
	Input bool
	Elem  Type
}

// Graph holds the node list shared by functions and procs. Builder
// methods append in dependency order.
type Graph struct {
	Nodes []*Node

	nextID int
}

func (g *Graph) add(n *Node) *Node {
	g.nextID++
	n.ID = g.nextID
	g.Nodes = append(g.Nodes, n)
	return n
}

func (g *Graph) Literal(v Value) *Node {
	return g.add(&Node{Op: OpLiteral, Type: v.Type(), Lit: v})
}

func (g *Graph) Param(name string, t Type) *Node {
	return g.add(&Node{Op: OpParam, Type: t, Name: name})
}

func (g *Graph) Unary(sym string, t Type, x *Node) *Node {
	return g.add(&Node{Op: OpUnary, Type: t, Sym: sym, Args: []*Node{x}})
}

func (g *Graph) Binary(sym string, t Type, x, y *Node) *Node {
	return g.add(&Node{Op: OpBinary, Type: t, Sym: sym, Args: []*Node{x, y}})
}

func (g *Graph) Select(cond, onTrue, onFalse *Node) *Node {
	return g.add(&Node{Op: OpSelect, Type: onTrue.Type, Args: []*Node{cond, onTrue, onFalse}})
}

func (g *Graph) MakeTuple(elems ...*Node) *Node {
	tt := &TupleType{}
	for _, e := range elems {
		tt.Elems = append(tt.Elems, e.Type)
	}
	return g.add(&Node{Op: OpTuple, Type: tt, Args: elems})
}

func (g *Graph) TupleIndex(tuple *Node, index int) *Node {
	tt := tuple.Type.(*TupleType)
	return g.add(&Node{Op: OpTupleIndex, Type: tt.Elems[index], Index: index, Args: []*Node{tuple}})
}

func (g *Graph) MakeArray(elem Type, elems ...*Node) *Node {
	return g.add(&Node{Op: OpArray, Type: &ArrayType{Elem: elem, Len: len(elems)}, Args: elems})
}

func (g *Graph) ArrayIndex(arr, index *Node) *Node {
	at := arr.Type.(*ArrayType)
	return g.add(&Node{Op: OpArrayIndex, Type: at.Elem, Args: []*Node{arr, index}})
}

func (g *Graph) ArrayUpdate(arr, index, value *Node) *Node {
	return g.add(&Node{Op: OpArrayUpdate, Type: arr.Type, Args: []*Node{arr, index, value}})
}

func (g *Graph) Convert(x *Node, to Type, signed bool) *Node {
	return g.add(&Node{Op: OpConvert, Type: to, Signed: signed, Args: []*Node{x}})
}

func (g *Graph) Invoke(callee *Function, args ...*Node) *Node {
	var rt Type = &TupleType{}
	if callee.Return != nil {
		rt = callee.Return.Type
	}
	return g.add(&Node{Op: OpInvoke, Type: rt, Callee: callee, Args: args})
}

func (g *Graph) Receive(ch *Channel) *Node {
	return g.add(&Node{Op: OpReceive, Type: ch.Elem, Chan: ch})
}

func (g *Graph) ReceiveIf(ch *Channel, cond *Node) *Node {
	return g.add(&Node{Op: OpReceiveIf, Type: ch.Elem, Chan: ch, Args: []*Node{cond}})
}

func (g *Graph) Send(ch *Channel, payload *Node) *Node {
	return g.add(&Node{Op: OpSend, Type: &TupleType{}, Chan: ch, Args: []*Node{payload}})
}

func (g *Graph) SendIf(ch *Channel, cond, payload *Node) *Node {
	return g.add(&Node{Op: OpSendIf, Type: &TupleType{}, Chan: ch, Args: []*Node{cond, payload}})
}

// Prepend inserts a node at the front of the list, before its uses.
// Used when a parameter's final shape is only known after translation.
func (g *Graph) Prepend(n *Node) *Node {
	g.nextID++
	n.ID = g.nextID
	g.Nodes = append([]*Node{n}, g.Nodes...)
	return n
}

// Function is a pure dataflow function.
type Function struct {
	Name   string
	Params []*Node
	Graph
	Return *Node
}

func NewFunction(name string) *Function {
	return &Function{Name: name}
}

func (f *Function) AddParam(name string, t Type) *Node {
	n := f.Param(name, t)
	f.Params = append(f.Params, n)
	return n
}

// Proc is a repeating process. State elements read as params and are
// replaced by Next values each iteration.
type Proc struct {
	Name      string
	StateInit []Value
	State     []*Node
	Graph
	Next []*Node
}

func NewProc(name string) *Proc {
	return &Proc{Name: name}
}

func (p *Proc) AddState(name string, init Value) *Node {
	n := p.Param(name, init.Type())
	p.State = append(p.State, n)
	p.StateInit = append(p.StateInit, init)
	return n
}

// Package is a translated unit.
type Package struct {
	Name     string
	Funcs    []*Function
	Procs    []*Proc
	Channels []*Channel
}

func (p *Package) Function(name string) *Function {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (p *Package) Channel(name string) *Channel {
	for _, c := range p.Channels {
		if c.Name == name {
			return c
		}
	}
	return nil
}
