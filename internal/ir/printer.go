package ir

import (
	"fmt"
	"strings"
)

// Print renders the package in a stable text form used by the CLI and
// the golden tests.
func Print(pkg *Package) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n", pkg.Name)
	for _, ch := range pkg.Channels {
		dir := "out"
		if ch.Input {
			dir = "in"
		}
		kind := "fifo"
		if ch.Kind == ChannelDirectIn {
			kind = "direct"
		}
		fmt.Fprintf(&b, "\nchan %s(%s, dir=%s, kind=%s)\n", ch.Name, ch.Elem, dir, kind)
	}
	for _, f := range pkg.Funcs {
		b.WriteString("\n")
		printFunction(&b, f)
	}
	for _, p := range pkg.Procs {
		b.WriteString("\n")
		printProc(&b, p)
	}
	return b.String()
}

func PrintFunction(f *Function) string {
	var b strings.Builder
	printFunction(&b, f)
	return b.String()
}

func printFunction(b *strings.Builder, f *Function) {
	var params []string
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	ret := "()"
	if f.Return != nil {
		ret = f.Return.Type.String()
	}
	fmt.Fprintf(b, "fn %s(%s) -> %s {\n", f.Name, strings.Join(params, ", "), ret)
	for _, n := range f.Nodes {
		if n.Op == OpParam {
			continue
		}
		fmt.Fprintf(b, "  %s\n", formatNode(n))
	}
	if f.Return != nil {
		fmt.Fprintf(b, "  ret %s: %s\n", nodeRef(f.Return), f.Return.Type)
	}
	b.WriteString("}\n")
}

func printProc(b *strings.Builder, p *Proc) {
	var states []string
	for i, s := range p.State {
		states = append(states, fmt.Sprintf("%s: %s init=%s", s.Name, s.Type, p.StateInit[i]))
	}
	fmt.Fprintf(b, "proc %s(%s) {\n", p.Name, strings.Join(states, ", "))
	for _, n := range p.Nodes {
		if n.Op == OpParam {
			continue
		}
		fmt.Fprintf(b, "  %s\n", formatNode(n))
	}
	var next []string
	for _, n := range p.Next {
		next = append(next, nodeRef(n))
	}
	fmt.Fprintf(b, "  next (%s)\n", strings.Join(next, ", "))
	b.WriteString("}\n")
}

func nodeRef(n *Node) string {
	if n.Op == OpParam {
		return n.Name
	}
	return fmt.Sprintf("%s.%d", n.opName(), n.ID)
}

func formatNode(n *Node) string {
	var operands []string
	for _, a := range n.Args {
		operands = append(operands, nodeRef(a))
	}
	switch n.Op {
	case OpLiteral:
		operands = append(operands, fmt.Sprintf("value=%s", n.Lit))
	case OpTupleIndex:
		operands = append(operands, fmt.Sprintf("index=%d", n.Index))
	case OpInvoke:
		operands = append(operands, fmt.Sprintf("to=%s", n.Callee.Name))
	case OpReceive, OpReceiveIf, OpSend, OpSendIf:
		operands = append(operands, fmt.Sprintf("channel=%s", n.Chan.Name))
	}
	return fmt.Sprintf("%s: %s = %s(%s)", nodeRef(n), n.Type, n.opName(), strings.Join(operands, ", "))
}
