package ir

import (
	"fmt"
)

// Interpret evaluates a function on positional arguments. Nodes are in
// dependency order, so one forward pass suffices.
func Interpret(f *Function, args ...Value) (Value, error) {
	if len(args) != len(f.Params) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", f.Name, len(f.Params), len(args))
	}
	env := make(map[*Node]Value, len(f.Nodes))
	for i, p := range f.Params {
		env[p] = args[i]
	}
	for _, n := range f.Nodes {
		if n.Op == OpParam {
			continue
		}
		v, err := evalNode(n, env)
		if err != nil {
			return nil, err
		}
		env[n] = v
	}
	if f.Return == nil {
		return Tuple{}, nil
	}
	return env[f.Return], nil
}

func evalNode(n *Node, env map[*Node]Value) (Value, error) {
	arg := func(i int) Value { return env[n.Args[i]] }
	switch n.Op {
	case OpLiteral:
		return n.Lit, nil
	case OpUnary:
		return evalUnary(n.Sym, n.Type.(*BitsType).Width, arg(0).(Bits))
	case OpBinary:
		return evalBinary(n.Sym, n.Type.(*BitsType).Width, arg(0).(Bits), arg(1).(Bits))
	case OpSelect:
		if arg(0).(Bits).IsZero() {
			return arg(2), nil
		}
		return arg(1), nil
	case OpTuple:
		out := make(Tuple, len(n.Args))
		for i := range n.Args {
			out[i] = arg(i)
		}
		return out, nil
	case OpTupleIndex:
		return arg(0).(Tuple)[n.Index], nil
	case OpArray:
		out := make(Array, len(n.Args))
		for i := range n.Args {
			out[i] = arg(i)
		}
		return out, nil
	case OpArrayIndex:
		a := arg(0).(Array)
		i := arg(1).(Bits).Uint64()
		// Out of bounds reads clamp to the last element.
		if i >= uint64(len(a)) {
			i = uint64(len(a) - 1)
		}
		return a[i], nil
	case OpArrayUpdate:
		a := arg(0).(Array)
		i := arg(1).(Bits).Uint64()
		out := make(Array, len(a))
		copy(out, a)
		if i < uint64(len(out)) {
			out[i] = arg(2)
		}
		return out, nil
	case OpConvert:
		from := arg(0).(Bits)
		to := n.Type.(*BitsType).Width
		if n.Signed {
			return MakeBitsInt64(to, from.Int64()), nil
		}
		return MakeBits(to, from.Uint64()), nil
	case OpInvoke:
		callArgs := make([]Value, len(n.Args))
		for i := range n.Args {
			callArgs[i] = arg(i)
		}
		return Interpret(n.Callee, callArgs...)
	default:
		return nil, fmt.Errorf("cannot evaluate %s outside a proc", n.opName())
	}
}

func evalUnary(sym string, width int, x Bits) (Value, error) {
	switch sym {
	case "neg":
		return MakeBitsInt64(width, -x.Int64()), nil
	case "not":
		return MakeBits(width, ^x.V), nil
	case "lnot":
		if x.IsZero() {
			return MakeBits(1, 1), nil
		}
		return MakeBits(1, 0), nil
	}
	return nil, fmt.Errorf("unknown unary opcode %s", sym)
}

func boolBits(b bool) Bits {
	if b {
		return MakeBits(1, 1)
	}
	return MakeBits(1, 0)
}

func evalBinary(sym string, width int, x, y Bits) (Value, error) {
	switch sym {
	case "add":
		return MakeBits(width, x.V+y.V), nil
	case "sub":
		return MakeBits(width, x.V-y.V), nil
	case "mul":
		return MakeBits(width, x.V*y.V), nil
	case "udiv":
		if y.V == 0 {
			return MakeBits(width, ^uint64(0)), nil
		}
		return MakeBits(width, x.V/y.V), nil
	case "sdiv":
		if y.Int64() == 0 {
			// Largest magnitude value with the dividend's sign.
			if x.Int64() < 0 {
				return MakeBits(width, uint64(1)<<uint(width-1)), nil
			}
			return MakeBits(width, uint64(1)<<uint(width-1)-1), nil
		}
		return MakeBitsInt64(width, x.Int64()/y.Int64()), nil
	case "umod":
		if y.V == 0 {
			return MakeBits(width, 0), nil
		}
		return MakeBits(width, x.V%y.V), nil
	case "smod":
		if y.Int64() == 0 {
			return MakeBits(width, 0), nil
		}
		return MakeBitsInt64(width, x.Int64()%y.Int64()), nil
	case "and":
		return MakeBits(width, x.V&y.V), nil
	case "or":
		return MakeBits(width, x.V|y.V), nil
	case "xor":
		return MakeBits(width, x.V^y.V), nil
	case "shll":
		if y.V >= uint64(width) {
			return MakeBits(width, 0), nil
		}
		return MakeBits(width, x.V<<y.V), nil
	case "shrl":
		if y.V >= uint64(width) {
			return MakeBits(width, 0), nil
		}
		return MakeBits(width, x.V>>y.V), nil
	case "shra":
		sh := y.V
		if sh >= uint64(width) {
			if x.Int64() < 0 {
				return MakeBitsInt64(width, -1), nil
			}
			return MakeBits(width, 0), nil
		}
		return MakeBitsInt64(width, x.Int64()>>sh), nil
	case "eq":
		return boolBits(x.V == y.V), nil
	case "ne":
		return boolBits(x.V != y.V), nil
	case "ult":
		return boolBits(x.V < y.V), nil
	case "ule":
		return boolBits(x.V <= y.V), nil
	case "ugt":
		return boolBits(x.V > y.V), nil
	case "uge":
		return boolBits(x.V >= y.V), nil
	case "slt":
		return boolBits(x.Int64() < y.Int64()), nil
	case "sle":
		return boolBits(x.Int64() <= y.Int64()), nil
	case "sgt":
		return boolBits(x.Int64() > y.Int64()), nil
	case "sge":
		return boolBits(x.Int64() >= y.Int64()), nil
	}
	return nil, fmt.Errorf("unknown binary opcode %s", sym)
}
