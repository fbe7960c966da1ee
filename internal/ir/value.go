package ir

import (
	"fmt"
	"strings"
)

// Value is a runtime value produced by evaluation: flat bits, a tuple,
// or an array.
type Value interface {
	Type() Type
	String() string
}

// Bits is a fixed-width bit vector. V is always masked to Width.
type Bits struct {
	Width int
	V     uint64
}

type Tuple []Value

type Array []Value

func mask(width int, v uint64) uint64 {
	if width >= 64 {
		return v
	}
	return v & ((1 << uint(width)) - 1)
}

// MakeBits masks v to width.
func MakeBits(width int, v uint64) Bits {
	return Bits{Width: width, V: mask(width, v)}
}

// MakeBitsInt64 masks a signed value to width, two's complement.
func MakeBitsInt64(width int, v int64) Bits {
	return MakeBits(width, uint64(v))
}

func (b Bits) Type() Type { return &BitsType{Width: b.Width} }

// Int64 sign-extends the stored bits to a native integer.
func (b Bits) Int64() int64 {
	if b.Width == 0 || b.Width >= 64 {
		return int64(b.V)
	}
	signBit := uint64(1) << uint(b.Width-1)
	if b.V&signBit != 0 {
		return int64(b.V | ^mask(b.Width, ^uint64(0)))
	}
	return int64(b.V)
}

// Uint64 returns the stored bits zero-extended.
func (b Bits) Uint64() uint64 { return b.V }

func (b Bits) IsZero() bool { return b.V == 0 }

func (b Bits) String() string {
	return fmt.Sprintf("bits[%d]:%d", b.Width, b.Int64())
}

func (t Tuple) Type() Type {
	tt := &TupleType{}
	for _, e := range t {
		tt.Elems = append(tt.Elems, e.Type())
	}
	return tt
}

func (t Tuple) String() string {
	var parts []string
	for _, e := range t {
		parts = append(parts, e.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (a Array) Type() Type {
	if len(a) == 0 {
		return &ArrayType{Elem: &BitsType{Width: 0}, Len: 0}
	}
	return &ArrayType{Elem: a[0].Type(), Len: len(a)}
}

func (a Array) String() string {
	var parts []string
	for _, e := range a {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ZeroValue builds the all-zero value of a type.
func ZeroValue(t Type) Value {
	switch tt := t.(type) {
	case *BitsType:
		return Bits{Width: tt.Width}
	case *TupleType:
		out := make(Tuple, len(tt.Elems))
		for i, e := range tt.Elems {
			out[i] = ZeroValue(e)
		}
		return out
	case *ArrayType:
		out := make(Array, tt.Len)
		for i := range out {
			out[i] = ZeroValue(tt.Elem)
		}
		return out
	}
	return Bits{}
}

// ValuesEqual compares two values structurally.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Bits:
		bv, ok := b.(Bits)
		return ok && av.Width == bv.Width && av.V == bv.V
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}
