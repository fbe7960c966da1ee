package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b32() *BitsType { return &BitsType{Width: 32} }

func evalFn(t *testing.T, fn *Function, args ...Value) Value {
	t.Helper()
	out, err := Interpret(fn, args...)
	require.NoError(t, err)
	return out
}

func TestInterpretBinaryWraps(t *testing.T) {
	fn := NewFunction("wrap")
	a := fn.AddParam("a", &BitsType{Width: 8})
	b := fn.AddParam("b", &BitsType{Width: 8})
	fn.Return = fn.Binary("add", &BitsType{Width: 8}, a, b)

	out := evalFn(t, fn, MakeBits(8, 200), MakeBits(8, 100))
	assert.Equal(t, uint64(44), out.(Bits).Uint64(), "Addition wraps at the type width")
}

func TestInterpretDivisionConventions(t *testing.T) {
	mk := func(sym string, w int) *Function {
		fn := NewFunction(sym)
		a := fn.AddParam("a", &BitsType{Width: w})
		b := fn.AddParam("b", &BitsType{Width: w})
		fn.Return = fn.Binary(sym, &BitsType{Width: w}, a, b)
		return fn
	}

	out := evalFn(t, mk("udiv", 8), MakeBits(8, 7), MakeBits(8, 0))
	assert.Equal(t, uint64(0xFF), out.(Bits).Uint64(), "Unsigned division by zero yields all ones")

	out = evalFn(t, mk("sdiv", 8), MakeBits(8, 7), MakeBits(8, 0))
	assert.Equal(t, uint64(0x7F), out.(Bits).Uint64(), "Signed division by zero yields the maximum positive value")

	out = evalFn(t, mk("sdiv", 8), MakeBitsInt64(8, -7), MakeBits(8, 0))
	assert.Equal(t, int64(-128), out.(Bits).Int64(), "Negative dividend saturates to the minimum")

	out = evalFn(t, mk("smod", 8), MakeBits(8, 7), MakeBits(8, 0))
	assert.Equal(t, uint64(0), out.(Bits).Uint64(), "Modulo by zero yields zero")

	out = evalFn(t, mk("sdiv", 32), MakeBitsInt64(32, -9), MakeBitsInt64(32, 2))
	assert.Equal(t, int64(-4), out.(Bits).Int64(), "Signed division truncates toward zero")
}

func TestInterpretShiftClamping(t *testing.T) {
	mk := func(sym string) *Function {
		fn := NewFunction(sym)
		a := fn.AddParam("a", b32())
		s := fn.AddParam("s", b32())
		fn.Return = fn.Binary(sym, b32(), a, s)
		return fn
	}

	out := evalFn(t, mk("shll"), MakeBits(32, 1), MakeBits(32, 40))
	assert.Equal(t, uint64(0), out.(Bits).Uint64(), "Overlong left shift produces zero")

	out = evalFn(t, mk("shrl"), MakeBits(32, 0xFFFFFFFF), MakeBits(32, 40))
	assert.Equal(t, uint64(0), out.(Bits).Uint64())

	out = evalFn(t, mk("shra"), MakeBitsInt64(32, -1), MakeBits(32, 100))
	assert.Equal(t, int64(-1), out.(Bits).Int64(), "Arithmetic shift of a negative saturates to the sign")

	out = evalFn(t, mk("shra"), MakeBits(32, 1), MakeBits(32, 100))
	assert.Equal(t, uint64(0), out.(Bits).Uint64())
}

func TestInterpretSelect(t *testing.T) {
	fn := NewFunction("pick")
	c := fn.AddParam("c", &BitsType{Width: 1})
	a := fn.AddParam("a", b32())
	b := fn.AddParam("b", b32())
	fn.Return = fn.Select(c, a, b)

	out := evalFn(t, fn, MakeBits(1, 1), MakeBits(32, 10), MakeBits(32, 20))
	assert.Equal(t, uint64(10), out.(Bits).Uint64())
	out = evalFn(t, fn, MakeBits(1, 0), MakeBits(32, 10), MakeBits(32, 20))
	assert.Equal(t, uint64(20), out.(Bits).Uint64())
}

func TestInterpretArrayIndexClamps(t *testing.T) {
	fn := NewFunction("index")
	i := fn.AddParam("i", b32())
	e0 := fn.Literal(MakeBits(32, 10))
	e1 := fn.Literal(MakeBits(32, 20))
	arr := fn.MakeArray(b32(), e0, e1)
	fn.Return = fn.ArrayIndex(arr, i)

	out := evalFn(t, fn, MakeBits(32, 1))
	assert.Equal(t, uint64(20), out.(Bits).Uint64())
	out = evalFn(t, fn, MakeBits(32, 99))
	assert.Equal(t, uint64(20), out.(Bits).Uint64(), "Out of bounds reads clamp to the last element")
}

func TestInterpretArrayUpdateOutOfBounds(t *testing.T) {
	fn := NewFunction("update")
	i := fn.AddParam("i", b32())
	e0 := fn.Literal(MakeBits(32, 10))
	e1 := fn.Literal(MakeBits(32, 20))
	arr := fn.MakeArray(b32(), e0, e1)
	v := fn.Literal(MakeBits(32, 7))
	fn.Return = fn.ArrayUpdate(arr, i, v)

	out := evalFn(t, fn, MakeBits(32, 99)).(Array)
	assert.Equal(t, uint64(10), out[0].(Bits).Uint64(), "Out of bounds writes are dropped")
	assert.Equal(t, uint64(20), out[1].(Bits).Uint64())
}

func TestInterpretConvert(t *testing.T) {
	fn := NewFunction("sext")
	a := fn.AddParam("a", &BitsType{Width: 8})
	fn.Return = fn.Convert(a, b32(), true)
	out := evalFn(t, fn, MakeBits(8, 0xFF))
	assert.Equal(t, int64(-1), out.(Bits).Int64())

	fn2 := NewFunction("zext")
	a2 := fn2.AddParam("a", &BitsType{Width: 8})
	fn2.Return = fn2.Convert(a2, b32(), false)
	out = evalFn(t, fn2, MakeBits(8, 0xFF))
	assert.Equal(t, int64(255), out.(Bits).Int64())
}

func TestInterpretTupleOps(t *testing.T) {
	fn := NewFunction("swap")
	a := fn.AddParam("a", b32())
	b := fn.AddParam("b", b32())
	tup := fn.MakeTuple(b, a)
	fn.Return = fn.TupleIndex(tup, 1)
	out := evalFn(t, fn, MakeBits(32, 1), MakeBits(32, 2))
	assert.Equal(t, uint64(1), out.(Bits).Uint64())
}

func TestInterpretInvoke(t *testing.T) {
	callee := NewFunction("double")
	x := callee.AddParam("x", b32())
	callee.Return = callee.Binary("add", b32(), x, x)

	caller := NewFunction("caller")
	a := caller.AddParam("a", b32())
	caller.Return = caller.Invoke(callee, a)

	out := evalFn(t, caller, MakeBits(32, 21))
	assert.Equal(t, uint64(42), out.(Bits).Uint64())
}

func TestInterpretArgumentCount(t *testing.T) {
	fn := NewFunction("f")
	fn.AddParam("a", b32())
	_, err := Interpret(fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 1 arguments")
}

func TestInterpretChannelOpOutsideProc(t *testing.T) {
	fn := NewFunction("f")
	ch := &Channel{Name: "in", Input: true, Elem: b32()}
	fn.Return = fn.Receive(ch)
	_, err := Interpret(fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside a proc")
}
