package translate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hlscc/internal/blockspec"
	"hlscc/internal/ir"
	"hlscc/internal/parser"
	"hlscc/internal/translate"
)

func compileProc(t *testing.T, source, spec string) *ir.Package {
	t.Helper()
	pkg, err := tryCompileProc(source, spec)
	require.NoError(t, err)
	require.Len(t, pkg.Procs, 1, "Block spec should produce one proc")
	return pkg
}

func tryCompileProc(source, spec string) (*ir.Package, error) {
	unit, err := parser.ParseSource("test.cc", source)
	if err != nil {
		return nil, err
	}
	bs, err := blockspec.Parse([]byte(spec))
	if err != nil {
		return nil, err
	}
	return translate.Translate(unit, translate.Options{Block: bs})
}

const addSpec = `
name: adder
channels:
  - name: in
    direction: in
  - name: out
    direction: out
`

func TestProcAddsConstant(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  out.write(in.read() + 3);
}`
	pkg := compileProc(t, source, addSpec)
	assert.Equal(t, "adder", pkg.Procs[0].Name, "Proc takes the block spec's name")
	require.NotNil(t, pkg.Channel("in"))
	assert.True(t, pkg.Channel("in").Input)
	require.NotNil(t, pkg.Channel("out"))
	assert.False(t, pkg.Channel("out").Input)

	r := ir.NewProcRunner(pkg.Procs[0])
	r.PushIn("in", ir.MakeBitsInt64(32, 5))
	r.PushIn("in", ir.MakeBitsInt64(32, -3))
	require.NoError(t, r.Run(10))

	want := []ir.Value{ir.MakeBitsInt64(32, 8), ir.MakeBitsInt64(32, 0)}
	if diff := cmp.Diff(want, r.Out["out"]); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcStatePersistsAcrossTicks(t *testing.T) {
	source := `
#pragma hls_top
void top(int& acc, channel<int>& in, channel<int>& out) {
  acc += in.read();
  out.write(acc);
}`
	pkg := compileProc(t, source, addSpec)
	p := pkg.Procs[0]
	require.Len(t, p.State, 1, "Non-const reference parameter becomes state")
	assert.Equal(t, "acc", p.State[0].Name)

	r := ir.NewProcRunner(p)
	for _, v := range []int64{1, 2, 3} {
		r.PushIn("in", ir.MakeBitsInt64(32, v))
	}
	require.NoError(t, r.Run(10))

	require.Len(t, r.Out["out"], 3)
	assert.Equal(t, int64(1), r.Out["out"][0].(ir.Bits).Int64())
	assert.Equal(t, int64(3), r.Out["out"][1].(ir.Bits).Int64())
	assert.Equal(t, int64(6), r.Out["out"][2].(ir.Bits).Int64())
}

func TestProcDirectInput(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& gain, channel<int>& in, channel<int>& out) {
  out.write(in.read() * gain.read());
}`
	spec := `
name: scaler
channels:
  - name: gain
    direction: in
    kind: direct
  - name: in
    direction: in
  - name: out
    direction: out
`
	pkg := compileProc(t, source, spec)
	assert.Equal(t, ir.ChannelDirectIn, pkg.Channel("gain").Kind)

	r := ir.NewProcRunner(pkg.Procs[0])
	r.SetDirect("gain", ir.MakeBitsInt64(32, 3))
	r.PushIn("in", ir.MakeBitsInt64(32, 4))
	r.PushIn("in", ir.MakeBitsInt64(32, 5))
	require.NoError(t, r.Run(10))

	require.Len(t, r.Out["out"], 2, "Direct reads never consume and never block")
	assert.Equal(t, int64(12), r.Out["out"][0].(ir.Bits).Int64())
	assert.Equal(t, int64(15), r.Out["out"][1].(ir.Bits).Int64())
}

func TestProcDirectSelectorRoutesOutput(t *testing.T) {
	source := `
#pragma hls_top
void top(int& dir, channel<int>& in, channel<int>& out_a, channel<int>& out_b) {
  int v = in.read();
  if (dir == 0) {
    out_a.write(v);
  } else {
    out_b.write(v);
  }
}`
	spec := `
name: mux
channels:
  - name: dir
    direction: in
    kind: direct
  - name: in
    direction: in
  - name: out_a
    direction: out
  - name: out_b
    direction: out
`
	pkg := compileProc(t, source, spec)
	p := pkg.Procs[0]
	assert.Empty(t, p.State, "A direct-bound reference parameter is not state")
	require.NotNil(t, pkg.Channel("dir"))
	assert.Equal(t, ir.ChannelDirectIn, pkg.Channel("dir").Kind)

	r := ir.NewProcRunner(p)
	r.SetDirect("dir", ir.MakeBitsInt64(32, 0))
	r.PushIn("in", ir.MakeBitsInt64(32, 21))
	require.NoError(t, r.Run(1))

	r.SetDirect("dir", ir.MakeBitsInt64(32, 1))
	r.PushIn("in", ir.MakeBitsInt64(32, 22))
	require.NoError(t, r.Run(1))

	require.Len(t, r.Out["out_a"], 1)
	assert.Equal(t, int64(21), r.Out["out_a"][0].(ir.Bits).Int64())
	require.Len(t, r.Out["out_b"], 1)
	assert.Equal(t, int64(22), r.Out["out_b"][0].(ir.Bits).Int64())
}

func TestProcRefParamBoundAsFifoRejected(t *testing.T) {
	source := `
#pragma hls_top
void top(int& dir, channel<int>& out) {
  out.write(dir);
}`
	spec := `
name: bad
channels:
  - name: dir
    direction: in
  - name: out
    direction: out
`
	_, err := tryCompileProc(source, spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be direct to bind non-channel parameter dir")
}

func TestProcConditionalSend(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  int v = in.read();
  if (v > 0) {
    out.write(v);
  }
}`
	pkg := compileProc(t, source, addSpec)

	r := ir.NewProcRunner(pkg.Procs[0])
	r.PushIn("in", ir.MakeBitsInt64(32, -1))
	r.PushIn("in", ir.MakeBitsInt64(32, 5))
	require.NoError(t, r.Run(10))

	require.Len(t, r.Out["out"], 1, "Negative input produces no output")
	assert.Equal(t, int64(5), r.Out["out"][0].(ir.Bits).Int64())
}

func TestProcBlocksOnEmptyInput(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  out.write(in.read());
}`
	pkg := compileProc(t, source, addSpec)

	r := ir.NewProcRunner(pkg.Procs[0])
	ok, err := r.Tick()
	require.NoError(t, err)
	assert.False(t, ok, "Tick should block on an empty input queue")
	assert.Empty(t, r.Out["out"])
}

func TestProcInlinesPureCallees(t *testing.T) {
	source := `
int triple(int x) { return 3 * x; }

#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  out.write(triple(in.read()));
}`
	pkg := compileProc(t, source, addSpec)
	for _, n := range pkg.Procs[0].Nodes {
		assert.NotEqual(t, ir.OpInvoke, n.Op, "Proc bodies contain no unresolved calls")
	}

	r := ir.NewProcRunner(pkg.Procs[0])
	r.PushIn("in", ir.MakeBitsInt64(32, 5))
	require.NoError(t, r.Run(10))
	require.Len(t, r.Out["out"], 1)
	assert.Equal(t, int64(15), r.Out["out"][0].(ir.Bits).Int64())
}

func TestProcUnboundChannel(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  out.write(in.read());
}`
	spec := `
name: partial
channels:
  - name: in
    direction: in
`
	_, err := tryCompileProc(source, spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel out is not bound by the block spec")
}

func TestProcSpecChannelMismatch(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  out.write(in.read());
}`
	spec := `
name: wrong
channels:
  - name: in
    direction: in
  - name: out
    direction: out
  - name: bogus
    direction: in
`
	_, err := tryCompileProc(source, spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block spec channel bogus does not match a parameter")
}

func TestProcParamMustBeReference(t *testing.T) {
	source := `
#pragma hls_top
void top(int x, channel<int>& in, channel<int>& out) {
  out.write(in.read() + x);
}`
	_, err := tryCompileProc(source, addSpec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a channel or a non-const reference")
}

func TestProcTopMustReturnVoid(t *testing.T) {
	source := `
#pragma hls_top
int top(channel<int>& in, channel<int>& out) {
  out.write(in.read());
  return 0;
}`
	_, err := tryCompileProc(source, addSpec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return void")
}

func TestProcWriteToInputChannel(t *testing.T) {
	source := `
#pragma hls_top
void top(channel<int>& in, channel<int>& out) {
  in.write(out.read());
}`
	_, err := tryCompileProc(source, addSpec)
	require.Error(t, err)
}
