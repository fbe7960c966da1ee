package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hlscc/internal/ir"
	"hlscc/internal/parser"
	"hlscc/internal/translate"
)

func compile(t *testing.T, source string) *ir.Package {
	t.Helper()
	unit, err := parser.ParseSource("test.cc", source)
	require.NoError(t, err, "Source should parse")
	pkg, err := translate.Translate(unit, translate.Options{})
	require.NoError(t, err, "Source should translate")
	return pkg
}

func compileErr(t *testing.T, source string) error {
	t.Helper()
	unit, err := parser.ParseSource("test.cc", source)
	require.NoError(t, err, "Source should parse")
	_, err = translate.Translate(unit, translate.Options{})
	require.Error(t, err, "Translation should fail")
	return err
}

// run compiles the source and interprets the top function on 64-bit
// arguments, shaping each one to the corresponding parameter width.
func run(t *testing.T, source string, args ...int64) int64 {
	t.Helper()
	pkg := compile(t, source)
	fn := pkg.Funcs[0]
	require.Len(t, fn.Params, len(args), "Argument count should match top parameters")
	vals := make([]ir.Value, len(args))
	for i, a := range args {
		vals[i] = ir.MakeBitsInt64(fn.Params[i].Type.(*ir.BitsType).Width, a)
	}
	out, err := ir.Interpret(fn, vals...)
	require.NoError(t, err, "Interpretation should succeed")
	bits, ok := out.(ir.Bits)
	require.True(t, ok, "Top function should produce a scalar result, got %v", out)
	return bits.Int64()
}

func TestReturnConstant(t *testing.T) {
	source := `
#pragma hls_top
int top() { return 42; }`
	assert.Equal(t, int64(42), run(t, source))
}

func TestArithmeticPrecedence(t *testing.T) {
	source := `
#pragma hls_top
int top(int a, int b) { return a + b * 3 - 1; }`
	assert.Equal(t, int64(13), run(t, source, 2, 4))
	assert.Equal(t, int64(-1), run(t, source, 0, 0))
}

func TestCharLiteral(t *testing.T) {
	source := `
#pragma hls_top
int top() { return 'A'; }`
	assert.Equal(t, int64(65), run(t, source))
}

func TestTernary(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) { return a > 0 ? a : -a; }`
	assert.Equal(t, int64(5), run(t, source, -5))
	assert.Equal(t, int64(7), run(t, source, 7))
}

func TestLogicalOperators(t *testing.T) {
	source := `
#pragma hls_top
int top(int a, int b) {
  bool both = a > 0 && b > 0;
  if (both || a == -1) {
    return 1;
  }
  return 0;
}`
	assert.Equal(t, int64(1), run(t, source, 1, 1))
	assert.Equal(t, int64(1), run(t, source, -1, 5))
	assert.Equal(t, int64(0), run(t, source, 0, 3))
}

func TestIfElse(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  int r = 0;
  if (a > 10) {
    r = 1;
  } else {
    r = 2;
  }
  return r;
}`
	assert.Equal(t, int64(1), run(t, source, 15))
	assert.Equal(t, int64(2), run(t, source, 3))
}

func TestNestedGuards(t *testing.T) {
	source := `
#pragma hls_top
int top(int a, int b) {
  int r = 0;
  if (a > 0) {
    if (b > 0) {
      r = 3;
    } else {
      r = 2;
    }
    r = r * 10;
  }
  return r;
}`
	assert.Equal(t, int64(30), run(t, source, 1, 1))
	assert.Equal(t, int64(20), run(t, source, 1, -1))
	assert.Equal(t, int64(0), run(t, source, -1, 1))
}

func TestEarlyReturnSuppressesLaterStatements(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  int r = 5;
  if (a > 0) {
    return r;
  }
  r = 100;
  return r;
}`
	assert.Equal(t, int64(5), run(t, source, 1))
	assert.Equal(t, int64(100), run(t, source, -1))
}

func TestReturnInsideInlinedCallee(t *testing.T) {
	source := `
void bump(int &x, int by) {
  if (by == 0) {
    return;
  }
  x = x + by;
}

#pragma hls_top
int top(int a) {
  int v = a;
  bump(v, 3);
  bump(v, 0);
  return v;
}`
	assert.Equal(t, int64(13), run(t, source, 10))
}

func TestSignedShifts(t *testing.T) {
	source := `
#pragma hls_top
int top(int a, int s) { return a >> s; }`
	assert.Equal(t, int64(-4), run(t, source, -8, 1))
	assert.Equal(t, int64(2), run(t, source, 8, 2))
}

func TestLeftShift(t *testing.T) {
	source := `
#pragma hls_top
int top(int a, int s) { return a << s; }`
	assert.Equal(t, int64(48), run(t, source, 3, 4))
}

func TestCastTruncates(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) { return (char)a; }`
	assert.Equal(t, int64(-56), run(t, source, 200))
	assert.Equal(t, int64(1), run(t, source, 1))
}

func TestAcIntUnsignedTruncation(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  ac_int<4, false> x = a;
  return x;
}`
	assert.Equal(t, int64(4), run(t, source, 20))
	assert.Equal(t, int64(15), run(t, source, -1))
}

func TestAcIntSignedWrap(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  ac_int<4, true> x = a;
  return x;
}`
	assert.Equal(t, int64(-8), run(t, source, 8))
	assert.Equal(t, int64(7), run(t, source, 7))
}

func TestTypedefAlias(t *testing.T) {
	source := `
typedef ac_int<8, true> s8;

#pragma hls_top
int top(int a) {
  s8 x = a;
  return x;
}`
	assert.Equal(t, int64(-56), run(t, source, 200))
}

func TestBoolConversion(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  bool b = a;
  return b;
}`
	assert.Equal(t, int64(1), run(t, source, 5))
	assert.Equal(t, int64(0), run(t, source, 0))
}

func TestUnrolledLoop(t *testing.T) {
	source := `
#pragma hls_top
int top() {
  int sum = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 10; ++i) {
    sum += i;
  }
  return sum;
}`
	assert.Equal(t, int64(45), run(t, source))
}

func TestLoopBreakAndContinue(t *testing.T) {
	source := `
#pragma hls_top
int top() {
  int sum = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 10; i++) {
    if (i == 7) {
      break;
    }
    if (i % 2 == 1) {
      continue;
    }
    sum += i;
  }
  return sum;
}`
	assert.Equal(t, int64(12), run(t, source))
}

func TestNestedUnrolledLoops(t *testing.T) {
	source := `
#pragma hls_top
int top() {
  int sum = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 3; ++i) {
    #pragma hls_unroll yes
    for (int j = 0; j < 3; ++j) {
      sum += i * j;
    }
  }
  return sum;
}`
	assert.Equal(t, int64(9), run(t, source))
}

func TestLoopBoundFromConstant(t *testing.T) {
	source := `
#pragma hls_top
int top() {
  const int N = 4;
  int sum = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < N; ++i) {
    sum += 2;
  }
  return sum;
}`
	assert.Equal(t, int64(8), run(t, source))
}

func TestLoopStepByTwo(t *testing.T) {
	source := `
#pragma hls_top
int top() {
  int sum = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 10; i += 2) {
    sum += i;
  }
  return sum;
}`
	assert.Equal(t, int64(20), run(t, source))
}

func TestSwitch(t *testing.T) {
	source := `
#pragma hls_top
int top(int op) {
  int r = 0;
  switch (op) {
  case 1:
    r = 10;
    break;
  case 2:
    r = 20;
    break;
  }
  return r;
}`
	assert.Equal(t, int64(10), run(t, source, 1))
	assert.Equal(t, int64(20), run(t, source, 2))
	assert.Equal(t, int64(0), run(t, source, 9))
}

func TestSwitchFallthrough(t *testing.T) {
	source := `
#pragma hls_top
int top(int op) {
  int r = 0;
  switch (op) {
  case 1:
  case 2:
    r = 12;
    break;
  case 3:
    r = 3;
    break;
  }
  return r;
}`
	assert.Equal(t, int64(12), run(t, source, 1))
	assert.Equal(t, int64(12), run(t, source, 2))
	assert.Equal(t, int64(3), run(t, source, 3))
	assert.Equal(t, int64(0), run(t, source, 4))
}

func TestSwitchDefaultNotLast(t *testing.T) {
	source := `
#pragma hls_top
int top(int op) {
  int r = 0;
  switch (op) {
  case 1:
    r = 10;
    break;
  default:
    r = 99;
    break;
  case 2:
    r = 20;
    break;
  }
  return r;
}`
	assert.Equal(t, int64(10), run(t, source, 1))
	assert.Equal(t, int64(20), run(t, source, 2))
	assert.Equal(t, int64(99), run(t, source, 5))
}

func TestStructFields(t *testing.T) {
	source := `
struct Point {
  int x;
  int y;
};

#pragma hls_top
int top(int a) {
  Point p = {a, 3};
  p.x += 2;
  return p.x * 100 + p.y;
}`
	assert.Equal(t, int64(703), run(t, source, 5))
}

func TestStructMethod(t *testing.T) {
	source := `
struct Point {
  int x;
  int y;
  int sum() { return x + y; }
};

#pragma hls_top
int top(int a) {
  Point p = {a, 3};
  return p.sum();
}`
	assert.Equal(t, int64(8), run(t, source, 5))
}

func TestMethodMutatesReceiver(t *testing.T) {
	source := `
struct Counter {
  int v;
  Counter() : v(100) {}
  void add(int d) { v += d; }
};

#pragma hls_top
int top() {
  Counter c;
  c.add(5);
  c.add(1);
  return c.v;
}`
	assert.Equal(t, int64(106), run(t, source))
}

func TestConstructorArguments(t *testing.T) {
	source := `
struct Scaled {
  int v;
  Scaled(int base, int k) : v(base * k) {}
};

#pragma hls_top
int top(int a) {
  Scaled s(a, 3);
  return s.v;
}`
	assert.Equal(t, int64(12), run(t, source, 4))
}

func TestStructCopySemantics(t *testing.T) {
	source := `
struct P {
  int v;
};

#pragma hls_top
int top(int a) {
  P p;
  p.v = a;
  P q = p;
  q.v = q.v + 1;
  return p.v * 10 + q.v;
}`
	assert.Equal(t, int64(34), run(t, source, 3))
}

func TestNoTupleStruct(t *testing.T) {
	source := `
#pragma hls_no_tuple
struct Tag {
  int id;
};

#pragma hls_top
int top(int a) {
  Tag t = {a};
  t.id += 1;
  return t.id;
}`
	pkg := compile(t, source)
	// The wrapper flattens away: the parameter and result are bare bits.
	require.IsType(t, &ir.BitsType{}, pkg.Funcs[0].Return.Type)
	assert.Equal(t, int64(5), run(t, source, 4))
}

func TestInheritedFieldsFlatten(t *testing.T) {
	source := `
struct Base {
  int b;
};

struct Derived : public Base {
  int d;
};

#pragma hls_top
int top(int a) {
  Derived x = {1, a};
  return x.b * 10 + x.d;
}`
	assert.Equal(t, int64(17), run(t, source, 7))
}

func TestTemplateStruct(t *testing.T) {
	source := `
template <typename T, int N>
struct Pair {
  T a;
  T b;
  int scaled() { return (a + b) * N; }
};

#pragma hls_top
int top(int x) {
  Pair<int, 3> p = {x, 2};
  return p.scaled();
}`
	assert.Equal(t, int64(18), run(t, source, 4))
}

func TestTemplateFunctionExplicitArgs(t *testing.T) {
	source := `
template <int K>
int addk(int x) { return x + K; }

#pragma hls_top
int top(int a) { return addk<5>(a); }`
	assert.Equal(t, int64(6), run(t, source, 1))
}

func TestStaticConstMember(t *testing.T) {
	source := `
struct Cfg {
  static const int K = 7;
};

#pragma hls_top
int top() { return Cfg::K; }`
	assert.Equal(t, int64(7), run(t, source))
}

func TestOperatorOverload(t *testing.T) {
	source := `
struct Wide {
  int lo;
  Wide operator+(Wide other) {
    Wide r = {lo + other.lo};
    return r;
  }
  operator int() { return lo; }
};

#pragma hls_top
int top(int a, int b) {
  Wide x = {a};
  Wide y = {b};
  return x + y;
}`
	assert.Equal(t, int64(7), run(t, source, 3, 4))
}

func TestConversionOperatorInArithmetic(t *testing.T) {
	source := `
struct Boxed {
  int v;
  operator int() { return v; }
};

#pragma hls_top
int top(int a) {
  Boxed b = {a};
  return b + 1;
}`
	assert.Equal(t, int64(10), run(t, source, 9))
}

func TestCompoundAssignmentOverload(t *testing.T) {
	source := `
struct Acc {
  int total;
  Acc operator+=(int d) {
    total += d;
    return *this;
  }
};

#pragma hls_top
int top(int a) {
  Acc s = {0};
  s += a;
  s += 2;
  return s.total;
}`
	assert.Equal(t, int64(7), run(t, source, 5))
}

func TestArrayOperations(t *testing.T) {
	source := `
#pragma hls_top
int top(int i) {
  int a[4] = {1, 2, 3};
  a[3] = 9;
  return a[i];
}`
	assert.Equal(t, int64(1), run(t, source, 0))
	assert.Equal(t, int64(3), run(t, source, 2))
	assert.Equal(t, int64(9), run(t, source, 3))
}

func TestArrayOfStructs(t *testing.T) {
	source := `
struct P {
  int v;
};

#pragma hls_top
int top(int a) {
  P arr[2];
  arr[0].v = 3;
  arr[1].v = a;
  return arr[0].v + arr[1].v;
}`
	assert.Equal(t, int64(7), run(t, source, 4))
}

func TestArraySumInLoop(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  int vals[4] = {10, 20, 30, 40};
  int sum = a;
  #pragma hls_unroll yes
  for (int i = 0; i < 4; ++i) {
    sum += vals[i];
  }
  return sum;
}`
	assert.Equal(t, int64(101), run(t, source, 1))
}

func TestPureFunctionBecomesInvoke(t *testing.T) {
	source := `
int triple(int x) { return 3 * x; }

#pragma hls_top
int top(int a) { return triple(a) + 1; }`
	pkg := compile(t, source)
	require.NotNil(t, pkg.Function("triple"), "Pure callee should compile to its own function")
	require.Len(t, pkg.Funcs, 2)
	assert.Equal(t, int64(16), run(t, source, 5))
}

func TestDefaultArguments(t *testing.T) {
	source := `
int addk(int x, int k = 10) { return x + k; }

#pragma hls_top
int top(int a) { return addk(a) + addk(a, 1); }`
	assert.Equal(t, int64(21), run(t, source, 5))
}

func TestIncrementDecrement(t *testing.T) {
	source := `
#pragma hls_top
int top(int a) {
  int x = a;
  int pre = ++x;
  int post = x++;
  x--;
  return pre * 100 + post * 10 + x;
}`
	// pre = a+1, post = a+1, final x = a+1.
	assert.Equal(t, int64(444), run(t, source, 3))
}

func TestTopSelectedByName(t *testing.T) {
	source := `
int other() { return 1; }
int entry(int a) { return a + 1; }`
	unit, err := parser.ParseSource("test.cc", source)
	require.NoError(t, err)
	pkg, err := translate.Translate(unit, translate.Options{Top: "entry"})
	require.NoError(t, err)
	assert.Equal(t, "entry", pkg.Funcs[0].Name)
}

func TestMissingTop(t *testing.T) {
	err := compileErr(t, `int f() { return 1; }`)
	assert.Contains(t, err.Error(), "No top function found")
}

func TestMultipleTopPragmas(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int f() { return 1; }

#pragma hls_top
int g() { return 2; }`)
	assert.Contains(t, err.Error(), "multiple top functions")
}

func TestLoopRequiresUnrollPragma(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  int s = 0;
  for (int i = 0; i < 4; ++i) {
    s += i;
  }
  return s;
}`)
	assert.Contains(t, err.Error(), "only fully unrolled loops are supported")
}

func TestLoopMissingInitializer(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  int s = 0;
  int i = 0;
  #pragma hls_unroll yes
  for (; i < 4; ++i) {
    s += i;
  }
  return s;
}`)
	assert.Contains(t, err.Error(), "must have an initializer")
}

func TestLoopMissingCondition(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  int s = 0;
  #pragma hls_unroll yes
  for (int i = 0; ; ++i) {
    s += i;
  }
  return s;
}`)
	assert.Contains(t, err.Error(), "must have a condition")
}

func TestLoopMissingIncrement(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  int s = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 4;) {
    s += i;
  }
  return s;
}`)
	assert.Contains(t, err.Error(), "must have an increment")
}

func TestLoopExceedsMaxIterations(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  int s = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 2000; ++i) {
    s += i;
  }
  return s;
}`)
	assert.Contains(t, err.Error(), "maximum")
}

func TestInductionVariableAssignment(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  int s = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 4; ++i) {
    i = 0;
  }
  return s;
}`)
	assert.Contains(t, err.Error(), "forbidden in this context")
}

func TestConditionalBreakInSwitch(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top(int a, int b) {
  int r = 0;
  switch (a) {
  case 1:
    if (b > 0) {
      break;
    }
    r = 1;
    break;
  }
  return r;
}`)
	assert.Contains(t, err.Error(), "Conditional breaks are not supported")
}

func TestUnsequencedModification(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top(int a) {
  int b = 0;
  b = (a = 1) + a;
  return b;
}`)
	assert.Contains(t, err.Error(), "unsequenced modification and access to a")
}

func TestUnsequencedInReturn(t *testing.T) {
	err := compileErr(t, `
int make7(int &x) { x = 7; return x; }

#pragma hls_top
int top(int a) { return make7(a) + a; }`)
	assert.Contains(t, err.Error(), "unsequenced modification and access to a")
}

func TestUnsequencedInInitializer(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top(int a) {
  int b = (a = 1) + a;
  return b;
}`)
	assert.Contains(t, err.Error(), "unsequenced modification and access to a")
}

func TestUnsequencedTernary(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top(int a) {
  int b = 0;
  b = (a = 7) ? a : 11;
  return b;
}`)
	assert.Contains(t, err.Error(), "unsequenced modification and access to a")
}

func TestUnsequencedCallArgument(t *testing.T) {
	err := compileErr(t, `
int nop(int x, int y) { return x; }

#pragma hls_top
int top(int a) {
  nop(a = 10, 100);
  return a;
}`)
	assert.Contains(t, err.Error(), "unsequenced modification and access to a")
}

func TestRefArgumentCallStatement(t *testing.T) {
	source := `
void bump(int &x, int by) { x = x + by; }

#pragma hls_top
int top(int a) {
  bump(a, 5);
  return a;
}`
	assert.Equal(t, int64(15), run(t, source, 10))
}

func TestSwitchTagMustBeInteger(t *testing.T) {
	err := compileErr(t, `
struct P { int x; };

#pragma hls_top
int top(int a) {
  P p;
  switch (p) {
    case 0:
      return 1;
    default:
      return a;
  }
}`)
	assert.Contains(t, err.Error(), "switch tag must have an integer type")
}

func TestAssignToConst(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  const int c = 3;
  c = 4;
  return c;
}`)
	assert.Contains(t, err.Error(), "assignment to const c")
}

func TestReturnValueFromVoid(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
void top(int a) { return a; }`)
	assert.Contains(t, err.Error(), "returning a value from a void function")
}

func TestBareReturnFromNonVoid(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top(int a) { return; }`)
	assert.Contains(t, err.Error(), "return without a value")
}

func TestChannelLocalDeclaration(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top(int a) {
  channel<int> c;
  return a;
}`)
	assert.Contains(t, err.Error(), "channels may only be declared as parameters")
}

func TestMultipleInheritanceRejected(t *testing.T) {
	err := compileErr(t, `
struct A { int a; };
struct B { int b; };
struct C : public A, public B { int c; };

#pragma hls_top
int top() {
  C x;
  return x.c;
}`)
	assert.Contains(t, err.Error(), "multiple inheritance")
}

func TestNoTupleNeedsExactlyOneField(t *testing.T) {
	err := compileErr(t, `
#pragma hls_no_tuple
struct Two {
  int a;
  int b;
};

#pragma hls_top
int top() {
  Two x;
  return x.a;
}`)
	assert.Contains(t, err.Error(), "only 1 field")
}

func TestRecursiveInlineRejected(t *testing.T) {
	err := compileErr(t, `
void f(int &x) { f(x); }

#pragma hls_top
int top(int a) {
  int v = a;
  f(v);
  return v;
}`)
	assert.Contains(t, err.Error(), "recursive call")
}

func TestNonTemplateWithTemplateArgs(t *testing.T) {
	err := compileErr(t, `
int addk(int x) { return x; }

#pragma hls_top
int top(int a) { return addk<5>(a); }`)
	assert.Contains(t, err.Error(), "is not a template")
}

func TestUnknownName(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() { return nope; }`)
	assert.Contains(t, err.Error(), "unknown name nope")
}

func TestUnknownType(t *testing.T) {
	err := compileErr(t, `
#pragma hls_top
int top() {
  Mystery m;
  return 0;
}`)
	assert.Contains(t, err.Error(), "unknown type Mystery")
}
