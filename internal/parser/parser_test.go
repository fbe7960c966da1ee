// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hlscc/internal/ast"
	errs "hlscc/internal/errors"
)

func parse(t *testing.T, source string) *ast.Unit {
	t.Helper()
	unit, err := ParseSource("test.cc", source)
	require.NoError(t, err, "Source should parse")
	return unit
}

func TestParseFunction(t *testing.T) {
	unit := parse(t, `
int add(int a, int b) {
  return a + b;
}`)
	require.Len(t, unit.Funcs, 1)
	fn := unit.Funcs[0]
	assert.Equal(t, "add", fn.Name)
	assert.False(t, fn.Top)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "int", fn.Params[0].Type.Name)
	require.Len(t, fn.Body.Stmts, 1)
}

func TestTopPragmaAttachesToNextFunction(t *testing.T) {
	unit := parse(t, `
int helper() { return 1; }

#pragma hls_top
int entry() { return 2; }`)
	require.Len(t, unit.Funcs, 2)
	assert.False(t, unit.Funcs[0].Top)
	assert.True(t, unit.Funcs[1].Top)
}

func TestPragmaInsideCommentIsIgnored(t *testing.T) {
	unit := parse(t, `
// #pragma hls_top
int f() { return 1; }`)
	require.Len(t, unit.Funcs, 1)
	assert.False(t, unit.Funcs[0].Top, "Commented-out pragmas are not directives")
}

func TestPragmaTakeConsumesNearest(t *testing.T) {
	ps := newPragmaSet([]Pragma{{PragmaUnroll, 2}, {PragmaUnroll, 8}})
	require.True(t, ps.take(PragmaUnroll, 10), "Line 8 is the nearest preceding pragma")
	require.True(t, ps.take(PragmaUnroll, 5), "Line 2 must remain after the first take")
	assert.False(t, ps.take(PragmaUnroll, 12))
}

func TestIncludeLinesAreBlanked(t *testing.T) {
	unit := parse(t, `
#include "ac_int.h"
#pragma once

int f() { return 1; }`)
	require.Len(t, unit.Funcs, 1)
}

func TestUnrollPragmaAttachesToLoop(t *testing.T) {
	unit := parse(t, `
int f() {
  int s = 0;
  #pragma hls_unroll yes
  for (int i = 0; i < 4; ++i) {
    s += i;
  }
  return s;
}`)
	body := unit.Funcs[0].Body.Stmts
	require.Len(t, body, 3)
	loop, ok := body[1].(*ast.ForStmt)
	require.True(t, ok)
	assert.True(t, loop.Unroll)
}

func TestUnrollPragmaWithoutYes(t *testing.T) {
	unit := parse(t, `
int f() {
  int s = 0;
  #pragma hls_unroll no
  for (int i = 0; i < 4; ++i) {
    s += i;
  }
  return s;
}`)
	loop := unit.Funcs[0].Body.Stmts[1].(*ast.ForStmt)
	assert.False(t, loop.Unroll)
}

func TestNoTuplePragma(t *testing.T) {
	unit := parse(t, `
#pragma hls_no_tuple
struct Tag {
  int id;
};

struct Plain {
  int v;
};`)
	require.Len(t, unit.Structs, 2)
	assert.True(t, unit.Structs[0].NoTuple)
	assert.False(t, unit.Structs[1].NoTuple)
}

func TestOperatorPrecedenceLowering(t *testing.T) {
	unit := parse(t, `
int f(int a, int b, int c) {
  return a + b * c;
}`)
	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	add, ok := ret.Result.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	mul, ok := add.Y.(*ast.BinaryExpr)
	require.True(t, ok, "Multiplication binds tighter than addition")
	assert.Equal(t, "*", mul.Op)
}

func TestLeftAssociativity(t *testing.T) {
	unit := parse(t, `
int f(int a, int b, int c) {
  return a - b - c;
}`)
	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	outer := ret.Result.(*ast.BinaryExpr)
	inner, ok := outer.X.(*ast.BinaryExpr)
	require.True(t, ok, "Subtraction chains associate left")
	assert.Equal(t, "-", inner.Op)
}

func TestSwitchTrailingBreakStripped(t *testing.T) {
	unit := parse(t, `
int f(int a) {
  switch (a) {
  case 1:
    a = 2;
    break;
  case 3:
    a = 4;
  }
  return a;
}`)
	sw := unit.Funcs[0].Body.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 2)
	assert.True(t, sw.Cases[0].HasBreak)
	require.Len(t, sw.Cases[0].Stmts, 1, "Trailing break is folded into HasBreak")
	assert.False(t, sw.Cases[1].HasBreak)
}

func TestStructMembers(t *testing.T) {
	unit := parse(t, `
struct Fix {
  int raw;
  static const int SHIFT = 4;

  Fix(int r) : raw(r) {}

  operator int() { return raw >> SHIFT; }

  Fix operator+(Fix other) {
    Fix sum(raw + other.raw);
    return sum;
  }

  int whole() const { return raw >> SHIFT; }
};`)
	require.Len(t, unit.Structs, 1)
	st := unit.Structs[0]
	assert.Equal(t, "Fix", st.Name)
	require.Len(t, st.Fields, 2)
	assert.True(t, st.Fields[1].Static)
	require.Len(t, st.Methods, 4)

	ctor := st.Methods[0]
	assert.True(t, ctor.IsCtor)
	require.Len(t, ctor.CtorInits, 1)
	assert.Equal(t, "raw", ctor.CtorInits[0].Name)

	conv := st.Methods[1]
	assert.True(t, conv.IsConv)
	assert.Equal(t, "operator int", conv.Name)

	assert.Equal(t, "operator+", st.Methods[2].Name)
	assert.Equal(t, "whole", st.Methods[3].Name)
}

func TestTemplateHeader(t *testing.T) {
	unit := parse(t, `
template <typename T, int W>
struct Reg {
  T v;
};`)
	st := unit.Structs[0]
	require.Len(t, st.Templates, 2)
	assert.True(t, st.Templates[0].TypeName)
	assert.Equal(t, "T", st.Templates[0].Name)
	assert.False(t, st.Templates[1].TypeName)
	assert.Equal(t, "W", st.Templates[1].Name)
}

func TestTemplateCallExpression(t *testing.T) {
	unit := parse(t, `
int f(int a) {
  return shift<int, 5>(a);
}`)
	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Result.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.TemplateArgs, 2)
	assert.NotNil(t, call.TemplateArgs[0].Type)
	lit, ok := call.TemplateArgs[1].Expr.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(5), lit.Value)
}

func TestChannelReferenceType(t *testing.T) {
	unit := parse(t, `
void f(channel<int>& in) {
  in.read();
}`)
	p := unit.Funcs[0].Params[0]
	assert.Equal(t, "channel", p.Type.Name)
	assert.True(t, p.Type.Reference)
	require.Len(t, p.Type.TemplateArgs, 1)
}

func TestBuiltinTypeSpellings(t *testing.T) {
	unit := parse(t, `
int f(unsigned a, unsigned short b, long long c, signed char d) {
  return 0;
}`)
	params := unit.Funcs[0].Params
	assert.Equal(t, "int", params[0].Type.Name)
	assert.True(t, params[0].Type.Unsigned)
	assert.Equal(t, "short", params[1].Type.Name)
	assert.True(t, params[1].Type.Unsigned)
	assert.Equal(t, "long", params[2].Type.Name)
	assert.Equal(t, "char", params[3].Type.Name)
	assert.False(t, params[3].Type.Unsigned)
}

func TestTypedefDecl(t *testing.T) {
	unit := parse(t, `typedef ac_int<8, false> u8;`)
	require.Len(t, unit.Typedefs, 1)
	assert.Equal(t, "u8", unit.Typedefs[0].Name)
	assert.Equal(t, "ac_int", unit.Typedefs[0].Type.Name)
}

func TestArrayDeclarationDims(t *testing.T) {
	unit := parse(t, `
int f() {
  int grid[3][4];
  return 0;
}`)
	ds := unit.Funcs[0].Body.Stmts[0].(*ast.DeclStmt)
	require.Len(t, ds.Decls[0].ArrayDims, 2)
}

func TestHexAndCharLiterals(t *testing.T) {
	unit := parse(t, `
int f() {
  int a = 0xFF;
  int b = '\n';
  return a + b;
}`)
	ds := unit.Funcs[0].Body.Stmts[0].(*ast.DeclStmt)
	lit := ds.Decls[0].Init.(*ast.IntLit)
	assert.Equal(t, int64(255), lit.Value)
	ds2 := unit.Funcs[0].Body.Stmts[1].(*ast.DeclStmt)
	assert.Equal(t, int64(10), ds2.Decls[0].Init.(*ast.IntLit).Value)
}

func TestDereferencedThisIsReceiver(t *testing.T) {
	unit := parse(t, `
struct S {
  int v;
  S self() { return *this; }
};`)
	ret := unit.Structs[0].Methods[0].Body.Stmts[0].(*ast.ReturnStmt)
	id, ok := ret.Result.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "this", id.Name)
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := ParseSource("test.cc", "int f( {")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
	cat, ok := errs.CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.InvalidArgument, cat)
}

func TestCtorNameMismatch(t *testing.T) {
	_, err := ParseSource("test.cc", `
struct A {
  int v;
  B(int x) : v(x) {}
};`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match struct")
}
