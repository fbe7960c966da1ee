// Package ctype models the source-level type system: fixed-width
// integers, bool, arrays, structs with flattened single inheritance,
// and channels. All sizes are static.
package ctype

import (
	"fmt"
	"strings"

	"hlscc/internal/ast"
)

type Type interface {
	String() string
	isType()
}

// IntType is a fixed-width integer, 1 to 64 bits.
type IntType struct {
	Width  int
	Signed bool
}

type BoolType struct{}

type VoidType struct{}

type ArrayType struct {
	Elem Type
	Len  int
}

// Field is one flattened struct field. Base-class fields come first and
// carry FromBase.
type Field struct {
	Name     string
	Type     Type
	FromBase bool
}

// StructType is a resolved struct. Decl and Bindings tie instantiated
// templates back to their source for method translation. NoTuple
// structs carry exactly one field and lay out as that field's bare
// value.
type StructType struct {
	Name     string
	Fields   []*Field
	NoTuple  bool
	Decl     *ast.StructDecl
	Bindings map[string]Binding
}

// ChannelType is a communication endpoint carrying Elem values.
type ChannelType struct {
	Elem Type
}

func (*IntType) isType()     {}
func (*BoolType) isType()    {}
func (*VoidType) isType()    {}
func (*ArrayType) isType()   {}
func (*StructType) isType()  {}
func (*ChannelType) isType() {}

func (t *IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("sN[%d]", t.Width)
	}
	return fmt.Sprintf("uN[%d]", t.Width)
}

func (*BoolType) String() string { return "uN[1]" }
func (*VoidType) String() string { return "()" }

func (t *ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
}

func (t *StructType) String() string {
	if t.NoTuple {
		return t.Fields[0].Type.String()
	}
	var parts []string
	for _, f := range t.Fields {
		parts = append(parts, f.Type.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *ChannelType) String() string {
	return fmt.Sprintf("chan<%s>", t.Elem)
}

// FieldIndex returns the flattened position of a named field, or -1.
func (t *StructType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Equal compares types structurally.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *IntType:
		bt, ok := b.(*IntType)
		return ok && at.Width == bt.Width && at.Signed == bt.Signed
	case *BoolType:
		_, ok := b.(*BoolType)
		return ok
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && at.Len == bt.Len && Equal(at.Elem, bt.Elem)
	case *StructType:
		bt, ok := b.(*StructType)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if !Equal(at.Fields[i].Type, bt.Fields[i].Type) {
				return false
			}
		}
		return true
	case *ChannelType:
		bt, ok := b.(*ChannelType)
		return ok && Equal(at.Elem, bt.Elem)
	}
	return false
}

// Promote applies C integer promotion: types narrower than int widen to
// signed 32-bit before arithmetic. Bool promotes the same way.
func Promote(t Type) Type {
	switch it := t.(type) {
	case *BoolType:
		return &IntType{Width: 32, Signed: true}
	case *IntType:
		if it.Width < 32 {
			return &IntType{Width: 32, Signed: true}
		}
		return it
	}
	return t
}

// Common computes the usual arithmetic conversion of two promoted
// integer types: wider rank wins, unsigned wins at equal width.
func Common(a, b Type) *IntType {
	at := Promote(a).(*IntType)
	bt := Promote(b).(*IntType)
	if at.Width == bt.Width {
		return &IntType{Width: at.Width, Signed: at.Signed && bt.Signed}
	}
	wide, narrow := at, bt
	if bt.Width > at.Width {
		wide, narrow = bt, at
	}
	if wide.Signed && !narrow.Signed && wide.Width > narrow.Width {
		// The wider signed type represents every value of the narrower
		// unsigned one.
		return wide
	}
	return &IntType{Width: wide.Width, Signed: wide.Signed}
}

// BitWidth is the flattened width of a value of type t.
func BitWidth(t Type) int {
	switch tt := t.(type) {
	case *IntType:
		return tt.Width
	case *BoolType:
		return 1
	case *ArrayType:
		return tt.Len * BitWidth(tt.Elem)
	case *StructType:
		total := 0
		for _, f := range tt.Fields {
			total += BitWidth(f.Type)
		}
		return total
	}
	return 0
}
