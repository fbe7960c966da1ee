package ast

// Unit is a parsed translation unit.
type Unit struct {
	Filename string
	Funcs    []*FuncDecl
	Structs  []*StructDecl
	Typedefs []*TypedefDecl
}

// TypeExpr is a syntactic type reference, before resolution.
type TypeExpr struct {
	Pos          Position
	Const        bool
	Name         string // "int", "short", "channel", "MyStruct", ...
	Unsigned     bool   // "unsigned int", "unsigned char", ...
	TemplateArgs []*TemplateArg
	Reference    bool // trailing '&'
}

// TemplateArg is one template argument. Exactly one of Type and Expr is
// set; a bare name parses as Expr and is classified during resolution.
type TemplateArg struct {
	Pos  Position
	Type *TypeExpr
	Expr Expr
}

// FuncDecl is a free function, a method when Receiver is non-empty, a
// constructor, or a conversion operator.
type FuncDecl struct {
	Pos       Position
	Top       bool // selected by #pragma hls_top or configuration
	Static    bool
	Templates []*TemplateParam
	Result    *TypeExpr // nil for constructors; target type for conversions
	Receiver  string    // enclosing struct name, "" for free functions
	Name      string    // "operator+" etc. for overloads
	IsCtor    bool
	IsConv    bool // conversion operator, Result is the target type
	CtorInits []*CtorInit
	Params    []*ParamDecl
	Body      *BlockStmt
}

// CtorInit is one entry of a constructor initializer list. Name is a
// member or a base class.
type CtorInit struct {
	Pos  Position
	Name string
	Args []Expr
}

// TemplateParam declares one template parameter, value or type kind.
type TemplateParam struct {
	Pos      Position
	TypeName bool // "typename T" / "class T"
	Type     *TypeExpr
	Name     string
}

// ParamDecl is one function parameter.
type ParamDecl struct {
	Pos     Position
	Type    *TypeExpr
	Name    string
	Default Expr // default argument, may be nil
}

// StructDecl declares a struct or class with optional bases.
type StructDecl struct {
	Pos       Position
	Name      string
	Templates []*TemplateParam
	Bases     []*TypeExpr
	NoTuple   bool // #pragma hls_no_tuple
	Fields    []*FieldDecl
	Methods   []*FuncDecl
}

// FieldDecl is one data member.
type FieldDecl struct {
	Pos       Position
	Static    bool
	Type      *TypeExpr
	Name      string
	ArrayDims []Expr
	Init      Expr // default member initializer, may be nil
}

// TypedefDecl aliases a type name.
type TypedefDecl struct {
	Pos  Position
	Type *TypeExpr
	Name string
}

// VarDecl is one local variable declaration.
type VarDecl struct {
	Pos       Position
	Type      *TypeExpr
	Name      string
	ArrayDims []Expr
	Init      Expr   // "= expr" or brace initializer
	CtorArgs  []Expr // "T x(a, b)" constructor call form
	HasCtor   bool
}
