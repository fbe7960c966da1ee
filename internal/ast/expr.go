package ast

type IntLit struct {
	Pos   Position
	Value int64
}

type BoolLit struct {
	Pos   Position
	Value bool
}

type Ident struct {
	Pos  Position
	Name string
}

// UnaryExpr covers prefix -, +, !, ~.
type UnaryExpr struct {
	Pos Position
	Op  string
	X   Expr
}

// IncDecExpr is ++x, --x, x++ or x--.
type IncDecExpr struct {
	Pos    Position
	Op     string // "++" or "--"
	Prefix bool
	X      Expr
}

type BinaryExpr struct {
	Pos Position
	Op  string
	X   Expr
	Y   Expr
}

// AssignExpr is plain or compound assignment.
type AssignExpr struct {
	Pos Position
	Op  string // "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="
	LHS Expr
	RHS Expr
}

type CondExpr struct {
	Pos  Position
	Cond Expr
	Then Expr
	Else Expr
}

// CallExpr covers free calls, method calls (Fn as MemberExpr or
// ScopeExpr) and explicit template instantiations.
type CallExpr struct {
	Pos          Position
	Fn           Expr
	TemplateArgs []*TemplateArg
	Args         []Expr
}

type MemberExpr struct {
	Pos    Position
	X      Expr
	Member string
}

// ScopeExpr is a qualified name such as Test::foo.
type ScopeExpr struct {
	Pos   Position
	Scope string
	Name  string
}

type IndexExpr struct {
	Pos   Position
	X     Expr
	Index Expr
}

// CastExpr is a C-style cast to a builtin or named type.
type CastExpr struct {
	Pos  Position
	Type *TypeExpr
	X    Expr
}

type ParenExpr struct {
	Pos Position
	X   Expr
}

// InitListExpr is a brace initializer for structs and arrays.
type InitListExpr struct {
	Pos  Position
	Elts []Expr
}
