package ast

type BlockStmt struct {
	Pos   Position
	Stmts []Stmt
}

// DeclStmt holds one or more comma-separated declarations.
type DeclStmt struct {
	Pos   Position
	Decls []*VarDecl
}

type ExprStmt struct {
	Pos Position
	X   Expr
}

type IfStmt struct {
	Pos  Position
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

// SwitchStmt carries its cases in source order; fallthrough is implicit
// when a clause has no terminating break.
type SwitchStmt struct {
	Pos   Position
	Tag   Expr
	Cases []*CaseClause
}

// CaseClause is one "case expr:" or "default:" label with the statements
// up to the next label.
type CaseClause struct {
	Pos     Position
	Default bool
	Value   Expr // nil when Default
	Stmts   []Stmt
	// HasBreak is true when the clause ends with an unconditional break,
	// which terminates fallthrough.
	HasBreak bool
}

// ForStmt is a classic three-clause for loop. Unroll is set by a
// preceding #pragma hls_unroll yes.
type ForStmt struct {
	Pos    Position
	Unroll bool
	Init   Stmt // DeclStmt or ExprStmt, may be nil
	Cond   Expr // may be nil
	Inc    Expr // may be nil
	Body   Stmt
}

type BreakStmt struct {
	Pos Position
}

type ContinueStmt struct {
	Pos Position
}

type ReturnStmt struct {
	Pos    Position
	Result Expr // may be nil
}
