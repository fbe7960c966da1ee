package ast

// Position is a source location, 1-based.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// Node is implemented by every AST node.
type Node interface {
	NodePos() Position
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	isExpr()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	isStmt()
}

func (e *IntLit) isExpr()       {}
func (e *BoolLit) isExpr()      {}
func (e *Ident) isExpr()        {}
func (e *UnaryExpr) isExpr()    {}
func (e *IncDecExpr) isExpr()   {}
func (e *BinaryExpr) isExpr()   {}
func (e *AssignExpr) isExpr()   {}
func (e *CondExpr) isExpr()     {}
func (e *CallExpr) isExpr()     {}
func (e *MemberExpr) isExpr()   {}
func (e *ScopeExpr) isExpr()    {}
func (e *IndexExpr) isExpr()    {}
func (e *CastExpr) isExpr()     {}
func (e *ParenExpr) isExpr()    {}
func (e *InitListExpr) isExpr() {}

func (s *BlockStmt) isStmt()    {}
func (s *DeclStmt) isStmt()     {}
func (s *ExprStmt) isStmt()     {}
func (s *IfStmt) isStmt()       {}
func (s *SwitchStmt) isStmt()   {}
func (s *ForStmt) isStmt()      {}
func (s *BreakStmt) isStmt()    {}
func (s *ContinueStmt) isStmt() {}
func (s *ReturnStmt) isStmt()   {}

func (e *IntLit) NodePos() Position       { return e.Pos }
func (e *BoolLit) NodePos() Position      { return e.Pos }
func (e *Ident) NodePos() Position        { return e.Pos }
func (e *UnaryExpr) NodePos() Position    { return e.Pos }
func (e *IncDecExpr) NodePos() Position   { return e.Pos }
func (e *BinaryExpr) NodePos() Position   { return e.Pos }
func (e *AssignExpr) NodePos() Position   { return e.Pos }
func (e *CondExpr) NodePos() Position     { return e.Pos }
func (e *CallExpr) NodePos() Position     { return e.Pos }
func (e *MemberExpr) NodePos() Position   { return e.Pos }
func (e *ScopeExpr) NodePos() Position    { return e.Pos }
func (e *IndexExpr) NodePos() Position    { return e.Pos }
func (e *CastExpr) NodePos() Position     { return e.Pos }
func (e *ParenExpr) NodePos() Position    { return e.Pos }
func (e *InitListExpr) NodePos() Position { return e.Pos }

func (s *BlockStmt) NodePos() Position    { return s.Pos }
func (s *DeclStmt) NodePos() Position     { return s.Pos }
func (s *ExprStmt) NodePos() Position     { return s.Pos }
func (s *IfStmt) NodePos() Position       { return s.Pos }
func (s *SwitchStmt) NodePos() Position   { return s.Pos }
func (s *ForStmt) NodePos() Position      { return s.Pos }
func (s *BreakStmt) NodePos() Position    { return s.Pos }
func (s *ContinueStmt) NodePos() Position { return s.Pos }
func (s *ReturnStmt) NodePos() Position   { return s.Pos }

func (d *FuncDecl) NodePos() Position    { return d.Pos }
func (d *StructDecl) NodePos() Position  { return d.Pos }
func (d *TypedefDecl) NodePos() Position { return d.Pos }
func (d *FieldDecl) NodePos() Position   { return d.Pos }
func (d *ParamDecl) NodePos() Position   { return d.Pos }
func (d *VarDecl) NodePos() Position     { return d.Pos }
func (d *CtorInit) NodePos() Position    { return d.Pos }
func (t *TypeExpr) NodePos() Position    { return t.Pos }
