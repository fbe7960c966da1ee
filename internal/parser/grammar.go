package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Parse tree produced by participle, lowered to internal/ast by lower.go.
// Keywords are matched literally against Ident tokens, so the grammar
// stays a single lexer state.

type gUnit struct {
	Pos   lexer.Position
	Decls []*gTopDecl `@@*`
}

type gTopDecl struct {
	Typedef *gTypedef `  @@`
	Struct  *gStruct  `| @@`
	Func    *gFunc    `| @@`
}

type gTypedef struct {
	Pos  lexer.Position
	Type *gType `"typedef" @@`
	Name string `@Ident ";"`
}

type gTemplateHeader struct {
	Pos    lexer.Position
	Params []*gTemplateParam `"template" "<" @@ ("," @@)* ">"`
}

type gTemplateParam struct {
	Pos   lexer.Position
	Class string `( @("typename" | "class")`
	Type  *gType `| @@ )`
	Name  string `@Ident`
}

// gType covers builtin keyword spellings ("unsigned short", "long long")
// and named types with optional template arguments.
type gType struct {
	Pos   lexer.Position
	Const bool            `@"const"?`
	Kw    []string        `( @("unsigned" | "signed" | "int" | "short" | "char" | "long" | "bool" | "void")+`
	Name  string          `| @Ident )`
	Args  []*gTemplateArg `( "<" @@ ("," @@)* ">" )?`
	Ref   bool            `@"&"?`
}

type gTemplateArg struct {
	Pos  lexer.Position
	Type *gType `  @@`
	Expr *gExpr `| @@`
}

type gStruct struct {
	Pos      lexer.Position
	Template *gTemplateHeader `@@?`
	Keyword  string           `@("struct" | "class")`
	Name     string           `@Ident`
	Bases    []*gBase         `( ":" @@ ("," @@)* )?`
	Members  []*gMember       `"{" @@* "}" ";"`
}

type gBase struct {
	Pos    lexer.Position
	Access string `@("public" | "private" | "protected")?`
	Type   *gType `@@`
}

type gMember struct {
	Access string      `  @("public" | "private" | "protected") ":"`
	Conv   *gConvOp    `| @@`
	Ctor   *gCtor      `| @@`
	Method *gFunc      `| @@`
	Field  *gFieldDecl `| @@`
}

// gConvOp is an implicit conversion operator to a builtin type.
type gConvOp struct {
	Pos   lexer.Position
	Kw    []string `"operator" @("unsigned" | "signed" | "int" | "short" | "char" | "long" | "bool")+`
	Const bool     `"(" ")" @"const"?`
	Body  *gBlock  `@@`
}

type gCtor struct {
	Pos    lexer.Position
	Name   string       `@Ident`
	Params []*gParam    `"(" ( @@ ("," @@)* )? ")"`
	Inits  []*gCtorInit `( ":" @@ ("," @@)* )?`
	Body   *gBlock      `@@`
}

type gCtorInit struct {
	Pos  lexer.Position
	Name string   `@Ident`
	Args []*gExpr `"(" ( @@ ("," @@)* )? ")"`
}

type gFunc struct {
	Pos      lexer.Position
	Template *gTemplateHeader `@@?`
	Static   bool             `@"static"?`
	Result   *gType           `@@`
	OpName   string           `( "operator" @("<<=" | ">>=" | "+=" | "-=" | "*=" | "/=" | "%=" | "&=" | "|=" | "^=" | "==" | "!=" | "<=" | ">=" | "<<" | ">>" | "++" | "--" | "+" | "-" | "*" | "/" | "%" | "&" | "|" | "^" | "<" | ">" | "=")`
	Name     string           `| @Ident )`
	Params   []*gParam        `"(" ( @@ ("," @@)* )? ")"`
	Const    bool             `@"const"?`
	Body     *gBlock          `@@`
}

type gParam struct {
	Pos     lexer.Position
	Type    *gType `@@`
	Name    string `@Ident?`
	Default *gExpr `( "=" @@ )?`
}

type gFieldDecl struct {
	Pos    lexer.Position
	Static bool           `@"static"?`
	Const  bool           `@"const"?`
	Type   *gType         `@@`
	Decls  []*gDeclarator `@@ ("," @@)* ";"`
}

type gBlock struct {
	Pos   lexer.Position
	Stmts []*gStmt `"{" @@* "}"`
}

type gStmt struct {
	Pos      lexer.Position
	Block    *gBlock    `  @@`
	If       *gIf       `| @@`
	Switch   *gSwitch   `| @@`
	For      *gFor      `| @@`
	Break    *gBreak    `| @@`
	Continue *gContinue `| @@`
	Return   *gReturn   `| @@`
	Decl     *gDeclStmt `| @@`
	Expr     *gExprStmt `| @@`
	Empty    bool       `| @";"`
}

type gDeclStmt struct {
	Pos    lexer.Position
	Static bool           `@"static"?`
	Type   *gType         `@@`
	Decls  []*gDeclarator `@@ ("," @@)* ";"`
}

type gDeclarator struct {
	Pos  lexer.Position
	Name string    `@Ident`
	Dims []*gExpr  `( "[" @@ "]" )*`
	Ctor *gArgList `( @@`
	Init *gInit    `| "=" @@ )?`
}

type gInit struct {
	List *gInitList `  @@`
	Expr *gExpr     `| @@`
}

type gExprStmt struct {
	Pos lexer.Position
	X   *gExpr `@@ ";"`
}

type gIf struct {
	Pos  lexer.Position
	Cond *gExpr `"if" "(" @@ ")"`
	Then *gStmt `@@`
	Else *gStmt `( "else" @@ )?`
}

type gSwitch struct {
	Pos   lexer.Position
	Tag   *gExpr   `"switch" "(" @@ ")"`
	Cases []*gCase `"{" @@* "}"`
}

type gCase struct {
	Pos     lexer.Position
	Default bool     `( @"default" ":"`
	Value   *gExpr   `| "case" @@ ":" )`
	Stmts   []*gStmt `@@*`
}

type gFor struct {
	Pos  lexer.Position
	Init *gForInit `"for" "(" @@`
	Cond *gExpr    `@@? ";"`
	Inc  *gExpr    `@@? ")"`
	Body *gStmt    `@@`
}

type gForInit struct {
	Decl  *gDeclStmt `  @@`
	Expr  *gExprStmt `| @@`
	Empty bool       `| @";"`
}

type gBreak struct {
	Pos lexer.Position
	Kw  string `@"break" ";"`
}

type gContinue struct {
	Pos lexer.Position
	Kw  string `@"continue" ";"`
}

type gReturn struct {
	Pos    lexer.Position
	Kw     string `@"return"`
	Result *gExpr `@@? ";"`
}

// Expressions. Binary operators parse flat; precedence is resolved
// while lowering.

type gExpr struct {
	Pos lexer.Position
	LHS *gCond `@@`
	Op  string `( @("=" | "+=" | "-=" | "*=" | "/=" | "%=" | "&=" | "|=" | "^=" | "<<=" | ">>=")`
	RHS *gExpr `  @@ )?`
}

type gCond struct {
	Pos  lexer.Position
	Bin  *gBinary `@@`
	Then *gExpr   `( "?" @@`
	Else *gCond   `  ":" @@ )?`
}

type gBinary struct {
	Pos   lexer.Position
	First *gUnary   `@@`
	Rest  []*gBinOp `@@*`
}

type gBinOp struct {
	Pos lexer.Position
	Op  string  `@("||" | "&&" | "==" | "!=" | "<=" | ">=" | "<<" | ">>" | "|" | "^" | "&" | "<" | ">" | "+" | "-" | "*" | "/" | "%")`
	X   *gUnary `@@`
}

type gUnary struct {
	Pos     lexer.Position
	Op      string    `( @("!" | "~" | "-" | "+" | "*")`
	X       *gUnary   `  @@ )`
	IncDec  string    `| ( @("++" | "--")`
	IncX    *gUnary   `    @@ )`
	Cast    *gCast    `| @@`
	Postfix *gPostfix `| @@`
}

// gCast is a C-style cast restricted to builtin type keywords; casts to
// template types use the functional form, which parses as a call.
type gCast struct {
	Pos lexer.Position
	Kw  []string `"(" @("unsigned" | "signed" | "int" | "short" | "char" | "long" | "bool")+ ")"`
	X   *gUnary  `@@`
}

type gPostfix struct {
	Pos     lexer.Position
	Primary *gPrimary     `@@`
	Ops     []*gPostfixOp `@@*`
}

type gPostfixOp struct {
	Pos    lexer.Position
	Member string    `( ("." | "->") @Ident`
	Call   *gArgList `  @@? )`
	Index  *gExpr    `| "[" @@ "]"`
	IncDec string    `| @("++" | "--")`
}

type gPrimary struct {
	Pos   lexer.Position
	True  bool        `  @"true"`
	False bool        `| @"false"`
	Char  string      `| @CharLit`
	Int   string      `| @Integer`
	Init  *gInitList  `| @@`
	Qual  *gQualified `| @@`
	Paren *gExpr      `| "(" @@ ")"`
}

type gInitList struct {
	Pos  lexer.Position
	Elts []*gExpr `"{" ( @@ ("," @@)* )? "}"`
}

// gQualified is a plain or scope-qualified name, optionally a call.
// Template arguments are only accepted when a call follows, which keeps
// comparison chains unambiguous.
type gQualified struct {
	Pos   lexer.Position
	Scope string    `( @Ident "::" )?`
	Name  string    `@Ident`
	TCall *gTCall   `@@?`
	Args  *gArgList `@@?`
}

type gTCall struct {
	Pos   lexer.Position
	TArgs []*gSTArg `"<" @@ ("," @@)* ">"`
	Args  *gArgList `@@`
}

// gSTArg is a template argument in expression position: a literal, a
// builtin type spelling, or a bare name.
type gSTArg struct {
	Pos   lexer.Position
	Int   string   `  @Integer`
	True  bool     `| @"true"`
	False bool     `| @"false"`
	Kw    []string `| @("unsigned" | "signed" | "int" | "short" | "char" | "long" | "bool")+`
	Name  string   `| @Ident`
}

type gArgList struct {
	Pos  lexer.Position
	Args []*gExpr `"(" ( @@ ("," @@)* )? ")"`
}
