package translate

import (
	"hlscc/internal/ast"
	"hlscc/internal/ctype"
	"hlscc/internal/ir"
)

type symKind int

const (
	symVar symKind = iota
	symChannel
	symInduction // loop induction variable, constant per iteration
	symConst     // template value or static constant
)

// symbol is one name visible in a scope. Vars hold their current value
// node; the node is rebound on every (possibly guarded) assignment.
type symbol struct {
	name   string
	kind   symKind
	typ    ctype.Type
	node   *ir.Node
	ch     *chanSym
	val    int64 // symInduction, symConst
	isBool bool
	ro     bool // const qualified
}

// chanSym is a channel endpoint threaded through parameter references.
// Function mode collects read placeholders and send records; proc mode
// binds the IR channel.
type chanSym struct {
	name string
	elem ctype.Type
	irch *ir.Channel
}

// value is a translated rvalue.
type value struct {
	t ctype.Type
	n *ir.Node
}

// loopCtx tracks the monotonic break and continue flags of one
// unrolling loop. cont resets every iteration, brk persists.
type loopCtx struct {
	outer  *loopCtx
	brk    *ir.Node
	cont   *ir.Node
	indVar *symbol
}

// breakable is the target stack for break statements: innermost loop or
// switch clause wins.
type breakable struct {
	isLoop          bool
	loop            *loopCtx
	clauseCondDepth int
	clauseEnded     bool
}

// frame is the translation context of one function body, including
// bodies spliced in by call inlining. conds is the structural condition
// stack; returned accumulates the activation of every return seen so
// far. The effective statement guard is the conjunction of conds with
// the negations of returned and the loop flags.
type frame struct {
	tr  *translator
	res *ctype.Resolver

	fn       *ast.FuncDecl
	scopes   []map[string]*symbol
	conds    []*ir.Node
	returned *ir.Node
	retVal   *ir.Node
	retType  ctype.Type
	loop     *loopCtx
	breaks   []*breakable
	thisSym  *symbol
	banIO    bool // inside an operator or conversion overload

	ccMemo *ir.Node
	ccOK   bool
}

func (f *frame) pushScope() {
	f.scopes = append(f.scopes, make(map[string]*symbol))
}

func (f *frame) popScope() {
	f.scopes = f.scopes[:len(f.scopes)-1]
}

func (f *frame) declare(s *symbol) {
	f.scopes[len(f.scopes)-1][s.name] = s
}

func (f *frame) lookup(name string) *symbol {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if s, ok := f.scopes[i][name]; ok {
			return s
		}
	}
	return nil
}

func (f *frame) invalidateCC() {
	f.ccMemo, f.ccOK = nil, false
}

func (f *frame) pushCond(c *ir.Node) {
	f.conds = append(f.conds, c)
	f.invalidateCC()
}

func (f *frame) popCond() {
	f.conds = f.conds[:len(f.conds)-1]
	f.invalidateCC()
}

// cc is the effective activation condition of the next statement. nil
// means unconditional.
func (f *frame) cc() *ir.Node {
	if f.ccOK {
		return f.ccMemo
	}
	var acc *ir.Node
	for _, c := range f.conds {
		acc = f.tr.and2(acc, c)
	}
	if f.returned != nil {
		acc = f.tr.and2(acc, f.tr.not1(f.returned))
	}
	for l := f.loop; l != nil; l = l.outer {
		if l.brk != nil {
			acc = f.tr.and2(acc, f.tr.not1(l.brk))
		}
		if l.cont != nil {
			acc = f.tr.and2(acc, f.tr.not1(l.cont))
		}
	}
	f.ccMemo, f.ccOK = acc, true
	return acc
}

// Boolean node helpers with literal folding. nil stands for constant
// true in and2 and constant false in or2.

func (t *translator) lit1(b bool) *ir.Node {
	v := uint64(0)
	if b {
		v = 1
	}
	return t.g.Literal(ir.MakeBits(1, v))
}

func litBoolValue(n *ir.Node) (bool, bool) {
	if n == nil || n.Op != ir.OpLiteral {
		return false, false
	}
	b, ok := n.Lit.(ir.Bits)
	if !ok || b.Width != 1 {
		return false, false
	}
	return !b.IsZero(), true
}

func (t *translator) not1(n *ir.Node) *ir.Node {
	if v, ok := litBoolValue(n); ok {
		return t.lit1(!v)
	}
	return t.g.Unary("lnot", &ir.BitsType{Width: 1}, n)
}

func (t *translator) and2(a, b *ir.Node) *ir.Node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if v, ok := litBoolValue(a); ok {
		if v {
			return b
		}
		return a
	}
	if v, ok := litBoolValue(b); ok {
		if v {
			return a
		}
		return b
	}
	return t.g.Binary("and", &ir.BitsType{Width: 1}, a, b)
}

func (t *translator) or2(a, b *ir.Node) *ir.Node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if v, ok := litBoolValue(a); ok {
		if v {
			return a
		}
		return b
	}
	if v, ok := litBoolValue(b); ok {
		if v {
			return b
		}
		return a
	}
	return t.g.Binary("or", &ir.BitsType{Width: 1}, a, b)
}

// sel wraps Select with guard folding: a nil guard keeps the new value.
func (t *translator) sel(guard, onTrue, onFalse *ir.Node) *ir.Node {
	if guard == nil {
		return onTrue
	}
	if v, ok := litBoolValue(guard); ok {
		if v {
			return onTrue
		}
		return onFalse
	}
	return t.g.Select(guard, onTrue, onFalse)
}
