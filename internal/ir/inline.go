package ir

import (
	"fmt"
)

// InlineInvokes splices every invoke in the package so procs and
// functions contain no unresolved calls. Callees are inlined bottom-up.
func InlineInvokes(pkg *Package) error {
	done := make(map[*Function]bool)
	inlining := make(map[*Function]bool)
	for _, f := range pkg.Funcs {
		if err := inlineFunction(f, done, inlining); err != nil {
			return err
		}
	}
	for _, p := range pkg.Procs {
		replace, err := spliceGraph(&p.Graph, done, inlining)
		if err != nil {
			return err
		}
		for i, n := range p.Next {
			if r, ok := replace[n]; ok {
				p.Next[i] = r
			}
		}
	}
	return nil
}

func inlineFunction(f *Function, done, inlining map[*Function]bool) error {
	if done[f] {
		return nil
	}
	if inlining[f] {
		return fmt.Errorf("recursive call through %s", f.Name)
	}
	inlining[f] = true
	defer delete(inlining, f)

	replace, err := spliceGraph(&f.Graph, done, inlining)
	if err != nil {
		return err
	}
	if f.Return != nil {
		if r, ok := replace[f.Return]; ok {
			f.Return = r
		}
	}
	done[f] = true
	return nil
}

// spliceGraph rewrites a graph, expanding each invoke into clones of
// the callee body. References only point backward, so a single pass
// with a replacement map suffices.
func spliceGraph(g *Graph, done, inlining map[*Function]bool) (map[*Node]*Node, error) {
	out := make([]*Node, 0, len(g.Nodes))
	replace := make(map[*Node]*Node)
	nextID := 0

	remap := func(n *Node) *Node {
		if r, ok := replace[n]; ok {
			return r
		}
		return n
	}

	for _, n := range g.Nodes {
		for i, a := range n.Args {
			n.Args[i] = remap(a)
		}
		if n.Op != OpInvoke {
			nextID++
			n.ID = nextID
			out = append(out, n)
			continue
		}

		callee := n.Callee
		if err := inlineFunction(callee, done, inlining); err != nil {
			return nil, err
		}

		clone := make(map[*Node]*Node, len(callee.Nodes))
		for i, p := range callee.Params {
			clone[p] = n.Args[i]
		}
		for _, cn := range callee.Nodes {
			if cn.Op == OpParam {
				continue
			}
			nextID++
			nn := &Node{
				ID:     nextID,
				Op:     cn.Op,
				Type:   cn.Type,
				Lit:    cn.Lit,
				Name:   cn.Name,
				Sym:    cn.Sym,
				Index:  cn.Index,
				Signed: cn.Signed,
				Callee: cn.Callee,
				Chan:   cn.Chan,
			}
			for _, ca := range cn.Args {
				nn.Args = append(nn.Args, clone[ca])
			}
			out = append(out, nn)
			clone[cn] = nn
		}

		if callee.Return != nil {
			replace[n] = clone[callee.Return]
		} else {
			nextID++
			nn := &Node{ID: nextID, Op: OpTuple, Type: &TupleType{}}
			out = append(out, nn)
			replace[n] = nn
		}
	}
	g.Nodes = out
	g.nextID = nextID
	return replace, nil
}
