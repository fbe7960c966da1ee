package parser

import (
	"strings"
)

// PragmaKind identifies a recognized directive.
type PragmaKind int

const (
	PragmaTop PragmaKind = iota
	PragmaUnroll
	PragmaNoTuple
)

// Pragma is one recognized directive with its source line.
type Pragma struct {
	Kind PragmaKind
	Line int
}

// preprocess strips comments for directive detection, records the
// recognized pragmas, and blanks every '#' line so the lexer never sees
// preprocessor syntax. Line numbering is preserved. Directives inside
// comments are not directives.
func preprocess(source string) (string, []Pragma) {
	stripped := stripComments(source)

	var pragmas []Pragma
	var out strings.Builder
	out.Grow(len(source))

	srcLines := strings.Split(source, "\n")
	for i, line := range strings.Split(stripped, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if i > 0 {
				out.WriteByte('\n')
			}
			if i < len(srcLines) {
				out.WriteString(srcLines[i])
			}
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(trimmed, "#"))
		if len(fields) >= 2 && fields[0] == "pragma" {
			switch fields[1] {
			case "hls_top":
				pragmas = append(pragmas, Pragma{PragmaTop, i + 1})
			case "hls_unroll":
				if len(fields) >= 3 && fields[2] == "yes" {
					pragmas = append(pragmas, Pragma{PragmaUnroll, i + 1})
				}
			case "hls_no_tuple":
				pragmas = append(pragmas, Pragma{PragmaNoTuple, i + 1})
			}
		}
		// Blank the whole line, including #include and unknown pragmas.
		if i > 0 {
			out.WriteByte('\n')
		}
	}
	return out.String(), pragmas
}

// stripComments replaces comment bodies with spaces, keeping newlines so
// line numbers stay stable.
func stripComments(source string) string {
	out := []byte(source)
	i := 0
	for i < len(out) {
		switch {
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i += 2
			for i < len(out) {
				if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i += 2
					break
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		case out[i] == '\'':
			i++
			for i < len(out) && out[i] != '\'' {
				if out[i] == '\\' {
					i++
				}
				i++
			}
			i++
		default:
			i++
		}
	}
	return string(out)
}

// pragmaSet hands out pragmas to the declarations and statements that
// follow them in source order.
type pragmaSet struct {
	byKind map[PragmaKind][]int
}

func newPragmaSet(pragmas []Pragma) *pragmaSet {
	ps := &pragmaSet{byKind: make(map[PragmaKind][]int)}
	for _, p := range pragmas {
		ps.byKind[p.Kind] = append(ps.byKind[p.Kind], p.Line)
	}
	return ps
}

// take consumes the nearest unconsumed pragma of the given kind that
// appears before line, if any.
func (ps *pragmaSet) take(kind PragmaKind, line int) bool {
	lines := ps.byKind[kind]
	best := -1
	for i, l := range lines {
		if l < line && (best < 0 || l > lines[best]) {
			best = i
		}
	}
	if best < 0 {
		return false
	}
	ps.byKind[kind] = append(lines[:best], lines[best+1:]...)
	return true
}
