package token

import "fmt"

// Pos is a source position. The zero value is the "no position" sentinel
// used for compiler-synthesized nodes; callers that need a real position
// must check Known() and fail loudly instead of reporting line 0.
type Pos struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
}

// NoPos is the sentinel for synthesized nodes.
var NoPos = Pos{}

func (p Pos) Known() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.Known() {
		return "<no location>"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Before reports whether p occurs before q in the same file.
// Unknown positions sort first.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}
