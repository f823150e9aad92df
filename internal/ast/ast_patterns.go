package ast

import (
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// PatId binds a single name. Names beginning with '_' are exempt from
// unused-variable diagnostics.
type PatId struct {
	Name string
	Loc  token.Pos

	VName names.VName
	Type  types.Type
}

func (p *PatId) patternNode()   {}
func (p *PatId) Pos() token.Pos { return p.Loc }

// PatWildcard matches anything and binds nothing.
type PatWildcard struct {
	Loc  token.Pos
	Type types.Type
}

func (p *PatWildcard) patternNode()   {}
func (p *PatWildcard) Pos() token.Pos { return p.Loc }

// PatField is one field of a record pattern.
type PatField struct {
	Name string
	Pat  Pattern
	Loc  token.Pos
}

// PatRecord destructures a record. The field set must match the
// matched type exactly.
type PatRecord struct {
	Fields []PatField
	Loc    token.Pos
	Type   types.Type
}

func (p *PatRecord) patternNode()   {}
func (p *PatRecord) Pos() token.Pos { return p.Loc }

// PatAscript constrains the matched value's type.
type PatAscript struct {
	Pat  Pattern
	Decl TypeExp
	Loc  token.Pos
	Type types.Type
}

func (p *PatAscript) patternNode()   {}
func (p *PatAscript) Pos() token.Pos { return p.Loc }
