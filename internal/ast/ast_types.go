package ast

import (
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// TEPrim denotes a primitive scalar type.
type TEPrim struct {
	K   types.PrimKind
	Loc token.Pos
}

func (t *TEPrim) typeExpNode()   {}
func (t *TEPrim) Pos() token.Pos { return t.Loc }

// TEVar references a bound type name, possibly qualified.
type TEVar struct {
	Names []string
	Loc   token.Pos
}

func (t *TEVar) typeExpNode()   {}
func (t *TEVar) Pos() token.Pos { return t.Loc }

// TEArray denotes an array type with an optional uniqueness marker.
type TEArray struct {
	Elem   TypeExp
	Rank   int
	Unique bool
	Loc    token.Pos
}

func (t *TEArray) typeExpNode()   {}
func (t *TEArray) Pos() token.Pos { return t.Loc }

// TEField is one field of a record type expression.
type TEField struct {
	Name string
	Type TypeExp
}

// TERecord denotes a record type.
type TERecord struct {
	Fields []TEField
	Loc    token.Pos
}

func (t *TERecord) typeExpNode()   {}
func (t *TERecord) Pos() token.Pos { return t.Loc }

// TEArrow denotes a function type.
type TEArrow struct {
	Param  TypeExp
	Result TypeExp
	Loc    token.Pos
}

func (t *TEArrow) typeExpNode()   {}
func (t *TEArrow) Pos() token.Pos { return t.Loc }

// TEApp applies a named type to arguments.
type TEApp struct {
	Head []string
	Args []TypeExp
	Loc  token.Pos
}

func (t *TEApp) typeExpNode()   {}
func (t *TEApp) Pos() token.Pos { return t.Loc }
