// Package ast defines the location-tagged, unresolved syntax tree the
// external parser and name resolver hand to the checker. Every
// expression node carries a type-annotation slot the checker fills.
package ast

import (
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() token.Pos
}

// Exp is a Node that represents an expression.
type Exp interface {
	Node
	expNode()
}

// Pattern is a Node that binds names.
type Pattern interface {
	Node
	patternNode()
}

// TypeExp is a Node that denotes a type syntactically.
type TypeExp interface {
	Node
	typeExpNode()
}

// Program is the root of one compilation unit.
type Program struct {
	File string
	Decs []*ValDec
}

// TypeParamDec is a declared type parameter of a top-level definition.
// Lifted parameters may be instantiated with function types.
type TypeParamDec struct {
	Name   string
	Lifted bool
	Loc    token.Pos
}

// ValDec is a top-level value definition:
//
//	def name [tparams] params... : ret = body
//
// The checker fills VName, Type and AllParams; AllParams holds the
// declared type parameters plus any generalized during checking.
type ValDec struct {
	Name       string
	TypeParams []TypeParamDec
	Params     []Pattern
	RetDecl    TypeExp // optional
	Body       Exp
	Loc        token.Pos

	VName     names.VName
	Type      types.Type
	AllParams []types.TypeParam
}

func (d *ValDec) Pos() token.Pos { return d.Loc }
