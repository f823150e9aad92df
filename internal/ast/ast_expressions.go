package ast

import (
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// IntLit is an integer literal. Its type is an overloaded fresh
// variable until context resolves it.
type IntLit struct {
	Value int64
	Loc   token.Pos
	Type  types.Type
}

func (e *IntLit) expNode()       {}
func (e *IntLit) Pos() token.Pos { return e.Loc }

// FloatLit is a decimal literal.
type FloatLit struct {
	Value float64
	Loc   token.Pos
	Type  types.Type
}

func (e *FloatLit) expNode()       {}
func (e *FloatLit) Pos() token.Pos { return e.Loc }

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	Loc   token.Pos
	Type  types.Type
}

func (e *BoolLit) expNode()       {}
func (e *BoolLit) Pos() token.Pos { return e.Loc }

// Var is a possibly-qualified variable reference. Names holds the
// syntactic segments; the checker resolves the longest bound prefix to
// Root and reinterprets the remaining segments as record projections.
type Var struct {
	Names []string
	Loc   token.Pos

	Root        names.VName
	Projections []string
	Type        types.Type
}

func (e *Var) expNode()       {}
func (e *Var) Pos() token.Pos { return e.Loc }

// Apply is a function application. Application is curried one argument
// at a time against the callee's arrow type.
type Apply struct {
	Fun  Exp
	Args []Exp
	Loc  token.Pos
	Type types.Type
}

func (e *Apply) expNode()       {}
func (e *Apply) Pos() token.Pos { return e.Loc }

// BinOp is infix application of a named operator.
type BinOp struct {
	Op    string
	Left  Exp
	Right Exp
	Loc   token.Pos
	Type  types.Type
}

func (e *BinOp) expNode()       {}
func (e *BinOp) Pos() token.Pos { return e.Loc }

// Lambda is an anonymous function. TypeParams receives the parameters
// generalized when the lambda's signature is closed over.
type Lambda struct {
	Params  []Pattern
	RetDecl TypeExp // optional
	Body    Exp
	Loc     token.Pos

	TypeParams []types.TypeParam
	Type       types.Type
}

func (e *Lambda) expNode()       {}
func (e *Lambda) Pos() token.Pos { return e.Loc }

// Let binds a pattern in a body. A single-name binding whose value is
// a lambda is generalized like a local function definition.
type Let struct {
	Pat   Pattern
	Value Exp
	Body  Exp
	Loc   token.Pos

	BoundParams []types.TypeParam
	Type        types.Type
}

func (e *Let) expNode()       {}
func (e *Let) Pos() token.Pos { return e.Loc }

// LetWith is the in-place update form
//
//	let dest = src with [indexes] <- value in body
//
// src must be unique-typed; after the update src is consumed and dest
// aliases the original storage.
type LetWith struct {
	Dest    string
	Src     string
	Indexes []Exp
	Value   Exp
	Body    Exp
	Loc     token.Pos

	SrcVName  names.VName
	DestVName names.VName
	Type      types.Type
}

func (e *LetWith) expNode()       {}
func (e *LetWith) Pos() token.Pos { return e.Loc }

// If is a two-armed conditional.
type If struct {
	Cond Exp
	Then Exp
	Else Exp
	Loc  token.Pos
	Type types.Type
}

func (e *If) expNode()       {}
func (e *If) Pos() token.Pos { return e.Loc }

// LoopForm is the iteration scheme of a DoLoop.
type LoopForm interface {
	Node
	loopFormNode()
}

// ForLoop iterates a counter from zero up to Bound.
type ForLoop struct {
	Var   string
	Bound Exp
	Loc   token.Pos

	VarVName names.VName
}

func (f *ForLoop) loopFormNode()  {}
func (f *ForLoop) Pos() token.Pos { return f.Loc }

// WhileLoop iterates while Cond holds.
type WhileLoop struct {
	Cond Exp
	Loc  token.Pos
}

func (f *WhileLoop) loopFormNode()  {}
func (f *WhileLoop) Pos() token.Pos { return f.Loc }

// DoLoop rebinds the merge pattern each iteration:
//
//	loop pat = init for i < n do body
//	loop pat = init while cond do body
type DoLoop struct {
	Pat  Pattern
	Init Exp
	Form LoopForm
	Body Exp
	Loc  token.Pos
	Type types.Type
}

func (e *DoLoop) expNode()       {}
func (e *DoLoop) Pos() token.Pos { return e.Loc }

// ArrayLit is an array literal.
type ArrayLit struct {
	Elems []Exp
	Loc   token.Pos
	Type  types.Type
}

func (e *ArrayLit) expNode()       {}
func (e *ArrayLit) Pos() token.Pos { return e.Loc }

// Index reads an element or slice of an array.
type Index struct {
	Array   Exp
	Indexes []Exp
	Loc     token.Pos
	Type    types.Type
}

func (e *Index) expNode()       {}
func (e *Index) Pos() token.Pos { return e.Loc }

// FieldInit is one field of a record literal.
type FieldInit struct {
	Name  string
	Value Exp
	Loc   token.Pos
}

// RecordLit constructs a record value.
type RecordLit struct {
	Fields []FieldInit
	Loc    token.Pos
	Type   types.Type
}

func (e *RecordLit) expNode()       {}
func (e *RecordLit) Pos() token.Pos { return e.Loc }

// Project reads a record field.
type Project struct {
	Rec   Exp
	Field string
	Loc   token.Pos
	Type  types.Type
}

func (e *Project) expNode()       {}
func (e *Project) Pos() token.Pos { return e.Loc }

// Ascript checks an expression against a declared type.
type Ascript struct {
	Exp  Exp
	Decl TypeExp
	Loc  token.Pos
	Type types.Type
}

func (e *Ascript) expNode()       {}
func (e *Ascript) Pos() token.Pos { return e.Loc }
