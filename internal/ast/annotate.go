package ast

import "github.com/vexlang/vex/internal/types"

// TypeOf returns the checker-filled type annotation of an expression,
// or nil if the expression has not been checked.
func TypeOf(e Exp) types.Type {
	switch e := e.(type) {
	case *IntLit:
		return e.Type
	case *FloatLit:
		return e.Type
	case *BoolLit:
		return e.Type
	case *Var:
		return e.Type
	case *Apply:
		return e.Type
	case *BinOp:
		return e.Type
	case *Lambda:
		return e.Type
	case *Let:
		return e.Type
	case *LetWith:
		return e.Type
	case *If:
		return e.Type
	case *DoLoop:
		return e.Type
	case *ArrayLit:
		return e.Type
	case *Index:
		return e.Type
	case *RecordLit:
		return e.Type
	case *Project:
		return e.Type
	case *Ascript:
		return e.Type
	}
	return nil
}

// MapExpTypes rewrites every type annotation in the expression tree
// through f. The checker uses it to apply the final substitution, so
// the output AST carries no unresolved flexible variables.
func MapExpTypes(e Exp, f func(types.Type) types.Type) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *IntLit:
		e.Type = f(e.Type)
	case *FloatLit:
		e.Type = f(e.Type)
	case *BoolLit:
		e.Type = f(e.Type)
	case *Var:
		e.Type = f(e.Type)
	case *Apply:
		MapExpTypes(e.Fun, f)
		for _, a := range e.Args {
			MapExpTypes(a, f)
		}
		e.Type = f(e.Type)
	case *BinOp:
		MapExpTypes(e.Left, f)
		MapExpTypes(e.Right, f)
		e.Type = f(e.Type)
	case *Lambda:
		for _, p := range e.Params {
			MapPatternTypes(p, f)
		}
		MapExpTypes(e.Body, f)
		e.Type = f(e.Type)
	case *Let:
		MapPatternTypes(e.Pat, f)
		MapExpTypes(e.Value, f)
		MapExpTypes(e.Body, f)
		e.Type = f(e.Type)
	case *LetWith:
		for _, ix := range e.Indexes {
			MapExpTypes(ix, f)
		}
		MapExpTypes(e.Value, f)
		MapExpTypes(e.Body, f)
		e.Type = f(e.Type)
	case *If:
		MapExpTypes(e.Cond, f)
		MapExpTypes(e.Then, f)
		MapExpTypes(e.Else, f)
		e.Type = f(e.Type)
	case *DoLoop:
		MapPatternTypes(e.Pat, f)
		MapExpTypes(e.Init, f)
		switch form := e.Form.(type) {
		case *ForLoop:
			MapExpTypes(form.Bound, f)
		case *WhileLoop:
			MapExpTypes(form.Cond, f)
		}
		MapExpTypes(e.Body, f)
		e.Type = f(e.Type)
	case *ArrayLit:
		for _, el := range e.Elems {
			MapExpTypes(el, f)
		}
		e.Type = f(e.Type)
	case *Index:
		MapExpTypes(e.Array, f)
		for _, ix := range e.Indexes {
			MapExpTypes(ix, f)
		}
		e.Type = f(e.Type)
	case *RecordLit:
		for _, fld := range e.Fields {
			MapExpTypes(fld.Value, f)
		}
		e.Type = f(e.Type)
	case *Project:
		MapExpTypes(e.Rec, f)
		e.Type = f(e.Type)
	case *Ascript:
		MapExpTypes(e.Exp, f)
		e.Type = f(e.Type)
	}
}

// MapPatternTypes rewrites every type annotation in a pattern through f.
func MapPatternTypes(p Pattern, f func(types.Type) types.Type) {
	if p == nil {
		return
	}
	switch p := p.(type) {
	case *PatId:
		p.Type = f(p.Type)
	case *PatWildcard:
		p.Type = f(p.Type)
	case *PatRecord:
		for _, fld := range p.Fields {
			MapPatternTypes(fld.Pat, f)
		}
		p.Type = f(p.Type)
	case *PatAscript:
		MapPatternTypes(p.Pat, f)
		p.Type = f(p.Type)
	}
}

// PatternType returns the annotated type of a pattern.
func PatternType(p Pattern) types.Type {
	switch p := p.(type) {
	case *PatId:
		return p.Type
	case *PatWildcard:
		return p.Type
	case *PatRecord:
		return p.Type
	case *PatAscript:
		return p.Type
	}
	return nil
}
