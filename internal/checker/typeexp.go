package checker

import (
	"strings"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/types"
)

// checkTypeExp elaborates a syntactic type into the structural grammar,
// resolving type names through the current scope.
func (c *Checker) checkTypeExp(te ast.TypeExp) (types.Type, *diagnostics.Diagnostic) {
	switch te := te.(type) {
	case *ast.TEPrim:
		return types.Prim{K: te.K}, nil

	case *ast.TEVar:
		v, b, ok := c.scope.ResolveType(te.Names)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrN002, te.Loc,
				"unknown type `%s`", strings.Join(te.Names, "."))
		}
		if len(b.Params) > 0 {
			return nil, diagnostics.NewError(diagnostics.ErrT004, te.Loc,
				"type `%s` expects %d arguments, got none", v.Base, len(b.Params))
		}
		return b.Type, nil

	case *ast.TEArray:
		elem, err := c.checkTypeExp(te.Elem)
		if err != nil {
			return nil, err
		}
		if _, ok := elem.(types.Arrow); ok {
			return nil, diagnostics.NewError(diagnostics.ErrT001, te.Loc,
				"arrays of functions are not permitted")
		}
		return types.MkArray(elem, te.Rank, te.Unique, types.Aliases{}), nil

	case *ast.TERecord:
		fields := make(map[string]types.Type, len(te.Fields))
		for _, f := range te.Fields {
			if _, dup := fields[f.Name]; dup {
				return nil, diagnostics.NewError(diagnostics.ErrN003, te.Loc,
					"duplicate record field `%s`", f.Name)
			}
			ft, err := c.checkTypeExp(f.Type)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = ft
		}
		return types.Record{Fields: fields}, nil

	case *ast.TEArrow:
		param, err := c.checkTypeExp(te.Param)
		if err != nil {
			return nil, err
		}
		result, err := c.checkTypeExp(te.Result)
		if err != nil {
			return nil, err
		}
		return types.Arrow{Param: param, Result: result, Als: types.Aliases{}}, nil

	case *ast.TEApp:
		v, b, ok := c.scope.ResolveType(te.Head)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrN002, te.Loc,
				"unknown type `%s`", strings.Join(te.Head, "."))
		}
		args := make([]types.Type, len(te.Args))
		for i, a := range te.Args {
			at, err := c.checkTypeExp(a)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		// A declared type parameter in head position stays abstract
		// and unifies only with an application of the same head; an
		// abbreviation must match its parameter count and expands.
		if tv, ok := b.Type.(types.Var); ok && tv.Name == v {
			return types.App{Head: v, Args: args}, nil
		}
		if len(b.Params) != len(te.Args) {
			return nil, diagnostics.NewError(diagnostics.ErrT004, te.Loc,
				"type `%s` expects %d arguments, got %d", v.Base, len(b.Params), len(te.Args))
		}
		s := make(map[names.VName]types.Type, len(b.Params))
		for i, p := range b.Params {
			s[p.Name] = args[i]
		}
		return types.Substitute(b.Type, s), nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrN002, te.Pos(), "unsupported type expression")
}
