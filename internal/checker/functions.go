package checker

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// checkFunction checks a function form, shared by lambdas and
// top-level definitions. Declared type parameters become rigid
// variables, each value parameter binds under a fresh flexible
// variable that ascriptions and the body refine, and the body checks
// inside a consumption boundary. When generalize is set the finished
// signature is closed over, promoting leftover flexible variables to
// type parameters.
func (c *Checker) checkFunction(pos token.Pos, tparams []ast.TypeParamDec, params []ast.Pattern, retDecl ast.TypeExp, body ast.Exp, generalize bool) (types.Type, []types.TypeParam, *diagnostics.Diagnostic) {
	snapshot := c.src.Peek()
	var funT types.Type
	var all []types.TypeParam

	err := c.inScope(c.scope.Copy(), func() *diagnostics.Diagnostic {
		declared := make([]types.TypeParam, 0, len(tparams))
		for _, tp := range tparams {
			vn := c.src.Fresh(tp.Name)
			c.cons[vn] = ParamType{Lifted: tp.Lifted, Loc: tp.Loc}
			c.scope.BindType(vn, TypeBinding{Type: types.Var{Name: vn}})
			declared = append(declared, types.TypeParam{Name: vn, Lifted: tp.Lifted})
		}

		var bound []boundName
		paramTs := make([]types.Type, 0, len(params))
		for _, p := range params {
			// A parameter may itself be a function, so its variable
			// starts lifted; array-element positions demote it.
			pv := c.newLiftedVar("t")
			b, berr := c.bindPattern(p, pv)
			if berr != nil {
				return berr
			}
			bound = append(bound, b...)
			paramTs = append(paramTs, types.Type(pv))
		}

		var retT types.Type
		if retDecl != nil {
			var terr *diagnostics.Diagnostic
			retT, terr = c.checkTypeExp(retDecl)
			if terr != nil {
				return terr
			}
		}

		var bodyT types.Type
		berr := c.bindingBlock(bound, func() *diagnostics.Diagnostic {
			var e2 *diagnostics.Diagnostic
			bodyT, e2 = c.checkExp(body)
			if e2 != nil {
				return e2
			}
			if retT != nil {
				return c.unify(body.Pos(), types.ToObservable(retT), types.ToObservable(bodyT))
			}
			return nil
		})
		if berr != nil {
			return berr
		}

		result := c.cons.Normalize(bodyT)
		if retT != nil {
			retT = c.cons.Normalize(retT)
			if types.IsUnique(retT) && !types.IsUnique(result) && len(types.AliasesOf(result)) > 0 {
				return diagnostics.NewError(diagnostics.ErrU005, body.Pos(),
					"result declared unique but the body yields `%s`, which aliases existing storage", result)
			}
			result = types.SetAliases(retT, types.AliasesOf(result))
		}

		if aerr := c.checkReturnAliasing(body.Pos(), bound, result); aerr != nil {
			return aerr
		}

		// Parameter names go out of scope with the function, so the
		// published signature carries no binder aliases.
		boundSet := types.Aliases{}
		for _, b := range bound {
			boundSet[b.V] = struct{}{}
		}
		result = types.SetAliases(result, types.AliasesOf(result).Without(boundSet))

		funT = result
		for i := len(paramTs) - 1; i >= 0; i-- {
			pt := types.SetAliases(c.cons.Normalize(paramTs[i]), types.Aliases{})
			funT = types.Arrow{Param: pt, Result: funT, Als: types.Aliases{}}
		}
		if generalize {
			gen, gerr := c.closeOver(pos, snapshot, funT)
			if gerr != nil {
				return gerr
			}
			funT = c.cons.Normalize(funT)
			for _, tp := range declared {
				if !types.Occurs(tp.Name, funT) {
					return diagnostics.NewError(diagnostics.ErrT012, tparamLoc(tparams, tp.Name.Base, pos),
						"type parameter `%s` does not occur in the definition's type", tp.Name.Base)
				}
			}
			all = append(declared, gen...)
		} else {
			all = declared
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return funT, all, nil
}

// checkReturnAliasing enforces the return-position uniqueness rules:
// a unique result component must not alias a non-consumed parameter,
// and no unique result component may share aliases with a sibling
// component.
func (c *Checker) checkReturnAliasing(pos token.Pos, bound []boundName, result types.Type) *diagnostics.Diagnostic {
	nonConsumed := types.Aliases{}
	for _, b := range bound {
		bv, ok := c.scope.Values[b.V].(BoundValue)
		if !ok {
			continue
		}
		if !types.IsUnique(c.cons.Normalize(bv.Type)) {
			nonConsumed[b.V] = struct{}{}
		}
	}
	comps := resultComponents(result)
	for i, ci := range comps {
		if !types.IsUnique(ci) {
			continue
		}
		als := types.AliasesOf(ci)
		if als.Intersects(nonConsumed) {
			return diagnostics.NewError(diagnostics.ErrU005, pos,
				"unique result of type `%s` aliases a parameter that is not consumed", ci)
		}
		for j, cj := range comps {
			if i != j && als.Intersects(types.AliasesOf(cj)) {
				return diagnostics.NewError(diagnostics.ErrU006, pos,
					"unique result of type `%s` aliases another result component", ci)
			}
		}
	}
	return nil
}

// resultComponents splits a record result into its fields; any other
// type is a single component.
func resultComponents(t types.Type) []types.Type {
	if rec, ok := t.(types.Record); ok {
		comps := make([]types.Type, 0, len(rec.Fields))
		for _, name := range rec.FieldNames() {
			comps = append(comps, rec.Fields[name])
		}
		return comps
	}
	return []types.Type{t}
}

func tparamLoc(tparams []ast.TypeParamDec, base string, fallback token.Pos) token.Pos {
	for _, tp := range tparams {
		if tp.Name == base {
			return tp.Loc
		}
	}
	return fallback
}
