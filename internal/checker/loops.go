package checker

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// checkLoop checks a do-loop by iterating to a fixpoint on the merge
// pattern's uniqueness annotations. The body is re-checked with the
// pattern rebound at the refined type until the set of consumed merge
// components stops growing, which takes at most one pass per pattern
// leaf plus the final confirming pass.
func (c *Checker) checkLoop(e *ast.DoLoop) (types.Type, *diagnostics.Diagnostic) {
	initOccs, initT, err := c.checkArg(e.Init)
	if err != nil {
		return nil, err
	}
	initT = c.cons.Normalize(initT)

	// Merge binders keep the initial value's uniqueness but start
	// alias-free: inside the body they stand for loop-local storage,
	// and the initial value itself is consumed once at loop level.
	mergeT := types.SetAliases(initT, types.Aliases{})
	nLeaves := countPatternLeaves(e.Pat)
	consumed := make([]bool, nLeaves)

	// A for-loop bound belongs to the enclosing iteration context, not
	// to any single pass over the body.
	if f, ok := e.Form.(*ast.ForLoop); ok {
		bt, err := c.checkExp(f.Bound)
		if err != nil {
			return nil, err
		}
		if uerr := c.unify(f.Bound.Pos(), types.Prim{K: types.I64}, bt); uerr != nil {
			return nil, uerr
		}
	}

	var resultT types.Type
	var finalOccs Occurrences
	var mergeSet types.Aliases

	converged := false
	for pass := 0; pass <= nLeaves+1; pass++ {
		var bound []boundName
		var bodyT types.Type
		var bodyOccs Occurrences

		serr := c.inScope(c.scope.Copy(), func() *diagnostics.Diagnostic {
			var berr *diagnostics.Diagnostic
			bound, berr = c.bindPattern(e.Pat, mergeT)
			if berr != nil {
				return berr
			}
			if f, ok := e.Form.(*ast.ForLoop); ok {
				vn := c.src.Fresh(f.Var)
				c.scope.BindValue(vn, BoundValue{Type: types.Prim{K: types.I64}})
				f.VarVName = vn
				bound = append(bound, boundName{V: vn, Loc: f.Loc})
			}
			var cerr *diagnostics.Diagnostic
			bodyOccs, cerr = c.collect(func() *diagnostics.Diagnostic {
				if f, ok := e.Form.(*ast.WhileLoop); ok {
					ct, werr := c.checkExp(f.Cond)
					if werr != nil {
						return werr
					}
					if uerr := c.unify(f.Cond.Pos(), types.Prim{K: types.Bool}, ct); uerr != nil {
						return uerr
					}
				}
				var e2 *diagnostics.Diagnostic
				bodyT, e2 = c.checkExp(e.Body)
				return e2
			})
			return cerr
		})
		if serr != nil {
			return nil, serr
		}

		if uerr := c.unify(e.Loc, types.ToObservable(mergeT), types.ToObservable(bodyT)); uerr != nil {
			return nil, uerr
		}
		mergeT = c.cons.Normalize(mergeT)
		bodyT = c.cons.Normalize(bodyT)

		mergeSet = types.Aliases{}
		for _, b := range bound {
			mergeSet[b.V] = struct{}{}
		}

		// Grow the consumed set from this pass's body.
		consumedNow := allConsumed(bodyOccs)
		leaves := patternLeafNames(e.Pat)
		changed := false
		for i, vn := range leaves {
			if consumed[i] {
				continue
			}
			if vn != nil && consumedNow.Contains(*vn) {
				consumed[i] = true
				changed = true
			}
		}

		if derr := c.checkLoopEscape(e.Loc, e.Pat, mergeT, bodyT, consumed, mergeSet); derr != nil {
			return nil, derr
		}

		next := uniquifyMerge(e.Pat, mergeT, consumed)
		if !changed && types.Equal(next, mergeT) {
			// Fixpoint: validate and keep this pass's occurrences.
			if derr := checkOccurrences(bodyOccs); derr != nil {
				return nil, derr
			}
			for _, o := range bodyOccs {
				finalOccs = append(finalOccs, Occurrence{
					Observed: o.Observed.Without(mergeSet),
					Consumed: o.Consumed.Without(mergeSet),
					Loc:      o.Loc,
				})
			}
			resultT = next
			converged = true
			break
		}
		mergeT = next
	}
	if !converged {
		return nil, diagnostics.NewError(diagnostics.ErrS004, e.Loc,
			"loop merge pattern failed to reach a fixpoint")
	}

	combined := seqOccurrences(initOccs, finalOccs)

	// A unique merge value means the loop takes over its initial
	// value's storage, consuming it outright.
	if anyConsumed(consumed) || types.IsUnique(resultT) {
		initAls := types.AliasesOf(initT)
		if !types.IsUnique(initT) && len(initAls) > 0 {
			return nil, diagnostics.NewError(diagnostics.ErrU003, e.Init.Pos(),
				"loop consumes its merge value, so the initial value of type `%s` must be unique", initT)
		}
		combined = seqOccurrences(combined, Occurrences{consumption(initAls, e.Loc)})
	}
	c.occur(combined...)

	// The result is fresh storage as far as the enclosing context is
	// concerned.
	resultT = types.SetAliases(resultT, types.Aliases{})
	e.Type = resultT
	return resultT, nil
}

// checkLoopEscape rejects unique or consumed merge components whose
// returned value aliases storage from outside the loop, or another
// merge component's returned value.
func (c *Checker) checkLoopEscape(pos token.Pos, pat ast.Pattern, mergeT, bodyT types.Type, consumed []bool, mergeSet types.Aliases) *diagnostics.Diagnostic {
	comps := mergeComponents(pat, bodyT)
	mergeComps := mergeComponents(pat, mergeT)
	for i, ct := range comps {
		if ct == nil {
			continue
		}
		tracked := i < len(consumed) && consumed[i]
		if !tracked && i < len(mergeComps) && mergeComps[i] != nil && types.IsUnique(mergeComps[i]) {
			tracked = true
		}
		if !tracked {
			continue
		}
		als := types.AliasesOf(ct)
		for vn := range als {
			if !mergeSet.Contains(vn) {
				return diagnostics.NewError(diagnostics.ErrU007, pos,
					"consumed merge component of type `%s` aliases `%s`, which is bound outside the loop", ct, vn.Base)
			}
		}
		for j, other := range comps {
			if i != j && other != nil && als.Intersects(types.AliasesOf(other)) {
				return diagnostics.NewError(diagnostics.ErrU006, pos,
					"consumed merge component of type `%s` aliases another merge component", ct)
			}
		}
	}
	return nil
}

// uniquifyMerge rebuilds the merge type with consumed leaf positions
// made unique.
func uniquifyMerge(pat ast.Pattern, t types.Type, consumed []bool) types.Type {
	i := 0
	return uniquifyWalk(pat, t, consumed, &i)
}

func uniquifyWalk(pat ast.Pattern, t types.Type, consumed []bool, i *int) types.Type {
	switch p := pat.(type) {
	case *ast.PatAscript:
		return uniquifyWalk(p.Pat, t, consumed, i)
	case *ast.PatRecord:
		rec, ok := t.(types.Record)
		if !ok {
			*i += countPatternLeaves(pat)
			return t
		}
		fields := make(map[string]types.Type, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[k] = v
		}
		for _, f := range p.Fields {
			if ft, ok := fields[f.Name]; ok {
				fields[f.Name] = uniquifyWalk(f.Pat, ft, consumed, i)
			}
		}
		return types.Record{Fields: fields}
	default:
		idx := *i
		*i++
		if idx < len(consumed) && consumed[idx] {
			return types.ToUnique(t)
		}
		return t
	}
}

// mergeComponents pairs each pattern leaf with the corresponding
// component of the body's result type, in pattern order.
func mergeComponents(pat ast.Pattern, t types.Type) []types.Type {
	var out []types.Type
	mergeWalk(pat, t, &out)
	return out
}

func mergeWalk(pat ast.Pattern, t types.Type, out *[]types.Type) {
	switch p := pat.(type) {
	case *ast.PatAscript:
		mergeWalk(p.Pat, t, out)
	case *ast.PatRecord:
		rec, ok := t.(types.Record)
		if !ok {
			for i := 0; i < countPatternLeaves(pat); i++ {
				*out = append(*out, nil)
			}
			return
		}
		for _, f := range p.Fields {
			mergeWalk(f.Pat, rec.Fields[f.Name], out)
		}
	default:
		*out = append(*out, t)
	}
}

// patternLeafNames lists the bound name of each pattern leaf in order,
// nil for wildcards. Valid only after bindPattern has run.
func patternLeafNames(pat ast.Pattern) []*names.VName {
	var out []*names.VName
	var walk func(p ast.Pattern)
	walk = func(p ast.Pattern) {
		switch p := p.(type) {
		case *ast.PatId:
			vn := p.VName
			out = append(out, &vn)
		case *ast.PatWildcard:
			out = append(out, nil)
		case *ast.PatRecord:
			for _, f := range p.Fields {
				walk(f.Pat)
			}
		case *ast.PatAscript:
			walk(p.Pat)
		}
	}
	walk(pat)
	return out
}

func countPatternLeaves(pat ast.Pattern) int {
	return len(patternLeafNames(pat))
}

func anyConsumed(consumed []bool) bool {
	for _, b := range consumed {
		if b {
			return true
		}
	}
	return false
}
