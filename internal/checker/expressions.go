package checker

import (
	"strings"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// checkExp infers the type of one expression, filling its annotation
// slot and emitting occurrences for every name it touches.
func (c *Checker) checkExp(e ast.Exp) (types.Type, *diagnostics.Diagnostic) {
	switch e := e.(type) {
	case *ast.IntLit:
		t := c.newOverloadedVar(e.Loc, "num", types.IntKinds)
		e.Type = t
		return t, nil

	case *ast.FloatLit:
		t := c.newOverloadedVar(e.Loc, "dec", types.FloatKinds)
		e.Type = t
		return t, nil

	case *ast.BoolLit:
		e.Type = types.Prim{K: types.Bool}
		return e.Type, nil

	case *ast.Var:
		return c.checkVar(e)

	case *ast.Apply:
		var funT types.Type
		var err *diagnostics.Diagnostic
		// A bare variable callee resolves directly, giving full
		// instantiation info; anything else is generic application.
		if v, ok := e.Fun.(*ast.Var); ok {
			funT, err = c.checkVar(v)
		} else {
			funT, err = c.checkExp(e.Fun)
		}
		if err != nil {
			return nil, err
		}
		t, err := c.applyArgs(e.Loc, funT, e.Args)
		if err != nil {
			return nil, err
		}
		if perr := c.checkPermutation(e); perr != nil {
			return nil, perr
		}
		e.Type = t
		return t, nil

	case *ast.BinOp:
		opVar := &ast.Var{Names: []string{e.Op}, Loc: e.Loc}
		funT, err := c.checkVar(opVar)
		if err != nil {
			return nil, err
		}
		t, err := c.applyArgs(e.Loc, funT, []ast.Exp{e.Left, e.Right})
		if err != nil {
			return nil, err
		}
		e.Type = t
		return t, nil

	case *ast.Lambda:
		funT, _, err := c.checkFunction(e.Loc, nil, e.Params, e.RetDecl, e.Body, false)
		if err != nil {
			return nil, err
		}
		e.Type = funT
		return funT, nil

	case *ast.Let:
		return c.checkLet(e)

	case *ast.LetWith:
		return c.checkLetWith(e)

	case *ast.If:
		return c.checkIf(e)

	case *ast.DoLoop:
		return c.checkLoop(e)

	case *ast.ArrayLit:
		return c.checkArrayLit(e)

	case *ast.Index:
		return c.checkIndex(e)

	case *ast.RecordLit:
		fields := make(map[string]types.Type, len(e.Fields))
		for _, f := range e.Fields {
			if _, dup := fields[f.Name]; dup {
				return nil, diagnostics.NewError(diagnostics.ErrN003, f.Loc,
					"duplicate record field `%s`", f.Name)
			}
			ft, err := c.checkExp(f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = ft
		}
		e.Type = types.Record{Fields: fields}
		return e.Type, nil

	case *ast.Project:
		t, err := c.checkExp(e.Rec)
		if err != nil {
			return nil, err
		}
		rec, ok := c.cons.Normalize(t).(types.Record)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Loc,
				"cannot project field `%s` from non-record type `%s`", e.Field, c.cons.Normalize(t))
		}
		ft, ok := rec.Fields[e.Field]
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Loc,
				"type `%s` has no field `%s`", rec, e.Field)
		}
		e.Type = ft
		return ft, nil

	case *ast.Ascript:
		declared, err := c.checkTypeExp(e.Decl)
		if err != nil {
			return nil, err
		}
		t, err := c.checkExp(e.Exp)
		if err != nil {
			return nil, err
		}
		if err := c.unify(e.Loc, declared, t); err != nil {
			return nil, err
		}
		e.Type = c.cons.Normalize(declared)
		return e.Type, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrS004, e.Pos(), "unsupported expression form")
}

// checkVar resolves a possibly-qualified variable reference, peeling
// unresolvable trailing segments as record-field projections, and
// emits an observation of the root.
func (c *Checker) checkVar(e *ast.Var) (types.Type, *diagnostics.Diagnostic) {
	root, binding, projections, ok := c.scope.ResolveTerm(e.Names)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrN001, e.Loc,
			"unknown variable `%s`", strings.Join(e.Names, "."))
	}

	var t types.Type
	observed := false
	switch b := binding.(type) {
	case BoundValue:
		t = c.instantiate(b.TypeParams, b.Type)
		observed = true
	case OverloadedBuiltin:
		v := c.newOverloadedVar(e.Loc, "op", b.Kinds)
		var res types.Type = v
		if b.Compare {
			res = types.Prim{K: types.Bool}
		}
		t = types.Arrow{Param: v, Result: types.Arrow{Param: v, Result: res, Als: types.Aliases{}}, Als: types.Aliases{}}
	case EqualityBuiltin:
		vn := c.src.Fresh("eq")
		c.cons[vn] = Equality{Loc: e.Loc}
		v := types.Var{Name: vn}
		bool_ := types.Prim{K: types.Bool}
		t = types.Arrow{Param: v, Result: types.Arrow{Param: v, Result: bool_, Als: types.Aliases{}}, Als: types.Aliases{}}
	case OpaqueBuiltin:
		t = c.instantiate(b.TypeParams, b.Type)
	case Consumed:
		return nil, diagnostics.NewError(diagnostics.ErrU001, e.Loc,
			"`%s` used after being consumed at %s", root.Base, b.Loc)
	default:
		return nil, diagnostics.NewError(diagnostics.ErrN001, e.Loc,
			"`%s` is not a value", strings.Join(e.Names, "."))
	}

	t = c.cons.Normalize(t)
	for _, field := range projections {
		rec, ok := t.(types.Record)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Loc,
				"cannot project field `%s` from non-record type `%s`", field, t)
		}
		ft, ok := rec.Fields[field]
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Loc,
				"type `%s` has no field `%s`", rec, field)
		}
		t = ft
	}

	e.Root = root
	e.Projections = projections
	e.Type = t
	if observed {
		c.observe(e.Loc, root, t)
	}
	return t, nil
}

// checkPermutation validates the dimension permutation of a rearrange
// application. The permutation must be a literal so the result's rank
// is known statically.
func (c *Checker) checkPermutation(e *ast.Apply) *diagnostics.Diagnostic {
	v, ok := e.Fun.(*ast.Var)
	if !ok || len(v.Names) != 1 || v.Names[0] != "rearrange" || len(e.Args) != 2 {
		return nil
	}
	_, binding, _, ok := c.scope.ResolveTerm(v.Names)
	if !ok {
		return nil
	}
	if _, intrinsic := binding.(OpaqueBuiltin); !intrinsic {
		return nil
	}
	lit, ok := e.Args[0].(*ast.ArrayLit)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrS005, e.Args[0].Pos(),
			"rearrange needs a literal dimension permutation")
	}
	perm := make([]int, len(lit.Elems))
	for i, el := range lit.Elems {
		n, ok := el.(*ast.IntLit)
		if !ok {
			return diagnostics.NewError(diagnostics.ErrS005, el.Pos(),
				"rearrange needs a literal dimension permutation")
		}
		perm[i] = int(n.Value)
	}
	seen := make([]bool, len(perm))
	for _, d := range perm {
		if d < 0 || d >= len(perm) || seen[d] {
			return diagnostics.NewError(diagnostics.ErrS005, lit.Loc,
				"`%v` is not a permutation of the dimensions 0..%d", perm, len(perm)-1)
		}
		seen[d] = true
	}
	arrT, isArr := c.cons.Normalize(ast.TypeOf(e.Args[1])).(types.Array)
	if isArr {
		if _, flexElem := arrT.Elem.(types.Var); !flexElem && len(perm) != arrT.Rank {
			return diagnostics.NewError(diagnostics.ErrS005, lit.Loc,
				"permutation names %d dimensions but the array has rank %d", len(perm), arrT.Rank)
		}
	}
	return nil
}

// checkArg checks an expression with its occurrences held aside, so
// the caller controls its composition with siblings.
func (c *Checker) checkArg(arg ast.Exp) (Occurrences, types.Type, *diagnostics.Diagnostic) {
	var t types.Type
	occs, err := c.collect(func() *diagnostics.Diagnostic {
		var e2 *diagnostics.Diagnostic
		t, e2 = c.checkExp(arg)
		return e2
	})
	return occs, t, err
}

// applyArgs applies a function type to argument expressions one at a
// time. Arguments to consuming parameters must themselves be unique,
// and the whole argument list is one consumption boundary: conflicts
// between arguments are checked before the occurrences propagate.
func (c *Checker) applyArgs(pos token.Pos, funT types.Type, args []ast.Exp) (types.Type, *diagnostics.Diagnostic) {
	t := c.cons.Normalize(funT)
	var argOccs Occurrences
	for _, arg := range args {
		arrow, ok := t.(types.Arrow)
		if !ok {
			v, isVar := t.(types.Var)
			if !isVar || c.cons.IsRigid(v.Name) {
				return nil, diagnostics.NewError(diagnostics.ErrS001, pos,
					"cannot apply value of type `%s` to %d arguments", funT, len(args))
			}
			// Applying forces an arrow shape; linking fails here when
			// the variable may not hold a function.
			fresh := types.Arrow{Param: c.newLiftedVar("p"), Result: c.newLiftedVar("r"), Als: types.Aliases{}}
			if err := c.link(arg.Pos(), v.Name, fresh); err != nil {
				return nil, err
			}
			arrow = fresh
		}

		occs, argT, err := c.checkArg(arg)
		if err != nil {
			return nil, err
		}
		if uerr := c.unify(arg.Pos(), types.ToObservable(arrow.Param), types.ToObservable(argT)); uerr != nil {
			return nil, uerr
		}
		param := c.cons.Normalize(arrow.Param)
		argT = c.cons.Normalize(argT)
		if types.DietOf(param) == types.ConsumeArg {
			if !types.IsUnique(argT) {
				return nil, diagnostics.NewError(diagnostics.ErrU003, arg.Pos(),
					"consuming parameter of type `%s` passed non-unique argument of type `%s`", param, argT)
			}
			consumed := types.AliasesOf(argT)
			// The argument's own read of the consumed value is
			// subsumed by the consumption.
			occs = seqOccurrences(occs, Occurrences{consumption(consumed, arg.Pos())})
			t = types.MaskAliases(c.cons.Normalize(arrow.Result), consumed)
		} else {
			t = c.cons.Normalize(arrow.Result)
		}
		argOccs = append(argOccs, occs...)
	}
	if d := checkOccurrences(argOccs); d != nil {
		return nil, d
	}
	c.occur(argOccs...)
	return t, nil
}

func (c *Checker) checkArrayLit(e *ast.ArrayLit) (types.Type, *diagnostics.Diagnostic) {
	if len(e.Elems) == 0 {
		elem := c.newTypeVar("t")
		e.Type = types.MkArray(elem, 1, false, types.Aliases{})
		return e.Type, nil
	}
	first, err := c.checkExp(e.Elems[0])
	if err != nil {
		return nil, err
	}
	for _, el := range e.Elems[1:] {
		t, err := c.checkExp(el)
		if err != nil {
			return nil, err
		}
		if uerr := c.unify(el.Pos(), types.ToObservable(first), types.ToObservable(t)); uerr != nil {
			return nil, uerr
		}
	}
	elemT := c.cons.Normalize(first)
	if _, isArrow := elemT.(types.Arrow); isArrow {
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Loc,
			"arrays of functions are not permitted")
	}
	// An unresolved element variable must stay storable in arrays.
	if v, ok := elemT.(types.Var); ok {
		if nc, isNC := c.cons[v.Name].(NoConstraint); isNC && nc.Lifted {
			c.cons[v.Name] = NoConstraint{}
		}
	}
	// A literal copies its elements: the result is fresh storage.
	elemT = types.SetAliases(types.ToObservable(elemT), types.Aliases{})
	e.Type = types.MkArray(elemT, 1, false, types.Aliases{})
	return e.Type, nil
}

func (c *Checker) checkIndex(e *ast.Index) (types.Type, *diagnostics.Diagnostic) {
	t, err := c.checkExp(e.Array)
	if err != nil {
		return nil, err
	}
	arr, ok := c.cons.Normalize(t).(types.Array)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Loc,
			"cannot index value of type `%s`", c.cons.Normalize(t))
	}
	if len(e.Indexes) > arr.Rank {
		return nil, diagnostics.NewError(diagnostics.ErrS003, e.Loc,
			"cannot index %d dimensions of a rank-%d array", len(e.Indexes), arr.Rank)
	}
	i64 := types.Prim{K: types.I64}
	for _, ix := range e.Indexes {
		it, err := c.checkExp(ix)
		if err != nil {
			return nil, err
		}
		if uerr := c.unify(ix.Pos(), i64, it); uerr != nil {
			return nil, uerr
		}
	}
	// Reading never transfers uniqueness; a partial index still
	// aliases the source array.
	e.Type = types.ToObservable(arr.Peel(len(e.Indexes)))
	return e.Type, nil
}

func (c *Checker) checkIf(e *ast.If) (types.Type, *diagnostics.Diagnostic) {
	condOccs, condT, err := c.checkArg(e.Cond)
	if err != nil {
		return nil, err
	}
	if uerr := c.unify(e.Cond.Pos(), types.Prim{K: types.Bool}, condT); uerr != nil {
		return nil, uerr
	}

	// Branches are independent: each gets its own scope copy and its
	// own occurrence stream. Constraint mutations persist from one to
	// the other, as in any left-to-right sibling order.
	var thenT, elseT types.Type
	thenOccs, err := c.collect(func() *diagnostics.Diagnostic {
		return c.inScope(c.scope.Copy(), func() *diagnostics.Diagnostic {
			var e2 *diagnostics.Diagnostic
			thenT, e2 = c.checkExp(e.Then)
			return e2
		})
	})
	if err != nil {
		return nil, err
	}
	elseOccs, err := c.collect(func() *diagnostics.Diagnostic {
		return c.inScope(c.scope.Copy(), func() *diagnostics.Diagnostic {
			var e2 *diagnostics.Diagnostic
			elseT, e2 = c.checkExp(e.Else)
			return e2
		})
	})
	if err != nil {
		return nil, err
	}

	if uerr := c.unify(e.Loc, types.ToObservable(thenT), types.ToObservable(elseT)); uerr != nil {
		return nil, uerr
	}

	thenT = c.cons.Normalize(thenT)
	elseT = c.cons.Normalize(elseT)
	t := thenT
	if !(types.IsUnique(thenT) && types.IsUnique(elseT)) {
		t = types.ToObservable(t)
	}
	// The result may alias either branch, minus anything a branch
	// consumed.
	consumed := allConsumed(thenOccs).Union(allConsumed(elseOccs))
	als := types.AliasesOf(thenT).Union(types.AliasesOf(elseT)).Without(consumed)
	t = types.SetAliases(t, als)

	c.occur(seqOccurrences(condOccs, altOccurrences(thenOccs, elseOccs))...)
	e.Type = t
	return t, nil
}

func (c *Checker) checkLet(e *ast.Let) (types.Type, *diagnostics.Diagnostic) {
	snapshot := c.src.Peek()
	valOccs, valT, err := c.checkArg(e.Value)
	if err != nil {
		return nil, err
	}

	var t types.Type
	err = c.inScope(c.scope.Copy(), func() *diagnostics.Diagnostic {
		bound, berr := c.bindPattern(e.Pat, valT)
		if berr != nil {
			return berr
		}
		// A named lambda binding is a local function definition:
		// close over its signature.
		if id, isID := e.Pat.(*ast.PatId); isID {
			if _, isLam := e.Value.(*ast.Lambda); isLam {
				params, cerr := c.closeOver(e.Loc, snapshot, valT)
				if cerr != nil {
					return cerr
				}
				if len(params) > 0 {
					e.BoundParams = params
					c.scope.BindValue(id.VName, BoundValue{TypeParams: params, Type: c.cons.Normalize(id.Type)})
				}
			}
		}
		bodyOccs, ierr := c.collect(func() *diagnostics.Diagnostic {
			return c.bindingBlock(bound, func() *diagnostics.Diagnostic {
				var e2 *diagnostics.Diagnostic
				t, e2 = c.checkExp(e.Body)
				return e2
			})
		})
		if ierr != nil {
			return ierr
		}
		c.occur(seqOccurrences(valOccs, bodyOccs)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.Type = t
	return t, nil
}

func (c *Checker) checkLetWith(e *ast.LetWith) (types.Type, *diagnostics.Diagnostic) {
	root, binding, rest, ok := c.scope.ResolveTerm([]string{e.Src})
	if !ok || len(rest) > 0 {
		return nil, diagnostics.NewError(diagnostics.ErrN001, e.Loc,
			"unknown variable `%s`", e.Src)
	}
	if tomb, isTomb := binding.(Consumed); isTomb {
		return nil, diagnostics.NewError(diagnostics.ErrU001, e.Loc,
			"`%s` used after being consumed at %s", e.Src, tomb.Loc)
	}
	bv, isBound := binding.(BoundValue)
	if !isBound || len(bv.TypeParams) > 0 {
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Loc,
			"`%s` cannot be updated in place", e.Src)
	}
	srcT := c.cons.Normalize(bv.Type)
	arr, isArr := srcT.(types.Array)
	if !isArr {
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Loc,
			"in-place update of non-array value of type `%s`", srcT)
	}
	if !arr.Unique {
		return nil, diagnostics.NewError(diagnostics.ErrU003, e.Loc,
			"in-place update of `%s`, which is not unique (type `%s`)", e.Src, srcT)
	}
	if len(e.Indexes) > arr.Rank {
		return nil, diagnostics.NewError(diagnostics.ErrS003, e.Loc,
			"cannot index %d dimensions of a rank-%d array", len(e.Indexes), arr.Rank)
	}
	i64 := types.Prim{K: types.I64}
	var preOccs Occurrences
	for _, ix := range e.Indexes {
		ixOccs, it, err := c.checkArg(ix)
		if err != nil {
			return nil, err
		}
		if uerr := c.unify(ix.Pos(), i64, it); uerr != nil {
			return nil, uerr
		}
		preOccs = append(preOccs, ixOccs...)
	}

	valOccs, valT, err := c.checkArg(e.Value)
	if err != nil {
		return nil, err
	}
	preOccs = append(preOccs, valOccs...)
	elemT := arr.Peel(len(e.Indexes))
	if uerr := c.unify(e.Value.Pos(), types.ToObservable(elemT), types.ToObservable(valT)); uerr != nil {
		return nil, uerr
	}
	srcAls := types.AliasesOf(srcT).Copy()
	srcAls[root] = struct{}{}
	if types.AliasesOf(c.cons.Normalize(valT)).Intersects(srcAls) {
		return nil, diagnostics.NewError(diagnostics.ErrU004, e.Value.Pos(),
			"value written to `%s` must not alias `%s` itself", e.Dest, e.Src)
	}

	// The reads feeding the update are subsumed by the consumption of
	// the source.
	c.occur(seqOccurrences(preOccs, Occurrences{consumption(srcAls, e.Loc)})...)

	child := c.scope.Copy()
	child.Values[root] = Consumed{Loc: e.Loc}
	destVN := c.src.Fresh(e.Dest)
	destT := types.Array{Elem: arr.Elem, Rank: arr.Rank, Unique: true, Als: types.NewAliases(destVN)}
	child.BindValue(destVN, BoundValue{Type: destT})
	e.SrcVName = root
	e.DestVName = destVN

	var t types.Type
	err2 := c.inScope(child, func() *diagnostics.Diagnostic {
		return c.bindingBlock([]boundName{{V: destVN, Loc: e.Loc}}, func() *diagnostics.Diagnostic {
			var e2 *diagnostics.Diagnostic
			t, e2 = c.checkExp(e.Body)
			return e2
		})
	})
	if err2 != nil {
		return nil, err2
	}
	e.Type = t
	return t, nil
}
