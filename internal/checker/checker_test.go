package checker_test

import (
	"testing"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/checker"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

func at(l int) token.Pos { return token.Pos{File: "main.vex", Line: l, Column: 1} }

func intLit(l int, v int64) ast.Exp { return &ast.IntLit{Value: v, Loc: at(l)} }

func boolLit(l int, v bool) ast.Exp { return &ast.BoolLit{Value: v, Loc: at(l)} }

func varE(l int, names ...string) ast.Exp {
	return &ast.Var{Names: names, Loc: at(l)}
}

func apply(l int, fun string, args ...ast.Exp) ast.Exp {
	return &ast.Apply{Fun: &ast.Var{Names: []string{fun}, Loc: at(l)}, Args: args, Loc: at(l)}
}

func param(name string, te ast.TypeExp) ast.Pattern {
	return &ast.PatAscript{
		Pat:  &ast.PatId{Name: name, Loc: at(1)},
		Decl: te,
		Loc:  at(1),
	}
}

func tePrim(k types.PrimKind) ast.TypeExp { return &ast.TEPrim{K: k, Loc: at(1)} }

func teArr(elem ast.TypeExp, rank int, unique bool) ast.TypeExp {
	return &ast.TEArray{Elem: elem, Rank: rank, Unique: unique, Loc: at(1)}
}

func def(name string, params []ast.Pattern, ret ast.TypeExp, body ast.Exp) *ast.ValDec {
	return &ast.ValDec{Name: name, Params: params, RetDecl: ret, Body: body, Loc: at(1)}
}

func check(t *testing.T, decs ...*ast.ValDec) []*diagnostics.Diagnostic {
	t.Helper()
	return checker.CheckProgram(&ast.Program{File: "main.vex", Decs: decs}, nil, nil)
}

func errorsOf(diags []*diagnostics.Diagnostic) []*diagnostics.Diagnostic {
	var out []*diagnostics.Diagnostic
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func wantCode(t *testing.T, diags []*diagnostics.Diagnostic, code diagnostics.Code) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected a %s diagnostic, got %v", code, diags)
}

func wantClean(t *testing.T, diags []*diagnostics.Diagnostic) {
	t.Helper()
	if errs := errorsOf(diags); len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestIdentityGeneralizes(t *testing.T) {
	d := def("id", []ast.Pattern{&ast.PatId{Name: "x", Loc: at(1)}}, nil, varE(2, "x"))
	wantClean(t, check(t, d))

	if len(d.AllParams) != 1 {
		t.Fatalf("identity should generalize one type parameter, got %d", len(d.AllParams))
	}
	arrow, ok := d.Type.(types.Arrow)
	if !ok {
		t.Fatalf("expected an arrow type, got %s", d.Type)
	}
	if !types.Equal(types.ToObservable(arrow.Param), types.ToObservable(arrow.Result)) {
		t.Fatalf("identity's domain and codomain should match: %s", d.Type)
	}
}

func TestAscribedConstant(t *testing.T) {
	d := def("n", nil, tePrim(types.I32), intLit(1, 5))
	wantClean(t, check(t, d))
	if !types.Equal(d.Type, types.Prim{K: types.I32}) {
		t.Fatalf("want i32, got %s", d.Type)
	}
}

func TestUnresolvedLiteralIsAmbiguous(t *testing.T) {
	d := def("n", nil, nil, intLit(1, 5))
	wantCode(t, check(t, d), diagnostics.ErrT010)
}

func TestBranchTypeMismatch(t *testing.T) {
	body := &ast.If{
		Cond: varE(2, "b"),
		Then: intLit(3, 1),
		Else: boolLit(4, false),
		Loc:  at(2),
	}
	d := def("f", []ast.Pattern{param("b", tePrim(types.Bool))}, tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrT001)
}

func TestLaterDefinitionsSeeEarlierOnes(t *testing.T) {
	one := def("one", nil, tePrim(types.I32), intLit(1, 1))
	two := def("two", nil, tePrim(types.I32), apply(2, "+", varE(2, "one"), varE(2, "one")))
	wantClean(t, check(t, one, two))
}

func TestUnknownVariable(t *testing.T) {
	d := def("f", nil, tePrim(types.I32), varE(1, "nope"))
	wantCode(t, check(t, d), diagnostics.ErrN001)
}

func TestUnusedVariableWarning(t *testing.T) {
	d := def("f", []ast.Pattern{param("x", tePrim(types.I32))}, tePrim(types.I32), intLit(2, 0))
	diags := check(t, d)
	wantClean(t, diags)
	wantCode(t, diags, diagnostics.WarnW001)
}

func TestUnderscoreSilencesUnused(t *testing.T) {
	d := def("f", []ast.Pattern{param("_x", tePrim(types.I32))}, tePrim(types.I32), intLit(2, 0))
	if diags := check(t, d); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestUseAfterConsume(t *testing.T) {
	// let ys = update xs 0 1 in xs[0]
	body := &ast.Let{
		Pat:   &ast.PatId{Name: "ys", Loc: at(2)},
		Value: apply(2, "update", varE(2, "xs"), intLit(2, 0), intLit(2, 1)),
		Body:  &ast.Index{Array: varE(3, "xs"), Indexes: []ast.Exp{intLit(3, 0)}, Loc: at(3)},
		Loc:   at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrU001)
}

func TestConsumeThenBindIsLegal(t *testing.T) {
	// let ys = update xs 0 1 in ys[0]
	body := &ast.Let{
		Pat:   &ast.PatId{Name: "ys", Loc: at(2)},
		Value: apply(2, "update", varE(2, "xs"), intLit(2, 0), intLit(2, 1)),
		Body:  &ast.Index{Array: varE(3, "ys"), Indexes: []ast.Exp{intLit(3, 0)}, Loc: at(3)},
		Loc:   at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		tePrim(types.I32), body)
	wantClean(t, check(t, d))
}

func TestConsumingNonUniqueArgument(t *testing.T) {
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, false))},
		teArr(tePrim(types.I32), 1, false),
		apply(2, "update", varE(2, "xs"), intLit(2, 0), intLit(2, 1)))
	wantCode(t, check(t, d), diagnostics.ErrU003)
}

func TestBranchesConsumeIndependently(t *testing.T) {
	// if b then update xs 0 1 else xs
	body := &ast.If{
		Cond: varE(2, "b"),
		Then: apply(3, "update", varE(3, "xs"), intLit(3, 0), intLit(3, 1)),
		Else: varE(4, "xs"),
		Loc:  at(2),
	}
	d := def("f",
		[]ast.Pattern{
			param("b", tePrim(types.Bool)),
			param("xs", teArr(tePrim(types.I32), 1, true)),
		},
		teArr(tePrim(types.I32), 1, false), body)
	wantClean(t, check(t, d))
}

func TestSiblingArgumentsShareConsumptionBoundary(t *testing.T) {
	// {a: update xs 0 1, b: xs[0]} reads and consumes xs with no
	// ordering between the two.
	body := &ast.RecordLit{
		Fields: []ast.FieldInit{
			{Name: "a", Value: apply(2, "update", varE(2, "xs"), intLit(2, 0), intLit(2, 1)), Loc: at(2)},
			{Name: "b", Value: &ast.Index{Array: varE(3, "xs"), Indexes: []ast.Exp{intLit(3, 0)}, Loc: at(3)}, Loc: at(3)},
		},
		Loc: at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		nil, body)
	wantCode(t, check(t, d), diagnostics.ErrU001)
}

func TestArgumentReadOfConsumedSibling(t *testing.T) {
	// update xs 0 (xs[1]): the read in the value argument conflicts
	// with the same call's consumption of xs, lexical order aside.
	read := &ast.Index{Array: varE(2, "xs"), Indexes: []ast.Exp{intLit(2, 1)}, Loc: at(2)}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		nil,
		apply(2, "update", varE(2, "xs"), intLit(2, 0), read))
	wantCode(t, check(t, d), diagnostics.ErrU001)
}

func TestLetWith(t *testing.T) {
	// let ys = xs with [0] <- 5 in ys[0]
	body := &ast.LetWith{
		Dest:    "ys",
		Src:     "xs",
		Indexes: []ast.Exp{intLit(2, 0)},
		Value:   intLit(2, 5),
		Body:    &ast.Index{Array: varE(3, "ys"), Indexes: []ast.Exp{intLit(3, 0)}, Loc: at(3)},
		Loc:     at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		tePrim(types.I32), body)
	wantClean(t, check(t, d))
}

func TestLetWithTombstonesSource(t *testing.T) {
	body := &ast.LetWith{
		Dest:    "ys",
		Src:     "xs",
		Indexes: []ast.Exp{intLit(2, 0)},
		Value:   intLit(2, 5),
		Body:    &ast.Index{Array: varE(3, "xs"), Indexes: []ast.Exp{intLit(3, 0)}, Loc: at(3)},
		Loc:     at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrU001)
}

func TestLetWithRejectsNonUniqueSource(t *testing.T) {
	body := &ast.LetWith{
		Dest:    "ys",
		Src:     "xs",
		Indexes: []ast.Exp{intLit(2, 0)},
		Value:   intLit(2, 5),
		Body:    intLit(3, 0),
		Loc:     at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, false))},
		tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrU003)
}

func TestLetWithRejectsAliasedValue(t *testing.T) {
	// let ys = xs with [0] <- xs[1]: the written row aliases xs.
	body := &ast.LetWith{
		Dest:    "ys",
		Src:     "xs",
		Indexes: []ast.Exp{intLit(2, 0)},
		Value:   &ast.Index{Array: varE(2, "xs"), Indexes: []ast.Exp{intLit(2, 1)}, Loc: at(2)},
		Body:    intLit(3, 0),
		Loc:     at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 2, true))},
		tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrU004)
}

func TestLoopConsumesInitialValue(t *testing.T) {
	// loop a = xs for i < 10 do update a 0 1
	loop := &ast.DoLoop{
		Pat:  &ast.PatId{Name: "a", Loc: at(2)},
		Init: varE(2, "xs"),
		Form: &ast.ForLoop{Var: "i", Bound: intLit(2, 10), Loc: at(2)},
		Body: apply(3, "update", varE(3, "a"), intLit(3, 0), intLit(3, 1)),
		Loc:  at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		teArr(tePrim(types.I32), 1, false), loop)
	wantClean(t, check(t, d))
}

func TestLoopSourceUnusableAfter(t *testing.T) {
	// let r = (loop a = xs while false do a) in xs[0]
	loop := &ast.DoLoop{
		Pat:  &ast.PatId{Name: "a", Loc: at(2)},
		Init: varE(2, "xs"),
		Form: &ast.WhileLoop{Cond: boolLit(2, false), Loc: at(2)},
		Body: varE(3, "a"),
		Loc:  at(2),
	}
	body := &ast.Let{
		Pat:   &ast.PatId{Name: "r", Loc: at(2)},
		Value: loop,
		Body:  &ast.Index{Array: varE(4, "xs"), Indexes: []ast.Exp{intLit(4, 0)}, Loc: at(4)},
		Loc:   at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, true))},
		tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrU001)
}

func TestLoopOverNonUniqueMerge(t *testing.T) {
	// Summing over a non-unique array consumes nothing.
	loop := &ast.DoLoop{
		Pat:  &ast.PatId{Name: "acc", Loc: at(2)},
		Init: intLit(2, 0),
		Form: &ast.ForLoop{Var: "i", Bound: intLit(2, 10), Loc: at(2)},
		Body: apply(3, "+", varE(3, "acc"), &ast.Index{Array: varE(3, "xs"), Indexes: []ast.Exp{varE(3, "i")}, Loc: at(3)}),
		Loc:  at(2),
	}
	body := &ast.Let{
		Pat:   &ast.PatId{Name: "s", Loc: at(2)},
		Value: loop,
		Body: apply(4, "+", varE(4, "s"),
			&ast.Index{Array: varE(4, "xs"), Indexes: []ast.Exp{intLit(4, 0)}, Loc: at(4)}),
		Loc: at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I64), 1, false))},
		tePrim(types.I64), body)
	wantClean(t, check(t, d))
}

func TestRecordProjection(t *testing.T) {
	rec := &ast.TERecord{
		Fields: []ast.TEField{
			{Name: "x", Type: tePrim(types.I32)},
			{Name: "y", Type: tePrim(types.Bool)},
		},
		Loc: at(1),
	}
	d := def("f", []ast.Pattern{param("r", rec)}, tePrim(types.I32), varE(2, "r", "x"))
	wantClean(t, check(t, d))
}

func TestRecordPatternShapeMismatch(t *testing.T) {
	rec := &ast.TERecord{
		Fields: []ast.TEField{
			{Name: "a", Type: tePrim(types.I32)},
			{Name: "b", Type: tePrim(types.I32)},
		},
		Loc: at(1),
	}
	pat := &ast.PatAscript{
		Pat: &ast.PatRecord{
			Fields: []ast.PatField{{Name: "a", Pat: &ast.PatId{Name: "x", Loc: at(1)}, Loc: at(1)}},
			Loc:    at(1),
		},
		Decl: rec,
		Loc:  at(1),
	}
	d := def("f", []ast.Pattern{pat}, tePrim(types.I32), varE(2, "x"))
	wantCode(t, check(t, d), diagnostics.ErrS002)
}

func TestDuplicateNamesInPattern(t *testing.T) {
	rec := &ast.TERecord{
		Fields: []ast.TEField{
			{Name: "a", Type: tePrim(types.I32)},
			{Name: "b", Type: tePrim(types.I32)},
		},
		Loc: at(1),
	}
	pat := &ast.PatAscript{
		Pat: &ast.PatRecord{
			Fields: []ast.PatField{
				{Name: "a", Pat: &ast.PatId{Name: "x", Loc: at(1)}, Loc: at(1)},
				{Name: "b", Pat: &ast.PatId{Name: "x", Loc: at(1)}, Loc: at(1)},
			},
			Loc: at(1),
		},
		Decl: rec,
		Loc:  at(1),
	}
	d := def("f", []ast.Pattern{pat}, tePrim(types.I32), varE(2, "x"))
	wantCode(t, check(t, d), diagnostics.ErrN003)
}

func TestEqualityRejectsFunctions(t *testing.T) {
	fnT := &ast.TEArrow{Param: tePrim(types.I32), Result: tePrim(types.I32), Loc: at(1)}
	body := &ast.BinOp{Op: "==", Left: varE(2, "g"), Right: varE(2, "h"), Loc: at(2)}
	d := def("f", []ast.Pattern{param("g", fnT), param("h", fnT)}, tePrim(types.Bool), body)
	wantCode(t, check(t, d), diagnostics.ErrT001)
}

func TestUniqueReturnMustNotAliasParameter(t *testing.T) {
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, false))},
		teArr(tePrim(types.I32), 1, true),
		varE(2, "xs"))
	wantCode(t, check(t, d), diagnostics.ErrU005)
}

func TestLocalFunctionGeneralizes(t *testing.T) {
	// let id = \x -> x in if id true then id 1 else 0
	lam := &ast.Lambda{
		Params: []ast.Pattern{&ast.PatId{Name: "x", Loc: at(2)}},
		Body:   varE(2, "x"),
		Loc:    at(2),
	}
	body := &ast.Let{
		Pat:   &ast.PatId{Name: "id", Loc: at(2)},
		Value: lam,
		Body: &ast.If{
			Cond: &ast.Apply{Fun: varE(3, "id"), Args: []ast.Exp{boolLit(3, true)}, Loc: at(3)},
			Then: &ast.Apply{Fun: varE(4, "id"), Args: []ast.Exp{intLit(4, 1)}, Loc: at(4)},
			Else: intLit(5, 0),
			Loc:  at(3),
		},
		Loc: at(2),
	}
	d := def("f", nil, tePrim(types.I32), body)
	wantClean(t, check(t, d))
}

func TestBuiltinMap(t *testing.T) {
	// map (\x -> x + 1) xs
	lam := &ast.Lambda{
		Params: []ast.Pattern{&ast.PatId{Name: "x", Loc: at(2)}},
		Body:   apply(2, "+", varE(2, "x"), intLit(2, 1)),
		Loc:    at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, false))},
		teArr(tePrim(types.I32), 1, false),
		apply(2, "map", lam, varE(2, "xs")))
	wantClean(t, check(t, d))
}

func TestReplicateRejectsFunctionArgument(t *testing.T) {
	// replicate 3 not would mint an array of functions.
	d := def("f", nil, nil, apply(1, "replicate", intLit(1, 3), varE(1, "not")))
	wantCode(t, check(t, d), diagnostics.ErrT001)
}

func TestRearrange(t *testing.T) {
	perm := &ast.ArrayLit{Elems: []ast.Exp{intLit(2, 1), intLit(2, 0)}, Loc: at(2)}
	d := def("transpose2",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 2, false))},
		teArr(tePrim(types.I32), 2, false),
		apply(2, "rearrange", perm, varE(2, "xs")))
	wantClean(t, check(t, d))
}

func TestInvalidPermutation(t *testing.T) {
	tests := []struct {
		name string
		perm []ast.Exp
	}{
		{"repeated dimension", []ast.Exp{intLit(2, 0), intLit(2, 0)}},
		{"dimension out of range", []ast.Exp{intLit(2, 0), intLit(2, 2)}},
		{"wrong length", []ast.Exp{intLit(2, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perm := &ast.ArrayLit{Elems: tt.perm, Loc: at(2)}
			d := def("f",
				[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 2, false))},
				teArr(tePrim(types.I32), 2, false),
				apply(2, "rearrange", perm, varE(2, "xs")))
			wantCode(t, check(t, d), diagnostics.ErrS005)
		})
	}
}

func TestIndexRankMismatch(t *testing.T) {
	body := &ast.Index{
		Array:   varE(2, "xs"),
		Indexes: []ast.Exp{intLit(2, 0), intLit(2, 0)},
		Loc:     at(2),
	}
	d := def("f",
		[]ast.Pattern{param("xs", teArr(tePrim(types.I32), 1, false))},
		tePrim(types.I32), body)
	wantCode(t, check(t, d), diagnostics.ErrS003)
}

func TestTooManyArguments(t *testing.T) {
	d := def("f", nil, tePrim(types.Bool),
		apply(1, "not", boolLit(1, true), boolLit(1, false)))
	wantCode(t, check(t, d), diagnostics.ErrS001)
}

func TestDeclaredTypeParameter(t *testing.T) {
	d := &ast.ValDec{
		Name:       "id",
		TypeParams: []ast.TypeParamDec{{Name: "a", Loc: at(1)}},
		Params: []ast.Pattern{&ast.PatAscript{
			Pat:  &ast.PatId{Name: "x", Loc: at(1)},
			Decl: &ast.TEVar{Names: []string{"a"}, Loc: at(1)},
			Loc:  at(1),
		}},
		RetDecl: &ast.TEVar{Names: []string{"a"}, Loc: at(1)},
		Body:    varE(2, "x"),
		Loc:     at(1),
	}
	wantClean(t, check(t, d))
	if len(d.AllParams) != 1 {
		t.Fatalf("expected the declared parameter, got %v", d.AllParams)
	}
}

func TestAbstractTypeApplication(t *testing.T) {
	mi32 := func() ast.TypeExp {
		return &ast.TEApp{Head: []string{"m"}, Args: []ast.TypeExp{tePrim(types.I32)}, Loc: at(1)}
	}
	d := &ast.ValDec{
		Name:       "f",
		TypeParams: []ast.TypeParamDec{{Name: "m", Lifted: true, Loc: at(1)}},
		Params: []ast.Pattern{&ast.PatAscript{
			Pat:  &ast.PatId{Name: "x", Loc: at(1)},
			Decl: mi32(),
			Loc:  at(1),
		}},
		RetDecl: mi32(),
		Body:    varE(2, "x"),
		Loc:     at(1),
	}
	wantClean(t, check(t, d))
	if len(d.AllParams) != 1 {
		t.Fatalf("expected the declared head parameter, got %v", d.AllParams)
	}
	arrow, ok := d.Type.(types.Arrow)
	if !ok {
		t.Fatalf("expected an arrow type, got %s", d.Type)
	}
	app, ok := arrow.Result.(types.App)
	if !ok || app.Head.Base != "m" || len(app.Args) != 1 {
		t.Fatalf("result should stay the abstract application m i32, got %s", arrow.Result)
	}
}

func TestUnusedTypeParameter(t *testing.T) {
	d := &ast.ValDec{
		Name:       "f",
		TypeParams: []ast.TypeParamDec{{Name: "a", Loc: at(1)}},
		Params:     []ast.Pattern{param("x", tePrim(types.I32))},
		RetDecl:    tePrim(types.I32),
		Body:       varE(2, "x"),
		Loc:        at(1),
	}
	wantCode(t, check(t, d), diagnostics.ErrT012)
}
