package checker

import (
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/types"
)

// Intrinsics returns the root scope every program checks against:
// overloaded arithmetic and ordering, polymorphic equality, boolean
// connectives, and the array primitives.
func Intrinsics() *Scope {
	s := NewScope()

	for _, op := range []string{"+", "-", "*", "/", "%", "**"} {
		s.BindValue(names.VName{Base: op}, OverloadedBuiltin{Kinds: types.NumberKinds})
	}
	for _, op := range []string{"<", "<=", ">", ">="} {
		s.BindValue(names.VName{Base: op}, OverloadedBuiltin{Kinds: types.NumberKinds, Compare: true})
	}
	for _, op := range []string{"==", "!="} {
		s.BindValue(names.VName{Base: op}, EqualityBuiltin{})
	}

	boolT := types.Prim{K: types.Bool}
	i64 := types.Prim{K: types.I64}
	for _, op := range []string{"&&", "||"} {
		s.BindValue(names.VName{Base: op}, BoundValue{Type: arrows(boolT, boolT, boolT)})
	}
	s.BindValue(names.VName{Base: "not"}, BoundValue{Type: arrows(boolT, boolT)})

	a := types.TypeParam{Name: names.VName{Base: "a"}}
	b := types.TypeParam{Name: names.VName{Base: "b"}}
	va := types.Var{Name: a.Name}
	vb := types.Var{Name: b.Name}
	unary := []types.TypeParam{a}

	s.BindValue(names.VName{Base: "length"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(arr(va), i64),
	})
	s.BindValue(names.VName{Base: "iota"}, OpaqueBuiltin{
		Type: arrows(i64, arr(i64)),
	})
	s.BindValue(names.VName{Base: "replicate"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(i64, va, arr(va)),
	})
	s.BindValue(names.VName{Base: "copy"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(arr(va), uarr(va)),
	})
	s.BindValue(names.VName{Base: "concat"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(arr(va), arr(va), arr(va)),
	})
	s.BindValue(names.VName{Base: "map"}, OpaqueBuiltin{
		TypeParams: []types.TypeParam{{Name: a.Name, Lifted: true}, {Name: b.Name, Lifted: true}},
		Type:       arrows(arrows(va, vb), arr(va), arr(vb)),
	})
	s.BindValue(names.VName{Base: "reduce"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(arrows(va, va, va), va, arr(va), va),
	})
	// rearrange permutes array dimensions; the permutation must be a
	// literal, validated at the application site.
	s.BindValue(names.VName{Base: "rearrange"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(arr(i64), arr(va), arr(va)),
	})
	// update writes in place: its array argument is consumed.
	s.BindValue(names.VName{Base: "update"}, OpaqueBuiltin{
		TypeParams: unary,
		Type:       arrows(uarr(va), i64, va, uarr(va)),
	})

	return s
}

// arrows folds ts into a right-nested chain of alias-free arrows:
// arrows(a, b, c) is a -> b -> c.
func arrows(ts ...types.Type) types.Type {
	t := ts[len(ts)-1]
	for i := len(ts) - 2; i >= 0; i-- {
		t = types.Arrow{Param: ts[i], Result: t, Als: types.Aliases{}}
	}
	return t
}

func arr(elem types.Type) types.Type {
	return types.MkArray(elem, 1, false, types.Aliases{})
}

func uarr(elem types.Type) types.Type {
	return types.MkArray(elem, 1, true, types.Aliases{})
}
