package checker

import (
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// unify makes t1 and t2 equal under the current substitution, linking
// flexible variables as needed. Uniqueness annotations and alias sets
// are not part of structural equality; callers check uniqueness
// compatibility separately after unification succeeds.
func (c *Checker) unify(pos token.Pos, t1, t2 types.Type) *diagnostics.Diagnostic {
	t1 = c.cons.Normalize(t1)
	t2 = c.cons.Normalize(t2)

	if types.Equal(types.ToObservable(t1), types.ToObservable(t2)) {
		return nil
	}

	// Variable cases first. A flexible variable links to the other
	// side; two flexible variables link left to right; two distinct
	// rigid variables never match.
	if v1, ok := t1.(types.Var); ok {
		if !c.cons.IsRigid(v1.Name) {
			return c.link(pos, v1.Name, t2)
		}
		if v2, ok := t2.(types.Var); ok && !c.cons.IsRigid(v2.Name) {
			return c.link(pos, v2.Name, t1)
		}
		return c.mismatch(pos, t1, t2)
	}
	if v2, ok := t2.(types.Var); ok {
		if !c.cons.IsRigid(v2.Name) {
			return c.link(pos, v2.Name, t1)
		}
		return c.mismatch(pos, t1, t2)
	}

	switch t1 := t1.(type) {
	case types.Prim:
		return c.mismatch(pos, t1, t2)

	case types.Array:
		a2, ok := t2.(types.Array)
		if !ok {
			return c.mismatch(pos, t1, t2)
		}
		// Peel one dimension and recurse; element variables absorb any
		// remaining dimensions.
		if err := c.unify(pos, t1.Peel(1), a2.Peel(1)); err != nil {
			return err.Frame("when matching `%s` with `%s`", t1, a2)
		}
		return nil

	case types.Record:
		r2, ok := t2.(types.Record)
		if !ok {
			return c.mismatch(pos, t1, t2)
		}
		if !sameFieldSets(t1, r2) {
			return diagnostics.NewError(diagnostics.ErrT003, pos,
				"record field sets do not match: `%s` vs `%s`", t1, r2)
		}
		for _, k := range t1.FieldNames() {
			if err := c.unify(pos, t1.Fields[k], r2.Fields[k]); err != nil {
				return err.Frame("when matching `%s` with `%s`", t1, r2)
			}
		}
		return nil

	case types.Arrow:
		a2, ok := t2.(types.Arrow)
		if !ok {
			return c.mismatch(pos, t1, t2)
		}
		if err := c.unify(pos, t1.Param, a2.Param); err != nil {
			return err.Frame("when matching `%s` with `%s`", t1, a2)
		}
		if err := c.unify(pos, t1.Result, a2.Result); err != nil {
			return err.Frame("when matching `%s` with `%s`", t1, a2)
		}
		return nil

	case types.App:
		a2, ok := t2.(types.App)
		if !ok {
			return c.mismatch(pos, t1, t2)
		}
		if t1.Head != a2.Head {
			return c.mismatch(pos, t1, t2)
		}
		if len(t1.Args) != len(a2.Args) {
			return diagnostics.NewError(diagnostics.ErrT004, pos,
				"arity mismatch: `%s` applied to %d arguments, `%s` to %d",
				t1.Head, len(t1.Args), a2.Head, len(a2.Args))
		}
		for i := range t1.Args {
			if err := c.unify(pos, t1.Args[i], a2.Args[i]); err != nil {
				return err.Frame("when matching `%s` with `%s`", t1, a2)
			}
		}
		return nil
	}
	return c.mismatch(pos, t1, t2)
}

func (c *Checker) mismatch(pos token.Pos, t1, t2 types.Type) *diagnostics.Diagnostic {
	return diagnostics.NewError(diagnostics.ErrT001, pos,
		"cannot match type `%s` with type `%s`", t1, t2)
}

func sameFieldSets(r1, r2 types.Record) bool {
	if len(r1.Fields) != len(r2.Fields) {
		return false
	}
	for k := range r1.Fields {
		if _, ok := r2.Fields[k]; !ok {
			return false
		}
	}
	return true
}

// link resolves flexible variable v to t: occurs check, re-validation
// of any existing constraint on v, then insertion and propagation of
// the new substitution into every other resolved entry.
func (c *Checker) link(pos token.Pos, v names.VName, t types.Type) *diagnostics.Diagnostic {
	if types.Occurs(v, t) {
		return diagnostics.NewError(diagnostics.ErrT002, pos,
			"infinite type: `%s` occurs inside `%s`", v, t)
	}

	switch con := c.cons[v].(type) {
	case Overloaded:
		if tv, ok := t.(types.Var); ok && !c.cons.IsRigid(tv.Name) {
			// The target is itself unresolved: narrow its constraint to
			// the same overload set instead of failing.
			if err := c.narrowOverload(pos, tv.Name, con); err != nil {
				return err
			}
		} else if p, ok := t.(types.Prim); ok && kindMember(con.Kinds, p.K) {
			// allowed member of the overload set
		} else {
			return diagnostics.NewError(diagnostics.ErrT001, pos,
				"cannot resolve type `%s` against overloaded constraint (%s)", t, kindsString(con.Kinds))
		}
	case Equality:
		if tv, ok := t.(types.Var); ok && !c.cons.IsRigid(tv.Name) {
			if err := c.propagateEquality(pos, tv.Name, con); err != nil {
				return err
			}
		} else if !supportsEquality(t) {
			return diagnostics.NewError(diagnostics.ErrT001, pos,
				"type `%s` does not support equality", t)
		}
	case ParamType:
		return diagnostics.NewError(diagnostics.ErrT001, pos,
			"cannot substitute rigid type parameter `%s` with `%s`", v, t)
	case NoConstraint:
		if !con.Lifted {
			if containsArrow(t) {
				return diagnostics.NewError(diagnostics.ErrT001, pos,
					"cannot instantiate `%s` with function type `%s`", v, t)
			}
			if tv, ok := t.(types.Var); ok {
				// The target inherits the no-functions restriction.
				if nc, isNC := c.cons[tv.Name].(NoConstraint); isNC && nc.Lifted {
					c.cons[tv.Name] = NoConstraint{}
				}
			}
		}
	case HasType:
		// cannot happen: the caller normalized before linking
	}

	c.cons[v] = HasType{Type: t}
	// Keep the store closed: no other resolved entry may still mention v.
	single := map[names.VName]types.Type{v: t}
	for w, con := range c.cons {
		if h, ok := con.(HasType); ok && w != v {
			c.cons[w] = HasType{Type: types.Substitute(h.Type, single)}
		}
	}
	return nil
}

// narrowOverload transfers an overload constraint onto another still
// flexible variable, intersecting if one is already present.
func (c *Checker) narrowOverload(pos token.Pos, v names.VName, o Overloaded) *diagnostics.Diagnostic {
	switch con := c.cons[v].(type) {
	case NoConstraint:
		c.cons[v] = Overloaded{Kinds: o.Kinds, Loc: o.Loc}
	case Equality:
		// All overloadable primitives support equality.
		c.cons[v] = Overloaded{Kinds: o.Kinds, Loc: o.Loc}
	case Overloaded:
		common := intersectKinds(con.Kinds, o.Kinds)
		if len(common) == 0 {
			return diagnostics.NewError(diagnostics.ErrT001, pos,
				"incompatible literal types: (%s) vs (%s)", kindsString(con.Kinds), kindsString(o.Kinds))
		}
		c.cons[v] = Overloaded{Kinds: common, Loc: con.Loc}
	case ParamType:
		return diagnostics.NewError(diagnostics.ErrT001, pos,
			"rigid type parameter `%s` cannot carry a literal constraint", v)
	case HasType:
		// cannot happen: the caller normalized before linking
	}
	return nil
}

func (c *Checker) propagateEquality(pos token.Pos, v names.VName, e Equality) *diagnostics.Diagnostic {
	switch c.cons[v].(type) {
	case NoConstraint:
		// Equality is stricter than liftedness: a function type can no
		// longer resolve this variable.
		c.cons[v] = Equality{Loc: e.Loc}
	case ParamType:
		return diagnostics.NewError(diagnostics.ErrT001, pos,
			"rigid type parameter `%s` does not support equality", v)
	case Overloaded, Equality, HasType:
		// overloaded primitives already support equality
	}
	return nil
}

// containsArrow reports whether a function type appears anywhere in
// t. A variable that must stay storable in arrays cannot resolve to
// such a type.
func containsArrow(t types.Type) bool {
	switch t := t.(type) {
	case types.Arrow:
		return true
	case types.Array:
		return containsArrow(t.Elem)
	case types.Record:
		for _, ft := range t.Fields {
			if containsArrow(ft) {
				return true
			}
		}
	}
	return false
}

func supportsEquality(t types.Type) bool {
	switch t := t.(type) {
	case types.Prim:
		return true
	case types.Array:
		return supportsEquality(t.Elem)
	case types.Record:
		for _, ft := range t.Fields {
			if !supportsEquality(ft) {
				return false
			}
		}
		return true
	case types.Var:
		return true
	default:
		return false
	}
}

func kindMember(kinds []types.PrimKind, k types.PrimKind) bool {
	for _, m := range kinds {
		if m == k {
			return true
		}
	}
	return false
}

func intersectKinds(a, b []types.PrimKind) []types.PrimKind {
	var out []types.PrimKind
	for _, k := range a {
		if kindMember(b, k) {
			out = append(out, k)
		}
	}
	return out
}
