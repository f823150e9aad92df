package checker

import (
	"strings"

	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// Constraint is the information the store holds about one type
// variable. The set of cases is closed; every consumer must switch
// exhaustively.
type Constraint interface {
	constraintNode()
}

// NoConstraint marks a flexible variable with no resolution yet.
// Lifted records whether the variable may resolve to a function type;
// unlifted variables must stay storable in arrays, and linking
// re-validates this. The flag also decides the liftedness of the
// parameter the variable may generalize into.
type NoConstraint struct {
	Lifted bool
}

// ParamType marks a rigid variable: a declared or generalized type
// parameter. Substitution never rewrites such an entry.
type ParamType struct {
	Lifted bool
	Loc    token.Pos
}

// HasType marks a resolved variable.
type HasType struct {
	Type types.Type
}

// Overloaded constrains a variable, typically a numeric literal's, to
// one of a set of primitive types.
type Overloaded struct {
	Kinds []types.PrimKind
	Loc   token.Pos
}

// Equality constrains a variable to types that support ==.
type Equality struct {
	Loc token.Pos
}

func (NoConstraint) constraintNode() {}
func (ParamType) constraintNode()    {}
func (HasType) constraintNode()      {}
func (Overloaded) constraintNode()   {}
func (Equality) constraintNode()     {}

// Constraints maps type-variable names to their constraints. The store
// is kept closed under substitution: linking a variable rewrites every
// resolved entry, so no HasType holds a forward reference and applying
// the substitution twice never changes the result.
type Constraints map[names.VName]Constraint

// IsRigid reports whether a variable must not be substituted: absent
// from the store, or a declared parameter.
func (cs Constraints) IsRigid(v names.VName) bool {
	c, ok := cs[v]
	if !ok {
		return true
	}
	_, isParam := c.(ParamType)
	return isParam
}

// Substitution collects all resolved entries.
func (cs Constraints) Substitution() map[names.VName]types.Type {
	s := make(map[names.VName]types.Type)
	for v, c := range cs {
		if h, ok := c.(HasType); ok {
			s[v] = h.Type
		}
	}
	return s
}

// Normalize applies the current substitution to t. One application
// suffices because the store is closed on every link.
func (cs Constraints) Normalize(t types.Type) types.Type {
	return types.Substitute(t, cs.Substitution())
}

func kindsString(kinds []types.PrimKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// closeOver generalizes the flexible variables still reachable from t
// into rigid type parameters. Only variables created at or after the
// tag snapshot belong to the binding being closed; older variables are
// visible outside it and stay flexible. Residual literal overloads and
// equality constraints are ambiguity errors: they must be resolved
// before generalization.
func (c *Checker) closeOver(pos token.Pos, since int, t types.Type) ([]types.TypeParam, *diagnostics.Diagnostic) {
	var params []types.TypeParam
	for _, v := range types.FreeVars(c.cons.Normalize(t)) {
		if v.Tag < since {
			continue
		}
		con, ok := c.cons[v]
		if !ok {
			continue
		}
		switch con := con.(type) {
		case NoConstraint:
			params = append(params, types.TypeParam{Name: v, Lifted: con.Lifted})
			c.cons[v] = ParamType{Lifted: con.Lifted, Loc: pos}
		case Overloaded:
			return nil, diagnostics.NewError(diagnostics.ErrT010, pos,
				"ambiguous type of literal: could be any of %s", kindsString(con.Kinds))
		case Equality:
			return nil, diagnostics.NewError(diagnostics.ErrT011, pos,
				"ambiguous type %s with equality constraint", v)
		case ParamType, HasType:
			// already rigid, or resolved by normalization
		}
	}
	return params, nil
}
