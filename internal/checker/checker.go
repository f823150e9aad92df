// Package checker implements term-level type checking for Vex: a
// Hindley-Milner-style inference engine extended with uniqueness types
// that track in-place array consumption.
//
// A Checker threads three effects through every check call explicitly:
// a dynamically scoped lexical environment (restored when a nested
// check returns), a forward-propagating constraint store (mutations
// persist across sibling checks in evaluation order), and an
// append-only occurrence stream that is split and merged at binding
// boundaries.
package checker

import (
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// Checker carries the state of one checking pass. It is not safe for
// concurrent use; checking is sequential and deterministic.
type Checker struct {
	scope    *Scope
	cons     Constraints
	occ      Occurrences
	src      *names.Source
	warnings []*diagnostics.Diagnostic
}

// New builds a checker over a root environment. The fresh-name source
// is shared with the caller so tags stay strictly increasing across
// definitions.
func New(root *Scope, src *names.Source) *Checker {
	if root == nil {
		root = Intrinsics()
	}
	if src == nil {
		src = names.NewSource()
	}
	return &Checker{
		scope: root,
		cons:  Constraints{},
		src:   src,
	}
}

// Warnings returns the non-fatal diagnostics accumulated so far.
func (c *Checker) Warnings() []*diagnostics.Diagnostic {
	return c.warnings
}

func (c *Checker) warn(d *diagnostics.Diagnostic) {
	c.warnings = append(c.warnings, d)
}

// inScope runs f with s as the current scope and restores the previous
// scope afterward, whether or not f fails.
func (c *Checker) inScope(s *Scope, f func() *diagnostics.Diagnostic) *diagnostics.Diagnostic {
	saved := c.scope
	c.scope = s
	defer func() { c.scope = saved }()
	return f()
}

// collect drains the occurrences emitted while running f, leaving the
// surrounding stream untouched. This is how branches of a conditional
// stay independent and how a binding isolates its own occurrences.
func (c *Checker) collect(f func() *diagnostics.Diagnostic) (Occurrences, *diagnostics.Diagnostic) {
	saved := c.occ
	c.occ = nil
	err := f()
	collected := c.occ
	c.occ = saved
	return collected, err
}

// tap peeks at the occurrences f emits while still letting them flow
// into the surrounding stream.
func (c *Checker) tap(f func() *diagnostics.Diagnostic) (Occurrences, *diagnostics.Diagnostic) {
	collected, err := c.collect(f)
	c.occur(collected...)
	return collected, err
}

// occur appends occurrences to the stream, dropping empty ones.
func (c *Checker) occur(occs ...Occurrence) {
	for _, o := range occs {
		if !o.empty() {
			c.occ = append(c.occ, o)
		}
	}
}

// observe records a read of a binding: the name itself plus everything
// its type may alias.
func (c *Checker) observe(pos token.Pos, v names.VName, t types.Type) {
	als := types.AliasesOf(t)
	als[v] = struct{}{}
	c.occur(observation(als, pos))
}

// consume records that the given names' storage is no longer usable.
func (c *Checker) consume(pos token.Pos, als types.Aliases) {
	c.occur(consumption(als.Copy(), pos))
}

// newTypeVar introduces a fresh flexible variable.
func (c *Checker) newTypeVar(base string) types.Var {
	v := c.src.Fresh(base)
	c.cons[v] = NoConstraint{}
	return types.Var{Name: v}
}

// newLiftedVar introduces a fresh flexible variable that may resolve
// to a function type; used wherever functions can flow, such as
// parameters, callees and application results.
func (c *Checker) newLiftedVar(base string) types.Var {
	v := c.src.Fresh(base)
	c.cons[v] = NoConstraint{Lifted: true}
	return types.Var{Name: v}
}

// newOverloadedVar introduces a literal's variable constrained to a
// primitive overload set.
func (c *Checker) newOverloadedVar(pos token.Pos, base string, kinds []types.PrimKind) types.Var {
	v := c.src.Fresh(base)
	c.cons[v] = Overloaded{Kinds: kinds, Loc: pos}
	return types.Var{Name: v}
}

// instantiate replaces a scheme's parameters with fresh flexible
// variables. Two instantiations of the same scheme never interfere.
func (c *Checker) instantiate(params []types.TypeParam, t types.Type) types.Type {
	if len(params) == 0 {
		return t
	}
	s := make(map[names.VName]types.Type, len(params))
	for _, p := range params {
		fresh := c.src.Fresh(p.Name.Base)
		c.cons[fresh] = NoConstraint{Lifted: p.Lifted}
		s[p.Name] = types.Var{Name: fresh}
	}
	return types.Substitute(t, s)
}

// resolveAnnotation maps an annotated type through the final
// substitution and defaults any still-overloaded literal variable:
// integer literals to i32, decimal literals to f64.
func (c *Checker) resolveAnnotation(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	t = c.cons.Normalize(t)
	defaults := map[names.VName]types.Type{}
	for _, v := range types.FreeVars(t) {
		if con, ok := c.cons[v].(Overloaded); ok {
			defaults[v] = types.Prim{K: defaultKind(con.Kinds)}
		}
	}
	if len(defaults) == 0 {
		return t
	}
	return types.Substitute(t, defaults)
}

func defaultKind(kinds []types.PrimKind) types.PrimKind {
	if kindMember(kinds, types.I32) {
		return types.I32
	}
	if kindMember(kinds, types.F64) {
		return types.F64
	}
	return kinds[0]
}
