package checker

import (
	"strings"

	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// ValueBinding is what a term-level name resolves to. The set of cases
// is closed; the checker switches exhaustively over it.
type ValueBinding interface {
	valueBindingNode()
}

// BoundValue is an ordinary binding with an optional type scheme.
type BoundValue struct {
	TypeParams []types.TypeParam
	Type       types.Type
}

// OverloadedBuiltin is a binary operator over a set of primitive
// types, e.g. arithmetic or ordering. Compare operators yield bool.
type OverloadedBuiltin struct {
	Kinds   []types.PrimKind
	Compare bool
}

// EqualityBuiltin is == or !=: defers an equality constraint onto its
// operand type.
type EqualityBuiltin struct{}

// OpaqueBuiltin is an intrinsic with a fixed scheme the language
// cannot itself express the implementation of.
type OpaqueBuiltin struct {
	TypeParams []types.TypeParam
	Type       types.Type
}

// Consumed is the tombstone left after an in-place update consumes a
// binding; any later use of the stale name is a scope-level error.
type Consumed struct {
	Loc token.Pos
}

func (BoundValue) valueBindingNode()        {}
func (OverloadedBuiltin) valueBindingNode() {}
func (EqualityBuiltin) valueBindingNode()   {}
func (OpaqueBuiltin) valueBindingNode()     {}
func (Consumed) valueBindingNode()          {}

// TypeBinding is what a type-level name resolves to: an abbreviation
// with parameters, or a bare rigid variable for declared parameters.
type TypeBinding struct {
	Params []types.TypeParam
	Type   types.Type
}

// Scope is the lexical environment: value and type tables, the map
// from source-level (possibly qualified) names to tagged names, and
// the breadcrumb trail of enclosing checking contexts.
type Scope struct {
	Values      map[names.VName]ValueBinding
	Types       map[names.VName]TypeBinding
	TermNames   map[string]names.VName
	TypeNames   map[string]names.VName
	Breadcrumbs []string
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{
		Values:    map[names.VName]ValueBinding{},
		Types:     map[names.VName]TypeBinding{},
		TermNames: map[string]names.VName{},
		TypeNames: map[string]names.VName{},
	}
}

// Copy returns an independent scope with the same contents, so nested
// checks can extend or tombstone bindings without affecting the outer
// environment.
func (s *Scope) Copy() *Scope {
	out := &Scope{
		Values:      make(map[names.VName]ValueBinding, len(s.Values)),
		Types:       make(map[names.VName]TypeBinding, len(s.Types)),
		TermNames:   make(map[string]names.VName, len(s.TermNames)),
		TypeNames:   make(map[string]names.VName, len(s.TypeNames)),
		Breadcrumbs: append([]string(nil), s.Breadcrumbs...),
	}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	for k, v := range s.Types {
		out.Types[k] = v
	}
	for k, v := range s.TermNames {
		out.TermNames[k] = v
	}
	for k, v := range s.TypeNames {
		out.TypeNames[k] = v
	}
	return out
}

// Compose overlays inner on s: right-biased union of the tables, with
// breadcrumbs concatenated outer-context-first.
func (s *Scope) Compose(inner *Scope) *Scope {
	out := s.Copy()
	for k, v := range inner.Values {
		out.Values[k] = v
	}
	for k, v := range inner.Types {
		out.Types[k] = v
	}
	for k, v := range inner.TermNames {
		out.TermNames[k] = v
	}
	for k, v := range inner.TypeNames {
		out.TypeNames[k] = v
	}
	out.Breadcrumbs = append(append([]string(nil), s.Breadcrumbs...), inner.Breadcrumbs...)
	return out
}

// BindValue installs a term binding under its source name.
func (s *Scope) BindValue(v names.VName, b ValueBinding) {
	s.Values[v] = b
	s.TermNames[v.Base] = v
}

// BindType installs a type binding under its source name.
func (s *Scope) BindType(v names.VName, b TypeBinding) {
	s.Types[v] = b
	s.TypeNames[v.Base] = v
}

// ResolveTerm resolves the longest bound prefix of a qualifier chain,
// returning the root name and the trailing segments to reinterpret as
// record projections. The full chain is tried as a qualified name
// first.
func (s *Scope) ResolveTerm(segments []string) (names.VName, ValueBinding, []string, bool) {
	for cut := len(segments); cut >= 1; cut-- {
		key := strings.Join(segments[:cut], ".")
		if v, ok := s.TermNames[key]; ok {
			return v, s.Values[v], segments[cut:], true
		}
	}
	return names.VName{}, nil, nil, false
}

// ResolveType resolves a qualified type name.
func (s *Scope) ResolveType(segments []string) (names.VName, TypeBinding, bool) {
	key := strings.Join(segments, ".")
	if v, ok := s.TypeNames[key]; ok {
		return v, s.Types[v], true
	}
	return names.VName{}, TypeBinding{}, false
}
