package types

import (
	"sort"
	"strings"

	"github.com/vexlang/vex/internal/names"
)

// Aliases is a set of bound names that may share underlying storage.
type Aliases map[names.VName]struct{}

// NewAliases builds a set from the given names.
func NewAliases(vs ...names.VName) Aliases {
	a := make(Aliases, len(vs))
	for _, v := range vs {
		a[v] = struct{}{}
	}
	return a
}

func (a Aliases) Contains(v names.VName) bool {
	_, ok := a[v]
	return ok
}

func (a Aliases) Copy() Aliases {
	out := make(Aliases, len(a))
	for v := range a {
		out[v] = struct{}{}
	}
	return out
}

// Union returns a fresh set holding both operands' names.
func (a Aliases) Union(b Aliases) Aliases {
	out := a.Copy()
	for v := range b {
		out[v] = struct{}{}
	}
	return out
}

// Without returns a fresh set with the names of b removed.
func (a Aliases) Without(b Aliases) Aliases {
	out := make(Aliases, len(a))
	for v := range a {
		if !b.Contains(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

// Intersects reports whether the two sets share any name.
func (a Aliases) Intersects(b Aliases) bool {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for v := range small {
		if large.Contains(v) {
			return true
		}
	}
	return false
}

// Names returns the members sorted by base name then tag, for
// deterministic diagnostics.
func (a Aliases) Names() []names.VName {
	out := make([]names.VName, 0, len(a))
	for v := range a {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Base != out[j].Base {
			return out[i].Base < out[j].Base
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (a Aliases) String() string {
	parts := []string{}
	for _, v := range a.Names() {
		parts = append(parts, v.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// AliasesOf collects the alias set of a type: arrays and arrows carry
// their own, records contribute the union of their fields'.
func AliasesOf(t Type) Aliases {
	switch t := t.(type) {
	case Array:
		return t.Als.Copy()
	case Arrow:
		return t.Als.Copy()
	case Record:
		out := Aliases{}
		for _, ft := range t.Fields {
			out = out.Union(AliasesOf(ft))
		}
		return out
	default:
		return Aliases{}
	}
}

// AddAlias adds a name to every alias-carrying position of t.
func AddAlias(t Type, v names.VName) Type {
	switch t := t.(type) {
	case Array:
		als := t.Als.Copy()
		als[v] = struct{}{}
		return Array{Elem: t.Elem, Rank: t.Rank, Unique: t.Unique, Als: als}
	case Arrow:
		als := t.Als.Copy()
		als[v] = struct{}{}
		return Arrow{Param: t.Param, Result: t.Result, Als: als}
	case Record:
		fields := make(map[string]Type, len(t.Fields))
		for k, ft := range t.Fields {
			fields[k] = AddAlias(ft, v)
		}
		return Record{Fields: fields}
	default:
		return t
	}
}

// SetAliases replaces the alias sets of every alias-carrying position.
func SetAliases(t Type, als Aliases) Type {
	switch t := t.(type) {
	case Array:
		return Array{Elem: t.Elem, Rank: t.Rank, Unique: t.Unique, Als: als.Copy()}
	case Arrow:
		return Arrow{Param: t.Param, Result: t.Result, Als: als.Copy()}
	case Record:
		fields := make(map[string]Type, len(t.Fields))
		for k, ft := range t.Fields {
			fields[k] = SetAliases(ft, als)
		}
		return Record{Fields: fields}
	default:
		return t
	}
}

// MaskAliases removes the given names from every alias set in t.
func MaskAliases(t Type, masked Aliases) Type {
	switch t := t.(type) {
	case Array:
		return Array{Elem: t.Elem, Rank: t.Rank, Unique: t.Unique, Als: t.Als.Without(masked)}
	case Arrow:
		return Arrow{Param: MaskAliases(t.Param, masked), Result: MaskAliases(t.Result, masked), Als: t.Als.Without(masked)}
	case Record:
		fields := make(map[string]Type, len(t.Fields))
		for k, ft := range t.Fields {
			fields[k] = MaskAliases(ft, masked)
		}
		return Record{Fields: fields}
	default:
		return t
	}
}
