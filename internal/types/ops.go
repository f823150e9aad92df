package types

import "github.com/vexlang/vex/internal/names"

// FreeVars returns the type variables occurring in t, first occurrence
// first, without duplicates.
func FreeVars(t Type) []names.VName {
	var out []names.VName
	seen := map[names.VName]bool{}
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case Var:
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		case Array:
			walk(t.Elem)
		case Arrow:
			walk(t.Param)
			walk(t.Result)
		case Record:
			for _, k := range t.FieldNames() {
				walk(t.Fields[k])
			}
		case App:
			if !seen[t.Head] {
				seen[t.Head] = true
				out = append(out, t.Head)
			}
			for _, arg := range t.Args {
				walk(arg)
			}
		}
	}
	walk(t)
	return out
}

// Occurs reports whether v appears free in t.
func Occurs(v names.VName, t Type) bool {
	for _, fv := range FreeVars(t) {
		if fv == v {
			return true
		}
	}
	return false
}

// Substitute replaces type variables by their mapped types. Nested
// arrays introduced by substitution are flattened into the outer rank.
func Substitute(t Type, s map[names.VName]Type) Type {
	if len(s) == 0 {
		return t
	}
	switch t := t.(type) {
	case Var:
		if r, ok := s[t.Name]; ok {
			return r
		}
		return t
	case Array:
		return MkArray(Substitute(t.Elem, s), t.Rank, t.Unique, t.Als.Copy())
	case Arrow:
		return Arrow{Param: Substitute(t.Param, s), Result: Substitute(t.Result, s), Als: t.Als.Copy()}
	case Record:
		fields := make(map[string]Type, len(t.Fields))
		for k, ft := range t.Fields {
			fields[k] = Substitute(ft, s)
		}
		return Record{Fields: fields}
	case App:
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = Substitute(arg, s)
		}
		// A substituted head keeps the application shape under the
		// new name; only variables can stand in head position.
		if r, ok := s[t.Head]; ok {
			if v, isVar := r.(Var); isVar {
				return App{Head: v.Name, Args: args}
			}
		}
		return App{Head: t.Head, Args: args}
	default:
		return t
	}
}

// Equal compares two types structurally, including uniqueness but
// ignoring alias sets. Alias sets describe sharing between bindings,
// not the shape of the type.
func Equal(t1, t2 Type) bool {
	switch t1 := t1.(type) {
	case Prim:
		t2, ok := t2.(Prim)
		return ok && t1.K == t2.K
	case Var:
		t2, ok := t2.(Var)
		return ok && t1.Name == t2.Name
	case Array:
		t2, ok := t2.(Array)
		return ok && t1.Rank == t2.Rank && t1.Unique == t2.Unique && Equal(t1.Elem, t2.Elem)
	case Arrow:
		t2, ok := t2.(Arrow)
		return ok && Equal(t1.Param, t2.Param) && Equal(t1.Result, t2.Result)
	case Record:
		t2, ok := t2.(Record)
		if !ok || len(t1.Fields) != len(t2.Fields) {
			return false
		}
		for k, ft := range t1.Fields {
			ft2, ok := t2.Fields[k]
			if !ok || !Equal(ft, ft2) {
				return false
			}
		}
		return true
	case App:
		t2, ok := t2.(App)
		if !ok || t1.Head != t2.Head || len(t1.Args) != len(t2.Args) {
			return false
		}
		for i := range t1.Args {
			if !Equal(t1.Args[i], t2.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsUnique reports whether consuming a value of this type invalidates
// other references: unique arrays, or records with any unique field.
func IsUnique(t Type) bool {
	switch t := t.(type) {
	case Array:
		return t.Unique
	case Record:
		for _, ft := range t.Fields {
			if IsUnique(ft) {
				return true
			}
		}
	}
	return false
}

// ToObservable strips uniqueness everywhere, yielding the type of a
// value that is merely read.
func ToObservable(t Type) Type {
	switch t := t.(type) {
	case Array:
		return Array{Elem: t.Elem, Rank: t.Rank, Unique: false, Als: t.Als.Copy()}
	case Record:
		fields := make(map[string]Type, len(t.Fields))
		for k, ft := range t.Fields {
			fields[k] = ToObservable(ft)
		}
		return Record{Fields: fields}
	default:
		return t
	}
}

// ToUnique marks arrays unique everywhere.
func ToUnique(t Type) Type {
	switch t := t.(type) {
	case Array:
		return Array{Elem: t.Elem, Rank: t.Rank, Unique: true, Als: t.Als.Copy()}
	case Record:
		fields := make(map[string]Type, len(t.Fields))
		for k, ft := range t.Fields {
			fields[k] = ToUnique(ft)
		}
		return Record{Fields: fields}
	default:
		return t
	}
}

// Diet describes what a function does to an argument.
type Diet int

const (
	ObserveArg Diet = iota
	ConsumeArg
)

// DietOf derives a parameter's diet from its type: unique-typed
// parameters are consumed, everything else is observed.
func DietOf(param Type) Diet {
	if IsUnique(param) {
		return ConsumeArg
	}
	return ObserveArg
}
