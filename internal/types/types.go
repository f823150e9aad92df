// Package types defines the structural type grammar of the Vex checker:
// primitive scalars, multidimensional arrays carrying uniqueness and
// aliasing information, records, function arrows and type variables.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vexlang/vex/internal/names"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	typ()
}

// PrimKind enumerates the primitive scalar types.
type PrimKind int

const (
	Bool PrimKind = iota
	I8
	I16
	I32
	I64
	F32
	F64
)

func (k PrimKind) String() string {
	switch k {
	case Bool:
		return "bool"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	}
	return "<invalid prim>"
}

// IntKinds are the primitives an integer literal may resolve to.
var IntKinds = []PrimKind{I8, I16, I32, I64}

// FloatKinds are the primitives a decimal literal may resolve to.
var FloatKinds = []PrimKind{F32, F64}

// NumberKinds is the full overload set for arithmetic operators.
var NumberKinds = []PrimKind{I8, I16, I32, I64, F32, F64}

// Prim is a primitive scalar type.
type Prim struct {
	K PrimKind
}

func (p Prim) typ()           {}
func (p Prim) String() string { return p.K.String() }

// Array is a multidimensional array type. Rank is the number of
// dimensions, at least 1. Unique marks the value as having exactly one
// live reference, permitting in-place updates. Als is the set of bound
// names that may share the underlying storage.
type Array struct {
	Elem   Type
	Rank   int
	Unique bool
	Als    Aliases
}

func (a Array) typ() {}

func (a Array) String() string {
	var sb strings.Builder
	if a.Unique {
		sb.WriteByte('*')
	}
	for i := 0; i < a.Rank; i++ {
		sb.WriteString("[]")
	}
	// A function element is parenthesized so the rendering cannot be
	// read as an array-returning arrow.
	if _, isArrow := a.Elem.(Arrow); isArrow {
		sb.WriteByte('(')
		sb.WriteString(a.Elem.String())
		sb.WriteByte(')')
	} else {
		sb.WriteString(a.Elem.String())
	}
	return sb.String()
}

// MkArray builds an array type, flattening a nested array element into
// additional outer dimensions. The outer uniqueness and aliases govern
// the flattened result.
func MkArray(elem Type, rank int, unique bool, als Aliases) Array {
	if inner, ok := elem.(Array); ok {
		return Array{Elem: inner.Elem, Rank: rank + inner.Rank, Unique: unique, Als: als}
	}
	return Array{Elem: elem, Rank: rank, Unique: unique, Als: als}
}

// Peel removes n dimensions, as indexing does. The caller must have
// verified n <= a.Rank. A full peel yields the element type.
func (a Array) Peel(n int) Type {
	if n >= a.Rank {
		return a.Elem
	}
	return Array{Elem: a.Elem, Rank: a.Rank - n, Unique: a.Unique, Als: a.Als.Copy()}
}

// Record is a record type. Records have no identity beyond their fields.
type Record struct {
	Fields map[string]Type
}

func (r Record) typ() {}

func (r Record) String() string {
	keys := r.FieldNames()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, r.Fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FieldNames returns the record's field names in sorted order.
func (r Record) FieldNames() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Arrow is a function type. Als is the set of names a closure value may
// capture storage from.
type Arrow struct {
	Param  Type
	Result Type
	Als    Aliases
}

func (a Arrow) typ() {}

func (a Arrow) String() string {
	param := a.Param.String()
	if _, ok := a.Param.(Arrow); ok {
		param = "(" + param + ")"
	}
	return fmt.Sprintf("%s -> %s", param, a.Result)
}

// Var is a type variable. Whether it is rigid (a declared parameter) or
// flexible (substitutable) is decided by the checker's constraint store,
// not by the representation.
type Var struct {
	Name names.VName
}

func (v Var) typ()           {}
func (v Var) String() string { return v.Name.String() }

// App is an application of a named abstract type to arguments, e.g. a
// lifted type parameter applied inside a signature. Two applications
// unify argument-wise only when head and arity agree.
type App struct {
	Head names.VName
	Args []Type
}

func (a App) typ() {}

func (a App) String() string {
	parts := make([]string, 0, len(a.Args)+1)
	parts = append(parts, a.Head.String())
	for _, arg := range a.Args {
		s := arg.String()
		if strings.ContainsRune(s, ' ') {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// TypeParam is a declared (or generalized) type parameter. Lifted
// parameters may be instantiated with function types.
type TypeParam struct {
	Name   names.VName
	Lifted bool
}

func (p TypeParam) String() string {
	if p.Lifted {
		return "^" + p.Name.String()
	}
	return "'" + p.Name.String()
}
