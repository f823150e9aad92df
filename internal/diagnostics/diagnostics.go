// Package diagnostics defines the coded, position-carrying diagnostics
// emitted by the checker and rendered by the driver.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/vexlang/vex/internal/token"
)

// Code identifies a diagnostic kind.
type Code string

const (
	// Name resolution
	ErrN001 Code = "N001" // unknown variable
	ErrN002 Code = "N002" // unknown type
	ErrN003 Code = "N003" // duplicate name in pattern

	// Unification
	ErrT001 Code = "T001" // type mismatch
	ErrT002 Code = "T002" // occurs check / infinite type
	ErrT003 Code = "T003" // record field set mismatch
	ErrT004 Code = "T004" // arity mismatch

	// Ambiguity
	ErrT010 Code = "T010" // ambiguous overloaded literal
	ErrT011 Code = "T011" // ambiguous equality constraint
	ErrT012 Code = "T012" // type parameter declared but unused

	// Uniqueness and consumption
	ErrU001 Code = "U001" // use after consume
	ErrU002 Code = "U002" // consume after consume
	ErrU003 Code = "U003" // consuming parameter passed non-unique argument
	ErrU004 Code = "U004" // in-place update value aliases its source
	ErrU005 Code = "U005" // unique return value aliases a parameter
	ErrU006 Code = "U006" // returned values alias each other
	ErrU007 Code = "U007" // loop alias escape

	// Structural
	ErrS001 Code = "S001" // wrong argument count
	ErrS002 Code = "S002" // pattern shape mismatch
	ErrS003 Code = "S003" // indexing rank mismatch
	ErrS004 Code = "S004" // internal: missing source location
	ErrS005 Code = "S005" // invalid dimension permutation

	// Warnings
	WarnW001 Code = "W001" // unused variable
)

// Severity distinguishes fatal diagnostics from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is a structured checker message. Frames hold breadcrumb
// context recorded innermost-first, e.g. which outer type comparison a
// failing unification occurred within.
type Diagnostic struct {
	Code     Code
	Pos      token.Pos
	Message  string
	Severity Severity
	Frames   []string
}

// NewError builds a fatal diagnostic.
func NewError(code Code, pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// NewWarning builds a non-fatal diagnostic.
func NewWarning(code Code, pos token.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	}
}

// Frame appends a breadcrumb context frame. Frames accumulate
// innermost-first as an error unwinds.
func (d *Diagnostic) Frame(format string, args ...interface{}) *Diagnostic {
	d.Frames = append(d.Frames, fmt.Sprintf(format, args...))
	return d
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: [%s] %s", d.Pos, d.Code, d.Message)
	for _, f := range d.Frames {
		sb.WriteString("\n  ")
		sb.WriteString(f)
	}
	return sb.String()
}
