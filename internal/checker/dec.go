package checker

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
)

// CheckDec checks one top-level definition against the current scope,
// filling its VName, Type and AllParams annotations. Every expression
// annotation in the body is finalized through the constraint store
// afterwards, so callers see fully substituted types.
func (c *Checker) CheckDec(d *ast.ValDec) *diagnostics.Diagnostic {
	if !d.Loc.Known() {
		return diagnostics.NewError(diagnostics.ErrS004, d.Loc,
			"definition `%s` carries no source location", d.Name)
	}
	funT, all, err := c.checkFunction(d.Loc, d.TypeParams, d.Params, d.RetDecl, d.Body, true)
	if err != nil {
		return err
	}
	d.VName = c.src.Fresh(d.Name)
	d.Type = c.resolveAnnotation(funT)
	d.AllParams = all

	ast.MapExpTypes(d.Body, c.resolveAnnotation)
	for _, p := range d.Params {
		ast.MapPatternTypes(p, c.resolveAnnotation)
	}
	return nil
}

// CheckProgram checks every definition in order, accumulating earlier
// definitions into the scope seen by later ones. Definitions are
// isolated: one failing does not stop the rest, and each gets a fresh
// constraint store. The returned slice holds errors followed by any
// warnings, or nil for a clean program.
func CheckProgram(prog *ast.Program, root *Scope, src *names.Source) []*diagnostics.Diagnostic {
	if root == nil {
		root = Intrinsics()
	} else {
		root = root.Copy()
	}
	if src == nil {
		src = names.NewSource()
	}

	var diags []*diagnostics.Diagnostic
	for _, d := range prog.Decs {
		c := New(root, src)
		if err := c.CheckDec(d); err != nil {
			diags = append(diags, err.Frame("in definition `%s`", d.Name))
		} else {
			root.BindValue(d.VName, BoundValue{TypeParams: d.AllParams, Type: d.Type})
		}
		diags = append(diags, c.Warnings()...)
	}
	return diags
}
