package checker

import (
	"strings"

	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/names"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// boundName is one identifier a pattern introduced, with its position
// for unused-variable diagnostics.
type boundName struct {
	V   names.VName
	Loc token.Pos
}

// bindPattern destructures p against t, extending the current scope.
// Duplicate names within one pattern are rejected. A binder of record
// type is not added to its own alias set: records have no identity
// beyond their fields.
func (c *Checker) bindPattern(p ast.Pattern, t types.Type) ([]boundName, *diagnostics.Diagnostic) {
	seen := map[string]token.Pos{}
	return c.bindPatternWith(p, t, seen)
}

func (c *Checker) bindPatternWith(p ast.Pattern, t types.Type, seen map[string]token.Pos) ([]boundName, *diagnostics.Diagnostic) {
	t = c.cons.Normalize(t)
	switch p := p.(type) {
	case *ast.PatId:
		if prev, dup := seen[p.Name]; dup {
			return nil, diagnostics.NewError(diagnostics.ErrN003, p.Loc,
				"`%s` bound twice in one pattern: also bound at %s", p.Name, prev)
		}
		seen[p.Name] = p.Loc
		vn := c.src.Fresh(p.Name)
		annotated := t
		if _, isRecord := t.(types.Record); !isRecord {
			annotated = types.AddAlias(t, vn)
		}
		p.VName = vn
		p.Type = annotated
		c.scope.BindValue(vn, BoundValue{Type: annotated})
		return []boundName{{V: vn, Loc: p.Loc}}, nil

	case *ast.PatWildcard:
		p.Type = t
		return nil, nil

	case *ast.PatRecord:
		if v, ok := t.(types.Var); ok && !c.cons.IsRigid(v.Name) {
			fields := make(map[string]types.Type, len(p.Fields))
			for _, f := range p.Fields {
				fields[f.Name] = c.newLiftedVar(f.Name)
			}
			if err := c.link(p.Loc, v.Name, types.Record{Fields: fields}); err != nil {
				return nil, err
			}
			t = c.cons.Normalize(t)
		}
		rec, ok := t.(types.Record)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrS002, p.Loc,
				"record pattern cannot match value of type `%s`", t)
		}
		if len(rec.Fields) != len(p.Fields) {
			return nil, diagnostics.NewError(diagnostics.ErrS002, p.Loc,
				"record pattern has %d fields but value of type `%s` has %d",
				len(p.Fields), rec, len(rec.Fields))
		}
		var bound []boundName
		for _, f := range p.Fields {
			ft, ok := rec.Fields[f.Name]
			if !ok {
				return nil, diagnostics.NewError(diagnostics.ErrS002, f.Loc,
					"value of type `%s` has no field `%s`", rec, f.Name)
			}
			fb, err := c.bindPatternWith(f.Pat, ft, seen)
			if err != nil {
				return nil, err
			}
			bound = append(bound, fb...)
		}
		p.Type = rec
		return bound, nil

	case *ast.PatAscript:
		declared, err := c.checkTypeExp(p.Decl)
		if err != nil {
			return nil, err
		}
		if err := c.unify(p.Loc, declared, t); err != nil {
			return nil, err
		}
		bound, err := c.bindPatternWith(p.Pat, c.cons.Normalize(declared), seen)
		if err != nil {
			return nil, err
		}
		p.Type = c.cons.Normalize(declared)
		return bound, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrS002, p.Pos(), "unsupported pattern")
}

// bindingBlock checks a binding's body with its occurrences isolated:
// the whole usage list is validated, occurrences mentioning the newly
// bound names are discarded, and the rest propagate upward. Bound
// names absent from every occurrence draw a non-fatal unused-variable
// diagnostic, unless marked to be ignored with a leading underscore.
func (c *Checker) bindingBlock(bound []boundName, f func() *diagnostics.Diagnostic) *diagnostics.Diagnostic {
	occs, err := c.collect(f)
	if err != nil {
		return err
	}
	if d := checkOccurrences(occs); d != nil {
		return d
	}
	used := allUsed(occs)
	boundSet := types.Aliases{}
	for _, b := range bound {
		boundSet[b.V] = struct{}{}
		if strings.HasPrefix(b.V.Base, "_") {
			continue
		}
		if !used.Contains(b.V) {
			c.warn(diagnostics.NewWarning(diagnostics.WarnW001, b.Loc,
				"unused variable `%s`", b.V.Base))
		}
	}
	for _, o := range occs {
		c.occur(Occurrence{
			Observed: o.Observed.Without(boundSet),
			Consumed: o.Consumed.Without(boundSet),
			Loc:      o.Loc,
		})
	}
	return nil
}
