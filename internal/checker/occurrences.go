package checker

import (
	"github.com/vexlang/vex/internal/diagnostics"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/types"
)

// Occurrence records which names one expression observed and consumed.
// An occurrence with both sets empty carries no information.
type Occurrence struct {
	Observed types.Aliases
	Consumed types.Aliases
	Loc      token.Pos
}

func (o Occurrence) empty() bool {
	return len(o.Observed) == 0 && len(o.Consumed) == 0
}

// Occurrences accumulate left to right through checking.
type Occurrences []Occurrence

func observation(als types.Aliases, loc token.Pos) Occurrence {
	return Occurrence{Observed: als, Loc: loc}
}

func consumption(als types.Aliases, loc token.Pos) Occurrence {
	return Occurrence{Consumed: als, Loc: loc}
}

// allConsumed is the union of every consumed set.
func allConsumed(occs Occurrences) types.Aliases {
	out := types.Aliases{}
	for _, o := range occs {
		out = out.Union(o.Consumed)
	}
	return out
}

// allUsed is the union of every observed and consumed set.
func allUsed(occs Occurrences) types.Aliases {
	out := types.Aliases{}
	for _, o := range occs {
		out = out.Union(o.Observed).Union(o.Consumed)
	}
	return out
}

// seqOccurrences composes occ1 before occ2. A name read in occ1 but
// consumed in occ2 drops from occ1's observed set: only the later
// consumption matters for error reporting from here on.
func seqOccurrences(occ1, occ2 Occurrences) Occurrences {
	cons2 := allConsumed(occ2)
	out := make(Occurrences, 0, len(occ1)+len(occ2))
	for _, o := range occ1 {
		filtered := Occurrence{
			Observed: o.Observed.Without(cons2),
			Consumed: o.Consumed.Copy(),
			Loc:      o.Loc,
		}
		if !filtered.empty() {
			out = append(out, filtered)
		}
	}
	return append(out, occ2...)
}

// altOccurrences composes two mutually exclusive branches. From occ1,
// names consumed in occ2 are stripped from both sets; from occ2, names
// consumed in occ1 are stripped from the observed set only. The
// asymmetry is deliberate and load-bearing: it makes consumption in
// both branches count once while keeping the later branch's
// consumptions visible to the continuation.
func altOccurrences(occ1, occ2 Occurrences) Occurrences {
	cons1 := allConsumed(occ1)
	cons2 := allConsumed(occ2)
	out := make(Occurrences, 0, len(occ1)+len(occ2))
	for _, o := range occ1 {
		filtered := Occurrence{
			Observed: o.Observed.Without(cons2),
			Consumed: o.Consumed.Without(cons2),
			Loc:      o.Loc,
		}
		if !filtered.empty() {
			out = append(out, filtered)
		}
	}
	for _, o := range occ2 {
		filtered := Occurrence{
			Observed: o.Observed.Without(cons1),
			Consumed: o.Consumed.Copy(),
			Loc:      o.Loc,
		}
		if !filtered.empty() {
			out = append(out, filtered)
		}
	}
	return out
}

type usage struct {
	consumed bool
	loc      token.Pos
}

// checkOccurrences validates an occurrence list that will not be
// composed further: any name both consumed and used is a conflict.
// Sequential observe-then-consume pairs were already filtered out by
// seqOccurrences, so a surviving pair is genuinely unordered or a true
// use-after-consume.
func checkOccurrences(occs Occurrences) *diagnostics.Diagnostic {
	seen := map[string]usage{}
	for _, o := range occs {
		for _, v := range o.Observed.Names() {
			key := v.String()
			prev, ok := seen[key]
			if ok && prev.consumed {
				return useAfterConsume(v.Base, o.Loc, prev.loc)
			}
			if !ok {
				seen[key] = usage{consumed: false, loc: o.Loc}
			}
		}
		for _, v := range o.Consumed.Names() {
			key := v.String()
			if prev, ok := seen[key]; ok {
				if prev.consumed {
					first, second := prev.loc, o.Loc
					if second.Before(first) {
						first, second = second, first
					}
					return diagnostics.NewError(diagnostics.ErrU002, second,
						"`%s` consumed twice: also consumed at %s", v.Base, first)
				}
				return useAfterConsume(v.Base, prev.loc, o.Loc)
			}
			seen[key] = usage{consumed: true, loc: o.Loc}
		}
	}
	return nil
}

func useAfterConsume(name string, use, consume token.Pos) *diagnostics.Diagnostic {
	return diagnostics.NewError(diagnostics.ErrU001, use,
		"`%s` used after being consumed at %s", name, consume)
}
