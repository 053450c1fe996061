package flow

import "github.com/oxhq/semcore/internal/types"

// Merge combines two branch-end states a and b against their common
// parent (the pre-branch state, which simulates "branch not taken" for
// branch-less fallthroughs per spec.md §4.2). For every variable present
// in a, b, or parent, the merged current type is the union of the
// contributing branches' current types, omitting any branch whose state
// is terminated. A narrowed type is preserved only if both contributing
// branches narrowed to the same type. IsPossiblyNull is the disjunction
// of all contributing branches.
func Merge(a, b, parent *State) *State {
	out := New()

	names := make(map[string]bool)
	for _, n := range a.Names() {
		names[n] = true
	}
	for _, n := range b.Names() {
		names[n] = true
	}
	for _, n := range parent.Names() {
		names[n] = true
	}

	aLive := !a.IsTerminated()
	bLive := !b.IsTerminated()

	for name := range names {
		aFt, aHas := a.Get(name)
		bFt, bHas := b.Get(name)
		pFt, pHas := parent.Get(name)

		var contributing []Type
		if aLive && aHas {
			contributing = append(contributing, aFt)
		}
		if bLive && bHas {
			contributing = append(contributing, bFt)
		}
		// If neither live branch tracked the variable but the parent did
		// (e.g. both branches are terminated, or neither touches it),
		// fall back to the parent's record so the variable doesn't
		// silently disappear across the merge.
		if len(contributing) == 0 && pHas {
			contributing = append(contributing, pFt)
		}
		if len(contributing) == 0 {
			continue
		}

		merged := Type{}
		if pHas {
			merged.Declared = pFt.Declared
		} else {
			merged.Declared = contributing[0].Declared
		}

		var cur types.Type
		possiblyNull := false
		for _, c := range contributing {
			cur = types.Join(cur, c.Current)
			if c.IsPossiblyNull {
				possiblyNull = true
			}
		}
		merged.Current = cur
		merged.IsPossiblyNull = possiblyNull

		if len(contributing) >= 2 {
			allSameNarrow := true
			var first types.Type
			for i, c := range contributing {
				if c.NarrowedFrom == nil {
					allSameNarrow = false
					break
				}
				if i == 0 {
					first = c.Current
				} else if !c.Current.Equal(first) {
					allSameNarrow = false
					break
				}
			}
			if allSameNarrow {
				merged.NarrowedFrom = pFt.Current
				merged.Current = first
			}
		}

		out.vars[name] = merged
	}

	return out
}

// MergeInto performs the monotonic upward join used during loop
// fixed-point iteration (spec.md §4.2): every variable in other is
// unioned into s in place. It returns true iff any variable's type set
// grew, which the Flow Analyzer uses as one of its two stabilization
// signals (the other being Snapshot equality).
func (s *State) MergeInto(other *State) bool {
	changed := false
	for _, name := range other.Names() {
		otherFt, _ := other.Get(name)
		ft, ok := s.vars[name]
		if !ok {
			s.vars[name] = otherFt
			changed = true
			continue
		}
		joined := types.Join(ft.Current, otherFt.Current)
		if !joined.Equal(ft.Current) {
			changed = true
		}
		ft.Current = joined
		if otherFt.IsPossiblyNull && !ft.IsPossiblyNull {
			ft.IsPossiblyNull = true
			changed = true
		}
		s.vars[name] = ft
	}
	return changed
}
