// Package flow implements the Flow State (spec.md §4.1, component C4):
// an immutable-via-clone map from variable name to a flow type record,
// with declare/assign/narrow/merge operations and the fixed-point
// bookkeeping the Flow Analyzer needs for loops.
//
// Grounded on the teacher's inference_control.go statement-walking style
// and typesystem.Subst's map-cloning discipline, adapted from a
// substitution map to a per-variable flow record.
package flow

import "github.com/oxhq/semcore/internal/types"

// Termination marks why a flow state became unreachable.
type Termination int

const (
	NoTermination Termination = iota
	TerminatedReturn
	TerminatedBreak
	TerminatedContinue
)

// Type is the per-variable flow type record described in spec.md §3.
type Type struct {
	Declared       types.Type // set once, at declaration
	Current        types.Type // mutates with assignment/narrowing
	NarrowedFrom   types.Type // the union this narrowed from, nil if never narrowed
	IsPossiblyNull bool
}

// State is a point-in-time snapshot of every tracked variable. States
// are value-like: every branch clones the parent (Clone), and merges
// produce a new State (Merge) rather than mutating either input.
type State struct {
	vars        map[string]Type
	Termination Termination
}

// New returns an empty, non-terminated state.
func New() *State {
	return &State{vars: make(map[string]Type)}
}

// Declare binds name for the first time in this state. Idempotent per
// scope per spec.md §4.1: calling Declare again (e.g. because a child
// scope re-declares the same name) simply overwrites the entry — scope
// isolation itself is the symbol table's job (package symbols), not the
// flow state's.
func (s *State) Declare(name string, declared, initial types.Type) {
	s.vars[name] = Type{Declared: declared, Current: initial}
}

// Assign replaces name's current type and clears any narrowing record,
// per spec.md §4.1 ("clears narrowed_from unless called from narrowing").
func (s *State) Assign(name string, t types.Type) {
	ft := s.vars[name]
	ft.Current = t
	ft.NarrowedFrom = nil
	if _, ok := t.(types.Null); ok {
		ft.IsPossiblyNull = true
	}
	s.vars[name] = ft
}

// Narrow sets current to t, recording the prior current as NarrowedFrom,
// and clears IsPossiblyNull unless t is itself Null.
func (s *State) Narrow(name string, t types.Type) {
	ft, ok := s.vars[name]
	if !ok {
		ft = Type{Declared: types.Variant{}}
	}
	ft.NarrowedFrom = ft.Current
	ft.Current = t
	if _, isNull := t.(types.Null); !isNull {
		ft.IsPossiblyNull = false
	}
	s.vars[name] = ft
}

// MarkPossiblyNull / MarkNonNull are orthogonal to type, per spec.md §4.1.
func (s *State) MarkPossiblyNull(name string) {
	ft := s.vars[name]
	ft.IsPossiblyNull = true
	s.vars[name] = ft
}

func (s *State) MarkNonNull(name string) {
	ft := s.vars[name]
	ft.IsPossiblyNull = false
	s.vars[name] = ft
}

// MarkTerminated records that this state's path has ended (return,
// break, continue). Subsequent merges treat a terminated state as
// contributing nothing.
func (s *State) MarkTerminated(kind Termination) {
	s.Termination = kind
}

// IsTerminated reports whether this path is unreachable.
func (s *State) IsTerminated() bool {
	return s.Termination != NoTermination
}

// Get returns the flow type of name, or the zero Type (Declared nil) if
// untracked — callers should treat an untracked variable as Variant.
func (s *State) Get(name string) (Type, bool) {
	ft, ok := s.vars[name]
	return ft, ok
}

// CurrentType returns name's current type, or Variant if untracked.
func (s *State) CurrentType(name string) types.Type {
	if ft, ok := s.vars[name]; ok && ft.Current != nil {
		return ft.Current
	}
	return types.Variant{}
}

// Clone deep-copies this state (the map is value-typed per entry, so a
// shallow copy of the map itself is sufficient — no entry is ever
// mutated in place after being stored, every operation above replaces
// the map entry wholesale).
func (s *State) Clone() *State {
	clone := &State{vars: make(map[string]Type, len(s.vars)), Termination: s.Termination}
	for k, v := range s.vars {
		clone.vars[k] = v
	}
	return clone
}

// Names returns every tracked variable name, for Snapshot and tests.
func (s *State) Names() []string {
	out := make([]string, 0, len(s.vars))
	for k := range s.vars {
		out = append(out, k)
	}
	return out
}

// Snapshot captures, for each tracked variable, the set of type strings
// in its current type (one for a concrete type, several for a union).
// Two snapshots compare equal (via SnapshotEqual) when fixed-point
// iteration has stabilized.
func (s *State) Snapshot() map[string]map[string]bool {
	snap := make(map[string]map[string]bool, len(s.vars))
	for name, ft := range s.vars {
		set := make(map[string]bool)
		for _, m := range types.Members(ft.Current) {
			set[m.String()] = true
		}
		snap[name] = set
	}
	return snap
}

// SnapshotEqual reports whether two snapshots describe the same set of
// tracked variables with the same type-string sets.
func SnapshotEqual(a, b map[string]map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for name, aset := range a {
		bset, ok := b[name]
		if !ok || len(aset) != len(bset) {
			return false
		}
		for k := range aset {
			if !bset[k] {
				return false
			}
		}
	}
	return true
}
