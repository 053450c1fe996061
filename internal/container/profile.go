// Package container builds a Container Usage Profile per variable
// (spec.md §4.6, component C10): the accumulated evidence for what a
// collection variable's value and key slots actually hold, gathered from
// index assignments, append-family calls, and dictionary lookups.
package container

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/types"
)

// UsageKind distinguishes how a piece of evidence was observed.
type UsageKind int

const (
	IndexAssignment UsageKind = iota
	Append
	PushBack
	PushFront
	KeyAssignment
	DictionaryGet
)

func (k UsageKind) String() string {
	switch k {
	case IndexAssignment:
		return "IndexAssignment"
	case Append:
		return "Append"
	case PushBack:
		return "PushBack"
	case PushFront:
		return "PushFront"
	case KeyAssignment:
		return "KeyAssignment"
	case DictionaryGet:
		return "DictionaryGet"
	default:
		return "Unknown"
	}
}

// Evidence is one observation of a concrete type flowing into a value or
// key slot, with the AST node it was observed at for later refinement.
type Evidence struct {
	Type   types.Type
	Usage  UsageKind
	Source ast.NodeID
}

// Profile accumulates value-slot and key-slot evidence for one variable
// across a method body.
type Profile struct {
	Variable string
	Values   []Evidence
	Keys     []Evidence
}

// Inferred is the result of unioning a profile's evidence for one slot.
type Inferred struct {
	Type types.Type
	// Derivable marks a slot with no evidence of its own but for which
	// the variable has evidence in its other slot, meaning it is still a
	// container worth refining later rather than truly untyped.
	Derivable bool
}

// ValueType unions the evidence recorded for this profile's value slot
// (from IndexAssignment, Append, PushBack, PushFront).
func (p *Profile) ValueType() Inferred {
	return computeInferredType(p.Values, len(p.Keys) > 0)
}

// KeyType unions the evidence recorded for this profile's key slot (from
// KeyAssignment, DictionaryGet).
func (p *Profile) KeyType() Inferred {
	return computeInferredType(p.Keys, len(p.Values) > 0)
}

func computeInferredType(evs []Evidence, otherSlotHasEvidence bool) Inferred {
	if len(evs) == 0 {
		return Inferred{Type: types.Variant{}, Derivable: otherSlotHasEvidence}
	}

	seen := make(map[string]types.Type)
	hasInt, hasFloat := false, false
	for _, e := range evs {
		if p, ok := e.Type.(types.Primitive); ok {
			if p.Name == "Int" {
				hasInt = true
			}
			if p.Name == "Float" {
				hasFloat = true
			}
		}
		seen[e.Type.String()] = e.Type
	}

	// Mixed int+float evidence collapses to float (spec.md §4.6).
	if hasInt && hasFloat {
		delete(seen, types.Primitive{Name: "Int"}.String())
		seen[types.Primitive{Name: "Float"}.String()] = types.Primitive{Name: "Float"}
	}

	if len(seen) == 1 {
		for _, t := range seen {
			return Inferred{Type: t}
		}
	}

	members := make([]types.Type, 0, len(seen))
	for _, t := range seen {
		members = append(members, t)
	}
	return Inferred{Type: types.NormalizeUnion(members...)}
}
