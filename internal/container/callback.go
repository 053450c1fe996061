package container

import "github.com/oxhq/semcore/internal/types"

// ElementTypeCallback returns a function matching
// infer.Engine.ContainerProfile's signature, resolving a variable's
// element type from its accumulated value-slot evidence (spec.md §9's
// Open Question: container profile first, static table second). ok is
// false when the profile has no value evidence at all, letting the
// caller fall back to the static iterator-element-type table.
func ElementTypeCallback(profiles map[string]*Profile) func(string) (types.Type, bool) {
	return func(variable string) (types.Type, bool) {
		p, ok := profiles[variable]
		if !ok || len(p.Values) == 0 {
			return types.Variant{}, false
		}
		return p.ValueType().Type, true
	}
}
