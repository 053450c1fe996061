// Package paramusage builds a structural usage fingerprint for a single
// method parameter (spec.md §4.5, component C8): every method called on
// it, every property read from it, every is-type guard that narrows it,
// and its iteration/indexing behavior. internal/paramresolve turns this
// fingerprint into a ranked set of candidate types.
package paramusage

import "github.com/oxhq/semcore/internal/types"

// CallEvidence records one call made through the parameter: the method
// name and the inferred type of each argument at that call site.
type CallEvidence struct {
	Name string
	Args []types.Type
}

// ArgumentPassage records a call site where the parameter itself was
// passed as an argument to another call, for cross-method fingerprint
// propagation.
type ArgumentPassage struct {
	Callee   string // best-effort name of the called function/method
	ArgIndex int
}

// Fingerprint is the structural usage profile of one parameter within one
// method body.
type Fingerprint struct {
	Param string

	Calls      []CallEvidence
	Properties map[string]bool

	// IsGuards / NotIsGuards hold the asserted type names from `is T` /
	// `not is T` (or `not (x is T)`) guards on the parameter.
	IsGuards    []string
	NotIsGuards []string

	Iterated bool
	// ElementTypes holds type names observed about the iteration
	// variable when the parameter is the subject of a for-loop.
	ElementTypes []string

	Indexed  bool
	KeyTypes []types.Type

	PassedAs []ArgumentPassage
}

func newFingerprint(param string) *Fingerprint {
	return &Fingerprint{Param: param, Properties: make(map[string]bool)}
}

// MethodNames returns the distinct method names called on the parameter.
func (f *Fingerprint) MethodNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range f.Calls {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// PropertyNames returns the distinct property names read from the
// parameter.
func (f *Fingerprint) PropertyNames() []string {
	names := make([]string, 0, len(f.Properties))
	for n := range f.Properties {
		names = append(names, n)
	}
	return names
}

// ArgsFor returns the recorded argument types for every call to method,
// in call-site order. Used by the resolver's signature-compatibility
// scoring (spec.md §4.5 step 3).
func (f *Fingerprint) ArgsFor(method string) [][]types.Type {
	var out [][]types.Type
	for _, c := range f.Calls {
		if c.Name == method {
			out = append(out, c.Args)
		}
	}
	return out
}
