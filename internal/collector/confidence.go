package collector

import (
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/provider"
	"github.com/oxhq/semcore/internal/types"
)

// typeName extracts the runtime-provider type name a member lookup
// should be tried against, or "" if t carries no single nameable type
// (Variant, Union — those are handled by their own branches in
// MemberAccessConfidence).
func typeName(t types.Type) string {
	switch tt := t.(type) {
	case types.Named:
		return tt.Name
	case types.Primitive:
		return tt.Name
	case types.Generic:
		return tt.Base
	default:
		return ""
	}
}

// MemberAccessConfidence implements spec.md §4.7's confidence policy and
// resolves Open Question 2 (spec.md §9): strictly more than half of a
// union's members declaring the member is a Strict-eligible majority,
// at least one is Potential, none is NameMatch. A concretely-typed
// receiver is checked against the project's own class table (and its
// inheritance chain) before the runtime provider, so a user-declared
// class's own member grades Strict even when the provider has never
// heard of that class.
func MemberAccessConfidence(engine *infer.Engine, receiver types.Type, member string) Confidence {
	prov := engine.Provider
	switch recv := receiver.(type) {
	case types.Union:
		declared := 0
		for _, m := range recv.Members {
			if hasMember(engine, typeName(m), member) {
				declared++
			}
		}
		switch {
		case declared*2 > len(recv.Members):
			return Strict
		case declared > 0:
			return Potential
		default:
			return NameMatch
		}
	case types.Variant:
		if existsAnywhere(prov, member) {
			return Potential
		}
		return NameMatch
	default:
		name := typeName(receiver)
		if name == "" {
			if existsAnywhere(prov, member) {
				return Potential
			}
			return NameMatch
		}
		if hasMember(engine, name, member) {
			return Strict
		}
		if existsAnywhere(prov, member) {
			return Potential
		}
		return NameMatch
	}
}

func hasMember(engine *infer.Engine, typeName, member string) bool {
	if typeName == "" {
		return false
	}
	if _, _, _, ok := engine.ClassMemberInChain(typeName, member); ok {
		return true
	}
	_, ok := engine.Provider.GetMember(typeName, member)
	return ok
}

func existsAnywhere(prov provider.Provider, member string) bool {
	if len(prov.FindTypesWithMethod(member)) > 0 {
		return true
	}
	return len(prov.FindTypesWithProperty(member)) > 0
}
