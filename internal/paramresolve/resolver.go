// Package paramresolve turns a parameter usage fingerprint (C8,
// internal/paramusage) into a ranked set of candidate types (spec.md
// §4.5, component C9), consulting the runtime provider's type catalog.
package paramresolve

import (
	"sort"

	"github.com/oxhq/semcore/internal/config"
	"github.com/oxhq/semcore/internal/paramusage"
	"github.com/oxhq/semcore/internal/provider"
	"github.com/oxhq/semcore/internal/types"
)

// Confidence ranks how strongly usage evidence supports a candidate type.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "Low"
	}
}

// Candidate is one surviving type, with the confidence it was resolved
// at.
type Candidate struct {
	Type       string
	Confidence Confidence
}

// Resolved is the final output of the ranking pipeline.
type Resolved struct {
	// Type is a Union of surviving candidates when >= 2 remain, a single
	// Named type when exactly 1 remains, or Variant when none remain.
	Type types.Type

	// Candidates lists every surviving type with its confidence, most
	// confident first, for callers that want the full ranked set rather
	// than just the collapsed Type.
	Candidates []Candidate
}

// packedArrayTypes mirrors internal/infer's container base-name table for
// the packed-array family (spec.md §4.6).
var packedArrayTypes = map[string]bool{
	"PackedInt32Array": true, "PackedInt64Array": true, "PackedByteArray": true,
	"PackedStringArray": true, "PackedFloat32Array": true, "PackedFloat64Array": true,
	"PackedVector2Array": true, "PackedVector3Array": true, "PackedColorArray": true,
}

// containerMethodNames are the method names step 4 treats as evidence of
// container-like usage (spec.md §4.5 step 4).
var containerMethodNames = map[string]bool{
	"has": true, "size": true, "keys": true, "append": true, "filter": true,
	"push_back": true, "push_front": true, "get": true, "erase": true,
}

// Resolver ranks candidate types for a parameter fingerprint against a
// runtime provider's catalog. Resolved results are memoized per
// fingerprint (keyed by pointer identity, since a fresh Fingerprint is
// built per analysis pass) and invalidated in one shot by
// InvalidateRuntimeIndex, for callers that rebuild the provider's
// duck-type registry (new types declared, a file reparsed) and need
// every previously-resolved candidate set treated as stale without
// walking and deleting each entry individually.
type Resolver struct {
	Provider provider.Provider
	Limits   config.Limits

	generation int
	cache      map[*paramusage.Fingerprint]resolverCacheEntry
}

type resolverCacheEntry struct {
	generation int
	result     Resolved
}

// InvalidateRuntimeIndex bumps the resolver's generation counter,
// treating every memoized Resolve result as stale. Cheap and O(1)
// regardless of how many fingerprints were previously resolved: the
// stale entries are left in the map and simply never match generation
// again, reclaimed lazily as Resolve overwrites them.
func (r *Resolver) InvalidateRuntimeIndex() {
	r.generation++
}

// Resolve runs the 8-step ranking pipeline from spec.md §4.5 over fp.
func (r *Resolver) Resolve(fp *paramusage.Fingerprint) Resolved {
	if r.cache == nil {
		r.cache = make(map[*paramusage.Fingerprint]resolverCacheEntry)
	}
	if entry, ok := r.cache[fp]; ok && entry.generation == r.generation {
		return entry.result
	}

	candidates := make(map[string]Confidence)

	// Step 1: each `is T` guard is a High-confidence candidate outright.
	for _, t := range fp.IsGuards {
		raise(candidates, t, High)
	}

	required := fp.MethodNames()
	requiredProps := fp.PropertyNames()

	// Step 2: provider intersection of types declaring every required
	// method and every required property.
	pool := r.intersection(required, requiredProps)

	// Step 3: signature-compatibility scoring for each pool candidate.
	// Guard-sourced candidates already at High are never re-scored down.
	for _, t := range pool {
		if candidates[t] == High {
			continue
		}
		raise(candidates, t, r.scoreSignature(t, fp))
	}

	// Step 4: container-affinity demotion.
	for t := range candidates {
		if r.demotedByContainerAffinity(t, required) {
			candidates[t] = Low
		}
	}

	// Step 5: drop known singletons.
	for _, s := range r.Limits.SingletonTypes {
		delete(candidates, s)
	}

	// Step 6: deduplicate packed arrays against a surviving Array.
	r.dedupePackedArrays(candidates, required)

	// Step 7: exclude configured types.
	for _, ex := range r.Limits.ExcludedTypes {
		delete(candidates, ex)
	}

	result := emit(candidates)
	r.cache[fp] = resolverCacheEntry{generation: r.generation, result: result}
	return result
}

// raise sets candidates[t] to conf unless t is already recorded at an
// equal or higher confidence.
func raise(candidates map[string]Confidence, t string, conf Confidence) {
	if cur, ok := candidates[t]; !ok || conf > cur {
		candidates[t] = conf
	}
}

// intersection returns the provider types that declare every name in
// methods and every name in props (spec.md §4.5 step 2).
func (r *Resolver) intersection(methods, props []string) []string {
	if len(methods) == 0 && len(props) == 0 {
		return nil
	}

	var sets [][]string
	for _, m := range methods {
		sets = append(sets, r.Provider.FindTypesWithMethod(m))
	}
	for _, p := range props {
		sets = append(sets, r.Provider.FindTypesWithProperty(p))
	}
	if len(sets) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, set := range sets {
		seen := make(map[string]bool)
		for _, t := range set {
			if seen[t] {
				continue
			}
			seen[t] = true
			counts[t]++
		}
	}

	var out []string
	for t, n := range counts {
		if n == len(sets) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// scoreSignature implements spec.md §4.5 step 3: compare each recorded
// call's argument types against the candidate's declared parameter types.
func (r *Resolver) scoreSignature(t string, fp *paramusage.Fingerprint) Confidence {
	total, compatible := 0, 0
	for _, name := range fp.MethodNames() {
		member, ok := r.Provider.GetMember(t, name)
		if !ok {
			continue
		}
		for _, args := range fp.ArgsFor(name) {
			for i, arg := range args {
				if i >= len(member.Parameters) {
					break
				}
				total++
				if r.argCompatible(arg, member.Parameters[i].Type) {
					compatible++
				}
			}
		}
	}
	switch {
	case total == 0:
		return High
	case compatible == total:
		return High
	case compatible > 0:
		return Medium
	default:
		return Low
	}
}

func (r *Resolver) argCompatible(arg types.Type, paramType string) bool {
	if paramType == "" || paramType == "Variant" {
		return true
	}
	if types.IsVariant(arg) {
		return true
	}
	return r.Provider.IsAssignableTo(typeName(arg), paramType)
}

func typeName(t types.Type) string {
	switch v := t.(type) {
	case types.Named:
		return v.Name
	case types.Primitive:
		return v.Name
	case types.Generic:
		return v.Base
	default:
		return t.String()
	}
}

// demotedByContainerAffinity implements spec.md §4.5 step 4: a
// non-container candidate is demoted when at least half the required
// methods look like container operations.
func (r *Resolver) demotedByContainerAffinity(t string, required []string) bool {
	if len(required) == 0 || isContainerTypeName(t) {
		return false
	}
	hits := 0
	for _, m := range required {
		if containerMethodNames[m] {
			hits++
		}
	}
	return hits*2 >= len(required)
}

func isContainerTypeName(name string) bool {
	return name == "Array" || name == "Dictionary" || packedArrayTypes[name]
}

// dedupePackedArrays implements spec.md §4.5 step 6: when Array and at
// least two packed-array types survive, and the required methods are all
// common to Array and every surviving packed-array type, drop the
// packed-array candidates in favor of Array alone.
func (r *Resolver) dedupePackedArrays(candidates map[string]Confidence, required []string) {
	if _, ok := candidates["Array"]; !ok {
		return
	}
	var packed []string
	for t := range candidates {
		if packedArrayTypes[t] {
			packed = append(packed, t)
		}
	}
	if len(packed) < 2 {
		return
	}
	for _, m := range required {
		if _, ok := r.Provider.GetMember("Array", m); !ok {
			return
		}
		for _, t := range packed {
			if _, ok := r.Provider.GetMember(t, m); !ok {
				return
			}
		}
	}
	for _, t := range packed {
		delete(candidates, t)
	}
}

// emit implements spec.md §4.5 step 8.
func emit(candidates map[string]Confidence) Resolved {
	if len(candidates) == 0 {
		return Resolved{Type: types.Variant{}}
	}

	names := make([]string, 0, len(candidates))
	for t := range candidates {
		names = append(names, t)
	}
	sort.Slice(names, func(i, j int) bool {
		if candidates[names[i]] != candidates[names[j]] {
			return candidates[names[i]] > candidates[names[j]]
		}
		return names[i] < names[j]
	})

	out := make([]Candidate, len(names))
	for i, n := range names {
		out[i] = Candidate{Type: n, Confidence: candidates[n]}
	}

	if len(names) == 1 {
		return Resolved{Type: types.Named{Name: names[0]}, Candidates: out}
	}

	members := make([]types.Type, len(names))
	for i, n := range names {
		members[i] = types.Named{Name: n}
	}
	return Resolved{Type: types.Union{Members: members}, Candidates: out}
}
