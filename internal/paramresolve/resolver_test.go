package paramresolve

import (
	"testing"

	"github.com/oxhq/semcore/internal/config"
	"github.com/oxhq/semcore/internal/paramusage"
	"github.com/oxhq/semcore/internal/provider/builtin"
	"github.com/oxhq/semcore/internal/types"
)

func newResolver() *Resolver {
	return &Resolver{Provider: builtin.New(), Limits: config.Default()}
}

func TestResolveIsGuardWinsHighConfidence(t *testing.T) {
	r := newResolver()
	fp := &paramusage.Fingerprint{Param: "p", IsGuards: []string{"Node"}, Properties: map[string]bool{}}

	got := r.Resolve(fp)
	if len(got.Candidates) != 1 || got.Candidates[0].Type != "Node" || got.Candidates[0].Confidence != High {
		t.Fatalf("Candidates = %+v, want [{Node High}]", got.Candidates)
	}
	if !got.Type.Equal(types.Named{Name: "Node"}) {
		t.Errorf("Type = %s, want Node", got.Type.String())
	}
}

func TestResolveProviderIntersectionBySignature(t *testing.T) {
	r := newResolver()
	// .has(value) called with a String argument: Dictionary.has and
	// Array.has both take Variant, so both stay High via vacuous
	// compatibility with a Variant-typed parameter.
	fp := &paramusage.Fingerprint{
		Param:      "p",
		Properties: map[string]bool{},
		Calls: []paramusage.CallEvidence{
			{Name: "has", Args: []types.Type{types.Primitive{Name: "String"}}},
		},
	}

	got := r.Resolve(fp)
	names := map[string]bool{}
	for _, c := range got.Candidates {
		names[c.Type] = true
	}
	if !names["Array"] || !names["Dictionary"] {
		t.Errorf("Candidates = %+v, want Array and Dictionary both present", got.Candidates)
	}
	if _, ok := got.Type.(types.Union); !ok {
		t.Errorf("Type = %s, want a Union of >= 2 candidates", got.Type.String())
	}
}

func TestResolveContainerAffinityDemotesNonContainer(t *testing.T) {
	r := newResolver()
	// "size" is declared by Array, Dictionary, Image and XMLParser alike.
	// It counts as a container-affinity method, so the two non-container
	// types among the survivors are demoted to Low while Array and
	// Dictionary are left alone.
	fp := &paramusage.Fingerprint{
		Param:      "p",
		Properties: map[string]bool{},
		Calls: []paramusage.CallEvidence{
			{Name: "size"},
		},
	}

	got := r.Resolve(fp)
	seen := map[string]Confidence{}
	for _, c := range got.Candidates {
		seen[c.Type] = c.Confidence
	}
	if len(seen) != 4 {
		t.Fatalf("Candidates = %+v, want Array/Dictionary/Image/XMLParser all declaring size()", got.Candidates)
	}
	if seen["Image"] != Low || seen["XMLParser"] != Low {
		t.Errorf("Image/XMLParser confidences = %v/%v, want both Low (demoted)", seen["Image"], seen["XMLParser"])
	}
	if seen["Array"] == Low || seen["Dictionary"] == Low {
		t.Errorf("Array/Dictionary should not be demoted by container affinity, got %v/%v", seen["Array"], seen["Dictionary"])
	}
}

func TestResolveDropsSingletonsAndExcluded(t *testing.T) {
	r := newResolver()
	r.Limits.ExcludedTypes = []string{"Dictionary"}

	fp := &paramusage.Fingerprint{
		Param:      "p",
		IsGuards:   []string{"Engine", "Dictionary", "Node"},
		Properties: map[string]bool{},
	}

	got := r.Resolve(fp)
	for _, c := range got.Candidates {
		if c.Type == "Engine" {
			t.Errorf("singleton Engine should have been dropped, got %+v", got.Candidates)
		}
		if c.Type == "Dictionary" {
			t.Errorf("excluded Dictionary should have been dropped, got %+v", got.Candidates)
		}
	}
}

func TestResolveDedupesPackedArraysAgainstArray(t *testing.T) {
	r := newResolver()
	fp := &paramusage.Fingerprint{
		Param:      "p",
		IsGuards:   []string{"Array", "PackedInt32Array", "PackedByteArray"},
		Properties: map[string]bool{},
	}

	got := r.Resolve(fp)
	for _, c := range got.Candidates {
		if c.Type == "PackedInt32Array" || c.Type == "PackedByteArray" {
			t.Errorf("packed array candidate %s should have been deduped against Array, got %+v", c.Type, got.Candidates)
		}
	}
	found := false
	for _, c := range got.Candidates {
		if c.Type == "Array" {
			found = true
		}
	}
	if !found {
		t.Errorf("Array should survive dedup, got %+v", got.Candidates)
	}
}

func TestResolveNoEvidenceYieldsVariant(t *testing.T) {
	r := newResolver()
	fp := &paramusage.Fingerprint{Param: "p", Properties: map[string]bool{}}

	got := r.Resolve(fp)
	if !got.Type.Equal(types.Variant{}) {
		t.Errorf("Type = %s, want Variant for a parameter with no usage evidence", got.Type.String())
	}
}
