package indexer

import (
	"testing"

	"github.com/eventfoto/face-indexer/internal/photostore"
)

func descs(names ...string) []photostore.PhotoDescriptor {
	out := make([]photostore.PhotoDescriptor, len(names))
	for i, n := range names {
		out[i] = photostore.PhotoDescriptor{
			Key:  "gala/main/" + n,
			Name: n,
			Path: "gala/main",
		}
	}
	return out
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.NormalizedID
	}
	return out
}

func TestBuildPlanPartition(t *testing.T) {
	photos := descs("a.jpg", "b.jpg", "c.jpg", "d.jpg")
	local := []string{"a.jpg", "c.jpg"}
	remote := []string{"a.jpg", "b.jpg"}

	plan := BuildPlan(photos, local, remote)

	// a: both -> consistent
	if got := ids(plan.Consistent); len(got) != 1 || got[0] != "a.jpg" {
		t.Errorf("Consistent = %v, want [a.jpg]", got)
	}
	// b: remote only -> repair
	if got := ids(plan.Repair); len(got) != 1 || got[0] != "b.jpg" {
		t.Errorf("Repair = %v, want [b.jpg]", got)
	}
	// c: local only -> remote wins, reindex; d: nowhere -> index
	if got := ids(plan.NeedsIndex); len(got) != 2 || got[0] != "c.jpg" || got[1] != "d.jpg" {
		t.Errorf("NeedsIndex = %v, want [c.jpg d.jpg]", got)
	}
	if len(plan.Duplicates) != 0 {
		t.Errorf("Unexpected duplicates: %v", ids(plan.Duplicates))
	}
}

func TestBuildPlanEmptySets(t *testing.T) {
	plan := BuildPlan(descs("x.jpg"), nil, nil)
	if len(plan.NeedsIndex) != 1 || len(plan.Consistent) != 0 || len(plan.Repair) != 0 {
		t.Errorf("Fresh event should put everything in NeedsIndex: %+v", plan)
	}

	plan = BuildPlan(nil, []string{"a"}, []string{"b"})
	if len(plan.NeedsIndex)+len(plan.Consistent)+len(plan.Repair)+len(plan.Duplicates) != 0 {
		t.Errorf("Empty enumeration should produce empty plan: %+v", plan)
	}
}

func TestBuildPlanNormalizesBeforeComparing(t *testing.T) {
	// the store holds the raw name, the sets hold normalized ids
	photos := descs("IMG 0042.jpg")
	plan := BuildPlan(photos, nil, []string{"IMG_0042.jpg"})

	if len(plan.Repair) != 1 {
		t.Fatalf("Expected normalized name to match remote set, plan: %+v", plan)
	}
	if plan.Repair[0].NormalizedID != "IMG_0042.jpg" {
		t.Errorf("NormalizedID = %q", plan.Repair[0].NormalizedID)
	}
}

func TestBuildPlanDetectsCollisions(t *testing.T) {
	// both names normalize to IMG_0042.jpg
	photos := descs("IMG 0042.jpg", "IMG#0042.jpg")
	plan := BuildPlan(photos, nil, nil)

	if len(plan.NeedsIndex) != 1 {
		t.Errorf("Expected 1 item to index, got %d", len(plan.NeedsIndex))
	}
	if len(plan.Duplicates) != 1 {
		t.Fatalf("Expected 1 duplicate, got %d", len(plan.Duplicates))
	}
	if plan.Duplicates[0].Desc.Name != "IMG#0042.jpg" {
		t.Errorf("Wrong photo flagged as duplicate: %s", plan.Duplicates[0].Desc.Name)
	}
}

func TestBuildPlanEmptyNormalizedID(t *testing.T) {
	// a name of only disallowed characters normalizes to the empty string
	plan := BuildPlan([]photostore.PhotoDescriptor{{Name: "???", Key: "gala/???"}}, nil, nil)
	if len(plan.Duplicates) != 1 {
		t.Errorf("Expected unusable name in Duplicates, got %+v", plan)
	}
	if len(plan.NeedsIndex) != 0 {
		t.Errorf("Unusable name must not be submitted: %+v", plan.NeedsIndex)
	}
}
