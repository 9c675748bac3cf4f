package workflow

import (
	"testing"
)

func TestComputeDiff_CollectsDifferingFields(t *testing.T) {
	current := map[string]string{
		"full_name":  "Amaka Okafor",
		"occupation": "Trader",
		"biography":  "",
	}
	proposed := map[string]string{
		"full_name":  "Amaka Okafor",  // unchanged
		"occupation": "Market trader", // changed
		"biography":  "Born in Enugu.",
	}

	diff := ComputeDiff(current, proposed)

	if len(diff) != 2 {
		t.Fatalf("expected 2 changed fields, got %d: %v", len(diff), diff)
	}
	if ch, ok := diff["occupation"]; !ok || ch.Old != "Trader" || ch.New != "Market trader" {
		t.Errorf("occupation change: got %+v", ch)
	}
	if ch, ok := diff["biography"]; !ok || ch.Old != "" || ch.New != "Born in Enugu." {
		t.Errorf("biography change: got %+v", ch)
	}
}

func TestComputeDiff_TrimmedEqualValuesAreNotChanges(t *testing.T) {
	current := map[string]string{"biography": "He farmed yams."}
	proposed := map[string]string{"biography": "  He farmed yams.  "}

	diff := ComputeDiff(current, proposed)

	if len(diff) != 0 {
		t.Errorf("expected no change for trimmed-equal values, got %v", diff)
	}
}

func TestComputeDiff_AbsentCurrentFieldComparesAsEmpty(t *testing.T) {
	diff := ComputeDiff(map[string]string{}, map[string]string{"clan_name": "Umueze"})

	if ch, ok := diff["clan_name"]; !ok || ch.Old != "" || ch.New != "Umueze" {
		t.Fatalf("expected change from empty, got %v", diff)
	}

	// Proposing empty over absent is not a change.
	diff = ComputeDiff(map[string]string{}, map[string]string{"clan_name": "   "})
	if len(diff) != 0 {
		t.Errorf("expected blank-over-absent to be no change, got %v", diff)
	}
}

func TestComputeDiff_KeepsOriginalValues(t *testing.T) {
	current := map[string]string{"occupation": " Trader "}
	proposed := map[string]string{"occupation": "Farmer "}

	diff := ComputeDiff(current, proposed)

	ch := diff["occupation"]
	if ch.Old != " Trader " || ch.New != "Farmer " {
		t.Errorf("expected original values preserved, got %+v", ch)
	}
}
