package patch

import "testing"

func TestDeduplicateGroupsEquivalentPatches(t *testing.T) {
	// Same change written three ways: plain, with git metadata, with
	// tabs and trailing whitespace. All normalize to one canonical form.
	plain := "--- a/f.go\n+++ b/f.go\n+x := 1"
	withMeta := "diff --git a/f.go b/f.go\nindex abc1234..def5678 100644\n--- a/f.go\n+++ b/f.go\n@@ -1,1 +1,1 @@\n+x := 1"
	withTabs := "--- a/f.go\n+++ b/f.go\n+x := 1  "
	other := "--- a/g.go\n+++ b/g.go\n-y := 2"

	unique := Deduplicate([]string{plain, withMeta, other, withTabs})

	if len(unique) != 2 {
		t.Fatalf("expected 2 unique patches, got %d", len(unique))
	}

	first := unique[0]
	if first.OriginalIndex != 0 {
		t.Errorf("canonical index = %d, want 0 (first occurrence)", first.OriginalIndex)
	}
	if first.OriginalContent != plain {
		t.Errorf("canonical content = %q, want the first occurrence", first.OriginalContent)
	}
	if first.OccurrenceCount != 3 {
		t.Errorf("occurrence count = %d, want 3", first.OccurrenceCount)
	}
}

func TestDeduplicateConservation(t *testing.T) {
	patches := []string{
		"--- a/f.go\n+++ b/f.go\n+a",
		"",
		"--- a/f.go\n+++ b/f.go\n+a",
		"--- a/g.go\n+++ b/g.go\n+b",
		"   ",
		"diff --git a/h.go b/h.go\nindex 1111111..2222222 100644", // metadata only, normalizes to empty
		"--- a/f.go\n+++ b/f.go\n+a",
	}

	unique := Deduplicate(patches)

	sum := 0
	for _, p := range unique {
		sum += p.OccurrenceCount
	}
	// 4 inputs survive normalization: three copies of one patch plus one other.
	if sum != 4 {
		t.Errorf("occurrence sum = %d, want 4", sum)
	}
}

func TestDeduplicateOrdering(t *testing.T) {
	simple := "--- a/a.go\n+++ b/a.go\n+one"
	complexPatch := "--- a/b.go\n+++ b/b.go\n--- a/c.go\n+++ b/c.go\n+one\n+two\n-three\n-four"
	popular := "--- a/d.go\n+++ b/d.go\n+five"

	unique := Deduplicate([]string{complexPatch, simple, popular, popular})

	if len(unique) != 3 {
		t.Fatalf("expected 3 unique patches, got %d", len(unique))
	}
	// Highest occurrence first.
	if unique[0].OriginalIndex != 2 {
		t.Errorf("first = index %d, want 2 (two occurrences)", unique[0].OriginalIndex)
	}
	// Then lower complexity before higher.
	if unique[1].OriginalIndex != 1 {
		t.Errorf("second = index %d, want 1 (simpler patch)", unique[1].OriginalIndex)
	}
	if unique[2].OriginalIndex != 0 {
		t.Errorf("third = index %d, want 0 (more complex patch)", unique[2].OriginalIndex)
	}
}

func TestDeduplicateTieBreaksOnIndex(t *testing.T) {
	a := "--- a/x.go\n+++ b/x.go\n+same shape"
	b := "--- a/y.go\n+++ b/y.go\n+same shape"

	unique := Deduplicate([]string{b, a})

	if len(unique) != 2 {
		t.Fatalf("expected 2 unique patches, got %d", len(unique))
	}
	if unique[0].OriginalIndex != 0 || unique[1].OriginalIndex != 1 {
		t.Errorf("equal-key patches not in original order: got %d, %d",
			unique[0].OriginalIndex, unique[1].OriginalIndex)
	}
}

func TestDeduplicateAllEmpty(t *testing.T) {
	if unique := Deduplicate([]string{"", "  ", "\n"}); len(unique) != 0 {
		t.Errorf("expected no unique patches, got %d", len(unique))
	}
}
