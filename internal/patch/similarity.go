package patch

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Similarity returns the share of text two normalized patches have in
// common, in [0, 1]. It is 1 for identical text and 0 when either side
// is empty and the other is not. The measure is Levenshtein distance
// over the character diff, scaled by the longer input.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}
	if longer == 0 {
		return 1.0
	}

	sim := 1.0 - float64(distance)/float64(longer)
	if sim < 0 {
		sim = 0
	}
	return sim
}

// NearDuplicate flags two distinct unique patches whose normalized
// text is almost the same. Deduplication only collapses exact
// canonical matches; near-duplicates survive it and usually mean the
// candidate generator converged on one fix with cosmetic variations.
type NearDuplicate struct {
	IndexA     int     `json:"index_a"`
	IndexB     int     `json:"index_b"`
	Similarity float64 `json:"similarity"`
}

// NearDuplicates reports every pair of unique patches whose similarity
// meets threshold. Pairs are reported in the order the patches appear,
// with IndexA/IndexB referring to original patch indices.
func NearDuplicates(patches []NormalizedPatch, threshold float64) []NearDuplicate {
	var pairs []NearDuplicate
	for i := 0; i < len(patches); i++ {
		for j := i + 1; j < len(patches); j++ {
			sim := Similarity(patches[i].NormalizedContent, patches[j].NormalizedContent)
			if sim >= threshold {
				pairs = append(pairs, NearDuplicate{
					IndexA:     patches[i].OriginalIndex,
					IndexB:     patches[j].OriginalIndex,
					Similarity: sim,
				})
			}
		}
	}
	return pairs
}
