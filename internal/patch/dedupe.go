package patch

import (
	"sort"
	"strings"
)

// NormalizedPatch is one unique candidate after normalization. The
// first raw patch that produced the canonical text is retained as the
// canonical original; later duplicates only bump OccurrenceCount.
// Instances are immutable once Deduplicate returns.
type NormalizedPatch struct {
	OriginalIndex     int     `json:"original_index"`
	OriginalContent   string  `json:"original_content"`
	NormalizedContent string  `json:"normalized_content"`
	Metrics           Metrics `json:"metrics"`
	OccurrenceCount   int     `json:"occurrence_count"`
}

// Deduplicate normalizes the raw patches and groups them by canonical
// text. Patches that are empty, or become empty after normalization,
// are skipped. The result is ordered by descending occurrence count,
// then ascending complexity, then ascending original index, which is
// fully deterministic for any input.
//
// The occurrence counts of the returned patches sum to the number of
// inputs that survived normalization.
func Deduplicate(patches []string) []NormalizedPatch {
	unique := make([]NormalizedPatch, 0, len(patches))
	byContent := make(map[string]int, len(patches))

	for i, raw := range patches {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		normalized := Normalize(raw)
		if strings.TrimSpace(normalized) == "" {
			continue
		}

		if at, seen := byContent[normalized]; seen {
			unique[at].OccurrenceCount++
			continue
		}

		byContent[normalized] = len(unique)
		unique = append(unique, NormalizedPatch{
			OriginalIndex:     i,
			OriginalContent:   raw,
			NormalizedContent: normalized,
			Metrics:           ComputeMetrics(normalized),
			OccurrenceCount:   1,
		})
	}

	sort.Slice(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.OccurrenceCount != b.OccurrenceCount {
			return a.OccurrenceCount > b.OccurrenceCount
		}
		if a.Metrics.ComplexityScore != b.Metrics.ComplexityScore {
			return a.Metrics.ComplexityScore < b.Metrics.ComplexityScore
		}
		return a.OriginalIndex < b.OriginalIndex
	})

	return unique
}
