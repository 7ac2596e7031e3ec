package patch

import "strings"

// Metrics captures complexity measurements derived from normalized
// patch text. All counts come solely from the canonical form, never
// from the raw input.
type Metrics struct {
	LinesAdded      int     `json:"lines_added"`
	LinesRemoved    int     `json:"lines_removed"`
	FilesModified   int     `json:"files_modified"`
	TotalChanges    int     `json:"total_changes"`
	ComplexityScore float64 `json:"complexity_score"`
}

// Complexity scoring weights. Larger changes, multi-file changes, and
// deletion-heavy changes score higher; the score is capped at 10.
const (
	complexityCap      = 10.0
	changeWeight       = 0.1
	extraFileWeight    = 0.2
	deletionPenaltyMax = 0.5
)

// ComputeMetrics derives Metrics from normalized patch text.
//
// Lines beginning with "+" count as additions and lines beginning with
// "-" as deletions, excluding the "+++" and "---" file headers. File
// paths are collected from header lines after stripping the a/ and b/
// prefixes; /dev/null is ignored.
func ComputeMetrics(normalized string) Metrics {
	if strings.TrimSpace(normalized) == "" {
		return Metrics{}
	}

	var added, removed int
	files := make(map[string]struct{})

	for _, line := range splitLines(normalized) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			if path := extractFilePath(line); path != "" && path != "/dev/null" {
				files[path] = struct{}{}
			}
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	total := added + removed
	return Metrics{
		LinesAdded:      added,
		LinesRemoved:    removed,
		FilesModified:   len(files),
		TotalChanges:    total,
		ComplexityScore: complexityScore(total, len(files), removed),
	}
}

// extractFilePath returns the path from a ---/+++ header line with any
// a/ or b/ prefix removed, or "" when the line is not a file header.
func extractFilePath(line string) string {
	var rest string
	switch {
	case strings.HasPrefix(line, "--- "):
		rest = line[len("--- "):]
	case strings.HasPrefix(line, "+++ "):
		rest = line[len("+++ "):]
	default:
		return ""
	}

	path := strings.TrimSpace(rest)
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		path = path[2:]
	}
	return path
}

// complexityScore combines change volume, file spread, and deletion
// ratio into a single score in [0, 10].
//
//	base = min(10, total*0.1)
//	fileMultiplier = 1 + (files-1)*0.2
//	deletionPenalty = removed/total * 0.5
func complexityScore(total, files, removed int) float64 {
	if total == 0 {
		return 0.0
	}

	base := float64(total) * changeWeight
	if base > complexityCap {
		base = complexityCap
	}

	fileMultiplier := 1.0
	if files > 1 {
		fileMultiplier += float64(files-1) * extraFileWeight
	}

	deletionPenalty := float64(removed) / float64(total) * deletionPenaltyMax

	score := base*fileMultiplier + deletionPenalty
	if score > complexityCap {
		score = complexityCap
	}
	return score
}
