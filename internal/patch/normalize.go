// Package patch canonicalizes diff-formatted patch text so that
// near-duplicate candidates collapse to one canonical form, derives
// complexity metrics from the canonical text, and deduplicates a raw
// candidate list into a deterministically ordered unique set.
package patch

import (
	"regexp"
	"strings"
)

var (
	// Version-control metadata lines that carry no semantic content.
	diffHeaderRe = regexp.MustCompile(`^diff --git`)
	indexLineRe  = regexp.MustCompile(`^index [a-f0-9]+`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -\d+,\d+ \+\d+,\d+ @@`)

	// File-path header lines with an optional trailing timestamp.
	oldFileRe = regexp.MustCompile(`^--- (.+?)(\s+\d{4}-\d{2}-\d{2}.*)?$`)
	newFileRe = regexp.MustCompile(`^\+\+\+ (.+?)(\s+\d{4}-\d{2}-\d{2}.*)?$`)
)

// Normalize canonicalizes raw diff text for deduplication.
//
// Metadata lines (diff headers, index lines, hunk headers) are dropped.
// File-path header lines keep the path but lose any trailing timestamp.
// Content and context lines keep their +/-/space marker, have tabs
// collapsed to four spaces, and lose trailing whitespace. Anything else
// is trimmed. Empty input yields empty output, and the function is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	lines := splitLines(raw)
	normalized := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case isMetadataLine(line):
			continue
		case strings.HasPrefix(line, "---"):
			normalized = append(normalized, normalizeFileHeader(line, oldFileRe, "--- "))
		case strings.HasPrefix(line, "+++"):
			normalized = append(normalized, normalizeFileHeader(line, newFileRe, "+++ "))
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			normalized = append(normalized, line[:1]+normalizeContent(line[1:]))
		case strings.HasPrefix(line, " "):
			normalized = append(normalized, " "+normalizeContent(line[1:]))
		default:
			normalized = append(normalized, strings.TrimSpace(line))
		}
	}

	return strings.Join(normalized, "\n")
}

func isMetadataLine(line string) bool {
	return diffHeaderRe.MatchString(line) ||
		indexLineRe.MatchString(line) ||
		hunkHeaderRe.MatchString(line)
}

// normalizeFileHeader rewrites a ---/+++ header to drop trailing
// timestamps while keeping the path untouched.
func normalizeFileHeader(line string, re *regexp.Regexp, prefix string) string {
	if m := re.FindStringSubmatch(line); m != nil {
		return prefix + m[1]
	}
	return strings.TrimSpace(line)
}

// normalizeContent collapses tabs to four spaces and trims trailing
// whitespace on the content portion of a diff line.
func normalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\t", "    ")
	return strings.TrimRight(content, " \t\r")
}

// splitLines splits on newlines, tolerating CRLF input.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
