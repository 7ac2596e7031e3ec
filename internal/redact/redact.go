// Package redact strips credential-shaped strings from text before it
// leaves the process. Issue bodies, comments, and patches occasionally
// carry API keys or connection URLs; prompts are scrubbed so secrets
// never reach a model provider or a log line.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
)

// Category classifies what kind of secret a finding matched.
type Category string

const (
	CategoryAPIKey         Category = "API_KEY"
	CategoryBearerToken    Category = "BEARER_TOKEN"
	CategoryAWSAccessKey   Category = "AWS_ACCESS_KEY"
	CategoryGitHubToken    Category = "GITHUB_TOKEN"
	CategoryPrivateKey     Category = "PRIVATE_KEY"
	CategoryURLCredentials Category = "URL_CREDENTIALS"
)

// Finding is one redacted span of the input.
type Finding struct {
	Category    Category `json:"category"`
	Placeholder string   `json:"placeholder"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
}

type pattern struct {
	category Category
	re       *regexp.Regexp
	priority int
}

// Higher-priority patterns win when matches overlap (a private key
// block swallows any key-shaped substrings inside it).
var patterns = []pattern{
	{CategoryPrivateKey, regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`), 100},
	{CategoryAWSAccessKey, regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), 90},
	{CategoryGitHubToken, regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`), 90},
	{CategoryAPIKey, regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{20,}\b`), 80},
	{CategoryBearerToken, regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]{16,}=*`), 70},
	{CategoryURLCredentials, regexp.MustCompile(`\b[a-z][a-z0-9+.-]*://[^/\s:@]+:[^@\s]+@`), 60},
}

// String replaces every secret-shaped span in input with a
// deterministic placeholder and reports what was replaced. The
// placeholder format is [REDACTED:CATEGORY:hash8], where the hash is
// stable per secret so repeated occurrences stay correlatable.
func String(input string) (string, []Finding) {
	matches := scan(input)
	if len(matches) == 0 {
		return input, nil
	}

	findings := make([]Finding, len(matches))
	for i, m := range matches {
		findings[i] = Finding{
			Category:    m.category,
			Placeholder: placeholder(m.category, input[m.start:m.end]),
			Start:       m.start,
			End:         m.end,
		}
	}

	// Replace back to front so earlier offsets stay valid.
	out := input
	for i := len(findings) - 1; i >= 0; i-- {
		f := findings[i]
		out = out[:f.Start] + f.Placeholder + out[f.End:]
	}
	return out, findings
}

// ContainsSensitive reports whether input holds any secret-shaped span.
func ContainsSensitive(input string) bool {
	for _, p := range patterns {
		if p.re.MatchString(input) {
			return true
		}
	}
	return false
}

type match struct {
	category Category
	start    int
	end      int
	priority int
}

// scan returns non-overlapping matches in input order, preferring
// higher-priority patterns where spans collide.
func scan(input string) []match {
	var all []match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(input, -1) {
			all = append(all, match{
				category: p.category,
				start:    loc[0],
				end:      loc[1],
				priority: p.priority,
			})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].priority > all[j].priority
	})

	kept := all[:0]
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue
		}
		kept = append(kept, m)
		lastEnd = m.end
	}
	return kept
}

func placeholder(cat Category, content string) string {
	hash := sha256.Sum256([]byte(string(cat) + ":" + content))
	return fmt.Sprintf("[REDACTED:%s:%s]", cat, hex.EncodeToString(hash[:4]))
}
