package patch

import (
	"strings"
	"testing"
)

const sampleDiff = `diff --git a/pkg/math.go b/pkg/math.go
index 1234abc..5678def 100644
--- a/pkg/math.go
+++ b/pkg/math.go
@@ -10,7 +10,7 @@ func Add(a, b int) int {
 	return a + b
 }
-func Sub(a, b int) int {
+func Sub(a, b int) int { // fixed
`

func TestNormalizeStripsMetadata(t *testing.T) {
	got := Normalize(sampleDiff)

	for _, banned := range []string{"diff --git", "index 1234abc", "@@ -10,7"} {
		if strings.Contains(got, banned) {
			t.Errorf("normalized output still contains %q:\n%s", banned, got)
		}
	}
	if !strings.Contains(got, "--- a/pkg/math.go") {
		t.Errorf("old file header missing from:\n%s", got)
	}
	if !strings.Contains(got, "+++ b/pkg/math.go") {
		t.Errorf("new file header missing from:\n%s", got)
	}
}

func TestNormalizePreservesChangeMarkers(t *testing.T) {
	got := Normalize(sampleDiff)

	lines := strings.Split(got, "\n")
	var adds, removes int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			adds++
		case strings.HasPrefix(line, "-"):
			removes++
		}
	}
	if adds != 1 || removes != 1 {
		t.Errorf("expected 1 addition and 1 removal, got %d and %d", adds, removes)
	}
}

func TestNormalizeDropsHeaderTimestamps(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "old header with timestamp",
			in:   "--- a/file.go\t2024-03-01 10:22:33.000000000 +0000",
			want: "--- a/file.go",
		},
		{
			name: "new header with timestamp",
			in:   "+++ b/file.go 2024-03-01 10:22:33",
			want: "+++ b/file.go",
		},
		{
			name: "header without timestamp",
			in:   "--- a/file.go",
			want: "--- a/file.go",
		},
		{
			name: "dev null header",
			in:   "+++ /dev/null",
			want: "+++ /dev/null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "+\tx := 1\t\n \ty := 2  \n-z := 3 "
	want := "+    x := 1\n     y := 2\n-z := 3"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize whitespace = %q, want %q", got, want)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n", "\t"} {
		if got := Normalize(in); got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", in, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		sampleDiff,
		"--- a/f.go\t2024-01-02 00:00:00\n+++ b/f.go\n+new line\n-old line",
		"+\ttabbed  \n context\n@@ -1,2 +1,2 @@\nloose text  ",
		"crlf\r\n+added\r\n",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}
