package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"  cat  ":       "cat",
		"a/b":           "a-b",
		`what?"<>|`:     "what",
		"time: 10*2":    "time- 10-2",
		"":              "",
		"back\\slashed": "back-slashed",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeLabelComposesUnicode(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	if got := NormalizeLabel("  " + decomposed + " "); got != composed {
		t.Fatalf("expected NFC form %q, got %q", composed, got)
	}
}

func TestLabelDirName(t *testing.T) {
	cases := map[string]string{
		"dog":      "dog",
		"  ":       UnlabeledDir,
		"..":       UnlabeledDir,
		"../etc":   "-etc",
		"cat/kind": "cat-kind",
	}
	for input, want := range cases {
		if got := LabelDirName(input); got != want {
			t.Fatalf("LabelDirName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("golden retriever"); got != "Golden Retriever" {
		t.Fatalf("unexpected title case: %q", got)
	}
}
