package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// UnlabeledDir is the directory used for labels that sanitize to nothing.
const UnlabeledDir = "unlabeled"

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// NormalizeLabel trims a label and converts it to Unicode NFC so visually
// identical labels from the API compare equal.
func NormalizeLabel(label string) string {
	return norm.NFC.String(strings.TrimSpace(label))
}

// LabelDirName maps a label to the class directory name used inside the
// target dataset.
func LabelDirName(label string) string {
	name := SanitizeFileName(NormalizeLabel(label))
	name = strings.Trim(name, ".")
	if name == "" {
		return UnlabeledDir
	}
	return name
}

// TitleCase formats a label for human-facing summaries.
func TitleCase(value string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(value))
}
