package assistant

import (
	"regexp"
	"strings"
	"unicode"
)

// Recognizers annotate non-speech as [BLANK_AUDIO], (música), *tosse*.
var annotation = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)

// cleanTranscript lowercases text and drops recognizer annotations. It
// returns "" when no letter or digit is left.
func cleanTranscript(text string) string {
	text = annotation.ReplaceAllString(text, " ")
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))

	if strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) < 0 {
		return ""
	}
	return text
}
