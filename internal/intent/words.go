package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	punctRe  = regexp.MustCompile(`[.,!?;:"“”¿¡()]+`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// normalize lowercases u, turns punctuation into spaces and splits on
// whitespace.
func normalize(u string) []string {
	return strings.Fields(punctRe.ReplaceAllString(strings.ToLower(u), " "))
}

func phraseWords(phrase string) []string {
	return strings.Fields(phrase)
}

// indexPhrase returns the position of the first whole-word occurrence of
// phrase in words, or -1.
func indexPhrase(words []string, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return -1
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return i
	}
	return -1
}

func containsAny(words []string, phrases []string) bool {
	for _, p := range phrases {
		if indexPhrase(words, phraseWords(p)) >= 0 {
			return true
		}
	}
	return false
}

// removeAll drops every occurrence of every phrase.
func removeAll(words []string, phrases []string) []string {
	out := append([]string(nil), words...)
	for _, p := range phrases {
		pw := phraseWords(p)
		for {
			i := indexPhrase(out, pw)
			if i < 0 {
				break
			}
			out = append(out[:i], out[i+len(pw):]...)
		}
	}
	return out
}

// removeFirst drops the first phrase of the list that occurs, once.
func removeFirst(words []string, phrases []string) []string {
	for _, p := range phrases {
		pw := phraseWords(p)
		if i := indexPhrase(words, pw); i >= 0 {
			out := append([]string(nil), words[:i]...)
			return append(out, words[i+len(pw):]...)
		}
	}
	return words
}

// trimEdges strips filler words from both ends.
func trimEdges(words []string, fillers map[string]bool) []string {
	start, end := 0, len(words)
	for start < end && fillers[words[start]] {
		start++
	}
	for end > start && fillers[words[end-1]] {
		end--
	}
	return words[start:end]
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var numberWords = map[string]int{
	"zero": 0, "um": 1, "uma": 1, "dois": 2, "duas": 2, "três": 3, "tres": 3,
	"quatro": 4, "cinco": 5, "seis": 6, "sete": 7, "oito": 8, "nove": 9,
	"dez": 10, "onze": 11, "doze": 12, "treze": 13, "catorze": 14, "quatorze": 14,
	"quinze": 15, "dezesseis": 16, "dezessete": 17, "dezoito": 18, "dezenove": 19,
	"vinte": 20, "trinta": 30, "quarenta": 40, "cinquenta": 50, "sessenta": 60,
}

// parseCount reads a single token as a non-negative integer, in digits or
// as a spelled-out Portuguese number.
func parseCount(word string) (int, bool) {
	if n, err := strconv.Atoi(word); err == nil {
		return n, n >= 0
	}
	n, ok := numberWords[word]
	return n, ok
}

// firstInt returns the first run of digits anywhere in words.
func firstInt(words []string) (int, bool) {
	m := digitsRe.FindString(strings.Join(words, " "))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
