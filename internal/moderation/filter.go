// Package moderation masks banned words in outgoing chat messages.
// The filter is a pure function: deterministic, no state, applied to every
// message before it is stored.
package moderation

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// bannedWords is the fixed wordlist, held in folded (lowercase, mark-free)
// form. The list itself is a replaceable collaborator; the matching rules
// are the contract.
var bannedWords = []string{
	"amk",
	"aq",
	"sg",
	"mal",
	"salak",
	"noob",
}

const maskRune = '*'

// stripMarks removes combining marks after canonical decomposition, so
// "ş" folds to "s" and "İ" to "I".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FilterMessage replaces every case-insensitive, diacritic-insensitive
// occurrence of a banned word with an equal-length run of mask characters.
// Surrounding text and total rune length are preserved.
func FilterMessage(text string) string {
	if text == "" {
		return text
	}

	original := []rune(text)
	folded := make([]rune, len(original))
	for i, r := range original {
		folded[i] = foldRune(r)
	}

	masked := false
	for _, word := range bannedWords {
		target := []rune(word)
		for i := 0; i+len(target) <= len(folded); i++ {
			if !matchesAt(folded, target, i) {
				continue
			}
			for j := 0; j < len(target); j++ {
				original[i+j] = maskRune
			}
			masked = true
		}
	}

	if !masked {
		return text
	}
	return string(original)
}

func matchesAt(folded, target []rune, at int) bool {
	for j, r := range target {
		if folded[at+j] != r {
			return false
		}
	}
	return true
}

// foldRune lowercases a rune and strips its diacritic marks, keeping a
// strict one-to-one mapping so mask positions line up with the input.
func foldRune(r rune) rune {
	if r < 0x80 {
		return unicode.ToLower(r)
	}
	if s, _, err := transform.String(stripMarks, string(r)); err == nil && s != "" {
		r = []rune(s)[0]
	}
	return unicode.ToLower(r)
}
