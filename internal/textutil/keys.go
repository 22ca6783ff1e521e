package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const (
	katakanaFirst = 'ァ'
	katakanaLast  = 'ヶ'
	kanaOffset    = 0x60
	prolongedMark = 'ー'
)

// FoldKey is the identity lookup key: trimmed and lower-cased.
func FoldKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SearchKey folds text for the search index. Width variants fold to their
// canonical form, katakana maps to hiragana, and whitespace, punctuation,
// symbols, underscores and the prolonged sound mark are removed.
func SearchKey(value string) string {
	folded := strings.ToLower(width.Fold.String(value))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r >= katakanaFirst && r <= katakanaLast {
			r -= kanaOffset
		}
		if r == prolongedMark || r == '_' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// looseStripped lists the characters request intake ignores when comparing names.
var looseStripped = map[rune]struct{}{
	'-': {}, '_': {}, '.': {}, '+': {}, '(': {}, ')': {}, '[': {}, ']': {},
	'{': {}, '}': {}, '\'': {}, '"': {}, '!': {}, '?': {}, '★': {}, '☆': {},
	'™': {}, '®': {}, '©': {}, ':': {}, ';': {}, '＠': {}, '@': {}, '#': {},
}

// LooseKey lower-cases value and removes whitespace and common decoration so
// "Mine-craft™" and "minecraft" compare equal.
func LooseKey(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsSpace(r) {
			continue
		}
		if _, skip := looseStripped[r]; skip {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
