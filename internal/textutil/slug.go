package textutil

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// digestLength is the number of hex characters kept from a name digest.
const digestLength = 10

// stripMarks builds a fresh transformer per call; transform.Chain keeps state
// and must not be shared between goroutines.
func stripMarks(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// Slug converts a display name into a lowercase ASCII identifier. Runs of
// anything outside [a-z0-9] collapse into a single hyphen, and the result is
// cut to maxLen bytes (maxLen <= 0 means unlimited). Names without any
// representable character yield "".
func Slug(name string, maxLen int) string {
	folded := strings.ToLower(stripMarks(strings.TrimSpace(name)))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	return out
}

// NameKey is the canonical form hashed by Digest: NFKC, lowercase, with
// internal whitespace collapsed to single spaces.
func NameKey(name string) string {
	normalized := norm.NFKC.String(name)
	return strings.ToLower(strings.Join(strings.Fields(normalized), " "))
}

// Digest returns prefix followed by a short SHA-1 digest of NameKey(name).
// The same name always produces the same digest.
func Digest(name, prefix string) string {
	sum := sha1.Sum([]byte(NameKey(name)))
	return prefix + hex.EncodeToString(sum[:])[:digestLength]
}
