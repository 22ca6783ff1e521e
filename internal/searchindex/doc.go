// Package searchindex writes the lookup index clients download to find an
// application by name. Names and aliases are folded with textutil.SearchKey
// so width variants, katakana and hiragana, and punctuation compare equal.
package searchindex
