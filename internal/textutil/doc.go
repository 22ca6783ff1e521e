// Package textutil provides the text folding rules shared by the merge engine
// and its collaborators.
//
// The primary use cases are:
//   - Deriving filesystem-safe slugs from multilingual display names
//   - Producing a deterministic digest id when a name has no ASCII letters
//   - Folding names into lookup keys for identity matching, request intake
//     and the search index
//   - Checking that app ids and region codes can name request files,
//     shards and per-region indexes
//
// Slugs decompose with NFKD and drop combining marks, so "Café" becomes
// "cafe" and full-width Latin folds to ASCII. Search keys fold width, map
// katakana to hiragana and drop punctuation, spaces and the prolonged sound
// mark, so "マインクラフト" and "まいんくらふと" share a key.
package textutil
