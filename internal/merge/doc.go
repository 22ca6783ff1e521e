// Package merge folds drafts into catalog records. Merge is a set union that
// never removes or reorders existing members, which makes re-running an input
// file a no-op.
package merge
