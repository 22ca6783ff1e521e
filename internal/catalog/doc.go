// Package catalog defines the application record, its tolerant raw input
// form, and the per-region store that persists records as a sorted JSON array.
//
// A catalog file is the single source of truth for one region. The Store loads
// it into a map keyed by id, hands out live records for in-place merging, and
// writes the full set back atomically (temp file plus rename) only when the
// encoded bytes change. Missing, empty, and unparseable files load as empty
// catalogs with a warning; unreadable files are reported as ErrIO so a region
// is skipped instead of being overwritten.
//
// The sentinel errors in this package classify every failure the merge
// engine can recover from; anything else is ErrUnexpected.
package catalog
