// Package requests turns form-export CSV files into pending request records.
//
// Column A holds the submission timestamp and column B one or more app names.
// Names are matched against a curated known-apps file by a loose key that
// ignores case, whitespace, and decoration; unknown names get the same slug
// or digest id the merge engine would synthesize. Every name seen for an id
// during one import is kept as an alias.
package requests
