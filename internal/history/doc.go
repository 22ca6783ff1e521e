// Package history keeps a SQLite log of merge runs, one row per region per
// run, so operators can see what each run added, merged, dropped, and failed.
package history
