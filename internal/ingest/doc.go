// Package ingest runs the merge pipeline over every region inbox.
//
// For each region the Runner loads the catalog once, then folds each pending
// file through normalize, identity, and merge into a staged copy of the
// in-memory state. A file is committed only after all of its records have
// been folded and it has been moved to the region's _processed directory; a
// file that fails is left in place and the staged copy is discarded. The
// catalog is written once per region after the last file. If that write
// fails, the files archived during the run are moved back so the next run
// retries them.
//
// Runs hold an advisory lock on the data directory and are strictly
// sequential: regions in name order, files in name order.
package ingest
