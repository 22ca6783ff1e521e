// Package report renders the outputs surrounding automation reads after a
// merge run: key=value change lines for stdout and CI output files, and a
// plain-text summary per region.
package report
