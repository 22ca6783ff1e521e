package ingest

import (
	"time"

	"appcatalog/internal/report"
)

// FileResult is the outcome for one pending file.
type FileResult struct {
	Name        string
	Path        string
	ArchivePath string
	State       FileState
	Added       int
	Merged      int
	Updated     int
	Dropped     []report.Issue
	Err         error
}

// RegionResult is the outcome for one region.
type RegionResult struct {
	Region      string
	CatalogPath string
	SummaryPath string
	StartedAt   time.Time
	FinishedAt  time.Time
	Files       []FileResult
	Added       int
	Merged      int
	Updated     int
	Dropped     int
	// Changed reports whether the catalog bytes differ from before the run.
	// In dry-run mode it reports whether they would.
	Changed bool
	// Err is set when the catalog could not be loaded or written.
	Err error
}

// FailedFiles counts files left in the inbox because of an error.
func (r RegionResult) FailedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.State == FileFailed {
			n++
		}
	}
	return n
}

// ArchivedFiles counts files moved to the processed area.
func (r RegionResult) ArchivedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.State == FileArchived {
			n++
		}
	}
	return n
}

// Summary converts the result into the per-region summary file form.
func (r RegionResult) Summary() report.RegionSummary {
	s := report.RegionSummary{Region: r.Region, Added: r.Added, Merged: r.Merged}
	if r.Err != nil {
		s.Errors = append(s.Errors, report.Issue{File: r.CatalogPath, Record: -1, Reason: r.Err.Error()})
	}
	for _, f := range r.Files {
		if f.Err != nil {
			s.Errors = append(s.Errors, report.Issue{File: f.Name, Record: -1, Reason: f.Err.Error()})
		}
		s.Drops = append(s.Drops, f.Dropped...)
	}
	return s
}

// Report is the outcome of one run.
type Report struct {
	RunID      string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Regions    []RegionResult
}

// ChangeReport lists the regions whose catalog changed.
func (r *Report) ChangeReport() report.ChangeReport {
	var changed []string
	for _, region := range r.Regions {
		if region.Changed {
			changed = append(changed, region.Region)
		}
	}
	return report.NewChangeReport(changed)
}
