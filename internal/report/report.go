package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"appcatalog/internal/fileutil"
)

// ChangeReport tells surrounding automation whether any catalog changed.
type ChangeReport struct {
	Changed bool
	Regions []string
}

// NewChangeReport builds a report from the changed region codes.
func NewChangeReport(regions []string) ChangeReport {
	out := make([]string, 0, len(regions))
	for _, region := range regions {
		if region = strings.ToLower(strings.TrimSpace(region)); region != "" {
			out = append(out, region)
		}
	}
	sort.Strings(out)
	return ChangeReport{Changed: len(out) > 0, Regions: out}
}

// Lines renders the report as key=value lines.
func (r ChangeReport) Lines() []string {
	return []string{
		fmt.Sprintf("changed=%t", r.Changed),
		"regions=" + strings.Join(r.Regions, ","),
	}
}

// Write prints the key=value lines to w.
func (r ChangeReport) Write(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(r.Lines(), "\n")+"\n")
	return err
}

// AppendFile appends the key=value lines to path, the way CI output files
// expect. An empty path is a no-op.
func (r ChangeReport) AppendFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open report output: %w", err)
	}
	if err := r.Write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report output: %w", err)
	}
	return f.Close()
}

// Issue is one problem recorded against an input file.
type Issue struct {
	File string
	// Record is the 0-based record index, or -1 for file-level failures.
	Record int
	Reason string
}

// RegionSummary is the per-region outcome written after each merge run.
type RegionSummary struct {
	Region string
	Added  int
	Merged int
	Errors []Issue
	Drops  []Issue
}

// Text renders the summary file contents.
func (s RegionSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Region: %s, Added: %d, Merged: %d\n", strings.ToUpper(s.Region), s.Added, s.Merged)
	for _, issue := range s.Errors {
		fmt.Fprintf(&b, "[ERROR] %s: %s\n", issue.File, issue.Reason)
	}
	for _, issue := range s.Drops {
		fmt.Fprintf(&b, "[WARN] %s#%d: %s\n", issue.File, issue.Record, issue.Reason)
	}
	return b.String()
}

// SummaryPath returns where the summary for region is written under dir.
func SummaryPath(dir, region string) string {
	return filepath.Join(dir, fmt.Sprintf("merge_%s_summary.txt", strings.ToLower(region)))
}

// WriteSummary writes the region summary under dir and returns its path.
func WriteSummary(dir string, s RegionSummary) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("report directory is empty")
	}
	path := SummaryPath(dir, s.Region)
	if err := fileutil.WriteFileAtomic(path, []byte(s.Text()), 0o644); err != nil {
		return "", fmt.Errorf("write region summary: %w", err)
	}
	return path, nil
}
