package ingest

// FileState tracks one pending input file through a run.
type FileState int

const (
	// FileUnprocessed files have not been read yet, or were left for retry.
	FileUnprocessed FileState = iota
	// FileMerging files are being folded into a staged copy of the catalog.
	FileMerging
	// FileArchived files were committed and moved to the processed area.
	FileArchived
	// FileStaged files were folded during a dry run and left in place.
	FileStaged
	// FileFailed files could not be folded or archived and stay in the inbox.
	FileFailed
)

func (s FileState) String() string {
	switch s {
	case FileUnprocessed:
		return "unprocessed"
	case FileMerging:
		return "merging"
	case FileArchived:
		return "archived"
	case FileStaged:
		return "staged"
	case FileFailed:
		return "failed"
	default:
		return "unknown"
	}
}
