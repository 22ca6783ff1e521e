package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"appcatalog/internal/catalog"
	"appcatalog/internal/fileutil"
	"appcatalog/internal/identity"
	"appcatalog/internal/logging"
	"appcatalog/internal/normalize"
	"appcatalog/internal/report"
)

// archiveStampLayout is the UTC timestamp appended to archived file names.
const archiveStampLayout = "20060102-150405"

// regionState is the committed in-memory state of one region. Each file is
// folded into a clone and swapped in only after it has been archived.
type regionState struct {
	store *catalog.Store
	index *identity.Index
}

func (s regionState) stage() regionState {
	return regionState{store: s.store.Clone(), index: s.index.Clone()}
}

// processRegion folds every pending file of region and persists the catalog
// once. Only failures outside the error taxonomy are returned; everything
// else is recorded on the result.
func (r *Runner) processRegion(ctx context.Context, region string) (result RegionResult, fatal error) {
	ctx = logging.WithRegion(ctx, region)
	logger := logging.WithContext(ctx, r.logger)
	result = RegionResult{
		Region:      region,
		CatalogPath: r.opts.CatalogPath(region),
		StartedAt:   r.opts.Now(),
	}
	defer func() { result.FinishedAt = r.opts.Now() }()

	normalizer := r.normalizer(region)
	store, err := catalog.Load(result.CatalogPath, catalog.LoadOptions{
		WrapperKey: r.opts.WrapperKey,
		Normalizer: normalizer,
		Merger:     r.reducer,
		Logger:     logger,
	})
	if err != nil {
		result.Err = err
		logging.ErrorWithContext(logger, "catalog load failed; skipping region", "catalog_load_failed",
			logging.String("catalog", result.CatalogPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix permissions on the catalog file; pending files stay in the inbox"))
		r.writeSummary(logger, &result)
		return result, nil
	}
	state := regionState{store: store, index: identity.BuildIndex(store.Records())}

	files, err := PendingFiles(r.regionDir(region))
	if err != nil {
		result.Err = catalog.Wrap(catalog.ErrIO, r.regionDir(region), "list pending files", err)
		logging.ErrorWithContext(logger, "cannot list pending files", "inbox_read_failed", logging.Error(err))
		r.writeSummary(logger, &result)
		return result, nil
	}

	// archived holds inputs whose records are not yet in the saved catalog.
	// Leaving early for any reason, a panic included, moves them back.
	var archived []FileResult
	defer func() {
		if len(archived) == 0 {
			return
		}
		logging.WarnWithContext(logger, "region aborted; restoring archived inputs", "archive_restored",
			logging.Int("files", len(archived)),
			logging.String(logging.FieldImpact, "restored files are merged again by the next run"))
		r.restore(logger, &result, archived)
	}()

	for _, path := range files {
		fr, next := r.processFile(logger, region, path, normalizer, state)
		if fr.State == FileFailed && catalog.Kind(fr.Err) == "unexpected" {
			result.Files = append(result.Files, fr)
			return result, fr.Err
		}
		if fr.State == FileArchived || fr.State == FileStaged {
			state = next
			result.Added += fr.Added
			result.Merged += fr.Merged
			result.Updated += fr.Updated
			if fr.State == FileArchived {
				archived = append(archived, fr)
			}
		}
		result.Dropped += len(fr.Dropped)
		result.Files = append(result.Files, fr)
	}

	committed := len(archived) > 0 || (r.opts.DryRun && result.Added+result.Merged > 0)
	if committed {
		if r.opts.DryRun {
			dirty, err := state.store.Dirty()
			if err != nil {
				result.Err = err
			}
			result.Changed = dirty
		} else {
			changed, err := state.store.Save()
			if err != nil {
				result.Err = err
				logging.ErrorWithContext(logger, "catalog write failed; restoring archived inputs", "catalog_write_failed",
					logging.String("catalog", result.CatalogPath),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check free space and permissions on the catalog directory"))
				r.restore(logger, &result, archived)
			} else {
				result.Changed = changed
			}
			archived = nil
		}
	}

	logger.Info("region merged",
		logging.String("catalog", result.CatalogPath),
		logging.Int("files", len(files)),
		logging.Int("added", result.Added),
		logging.Int("merged", result.Merged),
		logging.Int("updated", result.Updated),
		logging.Int("dropped", result.Dropped),
		logging.Int("failed_files", result.FailedFiles()),
		logging.Bool("changed", result.Changed))
	r.writeSummary(logger, &result)
	return result, nil
}

// processFile folds one file into a staged copy of state and archives it.
// The returned state is only meaningful when the file was committed.
func (r *Runner) processFile(logger *slog.Logger, region, path string, normalizer *normalize.Normalizer, state regionState) (FileResult, regionState) {
	fr := FileResult{Name: filepath.Base(path), Path: path, State: FileUnprocessed}
	logger = logger.With(logging.String(logging.FieldFile, fr.Name))

	staged := state.stage()
	resolver, err := identity.NewResolver(staged.index, r.opts.Priority)
	if err != nil {
		return r.fail(logger, fr, err), state
	}

	fr.State = FileMerging
	if err := r.foldFile(logger, &fr, normalizer, resolver, staged.store); err != nil {
		return r.fail(logger, fr, err), state
	}

	if r.opts.DryRun {
		fr.State = FileStaged
		return fr, staged
	}

	dest, err := r.archive(region, path)
	if err != nil {
		return r.fail(logger, fr, err), state
	}
	fr.ArchivePath = dest
	fr.State = FileArchived
	logger.Debug("input archived",
		logging.String("archive", dest),
		logging.Int("added", fr.Added),
		logging.Int("merged", fr.Merged))
	return fr, staged
}

func (r *Runner) foldFile(logger *slog.Logger, fr *FileResult, normalizer *normalize.Normalizer, resolver *identity.Resolver, store *catalog.Store) error {
	data, err := os.ReadFile(fr.Path)
	if err != nil {
		return catalog.Wrap(catalog.ErrIO, fr.Name, "read input", err)
	}
	items, err := catalog.DecodeDocument(data, r.opts.WrapperKey)
	if err != nil {
		return err
	}

	for i, item := range items {
		raw, err := catalog.DecodeRawRecord(item)
		if err == nil {
			err = r.foldRecord(logger, fr, i, raw, normalizer, resolver, store)
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, catalog.ErrMalformedInput) && !errors.Is(err, catalog.ErrMissingRequiredField) {
			return fmt.Errorf("record %d: %w", i, err)
		}
		fr.Dropped = append(fr.Dropped, report.Issue{File: fr.Name, Record: i, Reason: err.Error()})
		logging.WarnWithContext(logger, "record dropped", "record_dropped",
			logging.Int(logging.FieldRecordIndex, i),
			logging.String("reason", catalog.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "give the record an id or a name"),
			logging.String(logging.FieldImpact, "record skipped; the rest of the file is merged"))
	}
	return nil
}

func (r *Runner) foldRecord(logger *slog.Logger, fr *FileResult, i int, raw catalog.RawRecord, normalizer *normalize.Normalizer, resolver *identity.Resolver, store *catalog.Store) error {
	draft, err := normalizer.Normalize(raw)
	if err != nil {
		return err
	}

	match, ok := resolver.Resolve(draft)
	if !ok {
		rec := r.reducer.Admit(draft)
		store.Put(rec)
		resolver.Observe(rec)
		fr.Added++
		logger.Debug("record added",
			logging.Int(logging.FieldRecordIndex, i),
			logging.String(logging.FieldAppID, rec.ID))
		return nil
	}

	existing, found := store.Get(match.ID)
	if !found {
		return fmt.Errorf("%w: index points at missing id %q", catalog.ErrUnexpected, match.ID)
	}
	if r.reducer.Merge(existing, draft) {
		fr.Updated++
		resolver.Observe(*existing)
	}
	fr.Merged++
	logger.Debug("record merged",
		logging.Int(logging.FieldRecordIndex, i),
		logging.String(logging.FieldAppID, match.ID),
		logging.String("signal", string(match.Signal)),
		logging.String("key", match.Key))
	return nil
}

func (r *Runner) archive(region, path string) (string, error) {
	dir := filepath.Join(r.regionDir(region), processedDirName)
	stamp := r.opts.Now().UTC().Format(archiveStampLayout)
	dest, err := fileutil.UniquePath(filepath.Join(dir, archiveName(filepath.Base(path), stamp)))
	if err != nil {
		return "", catalog.Wrap(catalog.ErrIO, filepath.Base(path), "choose archive name", err)
	}
	if err := fileutil.MoveFile(path, dest); err != nil {
		return "", catalog.Wrap(catalog.ErrIO, filepath.Base(path), "archive input", err)
	}
	return dest, nil
}

// restore moves archived inputs back to the inbox when their records did not
// reach the catalog, so the next run retries them.
func (r *Runner) restore(logger *slog.Logger, result *RegionResult, archived []FileResult) {
	restored := make(map[string]bool, len(archived))
	for _, fr := range archived {
		if err := fileutil.MoveFile(fr.ArchivePath, fr.Path); err != nil {
			logging.ErrorWithContext(logger, "failed to restore archived input", "archive_restore_failed",
				logging.String(logging.FieldFile, fr.Name),
				logging.String("archive", fr.ArchivePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "move the archived file back into the region inbox by hand"))
			continue
		}
		restored[fr.Path] = true
	}
	for i := range result.Files {
		fr := &result.Files[i]
		if fr.State != FileArchived || !restored[fr.Path] {
			continue
		}
		fr.State = FileUnprocessed
		fr.ArchivePath = ""
	}
}

func (r *Runner) fail(logger *slog.Logger, fr FileResult, err error) FileResult {
	fr.State = FileFailed
	fr.Err = err
	fr.Added, fr.Merged, fr.Updated = 0, 0, 0
	fr.Dropped = nil
	logging.ErrorWithContext(logger, "input file failed; left for retry", "input_failed",
		logging.String("reason", catalog.Kind(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(err)))
	return fr
}

func (r *Runner) writeSummary(logger *slog.Logger, result *RegionResult) {
	if r.opts.DryRun || strings.TrimSpace(r.opts.ReportsDir) == "" {
		return
	}
	path, err := report.WriteSummary(r.opts.ReportsDir, result.Summary())
	if err != nil {
		logging.WarnWithContext(logger, "failed to write region summary", "summary_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "summary file is stale; catalog is unaffected"))
		return
	}
	result.SummaryPath = path
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, catalog.ErrMalformedInput):
		return "fix the JSON: it must be an array of records or an object holding one"
	case errors.Is(err, catalog.ErrIO):
		return "check permissions and free space for the inbox and its _processed directory"
	default:
		return "inspect the input file; the run continues with the remaining files"
	}
}
