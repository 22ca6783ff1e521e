package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"appcatalog/internal/catalog"
	"appcatalog/internal/config"
	"appcatalog/internal/history"
	"appcatalog/internal/identity"
	"appcatalog/internal/logging"
	"appcatalog/internal/merge"
	"appcatalog/internal/normalize"
)

// ErrLocked is returned when another run holds the data directory lock.
var ErrLocked = errors.New("another merge run holds the lock")

// HistoryRecorder stores per-region outcomes after a run.
type HistoryRecorder interface {
	Record(ctx context.Context, entries ...history.Entry) error
}

// Options configures a Runner.
type Options struct {
	InboxDir   string
	ReportsDir string
	// CatalogPath maps a region to its catalog file.
	CatalogPath func(region string) string
	// LockPath is the advisory lock held for the duration of a run. Empty
	// disables locking.
	LockPath   string
	WrapperKey string
	Normalize  normalize.Options
	Priority   []identity.Signal
	// Regions restricts the run to these region directories when non-empty.
	Regions []string
	DryRun  bool
	History HistoryRecorder
	Logger  *slog.Logger
	Now     func() time.Time
}

// OptionsFromConfig derives runner options from cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("config is nil")
	}
	priority, err := identity.ParsePriority(cfg.Catalog.MatchPriority)
	if err != nil {
		return Options{}, fmt.Errorf("catalog.match_priority: %w", err)
	}
	return Options{
		InboxDir:    cfg.Paths.InboxDir,
		ReportsDir:  cfg.Paths.ReportsDir,
		CatalogPath: cfg.CatalogPath,
		LockPath:    cfg.LockPath(),
		WrapperKey:  cfg.Catalog.WrapperKey,
		Normalize:   normalize.OptionsFromConfig(cfg),
		Priority:    priority,
	}, nil
}

// Runner drives one merge run over every region with pending files.
// A Runner is not safe for concurrent use.
type Runner struct {
	opts    Options
	reducer *merge.Reducer
	logger  *slog.Logger
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if strings.TrimSpace(opts.InboxDir) == "" {
		return nil, errors.New("inbox directory is required")
	}
	if opts.CatalogPath == nil {
		return nil, errors.New("catalog path resolver is required")
	}
	if len(opts.Priority) == 0 {
		opts.Priority = identity.DefaultPriority
	}
	if _, err := identity.NewResolver(nil, opts.Priority); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		opts:    opts,
		reducer: merge.New(),
		logger:  logging.NewComponentLogger(opts.Logger, "ingest"),
	}, nil
}

// Run processes every region with pending files. Per-file and per-region
// failures are recorded in the report; the returned error is reserved for
// failures that stop the whole run, including recovered panics, which wrap
// catalog.ErrUnexpected.
func (r *Runner) Run(ctx context.Context) (rep *Report, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	rep = &Report{RunID: runID, DryRun: r.opts.DryRun, StartedAt: r.opts.Now()}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: panic: %v", catalog.ErrUnexpected, recovered)
			logging.ErrorWithContext(logger, "merge run aborted", "run_panic",
				logging.Any("panic", recovered),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this failure with the log attached; catalogs written before the panic are complete"))
		}
	}()

	if r.opts.LockPath != "" {
		if mkErr := os.MkdirAll(filepath.Dir(r.opts.LockPath), 0o755); mkErr != nil {
			return rep, catalog.Wrap(catalog.ErrIO, r.opts.LockPath, "create lock directory", mkErr)
		}
		lock := flock.New(r.opts.LockPath)
		ok, lockErr := lock.TryLock()
		if lockErr != nil {
			return rep, catalog.Wrap(catalog.ErrIO, r.opts.LockPath, "acquire lock", lockErr)
		}
		if !ok {
			return rep, fmt.Errorf("%w: %s", ErrLocked, r.opts.LockPath)
		}
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				logging.WarnWithContext(logger, "failed to release run lock", "lock_release_failed",
					logging.String("lock", r.opts.LockPath),
					logging.Error(unlockErr),
					logging.String(logging.FieldImpact, "the next run may need the lock file removed"))
			}
		}()
	}

	regions, err := r.regions()
	if err != nil {
		return rep, catalog.Wrap(catalog.ErrIO, r.opts.InboxDir, "discover regions", err)
	}
	logger.Info("merge run started",
		logging.Strings("regions", regions),
		logging.Bool("dry_run", r.opts.DryRun))

	for _, region := range regions {
		result, fatal := r.processRegion(ctx, region)
		rep.Regions = append(rep.Regions, result)
		if fatal != nil {
			rep.FinishedAt = r.opts.Now()
			logging.ErrorWithContext(logger, "merge run aborted", "run_failed",
				logging.String(logging.FieldRegion, region),
				logging.Error(fatal),
				logging.String(logging.FieldErrorHint, "the region catalog was not written; rerun after fixing the cause"))
			return rep, fatal
		}
	}
	rep.FinishedAt = r.opts.Now()

	if r.opts.History != nil && !r.opts.DryRun && len(rep.Regions) > 0 {
		if histErr := r.opts.History.Record(ctx, historyEntries(rep)...); histErr != nil {
			logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
				logging.Error(histErr),
				logging.String(logging.FieldImpact, "this run is missing from history; catalogs are unaffected"))
		}
	}

	change := rep.ChangeReport()
	logger.Info("merge run finished",
		logging.Bool("changed", change.Changed),
		logging.Strings("changed_regions", change.Regions),
		logging.Duration("duration", rep.FinishedAt.Sub(rep.StartedAt)))
	return rep, nil
}

func (r *Runner) regions() ([]string, error) {
	found, err := DiscoverRegions(r.opts.InboxDir)
	if err != nil {
		return nil, err
	}
	if len(r.opts.Regions) == 0 {
		return found, nil
	}
	wanted := make(map[string]struct{}, len(r.opts.Regions))
	for _, region := range r.opts.Regions {
		wanted[strings.ToLower(strings.TrimSpace(region))] = struct{}{}
	}
	var out []string
	for _, region := range found {
		if _, ok := wanted[strings.ToLower(region)]; ok {
			out = append(out, region)
		}
	}
	return out, nil
}

func (r *Runner) regionDir(region string) string {
	return filepath.Join(r.opts.InboxDir, region)
}

func (r *Runner) normalizer(region string) *normalize.Normalizer {
	opts := r.opts.Normalize
	opts.Region = region
	return normalize.New(opts)
}

func historyEntries(rep *Report) []history.Entry {
	entries := make([]history.Entry, 0, len(rep.Regions))
	for _, region := range rep.Regions {
		entry := history.Entry{
			RunID:         rep.RunID,
			Region:        region.Region,
			StartedAt:     region.StartedAt,
			FinishedAt:    region.FinishedAt,
			Added:         region.Added,
			Merged:        region.Merged,
			Dropped:       region.Dropped,
			ArchivedFiles: region.ArchivedFiles(),
			FailedFiles:   region.FailedFiles(),
			Changed:       region.Changed,
		}
		if region.Err != nil {
			entry.Error = region.Err.Error()
		}
		entries = append(entries, entry)
	}
	return entries
}
