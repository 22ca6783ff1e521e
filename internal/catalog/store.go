package catalog

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"appcatalog/internal/fileutil"
	"appcatalog/internal/logging"
)

// RecordNormalizer turns a raw record into a canonical one.
type RecordNormalizer interface {
	Normalize(raw RawRecord) (Record, error)
}

// RecordMerger folds src into dst and reports whether dst changed.
type RecordMerger interface {
	Merge(dst *Record, src Record) bool
}

// LoadOptions controls how a persisted catalog is read.
type LoadOptions struct {
	WrapperKey string
	// Normalizer re-canonicalizes every loaded row so files written by older
	// tooling satisfy the record invariants. Required.
	Normalizer RecordNormalizer
	// Merger folds rows that share an id. When nil the first row wins.
	Merger RecordMerger
	Logger *slog.Logger
}

// Store is the in-memory view of one region's catalog keyed by id.
type Store struct {
	path      string
	logger    *slog.Logger
	records   map[string]*Record
	original  []byte
	recovered bool
}

// NewStore returns an empty store that persists to path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "catalog"),
		records: make(map[string]*Record),
	}
}

// Load reads the catalog at path. A missing, empty, or unparseable file
// yields an empty store and a warning; only read failures other than a
// missing file are returned, as ErrIO, so an unreadable catalog is never
// replaced by a partial one.
func Load(path string, opts LoadOptions) (*Store, error) {
	if opts.Normalizer == nil {
		return nil, errors.New("catalog load requires a normalizer")
	}
	s := NewStore(path, opts.Logger)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("catalog file not found; starting empty", logging.String("path", path))
			return s, nil
		}
		return nil, Wrap(ErrIO, path, "read catalog", err)
	}
	s.original = data

	if len(bytes.TrimSpace(data)) == 0 {
		logging.WarnWithContext(s.logger, "catalog file empty; starting empty", "catalog_empty",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "catalog will be rebuilt from pending files only"))
		return s, nil
	}

	items, err := DecodeDocument(data, opts.WrapperKey)
	if err != nil {
		s.recovered = true
		logging.WarnWithContext(s.logger, "catalog file unparseable; starting empty", "catalog_unparseable",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the .invalid backup written next to the catalog on save"),
			logging.String(logging.FieldImpact, "previous catalog contents are not merged into this run"))
		return s, nil
	}

	for i, item := range items {
		raw, err := DecodeRawRecord(item)
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping catalog row", "catalog_row_skipped",
				logging.String("path", path), logging.Int(logging.FieldRecordIndex, i), logging.Error(err))
			continue
		}
		rec, err := opts.Normalizer.Normalize(raw)
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping catalog row", "catalog_row_skipped",
				logging.String("path", path), logging.Int(logging.FieldRecordIndex, i), logging.Error(err))
			continue
		}
		if existing, ok := s.records[rec.ID]; ok {
			logging.WarnWithContext(s.logger, "duplicate id in catalog", "catalog_duplicate_id",
				logging.String("path", path),
				logging.String(logging.FieldAppID, rec.ID),
				logging.Int(logging.FieldRecordIndex, i),
				logging.String(logging.FieldImpact, "rows sharing an id are folded into one record"))
			if opts.Merger != nil {
				opts.Merger.Merge(existing, rec)
			}
			continue
		}
		s.Put(rec)
	}

	s.logger.Debug("loaded catalog",
		logging.String("path", path),
		logging.Int("record_count", len(s.records)))
	return s, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Get returns the live record for id; mutations through the pointer are
// visible to later Save calls.
func (s *Store) Get(id string) (*Record, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// Put inserts or replaces the record with rec.ID.
func (s *Store) Put(rec Record) {
	stored := rec
	s.records[rec.ID] = &stored
}

// Records returns copies of every record sorted by id.
func (s *Store) Records() []Record {
	ids := s.IDs()
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// IDs returns every id in catalog order: case-insensitive ascending, ties
// broken by the raw id.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return IDLess(ids[i], ids[j]) })
	return ids
}

// IDLess reports whether id a sorts before b in catalog order.
func IDLess(a, b string) bool {
	if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
		return la < lb
	}
	return a < b
}

// Clone returns an independent copy used to stage changes that may be
// discarded.
func (s *Store) Clone() *Store {
	out := &Store{
		path:      s.path,
		logger:    s.logger,
		records:   make(map[string]*Record, len(s.records)),
		original:  s.original,
		recovered: s.recovered,
	}
	for id, rec := range s.records {
		cloned := rec.Clone()
		out.records[id] = &cloned
	}
	return out
}

// Encode renders the catalog file contents.
func (s *Store) Encode() ([]byte, error) {
	records := s.Records()
	for i := range records {
		records[i].EnforceInvariants()
	}
	return EncodeRecords(records)
}

// Dirty reports whether the encoded catalog differs from the file contents at load time.
func (s *Store) Dirty() (bool, error) {
	data, err := s.Encode()
	if err != nil {
		return false, Wrap(ErrUnexpected, s.path, "encode catalog", err)
	}
	return !bytes.Equal(data, s.original), nil
}

// Save writes the catalog atomically when it differs from what was loaded
// and reports whether a write happened. An unparseable original is kept
// beside the catalog as <path>.invalid before being replaced.
func (s *Store) Save() (bool, error) {
	data, err := s.Encode()
	if err != nil {
		return false, Wrap(ErrUnexpected, s.path, "encode catalog", err)
	}
	if bytes.Equal(data, s.original) {
		return false, nil
	}

	if s.recovered {
		if err := os.WriteFile(s.path+".invalid", s.original, 0o644); err != nil {
			return false, Wrap(ErrIO, s.path, "back up unparseable catalog", err)
		}
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return false, Wrap(ErrIO, s.path, "write catalog", err)
	}

	s.original = data
	s.recovered = false
	s.logger.Debug("saved catalog",
		logging.String("path", s.path),
		logging.Int("record_count", len(s.records)))
	return true, nil
}
