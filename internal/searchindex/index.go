package searchindex

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"appcatalog/internal/catalog"
	"appcatalog/internal/fileutil"
	"appcatalog/internal/logging"
	"appcatalog/internal/textutil"
)

// Entry is one searchable application.
type Entry struct {
	ID          string   `json:"id"`
	NameNorm    string   `json:"name_norm"`
	AliasesNorm []string `json:"aliases_norm"`
	Path        string   `json:"path"`
}

// Index is the search index document for one region.
type Index struct {
	GeneratedAt string  `json:"generatedAt"`
	Version     string  `json:"version"`
	Entries     []Entry `json:"entries"`
}

// ShardPath returns "apps/<h0h1>/<h2h3>/<id>.json" where h is the SHA-1 of id.
func ShardPath(id string) string {
	sum := sha1.Sum([]byte(id))
	digest := hex.EncodeToString(sum[:])
	return fmt.Sprintf("apps/%s/%s/%s.json", digest[:2], digest[2:4], id)
}

// Build creates the index entries for records in catalog order. Records
// without an id are skipped.
func Build(records []catalog.Record, version string, generatedAt time.Time) Index {
	idx := Index{
		GeneratedAt: generatedAt.UTC().Format("2006-01-02T15:04:05.000000Z"),
		Version:     version,
		Entries:     make([]Entry, 0, len(records)),
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			continue
		}
		aliases := make([]string, 0, len(rec.Aliases))
		for _, alias := range rec.Aliases {
			aliases = append(aliases, textutil.SearchKey(alias))
		}
		idx.Entries = append(idx.Entries, Entry{
			ID:          rec.ID,
			NameNorm:    textutil.SearchKey(rec.Name),
			AliasesNorm: aliases,
			Path:        ShardPath(rec.ID),
		})
	}
	return idx
}

// Options configures a Builder.
type Options struct {
	CatalogDir string
	IndexDir   string
	WrapperKey string
	Version    string
	// WriteShards also writes each record to IndexDir's parent at its
	// shard path.
	WriteShards bool
	Logger      *slog.Logger
	Now         func() time.Time
}

// Result describes one written index.
type Result struct {
	Region  string
	Path    string
	Entries int
	Shards  int
}

// Builder writes search indexes for every catalog file.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder returns a Builder.
func NewBuilder(opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "searchindex")}
}

// BuildAll indexes every catalog_<region>.json under the catalog directory.
// Unparseable catalogs are skipped with a warning.
func (b *Builder) BuildAll() ([]Result, error) {
	matches, err := filepath.Glob(filepath.Join(b.opts.CatalogDir, "catalog_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	sort.Strings(matches)

	var results []Result
	for _, path := range matches {
		region := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "catalog_"), ".json")
		token, err := textutil.RegionToken(region)
		if err != nil {
			logging.WarnWithContext(b.logger, "catalog name has no usable region", "index_catalog_skipped",
				logging.String("catalog", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "no search index written for this file"))
			continue
		}
		records, err := b.readCatalog(path)
		if err != nil {
			logging.WarnWithContext(b.logger, "skipping catalog", "index_catalog_skipped",
				logging.String("catalog", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "no search index written for this region"))
			continue
		}
		result, err := b.write(region, token, records)
		if err != nil {
			return results, err
		}
		b.logger.Info("search index written",
			logging.String(logging.FieldRegion, region),
			logging.String("path", result.Path),
			logging.Int("entries", result.Entries))
		results = append(results, result)
	}
	return results, nil
}

func (b *Builder) readCatalog(path string) ([]catalog.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, catalog.Wrap(catalog.ErrIO, path, "read catalog", err)
	}
	items, err := catalog.DecodeDocument(data, b.opts.WrapperKey)
	if err != nil {
		return nil, err
	}
	records := make([]catalog.Record, 0, len(items))
	for i, item := range items {
		raw, err := catalog.DecodeRawRecord(item)
		if err != nil {
			b.logger.Debug("skipping catalog item", logging.String("catalog", path), logging.Int(logging.FieldRecordIndex, i))
			continue
		}
		records = append(records, catalog.Record{
			ID:             strings.TrimSpace(string(raw.ID)),
			Name:           string(raw.Name),
			Symbol:         string(raw.Symbol),
			Schemes:        []string(raw.Schemes),
			UniversalLinks: []string(raw.UniversalLinks),
			WebHosts:       []string(raw.WebHosts),
			Aliases:        []string(raw.Aliases),
			Categories:     []string(raw.Categories),
			Source: catalog.Source{
				Regions: raw.Source.RegionCodes(),
				Via:     []string(raw.Source.Via),
			},
		})
	}
	return records, nil
}

func (b *Builder) write(region, token string, records []catalog.Record) (Result, error) {
	idx := Build(records, b.opts.Version, b.opts.Now())
	data, err := encode(idx)
	if err != nil {
		return Result{}, fmt.Errorf("encode search index: %w", err)
	}
	path := filepath.Join(b.opts.IndexDir, "search_index_"+token+".json")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return Result{}, catalog.Wrap(catalog.ErrIO, path, "write search index", err)
	}
	result := Result{Region: region, Path: path, Entries: len(idx.Entries)}

	if !b.opts.WriteShards {
		return result, nil
	}
	root := filepath.Dir(b.opts.IndexDir)
	for _, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			continue
		}
		if _, err := textutil.IDFileName(rec.ID, ".json"); err != nil {
			logging.WarnWithContext(b.logger, "id is not a safe file name; shard skipped", "shard_skipped",
				logging.String(logging.FieldAppID, rec.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the index entry points at a missing shard"))
			continue
		}
		shard, err := encode(rec)
		if err != nil {
			return result, fmt.Errorf("encode shard %s: %w", rec.ID, err)
		}
		target := filepath.Join(root, filepath.FromSlash(ShardPath(rec.ID)))
		if err := fileutil.WriteFileAtomic(target, shard, 0o644); err != nil {
			return result, catalog.Wrap(catalog.ErrIO, target, "write shard", err)
		}
		result.Shards++
	}
	return result, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
