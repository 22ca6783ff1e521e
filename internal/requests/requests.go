package requests

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"appcatalog/internal/catalog"
	"appcatalog/internal/fileutil"
	"appcatalog/internal/logging"
	"appcatalog/internal/normalize"
	"appcatalog/internal/textutil"
)

const (
	columnTimestamp = 0
	columnApps      = 1
	intakeVia       = "intake"
)

// timestampLayouts are the form-export formats accepted for column A and --since.
var timestampLayouts = []string{"2006/01/02 15:04:05", "2006-01-02 15:04:05"}

// nameSeparators splits a cell listing several apps.
var nameSeparators = regexp.MustCompile(`[,、，／/]`)

// KnownApp is curated metadata for an application id.
type KnownApp struct {
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Schemes        []string `json:"schemes"`
	UniversalLinks []string `json:"universalLinks"`
	WebHosts       []string `json:"webHosts"`
	Aliases        []string `json:"aliases"`
	Categories     []string `json:"categories"`
}

// KnownApps maps canonical ids to curated metadata.
type KnownApps map[string]KnownApp

// LoadKnownApps reads the known-apps file. A missing file or empty path
// yields an empty set.
func LoadKnownApps(path string) (KnownApps, error) {
	if strings.TrimSpace(path) == "" {
		return KnownApps{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return KnownApps{}, nil
		}
		return nil, fmt.Errorf("read known apps: %w", err)
	}
	var known KnownApps
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, fmt.Errorf("%w: known apps: %w", catalog.ErrMalformedInput, err)
	}
	if known == nil {
		known = KnownApps{}
	}
	return known, nil
}

// Options configures an import.
type Options struct {
	// Since skips rows stamped at or before it. Zero keeps every row.
	Since     time.Time
	Known     KnownApps
	Region    string
	Normalize normalize.Options
	Logger    *slog.Logger
}

// Result summarizes an import.
type Result struct {
	Rows    int
	Skipped int
	Records []catalog.Record
}

// ParseTimestamp parses a form-export timestamp.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SplitNames splits a cell into trimmed, non-empty app names.
func SplitNames(cell string) []string {
	var out []string
	for _, part := range nameSeparators.Split(cell, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Importer converts form exports into pending request records.
type Importer struct {
	opts       Options
	normalizer *normalize.Normalizer
	lookup     map[string]string
	logger     *slog.Logger
}

// NewImporter prepares the known-apps lookup.
func NewImporter(opts Options) *Importer {
	if strings.TrimSpace(opts.Region) == "" {
		opts.Region = "GLOBAL"
	}
	normOpts := opts.Normalize
	normOpts.Region = opts.Region
	imp := &Importer{
		opts:       opts,
		normalizer: normalize.New(normOpts),
		lookup:     make(map[string]string),
		logger:     logging.NewComponentLogger(opts.Logger, "requests"),
	}

	ids := make([]string, 0, len(opts.Known))
	for id := range opts.Known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		imp.register(id, id)
	}
	for _, id := range ids {
		for _, alias := range opts.Known[id].Aliases {
			imp.register(alias, id)
		}
	}
	return imp
}

func (imp *Importer) register(name, id string) {
	key := textutil.LooseKey(name)
	if key == "" {
		return
	}
	if _, taken := imp.lookup[key]; !taken {
		imp.lookup[key] = id
	}
}

// Import reads a CSV export whose first row is a header.
func (imp *Importer) Import(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return &Result{}, nil
		}
		return nil, fmt.Errorf("%w: read header: %w", catalog.ErrMalformedInput, err)
	}

	result := &Result{}
	byID := make(map[string]*catalog.Record)
	var order []string

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", catalog.ErrMalformedInput, err)
		}
		result.Rows++
		if !imp.wanted(row) {
			result.Skipped++
			continue
		}
		cell := ""
		if len(row) > columnApps {
			cell = row[columnApps]
		}
		for _, name := range SplitNames(cell) {
			id, known, ok := imp.identify(name)
			if !ok {
				logging.WarnWithContext(imp.logger, "request name has no usable id", "request_name_skipped",
					logging.String("name", name),
					logging.String(logging.FieldImpact, "name not exported"))
				continue
			}
			if rec, exists := byID[id]; exists {
				rec.Aliases, _ = catalog.AppendUnique(rec.Aliases, name)
				continue
			}
			rec := imp.build(id, name, known)
			byID[id] = &rec
			order = append(order, id)
		}
	}

	for _, id := range order {
		result.Records = append(result.Records, *byID[id])
	}
	return result, nil
}

func (imp *Importer) wanted(row []string) bool {
	if imp.opts.Since.IsZero() || len(row) <= columnTimestamp {
		return true
	}
	stamp, ok := ParseTimestamp(row[columnTimestamp])
	if !ok {
		return true
	}
	return stamp.After(imp.opts.Since)
}

func (imp *Importer) identify(name string) (string, *KnownApp, bool) {
	if id, ok := imp.lookup[textutil.LooseKey(name)]; ok {
		meta := imp.opts.Known[id]
		return id, &meta, true
	}
	id, err := imp.normalizer.SynthesizeID(name, nil)
	if err != nil {
		return "", nil, false
	}
	return id, nil, true
}

func (imp *Importer) build(id, name string, known *KnownApp) catalog.Record {
	display := name
	rec := catalog.Record{ID: id}
	if known != nil {
		if strings.TrimSpace(known.Name) != "" {
			display = strings.TrimSpace(known.Name)
		}
		rec.Symbol = known.Symbol
		rec.Schemes = catalog.Unique(known.Schemes)
		rec.UniversalLinks = catalog.Unique(known.UniversalLinks)
		rec.WebHosts = catalog.MapUnique(known.WebHosts, strings.ToLower)
		rec.Categories = catalog.MapUnique(known.Categories, strings.ToLower)
		rec.Aliases = catalog.Unique(append([]string{display}, known.Aliases...))
	}
	rec.Name = display
	rec.Aliases, _ = catalog.AppendUnique(rec.Aliases, display, name)
	if rec.Symbol == "" {
		rec.Symbol = imp.normalizer.Options().DefaultSymbol
	}
	rec.Source = catalog.Source{
		Regions: []string{strings.ToUpper(imp.opts.Region)},
		Via:     []string{intakeVia},
	}
	rec.EnforceInvariants()
	return rec
}

// WriteRecords writes each record to <dir>/<id>.json as a one-element array
// so the file can be dropped into a region inbox unchanged. It returns the
// written paths and stops at the first id that cannot name a file.
func WriteRecords(dir string, records []catalog.Record) ([]string, error) {
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		data, err := catalog.EncodeRecords([]catalog.Record{rec})
		if err != nil {
			return paths, fmt.Errorf("encode %s: %w", rec.ID, err)
		}
		name, err := textutil.IDFileName(rec.ID, ".json")
		if err != nil {
			return paths, catalog.Wrap(catalog.ErrMalformedInput, rec.ID, "name request file", err)
		}
		path := filepath.Join(dir, name)
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return paths, catalog.Wrap(catalog.ErrIO, path, "write request", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
