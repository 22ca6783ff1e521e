package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"appcatalog/internal/catalog"
	"appcatalog/internal/merge"
	"appcatalog/internal/normalize"
)

func loadOptions() catalog.LoadOptions {
	return catalog.LoadOptions{
		Normalizer: normalize.New(normalize.Options{Region: "JP"}),
		Merger:     merge.New(),
	}
}

func TestLoadMissingEmptyAndUnparseable(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.json":   "  \n",
		"garbage.json": "{not json",
		"scalar.json":  `"apps"`,
	}
	for name, body := range cases {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, name := range []string{"missing.json", "empty.json", "garbage.json", "scalar.json"} {
		t.Run(name, func(t *testing.T) {
			store, err := catalog.Load(filepath.Join(dir, name), loadOptions())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if store.Len() != 0 {
				t.Fatalf("expected empty store, got %d records", store.Len())
			}
		})
	}
}

func TestLoadUnreadableIsIOError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	path := filepath.Join(t.TempDir(), "catalog_jp.json")
	if err := os.WriteFile(path, []byte("[]\n"), 0o000); err != nil {
		t.Fatal(err)
	}
	_, err := catalog.Load(path, loadOptions())
	if !errors.Is(err, catalog.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestLoadWrappedLegacyCatalogAndFoldDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog_jp.json")
	body := `{"apps": [
		{"id": "line", "name": "LINE", "source": {"country": "JP", "via": "manus"}},
		{"id": "line", "name": "LINE", "aliases": ["ライン"]},
		42,
		{"schemes": ["orphan"]}
	]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := catalog.Load(path, loadOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}
	rec, ok := store.Get("line")
	if !ok {
		t.Fatal("line missing")
	}
	if strings.Join(rec.Aliases, ",") != "LINE,ライン" {
		t.Errorf("aliases = %v", rec.Aliases)
	}
	if strings.Join(rec.Source.Regions, ",") != "JP" {
		t.Errorf("regions = %v", rec.Source.Regions)
	}
}

func TestSaveSortedAtomicAndSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogs", "catalog_jp.json")
	store, err := catalog.Load(path, loadOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	src := catalog.Source{Regions: []string{"JP"}, Via: []string{"manus"}}
	store.Put(catalog.Record{ID: "zoom", Name: "Zoom", Symbol: "app.fill", Source: src})
	store.Put(catalog.Record{ID: "Amazon", Name: "Amazon", Symbol: "app.fill", Source: src})
	store.Put(catalog.Record{ID: "line", Name: "LINE", Symbol: "app.fill", Source: src, UniversalLinks: []string{"https://www.line.me/R/"}})

	changed, err := store.Save()
	if err != nil || !changed {
		t.Fatalf("Save: changed=%v err=%v", changed, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasSuffix(text, "]\n") {
		t.Errorf("catalog should end with a newline: %q", text[len(text)-3:])
	}
	if !strings.HasPrefix(text, "[\n  {") {
		t.Errorf("catalog should be an indented array: %q", text[:8])
	}
	iAmazon, iLine, iZoom := strings.Index(text, `"Amazon"`), strings.Index(text, `"line"`), strings.Index(text, `"zoom"`)
	if !(iAmazon < iLine && iLine < iZoom) {
		t.Errorf("records not sorted by id: %d %d %d", iAmazon, iLine, iZoom)
	}
	if !strings.Contains(text, `"line.me"`) {
		t.Error("link host missing from webHosts")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}

	reloaded, err := catalog.Load(path, loadOptions())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if dirty, _ := reloaded.Dirty(); dirty {
		t.Fatal("reloaded catalog should not be dirty")
	}
	if changed, err := reloaded.Save(); err != nil || changed {
		t.Fatalf("unchanged save: changed=%v err=%v", changed, err)
	}
}

func TestSaveBacksUpUnparseableCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog_jp.json")
	if err := os.WriteFile(path, []byte("[{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := catalog.Load(path, loadOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	store.Put(catalog.Record{ID: "line", Name: "LINE"})
	if _, err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	backup, err := os.ReadFile(path + ".invalid")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != "[{broken" {
		t.Fatalf("backup = %q", backup)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	store := catalog.NewStore(filepath.Join(t.TempDir(), "c.json"), nil)
	store.Put(catalog.Record{ID: "line", Name: "LINE", Aliases: []string{"LINE"}})

	staged := store.Clone()
	rec, _ := staged.Get("line")
	rec.Aliases = append(rec.Aliases, "ライン")
	staged.Put(catalog.Record{ID: "zoom", Name: "Zoom"})

	orig, _ := store.Get("line")
	if len(orig.Aliases) != 1 || store.Len() != 1 {
		t.Fatalf("staged changes leaked: aliases=%v len=%d", orig.Aliases, store.Len())
	}
}
