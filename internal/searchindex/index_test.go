package searchindex

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"appcatalog/internal/catalog"
	"appcatalog/internal/testsupport"
)

func TestShardPath(t *testing.T) {
	got := ShardPath("minecraft")
	if !strings.HasPrefix(got, "apps/") || !strings.HasSuffix(got, "/minecraft.json") {
		t.Fatalf("unexpected shard path %q", got)
	}
	parts := strings.Split(got, "/")
	if len(parts) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		t.Fatalf("unexpected shard layout %q", got)
	}
	if ShardPath("minecraft") != got {
		t.Fatal("shard path must be deterministic")
	}
}

func TestBuildNormalizesNamesAndSkipsMissingIDs(t *testing.T) {
	idx := Build([]catalog.Record{
		{ID: "minecraft", Name: "Minecraft", Aliases: []string{"マインクラフト", "Ｍｉｎｅ Craft!"}},
		{Name: "No ID"},
		{ID: "uber-eats", Name: "Uber_Eats ー"},
	}, "abc123", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	if idx.Version != "abc123" || idx.GeneratedAt != "2026-01-02T03:04:05.000000Z" {
		t.Errorf("header = %q %q", idx.Version, idx.GeneratedAt)
	}
	if len(idx.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(idx.Entries))
	}
	mc := idx.Entries[0]
	if mc.NameNorm != "minecraft" {
		t.Errorf("name_norm = %q", mc.NameNorm)
	}
	if mc.AliasesNorm[0] != "まいんくらふと" || mc.AliasesNorm[1] != "minecraft" {
		t.Errorf("aliases_norm = %v", mc.AliasesNorm)
	}
	if idx.Entries[1].NameNorm != "ubereats" {
		t.Errorf("name_norm = %q", idx.Entries[1].NameNorm)
	}
}

func TestBuildAllWritesIndexAndShards(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.CatalogPath("jp"), `[{"id": "line", "name": "LINE", "aliases": ["ライン"]}]`)
	testsupport.WriteFile(t, cfg.CatalogPath("us"), `{"apps": [{"id": "venmo", "name": "Venmo"}]}`)
	testsupport.WriteFile(t, cfg.CatalogPath("kr"), `{broken`)

	builder := NewBuilder(Options{
		CatalogDir:  cfg.Paths.CatalogDir,
		IndexDir:    cfg.Paths.IndexDir,
		Version:     "v1",
		WriteShards: true,
		Now:         func() time.Time { return time.Unix(0, 0) },
	})
	results, err := builder.BuildAll()
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(results) != 2 || results[0].Region != "jp" || results[1].Region != "us" {
		t.Fatalf("results = %+v", results)
	}

	var idx Index
	if err := json.Unmarshal([]byte(testsupport.ReadFile(t, filepath.Join(cfg.Paths.IndexDir, "search_index_jp.json"))), &idx); err != nil {
		t.Fatal(err)
	}
	if len(idx.Entries) != 1 || idx.Entries[0].AliasesNorm[0] != "らいん" {
		t.Fatalf("index = %+v", idx)
	}

	shard := filepath.Join(filepath.Dir(cfg.Paths.IndexDir), filepath.FromSlash(ShardPath("line")))
	if !testsupport.Exists(shard) {
		t.Fatalf("shard missing at %s", shard)
	}
}

func TestBuildAllSkipsUnsafeNames(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.CatalogPath("JP"), `[
		{"id": "line", "name": "LINE"},
		{"id": "../escape", "name": "Escape"},
		{"id": ".hidden", "name": "Hidden"}
	]`)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.CatalogDir, "catalog_j p.json"), `[{"id": "x", "name": "X"}]`)

	results, err := NewBuilder(Options{
		CatalogDir:  cfg.Paths.CatalogDir,
		IndexDir:    cfg.Paths.IndexDir,
		WriteShards: true,
	}).BuildAll()
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the JP catalog to be indexed, got %+v", results)
	}
	if r := results[0]; r.Entries != 3 || r.Shards != 1 {
		t.Fatalf("result = %+v", r)
	}
	if !testsupport.Exists(filepath.Join(cfg.Paths.IndexDir, "search_index_jp.json")) {
		t.Fatal("index file should use the lower-cased region")
	}
}
