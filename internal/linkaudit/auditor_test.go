package linkaudit

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"appcatalog/internal/testsupport"
)

func newTestAuditor(t *testing.T, handler http.HandlerFunc) (*Auditor, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	auditor := New(Options{
		Client:      srv.Client(),
		Concurrency: 2,
		UserAgent:   "audit-test",
		BaseURL:     func(host string) string { return srv.URL + "/" + host },
	})
	return auditor, &hits
}

func TestAuditStatuses(t *testing.T) {
	auditor, _ := newTestAuditor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "audit-test" {
			http.Error(w, "bad agent", http.StatusForbidden)
			return
		}
		switch strings.TrimSuffix(r.URL.Path, WellKnownPath) {
		case "/paths.example":
			_, _ = w.Write([]byte(`{"applinks":{"details":[{"appID":"x"},{"paths":["/a","/b","/c","/d","/e","/f","/g"]}]}}`))
		case "/nopaths.example":
			_, _ = w.Write([]byte(`{"applinks":{"details":[]}}`))
		case "/empty.example":
			_, _ = w.Write([]byte("  "))
		case "/html.example":
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	})

	apps := []App{
		{ID: "a", Name: "A", UniversalLinks: []string{"https://paths.example/open"}},
		{ID: "b", Name: "B", WebHosts: []string{"missing.example", "nopaths.example"}},
		{ID: "c", Name: "C", WebHosts: []string{"empty.example", "html.example"}, UniversalLinks: []string{"http://missing.example/x"}},
		{ID: "d", Name: "D"},
	}
	rows, err := auditor.Audit(context.Background(), apps)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	want := []Row{
		{AppID: "a", AppName: "A", URL: "https://paths.example/open", Status: StatusOK, Host: "paths.example", SamplePatterns: "/a;/b;/c;/d;/e;/f"},
		{AppID: "b", AppName: "B", Status: StatusNoPaths, Host: "nopaths.example"},
		{AppID: "c", AppName: "C", URL: "http://missing.example/x", Status: StatusNoUL},
		{AppID: "d", AppName: "D", Status: StatusNoUL},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestAuditStopsAtFirstAnsweringHost(t *testing.T) {
	auditor, hits := newTestAuditor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"applinks":{"details":[{"paths":["*"]}]}}`))
	})
	rows, err := auditor.Audit(context.Background(), []App{
		{ID: "a", Name: "A", WebHosts: []string{"one.example", "two.example", "three.example"}},
	})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if rows[0].Host != "one.example" || rows[0].Status != StatusOK {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", hits.Load())
	}
}

func TestAuditHonorsCancellation(t *testing.T) {
	auditor, _ := newTestAuditor(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := auditor.Audit(ctx, []App{{ID: "a", Name: "A", WebHosts: []string{"x.example"}}}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestCandidateHosts(t *testing.T) {
	app := App{
		WebHosts:       []string{"a.example", "b.example"},
		UniversalLinks: []string{"https://b.example/x", "http://c.example", "myapp://open", "https://d.example/y", "https://e.example"},
	}
	got := CandidateHosts(app, 4)
	want := []string{"a.example", "b.example", "c.example", "d.example"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("CandidateHosts = %v, want %v", got, want)
	}
}

func TestSamplePathsIgnoresOddShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{name: "no applinks", doc: map[string]any{"webcredentials": map[string]any{}}, want: ""},
		{name: "details not a list", doc: map[string]any{"applinks": map[string]any{"details": "x"}}, want: ""},
		{name: "non-string paths", doc: map[string]any{"applinks": map[string]any{"details": []any{map[string]any{"paths": []any{"/a", 2.0}}}}}, want: "/a;2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SamplePaths(tt.doc); got != tt.want {
				t.Fatalf("SamplePaths = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadCatalogSkipsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "catalog_jp.json")
	testsupport.WriteFile(t, first, `{"version":1,"apps":[
		{"id":"minecraft","name":"Minecraft","webHosts":["minecraft.net"]},
		"not an object",
		{"id":"","name":"Nameless"},
		{"id":"noname"}
	]}`)
	second := filepath.Join(dir, "catalog_us.json")
	testsupport.WriteFile(t, second, `[{"id":"minecraft","name":"Minecraft US"},{"id":"line","name":"LINE","universalLinks":"https://line.me/R"}]`)

	var apps []App
	for _, path := range []string{first, second} {
		loaded, err := LoadCatalog(path, "apps", nil)
		if err != nil {
			t.Fatalf("LoadCatalog %s: %v", path, err)
		}
		apps = append(apps, loaded...)
	}
	apps = Dedupe(apps)
	if len(apps) != 2 {
		t.Fatalf("expected 2 apps, got %+v", apps)
	}
	if apps[0].Name != "Minecraft" || apps[1].ID != "line" || apps[1].UniversalLinks[0] != "https://line.me/R" {
		t.Fatalf("unexpected apps %+v", apps)
	}
}

func TestLoadCatalogRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	testsupport.WriteFile(t, path, `{"apps": [`)
	if _, err := LoadCatalog(path, "apps", nil); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Row{{AppID: "a", AppName: "A, Inc", Status: StatusOK, Host: "a.example", SamplePatterns: "/x;/y"}})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "app_id,app_name,url,status,host,sample_patterns\na,\"A, Inc\",,OK,a.example,/x;/y\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}
