package merge

import (
	"reflect"
	"sort"
	"testing"

	"appcatalog/internal/catalog"
)

func existingMinecraft() catalog.Record {
	return catalog.Record{
		ID:       "minecraft",
		Name:     "Minecraft",
		Symbol:   "gamecontroller.fill",
		Aliases:  []string{"Minecraft", "我的世界"},
		WebHosts: []string{"minecraft.net"},
		Source:   catalog.Source{Regions: []string{"JP"}, Via: []string{"manus"}},
	}
}

func TestMergeMinecraftScenario(t *testing.T) {
	dst := existingMinecraft()
	src := catalog.Record{
		ID:             "minecraft",
		Name:           "Minecraft",
		Symbol:         "app.fill",
		Aliases:        []string{"マインクラフト", "Minecraft"},
		UniversalLinks: []string{"https://www.minecraft.net/play"},
		WebHosts:       []string{"minecraft.net"},
		Source:         catalog.Source{Regions: []string{"JP"}, Via: []string{"manus"}},
	}

	if !New().Merge(&dst, src) {
		t.Fatal("expected merge to report a change")
	}
	if want := []string{"Minecraft", "我的世界", "マインクラフト"}; !reflect.DeepEqual(dst.Aliases, want) {
		t.Errorf("aliases = %v, want %v", dst.Aliases, want)
	}
	if want := []string{"minecraft.net"}; !reflect.DeepEqual(dst.WebHosts, want) {
		t.Errorf("webHosts = %v, want %v", dst.WebHosts, want)
	}
	if dst.Symbol != "gamecontroller.fill" {
		t.Errorf("symbol overwritten: %q", dst.Symbol)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	src := catalog.Record{
		Name:           "Minecraft Java",
		Schemes:        []string{"minecraft"},
		UniversalLinks: []string{"https://education.minecraft.net/join"},
		Aliases:        []string{"Minecraft Java"},
		Categories:     []string{"games"},
		Source:         catalog.Source{Regions: []string{"US"}, Via: []string{"form"}},
	}
	once := existingMinecraft()
	New().Merge(&once, src)

	twice := once.Clone()
	if New().Merge(&twice, src) {
		t.Fatal("second merge reported a change")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second merge altered record:\n%+v\n%+v", once, twice)
	}
}

func TestMergeUnionCorrectness(t *testing.T) {
	a := catalog.Record{ID: "app", Name: "App", Schemes: []string{"a", "b"}, Categories: []string{"x"}}
	b := catalog.Record{ID: "app", Name: "App", Schemes: []string{"b", "c"}, Categories: []string{"y", "x"}}

	dst := New().Admit(a)
	New().Merge(&dst, b)

	assertSet(t, "schemes", dst.Schemes, []string{"a", "b", "c"})
	assertSet(t, "categories", dst.Categories, []string{"x", "y"})
	assertSet(t, "aliases", dst.Aliases, []string{"App"})
	if !reflect.DeepEqual(dst.Schemes, []string{"a", "b", "c"}) {
		t.Errorf("existing order not kept: %v", dst.Schemes)
	}
}

func TestMergeFillsEmptyNameAndSymbol(t *testing.T) {
	dst := catalog.Record{ID: "app"}
	New().Merge(&dst, catalog.Record{Name: "App", Symbol: "star"})
	if dst.Name != "App" || dst.Symbol != "star" {
		t.Fatalf("got name=%q symbol=%q", dst.Name, dst.Symbol)
	}
	New().Merge(&dst, catalog.Record{Name: "Other", Symbol: "moon"})
	if dst.Name != "App" || dst.Symbol != "star" {
		t.Fatalf("existing values replaced: name=%q symbol=%q", dst.Name, dst.Symbol)
	}
	assertSet(t, "aliases", dst.Aliases, []string{"App", "Other"})
}

func TestMergeDerivesHostsFromLinks(t *testing.T) {
	dst := catalog.Record{ID: "app", Name: "App"}
	New().Merge(&dst, catalog.Record{UniversalLinks: []string{"https://www.Example.com/a", "not a url"}})
	for _, link := range dst.UniversalLinks {
		host := catalog.LinkHost(link)
		if host == "" {
			continue
		}
		found := false
		for _, h := range dst.WebHosts {
			if h == host {
				found = true
			}
		}
		if !found {
			t.Errorf("host %q of %q missing from webHosts %v", host, link, dst.WebHosts)
		}
	}
}

func TestAdmitEnforcesInvariants(t *testing.T) {
	rec := New().Admit(catalog.Record{
		ID:             " line ",
		Name:           "LINE",
		UniversalLinks: []string{"https://line.me/R/", "https://line.me/R/"},
	})
	if rec.ID != "line" {
		t.Errorf("ID = %q", rec.ID)
	}
	assertSet(t, "universalLinks", rec.UniversalLinks, []string{"https://line.me/R/"})
	assertSet(t, "webHosts", rec.WebHosts, []string{"line.me"})
	assertSet(t, "aliases", rec.Aliases, []string{"LINE"})
	if rec.Schemes == nil || rec.Categories == nil {
		t.Error("empty sets should encode as arrays")
	}
}

func assertSet(t *testing.T, field string, got, want []string) {
	t.Helper()
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	if !reflect.DeepEqual(g, w) {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}
