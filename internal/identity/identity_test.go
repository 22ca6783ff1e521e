package identity

import (
	"testing"

	"appcatalog/internal/catalog"
)

func fixtureIndex() *Index {
	return BuildIndex([]catalog.Record{
		{ID: "minecraft", Name: "Minecraft", Aliases: []string{"Minecraft", "我的世界"}, WebHosts: []string{"minecraft.net"}},
		{ID: "mojang-launcher", Name: "Mojang Launcher", Aliases: []string{"Mojang Launcher", "MC"}, WebHosts: []string{"mojang.com", "help.minecraft.net"}},
		{ID: "x", Name: "X", Aliases: []string{"X", "Twitter"}, WebHosts: []string{"x.com", "twitter.com"}},
	})
}

func TestResolverSignals(t *testing.T) {
	r, err := NewResolver(fixtureIndex(), nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	tests := []struct {
		name       string
		draft      catalog.Record
		wantID     string
		wantSignal Signal
		wantMatch  bool
	}{
		{"id", catalog.Record{ID: "x", Name: "Something Else"}, "x", SignalID, true},
		{"name case-insensitive", catalog.Record{ID: "mc-new", Name: "  MINECRAFT "}, "minecraft", SignalName, true},
		{"alias", catalog.Record{ID: "tw", Name: "Tweets", Aliases: []string{"Tweets", "twitter"}}, "x", SignalAlias, true},
		{"host", catalog.Record{ID: "m", Name: "Mojang", WebHosts: []string{"Mojang.com"}}, "mojang-launcher", SignalHost, true},
		{"new identity", catalog.Record{ID: "line", Name: "LINE", WebHosts: []string{"line.me"}}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := r.Resolve(tt.draft)
			if ok != tt.wantMatch {
				t.Fatalf("matched = %v, want %v (%+v)", ok, tt.wantMatch, m)
			}
			if m.ID != tt.wantID || m.Signal != tt.wantSignal {
				t.Errorf("got %s via %s, want %s via %s", m.ID, m.Signal, tt.wantID, tt.wantSignal)
			}
		})
	}
}

func TestResolverIDBeatsAliasAndHostOnOtherRecords(t *testing.T) {
	r, err := NewResolver(fixtureIndex(), DefaultPriority)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	draft := catalog.Record{
		ID:       "minecraft",
		Name:     "Mojang Launcher",
		Aliases:  []string{"Twitter"},
		WebHosts: []string{"mojang.com"},
	}
	m, ok := r.Resolve(draft)
	if !ok || m.ID != "minecraft" || m.Signal != SignalID {
		t.Fatalf("expected id match on minecraft, got %+v (ok=%v)", m, ok)
	}
}

func TestResolverNameBeatsAlias(t *testing.T) {
	idx := BuildIndex([]catalog.Record{
		{ID: "a", Name: "Alpha", Aliases: []string{"Alpha", "Maps"}},
		{ID: "maps", Name: "Maps", Aliases: []string{"Maps"}},
	})
	r, _ := NewResolver(idx, nil)
	m, ok := r.Resolve(catalog.Record{ID: "zzz", Name: "maps", Aliases: []string{"maps"}})
	if !ok || m.ID != "maps" || m.Signal != SignalName {
		t.Fatalf("expected name match on maps, got %+v", m)
	}
}

func TestIndexSharedKeyOwnerIgnoresAddOrder(t *testing.T) {
	first := catalog.Record{ID: "Beta", Aliases: []string{"Shared"}, WebHosts: []string{"shared.example"}}
	second := catalog.Record{ID: "alpha", Aliases: []string{"shared"}, WebHosts: []string{"SHARED.example"}}

	for _, order := range [][]catalog.Record{{first, second}, {second, first}} {
		idx := BuildIndex(order)
		if m, _ := MatchByAlias(idx, catalog.Record{Aliases: []string{"SHARED"}}); m.ID != "alpha" {
			t.Errorf("alias owner = %q, want alpha", m.ID)
		}
		if m, _ := MatchByHost(idx, catalog.Record{WebHosts: []string{"shared.example"}}); m.ID != "alpha" {
			t.Errorf("host owner = %q, want alpha", m.ID)
		}
	}
}

func TestObserveMatchesRebuiltIndex(t *testing.T) {
	records := []catalog.Record{
		{ID: "alpha", Name: "Alpha"},
		{ID: "zed", Name: "Zed", Aliases: []string{"Zed", "Foo"}},
	}
	r, _ := NewResolver(BuildIndex(records[1:]), nil)
	r.Observe(records[0])
	records[0].Aliases = []string{"Alpha", "foo"}
	r.Observe(records[0])

	rebuilt := BuildIndex(records)
	for _, alias := range []string{"foo", "zed", "alpha"} {
		got, _ := MatchByAlias(r.Index(), catalog.Record{Aliases: []string{alias}})
		want, _ := MatchByAlias(rebuilt, catalog.Record{Aliases: []string{alias}})
		if got.ID != want.ID {
			t.Errorf("alias %q: incremental owner %q, rebuilt owner %q", alias, got.ID, want.ID)
		}
	}
	if m, _ := MatchByAlias(r.Index(), catalog.Record{Aliases: []string{"FOO"}}); m.ID != "alpha" {
		t.Errorf("foo owner = %q, want alpha", m.ID)
	}
}

func TestObserveIndexesNewKeysOnly(t *testing.T) {
	r, _ := NewResolver(fixtureIndex(), nil)
	rec := catalog.Record{ID: "zoom", Name: "Zoom", Aliases: []string{"Zoom", "マインクラフト", "Twitter"}}
	r.Observe(rec)

	if m, ok := MatchByAlias(r.Index(), catalog.Record{Aliases: []string{"マインクラフト"}}); !ok || m.ID != "zoom" {
		t.Errorf("new alias not indexed: %+v", m)
	}
	if m, _ := MatchByAlias(r.Index(), catalog.Record{Aliases: []string{"twitter"}}); m.ID != "x" {
		t.Errorf("existing alias reassigned to %q", m.ID)
	}
}

func TestIndexCloneIsIndependent(t *testing.T) {
	base := fixtureIndex()
	staged := base.Clone()
	staged.Add(catalog.Record{ID: "line", Name: "LINE"})

	if _, ok := MatchByID(base, catalog.Record{ID: "line"}); ok {
		t.Fatal("clone mutation leaked into base index")
	}
	if staged.Len() != base.Len()+1 {
		t.Fatalf("staged len = %d, base len = %d", staged.Len(), base.Len())
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []Signal
		wantErr bool
	}{
		{"empty uses default", nil, DefaultPriority, false},
		{"host before alias", []string{"id", "name", "host", "alias"}, []Signal{SignalID, SignalName, SignalHost, SignalAlias}, false},
		{"case folded", []string{"ID", " Name "}, []Signal{SignalID, SignalName}, false},
		{"unknown", []string{"id", "scheme"}, nil, true},
		{"duplicate", []string{"id", "name", "name"}, nil, true},
		{"id not first", []string{"name", "id"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
