package textutil

import (
	"errors"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"plain", "Minecraft", 64, "minecraft"},
		{"spaces and punctuation", "  Google Maps: Navigation!  ", 64, "google-maps-navigation"},
		{"diacritics", "Café au Lait", 64, "cafe-au-lait"},
		{"full width", "ＬＩＮＥ", 64, "line"},
		{"underscores collapse", "my__app--name", 64, "my-app-name"},
		{"mixed script", "Pokémon GO ポケモン", 64, "pokemon-go"},
		{"japanese only", "マインクラフト", 64, ""},
		{"empty", "   ", 64, ""},
		{"cut trims trailing separator", "abcd efgh", 5, "abcd"},
		{"unlimited", strings.Repeat("a", 100), 0, strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	first := Digest("マインクラフト", "app-")
	second := Digest("マインクラフト", "app-")
	if first != second {
		t.Fatalf("digest not deterministic: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "app-") || len(first) != len("app-")+digestLength {
		t.Fatalf("unexpected digest shape %q", first)
	}
	if Digest("  マインクラフト ", "app-") != first {
		t.Fatal("expected surrounding whitespace to be ignored")
	}
	if Digest("我的世界", "app-") == first {
		t.Fatal("expected different names to produce different digests")
	}
}

func TestSearchKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"マインクラフト", "まいんくらふと"},
		{"Minecraft", "minecraft"},
		{"Ｍｉｎｅｃｒａｆｔ", "minecraft"},
		{"LINE マンガ", "lineまんが"},
		{"スーパーマリオ", "すぱまりお"},
		{"Google Maps - Navigation", "googlemapsnavigation"},
		{"snake_case", "snakecase"},
	}
	for _, tt := range tests {
		if got := SearchKey(tt.input); got != tt.want {
			t.Errorf("SearchKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLooseKey(t *testing.T) {
	if LooseKey("Mine-craft™") != LooseKey("minecraft") {
		t.Fatalf("expected decorated name to match: %q", LooseKey("Mine-craft™"))
	}
	if got := LooseKey(" Google  Maps "); got != "googlemaps" {
		t.Fatalf("LooseKey = %q", got)
	}
}

func TestFoldKey(t *testing.T) {
	if got := FoldKey("  MineCraft "); got != "minecraft" {
		t.Fatalf("FoldKey = %q", got)
	}
}

func TestRegionToken(t *testing.T) {
	tests := map[string]string{
		"JP":      "jp",
		" us ":    "us",
		"zh-Hant": "zh-hant",
		"eu_west": "eu_west",
	}
	for input, want := range tests {
		got, err := RegionToken(input)
		if err != nil || got != want {
			t.Errorf("RegionToken(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	for _, input := range []string{"", "../etc", "j p", "jp.json", "日本"} {
		if _, err := RegionToken(input); !errors.Is(err, ErrUnsafeName) {
			t.Errorf("RegionToken(%q) should be rejected, got %v", input, err)
		}
	}
}

func TestIDFileName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "line", want: "line.json"},
		{id: "app-3f2a9c1b", want: "app-3f2a9c1b.json"},
		{id: "LINE.Lite", want: "LINE.Lite.json"},
		{id: "マインクラフト", want: "マインクラフト.json"},
		{id: ""},
		{id: " line"},
		{id: "."},
		{id: ".."},
		{id: ".hidden"},
		{id: "../line"},
		{id: "a/b"},
		{id: `a\b`},
		{id: "c:d"},
		{id: "tab\there"},
	}
	for _, tt := range tests {
		got, err := IDFileName(tt.id, ".json")
		if tt.want == "" {
			if !errors.Is(err, ErrUnsafeName) {
				t.Errorf("IDFileName(%q) = %q, %v; want ErrUnsafeName", tt.id, got, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("IDFileName(%q) = %q, %v; want %q", tt.id, got, err, tt.want)
		}
	}
}
