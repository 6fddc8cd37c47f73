package artwork_test

import (
	"testing"

	"artreview/internal/artwork"
)

func TestNormalizeURLUnwrapsImageScheme(t *testing.T) {
	wrapped := "image://https%3a%2f%2fimage.tmdb.org%2ft%2fp%2foriginal%2fabc.jpg/"
	plain := "https://IMAGE.tmdb.org/t/p/original/abc.jpg"
	if got, want := artwork.NormalizeURL(wrapped), artwork.NormalizeURL(plain); got != want {
		t.Fatalf("expected wrapped and plain URLs to normalize equally, got %q vs %q", got, want)
	}
	if !artwork.SameURL("http://image.tmdb.org/t/p/original/abc.jpg", plain) {
		t.Fatal("expected http and https variants to match")
	}
}

func TestNormalizeURLDropsFanartQuery(t *testing.T) {
	a := "https://assets.fanart.tv/fanart/movies/1/moviebackground/x.jpg?v=1"
	b := "https://assets.fanart.tv/fanart/movies/1/moviebackground/x.jpg"
	if !artwork.SameURL(a, b) {
		t.Fatal("expected fanart.tv query strings to be ignored")
	}
	c := "https://example.com/x.jpg?v=1"
	d := "https://example.com/x.jpg?v=2"
	if artwork.SameURL(c, d) {
		t.Fatal("expected query strings on other hosts to be significant")
	}
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	input := []artwork.Candidate{
		{Provider: "tmdb", URL: "https://img.example/a.jpg"},
		{Provider: "fanarttv", URL: "https://img.example/a.jpg/"},
		{Provider: "fanarttv", URL: "https://other.example/a.jpg"},
		{Provider: "fanarttv", URL: ""},
	}
	out := artwork.Dedup(input)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	if out[0].Provider != "tmdb" || out[1].URL != "https://other.example/a.jpg" {
		t.Fatalf("unexpected dedup result: %#v", out)
	}
}

func TestRankOrdersByQualityThenPixels(t *testing.T) {
	candidates := []artwork.Candidate{
		{URL: "a", Quality: 5, Width: 100, Height: 100},
		{URL: "b", Quality: 7, Width: 100, Height: 100},
		{URL: "c", Quality: 5, Width: 200, Height: 200},
		{URL: "d", Quality: 5, Width: 100, Height: 100},
	}
	artwork.Rank(candidates)
	got := ""
	for _, c := range candidates {
		got += c.URL
	}
	if got != "bcad" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"en":    "en",
		"en-US": "en",
		"EN":    "en",
		"pt-BR": "pt",
		"":      "",
		"xx":    "",
		"00":    "",
	}
	for input, want := range cases {
		if got := artwork.NormalizeLanguage(input); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLanguagePolicyFilters(t *testing.T) {
	policy := artwork.LanguagePolicy{Preferred: "en-US", TextFree: []artwork.ArtType{artwork.ArtFanart}}

	poster := policy.FilterFor(artwork.ArtPoster)
	if !poster.Matches(artwork.Candidate{Language: "en"}) {
		t.Fatal("expected english poster to match")
	}
	if poster.Matches(artwork.Candidate{Language: "de"}) || poster.Matches(artwork.Candidate{}) {
		t.Fatal("expected non-english and text-free posters to be rejected")
	}

	fanart := policy.FilterFor(artwork.ArtFanart)
	if !fanart.Matches(artwork.Candidate{}) {
		t.Fatal("expected text-free fanart to match")
	}
	if fanart.Matches(artwork.Candidate{Language: "en"}) {
		t.Fatal("expected fanart with text to be rejected")
	}
	if fanart.String() != "text-free" {
		t.Fatalf("unexpected filter label %q", fanart.String())
	}
}

func TestParseSlot(t *testing.T) {
	if n, ok := artwork.ParseSlot("fanart12", artwork.ArtFanart); !ok || n != 12 {
		t.Fatalf("expected fanart12 to parse as 12, got %d %v", n, ok)
	}
	for _, key := range []string{"fanart", "fanart0", "fanartx", "poster1"} {
		if _, ok := artwork.ParseSlot(key, artwork.ArtFanart); ok {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
	if artwork.SlotName(artwork.ArtFanart, 3) != "fanart3" {
		t.Fatal("unexpected slot name")
	}
	if artwork.ArtExtraFanart.PoolType() != artwork.ArtFanart || !artwork.ArtExtraFanart.IsMulti() {
		t.Fatal("expected extrafanart to draw from fanart")
	}
}

func TestScopeMediaTypes(t *testing.T) {
	scope, err := artwork.ParseScope("tvshows")
	if err != nil {
		t.Fatalf("ParseScope failed: %v", err)
	}
	if types := scope.MediaTypes(); len(types) != 1 || types[0] != artwork.MediaTVShow {
		t.Fatalf("unexpected media types: %v", types)
	}
	if types := artwork.ScopeMusic.MediaTypes(); len(types) != 2 {
		t.Fatalf("expected artist and album for music, got %v", types)
	}
	if _, err := artwork.ParseScope("games"); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func TestSortByPriority(t *testing.T) {
	types := []artwork.ArtType{artwork.ArtKeyArt, artwork.ArtBanner, artwork.ArtPoster, artwork.ArtFanart}
	artwork.SortByPriority(types)
	if types[0] != artwork.ArtPoster || types[1] != artwork.ArtFanart || types[3] != artwork.ArtKeyArt {
		t.Fatalf("unexpected priority order: %v", types)
	}
}
