package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"artreview/internal/artwork"
	"artreview/internal/providers"
)

func TestRefKeyIsStable(t *testing.T) {
	a := providers.Ref{MediaType: artwork.MediaMovie, TMDBID: "949", IMDBID: "TT0113277"}
	b := providers.Ref{MediaType: artwork.MediaMovie, IMDBID: "tt0113277", TMDBID: " 949 ", Title: "Heat"}
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
	if a.Key() != "movie|tmdb=949|imdb=tt0113277" {
		t.Fatalf("unexpected key %q", a.Key())
	}
	if (providers.Ref{MediaType: artwork.MediaAlbum}).HasID() {
		t.Fatal("expected ref without ids to report no id")
	}
}

func TestImagesPoolUsesBaseType(t *testing.T) {
	images := providers.Images{}
	images.Add(artwork.ArtFanart, artwork.Candidate{URL: "https://x/a.jpg"})
	images.Add(artwork.ArtPoster, artwork.Candidate{URL: "https://x/b.jpg"})
	if len(images.Pool(artwork.ArtExtraFanart)) != 1 {
		t.Fatal("expected extrafanart to draw from the fanart pool")
	}
	if images.Count() != 2 {
		t.Fatalf("expected 2 images, got %d", images.Count())
	}
}

func TestCapabilitiesSupports(t *testing.T) {
	caps := providers.Capabilities{artwork.MediaMovie: {artwork.ArtPoster, artwork.ArtFanart}}
	if !caps.Supports(artwork.MediaMovie, artwork.ArtExtraFanart) {
		t.Fatal("expected extrafanart via fanart pool")
	}
	if caps.Supports(artwork.MediaMovie, artwork.ArtBanner) || caps.Supports(artwork.MediaAlbum, artwork.ArtPoster) {
		t.Fatal("unexpected capability")
	}
}

func TestGetJSONReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "k" {
			t.Errorf("expected api-key header")
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	var dest map[string]any
	err := providers.GetJSON(context.Background(), server.Client(), "fanart.tv", server.URL, map[string]string{"api-key": "k"}, &dest)
	if !providers.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
