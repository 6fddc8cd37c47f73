package fanarttv_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"artreview/internal/artwork"
	"artreview/internal/providers"
	"artreview/internal/providers/fanarttv"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := fanarttv.New("", "", "https://example.com"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestFetchMovieArtwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/949" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("api-key") != "key" || r.Header.Get("client-key") != "personal" {
			t.Errorf("expected key headers, got %v", r.Header)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Heat",
			"movieposter": [
				{"id": "1", "url": "https://assets.fanart.tv/fanart/movies/949/movieposter/heat-1.jpg", "lang": "en", "likes": "10"},
				{"id": "2", "url": "https://assets.fanart.tv/fanart/movies/949/movieposter/heat-2.jpg", "lang": "00", "likes": "0"}
			],
			"hdmovielogo": [{"id": "3", "url": "https://assets.fanart.tv/fanart/movies/949/hdmovielogo/heat.png", "lang": "en", "likes": "2"}],
			"moviebackground4k": [{"id": "4", "url": "https://assets.fanart.tv/fanart/movies/949/moviebackground/heat-4k.jpg", "lang": "", "likes": "1"}],
			"moviebackground": [{"id": "5", "url": "https://assets.fanart.tv/fanart/movies/949/moviebackground/heat.jpg", "lang": "", "likes": "1"}]
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := fanarttv.New("key", "personal", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	images, err := client.Fetch(context.Background(), providers.Ref{MediaType: artwork.MediaMovie, TMDBID: "949"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	posters := images[artwork.ArtPoster]
	if len(posters) != 2 {
		t.Fatalf("expected 2 posters, got %#v", posters)
	}
	if posters[0].Width != 1000 || posters[0].Height != 1426 || math.Abs(posters[0].Quality-7.3) > 1e-9 {
		t.Fatalf("unexpected poster metadata: %#v", posters[0])
	}
	if posters[0].PreviewURL != "https://assets.fanart.tv/preview/movies/949/movieposter/heat-1.jpg" {
		t.Fatalf("unexpected preview url %q", posters[0].PreviewURL)
	}
	if posters[1].Language != "" || posters[1].Quality != 2.3 {
		t.Fatalf("expected text-free unrated poster, got %#v", posters[1])
	}
	keyart := images[artwork.ArtKeyArt]
	if len(keyart) != 1 || keyart[0].URL != posters[1].URL {
		t.Fatalf("expected text-free poster offered as key art, got %#v", keyart)
	}
	fanart := images[artwork.ArtFanart]
	if len(fanart) != 2 || fanart[0].Width != 3840 {
		t.Fatalf("expected 4k background first, got %#v", fanart)
	}
	if logos := images[artwork.ArtClearLogo]; len(logos) != 1 || logos[0].Width != 800 {
		t.Fatalf("unexpected logos %#v", logos)
	}
}

func TestFetchTVRequiresTVDBID(t *testing.T) {
	client, _ := fanarttv.New("key", "", "https://example.com")
	_, err := client.Fetch(context.Background(), providers.Ref{MediaType: artwork.MediaTVShow, TMDBID: "1396"})
	if !errors.Is(err, providers.ErrNoID) {
		t.Fatalf("expected ErrNoID, got %v", err)
	}
}

func TestFetchTVSeasonHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"characterart": [{"id": "1", "url": "https://assets.fanart.tv/fanart/tv/81189/characterart/a.png", "lang": "en", "likes": "1"}],
			"tvthumb": [{"id": "2", "url": "https://assets.fanart.tv/fanart/tv/81189/tvthumb/b.jpg", "lang": "en", "likes": "3", "season": "2"}]
		}`))
	}))
	t.Cleanup(server.Close)

	client, _ := fanarttv.New("key", "", server.URL)
	images, err := client.Fetch(context.Background(), providers.Ref{MediaType: artwork.MediaTVShow, TVDBID: "81189"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if c := images[artwork.ArtCharacterArt]; len(c) != 1 || c[0].Width != 512 {
		t.Fatalf("unexpected character art %#v", c)
	}
	if l := images[artwork.ArtLandscape]; len(l) != 1 || l[0].Position != 2 {
		t.Fatalf("expected season hint on landscape, got %#v", l)
	}
}

func TestFetchAlbumArtwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/music/albums/abc" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"albums": {"abc": {
			"albumcover": [{"id": "1", "url": "https://assets.fanart.tv/fanart/music/x/albumcover/c.jpg", "likes": "4"}],
			"cdart": [{"id": "2", "url": "https://assets.fanart.tv/fanart/music/x/cdart/d.png", "likes": "1"}]
		}}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := fanarttv.New("key", "", server.URL)
	images, err := client.Fetch(context.Background(), providers.Ref{MediaType: artwork.MediaAlbum, MusicBrainzID: "abc"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(images[artwork.ArtThumb]) != 1 || len(images[artwork.ArtDiscArt]) != 1 {
		t.Fatalf("unexpected album images %#v", images)
	}
}

func TestFetchNotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client, _ := fanarttv.New("key", "", server.URL)
	images, err := client.Fetch(context.Background(), providers.Ref{MediaType: artwork.MediaArtist, MusicBrainzID: "m"})
	if err != nil || images.Count() != 0 {
		t.Fatalf("expected empty images, got %v %v", images, err)
	}
}

func TestSupports(t *testing.T) {
	client, _ := fanarttv.New("key", "", "https://example.com")
	if !client.Supports(artwork.MediaTVShow, artwork.ArtCharacterArt) {
		t.Fatal("expected character art support for shows")
	}
	if client.Supports(artwork.MediaMovie, artwork.ArtCharacterArt) {
		t.Fatal("character art is show-only")
	}
	if !client.Supports(artwork.MediaAlbum, artwork.ArtDiscArt) || client.Supports(artwork.MediaAlbum, artwork.ArtFanart) {
		t.Fatal("unexpected album capability")
	}
}
