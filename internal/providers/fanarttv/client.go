package fanarttv

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"artreview/internal/artwork"
	"artreview/internal/providers"
)

// Name is the provider label attached to fanart.tv candidates.
const Name = "fanart.tv"

const (
	likesWeight  = 0.73
	defaultScore = 2.3
)

// kind maps one fanart.tv image list onto an art type with its fixed size.
type kind struct {
	artType artwork.ArtType
	width   int
	height  int
}

var movieKinds = map[string]kind{
	"movieposter":       {artwork.ArtPoster, 1000, 1426},
	"moviebackground":   {artwork.ArtFanart, 1920, 1080},
	"moviebackground4k": {artwork.ArtFanart, 3840, 2160},
	"hdmovielogo":       {artwork.ArtClearLogo, 800, 310},
	"movielogo":         {artwork.ArtClearLogo, 400, 155},
	"hdmovieclearart":   {artwork.ArtClearArt, 1000, 562},
	"movieclearart":     {artwork.ArtClearArt, 1000, 562},
	"moviebanner":       {artwork.ArtBanner, 1000, 185},
	"moviedisc":         {artwork.ArtDiscArt, 1000, 1000},
	"moviethumb":        {artwork.ArtLandscape, 1000, 562},
}

var tvKinds = map[string]kind{
	"tvposter":         {artwork.ArtPoster, 1000, 1426},
	"showbackground":   {artwork.ArtFanart, 1920, 1080},
	"showbackground4k": {artwork.ArtFanart, 3840, 2160},
	"hdtvlogo":         {artwork.ArtClearLogo, 800, 310},
	"clearlogo":        {artwork.ArtClearLogo, 400, 155},
	"hdclearart":       {artwork.ArtClearArt, 1000, 562},
	"clearart":         {artwork.ArtClearArt, 1000, 562},
	"tvbanner":         {artwork.ArtBanner, 1000, 185},
	"tvthumb":          {artwork.ArtLandscape, 1000, 562},
	"characterart":     {artwork.ArtCharacterArt, 512, 512},
}

var artistKinds = map[string]kind{
	"artistthumb":      {artwork.ArtThumb, 1000, 1000},
	"artistbackground": {artwork.ArtFanart, 1920, 1080},
	"hdmusiclogo":      {artwork.ArtClearLogo, 800, 310},
	"musiclogo":        {artwork.ArtClearLogo, 400, 155},
	"musicbanner":      {artwork.ArtBanner, 1000, 185},
}

var albumKinds = map[string]kind{
	"albumcover": {artwork.ArtThumb, 1000, 1000},
	"cdart":      {artwork.ArtDiscArt, 1000, 1000},
}

var capabilities = providers.Capabilities{
	artwork.MediaMovie: {
		artwork.ArtPoster, artwork.ArtFanart, artwork.ArtClearLogo, artwork.ArtClearArt,
		artwork.ArtBanner, artwork.ArtDiscArt, artwork.ArtLandscape, artwork.ArtKeyArt,
	},
	// The tv endpoint carries no disc art.
	artwork.MediaTVShow: {
		artwork.ArtPoster, artwork.ArtFanart, artwork.ArtClearLogo, artwork.ArtClearArt,
		artwork.ArtBanner, artwork.ArtLandscape, artwork.ArtCharacterArt,
	},
	artwork.MediaArtist: {artwork.ArtThumb, artwork.ArtFanart, artwork.ArtClearLogo, artwork.ArtBanner},
	artwork.MediaAlbum:  {artwork.ArtThumb, artwork.ArtDiscArt},
}

// Image is one entry of a fanart.tv image list.
type Image struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	URLThumb string `json:"url_thumb"`
	Lang     string `json:"lang"`
	Likes    string `json:"likes"`
	Season   string `json:"season"`
}

type albumsResponse struct {
	Albums map[string]map[string]json.RawMessage `json:"albums"`
}

// Client provides access to the fanart.tv v3 API.
type Client struct {
	apiKey     string
	clientKey  string
	baseURL    string
	httpClient *http.Client
}

var _ providers.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a fanart.tv client. clientKey is the optional personal key.
func New(apiKey, clientKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("fanart.tv api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("fanart.tv base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		clientKey:  strings.TrimSpace(clientKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements providers.Provider.
func (c *Client) Name() string { return Name }

// Supports implements providers.Provider.
func (c *Client) Supports(mediaType artwork.MediaType, artType artwork.ArtType) bool {
	return capabilities.Supports(mediaType, artType)
}

// Fetch returns every image fanart.tv holds for the referenced item.
func (c *Client) Fetch(ctx context.Context, ref providers.Ref) (providers.Images, error) {
	var (
		path  string
		kinds map[string]kind
	)
	switch ref.MediaType {
	case artwork.MediaMovie:
		id := firstNonEmpty(ref.TMDBID, ref.IMDBID)
		if id == "" {
			return nil, providers.ErrNoID
		}
		path, kinds = "movies/"+url.PathEscape(id), movieKinds
	case artwork.MediaTVShow:
		if strings.TrimSpace(ref.TVDBID) == "" {
			return nil, providers.ErrNoID
		}
		path, kinds = "tv/"+url.PathEscape(strings.TrimSpace(ref.TVDBID)), tvKinds
	case artwork.MediaArtist:
		if strings.TrimSpace(ref.MusicBrainzID) == "" {
			return nil, providers.ErrNoID
		}
		path, kinds = "music/"+url.PathEscape(strings.TrimSpace(ref.MusicBrainzID)), artistKinds
	case artwork.MediaAlbum:
		if strings.TrimSpace(ref.MusicBrainzID) == "" {
			return nil, providers.ErrNoID
		}
		return c.fetchAlbum(ctx, strings.TrimSpace(ref.MusicBrainzID))
	default:
		return nil, fmt.Errorf("fanart.tv: unsupported media type %q", ref.MediaType)
	}

	var payload map[string]json.RawMessage
	if err := c.get(ctx, path, &payload); err != nil {
		if providers.IsNotFound(err) {
			return providers.Images{}, nil
		}
		return nil, err
	}
	images := providers.Images{}
	collect(images, payload, kinds)
	if ref.MediaType == artwork.MediaMovie {
		addKeyArt(images)
	}
	return images, nil
}

func (c *Client) fetchAlbum(ctx context.Context, mbid string) (providers.Images, error) {
	var payload albumsResponse
	if err := c.get(ctx, "music/albums/"+url.PathEscape(mbid), &payload); err != nil {
		if providers.IsNotFound(err) {
			return providers.Images{}, nil
		}
		return nil, err
	}
	images := providers.Images{}
	for id, lists := range payload.Albums {
		if !strings.EqualFold(id, mbid) {
			continue
		}
		collect(images, lists, albumKinds)
	}
	return images, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.clientKey != "" {
		params.Set("client_key", c.clientKey)
	}
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
	headers := map[string]string{"api-key": c.apiKey, "client-key": c.clientKey}
	return providers.GetJSON(ctx, c.httpClient, Name, endpoint, headers, dest)
}

// collect decodes each known list in a fixed order so candidate order does
// not depend on map iteration.
func collect(images providers.Images, payload map[string]json.RawMessage, kinds map[string]kind) {
	for _, key := range sortedKinds(kinds) {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var list []Image
		if err := json.Unmarshal(raw, &list); err != nil {
			continue
		}
		k := kinds[key]
		for _, img := range list {
			if strings.TrimSpace(img.URL) == "" {
				continue
			}
			images.Add(k.artType, candidate(img, k))
		}
	}
}

// addKeyArt offers text-free posters as key art.
func addKeyArt(images providers.Images) {
	for _, poster := range images[artwork.ArtPoster] {
		if poster.Language == "" {
			images.Add(artwork.ArtKeyArt, poster)
		}
	}
}

func candidate(img Image, k kind) artwork.Candidate {
	preview := strings.TrimSpace(img.URLThumb)
	if preview == "" {
		preview = strings.Replace(img.URL, "/fanart/", "/preview/", 1)
	}
	position := 0
	if season, err := strconv.Atoi(strings.TrimSpace(img.Season)); err == nil {
		position = season
	}
	return artwork.Candidate{
		Provider:   Name,
		URL:        img.URL,
		PreviewURL: preview,
		Width:      k.width,
		Height:     k.height,
		Language:   artwork.NormalizeLanguage(img.Lang),
		Quality:    Quality(img.Likes),
		Position:   position,
	}
}

// Quality scales fanart.tv likes onto the same range as TMDB ratings.
func Quality(likes string) float64 {
	n, err := strconv.Atoi(strings.TrimSpace(likes))
	if err != nil || n <= 0 {
		return defaultScore
	}
	return float64(n) * likesWeight
}

func sortedKinds(kinds map[string]kind) []string {
	keys := make([]string, 0, len(kinds))
	for k := range kinds {
		keys = append(keys, k)
	}
	// Larger variants first so HD logos and 4k backgrounds lead ties.
	slices.SortFunc(keys, func(a, b string) int {
		areaA := kinds[a].width * kinds[a].height
		areaB := kinds[b].width * kinds[b].height
		if c := cmp.Compare(areaB, areaA); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
