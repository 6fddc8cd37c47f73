package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"artreview/internal/artwork"
	"artreview/internal/providers"
)

// Name is the provider label attached to TMDB candidates.
const Name = "tmdb"

const (
	bayesMinVotes    = 3.0
	bayesPriorRating = 2.3
)

var capabilities = providers.Capabilities{
	artwork.MediaMovie:  {artwork.ArtPoster, artwork.ArtFanart, artwork.ArtClearLogo},
	artwork.MediaTVShow: {artwork.ArtPoster, artwork.ArtFanart, artwork.ArtClearLogo},
}

// Image is a single entry of the TMDB images payload.
type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Language    *string `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// ImagesResponse models /movie/{id}/images and /tv/{id}/images.
type ImagesResponse struct {
	ID        int64   `json:"id"`
	Backdrops []Image `json:"backdrops"`
	Logos     []Image `json:"logos"`
	Posters   []Image `json:"posters"`
}

type findResult struct {
	ID int64 `json:"id"`
}

type findResponse struct {
	MovieResults []findResult `json:"movie_results"`
	TVResults    []findResult `json:"tv_results"`
}

// Client provides access to the TMDB image API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	previewURL   string
	language     string
	httpClient   *http.Client
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

// New creates a TMDB client. language limits requested image languages to
// that language, English, and text-free images; empty requests every language.
func New(apiKey, baseURL, imageBaseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	imageBaseURL = strings.TrimRight(strings.TrimSpace(imageBaseURL), "/")
	if imageBaseURL == "" {
		return nil, errors.New("tmdb image base url required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: imageBaseURL,
		previewURL:   previewBase(imageBaseURL),
		language:     artwork.NormalizeLanguage(language),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
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

// Fetch returns every usable image for the referenced movie or show. An item
// TMDB does not know yields empty images.
func (c *Client) Fetch(ctx context.Context, ref providers.Ref) (providers.Images, error) {
	var kind string
	switch ref.MediaType {
	case artwork.MediaMovie:
		kind = "movie"
	case artwork.MediaTVShow:
		kind = "tv"
	default:
		return nil, fmt.Errorf("tmdb: unsupported media type %q", ref.MediaType)
	}

	id, err := c.resolveID(ctx, ref)
	if err != nil {
		if providers.IsNotFound(err) {
			return providers.Images{}, nil
		}
		return nil, err
	}
	if id == "" {
		return providers.Images{}, nil
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("include_image_language", includeLanguages(c.language))
	}
	endpoint := fmt.Sprintf("%s/%s/%s/images?%s", c.baseURL, kind, url.PathEscape(id), params.Encode())

	var payload ImagesResponse
	if err := providers.GetJSON(ctx, c.httpClient, Name, endpoint, nil, &payload); err != nil {
		if providers.IsNotFound(err) {
			return providers.Images{}, nil
		}
		return nil, err
	}
	return c.convert(payload), nil
}

// resolveID returns the TMDB id, looking it up by IMDb or TVDB id when the
// library does not carry one.
func (c *Client) resolveID(ctx context.Context, ref providers.Ref) (string, error) {
	if id := strings.TrimSpace(ref.TMDBID); id != "" {
		return id, nil
	}
	source, external := "", ""
	switch {
	case strings.TrimSpace(ref.IMDBID) != "":
		source, external = "imdb_id", strings.TrimSpace(ref.IMDBID)
	case ref.MediaType == artwork.MediaTVShow && strings.TrimSpace(ref.TVDBID) != "":
		source, external = "tvdb_id", strings.TrimSpace(ref.TVDBID)
	default:
		return "", providers.ErrNoID
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("external_source", source)
	endpoint := fmt.Sprintf("%s/find/%s?%s", c.baseURL, url.PathEscape(external), params.Encode())

	var payload findResponse
	if err := providers.GetJSON(ctx, c.httpClient, Name, endpoint, nil, &payload); err != nil {
		return "", err
	}
	results := payload.MovieResults
	if ref.MediaType == artwork.MediaTVShow {
		results = payload.TVResults
	}
	if len(results) == 0 {
		return "", nil
	}
	return strconv.FormatInt(results[0].ID, 10), nil
}

func (c *Client) convert(payload ImagesResponse) providers.Images {
	images := providers.Images{}
	groups := []struct {
		artType artwork.ArtType
		list    []Image
	}{
		{artwork.ArtPoster, payload.Posters},
		{artwork.ArtFanart, payload.Backdrops},
		{artwork.ArtClearLogo, payload.Logos},
	}
	for _, group := range groups {
		for _, img := range group.list {
			candidate, ok := c.candidate(img)
			if !ok {
				continue
			}
			images.Add(group.artType, candidate)
		}
	}
	return images
}

func (c *Client) candidate(img Image) (artwork.Candidate, bool) {
	path := strings.TrimSpace(img.FilePath)
	if path == "" || strings.HasSuffix(strings.ToLower(path), ".svg") {
		return artwork.Candidate{}, false
	}
	lang := ""
	if img.Language != nil {
		lang = artwork.NormalizeLanguage(*img.Language)
	}
	return artwork.Candidate{
		Provider:   Name,
		URL:        c.imageBaseURL + path,
		PreviewURL: c.previewURL + path,
		Width:      img.Width,
		Height:     img.Height,
		Language:   lang,
		Quality:    Quality(img.VoteAverage, img.VoteCount),
	}, true
}

// Quality weights an image rating by its vote count so single-vote images do
// not outrank well-reviewed ones.
func Quality(rating float64, votes int) float64 {
	if rating > 0 && votes >= 0 {
		v := float64(votes)
		return (v/(v+bayesMinVotes))*rating + (bayesMinVotes/(v+bayesMinVotes))*bayesPriorRating
	}
	if votes == 0 {
		return bayesPriorRating
	}
	return 0
}

func includeLanguages(lang string) string {
	if lang == "en" {
		return "en,null"
	}
	return lang + ",en,null"
}

func previewBase(imageBaseURL string) string {
	if idx := strings.LastIndex(imageBaseURL, "/"); idx > 0 && strings.Contains(imageBaseURL, "/t/p/") {
		return imageBaseURL[:idx] + "/w500"
	}
	return imageBaseURL
}
