package kodi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/services"
)

// methods lists the JSON-RPC calls and keys for one media type.
type methods struct {
	list       string
	details    string
	set        string
	idKey      string
	listKey    string
	detailsKey string
	properties []string
}

var mediaMethods = map[artwork.MediaType]methods{
	artwork.MediaMovie: {
		list:       "VideoLibrary.GetMovies",
		details:    "VideoLibrary.GetMovieDetails",
		set:        "VideoLibrary.SetMovieDetails",
		idKey:      "movieid",
		listKey:    "movies",
		detailsKey: "moviedetails",
		properties: []string{"title", "year", "premiered", "art", "uniqueid"},
	},
	artwork.MediaTVShow: {
		list:       "VideoLibrary.GetTVShows",
		details:    "VideoLibrary.GetTVShowDetails",
		set:        "VideoLibrary.SetTVShowDetails",
		idKey:      "tvshowid",
		listKey:    "tvshows",
		detailsKey: "tvshowdetails",
		properties: []string{"title", "year", "premiered", "art", "uniqueid"},
	},
	artwork.MediaArtist: {
		list:       "AudioLibrary.GetArtists",
		details:    "AudioLibrary.GetArtistDetails",
		set:        "AudioLibrary.SetArtistDetails",
		idKey:      "artistid",
		listKey:    "artists",
		detailsKey: "artistdetails",
		properties: []string{"art", "musicbrainzartistid"},
	},
	artwork.MediaAlbum: {
		list:       "AudioLibrary.GetAlbums",
		details:    "AudioLibrary.GetAlbumDetails",
		set:        "AudioLibrary.SetAlbumDetails",
		idKey:      "albumid",
		listKey:    "albums",
		detailsKey: "albumdetails",
		properties: []string{"title", "year", "releasedate", "art", "musicbrainzalbumid"},
	},
}

// rawItem covers the fields of every item kind Kodi returns.
type rawItem struct {
	MovieID            int64             `json:"movieid"`
	TVShowID           int64             `json:"tvshowid"`
	ArtistID           int64             `json:"artistid"`
	AlbumID            int64             `json:"albumid"`
	Label              string            `json:"label"`
	Title              string            `json:"title"`
	Artist             json.RawMessage   `json:"artist"`
	Year               int               `json:"year"`
	Premiered          string            `json:"premiered"`
	ReleaseDate        string            `json:"releasedate"`
	Art                map[string]string `json:"art"`
	UniqueID           map[string]string `json:"uniqueid"`
	MusicBrainzArtist  json.RawMessage   `json:"musicbrainzartistid"`
	MusicBrainzAlbumID string            `json:"musicbrainzalbumid"`
}

// Client talks to a Kodi instance.
type Client struct {
	rpc *rpcClient
}

var _ library.Library = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.rpc.httpClient = client
		}
	}
}

// WithCredentials sets HTTP basic auth credentials.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.rpc.username = strings.TrimSpace(username)
		c.rpc.password = password
	}
}

// New creates a client for the JSON-RPC endpoint.
func New(endpoint string, timeout time.Duration, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("kodi endpoint required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{rpc: &rpcClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Ping checks that the endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	var pong string
	if err := c.rpc.call(ctx, "JSONRPC.Ping", nil, &pong); err != nil {
		return services.Wrap(services.ErrLibrary, "kodi", "ping", "", err)
	}
	return nil
}

// Items lists every item of a media type with its artwork.
func (c *Client) Items(ctx context.Context, mediaType artwork.MediaType) ([]library.Item, error) {
	m, ok := mediaMethods[mediaType]
	if !ok {
		return nil, fmt.Errorf("kodi: unsupported media type %q", mediaType)
	}
	params := map[string]any{"properties": m.properties}
	if mediaType == artwork.MediaArtist {
		params["albumartistsonly"] = false
	}
	var result map[string]json.RawMessage
	if err := c.rpc.call(ctx, m.list, params, &result); err != nil {
		return nil, services.Wrap(services.ErrLibrary, "kodi", m.list, "", err)
	}
	raw, ok := result[m.listKey]
	if !ok {
		return nil, nil
	}
	var list []rawItem
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, services.Wrap(services.ErrLibrary, "kodi", m.list, "decode items", err)
	}
	items := make([]library.Item, 0, len(list))
	for _, r := range list {
		items = append(items, convert(mediaType, r))
	}
	return items, nil
}

// Item returns one item, or nil when Kodi no longer knows the id.
func (c *Client) Item(ctx context.Context, mediaType artwork.MediaType, id int64) (*library.Item, error) {
	m, ok := mediaMethods[mediaType]
	if !ok {
		return nil, fmt.Errorf("kodi: unsupported media type %q", mediaType)
	}
	params := map[string]any{m.idKey: id, "properties": m.properties}
	var result map[string]json.RawMessage
	if err := c.rpc.call(ctx, m.details, params, &result); err != nil {
		if isInvalidParams(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrLibrary, "kodi", m.details, "", err)
	}
	raw, ok := result[m.detailsKey]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var r rawItem
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, services.Wrap(services.ErrLibrary, "kodi", m.details, "decode item", err)
	}
	item := convert(mediaType, r)
	return &item, nil
}

// SetArt writes every assignment in one call. Empty values clear the slot.
func (c *Client) SetArt(ctx context.Context, mediaType artwork.MediaType, id int64, assignments map[string]string) error {
	m, ok := mediaMethods[mediaType]
	if !ok {
		return fmt.Errorf("kodi: unsupported media type %q", mediaType)
	}
	if len(assignments) == 0 {
		return nil
	}
	art := make(map[string]any, len(assignments))
	for slot, value := range assignments {
		if strings.TrimSpace(value) == "" {
			art[slot] = nil
			continue
		}
		art[slot] = strings.TrimSpace(value)
	}
	params := map[string]any{m.idKey: id, "art": art}
	if err := c.rpc.call(ctx, m.set, params, nil); err != nil {
		return services.Wrap(services.ErrLibrary, "kodi", m.set, fmt.Sprintf("%s %d", mediaType, id), err)
	}
	return nil
}

func convert(mediaType artwork.MediaType, r rawItem) library.Item {
	item := library.Item{
		MediaType: mediaType,
		Title:     firstNonEmpty(r.Title, r.Label, firstString(r.Artist)),
		UniqueIDs: make(map[string]string),
		ArtMap:    make(map[string]string, len(r.Art)),
	}
	switch mediaType {
	case artwork.MediaMovie:
		item.ID = r.MovieID
	case artwork.MediaTVShow:
		item.ID = r.TVShowID
	case artwork.MediaArtist:
		item.ID = r.ArtistID
	case artwork.MediaAlbum:
		item.ID = r.AlbumID
	}
	if r.Year > 0 {
		item.Year = strconv.Itoa(r.Year)
	}
	item.Released = parseDate(firstNonEmpty(r.Premiered, r.ReleaseDate))
	if item.Year == "" && !item.Released.IsZero() {
		item.Year = strconv.Itoa(item.Released.Year())
	}
	for key, value := range r.UniqueID {
		if value = strings.TrimSpace(value); value != "" {
			item.UniqueIDs[strings.ToLower(key)] = value
		}
	}
	if mbid := firstNonEmpty(r.MusicBrainzAlbumID, firstString(r.MusicBrainzArtist)); mbid != "" {
		item.UniqueIDs[library.IDMusicBrainz] = mbid
	}
	for slot, value := range r.Art {
		if unwrapped := artwork.UnwrapImageURL(value); unwrapped != "" {
			item.ArtMap[slot] = unwrapped
		}
	}
	return item
}

// firstString decodes a value Kodi sends either as a string or a list.
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		for _, v := range list {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.DateOnly, "2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
