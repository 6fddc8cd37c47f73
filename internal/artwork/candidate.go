package artwork

import (
	"cmp"
	"slices"
)

// Candidate is one option offered by a provider for an art type.
type Candidate struct {
	Provider   string  `json:"provider"`
	URL        string  `json:"url"`
	PreviewURL string  `json:"preview_url,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Language   string  `json:"language,omitempty"`
	Quality    float64 `json:"quality"`
	// Position carries a season number or ordinal hint; zero when unused.
	Position int `json:"position,omitempty"`
}

// Pixels returns the candidate's pixel count, zero when dimensions are unknown.
func (c Candidate) Pixels() int {
	if c.Width <= 0 || c.Height <= 0 {
		return 0
	}
	return c.Width * c.Height
}

// Key returns the identity used for deduplication.
func (c Candidate) Key() string {
	return NormalizeURL(c.URL)
}

// Rank sorts candidates in place by quality then resolution, both descending.
// Equal candidates keep their arrival order.
func Rank(candidates []Candidate) {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Quality, a.Quality); c != 0 {
			return c
		}
		return cmp.Compare(b.Pixels(), a.Pixels())
	})
}

// Dedup drops candidates whose normalized URL was already seen, keeping the
// first occurrence. Candidates without a URL are discarded.
func Dedup(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
