package artwork

import (
	"net/url"
	"strings"
)

const fanartAssetsHost = "assets.fanart.tv"

// UnwrapImageURL strips the media center's image:// wrapper and decodes the
// embedded URL. Values without the wrapper are returned trimmed.
func UnwrapImageURL(raw string) string {
	value := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(value), "image://") {
		return value
	}
	inner := strings.TrimSuffix(value[len("image://"):], "/")
	if decoded, err := url.PathUnescape(inner); err == nil {
		return decoded
	}
	return inner
}

// NormalizeURL returns the comparison key for an artwork URL. Scheme and host
// are case-folded, http is treated as https, trailing slashes and fragments are
// dropped, and fanart.tv asset URLs lose their query string.
func NormalizeURL(raw string) string {
	value := UnwrapImageURL(raw)
	if value == "" {
		return ""
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(value, "/")
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme == "http" {
		parsed.Scheme = "https"
	}
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	if parsed.Host == fanartAssetsHost {
		parsed.RawQuery = ""
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""
	return parsed.String()
}

// SameURL reports whether two artwork URLs refer to the same asset.
func SameURL(a, b string) bool {
	na, nb := NormalizeURL(a), NormalizeURL(b)
	return na != "" && na == nb
}
