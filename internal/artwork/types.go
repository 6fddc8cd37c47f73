package artwork

import (
	"fmt"
	"slices"
	"strings"
)

// MediaType identifies the kind of library item an entry targets.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaTVShow MediaType = "tvshow"
	MediaArtist MediaType = "artist"
	MediaAlbum  MediaType = "album"
)

var allMediaTypes = []MediaType{MediaMovie, MediaTVShow, MediaArtist, MediaAlbum}

// AllMediaTypes returns every supported media type in scan order.
func AllMediaTypes() []MediaType {
	return slices.Clone(allMediaTypes)
}

// ParseMediaType converts user input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	normalized := MediaType(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(allMediaTypes, normalized) {
		return normalized, nil
	}
	return "", fmt.Errorf("unknown media type %q", value)
}

// ArtType names an artwork slot on a library item.
type ArtType string

const (
	ArtPoster       ArtType = "poster"
	ArtFanart       ArtType = "fanart"
	ArtClearLogo    ArtType = "clearlogo"
	ArtClearArt     ArtType = "clearart"
	ArtBanner       ArtType = "banner"
	ArtLandscape    ArtType = "landscape"
	ArtCharacterArt ArtType = "characterart"
	ArtDiscArt      ArtType = "discart"
	ArtKeyArt       ArtType = "keyart"
	ArtThumb        ArtType = "thumb"
	// ArtExtraFanart is the numbered fanart set (fanart1, fanart2, ...).
	ArtExtraFanart ArtType = "extrafanart"
)

var knownArtTypes = []ArtType{
	ArtPoster, ArtFanart, ArtClearLogo, ArtClearArt, ArtBanner, ArtLandscape,
	ArtCharacterArt, ArtDiscArt, ArtKeyArt, ArtThumb, ArtExtraFanart,
}

// ParseArtType validates an art type name.
func ParseArtType(value string) (ArtType, error) {
	normalized := ArtType(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(knownArtTypes, normalized) {
		return normalized, nil
	}
	return "", fmt.Errorf("unknown art type %q", value)
}

// reviewPriority orders art types within a single item so the most visible
// slots are reviewed first.
var reviewPriority = map[ArtType]int{
	ArtPoster:       1,
	ArtThumb:        1,
	ArtFanart:       2,
	ArtClearLogo:    3,
	ArtClearArt:     4,
	ArtBanner:       5,
	ArtLandscape:    6,
	ArtCharacterArt: 7,
	ArtDiscArt:      8,
	ArtKeyArt:       9,
	ArtExtraFanart:  10,
}

// SortByPriority orders art types in place by review priority, keeping unknown
// types at the end in their original order.
func SortByPriority(types []ArtType) {
	slices.SortStableFunc(types, func(a, b ArtType) int {
		return priorityOf(a) - priorityOf(b)
	})
}

func priorityOf(t ArtType) int {
	if p, ok := reviewPriority[t]; ok {
		return p
	}
	return 100
}

// Scope selects which media types a scan covers.
type Scope string

const (
	ScopeMovie  Scope = "movie"
	ScopeTVShow Scope = "tvshow"
	ScopeMusic  Scope = "music"
	ScopeAll    Scope = "all"
)

// ParseScope validates a scope name. Plural forms are accepted.
func ParseScope(value string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies":
		return ScopeMovie, nil
	case "tvshow", "tvshows", "tv":
		return ScopeTVShow, nil
	case "music":
		return ScopeMusic, nil
	case "all", "":
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want movie, tvshow, music or all)", value)
	}
}

// MediaTypes returns the media types a scope expands to.
func (s Scope) MediaTypes() []MediaType {
	switch s {
	case ScopeMovie:
		return []MediaType{MediaMovie}
	case ScopeTVShow:
		return []MediaType{MediaTVShow}
	case ScopeMusic:
		return []MediaType{MediaArtist, MediaAlbum}
	default:
		return AllMediaTypes()
	}
}

// ProcessingMode controls which art slots a scan enqueues.
type ProcessingMode string

const (
	// ModeMissingOnly enqueues only empty slots.
	ModeMissingOnly ProcessingMode = "missing_only"
	// ModeMissingAndUpgrades also enqueues filled slots for replacement.
	ModeMissingAndUpgrades ProcessingMode = "missing_and_upgrades"
)

// ParseProcessingMode validates a processing mode.
func ParseProcessingMode(value string) (ProcessingMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "missing_only", "missing-only", "missing", "":
		return ModeMissingOnly, nil
	case "missing_and_upgrades", "missing-and-upgrades", "upgrades", "full":
		return ModeMissingAndUpgrades, nil
	default:
		return "", fmt.Errorf("unknown processing mode %q", value)
	}
}

// PolicyMode selects the resolver driving a session.
type PolicyMode string

const (
	PolicyManual PolicyMode = "manual"
	PolicyAuto   PolicyMode = "auto"
)

// ParsePolicyMode validates a policy mode.
func ParsePolicyMode(value string) (PolicyMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "manual", "":
		return PolicyManual, nil
	case "auto", "automatic":
		return PolicyAuto, nil
	default:
		return "", fmt.Errorf("unknown policy %q (want manual or auto)", value)
	}
}
