package artwork

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage reduces a provider language tag to its base ISO 639-1 code.
// Empty, "xx", "00" and undetermined tags mean the image carries no text and
// normalize to "".
func NormalizeLanguage(tag string) string {
	trimmed := strings.TrimSpace(tag)
	switch strings.ToLower(trimmed) {
	case "", "xx", "00", "none", "null", "und":
		return ""
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}
	base, confidence := parsed.Base()
	if confidence == language.No || base.String() == "und" {
		return strings.ToLower(trimmed)
	}
	return base.String()
}

// LanguageFilter restricts candidates to a single normalized language. An
// active filter with an empty language matches text-free images only.
type LanguageFilter struct {
	Language string `json:"language"`
	Active   bool   `json:"active"`
}

// NewLanguageFilter returns an active filter for the given tag.
func NewLanguageFilter(tag string) LanguageFilter {
	return LanguageFilter{Language: NormalizeLanguage(tag), Active: true}
}

// Matches reports whether the candidate complies with the filter.
func (f LanguageFilter) Matches(c Candidate) bool {
	if !f.Active {
		return true
	}
	return NormalizeLanguage(c.Language) == f.Language
}

// String renders the filter for logs and prompts.
func (f LanguageFilter) String() string {
	switch {
	case !f.Active:
		return "any"
	case f.Language == "":
		return "text-free"
	default:
		return f.Language
	}
}

// LanguagePolicy decides which filter applies to each art type.
type LanguagePolicy struct {
	Preferred string
	// TextFree lists art types that must not carry text.
	TextFree []ArtType
}

// FilterFor returns the language filter for an art type.
func (p LanguagePolicy) FilterFor(artType ArtType) LanguageFilter {
	if slices.Contains(p.TextFree, artType) {
		return LanguageFilter{Active: true}
	}
	if strings.TrimSpace(p.Preferred) == "" {
		return LanguageFilter{}
	}
	return NewLanguageFilter(p.Preferred)
}
