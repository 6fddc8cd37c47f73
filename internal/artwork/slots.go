package artwork

import (
	"strconv"
	"strings"
)

var multiBases = map[ArtType]ArtType{
	ArtExtraFanart: ArtFanart,
}

// IsMulti reports whether the art type is a numbered multi-image slot.
func (t ArtType) IsMulti() bool {
	_, ok := multiBases[t]
	return ok
}

// PoolType returns the art type whose candidates feed this slot. Multi-image
// types draw from their base type; everything else maps to itself.
func (t ArtType) PoolType() ArtType {
	if base, ok := multiBases[t]; ok {
		return base
	}
	return t
}

// SlotName returns the numbered slot key, e.g. SlotName("fanart", 2) is "fanart2".
func SlotName(base ArtType, ordinal int) string {
	return string(base) + strconv.Itoa(ordinal)
}

// ParseSlot extracts the ordinal from a numbered slot key for the given base.
// The bare base name is not a numbered slot.
func ParseSlot(key string, base ArtType) (int, bool) {
	suffix, ok := strings.CutPrefix(key, string(base))
	if !ok || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	ordinal, err := strconv.Atoi(suffix)
	if err != nil || ordinal <= 0 {
		return 0, false
	}
	return ordinal, true
}
