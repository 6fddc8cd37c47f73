package review

import (
	"context"
	"strings"

	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/policy"
	"artreview/internal/queue"
	"artreview/internal/services"
)

// ItemReader loads a single library item; nil means it no longer exists.
type ItemReader interface {
	Item(ctx context.Context, mediaType artwork.MediaType, id int64) (*library.Item, error)
}

// Validator compares an entry's baseline snapshot with the library.
type Validator struct {
	library ItemReader
}

var _ policy.StalenessChecker = (*Validator)(nil)

// NewValidator creates a staleness checker backed by the library.
func NewValidator(lib ItemReader) *Validator {
	return &Validator{library: lib}
}

// Validate re-reads the entry's item and reports whether the entry still
// describes the slot as it was when scanned.
func (v *Validator) Validate(ctx context.Context, entry *queue.Entry) (policy.Verdict, error) {
	item, err := v.library.Item(ctx, entry.ItemType, entry.ItemID)
	if err != nil {
		return policy.Verdict{}, services.Wrap(services.ErrLibrary, "review", "validate entry", entry.Label(), err)
	}
	if item == nil {
		return policy.Verdict{Stale: true, Reason: policy.ReasonItemRemoved}, nil
	}

	current := item.Art(entry.ArtType)
	baseline := strings.TrimSpace(entry.Baseline)
	switch {
	case entry.ArtType.IsMulti():
		if current != queue.JoinBaseline(queue.SplitBaseline(baseline)) {
			return policy.Verdict{Stale: true, Reason: policy.ReasonExtrasChanged, Item: item}, nil
		}
	case baseline == "":
		if current != "" {
			return policy.Verdict{Stale: true, Reason: policy.ReasonArtFilled, Item: item}, nil
		}
	case !artwork.SameURL(current, baseline):
		return policy.Verdict{Stale: true, Reason: policy.ReasonArtChanged, Item: item}, nil
	}
	return policy.Verdict{Item: item}, nil
}
