package filtering

import (
	"context"
	"strconv"

	"github.com/spigell/resume-matcher/internal/listings"

	"go.uber.org/zap"
)

type seenHistoryFilter struct {
	disabled bool
	reason   string
}

// NewSeenHistory creates a filter that removes postings saved by earlier runs.
func NewSeenHistory() Filter {
	return &seenHistoryFilter{}
}

func (f *seenHistoryFilter) Name() string { return "seen_history" }

func (f *seenHistoryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *seenHistoryFilter) IsEnabled() bool { return !f.disabled }

func (f *seenHistoryFilter) Validate(*Config) error { return nil }

func (f *seenHistoryFilter) Apply(ctx context.Context, deps Deps, v *listings.Postings) (*listings.Postings, Step, error) {
	initial := v.Len()
	if deps.History == nil {
		deps.Logger.Debug("no run history configured; skipping seen_history filter")
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	ids, err := deps.History.KnownJobIDs(ctx)
	if err != nil {
		return v, Step{}, err
	}

	excluded := v.Exclude(listings.PostingIDField, ids)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding postings seen in earlier runs",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *seenHistoryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"exclude_seen": strconv.FormatBool(f.IsEnabled())},
	}
}
