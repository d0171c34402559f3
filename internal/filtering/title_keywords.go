package filtering

import (
	"context"
	"strings"

	"github.com/spigell/resume-matcher/internal/listings"

	"go.uber.org/zap"
)

type titleKeywordsFilter struct {
	keywords []string
}

// NewTitleKeywords creates a filter that removes postings whose title contains
// one of the configured keywords. Matching ignores case.
func NewTitleKeywords() Filter {
	return &titleKeywordsFilter{}
}

func (f *titleKeywordsFilter) Name() string { return "title_keywords" }

func (f *titleKeywordsFilter) Disable(string) {}

func (f *titleKeywordsFilter) IsEnabled() bool { return true }

func (f *titleKeywordsFilter) Validate(cfg *Config) error {
	f.keywords = nil
	if cfg == nil {
		return nil
	}
	for _, keyword := range cfg.TitleKeywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			f.keywords = append(f.keywords, keyword)
		}
	}
	return nil
}

func (f *titleKeywordsFilter) Apply(_ context.Context, deps Deps, v *listings.Postings) (*listings.Postings, Step, error) {
	initial := v.Len()
	if len(f.keywords) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	var ids []string
	for _, posting := range v.Items {
		if posting.Title != nil && f.matches(*posting.Title) {
			ids = append(ids, posting.ID)
		}
	}

	excluded := v.Exclude(listings.PostingIDField, ids)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding postings by title keywords",
			zap.Strings("keywords", f.keywords),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *titleKeywordsFilter) matches(title string) bool {
	title = strings.ToLower(title)
	for _, keyword := range f.keywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func (f *titleKeywordsFilter) Status() Status {
	details := map[string]string{}
	if len(f.keywords) > 0 {
		details["keywords"] = strings.Join(f.keywords, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
