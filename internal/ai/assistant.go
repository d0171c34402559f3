package ai

import (
	"context"
	"errors"

	"github.com/spigell/resume-matcher/internal/profile"
)

// ErrEmptyResume is returned when there is no resume text to send to a model.
var ErrEmptyResume = errors.New("resume text is empty")

// Extraction is a candidate profile produced by a model together with the
// model response it was parsed from.
type Extraction struct {
	Profile *profile.Profile
	Raw     string
	Model   string
}

// Extractor turns free resume text into a candidate profile.
type Extractor interface {
	Extract(ctx context.Context, resumeText string) (*Extraction, error)
}
