// Package matching ranks a job-title corpus against candidate skills and
// reconciles the best title with the candidate's declared roles.
package matching

import (
	"fmt"

	"github.com/spigell/resume-matcher/internal/profile"

	"go.uber.org/zap"
)

// Result is the outcome of one Match call.
type Result struct {
	PredictedTitle  string        `json:"predicted_title"`
	ReconciledTitle string        `json:"reconciled_title"`
	YearsExperience float64       `json:"years_experience"`
	Confidence      float64       `json:"confidence"`
	TopTitles       []RankedTitle `json:"top_titles,omitempty"`
}

// Options tune a Matcher. Zero values select the defaults.
type Options struct {
	// TopN is how many ranked titles are kept. Non-positive means DefaultTopN.
	TopN int
	// MinConfidence is the lowest role similarity accepted by reconciliation.
	// Non-positive means DefaultThreshold, so an unset value never attributes
	// an unrelated role to the candidate.
	MinConfidence float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, MinConfidence: DefaultThreshold}
}

// Matcher combines a Predictor and a Reconciler over a shared corpus.
type Matcher struct {
	predictor  *Predictor
	reconciler *Reconciler
	logger     *zap.Logger
}

// New builds a Matcher over corpus. A nil logger discards debug output.
func New(corpus Corpus, scorer Scorer, opts Options, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultThreshold
	}

	return &Matcher{
		predictor:  NewPredictor(corpus, scorer, opts.TopN),
		reconciler: NewReconciler(scorer, opts.MinConfidence),
		logger:     logger,
	}
}

// Match predicts a title for the skills and reconciles it with experience.
// It has no side effects besides debug logging.
func (m *Matcher) Match(skills []string, experience profile.Experience) (*Result, error) {
	ranked, err := m.predictor.TopTitles(skills)
	if err != nil {
		return nil, fmt.Errorf("ranking job titles: %w", err)
	}

	predicted := ranked[0]
	m.logger.Debug("predicted job title",
		zap.String("title", predicted.Title),
		zap.Float64("score", predicted.Score),
		zap.Int("corpus_row", predicted.Row),
		zap.Int("skills", len(skills)),
	)

	reconciled := m.reconciler.Reconcile(predicted.Title, experience)
	m.logger.Debug("reconciled job title",
		zap.String("title", reconciled.Title),
		zap.Bool("matched_role", reconciled.Matched),
		zap.Float64("confidence", reconciled.Confidence),
		zap.Float64("threshold", m.reconciler.Threshold()),
	)

	return &Result{
		PredictedTitle:  predicted.Title,
		ReconciledTitle: reconciled.Title,
		YearsExperience: reconciled.Years,
		Confidence:      reconciled.Confidence,
		TopTitles:       ranked,
	}, nil
}
