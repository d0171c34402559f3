package matching

import (
	"math"

	"github.com/spigell/resume-matcher/internal/profile"
)

// DefaultThreshold is the lowest role similarity accepted as a match.
const DefaultThreshold = 0.2

// Reconciliation maps a predicted title onto one of the candidate roles.
type Reconciliation struct {
	Title      string  `json:"title"`
	Years      float64 `json:"years"`
	Confidence float64 `json:"confidence"`
	// Matched is false when the predicted title was kept.
	Matched bool `json:"matched"`
}

// Reconciler matches a predicted title against declared roles.
type Reconciler struct {
	scorer    Scorer
	threshold float64
}

// NewReconciler falls back to DefaultThreshold when threshold is outside [0, 1].
// A threshold of 0 accepts any role; Matcher never passes it.
func NewReconciler(scorer Scorer, threshold float64) *Reconciler {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	return &Reconciler{
		scorer:    scorer,
		threshold: threshold,
	}
}

func (r *Reconciler) Threshold() float64 {
	return r.threshold
}

// Reconcile picks the declared role closest to predicted. The first role wins
// ties. Without roles, or when the best score is below the threshold, the
// predicted title is kept with zero years.
func (r *Reconciler) Reconcile(predicted string, experience profile.Experience) Reconciliation {
	fallback := Reconciliation{Title: predicted}
	if len(experience) == 0 {
		return fallback
	}

	scores := r.scorer.Against(predicted, experience.Roles())

	best := 0
	for i, score := range scores {
		if score > scores[best] {
			best = i
		}
	}

	confidence := scores[best]
	if confidence < r.threshold {
		fallback.Confidence = confidence
		return fallback
	}

	entry := experience[best]
	return Reconciliation{
		Title:      entry.Key,
		Years:      entry.Value,
		Confidence: confidence,
		Matched:    true,
	}
}
