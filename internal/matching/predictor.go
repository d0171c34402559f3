package matching

import (
	"errors"
	"sort"
	"strings"
)

const (
	// DefaultTopN is how many ranked titles are kept when none is configured.
	DefaultTopN = 10

	skillSep = ", "
)

// ErrEmptyCorpus is returned when there are no rows to rank.
var ErrEmptyCorpus = errors.New("corpus is empty")

// Scorer compares texts. similarity.Engine satisfies it.
type Scorer interface {
	Similarity(a, b string) float64
	Against(query string, docs []string) []float64
}

// RankedTitle is a corpus row scored against the candidate skills.
type RankedTitle struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
	// Row is the index of the scored row in the corpus.
	Row int `json:"row"`
}

// Predictor ranks corpus rows by how well their key skills match a skill set.
type Predictor struct {
	corpus Corpus
	scorer Scorer
	topN   int
}

func NewPredictor(corpus Corpus, scorer Scorer, topN int) *Predictor {
	if topN <= 0 {
		topN = DefaultTopN
	}

	return &Predictor{
		corpus: corpus,
		scorer: scorer,
		topN:   topN,
	}
}

// TopTitles scores every row on its own and returns the best rows, highest
// score first. Equal scores keep corpus order. Rows sharing a title are
// ranked independently, so a title may be returned more than once.
func (p *Predictor) TopTitles(skills []string) ([]RankedTitle, error) {
	if len(p.corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	query := strings.Join(skills, skillSep)

	ranked := make([]RankedTitle, 0, len(p.corpus))
	for i, row := range p.corpus {
		ranked = append(ranked, RankedTitle{
			Title: row.Title,
			Score: p.scorer.Similarity(query, row.KeySkills),
			Row:   i,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > p.topN {
		ranked = ranked[:p.topN]
	}
	return ranked, nil
}

// Predict returns the highest ranked title.
func (p *Predictor) Predict(skills []string) (RankedTitle, error) {
	ranked, err := p.TopTitles(skills)
	if err != nil {
		return RankedTitle{}, err
	}
	return ranked[0], nil
}
