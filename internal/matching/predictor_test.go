package matching

import (
	"errors"
	"testing"

	"github.com/spigell/resume-matcher/internal/similarity"
)

type stubScorer struct {
	scores map[string]float64
}

func (s *stubScorer) Similarity(_, doc string) float64 {
	return s.scores[doc]
}

func (s *stubScorer) Against(_ string, docs []string) []float64 {
	out := make([]float64, len(docs))
	for i, doc := range docs {
		out[i] = s.scores[doc]
	}
	return out
}

func testCorpus() Corpus {
	return Corpus{
		{Title: "Data Scientist", KeySkills: "python, sql, machine learning"},
		{Title: "Chef", KeySkills: "cooking, baking"},
		{Title: "Data Analyst", KeySkills: "sql, excel, tableau"},
	}
}

func TestPredictorRanksBySimilarity(t *testing.T) {
	t.Parallel()

	predictor := NewPredictor(testCorpus(), similarity.New(), 0)

	ranked, err := predictor.TopTitles([]string{"python", "sql"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Data Scientist", "Data Analyst", "Chef"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d titles, got %d", len(want), len(ranked))
	}
	for i, title := range want {
		if ranked[i].Title != title {
			t.Fatalf("position %d: expected %q, got %q (%+v)", i, title, ranked[i].Title, ranked)
		}
	}
	if ranked[2].Score != 0 {
		t.Fatalf("expected zero score for unrelated row, got %v", ranked[2].Score)
	}
	if ranked[0].Row != 0 || ranked[1].Row != 2 {
		t.Fatalf("unexpected row indexes: %+v", ranked)
	}
}

func TestPredictorStableTies(t *testing.T) {
	t.Parallel()

	corpus := Corpus{
		{Title: "First", KeySkills: "a"},
		{Title: "Second", KeySkills: "b"},
		{Title: "Third", KeySkills: "c"},
		{Title: "Fourth", KeySkills: "d"},
	}
	scorer := &stubScorer{scores: map[string]float64{"a": 0.5, "b": 0.9, "c": 0.5, "d": 0.9}}

	ranked, err := NewPredictor(corpus, scorer, 10).TopTitles(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Second", "Fourth", "First", "Third"}
	for i, title := range want {
		if ranked[i].Title != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, ranked[i].Title)
		}
	}
}

func TestPredictorTopN(t *testing.T) {
	t.Parallel()

	corpus := make(Corpus, 0, 15)
	for i := 0; i < 15; i++ {
		corpus = append(corpus, Row{Title: "Engineer", KeySkills: "go"})
	}

	ranked, err := NewPredictor(corpus, similarity.New(), 0).TopTitles([]string{"go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != DefaultTopN {
		t.Fatalf("expected %d titles, got %d", DefaultTopN, len(ranked))
	}

	ranked, err = NewPredictor(corpus, similarity.New(), 3).TopTitles([]string{"go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 titles, got %d", len(ranked))
	}
}

// Rows sharing a title are scored on their own and are not merged.
func TestPredictorKeepsDuplicateTitles(t *testing.T) {
	t.Parallel()

	corpus := Corpus{
		{Title: "Engineer", KeySkills: "go, docker"},
		{Title: "Chef", KeySkills: "cooking"},
		{Title: "Engineer", KeySkills: "go, kubernetes"},
	}

	ranked, err := NewPredictor(corpus, similarity.New(), 0).TopTitles([]string{"go", "docker"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].Title != "Engineer" || ranked[0].Row != 0 {
		t.Fatalf("expected the first engineer row on top, got %+v", ranked[0])
	}
	if ranked[1].Title != "Engineer" || ranked[1].Row != 2 {
		t.Fatalf("expected the second engineer row next, got %+v", ranked[1])
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatalf("expected distinct scores for duplicate titles, got %+v", ranked)
	}

	top, err := NewPredictor(corpus, similarity.New(), 0).Predict([]string{"go", "docker"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if top.Row != 0 {
		t.Fatalf("expected prediction from row 0, got %+v", top)
	}
}

func TestPredictorEmptyCorpus(t *testing.T) {
	t.Parallel()

	_, err := NewPredictor(nil, similarity.New(), 0).TopTitles([]string{"go"})
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}
