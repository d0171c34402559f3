// Package similarity scores short texts against each other with TF-IDF
// vectors and cosine similarity.
//
// Weighting follows the usual defaults: raw term counts, smoothed inverse
// document frequency ln((1+n)/(1+df)) + 1 and L2 normalised rows. The
// vocabulary is built from the documents of a single call, so the same pair
// of texts can score differently when fitted together with other documents.
package similarity

import (
	"math"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tokens are runs of at least two letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Engine is stateless and safe for concurrent use.
type Engine struct{}

// New returns a TF-IDF engine.
func New() *Engine {
	return &Engine{}
}

// Similarity fits a and b together and returns their cosine similarity.
func (e *Engine) Similarity(a, b string) float64 {
	vectors := fit([]string{a, b})
	return cosine(vectors[0], vectors[1])
}

// Against fits query together with docs and returns the similarity of query
// to every doc, in docs order.
func (e *Engine) Against(query string, docs []string) []float64 {
	all := make([]string, 0, len(docs)+1)
	all = append(all, query)
	all = append(all, docs...)

	vectors := fit(all)
	scores := make([]float64, len(docs))
	for i := range docs {
		scores[i] = cosine(vectors[0], vectors[i+1])
	}
	return scores
}

// Matrix fits docs together and returns the pairwise similarity matrix.
func (e *Engine) Matrix(docs []string) [][]float64 {
	vectors := fit(docs)
	out := make([][]float64, len(docs))
	for i := range vectors {
		out[i] = make([]float64, len(docs))
		for j := range vectors {
			if i == j && len(vectors[i]) > 0 {
				out[i][j] = 1
				continue
			}
			out[i][j] = cosine(vectors[i], vectors[j])
		}
	}
	return out
}

// Tokenize lowercases text and splits it into terms.
func Tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(text)
	return tokenPattern.FindAllString(lower, -1)
}

type component struct {
	term   int
	weight float64
}

// vector is sparse and ordered by term index.
type vector []component

func fit(docs []string) []vector {
	tokenized := make([][]string, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		tokens := Tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	index := make(map[string]int, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	n := float64(len(docs))
	for i, term := range vocabulary {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]vector, len(docs))
	for i, tokens := range tokenized {
		vectors[i] = weigh(tokens, index, idf)
	}
	return vectors
}

func weigh(tokens []string, index map[string]int, idf []float64) vector {
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[int]int, len(tokens))
	for _, token := range tokens {
		counts[index[token]]++
	}

	v := make(vector, 0, len(counts))
	for term, count := range counts {
		v = append(v, component{term: term, weight: float64(count) * idf[term]})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].term < v[j].term })

	var norm float64
	for _, c := range v {
		norm += c.weight * c.weight
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for i := range v {
		v[i].weight /= norm
	}
	return v
}

func cosine(a, b vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term == b[j].term:
			dot += a[i].weight * b[j].weight
			i++
			j++
		case a[i].term < b[j].term:
			i++
		default:
			j++
		}
	}

	return math.Min(1, math.Max(0, dot))
}
