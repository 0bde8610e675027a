package retrieve

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// Okapi BM25 parameters, standard values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// bm25Ranker is a term-frequency ranking model over one file's chunks. It is
// rebuilt from scratch on every query: cheap relative to an embedding call,
// and it keeps the session store free of derived lexical state.
type bm25Ranker struct {
	chunks    []docmodel.Chunk
	docTokens [][]string
	docLens   []int
	avgLen    float64
	idf       map[string]float64
}

func newBM25Ranker(chunks []docmodel.Chunk) *bm25Ranker {
	r := &bm25Ranker{
		chunks:    chunks,
		docTokens: make([][]string, len(chunks)),
		docLens:   make([]int, len(chunks)),
		idf:       make(map[string]float64),
	}

	df := make(map[string]int)
	total := 0
	for i, c := range chunks {
		tokens := tokenize(c.Content)
		r.docTokens[i] = tokens
		r.docLens[i] = len(tokens)
		total += len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(chunks) > 0 {
		r.avgLen = float64(total) / float64(len(chunks))
	}

	n := float64(len(chunks))
	for term, freq := range df {
		// Smoothed IDF, never negative.
		r.idf[term] = math.Log(1 + (n-float64(freq)+0.5)/(float64(freq)+0.5))
	}
	return r
}

// rank returns up to topK chunks scoring above zero, best first.
func (r *bm25Ranker) rank(query string, topK int) []docmodel.ScoredChunk {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || len(r.chunks) == 0 {
		return nil
	}

	scored := make([]docmodel.ScoredChunk, 0, len(r.chunks))
	for i := range r.chunks {
		score := r.score(queryTokens, i)
		if score <= 0 {
			continue
		}
		scored = append(scored, docmodel.ScoredChunk{Chunk: r.chunks[i], Score: score})
	}

	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func (r *bm25Ranker) score(queryTokens []string, doc int) float64 {
	tf := make(map[string]int, len(r.docTokens[doc]))
	for _, tok := range r.docTokens[doc] {
		tf[tok]++
	}

	lenNorm := 1 - bm25B + bm25B*float64(r.docLens[doc])/r.avgLen
	var score float64
	for _, q := range queryTokens {
		f := float64(tf[q])
		if f == 0 {
			continue
		}
		score += r.idf[q] * (f * (bm25K1 + 1)) / (f + bm25K1*lenNorm)
	}
	return score
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
