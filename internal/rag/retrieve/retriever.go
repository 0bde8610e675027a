// Package retrieve implements hybrid retrieval: per file, dense similarity
// results from the vector index and lexical BM25 results over the same
// file's chunks are fused into one ranked context list.
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/rag/vectordb"
	"github.com/anmkhn/tradedoc-qa/internal/session"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

// rrfRankConstant dampens the contribution of lower ranks in reciprocal
// rank fusion. 60 is the value from the original RRF paper and the ensemble
// behavior this retriever reproduces.
const rrfRankConstant = 60

type Retriever struct {
	index         vectordb.Index
	topK          uint64
	minScore      float32
	denseWeight   float64
	lexicalWeight float64
	logger        *logging.Logger
}

func New(index vectordb.Index, topK int, minScore float32, denseWeight, lexicalWeight float64) *Retriever {
	return &Retriever{
		index:         index,
		topK:          uint64(topK),
		minScore:      minScore,
		denseWeight:   denseWeight,
		lexicalWeight: lexicalWeight,
		logger:        logging.NewLogger("HybridRetriever"),
	}
}

// Retrieve builds the context for one query. The scope is the session's
// filter when set, otherwise every ingested file; per-file results are
// concatenated in scope order. An empty scope yields an empty context and no
// error, since "no files yet" is not a failure.
func (r *Retriever) Retrieve(ctx context.Context, sessionID, query string, queryVector []float32, snap session.Snapshot) ([]docmodel.Chunk, error) {
	scope := snap.Scope()
	if len(scope) == 0 {
		return nil, nil
	}

	chunksByFile := groupByFile(snap.Chunks)

	var contextChunks []docmodel.Chunk
	for _, file := range scope {
		dense, err := r.index.Query(ctx, sessionID, file, queryVector, r.topK, r.minScore)
		if err != nil {
			return nil, fmt.Errorf("dense retrieval for %q: %w", file, err)
		}

		lexical := newBM25Ranker(chunksByFile[file]).rank(query, int(r.topK))

		merged := r.fuse(dense, lexical)
		r.logger.Debug("Retrieved file context",
			"file", file, "dense", len(dense), "lexical", len(lexical), "merged", len(merged))
		contextChunks = append(contextChunks, merged...)
	}
	return contextChunks, nil
}

// fuse merges two ranked lists with weighted reciprocal rank fusion,
// deduplicating chunks that appear in both.
func (r *Retriever) fuse(dense, lexical []docmodel.ScoredChunk) []docmodel.Chunk {
	type fused struct {
		chunk docmodel.Chunk
		score float64
		order int
	}
	byID := make(map[string]*fused, len(dense)+len(lexical))

	accumulate := func(list []docmodel.ScoredChunk, weight float64) {
		for rank, sc := range list {
			contribution := weight / float64(rank+1+rrfRankConstant)
			if f, ok := byID[sc.Chunk.ID]; ok {
				f.score += contribution
				continue
			}
			byID[sc.Chunk.ID] = &fused{chunk: sc.Chunk, score: contribution, order: len(byID)}
		}
	}
	accumulate(dense, r.denseWeight)
	accumulate(lexical, r.lexicalWeight)

	all := make([]*fused, 0, len(byID))
	for _, f := range byID {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].order < all[j].order
	})

	out := make([]docmodel.Chunk, len(all))
	for i, f := range all {
		out[i] = f.chunk
	}
	return out
}

func groupByFile(chunks []docmodel.Chunk) map[string][]docmodel.Chunk {
	grouped := make(map[string][]docmodel.Chunk)
	for _, c := range chunks {
		grouped[c.Metadata.FileName] = append(grouped[c.Metadata.FileName], c)
	}
	return grouped
}
