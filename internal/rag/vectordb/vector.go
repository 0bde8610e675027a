package vectordb

import (
	"context"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
)

// Index is a per-session, incrementally-updatable collection of embedded
// chunks. Upsert may be called repeatedly for the same session as more files
// arrive; it is not transactional, on failure callers re-ingest the file.
type Index interface {
	// Upsert embeds nothing itself: vectors[i] is the embedding of chunks[i].
	Upsert(ctx context.Context, sessionID string, chunks []docmodel.Chunk, vectors [][]float32) error

	// Query runs dense similarity search restricted to chunks of one file,
	// returning results at or above minScore, best first, capped at topK.
	Query(ctx context.Context, sessionID, fileName string, vector []float32, topK uint64, minScore float32) ([]docmodel.ScoredChunk, error)

	// Drop removes every vector owned by the session. Idempotent.
	Drop(ctx context.Context, sessionID string) error
}

// AnswerCache is the per-session semantic answer cache: questions whose
// embeddings are nearly identical to an earlier one reuse its answer.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, sessionID string, vector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, sessionID string, vector []float32, question, answer string) error
}
