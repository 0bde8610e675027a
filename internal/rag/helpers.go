package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/metrics"
	"github.com/anmkhn/tradedoc-qa/internal/rag/pagemerge"
	"github.com/anmkhn/tradedoc-qa/internal/session"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

// noDataAnswer is the fixed response for questions against an empty scope.
const noDataAnswer = "No Data Found"

func (s *service) executeParserStep(ctx context.Context, log *logging.Logger, sessionID, path, artifactKind string) bool {
	if artifactKind == "" || s.parser == nil || !s.parser.Supports(artifactKind) {
		return false
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("artifact_parsing", time.Since(start)) }()

	payload, err := s.parser.Parse(ctx, artifactKind, path)
	if err != nil {
		log.Warn("Artifact parsing failed, continuing without it", "kind", artifactKind, "error", err)
		return false
	}
	if err := s.store.SaveArtifact(ctx, sessionID, artifactKind, payload); err != nil {
		log.Warn("Artifact could not be saved", "kind", artifactKind, "error", err)
		return false
	}
	return true
}

func (s *service) executeExtractionStep(ctx context.Context, log *logging.Logger, fileName, path string) ([]docmodel.PageUnit, []docmodel.TableRecord, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extraction", time.Since(start)) }()

	extractor, err := s.extractorFor(path)
	if err != nil {
		return nil, nil, &docmodel.ExtractionError{FileName: fileName, Err: err}
	}
	elements, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, nil, &docmodel.ExtractionError{FileName: fileName, Err: err}
	}

	units, tableRecords := pagemerge.Merge(fileName, elements)
	log.Debug("Extraction complete", "elements", len(elements), "pages", len(units))
	return units, tableRecords, nil
}

func (s *service) executeIndexingStep(ctx context.Context, log *logging.Logger, sessionID string, chunks []docmodel.Chunk) error {
	if len(chunks) == 0 {
		log.Warn("Document produced no indexable text")
		return nil
	}

	embedStart := time.Now()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return err
	}

	upsertStart := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(upsertStart)) }()
	return s.index.Upsert(ctx, sessionID, chunks, vectors)
}

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()
	return s.embedder.GetEmbedding(ctx, query)
}

func (s *service) executeCacheCheckStep(ctx context.Context, sessionID string, vector []float32) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	answer, found, _ := s.cache.GetCachedAnswer(ctx, sessionID, vector)
	return answer, found
}

func (s *service) executeRetrievalStep(ctx context.Context, sessionID, query string, vector []float32, snap session.Snapshot) ([]docmodel.Chunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()
	return s.retriever.Retrieve(ctx, sessionID, query, vector, snap)
}

func (s *service) executeAnswerStep(ctx context.Context, question string, contextChunks []docmodel.Chunk, matchedTables []docmodel.TableRecord) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	var guidelineText string
	if s.guidelines != nil {
		guidelineText = s.guidelines.Get()
	}
	return s.provider.Answer(ctx, question, contextChunks, matchedTables, guidelineText)
}

// sourceRefs renders the distinct (file, page) pairs in the context, first
// appearance first.
func sourceRefs(contextChunks []docmodel.Chunk) []string {
	seen := make(map[string]struct{}, len(contextChunks))
	var refs []string
	for _, c := range contextChunks {
		ref := fmt.Sprintf("%s p.%d", c.Metadata.FileName, c.Metadata.PageNumber)
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

func (s *service) saveToCacheAsync(sessionID string, vector []float32, question, answer string) {
	if s.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.cache.SaveToCache(ctx, sessionID, vector, question, answer); err != nil {
			s.logger.Error("Failed to save answer to cache", "sessionId", sessionID, "error", err)
		}
	}()
}
