package rag

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/metrics"
	"github.com/anmkhn/tradedoc-qa/internal/rag/chunker"
	"github.com/anmkhn/tradedoc-qa/internal/rag/embedding"
	"github.com/anmkhn/tradedoc-qa/internal/rag/extract"
	"github.com/anmkhn/tradedoc-qa/internal/rag/llm"
	"github.com/anmkhn/tradedoc-qa/internal/rag/pagemerge"
	"github.com/anmkhn/tradedoc-qa/internal/rag/tables"
	"github.com/anmkhn/tradedoc-qa/internal/rag/vectordb"
	"github.com/anmkhn/tradedoc-qa/internal/session"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

// Service is the public contract of the question-answering pipeline. The
// handlers only call this interface; they never touch the vector index, the
// embedder or the LLM provider directly.
type Service interface {
	// Ingest runs extraction, cleaning, chunking, embedding and indexing for
	// one uploaded file and records the results against the session.
	// artifactKind is docmodel.ArtifactLetterOfCredit, docmodel.ArtifactInvoice
	// or empty for documents that should not be structurally parsed.
	Ingest(ctx context.Context, sessionID, fileName, path, artifactKind string) (IngestSummary, error)

	// Answer retrieves context for the question within the session's file
	// scope and generates an answer.
	Answer(ctx context.Context, sessionID, question string) (AnswerResult, error)

	// SetFileFilter restricts retrieval to the named files. An empty list
	// clears the restriction.
	SetFileFilter(ctx context.Context, sessionID string, files []string) error

	// Files lists the session's ingested files and its active filter.
	Files(ctx context.Context, sessionID string) (FileListing, error)

	// Compare runs the field-by-field comparison of the session's parsed
	// letter of credit against its parsed invoice.
	Compare(ctx context.Context, sessionID string) (string, error)

	// Teardown destroys all session state, store and index both. Idempotent.
	Teardown(ctx context.Context, sessionID string) error
}

// IngestSummary reports what one ingestion produced.
type IngestSummary struct {
	FileName string
	Pages    int
	Chunks   int
	Tables   int
	Parsed   bool
}

// AnswerResult carries the generated answer. Sources lists the distinct
// (file, page) references behind it, in context order. NoData marks the
// sentinel response for sessions whose scope holds no files.
type AnswerResult struct {
	Answer  string
	Sources []string
	NoData  bool
	Cached  bool
}

// FileListing is the session's file inventory.
type FileListing struct {
	Files  []string
	Filter []string
}

// ArtifactParser is the structured-field parsing collaborator. Parsing is
// best effort; Ingest never fails because of it.
type ArtifactParser interface {
	Supports(kind string) bool
	Parse(ctx context.Context, kind, path string) (json.RawMessage, error)
}

// ContextRetriever builds the ranked context for one query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, sessionID, query string, queryVector []float32, snap session.Snapshot) ([]docmodel.Chunk, error)
}

// GuidelineSource supplies the operator guidelines appended to prompts.
type GuidelineSource interface {
	Get() string
}

// Deps are the collaborators wired in at startup. Cache, Parser and
// Guidelines may be nil; the corresponding behavior is skipped.
type Deps struct {
	Store      session.Store
	Index      vectordb.Index
	Cache      vectordb.AnswerCache
	Embedder   embedding.Embedder
	Provider   llm.Provider
	Retriever  ContextRetriever
	Parser     ArtifactParser
	Guidelines GuidelineSource

	// ExtractorFor overrides extension-based extractor selection. Nil means
	// extract.ForFile.
	ExtractorFor func(path string) (extract.Extractor, error)
}

type service struct {
	store      session.Store
	index      vectordb.Index
	cache      vectordb.AnswerCache
	embedder   embedding.Embedder
	provider   llm.Provider
	retriever  ContextRetriever
	parser     ArtifactParser
	guidelines GuidelineSource
	chunker    *chunker.Chunker

	// extractorFor is swappable so pipeline tests run without real documents.
	extractorFor func(path string) (extract.Extractor, error)

	ingestLocks *session.KeyedMutex
	logger      *logging.Logger
}

func NewService(deps Deps) Service {
	if deps.ExtractorFor == nil {
		deps.ExtractorFor = extract.ForFile
	}
	return &service{
		store:        deps.Store,
		index:        deps.Index,
		cache:        deps.Cache,
		embedder:     deps.Embedder,
		provider:     deps.Provider,
		retriever:    deps.Retriever,
		parser:       deps.Parser,
		guidelines:   deps.Guidelines,
		chunker:      chunker.New(config.ChunkTokenTarget, config.ChunkTokenOverlap),
		extractorFor: deps.ExtractorFor,
		ingestLocks:  session.NewKeyedMutex(),
		logger:       logging.NewLogger("RAG Service"),
	}
}

func (s *service) Ingest(ctx context.Context, sessionID, fileName, path, artifactKind string) (IngestSummary, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	s.ingestLocks.Lock(sessionID)
	defer s.ingestLocks.Unlock(sessionID)

	log := s.logger.With("sessionId", sessionID, "file", fileName)

	if err := s.store.GetOrCreate(ctx, sessionID); err != nil {
		return IngestSummary{}, err
	}

	parsed := s.executeParserStep(ctx, log, sessionID, path, artifactKind)

	units, tableRecords, err := s.executeExtractionStep(ctx, log, fileName, path)
	if err != nil {
		return IngestSummary{}, err
	}

	chunks := s.chunker.Split(units)

	if err := s.executeIndexingStep(ctx, log, sessionID, chunks); err != nil {
		return IngestSummary{}, err
	}

	// File name goes in last: a snapshot taken mid-ingest either sees the
	// whole file or none of it.
	if err := s.store.AppendChunks(ctx, sessionID, chunks); err != nil {
		return IngestSummary{}, err
	}
	if err := s.store.AppendTables(ctx, sessionID, tableRecords); err != nil {
		return IngestSummary{}, err
	}
	if err := s.store.AppendFiles(ctx, sessionID, fileName); err != nil {
		return IngestSummary{}, err
	}

	metrics.IncrementIngestedFiles()
	log.Info("Document ingested", "pages", len(units), "chunks", len(chunks), "tables", len(tableRecords))

	return IngestSummary{
		FileName: fileName,
		Pages:    len(units),
		Chunks:   len(chunks),
		Tables:   len(tableRecords),
		Parsed:   parsed,
	}, nil
}

func (s *service) Answer(ctx context.Context, sessionID, question string) (AnswerResult, error) {
	snap, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if !found || len(snap.Scope()) == 0 {
		return AnswerResult{Answer: noDataAnswer, NoData: true}, nil
	}

	log := s.logger.With("sessionId", sessionID)
	normalized := pagemerge.NormalizeQuery(question)

	queryVector, err := s.executeEmbeddingStep(ctx, normalized)
	if err != nil {
		log.Error("Query embedding failed", "error", err)
		return AnswerResult{}, err
	}

	if answer, hit := s.executeCacheCheckStep(ctx, sessionID, queryVector); hit {
		log.Info("Answer served from semantic cache")
		return AnswerResult{Answer: answer, Cached: true}, nil
	}

	contextChunks, err := s.executeRetrievalStep(ctx, sessionID, normalized, queryVector, snap)
	if err != nil {
		log.Error("Retrieval failed", "error", err)
		return AnswerResult{}, err
	}

	matchedTables := tables.Correlate(contextChunks, snap.Tables)

	answer, err := s.executeAnswerStep(ctx, question, contextChunks, matchedTables)
	if err != nil {
		log.Error("Answer generation failed", "error", err)
		return AnswerResult{}, err
	}

	s.saveToCacheAsync(sessionID, queryVector, question, answer)

	return AnswerResult{Answer: answer, Sources: sourceRefs(contextChunks)}, nil
}

func (s *service) SetFileFilter(ctx context.Context, sessionID string, files []string) error {
	return s.store.SetFilter(ctx, sessionID, files)
}

func (s *service) Files(ctx context.Context, sessionID string) (FileListing, error) {
	snap, found, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return FileListing{}, err
	}
	if !found {
		return FileListing{}, docmodel.ErrSessionNotFound
	}
	return FileListing{Files: snap.FileNames, Filter: snap.Filter}, nil
}

func (s *service) Compare(ctx context.Context, sessionID string) (string, error) {
	artifacts, err := s.store.Artifacts(ctx, sessionID)
	if err != nil {
		return "", err
	}
	letterOfCredit, hasLC := artifacts[docmodel.ArtifactLetterOfCredit]
	invoice, hasInvoice := artifacts[docmodel.ArtifactInvoice]
	if !hasLC || !hasInvoice {
		return "", docmodel.ErrArtifactsMissing
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_comparison", time.Since(start)) }()

	return s.provider.Compare(ctx, letterOfCredit, invoice)
}

func (s *service) Teardown(ctx context.Context, sessionID string) error {
	s.ingestLocks.Lock(sessionID)
	defer s.ingestLocks.Unlock(sessionID)

	if err := s.index.Drop(ctx, sessionID); err != nil {
		s.logger.Error("Dropping session vectors failed", "sessionId", sessionID, "error", err)
		return err
	}
	return s.store.Destroy(ctx, sessionID)
}
