package rag_test

import (
	"context"
	"encoding/json"

	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/session"
)

// MockIndex implements vectordb.Index
type MockIndex struct {
	// Control fields to simulate different behaviors
	OnUpsert func(ctx context.Context, sessionID string, chunks []docmodel.Chunk, vectors [][]float32) error
	OnQuery  func(ctx context.Context, sessionID, fileName string, vector []float32, topK uint64, minScore float32) ([]docmodel.ScoredChunk, error)
	OnDrop   func(ctx context.Context, sessionID string) error

	UpsertCalls int
	DropCalls   int
}

func (m *MockIndex) Upsert(ctx context.Context, sessionID string, chunks []docmodel.Chunk, vectors [][]float32) error {
	m.UpsertCalls++
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, sessionID, chunks, vectors)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, sessionID, fileName string, vector []float32, topK uint64, minScore float32) ([]docmodel.ScoredChunk, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, sessionID, fileName, vector, topK, minScore)
	}
	return nil, nil
}

func (m *MockIndex) Drop(ctx context.Context, sessionID string) error {
	m.DropCalls++
	if m.OnDrop != nil {
		return m.OnDrop(ctx, sessionID)
	}
	return nil
}

// MockCache implements vectordb.AnswerCache
type MockCache struct {
	OnGetCachedAnswer func(ctx context.Context, sessionID string, vector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, sessionID string, vector []float32, question, answer string) error
}

func (m *MockCache) GetCachedAnswer(ctx context.Context, sessionID string, vector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, sessionID, vector)
	}
	return "", false, nil
}

func (m *MockCache) SaveToCache(ctx context.Context, sessionID string, vector []float32, question, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, sessionID, vector, question, answer)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	// Return dummy vectors matching input size
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

// MockProvider implements llm.Provider
type MockProvider struct {
	OnAnswer  func(ctx context.Context, question string, contextChunks []docmodel.Chunk, tables []docmodel.TableRecord, guidelines string) (string, error)
	OnCompare func(ctx context.Context, letterOfCredit, invoice json.RawMessage) (string, error)
}

func (m *MockProvider) Answer(ctx context.Context, question string, contextChunks []docmodel.Chunk, tables []docmodel.TableRecord, guidelines string) (string, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, question, contextChunks, tables, guidelines)
	}
	return "mocked llm response", nil
}

func (m *MockProvider) Compare(ctx context.Context, letterOfCredit, invoice json.RawMessage) (string, error) {
	if m.OnCompare != nil {
		return m.OnCompare(ctx, letterOfCredit, invoice)
	}
	return "mocked comparison", nil
}

// MockRetriever implements rag.ContextRetriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, sessionID, query string, queryVector []float32, snap session.Snapshot) ([]docmodel.Chunk, error)
}

func (m *MockRetriever) Retrieve(ctx context.Context, sessionID, query string, queryVector []float32, snap session.Snapshot) ([]docmodel.Chunk, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, sessionID, query, queryVector, snap)
	}
	return []docmodel.Chunk{{ID: "ctx1", Content: "default context"}}, nil
}

// MockParser implements rag.ArtifactParser
type MockParser struct {
	OnParse func(ctx context.Context, kind, path string) (json.RawMessage, error)
}

func (m *MockParser) Supports(kind string) bool { return true }

func (m *MockParser) Parse(ctx context.Context, kind, path string) (json.RawMessage, error) {
	if m.OnParse != nil {
		return m.OnParse(ctx, kind, path)
	}
	return json.RawMessage(`{"parsed":true}`), nil
}

type staticGuidelines string

func (g staticGuidelines) Get() string { return string(g) }
