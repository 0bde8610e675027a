package qdrantdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

// DB holds one Qdrant client shared by all sessions. Each session owns two
// collections: temp_<id> for its chunks and cache_<id> for the answer cache,
// so teardown is a pair of collection drops and tenants never share vectors.
type DB struct {
	client *qdrant.Client
	logger *logging.Logger
}

func NewClient(ctx context.Context) (*DB, error) {
	host := config.Env("QDRANT_HOST", config.QdrantHost)
	port, err := strconv.Atoi(config.Env("QDRANT_PORT", strconv.Itoa(config.QdrantGrpcPort)))
	if err != nil {
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	db := &DB{client: client, logger: logging.NewLogger("Qdrant")}
	go db.closeOnDone(ctx)
	return db, nil
}

func (db *DB) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.client.Close(); err != nil {
		db.logger.Error("Could not close Qdrant", "error", err)
	}
}

func chunkCollection(sessionID string) string { return "temp_" + sessionID }
func cacheCollection(sessionID string) string { return "cache_" + sessionID }

func (db *DB) ensureCollection(ctx context.Context, name string) error {
	exists, err := db.client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (db *DB) Upsert(ctx context.Context, sessionID string, chunks []docmodel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	collection := chunkCollection(sessionID)
	if err := db.ensureCollection(ctx, collection); err != nil {
		return fmt.Errorf("qdrant ensure collection: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":  chunk.ID,
				"content":   chunk.Content,
				"file_name": chunk.Metadata.FileName,
				"page_num":  int64(chunk.Metadata.PageNumber),
				"has_table": chunk.Metadata.HasTable,
			}),
		}
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *DB) Query(ctx context.Context, sessionID, fileName string, vector []float32, topK uint64, minScore float32) ([]docmodel.ScoredChunk, error) {
	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: chunkCollection(sessionID),
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("file_name", fileName),
			},
		},
		Limit:          qdrant.PtrOf(topK),
		ScoreThreshold: qdrant.PtrOf(minScore),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]docmodel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, docmodel.ScoredChunk{
			Chunk: docmodel.Chunk{
				ID:      hit.Payload["chunk_id"].GetStringValue(),
				Content: hit.Payload["content"].GetStringValue(),
				Metadata: docmodel.ChunkMetadata{
					FileName:   hit.Payload["file_name"].GetStringValue(),
					PageNumber: int(hit.Payload["page_num"].GetIntegerValue()),
					HasTable:   hit.Payload["has_table"].GetBoolValue(),
				},
			},
			Score: float64(hit.Score),
		})
	}
	return matches, nil
}

func (db *DB) Drop(ctx context.Context, sessionID string) error {
	for _, name := range []string{chunkCollection(sessionID), cacheCollection(sessionID)} {
		exists, err := db.client.CollectionExists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := db.client.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("qdrant drop %s: %w", name, err)
		}
	}
	return nil
}

// GetCachedAnswer looks up a near-identical earlier question for the session.
func (db *DB) GetCachedAnswer(ctx context.Context, sessionID string, vector []float32) (string, bool, error) {
	collection := cacheCollection(sessionID)
	exists, err := db.client.CollectionExists(ctx, collection)
	if err != nil || !exists {
		return "", false, err
	}

	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		ScoreThreshold: qdrant.PtrOf(float32(config.CacheSimilarityCutoff)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return "", false, err
	}
	if len(result) == 0 {
		return "", false, nil
	}
	return result[0].Payload["answer"].GetStringValue(), true, nil
}

// SaveToCache stores a question/answer pair for later semantic lookup.
func (db *DB) SaveToCache(ctx context.Context, sessionID string, vector []float32, question, answer string) error {
	collection := cacheCollection(sessionID)
	if err := db.ensureCollection(ctx, collection); err != nil {
		return err
	}
	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"question": question,
				"answer":   answer,
			}),
		}},
	})
	return err
}
